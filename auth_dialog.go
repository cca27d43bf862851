// Go MySQL Driver - A MySQL-Driver for Go's database/sql package
//
// Copyright 2024 The Go-MySQL-Driver Authors. All rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at http://mozilla.org/MPL/2.0/.

package mysql

import "strings"

// dialogPlugin implements MariaDB's PAM "dialog" plugin (§4.4,
// supplemented). PAM can prompt for more than one credential; since Next
// is stateless and shared across connections, this plugin answers the
// first prompt with Passwd and every further prompt with the first entry
// of the comma-separated OtherPasswd list, or an empty response when
// OtherPasswd is empty; later entries of that list are never sent.
type dialogPlugin struct{}

func (p *dialogPlugin) Name() string { return "dialog" }

func (p *dialogPlugin) Next(_ *Context, _ []byte, serverData []byte, cfg *Config) ([]byte, error) {
	if serverData == nil {
		if !cfg.AllowDialogPasswords {
			return nil, ErrDialogAuth
		}
		return append([]byte(cfg.Passwd), 0), nil
	}

	if cfg.OtherPasswd == "" {
		return []byte{0}, nil
	}
	return append([]byte(strings.SplitN(cfg.OtherPasswd, ",", 2)[0]), 0), nil
}
