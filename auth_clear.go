// Go MySQL Driver - A MySQL-Driver for Go's database/sql package
//
// Copyright 2023 The Go-MySQL-Driver Authors. All rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at http://mozilla.org/MPL/2.0/.

package mysql

import "fmt"

// clearPasswordPlugin implements mysql_clear_password: the password, sent
// verbatim and NUL-terminated. Only safe over TLS or a Unix socket, so it's
// gated behind AllowCleartextPasswords (§4.4).
type clearPasswordPlugin struct{}

func (p *clearPasswordPlugin) Name() string { return "mysql_clear_password" }

func (p *clearPasswordPlugin) Next(_ *Context, _ []byte, serverData []byte, cfg *Config) ([]byte, error) {
	if serverData != nil {
		return nil, fmt.Errorf("mysql: mysql_clear_password does not expect a follow-up exchange")
	}
	if !cfg.AllowCleartextPasswords {
		return nil, ErrCleartextPassword
	}
	return append([]byte(cfg.Passwd), 0), nil
}
