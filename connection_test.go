// Go MySQL Driver - A MySQL-Driver for Go's database/sql package
//
// Copyright 2013 The Go-MySQL-Driver Authors. All rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at http://mozilla.org/MPL/2.0/.

package mysql

import (
	"bytes"
	"testing"
)

func TestParseAuthSwitchRequest(t *testing.T) {
	data := append([]byte{iEOF}, []byte("caching_sha2_password\x00")...)
	seed := []byte{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16, 17, 18, 19, 20}
	data = append(data, seed...)
	data = append(data, 0) // AuthSwitchRequest seeds sometimes carry a trailing NUL

	plugin, gotSeed, err := parseAuthSwitchRequest(data)
	if err != nil {
		t.Fatal(err)
	}
	if plugin != "caching_sha2_password" {
		t.Errorf("got plugin %q", plugin)
	}
	if !bytes.Equal(gotSeed, seed) {
		t.Errorf("got seed %v, want %v", gotSeed, seed)
	}
}

func TestParseAuthSwitchRequestUnterminated(t *testing.T) {
	data := append([]byte{iEOF}, []byte("no_nul_here")...)
	if _, _, err := parseAuthSwitchRequest(data); err == nil {
		t.Error("expected an error for a plugin name with no NUL terminator")
	}
}

func TestParseAuthSwitchRequestTooShort(t *testing.T) {
	if _, _, err := parseAuthSwitchRequest([]byte{iEOF}); err == nil {
		t.Error("expected an error for a packet with no body")
	}
}
