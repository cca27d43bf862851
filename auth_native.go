// Go MySQL Driver - A MySQL-Driver for Go's database/sql package
//
// Copyright 2023 The Go-MySQL-Driver Authors. All rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at http://mozilla.org/MPL/2.0/.

package mysql

import (
	"crypto/sha1"
	"fmt"
)

// nativePasswordPlugin implements mysql_native_password (§4.4):
// SHA1(password) XOR SHA1(seed || SHA1(SHA1(password))), a 20-byte payload;
// an empty password sends an empty payload.
type nativePasswordPlugin struct{}

func (p *nativePasswordPlugin) Name() string { return "mysql_native_password" }

func (p *nativePasswordPlugin) Next(_ *Context, seed []byte, serverData []byte, cfg *Config) ([]byte, error) {
	if serverData != nil {
		return nil, fmt.Errorf("mysql: mysql_native_password does not expect a follow-up exchange")
	}
	if !cfg.AllowNativePasswords {
		return nil, ErrNativePassword
	}
	if cfg.Passwd == "" {
		return nil, nil
	}
	return scrambleNativePassword(seed, cfg.Passwd), nil
}

func scrambleNativePassword(seed []byte, password string) []byte {
	if len(password) == 0 {
		return nil
	}

	crypt := sha1.New()
	crypt.Write([]byte(password))
	stage1 := crypt.Sum(nil)

	crypt.Reset()
	crypt.Write(stage1)
	hash := crypt.Sum(nil)

	crypt.Reset()
	crypt.Write(seed)
	crypt.Write(hash)
	scramble := crypt.Sum(nil)

	for i := range scramble {
		scramble[i] ^= stage1[i]
	}
	return scramble
}
