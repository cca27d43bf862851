// Go MySQL Driver - A MySQL-Driver for Go's database/sql package
//
// Copyright 2023 The Go-MySQL-Driver Authors. All rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at http://mozilla.org/MPL/2.0/.

package mysql

import (
	"crypto/sha512"
	"fmt"

	"filippo.io/edwards25519"
)

// ed25519Plugin implements client_ed25519, one of the four required
// plugins (§4.4): a single-shot Ed25519 signature over the server seed,
// keyed by SHA-512(password).
//
// Derived from https://github.com/MariaDB/server/blob/d8e6bb00888b1f82c031938f4c8ac5d97f6874c3/plugin/auth_ed25519/ref10/sign.c
type ed25519Plugin struct{}

func (p *ed25519Plugin) Name() string { return "client_ed25519" }

func (p *ed25519Plugin) Next(_ *Context, seed []byte, serverData []byte, cfg *Config) ([]byte, error) {
	if serverData != nil {
		return nil, fmt.Errorf("mysql: client_ed25519 does not expect a follow-up exchange")
	}

	h := sha512.Sum512([]byte(cfg.Passwd))

	s, err := edwards25519.NewScalar().SetBytesWithClamping(h[:32])
	if err != nil {
		return nil, err
	}
	A := (&edwards25519.Point{}).ScalarBaseMult(s)

	mh := sha512.New()
	mh.Write(h[32:])
	mh.Write(seed)
	messageDigest := mh.Sum(nil)
	r, err := edwards25519.NewScalar().SetUniformBytes(messageDigest)
	if err != nil {
		return nil, err
	}

	R := (&edwards25519.Point{}).ScalarBaseMult(r)

	kh := sha512.New()
	kh.Write(R.Bytes())
	kh.Write(A.Bytes())
	kh.Write(seed)
	hramDigest := kh.Sum(nil)
	k, err := edwards25519.NewScalar().SetUniformBytes(hramDigest)
	if err != nil {
		return nil, err
	}

	S := k.MultiplyAdd(k, s, r)

	return append(R.Bytes(), S.Bytes()...), nil
}
