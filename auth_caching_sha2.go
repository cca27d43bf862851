// Go MySQL Driver - A MySQL-Driver for Go's database/sql package
//
// Copyright 2023 The Go-MySQL-Driver Authors. All rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at http://mozilla.org/MPL/2.0/.

package mysql

import (
	"crypto/sha256"
	"fmt"
)

// cachingSHA2Plugin implements caching_sha2_password, one of the four
// required plugins (§4.4): a three-step SHA-256 scramble, with a
// server-side cache of password verifiers that lets most connections skip
// the RSA round trip entirely.
//
// Next is re-entrant: the connection state machine passes back the
// server's AuthMoreData payload with the iAuthMoreData marker byte
// already stripped, and this plugin infers its position in the exchange
// from that payload's shape:
//
//	nil        -> first call, send the SHA-256 scramble
//	{3}        -> fast-auth success, nothing more to send
//	{4}        -> full authentication requested
//	PEM bytes  -> the server's RSA public key, requested during full auth
type cachingSHA2Plugin struct{}

func (p *cachingSHA2Plugin) Name() string { return "caching_sha2_password" }

func (p *cachingSHA2Plugin) Next(_ *Context, seed []byte, serverData []byte, cfg *Config) ([]byte, error) {
	if serverData == nil {
		return scrambleSHA256Password(seed, cfg.Passwd), nil
	}

	if len(serverData) == 1 {
		switch serverData[0] {
		case 3:
			return nil, nil // fast-auth success, OK packet follows
		case 4:
			if cfg.TLS != nil || cfg.Socket != "" {
				return append([]byte(cfg.Passwd), 0), nil
			}
			if cfg.pubKey != nil {
				return encryptPassword(cfg.Passwd, seed, cfg.pubKey)
			}
			return []byte{2}, nil // request the server's public key
		default:
			return nil, fmt.Errorf("%w: unknown caching_sha2_password auth state %d", errMalformedPacket, serverData[0])
		}
	}

	pubKey, err := parsePEMPublicKey(serverData)
	if err != nil {
		return nil, fmt.Errorf("caching_sha2_password: %w", err)
	}
	return encryptPassword(cfg.Passwd, seed, pubKey)
}

// scrambleSHA256Password implements MySQL 8+ password scrambling:
// XOR(SHA256(password), SHA256(SHA256(SHA256(password)), scramble)).
func scrambleSHA256Password(scramble []byte, password string) []byte {
	if len(password) == 0 {
		return []byte{}
	}

	crypt := sha256.New()
	crypt.Write([]byte(password))
	message1 := crypt.Sum(nil)

	crypt.Reset()
	crypt.Write(message1)
	message1Hash := crypt.Sum(nil)

	crypt.Reset()
	crypt.Write(message1Hash)
	crypt.Write(scramble)
	message2 := crypt.Sum(nil)

	for i := range message1 {
		message1[i] ^= message2[i]
	}

	return message1
}
