// Go MySQL Driver - A MySQL-Driver for Go's database/sql package
//
// Copyright 2023 The Go-MySQL-Driver Authors. All rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at http://mozilla.org/MPL/2.0/.

package mysql

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha1"
	"crypto/x509"
	"encoding/pem"
	"fmt"
)

// sha256Plugin implements sha256_password (§4.4, supplemented). Unlike
// caching_sha2_password it never accepts a cleartext fallback over a Unix
// socket, only TLS makes cleartext safe.
//
// Next is re-entrant rather than stateful: the connection state machine
// feeds back whatever AuthMoreData the server last sent, and this plugin
// decides its next move purely from that payload's shape, so a single
// shared instance serves every connection.
type sha256Plugin struct{}

func (p *sha256Plugin) Name() string { return "sha256_password" }

func (p *sha256Plugin) Next(_ *Context, seed []byte, serverData []byte, cfg *Config) ([]byte, error) {
	if serverData != nil {
		pubKey, err := parsePEMPublicKey(serverData)
		if err != nil {
			return nil, fmt.Errorf("sha256_password: %w", err)
		}
		return encryptPassword(cfg.Passwd, seed, pubKey)
	}

	if len(cfg.Passwd) == 0 {
		return []byte{0}, nil
	}
	if cfg.TLS != nil {
		return append([]byte(cfg.Passwd), 0), nil
	}
	if cfg.pubKey != nil {
		return encryptPassword(cfg.Passwd, seed, cfg.pubKey)
	}
	return []byte{1}, nil // request the server's public key
}

// parsePEMPublicKey decodes a PEM-encoded RSA public key, as sent by the
// server in response to a public-key request (§4.4).
func parsePEMPublicKey(data []byte) (*rsa.PublicKey, error) {
	block, rest := pem.Decode(data)
	if block == nil {
		return nil, fmt.Errorf("invalid PEM data in auth response: %q", rest)
	}

	pub, err := x509.ParsePKIXPublicKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("parsing public key: %w", err)
	}

	pubKey, ok := pub.(*rsa.PublicKey)
	if !ok {
		return nil, fmt.Errorf("server sent an invalid public key type: %T", pub)
	}
	return pubKey, nil
}

// encryptPassword XORs the NUL-terminated password with the repeated auth
// seed, then RSA-OAEP/SHA1-encrypts the result (§4.4).
func encryptPassword(password string, seed []byte, pub *rsa.PublicKey) ([]byte, error) {
	if pub == nil {
		return nil, fmt.Errorf("public key is nil")
	}

	plain := make([]byte, len(password)+1)
	copy(plain, password)
	for i := range plain {
		j := i % len(seed)
		plain[i] ^= seed[j]
	}

	sha1Hash := sha1.New()
	return rsa.EncryptOAEP(sha1Hash, rand.Reader, pub, plain, nil)
}
