// Go MySQL Driver - A MySQL-Driver for Go's database/sql package
//
// Copyright 2023 The Go-MySQL-Driver Authors. All rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at http://mozilla.org/MPL/2.0/.

package mysql

import "fmt"

// oldPasswordPlugin implements mysql_old_password, the insecure pre-4.1
// scramble still negotiated by legacy MySQL and MariaDB servers.
type oldPasswordPlugin struct{}

func (p *oldPasswordPlugin) Name() string { return "mysql_old_password" }

func (p *oldPasswordPlugin) Next(_ *Context, seed []byte, serverData []byte, cfg *Config) ([]byte, error) {
	if serverData != nil {
		return nil, fmt.Errorf("mysql: mysql_old_password does not expect a follow-up exchange")
	}
	if !cfg.AllowOldPasswords {
		return nil, ErrOldPassword
	}
	if cfg.Passwd == "" {
		return nil, nil
	}
	// Note: there are edge cases where this should work but doesn't; this
	// is currently "wontfix": https://github.com/go-sql-driver/mysql/issues/184
	return append(scrambleOldPassword(seed[:8], cfg.Passwd), 0), nil
}

func scrambleOldPassword(scramble []byte, password string) []byte {
	scramble = scramble[:8]

	hashPw := pwHash([]byte(password))
	hashSc := pwHash(scramble)

	r := newMyRnd(hashPw[0]^hashSc[0], hashPw[1]^hashSc[1])

	var out [8]byte
	for i := range out {
		out[i] = r.NextByte() + 64
	}

	mask := r.NextByte()
	for i := range out {
		out[i] ^= mask
	}

	return out[:]
}

// myRnd is MySQL's pre-4.1 pseudo random number generator.
// https://github.com/atcurtis/mariadb/blob/master/mysys/my_rnd.c
type myRnd struct {
	seed1, seed2 uint32
}

const myRndMaxVal = 0x3FFFFFFF

func newMyRnd(seed1, seed2 uint32) *myRnd {
	return &myRnd{
		seed1: seed1 % myRndMaxVal,
		seed2: seed2 % myRndMaxVal,
	}
}

func (r *myRnd) NextByte() byte {
	r.seed1 = (r.seed1*3 + r.seed2) % myRndMaxVal
	r.seed2 = (r.seed1 + r.seed2 + 33) % myRndMaxVal

	return byte(uint64(r.seed1) * 31 / myRndMaxVal)
}

func pwHash(password []byte) (result [2]uint32) {
	var add uint32 = 7
	var tmp uint32

	result[0] = 1345345333
	result[1] = 0x12345671

	for _, c := range password {
		if c == ' ' || c == '\t' {
			continue
		}

		tmp = uint32(c)
		result[0] ^= (((result[0] & 63) + add) * tmp) + (result[0] << 8)
		result[1] += (result[1] << 8) ^ result[0]
		add += tmp
	}

	result[0] &= 0x7FFFFFFF
	result[1] &= 0x7FFFFFFF

	return
}
