// Go MySQL Driver - A MySQL-Driver for Go's database/sql package
//
// Copyright 2012 The Go-MySQL-Driver Authors. All rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at http://mozilla.org/MPL/2.0/.

package mysql

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

const minProtocolVersion = 0x0a

// initialHandshake is the parsed Protocol::HandshakeV10 packet (§4.5 step 1).
type initialHandshake struct {
	ProtocolVersion byte
	ServerVersion   ServerVersion
	ThreadID        uint32
	Seed            []byte // concatenated seed1+seed2, auth-plugin-data
	Capabilities    Capability
	Collation       byte
	StatusFlags     uint16
	AuthPluginName  string
}

// parseInitialHandshake decodes the server's first packet (§4.5 step 1).
func parseInitialHandshake(data []byte) (*initialHandshake, error) {
	if len(data) < 1 {
		return nil, fmt.Errorf("%w: empty handshake packet", errMalformedPacket)
	}

	h := &initialHandshake{ProtocolVersion: data[0]}
	if h.ProtocolVersion < minProtocolVersion {
		return nil, fmt.Errorf("mysql: unsupported protocol version %d, need >= %d", h.ProtocolVersion, minProtocolVersion)
	}

	pos := 1
	verEnd := bytes.IndexByte(data[pos:], 0x00)
	if verEnd < 0 {
		return nil, fmt.Errorf("%w: unterminated server version", errMalformedPacket)
	}
	h.ServerVersion = ParseServerVersion(string(data[pos : pos+verEnd]))
	pos += verEnd + 1

	if len(data) < pos+4 {
		return nil, fmt.Errorf("%w: truncated handshake", errMalformedPacket)
	}
	h.ThreadID = binary.LittleEndian.Uint32(data[pos : pos+4])
	pos += 4

	// seed part 1: 8 bytes, then a filler byte
	if len(data) < pos+9 {
		return nil, fmt.Errorf("%w: truncated handshake seed", errMalformedPacket)
	}
	seed := append([]byte(nil), data[pos:pos+8]...)
	pos += 8 + 1

	if len(data) < pos+2 {
		return nil, fmt.Errorf("%w: truncated capability flags", errMalformedPacket)
	}
	capLow := binary.LittleEndian.Uint16(data[pos : pos+2])
	pos += 2

	var authPluginDataLen byte
	if len(data) > pos {
		h.Collation = data[pos]
		pos++
		if len(data) < pos+2 {
			return nil, fmt.Errorf("%w: truncated status flags", errMalformedPacket)
		}
		h.StatusFlags = binary.LittleEndian.Uint16(data[pos : pos+2])
		pos += 2

		if len(data) < pos+2 {
			return nil, fmt.Errorf("%w: truncated capability flags", errMalformedPacket)
		}
		capHigh := binary.LittleEndian.Uint16(data[pos : pos+2])
		pos += 2
		h.Capabilities = Capability(capLow) | Capability(capHigh)<<16

		if len(data) > pos {
			authPluginDataLen = data[pos]
		}
		pos++

		// 10 reserved bytes
		pos += 10

		if h.Capabilities.Has(clientSecureConnection) {
			seedLen := int(authPluginDataLen) - 8
			if seedLen < 13 {
				seedLen = 13 // server may not report len correctly; minimum guaranteed
			}
			if len(data) < pos+seedLen {
				return nil, fmt.Errorf("%w: truncated handshake seed2", errMalformedPacket)
			}
			seed2 := data[pos : pos+seedLen-1] // drop the trailing NUL
			seed = append(seed, seed2...)
			pos += seedLen
		}

		if h.Capabilities.Has(clientPluginAuth) {
			end := bytes.IndexByte(data[pos:], 0x00)
			if end < 0 {
				h.AuthPluginName = string(data[pos:])
			} else {
				h.AuthPluginName = string(data[pos : pos+end])
			}
		}
	} else {
		h.Capabilities = Capability(capLow)
	}

	h.Seed = seed
	return h, nil
}
