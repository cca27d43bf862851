// Go MySQL Driver - A MySQL-Driver for Go's database/sql package
//
// Copyright 2012 The Go-MySQL-Driver Authors. All rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at http://mozilla.org/MPL/2.0/.

package mysql

import (
	"encoding/binary"
	"fmt"
)

// readLengthEncodedInteger decodes a length-encoded integer (§4.2) from the
// front of data, returning its value, whether it represented SQL NULL
// (0xfb), and the number of bytes consumed.
func readLengthEncodedInteger(data []byte) (num uint64, isNull bool, n int, err error) {
	if len(data) == 0 {
		return 0, false, 0, fmt.Errorf("%w: empty length-encoded integer", errMalformedPacket)
	}
	switch data[0] {
	case 0xfb:
		return 0, true, 1, nil
	case 0xfc:
		if len(data) < 3 {
			return 0, false, 0, fmt.Errorf("%w: short length-encoded integer", errMalformedPacket)
		}
		return uint64(binary.LittleEndian.Uint16(data[1:3])), false, 3, nil
	case 0xfd:
		if len(data) < 4 {
			return 0, false, 0, fmt.Errorf("%w: short length-encoded integer", errMalformedPacket)
		}
		return uint64(data[1]) | uint64(data[2])<<8 | uint64(data[3])<<16, false, 4, nil
	case 0xfe:
		if len(data) < 9 {
			return 0, false, 0, fmt.Errorf("%w: short length-encoded integer", errMalformedPacket)
		}
		return binary.LittleEndian.Uint64(data[1:9]), false, 9, nil
	default:
		return uint64(data[0]), false, 1, nil
	}
}

// appendLengthEncodedInteger appends the length-encoded form of n to dst.
func appendLengthEncodedInteger(dst []byte, n uint64) []byte {
	switch {
	case n <= 250:
		return append(dst, byte(n))
	case n <= 0xffff:
		return append(dst, 0xfc, byte(n), byte(n>>8))
	case n <= 0xffffff:
		return append(dst, 0xfd, byte(n), byte(n>>8), byte(n>>16))
	default:
		b := make([]byte, 9)
		b[0] = 0xfe
		binary.LittleEndian.PutUint64(b[1:], n)
		return append(dst, b...)
	}
}

// readLengthEncodedString decodes a length-encoded string (§4.2): a
// length-encoded integer length followed by that many bytes, or 0xfb for
// SQL NULL.
func readLengthEncodedString(data []byte) (b []byte, isNull bool, n int, err error) {
	num, isNull, n, err := readLengthEncodedInteger(data)
	if err != nil || isNull {
		return nil, isNull, n, err
	}
	if uint64(len(data)) < uint64(n)+num {
		return nil, false, n, fmt.Errorf("%w: truncated length-encoded string", errMalformedPacket)
	}
	return data[n : n+int(num)], false, n + int(num), nil
}

// skipLengthEncodedString returns the number of bytes the next
// length-encoded string occupies, without allocating a copy of it.
func skipLengthEncodedString(data []byte) (n int, err error) {
	num, isNull, n, err := readLengthEncodedInteger(data)
	if err != nil || isNull {
		return n, err
	}
	if uint64(len(data)) < uint64(n)+num {
		return n, fmt.Errorf("%w: truncated length-encoded string", errMalformedPacket)
	}
	return n + int(num), nil
}

// appendLengthEncodedString appends the length-encoded form of s to dst.
func appendLengthEncodedString(dst []byte, s []byte) []byte {
	dst = appendLengthEncodedInteger(dst, uint64(len(s)))
	return append(dst, s...)
}

func uint24ToBytes(n uint32) []byte {
	return []byte{byte(n), byte(n >> 8), byte(n >> 16)}
}

func uint32ToBytes(n uint32) []byte {
	b := make([]byte, 4)
	binary.LittleEndian.PutUint32(b, n)
	return b
}

func uint64ToBytes(n uint64) []byte {
	b := make([]byte, 8)
	binary.LittleEndian.PutUint64(b, n)
	return b
}

// zeroFill left-pads b with '0' bytes until it reaches width, matching the
// ZEROFILL column-flag decoding rule in §4.2.
func zeroFill(b []byte, width int) []byte {
	if len(b) >= width {
		return b
	}
	out := make([]byte, width)
	pad := width - len(b)
	for i := 0; i < pad; i++ {
		out[i] = '0'
	}
	copy(out[pad:], b)
	return out
}
