// Go MySQL Driver - A MySQL-Driver for Go's database/sql package
//
// Copyright 2023 The Go-MySQL-Driver Authors. All rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at http://mozilla.org/MPL/2.0/.

package mysql

import "fmt"

// Server message marker bytes (§4.3).
const (
	iOK           byte = 0x00
	iEOF          byte = 0xfe
	iERR          byte = 0xff
	iLocalInFile  byte = 0xfb
	iAuthMoreData byte = 0x01
)

// OKResult is a parsed OK packet (§4.3).
type OKResult struct {
	AffectedRows     uint64
	LastInsertID     uint64
	StatusFlags      uint16
	WarningCount     uint16
	Info             string
	SessionStateInfo []byte
}

// isOKPacket reports whether data begins an OK packet (0x00 marker). With CLIENT_DEPRECATE_EOF, OK also terminates result
// sets where a plain EOF would otherwise appear (§4.3).
func isOKPacket(data []byte) bool {
	return len(data) > 0 && data[0] == iOK
}

// isEOFPacket reports whether data is a (legacy, non-deprecated-EOF) EOF
// packet: marker byte 0xfe and a body short enough that it cannot be an OK
// or ERR packet mistaken for one (§4.3).
func isEOFPacket(data []byte) bool {
	return len(data) > 0 && data[0] == iEOF && len(data) < 9
}

func isErrPacket(data []byte) bool {
	return len(data) > 0 && data[0] == iERR
}

func isLocalInFilePacket(data []byte) bool {
	return len(data) > 0 && data[0] == iLocalInFile
}

func isAuthMoreDataPacket(data []byte) bool {
	return len(data) > 0 && data[0] == iAuthMoreData
}

// parseOK decodes an OK packet body (§4.3); the leading 0x00/0xfe marker is
// assumed already stripped by the caller.
func parseOK(body []byte, capabilities Capability) (*OKResult, error) {
	res := &OKResult{}
	pos := 0

	affected, _, n, err := readLengthEncodedInteger(body[pos:])
	if err != nil {
		return nil, fmt.Errorf("mysql: decoding OK packet: %w", err)
	}
	res.AffectedRows = affected
	pos += n

	insertID, _, n, err := readLengthEncodedInteger(body[pos:])
	if err != nil {
		return nil, fmt.Errorf("mysql: decoding OK packet: %w", err)
	}
	res.LastInsertID = insertID
	pos += n

	if capabilities.Has(clientProtocol41) {
		if len(body) < pos+4 {
			return nil, fmt.Errorf("%w: short OK packet", errMalformedPacket)
		}
		res.StatusFlags = uint16(body[pos]) | uint16(body[pos+1])<<8
		res.WarningCount = uint16(body[pos+2]) | uint16(body[pos+3])<<8
		pos += 4
	} else if capabilities.Has(clientTransactions) {
		if len(body) < pos+2 {
			return nil, fmt.Errorf("%w: short OK packet", errMalformedPacket)
		}
		res.StatusFlags = uint16(body[pos]) | uint16(body[pos+1])<<8
		pos += 2
	}

	if pos >= len(body) {
		return res, nil
	}

	if capabilities.Has(clientSessionTrack) {
		info, _, n, err := readLengthEncodedString(body[pos:])
		if err != nil {
			return nil, fmt.Errorf("mysql: decoding OK packet info: %w", err)
		}
		res.Info = string(info)
		pos += n
		if res.StatusFlags&statusSessionStateChanged != 0 && pos < len(body) {
			state, _, _, err := readLengthEncodedString(body[pos:])
			if err != nil {
				return nil, fmt.Errorf("mysql: decoding OK packet session state: %w", err)
			}
			res.SessionStateInfo = state
		}
		return res, nil
	}

	res.Info = string(body[pos:])
	return res, nil
}

const statusSessionStateChanged uint16 = 0x4000

// parseEOF decodes an EOF packet body (§4.3).
func parseEOF(body []byte, capabilities Capability) (warnings uint16, status uint16, err error) {
	if !capabilities.Has(clientProtocol41) {
		return 0, 0, nil
	}
	if len(body) < 4 {
		return 0, 0, fmt.Errorf("%w: short EOF packet", errMalformedPacket)
	}
	warnings = uint16(body[0]) | uint16(body[1])<<8
	status = uint16(body[2]) | uint16(body[3])<<8
	return warnings, status, nil
}

// readColumnCount reads the length-encoded column count that precedes a
// result set's column-definition packets (§4.3).
func readColumnCount(data []byte) (uint64, error) {
	n, isNull, _, err := readLengthEncodedInteger(data)
	if err != nil {
		return 0, err
	}
	if isNull {
		return 0, fmt.Errorf("%w: null column count", errMalformedPacket)
	}
	return n, nil
}

// TextRow is one text-protocol row: each entry is the raw column bytes, or
// nil for SQL NULL (§4.3).
type TextRow [][]byte

// parseTextRow decodes a text-protocol row packet body into numCols raw
// column values.
func parseTextRow(data []byte, numCols int) (TextRow, error) {
	row := make(TextRow, numCols)
	pos := 0
	for i := 0; i < numCols; i++ {
		b, isNull, n, err := readLengthEncodedString(data[pos:])
		if err != nil {
			return nil, fmt.Errorf("mysql: decoding text row column %d: %w", i, err)
		}
		if !isNull {
			row[i] = append([]byte(nil), b...)
		}
		pos += n
	}
	return row, nil
}

// parseBinaryRow decodes a binary-protocol row packet body: leading 0x00,
// a null bitmap of ceil((numCols+2)/8) bytes offset by 2, then columns
// concatenated with type-specific widths (§4.3). Each non-null column is
// decoded immediately through the registry since binary widths are
// type-dependent and only the codec knows how many bytes to consume.
func parseBinaryRow(data []byte, columns []ColumnDefinition, hosts []HostKind, registry *CodecRegistry, ctx *Context) ([]any, error) {
	if len(data) < 1 || data[0] != 0x00 {
		return nil, fmt.Errorf("%w: binary row missing leading 0x00", errMalformedPacket)
	}
	numCols := len(columns)
	bitmapLen := (numCols + 7 + 2) / 8
	if len(data) < 1+bitmapLen {
		return nil, fmt.Errorf("%w: truncated binary row null bitmap", errMalformedPacket)
	}
	bitmap := data[1 : 1+bitmapLen]
	pos := 1 + bitmapLen

	values := make([]any, numCols)
	for i, col := range columns {
		bit := uint(i + 2)
		isNull := bitmap[bit/8]&(1<<(bit%8)) != 0
		if isNull {
			values[i] = nil
			continue
		}
		host := HostAny
		if i < len(hosts) {
			host = hosts[i]
		}
		v, n, err := registry.DecodeBinary(data[pos:], col, host, ctx)
		if err != nil {
			return nil, fmt.Errorf("mysql: decoding binary row column %q: %w", col.Name, err)
		}
		values[i] = v
		pos += n
	}
	return values, nil
}
