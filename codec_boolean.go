// Go MySQL Driver - A MySQL-Driver for Go's database/sql package
//
// Copyright 2023 The Go-MySQL-Driver Authors. All rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at http://mozilla.org/MPL/2.0/.

package mysql

import "fmt"

// booleanCodec only ever runs when a caller explicitly asks for HostBool;
// the wire has no BOOLEAN type of its own (MySQL maps BOOL to TINYINT(1)),
// so without an explicit host request the integer codec handles TINYINT
// columns instead (§4.2, §9 "no boolean wire type"). True iff the value is
// non-zero numerically, or textually not equal to the string "0".
type booleanCodec struct{}

func (booleanCodec) Name() string { return "boolean" }

func (booleanCodec) CanDecode(col ColumnDefinition, host HostKind) bool {
	return host == HostBool && col.Type == TypeTiny
}

func (booleanCodec) CanEncode(host HostKind) bool { return host == HostBool }

func (booleanCodec) DecodeText(data []byte, _ ColumnDefinition, _ *Context) (any, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty boolean column", errMalformedPacket)
	}
	return string(data) != "0", nil
}

func (booleanCodec) DecodeBinary(data []byte, _ ColumnDefinition, _ *Context) (any, int, error) {
	if len(data) < 1 {
		return nil, 0, fmt.Errorf("%w: short boolean field", errMalformedPacket)
	}
	return data[0] != 0, 1, nil
}

func (booleanCodec) EncodeText(dst []byte, value any, _ *Context) ([]byte, error) {
	b, ok := value.(bool)
	if !ok {
		return nil, fmt.Errorf("mysql: boolean codec cannot encode %T", value)
	}
	if b {
		return append(dst, '1'), nil
	}
	return append(dst, '0'), nil
}

func (booleanCodec) EncodeBinary(dst []byte, value any, _ *Context) ([]byte, error) {
	b, ok := value.(bool)
	if !ok {
		return nil, fmt.Errorf("mysql: boolean codec cannot encode %T", value)
	}
	if b {
		return append(dst, 1), nil
	}
	return append(dst, 0), nil
}
