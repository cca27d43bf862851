// Go MySQL Driver - A MySQL-Driver for Go's database/sql package
//
// Copyright 2023 The Go-MySQL-Driver Authors. All rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at http://mozilla.org/MPL/2.0/.

package mysql

import (
	"bytes"
	"fmt"

	"github.com/shopspring/decimal"
)

// decimalCodec handles DECIMAL/NUMERIC columns (§4.2). The server only ever
// sends DECIMAL in text form, on both the text and binary protocols, so
// there is no fixed-width binary layout to parse, only a length-encoded
// ASCII string.
type decimalCodec struct{}

func (decimalCodec) Name() string { return "decimal" }

func (decimalCodec) CanDecode(col ColumnDefinition, host HostKind) bool {
	if col.Type != TypeDecimal && col.Type != TypeNewDecimal {
		return false
	}
	switch host {
	case HostAny, HostDecimal, HostString, HostFloat64:
		return true
	}
	return false
}

func (decimalCodec) CanEncode(host HostKind) bool {
	return host == HostDecimal
}

func (decimalCodec) DecodeText(data []byte, col ColumnDefinition, _ *Context) (any, error) {
	d, err := decimal.NewFromString(string(data))
	if err != nil {
		return nil, fmt.Errorf("mysql: decoding decimal column %q: %w", col.Name, err)
	}
	return d, nil
}

// DecodeBinary decodes DECIMAL exactly like the text protocol: the binary
// row format still sends it as a length-encoded ASCII string (§4.2).
func (c decimalCodec) DecodeBinary(data []byte, col ColumnDefinition, ctx *Context) (any, int, error) {
	s, isNull, n, err := readLengthEncodedString(data)
	if err != nil {
		return nil, 0, err
	}
	if isNull {
		return nil, n, nil
	}
	v, err := c.DecodeText(s, col, ctx)
	if err != nil {
		return nil, 0, err
	}
	return v, n, nil
}

func (decimalCodec) EncodeText(dst []byte, value any, _ *Context) ([]byte, error) {
	d, ok := value.(decimal.Decimal)
	if !ok {
		return nil, fmt.Errorf("mysql: decimal codec cannot encode %T", value)
	}
	return append(dst, d.String()...), nil
}

func (decimalCodec) EncodeBinary(dst []byte, value any, _ *Context) ([]byte, error) {
	d, ok := value.(decimal.Decimal)
	if !ok {
		return nil, fmt.Errorf("mysql: decimal codec cannot encode %T", value)
	}
	var buf bytes.Buffer
	buf.WriteString(d.String())
	return appendLengthEncodedString(dst, buf.Bytes()), nil
}
