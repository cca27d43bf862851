// Go MySQL Driver - A MySQL-Driver for Go's database/sql package
//
// Copyright 2023 The Go-MySQL-Driver Authors. All rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at http://mozilla.org/MPL/2.0/.

package mysql

import (
	"fmt"
	"strings"
)

// stringCodec is the catch-all string representation: plain VARCHAR/CHAR/
// ENUM/SET/JSON columns read raw UTF-8, but it also owns the special string
// renderings of BIT, zero-filled integers, and temporal values, since those
// renderings only apply when a caller specifically asks for HostString
// (§4.2 "String" decoding rules).
type stringCodec struct{}

func (stringCodec) Name() string { return "string" }

func isPlainStringWireType(t ColumnType) bool {
	switch t {
	case TypeVarChar, TypeVarString, TypeString, TypeEnum, TypeSet, TypeJSON, TypeDecimal, TypeNewDecimal:
		return true
	}
	return false
}

func (stringCodec) CanDecode(col ColumnDefinition, host HostKind) bool {
	if host == HostString {
		return isPlainStringWireType(col.Type) || isIntegerWireType(col.Type) || isDateLikeColumn(col.Type) || col.Type == TypeTime
	}
	if host == HostAny {
		return isPlainStringWireType(col.Type)
	}
	return false
}

func (stringCodec) CanEncode(host HostKind) bool { return host == HostString }

// bitBytesToBitString renders raw big-endian BIT bytes as `b'...'`: leading
// all-zero bytes are skipped entirely, the leading zero bits of the first
// non-zero byte are stripped, and every byte after that keeps all 8 bits
// (§9 open question, preserved literally).
func bitBytesToBitString(raw []byte) string {
	i := 0
	for i < len(raw) && raw[i] == 0 {
		i++
	}
	if i == len(raw) {
		return "b'0'"
	}
	var b strings.Builder
	b.WriteString("b'")
	b.WriteString(strings.TrimLeft(fmt.Sprintf("%08b", raw[i]), "0"))
	for _, byt := range raw[i+1:] {
		fmt.Fprintf(&b, "%08b", byt)
	}
	b.WriteByte('\'')
	return b.String()
}

// zeroFillIntegerText pads a decoded integer's decimal text to the
// column's display width with leading zeros, honoring a leading sign
// (§4.2 "TINY/SHORT/MEDIUM/INT/BIG integers honor zero-fill").
func zeroFillIntegerText(s string, col ColumnDefinition) string {
	if !col.Flags.Has(FlagZerofill) {
		return s
	}
	neg := strings.HasPrefix(s, "-")
	digits := strings.TrimPrefix(s, "-")
	padded := string(zeroFill([]byte(digits), int(col.DisplayWidth)))
	if neg {
		return "-" + padded
	}
	return padded
}

func (stringCodec) DecodeText(data []byte, col ColumnDefinition, ctx *Context) (any, error) {
	switch {
	case col.Type == TypeBit:
		return bitBytesToBitString(data), nil
	case isIntegerWireType(col.Type):
		v, err := (integerCodec{}).DecodeText(data, col, ctx)
		if err != nil {
			return nil, err
		}
		return zeroFillIntegerText(fmt.Sprint(v), col), nil
	case isDateLikeColumn(col.Type) || col.Type == TypeTime:
		v, err := (temporalCodec{}).DecodeText(data, col, ctx)
		if err != nil {
			return nil, err
		}
		return canonicalTemporalText(v)
	default:
		return string(data), nil
	}
}

func (stringCodec) DecodeBinary(data []byte, col ColumnDefinition, ctx *Context) (any, int, error) {
	switch {
	case col.Type == TypeBit:
		raw, isNull, n, err := readLengthEncodedString(data)
		if err != nil {
			return nil, 0, err
		}
		if isNull {
			return nil, n, nil
		}
		return bitBytesToBitString(raw), n, nil
	case isIntegerWireType(col.Type):
		v, n, err := (integerCodec{}).DecodeBinary(data, col, ctx)
		if err != nil {
			return nil, 0, err
		}
		return zeroFillIntegerText(fmt.Sprint(v), col), n, nil
	case isDateLikeColumn(col.Type) || col.Type == TypeTime:
		v, n, err := (temporalCodec{}).DecodeBinary(data, col, ctx)
		if err != nil {
			return nil, 0, err
		}
		s, err := canonicalTemporalText(v)
		if err != nil {
			return nil, 0, err
		}
		return s, n, nil
	default:
		s, isNull, n, err := readLengthEncodedString(data)
		if err != nil {
			return nil, 0, err
		}
		if isNull {
			return nil, n, nil
		}
		return string(s), n, nil
	}
}

func (stringCodec) EncodeText(dst []byte, value any, ctx *Context) ([]byte, error) {
	s, ok := value.(string)
	if !ok {
		return nil, fmt.Errorf("mysql: string codec cannot encode %T", value)
	}
	return appendEscapedLiteral(dst, s, ctx != nil && ctx.NoBackslashEscapes), nil
}

func (stringCodec) EncodeBinary(dst []byte, value any, _ *Context) ([]byte, error) {
	s, ok := value.(string)
	if !ok {
		return nil, fmt.Errorf("mysql: string codec cannot encode %T", value)
	}
	return appendLengthEncodedString(dst, []byte(s)), nil
}
