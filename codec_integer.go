// Go MySQL Driver - A MySQL-Driver for Go's database/sql package
//
// Copyright 2023 The Go-MySQL-Driver Authors. All rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at http://mozilla.org/MPL/2.0/.

package mysql

import (
	"encoding/binary"
	"fmt"
	"math/big"
	"strconv"

	"github.com/shopspring/decimal"
)

// integerCodec handles TINYINT/SMALLINT/MEDIUMINT/INT/BIGINT/YEAR, signed or
// unsigned per the column's FlagUnsigned bit (§4.2).
type integerCodec struct{}

func (integerCodec) Name() string { return "integer" }

// isIntegerWireType reports the column types the integer codec owns,
// including BIT (read as a big-endian unsigned integer, §4.2).
func isIntegerWireType(t ColumnType) bool {
	switch t {
	case TypeTiny, TypeShort, TypeInt24, TypeLong, TypeLongLong, TypeYear, TypeBit:
		return true
	}
	return false
}

func (integerCodec) isIntegerColumn(t ColumnType) bool { return isIntegerWireType(t) }

func (c integerCodec) CanDecode(col ColumnDefinition, host HostKind) bool {
	if !c.isIntegerColumn(col.Type) {
		return false
	}
	switch host {
	case HostAny, HostInt8, HostInt16, HostInt32, HostInt64,
		HostUint8, HostUint16, HostUint32, HostUint64, HostBigInt:
		return true
	}
	return false
}

func (integerCodec) CanEncode(host HostKind) bool {
	switch host {
	case HostInt8, HostInt16, HostInt32, HostInt64,
		HostUint8, HostUint16, HostUint32, HostUint64, HostBigInt:
		return true
	}
	return false
}

// widthOf returns the binary-protocol field width for a column's integer
// wire type (§4.2 binary row layout).
func (integerCodec) widthOf(t ColumnType) int {
	switch t {
	case TypeTiny:
		return 1
	case TypeShort, TypeYear:
		return 2
	case TypeInt24, TypeLong:
		return 4
	case TypeLongLong:
		return 8
	}
	return 0
}

// bitBytesToUint64 interprets raw as a big-endian unsigned integer,
// left-padded with zeros (§4.2 "BIT is read as big-endian of length bytes").
func bitBytesToUint64(raw []byte) uint64 {
	var v uint64
	for _, b := range raw {
		v = v<<8 | uint64(b)
	}
	return v
}

// normalizeYear applies the two-digit YEAR mapping: with a declared display
// width of 2, values <= 69 are 2000+n, otherwise 1900+n (§4.2).
func normalizeYear(raw uint16, displayWidth uint32) uint64 {
	if displayWidth == 2 {
		if raw <= 69 {
			return uint64(2000 + raw)
		}
		return uint64(1900 + raw)
	}
	return uint64(raw)
}

func (c integerCodec) DecodeText(data []byte, col ColumnDefinition, _ *Context) (any, error) {
	if col.Type == TypeBit {
		return bitBytesToUint64(data), nil
	}
	s := string(data)
	if col.Type == TypeYear {
		u, err := strconv.ParseUint(s, 10, 16)
		if err != nil {
			return nil, fmt.Errorf("mysql: decoding year column %q: %w", col.Name, err)
		}
		return normalizeYear(uint16(u), col.DisplayWidth), nil
	}
	if col.Flags.Has(FlagUnsigned) {
		u, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("mysql: decoding integer column %q: %w", col.Name, err)
		}
		return u, nil
	}
	i, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("mysql: decoding integer column %q: %w", col.Name, err)
	}
	return i, nil
}

func (c integerCodec) DecodeBinary(data []byte, col ColumnDefinition, _ *Context) (any, int, error) {
	if col.Type == TypeBit {
		raw, isNull, n, err := readLengthEncodedString(data)
		if err != nil {
			return nil, 0, err
		}
		if isNull {
			return nil, n, nil
		}
		return bitBytesToUint64(raw), n, nil
	}

	width := c.widthOf(col.Type)
	if width == 0 {
		return nil, 0, fmt.Errorf("%w: unsupported integer wire type %d", errMalformedPacket, col.Type)
	}
	if len(data) < width {
		return nil, 0, fmt.Errorf("%w: short integer field", errMalformedPacket)
	}
	unsigned := col.Flags.Has(FlagUnsigned)
	switch width {
	case 1:
		if unsigned {
			return uint64(data[0]), 1, nil
		}
		return int64(int8(data[0])), 1, nil
	case 2:
		u := binary.LittleEndian.Uint16(data)
		if col.Type == TypeYear {
			return normalizeYear(u, col.DisplayWidth), 2, nil
		}
		if unsigned {
			return uint64(u), 2, nil
		}
		return int64(int16(u)), 2, nil
	case 4:
		u := binary.LittleEndian.Uint32(data)
		if unsigned {
			return uint64(u), 4, nil
		}
		return int64(int32(u)), 4, nil
	case 8:
		u := binary.LittleEndian.Uint64(data)
		if unsigned {
			return u, 8, nil
		}
		return int64(u), 8, nil
	}
	return nil, 0, fmt.Errorf("%w: unreachable integer width", errMalformedPacket)
}

// convertToHost narrows any codec's natural decode result to the host kind
// the caller requested, reporting overflow rather than silently truncating
// (§4.2). HostAny and an already-matching type pass through unchanged.
func convertToHost(v any, host HostKind) (any, error) {
	if host == HostAny {
		return v, nil
	}
	switch t := v.(type) {
	case int64:
		return convertSignedToHost(t, host)
	case uint64:
		return convertUnsignedToHost(t, host)
	case *big.Int:
		if host == HostBigInt {
			return t, nil
		}
		if t.IsInt64() {
			return convertSignedToHost(t.Int64(), host)
		}
		if t.IsUint64() {
			return convertUnsignedToHost(t.Uint64(), host)
		}
		return nil, fmt.Errorf("mysql: value %s exceeds 64 bits, cannot narrow to host kind %d", t.String(), host)
	case float64:
		if host == HostFloat32 {
			return float32(t), nil
		}
		return t, nil
	case decimal.Decimal:
		switch host {
		case HostString:
			return t.String(), nil
		case HostFloat64:
			f, _ := t.Float64()
			return f, nil
		default:
			return t, nil
		}
	case []byte:
		if host == HostString {
			return string(t), nil
		}
		return t, nil
	default:
		// the remaining natural types (string, bool, time.Time,
		// time.Duration) are already the one
		// representation their codec produces; host kind only selects
		// which codec runs, not a further narrowing.
		return v, nil
	}
}

// convertSignedToHost coerces a decoded int64 into the exact host type the
// caller asked for, reporting overflow (§4.2 "decode(...) must fail rather
// than silently truncate when the host type cannot hold the value").
func convertSignedToHost(v int64, host HostKind) (any, error) {
	switch host {
	case HostAny, HostInt64:
		return v, nil
	case HostInt8:
		if v < -128 || v > 127 {
			return nil, fmt.Errorf("mysql: value %d overflows int8", v)
		}
		return int8(v), nil
	case HostInt16:
		if v < -32768 || v > 32767 {
			return nil, fmt.Errorf("mysql: value %d overflows int16", v)
		}
		return int16(v), nil
	case HostInt32:
		if v < -2147483648 || v > 2147483647 {
			return nil, fmt.Errorf("mysql: value %d overflows int32", v)
		}
		return int32(v), nil
	case HostUint8, HostUint16, HostUint32, HostUint64:
		if v < 0 {
			return nil, fmt.Errorf("mysql: value %d cannot convert to unsigned host type", v)
		}
		return convertUnsignedToHost(uint64(v), host)
	case HostBigInt:
		return big.NewInt(v), nil
	}
	return nil, fmt.Errorf("mysql: cannot decode integer into host kind %d", host)
}

func convertUnsignedToHost(v uint64, host HostKind) (any, error) {
	switch host {
	case HostAny, HostUint64:
		return v, nil
	case HostUint8:
		if v > 255 {
			return nil, fmt.Errorf("mysql: value %d overflows uint8", v)
		}
		return uint8(v), nil
	case HostUint16:
		if v > 65535 {
			return nil, fmt.Errorf("mysql: value %d overflows uint16", v)
		}
		return uint16(v), nil
	case HostUint32:
		if v > 4294967295 {
			return nil, fmt.Errorf("mysql: value %d overflows uint32", v)
		}
		return uint32(v), nil
	case HostInt8, HostInt16, HostInt32, HostInt64:
		if v > 1<<63-1 {
			return nil, fmt.Errorf("mysql: value %d cannot convert to signed host type", v)
		}
		return convertSignedToHost(int64(v), host)
	case HostBigInt:
		return new(big.Int).SetUint64(v), nil
	}
	return nil, fmt.Errorf("mysql: cannot decode integer into host kind %d", host)
}

func (integerCodec) EncodeText(dst []byte, value any, _ *Context) ([]byte, error) {
	switch v := value.(type) {
	case int64:
		return strconv.AppendInt(dst, v, 10), nil
	case uint64:
		return strconv.AppendUint(dst, v, 10), nil
	case int:
		return strconv.AppendInt(dst, int64(v), 10), nil
	case *big.Int:
		return append(dst, v.String()...), nil
	default:
		return nil, fmt.Errorf("mysql: integer codec cannot encode %T", value)
	}
}

func (integerCodec) EncodeBinary(dst []byte, value any, _ *Context) ([]byte, error) {
	switch v := value.(type) {
	case int64:
		return append(dst, uint64ToBytes(uint64(v))...), nil
	case uint64:
		return append(dst, uint64ToBytes(v)...), nil
	case int:
		return append(dst, uint64ToBytes(uint64(int64(v)))...), nil
	case *big.Int:
		if !v.IsInt64() && !v.IsUint64() {
			return nil, fmt.Errorf("mysql: big.Int %s exceeds 64 bits, cannot bind as integer parameter", v.String())
		}
		return append(dst, uint64ToBytes(v.Uint64())...), nil
	default:
		return nil, fmt.Errorf("mysql: integer codec cannot encode %T", value)
	}
}
