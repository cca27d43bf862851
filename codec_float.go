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
	"math"
	"strconv"
)

// floatCodec handles FLOAT and DOUBLE (§4.2).
type floatCodec struct{}

func (floatCodec) Name() string { return "float" }

func (floatCodec) CanDecode(col ColumnDefinition, host HostKind) bool {
	if col.Type != TypeFloat && col.Type != TypeDouble {
		return false
	}
	switch host {
	case HostAny, HostFloat32, HostFloat64:
		return true
	}
	return false
}

func (floatCodec) CanEncode(host HostKind) bool {
	return host == HostFloat32 || host == HostFloat64
}

func (floatCodec) DecodeText(data []byte, col ColumnDefinition, _ *Context) (any, error) {
	bitSize := 64
	if col.Type == TypeFloat {
		bitSize = 32
	}
	f, err := strconv.ParseFloat(string(data), bitSize)
	if err != nil {
		return nil, fmt.Errorf("mysql: decoding float column %q: %w", col.Name, err)
	}
	return f, nil
}

func (floatCodec) DecodeBinary(data []byte, col ColumnDefinition, _ *Context) (any, int, error) {
	switch col.Type {
	case TypeFloat:
		if len(data) < 4 {
			return nil, 0, fmt.Errorf("%w: short FLOAT field", errMalformedPacket)
		}
		bits := binary.LittleEndian.Uint32(data)
		return float64(math.Float32frombits(bits)), 4, nil
	case TypeDouble:
		if len(data) < 8 {
			return nil, 0, fmt.Errorf("%w: short DOUBLE field", errMalformedPacket)
		}
		bits := binary.LittleEndian.Uint64(data)
		return math.Float64frombits(bits), 8, nil
	}
	return nil, 0, fmt.Errorf("%w: unsupported float wire type %d", errMalformedPacket, col.Type)
}

func (floatCodec) EncodeText(dst []byte, value any, _ *Context) ([]byte, error) {
	switch v := value.(type) {
	case float32:
		return strconv.AppendFloat(dst, float64(v), 'g', -1, 32), nil
	case float64:
		return strconv.AppendFloat(dst, v, 'g', -1, 64), nil
	default:
		return nil, fmt.Errorf("mysql: float codec cannot encode %T", value)
	}
}

func (floatCodec) EncodeBinary(dst []byte, value any, _ *Context) ([]byte, error) {
	switch v := value.(type) {
	case float32:
		b := make([]byte, 4)
		binary.LittleEndian.PutUint32(b, math.Float32bits(v))
		return append(dst, b...), nil
	case float64:
		b := make([]byte, 8)
		binary.LittleEndian.PutUint64(b, math.Float64bits(v))
		return append(dst, b...), nil
	default:
		return nil, fmt.Errorf("mysql: float codec cannot encode %T", value)
	}
}
