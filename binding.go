// Go MySQL Driver - A MySQL-Driver for Go's database/sql package
//
// Copyright 2023 The Go-MySQL-Driver Authors. All rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at http://mozilla.org/MPL/2.0/.

package mysql

import "fmt"

type paramValue struct {
	value any
	host  HostKind
	null  bool
}

// Binding is a dense mapping from prepared-statement parameter index to an
// encoded value (§3). validate must run before the binding is submitted in
// a COM_STMT_EXECUTE.
type Binding struct {
	values []paramValue
	bound  []bool
}

// NewBinding allocates a Binding for a statement declaring size parameters.
func NewBinding(size int) *Binding {
	return &Binding{
		values: make([]paramValue, size),
		bound:  make([]bool, size),
	}
}

// Set assigns a non-null value and its host-type tag to parameter index.
func (b *Binding) Set(index int, value any, host HostKind) {
	b.values[index] = paramValue{value: value, host: host}
	b.bound[index] = true
}

// SetNull marks parameter index as SQL NULL.
func (b *Binding) SetNull(index int) {
	b.values[index] = paramValue{null: true}
	b.bound[index] = true
}

// validate reports ErrBindingIncomplete if any declared index in
// [0, len(values)) was never bound.
func (b *Binding) validate() error {
	for i, ok := range b.bound {
		if !ok {
			return fmt.Errorf("mysql: parameter %d: %w", i, ErrBindingIncomplete)
		}
	}
	return nil
}

// nullBitmap builds the COM_STMT_EXECUTE null bitmap: ceil(paramCount/8)
// bytes, bit i set when parameter i is null (§4.2, no offset for this
// bitmap: unlike the binary row bitmap, it is not shifted by 2).
func (b *Binding) nullBitmap() []byte {
	bitmap := make([]byte, (len(b.values)+7)/8)
	for i, v := range b.values {
		if v.null {
			bitmap[i/8] |= 1 << uint(i%8)
		}
	}
	return bitmap
}

// wireTypeForHost maps a bound parameter's host kind to the column type
// and unsigned flag advertised in COM_STMT_EXECUTE's per-parameter type
// list (§4.2 "Binary encoding emits fixed-width LE for integers...").
func wireTypeForHost(host HostKind) (ColumnType, bool) {
	switch host {
	case HostBool:
		return TypeTiny, true
	// integerCodec.EncodeBinary always writes the 8-byte form, so every
	// integer host kind is advertised as LONGLONG.
	case HostInt8, HostInt16, HostInt32, HostInt64, HostBigInt:
		return TypeLongLong, false
	case HostUint8, HostUint16, HostUint32, HostUint64:
		return TypeLongLong, true
	case HostFloat32:
		return TypeFloat, false
	case HostFloat64:
		return TypeDouble, false
	case HostDecimal:
		return TypeNewDecimal, false
	case HostTime:
		return TypeDateTime, false
	case HostDuration:
		return TypeTime, false
	case HostBytes:
		return TypeBLOB, false
	default: // HostAny, HostString
		return TypeVarString, false
	}
}

// encodeTypes appends the 2-byte (type, unsigned-flag) pair for every
// parameter, in order, used when the "new params bound" flag is set.
func (b *Binding) encodeTypes(dst []byte) []byte {
	for _, v := range b.values {
		t, unsigned := wireTypeForHost(v.host)
		flag := byte(0)
		if unsigned {
			flag = 0x80
		}
		dst = append(dst, byte(t), flag)
	}
	return dst
}

// encodeValues appends the binary-encoded form of every non-null
// parameter, in order, via the codec registry.
func (b *Binding) encodeValues(dst []byte, registry *CodecRegistry, ctx *Context) ([]byte, error) {
	for i, v := range b.values {
		if v.null {
			continue
		}
		var err error
		dst, err = registry.EncodeBinary(dst, v.value, v.host, ctx)
		if err != nil {
			return nil, fmt.Errorf("mysql: encoding parameter %d: %w", i, err)
		}
	}
	return dst, nil
}
