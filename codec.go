// Go MySQL Driver - A MySQL-Driver for Go's database/sql package
//
// Copyright 2023 The Go-MySQL-Driver Authors. All rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at http://mozilla.org/MPL/2.0/.

package mysql

import "fmt"

// HostKind names the Go-side type a caller wants a column decoded into, or
// that a bound parameter already is (§4.2 "(host type, server data type)").
type HostKind int

const (
	HostAny HostKind = iota // codec picks its natural representation
	HostInt8
	HostInt16
	HostInt32
	HostInt64
	HostUint8
	HostUint16
	HostUint32
	HostUint64
	HostBigInt // math/big.Int semantics, unbounded
	HostFloat32
	HostFloat64
	HostDecimal
	HostString
	HostBytes
	HostBool
	HostTime     // calendar date/time (DATE, DATETIME, TIMESTAMP)
	HostDuration // TIME, represented as a signed offset from midnight
)

// Codec is the four-method contract from §4.2, split into text/binary
// decode and encode so each side can own its own wire-format detail
// instead of branching on a bool throughout.
type Codec interface {
	Name() string
	CanDecode(col ColumnDefinition, host HostKind) bool
	CanEncode(host HostKind) bool

	// DecodeText parses data (a text-protocol column value with its
	// length-encoding already stripped by the caller) into a host value.
	DecodeText(data []byte, col ColumnDefinition, ctx *Context) (value any, err error)

	// DecodeBinary parses a binary-protocol row's remaining bytes starting
	// at data[0], returning the decoded value and how many bytes it
	// consumed (binary fields are fixed- or variable-width per type, so
	// the caller cannot know the boundary without asking the codec).
	DecodeBinary(data []byte, col ColumnDefinition, ctx *Context) (value any, consumed int, err error)

	// EncodeText appends value as a text-protocol SQL literal: the numeric
	// and boolean codecs append the bare value, the others a single-quoted,
	// escaped literal.
	EncodeText(dst []byte, value any, ctx *Context) ([]byte, error)

	// EncodeBinary appends value in prepared-binary-parameter form (no
	// length prefix for fixed-width types; length-encoded for variable
	// width). Nulls never reach here, callers route them through the
	// client-request null bitmap instead (§4.2).
	EncodeBinary(dst []byte, value any, ctx *Context) ([]byte, error)
}

// CodecRegistry resolves a Codec by linear scan over an ordered list; the
// first matching codec wins (§4.2, §9 "global codec list ordering
// determines resolution tie-breaks").
type CodecRegistry struct {
	codecs []Codec
}

// NewCodecRegistry builds the registry with the engine's stable codec
// order: boolean before integral (so bool-typed columns don't fall through
// to the integer codec), then integral, float, decimal, temporal, blob,
// and finally string as the catch-all. Decimal precedes string so DECIMAL
// columns, which the string codec also accepts, resolve to the decimal
// codec.
func NewCodecRegistry() *CodecRegistry {
	return &CodecRegistry{codecs: []Codec{
		&booleanCodec{},
		&integerCodec{},
		&floatCodec{},
		&decimalCodec{},
		&temporalCodec{},
		&blobCodec{},
		&stringCodec{},
	}}
}

func (r *CodecRegistry) findDecoder(col ColumnDefinition, host HostKind) (Codec, error) {
	for _, c := range r.codecs {
		if c.CanDecode(col, host) {
			return c, nil
		}
	}
	return nil, fmt.Errorf("mysql: no codec can decode column type %d into host kind %d", col.Type, host)
}

func (r *CodecRegistry) findEncoder(host HostKind) (Codec, error) {
	for _, c := range r.codecs {
		if c.CanEncode(host) {
			return c, nil
		}
	}
	return nil, fmt.Errorf("mysql: no codec can encode host kind %d", host)
}

// DecodeText resolves and runs the text-protocol decoder for a column, then
// narrows the codec's natural result to the requested host kind.
func (r *CodecRegistry) DecodeText(data []byte, col ColumnDefinition, host HostKind, ctx *Context) (any, error) {
	c, err := r.findDecoder(col, host)
	if err != nil {
		return nil, err
	}
	v, err := c.DecodeText(data, col, ctx)
	if err != nil {
		return nil, err
	}
	return convertToHost(v, host)
}

// DecodeBinary resolves and runs the binary-protocol decoder for a column,
// then narrows the codec's natural result to the requested host kind.
func (r *CodecRegistry) DecodeBinary(data []byte, col ColumnDefinition, host HostKind, ctx *Context) (any, int, error) {
	c, err := r.findDecoder(col, host)
	if err != nil {
		return nil, 0, err
	}
	v, consumed, err := c.DecodeBinary(data, col, ctx)
	if err != nil {
		return nil, 0, err
	}
	hv, err := convertToHost(v, host)
	if err != nil {
		return nil, 0, err
	}
	return hv, consumed, nil
}

// EncodeText resolves and runs the text-protocol (escaped literal) encoder.
func (r *CodecRegistry) EncodeText(dst []byte, value any, host HostKind, ctx *Context) ([]byte, error) {
	if value == nil {
		return append(dst, "NULL"...), nil
	}
	c, err := r.findEncoder(host)
	if err != nil {
		return nil, err
	}
	return c.EncodeText(dst, value, ctx)
}

// EncodeBinary resolves and runs the binary prepared-parameter encoder.
// Nulls are never passed here; see EncodeBinary on Codec.
func (r *CodecRegistry) EncodeBinary(dst []byte, value any, host HostKind, ctx *Context) ([]byte, error) {
	c, err := r.findEncoder(host)
	if err != nil {
		return nil, err
	}
	return c.EncodeBinary(dst, value, ctx)
}
