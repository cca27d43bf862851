// Go MySQL Driver - A MySQL-Driver for Go's database/sql package
//
// Copyright 2023 The Go-MySQL-Driver Authors. All rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at http://mozilla.org/MPL/2.0/.

package mysql

import "fmt"

// blobCodec handles the BLOB family (TINYBLOB/BLOB/MEDIUMBLOB/LONGBLOB) plus
// GEOMETRY, all sent as length-encoded byte strings on the wire in both
// protocols (§4.2). MySQL has no distinct TEXT wire type: a BLOB-family
// column without the binary collation/flag is text, but since both forms
// travel identically as raw bytes, only the requested host kind decides
// whether the caller gets []byte or string.
type blobCodec struct{}

func (blobCodec) Name() string { return "blob" }

func isBlobWireType(t ColumnType) bool {
	switch t {
	case TypeTinyBLOB, TypeMediumBLOB, TypeLongBLOB, TypeBLOB, TypeGeometry:
		return true
	}
	return false
}

func (blobCodec) CanDecode(col ColumnDefinition, host HostKind) bool {
	if !isBlobWireType(col.Type) {
		return false
	}
	switch host {
	case HostAny, HostBytes, HostString:
		return true
	}
	return false
}

func (blobCodec) CanEncode(host HostKind) bool { return host == HostBytes }

func (blobCodec) DecodeText(data []byte, _ ColumnDefinition, _ *Context) (any, error) {
	return append([]byte(nil), data...), nil
}

func (blobCodec) DecodeBinary(data []byte, _ ColumnDefinition, _ *Context) (any, int, error) {
	b, isNull, n, err := readLengthEncodedString(data)
	if err != nil {
		return nil, 0, err
	}
	if isNull {
		return nil, n, nil
	}
	return append([]byte(nil), b...), n, nil
}

func (blobCodec) EncodeText(dst []byte, value any, ctx *Context) ([]byte, error) {
	b, ok := value.([]byte)
	if !ok {
		return nil, fmt.Errorf("mysql: blob codec cannot encode %T", value)
	}
	return appendEscapedLiteral(dst, string(b), ctx != nil && ctx.NoBackslashEscapes), nil
}

func (blobCodec) EncodeBinary(dst []byte, value any, _ *Context) ([]byte, error) {
	b, ok := value.([]byte)
	if !ok {
		return nil, fmt.Errorf("mysql: blob codec cannot encode %T", value)
	}
	return appendLengthEncodedString(dst, b), nil
}
