// Go MySQL Driver - A MySQL-Driver for Go's database/sql package
//
// Copyright 2017 The Go-MySQL-Driver Authors. All rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at http://mozilla.org/MPL/2.0/.

package mysql

// ColumnType is the server's wire data type for a column (§3).
type ColumnType byte

const (
	TypeDecimal    ColumnType = 0x00
	TypeTiny       ColumnType = 0x01 // TINYINT
	TypeShort      ColumnType = 0x02 // SMALLINT
	TypeLong       ColumnType = 0x03 // INTEGER
	TypeFloat      ColumnType = 0x04
	TypeDouble     ColumnType = 0x05
	TypeNULL       ColumnType = 0x06
	TypeTimestamp  ColumnType = 0x07
	TypeLongLong   ColumnType = 0x08 // BIGINT
	TypeInt24      ColumnType = 0x09 // MEDIUMINT
	TypeDate       ColumnType = 0x0a
	TypeTime       ColumnType = 0x0b
	TypeDateTime   ColumnType = 0x0c
	TypeYear       ColumnType = 0x0d
	TypeNewDate    ColumnType = 0x0e
	TypeVarChar    ColumnType = 0x0f
	TypeBit        ColumnType = 0x10
	TypeJSON       ColumnType = 0xf5
	TypeNewDecimal ColumnType = 0xf6 // DECIMAL (current wire name)
	TypeEnum       ColumnType = 0xf7
	TypeSet        ColumnType = 0xf8
	TypeTinyBLOB   ColumnType = 0xf9
	TypeMediumBLOB ColumnType = 0xfa
	TypeLongBLOB   ColumnType = 0xfb
	TypeBLOB       ColumnType = 0xfc
	TypeVarString  ColumnType = 0xfd
	TypeString     ColumnType = 0xfe
	TypeGeometry   ColumnType = 0xff
)

// ColumnFlag is the column flags bitset (§3).
type ColumnFlag uint16

const (
	FlagNotNull ColumnFlag = 1 << iota
	FlagPriKey
	FlagUniqueKey
	FlagMultipleKey
	FlagBlob
	FlagUnsigned
	FlagZerofill
	FlagBinary
	FlagEnum
	FlagAutoIncrement
	FlagTimestamp
	FlagSet
	_ // reserved
	FlagNumeric
	_ // reserved
	FlagNoDefaultValue
)

func (f ColumnFlag) Has(want ColumnFlag) bool { return f&want == want }

// ColumnDefinition is one parsed column-definition packet (§3).
type ColumnDefinition struct {
	Catalog      string
	Schema       string
	Table        string
	OrgTable     string
	Name         string
	OrgName      string
	CollationID  uint16
	DisplayWidth uint32
	Type         ColumnType
	Flags        ColumnFlag
	Decimals     byte
}

// parseColumnDefinition decodes one Protocol::ColumnDefinition41 packet
// body (§4.3). The wire order is: catalog, schema, table, org_table, name,
// org_name (all length-encoded strings), then a fixed-length field block.
func parseColumnDefinition(data []byte) (ColumnDefinition, error) {
	var col ColumnDefinition
	pos := 0

	next := func() ([]byte, error) {
		s, isNull, n, err := readLengthEncodedString(data[pos:])
		if err != nil {
			return nil, err
		}
		pos += n
		if isNull {
			return nil, nil
		}
		return s, nil
	}

	var b []byte
	var err error
	if b, err = next(); err != nil {
		return col, err
	}
	col.Catalog = string(b)
	if b, err = next(); err != nil {
		return col, err
	}
	col.Schema = string(b)
	if b, err = next(); err != nil {
		return col, err
	}
	col.Table = string(b)
	if b, err = next(); err != nil {
		return col, err
	}
	col.OrgTable = string(b)
	if b, err = next(); err != nil {
		return col, err
	}
	col.Name = string(b)
	if b, err = next(); err != nil {
		return col, err
	}
	col.OrgName = string(b)

	// length-of-fixed-fields marker (always 0x0c) + the fixed block itself:
	// collation(2) display_length(4) type(1) flags(2) decimals(1) filler(2)
	if len(data) < pos+1+12 {
		return col, errMalformedPacket
	}
	pos++ // skip the 0x0c marker
	col.CollationID = uint16(data[pos]) | uint16(data[pos+1])<<8
	col.DisplayWidth = uint32(data[pos+2]) | uint32(data[pos+3])<<8 | uint32(data[pos+4])<<16 | uint32(data[pos+5])<<24
	col.Type = ColumnType(data[pos+6])
	col.Flags = ColumnFlag(data[pos+7]) | ColumnFlag(data[pos+8])<<8
	col.Decimals = data[pos+9]

	return col, nil
}
