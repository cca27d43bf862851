// Go MySQL Driver - A MySQL-Driver for Go's database/sql package
//
// Copyright 2013 The Go-MySQL-Driver Authors. All rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at http://mozilla.org/MPL/2.0/.

package mysql

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseServerErrorWithSQLState(t *testing.T) {
	body := append([]byte{0x1a, 0x04, '#'}, []byte("42S02table not found")...)
	se, err := parseServerError(body)
	require.NoError(t, err)
	assert.Equal(t, uint16(0x041a), se.Code)
	assert.Equal(t, "42S02", se.SQLState)
	assert.Equal(t, "table not found", se.Message)
	assert.Equal(t, ClassSyntax, se.Class)
}

func TestParseServerErrorWithoutSQLState(t *testing.T) {
	body := []byte{0x01, 0x00, 'b', 'o', 'o', 'm'}
	se, err := parseServerError(body)
	require.NoError(t, err)
	assert.Equal(t, "", se.SQLState)
	assert.Equal(t, "boom", se.Message)
	assert.Equal(t, ClassUnknown, se.Class)
}

func TestParseServerErrorShort(t *testing.T) {
	_, err := parseServerError([]byte{0x01})
	assert.ErrorIs(t, err, errMalformedPacket)
}

func TestClassifyState(t *testing.T) {
	cases := map[string]ErrorClass{
		"42000": ClassPermission, // explicit carve-out in §7
		"42S02": ClassSyntax,
		"23000": ClassIntegrity,
		"22003": ClassIntegrity,
		"28000": ClassPermission,
		"40001": ClassRollback,
		"HY000": ClassUnknown,
	}
	for state, want := range cases {
		assert.Equal(t, want, classifyState(state), state)
	}
}

func TestErrorClassClosesConnection(t *testing.T) {
	assert.True(t, ClassParsing.ClosesConnection())
	assert.True(t, ClassProtocolState.ClosesConnection())
	assert.True(t, ClassTransientResource.ClosesConnection())
	assert.False(t, ClassSyntax.ClosesConnection())
	assert.False(t, ClassPermission.ClosesConnection())
	assert.False(t, ClassRollback.ClosesConnection())
}

func TestServerErrorWithSQL(t *testing.T) {
	base := &ServerError{Code: 1146, SQLState: "42S02", Message: "no such table"}
	withSQL := base.WithSQL("SELECT * FROM missing")
	assert.Equal(t, "", base.SQL, "WithSQL must not mutate the receiver")
	assert.Contains(t, withSQL.Error(), "SELECT * FROM missing")
}
