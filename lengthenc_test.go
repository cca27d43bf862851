// Go MySQL Driver - A MySQL-Driver for Go's database/sql package
//
// Copyright 2023 The Go-MySQL-Driver Authors. All rights reserved.
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

func TestLengthEncodedIntegerRoundTrip(t *testing.T) {
	values := []uint64{0, 1, 250, 251, 65535, 65536, 0xffffff, 0x1000000, 1 << 40}
	for _, v := range values {
		enc := appendLengthEncodedInteger(nil, v)
		got, isNull, n, err := readLengthEncodedInteger(enc)
		require.NoError(t, err)
		assert.False(t, isNull)
		assert.Equal(t, len(enc), n)
		assert.Equal(t, v, got)
	}
}

func TestLengthEncodedIntegerNull(t *testing.T) {
	_, isNull, n, err := readLengthEncodedInteger([]byte{0xfb})
	require.NoError(t, err)
	assert.True(t, isNull)
	assert.Equal(t, 1, n)
}

func TestLengthEncodedStringRoundTrip(t *testing.T) {
	s := []byte("hello, world")
	enc := appendLengthEncodedString(nil, s)
	got, isNull, n, err := readLengthEncodedString(enc)
	require.NoError(t, err)
	assert.False(t, isNull)
	assert.Equal(t, len(enc), n)
	assert.Equal(t, s, got)
}

func TestZeroFill(t *testing.T) {
	assert.Equal(t, []byte("0042"), zeroFill([]byte("42"), 4))
	assert.Equal(t, []byte("4242"), zeroFill([]byte("4242"), 2), "no truncation when already wide enough")
}
