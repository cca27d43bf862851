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
	"time"

	"github.com/stretchr/testify/require"
)

// TestTimeBinaryZeroLength covers §8 scenario 5: a zero-length TIME field
// decodes to a zero duration, which renders as "00:00:00".
func TestTimeBinaryZeroLength(t *testing.T) {
	c := temporalCodec{}
	v, n, err := c.DecodeBinary([]byte{0x00}, ColumnDefinition{Type: TypeTime}, nil)
	require.NoError(t, err)
	require.Equal(t, 1, n)
	require.Equal(t, time.Duration(0), v)
	require.Equal(t, "00:00:00", formatDuration(v.(time.Duration)))
}

// TestDateTimeBinaryZeroDate covers §8 scenario 6: an all-zero DATETIME
// decodes to nil.
func TestDateTimeBinaryZeroDate(t *testing.T) {
	c := temporalCodec{}
	data := []byte{11, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0}
	v, n, err := c.DecodeBinary(data, ColumnDefinition{Type: TypeDateTime}, nil)
	require.NoError(t, err)
	require.Equal(t, 12, n)
	require.Nil(t, v)
}

func TestDateBinaryRoundTrip(t *testing.T) {
	c := temporalCodec{}
	want := time.Date(2024, time.March, 15, 0, 0, 0, 0, time.UTC)
	enc, err := c.EncodeBinary(nil, want, nil)
	require.NoError(t, err)
	require.Equal(t, byte(4), enc[0])
	got, n, err := c.DecodeBinary(enc, ColumnDefinition{Type: TypeDate}, nil)
	require.NoError(t, err)
	require.Equal(t, len(enc), n)
	require.True(t, want.Equal(got.(time.Time)))
}

func TestDateTimeBinaryRoundTripWithMicroseconds(t *testing.T) {
	c := temporalCodec{}
	want := time.Date(2024, time.March, 15, 9, 30, 1, 123000*1000, time.UTC)
	enc, err := c.EncodeBinary(nil, want, nil)
	require.NoError(t, err)
	require.Equal(t, byte(11), enc[0])
	got, _, err := c.DecodeBinary(enc, ColumnDefinition{Type: TypeDateTime}, nil)
	require.NoError(t, err)
	require.True(t, want.Equal(got.(time.Time)))
}

func TestDurationBinaryRoundTripNegative(t *testing.T) {
	c := temporalCodec{}
	want := -(25*time.Hour + 3*time.Minute + 4*time.Second + 500*time.Microsecond)
	enc, err := c.EncodeBinary(nil, want, nil)
	require.NoError(t, err)
	got, _, err := c.DecodeBinary(enc, ColumnDefinition{Type: TypeTime}, nil)
	require.NoError(t, err)
	require.Equal(t, want, got)
}

func TestParseTimeTextHandlesOverflowHours(t *testing.T) {
	// The duration parser preserves the unbounded hour count rather than
	// reducing it mod 24.
	d, err := parseTimeText("30:15:00")
	require.NoError(t, err)
	require.Equal(t, 30*time.Hour+15*time.Minute, d)
}

func TestBitStringDecodeScenario(t *testing.T) {
	// §8 scenario 3: binary payload 0x00 0x05 -> "b'101'".
	require.Equal(t, "b'101'", bitBytesToBitString([]byte{0x00, 0x05}))
	require.Equal(t, "b'0'", bitBytesToBitString([]byte{0x00, 0x00}))
	require.Equal(t, "b'100000001'", bitBytesToBitString([]byte{0x01, 0x01}))
}

func TestCanonicalTemporalTextDropsTrailingZeroFraction(t *testing.T) {
	s, err := canonicalTemporalText(time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC))
	require.NoError(t, err)
	require.Equal(t, "2024-01-02 03:04:05", s)
}
