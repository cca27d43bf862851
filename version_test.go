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

	"github.com/stretchr/testify/require"
)

// TestParseServerVersionMariaDB covers §8 scenario 1.
func TestParseServerVersionMariaDB(t *testing.T) {
	v := ParseServerVersion("5.5.5-10.5.1-MariaDB")
	require.True(t, v.MariaDB)
	require.Equal(t, 10, v.Major)
	require.Equal(t, 5, v.Minor)
	require.Equal(t, 1, v.Patch)
	require.True(t, v.SupportsReturning())
}

// TestParseServerVersionMySQL covers §8 scenario 2.
func TestParseServerVersionMySQL(t *testing.T) {
	v := ParseServerVersion("8.0.33")
	require.False(t, v.MariaDB)
	require.Equal(t, 8, v.Major)
	require.Equal(t, 0, v.Minor)
	require.Equal(t, 33, v.Patch)
	require.False(t, v.SupportsReturning())
}

func TestParseServerVersionMariaDBWithoutReplicationPrefix(t *testing.T) {
	v := ParseServerVersion("10.6.12-MariaDB-1:10.6.12+maria~ubu2004")
	require.True(t, v.MariaDB)
	require.Equal(t, 10, v.Major)
	require.Equal(t, 6, v.Minor)
	require.Equal(t, 12, v.Patch)
}

func TestSupportsReturningBoundary(t *testing.T) {
	require.True(t, ServerVersion{MariaDB: true, Major: 10, Minor: 5, Patch: 1}.SupportsReturning())
	require.False(t, ServerVersion{MariaDB: true, Major: 10, Minor: 5, Patch: 0}.SupportsReturning())
	require.True(t, ServerVersion{MariaDB: true, Major: 10, Minor: 6, Patch: 0}.SupportsReturning())
	require.True(t, ServerVersion{MariaDB: true, Major: 11, Minor: 0, Patch: 0}.SupportsReturning())
	require.False(t, ServerVersion{MariaDB: false, Major: 10, Minor: 5, Patch: 1}.SupportsReturning())
}

func TestAtLeast(t *testing.T) {
	v := ServerVersion{Major: 10, Minor: 5, Patch: 1}
	require.True(t, v.AtLeast(10, 5, 0))
	require.True(t, v.AtLeast(10, 5, 1))
	require.False(t, v.AtLeast(10, 5, 2))
	require.False(t, v.AtLeast(10, 6, 0))
	require.True(t, v.AtLeast(9, 9, 9))
}
