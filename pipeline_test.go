// Go MySQL Driver - A MySQL-Driver for Go's database/sql package
//
// Copyright 2023 The Go-MySQL-Driver Authors. All rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at http://mozilla.org/MPL/2.0/.

package mysql

import (
	"context"
	"io"
	"net"
	"testing"

	"github.com/stretchr/testify/require"
)

// okPacket builds a minimal CLIENT_PROTOCOL_41 OK packet body (§4.3): zero
// affected rows, zero insert id, the given status word, zero warnings.
func okPacket(status uint16) []byte {
	return []byte{iOK, 0x00, 0x00, byte(status), byte(status >> 8), 0x00, 0x00}
}

// replySeq returns a sequencer advanced past the client's request id (0),
// so a fake server's response lands on the id the real Conn expects next.
func replySeq() *sequencer {
	s := &sequencer{}
	s.take()
	return s
}

func pipeConn(caps Capability) (*Conn, net.Conn) {
	server, client := net.Pipe()
	c := &Conn{
		cfg:      &Config{},
		netConn:  client,
		buf:      newBuffer(client),
		seq:      &sequencer{},
		ctx:      newContext(),
		caps:     caps,
		registry: NewCodecRegistry(),
		plugins:  NewPluginRegistry(),
		prepared: newPrepareCache(0),
	}
	c.ctx.Capabilities = caps
	return c, server
}

func TestApplySessionConfigSendsComInitDB(t *testing.T) {
	c, server := pipeConn(clientProtocol41)
	defer server.Close()
	defer c.netConn.Close()
	c.cfg.DBName = "newdb"

	errCh := make(chan error, 1)
	go func() { errCh <- c.applySessionConfig() }()

	header := make([]byte, 4)
	_, err := io.ReadFull(server, header)
	require.NoError(t, err)
	payload := make([]byte, int(header[0])|int(header[1])<<8|int(header[2])<<16)
	_, err = io.ReadFull(server, payload)
	require.NoError(t, err)
	require.Equal(t, buildComInitDB("newdb"), payload)

	require.NoError(t, writePacket(server, replySeq(), okPacket(0)))
	require.NoError(t, <-errCh)
}

func TestStmtResetSendsCommandAndReadsOK(t *testing.T) {
	c, server := pipeConn(clientProtocol41)
	defer server.Close()
	defer c.netConn.Close()

	stmt := &Stmt{conn: c, stmt: &preparedStatement{id: 7, sql: "SELECT ?"}}

	errCh := make(chan error, 1)
	go func() { errCh <- stmt.Reset() }()

	header := make([]byte, 4)
	_, err := io.ReadFull(server, header)
	require.NoError(t, err)
	payload := make([]byte, int(header[0])|int(header[1])<<8|int(header[2])<<16)
	_, err = io.ReadFull(server, payload)
	require.NoError(t, err)
	require.Equal(t, buildComStmtReset(7), payload)

	require.NoError(t, writePacket(server, replySeq(), okPacket(0)))
	require.NoError(t, <-errCh)
}

func TestResetConnectionReappliesSessionConfig(t *testing.T) {
	c, server := pipeConn(clientProtocol41)
	defer server.Close()
	defer c.netConn.Close()
	c.cfg.SessionVariables = map[string]string{"sql_mode": "''"}

	errCh := make(chan error, 1)
	go func() { errCh <- c.ResetConnection(context.Background()) }()

	// COM_RESET_CONNECTION request
	header := make([]byte, 4)
	_, err := io.ReadFull(server, header)
	require.NoError(t, err)
	payload := make([]byte, int(header[0])|int(header[1])<<8|int(header[2])<<16)
	_, err = io.ReadFull(server, payload)
	require.NoError(t, err)
	require.Equal(t, buildComResetConnection(), payload)
	require.NoError(t, writePacket(server, replySeq(), okPacket(0)))

	// the session-variable SET statement applySessionConfig reissues
	_, err = io.ReadFull(server, header)
	require.NoError(t, err)
	payload = make([]byte, int(header[0])|int(header[1])<<8|int(header[2])<<16)
	_, err = io.ReadFull(server, payload)
	require.NoError(t, err)
	require.Equal(t, byte(comQuery), payload[0])
	require.NoError(t, writePacket(server, replySeq(), okPacket(0)))

	require.NoError(t, <-errCh)
}

func TestChangeUserReauthenticatesWithNativePassword(t *testing.T) {
	c, server := pipeConn(clientProtocol41 | clientPluginAuth | clientSecureConnection)
	c.cfg.AllowNativePasswords = true
	defer server.Close()
	defer c.netConn.Close()

	seed := []byte("01234567890123456789")
	c.authPlugin = &nativePasswordPlugin{}
	c.authPluginName = "mysql_native_password"
	c.authSeed = seed

	errCh := make(chan error, 1)
	go func() { errCh <- c.ChangeUser(context.Background(), "alice", "secret", "newdb") }()

	header := make([]byte, 4)
	_, err := io.ReadFull(server, header)
	require.NoError(t, err)
	payload := make([]byte, int(header[0])|int(header[1])<<8|int(header[2])<<16)
	_, err = io.ReadFull(server, payload)
	require.NoError(t, err)

	require.Equal(t, byte(comChangeUser), payload[0])
	want := buildComChangeUser(&Config{User: "alice", Passwd: "secret", DBName: "newdb"}, "mysql_native_password",
		scrambleNativePassword(seed, "secret"), c.caps)
	require.Equal(t, want, payload)

	require.NoError(t, writePacket(server, replySeq(), okPacket(0)))
	require.NoError(t, <-errCh)
	require.Equal(t, "alice", c.cfg.User)
	require.Equal(t, "newdb", c.cfg.DBName)
}

func TestChangeUserPurgesPreparedStatementCache(t *testing.T) {
	c, server := pipeConn(clientProtocol41 | clientPluginAuth | clientSecureConnection)
	c.cfg.AllowNativePasswords = true
	c.prepared = newPrepareCache(4)
	defer server.Close()
	defer c.netConn.Close()

	cached := &preparedStatement{id: 1, sql: "SELECT ?"}
	c.prepared.put(cached)
	_, ok := c.prepared.get("SELECT ?")
	require.True(t, ok)

	seed := []byte("01234567890123456789")
	c.authPlugin = &nativePasswordPlugin{}
	c.authPluginName = "mysql_native_password"
	c.authSeed = seed

	errCh := make(chan error, 1)
	go func() { errCh <- c.ChangeUser(context.Background(), "alice", "secret", "newdb") }()

	header := make([]byte, 4)
	_, err := io.ReadFull(server, header)
	require.NoError(t, err)
	payload := make([]byte, int(header[0])|int(header[1])<<8|int(header[2])<<16)
	_, err = io.ReadFull(server, payload)
	require.NoError(t, err)

	require.NoError(t, writePacket(server, replySeq(), okPacket(0)))
	require.NoError(t, <-errCh)

	_, ok = c.prepared.get("SELECT ?")
	require.False(t, ok, "ChangeUser must purge prepared statements invalidated by the server")
}

func TestBuildComChangeUserEncodesCollationLittleEndian(t *testing.T) {
	cfg := &Config{User: "alice", Passwd: "secret", DBName: "db", Collation: 0x0145}
	payload := buildComChangeUser(cfg, "mysql_native_password", []byte("resp"), clientSecureConnection)

	nul := func(b []byte, from int) int {
		for i := from; i < len(b); i++ {
			if b[i] == 0 {
				return i
			}
		}
		return -1
	}
	i := 1
	i = nul(payload, i) + 1         // past "alice\x00"
	authLen := int(payload[i])
	i += 1 + authLen                // past 1-byte-length-prefixed auth response
	i = nul(payload, i) + 1         // past "db\x00"
	require.Equal(t, byte(0x45), payload[i])
	require.Equal(t, byte(0x01), payload[i+1])
}
