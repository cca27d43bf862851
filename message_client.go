// Go MySQL Driver - A MySQL-Driver for Go's database/sql package
//
// Copyright 2023 The Go-MySQL-Driver Authors. All rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at http://mozilla.org/MPL/2.0/.

package mysql

import "encoding/binary"

// buildHandshakeResponse encodes Protocol::HandshakeResponse41 (§4.5 step
// 3). The low 32 bits of the negotiated capability set go in the 4-byte
// client_flag field, matching every server that doesn't additionally
// require MariaDB's separate extended-capability filler bytes.
func buildHandshakeResponse(caps Capability, cfg *Config, authPluginName string, authResponse []byte) []byte {
	buf := make([]byte, 0, 64+len(cfg.User)+len(authResponse)+len(cfg.DBName))

	var capBytes [4]byte
	binary.LittleEndian.PutUint32(capBytes[:], uint32(caps))
	buf = append(buf, capBytes[:]...)

	buf = append(buf, uint32ToBytes(1<<24-1)...) // max_packet_size

	collation := cfg.Collation
	if collation == 0 {
		collation = defaultCollationID
	}
	buf = append(buf, byte(collation))
	buf = append(buf, make([]byte, 23)...) // filler/reserved

	buf = append(buf, cfg.User...)
	buf = append(buf, 0x00)

	switch {
	case caps.Has(clientPluginAuthLenEncClientData):
		buf = appendLengthEncodedString(buf, authResponse)
	case caps.Has(clientSecureConnection):
		buf = append(buf, byte(len(authResponse)))
		buf = append(buf, authResponse...)
	default:
		buf = append(buf, authResponse...)
		buf = append(buf, 0x00)
	}

	if caps.Has(clientConnectWithDB) {
		buf = append(buf, cfg.DBName...)
		buf = append(buf, 0x00)
	}

	if caps.Has(clientPluginAuth) {
		buf = append(buf, authPluginName...)
		buf = append(buf, 0x00)
	}

	if caps.Has(clientConnectAttrs) {
		// no connection attributes advertised; emit an empty length-encoded
		// set so the server's parser still sees a well-formed field.
		buf = appendLengthEncodedInteger(buf, 0)
	}

	return buf
}

// defaultCollationID is utf8mb4_general_ci, this engine's default initial
// charset when Config doesn't specify one.
const defaultCollationID = 45

func buildComQuit() []byte {
	return []byte{byte(comQuit)}
}

func buildComInitDB(dbName string) []byte {
	buf := make([]byte, 0, 1+len(dbName))
	buf = append(buf, byte(comInitDB))
	return append(buf, dbName...)
}

func buildComQuery(sql string) []byte {
	buf := make([]byte, 0, 1+len(sql))
	buf = append(buf, byte(comQuery))
	return append(buf, sql...)
}

func buildComPing() []byte {
	return []byte{byte(comPing)}
}

func buildComStmtPrepare(sql string) []byte {
	buf := make([]byte, 0, 1+len(sql))
	buf = append(buf, byte(comStmtPrepare))
	return append(buf, sql...)
}

// cursorType values for COM_STMT_EXECUTE (§4.6 streaming via COM_STMT_FETCH).
const (
	cursorTypeNoCursor  byte = 0x00
	cursorTypeReadOnly  byte = 0x01
)

// buildComStmtExecute encodes COM_STMT_EXECUTE: statement id, flags,
// iteration count (always 1), then, if the statement takes parameters,
// the null bitmap, a new-params-bound flag, per-parameter types, and
// per-parameter values (§4.2, §4.6).
func buildComStmtExecute(stmtID uint32, cursorType byte, binding *Binding, registry *CodecRegistry, ctx *Context) ([]byte, error) {
	buf := make([]byte, 0, 16)
	buf = append(buf, byte(comStmtExecute))
	buf = append(buf, uint32ToBytes(stmtID)...)
	buf = append(buf, cursorType)
	buf = append(buf, uint32ToBytes(1)...) // iteration count

	if binding == nil || len(binding.values) == 0 {
		return buf, nil
	}
	if err := binding.validate(); err != nil {
		return nil, err
	}

	buf = append(buf, binding.nullBitmap()...)
	buf = append(buf, 1) // new-params-bound flag
	buf = binding.encodeTypes(buf)
	buf, err := binding.encodeValues(buf, registry, ctx)
	if err != nil {
		return nil, err
	}
	return buf, nil
}

func buildComStmtClose(stmtID uint32) []byte {
	buf := make([]byte, 0, 5)
	buf = append(buf, byte(comStmtClose))
	return append(buf, uint32ToBytes(stmtID)...)
}

func buildComStmtReset(stmtID uint32) []byte {
	buf := make([]byte, 0, 5)
	buf = append(buf, byte(comStmtReset))
	return append(buf, uint32ToBytes(stmtID)...)
}

func buildComStmtFetch(stmtID uint32, numRows uint32) []byte {
	buf := make([]byte, 0, 9)
	buf = append(buf, byte(comStmtFetch))
	buf = append(buf, uint32ToBytes(stmtID)...)
	return append(buf, uint32ToBytes(numRows)...)
}

func buildComResetConnection() []byte {
	return []byte{byte(comResetConnection)}
}

// buildComChangeUser encodes COM_CHANGE_USER (§4.6): re-authenticates as a
// different account on an already-established connection, reusing the
// capabilities and auth plugin negotiated at handshake time rather than
// opening a fresh TCP connection.
func buildComChangeUser(cfg *Config, authPluginName string, authResponse []byte, caps Capability) []byte {
	buf := make([]byte, 0, 32+len(cfg.User)+len(authResponse)+len(cfg.DBName))
	buf = append(buf, byte(comChangeUser))
	buf = append(buf, cfg.User...)
	buf = append(buf, 0x00)

	buf = append(buf, byte(len(authResponse)))
	buf = append(buf, authResponse...)

	buf = append(buf, cfg.DBName...)
	buf = append(buf, 0x00)

	collation := cfg.Collation
	if collation == 0 {
		collation = defaultCollationID
	}
	buf = append(buf, byte(collation), byte(collation>>8))

	if caps.Has(clientPluginAuth) {
		buf = append(buf, authPluginName...)
		buf = append(buf, 0x00)
	}
	if caps.Has(clientConnectAttrs) {
		buf = appendLengthEncodedInteger(buf, 0)
	}
	return buf
}
