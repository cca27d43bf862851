// Go MySQL Driver - A MySQL-Driver for Go's database/sql package
//
// Copyright 2013 The Go-MySQL-Driver Authors. All rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at http://mozilla.org/MPL/2.0/.

package mysql

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// Frame/protocol level sentinels (§4.1). These always close the connection.
var (
	errMalformedPacket    = errors.New("mysql: malformed packet")
	errPacketSync         = errors.New("mysql: commands out of sync; you can't run this command now")
	errPacketSyncMultiple = errors.New("mysql: commands out of sync; did you run multiple statements at once?")
	errPacketTooLarge     = errors.New("mysql: packet for query is too large; increase max_allowed_packet on the server")
	ErrInvalidConn        = errors.New("mysql: invalid connection")
)

// Authentication sentinels (§4.4, §7 non-transient resource).
var (
	ErrNativePassword    = errors.New("mysql: this user requires mysql_native_password authentication but it was not allowed by the client")
	ErrCleartextPassword = errors.New("mysql: this user requires clear text authentication but it was not allowed by the client")
	ErrOldPassword       = errors.New("mysql: this user requires old password authentication, which is unsafe and unsupported by default")
	ErrDialogAuth        = errors.New("mysql: this user requires dialog authentication but it was not allowed by the client")
	ErrUnknownAuthPlugin = errors.New("mysql: unknown authentication plugin requested by server")
	ErrSSLRequired       = errors.New("mysql: server requires TLS but no TLS stream was supplied")
)

// Binding/cache sentinels (§3, §4.6).
var (
	ErrBindingIncomplete = errors.New("mysql: parameter missing; all declared indices must be bound before submission")
	ErrStatementClosed   = errors.New("mysql: use of closed prepared statement")
)

// ErrorClass buckets server-reported conditions per the propagation rules
// in §7. Classification drives whether the connection stays usable.
type ErrorClass int

const (
	ClassUnknown ErrorClass = iota
	ClassParsing
	ClassProtocolState
	ClassSyntax            // SQLSTATE class 42
	ClassIntegrity         // SQLSTATE classes 23, 22
	ClassPermission        // SQLSTATE classes 28, 42000
	ClassRollback          // SQLSTATE class 40
	ClassTransientResource // timeouts, max_connections, broken pipe
	ClassNonTransientResource
)

// ClosesConnection reports whether an error of this class leaves the
// connection unusable, per the table in §7.
func (c ErrorClass) ClosesConnection() bool {
	switch c {
	case ClassParsing, ClassProtocolState, ClassTransientResource:
		return true
	default:
		return false
	}
}

func classifyState(state string) ErrorClass {
	switch {
	case state == "42000" || (len(state) >= 2 && state[:2] == "28"):
		return ClassPermission
	case len(state) >= 2 && state[:2] == "42":
		return ClassSyntax
	case len(state) >= 2 && (state[:2] == "23" || state[:2] == "22"):
		return ClassIntegrity
	case len(state) >= 2 && state[:2] == "40":
		return ClassRollback
	default:
		return ClassUnknown
	}
}

// ServerError is a parsed ERR packet (§4.3), carrying enough to satisfy the
// diagnostics requirement in §7 that every statement-bound error carries
// the offending SQL text.
type ServerError struct {
	Code     uint16
	SQLState string
	Message  string
	SQL      string
	Class    ErrorClass
}

func (e *ServerError) Error() string {
	if e.SQL != "" {
		return fmt.Sprintf("mysql: error %d (%s): %s [sql: %s]", e.Code, e.SQLState, e.Message, e.SQL)
	}
	return fmt.Sprintf("mysql: error %d (%s): %s", e.Code, e.SQLState, e.Message)
}

// WithSQL returns a copy of e annotated with the SQL text that produced it.
func (e *ServerError) WithSQL(sql string) *ServerError {
	cp := *e
	cp.SQL = sql
	return &cp
}

// parseServerError decodes an ERR packet payload (§4.3): the leading 0xff
// marker is assumed already stripped by the caller.
func parseServerError(body []byte) (*ServerError, error) {
	if len(body) < 3 {
		return nil, fmt.Errorf("%w: short ERR packet", errMalformedPacket)
	}
	code := binary.LittleEndian.Uint16(body[0:2])
	pos := 2
	state := ""
	if pos < len(body) && body[pos] == '#' {
		if len(body) < pos+6 {
			return nil, fmt.Errorf("%w: short SQLSTATE marker", errMalformedPacket)
		}
		state = string(body[pos+1 : pos+6])
		pos += 6
	}
	msg := string(body[pos:])
	return &ServerError{
		Code:     code,
		SQLState: state,
		Message:  msg,
		Class:    classifyState(state),
	}, nil
}

// ProtocolError is returned for state-machine violations (§4.5): an
// unexpected message for the current connection phase. Always fatal.
type ProtocolError struct {
	Phase string
	Got   byte
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("mysql: unexpected packet 0x%02x during %s", e.Got, e.Phase)
}

func (e *ProtocolError) Unwrap() error { return errMalformedPacket }
