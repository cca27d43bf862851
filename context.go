// Go MySQL Driver - A MySQL-Driver for Go's database/sql package
//
// Copyright 2023 The Go-MySQL-Driver Authors. All rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at http://mozilla.org/MPL/2.0/.

package mysql

// Context is the per-connection state visible to codecs and message
// builders (§3). It is created once per connection and mutated only by the
// connection state machine between command boundaries, never while a
// command is in flight.
type Context struct {
	ServerVersion      ServerVersion
	Capabilities       Capability
	ClientCollation    uint16
	ResultsCollation   uint16
	StatusFlags        uint16
	ThreadID           uint32
	NoBackslashEscapes bool
}

// newContext creates the per-connection Context.
func newContext() *Context {
	return &Context{}
}

// SupportReturning reports whether RETURNING clauses are usable on this
// server (§3, derived from ServerVersion on every handshake).
func (c *Context) SupportReturning() bool {
	return c.ServerVersion.SupportsReturning()
}

// statusFlag bits relevant to this engine, from the OK/EOF packet status
// word (§4.3).
const (
	statusMoreResultsExist   uint16 = 0x0008
	statusCursorExists       uint16 = 0x0040
	statusLastRowSent        uint16 = 0x0080
	statusNoBackslashEscapes uint16 = 0x0200
)

// applyStatus folds a freshly observed status word into the context,
// tracking flags whose meaning persists across command boundaries.
func (c *Context) applyStatus(status uint16) {
	c.StatusFlags = status
	c.NoBackslashEscapes = status&statusNoBackslashEscapes != 0
}

func (c *Context) moreResultsExist() bool {
	return c.StatusFlags&statusMoreResultsExist != 0
}
