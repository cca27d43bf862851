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
	"encoding/binary"
	"fmt"

	"github.com/pkg/errors"
)

// Exec runs sql expecting only a status result (§4.6): an OK packet, or a
// result set that is read and discarded if the server sends one anyway.
func (c *Conn) Exec(ctx context.Context, sql string) (*OKResult, error) {
	if err := c.nextCommand(buildComQuery(sql)); err != nil {
		return nil, err
	}
	return c.readStatusResult(sql)
}

func (c *Conn) readStatusResult(sql string) (*OKResult, error) {
	data, err := c.readServerMessage()
	if err != nil {
		return nil, err
	}
	if isLocalInFilePacket(data) {
		if err := c.handleLocalInfileRequest(string(data[1:])); err != nil {
			return nil, err
		}
		data, err = c.readServerMessage()
		if err != nil {
			return nil, err
		}
	}
	if isErrPacket(data) {
		se, err := parseServerError(data[1:])
		if err != nil {
			return nil, err
		}
		return nil, se.WithSQL(sql)
	}
	if isOKPacket(data) {
		ok, err := parseOK(data[1:], c.caps)
		if err != nil {
			return nil, err
		}
		c.ctx.applyStatus(ok.StatusFlags)
		return ok, nil
	}

	rows, err := c.beginResultSet(data, nil, false)
	if err != nil {
		return nil, err
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	return rows.final, nil
}

// Query runs sql as a text-protocol query and returns a streaming result
// set (§4.6). hosts declares the requested host type per column; a nil
// entry or a short slice defaults remaining columns to HostAny.
func (c *Conn) Query(ctx context.Context, sql string, hosts []HostKind) (*Rows, error) {
	if err := c.nextCommand(buildComQuery(sql)); err != nil {
		return nil, err
	}
	header, err := c.readServerMessage()
	if err != nil {
		return nil, err
	}
	if isErrPacket(header) {
		se, err := parseServerError(header[1:])
		if err != nil {
			return nil, err
		}
		return nil, se.WithSQL(sql)
	}
	return c.beginResultSet(header, hosts, false)
}

// beginResultSet reads the column-definition block following a
// already-consumed result-set header packet (§4.3).
func (c *Conn) beginResultSet(header []byte, hosts []HostKind, binary bool) (*Rows, error) {
	colCount, err := readColumnCount(header)
	if err != nil {
		return nil, err
	}

	columns := make([]ColumnDefinition, colCount)
	for i := range columns {
		data, err := c.readServerMessage()
		if err != nil {
			return nil, err
		}
		columns[i], err = parseColumnDefinition(data)
		if err != nil {
			return nil, err
		}
	}

	if colCount > 0 && !c.caps.Has(clientDeprecateEOF) {
		if _, err := c.readServerMessage(); err != nil {
			return nil, err
		}
	}

	return &Rows{conn: c, columns: columns, hosts: hosts, binary: binary}, nil
}

// Rows is a demand-driven result-set cursor (§4.6): rows are decoded one
// at a time as Next is called, never buffered wholesale.
type Rows struct {
	conn    *Conn
	columns []ColumnDefinition
	hosts   []HostKind
	binary  bool

	done  bool
	err   error
	final *OKResult

	cursor       bool
	cursorStmtID uint32
}

// FetchMore pulls up to n additional rows from a server-side cursor opened
// by Stmt.ExecuteCursor, via COM_STMT_FETCH (§4.6). Call Next to read them;
// Next reports exhaustion (ok=false, err=nil) once the cursor itself runs
// out of rows, same as a non-cursor result set.
func (r *Rows) FetchMore(n uint32) error {
	if !r.cursor {
		return fmt.Errorf("mysql: FetchMore called on a non-cursor result set")
	}
	if r.done {
		return nil
	}
	return r.conn.nextCommand(buildComStmtFetch(r.cursorStmtID, n))
}

// Columns returns the result set's column metadata.
func (r *Rows) Columns() []ColumnDefinition { return r.columns }

// Next decodes the next row into dst, which must have len(r.Columns())
// entries. It reports false once the result set is exhausted (err is nil
// on a clean end, non-nil on failure) or ctx is cancelled mid-stream.
func (r *Rows) Next(ctx context.Context, dst []any) (bool, error) {
	if r.done {
		return false, r.err
	}

	select {
	case <-ctx.Done():
		r.done, r.err = true, ctx.Err()
		r.conn.Close()
		return false, r.err
	default:
	}

	data, err := r.conn.readServerMessage()
	if err != nil {
		r.done, r.err = true, err
		return false, err
	}

	if isErrPacket(data) {
		se, err := parseServerError(data[1:])
		if err != nil {
			r.done, r.err = true, err
			return false, err
		}
		r.done, r.err = true, se
		return false, se
	}

	terminal := (r.conn.caps.Has(clientDeprecateEOF) && isOKPacket(data)) ||
		(!r.conn.caps.Has(clientDeprecateEOF) && isEOFPacket(data))
	if terminal {
		var status uint16
		if isOKPacket(data) {
			ok, err := parseOK(data[1:], r.conn.caps)
			if err != nil {
				r.done, r.err = true, err
				return false, err
			}
			r.conn.ctx.applyStatus(ok.StatusFlags)
			r.final = ok
			status = ok.StatusFlags
		} else {
			_, st, err := parseEOF(data[1:], r.conn.caps)
			if err != nil {
				r.done, r.err = true, err
				return false, err
			}
			r.conn.ctx.applyStatus(st)
			status = st
		}

		// a cursor result with more rows pending reports CURSOR_EXISTS
		// without LAST_ROW_SENT; the caller drives the next batch with
		// FetchMore rather than the result set being exhausted here.
		if r.cursor && status&statusCursorExists != 0 && status&statusLastRowSent == 0 {
			return false, nil
		}
		r.done = true
		return false, nil
	}

	var values []any
	if r.binary {
		values, err = parseBinaryRow(data, r.columns, r.hosts, r.conn.registry, r.conn.ctx)
		if err != nil {
			r.done, r.err = true, err
			return false, err
		}
	} else {
		row, err := parseTextRow(data, len(r.columns))
		if err != nil {
			r.done, r.err = true, err
			return false, err
		}
		values = make([]any, len(row))
		for i, raw := range row {
			if raw == nil {
				continue
			}
			host := HostAny
			if i < len(r.hosts) {
				host = r.hosts[i]
			}
			v, err := r.conn.registry.DecodeText(raw, r.columns[i], host, r.conn.ctx)
			if err != nil {
				r.done, r.err = true, err
				return false, err
			}
			values[i] = v
		}
	}

	copy(dst, values)
	return true, nil
}

// Close abandons the result set, draining any unread rows so the
// connection's packet sequence stays synchronized for the next command
// (§4.6 "cancellation drains rather than desyncs").
func (r *Rows) Close() error {
	if r.done {
		return nil
	}
	scratch := make([]any, len(r.columns))
	for {
		ok, err := r.Next(context.Background(), scratch)
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
	}
}

// Stmt is a server-side prepared statement bound to the connection that
// prepared it (§3, §4.6).
type Stmt struct {
	conn *Conn
	stmt *preparedStatement
}

// ParamCount reports the number of parameter markers the statement takes.
func (s *Stmt) ParamCount() int { return len(s.stmt.params) }

// Columns reports the result set's column metadata, empty for statements
// that don't return rows.
func (s *Stmt) Columns() []ColumnDefinition { return s.stmt.columns }

// Prepare issues (or reuses, via the connection's LRU) a server-side
// prepared statement for sql (§4.6).
func (c *Conn) Prepare(ctx context.Context, sql string) (*Stmt, error) {
	if cached, ok := c.prepared.get(sql); ok {
		return &Stmt{conn: c, stmt: cached}, nil
	}

	if err := c.nextCommand(buildComStmtPrepare(sql)); err != nil {
		return nil, err
	}

	data, err := c.readServerMessage()
	if err != nil {
		return nil, err
	}
	if isErrPacket(data) {
		se, err := parseServerError(data[1:])
		if err != nil {
			return nil, err
		}
		return nil, se.WithSQL(sql)
	}
	if len(data) < 9 {
		return nil, fmt.Errorf("%w: short prepare response", errMalformedPacket)
	}

	stmtID := binary.LittleEndian.Uint32(data[1:5])
	numColumns := binary.LittleEndian.Uint16(data[5:7])
	numParams := binary.LittleEndian.Uint16(data[7:9])

	params := make([]ColumnDefinition, numParams)
	for i := range params {
		pdata, err := c.readServerMessage()
		if err != nil {
			return nil, errors.Wrapf(err, "mysql: reading param definition %d/%d for prepared statement %d", i, numParams, stmtID)
		}
		params[i], err = parseColumnDefinition(pdata)
		if err != nil {
			return nil, errors.Wrapf(err, "mysql: parsing param definition %d/%d for prepared statement %d", i, numParams, stmtID)
		}
	}
	if numParams > 0 && !c.caps.Has(clientDeprecateEOF) {
		if _, err := c.readServerMessage(); err != nil {
			return nil, err
		}
	}

	columns := make([]ColumnDefinition, numColumns)
	for i := range columns {
		cdata, err := c.readServerMessage()
		if err != nil {
			return nil, errors.Wrapf(err, "mysql: reading column definition %d/%d for prepared statement %d", i, numColumns, stmtID)
		}
		columns[i], err = parseColumnDefinition(cdata)
		if err != nil {
			return nil, errors.Wrapf(err, "mysql: parsing column definition %d/%d for prepared statement %d", i, numColumns, stmtID)
		}
	}
	if numColumns > 0 && !c.caps.Has(clientDeprecateEOF) {
		if _, err := c.readServerMessage(); err != nil {
			return nil, err
		}
	}

	stmt := &preparedStatement{id: stmtID, sql: sql, params: params, columns: columns}
	c.prepared.put(stmt)
	return &Stmt{conn: c, stmt: stmt}, nil
}

// Execute runs the prepared statement via COM_STMT_EXECUTE and returns a
// streaming binary-protocol result set (§4.6).
func (s *Stmt) Execute(ctx context.Context, binding *Binding, hosts []HostKind) (*Rows, error) {
	payload, err := buildComStmtExecute(s.stmt.id, cursorTypeNoCursor, binding, s.conn.registry, s.conn.ctx)
	if err != nil {
		return nil, err
	}
	if err := s.conn.nextCommand(payload); err != nil {
		return nil, err
	}

	header, err := s.conn.readServerMessage()
	if err != nil {
		return nil, err
	}
	if isErrPacket(header) {
		se, err := parseServerError(header[1:])
		if err != nil {
			return nil, err
		}
		return nil, se.WithSQL(s.stmt.sql)
	}
	if isOKPacket(header) {
		ok, err := parseOK(header[1:], s.conn.caps)
		if err != nil {
			return nil, err
		}
		s.conn.ctx.applyStatus(ok.StatusFlags)
		return &Rows{conn: s.conn, done: true, final: ok}, nil
	}
	return s.conn.beginResultSet(header, hosts, true)
}

// Reset clears the statement's bound parameter state server-side via
// COM_STMT_RESET (§4.6), without reissuing COM_STMT_PREPARE.
func (s *Stmt) Reset() error {
	if err := s.conn.nextCommand(buildComStmtReset(s.stmt.id)); err != nil {
		return err
	}
	_, err := s.conn.readStatusResult(s.stmt.sql)
	return err
}

// ExecuteCursor runs the prepared statement with a read-only server-side
// cursor (§4.6): the initial response carries column definitions but no
// rows, which are pulled in batches with Rows.FetchMore.
func (s *Stmt) ExecuteCursor(ctx context.Context, binding *Binding, hosts []HostKind) (*Rows, error) {
	payload, err := buildComStmtExecute(s.stmt.id, cursorTypeReadOnly, binding, s.conn.registry, s.conn.ctx)
	if err != nil {
		return nil, err
	}
	if err := s.conn.nextCommand(payload); err != nil {
		return nil, err
	}

	header, err := s.conn.readServerMessage()
	if err != nil {
		return nil, err
	}
	if isErrPacket(header) {
		se, err := parseServerError(header[1:])
		if err != nil {
			return nil, err
		}
		return nil, se.WithSQL(s.stmt.sql)
	}

	rows, err := s.conn.beginResultSet(header, hosts, true)
	if err != nil {
		return nil, err
	}
	rows.cursor = true
	rows.cursorStmtID = s.stmt.id
	return rows, nil
}

// Close releases the statement's reference on the connection's prepared
// statement cache, issuing COM_STMT_CLOSE once it both falls out of the
// cache and has no other callers holding it (§4.6).
func (s *Stmt) Close() error {
	s.conn.prepared.release(s.stmt)
	return s.conn.flushClosableStatements()
}

// flushClosableStatements issues COM_STMT_CLOSE for every statement the
// cache evicted while still referenced, now that the last reference has
// been released.
func (c *Conn) flushClosableStatements() error {
	for _, st := range c.prepared.drainClosable() {
		if err := c.nextCommand(buildComStmtClose(st.id)); err != nil {
			return err
		}
	}
	return nil
}

// Ping sends COM_PING and waits for the server's OK (§4.6).
func (c *Conn) Ping(ctx context.Context) error {
	if err := c.nextCommand(buildComPing()); err != nil {
		return err
	}
	_, err := c.readStatusResult("")
	return err
}
