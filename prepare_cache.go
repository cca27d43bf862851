// Go MySQL Driver - A MySQL-Driver for Go's database/sql package
//
// Copyright 2023 The Go-MySQL-Driver Authors. All rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at http://mozilla.org/MPL/2.0/.

package mysql

import (
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
)

// preparedStatement is one server-side prepared statement, keyed by its
// originating SQL text (§3, §4.6).
type preparedStatement struct {
	id      uint32
	sql     string
	params  []ColumnDefinition
	columns []ColumnDefinition

	mu       sync.Mutex
	refCount int
	closed   bool
}

func (s *preparedStatement) acquire() {
	s.mu.Lock()
	s.refCount++
	s.mu.Unlock()
}

// release drops a reference and reports whether the statement is both
// unreferenced and no longer in the cache, meaning the caller owns
// closing it with COM_STMT_CLOSE.
func (s *preparedStatement) release() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refCount--
	return s.refCount <= 0 && s.closed
}

// prepareCache is the per-connection LRU of server-side prepared
// statements (§3, §4.6). Capacity 0 disables caching: every Prepare call
// issues its own COM_STMT_PREPARE and the caller is solely responsible for
// closing it.
//
// Eviction never drops a statement still in use elsewhere: the eviction
// callback only queues the statement for a deferred COM_STMT_CLOSE once
// its last reference is released (§4.6 "statements in flight survive
// their own cache eviction").
type prepareCache struct {
	capacity int

	mu      sync.Mutex
	cache   *lru.Cache[string, *preparedStatement]
	pending []*preparedStatement // evicted while still referenced
}

func newPrepareCache(capacity int) *prepareCache {
	pc := &prepareCache{capacity: capacity}
	if capacity <= 0 {
		return pc
	}
	c, err := lru.NewWithEvict[string, *preparedStatement](capacity, func(_ string, stmt *preparedStatement) {
		pc.mu.Lock()
		stmt.mu.Lock()
		stmt.closed = true
		unused := stmt.refCount <= 0
		stmt.mu.Unlock()
		observePrepareCache("evict")
		if unused {
			pc.pending = append(pc.pending, stmt)
		}
		pc.mu.Unlock()
	})
	if err != nil {
		// capacity is always a positive int from Config.normalize(); this
		// can only fail for a non-positive size, which is excluded above.
		panic(err)
	}
	pc.cache = c
	return pc
}

// get returns a cached statement for sql, bumping its reference count.
func (pc *prepareCache) get(sql string) (*preparedStatement, bool) {
	if pc.cache == nil {
		return nil, false
	}
	stmt, ok := pc.cache.Get(sql)
	if !ok {
		observePrepareCache("miss")
		return nil, false
	}
	observePrepareCache("hit")
	stmt.acquire()
	return stmt, true
}

// put inserts a freshly prepared statement, pre-acquired on behalf of the
// caller currently using it.
func (pc *prepareCache) put(stmt *preparedStatement) {
	stmt.acquire()
	if pc.cache == nil {
		stmt.closed = true // never cached, so every release is final
		return
	}
	pc.cache.Add(stmt.sql, stmt)
}

// drainClosable returns every evicted-but-now-unreferenced statement,
// clearing the pending list. Stmt.Close issues COM_STMT_CLOSE for each
// through flushClosableStatements (§4.6).
func (pc *prepareCache) drainClosable() []*preparedStatement {
	pc.mu.Lock()
	defer pc.mu.Unlock()
	drained := pc.pending
	pc.pending = nil
	return drained
}

// purge drops every cached statement without queuing a COM_STMT_CLOSE, for
// use when the server has already invalidated every prepared statement on
// this connection (COM_CHANGE_USER, COM_RESET_CONNECTION) and their ids no
// longer name anything worth closing.
func (pc *prepareCache) purge() {
	if pc.cache != nil {
		pc.cache.Purge()
	}
	pc.mu.Lock()
	pc.pending = nil
	pc.mu.Unlock()
}

// release drops a statement's reference, queuing it for COM_STMT_CLOSE if
// it has fallen out of the cache (or caching is disabled) and is now
// unreferenced.
func (pc *prepareCache) release(stmt *preparedStatement) {
	if stmt.release() {
		pc.mu.Lock()
		pc.pending = append(pc.pending, stmt)
		pc.mu.Unlock()
	}
}
