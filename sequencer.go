// Go MySQL Driver - A MySQL-Driver for Go's database/sql package
//
// Copyright 2023 The Go-MySQL-Driver Authors. All rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at http://mozilla.org/MPL/2.0/.

package mysql

// sequencer is the per-connection packet sequence-id counter (§4.1). It
// wraps mod 256 and is reset to zero at the start of every command
// boundary: a fresh COM_* request, or the start of a server-initiated
// phase such as authentication.
type sequencer struct {
	next uint8
}

// reset restarts the sequence at 0, as required at each command boundary.
func (s *sequencer) reset() {
	s.next = 0
}

// take returns the id to stamp on the next outgoing packet and advances
// the counter.
func (s *sequencer) take() uint8 {
	id := s.next
	s.next++
	return id
}

// expect verifies that an incoming packet's sequence id matches what this
// side expects next, then advances. A mismatch is always fatal to the
// connection (§4.1 Errors).
func (s *sequencer) expect(got uint8) error {
	want := s.next
	s.next++
	if got != want {
		if got > want {
			return errPacketSyncMultiple
		}
		return errPacketSync
	}
	return nil
}
