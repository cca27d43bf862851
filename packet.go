// Go MySQL Driver - A MySQL-Driver for Go's database/sql package
//
// Copyright 2012 The Go-MySQL-Driver Authors. All rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at http://mozilla.org/MPL/2.0/.

package mysql

import (
	"io"
)

// Packets documentation:
// http://dev.mysql.com/doc/internals/en/client-server-protocol.html

// maxPacketPayload is 16MiB-1, the largest payload a single physical packet
// may carry before a compound message must continue into another packet
// (§4.1).
const maxPacketPayload = 1<<24 - 1

// readPacket reads one physical packet, validates its sequence id against
// seq, and returns its payload. It does not reassemble multi-packet
// messages; callers that expect compound messages use readMessage.
func readPacket(buf *buffer, seq *sequencer) ([]byte, error) {
	header, err := buf.readNext(4)
	if err != nil {
		return nil, err
	}

	length := uint32(header[0]) | uint32(header[1])<<8 | uint32(header[2])<<16
	if err := seq.expect(header[3]); err != nil {
		return nil, err
	}

	if length == 0 {
		return []byte{}, nil
	}

	data, err := buf.readNext(int(length))
	if err != nil {
		return nil, err
	}
	// the buffer's slice is only valid until the next read; copy out since
	// callers retain payloads across subsequent packet reads.
	payload := make([]byte, len(data))
	copy(payload, data)
	observeBytes("read", len(payload)+4)
	return payload, nil
}

// readMessage reads one compound message: one or more physical packets
// sharing a logical boundary, reassembled when a packet's payload length
// equals maxPacketPayload (§3, §4.1).
func readMessage(buf *buffer, seq *sequencer) ([]byte, error) {
	msg, err := readPacket(buf, seq)
	if err != nil {
		return nil, err
	}
	if len(msg) < maxPacketPayload {
		return msg, nil
	}

	// continuation: keep reading and appending until a short (or empty)
	// packet terminates the logical message.
	for {
		next, err := readPacket(buf, seq)
		if err != nil {
			return nil, err
		}
		msg = append(msg, next...)
		if len(next) < maxPacketPayload {
			return msg, nil
		}
	}
}

// writeMessage writes payload as one or more physical packets, chunking at
// maxPacketPayload bytes and incrementing the sequence id per chunk. A
// terminating zero-length packet is appended when the payload length is an
// exact multiple of maxPacketPayload, so the receiver's continuation rule
// (length == maxPacketPayload means "more to come") never misfires on an
// exact-multiple payload (§4.1).
func writeMessage(w io.Writer, seq *sequencer, payload []byte) error {
	for {
		chunk := payload
		if len(chunk) > maxPacketPayload {
			chunk = payload[:maxPacketPayload]
		}

		if err := writePacket(w, seq, chunk); err != nil {
			return err
		}

		payload = payload[len(chunk):]
		if len(chunk) < maxPacketPayload {
			return nil
		}
		if len(payload) == 0 {
			// exact multiple: terminate with an empty packet
			return writePacket(w, seq, nil)
		}
	}
}

func writePacket(w io.Writer, seq *sequencer, payload []byte) error {
	header := [4]byte{
		byte(len(payload)),
		byte(len(payload) >> 8),
		byte(len(payload) >> 16),
		seq.take(),
	}
	if _, err := w.Write(header[:]); err != nil {
		return err
	}
	if len(payload) == 0 {
		return nil
	}
	n, err := w.Write(payload)
	if err != nil {
		return err
	}
	if n != len(payload) {
		return io.ErrShortWrite
	}
	observeBytes("written", n+4)
	return nil
}
