// Go MySQL Driver - A MySQL-Driver for Go's database/sql package
//
// Copyright 2023 The Go-MySQL-Driver Authors. All rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at http://mozilla.org/MPL/2.0/.

package mysql

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteReadMessageRoundTrip(t *testing.T) {
	payloads := [][]byte{
		{},
		{0x01},
		bytes.Repeat([]byte{0xab}, 1000),
	}
	for _, want := range payloads {
		var wireBuf bytes.Buffer
		wseq := &sequencer{}
		require.NoError(t, writeMessage(&wireBuf, wseq, want))

		rseq := &sequencer{}
		got, err := readMessage(newBuffer(&wireBuf), rseq)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
}

func TestWriteMessageChunksAtMaxPayload(t *testing.T) {
	payload := bytes.Repeat([]byte{0x7f}, maxPacketPayload+10)
	var wireBuf bytes.Buffer
	wseq := &sequencer{}
	require.NoError(t, writeMessage(&wireBuf, wseq, payload))

	rseq := &sequencer{}
	got, err := readMessage(newBuffer(&wireBuf), rseq)
	require.NoError(t, err)
	assert.Equal(t, payload, got)
	// two chunks consumed two contiguous sequence ids
	assert.Equal(t, uint8(2), rseq.next)
}

func TestWriteMessageExactMultipleAppendsTerminator(t *testing.T) {
	payload := bytes.Repeat([]byte{0x01}, maxPacketPayload)
	var wireBuf bytes.Buffer
	require.NoError(t, writeMessage(&wireBuf, &sequencer{}, payload))

	rseq := &sequencer{}
	got, err := readMessage(newBuffer(&wireBuf), rseq)
	require.NoError(t, err)
	assert.Equal(t, payload, got)
	assert.Equal(t, uint8(2), rseq.next, "full chunk + empty terminator both consume a sequence id")
}

func TestSequencerDetectsMismatch(t *testing.T) {
	var wireBuf bytes.Buffer
	require.NoError(t, writePacket(&wireBuf, &sequencer{next: 5}, []byte("hi")))

	_, err := readMessage(newBuffer(&wireBuf), &sequencer{next: 0})
	assert.ErrorIs(t, err, errPacketSyncMultiple)
}

func TestSequencerWrapsModulo256(t *testing.T) {
	s := &sequencer{next: 255}
	assert.Equal(t, uint8(255), s.take())
	assert.Equal(t, uint8(0), s.next)
}

func TestSequencerReset(t *testing.T) {
	s := &sequencer{next: 42}
	s.reset()
	assert.Equal(t, uint8(0), s.next)
}
