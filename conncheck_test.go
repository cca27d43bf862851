// Go MySQL Driver - A MySQL-Driver for Go's database/sql package
//
// Copyright 2019 The Go-MySQL-Driver Authors. All rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at http://mozilla.org/MPL/2.0/.

//go:build linux || darwin || dragonfly || freebsd || netbsd || openbsd || solaris || illumos
// +build linux darwin dragonfly freebsd netbsd openbsd solaris illumos

package mysql

import (
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// TestStaleConnectionChecks covers the §1 "metadata view" health probe:
// an idle connection whose peer closed the socket is reported invalid
// without the caller needing to write or read a command first.
func TestStaleConnectionChecks(t *testing.T) {
	server, client, err := unixSocketPair()
	if err != nil {
		t.Skipf("unix socket pair unavailable: %v", err)
	}
	defer client.Close()

	c := &Conn{netConn: client}
	require.True(t, c.IsValid())

	server.Close()
	// give the kernel a moment to surface the close as a pollable event;
	// connCheck itself does not block.
	require.Eventually(t, func() bool {
		return !c.IsValid()
	}, time.Second, 10*time.Millisecond)
}

func unixSocketPair() (net.Conn, net.Conn, error) {
	ln, err := net.Listen("unix", "")
	if err != nil {
		return nil, nil, err
	}
	defer ln.Close()

	acceptCh := make(chan net.Conn, 1)
	errCh := make(chan error, 1)
	go func() {
		c, err := ln.Accept()
		if err != nil {
			errCh <- err
			return
		}
		acceptCh <- c
	}()

	client, err := net.Dial("unix", ln.Addr().String())
	if err != nil {
		return nil, nil, err
	}

	select {
	case server := <-acceptCh:
		return server, client, nil
	case err := <-errCh:
		client.Close()
		return nil, nil, err
	}
}
