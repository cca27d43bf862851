// Go MySQL Driver - A MySQL-Driver for Go's database/sql package
//
// Copyright 2013 Julien Schmidt. All rights reserved.
// http://www.julienschmidt.com
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at http://mozilla.org/MPL/2.0/.

package mysql

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
)

var (
	localFileRegistryMu sync.RWMutex
	fileRegister   = map[string]bool{}
	readerRegister = map[string]func() io.Reader{}
)

// RegisterLocalFile whitelists filepath for use by "LOAD DATA LOCAL INFILE
// <filepath>" (§4.6, §6 allowLocalInfile). Without registering (or setting
// Config.AllowLocalInfile), a server's LOCAL_INFILE request for that path
// is refused.
func RegisterLocalFile(filepath string) {
	localFileRegistryMu.Lock()
	fileRegister[filepath] = true
	localFileRegistryMu.Unlock()
}

// DeregisterLocalFile removes filepath from the whitelist.
func DeregisterLocalFile(filepath string) {
	localFileRegistryMu.Lock()
	delete(fileRegister, filepath)
	localFileRegistryMu.Unlock()
}

// RegisterReaderHandler registers a constructor for use by "LOAD DATA LOCAL
// INFILE Reader::<name>". Each handled request calls cb once for a fresh
// io.Reader; cb itself is not safe to share a single open Reader across
// concurrent requests.
func RegisterReaderHandler(name string, cb func() io.Reader) {
	localFileRegistryMu.Lock()
	readerRegister[name] = cb
	localFileRegistryMu.Unlock()
}

// DeregisterReaderHandler removes the reader handler registered under name.
func DeregisterReaderHandler(name string) {
	localFileRegistryMu.Lock()
	delete(readerRegister, name)
	localFileRegistryMu.Unlock()
}

func lookupLocalFileSource(cfg *Config, name string) (io.Reader, io.Closer, error) {
	if strings.HasPrefix(name, "Reader::") {
		key := name[len("Reader::"):]
		localFileRegistryMu.RLock()
		cb, ok := readerRegister[key]
		localFileRegistryMu.RUnlock()
		if !ok {
			return nil, nil, fmt.Errorf("mysql: reader %q is not registered", key)
		}
		rdr := cb()
		if rdr == nil {
			return nil, nil, fmt.Errorf("mysql: reader %q returned nil", key)
		}
		return rdr, nil, nil
	}

	localFileRegistryMu.RLock()
	allowed := fileRegister[name]
	localFileRegistryMu.RUnlock()
	if !allowed && !cfg.AllowLocalInfile {
		return nil, nil, fmt.Errorf("mysql: local file %q is not registered; set Config.AllowLocalInfile or RegisterLocalFile to allow it", name)
	}
	f, err := os.Open(name)
	if err != nil {
		return nil, nil, err
	}
	return f, f, nil
}

// handleLocalInfileRequest answers a server LOCAL_INFILE request (§4.6
// "Supplemented features"): name is the server-requested path or
// "Reader::<name>" handle, already stripped of the 0xfb marker byte. The
// content is streamed as a sequence of packets continuing the command's
// sequence id, terminated by an empty packet, after which the caller reads
// the server's final OK/ERR.
func (c *Conn) handleLocalInfileRequest(name string) error {
	src, closer, lookupErr := lookupLocalFileSource(c.cfg, name)
	if closer != nil {
		defer closer.Close()
	}

	if lookupErr == nil {
		chunk := acquireBytes(defaultBufSize)
		defer releaseBytes(chunk)
		for {
			n, err := src.Read(chunk)
			if n > 0 {
				if werr := writePacket(c.netConn, c.seq, chunk[:n]); werr != nil {
					return werr
				}
			}
			if err == io.EOF {
				break
			}
			if err != nil {
				lookupErr = err
				break
			}
		}
	}

	// terminate with an empty packet regardless of whether streaming
	// succeeded, so the server's packet sequence stays synchronized and it
	// can report its own error for an aborted transfer.
	if err := writePacket(c.netConn, c.seq, nil); err != nil {
		return err
	}
	return lookupErr
}
