// Go MySQL Driver - A MySQL-Driver for Go's database/sql package
//
// Copyright 2023 The Go-MySQL-Driver Authors. All rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at http://mozilla.org/MPL/2.0/.

package mysql

import (
	"crypto/rsa"
	"crypto/tls"
	"fmt"
	"time"

	"github.com/mariadb-go/protoengine/backoff"
)

// SSLMode selects how aggressively the (externally supplied) TLS layer is
// verified; the engine itself treats TLS as an opaque duplex stream and
// only consults this to decide whether to request SSL during the
// handshake (§1, §6).
type SSLMode int

const (
	SSLDisable SSLMode = iota
	SSLTrust
	SSLVerifyCA
	SSLVerifyFull
	SSLTunnel
)

// Config is the connection configuration recognized by this engine (§6).
// It is populated by an external collaborator (DSN/URL parser, factory);
// parsing connection strings is out of this engine's scope.
type Config struct {
	// Network target. Exactly one of (Host, Port) or Socket is used.
	Host   string
	Port   int
	Socket string

	User   string
	Passwd string
	DBName string

	SSLMode SSLMode
	TLS     *tls.Config

	AllowLocalInfile        bool
	AllowNativePasswords    bool
	AllowCleartextPasswords bool
	AllowOldPasswords       bool
	AllowDialogPasswords    bool
	OtherPasswd             string // additional dialog/PAM passwords, comma separated

	PrepareCacheSize int // LRU capacity; normalize turns 0 into the default (250), so 0 does not disable the cache; a negative value does

	ConnectTimeout time.Duration
	SocketTimeout  time.Duration

	Collation uint16

	SessionVariables map[string]string
	Autocommit       *bool

	TCPKeepAlive       bool
	TCPAbortiveClose   bool

	// RetryPolicy governs ConnectWithRetry's wait between dial attempts on
	// a transient resource error (§7). Nil disables retrying: Connect is
	// tried exactly once.
	RetryPolicy backoff.Policy
	MaxRetries  int

	// ServerPubKeyName names a key registered via RegisterServerPubKey,
	// resolved into pubKey during normalize (§4.4, sha256_password /
	// caching_sha2_password) so those plugins can skip an RSA round trip.
	ServerPubKeyName string

	// pubKey is the resolved form of ServerPubKeyName, consulted directly
	// by cachingSHA2Plugin/sha256Plugin.
	pubKey *rsa.PublicKey
}

// defaultPrepareCacheSize matches the LRU capacity named in §4.6.
const defaultPrepareCacheSize = 250

// normalize fills in defaults before dialing, so callers that construct
// a Config literal don't need to know every default.
func (c *Config) normalize() {
	if c.PrepareCacheSize == 0 {
		c.PrepareCacheSize = defaultPrepareCacheSize
	}
	if c.pubKey == nil && c.ServerPubKeyName != "" {
		c.pubKey = getServerPubKey(c.ServerPubKeyName)
	}
}

func (c *Config) addr() string {
	if c.Socket != "" {
		return c.Socket
	}
	port := c.Port
	if port == 0 {
		port = 3306
	}
	return fmt.Sprintf("%s:%d", c.Host, port)
}
