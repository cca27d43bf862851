// Go MySQL Driver - A MySQL-Driver for Go's database/sql package
//
// Copyright 2012 Julien Schmidt. All rights reserved.
// http://www.julienschmidt.com
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at http://mozilla.org/MPL/2.0/.

package mysql

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	atomicutil "github.com/mariadb-go/protoengine/internal/atomic"
)

// Conn is one live connection to a MySQL/MariaDB server: the state
// machine of §4.5, driving the handshake, authentication, and then the
// command/result pipeline of §4.6 until Close.
type Conn struct {
	cfg      *Config
	netConn  net.Conn
	buf      *buffer
	seq      *sequencer
	ctx      *Context
	caps     Capability
	registry *CodecRegistry
	plugins  *PluginRegistry
	prepared *prepareCache

	mu     sync.Mutex
	closed atomicutil.Bool

	// authPlugin/authPluginName/authSeed record the plugin and handshake
	// seed that ultimately succeeded, so ChangeUser can recompute an auth
	// response without a fresh TCP handshake (§4.6 COM_CHANGE_USER).
	authPlugin     AuthPlugin
	authPluginName string
	authSeed       []byte
}

// Connect dials cfg's target, performs Protocol::HandshakeV10 and
// authentication, and returns a ready-to-use Conn (§4.5 steps 1-4).
func Connect(ctx context.Context, cfg *Config) (*Conn, error) {
	cfg.normalize()

	nc, err := dialConn(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("mysql: dial: %w", err)
	}

	c := &Conn{
		cfg:      cfg,
		netConn:  nc,
		buf:      newBuffer(nc),
		seq:      &sequencer{},
		ctx:      newContext(),
		registry: NewCodecRegistry(),
		plugins:  NewPluginRegistry(),
	}
	c.prepared = newPrepareCache(cfg.PrepareCacheSize)

	if err := c.handshake(ctx); err != nil {
		nc.Close()
		return nil, err
	}

	currentLogger().WithFields(logrus.Fields{
		"thread_id": c.ctx.ThreadID,
		"server":    c.ctx.ServerVersion.Raw,
	}).Debug("mysql: connection established")

	if err := c.applySessionConfig(); err != nil {
		c.Close()
		return nil, err
	}

	return c, nil
}

// ConnectWithRetry calls Connect, retrying on a transient resource error
// (§7) per cfg.RetryPolicy up to cfg.MaxRetries additional attempts. A nil
// RetryPolicy or MaxRetries <= 0 makes this equivalent to a single Connect.
func ConnectWithRetry(ctx context.Context, cfg *Config) (*Conn, error) {
	c, err := Connect(ctx, cfg)
	if err == nil || cfg.RetryPolicy == nil {
		return c, err
	}

	for attempt := 1; attempt <= cfg.MaxRetries; attempt++ {
		// a ServerError that isn't transient (bad grammar, permission
		// denied, ...) won't be fixed by retrying; anything else (a dial
		// failure, a timeout) is assumed transient.
		var se *ServerError
		if errors.As(err, &se) && se.Class != ClassTransientResource {
			return nil, err
		}

		wait := cfg.RetryPolicy.NextInterval(attempt)
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}

		currentLogger().WithField("attempt", attempt).Debug("mysql: retrying connect")
		c, err = Connect(ctx, cfg)
		if err == nil {
			return c, nil
		}
	}
	return nil, err
}

func dialConn(ctx context.Context, cfg *Config) (net.Conn, error) {
	d := net.Dialer{Timeout: cfg.ConnectTimeout}
	network := "tcp"
	if cfg.Socket != "" {
		network = "unix"
	}
	return d.DialContext(ctx, network, cfg.addr())
}

// handshake implements §4.5 steps 1-4: read the server's greeting,
// negotiate capabilities and TLS, then hand off to the auth plugin loop.
func (c *Conn) handshake(ctx context.Context) error {
	data, err := readMessage(c.buf, c.seq)
	if err != nil {
		return err
	}
	if isErrPacket(data) {
		se, err := parseServerError(data[1:])
		if err != nil {
			return err
		}
		return se
	}

	hs, err := parseInitialHandshake(data)
	if err != nil {
		return err
	}
	c.ctx.ServerVersion = hs.ServerVersion
	c.ctx.ThreadID = hs.ThreadID

	caps := negotiate(hs.Capabilities, c.cfg)
	if c.cfg.TLS != nil {
		if !caps.Has(clientSSL) {
			return ErrSSLRequired
		}
		if err := c.upgradeTLS(ctx, caps); err != nil {
			return err
		}
	}

	pluginName := hs.AuthPluginName
	if pluginName == "" {
		pluginName = "mysql_native_password"
	}
	plugin, err := c.plugins.MustGetPlugin(pluginName)
	if err != nil {
		return err
	}

	c.caps = caps
	c.ctx.Capabilities = caps

	observeAuthDispatch(pluginName)
	authResp, err := plugin.Next(c.ctx, hs.Seed, nil, c.cfg)
	if err != nil {
		return err
	}

	respPayload := buildHandshakeResponse(caps, c.cfg, pluginName, authResp)
	if err := writeMessage(c.netConn, c.seq, respPayload); err != nil {
		return err
	}

	return c.authLoop(hs.Seed, pluginName, plugin)
}

// upgradeTLS sends the SSLRequest half-packet and switches the connection
// to TLS before the full HandshakeResponse41 is sent (§4.5 step 2).
func (c *Conn) upgradeTLS(ctx context.Context, caps Capability) error {
	buf := make([]byte, 32)
	copy(buf[0:4], uint32ToBytes(uint32(caps)))
	copy(buf[4:8], uint32ToBytes(1<<24-1))
	collation := c.cfg.Collation
	if collation == 0 {
		collation = defaultCollationID
	}
	buf[8] = byte(collation)

	if err := writeMessage(c.netConn, c.seq, buf); err != nil {
		return err
	}

	tlsConn := tls.Client(c.netConn, c.cfg.TLS)
	if err := tlsConn.HandshakeContext(ctx); err != nil {
		return fmt.Errorf("mysql: TLS handshake: %w", err)
	}
	c.netConn = tlsConn
	c.buf = newBuffer(tlsConn)
	return nil
}

// authLoop drives the auth plugin across however many server round trips
// it needs (§4.4): AuthMoreData re-invokes the same plugin, EOF switches
// to a different plugin, OK/ERR terminate the exchange.
func (c *Conn) authLoop(seed []byte, pluginName string, plugin AuthPlugin) error {
	for {
		data, err := readMessage(c.buf, c.seq)
		if err != nil {
			return err
		}

		switch {
		case isOKPacket(data):
			ok, err := parseOK(data[1:], c.caps)
			if err != nil {
				return err
			}
			c.ctx.applyStatus(ok.StatusFlags)
			c.authPlugin, c.authPluginName, c.authSeed = plugin, pluginName, seed
			return nil

		case isErrPacket(data):
			se, err := parseServerError(data[1:])
			if err != nil {
				return err
			}
			return se

		case isAuthMoreDataPacket(data):
			observeAuthDispatch(pluginName)
			next, err := plugin.Next(c.ctx, seed, data[1:], c.cfg)
			if err != nil {
				return err
			}
			if next == nil {
				continue
			}
			if err := writeMessage(c.netConn, c.seq, next); err != nil {
				return err
			}

		case len(data) > 0 && data[0] == iEOF:
			newPluginName, newSeed, err := parseAuthSwitchRequest(data)
			if err != nil {
				return err
			}
			p, err := c.plugins.MustGetPlugin(newPluginName)
			if err != nil {
				return err
			}
			plugin, pluginName, seed = p, newPluginName, newSeed

			observeAuthDispatch(pluginName)
			resp, err := plugin.Next(c.ctx, seed, nil, c.cfg)
			if err != nil {
				return err
			}
			if err := writeMessage(c.netConn, c.seq, resp); err != nil {
				return err
			}

		default:
			var got byte
			if len(data) > 0 {
				got = data[0]
			}
			return &ProtocolError{Phase: "authentication", Got: got}
		}
	}
}

// applySessionConfig issues the connection-level SET statements Config
// asks for once the handshake completes (§6).
func (c *Conn) applySessionConfig() error {
	if c.cfg.DBName != "" && !c.caps.Has(clientConnectWithDB) {
		if err := c.nextCommand(buildComInitDB(c.cfg.DBName)); err != nil {
			return err
		}
		if _, err := c.readStatusResult(""); err != nil {
			return err
		}
	}
	for k, v := range c.cfg.SessionVariables {
		if _, err := c.Exec(context.Background(), fmt.Sprintf("SET %s=%s", k, v)); err != nil {
			return fmt.Errorf("mysql: applying session variable %q: %w", k, err)
		}
	}
	if c.cfg.Autocommit != nil {
		val := "0"
		if *c.cfg.Autocommit {
			val = "1"
		}
		if _, err := c.Exec(context.Background(), "SET autocommit="+val); err != nil {
			return err
		}
	}
	return nil
}

// ChangeUser re-authenticates the connection as a different account via
// COM_CHANGE_USER (§4.6), reusing the capabilities and auth plugin that
// succeeded at handshake time instead of reconnecting.
func (c *Conn) ChangeUser(ctx context.Context, user, password, dbName string) error {
	if c.authPlugin == nil {
		return ErrInvalidConn
	}

	cfg := *c.cfg
	cfg.User, cfg.Passwd, cfg.DBName = user, password, dbName

	observeAuthDispatch(c.authPluginName)
	authResp, err := c.authPlugin.Next(c.ctx, c.authSeed, nil, &cfg)
	if err != nil {
		return err
	}

	if err := c.nextCommand(buildComChangeUser(&cfg, c.authPluginName, authResp, c.caps)); err != nil {
		return err
	}
	if err := c.authLoop(c.authSeed, c.authPluginName, c.authPlugin); err != nil {
		return err
	}
	c.cfg = &cfg
	c.prepared.purge()
	return nil
}

// ResetConnection clears session state (transaction, user variables,
// temporary tables) via COM_RESET_CONNECTION without a fresh handshake
// (§4.6), then reapplies Config's session-level settings.
func (c *Conn) ResetConnection(ctx context.Context) error {
	if err := c.nextCommand(buildComResetConnection()); err != nil {
		return err
	}
	if _, err := c.readStatusResult(""); err != nil {
		return err
	}
	c.prepared.purge()
	return c.applySessionConfig()
}

// IsValid probes the idle connection for staleness before a pool hands it
// back out (§1 "metadata view", supplemented from conncheck.go): it polls
// the socket for unexpected readable/error events without blocking. A
// connection mid-command should never be probed; callers only call this
// between commands, when the connection is otherwise idle.
func (c *Conn) IsValid() bool {
	if c.closed.IsSet() {
		return false
	}
	return connCheck(c.netConn) == nil
}

// Close sends COM_QUIT and releases the underlying socket. Close is safe
// to call more than once.
func (c *Conn) Close() error {
	if !c.closed.TrySet(true) {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	c.seq.reset()
	_ = writeMessage(c.netConn, c.seq, buildComQuit())
	return c.netConn.Close()
}

// nextCommand resets the sequence id and writes a command-phase message,
// as required at every command boundary (§4.1, §4.6).
func (c *Conn) nextCommand(payload []byte) error {
	c.seq.reset()
	if len(payload) > 0 {
		observeCommand(commandName(commandType(payload[0])))
	}
	return writeMessage(c.netConn, c.seq, payload)
}

// commandName renders a commandType for the commands_total metric label.
func commandName(t commandType) string {
	switch t {
	case comQuit:
		return "quit"
	case comInitDB:
		return "init_db"
	case comQuery:
		return "query"
	case comPing:
		return "ping"
	case comStmtPrepare:
		return "stmt_prepare"
	case comStmtExecute:
		return "stmt_execute"
	case comStmtClose:
		return "stmt_close"
	case comStmtReset:
		return "stmt_reset"
	case comStmtFetch:
		return "stmt_fetch"
	case comResetConnection:
		return "reset_connection"
	case comChangeUser:
		return "change_user"
	default:
		return "unknown"
	}
}

func (c *Conn) readServerMessage() ([]byte, error) {
	return readMessage(c.buf, c.seq)
}

// parseAuthSwitchRequest decodes an AuthSwitchRequest packet (§4.4): a
// 0xfe marker, a NUL-terminated plugin name, then the new seed.
func parseAuthSwitchRequest(data []byte) (plugin string, seed []byte, err error) {
	if len(data) < 2 {
		return "", nil, fmt.Errorf("%w: short auth switch request", errMalformedPacket)
	}
	body := data[1:]
	end := 0
	for end < len(body) && body[end] != 0 {
		end++
	}
	if end >= len(body) {
		return "", nil, fmt.Errorf("%w: unterminated auth switch plugin name", errMalformedPacket)
	}
	plugin = string(body[:end])
	seed = append([]byte(nil), body[end+1:]...)
	if len(seed) > 0 && seed[len(seed)-1] == 0 {
		seed = seed[:len(seed)-1]
	}
	return plugin, seed, nil
}
