// Go MySQL Driver - A MySQL-Driver for Go's database/sql package
//
// Copyright 2023 The Go-MySQL-Driver Authors. All rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at http://mozilla.org/MPL/2.0/.

package mysql

import "fmt"

// AuthPlugin is the single-method contract every authentication plugin
// implements (§4.4): given the connection context, the server's seed, the
// config, and the most recent server AuthMoreData (nil on the plugin's
// first invocation), return the next client message to send. A plugin is
// terminal when the server replies with OK; the connection state machine
// drives that, not the plugin itself.
type AuthPlugin interface {
	Name() string
	Next(ctx *Context, seed []byte, serverData []byte, cfg *Config) ([]byte, error)
}

// PluginRegistry dispatches by server-advertised plugin name (§4.4).
type PluginRegistry struct {
	plugins map[string]AuthPlugin
}

// NewPluginRegistry builds the registry with the four required plugins,
// plus the additional plugins MariaDB and legacy MySQL servers advertise.
func NewPluginRegistry() *PluginRegistry {
	r := &PluginRegistry{plugins: make(map[string]AuthPlugin)}
	r.Register(&nativePasswordPlugin{})
	r.Register(&clearPasswordPlugin{})
	r.Register(&cachingSHA2Plugin{})
	r.Register(&ed25519Plugin{})
	r.Register(&sha256Plugin{})
	r.Register(&oldPasswordPlugin{})
	r.Register(&dialogPlugin{})
	return r
}

func (r *PluginRegistry) Register(plugin AuthPlugin) {
	r.plugins[plugin.Name()] = plugin
}

func (r *PluginRegistry) GetPlugin(name string) (AuthPlugin, bool) {
	plugin, ok := r.plugins[name]
	return plugin, ok
}

func (r *PluginRegistry) MustGetPlugin(name string) (AuthPlugin, error) {
	p, ok := r.GetPlugin(name)
	if !ok {
		return nil, fmt.Errorf("%s: %w", name, ErrUnknownAuthPlugin)
	}
	return p, nil
}
