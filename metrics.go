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

	"github.com/prometheus/client_golang/prometheus"
)

// Package-level Prometheus collectors, registered lazily by EnableMetrics
// so importers that never call it register nothing with any registry
// (the counters are still incremented; see EnableMetrics) (§9, grounded on
// mevdschee-tqdbproxy's metrics.Init pattern). Labeled by command/plugin
// name rather than by connection, since connections are not expected to
// carry stable cardinality-safe labels.
var (
	commandsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "protoengine_commands_total",
			Help: "Total COM_* commands issued, by command name.",
		},
		[]string{"command"},
	)

	authDispatchTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "protoengine_auth_dispatch_total",
			Help: "Total authentication plugin dispatches, by plugin name.",
		},
		[]string{"plugin"},
	)

	prepareCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "protoengine_prepare_cache_total",
			Help: "Prepared-statement cache lookups, by outcome (hit/miss/evict).",
		},
		[]string{"outcome"},
	)

	bytesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "protoengine_bytes_total",
			Help: "Bytes moved across the wire, by direction (read/written).",
		},
		[]string{"direction"},
	)

	metricsOnce sync.Once
)

// EnableMetrics registers the engine's Prometheus collectors with reg. Safe
// to call more than once; only the first call's registry wins. The
// counters themselves are incremented regardless of whether this was
// called, so callers that skip it simply get collectors nothing scrapes.
func EnableMetrics(reg prometheus.Registerer) {
	metricsOnce.Do(func() {
		reg.MustRegister(commandsTotal, authDispatchTotal, prepareCacheTotal, bytesTotal)
	})
}

func observeCommand(name string) {
	commandsTotal.WithLabelValues(name).Inc()
}

func observeAuthDispatch(plugin string) {
	authDispatchTotal.WithLabelValues(plugin).Inc()
}

func observePrepareCache(outcome string) {
	prepareCacheTotal.WithLabelValues(outcome).Inc()
}

func observeBytes(direction string, n int) {
	bytesTotal.WithLabelValues(direction).Add(float64(n))
}
