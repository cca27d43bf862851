// Go MySQL Driver - A MySQL-Driver for Go's database/sql package
//
// Copyright 2023 The Go-MySQL-Driver Authors. All rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at http://mozilla.org/MPL/2.0/.

// Package backoff provides the retry interval strategies an external
// connection factory composes around protoengine.Connect on a transient
// resource error (spec §7): constant, exponential, and no-backoff.
// Connection pooling itself sits outside the engine's scope, but the
// interval policy is a reusable leaf the factory can import directly.
package backoff

import (
	"math"
	"math/rand"
	"time"
)

func init() {
	rand.Seed(time.Now().UnixNano())
}

// Policy computes how long to wait before the order-th retry. order is
// 1-based; order <= 0 always yields zero wait.
type Policy interface {
	NextInterval(order int) time.Duration
}

const (
	defaultBackoffInterval = 500 * time.Millisecond
	defaultJitterInterval  = 200 * time.Millisecond
	defaultMultiplier      = 2
	defaultMaxInterval     = 3 * time.Second
)

// constantPolicy retries at a fixed interval plus jitter.
type constantPolicy struct {
	backoffInterval time.Duration
	jitterInterval  time.Duration
	maxInterval     time.Duration
}

// NewConstant builds a Policy that waits the same interval (plus jitter,
// capped at maxInterval) before every retry.
func NewConstant() Policy {
	return constantPolicy{
		backoffInterval: defaultBackoffInterval,
		jitterInterval:  defaultJitterInterval,
		maxInterval:     defaultMaxInterval,
	}
}

func (c constantPolicy) NextInterval(order int) time.Duration {
	if order <= 0 {
		return 0
	}
	backoffInterval := math.Min(float64(c.backoffInterval), float64(c.maxInterval))
	jitterInterval := rand.Int63n(int64(c.jitterInterval))
	return time.Duration(backoffInterval + float64(jitterInterval))
}

// exponentialPolicy doubles the wait interval on each retry, capped at
// maxInterval, plus jitter.
type exponentialPolicy struct {
	backoffInterval time.Duration
	jitterInterval  time.Duration
	maxInterval     time.Duration
	multiplier      int64
}

// NewExponential builds a Policy that doubles its wait on every retry
// (capped at maxInterval) before adding jitter.
func NewExponential() Policy {
	return exponentialPolicy{
		backoffInterval: defaultBackoffInterval,
		jitterInterval:  defaultJitterInterval,
		maxInterval:     defaultMaxInterval,
		multiplier:      defaultMultiplier,
	}
}

func (e exponentialPolicy) NextInterval(order int) time.Duration {
	if order <= 0 {
		return 0
	}
	exponent := math.Pow(float64(e.multiplier), float64(order-1))
	backoffInterval := math.Min(float64(e.backoffInterval)*exponent, float64(e.maxInterval))
	jitterInterval := rand.Int63n(int64(e.jitterInterval))
	return time.Duration(backoffInterval + float64(jitterInterval))
}

// nonePolicy never waits; retries happen back-to-back.
type nonePolicy struct{}

// NewNone builds a Policy with no wait between retries.
func NewNone() Policy { return nonePolicy{} }

func (nonePolicy) NextInterval(int) time.Duration { return 0 }
