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

	"github.com/sirupsen/logrus"
)

// log is the package-level logger, swappable via SetLogger. It is backed
// by a structured logrus.Logger so connection-lifecycle fields (thread id,
// plugin name, SQL state) carry through instead of being interpolated
// into a message string.
var (
	logMu sync.RWMutex
	log   = logrus.New()
)

// SetLogger replaces the package-level logger. Passing nil restores a
// logrus logger with default settings.
func SetLogger(l *logrus.Logger) {
	logMu.Lock()
	defer logMu.Unlock()
	if l == nil {
		l = logrus.New()
	}
	log = l
}

func currentLogger() *logrus.Logger {
	logMu.RLock()
	defer logMu.RUnlock()
	return log
}
