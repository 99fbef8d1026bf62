/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package log is the module logger of the repository. Every module filters by its own level and writes
// through zap unless a custom LoggerProvider was installed with Initialize before the first log line.
package log

import (
	"sync"
)

// Logger represents a general-purpose logger.
type Logger interface {
	Panicf(msg string, args ...interface{})
	Fatalf(msg string, args ...interface{})
	Errorf(msg string, args ...interface{})
	Warnf(msg string, args ...interface{})
	Infof(msg string, args ...interface{})
	Debugf(msg string, args ...interface{})
}

// LoggerProvider is a factory for module loggers.
type LoggerProvider interface {
	GetLogger(module string) Logger
}

//nolint:gochecknoglobals
var (
	provider     LoggerProvider
	providerOnce sync.Once
)

// Initialize installs a custom provider. Calls after the first log line have no effect.
func Initialize(p LoggerProvider) {
	providerOnce.Do(func() { provider = p })
}

type zapProvider struct{}

func (zapProvider) GetLogger(module string) Logger {
	return NewZapLog(module)
}

func getLogger(module string) Logger {
	providerOnce.Do(func() { provider = zapProvider{} })

	return provider.GetLogger(module)
}

// Log is the logger of one module. The backend is resolved on first use.
type Log struct {
	module string
	once   sync.Once
	out    Logger
}

// New returns the logger of module.
func New(module string) *Log {
	return &Log{module: module}
}

// Fatalf logs and exits, depending on the backend.
func (l *Log) Fatalf(msg string, args ...interface{}) {
	l.logf(CRITICAL, l.backend().Fatalf, msg, args)
}

// Panicf logs and panics, depending on the backend.
func (l *Log) Panicf(msg string, args ...interface{}) {
	l.logf(CRITICAL, l.backend().Panicf, msg, args)
}

// Errorf logs at ERROR.
func (l *Log) Errorf(msg string, args ...interface{}) {
	l.logf(ERROR, l.backend().Errorf, msg, args)
}

// Warnf logs at WARNING.
func (l *Log) Warnf(msg string, args ...interface{}) {
	l.logf(WARNING, l.backend().Warnf, msg, args)
}

// Infof logs at INFO.
func (l *Log) Infof(msg string, args ...interface{}) {
	l.logf(INFO, l.backend().Infof, msg, args)
}

// Debugf logs at DEBUG.
func (l *Log) Debugf(msg string, args ...interface{}) {
	l.logf(DEBUG, l.backend().Debugf, msg, args)
}

func (l *Log) logf(level Level, out func(string, ...interface{}), msg string, args []interface{}) {
	if !enabled(l.module, level) {
		return
	}

	out(msg, args...)
}

func (l *Log) backend() Logger {
	l.once.Do(func() { l.out = getLogger(l.module) })

	return l.out
}
