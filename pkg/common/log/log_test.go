/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package log

import (
	"bytes"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

const (
	msgFormat = "brown %s jumps over the lazy %s"
	msgArg1   = "fox"
	msgArg2   = "dog"
)

// TestDefaultLogger tests the zap backend used when Initialize was never called.
func TestDefaultLogger(t *testing.T) {
	providerOnce = sync.Once{}
	defer func() { providerOnce = sync.Once{} }()

	const module = "sample-module"

	logger := New(module)

	var buf bytes.Buffer

	// force logger instance loading to switch output of logger to buffer for testing
	logger.Debugf("sample output")
	logger.out.(*ZapLog).SetOutput(&buf)

	SetLevel(module, WARNING)

	logger.Infof(msgFormat, msgArg1, msgArg2)
	require.Empty(t, buf.String())

	logger.Warnf(msgFormat, msgArg1, msgArg2)
	require.Contains(t, buf.String(), "WARN")
	require.Contains(t, buf.String(), "["+module+"]")
	require.Contains(t, buf.String(), fmt.Sprintf(msgFormat, msgArg1, msgArg2))
	buf.Reset()

	SetLevel(module, DEBUG)

	logger.Debugf(msgFormat, msgArg1, msgArg2)
	require.Contains(t, buf.String(), "DEBUG")
	buf.Reset()

	require.Panics(t, func() {
		logger.Panicf(msgFormat, msgArg1, msgArg2)
	})
	require.Contains(t, buf.String(), "PANIC")
}

// TestCustomLogger tests logging through a custom logging provider.
func TestCustomLogger(t *testing.T) {
	providerOnce = sync.Once{}
	defer func() { providerOnce = sync.Once{} }()

	recorder := &recordingProvider{}
	Initialize(recorder)

	const module = "sample-module-custom"

	SetLevel(module, INFO)

	logger := New(module)
	logger.Debugf("hidden")
	logger.Infof(msgFormat, msgArg1, msgArg2)
	logger.Errorf("failure %d", 1)

	require.Equal(t, []string{
		"INFO " + fmt.Sprintf(msgFormat, msgArg1, msgArg2),
		"ERROR failure 1",
	}, recorder.lines(module))
}

// TestAllLevels tests logging level behaviour
// logging levels can be set per modules, if not set then it will default to 'INFO'.
func TestAllLevels(t *testing.T) {
	module := "sample-module-critical"
	SetLevel(module, CRITICAL)
	require.Equal(t, CRITICAL, GetLevel(module))
	verifyLevels(t, module, []Level{CRITICAL}, []Level{ERROR, WARNING, INFO, DEBUG})

	module = "sample-module-error"
	SetLevel(module, ERROR)
	require.Equal(t, ERROR, GetLevel(module))
	verifyLevels(t, module, []Level{CRITICAL, ERROR}, []Level{WARNING, INFO, DEBUG})

	module = "sample-module-warning"
	SetLevel(module, WARNING)
	require.Equal(t, WARNING, GetLevel(module))
	verifyLevels(t, module, []Level{CRITICAL, ERROR, WARNING}, []Level{INFO, DEBUG})

	module = "sample-module-debug"
	SetLevel(module, DEBUG)
	require.Equal(t, DEBUG, GetLevel(module))
	verifyLevels(t, module, []Level{CRITICAL, ERROR, WARNING, INFO, DEBUG}, []Level{})

	require.Equal(t, INFO, GetLevel("sample-module-unset"))
}

// TestLogLevel testing 'ParseLevel()' used for parsing log levels from strings.
func TestLogLevel(t *testing.T) {
	verifyLevelsNoError := func(expected Level, levels ...string) {
		for _, level := range levels {
			actual, err := ParseLevel(level)
			require.NoError(t, err, "not supposed to fail while parsing level string [%s]", level)
			require.Equal(t, expected, actual)
		}
	}

	verifyLevelsNoError(CRITICAL, "critical", "CRITICAL", "CriticAL")
	verifyLevelsNoError(ERROR, "error", "ERROR", "ErroR")
	verifyLevelsNoError(WARNING, "warning", "WARNING", "WarninG")
	verifyLevelsNoError(DEBUG, "debug", "DEBUG", "DebUg")
	verifyLevelsNoError(INFO, "info", "INFO", "iNFo")

	for _, level := range []string{"", "D", "DE BUG", "."} {
		_, err := ParseLevel(level)
		require.Error(t, err, "not supposed to succeed while parsing level string [%s]", level)
	}

	require.Equal(t, "UNKNOWN", Level(42).String())
	require.Equal(t, "WARNING", WARNING.String())
}

func verifyLevels(t *testing.T, module string, on, off []Level) {
	t.Helper()

	for _, level := range on {
		require.True(t, enabled(module, level),
			"expected level [%s] to be enabled for module [%s]", level, module)
	}

	for _, level := range off {
		require.False(t, enabled(module, level),
			"expected level [%s] to be disabled for module [%s]", level, module)
	}
}

type recordingProvider struct {
	mu     sync.Mutex
	output map[string][]string
}

func (p *recordingProvider) GetLogger(module string) Logger {
	return &recordingLogger{provider: p, module: module}
}

func (p *recordingProvider) record(module, line string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.output == nil {
		p.output = map[string][]string{}
	}

	p.output[module] = append(p.output[module], line)
}

func (p *recordingProvider) lines(module string) []string {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.output[module]
}

type recordingLogger struct {
	provider *recordingProvider
	module   string
}

func (l *recordingLogger) logf(level Level, msg string, args ...interface{}) {
	l.provider.record(l.module, level.String()+" "+fmt.Sprintf(msg, args...))
}

func (l *recordingLogger) Panicf(msg string, args ...interface{}) { l.logf(CRITICAL, msg, args...) }
func (l *recordingLogger) Fatalf(msg string, args ...interface{}) { l.logf(CRITICAL, msg, args...) }
func (l *recordingLogger) Errorf(msg string, args ...interface{}) { l.logf(ERROR, msg, args...) }
func (l *recordingLogger) Warnf(msg string, args ...interface{})  { l.logf(WARNING, msg, args...) }
func (l *recordingLogger) Infof(msg string, args ...interface{})  { l.logf(INFO, msg, args...) }
func (l *recordingLogger) Debugf(msg string, args ...interface{}) { l.logf(DEBUG, msg, args...) }
