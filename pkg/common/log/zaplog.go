/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package log

import (
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ZapLog is the default Logger, a sugared zap logger named after its module.
// Level filtering is left to the module levels, so the zap core accepts everything.
// Log Format : <TIME IN UTC> <LOG LEVEL> [<MODULE NAME>] <CALLER> <LOG TEXT>.
type ZapLog struct {
	sugar  *zap.SugaredLogger
	module string
}

// NewZapLog returns new ZapLog writing to stdout for the given module.
func NewZapLog(module string) *ZapLog {
	return newZapLog(module, os.Stdout)
}

func newZapLog(module string, w io.Writer) *ZapLog {
	encoderCfg := zap.NewDevelopmentEncoderConfig()
	encoderCfg.EncodeTime = zapcore.TimeEncoderOfLayout("2006-01-02T15:04:05.000Z07:00")
	encoderCfg.EncodeName = func(name string, enc zapcore.PrimitiveArrayEncoder) {
		enc.AppendString("[" + name + "]")
	}

	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encoderCfg), zapcore.AddSync(w), zapcore.DebugLevel)

	// skip ZapLog, Log.logf and the exported Log method
	const callerSkip = 3

	logger := zap.New(core, zap.AddCaller(), zap.AddCallerSkip(callerSkip)).Named(module)

	return &ZapLog{sugar: logger.Sugar(), module: module}
}

// SetOutput sets the output destination for the logger.
func (l *ZapLog) SetOutput(w io.Writer) {
	l.sugar = newZapLog(l.module, w).sugar
}

// Fatalf is CRITICAL log formatted followed by a call to os.Exit(1).
func (l *ZapLog) Fatalf(format string, args ...interface{}) {
	l.sugar.Fatalf(format, args...)
}

// Panicf is CRITICAL log formatted followed by a call to panic().
func (l *ZapLog) Panicf(format string, args ...interface{}) {
	l.sugar.Panicf(format, args...)
}

// Debugf logs verbose messages.
func (l *ZapLog) Debugf(format string, args ...interface{}) {
	l.sugar.Debugf(format, args...)
}

// Infof logs general information messages.
func (l *ZapLog) Infof(format string, args ...interface{}) {
	l.sugar.Infof(format, args...)
}

// Warnf logs possible errors.
func (l *ZapLog) Warnf(format string, args ...interface{}) {
	l.sugar.Warnf(format, args...)
}

// Errorf logs errors.
func (l *ZapLog) Errorf(format string, args ...interface{}) {
	l.sugar.Errorf(format, args...)
}
