/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package log

import (
	"errors"
	"strings"
	"sync"
)

// Level is a log level for a logging message.
type Level int

// Log levels.
const (
	CRITICAL Level = iota
	ERROR
	WARNING
	INFO
	DEBUG
)

//nolint:gochecknoglobals
var (
	levelNames = [...]string{"CRITICAL", "ERROR", "WARNING", "INFO", "DEBUG"}

	levelsMu sync.RWMutex
	levels   = map[string]Level{}
)

// ParseLevel parses a level name, ignoring case.
func ParseLevel(level string) (Level, error) {
	for i, name := range levelNames {
		if strings.EqualFold(name, level) {
			return Level(i), nil
		}
	}

	return ERROR, errors.New("logger: invalid log level")
}

func (l Level) String() string {
	if l < CRITICAL || int(l) >= len(levelNames) {
		return "UNKNOWN"
	}

	return levelNames[l]
}

// SetLevel sets the level of module. The empty module sets the default, which starts as INFO.
func SetLevel(module string, level Level) {
	levelsMu.Lock()
	defer levelsMu.Unlock()

	levels[module] = level
}

// GetLevel returns the level of module.
func GetLevel(module string) Level {
	levelsMu.RLock()
	defer levelsMu.RUnlock()

	if level, ok := levels[module]; ok {
		return level
	}

	if level, ok := levels[""]; ok {
		return level
	}

	return INFO
}

func enabled(module string, level Level) bool {
	return level <= GetLevel(module)
}
