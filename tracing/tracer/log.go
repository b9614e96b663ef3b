// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016 Datadog, Inc.

package tracer

import (
	"strings"

	"github.com/tracecore/tracecore/internal/log"
)

// LogLevel mirrors internal/log.Level for embedders that want to plug a
// level-aware callback without importing internal/log directly.
type LogLevel int

const (
	LogDebug LogLevel = iota
	LogInfo
	LogWarn
	LogError
)

var logPrefixes = map[string]LogLevel{
	"DEBUG: ": LogDebug,
	"INFO: ":  LogInfo,
	"WARN: ":  LogWarn,
	"ERROR: ": LogError,
}

type adaptedLogger struct {
	fn func(lvl LogLevel, msg string, args ...any)
}

func (a adaptedLogger) Log(msg string) {
	for prefix, lvl := range logPrefixes {
		if strings.HasPrefix(msg, prefix) {
			a.fn(lvl, msg[len(prefix):])
			return
		}
	}
	a.fn(LogInfo, msg)
}

// AdaptLogger bridges a level-aware callback into the internal/log.Logger
// capability expected by WithLogger, so integration shims can receive a
// (LogLevel, message) pair instead of implementing internal/log.Logger
// directly.
func AdaptLogger(fn func(lvl LogLevel, msg string, args ...any)) log.Logger {
	return adaptedLogger{fn: fn}
}
