// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016 Datadog, Inc.

// Package log implements a leveled, rate-limited logger for the tracer
// core. Callers never see an error return from it: it is meant to be
// safe to call from any recording path without forcing every caller to
// handle a logging failure.
package log

import (
	"fmt"
	"os"
	"strings"
	"sync"
	"time"
)

// Level represents the severity of a log line.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// Logger is the minimal capability this package needs from its sink: a
// single already-formatted line. Implementations should be safe for
// concurrent use.
type Logger interface {
	Log(msg string)
}

type defaultLogger struct{ mu sync.Mutex }

func (d *defaultLogger) Log(msg string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	fmt.Fprintln(os.Stderr, msg)
}

var (
	mu             sync.RWMutex
	logger         Logger = &defaultLogger{}
	levelThreshold        = LevelInfo
)

// UseLogger sets l as the active logger and returns a function that
// restores the previous one. It is the only supported way to swap
// loggers, including in tests:
//
//	defer log.UseLogger(myLogger)()
func UseLogger(l Logger) (restore func()) {
	mu.Lock()
	old := logger
	logger = l
	mu.Unlock()
	return func() {
		mu.Lock()
		logger = old
		mu.Unlock()
	}
}

// SetLevel sets the minimum level that will be emitted by Debug/Info/Warn.
// Error is never gated by level.
func SetLevel(l Level) {
	mu.Lock()
	levelThreshold = l
	mu.Unlock()
}

func enabled(l Level) bool {
	mu.RLock()
	defer mu.RUnlock()
	return l >= levelThreshold
}

// DebugEnabled reports whether Debug currently produces output.
func DebugEnabled() bool { return enabled(LevelDebug) }

func emit(l Level, format string, args ...any) {
	if !enabled(l) {
		return
	}
	mu.RLock()
	dst := logger
	mu.RUnlock()
	dst.Log(msg(l.String(), fmt.Sprintf(format, args...)))
}

func msg(level, text string) string {
	return level + ": " + text
}

// Debug logs at LevelDebug.
func Debug(format string, args ...any) { emit(LevelDebug, format, args...) }

// Info logs at LevelInfo.
func Info(format string, args ...any) { emit(LevelInfo, format, args...) }

// Warn logs at LevelWarn.
func Warn(format string, args ...any) { emit(LevelWarn, format, args...) }

// Error logs at LevelError, but suppresses bursts of the same format
// string: repeats within errrate are counted and folded into a single
// summary line on the next Flush or when the errrate timer fires. With
// errrate set to 0 every call is emitted at once and nothing is folded.
func Error(format string, args ...any) {
	errMu.Lock()
	defer errMu.Unlock()
	now := clockNow()
	e, ok := errBuckets[format]
	if !ok {
		errBuckets[format] = &errBucket{first: fmt.Sprintf(format, args...), last: now}
		errOrder = append(errOrder, format)
		if errrate == 0 {
			flushOneLocked(format)
		} else {
			scheduleFlushLocked(now)
		}
		return
	}
	if e.count < defaultErrorLimit {
		e.count++
	}
	e.last = now
}

type errBucket struct {
	first string
	count int
	last  time.Time
}

var (
	errMu      sync.Mutex
	errBuckets = map[string]*errBucket{}
	errOrder   []string
	errrate    = 1 * time.Second
	flushTimer *time.Timer

	// defaultErrorLimit caps the "N additional messages skipped" count
	// shown for a single bucket; once a format repeats this many times
	// before a flush, the summary reads "<limit>+" instead of an exact
	// count.
	defaultErrorLimit = 200

	clockNow = time.Now
)

func scheduleFlushLocked(now time.Time) {
	if flushTimer != nil {
		return
	}
	flushTimer = time.AfterFunc(errrate, func() {
		errMu.Lock()
		defer errMu.Unlock()
		flushTimer = nil
		flushLocked()
	})
}

func flushOneLocked(format string) {
	e, ok := errBuckets[format]
	if !ok {
		return
	}
	delete(errBuckets, format)
	removeOrder(format)
	emitBucket(format, e)
}

func removeOrder(format string) {
	for i, f := range errOrder {
		if f == format {
			errOrder = append(errOrder[:i], errOrder[i+1:]...)
			return
		}
	}
}

func emitBucket(_ string, e *errBucket) {
	text := e.first
	switch {
	case e.count >= defaultErrorLimit:
		text = fmt.Sprintf("%s, %d+ additional messages skipped", e.first, defaultErrorLimit)
	case e.count > 0:
		text = fmt.Sprintf("%s, %d additional messages skipped", e.first, e.count)
	}
	mu.RLock()
	dst := logger
	mu.RUnlock()
	dst.Log(msg("ERROR", text))
}

// Flush emits and clears any error messages currently being
// rate-limited. It is safe to call when there is nothing pending.
func Flush() {
	errMu.Lock()
	defer errMu.Unlock()
	flushLocked()
}

func flushLocked() {
	if flushTimer != nil {
		flushTimer.Stop()
		flushTimer = nil
	}
	for _, format := range errOrder {
		emitBucket(format, errBuckets[format])
		delete(errBuckets, format)
	}
	errOrder = errOrder[:0]
}

// RecordLogger is a Logger that keeps every line it receives, for use
// in tests that want to assert on what the tracer logged.
type RecordLogger struct {
	mu      sync.Mutex
	lines   []string
	ignores []string
}

var _ Logger = (*RecordLogger)(nil)

// Log implements Logger.
func (r *RecordLogger) Log(msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, ig := range r.ignores {
		if strings.Contains(msg, ig) {
			return
		}
	}
	r.lines = append(r.lines, msg)
}

// Ignore adds substrings that, when present in a line, cause that line
// to be dropped rather than recorded. Useful for filtering noise from
// assertions about specific log lines.
func (r *RecordLogger) Ignore(substrings ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ignores = append(r.ignores, substrings...)
}

// Logs returns the recorded lines so far.
func (r *RecordLogger) Logs() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.lines))
	copy(out, r.lines)
	return out
}

// Reset clears recorded lines without clearing ignore rules.
func (r *RecordLogger) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lines = r.lines[:0]
}
