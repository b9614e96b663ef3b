// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016 Datadog, Inc.

package tracer

import (
	"sync"
	"time"

	"github.com/tracecore/tracecore/tracing"
)

// Annotation is a single timestamped event attached to a span.
type Annotation struct {
	Timestamp time.Time
	Value     string
}

// Endpoint identifies a service instance for the local or remote side
// of a span.
type Endpoint struct {
	ServiceName string
	IPv4        string
	IPv6        string
	Port        uint16
}

// MutableSpan is the recorder's accumulator: every mutation made on a
// Span between creation and Finish lands here. It is exclusively owned
// by the span that created it; concurrent mutation by user code on the
// same span is undefined, matching the spec's resource model (users are
// expected to serialize). Finish freezes only the finish timestamp: the
// setters do not check the finished flag, so a mutation made after
// Finish still changes this value, after the handler chain has run.
type MutableSpan struct {
	mu sync.Mutex

	name string
	kind tracing.SpanKind

	start    time.Time
	finish   time.Time
	finished bool

	annotations []Annotation
	tags        map[string]string
	local       *Endpoint
	remote      *Endpoint
	err         error
}

func newMutableSpan(start time.Time) *MutableSpan {
	return &MutableSpan{start: start}
}

func (m *MutableSpan) setName(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.name = name
}

func (m *MutableSpan) setTag(key, value string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.tags == nil {
		m.tags = make(map[string]string)
	}
	m.tags[key] = value
}

func (m *MutableSpan) addAnnotation(at time.Time, value string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.annotations = append(m.annotations, Annotation{Timestamp: at, Value: value})
}

func (m *MutableSpan) setKind(kind tracing.SpanKind) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.kind = kind
}

func (m *MutableSpan) setStart(at time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.start = at
}

func (m *MutableSpan) setRemoteEndpoint(e Endpoint) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.remote = &e
}

func (m *MutableSpan) setLocalEndpoint(e *Endpoint) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.local = e
}

func (m *MutableSpan) setError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// markFinished freezes the finish timestamp and reports whether this
// call is the one that did so (false means it was already finished,
// per the DoubleFinish error kind: silently ignored).
func (m *MutableSpan) markFinished(at time.Time, clock func() time.Time) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.finished {
		return false
	}
	if at.IsZero() {
		at = clock()
	}
	m.finish = at
	m.finished = true
	return true
}

// Name returns the span's recorded name. Safe to call after finish.
func (m *MutableSpan) Name() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.name
}

// Kind returns the span's recorded kind.
func (m *MutableSpan) Kind() tracing.SpanKind {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.kind
}

// TagsCopy returns a snapshot copy of the span's tags.
func (m *MutableSpan) TagsCopy() map[string]string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]string, len(m.tags))
	for k, v := range m.tags {
		out[k] = v
	}
	return out
}

// snapshot is an immutable view taken after finish, used by the
// finished-span handler chain and the wire encoder. duration is
// clamped to a minimum of 1µs to avoid zero-duration artifacts.
type finishedSpanSnapshot struct {
	Name        string
	Kind        tracing.SpanKind
	Start       time.Time
	Finish      time.Time
	Duration    time.Duration
	Annotations []Annotation
	Tags        map[string]string
	Local       *Endpoint
	Remote      *Endpoint
	Err         error
}

func (m *MutableSpan) snapshot() finishedSpanSnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	dur := m.finish.Sub(m.start)
	if dur < time.Microsecond {
		dur = time.Microsecond
	}
	annotations := make([]Annotation, len(m.annotations))
	copy(annotations, m.annotations)
	tags := make(map[string]string, len(m.tags))
	for k, v := range m.tags {
		tags[k] = v
	}
	return finishedSpanSnapshot{
		Name:        m.name,
		Kind:        m.kind,
		Start:       m.start,
		Finish:      m.finish,
		Duration:    dur,
		Annotations: annotations,
		Tags:        tags,
		Local:       m.local,
		Remote:      m.remote,
		Err:         m.err,
	}
}
