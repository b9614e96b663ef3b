// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016 Datadog, Inc.

// Package mocktracer provides a scriptable fake Tracer for downstream
// tests: it installs itself as a FinishedSpanHandler on a real *tracer.
// Tracer so tests can assert on finished spans without a network
// reporter.
package mocktracer

import (
	"sync"

	"github.com/tracecore/tracecore/tracing"
	"github.com/tracecore/tracecore/tracing/tracer"
)

// FinishedSpan is an immutable snapshot of a span recorded by MockTracer.
type FinishedSpan struct {
	Context tracer.TraceContext
	Name    string
	Kind    tracing.SpanKind
	Tags    map[string]string
}

// MockTracer wraps a real *tracer.Tracer, registered as its own
// FinishedSpanHandler so it can record every finished span.
type MockTracer struct {
	*tracer.Tracer

	mu       sync.Mutex
	finished []FinishedSpan
}

var _ tracer.FinishedSpanHandler = (*MockTracer)(nil)

// Handle implements tracer.FinishedSpanHandler.
func (m *MockTracer) Handle(ctx tracer.TraceContext, span *tracer.MutableSpan) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.finished = append(m.finished, FinishedSpan{
		Context: ctx,
		Name:    span.Name(),
		Kind:    span.Kind(),
		Tags:    span.TagsCopy(),
	})
	return true
}

// AlwaysSampleLocal implements tracer.FinishedSpanHandler; MockTracer
// never forces local sampling on its own.
func (m *MockTracer) AlwaysSampleLocal() bool { return false }

// FinishedSpans returns a snapshot copy of every span recorded so far.
func (m *MockTracer) FinishedSpans() []FinishedSpan {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]FinishedSpan, len(m.finished))
	copy(out, m.finished)
	return out
}

// Reset discards every recorded span.
func (m *MockTracer) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.finished = nil
}

// Start installs a MockTracer as the process-wide tracer (see
// tracer.Init) and returns it along with a cleanup function that tears
// the global instance down again.
func Start(opts ...tracer.TracerOption) (*MockTracer, func()) {
	mt := &MockTracer{}
	allOpts := append([]tracer.TracerOption{tracer.WithFinishedSpanHandler(mt)}, opts...)
	t, err := tracer.Init(allOpts...)
	if err != nil {
		panic(err)
	}
	mt.Tracer = t
	return mt, func() { _ = tracer.Close() }
}
