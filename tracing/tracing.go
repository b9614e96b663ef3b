// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016 Datadog, Inc.

// Package tracing defines the capability types exposed to instrumented
// code: the Span and SpanCustomizer handles, span kinds, and the error
// values a TraceContext builder can return. The concrete TraceContext, the
// Tracer orchestrator, and every other implementation detail live in
// the tracer subpackage; this package exists so that code which only
// needs to record work never has to import it.
package tracing

import "time"

// SpanKind classifies the role a span plays in an RPC, matching the
// zipkin v2 wire vocabulary. The zero value means unspecified.
type SpanKind string

const (
	KindClient   SpanKind = "CLIENT"
	KindServer   SpanKind = "SERVER"
	KindProducer SpanKind = "PRODUCER"
	KindConsumer SpanKind = "CONSUMER"
)

// SpanContext is the read-only identity of a span: enough for a caller
// to log or correlate without reaching into the tracer package.
type SpanContext interface {
	TraceIDHex() string
	SpanIDHex() string
}

// SpanCustomizer is the subset of span mutation safe to expose to code
// that shouldn't see finish/scope lifecycle methods, e.g. a handler
// registered by an unrelated package.
type SpanCustomizer interface {
	Name(name string)
	Tag(key, value string)
	Annotate(at time.Time, value string)
}

// Span is the full recording capability returned by the Tracer's
// factory methods. Kind/Start/RemoteEndpoint/Error return the Span
// itself so call sites can chain them the way a builder would:
//
//	span := tracer.NewTrace()
//	span.Kind(tracing.KindClient).Start(now)
type Span interface {
	SpanCustomizer

	Kind(kind SpanKind) Span
	Start(at time.Time) Span
	RemoteEndpoint(serviceName, ipv4, ipv6 string, port uint16) Span
	Error(err error) Span

	Context() SpanContext
	IsNoop() bool

	Finish()
	FinishWithTime(at time.Time)
}

// ScopedSpan is returned by StartScopedSpan: finishing it also closes
// the scope it opened.
type ScopedSpan interface {
	SpanCustomizer
	Context() SpanContext
	IsNoop() bool
	Finish()
}

// Scope represents "this context is current until Close." Closing twice
// is a no-op; closing out of LIFO order is a programmer error that gets
// logged, not panicked on.
type Scope interface {
	Close()
}

type noopCustomizer struct{}

func (noopCustomizer) Name(string)              {}
func (noopCustomizer) Tag(string, string)        {}
func (noopCustomizer) Annotate(time.Time, string) {}

// NoopCustomizer is the singleton SpanCustomizer returned whenever there
// is no recording current span to customize.
var NoopCustomizer SpanCustomizer = &noopCustomizer{}
