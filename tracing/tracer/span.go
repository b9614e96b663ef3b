// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016 Datadog, Inc.

package tracer

import (
	"time"

	"github.com/tracecore/tracecore/tracing"
)

// realSpan is a recording Span: every mutation lands on its MutableSpan,
// and Finish runs it through the owning Tracer's handler chain.
type realSpan struct {
	tracer *Tracer
	ctx    TraceContext
	rec    *MutableSpan
}

var _ tracing.Span = (*realSpan)(nil)

func (s *realSpan) Name(name string)               { s.rec.setName(name) }
func (s *realSpan) Tag(key, value string)           { s.rec.setTag(key, value) }
func (s *realSpan) Annotate(at time.Time, value string) { s.rec.addAnnotation(at, value) }

func (s *realSpan) Kind(kind tracing.SpanKind) tracing.Span {
	s.rec.setKind(kind)
	return s
}

func (s *realSpan) Start(at time.Time) tracing.Span {
	s.rec.setStart(at)
	return s
}

func (s *realSpan) RemoteEndpoint(serviceName, ipv4, ipv6 string, port uint16) tracing.Span {
	s.rec.setRemoteEndpoint(Endpoint{ServiceName: serviceName, IPv4: ipv4, IPv6: ipv6, Port: port})
	return s
}

func (s *realSpan) Error(err error) tracing.Span {
	s.rec.setError(err)
	return s
}

func (s *realSpan) Context() tracing.SpanContext { return s.ctx }
func (s *realSpan) IsNoop() bool                 { return false }

func (s *realSpan) Finish()                        { s.tracer.finish(s.ctx, s.rec, time.Time{}) }
func (s *realSpan) FinishWithTime(at time.Time)     { s.tracer.finish(s.ctx, s.rec, at) }

// noopSpan has identity (its context is preserved and round-trips, per
// property 8) but produces no record: every mutation is discarded.
type noopSpan struct {
	ctx TraceContext
}

var _ tracing.Span = noopSpan{}

func (n noopSpan) Name(string)               {}
func (n noopSpan) Tag(string, string)         {}
func (n noopSpan) Annotate(time.Time, string) {}

func (n noopSpan) Kind(tracing.SpanKind) tracing.Span                       { return n }
func (n noopSpan) Start(time.Time) tracing.Span                            { return n }
func (n noopSpan) RemoteEndpoint(string, string, string, uint16) tracing.Span { return n }
func (n noopSpan) Error(error) tracing.Span                                 { return n }

func (n noopSpan) Context() tracing.SpanContext { return n.ctx }
func (n noopSpan) IsNoop() bool                 { return true }
func (n noopSpan) Finish()                      {}
func (n noopSpan) FinishWithTime(time.Time)     {}

// scopedSpan pairs a Span with the Scope it opened: Finish finalizes
// the span and then closes the scope, unconditionally, because the
// close is deferred before the span is finalized, so a panic while
// finalizing cannot skip past it.
type scopedSpan struct {
	tracing.Span
	scope tracing.Scope
}

var _ tracing.ScopedSpan = (*scopedSpan)(nil)

func (s *scopedSpan) Finish() {
	defer s.scope.Close()
	s.Span.Finish()
}
