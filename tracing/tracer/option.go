// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016 Datadog, Inc.

package tracer

import (
	"time"

	"github.com/tracecore/tracecore/internal/log"
)

// config accumulates TracerOption values; newConfig validates and
// normalizes it before NewTracer freezes an immutable *Tracer from it.
type config struct {
	localServiceName string
	localEndpoint    *Endpoint

	sampler     Sampler
	propagation PropagationFactory
	current     CurrentTraceContext

	traceID128Bit bool
	supportsJoin  bool
	clock         func() time.Time

	reporter Reporter
	handlers []FinishedSpanHandler

	alwaysReportSpans bool
	logger            log.Logger
}

// TracerOption configures a Tracer at construction time.
type TracerOption func(*config)

// WithLocalServiceName names this process's contribution to a trace.
// Defaults to "unknown".
func WithLocalServiceName(name string) TracerOption {
	return func(c *config) { c.localServiceName = name }
}

// WithLocalEndpoint sets the full local endpoint attached to every
// reported span.
func WithLocalEndpoint(serviceName, ipv4, ipv6 string, port uint16) TracerOption {
	return func(c *config) {
		c.localEndpoint = &Endpoint{ServiceName: serviceName, IPv4: ipv4, IPv6: ipv6, Port: port}
	}
}

// WithSampler overrides the default always-sample policy.
func WithSampler(s Sampler) TracerOption {
	return func(c *config) { c.sampler = s }
}

// WithPropagationFactory overrides the default no-op propagation
// factory. If the factory requires 128-bit trace ids or doesn't
// support join, the Tracer's own config is forced to match.
func WithPropagationFactory(p PropagationFactory) TracerOption {
	return func(c *config) { c.propagation = p }
}

// WithCurrentTraceContext overrides the default goroutine-local stack,
// e.g. with a task-local or explicit-passing realization.
func WithCurrentTraceContext(cc CurrentTraceContext) TracerOption {
	return func(c *config) { c.current = cc }
}

// WithTraceID128Bit forces 128-bit trace id generation.
func WithTraceID128Bit(b bool) TracerOption {
	return func(c *config) { c.traceID128Bit = b }
}

// WithSupportsJoin controls whether joinSpan reuses an incoming spanId
// or downgrades to newChild.
func WithSupportsJoin(b bool) TracerOption {
	return func(c *config) { c.supportsJoin = b }
}

// WithClock injects a clock, e.g. a fake one for tests.
func WithClock(clock func() time.Time) TracerOption {
	return func(c *config) { c.clock = clock }
}

// WithReporter installs a Reporter and switches the default
// finished-span handler from LoggingReporter to a zipkin converter.
func WithReporter(r Reporter) TracerOption {
	return func(c *config) { c.reporter = r }
}

// WithFinishedSpanHandler appends h to the chain. Repeatable; handlers
// run in the order they're added.
func WithFinishedSpanHandler(h FinishedSpanHandler) TracerOption {
	return func(c *config) { c.handlers = append(c.handlers, h) }
}

// WithAlwaysReportSpans makes finish() report every span regardless of
// the sampling decision, running the full handler chain even after a
// veto (though a vetoed span still never reaches the reporter).
func WithAlwaysReportSpans(b bool) TracerOption {
	return func(c *config) { c.alwaysReportSpans = b }
}

// WithLogger installs l as the process-wide internal/log logger when the
// Tracer is built. It carries this Tracer's startup banner and any
// ScopeMisuse/ReporterFailure/HandlerFailure diagnostics, and it also
// replaces the logger for every other Tracer in the process.
func WithLogger(l log.Logger) TracerOption {
	return func(c *config) { c.logger = l }
}

func newConfig(opts ...TracerOption) *config {
	c := &config{
		localServiceName: "unknown",
		sampler:          AlwaysSample,
		propagation:      DefaultPropagationFactory,
		current:          NewCurrentTraceContext(),
		supportsJoin:     true,
		clock:            time.Now,
		reporter:         NoopReporter,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.propagation.Requires128BitTraceID() {
		c.traceID128Bit = true
	}
	if !c.propagation.SupportsJoin() {
		c.supportsJoin = false
	}
	return c
}
