// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016 Datadog, Inc.

// Package tracer implements the Tracer core: it manufactures, scopes,
// and finalizes spans, reconciling incoming (possibly partial) trace
// identity with local sampling decisions, and routes finished spans
// through a pluggable handler chain.
package tracer

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/tracecore/tracecore/internal/log"
	"github.com/tracecore/tracecore/internal/samplernames"
	"github.com/tracecore/tracecore/tracing"
	"github.com/tracecore/tracecore/tracing/ext"
)

// Tracer orchestrates TraceContext, Sampler, PropagationFactory,
// CurrentTraceContext, and the FinishedSpanHandler chain. It is
// immutable after construction except for the atomic noop flag and the
// per-goroutine current-context stack; every field is safe to share
// across goroutines.
type Tracer struct {
	localServiceName string
	localEndpoint    *Endpoint

	sampler     Sampler
	propagation PropagationFactory
	current     CurrentTraceContext

	traceID128Bit bool
	supportsJoin  bool
	clock         func() time.Time

	reporter       Reporter
	handlers       handlerChain
	defaultHandler FinishedSpanHandler

	alwaysReportSpans bool
	noop              *atomic.Bool

	runtimeID string
}

// NewTracer builds an immutable Tracer from the given options.
func NewTracer(opts ...TracerOption) (*Tracer, error) {
	c := newConfig(opts...)
	if c.logger != nil {
		log.UseLogger(c.logger)
	}

	var defaultHandler FinishedSpanHandler
	if isNoopReporter(c.reporter) {
		defaultHandler = NewLoggingReporter(c.localServiceName)
	} else {
		defaultHandler = newZipkinConverterHandler(c.reporter, c.localEndpoint)
	}

	t := &Tracer{
		localServiceName:  c.localServiceName,
		localEndpoint:     c.localEndpoint,
		sampler:           c.sampler,
		propagation:       c.propagation,
		current:           c.current,
		traceID128Bit:     c.traceID128Bit,
		supportsJoin:      c.supportsJoin,
		clock:             c.clock,
		reporter:          c.reporter,
		handlers:          append(handlerChain{}, c.handlers...),
		defaultHandler:    defaultHandler,
		alwaysReportSpans: c.alwaysReportSpans,
		noop:              new(atomic.Bool),
		runtimeID:         newRuntimeID(),
	}
	logStartup(t)
	return t, nil
}

func logStartup(t *Tracer) {
	log.Info("tracer started: service=%s runtime-id=%s reporter=%s supportsJoin=%t traceId128Bit=%t",
		t.localServiceName, t.runtimeID, t.reporter, t.supportsJoin, t.traceID128Bit)
}

// SetNoop toggles the global no-op short-circuit: every subsequent
// factory call returns a non-recording span until it is cleared again.
func (t *Tracer) SetNoop(noop bool) { t.noop.Store(noop) }

// IsNoop reports the current value of the noop flag.
func (t *Tracer) IsNoop() bool { return t.noop.Load() }

// Close flips the tracer to noop and stops the background goroutine a
// zipkin-converting default handler started, if one was installed by
// WithReporter. A Tracer built with no reporter (the LoggingReporter
// default) has nothing to stop; Close is then just SetNoop(true).
// Safe to call more than once.
func (t *Tracer) Close() error {
	t.noop.Store(true)
	if zc, ok := t.defaultHandler.(*zipkinConverterHandler); ok {
		zc.close()
	}
	return nil
}

func randNonZeroUint64() uint64 {
	for {
		var b [8]byte
		if _, err := rand.Read(b[:]); err != nil {
			// crypto/rand.Read failing is a fatal platform problem,
			// not a recoverable tracer-level condition.
			panic(fmt.Sprintf("tracer: crypto/rand unavailable: %v", err))
		}
		v := binary.BigEndian.Uint64(b[:])
		if v != 0 {
			return v
		}
	}
}

func (t *Tracer) effectiveSampled(ctx TraceContext) bool {
	return ctx.sampled == SampledYes || ctx.sampledLocal || ctx.debug || t.handlers.alwaysSampleLocal()
}

// resolveSampled applies the sampling decision algorithm from spec.md
// §4.1 whenever ctx.sampled is still unknown: debug forces yes;
// otherwise extracted flags are honored; otherwise the sampler decides.
func (t *Tracer) resolveSampled(ctx *TraceContext, flags SamplingFlags) {
	if ctx.debug {
		ctx.sampled = SampledYes
		return
	}
	if ctx.sampled != SampledUnknown {
		return
	}
	if flags.Sampled() != SampledUnknown {
		ctx.sampled = flags.Sampled()
		return
	}
	if t.sampler.IsSampled(ctx.traceIDVal.Lower()) {
		ctx.sampled = SampledYes
	} else {
		ctx.sampled = SampledNo
	}
}

func (t *Tracer) finalizeContext(ctx TraceContext, flags SamplingFlags) TraceContext {
	t.resolveSampled(&ctx, flags)
	if t.handlers.alwaysSampleLocal() {
		ctx.sampledLocal = true
	}
	return t.propagation.Decorate(ctx)
}

func (t *Tracer) spanFor(ctx TraceContext) tracing.Span {
	if t.noop.Load() || !t.effectiveSampled(ctx) {
		return noopSpan{ctx: ctx}
	}
	rec := newMutableSpan(t.clock())
	rec.setTag(ext.DecisionMaker, t.decisionMaker(ctx))
	rec.setTag(ext.RuntimeID, t.runtimeID)
	return &realSpan{tracer: t, ctx: ctx, rec: rec}
}

// decisionMaker names which mechanism is responsible for ctx's sampled
// value, stamped onto every recording span so a downstream consumer can
// tell a locally-sampled trace from a debug override or a propagated one.
func (t *Tracer) decisionMaker(ctx TraceContext) string {
	switch {
	case ctx.debug:
		return samplernames.ManualOverride.DecisionMaker()
	case ctx.hasParent:
		return samplernames.Propagated.DecisionMaker()
	default:
		return ParseSamplerName(t.sampler).DecisionMaker()
	}
}

// NewTrace builds a root TraceContext with no parent (property 1):
// fresh trace id (128-bit if configured) and span id, sampler applied,
// decorated by the propagation factory, localRootId set to its own
// spanId.
func (t *Tracer) NewTrace() tracing.Span {
	return t.newTraceWithFlags(EmptySamplingFlags, nil)
}

func (t *Tracer) newTraceWithFlags(flags SamplingFlags, extra []ExtraField) tracing.Span {
	if t.noop.Load() {
		return noopSpan{}
	}
	var tid traceID
	tid.SetLower(randNonZeroUint64())
	if t.traceID128Bit {
		tid.SetUpper(randNonZeroUint64())
	}
	spanID := randNonZeroUint64()
	ctx := TraceContext{
		traceIDVal:  tid,
		spanID:      spanID,
		localRootID: spanID,
		debug:       flags.Debug(),
		extra:       extra,
	}
	ctx = t.finalizeContext(ctx, flags)
	return t.spanFor(ctx)
}

// JoinSpan implements the client/server loopback: when supportsJoin is
// false it behaves exactly like NewChild (property 4); otherwise it
// reuses the incoming spanId and marks shared=true (property 3).
func (t *Tracer) JoinSpan(parent TraceContext) tracing.Span {
	if t.noop.Load() {
		return noopSpan{ctx: parent}
	}
	if !t.supportsJoin {
		return t.NewChild(parent)
	}
	ctx := parent
	ctx.shared = true
	ctx.localRootID = parent.spanID
	ctx = t.finalizeContext(ctx, EmptySamplingFlags)
	return t.spanFor(ctx)
}

// NewChild implements property 2: a fresh spanId, parentId set to the
// parent's spanId, trace id/sampling/debug inherited, localRootId
// inherited from the parent (or seeded from the new spanId if the
// parent never traversed a tracer).
func (t *Tracer) NewChild(parent TraceContext) tracing.Span {
	return t.newChildWithExtra(parent, nil)
}

func (t *Tracer) newChildWithExtra(parent TraceContext, extraExtra []ExtraField) tracing.Span {
	if t.noop.Load() {
		return noopSpan{ctx: parent}
	}
	ctx := parent
	ctx.parentID = parent.spanID
	ctx.hasParent = true
	ctx.spanID = randNonZeroUint64()
	ctx.shared = false
	if parent.localRootID != 0 {
		ctx.localRootID = parent.localRootID
	} else {
		ctx.localRootID = ctx.spanID
	}
	ctx.extra = mergeExtra(parent.extra, extraExtra)
	ctx = t.finalizeContext(ctx, EmptySamplingFlags)
	return t.spanFor(ctx)
}

// NextSpan continues the current context if there is one, else starts
// a new trace.
func (t *Tracer) NextSpan() tracing.Span {
	if cur, ok := t.current.Get(); ok {
		return t.NewChild(cur)
	}
	return t.NewTrace()
}

// NextSpanFromExtracted resolves an ExtractedContext per the table in
// spec.md §4.1, merging extra fields onto a continued current context
// (property 10) rather than discarding them.
func (t *Tracer) NextSpanFromExtracted(extracted ExtractedContext) tracing.Span {
	switch {
	case extracted.HasFullContext():
		full, _ := extracted.Context()
		return t.NewChild(full)
	case extracted.HasTraceIDOnly():
		high, low, _ := extracted.TraceID()
		return t.newSpanWithTraceID(high, low, extracted.SamplingFlags())
	default: // empty flags
		if cur, ok := t.current.Get(); ok {
			return t.newChildWithExtra(cur, extracted.Extra())
		}
		return t.newTraceWithFlags(extracted.SamplingFlags(), extracted.Extra())
	}
}

func (t *Tracer) newSpanWithTraceID(high, low uint64, flags SamplingFlags) tracing.Span {
	if t.noop.Load() {
		return noopSpan{}
	}
	var tid traceID
	tid.SetUpper(high)
	tid.SetLower(low)
	spanID := randNonZeroUint64()
	ctx := TraceContext{
		traceIDVal:  tid,
		spanID:      spanID,
		localRootID: spanID,
		debug:       flags.Debug(),
	}
	ctx = t.finalizeContext(ctx, flags)
	return t.spanFor(ctx)
}

// ToSpan wraps an existing context: recording iff effectiveSampled(ctx)
// is true (property 8's no-op idempotence falls out of this directly).
func (t *Tracer) ToSpan(ctx TraceContext) tracing.Span {
	return t.spanFor(ctx)
}

// WithSpanInScope pushes span's context (or a clear scope if span is
// nil) onto the current-context stack.
func (t *Tracer) WithSpanInScope(span tracing.Span) tracing.Scope {
	if span == nil {
		return t.current.NewScope(nil)
	}
	ctx, ok := span.Context().(TraceContext)
	if !ok {
		return t.current.NewScope(nil)
	}
	return t.current.NewScope(&ctx)
}

// StartScopedSpan is shorthand for NextSpan + Name + WithSpanInScope,
// returning a handle whose Finish both finalizes the span and closes
// the scope it opened.
func (t *Tracer) StartScopedSpan(name string) tracing.ScopedSpan {
	return t.startScoped(t.NextSpan(), name)
}

// StartScopedSpanWithParent is StartScopedSpan but rooted explicitly;
// parent == nil behaves like StartScopedSpan.
func (t *Tracer) StartScopedSpanWithParent(name string, parent *TraceContext) tracing.ScopedSpan {
	var span tracing.Span
	if parent == nil {
		span = t.NextSpan()
	} else {
		span = t.NewChild(*parent)
	}
	return t.startScoped(span, name)
}

func (t *Tracer) startScoped(span tracing.Span, name string) tracing.ScopedSpan {
	span.Name(name)
	scope := t.WithSpanInScope(span)
	return &scopedSpan{Span: span, scope: scope}
}

// CurrentSpan returns the top of the current-context stack, or nil.
func (t *Tracer) CurrentSpan() tracing.Span {
	ctx, ok := t.current.Get()
	if !ok {
		return nil
	}
	return t.ToSpan(ctx)
}

// CurrentSpanCustomizer is the no-op customizer whenever there is no
// current span, the current span isn't recording, or the tracer is
// globally noop (property 7's clear-scope case falls out of this).
func (t *Tracer) CurrentSpanCustomizer() tracing.SpanCustomizer {
	if t.noop.Load() {
		return tracing.NoopCustomizer
	}
	span := t.CurrentSpan()
	if span == nil || span.IsNoop() {
		return tracing.NoopCustomizer
	}
	return span
}

// WithSampler returns a view sharing all state except the sampler.
func (t *Tracer) WithSampler(s Sampler) *Tracer {
	cp := *t
	cp.sampler = s
	return &cp
}

// finish runs the handler chain and, unless vetoed, the default
// finished-span handler (LoggingReporter or zipkin converter). A
// reporter failure never propagates past here (spec.md §7).
func (t *Tracer) finish(ctx TraceContext, rec *MutableSpan, at time.Time) {
	if !rec.markFinished(at, t.clock) {
		return
	}
	vetoed := t.handlers.run(ctx, rec, t.alwaysReportSpans)
	if !vetoed && (ctx.sampled == SampledYes || t.alwaysReportSpans) {
		t.handlers.invoke(t.defaultHandler, ctx, rec)
	}
}

func (t *Tracer) String() string {
	if t.noop.Load() {
		return fmt.Sprintf("Tracer{noop=true, finishedSpanHandler=%s}", t.defaultHandler)
	}
	if ctx, ok := t.current.Get(); ok {
		return fmt.Sprintf("Tracer{currentSpan=%s/%s, finishedSpanHandler=%s}",
			fmt.Sprintf("%016x", ctx.TraceIDLow()), ctx.SpanIDHex(), t.defaultHandler)
	}
	return fmt.Sprintf("Tracer{finishedSpanHandler=%s}", t.defaultHandler)
}
