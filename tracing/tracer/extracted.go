// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016 Datadog, Inc.

package tracer

// SamplingFlags carries an upstream sampling intent that hasn't (yet)
// been attached to a full TraceContext: a tri-state sampled decision
// plus the debug bit.
type SamplingFlags struct {
	sampled Sampled
	debug   bool
}

// NewSamplingFlags builds a SamplingFlags value.
func NewSamplingFlags(sampled Sampled, debug bool) SamplingFlags {
	return SamplingFlags{sampled: sampled, debug: debug}
}

// EmptySamplingFlags carries no opinion at all.
var EmptySamplingFlags = SamplingFlags{sampled: SampledUnknown}

func (f SamplingFlags) Sampled() Sampled { return f.sampled }
func (f SamplingFlags) Debug() bool      { return f.debug }

type extractedKind int8

const (
	extractedEmpty extractedKind = iota
	extractedTraceIDOnly
	extractedFull
)

// ExtractedContext is a tagged union of what an upstream propagation
// codec managed to recover from the wire: nothing useful but flags,
// a trace id with no span identity, or a full context. Exactly one
// variant is populated; callers switch on the Has* predicates.
type ExtractedContext struct {
	kind    extractedKind
	traceID traceID
	context TraceContext
	flags   SamplingFlags
	extra   []ExtraField
}

// ExtractedEmpty carries only sampling flags, no identifiers.
func ExtractedEmpty(flags SamplingFlags, extra ...ExtraField) ExtractedContext {
	return ExtractedContext{kind: extractedEmpty, flags: flags, extra: extra}
}

// ExtractedTraceIDOnly carries a trace id with no parent/span identity.
func ExtractedTraceIDOnly(traceIDHigh, traceIDLow uint64, flags SamplingFlags, extra ...ExtraField) ExtractedContext {
	var tid traceID
	tid.SetUpper(traceIDHigh)
	tid.SetLower(traceIDLow)
	return ExtractedContext{kind: extractedTraceIDOnly, traceID: tid, flags: flags, extra: extra}
}

// ExtractedFull carries a complete, already-resolved context (the
// common case: a propagated traceId/spanId pair).
func ExtractedFull(ctx TraceContext) ExtractedContext {
	return ExtractedContext{kind: extractedFull, context: ctx, flags: NewSamplingFlags(ctx.sampled, ctx.debug), extra: ctx.extra}
}

func (e ExtractedContext) IsEmpty() bool         { return e.kind == extractedEmpty }
func (e ExtractedContext) HasTraceIDOnly() bool   { return e.kind == extractedTraceIDOnly }
func (e ExtractedContext) HasFullContext() bool   { return e.kind == extractedFull }
func (e ExtractedContext) SamplingFlags() SamplingFlags { return e.flags }
func (e ExtractedContext) Extra() []ExtraField    { return e.extra }

// TraceID returns the extracted trace id when HasTraceIDOnly is true.
func (e ExtractedContext) TraceID() (high, low uint64, ok bool) {
	if e.kind != extractedTraceIDOnly {
		return 0, 0, false
	}
	return e.traceID.Upper(), e.traceID.Lower(), true
}

// Context returns the full context when HasFullContext is true.
func (e ExtractedContext) Context() (TraceContext, bool) {
	if e.kind != extractedFull {
		return TraceContext{}, false
	}
	return e.context, true
}
