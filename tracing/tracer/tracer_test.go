// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016 Datadog, Inc.

package tracer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tracecore/tracecore/tracing"
)

func newTestTracer(t *testing.T, opts ...TracerOption) *Tracer {
	tr, err := NewTracer(opts...)
	require.NoError(t, err)
	return tr
}

// Property 1: root invariant.
func TestPropertyRootInvariant(t *testing.T) {
	tr := newTestTracer(t)
	span := tr.NewTrace()
	ctx := span.Context().(TraceContext)
	_, hasParent := ctx.ParentID()
	assert.False(t, hasParent)
	assert.Equal(t, ctx.SpanID(), ctx.LocalRootID())
}

// Property 2: child invariant.
func TestPropertyChildInvariant(t *testing.T) {
	tr := newTestTracer(t)
	parent := tr.NewTrace().Context().(TraceContext)
	child := tr.NewChild(parent).Context().(TraceContext)

	assert.Equal(t, parent.TraceIDLow(), child.TraceIDLow())
	parentID, ok := child.ParentID()
	assert.True(t, ok)
	assert.Equal(t, parent.SpanID(), parentID)
	assert.False(t, child.Shared())
	assert.Equal(t, parent.LocalRootID(), child.LocalRootID())
}

func TestPropertyChildInvariantSeedsLocalRootWhenParentHasNone(t *testing.T) {
	tr := newTestTracer(t)
	bareParent, err := NewTraceContextBuilder().TraceID(0, 99).SpanID(5).Build()
	require.NoError(t, err)

	child := tr.NewChild(bareParent).Context().(TraceContext)
	assert.Equal(t, child.SpanID(), child.LocalRootID())
}

// Property 3 & 4: join invariant / join fallback.
func TestPropertyJoinInvariantWhenSupported(t *testing.T) {
	tr := newTestTracer(t, WithSupportsJoin(true))
	parent := tr.NewTrace().Context().(TraceContext)
	joined := tr.JoinSpan(parent).Context().(TraceContext)

	assert.Equal(t, parent.SpanID(), joined.SpanID())
	assert.Equal(t, parent.TraceIDLow(), joined.TraceIDLow())
	assert.True(t, joined.Shared())
	assert.NotEqual(t, SampledUnknown, joined.Sampled())
}

func TestPropertyJoinFallbackWhenUnsupported(t *testing.T) {
	tr := newTestTracer(t, WithSupportsJoin(false))
	parent := tr.NewTrace().Context().(TraceContext)
	joined := tr.JoinSpan(parent).Context().(TraceContext)
	child := tr.NewChild(parent).Context().(TraceContext)

	assert.False(t, joined.Shared())
	parentID, ok := joined.ParentID()
	assert.True(t, ok)
	assert.Equal(t, parent.SpanID(), parentID)
	assert.Equal(t, child.LocalRootID(), joined.LocalRootID())
}

// Property 5: sampling coercion.
func TestPropertySamplingCoercion(t *testing.T) {
	tr := newTestTracer(t)
	parent := tr.NewTrace().Context().(TraceContext)

	joined := tr.JoinSpan(parent).Context().(TraceContext)
	child := tr.NewChild(parent).Context().(TraceContext)
	next := tr.NextSpan().Context().(TraceContext)

	assert.NotEqual(t, SampledUnknown, joined.Sampled())
	assert.NotEqual(t, SampledUnknown, child.Sampled())
	assert.NotEqual(t, SampledUnknown, next.Sampled())
}

// Property 6 & 7: scope LIFO / clear scope.
func TestPropertyScopeLIFO(t *testing.T) {
	tr := newTestTracer(t)
	before := tr.CurrentSpan()
	assert.Nil(t, before)

	span := tr.NewTrace()
	scope := tr.WithSpanInScope(span)
	inner := tr.NewChild(span.Context().(TraceContext))
	innerScope := tr.WithSpanInScope(inner)

	innerScope.Close()
	cur := tr.CurrentSpan()
	require.NotNil(t, cur)
	assert.Equal(t, span.Context().(TraceContext).SpanID(), cur.Context().(TraceContext).SpanID())

	scope.Close()
	assert.Nil(t, tr.CurrentSpan())
}

func TestPropertyClearScope(t *testing.T) {
	tr := newTestTracer(t)
	outer := tr.WithSpanInScope(tr.NewTrace())
	defer outer.Close()

	cleared := tr.WithSpanInScope(nil)
	assert.Nil(t, tr.CurrentSpan())
	assert.Same(t, tracing.NoopCustomizer, tr.CurrentSpanCustomizer())
	cleared.Close()
}

// Property 8: no-op idempotence.
func TestPropertyNoopIdempotence(t *testing.T) {
	tr := newTestTracer(t, WithSampler(NeverSample))
	span := tr.NewTrace()
	assert.True(t, span.IsNoop())

	ctxBefore := span.Context()
	span.Tag("k", "v")
	span.Name("x")
	assert.Equal(t, ctxBefore, span.Context(), "context must be preserved and round-trip through a no-op span")
}

// Property 9: reporter fault tolerance.
func TestPropertyReporterFaultTolerance(t *testing.T) {
	reporter := &recordingReporter{failOn: 1}
	tr := newTestTracer(t, WithReporter(reporter), WithSampler(AlwaysSample))
	defer tr.Close()

	span := tr.NewTrace()
	assert.NotPanics(t, func() { span.Finish() })
}

// Property 10: extra merge.
func TestPropertyExtraMerge(t *testing.T) {
	tr := newTestTracer(t)
	parentCtx, err := NewTraceContextBuilder().TraceID(0, 1).SpanID(2).Sampled(SampledYes).
		Extra([]ExtraField{{Factory: "f", Key: "a", Value: "1"}}).Build()
	require.NoError(t, err)
	scope := tr.WithSpanInScope(tr.ToSpan(parentCtx))
	defer scope.Close()

	extracted := ExtractedEmpty(EmptySamplingFlags, ExtraField{Factory: "f", Key: "b", Value: "2"})
	next := tr.NextSpanFromExtracted(extracted).Context().(TraceContext)

	va, _ := next.ExtraValue("f", "a")
	vb, _ := next.ExtraValue("f", "b")
	assert.Equal(t, "1", va)
	assert.Equal(t, "2", vb)
	assert.Equal(t, []ExtraField{{Factory: "f", Key: "a", Value: "1"}, {Factory: "f", Key: "b", Value: "2"}}, next.Extra())
}

// Close on a Tracer built through the public NewTracer+WithReporter
// path (not tracer.Init) must stop the zipkin converter's background
// drain goroutine, and tolerate being called more than once.
func TestTracerCloseStopsZipkinConverterGoroutine(t *testing.T) {
	tr := newTestTracer(t, WithReporter(&recordingReporter{}))
	assert.False(t, tr.IsNoop())
	require.NoError(t, tr.Close())
	assert.True(t, tr.IsNoop())
	assert.NotPanics(t, func() { require.NoError(t, tr.Close()) })
}

func TestTracerCloseWithoutReporterIsJustNoop(t *testing.T) {
	tr := newTestTracer(t)
	require.NoError(t, tr.Close())
	assert.True(t, tr.IsNoop())
}

// Property 11: local-root partition.
func TestPropertyLocalRootPartition(t *testing.T) {
	tr := newTestTracer(t)
	rootA := tr.NewTrace().Context().(TraceContext)
	childA := tr.NewChild(rootA).Context().(TraceContext)
	grandchildA := tr.NewChild(childA).Context().(TraceContext)

	rootB := tr.NewTrace().Context().(TraceContext)
	childB := tr.NewChild(rootB).Context().(TraceContext)

	assert.Equal(t, rootA.SpanID(), childA.LocalRootID())
	assert.Equal(t, rootA.SpanID(), grandchildA.LocalRootID())
	assert.Equal(t, rootB.SpanID(), childB.LocalRootID())
	assert.NotEqual(t, rootA.LocalRootID(), rootB.LocalRootID())
}

// S1: loopback produces two records sharing id, with the server side
// marked shared and the client side's span emitted after finishing last.
func TestScenarioS1Loopback(t *testing.T) {
	reporter := &recordingReporter{}
	base := time.UnixMicro(0)
	clock := base
	tr := newTestTracer(t, WithReporter(reporter), WithClock(func() time.Time { return clock }))
	defer tr.Close()

	clock = base.Add(1 * time.Microsecond)
	c := tr.NewTrace().Kind(tracing.KindClient).Start(base.Add(1 * time.Microsecond))
	s := tr.JoinSpan(c.Context().(TraceContext)).Kind(tracing.KindServer).Start(base.Add(2 * time.Microsecond))

	clock = base.Add(3 * time.Microsecond)
	s.FinishWithTime(base.Add(3 * time.Microsecond))
	clock = base.Add(4 * time.Microsecond)
	c.FinishWithTime(base.Add(4 * time.Microsecond))

	require.Len(t, reporter.spans, 2)
	first, second := reporter.spans[0], reporter.spans[1]
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "SERVER", first.Kind)
	assert.True(t, first.Shared)
	assert.Equal(t, "CLIENT", second.Kind)
	assert.False(t, second.Shared)
}

// S2: join downgrades to child when supportsJoin is false.
func TestScenarioS2JoinDowngradesWhenUnsupported(t *testing.T) {
	tr := newTestTracer(t, WithSupportsJoin(false))
	p := tr.NewTrace().Context().(TraceContext)
	child := tr.JoinSpan(p).Context().(TraceContext)

	assert.False(t, child.Shared())
	parentID, ok := child.ParentID()
	assert.True(t, ok)
	assert.Equal(t, p.SpanID(), parentID)
}

// S3: never-sample yields a no-op span and the singleton no-op customizer.
func TestScenarioS3NeverSample(t *testing.T) {
	tr := newTestTracer(t)
	view := tr.WithSampler(NeverSample)
	span := view.NewTrace()
	assert.True(t, span.IsNoop())

	scope := view.WithSpanInScope(span)
	defer scope.Close()
	assert.Same(t, tracing.NoopCustomizer, view.CurrentSpanCustomizer())
}

// S5: extra field propagation survives join, child, nextSpan and
// startScopedSpanWithParent.
func TestScenarioS5ExtraFieldPropagation(t *testing.T) {
	factory := NewExtraFieldPropagationFactory("test", map[string]string{"service": "napkin"})
	tr := newTestTracer(t, WithPropagationFactory(factory))

	root := tr.NewTrace().Context().(TraceContext)
	v, ok := root.ExtraValue(factory, "service")
	require.True(t, ok)
	assert.Equal(t, "napkin", v)

	joined := tr.JoinSpan(root).Context().(TraceContext)
	child := tr.NewChild(root).Context().(TraceContext)
	next := tr.NextSpan().Context().(TraceContext)
	scoped := tr.StartScopedSpanWithParent("op", &root)
	defer scoped.Finish()

	for _, ctx := range []TraceContext{joined, child, next, scoped.Context().(TraceContext)} {
		v, ok := ctx.ExtraValue(factory, "service")
		assert.True(t, ok)
		assert.Equal(t, "napkin", v)
	}
}

// S6: Tracer.String renders the current scope's trace/span id pair.
func TestScenarioS6ToStringWithScope(t *testing.T) {
	tr := newTestTracer(t)
	ctx, err := NewTraceContextBuilder().TraceID(0, 1).SpanID(10).Sampled(SampledYes).Build()
	require.NoError(t, err)
	scope := tr.WithSpanInScope(tr.ToSpan(ctx))
	defer scope.Close()

	s := tr.String()
	assert.Contains(t, s, "currentSpan=0000000000000001/000000000000000a")
}
