// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016 Datadog, Inc.

package tracer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewConfigDefaults(t *testing.T) {
	c := newConfig()
	assert.Equal(t, "unknown", c.localServiceName)
	assert.Equal(t, AlwaysSample, c.sampler)
	assert.Same(t, DefaultPropagationFactory, c.propagation)
	assert.True(t, c.supportsJoin)
	assert.False(t, c.traceID128Bit)
	assert.Equal(t, NoopReporter, c.reporter)
}

func TestNewConfigAppliesOptions(t *testing.T) {
	c := newConfig(
		WithLocalServiceName("checkout"),
		WithTraceID128Bit(true),
		WithSupportsJoin(false),
		WithAlwaysReportSpans(true),
	)
	assert.Equal(t, "checkout", c.localServiceName)
	assert.True(t, c.traceID128Bit)
	assert.False(t, c.supportsJoin)
	assert.True(t, c.alwaysReportSpans)
}

func TestNewConfigPropagationForces128BitTraceID(t *testing.T) {
	f := NewExtraFieldPropagationFactory("forced", nil)
	f.Join128Bit = true
	c := newConfig(WithPropagationFactory(f), WithTraceID128Bit(false))
	assert.True(t, c.traceID128Bit, "a propagation factory requiring 128-bit ids must force the config")
}

func TestNewConfigPropagationForcesSupportsJoinOff(t *testing.T) {
	f := NewExtraFieldPropagationFactory("forced", nil)
	f.JoinDisabled = true
	c := newConfig(WithPropagationFactory(f), WithSupportsJoin(true))
	assert.False(t, c.supportsJoin, "a propagation factory that doesn't support join must force the config")
}

func TestWithFinishedSpanHandlerIsRepeatable(t *testing.T) {
	a := &scriptedHandler{vetoFn: func(TraceContext, *MutableSpan) bool { return true }}
	b := &scriptedHandler{vetoFn: func(TraceContext, *MutableSpan) bool { return true }}
	c := newConfig(WithFinishedSpanHandler(a), WithFinishedSpanHandler(b))
	assert.Equal(t, []FinishedSpanHandler{a, b}, c.handlers)
}
