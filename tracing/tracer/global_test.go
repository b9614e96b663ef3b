// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016 Datadog, Inc.

package tracer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCurrentWithoutInitReturnsNoopTracer(t *testing.T) {
	require.NoError(t, Close())
	tr := Current()
	assert.True(t, tr.IsNoop())
	assert.True(t, tr.NewTrace().IsNoop())
}

func TestInitCurrentClose(t *testing.T) {
	require.NoError(t, Close())
	t1, err := Init(WithLocalServiceName("svc"))
	require.NoError(t, err)
	defer Close()

	assert.Same(t, t1, Current())
	assert.False(t, t1.IsNoop())

	require.NoError(t, Close())
	assert.True(t, t1.IsNoop(), "Close must flip the torn-down tracer to noop")
	assert.NotSame(t, t1, Current())
}

func TestInitTwiceErrors(t *testing.T) {
	require.NoError(t, Close())
	_, err := Init()
	require.NoError(t, err)
	defer Close()

	_, err = Init()
	assert.Error(t, err)
}

func TestCloseStopsZipkinConverterGoroutine(t *testing.T) {
	require.NoError(t, Close())
	_, err := Init(WithReporter(&recordingReporter{}))
	require.NoError(t, err)
	require.NoError(t, Close())
}
