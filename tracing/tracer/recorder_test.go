// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016 Datadog, Inc.

package tracer

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/tracecore/tracecore/tracing"
)

func TestMutableSpanMutators(t *testing.T) {
	start := time.Now()
	m := newMutableSpan(start)
	m.setName("get-account")
	m.setKind(tracing.KindClient)
	m.setTag("http.method", "GET")
	m.addAnnotation(start, "cache miss")
	m.setLocalEndpoint(&Endpoint{ServiceName: "accounts"})
	m.setRemoteEndpoint(Endpoint{ServiceName: "db"})
	m.setError(errors.New("boom"))

	assert.Equal(t, "get-account", m.Name())
	assert.Equal(t, tracing.KindClient, m.Kind())
	assert.Equal(t, "GET", m.TagsCopy()["http.method"])
}

func TestMutableSpanTagsCopyIsIndependent(t *testing.T) {
	m := newMutableSpan(time.Now())
	m.setTag("a", "1")
	copy1 := m.TagsCopy()
	copy1["a"] = "mutated"
	assert.Equal(t, "1", m.TagsCopy()["a"])
}

func TestMutableSpanMarkFinishedOnce(t *testing.T) {
	m := newMutableSpan(time.Now())
	first := m.markFinished(time.Now(), time.Now)
	second := m.markFinished(time.Now(), time.Now)
	assert.True(t, first)
	assert.False(t, second, "a second finish call must be silently ignored")
}

func TestMutableSpanMarkFinishedUsesClockWhenZero(t *testing.T) {
	m := newMutableSpan(time.Now())
	fixed := time.Now().Add(time.Hour)
	ok := m.markFinished(time.Time{}, func() time.Time { return fixed })
	assert.True(t, ok)
	snap := m.snapshot()
	assert.Equal(t, fixed, snap.Finish)
}

func TestMutableSpanSnapshotClampsMinimumDuration(t *testing.T) {
	start := time.Now()
	m := newMutableSpan(start)
	m.markFinished(start, time.Now)
	snap := m.snapshot()
	assert.Equal(t, time.Microsecond, snap.Duration)
}

func TestMutableSpanSnapshotCopiesAnnotationsAndTags(t *testing.T) {
	start := time.Now()
	m := newMutableSpan(start)
	m.setTag("k", "v")
	m.addAnnotation(start, "x")
	snap := m.snapshot()

	m.setTag("k", "changed")
	m.addAnnotation(start, "y")

	assert.Equal(t, "v", snap.Tags["k"])
	assert.Len(t, snap.Annotations, 1)
}
