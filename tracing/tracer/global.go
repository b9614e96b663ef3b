// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016 Datadog, Inc.

package tracer

import (
	"errors"
	"sync"
	"sync/atomic"
	"time"
)

var (
	globalMu sync.Mutex
	global   *Tracer
)

// Init builds a Tracer from opts and installs it as the process-wide
// instance. Only one instance may be active at a time; call Close
// first to replace it.
func Init(opts ...TracerOption) (*Tracer, error) {
	globalMu.Lock()
	defer globalMu.Unlock()
	if global != nil {
		return nil, errors.New("tracer: already initialized; call Close first")
	}
	t, err := NewTracer(opts...)
	if err != nil {
		return nil, err
	}
	global = t
	return t, nil
}

// Current returns the process-wide Tracer, or a permanently-noop one if
// Init hasn't been called (or Close has torn it down).
func Current() *Tracer {
	globalMu.Lock()
	defer globalMu.Unlock()
	if global == nil {
		return noopTracer
	}
	return global
}

// Close tears down the process-wide Tracer: it is flipped to noop so
// any handle still referencing it stops recording, its zipkin
// converter's background error drain (if any) is stopped, and the
// global slot is cleared so Init can be called again.
func Close() error {
	globalMu.Lock()
	defer globalMu.Unlock()
	if global == nil {
		return nil
	}
	err := global.Close()
	global = nil
	return err
}

var noopTracer = buildNoopTracer()

func buildNoopTracer() *Tracer {
	noop := new(atomic.Bool)
	noop.Store(true)
	return &Tracer{
		localServiceName: "unknown",
		sampler:          NeverSample,
		propagation:      DefaultPropagationFactory,
		current:          NewCurrentTraceContext(),
		supportsJoin:     true,
		clock:            time.Now,
		reporter:         NoopReporter,
		defaultHandler:   NewLoggingReporter("noop"),
		noop:             noop,
	}
}
