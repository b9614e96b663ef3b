// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016 Datadog, Inc.

package tracer

import (
	"sync"

	"github.com/tracecore/tracecore/internal/goid"
	"github.com/tracecore/tracecore/internal/log"
)

// CurrentTraceContext is a pluggable "current execution slot". The
// Tracer consumes it as a capability and never assumes thread-locality
// itself; alternative realizations can back it with task-local storage
// or explicit context passing instead of the default goroutine stack.
type CurrentTraceContext interface {
	// Get returns the top of the current stack, or false if it is
	// empty or its top entry is a cleared scope.
	Get() (TraceContext, bool)
	// NewScope pushes ctx (nil for a clear scope) and returns a handle
	// that restores the predecessor on Close.
	NewScope(ctx *TraceContext) Scope
}

// Scope is the non-tracing-facing twin of tracing.Scope: Close restores
// whatever was current before NewScope was called.
type Scope interface {
	Close()
}

// goroutineStack is the default CurrentTraceContext: a per-goroutine
// stack keyed by a best-effort goroutine id (internal/goid), since Go
// has no first-class thread-local storage. See DESIGN.md for why this
// substitutes for the teacher's compiler-injected GLS slot.
type goroutineStack struct {
	mu    sync.Mutex
	stack map[int64][]*TraceContext
}

// NewCurrentTraceContext builds the default goroutine-local stack.
func NewCurrentTraceContext() CurrentTraceContext {
	return &goroutineStack{stack: make(map[int64][]*TraceContext)}
}

func (g *goroutineStack) Get() (TraceContext, bool) {
	id := goid.Get()
	g.mu.Lock()
	defer g.mu.Unlock()
	s := g.stack[id]
	if len(s) == 0 {
		return TraceContext{}, false
	}
	top := s[len(s)-1]
	if top == nil {
		return TraceContext{}, false
	}
	return *top, true
}

func (g *goroutineStack) NewScope(ctx *TraceContext) Scope {
	id := goid.Get()
	g.mu.Lock()
	g.stack[id] = append(g.stack[id], ctx)
	depth := len(g.stack[id])
	g.mu.Unlock()

	return &goroutineScope{stack: g, id: id, depth: depth}
}

type goroutineScope struct {
	stack *goroutineStack
	id    int64
	depth int
	once  sync.Once
}

func (s *goroutineScope) Close() {
	s.once.Do(func() { s.stack.popAt(s.id, s.depth) })
}

func (g *goroutineStack) popAt(id int64, depth int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	s := g.stack[id]
	if len(s) == depth {
		s = s[:depth-1]
		if len(s) == 0 {
			delete(g.stack, id)
		} else {
			g.stack[id] = s
		}
		return
	}
	// Out-of-order close: a programmer error. Log and restore
	// best-effort by removing the entry at the expected position
	// without disturbing the rest of the stack.
	log.Warn("tracer: scope closed out of order at depth %d (current stack depth %d)", depth, len(s))
	idx := depth - 1
	if idx < 0 || idx >= len(s) {
		return
	}
	g.stack[id] = append(s[:idx], s[idx+1:]...)
}
