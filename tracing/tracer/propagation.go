// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016 Datadog, Inc.

package tracer

// KeyFactory names a single propagated key for a carrier type K (e.g. a
// header name for a map[string]string carrier). Concrete wire codecs
// (B3, W3C traceparent, ...) are out of scope for the core; this
// exists only so a PropagationFactory can describe its keys without
// the core depending on any specific codec.
type KeyFactory[K any] interface {
	Create(name string) K
}

// Propagation is what a PropagationFactory.Create would hand back for a
// given carrier type; the core never calls it directly, it's purely a
// capability a PropagationFactory can expose to injection/extraction
// code living outside this package.
type Propagation[K any] interface {
	Keys() []K
}

// PropagationFactory decorates contexts on every new or joined span and
// declares the constraints it imposes on the Tracer's own behavior.
type PropagationFactory interface {
	// SupportsJoin reports whether joinSpan may reuse an incoming
	// spanId. When false, the Tracer downgrades every joinSpan call to
	// newChild.
	SupportsJoin() bool
	// Requires128BitTraceID forces the Tracer to always generate
	// 128-bit trace ids when true.
	Requires128BitTraceID() bool
	// Decorate is called on every new or joined context; it may
	// attach or rewrite Extra fields.
	Decorate(ctx TraceContext) TraceContext
}

type defaultPropagationFactory struct{}

func (defaultPropagationFactory) SupportsJoin() bool                  { return true }
func (defaultPropagationFactory) Requires128BitTraceID() bool         { return false }
func (defaultPropagationFactory) Decorate(ctx TraceContext) TraceContext { return ctx }

// DefaultPropagationFactory supports join, doesn't require 128-bit
// trace ids, and leaves contexts untouched.
var DefaultPropagationFactory PropagationFactory = &defaultPropagationFactory{}

// ExtraFieldPropagationFactory decorates every context with a fixed set
// of Extra fields, keyed by this factory's own identity. It exists
// to exercise the Extra-field propagation path (scenario S5) without
// pulling in a concrete wire codec.
type ExtraFieldPropagationFactory struct {
	Name         string
	Join128Bit   bool
	JoinDisabled bool
	fields       map[string]string
}

// NewExtraFieldPropagationFactory builds a factory that will attach
// the given static fields to every context it decorates.
func NewExtraFieldPropagationFactory(name string, fields map[string]string) *ExtraFieldPropagationFactory {
	return &ExtraFieldPropagationFactory{Name: name, fields: fields}
}

func (p *ExtraFieldPropagationFactory) SupportsJoin() bool          { return !p.JoinDisabled }
func (p *ExtraFieldPropagationFactory) Requires128BitTraceID() bool { return p.Join128Bit }

func (p *ExtraFieldPropagationFactory) Decorate(ctx TraceContext) TraceContext {
	if len(p.fields) == 0 {
		return ctx
	}
	add := make([]ExtraField, 0, len(p.fields))
	for k, v := range p.fields {
		add = append(add, ExtraField{Factory: p, Key: k, Value: v})
	}
	ctx.extra = mergeExtra(ctx.extra, add)
	return ctx
}

// SetField updates one of this factory's static fields. Later Decorate
// calls attach the new value only to contexts that do not already carry
// this key from this factory; a context that already has it (for
// example one inherited from a parent) keeps its existing value.
func (p *ExtraFieldPropagationFactory) SetField(key, value string) {
	if p.fields == nil {
		p.fields = map[string]string{}
	}
	p.fields[key] = value
}
