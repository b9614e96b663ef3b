// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016 Datadog, Inc.

package tracer

import (
	"fmt"
	"sync"

	"github.com/tracecore/tracecore/internal/log"
)

// FinishedSpanHandler sees each finished recording span at most once, in
// registration order. A handler may veto (stop the chain and suppress
// reporting for this span only), mutate the span before it's reported,
// and declare whether it wants spans sampled locally regardless of the
// remote sampling decision.
type FinishedSpanHandler interface {
	Handle(ctx TraceContext, span *MutableSpan) bool
	AlwaysSampleLocal() bool
}

type handlerChain []FinishedSpanHandler

// run invokes every handler in order. It returns true iff any handler
// vetoed. When alwaysReport is false, a veto stops the chain
// immediately; when true, the chain runs to completion regardless, but
// the span is still never reported once any handler has vetoed it.
func (h handlerChain) run(ctx TraceContext, span *MutableSpan, alwaysReport bool) (vetoed bool) {
	for _, handler := range h {
		if !h.invoke(handler, ctx, span) {
			vetoed = true
			if !alwaysReport {
				return true
			}
		}
	}
	return vetoed
}

// invoke recovers from a handler panic, treating it as a veto for this
// span only (HandlerFailure in spec.md §7): subsequent spans, and the
// rest of the chain for alwaysReport=true callers, are unaffected.
func (h handlerChain) invoke(handler FinishedSpanHandler, ctx TraceContext, span *MutableSpan) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			log.Debug("tracer: finished-span handler panic: %v", r)
			ok = false
		}
	}()
	return handler.Handle(ctx, span)
}

func (h handlerChain) alwaysSampleLocal() bool {
	for _, handler := range h {
		if handler.AlwaysSampleLocal() {
			return true
		}
	}
	return false
}

// LoggingReporter is the default finished-span handler installed when
// no Reporter is configured: it logs a one-line summary instead of
// shipping a wire-format span anywhere.
type LoggingReporter struct {
	name string
}

// NewLoggingReporter names the reporter after its owning tracer, for
// the String() form used in Tracer.String().
func NewLoggingReporter(tracerName string) *LoggingReporter {
	return &LoggingReporter{name: tracerName}
}

func (l *LoggingReporter) Handle(ctx TraceContext, span *MutableSpan) bool {
	snap := span.snapshot()
	log.Info("finished span name=%q kind=%s traceId=%s spanId=%s duration=%s",
		snap.Name, snap.Kind, ctx.TraceIDHex(), ctx.SpanIDHex(), snap.Duration)
	return true
}

func (l *LoggingReporter) AlwaysSampleLocal() bool { return false }

func (l *LoggingReporter) String() string {
	return fmt.Sprintf("LoggingReporter{name=%s}", l.name)
}

// zipkinConverterHandler is installed in place of LoggingReporter when
// a Reporter is configured. It converts each sampled, non-vetoed span
// to the zipkin v2 wire model and hands it to the reporter, swallowing
// and aggregating any failure (spec.md §7's ReporterFailure).
type zipkinConverterHandler struct {
	reporter  Reporter
	local     *Endpoint
	errs      chan error
	done      chan struct{}
	closeOnce sync.Once
}

func newZipkinConverterHandler(r Reporter, local *Endpoint) *zipkinConverterHandler {
	h := &zipkinConverterHandler{
		reporter: r,
		local:    local,
		errs:     make(chan error, 1000),
		done:     make(chan struct{}),
	}
	go h.drain()
	return h
}

func (z *zipkinConverterHandler) Handle(ctx TraceContext, span *MutableSpan) bool {
	wire := toWireSpan(ctx, z.local, span.snapshot())
	if err := z.safeReport(wire); err != nil {
		select {
		case z.errs <- err:
		default:
		}
	}
	return true
}

func (z *zipkinConverterHandler) safeReport(w zipkinSpan) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &reporterFailure{cause: fmt.Errorf("panic: %v", r)}
		}
	}()
	if rerr := z.reporter.Report(w); rerr != nil {
		return &reporterFailure{cause: rerr}
	}
	return nil
}

func (z *zipkinConverterHandler) AlwaysSampleLocal() bool { return false }

func (z *zipkinConverterHandler) String() string {
	return fmt.Sprintf("ZipkinConverter{reporter=%s}", z.reporter)
}

// drain summarizes swallowed reporter failures in batches of 100, and
// once more on close, instead of logging each one, mirroring the teacher's aggregateErrors/errorSummary
// pattern (see errors.go).
func (z *zipkinConverterHandler) drain() {
	var pending []error
	for {
		select {
		case err := <-z.errs:
			pending = append(pending, err)
			if len(pending) >= 100 {
				z.flush(&pending)
			}
		case <-z.done:
			z.flush(&pending)
			return
		}
	}
}

func (z *zipkinConverterHandler) flush(pending *[]error) {
	if len(*pending) == 0 {
		return
	}
	ch := make(chan error, len(*pending))
	for _, e := range *pending {
		ch <- e
	}
	close(ch)
	for typ, summary := range aggregateErrors(ch) {
		log.Debug("tracer: reporter errors of type %s: %d occurrences, example: %s", typ, summary.Count, summary.Example)
	}
	*pending = (*pending)[:0]
}

// close stops the drain goroutine. Safe to call more than once, and
// from Tracer.Close as well as the global package's Close.
func (z *zipkinConverterHandler) close() {
	z.closeOnce.Do(func() { close(z.done) })
}
