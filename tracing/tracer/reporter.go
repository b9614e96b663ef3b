// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016 Datadog, Inc.

package tracer

// Reporter ships a finalized span to wherever traces are collected. It
// may return an error; the Tracer catches and swallows it (see
// errors.go's reporterFailure / aggregateErrors). Concrete wire
// transports are out of scope for this package.
type Reporter interface {
	Report(span zipkinSpan) error
	String() string
}

type noopReporter struct{}

func (noopReporter) Report(zipkinSpan) error { return nil }
func (noopReporter) String() string          { return "NoopReporter" }

// NoopReporter discards every span. It is recognized by the Tracer
// builder as a signal to skip wire-model conversion entirely and fall
// back to the default LoggingReporter finished-span handler.
var NoopReporter Reporter = noopReporter{}

func isNoopReporter(r Reporter) bool {
	_, ok := r.(noopReporter)
	return ok
}
