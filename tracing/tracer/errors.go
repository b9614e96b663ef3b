// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016 Datadog, Inc.

package tracer

import "fmt"

// reporterFailure wraps an error or panic from a Reporter. It is never
// returned to a caller; it only ever reaches aggregateErrors via a
// zipkinConverterHandler's error channel.
type reporterFailure struct {
	cause error
}

func (e *reporterFailure) Error() string { return fmt.Sprintf("reporter failure: %v", e.cause) }
func (e *reporterFailure) Unwrap() error { return e.cause }

// errorSummary counts repeats of a single error type between flushes.
type errorSummary struct {
	Count   int
	Example string
}

// aggregateErrors drains errs without blocking and groups them by
// concrete type, so a flood of identical reporter failures produces one
// log line instead of thousands.
func aggregateErrors(errs <-chan error) map[string]errorSummary {
	summaries := make(map[string]errorSummary)
	for {
		select {
		case err, ok := <-errs:
			if !ok {
				return summaries
			}
			key := fmt.Sprintf("%T", err)
			s := summaries[key]
			s.Count++
			if s.Example == "" {
				s.Example = err.Error()
			}
			summaries[key] = s
		default:
			return summaries
		}
	}
}
