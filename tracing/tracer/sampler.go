// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016 Datadog, Inc.

package tracer

import (
	"golang.org/x/time/rate"

	"github.com/tracecore/tracecore/internal/samplernames"
)

// Sampler decides, from a trace id alone, whether a newly-observed
// trace should be sampled. Implementations must be stateless or
// safe for concurrent use: the Tracer calls IsSampled from any
// goroutine that starts a trace.
type Sampler interface {
	IsSampled(traceID uint64) bool
}

// alwaysSampler and neverSampler are distinct comparable types (rather
// than two values of one func-backed type) so ParseSamplerName can type
// switch on them instead of comparing Sampler interface values: two
// interfaces sharing a func dynamic type are uncomparable and comparing
// them panics at runtime.
type alwaysSampler struct{}

func (alwaysSampler) IsSampled(uint64) bool { return true }

type neverSampler struct{}

func (neverSampler) IsSampled(uint64) bool { return false }

// AlwaysSample samples every trace.
var AlwaysSample Sampler = alwaysSampler{}

// NeverSample samples no trace.
var NeverSample Sampler = neverSampler{}

// RateSampler admits at most N new traces per second using a token
// bucket, trading strict determinism for a bounded, smooth sampling
// rate under bursty trace-id arrival.
type RateSampler struct {
	limiter *rate.Limiter
}

// NewRateSampler builds a RateSampler admitting up to tracesPerSecond
// new traces per second, with a burst of the same size (rounded up to
// at least 1).
func NewRateSampler(tracesPerSecond float64) *RateSampler {
	burst := int(tracesPerSecond)
	if burst < 1 {
		burst = 1
	}
	return &RateSampler{limiter: rate.NewLimiter(rate.Limit(tracesPerSecond), burst)}
}

func (r *RateSampler) IsSampled(uint64) bool {
	return r.limiter.Allow()
}

// ParseSamplerName maps a configured Sampler to the decision-maker
// provenance tag stamped on a finished span, so a consumer of the wire
// model can tell which mechanism produced the sampling decision.
func ParseSamplerName(s Sampler) samplernames.SamplerName {
	switch s.(type) {
	case *RateSampler:
		return samplernames.RateLimiter
	case alwaysSampler, neverSampler:
		return samplernames.Default
	default:
		return samplernames.Unknown
	}
}
