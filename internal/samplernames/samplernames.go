// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016 Datadog, Inc.

// Package samplernames identifies which mechanism produced a span's
// sampling decision. The tracer core stamps this provenance onto a
// span as a decision-maker tag so a downstream consumer can tell "kept
// because the default rate sampler said so" from "kept because the
// debug flag forced it."
package samplernames

// SamplerName enumerates the mechanisms that can produce a sampling
// decision. Values and gaps mirror a decision-maker tag's numeric
// encoding; gaps are reserved slots for mechanisms this module doesn't
// implement, kept so the encoding doesn't shift if they're added later.
type SamplerName int8

const (
	// Unknown is the zero-value fallback for an out-of-range SamplerName.
	Unknown SamplerName = -1
	// Default marks a decision made by the built-in AlwaysSample or
	// NeverSample sampler.
	Default SamplerName = 0
	// RateLimiter marks a decision made by a tracer.RateSampler.
	RateLimiter SamplerName = 1
	// Propagated marks a decision carried by a span that has a parent
	// id, i.e. one inherited from its parent context rather than made
	// locally.
	Propagated SamplerName = 2
	// RuleBased is reserved for a future rule-evaluating Sampler.
	RuleBased SamplerName = 3
	// ManualOverride marks a decision forced by the debug flag.
	ManualOverride SamplerName = 4
	// PolicyEngine is reserved for a future external policy integration.
	PolicyEngine SamplerName = 5
	// RemoteRate is reserved for a remotely configured rate.
	RemoteRate SamplerName = 6
	// SingleSpan is reserved for single-span sampling.
	SingleSpan SamplerName = 8
	// RemoteRule is reserved for a remotely configured rule.
	RemoteRule SamplerName = 11
	// RemoteDynamicRule is reserved for a remotely configured dynamic rule.
	RemoteDynamicRule SamplerName = 12
)

var decisionMakers = map[SamplerName]string{
	Default:           "-0",
	RateLimiter:       "-1",
	Propagated:        "-2",
	RuleBased:         "-3",
	ManualOverride:    "-4",
	PolicyEngine:      "-5",
	RemoteRate:        "-6",
	SingleSpan:        "-8",
	RemoteRule:        "-11",
	RemoteDynamicRule: "-12",
}

// DecisionMaker returns the string encoding used for this mechanism in
// a decision-maker tag, e.g. "-1" for RateLimiter. Unknown and any value
// with no registered encoding return "--1".
func (s SamplerName) DecisionMaker() string {
	if dm, ok := decisionMakers[s]; ok {
		return dm
	}
	return "--1"
}
