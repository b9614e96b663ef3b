// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016 Datadog, Inc.

// Package ext holds the well-known tag keys instrumentation code sets
// on a span via SpanCustomizer.Tag, so two independent instrumentation
// packages agree on a key name without depending on each other.
package ext

const (
	// TargetHost names the host a span's outbound call is made to.
	TargetHost = "out.host"

	NetworkDestinationName = "network.destination.name"
	NetworkDestinationIP    = "network.destination.ip"
	NetworkDestinationPort  = "network.destination.port"

	HTTPMethod    = "http.method"
	HTTPCode      = "http.status_code"
	HTTPRoute     = "http.route"
	HTTPURL       = "http.url"
	HTTPUserAgent = "http.useragent"
	HTTPClientIP  = "http.client_ip"

	SpanType    = "span.type"
	SpanKind    = "span.kind"
	ServiceName = "service.name"
	Version     = "version"
	Environment = "env"

	ResourceName = "resource.name"

	Error        = "error"
	ErrorMessage = "error.message"
	ErrorType    = "error.type"
	ErrorStack   = "error.stack"

	ManualKeep = "manual.keep"
	ManualDrop = "manual.drop"

	// RuntimeID identifies the Tracer instance that produced a span,
	// so spans from a restarted process aren't conflated with the
	// previous one.
	RuntimeID = "runtime-id"
	Component = "component"

	// DecisionMaker records which sampling mechanism produced the
	// span's sampled decision (see internal/samplernames).
	DecisionMaker = "decision.maker"
)
