// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016 Datadog, Inc.

package tracer

import "github.com/google/uuid"

// newRuntimeID generates a per-Tracer instance identity, attached to the
// startup log line and echoed onto spans as a runtime-id tag so that
// spans from two Tracer instances in the same service (e.g. across a
// restart) aren't conflated.
func newRuntimeID() string {
	return uuid.New().String()
}
