// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016 Datadog, Inc.

// Package goid provides a best-effort, portable identifier for the
// calling goroutine. It exists solely to key a per-goroutine stack in
// the default CurrentTraceContext implementation; nothing in this
// module relies on it for correctness beyond "the same goroutine gets
// the same id for the lifetime of a scope".
package goid

import (
	"bytes"
	"runtime"
	"strconv"
	"sync"
)

var stackBufPool = sync.Pool{
	New: func() any {
		b := make([]byte, 64)
		return &b
	},
}

// Get returns the id of the calling goroutine, parsed out of the
// "goroutine N [running]:" header line that runtime.Stack always
// writes first. It is not cheap — every call has runtime.Stack format
// the stack header — and is meant to be called only at scope push/pop,
// not on every span mutation.
func Get() int64 {
	buf := stackBufPool.Get().(*[]byte)
	defer stackBufPool.Put(buf)

	n := runtime.Stack(*buf, false)
	b := (*buf)[:n]

	const prefix = "goroutine "
	if !bytes.HasPrefix(b, []byte(prefix)) {
		return 0
	}
	b = b[len(prefix):]
	if sp := bytes.IndexByte(b, ' '); sp >= 0 {
		b = b[:sp]
	}
	id, err := strconv.ParseInt(string(b), 10, 64)
	if err != nil {
		return 0
	}
	return id
}
