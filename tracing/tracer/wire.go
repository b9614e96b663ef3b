// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016 Datadog, Inc.

package tracer

import (
	"github.com/tinylib/msgp/msgp"
)

// wireEndpoint is the zipkin v2 endpoint shape.
type wireEndpoint struct {
	ServiceName string
	IPv4        string
	IPv6        string
	Port        uint16
}

// wireAnnotation is a single timestamped event, µs since epoch.
type wireAnnotation struct {
	Timestamp int64
	Value     string
}

// zipkinSpan is the bit-exact zipkin v2 wire record described in
// spec.md §6. traceId/parentId/id are pre-rendered hex so the encoder
// never has to branch on 64- vs 128-bit trace ids at encode time.
type zipkinSpan struct {
	TraceID        string
	ParentID       string // empty means absent
	ID             string
	Kind           string // empty means absent
	Name           string
	Timestamp      int64 // µs since epoch
	Duration       int64 // µs
	LocalEndpoint  *wireEndpoint
	RemoteEndpoint *wireEndpoint
	Annotations    []wireAnnotation
	Tags           map[string]string
	Debug          bool
	Shared         bool
}

func toWireSpan(ctx TraceContext, local *Endpoint, snap finishedSpanSnapshot) zipkinSpan {
	w := zipkinSpan{
		TraceID:     ctx.TraceIDHex(),
		ID:          ctx.SpanIDHex(),
		Kind:        string(snap.Kind),
		Name:        snap.Name,
		Timestamp:   snap.Start.UnixMicro(),
		Duration:    snap.Duration.Microseconds(),
		Tags:        snap.Tags,
		Debug:       ctx.Debug(),
		Shared:      ctx.Shared(),
	}
	if parentID, ok := ctx.ParentID(); ok {
		w.ParentID = spanIDHexEncoded(parentID)
	}
	if local != nil {
		w.LocalEndpoint = &wireEndpoint{ServiceName: local.ServiceName, IPv4: local.IPv4, IPv6: local.IPv6, Port: local.Port}
	}
	if snap.Remote != nil {
		w.RemoteEndpoint = &wireEndpoint{ServiceName: snap.Remote.ServiceName, IPv4: snap.Remote.IPv4, IPv6: snap.Remote.IPv6, Port: snap.Remote.Port}
	}
	if snap.Err != nil {
		if w.Tags == nil {
			w.Tags = map[string]string{}
		}
		w.Tags["error"] = snap.Err.Error()
	}
	for _, a := range snap.Annotations {
		w.Annotations = append(w.Annotations, wireAnnotation{Timestamp: a.Timestamp.UnixMicro(), Value: a.Value})
	}
	return w
}

// EncodeMsg streams the span as a zipkin v2 JSON-shaped map over
// msgpack. Hand-written against msgp.Writer rather than go:generate'd,
// the same way the teacher's own agent payload encoder is hand-written:
// the field count varies per span (optional parentId/kind/endpoints),
// so a fixed generated struct encoder doesn't fit.
func (z zipkinSpan) EncodeMsg(w *msgp.Writer) error {
	fields := 8 // traceId, id, name, timestamp, duration, tags, debug, shared
	if z.ParentID != "" {
		fields++
	}
	if z.Kind != "" {
		fields++
	}
	if z.LocalEndpoint != nil {
		fields++
	}
	if z.RemoteEndpoint != nil {
		fields++
	}
	if len(z.Annotations) > 0 {
		fields++
	}

	if err := w.WriteMapHeader(uint32(fields)); err != nil {
		return err
	}
	writes := []func() error{
		func() error { return writeStrField(w, "traceId", z.TraceID) },
		func() error { return writeStrField(w, "id", z.ID) },
		func() error { return writeStrField(w, "name", z.Name) },
		func() error { return writeInt64Field(w, "timestamp", z.Timestamp) },
		func() error { return writeInt64Field(w, "duration", z.Duration) },
		func() error { return writeTagsField(w, z.Tags) },
		func() error { return writeBoolField(w, "debug", z.Debug) },
		func() error { return writeBoolField(w, "shared", z.Shared) },
	}
	if z.ParentID != "" {
		writes = append(writes, func() error { return writeStrField(w, "parentId", z.ParentID) })
	}
	if z.Kind != "" {
		writes = append(writes, func() error { return writeStrField(w, "kind", z.Kind) })
	}
	if z.LocalEndpoint != nil {
		writes = append(writes, func() error { return writeEndpointField(w, "localEndpoint", z.LocalEndpoint) })
	}
	if z.RemoteEndpoint != nil {
		writes = append(writes, func() error { return writeEndpointField(w, "remoteEndpoint", z.RemoteEndpoint) })
	}
	if len(z.Annotations) > 0 {
		writes = append(writes, func() error { return writeAnnotationsField(w, z.Annotations) })
	}
	for _, write := range writes {
		if err := write(); err != nil {
			return err
		}
	}
	return nil
}

func writeStrField(w *msgp.Writer, key, value string) error {
	if err := w.WriteString(key); err != nil {
		return err
	}
	return w.WriteString(value)
}

func writeInt64Field(w *msgp.Writer, key string, value int64) error {
	if err := w.WriteString(key); err != nil {
		return err
	}
	return w.WriteInt64(value)
}

func writeBoolField(w *msgp.Writer, key string, value bool) error {
	if err := w.WriteString(key); err != nil {
		return err
	}
	return w.WriteBool(value)
}

func writeTagsField(w *msgp.Writer, tags map[string]string) error {
	if err := w.WriteString("tags"); err != nil {
		return err
	}
	if err := w.WriteMapHeader(uint32(len(tags))); err != nil {
		return err
	}
	for k, v := range tags {
		if err := w.WriteString(k); err != nil {
			return err
		}
		if err := w.WriteString(v); err != nil {
			return err
		}
	}
	return nil
}

func writeEndpointField(w *msgp.Writer, key string, e *wireEndpoint) error {
	if err := w.WriteString(key); err != nil {
		return err
	}
	if err := w.WriteMapHeader(4); err != nil {
		return err
	}
	if err := writeStrField(w, "serviceName", e.ServiceName); err != nil {
		return err
	}
	if err := writeStrField(w, "ipv4", e.IPv4); err != nil {
		return err
	}
	if err := writeStrField(w, "ipv6", e.IPv6); err != nil {
		return err
	}
	return writeInt64Field(w, "port", int64(e.Port))
}

func writeAnnotationsField(w *msgp.Writer, anns []wireAnnotation) error {
	if err := w.WriteString("annotations"); err != nil {
		return err
	}
	if err := w.WriteArrayHeader(uint32(len(anns))); err != nil {
		return err
	}
	for _, a := range anns {
		if err := w.WriteMapHeader(2); err != nil {
			return err
		}
		if err := writeInt64Field(w, "timestamp", a.Timestamp); err != nil {
			return err
		}
		if err := writeStrField(w, "value", a.Value); err != nil {
			return err
		}
	}
	return nil
}
