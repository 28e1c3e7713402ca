package tracing

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// fileExporter appends spans as JSON lines so a trace file can be
// inspected with jq without running a collector. It implements
// sdktrace.SpanExporter.
type fileExporter struct {
	mu  sync.Mutex
	out io.WriteCloser
	enc *json.Encoder
}

// newFileExporter opens (or creates) the trace file at path, creating
// parent directories as needed, and appends to it.
func newFileExporter(path string) (*fileExporter, error) {
	clean := filepath.Clean(path)
	if err := os.MkdirAll(filepath.Dir(clean), 0o750); err != nil {
		return nil, fmt.Errorf("creating trace directory: %w", err)
	}
	f, err := os.OpenFile(clean, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600) // #nosec G304 -- path is cleaned above
	if err != nil {
		return nil, fmt.Errorf("opening trace file: %w", err)
	}
	return &fileExporter{out: f, enc: json.NewEncoder(f)}, nil
}

// ExportSpans writes each span as one JSON object per line.
func (e *fileExporter) ExportSpans(_ context.Context, spans []sdktrace.ReadOnlySpan) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.out == nil {
		return nil
	}
	for _, span := range spans {
		if err := e.enc.Encode(newSpanLine(span)); err != nil {
			return fmt.Errorf("encoding span: %w", err)
		}
	}
	return nil
}

// Shutdown closes the trace file. Further exports are dropped.
func (e *fileExporter) Shutdown(context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.out == nil {
		return nil
	}
	err := e.out.Close()
	e.out = nil
	return err
}

// spanLine is the JSONL shape of one exported span.
type spanLine struct {
	TraceID    string          `json:"trace_id"`
	SpanID     string          `json:"span_id"`
	ParentID   string          `json:"parent_span_id,omitempty"`
	Name       string          `json:"name"`
	Kind       string          `json:"kind"`
	Start      string          `json:"start_time"`
	End        string          `json:"end_time"`
	DurationMs float64         `json:"duration_ms"`
	Status     string          `json:"status"`
	StatusMsg  string          `json:"status_message,omitempty"`
	Attributes map[string]any  `json:"attributes,omitempty"`
	Events     []spanEventLine `json:"events,omitempty"`
}

type spanEventLine struct {
	Name       string         `json:"name"`
	Timestamp  string         `json:"timestamp"`
	Attributes map[string]any `json:"attributes,omitempty"`
}

func newSpanLine(span sdktrace.ReadOnlySpan) spanLine {
	sc := span.SpanContext()

	line := spanLine{
		TraceID:    sc.TraceID().String(),
		SpanID:     sc.SpanID().String(),
		Name:       span.Name(),
		Kind:       strings.ToUpper(span.SpanKind().String()),
		Start:      span.StartTime().Format(time.RFC3339Nano),
		End:        span.EndTime().Format(time.RFC3339Nano),
		DurationMs: float64(span.EndTime().Sub(span.StartTime()).Microseconds()) / 1000.0,
		Status:     statusString(span.Status().Code),
		StatusMsg:  span.Status().Description,
		Attributes: attrMap(span.Attributes()),
	}
	if span.Parent().IsValid() {
		line.ParentID = span.Parent().SpanID().String()
	}
	for _, evt := range span.Events() {
		line.Events = append(line.Events, spanEventLine{
			Name:       evt.Name,
			Timestamp:  evt.Time.Format(time.RFC3339Nano),
			Attributes: attrMap(evt.Attributes),
		})
	}
	return line
}

func statusString(code codes.Code) string {
	switch code {
	case codes.Ok:
		return "OK"
	case codes.Error:
		return "ERROR"
	}
	return "UNSET"
}

func attrMap(kvs []attribute.KeyValue) map[string]any {
	if len(kvs) == 0 {
		return nil
	}
	m := make(map[string]any, len(kvs))
	for _, kv := range kvs {
		m[string(kv.Key)] = kv.Value.AsInterface()
	}
	return m
}
