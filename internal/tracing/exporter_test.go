package tracing

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

func newTestExporter(t *testing.T) (*fileExporter, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "traces.jsonl")
	exporter, err := newFileExporter(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = exporter.Shutdown(context.Background()) })
	return exporter, path
}

func finishedSpans(t *testing.T, fn func(tp *sdktrace.TracerProvider)) []sdktrace.ReadOnlySpan {
	t.Helper()
	exp := &collectExporter{}
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exp))
	fn(tp)
	require.NoError(t, tp.Shutdown(context.Background()))
	return exp.spans
}

type collectExporter struct {
	spans []sdktrace.ReadOnlySpan
}

func (c *collectExporter) ExportSpans(_ context.Context, spans []sdktrace.ReadOnlySpan) error {
	c.spans = append(c.spans, spans...)
	return nil
}

func (c *collectExporter) Shutdown(context.Context) error { return nil }

func TestNewFileExporter_CreatesFile(t *testing.T) {
	_, path := newTestExporter(t)

	_, err := os.Stat(path)
	require.NoError(t, err, "trace file should be created")
}

func TestNewFileExporter_CreatesParentDirectories(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "traces.jsonl")

	exporter, err := newFileExporter(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = exporter.Shutdown(context.Background()) })

	_, err = os.Stat(path)
	require.NoError(t, err, "trace file should be created with parent dirs")
}

func TestExportSpans_WritesOneLinePerSpan(t *testing.T) {
	exporter, path := newTestExporter(t)

	spans := finishedSpans(t, func(tp *sdktrace.TracerProvider) {
		tracer := tp.Tracer("test")
		for _, name := range []string{"source.fetch", "source.seed"} {
			_, span := tracer.Start(context.Background(), name)
			span.SetAttributes(attribute.Int(AttrPage, 2), attribute.Int(AttrPerPage, 10))
			span.End()
		}
	})
	require.Len(t, spans, 2)
	require.NoError(t, exporter.ExportSpans(context.Background(), spans))
	require.NoError(t, exporter.Shutdown(context.Background()))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	var lines []spanLine
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var line spanLine
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &line))
		lines = append(lines, line)
	}
	require.NoError(t, scanner.Err())

	require.Len(t, lines, 2)
	require.Equal(t, "source.fetch", lines[0].Name)
	require.Equal(t, "source.seed", lines[1].Name)
	require.Equal(t, "INTERNAL", lines[0].Kind)
	require.Equal(t, int64(2), int64(lines[0].Attributes["pipeline.page"].(float64)))
}

func TestExportSpans_StatusAndParent(t *testing.T) {
	exporter, path := newTestExporter(t)

	spans := finishedSpans(t, func(tp *sdktrace.TracerProvider) {
		tracer := tp.Tracer("test")
		ctx, parent := tracer.Start(context.Background(), "parent")
		_, child := tracer.Start(ctx, "child")
		child.SetStatus(codes.Error, "boom")
		child.End()
		parent.End()
	})
	require.NoError(t, exporter.ExportSpans(context.Background(), spans))
	require.NoError(t, exporter.Shutdown(context.Background()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var child, parent spanLine
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		var line spanLine
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &line))
		switch line.Name {
		case "child":
			child = line
		case "parent":
			parent = line
		}
	}

	require.Equal(t, "ERROR", child.Status)
	require.Equal(t, "boom", child.StatusMsg)
	require.Equal(t, parent.SpanID, child.ParentID)
	require.Equal(t, "UNSET", parent.Status)
}

func TestExportAfterShutdownIsDropped(t *testing.T) {
	exporter, _ := newTestExporter(t)
	require.NoError(t, exporter.Shutdown(context.Background()))

	spans := finishedSpans(t, func(tp *sdktrace.TracerProvider) {
		_, span := tp.Tracer("test").Start(context.Background(), "late")
		span.End()
	})
	require.NoError(t, exporter.ExportSpans(context.Background(), spans))
}
