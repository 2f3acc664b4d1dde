package telemetry

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/jllopis/paideia/pkg/core"
	"github.com/jllopis/paideia/pkg/errors"
)

func TestInit(t *testing.T) {
	shutdown, err := Init("test-service", "v0.0.1")
	if err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	if shutdown == nil {
		t.Fatal("Shutdown function should not be nil")
	}

	if err := shutdown(context.Background()); err != nil {
		t.Errorf("Shutdown failed: %v", err)
	}
}

func TestInitWithConfigUnknownExporter(t *testing.T) {
	if _, err := InitWithConfig("test", "v0", Config{Exporter: "bogus"}); err == nil {
		t.Fatal("expected error for unknown exporter")
	}
}

func TestInitWithConfigOTLPRequiresEndpoint(t *testing.T) {
	if _, err := InitWithConfig("test", "v0", Config{Exporter: "otlp"}); err == nil {
		t.Fatal("expected error when otlp endpoint is empty")
	}
}

func TestConfigureSlogJSON(t *testing.T) {
	var buf bytes.Buffer
	prev := slog.Default()
	defer slog.SetDefault(prev)

	logger := ConfigureSlog(&buf, "debug", "json")
	logger.Info("hello", "agent", "RAGAgent")

	var line map[string]any
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, buf.String())
	}
	if line["msg"] != "hello" {
		t.Errorf("msg = %v, want hello", line["msg"])
	}
	if line["agent"] != "RAGAgent" {
		t.Errorf("agent = %v, want RAGAgent", line["agent"])
	}
}

func TestConfigureSlogStampsRunID(t *testing.T) {
	var buf bytes.Buffer
	prev := slog.Default()
	defer slog.SetDefault(prev)

	logger := ConfigureSlog(&buf, "info", "json")
	ctx := core.WithRunID(context.Background(), "run-abc123")
	logger.InfoContext(ctx, "dispatching")

	var line map[string]any
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, buf.String())
	}
	if line["run_id"] != "run-abc123" {
		t.Errorf("run_id = %v, want run-abc123", line["run_id"])
	}

	buf.Reset()
	logger.Info("no context")
	if strings.Contains(buf.String(), "run_id") {
		t.Error("run_id must not appear without one on the context")
	}
}

func TestConfigureSlogLevelFilter(t *testing.T) {
	var buf bytes.Buffer
	prev := slog.Default()
	defer slog.SetDefault(prev)

	logger := ConfigureSlog(&buf, "warn", "text")
	logger.Info("dropped")
	logger.Warn("kept")

	out := buf.String()
	if strings.Contains(out, "dropped") {
		t.Error("info line should have been filtered at warn level")
	}
	if !strings.Contains(out, "kept") {
		t.Error("warn line missing from output")
	}
}

func TestParseLogLevel(t *testing.T) {
	cases := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"warning", slog.LevelWarn},
		{" error ", slog.LevelError},
		{"garbage", slog.LevelInfo},
		{"", slog.LevelInfo},
	}
	for _, tc := range cases {
		if got := parseLogLevel(tc.in); got != tc.want {
			t.Errorf("parseLogLevel(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestSessionAttributesSkipsEmpty(t *testing.T) {
	attrs := SessionAttributes("", "sess-1", "ur")
	if len(attrs) != 2 {
		t.Fatalf("got %d attributes, want 2", len(attrs))
	}
	for _, a := range attrs {
		if string(a.Key) == AttrUserID {
			t.Error("empty user id should not produce an attribute")
		}
	}
}

func TestRAGAttributesTruncatesQuery(t *testing.T) {
	long := strings.Repeat("q", 300)
	attrs := RAGAttributes(long, "textbook", "ch03", 5)
	for _, a := range attrs {
		if string(a.Key) == AttrRAGQuery {
			if got := a.Value.AsString(); len(got) != 203 {
				t.Errorf("query attribute length = %d, want 203", len(got))
			}
			return
		}
	}
	t.Fatal("query attribute missing")
}

func TestMetricsRecord(t *testing.T) {
	m, err := NewMetrics()
	if err != nil {
		t.Fatalf("NewMetrics: %v", err)
	}

	ctx := context.Background()
	m.RecordRequest(ctx, "/v1/chat", true, 120*time.Millisecond)
	m.RecordError(ctx, errors.New(errors.CodeLLMError, "llm down", nil), "httpapi")
	m.RecordError(ctx, context.DeadlineExceeded, "httpapi")
	m.RecordEvent(ctx, "chat")

	// A nil tracker is a no-op.
	var none *Metrics
	none.RecordRequest(ctx, "/v1/chat", false, 0)
	none.RecordError(ctx, nil, "")
	none.RecordEvent(ctx, "chat")
}
