package logging_test

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"segdesk/internal/platform/logging"
)

func TestParseLevel(t *testing.T) {
	t.Parallel()
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		" WARN ":  slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for in, want := range cases {
		if got := logging.ParseLevel(in); got != want {
			t.Fatalf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestNewWritesJSONToFile(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "logs", "segdesk.log")
	logger, closer, err := logging.New(logging.Options{Level: "debug", Format: "json", Output: path})
	if err != nil {
		t.Fatalf("new logger: %v", err)
	}
	logging.Component(logger, "engine").Debug("queue loaded", slog.Int("count", 3))
	if err := closer.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	line := string(b)
	if !strings.Contains(line, `"component":"engine"`) || !strings.Contains(line, `"count":3`) {
		t.Fatalf("unexpected log line: %s", line)
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	t.Parallel()
	if _, _, err := logging.New(logging.Options{Format: "xml"}); err == nil {
		t.Fatalf("expected unsupported format error")
	}
}

func TestRequestIDRoundTrip(t *testing.T) {
	t.Parallel()
	ctx := logging.WithRequestID(context.Background(), "req-1")
	if id, ok := logging.RequestIDFromContext(ctx); !ok || id != "req-1" {
		t.Fatalf("expected req-1, got %q %v", id, ok)
	}
	if _, ok := logging.RequestIDFromContext(context.Background()); ok {
		t.Fatalf("bare context must not carry a request id")
	}
}

func TestWithContextTagsRequestID(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	base := slog.New(slog.NewJSONHandler(&buf, nil))
	ctx := logging.WithRequestID(context.Background(), "req-7")
	logging.WithContext(ctx, base).Info("request done")
	if !strings.Contains(buf.String(), `"request_id":"req-7"`) {
		t.Fatalf("expected request id in record, got %s", buf.String())
	}
	if got := logging.WithContext(context.Background(), base); got != base {
		t.Fatalf("bare context should return the logger unchanged")
	}
}
