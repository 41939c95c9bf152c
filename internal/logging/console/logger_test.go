package console_test

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/goliatone/go-localize/internal/logging"
	"github.com/goliatone/go-localize/internal/logging/console"
)

func TestConsoleLoggerWritesStructuredEntry(t *testing.T) {
	var buf bytes.Buffer
	now := time.Date(2026, 8, 12, 10, 30, 45, 123456000, time.UTC)

	minLevel := console.LevelDebug
	provider := console.NewProvider(console.Options{
		Writer:   &buf,
		TimeFunc: func() time.Time { return now },
		MinLevel: &minLevel,
	})

	logger := logging.WithFields(provider.GetLogger("localize.review"), map[string]any{
		"module": "localize.review",
	})
	ctx := logging.ContextWithFields(context.Background(), map[string]any{
		"request_id": "req-42",
	})
	logger = logger.WithContext(ctx)

	logger.Info("review.completed",
		"collection", "posts",
		"fragments", 3,
	)

	got := strings.TrimSpace(buf.String())
	want := "2026-08-12T10:30:45.123456Z INFO review.completed collection=posts fragments=3 logger=localize.review module=localize.review request_id=req-42"
	if got != want {
		t.Fatalf("unexpected log entry\nwant: %s\ngot:  %s", want, got)
	}
}

func TestConsoleLoggerFiltersBelowMinLevel(t *testing.T) {
	var buf bytes.Buffer
	minLevel := console.LevelInfo
	provider := console.NewProvider(console.Options{
		Writer:   &buf,
		MinLevel: &minLevel,
	})

	logger := provider.GetLogger("localize.bulk")
	logger.Debug("bulk.skipped", "reason", "manual")
	logger.Warn("bulk.failed", "reason", "timeout")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected single log line, got %d", len(lines))
	}
	if !strings.Contains(lines[0], "bulk.failed") {
		t.Fatalf("expected warn entry, got %s", lines[0])
	}
	if strings.Contains(buf.String(), "bulk.skipped") {
		t.Fatalf("debug entry should be filtered: %s", buf.String())
	}
}

func TestConsoleLoggerQuotesValuesWithSpaces(t *testing.T) {
	var buf bytes.Buffer
	provider := console.NewProvider(console.Options{Writer: &buf})

	provider.GetLogger("localize").Error("translate.failed", "detail", "provider timed out")

	if !strings.Contains(buf.String(), `detail="provider timed out"`) {
		t.Fatalf("expected quoted value, got %s", buf.String())
	}
}

func TestParseLevel(t *testing.T) {
	cases := []struct {
		name string
		want console.Level
	}{
		{"trace", console.LevelTrace},
		{"DEBUG", console.LevelDebug},
		{"warn", console.LevelWarn},
		{"warning", console.LevelWarn},
		{"error", console.LevelError},
		{"fatal", console.LevelFatal},
		{"", console.LevelInfo},
		{"verbose", console.LevelInfo},
	}
	for _, tc := range cases {
		if got := console.ParseLevel(tc.name); got != tc.want {
			t.Fatalf("ParseLevel(%q) = %v, want %v", tc.name, got, tc.want)
		}
	}
}
