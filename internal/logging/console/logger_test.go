package console_test

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/brightpath-ai/siteadmin/internal/logging"
	"github.com/brightpath-ai/siteadmin/internal/logging/console"
)

func TestConsoleLoggerWritesStructuredEntry(t *testing.T) {
	var buf bytes.Buffer
	now := time.Date(2026, 3, 14, 9, 30, 0, 125000000, time.UTC)

	provider := console.NewProvider(console.Options{
		Writer:   &buf,
		TimeFunc: func() time.Time { return now },
	})

	logger := logging.RecordsLogger(provider)
	ctx := logging.ContextWithFields(context.Background(), map[string]any{"request_id": "req-1234"})
	logger = logger.WithContext(ctx)

	id := uuid.MustParse("8a51a9b1-2d30-4b2c-8ecd-2c0b87dfa999")
	logger.Info("record reordered", "record_id", id, "title", "AI Strategy")

	got := strings.TrimSpace(buf.String())
	want := `2026-03-14T09:30:00.125Z INFO record reordered logger=siteadmin.records module=siteadmin.records record_id=8a51a9b1-2d30-4b2c-8ecd-2c0b87dfa999 request_id=req-1234 title="AI Strategy"`
	if got != want {
		t.Fatalf("unexpected log entry\nwant: %s\ngot:  %s", want, got)
	}
}

func TestConsoleLoggerLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	provider := console.NewProvider(console.Options{Writer: &buf, MinLevel: console.LevelInfo})

	logger := provider.GetLogger("siteadmin.test")
	logger.Debug("ignored.debug", "foo", "bar")
	logger.Info("included.info", "foo", "bar")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 || !strings.Contains(lines[0], "included.info") {
		t.Fatalf("expected only the info entry, got %q", buf.String())
	}
}

func TestConsoleLoggerPositionalArgs(t *testing.T) {
	var buf bytes.Buffer
	provider := console.NewProvider(console.Options{Writer: &buf})

	provider.GetLogger("x").Warn("store failed", errors.New("connection refused"))

	if !strings.Contains(buf.String(), `field_0="connection refused"`) {
		t.Fatalf("expected unpaired value under a positional key, got %q", buf.String())
	}
}

func TestParseLevel(t *testing.T) {
	level, err := console.ParseLevel("Warning")
	if err != nil || level != console.LevelWarn {
		t.Fatalf("expected warn level, got %v %v", level, err)
	}
	if _, err := console.ParseLevel("loud"); err == nil {
		t.Fatalf("expected error for unknown level")
	}
}
