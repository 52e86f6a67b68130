package logging

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"cratescan/internal/services"
)

func TestConsoleHandlerLine(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Options{Level: "debug", Format: "console", Writer: &buf})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	NewComponentLogger(logger, "resolver").Info("artist resolved",
		String("artist", "The Beatles"),
		Int("albums", 13),
	)

	line := buf.String()
	if !strings.Contains(line, "INFO resolver: artist resolved") {
		t.Fatalf("unexpected line: %q", line)
	}
	if !strings.Contains(line, `artist="The Beatles"`) {
		t.Fatalf("expected quoted attr, got %q", line)
	}
	if !strings.Contains(line, "albums=13") {
		t.Fatalf("expected int attr, got %q", line)
	}
}

func TestConsoleHandlerLevelFilter(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Options{Level: "warn", Format: "console", Writer: &buf})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	logger.Info("hidden")
	logger.Warn("visible")
	if strings.Contains(buf.String(), "hidden") {
		t.Fatalf("info leaked through warn filter: %q", buf.String())
	}
	if !strings.Contains(buf.String(), "visible") {
		t.Fatalf("warn missing: %q", buf.String())
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := New(Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestJSONFormat(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Options{Level: "info", Format: "json", Writer: &buf})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	logger.Info("scan complete", Int("artists", 3))
	out := buf.String()
	if !strings.Contains(out, `"msg":"scan complete"`) {
		t.Fatalf("unexpected json output: %q", out)
	}
	if !strings.Contains(out, `"artists":3`) {
		t.Fatalf("missing attr in json output: %q", out)
	}
}

func TestWithContextAddsScanFields(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Options{Level: "debug", Format: "console", Writer: &buf})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	ctx := services.WithScanID(context.Background(), "scan-123")
	ctx = services.WithArtist(ctx, "Nina Simone")
	WithContext(ctx, logger).Debug("resolving")

	line := buf.String()
	if !strings.Contains(line, "scan_id=scan-123") {
		t.Fatalf("missing scan_id: %q", line)
	}
	if !strings.Contains(line, `artist="Nina Simone"`) {
		t.Fatalf("missing artist: %q", line)
	}
}
