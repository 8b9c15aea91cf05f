package logger

import (
	"bytes"
	"context"
	"strings"
	"testing"
)

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	ctx := WithLogger(context.Background(), NewLogger(WarningLevel, &buf, ""))

	Debugf(ctx, "debug line")
	Infof(ctx, "info line")
	Warningf(ctx, "warn line")
	Errorf(ctx, "error line")

	out := buf.String()
	if strings.Contains(out, "debug line") || strings.Contains(out, "info line") {
		t.Fatalf("expected debug/info suppressed at WarningLevel, got: %q", out)
	}
	if !strings.Contains(out, "warn line") || !strings.Contains(out, "error line") {
		t.Fatalf("expected warn/error to be logged, got: %q", out)
	}
}

func TestFromContextDefault(t *testing.T) {
	// No logger attached: must not panic, and should be silent except at
	// InfoLevel and above by default.
	Infof(context.Background(), "hello")
}
