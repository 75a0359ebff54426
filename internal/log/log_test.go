package log

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	buf := new(bytes.Buffer)
	original := Logger()
	ReplaceLogger(slog.New(newHandler(buf)))
	t.Cleanup(func() {
		ReplaceLogger(original)
	})
	return buf
}

func TestInfoProducesLogfmtWithTimestamp(t *testing.T) {
	buf := captureLogs(t)

	Info(context.Background(), "hello", "user", "test")

	line := strings.TrimSpace(buf.String())
	if line == "" {
		t.Fatalf("expected log output, got empty string")
	}
	for _, want := range []string{"ts=", "level=info", "msg=hello", "user=test"} {
		if !strings.Contains(line, want) {
			t.Fatalf("expected %q in log line, got %q", want, line)
		}
	}
}

func TestRequestIDIsAttached(t *testing.T) {
	buf := captureLogs(t)

	ctx := WithRequestID(context.Background(), "req-42")
	Error(ctx, "boom")

	line := strings.TrimSpace(buf.String())
	if !strings.Contains(line, "requestID=req-42") {
		t.Fatalf("expected request id in log line, got %q", line)
	}
	if got := RequestID(ctx); got != "req-42" {
		t.Fatalf("RequestID() = %q, want %q", got, "req-42")
	}
}

func TestSetLevel(t *testing.T) {
	t.Cleanup(func() {
		_ = SetLevel("info")
	})

	if err := SetLevel("verbose"); err == nil {
		t.Fatal("expected error for unknown level")
	}

	buf := captureLogs(t)
	if err := SetLevel("error"); err != nil {
		t.Fatalf("SetLevel(error) returned %v", err)
	}
	Debug(context.Background(), "hidden")
	Info(context.Background(), "hidden")
	if buf.Len() != 0 {
		t.Fatalf("expected debug and info to be filtered, got %q", buf.String())
	}
}
