package logging

import (
	"errors"
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestNewOperationErrorKeepsNil(t *testing.T) {
	if err := NewOperationError("noop", "req", nil); err != nil {
		t.Fatalf("expected nil, got %v", err)
	}
}

func TestOperationErrorFormatsAndUnwraps(t *testing.T) {
	base := errors.New("boom")
	err := NewOperationError("cache.get", "req-1", base)

	if got, want := err.Error(), "cache.get (request_id=req-1): boom"; got != want {
		t.Fatalf("unexpected message: got %q want %q", got, want)
	}
	if !errors.Is(err, base) {
		t.Fatal("expected errors.Is to reach the wrapped error")
	}
	if got := OperationOf(err); got != "cache.get" {
		t.Fatalf("unexpected operation: %s", got)
	}
}

func TestOperationErrorWithoutRequestID(t *testing.T) {
	err := NewOperationError("grpc.dial", "", errors.New("refused"))
	if got, want := err.Error(), "grpc.dial: refused"; got != want {
		t.Fatalf("unexpected message: got %q want %q", got, want)
	}
	if OperationOf(errors.New("plain")) != "" {
		t.Fatal("expected empty operation for a plain error")
	}
}

func TestNewLoggerRejectsUnknownLevel(t *testing.T) {
	if _, err := NewLogger("loud"); err == nil {
		t.Fatal("expected error for unknown level")
	}
	logger, err := NewLogger("debug")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !logger.Core().Enabled(zapcore.DebugLevel) {
		t.Fatal("expected debug level to be enabled")
	}
}
