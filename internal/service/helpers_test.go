package service

import (
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/sakif/civic-sync/internal/apperror"
	"github.com/sakif/civic-sync/internal/clock"
)

var testEpoch = time.Date(2025, time.June, 1, 10, 0, 0, 0, time.UTC)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func newTestClock() *clock.FakeClock {
	return clock.Fake(testEpoch)
}

// assertAppError fails unless err wraps sentinel.
func assertAppError(t *testing.T, err, sentinel error) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %v, got nil", sentinel)
	}
	if !errors.Is(err, sentinel) {
		t.Fatalf("expected %v, got %v", sentinel, err)
	}
}

// assertField fails unless err is a validation error on field.
func assertField(t *testing.T, err error, field string) {
	t.Helper()
	assertAppError(t, err, apperror.ErrValidation)
	var appErr *apperror.AppError
	if !errors.As(err, &appErr) || appErr.Field != field {
		t.Fatalf("expected validation error on %q, got %v", field, err)
	}
}

func ptr[T any](v T) *T { return &v }
