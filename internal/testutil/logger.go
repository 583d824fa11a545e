// Package testutil holds shared test helpers for the daemon packages.
package testutil

import (
	"log/slog"
	"testing"
)

// NewTestLogger returns a slog.Logger that routes records through
// t.Log, so daemon output only surfaces on failure or with -v.
func NewTestLogger(t testing.TB) *slog.Logger {
	t.Helper()
	return slog.New(slog.NewTextHandler(testWriter{t}, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
}

type testWriter struct {
	t testing.TB
}

func (w testWriter) Write(p []byte) (int, error) {
	w.t.Helper()
	w.t.Log(string(p))
	return len(p), nil
}
