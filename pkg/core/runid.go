package core

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"strconv"
	"time"
)

type runIDKey struct{}

// WithRunID attaches a run id to the context. The router stamps one on
// every dispatch so spans, log lines, and history events from the same
// request share an identifier.
func WithRunID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, runIDKey{}, id)
}

// RunID returns the run id if present.
func RunID(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(runIDKey{}).(string)
	return id, ok
}

// EnsureRunID returns the existing run id, or mints one and attaches
// it. Pipelines call this once so every step shares the same id.
func EnsureRunID(ctx context.Context) (context.Context, string) {
	if id, ok := RunID(ctx); ok {
		return ctx, id
	}
	id := newRunID()
	return WithRunID(ctx, id), id
}

// newRunID mints ids of the form run-<seconds base36>-<random hex>.
// The leading timestamp makes ids sort roughly by request time in
// logs and trace backends.
func newRunID() string {
	buf := make([]byte, 5)
	if _, err := rand.Read(buf); err != nil {
		return "run-unknown"
	}
	return "run-" + strconv.FormatInt(time.Now().Unix(), 36) + "-" + hex.EncodeToString(buf)
}
