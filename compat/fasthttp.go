// Package compat provides adapters that let third-party frameworks log
// through a transfer context.
package compat

import (
	"fmt"
	"strings"

	"github.com/plouton-fw/transfer"
)

// FastHTTPAdapter wraps a transfer.Context to implement fasthttp's Logger
// interface.
type FastHTTPAdapter struct {
	ctx           *transfer.Context
	defaultLevel  int64
	levelDetector func(string) int64 // Function to detect entry level from message
}

// NewFastHTTPAdapter creates a new fasthttp-compatible logger adapter.
func NewFastHTTPAdapter(ctx *transfer.Context, opts ...FastHTTPOption) *FastHTTPAdapter {
	adapter := &FastHTTPAdapter{
		ctx:           ctx,
		defaultLevel:  transfer.LevelInfo,
		levelDetector: DetectLevel,
	}

	for _, opt := range opts {
		opt(adapter)
	}

	return adapter
}

// FastHTTPOption allows customizing adapter behavior.
type FastHTTPOption func(*FastHTTPAdapter)

// WithDefaultLevel sets the default entry level for Printf calls.
func WithDefaultLevel(level int64) FastHTTPOption {
	return func(a *FastHTTPAdapter) {
		a.defaultLevel = level
	}
}

// WithLevelDetector sets a custom function to detect entry level from
// message content.
func WithLevelDetector(detector func(string) int64) FastHTTPOption {
	return func(a *FastHTTPAdapter) {
		a.levelDetector = detector
	}
}

// Printf implements fasthttp's Logger interface. Write failures are dropped;
// the framework offers no error path and the context counts them.
func (a *FastHTTPAdapter) Printf(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)

	level := a.defaultLevel
	if a.levelDetector != nil {
		if detected := a.levelDetector(msg); detected >= 0 {
			level = detected
		}
	}

	_ = a.ctx.LogEntry(level, msg, nil)
}

// DetectLevel attempts to detect an entry level from message content.
// Returns -1 when nothing matches.
func DetectLevel(msg string) int64 {
	msgLower := strings.ToLower(msg)

	if strings.Contains(msgLower, "error") ||
		strings.Contains(msgLower, "failed") ||
		strings.Contains(msgLower, "fatal") ||
		strings.Contains(msgLower, "panic") {
		return transfer.LevelError
	}

	if strings.Contains(msgLower, "warn") ||
		strings.Contains(msgLower, "deprecated") {
		return transfer.LevelWarn
	}

	if strings.Contains(msgLower, "debug") ||
		strings.Contains(msgLower, "trace") {
		return transfer.LevelDebug
	}

	return -1
}
