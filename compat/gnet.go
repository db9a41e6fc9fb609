package compat

import (
	"fmt"
	"os"

	"github.com/plouton-fw/transfer"
)

// GnetAdapter wraps a transfer.Context to implement gnet's logging.Logger
// interface.
type GnetAdapter struct {
	ctx          *transfer.Context
	fatalHandler func(msg string) // Customizable fatal behavior
}

// NewGnetAdapter creates a new gnet-compatible logger adapter.
func NewGnetAdapter(ctx *transfer.Context, opts ...GnetOption) *GnetAdapter {
	adapter := &GnetAdapter{
		ctx: ctx,
		fatalHandler: func(msg string) {
			os.Exit(1) // Default behavior matches gnet expectations
		},
	}

	for _, opt := range opts {
		opt(adapter)
	}

	return adapter
}

// GnetOption allows customizing adapter behavior.
type GnetOption func(*GnetAdapter)

// WithFatalHandler sets a custom fatal handler.
func WithFatalHandler(handler func(string)) GnetOption {
	return func(a *GnetAdapter) {
		a.fatalHandler = handler
	}
}

// Debugf logs at debug level with printf-style formatting.
func (a *GnetAdapter) Debugf(format string, args ...any) {
	_ = a.ctx.LogEntry(transfer.LevelDebug, fmt.Sprintf(format, args...), nil)
}

// Infof logs at info level with printf-style formatting.
func (a *GnetAdapter) Infof(format string, args ...any) {
	_ = a.ctx.LogEntry(transfer.LevelInfo, fmt.Sprintf(format, args...), nil)
}

// Warnf logs at warning level with printf-style formatting.
func (a *GnetAdapter) Warnf(format string, args ...any) {
	_ = a.ctx.LogEntry(transfer.LevelWarn, fmt.Sprintf(format, args...), nil)
}

// Errorf logs at error level with printf-style formatting.
func (a *GnetAdapter) Errorf(format string, args ...any) {
	_ = a.ctx.LogEntry(transfer.LevelError, fmt.Sprintf(format, args...), nil)
}

// Fatalf logs at error level, flushes, and triggers the fatal handler.
func (a *GnetAdapter) Fatalf(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	_ = a.ctx.LogEntry(transfer.LevelError, msg, nil)

	// Ensure the entry reaches the media before exit
	_ = a.ctx.Flush(true)

	if a.fatalHandler != nil {
		a.fatalHandler(msg)
	}
}
