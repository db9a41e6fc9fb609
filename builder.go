package transfer

import (
	"time"

	"go.uber.org/zap"

	"github.com/plouton-fw/transfer/storage"
)

// Builder provides a fluent API for constructing a transfer context.
// It wraps a Config instance and provides chainable methods for setting values.
type Builder struct {
	cfg     *Config
	locator storage.Locator
	opts    []Option
	err     error // Accumulate errors for deferred handling
}

// NewBuilder creates a new context builder with default configuration values.
func NewBuilder() *Builder {
	return &Builder{
		cfg: DefaultConfig(),
	}
}

// Build validates the configuration and creates the context.
func (b *Builder) Build() (*Context, error) {
	if b.err != nil {
		return nil, b.err
	}
	if b.locator == nil {
		return nil, fmtErrorf("%w: no storage locator configured", ErrInvalidParameter)
	}
	return New(b.cfg, b.locator, b.opts...)
}

// Format sets the record encoding ("json", "csv", "text", "binary").
func (b *Builder) Format(format string) *Builder {
	b.cfg.Format = format
	return b
}

// AutoFlush sets the auto-flush policy.
func (b *Builder) AutoFlush(enable bool) *Builder {
	b.cfg.AutoFlush = enable
	return b
}

// BufferSize sets the line buffer capacity ("64KB", "1MB", ...).
func (b *Builder) BufferSize(size string) *Builder {
	b.cfg.BufferSize = size
	return b
}

// MaxFileSize sets the rotation threshold per output file. "0" disables
// rotation.
func (b *Builder) MaxFileSize(size string) *Builder {
	b.cfg.MaxFileSize = size
	return b
}

// MaxFiles sets how many rotated files are kept on the volume.
func (b *Builder) MaxFiles(n int64) *Builder {
	b.cfg.MaxFiles = n
	return b
}

// FilePrefix sets the output file name prefix.
func (b *Builder) FilePrefix(prefix string) *Builder {
	b.cfg.FilePrefix = prefix
	return b
}

// FileExtension sets the output file extension, without the dot.
func (b *Builder) FileExtension(ext string) *Builder {
	b.cfg.FileExtension = ext
	return b
}

// Directory pins the context to a directory-backed volume. Convenience for
// the common mounted-media case.
func (b *Builder) Directory(dir string) *Builder {
	if b.err != nil {
		return b
	}
	vol, err := storage.NewDirVolume(dir)
	if err != nil {
		b.err = err
		return b
	}
	b.locator = storage.FixedLocator{Volume: vol}
	return b
}

// Locator sets the storage locator used to find the output volume.
func (b *Builder) Locator(l storage.Locator) *Builder {
	b.locator = l
	return b
}

// Diagnostics routes internal diagnostics to the given logger.
func (b *Builder) Diagnostics(l *zap.Logger) *Builder {
	b.opts = append(b.opts, WithDiagnostics(l))
	return b
}

// Clock overrides the wall-clock source, for tests.
func (b *Builder) Clock(now func() time.Time) *Builder {
	b.opts = append(b.opts, WithClock(now))
	return b
}
