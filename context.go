package transfer

import (
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/plouton-fw/transfer/storage"
)

// Context is the transfer context: it owns the line buffer, the active
// output file, and the statistics record, and exposes the write/flush/close
// operation surface. A Context is created by New (or a Builder) and released
// by Close.
//
// The engine itself is synchronous: every operation runs to completion
// before returning. The internal mutex provides the mutual exclusion a
// multi-goroutine caller would otherwise have to add around a single-writer
// design.
type Context struct {
	mu sync.Mutex

	format    FormatKind
	autoFlush bool

	fmtr   *formatter
	buffer *bufferManager
	writer *fileWriter
	stats  *statsCollector

	diag *zap.Logger
	now  func() time.Time
}

// Option customizes a Context at construction time.
type Option func(*Context)

// WithDiagnostics routes internal diagnostics (storage detection, file
// lifecycle, write failures) to the given logger. Default is a nop logger.
func WithDiagnostics(l *zap.Logger) Option {
	return func(c *Context) {
		if l != nil {
			c.diag = l
		}
	}
}

// WithClock overrides the wall-clock source, for tests.
func WithClock(now func() time.Time) Option {
	return func(c *Context) {
		if now != nil {
			c.now = now
		}
	}
}

// New locates a usable storage target through the locator, opens an initial
// timestamped output file, and returns a Ready context. It fails if the
// configuration is invalid, no target is found, or the file cannot be
// created.
func New(cfg *Config, locator storage.Locator, opts ...Option) (*Context, error) {
	if cfg == nil || locator == nil {
		return nil, fmtErrorf("%w: nil config or locator", ErrInvalidParameter)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	format, _ := ParseFormat(cfg.Format)
	bufCap, _ := cfg.bufferCapacity()
	maxFile, _ := cfg.maxFileBytes()

	c := &Context{
		format:    format,
		autoFlush: cfg.AutoFlush,
		fmtr:      newFormatter(format),
		stats:     &statsCollector{},
		diag:      zap.NewNop(),
		now:       time.Now,
	}
	c.stats.setStatus(StatusNotInitialized)

	for _, opt := range opts {
		opt(c)
	}

	volume, err := locator.Locate()
	if err != nil {
		c.stats.setStatus(StatusError)
		c.diag.Error("storage target detection failed", zap.Error(err))
		return nil, fmtErrorf("%w: %v", ErrNotFound, err)
	}

	c.writer = &fileWriter{
		volume:      volume,
		maxFileSize: maxFile,
		maxFiles:    int(cfg.MaxFiles),
		prefix:      cfg.FilePrefix,
		ext:         cfg.FileExtension,
		stats:       c.stats,
		diag:        c.diag,
		now:         c.now,
	}
	c.buffer = &bufferManager{
		buf:       newDataBuffer(bufCap),
		writer:    c.writer,
		stats:     c.stats,
		autoFlush: cfg.AutoFlush,
		now:       c.now,
	}

	if err := c.writer.open(true); err != nil {
		c.stats.setStatus(StatusError)
		return nil, err
	}

	c.stats.setStatus(StatusReady)
	c.diag.Info("transfer context initialized",
		zap.Stringer("format", format),
		zap.Bool("auto_flush", cfg.AutoFlush),
		zap.Int("buffer_size", bufCap))

	return c, nil
}

// Write formats data per the configured kind and stages it in the buffer.
// Binary payloads bypass the buffer: any pending buffered text is flushed
// first, then the length header and the raw bytes go straight to the file,
// preserving ordering. withTimestamp controls the wall-clock prefix inserted
// when the staged buffer is empty.
func (c *Context) Write(data []byte, withTimestamp bool) error {
	if len(data) == 0 {
		return fmtErrorf("%w: empty data", ErrInvalidParameter)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.requireReady(); err != nil {
		return err
	}
	c.stats.setStatus(StatusWriting)

	var err error
	if c.format == FormatBinary {
		err = c.writeBinary(data)
	} else {
		err = c.buffer.append(c.fmtr.formatData(data), withTimestamp)
	}

	c.settle(err)
	return err
}

// Print renders an ordered list of typed values into a bounded scratch area
// and writes the result as one record. Rendering that exceeds the scratch
// fails with ErrBufferTooSmall; it is never silently truncated.
func (c *Context) Print(args ...any) error {
	if len(args) == 0 {
		return fmtErrorf("%w: no values", ErrInvalidParameter)
	}

	line := appendValues(make([]byte, 0, printScratchSize), args)
	if len(line) > printScratchSize {
		return fmtErrorf("%w: rendered %d bytes, scratch is %d",
			ErrBufferTooSmall, len(line), printScratchSize)
	}

	return c.Write(line, false)
}

// LogEntry stages a structured entry {"level":N,"message":"..."} with an
// optional hasData marker, independent of the configured format.
func (c *Context) LogEntry(level int64, message string, data []byte) error {
	if message == "" {
		return fmtErrorf("%w: empty message", ErrInvalidParameter)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.requireReady(); err != nil {
		return err
	}
	c.stats.setStatus(StatusWriting)

	err := c.buffer.append(c.fmtr.formatEntry(level, message, data != nil), true)
	c.settle(err)
	return err
}

// LogMetric stages a delimited-text metric entry:
// <timestamp>,<category>,<value>,"<description>".
func (c *Context) LogMetric(ts uint64, category string, value uint64, description string) error {
	if category == "" {
		return fmtErrorf("%w: empty category", ErrInvalidParameter)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.requireReady(); err != nil {
		return err
	}
	c.stats.setStatus(StatusWriting)

	err := c.buffer.append(c.fmtr.formatMetric(ts, category, value, description), true)
	c.settle(err)
	return err
}

// Flush hands the buffered content to the file writer. It is permitted in
// Error and Full states: a successful flush is the recovery path back to
// Ready. Non-forced flushes honor the occupancy heuristic.
func (c *Context) Flush(force bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.stats.currentStatus() == StatusNotInitialized {
		return fmtErrorf("%w: context not initialized", ErrNotReady)
	}

	c.stats.setStatus(StatusWriting)
	err := c.buffer.flush(force)
	if err != nil {
		c.stats.setStatus(StatusError)
		return err
	}
	c.stats.setStatus(StatusReady)
	return nil
}

// Stats returns a copy of the current statistics, never a live reference.
func (c *Context) Stats() Stats {
	return c.stats.snapshot()
}

// Close forces a final flush, releases the file handle, and returns the
// context to NotInitialized. Closing an already closed context is a no-op
// success.
func (c *Context) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.stats.currentStatus() == StatusNotInitialized {
		return nil
	}

	var finalErr error
	if err := c.buffer.flush(true); err != nil {
		finalErr = err
	}
	if err := c.writer.close(); err != nil {
		finalErr = combineErrors(finalErr, err)
	}

	c.stats.setStatus(StatusNotInitialized)

	snap := c.stats.snapshot()
	c.diag.Info("transfer context closed",
		zap.Uint64("bytes_written", snap.TotalBytesWritten),
		zap.Uint64("files_created", snap.TotalFilesCreated),
		zap.Uint32("write_errors", snap.WriteErrors),
		zap.Uint32("buffer_overflows", snap.BufferOverflows))

	return finalErr
}

func (c *Context) requireReady() error {
	if st := c.stats.currentStatus(); st != StatusReady {
		return fmtErrorf("%w: status is %s", ErrNotReady, st)
	}
	return nil
}

// settle resolves the Writing state after an operation. Overflows leave the
// file and buffer healthy, so they keep Ready until the sustained-overflow
// threshold trips Full; persist failures go to Error.
func (c *Context) settle(err error) {
	switch {
	case err == nil:
		c.stats.setStatus(StatusReady)
	case errors.Is(err, ErrBufferTooSmall):
		if c.buffer.sustainedOverflow() {
			c.stats.setStatus(StatusFull)
		} else {
			c.stats.setStatus(StatusReady)
		}
	default:
		c.stats.setStatus(StatusError)
	}
}

// writeBinary flushes pending text, then persists the length header
// followed by the raw payload through the unbuffered path.
func (c *Context) writeBinary(data []byte) error {
	if err := c.buffer.flush(true); err != nil {
		return err
	}
	if err := c.writer.persist(c.fmtr.formatBinaryHeader(len(data))); err != nil {
		return err
	}
	return c.writer.persist(data)
}
