package transfer

import (
	"sync/atomic"
	"time"
)

// Stats is a point-in-time copy of the context counters. All counters are
// monotonically non-decreasing for the lifetime of a context.
type Stats struct {
	TotalBytesWritten uint64
	TotalFilesCreated uint64
	WriteErrors       uint32
	BufferOverflows   uint32
	LastWriteTime     uint64 // unix seconds of the last successful persist
	Status            StatusKind
}

// statsCollector passively accumulates buffer manager and file writer
// outcomes. Counters are atomics so Stats snapshots and the Prometheus
// collector never block a writer holding the context lock.
type statsCollector struct {
	totalBytesWritten atomic.Uint64
	totalFilesCreated atomic.Uint64
	writeErrors       atomic.Uint32
	bufferOverflows   atomic.Uint32
	lastWriteTime     atomic.Int64
	status            atomic.Int32
}

func (s *statsCollector) setStatus(st StatusKind) {
	s.status.Store(int32(st))
}

func (s *statsCollector) currentStatus() StatusKind {
	return StatusKind(s.status.Load())
}

func (s *statsCollector) recordWrite(n int, at time.Time) {
	s.totalBytesWritten.Add(uint64(n))
	s.lastWriteTime.Store(at.Unix())
}

func (s *statsCollector) recordWriteError() {
	s.writeErrors.Add(1)
}

func (s *statsCollector) recordOverflow() {
	s.bufferOverflows.Add(1)
}

func (s *statsCollector) recordFileCreated() {
	s.totalFilesCreated.Add(1)
}

func (s *statsCollector) snapshot() Stats {
	last := s.lastWriteTime.Load()
	if last < 0 {
		last = 0
	}
	return Stats{
		TotalBytesWritten: s.totalBytesWritten.Load(),
		TotalFilesCreated: s.totalFilesCreated.Load(),
		WriteErrors:       s.writeErrors.Load(),
		BufferOverflows:   s.bufferOverflows.Load(),
		LastWriteTime:     uint64(last),
		Status:            s.currentStatus(),
	}
}
