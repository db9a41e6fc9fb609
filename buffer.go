package transfer

import (
	"time"
)

// dataBuffer is the fixed-capacity staging area for formatted lines.
// Invariant: 0 <= size <= len(buf) at all times.
type dataBuffer struct {
	buf       []byte
	size      int
	lastFlush time.Time
}

func newDataBuffer(capacity int) *dataBuffer {
	return &dataBuffer{buf: make([]byte, capacity)}
}

func (b *dataBuffer) capacity() int { return len(b.buf) }

func (b *dataBuffer) occupancy() int { return b.size }

func (b *dataBuffer) empty() bool { return b.size == 0 }

func (b *dataBuffer) contents() []byte { return b.buf[:b.size] }

// appendLine stages one line plus terminator, with an optional prefix when
// the buffer is empty. The prefix is dropped silently if it does not fit;
// if the line itself does not fit the buffer is left byte-identical and
// ErrBufferTooSmall is returned, so a record is never staged partially.
func (b *dataBuffer) appendLine(line, prefix []byte) error {
	withPrefix := 0
	if b.size == 0 && len(prefix) > 0 && b.size+len(prefix)+len(line)+1 <= len(b.buf) {
		withPrefix = len(prefix)
	}

	if b.size+withPrefix+len(line)+1 > len(b.buf) {
		return ErrBufferTooSmall
	}

	if withPrefix > 0 {
		copy(b.buf[b.size:], prefix)
		b.size += withPrefix
	}
	copy(b.buf[b.size:], line)
	b.size += len(line)
	b.buf[b.size] = '\n'
	b.size++

	return nil
}

// clear zeroes the used region and resets the cursor after a successful
// flush.
func (b *dataBuffer) clear(now time.Time) {
	for i := 0; i < b.size; i++ {
		b.buf[i] = 0
	}
	b.size = 0
	b.lastFlush = now
}

// bufferManager owns the append and flush-trigger policy over one
// dataBuffer, handing full buffers to the file writer as single contiguous
// writes.
type bufferManager struct {
	buf       *dataBuffer
	writer    *fileWriter
	stats     *statsCollector
	autoFlush bool
	now       func() time.Time

	// consecutive overflows since the last successful flush
	overflowRun int
}

// append stages one formatted line, forcing a flush first when the line
// would not fit. A failed forced flush loses the record; the loss is
// accounted in WriteErrors by the writer.
func (m *bufferManager) append(line []byte, withTimestamp bool) error {
	required := len(line) + 1
	if withTimestamp {
		required += len(bufferTimeLayout)
	}

	if m.buf.occupancy()+required > m.buf.capacity() && !m.buf.empty() {
		if err := m.flush(true); err != nil {
			return err
		}
	}

	var prefix []byte
	if withTimestamp && m.buf.empty() {
		prefix = m.now().AppendFormat(nil, bufferTimeLayout)
	}

	if err := m.buf.appendLine(line, prefix); err != nil {
		m.overflowRun++
		m.stats.recordOverflow()
		return err
	}

	return nil
}

// flush persists the buffered content as one contiguous write. Non-forced
// flushes are skipped while auto-flush is disabled and occupancy is below
// half capacity. On failure the buffer is left intact for a later retry.
func (m *bufferManager) flush(force bool) error {
	if m.buf.empty() {
		m.overflowRun = 0
		return nil
	}

	if !force && !m.autoFlush && m.buf.occupancy() < m.buf.capacity()/2 {
		return nil
	}

	if err := m.writer.persist(m.buf.contents()); err != nil {
		return err
	}

	m.buf.clear(m.now())
	m.overflowRun = 0
	return nil
}

// sustainedOverflow reports whether overflow pressure has reached the Full
// threshold.
func (m *bufferManager) sustainedOverflow() bool {
	return m.overflowRun >= fullOverflowThreshold
}
