package transfer

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"strconv"
	"time"

	"github.com/davecgh/go-spew/spew"
)

const hexChars = "0123456789abcdef"

// formatter renders records into single newline-free text lines. The
// returned slices alias an internal scratch buffer and are only valid until
// the next formatter call.
type formatter struct {
	kind FormatKind
	buf  []byte
}

func newFormatter(kind FormatKind) *formatter {
	return &formatter{
		kind: kind,
		buf:  make([]byte, 0, maxRecordLen),
	}
}

func (f *formatter) reset() {
	f.buf = f.buf[:0]
}

// formatData renders a raw payload per the configured kind. Lines that would
// exceed maxRecordLen are replaced with a sentinel reporting the original
// size; a record is never emitted partially.
func (f *formatter) formatData(data []byte) []byte {
	f.reset()

	switch f.kind {
	case FormatJSON:
		f.buf = append(f.buf, `{"size":`...)
		f.buf = strconv.AppendInt(f.buf, int64(len(data)), 10)
		f.buf = append(f.buf, `,"data":"`...)
		f.buf = appendEscapedBytes(f.buf, data)
		f.buf = append(f.buf, '"', '}')
		if len(f.buf) > maxRecordLen {
			return f.jsonSentinel(len(data))
		}

	case FormatCSV:
		f.buf = strconv.AppendInt(f.buf, int64(len(data)), 10)
		f.buf = append(f.buf, ',', '"')
		f.buf = appendEscapedBytes(f.buf, data)
		f.buf = append(f.buf, '"')
		if len(f.buf) > maxRecordLen {
			return f.csvSentinel(len(data))
		}

	default: // FormatText
		if len(data) > maxRecordLen {
			return f.textSentinel(len(data))
		}
		f.buf = append(f.buf, data...)
	}

	return f.buf
}

// formatBinaryHeader renders the length header preceding a write-through
// binary payload. The trailing newline is included because the header
// bypasses the line buffer and its terminator handling.
func (f *formatter) formatBinaryHeader(size int) []byte {
	f.reset()
	f.buf = append(f.buf, "BINARY_DATA_SIZE:"...)
	f.buf = strconv.AppendInt(f.buf, int64(size), 10)
	f.buf = append(f.buf, '\n')
	return f.buf
}

// formatEntry renders a structured log entry regardless of the configured
// kind: {"level":N,"message":"..."} with an optional hasData marker.
func (f *formatter) formatEntry(level int64, message string, hasData bool) []byte {
	f.reset()
	f.buf = append(f.buf, `{"level":`...)
	f.buf = strconv.AppendInt(f.buf, level, 10)
	f.buf = append(f.buf, `,"message":"`...)
	f.buf = appendEscaped(f.buf, message)
	f.buf = append(f.buf, '"')
	if hasData {
		f.buf = append(f.buf, `,"hasData":true`...)
	}
	f.buf = append(f.buf, '}')
	if len(f.buf) > maxRecordLen {
		return f.jsonSentinel(len(message))
	}
	return f.buf
}

// formatMetric renders a delimited-text metric entry:
// <timestamp>,"<category>",<value>,"<description>"
// Both text fields are quoted so an embedded delimiter cannot shift the
// remaining columns.
func (f *formatter) formatMetric(ts uint64, category string, value uint64, description string) []byte {
	f.reset()
	f.buf = strconv.AppendUint(f.buf, ts, 10)
	f.buf = append(f.buf, ',', '"')
	f.buf = appendEscaped(f.buf, category)
	f.buf = append(f.buf, '"', ',')
	f.buf = strconv.AppendUint(f.buf, value, 10)
	f.buf = append(f.buf, ',', '"')
	f.buf = appendEscaped(f.buf, description)
	f.buf = append(f.buf, '"')
	if len(f.buf) > maxRecordLen {
		return f.csvSentinel(len(description))
	}
	return f.buf
}

func (f *formatter) jsonSentinel(size int) []byte {
	f.reset()
	f.buf = append(f.buf, `{"size":`...)
	f.buf = strconv.AppendInt(f.buf, int64(size), 10)
	f.buf = append(f.buf, `,"truncated":true}`...)
	return f.buf
}

func (f *formatter) csvSentinel(size int) []byte {
	f.reset()
	f.buf = strconv.AppendInt(f.buf, int64(size), 10)
	f.buf = append(f.buf, `,"<truncated>"`...)
	return f.buf
}

func (f *formatter) textSentinel(size int) []byte {
	f.reset()
	f.buf = append(f.buf, "Data too large to display ("...)
	f.buf = strconv.AppendInt(f.buf, int64(size), 10)
	f.buf = append(f.buf, " bytes)"...)
	return f.buf
}

// appendEscaped appends a string, escaping quote, backslash, and control
// characters so the output stays a valid single-line encoded string.
func appendEscaped(dst []byte, str string) []byte {
	lenStr := len(str)
	for i := 0; i < lenStr; {
		if c := str[i]; c < ' ' || c == '"' || c == '\\' {
			dst = appendEscapedByte(dst, c)
			i++
		} else {
			start := i
			for i < lenStr && str[i] >= ' ' && str[i] != '"' && str[i] != '\\' {
				i++
			}
			dst = append(dst, str[start:i]...)
		}
	}
	return dst
}

func appendEscapedBytes(dst, data []byte) []byte {
	for len(data) > 0 {
		if c := data[0]; c < ' ' || c == '"' || c == '\\' {
			dst = appendEscapedByte(dst, c)
			data = data[1:]
		} else {
			i := 1
			for i < len(data) && data[i] >= ' ' && data[i] != '"' && data[i] != '\\' {
				i++
			}
			dst = append(dst, data[:i]...)
			data = data[i:]
		}
	}
	return dst
}

func appendEscapedByte(dst []byte, c byte) []byte {
	switch c {
	case '\\', '"':
		return append(dst, '\\', c)
	case '\n':
		return append(dst, '\\', 'n')
	case '\r':
		return append(dst, '\\', 'r')
	case '\t':
		return append(dst, '\\', 't')
	case '\b':
		return append(dst, '\\', 'b')
	case '\f':
		return append(dst, '\\', 'f')
	default:
		dst = append(dst, `\u00`...)
		return append(dst, hexChars[c>>4], hexChars[c&0xF])
	}
}

// appendValue renders one typed value for Print. Aggregates fall back to a
// compact spew dump; raw bytes are hex encoded to prevent corruption of the
// text stream.
func appendValue(dst []byte, v any) []byte {
	switch val := v.(type) {
	case string:
		return append(dst, val...)
	case int:
		return strconv.AppendInt(dst, int64(val), 10)
	case int64:
		return strconv.AppendInt(dst, val, 10)
	case uint:
		return strconv.AppendUint(dst, uint64(val), 10)
	case uint32:
		return strconv.AppendUint(dst, uint64(val), 10)
	case uint64:
		return strconv.AppendUint(dst, val, 10)
	case float32:
		return strconv.AppendFloat(dst, float64(val), 'f', -1, 32)
	case float64:
		return strconv.AppendFloat(dst, val, 'f', -1, 64)
	case bool:
		return strconv.AppendBool(dst, val)
	case nil:
		return append(dst, "nil"...)
	case time.Time:
		return val.AppendFormat(dst, time.RFC3339)
	case error:
		return append(dst, val.Error()...)
	case fmt.Stringer:
		return append(dst, val.String()...)
	case []byte:
		return hex.AppendEncode(dst, val)
	default:
		var b bytes.Buffer
		dumper := &spew.ConfigState{
			Indent:                  " ",
			MaxDepth:                10,
			DisablePointerAddresses: true,
			DisableCapacities:       true,
			SortKeys:                true,
		}
		dumper.Fdump(&b, val)
		return append(dst, bytes.TrimSpace(b.Bytes())...)
	}
}

// appendValues renders an ordered list of typed values space-separated.
func appendValues(dst []byte, args []any) []byte {
	for i, arg := range args {
		if i > 0 {
			dst = append(dst, ' ')
		}
		dst = appendValue(dst, arg)
	}
	return dst
}
