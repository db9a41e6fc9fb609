package transfer

// FormatKind selects the wire encoding for records.
type FormatKind int

const (
	FormatJSON FormatKind = iota
	FormatCSV
	FormatText
	FormatBinary
)

// String returns the configuration name of the format.
func (f FormatKind) String() string {
	switch f {
	case FormatJSON:
		return "json"
	case FormatCSV:
		return "csv"
	case FormatText:
		return "text"
	case FormatBinary:
		return "binary"
	default:
		return "unknown"
	}
}

// Entry level constants for LogEntry records.
const (
	LevelError int64 = 0
	LevelWarn  int64 = 1
	LevelInfo  int64 = 2
	LevelDebug int64 = 3
)

const (
	// maxRecordLen caps a single formatted record; larger inputs are
	// replaced by a sentinel line reporting the original size.
	maxRecordLen = 1024

	// printScratchSize bounds the rendering area used by Print.
	// Rendering that would exceed it fails, it is never silently truncated.
	printScratchSize = 1024

	// fullOverflowThreshold is the number of consecutive buffer overflows,
	// with no successful flush in between, that transitions the context
	// to StatusFull.
	fullOverflowThreshold = 3

	// fileTimeLayout stamps output file names at first-open time.
	fileTimeLayout = "20060102_150405"

	// bufferTimeLayout prefixes the first record of each buffer fill.
	bufferTimeLayout = "[2006-01-02 15:04:05] "
)
