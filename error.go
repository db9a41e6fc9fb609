package transfer

import "errors"

// Error kinds returned by context operations. Operations wrap these with
// detail; callers match with errors.Is.
var (
	// ErrInvalidParameter reports a nil or zero-size input.
	ErrInvalidParameter = errors.New("transfer: invalid parameter")

	// ErrNotReady reports an operation attempted while the context
	// status is not Ready.
	ErrNotReady = errors.New("transfer: context not ready")

	// ErrBufferTooSmall reports a record that cannot fit in the buffer
	// even after a forced flush, or a Print rendering that exceeds the
	// scratch area.
	ErrBufferTooSmall = errors.New("transfer: buffer too small")

	// ErrOutOfResources reports an allocation failure while escaping text.
	ErrOutOfResources = errors.New("transfer: out of resources")

	// ErrNotFound reports that no usable storage target was located.
	ErrNotFound = errors.New("transfer: storage target not found")

	// ErrWriteFailed reports a failed persist call on the output file.
	ErrWriteFailed = errors.New("transfer: write failed")
)
