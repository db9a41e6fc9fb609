package transfer

import (
	"fmt"
	"strings"
)

// fmtErrorf wrapper ensuring a consistent package prefix
func fmtErrorf(format string, args ...any) error {
	if !strings.HasPrefix(format, "transfer: ") {
		format = "transfer: " + format
	}
	return fmt.Errorf(format, args...)
}

// combineErrors helper
func combineErrors(err1, err2 error) error {
	if err1 == nil {
		return err2
	}
	if err2 == nil {
		return err1
	}
	return fmt.Errorf("%v; %w", err1, err2)
}
