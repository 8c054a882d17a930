package wasmscan

import (
	"errors"
	"fmt"
)

var ErrFormat = errors.New("malformed wasm module")

// FormatError reports where in the blob parsing stopped and why.
type FormatError struct {
	Offset int
	Reason string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("%v: offset %d: %s", ErrFormat, e.Offset, e.Reason)
}

func (e *FormatError) Unwrap() error {
	return ErrFormat
}

func formatErr(off int, format string, args ...any) error {
	return &FormatError{Offset: off, Reason: fmt.Sprintf(format, args...)}
}

// rebase shifts a payload-relative FormatError to a blob offset.
func rebase(err error, base int) error {
	var fe *FormatError
	if errors.As(err, &fe) {
		return &FormatError{Offset: fe.Offset + base, Reason: fe.Reason}
	}
	return err
}
