// internal/format/errors.go
package format

import "errors"

var (
	// ErrMalformedFormat is returned when a layout descriptor cannot be parsed
	ErrMalformedFormat = errors.New("malformed format descriptor")

	// ErrTruncatedRecord is returned when decoding runs past the end of the entry
	ErrTruncatedRecord = errors.New("truncated record")

	// ErrValueOverflow is returned when a re-encoded length does not fit its declared width
	ErrValueOverflow = errors.New("value does not fit field width")
)
