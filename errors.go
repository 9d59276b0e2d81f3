package amp

import (
	"errors"
	"fmt"

	"github.com/unkn0wn-root/amp/internal/wire"
)

var (
	// ErrCapacity is returned when a message would exceed MaxFields.
	ErrCapacity = errors.New("amp: too many fields")
	// ErrInvalidVersion is returned when the header version nibble is not Version.
	ErrInvalidVersion = wire.ErrVersion
	// ErrTruncated is returned when the input ends before a declared length.
	// Callers reading from a stream can append more bytes and retry.
	ErrTruncated = wire.ErrTruncated
	// ErrMalformedField covers marker/length combinations that cannot be valid.
	ErrMalformedField = errors.New("amp: malformed field")
	// ErrFieldTooLarge is a malformed field whose length does not fit 32 bits.
	ErrFieldTooLarge = fmt.Errorf("%w: length exceeds 32 bits", ErrMalformedField)
	// ErrMalformedJSON is returned when a json field does not hold valid JSON text.
	ErrMalformedJSON = errors.New("amp: malformed json")
)

// FieldError locates a failure inside an encoded message.
type FieldError struct {
	Index  int // field position, 0-based
	Offset int // byte offset of the field's length prefix
	Err    error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("amp: field %d at offset %d: %v", e.Index, e.Offset, e.Err)
}

func (e *FieldError) Unwrap() error { return e.Err }
