package amp

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/unkn0wn-root/amp/internal/wire"
	"github.com/unkn0wn-root/amp/jsonval"
)

// Decode parses one message from the front of buf and returns it with the
// bytes that follow it. The remainder is a sub-slice of buf, so pipelined
// messages can be decoded from one stream without copying.
//
// When the input ends early Decode returns ErrTruncated; the caller may
// append more bytes and call again.
func Decode(buf []byte) (*Message, []byte, error) {
	m := New()
	rest, err := m.Decode(buf)
	if err != nil {
		return nil, buf, err
	}
	return m, rest, nil
}

// MessageLen reports how many bytes the message at the front of buf
// occupies. Only the header and field lengths are read, so it is cheap to
// call repeatedly while a buffer fills. It returns ErrTruncated until the
// whole message is present and ErrInvalidVersion for a foreign header.
func MessageLen(buf []byte) (int, error) {
	n, err := wire.MessageLen(buf)
	if errors.Is(err, ErrInvalidVersion) {
		ver, _ := wire.ParseHeader(buf[0])
		return 0, fmt.Errorf("%w: got %d, want %d", ErrInvalidVersion, ver, wire.Version)
	}
	return n, err
}

// Decode parses one message from the front of buf and appends its fields to
// m. It is all-or-nothing: on error m is left exactly as it was and buf is
// returned unchanged.
func (m *Message) Decode(buf []byte) ([]byte, error) {
	if len(buf) < 1 {
		return buf, ErrTruncated
	}
	ver, n := wire.ParseHeader(buf[0])
	if ver != wire.Version {
		return buf, fmt.Errorf("%w: got %d, want %d", ErrInvalidVersion, ver, wire.Version)
	}
	if len(m.fields)+n > MaxFields {
		return buf, ErrCapacity
	}

	staged := make([]Field, 0, n)
	off := 1
	for i := 0; i < n; i++ {
		raw, next, err := wire.ReadField(buf, off)
		if err != nil {
			return buf, &FieldError{Index: i, Offset: off, Err: err}
		}
		f, err := toField(raw)
		if err != nil {
			return buf, &FieldError{Index: i, Offset: off, Err: err}
		}
		staged = append(staged, f)
		off = next
	}

	m.fields = append(m.fields, staged...)
	return buf[off:], nil
}

// toField copies a raw wire field into an owned Field.
func toField(raw wire.Field) (Field, error) {
	if !raw.Marked {
		return Field{typ: Blob, data: bytes.Clone(nonNil(raw.Payload))}, nil
	}
	switch raw.Marker {
	case wire.MarkerString:
		return Field{typ: String, data: bytes.Clone(nonNil(raw.Payload))}, nil
	case wire.MarkerBigInt:
		if len(raw.Payload) != 8 {
			return Field{}, fmt.Errorf("%w: bigint payload is %d bytes, want 8", ErrMalformedField, len(raw.Payload))
		}
		return Field{typ: BigInt, num: wire.Int64(raw.Payload)}, nil
	case wire.MarkerJSON:
		doc, err := jsonval.Parse(raw.Payload)
		if err != nil {
			return Field{}, fmt.Errorf("%w: %w", ErrMalformedJSON, err)
		}
		return Field{typ: JSON, doc: doc}, nil
	}
	return Field{}, ErrMalformedField
}
