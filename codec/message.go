package codec

import (
	"errors"
	"fmt"

	"github.com/unkn0wn-root/amp"
)

var (
	ErrTooLarge      = errors.New("codec: payload too large")
	ErrTrailingBytes = errors.New("codec: trailing bytes after message")
	ErrNotBlob       = errors.New("codec: field is not a blob")
)

// Message frames exactly one AMP message. Unlike amp.Decode it rejects input
// with bytes after the message, which suits stores that hold one value per key.
type Message struct{}

var _ Codec[*amp.Message] = Message{}

func (Message) Encode(m *amp.Message) ([]byte, error) { return m.Encode() }
func (Message) Decode(b []byte) (*amp.Message, error) {
	m, rest, err := amp.Decode(b)
	if err != nil {
		return nil, err
	}
	if len(rest) != 0 {
		return nil, fmt.Errorf("%w: %d", ErrTrailingBytes, len(rest))
	}
	return m, nil
}

// Push encodes v with c and appends the bytes to m as a Blob field.
//
// The blob marker ambiguity applies: if the encoding happens to start with
// "s:", "b:" or "j:" the receiver sees another type and Value fails with
// ErrNotBlob. A CBOR text string of 19 bytes starting with ':' is one such
// value.
func Push[V any](m *amp.Message, c Codec[V], v V) error {
	b, err := c.Encode(v)
	if err != nil {
		return fmt.Errorf("codec: encode: %w", err)
	}
	return m.PushBlob(b)
}

// Value decodes a Blob field written by Push.
func Value[V any](f amp.Field, c Codec[V]) (V, error) {
	var zero V
	b, ok := f.AsBlob()
	if !ok {
		return zero, fmt.Errorf("%w: %s", ErrNotBlob, f.Type())
	}
	return c.Decode(b)
}
