package codec

import "fmt"

// Limit wraps another codec and refuses to decode payloads larger than
// MaxDecode bytes. Encode is forwarded unchanged. MaxDecode <= 0 disables
// the check.
//
// Use it in front of any source that is not trusted: a shared store, a
// socket, a file handed in by a user.
type Limit[V any] struct {
	// Inner is the wrapped codec. It must be set.
	Inner Codec[V]
	// MaxDecode is the largest payload, in bytes, handed to Inner.Decode.
	MaxDecode int
}

func (c Limit[V]) Encode(v V) ([]byte, error) { return c.Inner.Encode(v) }
func (c Limit[V]) Decode(b []byte) (V, error) {
	if c.MaxDecode > 0 && len(b) > c.MaxDecode {
		var zero V
		return zero, fmt.Errorf("%w: %d > %d", ErrTooLarge, len(b), c.MaxDecode)
	}
	return c.Inner.Decode(b)
}
