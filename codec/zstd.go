package codec

import (
	"errors"
	"fmt"

	"github.com/klauspost/compress/zstd"
)

// Zstd compresses what Inner produces. The zero value is NOT ready to use.
// Construct with NewZstd and Close it when done.
//
// A zstd frame starts with 28 b5 2f fd, so blobs written through Zstd can
// never be mistaken for a typed field on decode.
type Zstd[V any] struct {
	Inner Codec[V]
	enc   *zstd.Encoder
	dec   *zstd.Decoder
}

var _ Codec[struct{}] = (*Zstd[struct{}])(nil)

// NewZstd wraps inner. maxDecoded caps the decompressed size in bytes;
// maxDecoded <= 0 keeps the zstd default (64 GiB).
func NewZstd[V any](inner Codec[V], maxDecoded int) (*Zstd[V], error) {
	if inner == nil {
		return nil, errors.New("codec: zstd needs an inner codec")
	}
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderConcurrency(1))
	if err != nil {
		return nil, err
	}
	dopts := []zstd.DOption{zstd.WithDecoderConcurrency(0)}
	if maxDecoded > 0 {
		dopts = append(dopts, zstd.WithDecoderMaxMemory(uint64(maxDecoded)))
	}
	dec, err := zstd.NewReader(nil, dopts...)
	if err != nil {
		enc.Close()
		return nil, err
	}
	return &Zstd[V]{Inner: inner, enc: enc, dec: dec}, nil
}

func (c *Zstd[V]) Encode(v V) ([]byte, error) {
	b, err := c.Inner.Encode(v)
	if err != nil {
		return nil, err
	}
	return c.enc.EncodeAll(b, make([]byte, 0, len(b)/2+16)), nil
}

func (c *Zstd[V]) Decode(b []byte) (V, error) {
	var zero V
	raw, err := c.dec.DecodeAll(b, nil)
	if errors.Is(err, zstd.ErrDecoderSizeExceeded) || errors.Is(err, zstd.ErrWindowSizeExceeded) {
		return zero, fmt.Errorf("%w: %w", ErrTooLarge, err)
	}
	if err != nil {
		return zero, fmt.Errorf("codec: zstd: %w", err)
	}
	return c.Inner.Decode(raw)
}

// Close releases the encoder and decoder.
func (c *Zstd[V]) Close() {
	_ = c.enc.Close()
	c.dec.Close()
}
