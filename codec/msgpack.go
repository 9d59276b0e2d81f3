package codec

import (
	"bytes"
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
)

// Msgpack serializes values with vmihailenco/msgpack/v5.
// The zero value is ready to use.
//
// Map keys are written sorted, so equal values give equal blobs and equal
// AMP messages. Decode wants exactly one msgpack value per blob. Struct
// fields follow `msgpack:"name"` tags, not json tags.
type Msgpack[V any] struct{}

var _ Codec[struct{}] = Msgpack[struct{}]{}

func (Msgpack[V]) Encode(v V) ([]byte, error) {
	var buf bytes.Buffer
	enc := msgpack.GetEncoder()
	defer msgpack.PutEncoder(enc)

	enc.Reset(&buf)
	enc.SetSortMapKeys(true)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (Msgpack[V]) Decode(b []byte) (V, error) {
	var v V
	r := bytes.NewReader(b)
	dec := msgpack.GetDecoder()
	defer msgpack.PutDecoder(dec)

	dec.Reset(r)
	if err := dec.Decode(&v); err != nil {
		return v, err
	}
	if r.Len() != 0 {
		return v, fmt.Errorf("%w: %d after msgpack value", ErrTrailingBytes, r.Len())
	}
	return v, nil
}
