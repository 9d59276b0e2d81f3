// Package codec turns Go values into bytes and back.
//
// Codecs serve two places in AMP: Push and Value carry arbitrary Go values in
// Blob fields, and Message frames a whole *amp.Message for byte stores.
package codec

// Codec encodes/decodes values V to []byte.
type Codec[V any] interface {
	Encode(V) ([]byte, error)
	Decode([]byte) (V, error)
}
