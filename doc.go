// Package amp implements AMP, a compact self-describing binary message
// format carrying up to 15 typed values: raw blobs, strings, 64-bit integers
// and JSON documents.
//
// Wire format:
//
//	hdr(1)      = version<<4 | count      version = 1, count 0..15
//	per field:  len(u32 be) | [marker(2)] | payload
//
// marker is "s:" (string), "b:" (bigint, 8 bytes big-endian) or "j:" (minified
// JSON text); blobs have none and len is the payload length alone. A blob
// that starts with a marker pattern is indistinguishable from that type.
//
// Usage:
//
//	m := amp.New()
//	_ = m.PushBlob([]byte{1, 2, 3})
//	_ = m.PushString("hello")
//	_ = m.PushBigInt(123451234512345)
//	_ = m.PushJSON(jsonval.MustParse(`{"payload":"value"}`))
//	buf, _ := m.Encode()
//
//	msg, rest, err := amp.Decode(buf) // rest holds any following message
//	for _, f := range msg.All() { ... }
//
// BigInt payloads are big-endian on the wire. Encoders that copy host order
// produce byte-reversed integers on little-endian machines; such buffers
// decode without error but with different values.
package amp
