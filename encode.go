package amp

import (
	"errors"

	"github.com/unkn0wn-root/amp/internal/wire"
)

// Message: hdr(1) = version<<4 | count
// Field:   len(u32 be) | [marker(2)] | payload(len - markerLen)
//
// len covers marker and payload. Blob fields have no marker.

// Encode serializes m into a freshly allocated buffer.
func Encode(m *Message) ([]byte, error) { return m.Encode() }

func (m *Message) Encode() ([]byte, error) {
	p, err := m.plan()
	if err != nil {
		return nil, err
	}
	return m.write(make([]byte, 0, p.size), p)
}

// AppendEncode appends the encoding of m to dst. On error dst is returned
// unchanged.
func (m *Message) AppendEncode(dst []byte) ([]byte, error) {
	p, err := m.plan()
	if err != nil {
		return dst, err
	}
	buf := dst
	if cap(buf)-len(buf) < p.size {
		buf = make([]byte, len(dst), len(dst)+p.size)
		copy(buf, dst)
	}
	out, err := m.write(buf, p)
	if err != nil {
		return dst, err
	}
	return out, nil
}

// EncodedLen is the exact number of bytes Encode produces.
func (m *Message) EncodedLen() (int, error) {
	p, err := m.plan()
	if err != nil {
		return 0, err
	}
	return p.size, nil
}

type encodePlan struct {
	size int
	docs [][]byte // rendered json text by field index; nil for other types
}

// plan validates m and sizes the output so write allocates at most once.
func (m *Message) plan() (encodePlan, error) {
	if len(m.fields) > MaxFields {
		return encodePlan{}, ErrCapacity
	}
	p := encodePlan{size: 1}
	for i, f := range m.fields {
		n := 0
		switch f.typ {
		case Blob, String:
			n = len(f.data)
		case BigInt:
			n = 8
		case JSON:
			if p.docs == nil {
				p.docs = make([][]byte, len(m.fields))
			}
			p.docs[i] = f.doc.AppendText(nil)
			n = len(p.docs[i])
		default:
			return encodePlan{}, &FieldError{Index: i, Offset: -1, Err: ErrMalformedField}
		}
		marked := f.typ != Blob
		if l := uint64(n); marked && l+wire.MarkerSize > wire.MaxFieldLen || l > wire.MaxFieldLen {
			return encodePlan{}, &FieldError{Index: i, Offset: -1, Err: ErrFieldTooLarge}
		}
		p.size += wire.FieldLen(n, marked)
	}
	return p, nil
}

func (m *Message) write(dst []byte, p encodePlan) ([]byte, error) {
	dst = append(dst, wire.Header(len(m.fields)))

	var (
		err  error
		num  [8]byte
		mark *wire.Marker
	)
	for i, f := range m.fields {
		payload := f.data
		switch f.typ {
		case Blob:
			mark = nil
		case String:
			mark = &wire.MarkerString
		case BigInt:
			mark = &wire.MarkerBigInt
			payload = wire.PutInt64(num[:0], f.num)
		case JSON:
			mark = &wire.MarkerJSON
			payload = p.docs[i]
		}
		dst, err = wire.AppendField(dst, mark, payload)
		if err != nil {
			if errors.Is(err, wire.ErrTooLarge) {
				err = ErrFieldTooLarge
			}
			return nil, &FieldError{Index: i, Offset: -1, Err: err}
		}
	}
	return dst, nil
}
