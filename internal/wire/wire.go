package wire

import (
	"encoding/binary"
	"errors"
	"math"
)

const (
	Version   byte = 1
	MaxFields      = 15

	LenSize    = 4
	MarkerSize = 2

	// MaxFieldLen is the largest value the 4-byte length can carry.
	MaxFieldLen = math.MaxUint32
)

var (
	ErrTruncated = errors.New("amp: truncated input")
	ErrVersion   = errors.New("amp: invalid version")
	ErrTooLarge  = errors.New("amp: field too large")
)

// Marker is the 2-byte ASCII type tag that follows a field length.
type Marker [MarkerSize]byte

var (
	MarkerString = Marker{'s', ':'}
	MarkerBigInt = Marker{'b', ':'}
	MarkerJSON   = Marker{'j', ':'}
)

// Header: version(hi nibble) | count(lo nibble)
func Header(count int) byte {
	return Version<<4 | byte(count)&0x0F
}

// ParseHeader splits the header byte. It does not validate the version.
func ParseHeader(b byte) (version byte, count int) {
	return b >> 4, int(b & 0x0F)
}

// FieldLen is the on-wire size of a field: len(4) | [marker(2)] | payload.
func FieldLen(payloadLen int, marked bool) int {
	n := LenSize + payloadLen
	if marked {
		n += MarkerSize
	}
	return n
}

// AppendField writes len(u32 be) | marker | payload. A nil marker means Blob.
func AppendField(dst []byte, m *Marker, payload []byte) ([]byte, error) {
	l := uint64(len(payload))
	if m != nil {
		l += MarkerSize
	}
	if l > MaxFieldLen {
		return dst, ErrTooLarge
	}
	dst = binary.BigEndian.AppendUint32(dst, uint32(l))
	if m != nil {
		dst = append(dst, m[:]...)
	}
	return append(dst, payload...), nil
}

// Field is a raw field view into a decode buffer. Payload aliases the input.
type Field struct {
	Marker  Marker
	Marked  bool
	Payload []byte
}

// ReadField reads one field starting at off and returns the offset after it.
// Every declared length is checked against the remaining bytes before use.
func ReadField(b []byte, off int) (Field, int, error) {
	if off < 0 || off > len(b) || len(b)-off < LenSize {
		return Field{}, off, ErrTruncated
	}
	l := int(binary.BigEndian.Uint32(b[off : off+LenSize]))
	off += LenSize
	if l < 0 || l > len(b)-off { // overflow-safe bound check
		return Field{}, off, ErrTruncated
	}
	body := b[off : off+l]
	next := off + l

	if l >= MarkerSize {
		var m Marker
		copy(m[:], body[:MarkerSize])
		switch m {
		case MarkerString, MarkerBigInt, MarkerJSON:
			return Field{Marker: m, Marked: true, Payload: body[MarkerSize:]}, next, nil
		}
	}
	return Field{Payload: body}, next, nil
}

// MessageLen walks the header and field lengths of the message at the front
// of b without looking at payloads. It returns the encoded size once every
// declared byte is present, ErrTruncated before that, and ErrVersion for a
// foreign header.
func MessageLen(b []byte) (int, error) {
	if len(b) < 1 {
		return 0, ErrTruncated
	}
	ver, n := ParseHeader(b[0])
	if ver != Version {
		return 0, ErrVersion
	}
	off := 1
	for i := 0; i < n; i++ {
		if len(b)-off < LenSize {
			return 0, ErrTruncated
		}
		l := int(binary.BigEndian.Uint32(b[off : off+LenSize]))
		off += LenSize
		if l < 0 || l > len(b)-off {
			return 0, ErrTruncated
		}
		off += l
	}
	return off, nil
}

// PutInt64 and Int64 fix BigInt payloads to big-endian.
func PutInt64(dst []byte, v int64) []byte {
	return binary.BigEndian.AppendUint64(dst, uint64(v))
}

func Int64(b []byte) int64 {
	return int64(binary.BigEndian.Uint64(b))
}
