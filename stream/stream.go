// Package stream moves AMP messages over byte streams.
//
// AMP has no framing of its own beyond the message layout, so a Decoder
// keeps reading until amp.MessageLen finds every declared field length
// satisfied, then decodes the message once. Messages may be written back to
// back on one connection or file.
package stream

import (
	"errors"
	"fmt"
	"io"

	"github.com/unkn0wn-root/amp"
)

const (
	defaultReadSize       = 4 << 10
	defaultMaxMessageSize = 64 << 20
)

var ErrMessageTooLarge = errors.New("stream: message exceeds size limit")

type Option func(*Decoder)

// WithMaxMessageSize caps how many bytes the decoder buffers for a single
// message. n <= 0 keeps the default (64 MiB).
func WithMaxMessageSize(n int) Option {
	return func(d *Decoder) {
		if n > 0 {
			d.maxSize = n
		}
	}
}

// WithReadSize sets the size of each Read call on the underlying reader.
func WithReadSize(n int) Option {
	return func(d *Decoder) {
		if n > 0 {
			d.readSize = n
		}
	}
}

func WithLogger(l amp.Logger) Option {
	return func(d *Decoder) {
		if l != nil {
			d.log = l
		}
	}
}

// Decoder reads consecutive messages from an io.Reader.
type Decoder struct {
	r        io.Reader
	buf      []byte // unread bytes; buf[0] is the next message header
	readSize int
	maxSize  int
	log      amp.Logger
	err      error // sticky read error
	decoded  uint64
	attempts uint64 // full decodes run, successful or not
}

func NewDecoder(r io.Reader, opts ...Option) *Decoder {
	d := &Decoder{
		r:        r,
		readSize: defaultReadSize,
		maxSize:  defaultMaxMessageSize,
		log:      amp.NopLogger{},
	}
	for _, o := range opts {
		o(d)
	}
	return d
}

// Decode returns the next message. It returns io.EOF when the reader ends on
// a message boundary and io.ErrUnexpectedEOF when it ends inside a message.
// Any other amp error means the stream is corrupt; the decoder cannot resync.
func (d *Decoder) Decode() (*amp.Message, error) {
	for {
		if len(d.buf) > 0 {
			n, err := amp.MessageLen(d.buf)
			if err == nil {
				return d.decode(n)
			}
			if !errors.Is(err, amp.ErrTruncated) {
				d.log.Error("stream: corrupt message", amp.ErrFields(err).With(amp.Fields{"n": d.decoded}))
				return nil, err
			}
			if len(d.buf) >= d.maxSize {
				d.log.Warn("stream: message too large", amp.Fields{"buffered": len(d.buf), "max": d.maxSize})
				return nil, fmt.Errorf("%w: %d bytes buffered", ErrMessageTooLarge, len(d.buf))
			}
		}

		if d.err != nil {
			if d.err == io.EOF && len(d.buf) > 0 {
				return nil, io.ErrUnexpectedEOF
			}
			return nil, d.err
		}
		d.fill()
	}
}

// decode parses the complete n-byte message at the front of the buffer.
func (d *Decoder) decode(n int) (*amp.Message, error) {
	d.attempts++
	m, _, err := amp.Decode(d.buf[:n])
	if err != nil {
		d.log.Error("stream: corrupt message", amp.ErrFields(err).With(amp.Fields{"n": d.decoded}))
		return nil, err
	}
	d.consume(n)
	d.decoded++
	d.log.Debug("stream: message decoded", amp.Fields{"fields": m.Count(), "n": d.decoded})
	return m, nil
}

// Buffered returns bytes read from the underlying reader but not yet decoded.
func (d *Decoder) Buffered() []byte { return d.buf }

func (d *Decoder) fill() {
	want := d.readSize
	if room := d.maxSize - len(d.buf); room < want {
		want = room
	}
	if cap(d.buf)-len(d.buf) < want {
		grown := make([]byte, len(d.buf), 2*len(d.buf)+want)
		copy(grown, d.buf)
		d.buf = grown
	}
	n, err := d.r.Read(d.buf[len(d.buf) : len(d.buf)+want])
	d.buf = d.buf[:len(d.buf)+n]
	if err != nil {
		d.err = err
	}
}

// consume drops n decoded bytes, sliding the remainder to the front.
func (d *Decoder) consume(n int) {
	rest := copy(d.buf, d.buf[n:])
	d.buf = d.buf[:rest]
}

// Encoder writes messages back to back to an io.Writer.
type Encoder struct {
	w   io.Writer
	buf []byte
}

func NewEncoder(w io.Writer) *Encoder { return &Encoder{w: w} }

func (e *Encoder) Encode(m *amp.Message) error {
	var err error
	e.buf, err = m.AppendEncode(e.buf[:0])
	if err != nil {
		return err
	}
	_, err = e.w.Write(e.buf)
	return err
}
