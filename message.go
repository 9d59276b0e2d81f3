package amp

import (
	"iter"

	"github.com/unkn0wn-root/amp/internal/wire"
	"github.com/unkn0wn-root/amp/jsonval"
)

const (
	// Version is the protocol version written in the header's high nibble.
	Version = int(wire.Version)
	// MaxFields is the most fields a message can hold (4-bit count).
	MaxFields = wire.MaxFields
)

// Message is an ordered, append-only collection of at most MaxFields fields.
//
// A Message is not safe for concurrent mutation. Concurrent readers are fine
// as long as each uses its own Cursor or All; First/Next share one cursor
// embedded in the Message. The zero value is an empty message, and a copy
// made by value iterates its own fields.
type Message struct {
	fields []Field
	pos    int // embedded cursor: index of the next field + 1, 0 when idle
}

// New returns an empty message.
func New() *Message { return &Message{} }

func (m *Message) Count() int { return len(m.fields) }

// Push appends a field built with NewBlob, NewString, NewBigInt or NewJSON.
// On ErrCapacity the message is left unchanged.
func (m *Message) Push(f Field) error {
	if len(m.fields) >= MaxFields {
		return ErrCapacity
	}
	m.fields = append(m.fields, f)
	return nil
}

// PushBlob appends a copy of b as a Blob field.
//
// Blobs carry no type marker, so a blob whose first two bytes are "s:", "b:"
// or "j:" decodes as that type instead. Callers that cannot rule this out
// should wrap their data (codec.Push with a Zstd codec never collides) or
// use a String field.
func (m *Message) PushBlob(b []byte) error { return m.Push(NewBlob(b)) }

func (m *Message) PushString(s string) error { return m.Push(NewString(s)) }

func (m *Message) PushBigInt(n int64) error { return m.Push(NewBigInt(n)) }

// PushJSON appends a deep copy of v; later changes to v do not affect m.
func (m *Message) PushJSON(v *jsonval.Value) error { return m.Push(NewJSON(v)) }

// Field returns the i-th field.
func (m *Message) Field(i int) (Field, bool) {
	if i < 0 || i >= len(m.fields) {
		return Field{}, false
	}
	return m.fields[i], true
}

// All iterates fields in push order.
func (m *Message) All() iter.Seq2[int, Field] {
	return func(yield func(int, Field) bool) {
		for i, f := range m.fields {
			if !yield(i, f) {
				return
			}
		}
	}
}

// First resets the message's embedded cursor and returns the head field.
func (m *Message) First() (Field, bool) {
	if len(m.fields) == 0 {
		m.pos = 0
		return Field{}, false
	}
	m.pos = 2
	return m.fields[0], true
}

// Next advances the embedded cursor. It reports false once past the tail,
// and when First has not been called.
func (m *Message) Next() (Field, bool) {
	if m.pos == 0 {
		return Field{}, false
	}
	if m.pos > len(m.fields) {
		m.pos = 0
		return Field{}, false
	}
	f := m.fields[m.pos-1]
	m.pos++
	return f, true
}

// Cursor returns an independent cursor over m.
func (m *Message) Cursor() *Cursor { return &Cursor{m: m, pos: -1} }

// Release drops every field and resets the cursor. The message stays usable.
// Copies of m keep their fields.
func (m *Message) Release() {
	m.fields = nil
	m.pos = 0
}

// Equal reports whether a and b hold the same fields in the same order.
func Equal(a, b *Message) bool {
	if a.Count() != b.Count() {
		return false
	}
	for i := range a.fields {
		if !a.fields[i].Equal(b.fields[i]) {
			return false
		}
	}
	return true
}

// Cursor walks a message's fields. pos is -1 before First and after the tail.
type Cursor struct {
	m   *Message
	pos int
}

func (c *Cursor) First() (Field, bool) {
	if len(c.m.fields) == 0 {
		c.pos = -1
		return Field{}, false
	}
	c.pos = 0
	return c.m.fields[0], true
}

func (c *Cursor) Next() (Field, bool) {
	if c.pos < 0 {
		return Field{}, false
	}
	c.pos++
	if c.pos >= len(c.m.fields) {
		c.pos = -1
		return Field{}, false
	}
	return c.m.fields[c.pos], true
}
