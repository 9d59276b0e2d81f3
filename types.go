package amp

import (
	"bytes"
	"fmt"

	"github.com/unkn0wn-root/amp/jsonval"
)

// Type identifies the kind of value a Field carries.
type Type uint8

const (
	Blob   Type = iota // raw bytes, no marker on the wire
	String             // "s:"
	BigInt             // "b:" + 8 bytes, big-endian
	JSON               // "j:" + minified JSON text
)

func (t Type) String() string {
	switch t {
	case Blob:
		return "blob"
	case String:
		return "string"
	case BigInt:
		return "bigint"
	case JSON:
		return "json"
	default:
		return fmt.Sprintf("type(%d)", uint8(t))
	}
}

// Field is one typed value of a Message. Fields own their payload: the
// constructors copy their input and the accessors return copies.
type Field struct {
	typ  Type
	data []byte // Blob, String
	num  int64  // BigInt
	doc  *jsonval.Value
}

func NewBlob(b []byte) Field {
	return Field{typ: Blob, data: bytes.Clone(nonNil(b))}
}

func NewString(s string) Field {
	return Field{typ: String, data: []byte(s)}
}

func NewBigInt(n int64) Field {
	return Field{typ: BigInt, num: n}
}

// NewJSON deep-copies v. A nil v is JSON null.
func NewJSON(v *jsonval.Value) Field {
	return Field{typ: JSON, doc: v.Clone()}
}

func nonNil(b []byte) []byte {
	if b == nil {
		return []byte{}
	}
	return b
}

func (f Field) Type() Type { return f.typ }

// Size is the payload size in bytes, excluding any wire marker. For JSON
// fields it is the length of the minified text.
func (f Field) Size() int {
	switch f.typ {
	case BigInt:
		return 8
	case JSON:
		return len(f.doc.AppendText(nil))
	default:
		return len(f.data)
	}
}

func (f Field) AsBlob() ([]byte, bool) {
	if f.typ != Blob {
		return nil, false
	}
	return bytes.Clone(nonNil(f.data)), true
}

func (f Field) AsString() (string, bool) {
	if f.typ != String {
		return "", false
	}
	return string(f.data), true
}

func (f Field) AsBigInt() (int64, bool) {
	if f.typ != BigInt {
		return 0, false
	}
	return f.num, true
}

// AsJSON returns a deep copy of the JSON value.
func (f Field) AsJSON() (*jsonval.Value, bool) {
	if f.typ != JSON {
		return nil, false
	}
	return f.doc.Clone(), true
}

// Equal reports whether two fields have the same type and payload.
func (f Field) Equal(g Field) bool {
	if f.typ != g.typ {
		return false
	}
	switch f.typ {
	case BigInt:
		return f.num == g.num
	case JSON:
		return jsonval.Equal(f.doc, g.doc)
	default:
		return bytes.Equal(f.data, g.data)
	}
}

// String renders the field the way the amp CLI prints it.
func (f Field) String() string {
	switch f.typ {
	case Blob:
		var sb bytes.Buffer
		sb.WriteString("<Buffer")
		for _, c := range f.data {
			fmt.Fprintf(&sb, " %02x", c)
		}
		sb.WriteByte('>')
		return sb.String()
	case String:
		return string(f.data)
	case BigInt:
		return fmt.Sprintf("%d", f.num)
	case JSON:
		return f.doc.String()
	default:
		return f.typ.String()
	}
}
