// Package jsonval is the structured JSON value carried by AMP json fields.
//
// Values are trees of objects, arrays, strings, numbers, booleans and null.
// Object members keep insertion order, repeated keys included, and numbers
// keep their literal text, so Parse followed by AppendText reproduces
// canonical (minified) input byte for byte.
package jsonval

import (
	"encoding/json"
	"fmt"
	"iter"
	"math"
	"strconv"

	"github.com/elliotchance/orderedmap/v3"
)

type Kind uint8

const (
	Null Kind = iota
	Bool
	Number
	String
	Array
	Object
)

func (k Kind) String() string {
	switch k {
	case Null:
		return "null"
	case Bool:
		return "bool"
	case Number:
		return "number"
	case String:
		return "string"
	case Array:
		return "array"
	case Object:
		return "object"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Value is one node of a JSON tree. The zero value is JSON null.
//
// Constructors and mutators copy the values handed to them, so a tree never
// shares nodes with its caller or with itself.
type Value struct {
	kind    Kind
	b       bool
	s       string // string contents or number literal
	arr     []*Value
	members []member
	idx     *orderedmap.OrderedMap[string, int] // key -> first position in members
}

type member struct {
	key string
	val *Value
}

func NewNull() *Value           { return &Value{} }
func NewBool(b bool) *Value     { return &Value{kind: Bool, b: b} }
func NewString(s string) *Value { return &Value{kind: String, s: s} }
func NewInt(n int64) *Value     { return &Value{kind: Number, s: strconv.FormatInt(n, 10)} }

// NewFloat stores f in shortest form. NaN and infinities have no JSON
// representation and become null.
func NewFloat(f float64) *Value {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return NewNull()
	}
	return &Value{kind: Number, s: strconv.FormatFloat(f, 'g', -1, 64)}
}

// NewNumber keeps a literal number as is. The literal must be valid JSON.
func NewNumber(lit json.Number) (*Value, error) {
	if !validNumber(string(lit)) {
		return nil, fmt.Errorf("jsonval: invalid number literal %q", string(lit))
	}
	return &Value{kind: Number, s: string(lit)}, nil
}

func NewArray(items ...*Value) *Value {
	v := &Value{kind: Array, arr: make([]*Value, 0, len(items))}
	for _, it := range items {
		v.arr = append(v.arr, it.Clone())
	}
	return v
}

func NewObject() *Value {
	return &Value{kind: Object, idx: orderedmap.NewOrderedMap[string, int]()}
}

// add appends a member without copying it. Repeated keys are kept.
func (v *Value) add(key string, val *Value) {
	if _, ok := v.idx.Get(key); !ok {
		v.idx.Set(key, len(v.members))
	}
	v.members = append(v.members, member{key: key, val: val})
}

func (v *Value) reindex() {
	v.idx = orderedmap.NewOrderedMapWithCapacity[string, int](len(v.members))
	for i, m := range v.members {
		if _, ok := v.idx.Get(m.key); !ok {
			v.idx.Set(m.key, i)
		}
	}
}

// Kind reports the node type. A nil *Value is null.
func (v *Value) Kind() Kind {
	if v == nil {
		return Null
	}
	return v.kind
}

func (v *Value) IsNull() bool { return v.Kind() == Null }

func (v *Value) Bool() (bool, bool) {
	if v.Kind() != Bool {
		return false, false
	}
	return v.b, true
}

func (v *Value) Str() (string, bool) {
	if v.Kind() != String {
		return "", false
	}
	return v.s, true
}

// Number returns the literal text of a number node.
func (v *Value) Number() (json.Number, bool) {
	if v.Kind() != Number {
		return "", false
	}
	return json.Number(v.s), true
}

func (v *Value) Int64() (int64, bool) {
	n, ok := v.Number()
	if !ok {
		return 0, false
	}
	i, err := n.Int64()
	return i, err == nil
}

func (v *Value) Float64() (float64, bool) {
	n, ok := v.Number()
	if !ok {
		return 0, false
	}
	f, err := n.Float64()
	return f, err == nil
}

// Len is the number of array items or object members, repeated keys
// counted once per occurrence.
func (v *Value) Len() int {
	switch v.Kind() {
	case Array:
		return len(v.arr)
	case Object:
		return len(v.members)
	default:
		return 0
	}
}

func (v *Value) Index(i int) (*Value, bool) {
	if v.Kind() != Array || i < 0 || i >= len(v.arr) {
		return nil, false
	}
	return v.arr[i], true
}

// Append adds copies of items to an array node. It panics on other kinds.
func (v *Value) Append(items ...*Value) *Value {
	if v.Kind() != Array {
		panic("jsonval: Append on " + v.Kind().String())
	}
	for _, it := range items {
		v.arr = append(v.arr, it.Clone())
	}
	return v
}

// Get returns the first member named key.
func (v *Value) Get(key string) (*Value, bool) {
	if v.Kind() != Object {
		return nil, false
	}
	i, ok := v.idx.Get(key)
	if !ok {
		return nil, false
	}
	return v.members[i].val, true
}

// Set stores a copy of val under key. If key is present its first
// occurrence is replaced in place; otherwise the member is appended.
// It panics on other kinds.
func (v *Value) Set(key string, val *Value) *Value {
	if v.Kind() != Object {
		panic("jsonval: Set on " + v.Kind().String())
	}
	val = val.Clone()
	if i, ok := v.idx.Get(key); ok {
		v.members[i].val = val
		return v
	}
	v.add(key, val)
	return v
}

// Delete removes every member named key.
func (v *Value) Delete(key string) bool {
	if v.Kind() != Object {
		return false
	}
	if _, ok := v.idx.Get(key); !ok {
		return false
	}
	kept := v.members[:0]
	for _, m := range v.members {
		if m.key != key {
			kept = append(kept, m)
		}
	}
	clear(v.members[len(kept):])
	v.members = kept
	v.reindex()
	return true
}

// Keys returns distinct object member names in order of first appearance.
func (v *Value) Keys() []string {
	if v.Kind() != Object {
		return nil
	}
	keys := make([]string, 0, v.idx.Len())
	for k := range v.idx.Keys() {
		keys = append(keys, k)
	}
	return keys
}

// Members yields every object member in order, repeated keys included.
func (v *Value) Members() iter.Seq2[string, *Value] {
	return func(yield func(string, *Value) bool) {
		if v.Kind() != Object {
			return
		}
		for _, m := range v.members {
			if !yield(m.key, m.val) {
				return
			}
		}
	}
}

// Clone returns a deep copy sharing nothing with v.
func (v *Value) Clone() *Value {
	switch v.Kind() {
	case Null:
		return NewNull()
	case Array:
		out := &Value{kind: Array, arr: make([]*Value, len(v.arr))}
		for i, it := range v.arr {
			out.arr[i] = it.Clone()
		}
		return out
	case Object:
		out := &Value{kind: Object, members: make([]member, len(v.members)), idx: v.idx.Copy()}
		for i, m := range v.members {
			out.members[i] = member{key: m.key, val: m.val.Clone()}
		}
		return out
	default:
		c := *v
		return &c
	}
}

// Equal compares structure, member order and number literals.
func Equal(a, b *Value) bool {
	if a.Kind() != b.Kind() {
		return false
	}
	switch a.Kind() {
	case Null:
		return true
	case Bool:
		return a.b == b.b
	case Number, String:
		return a.s == b.s
	case Array:
		if len(a.arr) != len(b.arr) {
			return false
		}
		for i := range a.arr {
			if !Equal(a.arr[i], b.arr[i]) {
				return false
			}
		}
		return true
	case Object:
		if len(a.members) != len(b.members) {
			return false
		}
		for i, am := range a.members {
			bm := b.members[i]
			if am.key != bm.key || !Equal(am.val, bm.val) {
				return false
			}
		}
		return true
	}
	return false
}

func (v *Value) String() string { return string(v.AppendText(nil)) }
