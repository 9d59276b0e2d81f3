package jsonval

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// MaxDepth bounds nesting accepted by Parse.
const MaxDepth = 1000

var (
	ErrTrailingData = errors.New("jsonval: trailing data after value")
	ErrTooDeep      = errors.New("jsonval: nesting too deep")
)

// Parse reads exactly one JSON value from data.
func Parse(data []byte) (*Value, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	v, err := parseValue(dec, 0)
	if err != nil {
		return nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		if err != nil {
			return nil, fmt.Errorf("jsonval: %w", err)
		}
		return nil, ErrTrailingData
	}
	return v, nil
}

// MustParse is like Parse but panics on error. Handy in tests.
func MustParse(s string) *Value {
	v, err := Parse([]byte(s))
	if err != nil {
		panic(err)
	}
	return v
}

func parseValue(dec *json.Decoder, depth int) (*Value, error) {
	if depth > MaxDepth {
		return nil, ErrTooDeep
	}
	tok, err := dec.Token()
	if err == io.EOF {
		return nil, fmt.Errorf("jsonval: %w", io.ErrUnexpectedEOF)
	}
	if err != nil {
		return nil, fmt.Errorf("jsonval: %w", err)
	}

	switch t := tok.(type) {
	case nil:
		return NewNull(), nil
	case bool:
		return NewBool(t), nil
	case string:
		return NewString(t), nil
	case json.Number:
		return &Value{kind: Number, s: string(t)}, nil
	case json.Delim:
		switch t {
		case '{':
			obj := NewObject()
			for dec.More() {
				kt, err := dec.Token()
				if err != nil {
					return nil, fmt.Errorf("jsonval: %w", err)
				}
				key, ok := kt.(string)
				if !ok {
					return nil, fmt.Errorf("jsonval: object key is %T", kt)
				}
				member, err := parseValue(dec, depth+1)
				if err != nil {
					return nil, err
				}
				obj.add(key, member)
			}
			if err := closing(dec, '}'); err != nil {
				return nil, err
			}
			return obj, nil
		case '[':
			arr := NewArray()
			for dec.More() {
				item, err := parseValue(dec, depth+1)
				if err != nil {
					return nil, err
				}
				arr.arr = append(arr.arr, item)
			}
			if err := closing(dec, ']'); err != nil {
				return nil, err
			}
			return arr, nil
		}
	}
	return nil, fmt.Errorf("jsonval: unexpected token %v", tok)
}

func closing(dec *json.Decoder, want json.Delim) error {
	tok, err := dec.Token()
	if err == io.EOF {
		return fmt.Errorf("jsonval: %w", io.ErrUnexpectedEOF)
	}
	if err != nil {
		return fmt.Errorf("jsonval: %w", err)
	}
	if d, ok := tok.(json.Delim); !ok || d != want {
		return fmt.Errorf("jsonval: expected %q, got %v", want, tok)
	}
	return nil
}

// UnmarshalJSON lets a Value sit inside structs decoded by encoding/json.
func (v *Value) UnmarshalJSON(data []byte) error {
	p, err := Parse(data)
	if err != nil {
		return err
	}
	*v = *p
	return nil
}
