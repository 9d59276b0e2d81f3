package main

import (
	"encoding/hex"
	"fmt"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/unkn0wn-root/amp"
	"github.com/unkn0wn-root/amp/jsonval"
)

// fieldDef is one [[field]] table of a message definition.
type fieldDef struct {
	Type string  `toml:"type"`
	Hex  *string `toml:"hex"`
	Text *string `toml:"text"`
	Int  *int64  `toml:"int"`
	JSON *string `toml:"json"`
}

type messageFile struct {
	Field []fieldDef `toml:"field"`
}

// demoMessage is built when no definition file is given.
func demoMessage() *amp.Message {
	m := amp.New()
	_ = m.PushBlob([]byte{1, 2, 3})
	_ = m.PushString("hello")
	_ = m.PushBigInt(123451234512345)
	_ = m.PushJSON(jsonval.MustParse(`{"payload":"value"}`))
	return m
}

func loadMessage(path string) (*amp.Message, error) {
	var raw messageFile
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return nil, fmt.Errorf("load message %s: %w", path, err)
	}
	return buildMessage(raw, meta)
}

func parseMessage(text string) (*amp.Message, error) {
	var raw messageFile
	meta, err := toml.Decode(text, &raw)
	if err != nil {
		return nil, fmt.Errorf("parse message: %w", err)
	}
	return buildMessage(raw, meta)
}

func buildMessage(raw messageFile, meta toml.MetaData) (*amp.Message, error) {
	if undec := meta.Undecoded(); len(undec) > 0 {
		keys := make([]string, len(undec))
		for i, k := range undec {
			keys[i] = k.String()
		}
		sort.Strings(keys)
		return nil, fmt.Errorf("unknown keys: %s", strings.Join(keys, ", "))
	}
	if len(raw.Field) > amp.MaxFields {
		return nil, fmt.Errorf("%d fields defined: %w", len(raw.Field), amp.ErrCapacity)
	}

	m := amp.New()
	for i, d := range raw.Field {
		f, err := d.field()
		if err != nil {
			return nil, fmt.Errorf("field %d: %w", i, err)
		}
		if err := m.Push(f); err != nil {
			return nil, fmt.Errorf("field %d: %w", i, err)
		}
	}
	return m, nil
}

func (d fieldDef) field() (amp.Field, error) {
	set := 0
	for _, p := range []bool{d.Hex != nil, d.Text != nil, d.Int != nil, d.JSON != nil} {
		if p {
			set++
		}
	}
	if set != 1 {
		return amp.Field{}, fmt.Errorf("want exactly one of hex, text, int, json; got %d", set)
	}

	typ := strings.ToLower(strings.TrimSpace(d.Type))
	switch typ {
	case "blob":
		if d.Hex == nil {
			return amp.Field{}, fmt.Errorf("blob needs hex")
		}
		b, err := parseHex(*d.Hex)
		if err != nil {
			return amp.Field{}, err
		}
		return amp.NewBlob(b), nil
	case "string":
		if d.Text == nil {
			return amp.Field{}, fmt.Errorf("string needs text")
		}
		return amp.NewString(*d.Text), nil
	case "bigint":
		if d.Int == nil {
			return amp.Field{}, fmt.Errorf("bigint needs int")
		}
		return amp.NewBigInt(*d.Int), nil
	case "json":
		if d.JSON == nil {
			return amp.Field{}, fmt.Errorf("json needs json")
		}
		v, err := jsonval.Parse([]byte(*d.JSON))
		if err != nil {
			return amp.Field{}, fmt.Errorf("json: %w", err)
		}
		return amp.NewJSON(v), nil
	default:
		return amp.Field{}, fmt.Errorf("unknown type %q (want blob, string, bigint or json)", d.Type)
	}
}

// parseHex accepts plain hex ("010203") as well as the listing printed by
// encode ("0x01, 0x02, 0x03"). Whitespace, commas and quotes are ignored.
func parseHex(s string) ([]byte, error) {
	var b strings.Builder
	for _, tok := range strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == '\'' || r == '"' || r == ' ' || r == '\t' || r == '\n' || r == '\r'
	}) {
		tok = strings.TrimPrefix(strings.TrimPrefix(tok, "0x"), "0X")
		if len(tok) == 1 {
			tok = "0" + tok
		}
		b.WriteString(tok)
	}
	out, err := hex.DecodeString(b.String())
	if err != nil {
		return nil, fmt.Errorf("hex: %w", err)
	}
	return out, nil
}
