package jsonval

import (
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
)

// FromAny converts plain Go data (as produced by encoding/json decoding into
// any, or built by hand) into a Value. Go maps carry no order, so their keys
// are emitted sorted. Other types go through encoding/json first.
func FromAny(x any) (*Value, error) {
	switch t := x.(type) {
	case nil:
		return NewNull(), nil
	case *Value:
		return t.Clone(), nil
	case bool:
		return NewBool(t), nil
	case string:
		return NewString(t), nil
	case json.Number:
		return NewNumber(t)
	case int:
		return NewInt(int64(t)), nil
	case int32:
		return NewInt(int64(t)), nil
	case int64:
		return NewInt(t), nil
	case uint32:
		return NewInt(int64(t)), nil
	case float32:
		return NewFloat(float64(t)), nil
	case float64:
		return NewFloat(t), nil
	case []any:
		arr := NewArray()
		for _, it := range t {
			v, err := FromAny(it)
			if err != nil {
				return nil, err
			}
			arr.arr = append(arr.arr, v)
		}
		return arr, nil
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		obj := NewObject()
		for _, k := range keys {
			v, err := FromAny(t[k])
			if err != nil {
				return nil, err
			}
			obj.add(k, v)
		}
		return obj, nil
	}

	rv := reflect.ValueOf(x)
	if rv.Kind() == reflect.Func || rv.Kind() == reflect.Chan {
		return nil, fmt.Errorf("jsonval: unsupported type %T", x)
	}
	b, err := json.Marshal(x)
	if err != nil {
		return nil, fmt.Errorf("jsonval: %w", err)
	}
	return Parse(b)
}

// Interface converts v back to plain Go data: nil, bool, string,
// json.Number, []any and map[string]any. Object order is lost and a
// repeated key keeps its first value, as Get does.
func (v *Value) Interface() any {
	switch v.Kind() {
	case Bool:
		return v.b
	case Number:
		return json.Number(v.s)
	case String:
		return v.s
	case Array:
		out := make([]any, len(v.arr))
		for i, it := range v.arr {
			out[i] = it.Interface()
		}
		return out
	case Object:
		out := make(map[string]any, v.idx.Len())
		for _, m := range v.members {
			if _, seen := out[m.key]; !seen {
				out[m.key] = m.val.Interface()
			}
		}
		return out
	default:
		return nil
	}
}
