package scimfilter

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Kind discriminates the variant a Value holds. Consumed, not defined, by
// the filter subsystem proper — this is the minimal JSON value model the
// Evaluator and Value Locator need (spec §3, JV).
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindInt
	KindFloat
	KindString
	KindBinary
	KindArray
	KindObject
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	case KindBinary:
		return "binary"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	default:
		return "unknown"
	}
}

// Value is a tagged JSON value: Null, Bool, Int, Float, String, Binary,
// Array, or Object. The zero Value is Null.
type Value struct {
	kind Kind
	b    bool
	i    int64
	f    float64
	s    string
	bin  []byte
	arr  []Value
	obj  map[string]Value
	// keys records the field order MarshalJSON renders in (see Keys).
	keys []string
}

func NullValue() Value             { return Value{kind: KindNull} }
func BoolValue(b bool) Value       { return Value{kind: KindBool, b: b} }
func IntValue(i int64) Value       { return Value{kind: KindInt, i: i} }
func FloatValue(f float64) Value   { return Value{kind: KindFloat, f: f} }
func StringValue(s string) Value   { return Value{kind: KindString, s: s} }
func BinaryValue(b []byte) Value   { return Value{kind: KindBinary, bin: append([]byte(nil), b...)} }
func ArrayValue(vs ...Value) Value { return Value{kind: KindArray, arr: append([]Value(nil), vs...)} }

// ObjectValue builds an Object value, preserving the iteration order of
// the keys slice if given explicitly via ObjectValueOrdered, or sorted
// insertion order of the map's keys otherwise (maps have no stable order
// in Go, so callers that care about rendering order should use
// ObjectValueOrdered).
func ObjectValue(m map[string]Value) Value {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return Value{kind: KindObject, obj: m, keys: keys}
}

// ObjectValueOrdered builds an Object value with an explicit key order.
func ObjectValueOrdered(keys []string, m map[string]Value) Value {
	return Value{kind: KindObject, obj: m, keys: append([]string(nil), keys...)}
}

func (v Value) Kind() Kind { return v.kind }

func (v Value) Bool() bool       { return v.b }
func (v Value) Int() int64       { return v.i }
func (v Value) Float() float64   { return v.f }
func (v Value) String() string   { return v.asText() }
func (v Value) Text() string     { return v.s }
func (v Value) Binary() []byte   { return v.bin }
func (v Value) Elements() []Value {
	if v.kind != KindArray {
		return nil
	}
	return v.arr
}

// IsNull reports whether v is semantically absent: Null itself, or an
// empty Array. Objects with no fields are NOT null (they are a present,
// empty complex value) — only the Evaluator's unassigned rule conflates
// missing/null/empty-array (spec §3 Glossary, "Unassigned"); this method
// exists purely as a locator/evaluator convenience and does not itself
// define SCIM semantics.
func (v Value) IsNull() bool {
	if v.kind == KindNull {
		return true
	}
	if v.kind == KindArray && len(v.arr) == 0 {
		return true
	}
	return false
}

// Field resolves a named sub-attribute of an Object value, case-sensitive
// first and falling back to ASCII-case-insensitive (spec §3, §8 invariant
// 8). Returns false if v is not an Object or the field is absent.
func (v Value) Field(name string) (Value, bool) {
	if v.kind != KindObject {
		return Value{}, false
	}
	if val, ok := v.obj[name]; ok {
		return val, true
	}
	for k, val := range v.obj {
		if asciiEqualFold(k, name) {
			return val, true
		}
	}
	return Value{}, false
}

// Keys returns the Object's field names in the order recorded at
// construction: the explicit order given to ObjectValueOrdered, or sorted
// order for ObjectValue. Objects built by DecodeJSON record Go's map
// iteration order, which is neither the source order nor stable.
func (v Value) Keys() []string {
	if v.kind != KindObject {
		return nil
	}
	return v.keys
}

// Equal is exact structural equality across kinds (no numeric coercion —
// callers wanting SCIM comparison semantics should use the Evaluator's
// comparison rules, not this method).
func (a Value) Equal(b Value) bool {
	if a.kind != b.kind {
		return false
	}
	switch a.kind {
	case KindNull:
		return true
	case KindBool:
		return a.b == b.b
	case KindInt:
		return a.i == b.i
	case KindFloat:
		return a.f == b.f
	case KindString:
		return a.s == b.s
	case KindBinary:
		return bytes.Equal(a.bin, b.bin)
	case KindArray:
		if len(a.arr) != len(b.arr) {
			return false
		}
		for i := range a.arr {
			if !a.arr[i].Equal(b.arr[i]) {
				return false
			}
		}
		return true
	case KindObject:
		if len(a.obj) != len(b.obj) {
			return false
		}
		for k, av := range a.obj {
			bv, ok := b.obj[k]
			if !ok || !av.Equal(bv) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// asText renders the textual serialization the Evaluator uses for
// equality between a Binary and a String value (spec §3); it also feeds
// valueHash.
func (v Value) asText() string {
	switch v.kind {
	case KindNull:
		return "null"
	case KindBool:
		if v.b {
			return "true"
		}
		return "false"
	case KindInt:
		return strconv.FormatInt(v.i, 10)
	case KindFloat:
		return strconv.FormatFloat(v.f, 'g', -1, 64)
	case KindString:
		return v.s
	case KindBinary:
		return base64.StdEncoding.EncodeToString(v.bin)
	default:
		data, _ := json.Marshal(v)
		return string(data)
	}
}

// MarshalJSON implements json.Marshaler for debugging/rendering purposes.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindNull:
		return []byte("null"), nil
	case KindBool:
		return json.Marshal(v.b)
	case KindInt:
		return json.Marshal(v.i)
	case KindFloat:
		return json.Marshal(v.f)
	case KindString:
		return json.Marshal(v.s)
	case KindBinary:
		return json.Marshal(base64.StdEncoding.EncodeToString(v.bin))
	case KindArray:
		return json.Marshal(v.arr)
	case KindObject:
		var buf bytes.Buffer
		buf.WriteByte('{')
		for i, k := range v.keys {
			if i > 0 {
				buf.WriteByte(',')
			}
			kb, _ := json.Marshal(k)
			buf.Write(kb)
			buf.WriteByte(':')
			vb, err := json.Marshal(v.obj[k])
			if err != nil {
				return nil, err
			}
			buf.Write(vb)
		}
		buf.WriteByte('}')
		return buf.Bytes(), nil
	default:
		return nil, fmt.Errorf("scimfilter: unknown Kind %d", v.kind)
	}
}

// DecodeJSON parses raw JSON text into a Value, preserving the Int/Float
// distinction via json.Number — plain json.Unmarshal into `any` would
// collapse every number to float64, which the comparison rules in spec
// §4.6 (exact-integer vs floating-point) depend on.
func DecodeJSON(data []byte) (Value, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw any
	if err := dec.Decode(&raw); err != nil {
		return Value{}, fmt.Errorf("scimfilter: decode json: %w", err)
	}
	return fromAny(raw), nil
}

func fromAny(raw any) Value {
	switch t := raw.(type) {
	case nil:
		return NullValue()
	case bool:
		return BoolValue(t)
	case json.Number:
		s := string(t)
		if strings.ContainsAny(s, ".eE") {
			f, _ := strconv.ParseFloat(s, 64)
			return FloatValue(f)
		}
		i, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			f, _ := strconv.ParseFloat(s, 64)
			return FloatValue(f)
		}
		return IntValue(i)
	case string:
		return StringValue(t)
	case []any:
		vs := make([]Value, len(t))
		for i, e := range t {
			vs[i] = fromAny(e)
		}
		return ArrayValue(vs...)
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		obj := make(map[string]Value, len(t))
		for k, v := range t {
			obj[k] = fromAny(v)
		}
		return ObjectValueOrdered(keys, obj)
	default:
		return NullValue()
	}
}

// asciiEqualFold compares two strings for equality ignoring ASCII case
// only (spec §9: "do not Unicode-case-fold").
func asciiEqualFold(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := 0; i < len(a); i++ {
		ca, cb := a[i], b[i]
		if ca >= 'A' && ca <= 'Z' {
			ca += 'a' - 'A'
		}
		if cb >= 'A' && cb <= 'Z' {
			cb += 'a' - 'A'
		}
		if ca != cb {
			return false
		}
	}
	return true
}
