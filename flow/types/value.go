// Package types defines the feature data model that flows through the
// runtime: tagged values, attributes, features, and geometry variants.
package types

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"time"
)

// Kind identifies the variant held by a Value.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindBytes
	KindArray
	KindMap
	KindDateTime
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindBytes:
		return "bytes"
	case KindArray:
		return "array"
	case KindMap:
		return "map"
	case KindDateTime:
		return "datetime"
	default:
		return "unknown"
	}
}

// Number preserves the int/float distinction that a bare float64 would lose.
type Number struct {
	IsInt bool
	I     int64
	F     float64
}

func IntNumber(i int64) Number  { return Number{IsInt: true, I: i} }
func FloatNumber(f float64) Number { return Number{IsInt: false, F: f} }

// Float returns the number as a float64 regardless of representation.
func (n Number) Float() float64 {
	if n.IsInt {
		return float64(n.I)
	}
	return n.F
}

// Compare orders two numbers; ordering is always defined within Number.
func (n Number) Compare(other Number) int {
	a, b := n.Float(), other.Float()
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func (n Number) String() string {
	if n.IsInt {
		return fmt.Sprintf("%d", n.I)
	}
	return fmt.Sprintf("%g", n.F)
}

// Value is a tagged variant: Bool | Number | String | Bytes | Array[Value] |
// Map[String->Value] | DateTime | Null. Ordering is defined only within
// Number, within String and within DateTime; cross-kind comparison is
// undefined ("none"),
// reported via Value.Compare returning ok=false.
type Value struct {
	kind Kind
	b    bool
	n    Number
	s    string
	by   []byte
	arr  []Value
	m    map[string]Value
	t    time.Time
}

func Null() Value                 { return Value{kind: KindNull} }
func Bool(b bool) Value           { return Value{kind: KindBool, b: b} }
func Int(i int64) Value           { return Value{kind: KindNumber, n: IntNumber(i)} }
func Float(f float64) Value       { return Value{kind: KindNumber, n: FloatNumber(f)} }
func NumberValue(n Number) Value  { return Value{kind: KindNumber, n: n} }
func String(s string) Value       { return Value{kind: KindString, s: s} }
func Bytes(b []byte) Value        { return Value{kind: KindBytes, by: append([]byte(nil), b...)} }
func DateTime(t time.Time) Value  { return Value{kind: KindDateTime, t: t} }

// Array makes a defensive copy of vs so the resulting Value is independent
// of the caller's slice — features are value-semantic (spec.md §3).
func Array(vs []Value) Value {
	cp := make([]Value, len(vs))
	copy(cp, vs)
	return Value{kind: KindArray, arr: cp}
}

// Map makes a defensive copy of m for the same reason as Array.
func Map(m map[string]Value) Value {
	cp := make(map[string]Value, len(m))
	for k, v := range m {
		cp[k] = v
	}
	return Value{kind: KindMap, m: cp}
}

func (v Value) Kind() Kind { return v.kind }
func (v Value) IsNull() bool { return v.kind == KindNull }

func (v Value) AsBool() (bool, bool)           { return v.b, v.kind == KindBool }
func (v Value) AsNumber() (Number, bool)       { return v.n, v.kind == KindNumber }
func (v Value) AsString() (string, bool)       { return v.s, v.kind == KindString }
func (v Value) AsBytes() ([]byte, bool)        { return v.by, v.kind == KindBytes }
func (v Value) AsDateTime() (time.Time, bool)  { return v.t, v.kind == KindDateTime }

// AsArray returns a defensive copy of the underlying slice.
func (v Value) AsArray() ([]Value, bool) {
	if v.kind != KindArray {
		return nil, false
	}
	cp := make([]Value, len(v.arr))
	copy(cp, v.arr)
	return cp, true
}

// AsMap returns a defensive copy of the underlying map.
func (v Value) AsMap() (map[string]Value, bool) {
	if v.kind != KindMap {
		return nil, false
	}
	cp := make(map[string]Value, len(v.m))
	for k, val := range v.m {
		cp[k] = val
	}
	return cp, true
}

// Compare orders two values of the same kind. ok is false for cross-kind
// comparison (spec.md §3: "cross-kind comparison is undefined (none)") or
// for kinds without a defined order (Bool, Bytes, Array, Map, Null).
func (a Value) Compare(b Value) (cmp int, ok bool) {
	if a.kind != b.kind {
		return 0, false
	}
	switch a.kind {
	case KindNumber:
		return a.n.Compare(b.n), true
	case KindString:
		switch {
		case a.s < b.s:
			return -1, true
		case a.s > b.s:
			return 1, true
		default:
			return 0, true
		}
	case KindDateTime:
		switch {
		case a.t.Before(b.t):
			return -1, true
		case a.t.After(b.t):
			return 1, true
		default:
			return 0, true
		}
	default:
		return 0, false
	}
}

// jsonValue is the wire shape used by MarshalJSON/UnmarshalJSON: a
// discriminated union so conversion to/from a JSON-like value is total,
// matching the original ActionValue's Display/Serialize contract.
type jsonValue struct {
	Kind  string          `json:"kind"`
	Bool  *bool           `json:"bool,omitempty"`
	Num   *string         `json:"number,omitempty"`
	IsInt bool            `json:"isInt,omitempty"`
	Str   *string         `json:"string,omitempty"`
	Bytes *string         `json:"bytes,omitempty"` // base64
	Arr   []Value         `json:"array,omitempty"`
	M     map[string]Value `json:"map,omitempty"`
	Time  *time.Time      `json:"datetime,omitempty"`
}

func (v Value) MarshalJSON() ([]byte, error) {
	jv := jsonValue{Kind: v.kind.String()}
	switch v.kind {
	case KindNull:
	case KindBool:
		jv.Bool = &v.b
	case KindNumber:
		s := v.n.String()
		jv.Num = &s
		jv.IsInt = v.n.IsInt
	case KindString:
		jv.Str = &v.s
	case KindBytes:
		enc := base64.StdEncoding.EncodeToString(v.by)
		jv.Bytes = &enc
	case KindArray:
		jv.Arr = v.arr
	case KindMap:
		jv.M = v.m
	case KindDateTime:
		jv.Time = &v.t
	}
	return json.Marshal(jv)
}

func (v *Value) UnmarshalJSON(data []byte) error {
	var jv jsonValue
	if err := json.Unmarshal(data, &jv); err != nil {
		return err
	}
	switch jv.Kind {
	case "", "null":
		*v = Null()
	case "bool":
		if jv.Bool == nil {
			return fmt.Errorf("types: bool value missing")
		}
		*v = Bool(*jv.Bool)
	case "number":
		if jv.Num == nil {
			return fmt.Errorf("types: number value missing")
		}
		var n Number
		if _, err := fmt.Sscanf(*jv.Num, "%d", &n.I); err == nil && jv.IsInt {
			n.IsInt = true
		} else {
			var f float64
			if _, err := fmt.Sscanf(*jv.Num, "%g", &f); err != nil {
				return fmt.Errorf("types: invalid number %q: %w", *jv.Num, err)
			}
			n.F = f
		}
		*v = NumberValue(n)
	case "string":
		if jv.Str == nil {
			return fmt.Errorf("types: string value missing")
		}
		*v = String(*jv.Str)
	case "bytes":
		if jv.Bytes == nil {
			return fmt.Errorf("types: bytes value missing")
		}
		b, err := base64.StdEncoding.DecodeString(*jv.Bytes)
		if err != nil {
			return fmt.Errorf("types: invalid base64 bytes: %w", err)
		}
		*v = Bytes(b)
	case "array":
		*v = Array(jv.Arr)
	case "map":
		*v = Map(jv.M)
	case "datetime":
		if jv.Time == nil {
			return fmt.Errorf("types: datetime value missing")
		}
		*v = DateTime(*jv.Time)
	default:
		return fmt.Errorf("types: unknown value kind %q", jv.Kind)
	}
	return nil
}

// FromAny converts a decoded JSON-like Go value (as produced by
// encoding/json, yaml.v3 or goja's Export) into a Value. Used by flow/expr
// for script results and by flow/workflow for `with` parameters.
func FromAny(v any) Value {
	switch x := v.(type) {
	case nil:
		return Null()
	case bool:
		return Bool(x)
	case string:
		return String(x)
	case float64:
		return Float(x)
	case int:
		return Int(int64(x))
	case int64:
		return Int(x)
	case []byte:
		return Bytes(x)
	case time.Time:
		return DateTime(x)
	case []any:
		vs := make([]Value, len(x))
		for i, e := range x {
			vs[i] = FromAny(e)
		}
		return Array(vs)
	case map[string]any:
		m := make(map[string]Value, len(x))
		for k, e := range x {
			m[k] = FromAny(e)
		}
		return Map(m)
	default:
		return String(fmt.Sprintf("%v", x))
	}
}

// ToAny converts a Value back into a plain Go value suitable for
// json.Marshal or further processing outside the runtime.
func (v Value) ToAny() any {
	switch v.kind {
	case KindNull:
		return nil
	case KindBool:
		return v.b
	case KindNumber:
		if v.n.IsInt {
			return v.n.I
		}
		return v.n.F
	case KindString:
		return v.s
	case KindBytes:
		return base64.StdEncoding.EncodeToString(v.by)
	case KindArray:
		out := make([]any, len(v.arr))
		for i, e := range v.arr {
			out[i] = e.ToAny()
		}
		return out
	case KindMap:
		out := make(map[string]any, len(v.m))
		for k, e := range v.m {
			out[k] = e.ToAny()
		}
		return out
	case KindDateTime:
		return v.t
	default:
		return nil
	}
}
