// Package packstream implements the PackStream binary serialization format:
// a self-describing codec of marker-prefixed primitives, length-classed
// containers, and tagged structures, expressed as a single tagged-variant
// Value with symmetric encode/decode functions.
package packstream


// Kind identifies which variant a Value holds.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindInt
	KindFloat
	KindString
	KindList
	KindMap
	KindStruct
)

// Pair is a single (key, value) entry of a Map, keeping insertion order.
type Pair struct {
	Key   string
	Value Value
}

// Value is a tagged union over every PackStream-representable type:
// Null, Bool, Int, Float, String, List, Map, and Structure. Exactly one
// of the typed fields is meaningful, selected by Kind.
type Value struct {
	Kind Kind

	Bool   bool
	Int    int64
	Float  float64
	String string
	List   []Value
	Map    []Pair // insertion order preserved; duplicate keys are legal on
	// the wire but this codec never produces them.

	// Struct fields.
	Signature byte
	Fields    []Value
}

// Null is the PackStream null value.
var Null = Value{Kind: KindNull}

// Bool wraps a boolean.
func Bool(b bool) Value { return Value{Kind: KindBool, Bool: b} }

// Int wraps a signed 64-bit integer.
func Int(n int64) Value { return Value{Kind: KindInt, Int: n} }

// Float wraps an IEEE-754 double.
func Float(f float64) Value { return Value{Kind: KindFloat, Float: f} }

// String wraps a UTF-8 string.
func String(s string) Value { return Value{Kind: KindString, String: s} }

// List wraps a sequence of values.
func List(items ...Value) Value { return Value{Kind: KindList, List: items} }

// Map builds a Map value from pairs, preserving the given order.
func Map(pairs ...Pair) Value { return Value{Kind: KindMap, Map: pairs} }

// MapOf is a convenience constructor for a Map built from a
// string-to-Value map literal. Since Go map iteration order is
// randomized, prefer Map(Pair{...}, ...) when the wire order matters to a
// test or a caller; MapOf sorts by nothing and should only be used where
// order is genuinely immaterial.
func MapOf(m map[string]Value) Value {
	pairs := make([]Pair, 0, len(m))
	for k, v := range m {
		pairs = append(pairs, Pair{Key: k, Value: v})
	}
	return Value{Kind: KindMap, Map: pairs}
}

// Struct builds a Structure value with the given Bolt message/graph
// signature and fields.
func Struct(signature byte, fields ...Value) Value {
	return Value{Kind: KindStruct, Signature: signature, Fields: fields}
}

// MapGet returns the value for key and whether it was present.
func (v Value) MapGet(key string) (Value, bool) {
	for _, p := range v.Map {
		if p.Key == key {
			return p.Value, true
		}
	}
	return Value{}, false
}
