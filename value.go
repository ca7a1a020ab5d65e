package kiln

import (
	"slices"
	"strings"
)

type valueKind uint8

const (
	valueNull valueKind = iota
	valueScalar
	valueArray
)

// Value is a parameter value in its stored text form: absent (null), a single
// scalar or an ordered array. For complex types the text is a definition key.
type Value struct {
	kind  valueKind
	items []string
}

// Null is the absent value. It is the zero Value.
var Null = Value{}

// Scalar returns a single-valued Value.
func Scalar(s string) Value {
	return Value{kind: valueScalar, items: []string{s}}
}

// Array returns an array Value. An empty array is still present.
func Array(items ...string) Value {
	return Value{kind: valueArray, items: append([]string{}, items...)}
}

// IsNull reports whether v is absent.
func (v Value) IsNull() bool { return v.kind == valueNull }
// IsArray reports whether v is an array, possibly empty.
func (v Value) IsArray() bool { return v.kind == valueArray }

// Text returns the scalar text, or "" for null and array values.
func (v Value) Text() string {
	if v.kind != valueScalar {
		return ""
	}
	return v.items[0]
}

// Items returns a copy of the stored strings: none for null, one for a scalar.
func (v Value) Items() []string {
	if v.kind == valueNull {
		return nil
	}
	return slices.Clone(v.items)
}

// Len returns the number of stored strings.
func (v Value) Len() int { return len(v.items) }

// isEmpty reports whether v carries no text: null, an empty array or an
// empty scalar.
func (v Value) isEmpty() bool {
	return len(v.items) == 0 || (v.kind == valueScalar && v.items[0] == "")
}

// Equal reports whether both values have the same shape and text.
func (v Value) Equal(o Value) bool {
	return v.kind == o.kind && slices.Equal(v.items, o.items)
}

// String formats v for messages: null, the scalar text or [a, b].
func (v Value) String() string {
	switch v.kind {
	case valueScalar:
		return v.items[0]
	case valueArray:
		return "[" + strings.Join(v.items, ", ") + "]"
	default:
		return "null"
	}
}
