package kiln

import (
	"errors"
	"reflect"
	"strconv"
	"strings"
	"sync"
	"unicode/utf8"
)

const (
	nullTypeName   = "null"
	objectTypeName = "object"
)

var anyType = reflect.TypeFor[any]()

// scalar describes one entry of the built-in type table. parse is nil for
// object, whose values are definition keys rather than literals.
type scalar struct {
	name  string
	typ   reflect.Type
	parse func(string) (any, error)
}

// TypeSpec is a parsed type name.
type TypeSpec struct {
	// Name is the canonical base name, without array suffix.
	Name string
	// Array reports a [] suffix.
	Array bool
	// Elem is the declared element type of an object[];Elem array.
	Elem string

	scalar *scalar
	// complexType is set for registered type names.
	complexType reflect.Type
}

// IsNull reports whether the spec is the null type.
func (s TypeSpec) IsNull() bool { return s.Name == nullTypeName && s.scalar == nil }

// IsLiteral reports whether values of this type are parsed from text rather
// than looked up as keys.
func (s TypeSpec) IsLiteral() bool { return s.scalar != nil && s.scalar.parse != nil }

// IsComplex reports whether values of this type are definition keys.
func (s TypeSpec) IsComplex() bool { return !s.IsNull() && !s.IsLiteral() }

// ElemType returns the Go type of one element (or of the value itself for
// non-array specs). It is nil for null.
func (s TypeSpec) ElemType() reflect.Type {
	switch {
	case s.scalar != nil:
		return s.scalar.typ
	case s.complexType != nil:
		return s.complexType
	default:
		return nil
	}
}

// Type returns the Go type a value of this spec converts to.
func (s TypeSpec) Type() reflect.Type {
	t := s.ElemType()
	if t == nil || !s.Array {
		return t
	}
	return reflect.SliceOf(t)
}

// String returns the canonical spelling.
func (s TypeSpec) String() string {
	if !s.Array {
		return s.Name
	}
	if s.Elem != "" {
		return s.Name + "[];" + s.Elem
	}
	return s.Name + "[]"
}

// typeTable maps every accepted spelling, scalar and array, to its spec. It
// is built once and never modified.
var typeTable = sync.OnceValue(func() map[string]TypeSpec {
	entries := []struct {
		s       *scalar
		aliases []string
	}{
		{&scalar{"bool", reflect.TypeFor[bool](), parseBool}, []string{"Boolean"}},
		{&scalar{"byte", reflect.TypeFor[uint8](), parseUint(8, func(u uint64) any { return uint8(u) })}, []string{"Byte"}},
		{&scalar{"sbyte", reflect.TypeFor[int8](), parseInt(8, func(i int64) any { return int8(i) })}, []string{"SByte"}},
		{&scalar{"short", reflect.TypeFor[int16](), parseInt(16, func(i int64) any { return int16(i) })}, []string{"Int16"}},
		{&scalar{"ushort", reflect.TypeFor[uint16](), parseUint(16, func(u uint64) any { return uint16(u) })}, []string{"UInt16"}},
		{&scalar{"int", reflect.TypeFor[int32](), parseInt(32, func(i int64) any { return int32(i) })}, []string{"Int32"}},
		{&scalar{"uint", reflect.TypeFor[uint32](), parseUint(32, func(u uint64) any { return uint32(u) })}, []string{"UInt32"}},
		{&scalar{"long", reflect.TypeFor[int64](), parseInt(64, func(i int64) any { return i })}, []string{"Int64"}},
		{&scalar{"ulong", reflect.TypeFor[uint64](), parseUint(64, func(u uint64) any { return u })}, []string{"UInt64"}},
		{&scalar{"char", reflect.TypeFor[rune](), parseChar}, []string{"Char"}},
		{&scalar{"float", reflect.TypeFor[float32](), parseFloat(32, func(f float64) any { return float32(f) })}, []string{"Single"}},
		{&scalar{"double", reflect.TypeFor[float64](), parseFloat(64, func(f float64) any { return f })}, []string{"Double"}},
		{&scalar{"string", reflect.TypeFor[string](), func(s string) (any, error) { return s, nil }}, []string{"String"}},
		{&scalar{objectTypeName, anyType, nil}, []string{"Object"}},
	}

	table := make(map[string]TypeSpec, len(entries)*8)
	for _, e := range entries {
		names := []string{e.s.name}
		for _, a := range e.aliases {
			names = append(names, a, "System."+a)
		}
		for _, n := range names {
			table[n] = TypeSpec{Name: e.s.name, scalar: e.s}
			table[n+"[]"] = TypeSpec{Name: e.s.name, Array: true, scalar: e.s}
		}
	}
	return table
})

// splitTypeName trims name and splits it into base name, array flag and the
// element suffix after ';'. Whitespace inside the brackets and around the
// semicolon is dropped.
func splitTypeName(name string) (base string, array bool, elem string, ok bool) {
	s := strings.TrimSpace(name)
	open := strings.IndexByte(s, '[')
	if open < 0 {
		if s == "" || strings.ContainsAny(s, "];") {
			return "", false, "", false
		}
		return s, false, "", true
	}

	end := strings.IndexByte(s[open:], ']')
	if end < 0 {
		return "", false, "", false
	}
	end += open
	if strings.TrimSpace(s[open+1:end]) != "" {
		return "", false, "", false
	}

	base = strings.TrimSpace(s[:open])
	rest := strings.TrimSpace(s[end+1:])
	if rest != "" {
		if rest[0] != ';' {
			return "", false, "", false
		}
		elem = strings.TrimSpace(rest[1:])
	}
	return base, true, elem, base != ""
}

// IsArrayTypeName reports whether name, scalar or registered, carries an
// array suffix.
func IsArrayTypeName(name string) bool {
	_, array, _, ok := splitTypeName(name)
	return ok && array
}

// IsNullTypeName reports whether name is the null sentinel.
func IsNullTypeName(name string) bool {
	return strings.TrimSpace(name) == nullTypeName
}

// ParseTypeName parses a built-in type name: a scalar, its array form, null
// or object[];Elem. Registered type names are resolved by the [Registry].
func ParseTypeName(name string) (TypeSpec, error) {
	base, array, elem, ok := splitTypeName(name)
	if !ok {
		return TypeSpec{}, &UnknownTypeError{Name: name}
	}
	if base == nullTypeName && !array {
		return TypeSpec{Name: nullTypeName}, nil
	}

	key := base
	if array {
		key += "[]"
	}
	spec, found := typeTable()[key]
	if !found {
		return TypeSpec{}, &UnknownTypeError{Name: name}
	}
	if elem != "" {
		if spec.Name != objectTypeName {
			return TypeSpec{}, &UnknownTypeError{Name: name}
		}
		spec.Elem = elem
	}
	return spec, nil
}

// ConvertScalar converts one stored string to the native value of spec (the
// element type for array specs). Complex values pass through unchanged: they
// are keys.
func ConvertScalar(spec TypeSpec, s string) (any, error) {
	if spec.IsNull() {
		if s != "" {
			return nil, &ValueConversionError{Type: nullTypeName, Value: s, Err: errors.New("null takes no value")}
		}
		return nil, nil
	}
	if !spec.IsLiteral() {
		return s, nil
	}
	v, err := spec.scalar.parse(s)
	if err != nil {
		return nil, &ValueConversionError{Type: spec.Name, Value: s, Err: err}
	}
	return v, nil
}

// ConvertArray converts stored strings element-wise into a typed slice, such
// as []int32 for int[]. Complex arrays pass through as []string keys; the
// [Factory] constructs their elements.
func ConvertArray(spec TypeSpec, items []string) (any, error) {
	if !spec.IsLiteral() {
		return append([]string{}, items...), nil
	}
	out := reflect.MakeSlice(reflect.SliceOf(spec.scalar.typ), len(items), len(items))
	for i, item := range items {
		v, err := ConvertScalar(spec, item)
		if err != nil {
			return nil, err
		}
		out.Index(i).Set(reflect.ValueOf(v))
	}
	return out.Interface(), nil
}

// MakeTypedArray builds a []elem from already constructed items, failing
// with [ArrayElementTypeMismatchError] on the first item not assignable to
// elem.
func MakeTypedArray(elem reflect.Type, items []any) (any, error) {
	out := reflect.MakeSlice(reflect.SliceOf(elem), len(items), len(items))
	for i, item := range items {
		if item == nil {
			if nilable(elem) {
				continue
			}
			return nil, &ArrayElementTypeMismatchError{Index: i, Want: elem}
		}
		v := reflect.ValueOf(item)
		if !v.Type().AssignableTo(elem) {
			return nil, &ArrayElementTypeMismatchError{Index: i, Want: elem, Got: v.Type()}
		}
		out.Index(i).Set(v)
	}
	return out.Interface(), nil
}

func nilable(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Slice, reflect.Map, reflect.Func, reflect.Chan:
		return true
	}
	return false
}

// parseBool accepts only true and false, ignoring case.
func parseBool(s string) (any, error) {
	switch t := strings.TrimSpace(s); {
	case strings.EqualFold(t, "true"):
		return true, nil
	case strings.EqualFold(t, "false"):
		return false, nil
	default:
		return nil, errors.New("expected true or false")
	}
}

func parseInt(bits int, cast func(int64) any) func(string) (any, error) {
	return func(s string) (any, error) {
		i, err := strconv.ParseInt(strings.TrimSpace(s), 10, bits)
		if err != nil {
			return nil, err
		}
		return cast(i), nil
	}
}

func parseUint(bits int, cast func(uint64) any) func(string) (any, error) {
	return func(s string) (any, error) {
		u, err := strconv.ParseUint(strings.TrimSpace(s), 10, bits)
		if err != nil {
			return nil, err
		}
		return cast(u), nil
	}
}

func parseFloat(bits int, cast func(float64) any) func(string) (any, error) {
	return func(s string) (any, error) {
		f, err := strconv.ParseFloat(strings.TrimSpace(s), bits)
		if err != nil {
			return nil, err
		}
		return cast(f), nil
	}
}

func parseChar(s string) (any, error) {
	if utf8.RuneCountInString(s) != 1 {
		return nil, errors.New("expected exactly one character")
	}
	r, _ := utf8.DecodeRuneInString(s)
	return r, nil
}
