package kiln

import (
	"errors"
	"reflect"
	"testing"
)

func TestParseTypeName(t *testing.T) {
	tests := []struct {
		in    string
		name  string
		array bool
		elem  string
		typ   reflect.Type
	}{
		{"int", "int", false, "", reflect.TypeFor[int32]()},
		{"Int32", "int", false, "", reflect.TypeFor[int32]()},
		{"System.Int32", "int", false, "", reflect.TypeFor[int32]()},
		{"int[]", "int", true, "", reflect.TypeFor[[]int32]()},
		{"Int32[]", "int", true, "", reflect.TypeFor[[]int32]()},
		{" int [ ] ", "int", true, "", reflect.TypeFor[[]int32]()},
		{"byte", "byte", false, "", reflect.TypeFor[uint8]()},
		{"sbyte", "sbyte", false, "", reflect.TypeFor[int8]()},
		{"ulong", "ulong", false, "", reflect.TypeFor[uint64]()},
		{"char", "char", false, "", reflect.TypeFor[rune]()},
		{"Single", "float", false, "", reflect.TypeFor[float32]()},
		{"System.Double[]", "double", true, "", reflect.TypeFor[[]float64]()},
		{"String", "string", false, "", reflect.TypeFor[string]()},
		{"object", "object", false, "", reflect.TypeFor[any]()},
		{"object[ ] ;", "object", true, "", reflect.TypeFor[[]any]()},
		{"object[];MyType", "object", true, "MyType", reflect.TypeFor[[]any]()},
		{"object [] ; MyType", "object", true, "MyType", reflect.TypeFor[[]any]()},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			spec, err := ParseTypeName(tt.in)
			if err != nil {
				t.Fatalf("ParseTypeName: %v", err)
			}
			if spec.Name != tt.name || spec.Array != tt.array || spec.Elem != tt.elem {
				t.Fatalf("got %+v, want name=%q array=%v elem=%q", spec, tt.name, tt.array, tt.elem)
			}
			if got := spec.Type(); got != tt.typ {
				t.Fatalf("Type() = %v, want %v", got, tt.typ)
			}
		})
	}

	t.Run("null", func(t *testing.T) {
		spec, err := ParseTypeName("null")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !spec.IsNull() || spec.IsLiteral() || spec.IsComplex() {
			t.Fatalf("null spec flags wrong: %+v", spec)
		}
	})

	t.Run("object is complex", func(t *testing.T) {
		spec, _ := ParseTypeName("object")
		if !spec.IsComplex() || spec.IsLiteral() {
			t.Fatal("object values must be keys")
		}
	})

	for _, bad := range []string{"", "Widget", "null[]", "string[];Foo", "int[x]", "int[", "in]t"} {
		t.Run("rejects "+bad, func(t *testing.T) {
			_, err := ParseTypeName(bad)
			var ute *UnknownTypeError
			if !errors.As(err, &ute) {
				t.Fatalf("expected UnknownTypeError, got: %v", err)
			}
		})
	}
}

func TestTypeSpec_String(t *testing.T) {
	for in, want := range map[string]string{
		"Int32[]":            "int[]",
		"System.String":      "string",
		"object [ ] ; Shape": "object[];Shape",
	} {
		spec, err := ParseTypeName(in)
		if err != nil {
			t.Fatalf("ParseTypeName(%q): %v", in, err)
		}
		if got := spec.String(); got != want {
			t.Errorf("ParseTypeName(%q).String() = %q, want %q", in, got, want)
		}
	}
}

func TestIsArrayTypeName(t *testing.T) {
	for name, want := range map[string]bool{
		"int":             false,
		"int[]":           true,
		"Widget":          false,
		"Widget[]":        true,
		"object[];Widget": true,
		"null":            false,
	} {
		if got := IsArrayTypeName(name); got != want {
			t.Errorf("IsArrayTypeName(%q) = %v, want %v", name, got, want)
		}
	}
}

func TestConvertScalar(t *testing.T) {
	tests := []struct {
		typ  string
		in   string
		want any
	}{
		{"int", "42", int32(42)},
		{"int", " -7 ", int32(-7)},
		{"long", "9000000000", int64(9000000000)},
		{"byte", "255", uint8(255)},
		{"bool", "true", true},
		{"bool", " False ", false},
		{"bool", "TRUE", true},
		{"char", "x", 'x'},
		{"double", "1.5", 1.5},
		{"float", "2.5", float32(2.5)},
		{"string", "  spaced  ", "  spaced  "},
		{"object", "w1", "w1"},
	}
	for _, tt := range tests {
		spec, err := ParseTypeName(tt.typ)
		if err != nil {
			t.Fatalf("ParseTypeName(%q): %v", tt.typ, err)
		}
		got, err := ConvertScalar(spec, tt.in)
		if err != nil {
			t.Fatalf("ConvertScalar(%s, %q): %v", tt.typ, tt.in, err)
		}
		if got != tt.want {
			t.Errorf("ConvertScalar(%s, %q) = %#v, want %#v", tt.typ, tt.in, got, tt.want)
		}
	}

	for _, bad := range []struct{ typ, in string }{
		{"byte", "256"},
		{"int", "abc"},
		{"bool", "maybe"},
		{"bool", "1"},
		{"bool", "t"},
		{"bool", "F"},
		{"char", "xy"},
		{"uint", "-1"},
	} {
		spec, _ := ParseTypeName(bad.typ)
		_, err := ConvertScalar(spec, bad.in)
		var vce *ValueConversionError
		if !errors.As(err, &vce) {
			t.Errorf("ConvertScalar(%s, %q): expected ValueConversionError, got %v", bad.typ, bad.in, err)
		}
	}
}

func TestConvertArray(t *testing.T) {
	t.Run("typed slice", func(t *testing.T) {
		spec, _ := ParseTypeName("int[]")
		got, err := ConvertArray(spec, []string{"1", "2", "3"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !reflect.DeepEqual(got, []int32{1, 2, 3}) {
			t.Fatalf("got %#v", got)
		}
	})

	t.Run("empty array is an empty slice", func(t *testing.T) {
		spec, _ := ParseTypeName("string[]")
		got, err := ConvertArray(spec, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		s, ok := got.([]string)
		if !ok || s == nil || len(s) != 0 {
			t.Fatalf("got %#v, want empty []string", got)
		}
	})

	t.Run("bad element", func(t *testing.T) {
		spec, _ := ParseTypeName("int[]")
		if _, err := ConvertArray(spec, []string{"1", "x"}); err == nil {
			t.Fatal("expected error")
		}
	})

	t.Run("object array passes keys through", func(t *testing.T) {
		spec, _ := ParseTypeName("object[]")
		got, err := ConvertArray(spec, []string{"a", "b"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !reflect.DeepEqual(got, []string{"a", "b"}) {
			t.Fatalf("got %#v", got)
		}
	})
}

func TestMakeTypedArray(t *testing.T) {
	shape := reflect.TypeFor[testShape]()

	got, err := MakeTypedArray(shape, []any{&testSquare{1}, nil, &testSquare{2}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	shapes := got.([]testShape)
	if len(shapes) != 3 || shapes[1] != nil || shapes[2].Area() != 4 {
		t.Fatalf("got %#v", shapes)
	}

	_, err = MakeTypedArray(shape, []any{&testSquare{1}, &testWidget{}})
	var mismatch *ArrayElementTypeMismatchError
	if !errors.As(err, &mismatch) {
		t.Fatalf("expected ArrayElementTypeMismatchError, got: %v", err)
	}
	if mismatch.Index != 1 || mismatch.Got != reflect.TypeFor[*testWidget]() {
		t.Fatalf("unexpected mismatch details: %+v", mismatch)
	}
}
