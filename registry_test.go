package kiln

import (
	"errors"
	"reflect"
	"testing"
)

func TestRegister(t *testing.T) {
	t.Run("valid constructor", func(t *testing.T) {
		r := NewRegistry()
		if err := r.Register("Widget", Constructor(newTestWidget)); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("constructor returning (T, error)", func(t *testing.T) {
		r := NewRegistry()
		err := r.Register("Widget", Constructor(func() (*testWidget, error) { return &testWidget{}, nil }))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("non-function is rejected", func(t *testing.T) {
		r := NewRegistry()
		if err := r.Register("Widget", Constructor("not a function")); !errors.Is(err, ErrInvalidFunction) {
			t.Fatalf("expected ErrInvalidFunction, got: %v", err)
		}
	})

	t.Run("no return values rejected", func(t *testing.T) {
		r := NewRegistry()
		if err := r.Register("Widget", Constructor(func() {})); !errors.Is(err, ErrInvalidFunction) {
			t.Fatalf("expected ErrInvalidFunction, got: %v", err)
		}
	})

	t.Run("second return not error rejected", func(t *testing.T) {
		r := NewRegistry()
		err := r.Register("Widget", Constructor(func() (*testWidget, string) { return nil, "" }))
		if !errors.Is(err, ErrInvalidFunction) {
			t.Fatalf("expected ErrInvalidFunction, got: %v", err)
		}
	})

	t.Run("no constructor and no Of rejected", func(t *testing.T) {
		r := NewRegistry()
		if err := r.Register("Widget"); !errors.Is(err, ErrInvalidFunction) {
			t.Fatalf("expected ErrInvalidFunction, got: %v", err)
		}
	})

	t.Run("method receiver must accept the type", func(t *testing.T) {
		r := NewRegistry()
		err := r.Register("Widget",
			Constructor(newTestWidget),
			Method("Wrong", func(b *testBox) {}),
		)
		if !errors.Is(err, ErrInvalidFunction) {
			t.Fatalf("expected ErrInvalidFunction, got: %v", err)
		}
	})

	t.Run("built-in and malformed names rejected", func(t *testing.T) {
		r := NewRegistry()
		for _, name := range []string{"int", "System.String", "null", "", "Widget[]", "a;b"} {
			if err := r.Register(name, Constructor(newTestWidget)); !errors.Is(err, ErrInvalidArgument) {
				t.Errorf("Register(%q): expected ErrInvalidArgument, got: %v", name, err)
			}
		}
	})

	t.Run("duplicate in same assembly", func(t *testing.T) {
		r := NewRegistry()
		mustRegister(t, r, "Widget", Constructor(newTestWidget))
		if err := r.Register("Widget", Constructor(newTestWidgetLabel)); !errors.Is(err, ErrDuplicateType) {
			t.Fatalf("expected ErrDuplicateType, got: %v", err)
		}
	})

	t.Run("same name in different assemblies", func(t *testing.T) {
		r := NewRegistry()
		mustRegister(t, r, "Widget", Constructor(newTestWidget), InAssembly("a"))
		mustRegister(t, r, "Widget", Constructor(newTestWidgetLabel), InAssembly("b"))

		if _, err := r.lookup("a", "Widget"); err != nil {
			t.Fatalf("lookup in assembly a: %v", err)
		}
		if _, err := r.lookup("", "Widget"); !errors.Is(err, ErrAmbiguousMatch) {
			t.Fatalf("expected ErrAmbiguousMatch without assembly, got: %v", err)
		}
		if _, err := r.lookup("c", "Widget"); !errors.Is(err, ErrTypeNotRegistered) {
			t.Fatalf("expected ErrTypeNotRegistered, got: %v", err)
		}
	})

	t.Run("frozen registry", func(t *testing.T) {
		r := NewRegistry()
		NewFactory(r, nil)
		if !r.Frozen() {
			t.Fatal("NewFactory must freeze the registry")
		}
		if err := r.Register("Widget", Constructor(newTestWidget)); !errors.Is(err, ErrRegistryFrozen) {
			t.Fatalf("expected ErrRegistryFrozen, got: %v", err)
		}
	})
}

func TestRegistry_Names(t *testing.T) {
	r := newTestRegistry(t)
	names := r.Names()
	want := []string{"Bag", "Box", "Canvas", "Pair", "Shape", "Square", "Widget"}
	if !reflect.DeepEqual(names, want) {
		t.Fatalf("Names() = %v, want %v", names, want)
	}
}

func TestRegistry_ResolveTypeName(t *testing.T) {
	r := newTestRegistry(t)

	tests := []struct {
		in  string
		typ reflect.Type
	}{
		{"int", reflect.TypeFor[int32]()},
		{"Widget", reflect.TypeFor[*testWidget]()},
		{"Widget[]", reflect.TypeFor[[]*testWidget]()},
		{"Shape []", reflect.TypeFor[[]testShape]()},
		{"object[];Shape", reflect.TypeFor[[]testShape]()},
		{"object[]", reflect.TypeFor[[]any]()},
	}
	for _, tt := range tests {
		spec, err := r.ResolveTypeName(tt.in)
		if err != nil {
			t.Fatalf("ResolveTypeName(%q): %v", tt.in, err)
		}
		if got := spec.Type(); got != tt.typ {
			t.Errorf("ResolveTypeName(%q).Type() = %v, want %v", tt.in, got, tt.typ)
		}
		if spec.IsLiteral() && tt.in != "int" {
			t.Errorf("ResolveTypeName(%q) must be complex", tt.in)
		}
	}

	for _, bad := range []string{"Gadget", "object[];Gadget", "Widget[];Shape"} {
		_, err := r.ResolveTypeName(bad)
		var ute *UnknownTypeError
		if !errors.As(err, &ute) {
			t.Errorf("ResolveTypeName(%q): expected UnknownTypeError, got: %v", bad, err)
		}
	}
}
