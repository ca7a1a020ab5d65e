package kiln

import (
	"errors"
	"testing"
)

func TestValue(t *testing.T) {
	if !Null.IsNull() || Null.IsArray() || Null.Items() != nil {
		t.Fatal("zero Value must be null")
	}

	s := Scalar("5")
	if s.IsNull() || s.IsArray() || s.Text() != "5" || s.Len() != 1 {
		t.Fatalf("unexpected scalar: %v", s)
	}

	empty := Array()
	if empty.IsNull() || !empty.IsArray() || empty.Len() != 0 {
		t.Fatal("an empty array is present and not null")
	}

	a := Array("a", "b")
	items := a.Items()
	items[0] = "changed"
	if a.Items()[0] != "a" {
		t.Fatal("Items must return a copy")
	}
	if a.String() != "[a, b]" || Null.String() != "null" {
		t.Fatalf("unexpected String output: %s %s", a, Null)
	}
	if a.Equal(Array("a")) || !a.Equal(Array("a", "b")) || Scalar("a").Equal(Array("a")) {
		t.Fatal("Equal compares shape and text")
	}
}

func TestNewParameter(t *testing.T) {
	tests := []struct {
		name    string
		typ     string
		value   Value
		wantErr bool
	}{
		{"scalar", "int", Scalar("5"), false},
		{"array", "int[]", Array("1", "2"), false},
		{"empty array", "string[]", Array(), false},
		{"null with no value", "null", Null, false},
		{"object key", "object", Scalar("w1"), false},
		{"typed object array", "object[];Shape", Array("s1"), false},
		{"null with empty scalar", "null", Scalar(""), false},
		{"null with empty array", "null", Array(), false},
		{"null with value", "null", Scalar("x"), true},
		{"null with non-empty array", "null", Array(""), true},
		{"missing value", "int", Null, true},
		{"array type scalar value", "int[]", Scalar("1"), true},
		{"scalar type array value", "int", Array("1"), true},
		{"empty type", "  ", Scalar("1"), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			param, err := NewParameter(tt.typ, tt.value)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidArgument) {
					t.Fatalf("expected ErrInvalidArgument, got: %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if IsNullTypeName(tt.typ) && !param.Value.IsNull() {
				t.Fatalf("null parameter stored %v, want Null", param.Value)
			}
		})
	}
}

func TestObjectDefinition(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		def := mustDefine(t, " Widget ")
		if def.TypeName() != "Widget" {
			t.Fatalf("type name not trimmed: %q", def.TypeName())
		}
		if def.Lifetime() != LifetimeInstance || def.IsStatic() || def.IgnoreCase() || def.ParamCount() != 0 {
			t.Fatal("unexpected defaults")
		}
	})

	t.Run("empty type name rejected", func(t *testing.T) {
		if _, err := NewObjectDefinition(""); !errors.Is(err, ErrInvalidArgument) {
			t.Fatalf("expected ErrInvalidArgument, got: %v", err)
		}
	})

	t.Run("app domain requires assembly", func(t *testing.T) {
		def := mustDefine(t, "Widget")
		if err := def.SetAppDomain("remote"); !errors.Is(err, ErrInvalidArgument) {
			t.Fatalf("expected ErrInvalidArgument, got: %v", err)
		}
		if err := def.SetAssembly("core"); err != nil {
			t.Fatalf("SetAssembly: %v", err)
		}
		if err := def.SetAppDomain("remote"); err != nil {
			t.Fatalf("SetAppDomain: %v", err)
		}
		if err := def.SetAssembly(""); !errors.Is(err, ErrInvalidArgument) {
			t.Fatalf("clearing the assembly under an app domain must fail, got: %v", err)
		}
	})

	t.Run("static requires method name", func(t *testing.T) {
		def := mustDefine(t, "Widget")
		if err := def.SetStatic(""); !errors.Is(err, ErrInvalidArgument) {
			t.Fatalf("expected ErrInvalidArgument, got: %v", err)
		}
		if err := def.SetStatic("Create"); err != nil {
			t.Fatalf("SetStatic: %v", err)
		}
		if !def.IsStatic() || def.MethodName() != "Create" {
			t.Fatal("static flag not set")
		}
		def.ClearStatic()
		if def.IsStatic() || def.MethodName() != "" {
			t.Fatal("ClearStatic must drop the method name")
		}
	})

	t.Run("invalid lifetime rejected", func(t *testing.T) {
		def := mustDefine(t, "Widget")
		if err := def.SetLifetime(Lifetime(7)); !errors.Is(err, ErrInvalidArgument) {
			t.Fatalf("expected ErrInvalidArgument, got: %v", err)
		}
	})

	t.Run("method calls keep order", func(t *testing.T) {
		def := mustDefine(t, "Widget")
		a := mustCall(t, "A", false)
		b := mustCall(t, "B", false)
		c := mustCall(t, "C", true)

		_ = def.AddMethodCall(a)
		_ = def.AddMethodCall(c)
		if err := def.InsertMethodCall(1, b); err != nil {
			t.Fatalf("InsertMethodCall: %v", err)
		}

		var names []string
		for _, m := range def.MethodCalls() {
			names = append(names, m.MethodName())
		}
		if len(names) != 3 || names[0] != "A" || names[1] != "B" || names[2] != "C" {
			t.Fatalf("got %v", names)
		}

		if err := def.RemoveMethodCall(0); err != nil {
			t.Fatalf("RemoveMethodCall: %v", err)
		}
		if def.MethodCallCount() != 2 || def.MethodCalls()[0].MethodName() != "B" {
			t.Fatal("RemoveMethodCall removed the wrong call")
		}

		if err := def.InsertMethodCall(5, a); !errors.Is(err, ErrInvalidArgument) {
			t.Fatalf("expected ErrInvalidArgument, got: %v", err)
		}
		if err := def.RemoveMethodCall(2); !errors.Is(err, ErrInvalidArgument) {
			t.Fatalf("expected ErrInvalidArgument, got: %v", err)
		}
		if err := def.AddMethodCall(nil); !errors.Is(err, ErrInvalidArgument) {
			t.Fatalf("expected ErrInvalidArgument, got: %v", err)
		}
	})

	t.Run("empty method name rejected", func(t *testing.T) {
		if _, err := NewMethodCall(" ", false); !errors.Is(err, ErrInvalidArgument) {
			t.Fatalf("expected ErrInvalidArgument, got: %v", err)
		}
	})

	t.Run("clone is deep", func(t *testing.T) {
		def := mustDefine(t, "Widget", p("int", Scalar("5")), p("string", Scalar("hi")))
		_ = def.AddMethodCall(mustCall(t, "Attach", false, p("object", Scalar("w2"))))

		c := def.Clone()
		if !c.Equal(def) {
			t.Fatal("clone must equal the original")
		}

		_ = c.AddParameter("int", Scalar("1"))
		c.MethodCalls()[0].MustAddParameter("int", Scalar("2"))
		if def.ParamCount() != 2 || def.MethodCalls()[0].ParamCount() != 1 {
			t.Fatal("mutating the clone changed the original")
		}
		if c.Equal(def) {
			t.Fatal("diverged clone must not be equal")
		}
	})
}
