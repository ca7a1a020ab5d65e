package kiln

import (
	"errors"
	"testing"
)

// Shared test types, constructors and helpers used across test files.

type testWidget struct {
	Size  int32
	Label string
	Color string
	Tags  []string

	title    string
	attached []any
}

func newTestWidget(size int32, label string) *testWidget {
	return &testWidget{Size: size, Label: label}
}

func newTestWidgetLabel(label string) *testWidget {
	return &testWidget{Label: label}
}

func (w *testWidget) SetTitle(s string) { w.title = s }
func (w *testWidget) Title() string     { return w.title }
func (w *testWidget) Attach(v any)      { w.attached = append(w.attached, v) }
func (w *testWidget) Fail() error       { return errors.New("widget failed") }
func (w *testWidget) Explode()          { panic("boom") }

type testBox struct{ Content any }

func newTestBox(content any) *testBox { return &testBox{Content: content} }

type testPair struct{ Left, Right any }

func newTestPair(left, right any) *testPair { return &testPair{Left: left, Right: right} }

type testShape interface{ Area() float64 }

type testSquare struct{ Side float64 }

func (s *testSquare) Area() float64 { return s.Side * s.Side }

func newTestSquare(side float64) *testSquare { return &testSquare{Side: side} }

type testCanvas struct{ Shapes []testShape }

func newTestCanvas(shapes []testShape) *testCanvas { return &testCanvas{Shapes: shapes} }

type testBag struct{ Items []any }

func newTestBag(items []any) *testBag { return &testBag{Items: items} }

type testNum struct{ Kind string }

// newTestRegistry registers every test type.
func newTestRegistry(t testing.TB) *Registry {
	t.Helper()
	r := NewRegistry()
	mustRegister(t, r, "Widget",
		Constructor(newTestWidget),
		Constructor(newTestWidgetLabel),
		FactoryMethod("Create", newTestWidgetLabel),
		Method("Resize", func(w *testWidget, size int32) { w.Size = size }),
	)
	mustRegister(t, r, "Box", Constructor(newTestBox))
	mustRegister(t, r, "Pair", Constructor(newTestPair))
	mustRegister(t, r, "Shape", Of[testShape]())
	mustRegister(t, r, "Square", Constructor(newTestSquare))
	mustRegister(t, r, "Canvas", Constructor(newTestCanvas))
	mustRegister(t, r, "Bag", Constructor(newTestBag))
	return r
}

// mustRegister calls t.Fatal if registration fails.
func mustRegister(t testing.TB, r *Registry, name string, opts ...TypeOption) {
	t.Helper()
	if err := r.Register(name, opts...); err != nil {
		t.Fatalf("Register(%q): %v", name, err)
	}
}

// mustDefine builds a definition for typeName with the given parameters.
func mustDefine(t testing.TB, typeName string, params ...Parameter) *ObjectDefinition {
	t.Helper()
	def, err := NewObjectDefinition(typeName)
	if err != nil {
		t.Fatalf("NewObjectDefinition(%q): %v", typeName, err)
	}
	for _, p := range params {
		if err := def.AddParameter(p.Type, p.Value); err != nil {
			t.Fatalf("AddParameter(%q, %v): %v", p.Type, p.Value, err)
		}
	}
	return def
}

// mustCall builds a method call with the given parameters.
func mustCall(t testing.TB, name string, isProperty bool, params ...Parameter) *MethodCallDefinition {
	t.Helper()
	call, err := NewMethodCall(name, isProperty)
	if err != nil {
		t.Fatalf("NewMethodCall(%q): %v", name, err)
	}
	for _, p := range params {
		if err := call.AddParameter(p.Type, p.Value); err != nil {
			t.Fatalf("AddParameter(%q, %v): %v", p.Type, p.Value, err)
		}
	}
	return call
}

// mustSave calls t.Fatal if the definition cannot be stored.
func mustSave(t testing.TB, f *Factory, key string, def *ObjectDefinition) {
	t.Helper()
	if err := f.SaveDefinition(key, def); err != nil {
		t.Fatalf("SaveDefinition(%q): %v", key, err)
	}
}

func withLifetime(t testing.TB, def *ObjectDefinition, l Lifetime) *ObjectDefinition {
	t.Helper()
	if err := def.SetLifetime(l); err != nil {
		t.Fatalf("SetLifetime(%v): %v", l, err)
	}
	return def
}

func p(typeName string, v Value) Parameter { return Parameter{Type: typeName, Value: v} }
