package kiln

import (
	"fmt"
	"slices"
	"strings"
)

// Parameter is one positional (type, value) pair of a constructor, factory
// method or method call.
type Parameter struct {
	Type  string
	Value Value
}

// NewParameter checks the pairing rules between a type name and its value:
// null takes no value, every other type takes one, and array types take
// array values. An empty scalar or empty array given for null is stored as
// [Null].
func NewParameter(typeName string, v Value) (Parameter, error) {
	name := strings.TrimSpace(typeName)
	switch {
	case name == "":
		return Parameter{}, &ArgumentError{Arg: "type", Reason: "type name is empty"}
	case IsNullTypeName(name):
		if !v.isEmpty() {
			return Parameter{}, &ArgumentError{Arg: "value", Reason: "a null-typed parameter cannot carry a value"}
		}
		v = Null
	case v.IsNull():
		return Parameter{}, &ArgumentError{Arg: "value", Reason: fmt.Sprintf("parameter of type %s requires a value", name)}
	case IsArrayTypeName(name) != v.IsArray():
		if v.IsArray() {
			return Parameter{}, &ArgumentError{Arg: "value", Reason: fmt.Sprintf("scalar type %s given an array value", name)}
		}
		return Parameter{}, &ArgumentError{Arg: "value", Reason: fmt.Sprintf("array type %s given a scalar value", name)}
	}
	return Parameter{Type: name, Value: v}, nil
}

// Equal reports whether both parameters have the same type and value.
func (p Parameter) Equal(o Parameter) bool {
	return p.Type == o.Type && p.Value.Equal(o.Value)
}

// ObjectPart holds what constructor definitions and method calls share: an
// optional member name, its case sensitivity and an append-only parameter
// list.
type ObjectPart struct {
	methodName string
	ignoreCase bool
	params     []Parameter
}

// MethodName returns the member name, or "" when none is set.
func (p *ObjectPart) MethodName() string { return p.methodName }
// IgnoreCase reports whether member names match case-insensitively.
func (p *ObjectPart) IgnoreCase() bool { return p.ignoreCase }

// SetIgnoreCase controls whether member names are matched case-insensitively.
func (p *ObjectPart) SetIgnoreCase(ignore bool) { p.ignoreCase = ignore }

// AddParameter appends a parameter, rejecting pairs that break the rules of
// [NewParameter].
func (p *ObjectPart) AddParameter(typeName string, v Value) error {
	param, err := NewParameter(typeName, v)
	if err != nil {
		return err
	}
	p.params = append(p.params, param)
	return nil
}

// MustAddParameter is like AddParameter but panics on error. It is meant for
// definitions written in code.
func (p *ObjectPart) MustAddParameter(typeName string, v Value) {
	if err := p.AddParameter(typeName, v); err != nil {
		panic(err)
	}
}

// ParamCount returns the number of parameters.
func (p *ObjectPart) ParamCount() int { return len(p.params) }

// Parameters returns a copy of the parameter list in order.
func (p *ObjectPart) Parameters() []Parameter { return slices.Clone(p.params) }

func (p *ObjectPart) clone() ObjectPart {
	return ObjectPart{methodName: p.methodName, ignoreCase: p.ignoreCase, params: slices.Clone(p.params)}
}

func (p *ObjectPart) equal(o *ObjectPart) bool {
	return p.methodName == o.methodName &&
		p.ignoreCase == o.ignoreCase &&
		slices.EqualFunc(p.params, o.params, Parameter.Equal)
}

// MethodCallDefinition describes a method or property setter applied to an
// object after construction.
type MethodCallDefinition struct {
	ObjectPart
	isProperty bool
}

// NewMethodCall returns a method call for name. When isProperty is set, name
// selects a property setter instead of a method.
func NewMethodCall(name string, isProperty bool) (*MethodCallDefinition, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, &ArgumentError{Arg: "methodName", Reason: "method name is empty"}
	}
	return &MethodCallDefinition{ObjectPart: ObjectPart{methodName: name}, isProperty: isProperty}, nil
}

// IsProperty reports whether the call assigns a property.
func (m *MethodCallDefinition) IsProperty() bool { return m.isProperty }

// Clone returns a deep copy.
func (m *MethodCallDefinition) Clone() *MethodCallDefinition {
	return &MethodCallDefinition{ObjectPart: m.ObjectPart.clone(), isProperty: m.isProperty}
}

// Equal compares name, case sensitivity, kind and parameters.
func (m *MethodCallDefinition) Equal(o *MethodCallDefinition) bool {
	if m == nil || o == nil {
		return m == o
	}
	return m.isProperty == o.isProperty && m.ObjectPart.equal(&o.ObjectPart)
}

// ObjectDefinition describes how to construct one object: its type, the
// constructor or static factory arguments, the calls applied afterwards and
// how long the result is cached.
type ObjectDefinition struct {
	ObjectPart
	appDomain   string
	assembly    string
	typeName    string
	isStatic    bool
	methodCalls []*MethodCallDefinition
	lifetime    Lifetime
}

// NewObjectDefinition returns an Instance-lifetime definition for typeName
// with no parameters.
func NewObjectDefinition(typeName string) (*ObjectDefinition, error) {
	d := &ObjectDefinition{}
	if err := d.SetTypeName(typeName); err != nil {
		return nil, err
	}
	return d, nil
}

// TypeName returns the registered type name.
func (d *ObjectDefinition) TypeName() string { return d.typeName }
// Assembly returns the assembly the type is registered in, or "".
func (d *ObjectDefinition) Assembly() string { return d.assembly }
// AppDomain returns the stored app domain, or "".
func (d *ObjectDefinition) AppDomain() string { return d.appDomain }
// IsStatic reports whether a static factory method builds the object.
func (d *ObjectDefinition) IsStatic() bool { return d.isStatic }
// Lifetime returns how long constructed instances are cached.
func (d *ObjectDefinition) Lifetime() Lifetime {
	return d.lifetime
}

// SetTypeName replaces the type name. It must not be empty.
func (d *ObjectDefinition) SetTypeName(typeName string) error {
	typeName = strings.TrimSpace(typeName)
	if typeName == "" {
		return &ArgumentError{Arg: "typeName", Reason: "type name is empty"}
	}
	d.typeName = typeName
	return nil
}

// SetAssembly sets the registry assembly the type is looked up in. An empty
// assembly is rejected while an app domain is set.
func (d *ObjectDefinition) SetAssembly(assembly string) error {
	assembly = strings.TrimSpace(assembly)
	if assembly == "" && d.appDomain != "" {
		return &ArgumentError{Arg: "assembly", Reason: "assembly is required when an app domain is set"}
	}
	d.assembly = assembly
	return nil
}

// SetAppDomain records the execution domain hint. It requires an assembly.
func (d *ObjectDefinition) SetAppDomain(appDomain string) error {
	appDomain = strings.TrimSpace(appDomain)
	if appDomain != "" && d.assembly == "" {
		return &ArgumentError{Arg: "appDomain", Reason: "app domain requires an assembly"}
	}
	d.appDomain = appDomain
	return nil
}

// SetStatic makes the definition construct through the named static factory
// method instead of a constructor.
func (d *ObjectDefinition) SetStatic(methodName string) error {
	methodName = strings.TrimSpace(methodName)
	if methodName == "" {
		return &ArgumentError{Arg: "methodName", Reason: "a static definition requires a factory method name"}
	}
	d.isStatic = true
	d.methodName = methodName
	return nil
}

// ClearStatic reverts to constructor construction and drops the method name.
func (d *ObjectDefinition) ClearStatic() {
	d.isStatic = false
	d.methodName = ""
}

// SetLifetime sets the caching lifetime.
func (d *ObjectDefinition) SetLifetime(l Lifetime) error {
	if !l.valid() {
		return &ArgumentError{Arg: "instantiationLifetime", Reason: fmt.Sprintf("unknown lifetime %d", l)}
	}
	d.lifetime = l
	return nil
}

// MethodCalls returns the post-construction calls in order. The slice is a
// copy; the definitions are shared.
func (d *ObjectDefinition) MethodCalls() []*MethodCallDefinition {
	return slices.Clone(d.methodCalls)
}

// MethodCallCount returns the number of method calls.
func (d *ObjectDefinition) MethodCallCount() int { return len(d.methodCalls) }

// AddMethodCall appends m to the calls applied after construction.
func (d *ObjectDefinition) AddMethodCall(m *MethodCallDefinition) error {
	return d.InsertMethodCall(len(d.methodCalls), m)
}

// InsertMethodCall inserts m at position i, which may equal the call count.
func (d *ObjectDefinition) InsertMethodCall(i int, m *MethodCallDefinition) error {
	if m == nil {
		return &ArgumentError{Arg: "methodCall", Reason: "method call is nil"}
	}
	if i < 0 || i > len(d.methodCalls) {
		return &ArgumentError{Arg: "index", Reason: fmt.Sprintf("index %d out of range [0,%d]", i, len(d.methodCalls))}
	}
	d.methodCalls = slices.Insert(d.methodCalls, i, m)
	return nil
}

// RemoveMethodCall removes the call at position i.
func (d *ObjectDefinition) RemoveMethodCall(i int) error {
	if i < 0 || i >= len(d.methodCalls) {
		return &ArgumentError{Arg: "index", Reason: fmt.Sprintf("index %d out of range [0,%d)", i, len(d.methodCalls))}
	}
	d.methodCalls = slices.Delete(d.methodCalls, i, i+1)
	return nil
}

// Clone returns a deep copy. Stores hand out clones so that callers never
// share a definition with an in-flight construction.
func (d *ObjectDefinition) Clone() *ObjectDefinition {
	c := *d
	c.ObjectPart = d.ObjectPart.clone()
	c.methodCalls = make([]*MethodCallDefinition, len(d.methodCalls))
	for i, m := range d.methodCalls {
		c.methodCalls[i] = m.Clone()
	}
	return &c
}

// Equal compares every field, including method calls in order.
func (d *ObjectDefinition) Equal(o *ObjectDefinition) bool {
	if d == nil || o == nil {
		return d == o
	}
	return d.appDomain == o.appDomain &&
		d.assembly == o.assembly &&
		d.typeName == o.typeName &&
		d.isStatic == o.isStatic &&
		d.lifetime == o.lifetime &&
		d.ObjectPart.equal(&o.ObjectPart) &&
		slices.EqualFunc(d.methodCalls, o.methodCalls, (*MethodCallDefinition).Equal)
}
