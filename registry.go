package kiln

import (
	"fmt"
	"reflect"
	"slices"
	"strings"
	"sync"
)

var errorType = reflect.TypeFor[error]()

// typeEntry holds everything registered under one type name.
type typeEntry struct {
	name      string
	assembly  string
	typ       reflect.Type
	ctors     []reflect.Value
	factories map[string][]reflect.Value
	methods   map[string][]reflect.Value
}

func (e *typeEntry) String() string {
	if e.assembly == "" {
		return e.name
	}
	return e.assembly + ":" + e.name
}

// Registry maps type names to constructor, static factory and method
// closures. It is filled at start-up and frozen once handed to a [Factory];
// after that it is read-only and safe for concurrent use.
type Registry struct {
	mu sync.RWMutex

	byName map[string][]*typeEntry
	byType map[reflect.Type][]*typeEntry

	frozen bool
}

// NewRegistry creates an empty [Registry] ready for registration.
func NewRegistry() *Registry {
	return &Registry{
		byName: make(map[string][]*typeEntry),
		byType: make(map[reflect.Type][]*typeEntry),
	}
}

// Register adds a constructible type under name. At least one [Constructor]
// or an [Of] option is required to fix the Go type:
//
//	reg.Register("Widget", kiln.Constructor(NewWidget), kiln.Method("Attach", attach))
//
// Built-in scalar names cannot be registered.
func (r *Registry) Register(name string, opts ...TypeOption) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.frozen {
		return ErrRegistryFrozen
	}

	name = strings.TrimSpace(name)
	if name == "" || strings.ContainsAny(name, "[];") {
		return &ArgumentError{Arg: "name", Reason: fmt.Sprintf("%q is not a valid type name", name)}
	}
	if _, err := ParseTypeName(name); err == nil || name == nullTypeName {
		return &ArgumentError{Arg: "name", Reason: fmt.Sprintf("%q is a built-in type", name)}
	}

	e := &typeEntry{
		name:      name,
		factories: make(map[string][]reflect.Value),
		methods:   make(map[string][]reflect.Value),
	}
	for _, opt := range opts {
		if err := opt(e); err != nil {
			return fmt.Errorf("registering %s: %w", name, err)
		}
	}

	if e.typ == nil {
		if len(e.ctors) == 0 {
			return fmt.Errorf("registering %s: %w: no constructor and no Of option", name, ErrInvalidFunction)
		}
		e.typ = e.ctors[0].Type().Out(0)
	}

	for mname, fns := range e.methods {
		for _, fn := range fns {
			if recv := fn.Type().In(0); !e.typ.AssignableTo(recv) {
				return fmt.Errorf("registering %s: %w: method %s receiver %s does not accept %s",
					name, ErrInvalidFunction, mname, recv, e.typ)
			}
		}
	}

	for _, other := range r.byName[name] {
		if other.assembly == e.assembly {
			return fmt.Errorf("%w: %s", ErrDuplicateType, e)
		}
	}

	r.byName[name] = append(r.byName[name], e)
	r.byType[e.typ] = append(r.byType[e.typ], e)
	return nil
}

// Freeze rejects further registrations. [NewFactory] calls it.
func (r *Registry) Freeze() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.frozen = true
}

// Frozen reports whether registration is closed.
func (r *Registry) Frozen() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.frozen
}

// Names returns the registered type names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.byName))
	for n := range r.byName {
		names = append(names, n)
	}
	slices.Sort(names)
	return names
}

// lookup finds the entry for name, narrowed to assembly when one is given.
func (r *Registry) lookup(assembly, name string) (*typeEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var found []*typeEntry
	for _, e := range r.byName[name] {
		if assembly == "" || e.assembly == assembly {
			found = append(found, e)
		}
	}

	switch len(found) {
	case 0:
		if assembly != "" {
			return nil, fmt.Errorf("%w: %s in assembly %q", ErrTypeNotRegistered, name, assembly)
		}
		return nil, fmt.Errorf("%w: %s", ErrTypeNotRegistered, name)
	case 1:
		return found[0], nil
	default:
		return nil, fmt.Errorf("%w: %s is registered in %d assemblies", ErrAmbiguousMatch, name, len(found))
	}
}

// lookupType finds the entry that produces exactly t.
func (r *Registry) lookupType(t reflect.Type) (*typeEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	found := r.byType[t]
	switch len(found) {
	case 0:
		return nil, fmt.Errorf("%w: %s", ErrTypeNotRegistered, t)
	case 1:
		return found[0], nil
	default:
		return nil, fmt.Errorf("%w: %s is registered under %d names", ErrAmbiguousMatch, t, len(found))
	}
}

// entryFor returns the single entry producing t, or nil.
func (r *Registry) entryFor(t reflect.Type) *typeEntry {
	e, err := r.lookupType(t)
	if err != nil {
		return nil
	}
	return e
}

// ResolveTypeName parses name as a built-in type first and then as a
// registered type, alone or with an array suffix. For object[];Elem the
// element type is resolved too.
func (r *Registry) ResolveTypeName(name string) (TypeSpec, error) {
	spec, err := ParseTypeName(name)
	if err == nil {
		if spec.Elem != "" {
			elem, err := r.ResolveTypeName(spec.Elem)
			if err != nil {
				return TypeSpec{}, err
			}
			spec.complexType = elem.Type()
			spec.scalar = nil
		}
		return spec, nil
	}

	base, array, elem, ok := splitTypeName(name)
	if !ok || elem != "" {
		return TypeSpec{}, &UnknownTypeError{Name: name}
	}
	e, lerr := r.lookup("", base)
	if lerr != nil {
		return TypeSpec{}, &UnknownTypeError{Name: name}
	}
	return TypeSpec{Name: base, Array: array, complexType: e.typ}, nil
}

// checkFunc validates fn as a registered function. Constructors and
// factories must return T or (T, error); methods may return anything and
// must take at least a receiver.
func checkFunc(fn any, producer bool) (reflect.Value, error) {
	val := reflect.ValueOf(fn)
	if !val.IsValid() || val.Kind() != reflect.Func {
		return reflect.Value{}, fmt.Errorf("%w: %T is not a function", ErrInvalidFunction, fn)
	}
	if val.IsNil() {
		return reflect.Value{}, fmt.Errorf("%w: nil function", ErrInvalidFunction)
	}

	typ := val.Type()
	if !producer {
		if typ.NumIn() == 0 {
			return reflect.Value{}, fmt.Errorf("%w: method %s must take a receiver", ErrInvalidFunction, typ)
		}
		return val, nil
	}

	if typ.NumOut() == 0 || typ.NumOut() > 2 {
		return reflect.Value{}, fmt.Errorf("%w: %s must return (T) or (T, error)", ErrInvalidFunction, typ)
	}
	if typ.NumOut() == 2 && !typ.Out(1).Implements(errorType) {
		return reflect.Value{}, fmt.Errorf("%w: second return value of %s must implement error", ErrInvalidFunction, typ)
	}
	return val, nil
}
