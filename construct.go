package kiln

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

// ---------------------------------------------------------------------------
// Direct construction
// ---------------------------------------------------------------------------

// CreateObject constructs a registered type directly from explicit
// arguments, with no definition lookup and no caching:
//
//	w, err := reg.CreateObject("Widget", kiln.WithArgs(int32(5), "hi"))
func (r *Registry) CreateObject(typeName string, opts ...CreateOption) (any, error) {
	cfg := newCreateConfig(opts)
	e, err := r.lookup(cfg.assembly, strings.TrimSpace(typeName))
	if err != nil {
		return nil, &ConstructionError{TypeName: typeName, Err: err}
	}
	return r.create(e, cfg.method, cfg.ignoreCase, cfg.args)
}

// CreateObjectOf is CreateObject for a type handle instead of a name.
func (r *Registry) CreateObjectOf(t reflect.Type, opts ...CreateOption) (any, error) {
	cfg := newCreateConfig(opts)
	e, err := r.lookupType(t)
	if err != nil {
		return nil, &ConstructionError{TypeName: fmt.Sprint(t), Err: err}
	}
	return r.create(e, cfg.method, cfg.ignoreCase, cfg.args)
}

// create selects and invokes a constructor of e, or the static factory
// method when method is set.
func (r *Registry) create(e *typeEntry, method string, ignoreCase bool, args []any) (any, error) {
	var cands []callable
	member := ""

	if method != "" {
		member = method
		for name, fns := range e.factories {
			if nameMatches(name, method, ignoreCase) {
				for _, fn := range fns {
					cands = append(cands, callable{fn: fn})
				}
			}
		}
		if len(cands) == 0 {
			return nil, &ConstructionError{TypeName: e.String(), Member: member,
				Err: fmt.Errorf("%w: static factory method %q", ErrMemberNotFound, method)}
		}
	} else {
		for _, fn := range e.ctors {
			cands = append(cands, callable{fn: fn})
		}
		if len(cands) == 0 {
			return nil, &ConstructionError{TypeName: e.String(), Err: fmt.Errorf("%w: type has no constructors", ErrNoMatch)}
		}
	}

	m, err := selectOverload(cands, args)
	if err != nil {
		return nil, &ConstructionError{TypeName: e.String(), Member: member, Err: err}
	}
	out, err := m.invoke()
	if err != nil {
		return nil, &ConstructionError{TypeName: e.String(), Member: member, Err: err}
	}
	return out[0].Interface(), nil
}

// ---------------------------------------------------------------------------
// Post-construction calls
// ---------------------------------------------------------------------------

// ApplyCall applies one method call or property assignment to target using
// already materialized arguments.
func (r *Registry) ApplyCall(target any, call *MethodCallDefinition, args []any) error {
	if target == nil {
		return &ConstructionError{TypeName: "nil", Member: call.MethodName(), Err: fmt.Errorf("%w: target is nil", ErrMemberNotFound)}
	}
	typeName := reflect.TypeOf(target).String()

	var err error
	if call.IsProperty() {
		err = r.setProperty(target, call.MethodName(), call.IgnoreCase(), args)
	} else {
		err = r.callMethod(target, call.MethodName(), call.IgnoreCase(), args)
	}
	if err != nil {
		return &ConstructionError{TypeName: typeName, Member: call.MethodName(), Err: err}
	}
	return nil
}

// methodCandidates collects registered method closures and exported Go
// methods of target named name.
func (r *Registry) methodCandidates(target reflect.Value, name string, ignoreCase bool) []callable {
	var cands []callable
	if e := r.entryFor(target.Type()); e != nil {
		for n, fns := range e.methods {
			if nameMatches(n, name, ignoreCase) {
				for _, fn := range fns {
					cands = append(cands, callable{fn: fn, bound: []reflect.Value{target}})
				}
			}
		}
	}

	t := target.Type()
	for i := range t.NumMethod() {
		if nameMatches(t.Method(i).Name, name, ignoreCase) {
			cands = append(cands, callable{fn: target.Method(i)})
		}
	}
	return cands
}

func (r *Registry) callMethod(target any, name string, ignoreCase bool, args []any) error {
	cands := r.methodCandidates(reflect.ValueOf(target), name, ignoreCase)
	if len(cands) == 0 {
		return fmt.Errorf("%w: method %q", ErrMemberNotFound, name)
	}
	m, err := selectOverload(cands, args)
	if err != nil {
		return err
	}
	_, err = m.invoke()
	return err
}

// setProperty prefers a Set<Name> method and falls back to an exported
// settable field.
func (r *Registry) setProperty(target any, name string, ignoreCase bool, args []any) error {
	if len(args) != 1 {
		return fmt.Errorf("%w: property %q takes one value, got %d", ErrNoMatch, name, len(args))
	}

	tv := reflect.ValueOf(target)
	if cands := r.methodCandidates(tv, "Set"+name, ignoreCase); len(cands) > 0 {
		m, err := selectOverload(cands, args)
		if err != nil {
			return err
		}
		_, err = m.invoke()
		return err
	}

	v := tv
	for v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface {
		if v.IsNil() {
			return fmt.Errorf("%w: property %q on nil", ErrMemberNotFound, name)
		}
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return fmt.Errorf("%w: property %q on %s", ErrMemberNotFound, name, tv.Type())
	}

	for _, sf := range reflect.VisibleFields(v.Type()) {
		if !sf.IsExported() || sf.Anonymous || !nameMatches(sf.Name, name, ignoreCase) {
			continue
		}
		fv, err := v.FieldByIndexErr(sf.Index)
		if err != nil {
			return fmt.Errorf("%w: property %q: %v", ErrMemberNotFound, name, err)
		}
		if !fv.CanSet() {
			return fmt.Errorf("%w: property %q is not settable; construct a pointer", ErrMemberNotFound, name)
		}
		val, _, ok := coerce(args[0], fv.Type())
		if !ok {
			return fmt.Errorf("%w: property %q of type %s cannot take %s", ErrNoMatch, name, fv.Type(), describeArgs(args))
		}
		fv.Set(val)
		return nil
	}
	return fmt.Errorf("%w: property %q on %s", ErrMemberNotFound, name, tv.Type())
}

func nameMatches(have, want string, ignoreCase bool) bool {
	if ignoreCase {
		return strings.EqualFold(have, want)
	}
	return have == want
}

// ---------------------------------------------------------------------------
// Overload selection
// ---------------------------------------------------------------------------

// callable is one overload candidate. bound holds leading arguments fixed
// before selection, such as the receiver of a registered method.
type callable struct {
	fn    reflect.Value
	bound []reflect.Value
}

// match is a candidate with its converted arguments and conversion cost.
type match struct {
	fn   reflect.Value
	in   []reflect.Value
	cost int
}

// selectOverload picks the candidate of matching arity that needs the
// cheapest conversions. Equal best costs are ambiguous.
func selectOverload(cands []callable, args []any) (match, error) {
	var best []match
	for _, c := range cands {
		m, ok := c.bind(args)
		if !ok {
			continue
		}
		switch {
		case len(best) == 0 || m.cost < best[0].cost:
			best = []match{m}
		case m.cost == best[0].cost:
			best = append(best, m)
		}
	}

	switch len(best) {
	case 0:
		return match{}, fmt.Errorf("%w: no overload of %d candidates accepts %s", ErrNoMatch, len(cands), describeArgs(args))
	case 1:
		return best[0], nil
	default:
		return match{}, fmt.Errorf("%w: %d overloads accept %s equally well", ErrAmbiguousMatch, len(best), describeArgs(args))
	}
}

func (c callable) bind(args []any) (match, bool) {
	ft := c.fn.Type()
	if ft.NumIn() != len(c.bound)+len(args) {
		return match{}, false
	}

	m := match{fn: c.fn, in: make([]reflect.Value, 0, ft.NumIn())}
	for i, b := range c.bound {
		v, cost, ok := coerceValue(b, ft.In(i))
		if !ok {
			return match{}, false
		}
		m.in = append(m.in, v)
		m.cost += cost
	}
	for i, a := range args {
		v, cost, ok := coerce(a, ft.In(len(c.bound)+i))
		if !ok {
			return match{}, false
		}
		m.in = append(m.in, v)
		m.cost += cost
	}
	return m, true
}

// invoke calls the selected function. A panic or a non-nil trailing error
// result is returned as an error.
func (m match) invoke() (out []reflect.Value, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("invocation panicked: %v", r)
		}
	}()

	if m.fn.Type().IsVariadic() {
		out = m.fn.CallSlice(m.in)
	} else {
		out = m.fn.Call(m.in)
	}

	if n := len(out); n > 0 && m.fn.Type().Out(n-1).Implements(errorType) && (n > 1 || m.fn.Type().Out(0) == errorType) {
		if errv := out[n-1]; !errv.IsNil() {
			return nil, errv.Interface().(error)
		}
	}
	return out, nil
}

// coerce converts an argument to the parameter type to, returning the
// conversion cost: 0 identical, 1 assignable or same-kind named conversion,
// 2 implicit numeric widening.
func coerce(arg any, to reflect.Type) (reflect.Value, int, bool) {
	if arg == nil {
		if nilable(to) {
			return reflect.Zero(to), 0, true
		}
		return reflect.Value{}, 0, false
	}
	return coerceValue(reflect.ValueOf(arg), to)
}

func coerceValue(v reflect.Value, to reflect.Type) (reflect.Value, int, bool) {
	if v.Kind() == reflect.Interface && !v.Type().AssignableTo(to) {
		if v.IsNil() {
			if nilable(to) {
				return reflect.Zero(to), 0, true
			}
			return reflect.Value{}, 0, false
		}
		v = v.Elem()
	}

	from := v.Type()
	switch {
	case from == to:
		return v, 0, true
	case from.AssignableTo(to):
		out := reflect.New(to).Elem()
		out.Set(v)
		return out, 1, true
	case widens(from.Kind(), to.Kind()):
		return v.Convert(to), 2, true
	case from.Kind() == to.Kind() && basicKind(from.Kind()) && from.ConvertibleTo(to):
		return v.Convert(to), 1, true
	case from.Kind() == reflect.Slice && to.Kind() == reflect.Slice:
		out := reflect.MakeSlice(to, v.Len(), v.Len())
		for i := range v.Len() {
			ev, _, ok := coerceValue(v.Index(i), to.Elem())
			if !ok {
				return reflect.Value{}, 0, false
			}
			out.Index(i).Set(ev)
		}
		return out, 2, true
	}
	return reflect.Value{}, 0, false
}

// implicitWidening lists, per source kind, the kinds it converts to without
// loss.
var implicitWidening = func() map[reflect.Kind][]reflect.Kind {
	w := map[reflect.Kind][]reflect.Kind{
		reflect.Int8:    {reflect.Int16, reflect.Int32, reflect.Int64, reflect.Int, reflect.Float32, reflect.Float64},
		reflect.Uint8:   {reflect.Int16, reflect.Uint16, reflect.Int32, reflect.Uint32, reflect.Int64, reflect.Uint64, reflect.Int, reflect.Uint, reflect.Float32, reflect.Float64},
		reflect.Int16:   {reflect.Int32, reflect.Int64, reflect.Int, reflect.Float32, reflect.Float64},
		reflect.Uint16:  {reflect.Int32, reflect.Uint32, reflect.Int64, reflect.Uint64, reflect.Int, reflect.Uint, reflect.Float32, reflect.Float64},
		reflect.Int32:   {reflect.Int64, reflect.Int, reflect.Float32, reflect.Float64},
		reflect.Uint32:  {reflect.Int64, reflect.Uint64, reflect.Uint, reflect.Float32, reflect.Float64},
		reflect.Int64:   {reflect.Float32, reflect.Float64},
		reflect.Uint64:  {reflect.Float32, reflect.Float64},
		reflect.Int:     {reflect.Int64, reflect.Float32, reflect.Float64},
		reflect.Uint:    {reflect.Uint64, reflect.Float32, reflect.Float64},
		reflect.Float32: {reflect.Float64},
	}
	if strconv.IntSize == 64 {
		w[reflect.Int64] = append(w[reflect.Int64], reflect.Int)
		w[reflect.Uint64] = append(w[reflect.Uint64], reflect.Uint)
		w[reflect.Uint32] = append(w[reflect.Uint32], reflect.Int)
	}
	return w
}()

func widens(from, to reflect.Kind) bool {
	for _, k := range implicitWidening[from] {
		if k == to {
			return true
		}
	}
	return false
}

func basicKind(k reflect.Kind) bool {
	return (k >= reflect.Bool && k <= reflect.Complex128) || k == reflect.String
}

func describeArgs(args []any) string {
	types := make([]string, len(args))
	for i, a := range args {
		if a == nil {
			types[i] = "nil"
		} else {
			types[i] = reflect.TypeOf(a).String()
		}
	}
	return "(" + strings.Join(types, ", ") + ")"
}
