package config

import (
	"cmp"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/ARTM2000/kiln"
)

// numbered returns the children of n named prefix+N, ordered by N. Other
// children are skipped.
func numbered(n Node, prefix string) []Node {
	if n == nil {
		return nil
	}

	type indexed struct {
		idx  int
		node Node
	}
	var items []indexed
	for _, c := range n.Children() {
		rest, ok := strings.CutPrefix(c.Name(), prefix)
		if !ok {
			continue
		}
		i, err := strconv.Atoi(rest)
		if err != nil || i < 0 {
			continue
		}
		items = append(items, indexed{i, c})
	}
	slices.SortStableFunc(items, func(a, b indexed) int { return cmp.Compare(a.idx, b.idx) })

	out := make([]Node, len(items))
	for i, it := range items {
		out[i] = it.node
	}
	return out
}

// nextIndex returns one past the highest N among children named prefix+N.
func nextIndex(n Node, prefix string) int {
	next := 0
	for _, c := range n.Children() {
		if rest, ok := strings.CutPrefix(c.Name(), prefix); ok {
			if i, err := strconv.Atoi(rest); err == nil && i >= next {
				next = i + 1
			}
		}
	}
	return next
}

func simpleNode(name, value string) Node {
	n := NewNode(name)
	n.SetAttribute(attrValue, []string{value})
	return n
}

// simple reads a nested simple attribute: a child called attr holding the
// text in its value attribute.
func simple(n Node, attr string) (string, bool) {
	c := n.GetChild(attr)
	if c == nil {
		return "", false
	}
	return firstValue(c, attrValue)
}

// parseBool reads a flag attribute with the same rules as a bool literal.
func parseBool(attr, s string) (bool, error) {
	spec, err := kiln.ParseTypeName("bool")
	if err != nil {
		return false, err
	}
	v, err := kiln.ConvertScalar(spec, s)
	if err != nil {
		return false, fmt.Errorf("%s: %w", attr, err)
	}
	return v.(bool), nil
}

// ---------------------------------------------------------------------------
// Read
// ---------------------------------------------------------------------------

func findNested(root Node, key string) []Node {
	var found []Node
	for _, c := range numbered(root, prefixObject) {
		if name, ok := firstValue(c, attrName); ok && name == key {
			found = append(found, c)
		}
	}
	return found
}

func readNested(root Node, key string) (*kiln.ObjectDefinition, error) {
	found := findNested(root, key)
	switch len(found) {
	case 0:
		return nil, &kiln.DefinitionSourceError{Key: key, Err: kiln.ErrDefinitionNotFound}
	case 1:
	default:
		return nil, &kiln.DefinitionSourceError{Key: key, Err: fmt.Errorf("%w: %d object nodes", kiln.ErrAmbiguousMatch, len(found))}
	}

	def, err := parseObject(found[0])
	if err != nil {
		return nil, &kiln.DefinitionSourceError{Key: key, Err: err}
	}
	return def, nil
}

// parseObject is the one canonical parser; FLAT input is converted to this
// shape before it gets here.
func parseObject(n Node) (*kiln.ObjectDefinition, error) {
	typeName, ok := simple(n, attrTypeName)
	if !ok || strings.TrimSpace(typeName) == "" {
		return nil, fmt.Errorf("%w: %s", kiln.ErrMissingField, attrTypeName)
	}
	def, err := kiln.NewObjectDefinition(typeName)
	if err != nil {
		return nil, err
	}

	if v, ok := simple(n, attrAssembly); ok {
		if err := def.SetAssembly(v); err != nil {
			return nil, err
		}
	}
	if v, ok := simple(n, attrAppDomain); ok {
		if err := def.SetAppDomain(v); err != nil {
			return nil, err
		}
	}
	if v, ok := simple(n, attrIgnoreCase); ok {
		b, err := parseBool(attrIgnoreCase, v)
		if err != nil {
			return nil, err
		}
		def.SetIgnoreCase(b)
	}
	if v, ok := simple(n, attrLifetime); ok {
		l, err := kiln.ParseLifetime(v)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", attrLifetime, err)
		}
		if err := def.SetLifetime(l); err != nil {
			return nil, err
		}
	}
	if v, ok := simple(n, attrMethodName); ok && strings.TrimSpace(v) != "" {
		if err := def.SetStatic(v); err != nil {
			return nil, err
		}
	}

	if err := parseParameters(n.GetChild(nodeParameters), &def.ObjectPart); err != nil {
		return nil, err
	}

	for i, m := range numbered(n.GetChild(nodeMethods), prefixMethod) {
		call, err := parseMethod(m)
		if err != nil {
			return nil, fmt.Errorf("method %d: %w", i, err)
		}
		if err := def.AddMethodCall(call); err != nil {
			return nil, err
		}
	}
	return def, nil
}

func parseMethod(n Node) (*kiln.MethodCallDefinition, error) {
	name, ok := simple(n, attrMethodName)
	if !ok || strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("%w: %s", kiln.ErrMissingField, attrMethodName)
	}

	isProperty := false
	if v, ok := simple(n, attrIsProperty); ok {
		b, err := parseBool(attrIsProperty, v)
		if err != nil {
			return nil, err
		}
		isProperty = b
	}

	call, err := kiln.NewMethodCall(name, isProperty)
	if err != nil {
		return nil, err
	}
	if v, ok := simple(n, attrIgnoreCase); ok {
		b, err := parseBool(attrIgnoreCase, v)
		if err != nil {
			return nil, err
		}
		call.SetIgnoreCase(b)
	}

	if err := parseParameters(n.GetChild(nodeParameters), &call.ObjectPart); err != nil {
		return nil, err
	}
	return call, nil
}

// parseParameters appends the parameter_N children of n to part in order.
// Literal values of built-in types are parsed here so that bad text fails
// at read time.
func parseParameters(n Node, part *kiln.ObjectPart) error {
	for i, pn := range numbered(n, prefixParameter) {
		typeName, ok := firstValue(pn, attrType)
		if !ok {
			return fmt.Errorf("parameter %d: %w: %s", i, kiln.ErrMissingField, attrType)
		}

		values := pn.GetAttribute(attrValue)
		var v kiln.Value
		switch {
		case values == nil:
			v = kiln.Null
		case kiln.IsArrayTypeName(typeName):
			v = kiln.Array(values...)
		case len(values) == 1:
			v = kiln.Scalar(values[0])
		case len(values) == 0 && kiln.IsNullTypeName(typeName):
			v = kiln.Null
		default:
			return fmt.Errorf("parameter %d: scalar type %s has %d values", i, typeName, len(values))
		}

		if err := part.AddParameter(typeName, v); err != nil {
			return fmt.Errorf("parameter %d: %w", i, err)
		}
		if err := checkLiteral(typeName, v); err != nil {
			return fmt.Errorf("parameter %d: %w", i, err)
		}
	}
	return nil
}

func checkLiteral(typeName string, v kiln.Value) error {
	spec, err := kiln.ParseTypeName(typeName)
	if err != nil || !spec.IsLiteral() {
		return nil
	}
	if spec.Array {
		_, err = kiln.ConvertArray(spec, v.Items())
	} else {
		_, err = kiln.ConvertScalar(spec, v.Text())
	}
	return err
}

// ---------------------------------------------------------------------------
// Write
// ---------------------------------------------------------------------------

func writeNested(root Node, key string, def *kiln.ObjectDefinition) {
	obj := NewNode(fmt.Sprintf("%s%d", prefixObject, nextIndex(root, prefixObject)))
	obj.SetAttribute(attrName, []string{key})

	obj.AddChild(simpleNode(attrTypeName, def.TypeName()))
	if a := def.Assembly(); a != "" {
		obj.AddChild(simpleNode(attrAssembly, a))
	}
	if d := def.AppDomain(); d != "" {
		obj.AddChild(simpleNode(attrAppDomain, d))
	}
	obj.AddChild(simpleNode(attrIgnoreCase, strconv.FormatBool(def.IgnoreCase())))
	obj.AddChild(simpleNode(attrLifetime, def.Lifetime().String()))
	if def.IsStatic() {
		obj.AddChild(simpleNode(attrMethodName, def.MethodName()))
	}
	if def.ParamCount() > 0 {
		obj.AddChild(parametersNode(def.Parameters()))
	}

	if calls := def.MethodCalls(); len(calls) > 0 {
		methods := NewNode(nodeMethods)
		for i, call := range calls {
			m := NewNode(fmt.Sprintf("%s%d", prefixMethod, i))
			m.AddChild(simpleNode(attrMethodName, call.MethodName()))
			m.AddChild(simpleNode(attrIgnoreCase, strconv.FormatBool(call.IgnoreCase())))
			m.AddChild(simpleNode(attrIsProperty, strconv.FormatBool(call.IsProperty())))
			if call.ParamCount() > 0 {
				m.AddChild(parametersNode(call.Parameters()))
			}
			methods.AddChild(m)
		}
		obj.AddChild(methods)
	}

	root.AddChild(obj)
}

func parametersNode(params []kiln.Parameter) Node {
	n := NewNode(nodeParameters)
	for i, p := range params {
		pn := NewNode(fmt.Sprintf("%s%d", prefixParameter, i))
		pn.SetAttribute(attrType, []string{p.Type})
		if !p.Value.IsNull() {
			pn.SetAttribute(attrValue, p.Value.Items())
		}
		n.AddChild(pn)
	}
	return n
}

func deleteNested(root Node, key string) {
	for _, n := range findNested(root, key) {
		root.RemoveChild(n.Name())
	}
}

func keysNested(root Node) []string {
	var keys []string
	for _, c := range numbered(root, prefixObject) {
		if name, ok := firstValue(c, attrName); ok {
			keys = append(keys, name)
		}
	}
	return keys
}
