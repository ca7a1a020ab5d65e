package config

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/ARTM2000/kiln"
)

// property is one property_N node of a FLAT namespace.
type property struct {
	name   string
	values []string
}

func (p property) first() string {
	if len(p.values) == 0 {
		return ""
	}
	return p.values[0]
}

// namespace returns the single child of root called name, nil when absent.
func namespace(root Node, name string) (Node, error) {
	found := childrenNamed(root, name)
	switch len(found) {
	case 0:
		return nil, nil
	case 1:
		return found[0], nil
	default:
		return nil, fmt.Errorf("%w: %d namespaces named %q", kiln.ErrAmbiguousMatch, len(found), name)
	}
}

func flatProperties(ns Node) ([]property, error) {
	var props []property
	for _, pn := range numbered(ns, prefixProperty) {
		name, ok := firstValue(pn, attrName)
		if !ok {
			return nil, fmt.Errorf("%s/%s: %w: %s", ns.Name(), pn.Name(), kiln.ErrMissingField, attrName)
		}
		p := property{name: name}
		for _, vn := range numbered(pn, prefixValue) {
			v, _ := firstValue(vn, attrNodeValue)
			p.values = append(p.values, v)
		}
		props = append(props, p)
	}
	return props, nil
}

// ---------------------------------------------------------------------------
// Read
// ---------------------------------------------------------------------------

func readFlat(root Node, key string) (*kiln.ObjectDefinition, error) {
	// Dotted names are the parameter and method namespaces of other keys.
	if strings.Contains(key, ".") {
		return nil, &kiln.DefinitionSourceError{Key: key, Err: kiln.ErrDefinitionNotFound}
	}
	obj, err := flatToNested(root, key)
	if err != nil {
		return nil, &kiln.DefinitionSourceError{Key: key, Err: err}
	}
	def, err := parseObject(obj)
	if err != nil {
		return nil, &kiln.DefinitionSourceError{Key: key, Err: err}
	}
	return def, nil
}

// flatToNested synthesizes the NESTED object node for key from its FLAT
// namespaces. The tree itself is not modified.
func flatToNested(root Node, key string) (Node, error) {
	ns, err := namespace(root, key)
	if err != nil {
		return nil, err
	}
	if ns == nil {
		return nil, kiln.ErrDefinitionNotFound
	}
	props, err := flatProperties(ns)
	if err != nil {
		return nil, err
	}

	obj := NewNode(prefixObject + "0")
	obj.SetAttribute(attrName, []string{key})

	var suffixes []string
	for _, p := range props {
		switch {
		case p.name == propMethods:
			suffixes = p.values
		case slices.Contains(objectAttributes, p.name):
			obj.AddChild(simpleNode(p.name, p.first()))
		}
	}

	params, err := flatParameters(root, key+"."+nodeParameters)
	if err != nil {
		return nil, err
	}
	if params != nil {
		obj.AddChild(params)
	}

	if len(suffixes) == 0 {
		return obj, nil
	}
	methods := NewNode(nodeMethods)
	for i, suffix := range suffixes {
		m, err := flatMethod(root, key+"."+suffix)
		if err != nil {
			return nil, err
		}
		m.name = fmt.Sprintf("%s%d", prefixMethod, i)
		methods.AddChild(m)
	}
	obj.AddChild(methods)
	return obj, nil
}

func flatMethod(root Node, name string) (*TreeNode, error) {
	ns, err := namespace(root, name)
	if err != nil {
		return nil, err
	}
	if ns == nil {
		return nil, fmt.Errorf("%w: method namespace %q", kiln.ErrMissingField, name)
	}
	props, err := flatProperties(ns)
	if err != nil {
		return nil, err
	}

	m := NewNode(prefixMethod)
	for _, p := range props {
		if slices.Contains(methodAttributes, p.name) {
			m.AddChild(simpleNode(p.name, p.first()))
		}
	}

	params, err := flatParameters(root, name+"."+nodeParameters)
	if err != nil {
		return nil, err
	}
	if params != nil {
		m.AddChild(params)
	}
	return m, nil
}

// flatParameters converts the parameter namespace called name. Each
// property is one parameter: its name is the type and its values the items.
// It returns nil when the namespace does not exist.
func flatParameters(root Node, name string) (Node, error) {
	ns, err := namespace(root, name)
	if err != nil || ns == nil {
		return nil, err
	}
	props, err := flatProperties(ns)
	if err != nil {
		return nil, err
	}

	out := NewNode(nodeParameters)
	for i, p := range props {
		pn := NewNode(fmt.Sprintf("%s%d", prefixParameter, i))
		pn.SetAttribute(attrType, []string{p.name})
		switch {
		case len(p.values) > 0:
			pn.SetAttribute(attrValue, p.values)
		case kiln.IsArrayTypeName(p.name):
			pn.SetAttribute(attrValue, []string{})
		}
		out.AddChild(pn)
	}
	return out, nil
}

// ---------------------------------------------------------------------------
// Write
// ---------------------------------------------------------------------------

// propertyWriter appends property_N nodes to a namespace.
type propertyWriter struct {
	ns   *TreeNode
	next int
}

func (w *propertyWriter) add(name string, values ...string) {
	pn := NewNode(fmt.Sprintf("%s%d", prefixProperty, w.next))
	pn.SetAttribute(attrName, []string{name})
	for j, v := range values {
		vn := NewNode(fmt.Sprintf("%s%d", prefixValue, j))
		vn.SetAttribute(attrNodeValue, []string{v})
		pn.AddChild(vn)
	}
	w.ns.AddChild(pn)
	w.next++
}

func writeFlat(root Node, key string, def *kiln.ObjectDefinition) {
	ns := NewNode(key)
	w := &propertyWriter{ns: ns}
	w.add(attrTypeName, def.TypeName())
	if a := def.Assembly(); a != "" {
		w.add(attrAssembly, a)
	}
	if d := def.AppDomain(); d != "" {
		w.add(attrAppDomain, d)
	}
	w.add(attrIgnoreCase, strconv.FormatBool(def.IgnoreCase()))
	w.add(attrLifetime, def.Lifetime().String())
	if def.IsStatic() {
		w.add(attrMethodName, def.MethodName())
	}

	calls := def.MethodCalls()
	suffixes := methodSuffixes(calls)
	if len(suffixes) > 0 {
		w.add(propMethods, suffixes...)
	}
	root.AddChild(ns)

	if def.ParamCount() > 0 {
		root.AddChild(flatParametersNode(key+"."+nodeParameters, def.Parameters()))
	}

	for i, call := range calls {
		name := key + "." + suffixes[i]
		mns := NewNode(name)
		mw := &propertyWriter{ns: mns}
		mw.add(attrMethodName, call.MethodName())
		mw.add(attrIgnoreCase, strconv.FormatBool(call.IgnoreCase()))
		mw.add(attrIsProperty, strconv.FormatBool(call.IsProperty()))
		root.AddChild(mns)

		if call.ParamCount() > 0 {
			root.AddChild(flatParametersNode(name+"."+nodeParameters, call.Parameters()))
		}
	}
}

func flatParametersNode(name string, params []kiln.Parameter) Node {
	ns := NewNode(name)
	w := &propertyWriter{ns: ns}
	for _, p := range params {
		w.add(p.Type, p.Value.Items()...)
	}
	return ns
}

// methodSuffixes names the namespace of each method call. Repeated method
// names get _2, _3 and so on; "parameters" is reserved.
func methodSuffixes(calls []*kiln.MethodCallDefinition) []string {
	used := map[string]bool{nodeParameters: true}
	out := make([]string, len(calls))
	for i, call := range calls {
		name := call.MethodName()
		suffix := name
		for n := 2; used[suffix]; n++ {
			suffix = name + "_" + strconv.Itoa(n)
		}
		used[suffix] = true
		out[i] = suffix
	}
	return out
}

func deleteFlat(root Node, key string) {
	for _, ns := range childrenNamed(root, key) {
		props, _ := flatProperties(ns)
		for _, p := range props {
			if p.name != propMethods {
				continue
			}
			for _, suffix := range p.values {
				root.RemoveChild(key + "." + suffix + "." + nodeParameters)
				root.RemoveChild(key + "." + suffix)
			}
		}
	}
	root.RemoveChild(key + "." + nodeParameters)
	root.RemoveChild(key)
}

func keysFlat(root Node) []string {
	var keys []string
	for _, c := range root.Children() {
		if name := c.Name(); !strings.Contains(name, ".") && !slices.Contains(keys, name) {
			keys = append(keys, name)
		}
	}
	return keys
}
