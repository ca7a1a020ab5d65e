package kiln

import (
	"fmt"
)

// materialize turns declared parameters into call arguments. Object
// parameters are resolved through res, so nested failures come back with
// their own key context and are returned unchanged.
func (f *Factory) materialize(key string, params []Parameter, res *resolution) ([]any, error) {
	args := make([]any, len(params))
	for i, p := range params {
		arg, err := f.materializeOne(key, i, p, res)
		if err != nil {
			return nil, err
		}
		args[i] = arg
	}
	return args, nil
}

func (f *Factory) materializeOne(key string, i int, p Parameter, res *resolution) (any, error) {
	spec, err := f.registry.ResolveTypeName(p.Type)
	if err != nil {
		return nil, &ConstructionError{TypeName: p.Type, Member: fmt.Sprintf("parameter %d", i), Err: err}
	}

	switch {
	case spec.IsNull():
		return nil, nil

	case spec.IsLiteral():
		var v any
		if spec.Array {
			v, err = ConvertArray(spec, p.Value.Items())
		} else {
			v, err = ConvertScalar(spec, p.Value.Text())
		}
		if err != nil {
			return nil, &DefinitionSourceError{Key: key, Err: fmt.Errorf("parameter %d: %w", i, err)}
		}
		return v, nil

	case !spec.Array:
		return f.resolve(p.Value.Text(), res)
	}

	keys := p.Value.Items()
	items := make([]any, len(keys))
	for j, k := range keys {
		obj, err := f.resolve(k, res)
		if err != nil {
			return nil, err
		}
		items[j] = obj
	}

	elem := spec.ElemType()
	if elem == anyType {
		return items, nil
	}
	arr, err := MakeTypedArray(elem, items)
	if err != nil {
		return nil, &ConstructionError{TypeName: spec.String(), Member: fmt.Sprintf("parameter %d", i), Err: err}
	}
	return arr, nil
}
