package kiln

import (
	"fmt"
	"reflect"
)

// ---------------------------------------------------------------------------
// Generic helpers
// ---------------------------------------------------------------------------

// Create is a generic helper around [Factory.CreateDefinedObject] that
// asserts the result type:
//
//	w, err := kiln.Create[*Widget](f, "w1")
func Create[T any](f *Factory, key string, opts ...CreateOption) (T, error) {
	var zero T

	obj, err := f.CreateDefinedObject(key, opts...)
	if err != nil {
		return zero, err
	}

	out, ok := obj.(T)
	if !ok {
		return zero, fmt.Errorf("object %q: cannot convert %T to %s", key, obj, reflect.TypeFor[T]())
	}
	return out, nil
}

// New is a generic helper that constructs the type registered for T
// directly, without a definition:
//
//	w, err := kiln.New[*Widget](f, kiln.WithArgs(int32(5), "hi"))
func New[T any](f *Factory, opts ...CreateOption) (T, error) {
	var zero T
	t := reflect.TypeFor[T]()

	obj, err := f.CreateObjectOf(t, opts...)
	if err != nil {
		return zero, err
	}

	out, ok := obj.(T)
	if !ok {
		return zero, fmt.Errorf("cannot convert %T to %s", obj, t)
	}
	return out, nil
}
