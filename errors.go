package kiln

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
)

var (
	// ErrRegistryFrozen is returned when a type is registered after the
	// registry has been handed to a [Factory].
	ErrRegistryFrozen = errors.New("registry frozen")

	// ErrTypeNotRegistered is returned when no registration matches the
	// requested type name or handle.
	ErrTypeNotRegistered = errors.New("type not registered")

	// ErrDuplicateType is returned when the same name is registered twice in
	// the same assembly.
	ErrDuplicateType = errors.New("duplicate type")

	// ErrNoMatch is returned when no constructor, factory method or method
	// accepts the supplied arguments.
	ErrNoMatch = errors.New("no matching member")

	// ErrAmbiguousMatch is returned when several candidates fit equally well,
	// or a lookup finds more than one entry where exactly one is expected.
	ErrAmbiguousMatch = errors.New("ambiguous match")

	// ErrMemberNotFound is returned when a named method or property does not
	// exist on the target.
	ErrMemberNotFound = errors.New("member not found")

	// ErrDefinitionNotFound is returned when a store holds no definition for a
	// key.
	ErrDefinitionNotFound = errors.New("definition not found")

	// ErrMissingField is returned when a stored definition lacks a required
	// field.
	ErrMissingField = errors.New("required field missing")

	// ErrCircularDependency is matched by every [InstantiationCycleError].
	ErrCircularDependency = errors.New("circular dependency detected")

	// ErrInvalidArgument is matched by every [ArgumentError].
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrInvalidFunction is returned when a registered constructor, factory or
	// method is not a function of an accepted shape.
	ErrInvalidFunction = errors.New("invalid function")
)

// UnknownTypeError reports a type name that is neither a scalar nor a
// registered type.
type UnknownTypeError struct {
	Name string
}

func (e *UnknownTypeError) Error() string {
	return fmt.Sprintf("unknown type %q", e.Name)
}

// ValueConversionError reports a literal that cannot be parsed as its
// declared scalar type.
type ValueConversionError struct {
	Type  string
	Value string
	Err   error
}

func (e *ValueConversionError) Error() string {
	return fmt.Sprintf("cannot convert %q to %s: %v", e.Value, e.Type, e.Err)
}

func (e *ValueConversionError) Unwrap() error { return e.Err }

// ArrayElementTypeMismatchError reports an array item that is not assignable
// to the array's declared element type.
type ArrayElementTypeMismatchError struct {
	Index int
	Want  reflect.Type
	Got   reflect.Type
}

func (e *ArrayElementTypeMismatchError) Error() string {
	got := "nil"
	if e.Got != nil {
		got = e.Got.String()
	}
	return fmt.Sprintf("array element %d: %s is not assignable to %s", e.Index, got, e.Want)
}

// InstantiationCycleError is returned when a key is requested again while it
// is still being resolved. Chain lists the keys from the outermost request to
// the repeated one.
type InstantiationCycleError struct {
	Key   string
	Chain []string
}

func (e *InstantiationCycleError) Error() string {
	return fmt.Sprintf("%s: %s", ErrCircularDependency, strings.Join(e.Chain, " -> "))
}

// Is matches [ErrCircularDependency].
func (e *InstantiationCycleError) Is(target error) bool {
	return target == ErrCircularDependency
}

// ArgumentError reports a violated invariant on the definition model.
type ArgumentError struct {
	Arg    string
	Reason string
}

func (e *ArgumentError) Error() string {
	return fmt.Sprintf("invalid argument %s: %s", e.Arg, e.Reason)
}

// Is matches [ErrInvalidArgument].
func (e *ArgumentError) Is(target error) bool {
	return target == ErrInvalidArgument
}

// DefinitionSourceError is returned when a stored definition is missing or
// cannot be read. The cause is always the stored data, never reflection.
type DefinitionSourceError struct {
	Key string
	Err error
}

func (e *DefinitionSourceError) Error() string {
	return fmt.Sprintf("definition %q: %v", e.Key, e.Err)
}

func (e *DefinitionSourceError) Unwrap() error { return e.Err }

// ConstructionError is returned when a type cannot be resolved or a
// constructor, factory method, method or property cannot be selected or
// invoked.
type ConstructionError struct {
	TypeName string
	Member   string
	Err      error
}

func (e *ConstructionError) Error() string {
	if e.Member == "" {
		return fmt.Sprintf("constructing %s: %v", e.TypeName, e.Err)
	}
	return fmt.Sprintf("constructing %s: %s: %v", e.TypeName, e.Member, e.Err)
}

func (e *ConstructionError) Unwrap() error { return e.Err }

// ObjectCreationError wraps any failure of [Factory.CreateDefinedObject] for
// a key, except cycles, which are returned as they are.
type ObjectCreationError struct {
	Key      string
	TypeName string
	Err      error
}

func (e *ObjectCreationError) Error() string {
	if e.TypeName == "" {
		return fmt.Sprintf("creating object %q: %v", e.Key, e.Err)
	}
	return fmt.Sprintf("creating object %q (%s): %v", e.Key, e.TypeName, e.Err)
}

func (e *ObjectCreationError) Unwrap() error { return e.Err }

// wrapCreation wraps err for key unless it already carries key context or is
// a cycle.
func wrapCreation(key, typeName string, err error) error {
	var cycle *InstantiationCycleError
	if errors.As(err, &cycle) {
		return err
	}
	var created *ObjectCreationError
	if errors.As(err, &created) {
		return err
	}
	return &ObjectCreationError{Key: key, TypeName: typeName, Err: err}
}

// wrapSource tags err as a definition-source failure for key.
func wrapSource(key string, err error) error {
	var src *DefinitionSourceError
	if errors.As(err, &src) {
		return err
	}
	return &DefinitionSourceError{Key: key, Err: err}
}
