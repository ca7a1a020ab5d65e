package kiln

import (
	"fmt"
	"strings"
)

// Lifetime controls how long the [Factory] keeps an instance built from a
// definition.
type Lifetime int

const (
	// LifetimeInstance is the default lifetime. A new instance is constructed on every
	// request for the key.
	LifetimeInstance Lifetime = iota

	// LifetimeOncePerTopLevelObject caches the instance for the duration of one
	// outermost [Factory.CreateDefinedObject] call. Every reference to the key
	// inside that call shares it; the next top-level call builds a new one.
	LifetimeOncePerTopLevelObject

	// LifetimeFactory caches the instance for the lifetime of the [Factory], until
	// [Factory.ClearFactoryLifetimeObjects] is called.
	LifetimeFactory
)

// String returns the stored name of the lifetime.
func (l Lifetime) String() string {
	switch l {
	case LifetimeInstance:
		return "Instance"
	case LifetimeOncePerTopLevelObject:
		return "OncePerTopLevelObject"
	case LifetimeFactory:
		return "Factory"
	default:
		return "unknown"
	}
}

func (l Lifetime) valid() bool {
	return l >= LifetimeInstance && l <= LifetimeFactory
}

// ParseLifetime parses a stored lifetime name, ignoring case.
func ParseLifetime(s string) (Lifetime, error) {
	for _, l := range []Lifetime{LifetimeInstance, LifetimeOncePerTopLevelObject, LifetimeFactory} {
		if strings.EqualFold(strings.TrimSpace(s), l.String()) {
			return l, nil
		}
	}
	return LifetimeInstance, fmt.Errorf("unknown instantiation lifetime %q", s)
}
