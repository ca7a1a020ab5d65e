package kiln

import (
	"context"
	"fmt"
	"reflect"
	"strings"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// TypeOption configures a type during [Registry.Register].
type TypeOption func(*typeEntry) error

// Constructor adds a constructor overload. fn must return T or (T, error);
// its parameters are matched against the definition's arguments.
func Constructor(fn any) TypeOption {
	return func(e *typeEntry) error {
		val, err := checkFunc(fn, true)
		if err != nil {
			return err
		}
		e.ctors = append(e.ctors, val)
		return nil
	}
}

// FactoryMethod adds a named static factory overload, used by definitions
// marked static. fn must return T or (T, error).
func FactoryMethod(name string, fn any) TypeOption {
	return func(e *typeEntry) error {
		if strings.TrimSpace(name) == "" {
			return fmt.Errorf("%w: factory method name is empty", ErrInvalidFunction)
		}
		val, err := checkFunc(fn, true)
		if err != nil {
			return err
		}
		e.factories[name] = append(e.factories[name], val)
		return nil
	}
}

// Method adds a named method overload. The first parameter of fn receives
// the constructed object. Exported Go methods of the object are found
// without registration; Method is for overloads and helpers.
func Method(name string, fn any) TypeOption {
	return func(e *typeEntry) error {
		if strings.TrimSpace(name) == "" {
			return fmt.Errorf("%w: method name is empty", ErrInvalidFunction)
		}
		val, err := checkFunc(fn, false)
		if err != nil {
			return err
		}
		e.methods[name] = append(e.methods[name], val)
		return nil
	}
}

// InAssembly places the type in a named assembly. Definitions naming an
// assembly only see types registered in it.
func InAssembly(assembly string) TypeOption {
	return func(e *typeEntry) error {
		e.assembly = strings.TrimSpace(assembly)
		return nil
	}
}

// Of fixes the Go type of the registration. Without it the type is the
// return type of the first constructor.
func Of[T any]() TypeOption {
	return func(e *typeEntry) error {
		e.typ = reflect.TypeFor[T]()
		return nil
	}
}

// FactoryOption configures a [Factory].
type FactoryOption func(*Factory)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *zap.Logger) FactoryOption {
	return func(f *Factory) {
		if l != nil {
			f.logger = l
		}
	}
}

// WithMetrics records construction counters and timings into m.
func WithMetrics(m *Metrics) FactoryOption {
	return func(f *Factory) {
		f.metrics = m
	}
}

// WithTracer sets the tracer used for top-level construction spans. The
// default is the global otel tracer provider.
func WithTracer(t trace.Tracer) FactoryOption {
	return func(f *Factory) {
		if t != nil {
			f.tracer = t
		}
	}
}

// WithDomain names the execution domain of this process. Definitions with a
// different app domain are still built here, with a warning.
func WithDomain(domain string) FactoryOption {
	return func(f *Factory) {
		f.domain = domain
	}
}

// createConfig gathers the knobs of a single construction call.
type createConfig struct {
	ctx        context.Context
	args       []any
	override   bool
	assembly   string
	method     string
	ignoreCase bool
}

// CreateOption configures one construction call.
type CreateOption func(*createConfig)

func newCreateConfig(opts []CreateOption) *createConfig {
	cfg := &createConfig{ctx: context.Background()}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// WithArgs supplies constructor arguments directly. For
// [Factory.CreateDefinedObject] they replace the definition's parameters and
// the call skips every cache: the result is always a fresh object.
func WithArgs(args ...any) CreateOption {
	return func(c *createConfig) {
		c.args = args
		c.override = true
	}
}

// WithAssembly narrows the type lookup of direct construction to assembly.
func WithAssembly(assembly string) CreateOption {
	return func(c *createConfig) {
		c.assembly = assembly
	}
}

// WithStaticMethod makes direct construction go through the named static
// factory method.
func WithStaticMethod(name string) CreateOption {
	return func(c *createConfig) {
		c.method = name
	}
}

// WithIgnoreCase matches the static factory name case-insensitively.
func WithIgnoreCase(ignore bool) CreateOption {
	return func(c *createConfig) {
		c.ignoreCase = ignore
	}
}

// WithContext parents the tracing span of the call. Construction itself is
// not cancellable.
func WithContext(ctx context.Context) CreateOption {
	return func(c *createConfig) {
		if ctx != nil {
			c.ctx = ctx
		}
	}
}
