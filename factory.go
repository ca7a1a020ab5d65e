package kiln

import (
	"errors"
	"reflect"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const (
	tracerName = "github.com/ARTM2000/kiln"

	tierFactory  = "factory"
	tierTopLevel = "top_level"
)

// Factory builds object graphs from stored definitions. Use [NewFactory] to
// create one. A Factory is safe for concurrent use: the Factory-lifetime
// cache is shared, while cycle tracking and the OncePerTopLevelObject cache
// belong to each top-level call.
type Factory struct {
	registry *Registry
	store    DefinitionStore

	logger  *zap.Logger
	metrics *Metrics
	tracer  trace.Tracer
	domain  string

	mu        sync.RWMutex
	instances map[string]any
}

// NewFactory creates a Factory over reg and store and freezes reg. A nil
// store is replaced by an empty [MemoryStore].
func NewFactory(reg *Registry, store DefinitionStore, opts ...FactoryOption) *Factory {
	if reg == nil {
		reg = NewRegistry()
	}
	if store == nil {
		store = NewMemoryStore()
	}
	reg.Freeze()

	f := &Factory{
		registry:  reg,
		store:     store,
		logger:    zap.NewNop(),
		tracer:    otel.Tracer(tracerName),
		instances: make(map[string]any),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Registry returns the frozen registry.
func (f *Factory) Registry() *Registry { return f.registry }
// Store returns the definition store.
func (f *Factory) Store() DefinitionStore { return f.store }

// ---------------------------------------------------------------------------
// Definitions
// ---------------------------------------------------------------------------

// GetDefinition returns the definition stored under key.
func (f *Factory) GetDefinition(key string) (*ObjectDefinition, error) {
	def, err := f.store.GetDefinition(key)
	if err != nil {
		return nil, wrapSource(key, err)
	}
	return def, nil
}

// SaveDefinition replaces any definition stored under key. Cached
// Factory-lifetime instances of key are kept until
// [Factory.ClearFactoryLifetimeObjects].
func (f *Factory) SaveDefinition(key string, def *ObjectDefinition) error {
	return f.store.SaveDefinition(key, def)
}

// DeleteDefinition removes key from the store. Cached instances are kept.
func (f *Factory) DeleteDefinition(key string) error {
	return f.store.DeleteDefinition(key)
}

// ClearFactoryLifetimeObjects drops every cached Factory-lifetime instance.
// Later requests construct them again.
func (f *Factory) ClearFactoryLifetimeObjects() {
	f.mu.Lock()
	n := len(f.instances)
	f.instances = make(map[string]any)
	f.mu.Unlock()

	f.logger.Debug("factory lifetime objects cleared", zap.Int("count", n))
}

// ---------------------------------------------------------------------------
// Construction
// ---------------------------------------------------------------------------

// CreateObject constructs a registered type directly, without a definition.
// See [Registry.CreateObject].
func (f *Factory) CreateObject(typeName string, opts ...CreateOption) (any, error) {
	return f.registry.CreateObject(typeName, opts...)
}

// CreateObjectOf constructs the type registered for t directly.
func (f *Factory) CreateObjectOf(t reflect.Type, opts ...CreateOption) (any, error) {
	return f.registry.CreateObjectOf(t, opts...)
}

// CreateDefinedObject constructs the object defined under key, resolving
// object parameters through their own definitions. [WithArgs] replaces the
// definition's parameters; such a call bypasses the lifetime caches and
// always returns a fresh object.
//
// Failures are [ObjectCreationError]s, except instantiation cycles, which
// are returned as [InstantiationCycleError].
func (f *Factory) CreateDefinedObject(key string, opts ...CreateOption) (obj any, err error) {
	cfg := newCreateConfig(opts)
	res := newResolution()
	start := time.Now()

	_, span := f.tracer.Start(cfg.ctx, "kiln.CreateDefinedObject", trace.WithAttributes(
		attribute.String("kiln.key", key),
		attribute.String("kiln.call_id", res.id),
	))
	defer func() {
		f.metrics.observe(start, err)
		if err != nil {
			if errors.Is(err, ErrCircularDependency) {
				f.metrics.cycle()
			}
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			f.logger.Debug("create failed", zap.String("key", key), zap.String("call_id", res.id), zap.Error(err))
		}
		span.End()
	}()

	if cfg.override {
		return f.createFresh(key, cfg.args, res)
	}
	return f.resolve(key, res)
}

// resolution is the state of one top-level call. It is passed down the
// recursion and never shared between calls.
type resolution struct {
	id    string
	chain []string
	seen  map[string]struct{}
	local map[string]any
}

func newResolution() *resolution {
	return &resolution{
		id:    uuid.NewString(),
		seen:  make(map[string]struct{}),
		local: make(map[string]any),
	}
}

func (r *resolution) enter(key string) {
	r.seen[key] = struct{}{}
	r.chain = append(r.chain, key)
}

func (r *resolution) leave(key string) {
	delete(r.seen, key)
	if n := len(r.chain); n > 0 && r.chain[n-1] == key {
		r.chain = r.chain[:n-1]
	}
}

// resolve returns the object for key, from a lifetime cache or by
// constructing it.
func (f *Factory) resolve(key string, res *resolution) (any, error) {
	if obj, ok := res.local[key]; ok {
		f.metrics.cacheHit(tierTopLevel)
		f.logger.Debug("cache hit", zap.String("key", key), zap.String("tier", tierTopLevel), zap.String("call_id", res.id))
		return obj, nil
	}
	if obj, ok := f.cached(key); ok {
		f.metrics.cacheHit(tierFactory)
		f.logger.Debug("cache hit", zap.String("key", key), zap.String("tier", tierFactory), zap.String("call_id", res.id))
		return obj, nil
	}

	// A key stays in the cycle set until its method calls are done. Cached
	// lifetimes are found in the probes above before reaching this check.
	if _, busy := res.seen[key]; busy {
		return nil, &InstantiationCycleError{Key: key, Chain: append(slices.Clone(res.chain), key)}
	}
	res.enter(key)
	defer res.leave(key)

	def, err := f.definition(key)
	if err != nil {
		return nil, wrapCreation(key, "", err)
	}

	args, err := f.materialize(key, def.Parameters(), res)
	if err != nil {
		return nil, wrapCreation(key, def.TypeName(), err)
	}

	obj, err := f.instantiate(def, args)
	f.metrics.constructed(def.Lifetime(), err)
	if err != nil {
		return nil, wrapCreation(key, def.TypeName(), err)
	}

	// Until its calls are applied the object is only visible to this call.
	if def.Lifetime() != LifetimeInstance {
		res.local[key] = obj
	}
	if err := f.applyCalls(key, obj, def, res); err != nil {
		delete(res.local, key)
		return nil, wrapCreation(key, def.TypeName(), err)
	}

	if def.Lifetime() == LifetimeFactory {
		delete(res.local, key)
		winner, stored := f.share(key, obj)
		if !stored {
			f.logger.Warn("concurrent construction of factory lifetime object; using the first",
				zap.String("key", key), zap.String("call_id", res.id))
			return winner, nil
		}
	}

	f.logger.Debug("object constructed",
		zap.String("key", key),
		zap.String("type", def.TypeName()),
		zap.Stringer("lifetime", def.Lifetime()),
		zap.String("call_id", res.id),
	)
	return obj, nil
}

// createFresh builds key from explicit arguments, skipping caches and cycle
// tracking for key itself.
func (f *Factory) createFresh(key string, args []any, res *resolution) (any, error) {
	def, err := f.definition(key)
	if err != nil {
		return nil, wrapCreation(key, "", err)
	}

	obj, err := f.instantiate(def, args)
	f.metrics.constructed(def.Lifetime(), err)
	if err != nil {
		return nil, wrapCreation(key, def.TypeName(), err)
	}
	if err := f.applyCalls(key, obj, def, res); err != nil {
		return nil, wrapCreation(key, def.TypeName(), err)
	}
	return obj, nil
}

func (f *Factory) definition(key string) (*ObjectDefinition, error) {
	def, err := f.store.GetDefinition(key)
	if err != nil {
		return nil, wrapSource(key, err)
	}
	if def == nil {
		return nil, &DefinitionSourceError{Key: key, Err: ErrDefinitionNotFound}
	}
	if d := def.AppDomain(); d != "" && d != f.domain {
		f.logger.Warn("app domain isolation is not supported; constructing in the current process",
			zap.String("key", key), zap.String("app_domain", d))
	}
	return def, nil
}

func (f *Factory) instantiate(def *ObjectDefinition, args []any) (any, error) {
	e, err := f.registry.lookup(def.Assembly(), def.TypeName())
	if err != nil {
		return nil, &ConstructionError{TypeName: def.TypeName(), Err: err}
	}
	method := ""
	if def.IsStatic() {
		method = def.MethodName()
	}
	return f.registry.create(e, method, def.IgnoreCase(), args)
}

func (f *Factory) applyCalls(key string, obj any, def *ObjectDefinition, res *resolution) error {
	for _, call := range def.MethodCalls() {
		args, err := f.materialize(key, call.Parameters(), res)
		if err != nil {
			return err
		}
		if err := f.registry.ApplyCall(obj, call, args); err != nil {
			return err
		}
	}
	return nil
}

func (f *Factory) cached(key string) (any, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	obj, ok := f.instances[key]
	return obj, ok
}

// share stores obj under key unless another call stored one first, and
// returns the instance that is kept.
func (f *Factory) share(key string, obj any) (any, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if existing, ok := f.instances[key]; ok {
		return existing, false
	}
	f.instances[key] = obj
	return obj, true
}
