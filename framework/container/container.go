package container

import (
	"errors"
	"fmt"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ── Binding types ─────────────────────────────────────────────────────────────

// Factory builds one service instance. It may call back into the container
// to fetch its own dependencies.
type Factory func(c *Container) (any, error)

// State is the per-identifier resolution marker.
type State string

const (
	// StateRegistered means the factory has not run since registration or reset.
	StateRegistered State = "registered"
	// StateResolving means the factory is running. Never a stable end state.
	StateResolving State = "resolving"
	// StateResolved means the singleton is cached.
	StateResolved State = "resolved"
	// StateFailed means the factory failed; the error is cached until Reset.
	StateFailed State = "failed"
)

var errNilInstance = errors.New("factory returned a nil instance")

// entry is one registration plus its cache slot. Everything except the
// cache slot (state, instance, err, took) is immutable after Register.
type entry struct {
	id       string
	factory  Factory
	deps     []string
	prebuilt bool

	state    State
	instance any
	err      error
	took     time.Duration
}

// ── Container ─────────────────────────────────────────────────────────────────

// Container is the Time OS service container.
//
// It maps identifiers to factories and resolves each identifier to a
// singleton on first Get. A Get that closes a dependency cycle never
// re-enters the running factory; it receives a *Deferred handle instead.
//
// The container serializes access to its registry, but the lock is never
// held while a factory runs. Resolution is meant to run as one logical chain
// at a time.
type Container struct {
	mu sync.Mutex

	id string

	// identifier → registration + cache slot
	entries map[string]*entry

	// identifiers currently being constructed, outermost first
	chain []string

	// resolved callbacks: []func(id, instance)
	afterResolving []func(string, any)

	logger   *zap.Logger
	metrics  *Metrics
	override bool
	maxDepth int
	version  string
}

// New creates an empty container.
func New(opts ...Option) *Container {
	c := &Container{
		id:       uuid.NewString(),
		entries:  make(map[string]*entry),
		logger:   zap.NewNop(),
		maxDepth: DefaultMaxDepth,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ID returns the unique identifier of this container instance.
func (c *Container) ID() string { return c.id }

// ── Registration ──────────────────────────────────────────────────────────────

// Register binds id to a singleton factory. deps documents the identifiers
// the factory is expected to pull; it is used for diagnostics only.
// The factory is not invoked.
//
//	c.Register("AuditProtocol", func(c *container.Container) (any, error) {
//	    logger, err := container.Resolve[*zap.Logger](c, "SmartLogger")
//	    if err != nil {
//	        return nil, err
//	    }
//	    return audit.New(logger), nil
//	}, "SmartLogger")
func (c *Container) Register(id string, factory Factory, deps ...string) error {
	if id == "" {
		return &RegistrationError{ID: id, Reason: "identifier must not be empty"}
	}
	if factory == nil {
		return &RegistrationError{ID: id, Reason: "factory must not be nil"}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	return c.register(&entry{
		id:      id,
		factory: factory,
		deps:    slices.Clone(deps),
		state:   StateRegistered,
	})
}

// Instance registers a pre-built value. The entry is resolved immediately.
//
//	c.Instance("ConfigManager", cfg)
func (c *Container) Instance(id string, instance any, deps ...string) error {
	if id == "" {
		return &RegistrationError{ID: id, Reason: "identifier must not be empty"}
	}
	if instance == nil {
		return &RegistrationError{ID: id, Reason: "instance must not be nil"}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	return c.register(&entry{
		id:       id,
		factory:  func(*Container) (any, error) { return instance, nil },
		deps:     slices.Clone(deps),
		prebuilt: true,
		state:    StateResolved,
		instance: instance,
	})
}

// register is the internal registration helper (must hold mu).
func (c *Container) register(e *entry) error {
	if prev, ok := c.entries[e.id]; ok {
		if prev.state == StateResolving {
			return &RegistrationError{ID: e.id, Reason: "resolution in progress"}
		}
		if !c.override {
			return &RegistrationError{ID: e.id, Reason: "already registered"}
		}
		c.logger.Info("replacing service registration",
			zap.String("service", e.id),
			zap.String("previous_state", string(prev.state)))
	}

	c.entries[e.id] = e
	c.logger.Debug("service registered",
		zap.String("service", e.id),
		zap.Strings("dependencies", e.deps),
		zap.Bool("prebuilt", e.prebuilt))
	return nil
}

// ── Resolution ────────────────────────────────────────────────────────────────

// Get resolves id to its singleton, running the factory on first use.
//
// A Get for an identifier whose factory is still running (a closed cycle)
// returns a *Deferred for that identifier instead of re-entering the factory.
// A failed construction is cached: later calls return the same
// *ServiceConstructionError until Reset.
func (c *Container) Get(id string) (any, error) {
	c.mu.Lock()
	e, ok := c.entries[id]
	if !ok {
		c.mu.Unlock()
		c.metrics.observe(id, outcomeNotFound)
		return nil, &ServiceNotFoundError{ID: id}
	}

	switch e.state {
	case StateResolved:
		instance := e.instance
		c.mu.Unlock()
		c.metrics.observe(id, outcomeCached)
		return instance, nil

	case StateFailed:
		err := e.err
		c.mu.Unlock()
		c.metrics.observe(id, outcomeFailed)
		return nil, err

	case StateResolving:
		chain := c.snapshotChain()
		c.mu.Unlock()
		c.logger.Debug("cycle closed, handing out deferred handle",
			zap.String("service", id),
			zap.Strings("chain", chain))
		c.metrics.observe(id, outcomeDeferred)
		return &Deferred{c: c, id: id}, nil
	}

	if len(c.chain) >= c.maxDepth {
		chain := append(c.snapshotChain(), id)
		c.mu.Unlock()
		c.logger.Warn("resolution depth exceeded",
			zap.String("service", id),
			zap.Int("max_depth", c.maxDepth))
		return nil, &CircularResolutionError{ID: id, Chain: chain}
	}

	e.state = StateResolving
	c.chain = append(c.chain, id)
	chain := c.snapshotChain()
	factory := e.factory
	c.mu.Unlock()

	start := time.Now()
	instance, err := c.runFactory(factory)
	took := time.Since(start)

	c.mu.Lock()
	c.popChain(id)
	e.took = took
	if err != nil {
		cerr := &ServiceConstructionError{ID: id, Chain: chain, Err: err}
		e.state = StateFailed
		e.instance = nil
		e.err = cerr
		c.mu.Unlock()

		c.logger.Warn("service construction failed",
			zap.String("service", id),
			zap.Strings("chain", chain),
			zap.Error(err))
		c.metrics.observe(id, outcomeFailed)
		c.metrics.observeDuration(id, took)
		return nil, cerr
	}

	e.state = StateResolved
	e.instance = instance
	callbacks := slices.Clone(c.afterResolving)
	c.mu.Unlock()

	c.logger.Debug("service constructed",
		zap.String("service", id),
		zap.Duration("took", took))
	c.metrics.observe(id, outcomeConstructed)
	c.metrics.observeDuration(id, took)

	for _, cb := range callbacks {
		cb(id, instance)
	}
	return instance, nil
}

// runFactory executes a factory, turning panics and nil instances into errors.
func (c *Container) runFactory(f Factory) (instance any, err error) {
	defer func() {
		if r := recover(); r != nil {
			instance = nil
			err = fmt.Errorf("factory panicked: %v", r)
		}
	}()

	instance, err = f(c)
	if err == nil && instance == nil {
		err = errNilInstance
	}
	return instance, err
}

// snapshotChain copies the current resolution chain (must hold mu).
func (c *Container) snapshotChain() []string {
	return slices.Clone(c.chain)
}

// popChain removes id from the resolution chain (must hold mu).
func (c *Container) popChain(id string) {
	for i := len(c.chain) - 1; i >= 0; i-- {
		if c.chain[i] == id {
			c.chain = slices.Delete(c.chain, i, i+1)
			return
		}
	}
}

// ── Reset ─────────────────────────────────────────────────────────────────────

// Reset clears the cached instance and resolution marker of the given
// identifiers, or of every identifier when called without arguments, so the
// next Get runs the factory again. Registrations are kept. An identifier whose
// factory is currently running is left untouched and reported with a
// *RegistrationError.
func (c *Container) Reset(ids ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(ids) == 0 {
		ids = c.sortedIDs()
	}

	var errs []error
	for _, id := range ids {
		e, ok := c.entries[id]
		if !ok {
			errs = append(errs, &ServiceNotFoundError{ID: id})
			continue
		}
		if err := c.resetEntry(e); err != nil {
			errs = append(errs, err)
			continue
		}
		c.logger.Debug("service reset", zap.String("service", id))
	}
	return errors.Join(errs...)
}

// resetEntry returns e to registered (must hold mu). A resolving entry is
// left untouched and reported.
func (c *Container) resetEntry(e *entry) error {
	if e.state == StateResolving {
		return &RegistrationError{ID: e.id, Reason: "resolution in progress"}
	}
	e.state = StateRegistered
	e.instance = nil
	e.err = nil
	e.took = 0
	return nil
}

// ── Helpers ───────────────────────────────────────────────────────────────────

// Bound returns true if id has been registered.
func (c *Container) Bound(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.entries[id]
	return ok
}

// Resolved returns true if id currently holds a constructed singleton.
func (c *Container) Resolved(id string) bool {
	state, ok := c.State(id)
	return ok && state == StateResolved
}

// State returns the resolution marker of id. ok is false for unregistered ids.
func (c *Container) State(id string) (state State, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[id]
	if !ok {
		return "", false
	}
	return e.state, true
}

// Dependencies returns the declared dependency list of id.
func (c *Container) Dependencies(id string) []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.entries[id]; ok {
		return slices.Clone(e.deps)
	}
	return nil
}

// Identifiers returns every registered identifier, sorted.
func (c *Container) Identifiers() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sortedIDs()
}

// Validate reports every declared dependency that is not registered.
func (c *Container) Validate() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var errs []error
	for _, id := range c.sortedIDs() {
		for _, dep := range c.entries[id].deps {
			if _, ok := c.entries[dep]; !ok {
				errs = append(errs, fmt.Errorf("[%s] depends on unregistered service: %w", id, &ServiceNotFoundError{ID: dep}))
			}
		}
	}
	return errors.Join(errs...)
}

// sortedIDs returns the registered identifiers in order (must hold mu).
func (c *Container) sortedIDs() []string {
	ids := make([]string, 0, len(c.entries))
	for id := range c.entries {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// ── Callbacks ─────────────────────────────────────────────────────────────────

// OnResolved registers a callback fired after each successful construction.
//
//	c.OnResolved(func(id string, instance any) {
//	    if t, ok := instance.(SelfTester); ok { _ = t.SelfTest() }
//	})
func (c *Container) OnResolved(cb func(id string, instance any)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.afterResolving = append(c.afterResolving, cb)
}
