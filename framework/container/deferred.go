package container

import "fmt"

// ── Deferred handles ──────────────────────────────────────────────────────────

// Deferred is a forwarding reference to a service that may not be
// constructed yet. It re-queries the container each time it is dereferenced,
// so a service that takes part in a cycle can hold a handle to its peer and
// use it once the cycle has closed.
//
//	// in the triage engine factory:
//	ingester, err := container.ResolveLazy[EmailIngester](c, "EmailIngestionEngine")
//	if err != nil {
//	    return nil, err
//	}
//	return NewZeroTrustTriageEngine(ingester, logger), nil
type Deferred struct {
	c  *Container
	id string
}

// Defer returns a handle for id without resolving it.
func (c *Container) Defer(id string) *Deferred {
	return &Deferred{c: c, id: id}
}

// ID returns the identifier the handle forwards to.
func (d *Deferred) ID() string { return d.id }

// Ready reports whether the target is constructed.
func (d *Deferred) Ready() bool {
	return d.c.Resolved(d.id)
}

// Get returns the target instance, resolving it if it has not been started.
// Dereferencing while the target factory is still running returns a
// *CircularResolutionError; a partially constructed service is never returned.
func (d *Deferred) Get() (any, error) {
	d.c.mu.Lock()
	e, ok := d.c.entries[d.id]
	if ok && e.state == StateResolving {
		chain := append(d.c.snapshotChain(), d.id)
		d.c.mu.Unlock()
		return nil, &CircularResolutionError{ID: d.id, Chain: chain}
	}
	d.c.mu.Unlock()

	instance, err := d.c.Get(d.id)
	if err != nil {
		return nil, err
	}
	// The target may have been reset and re-entered between the check and Get.
	if _, still := instance.(*Deferred); still {
		return nil, &CircularResolutionError{ID: d.id, Chain: []string{d.id}}
	}
	return instance, nil
}

func (d *Deferred) String() string {
	return fmt.Sprintf("deferred(%s)", d.id)
}

// Lazy is a typed deferred handle.
type Lazy[T any] struct {
	d *Deferred
}

// NewLazy returns a typed handle for id without resolving it.
func NewLazy[T any](c *Container, id string) Lazy[T] {
	return Lazy[T]{d: c.Defer(id)}
}

// AsLazy converts a value returned by Get into a typed handle. It accepts
// either a *Deferred (cycle still open) or an already constructed T.
func AsLazy[T any](c *Container, id string, v any) (Lazy[T], bool) {
	switch v := v.(type) {
	case *Deferred:
		return Lazy[T]{d: v}, true
	case T:
		return NewLazy[T](c, id), true
	}
	return Lazy[T]{}, false
}

// ResolveLazy resolves id and returns a typed handle to it. Outside a cycle
// the target is fully constructed before ResolveLazy returns; inside one the
// handle is returned while the target is still being built. Construction
// failures and type mismatches are reported immediately.
func ResolveLazy[T any](c *Container, id string) (Lazy[T], error) {
	instance, err := c.Get(id)
	if err != nil {
		return Lazy[T]{}, err
	}
	lazy, ok := AsLazy[T](c, id, instance)
	if !ok {
		return Lazy[T]{}, &TypeMismatchError{
			ID:       id,
			Expected: typeName[T](),
			Got:      fmt.Sprintf("%T", instance),
		}
	}
	return lazy, nil
}

// ID returns the identifier the handle forwards to.
func (l Lazy[T]) ID() string {
	if l.d == nil {
		return ""
	}
	return l.d.id
}

// Ready reports whether the target is constructed.
func (l Lazy[T]) Ready() bool {
	return l.d != nil && l.d.Ready()
}

// Get dereferences the handle and asserts the instance to T.
func (l Lazy[T]) Get() (T, error) {
	var zero T
	if l.d == nil {
		return zero, &ServiceNotFoundError{ID: ""}
	}
	instance, err := l.d.Get()
	if err != nil {
		return zero, err
	}
	typed, ok := instance.(T)
	if !ok {
		return zero, &TypeMismatchError{
			ID:       l.d.id,
			Expected: typeName[T](),
			Got:      fmt.Sprintf("%T", instance),
		}
	}
	return typed, nil
}
