package container

import (
	"fmt"
	"reflect"
)

// ── Generics helpers ──────────────────────────────────────────────────────────

// Resolve is a generic helper that calls Get and type-asserts the result.
//
//	// Instead of: v, err := c.Get("AuditProtocol"); audit := v.(*audit.Protocol)
//	// Write:      audit, err := container.Resolve[*audit.Protocol](c, "AuditProtocol")
//
// A closed cycle makes Get return a *Deferred. Resolve never hands that
// handle out, whatever T is; it reports a *CircularResolutionError because
// the caller needed the instance itself and should depend on the service
// through ResolveLazy instead.
func Resolve[T any](c *Container, id string) (T, error) {
	var zero T
	instance, err := c.Get(id)
	if err != nil {
		return zero, err
	}
	// Checked before the assertion: *Deferred satisfies any and fmt.Stringer.
	if _, deferred := instance.(*Deferred); deferred {
		c.mu.Lock()
		chain := append(c.snapshotChain(), id)
		c.mu.Unlock()
		return zero, &CircularResolutionError{ID: id, Chain: chain}
	}
	if typed, ok := instance.(T); ok {
		return typed, nil
	}
	return zero, &TypeMismatchError{
		ID:       id,
		Expected: typeName[T](),
		Got:      fmt.Sprintf("%T", instance),
	}
}

// MustResolve is like Resolve but panics on error. Meant for wiring code
// that cannot continue without the service.
func MustResolve[T any](c *Container, id string) T {
	typed, err := Resolve[T](c, id)
	if err != nil {
		panic(err)
	}
	return typed
}

func typeName[T any]() string {
	return reflect.TypeFor[T]().String()
}
