package container

import (
	"fmt"
	"strings"
)

// RegistrationError is returned when an identifier cannot be registered:
// empty identifier, nil factory, or a duplicate while overrides are disabled.
type RegistrationError struct {
	ID     string
	Reason string
}

func (e *RegistrationError) Error() string {
	return fmt.Sprintf("container: cannot register [%s]: %s", e.ID, e.Reason)
}

// ServiceNotFoundError is returned when an identifier was never registered.
type ServiceNotFoundError struct {
	ID string
}

func (e *ServiceNotFoundError) Error() string {
	return fmt.Sprintf("container: no service registered for [%s]", e.ID)
}

// ServiceConstructionError wraps a factory failure. Chain holds the
// resolution chain that led to the failing factory, outermost first.
type ServiceConstructionError struct {
	ID    string
	Chain []string
	Err   error
}

func (e *ServiceConstructionError) Error() string {
	return fmt.Sprintf("container: constructing [%s] (chain %s): %v", e.ID, formatChain(e.Chain), e.Err)
}

func (e *ServiceConstructionError) Unwrap() error {
	return e.Err
}

// CircularResolutionError is returned when a cycle closes and the caller
// did not accept a deferred handle, or when the resolution depth watchdog trips.
type CircularResolutionError struct {
	ID    string
	Chain []string
}

func (e *CircularResolutionError) Error() string {
	return fmt.Sprintf("container: circular resolution of [%s] (chain %s)", e.ID, formatChain(e.Chain))
}

// TypeMismatchError is returned by the typed helpers when the instance
// does not have the requested type.
type TypeMismatchError struct {
	ID       string
	Expected string
	Got      string
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("container: [%s] resolved to %s, expected %s", e.ID, e.Got, e.Expected)
}

func formatChain(chain []string) string {
	if len(chain) == 0 {
		return "[]"
	}
	return "[" + strings.Join(chain, " -> ") + "]"
}
