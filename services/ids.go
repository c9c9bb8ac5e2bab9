// Package services holds the Time OS service identifiers, the capability
// interfaces each service satisfies, and their in-memory implementations.
package services

import (
	"fmt"
	"slices"

	"github.com/km-arc/timeos/framework/container"
)

// ID names one registrable service. The set is closed: only the constants
// below are valid, and each constant's value equals its name.
type ID string

const (
	ConfigManager           ID = "ConfigManager"
	SmartLogger             ID = "SmartLogger"
	AuditProtocol           ID = "AuditProtocol"
	BusinessLogicValidation ID = "BusinessLogicValidation"
	IntelligentScheduler    ID = "IntelligentScheduler"
	ZeroTrustTriageEngine   ID = "ZeroTrustTriageEngine"
	EmailIngestionEngine    ID = "EmailIngestionEngine"
)

var all = []ID{
	ConfigManager,
	SmartLogger,
	AuditProtocol,
	BusinessLogicValidation,
	IntelligentScheduler,
	ZeroTrustTriageEngine,
	EmailIngestionEngine,
}

// All returns every known identifier in declaration order.
func All() []ID { return slices.Clone(all) }

// Valid reports whether id belongs to the enumeration.
func (id ID) Valid() bool { return slices.Contains(all, id) }

func (id ID) String() string { return string(id) }

// Parse maps a string to its identifier.
func Parse(s string) (ID, error) {
	id := ID(s)
	if !id.Valid() {
		return "", fmt.Errorf("unknown service identifier %q", s)
	}
	return id, nil
}

// ── Typed container boundary ──────────────────────────────────────────────────

// Register validates id and deps against the enumeration before delegating
// to the container.
func Register(c *container.Container, id ID, factory container.Factory, deps ...ID) error {
	if !id.Valid() {
		return &container.RegistrationError{ID: string(id), Reason: "not a known service identifier"}
	}
	names := make([]string, 0, len(deps))
	for _, dep := range deps {
		if !dep.Valid() {
			return &container.RegistrationError{ID: string(id), Reason: fmt.Sprintf("unknown dependency %q", dep)}
		}
		names = append(names, string(dep))
	}
	return c.Register(string(id), factory, names...)
}

// Get resolves id and asserts it to T.
func Get[T any](c *container.Container, id ID) (T, error) {
	return container.Resolve[T](c, string(id))
}

// Lazy resolves id and returns a typed handle to it. Services that depend
// on each other take their peer this way.
func Lazy[T any](c *container.Container, id ID) (container.Lazy[T], error) {
	return container.ResolveLazy[T](c, string(id))
}
