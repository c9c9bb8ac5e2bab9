package container

import (
	"fmt"

	"go.uber.org/zap"
)

// ── ServiceProvider interface ─────────────────────────────────────────────────

// ServiceProvider groups the registration of related services.
//
// Register binds services into the container and must not resolve anything.
// Boot is called after ALL providers have been registered, making it safe
// to resolve other services inside Boot().
//
//	type AuditServiceProvider struct{ container.BaseProvider }
//
//	func (p *AuditServiceProvider) Register(c *container.Container) error {
//	    return c.Register("AuditProtocol", newAuditProtocol, "SmartLogger")
//	}
//
//	func (p *AuditServiceProvider) Provides() []string {
//	    return []string{"AuditProtocol"}
//	}
type ServiceProvider interface {
	// Register binds services into the container.
	// Do NOT resolve other services here; use Boot() for that.
	Register(c *Container) error

	// Boot is called after all providers are registered.
	Boot(c *Container) error

	// Provides returns the identifiers this provider registers. Each one is
	// checked to be bound once Register returns.
	Provides() []string
}

// ── BaseProvider ──────────────────────────────────────────────────────────────

// BaseProvider is an embeddable struct that provides no-op implementations
// of Boot() and Provides().
// Embed it in your provider and only override what you need.
//
//	type MyProvider struct{ container.BaseProvider }
//	func (p *MyProvider) Register(c *container.Container) error { ... }
type BaseProvider struct{}

func (p *BaseProvider) Boot(_ *Container) error { return nil }
func (p *BaseProvider) Provides() []string      { return nil }

// ── ProviderRegistry ──────────────────────────────────────────────────────────

// ProviderRegistry manages registration and booting of ServiceProviders.
type ProviderRegistry struct {
	app        *Container
	providers  []ServiceProvider
	booted     bool
	registered map[ServiceProvider]bool
	logger     *zap.Logger
}

// NewProviderRegistry creates a registry bound to c.
func NewProviderRegistry(c *Container) *ProviderRegistry {
	return &ProviderRegistry{
		app:        c,
		registered: make(map[ServiceProvider]bool),
		logger:     c.logger,
	}
}

// Register adds a provider and calls its Register() method.
// Registering the same provider twice is a no-op. A provider added after
// Boot() is booted immediately.
func (r *ProviderRegistry) Register(provider ServiceProvider) error {
	if r.registered[provider] {
		return nil
	}

	name := fmt.Sprintf("%T", provider)
	if err := provider.Register(r.app); err != nil {
		return fmt.Errorf("register provider %s: %w", name, err)
	}
	for _, id := range provider.Provides() {
		if !r.app.Bound(id) {
			return &RegistrationError{
				ID:     id,
				Reason: fmt.Sprintf("provider %s claims it but did not register it", name),
			}
		}
	}

	r.registered[provider] = true
	r.providers = append(r.providers, provider)
	r.logger.Debug("provider registered",
		zap.String("provider", name),
		zap.Strings("provides", provider.Provides()))

	if r.booted {
		if err := provider.Boot(r.app); err != nil {
			return fmt.Errorf("boot provider %s: %w", name, err)
		}
	}
	return nil
}

// Boot calls Boot() on all registered providers, in registration order.
// Calling it again is a no-op.
func (r *ProviderRegistry) Boot() error {
	if r.booted {
		return nil
	}
	r.booted = true
	for _, provider := range r.providers {
		if err := provider.Boot(r.app); err != nil {
			return fmt.Errorf("boot provider %T: %w", provider, err)
		}
	}
	return nil
}

// Booted returns true if Boot() has been called.
func (r *ProviderRegistry) Booted() bool { return r.booted }

// Providers returns all registered providers.
func (r *ProviderRegistry) Providers() []ServiceProvider { return r.providers }
