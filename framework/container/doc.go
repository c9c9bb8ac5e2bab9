// Package container provides the Time OS service container: a registry that
// lazily constructs, caches and wires together named services.
//
// # Overview
//
// Every service is registered once under a string identifier with a factory.
// The factory runs on the first Get and its result is cached for the lifetime
// of the container. Factories receive the container and pull their own
// dependencies from it.
//
// # Container Lifecycle
//
//  1. Create: c := container.New(container.WithLogger(logger))
//  2. Register providers: registry.Register(&MyProvider{})
//  3. Boot: registry.Boot()        (safe to resolve everything after this)
//  4. Resolve on demand, inspect with c.HealthStatus()
//
// # Registering
//
//	c.Register("BusinessLogicValidation", func(c *container.Container) (any, error) {
//	    audit, err := container.Resolve[Auditor](c, "AuditProtocol")
//	    if err != nil {
//	        return nil, err
//	    }
//	    return services.NewBusinessLogicValidation(audit), nil
//	}, "AuditProtocol")
//
//	// Pre-built value
//	c.Instance("Clock", clock)
//
// # Resolving
//
//	// Untyped
//	raw, err := c.Get("AuditProtocol")
//
//	// Generic (preferred, no type assertion required)
//	audit, err := container.Resolve[Auditor](c, "AuditProtocol")
//
// # Resolution states
//
//	registered → resolving → resolved
//	                       ↘ failed
//
// A failed factory is not retried: Get keeps returning the same
// *ServiceConstructionError until Reset is called for that identifier.
//
// # Circular dependencies
//
// When A's factory resolves B and B's factory resolves A, the inner Get("A")
// does not run A's factory again. It returns a *Deferred handle for A. B keeps
// the handle and dereferences it later, when A is complete:
//
//	c.Register("B", func(c *container.Container) (any, error) {
//	    a, err := container.ResolveLazy[*A](c, "A")
//	    if err != nil {
//	        return nil, err
//	    }
//	    return &B{a: a}, nil
//	}, "A")
//
//	func (b *B) Use() error {
//	    a, err := b.a.Get()
//	    ...
//	}
//
// Resolve[T] refuses to hand out a handle where a T is expected and returns a
// *CircularResolutionError instead, so a cycle that does not use a handle
// fails loudly rather than recursing. A resolution chain longer than
// WithMaxDepth also fails with *CircularResolutionError.
//
// # Health
//
//	record := c.HealthStatus()
//	record.Status          // "healthy" or "degraded"
//	record.Counts.Failed
//	record.Services[0].State
//
// # Service Providers
//
//	type AppServiceProvider struct{ container.BaseProvider }
//
//	func (p *AppServiceProvider) Register(c *container.Container) error {
//	    return c.Register("SmartLogger", func(c *container.Container) (any, error) {
//	        return services.NewSmartLogger(zap.L()), nil
//	    })
//	}
//
//	func (p *AppServiceProvider) Boot(c *container.Container) error {
//	    // safe to resolve other services here
//	    return nil
//	}
//
//	registry := container.NewProviderRegistry(c)
//	_ = registry.Register(&AppServiceProvider{})
//	_ = registry.Boot()
package container
