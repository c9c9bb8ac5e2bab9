package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"github.com/km-arc/timeos/framework/config"
	"github.com/km-arc/timeos/framework/container"
	"github.com/km-arc/timeos/framework/logging"
	"github.com/km-arc/timeos/framework/providers"
	"github.com/km-arc/timeos/routing"
	"github.com/km-arc/timeos/services"
)

const shutdownTimeout = 5 * time.Second

// Application is the top-level application container.
// It embeds the service Container so callers can use app.Get(),
// app.Register() and app.HealthStatus() directly.
type Application struct {
	*container.Container
	Providers *container.ProviderRegistry
	Config    *config.Config
	Logger    *zap.Logger
	Metrics   *container.Metrics
	Registry  *prometheus.Registry
}

// New loads configuration from envFiles and the environment, then builds
// the application. version is the build version of the binary.
func New(version string, envFiles ...string) (*Application, error) {
	cfg := config.Load(envFiles...)
	cfg.App.Version = version
	logger, err := logging.New(cfg.Log)
	if err != nil {
		return nil, err
	}
	return NewWithConfig(cfg, logger)
}

// NewWithConfig builds the application from an already loaded
// configuration and registers the framework providers. A nil logger
// logs nothing.
func NewWithConfig(cfg *config.Config, logger *zap.Logger) (*Application, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.With(zap.String("app", cfg.App.Name), zap.String("env", cfg.App.Env))

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := container.NewMetrics(registry)

	c := container.New(
		container.WithLogger(logger),
		container.WithMetrics(metrics),
		container.WithOverride(cfg.Container.AllowOverride),
		container.WithMaxDepth(cfg.Container.MaxDepth),
		container.WithVersion(cfg.App.Version),
	)

	a := &Application{
		Container: c,
		Providers: container.NewProviderRegistry(c),
		Config:    cfg,
		Logger:    logger,
		Metrics:   metrics,
		Registry:  registry,
	}

	for _, p := range providers.Framework(cfg, logger) {
		if err := a.Register(p); err != nil {
			return nil, err
		}
	}
	logger.Debug("application created", zap.String("container_id", c.ID()))
	return a, nil
}

// Register adds a ServiceProvider to the application.
func (a *Application) Register(provider container.ServiceProvider) error {
	return a.Providers.Register(provider)
}

// Boot validates declared dependencies, then runs the Boot() phase on all
// providers. Nothing is resolved.
func (a *Application) Boot() error {
	if a.Providers.Booted() {
		return nil
	}
	if err := a.Container.Validate(); err != nil {
		return fmt.Errorf("validate services: %w", err)
	}
	if err := a.Providers.Boot(); err != nil {
		return err
	}
	a.Logger.Info("application booted",
		zap.String("version", a.Version()),
		zap.Bool("debug", a.IsDebug()),
		zap.Int("providers", len(a.Providers.Providers())),
		zap.Int("services", len(a.Identifiers())))
	return nil
}

// ResolveAll resolves every registered identifier and joins the failures.
func (a *Application) ResolveAll() error {
	var errs []error
	for _, id := range a.Identifiers() {
		if _, err := a.Get(id); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Handler builds the HTTP health router.
func (a *Application) Handler() http.Handler {
	r := routing.New(a.Logger)
	routing.Health(r, a.Container, a.Registry)
	return r
}

// Run boots the application (if needed) and serves the health router on
// HEALTH_ADDR until ctx is cancelled.
func (a *Application) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", a.Config.Health.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", a.Config.Health.Addr, err)
	}
	return a.Serve(ctx, ln)
}

// Serve is Run on an existing listener.
func (a *Application) Serve(ctx context.Context, ln net.Listener) error {
	if err := a.Boot(); err != nil {
		return err
	}

	srv := &http.Server{
		Handler:           a.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.Logger.Info("health endpoint listening", zap.String("addr", ln.Addr().String()))
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	a.Logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	err := srv.Shutdown(shutdownCtx)
	a.flushAudit()
	return err
}

// flushAudit drains buffered audit events if the audit service was built.
func (a *Application) flushAudit() {
	if !a.Resolved(services.AuditProtocol.String()) {
		return
	}
	audit, err := services.Get[services.Auditor](a.Container, services.AuditProtocol)
	if err != nil {
		return
	}
	if n := audit.Flush(); n > 0 {
		a.Logger.Info("audit events flushed on shutdown", zap.Int("count", n))
	}
}

func (a *Application) IsDebug() bool   { return a.Config.App.Debug }
func (a *Application) Version() string { return a.Config.App.Version }
