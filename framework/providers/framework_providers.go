package providers

import (
	"go.uber.org/zap"

	"github.com/km-arc/timeos/framework/config"
	"github.com/km-arc/timeos/framework/container"
	"github.com/km-arc/timeos/services"
)

// Framework returns the providers every Time OS application registers, in
// registration order.
func Framework(cfg *config.Config, logger *zap.Logger) []container.ServiceProvider {
	return []container.ServiceProvider{
		&CoreServiceProvider{Config: cfg, Logger: logger},
		&SchedulingServiceProvider{},
		&TriageServiceProvider{},
	}
}

// ── CoreServiceProvider ───────────────────────────────────────────────────────

// CoreServiceProvider binds configuration, logging, audit and validation.
//
// Bound identifiers:
//   - "ConfigManager"           → *config.Config
//   - "SmartLogger"             → services.Logger
//   - "AuditProtocol"           → services.Auditor
//   - "BusinessLogicValidation" → services.TaskValidator
type CoreServiceProvider struct {
	container.BaseProvider
	Config *config.Config
	Logger *zap.Logger
}

func (p *CoreServiceProvider) Register(c *container.Container) error {
	cfg := p.Config
	if cfg == nil {
		cfg = config.Load()
	}
	if err := services.Register(c, services.ConfigManager, func(*container.Container) (any, error) {
		return cfg, nil
	}); err != nil {
		return err
	}

	base := p.Logger
	if err := services.Register(c, services.SmartLogger, func(c *container.Container) (any, error) {
		return services.NewSmartLogger(base), nil
	}, services.ConfigManager); err != nil {
		return err
	}

	if err := services.Register(c, services.AuditProtocol, func(c *container.Container) (any, error) {
		cfg, err := services.Get[*config.Config](c, services.ConfigManager)
		if err != nil {
			return nil, err
		}
		logger, err := services.Get[services.Logger](c, services.SmartLogger)
		if err != nil {
			return nil, err
		}
		return services.NewAuditProtocol(logger, cfg.Audit.FlushSize), nil
	}, services.ConfigManager, services.SmartLogger); err != nil {
		return err
	}

	return services.Register(c, services.BusinessLogicValidation, func(c *container.Container) (any, error) {
		audit, err := services.Get[services.Auditor](c, services.AuditProtocol)
		if err != nil {
			return nil, err
		}
		return services.NewBusinessLogicValidation(audit), nil
	}, services.AuditProtocol)
}

// Boot installs a hook that runs SelfTest on every service as it is
// constructed and logs the ones that fail.
func (p *CoreServiceProvider) Boot(c *container.Container) error {
	logger := p.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	c.OnResolved(func(id string, instance any) {
		tester, ok := instance.(services.SelfTester)
		if !ok {
			return
		}
		if err := tester.SelfTest(); err != nil {
			logger.Warn("service self test failed",
				zap.String("service", id),
				zap.Error(err))
		}
	})
	return nil
}

func (p *CoreServiceProvider) Provides() []string {
	return ids(services.ConfigManager, services.SmartLogger, services.AuditProtocol, services.BusinessLogicValidation)
}

// ── SchedulingServiceProvider ─────────────────────────────────────────────────

// SchedulingServiceProvider binds the calendar scheduler.
//
// Bound identifiers:
//   - "IntelligentScheduler" → services.Scheduler
type SchedulingServiceProvider struct {
	container.BaseProvider
}

func (p *SchedulingServiceProvider) Register(c *container.Container) error {
	return services.Register(c, services.IntelligentScheduler, func(c *container.Container) (any, error) {
		validator, err := services.Get[services.TaskValidator](c, services.BusinessLogicValidation)
		if err != nil {
			return nil, err
		}
		audit, err := services.Get[services.Auditor](c, services.AuditProtocol)
		if err != nil {
			return nil, err
		}
		logger, err := services.Get[services.Logger](c, services.SmartLogger)
		if err != nil {
			return nil, err
		}
		return services.NewIntelligentScheduler(validator, audit, logger), nil
	}, services.BusinessLogicValidation, services.AuditProtocol, services.SmartLogger)
}

func (p *SchedulingServiceProvider) Provides() []string {
	return ids(services.IntelligentScheduler)
}

// ── TriageServiceProvider ─────────────────────────────────────────────────────

// TriageServiceProvider binds the triage engine and the email ingestion
// engine. The two depend on each other; each factory takes a deferred
// handle to its peer, so whichever is resolved first completes the cycle.
//
// Bound identifiers:
//   - "ZeroTrustTriageEngine" → services.TriageEngine
//   - "EmailIngestionEngine"  → services.EmailIngester
type TriageServiceProvider struct {
	container.BaseProvider
}

func (p *TriageServiceProvider) Register(c *container.Container) error {
	if err := services.Register(c, services.ZeroTrustTriageEngine, func(c *container.Container) (any, error) {
		logger, err := services.Get[services.Logger](c, services.SmartLogger)
		if err != nil {
			return nil, err
		}
		ingester, err := services.Lazy[services.EmailIngester](c, services.EmailIngestionEngine)
		if err != nil {
			return nil, err
		}
		return services.NewZeroTrustTriageEngine(ingester, logger), nil
	}, services.SmartLogger, services.EmailIngestionEngine); err != nil {
		return err
	}

	return services.Register(c, services.EmailIngestionEngine, func(c *container.Container) (any, error) {
		logger, err := services.Get[services.Logger](c, services.SmartLogger)
		if err != nil {
			return nil, err
		}
		audit, err := services.Get[services.Auditor](c, services.AuditProtocol)
		if err != nil {
			return nil, err
		}
		engine, err := services.Lazy[services.TriageEngine](c, services.ZeroTrustTriageEngine)
		if err != nil {
			return nil, err
		}
		return services.NewEmailIngestionEngine(engine, audit, logger), nil
	}, services.SmartLogger, services.AuditProtocol, services.ZeroTrustTriageEngine)
}

func (p *TriageServiceProvider) Provides() []string {
	return ids(services.ZeroTrustTriageEngine, services.EmailIngestionEngine)
}

func ids(list ...services.ID) []string {
	out := make([]string, len(list))
	for i, id := range list {
		out[i] = id.String()
	}
	return out
}
