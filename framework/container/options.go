package container

import "go.uber.org/zap"

// DefaultMaxDepth bounds the length of a resolution chain.
const DefaultMaxDepth = 64

// Option configures a Container.
type Option func(*Container)

// WithLogger sets the logger used for registration and resolution events.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Container) {
		if logger != nil {
			c.logger = logger.Named("container")
		}
	}
}

// WithMetrics records resolution outcomes into m.
func WithMetrics(m *Metrics) Option {
	return func(c *Container) {
		c.metrics = m
	}
}

// WithOverride allows an identifier to be registered again, replacing the
// previous entry and dropping its cached instance.
func WithOverride(allow bool) Option {
	return func(c *Container) {
		c.override = allow
	}
}

// WithMaxDepth sets the resolution depth watchdog. Values below 1 keep the default.
func WithMaxDepth(depth int) Option {
	return func(c *Container) {
		if depth > 0 {
			c.maxDepth = depth
		}
	}
}

// WithVersion labels health records with the build version.
func WithVersion(version string) Option {
	return func(c *Container) {
		c.version = version
	}
}
