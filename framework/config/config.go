package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config is the central typed configuration struct.
type Config struct {
	App       AppConfig
	Log       LogConfig
	Container ContainerConfig
	Health    HealthConfig
	Audit     AuditConfig
}

type AppConfig struct {
	Name    string
	Env     string // local | production | testing
	Debug   bool
	Version string // set by the binary, not the environment
}

type LogConfig struct {
	Level  string // debug | info | warn | error
	Format string // console | json
}

type ContainerConfig struct {
	AllowOverride bool
	MaxDepth      int
}

type HealthConfig struct {
	Addr string
}

type AuditConfig struct {
	FlushSize int
}

// Load reads .env (if present) and populates a Config from environment variables.
// Call once at bootstrap: cfg := config.Load()
func Load(envFiles ...string) *Config {
	files := envFiles
	if len(files) == 0 {
		files = []string{".env"}
	}
	// Non-fatal: .env may not exist in production
	_ = godotenv.Load(files...)

	appEnv := env("APP_ENV", "local")
	defaultFormat := "json"
	if appEnv == "local" {
		defaultFormat = "console"
	}

	return &Config{
		App: AppConfig{
			Name:  env("APP_NAME", "TimeOS"),
			Env:   appEnv,
			Debug: envBool("APP_DEBUG", true),
		},
		Log: LogConfig{
			Level:  env("LOG_LEVEL", "info"),
			Format: env("LOG_FORMAT", defaultFormat),
		},
		Container: ContainerConfig{
			AllowOverride: envBool("CONTAINER_ALLOW_OVERRIDE", false),
			MaxDepth:      GetInt("CONTAINER_MAX_DEPTH", 64),
		},
		Health: HealthConfig{
			Addr: env("HEALTH_ADDR", ":8000"),
		},
		Audit: AuditConfig{
			FlushSize: GetInt("AUDIT_FLUSH_SIZE", 20),
		},
	}
}

// GetInt returns an int env value.
func GetInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return i
}

// ── helpers ─────────────────────────────────────────────────────────────────

func env(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}
