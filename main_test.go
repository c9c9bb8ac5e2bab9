package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/km-arc/timeos/framework/app"
	"github.com/km-arc/timeos/framework/config"
	"github.com/km-arc/timeos/framework/container"
)

func testConfig() *config.Config {
	return &config.Config{
		App:       config.AppConfig{Name: "TimeOS", Env: "testing"},
		Container: config.ContainerConfig{MaxDepth: 16},
		Health:    config.HealthConfig{Addr: "127.0.0.1:0"},
		Audit:     config.AuditConfig{FlushSize: 10},
	}
}

// useApplication swaps the application factory for the duration of a test.
func useApplication(t *testing.T, customize func(*app.Application)) {
	t.Helper()
	prev := newApplication
	newApplication = func(v string, _ ...string) (*app.Application, error) {
		cfg := testConfig()
		cfg.App.Version = v
		a, err := app.NewWithConfig(cfg, nil)
		if err != nil {
			return nil, err
		}
		if customize != nil {
			customize(a)
		}
		return a, nil
	}
	t.Cleanup(func() { newApplication = prev })
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestRootCmd_HasCommands(t *testing.T) {
	names := map[string]bool{}
	for _, cmd := range newRootCmd().Commands() {
		names[cmd.Name()] = true
		assert.NotEmpty(t, cmd.Short, cmd.Name())
	}
	for _, want := range []string{"health", "services", "validate", "serve"} {
		assert.True(t, names[want], want)
	}
}

func TestHealthCmd_Pending(t *testing.T) {
	useApplication(t, nil)

	out, err := run(t, "health")
	require.NoError(t, err)

	var record container.HealthRecord
	require.NoError(t, json.Unmarshal([]byte(out), &record))
	assert.Equal(t, container.HealthStatusHealthy, record.Status)
	assert.Equal(t, version, record.Version)
	assert.Zero(t, record.Counts.Resolved)
	assert.Equal(t, 7, record.Counts.Pending)
}

func TestHealthCmd_Resolve(t *testing.T) {
	useApplication(t, nil)

	out, err := run(t, "health", "--resolve")
	require.NoError(t, err)

	var record container.HealthRecord
	require.NoError(t, json.Unmarshal([]byte(out), &record))
	assert.Equal(t, 7, record.Counts.Resolved)
	assert.Zero(t, record.Counts.Pending)
}

func TestHealthCmd_DegradedExitsNonZero(t *testing.T) {
	useApplication(t, func(a *app.Application) {
		_ = a.Container.Register("Broken", func(*container.Container) (any, error) {
			return nil, errors.New("calendar unreachable")
		})
	})

	out, err := run(t, "health", "--resolve")
	require.ErrorIs(t, err, errDegraded)
	assert.Contains(t, out, "calendar unreachable")
	assert.Contains(t, out, `"status": "degraded"`)
}

func TestServicesCmd(t *testing.T) {
	useApplication(t, nil)

	out, err := run(t, "services")
	require.NoError(t, err)

	assert.Contains(t, out, "SERVICE")
	assert.Regexp(t, `ConfigManager\s+registered\s+-`, out)
	assert.Regexp(t, `ZeroTrustTriageEngine\s+registered\s+SmartLogger, EmailIngestionEngine`, out)
}

func TestValidateCmd(t *testing.T) {
	useApplication(t, nil)

	out, err := run(t, "validate")
	require.NoError(t, err)
	assert.Equal(t, "ok: 7 services, 3 providers\n", out)
}

func TestValidateCmd_MissingDependency(t *testing.T) {
	useApplication(t, func(a *app.Application) {
		_ = a.Container.Register("Reports", func(*container.Container) (any, error) { return 1, nil }, "Calendar")
	})

	_, err := run(t, "validate")

	var notFound *container.ServiceNotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "Calendar", notFound.ID)
}

func TestLoadError_Propagates(t *testing.T) {
	prev := newApplication
	newApplication = func(string, ...string) (*app.Application, error) { return nil, errors.New("bad env") }
	t.Cleanup(func() { newApplication = prev })

	_, err := run(t, "services")
	assert.EqualError(t, err, "bad env")
}
