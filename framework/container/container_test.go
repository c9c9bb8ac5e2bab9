package container_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/km-arc/timeos/framework/container"
)

// ── stub services ─────────────────────────────────────────────────────────────

type namedService struct {
	name string
}

// counter returns a factory that counts its invocations.
func counter(calls *int, v any) container.Factory {
	return func(c *container.Container) (any, error) {
		*calls++
		return v, nil
	}
}

// ── Register ──────────────────────────────────────────────────────────────────

func TestRegister_DoesNotInvokeFactory(t *testing.T) {
	c := container.New()
	calls := 0

	require.NoError(t, c.Register("Logger", counter(&calls, &namedService{"Logger"})))

	assert.Equal(t, 0, calls)
	assert.True(t, c.Bound("Logger"))
	state, ok := c.State("Logger")
	require.True(t, ok)
	assert.Equal(t, container.StateRegistered, state)
}

func TestRegister_InvalidInput(t *testing.T) {
	c := container.New()
	noop := func(*container.Container) (any, error) { return 1, nil }

	tests := []struct {
		name    string
		id      string
		factory container.Factory
	}{
		{"empty identifier", "", noop},
		{"nil factory", "Logger", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := c.Register(tt.id, tt.factory)
			var regErr *container.RegistrationError
			require.ErrorAs(t, err, &regErr)
			assert.Equal(t, tt.id, regErr.ID)
		})
	}
}

func TestRegister_DuplicateRejectedByDefault(t *testing.T) {
	c := container.New()
	require.NoError(t, c.Register("Logger", counter(new(int), "a")))

	err := c.Register("Logger", counter(new(int), "b"))

	var regErr *container.RegistrationError
	require.ErrorAs(t, err, &regErr)
	assert.Equal(t, "Logger", regErr.ID)
	assert.Contains(t, err.Error(), "already registered")
}

func TestRegister_OverrideReplacesAndDropsInstance(t *testing.T) {
	c := container.New(container.WithOverride(true))
	require.NoError(t, c.Register("Logger", counter(new(int), "first")))

	v, err := c.Get("Logger")
	require.NoError(t, err)
	assert.Equal(t, "first", v)

	require.NoError(t, c.Register("Logger", counter(new(int), "second")))
	assert.False(t, c.Resolved("Logger"))

	v, err = c.Get("Logger")
	require.NoError(t, err)
	assert.Equal(t, "second", v)
}

func TestRegister_RejectedWhileResolving(t *testing.T) {
	c := container.New(container.WithOverride(true))
	var inner error
	require.NoError(t, c.Register("A", func(c *container.Container) (any, error) {
		inner = c.Register("A", counter(new(int), "other"))
		return "a", nil
	}))

	_, err := c.Get("A")
	require.NoError(t, err)

	var regErr *container.RegistrationError
	require.ErrorAs(t, inner, &regErr)
	assert.Contains(t, inner.Error(), "resolution in progress")
}

func TestInstance_IsResolvedImmediately(t *testing.T) {
	c := container.New()
	cfg := &namedService{"config"}

	require.NoError(t, c.Instance("ConfigManager", cfg))

	assert.True(t, c.Resolved("ConfigManager"))
	v, err := c.Get("ConfigManager")
	require.NoError(t, err)
	assert.Same(t, cfg, v)
}

func TestInstance_NilRejected(t *testing.T) {
	c := container.New()
	var regErr *container.RegistrationError
	require.ErrorAs(t, c.Instance("ConfigManager", nil), &regErr)
}

// ── Get ───────────────────────────────────────────────────────────────────────

func TestGet_SameInstanceTwice(t *testing.T) {
	c := container.New()
	calls := 0
	require.NoError(t, c.Register("Logger", func(*container.Container) (any, error) {
		calls++
		return &namedService{name: "Logger"}, nil
	}))

	first, err := c.Get("Logger")
	require.NoError(t, err)
	second, err := c.Get("Logger")
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, "Logger", first.(*namedService).name)
	assert.Equal(t, 1, calls)
}

func TestGet_FactoryRunsAtMostOnce(t *testing.T) {
	c := container.New()
	calls := 0
	require.NoError(t, c.Register("Scheduler", counter(&calls, &namedService{"Scheduler"})))

	for i := 0; i < 50; i++ {
		_, err := c.Get("Scheduler")
		require.NoError(t, err)
	}
	assert.Equal(t, 1, calls)
}

func TestGet_Missing(t *testing.T) {
	c := container.New()

	_, err := c.Get("Missing")

	var notFound *container.ServiceNotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "Missing", notFound.ID)
}

func TestGet_DependenciesBuiltBeforeDependent(t *testing.T) {
	c := container.New()
	var order []string

	require.NoError(t, c.Register("Audit", func(*container.Container) (any, error) {
		order = append(order, "Audit")
		return &namedService{"Audit"}, nil
	}))
	require.NoError(t, c.Register("Validation", func(c *container.Container) (any, error) {
		audit, err := container.Resolve[*namedService](c, "Audit")
		if err != nil {
			return nil, err
		}
		order = append(order, "Validation")
		return &namedService{"Validation+" + audit.name}, nil
	}, "Audit"))

	v, err := container.Resolve[*namedService](c, "Validation")
	require.NoError(t, err)
	assert.Equal(t, "Validation+Audit", v.name)
	assert.Equal(t, []string{"Audit", "Validation"}, order)
}

// ── Failures ──────────────────────────────────────────────────────────────────

func TestGet_FailureIsStickyUntilReset(t *testing.T) {
	c := container.New()
	calls := 0
	boom := errors.New("boom")
	require.NoError(t, c.Register("Bad", func(*container.Container) (any, error) {
		calls++
		return nil, boom
	}))

	_, err1 := c.Get("Bad")
	_, err2 := c.Get("Bad")

	var cerr *container.ServiceConstructionError
	require.ErrorAs(t, err1, &cerr)
	require.ErrorAs(t, err2, &cerr)
	assert.ErrorIs(t, err1, boom)
	assert.Equal(t, "Bad", cerr.ID)
	assert.Equal(t, 1, calls)

	state, _ := c.State("Bad")
	assert.Equal(t, container.StateFailed, state)

	require.NoError(t, c.Reset("Bad"))
	_, err := c.Get("Bad")
	require.Error(t, err)
	assert.Equal(t, 2, calls)
}

func TestGet_PanicBecomesConstructionError(t *testing.T) {
	c := container.New()
	require.NoError(t, c.Register("Bad", func(*container.Container) (any, error) {
		panic("kaput")
	}))

	_, err := c.Get("Bad")

	var cerr *container.ServiceConstructionError
	require.ErrorAs(t, err, &cerr)
	assert.Contains(t, err.Error(), "kaput")
}

func TestGet_NilInstanceIsFailure(t *testing.T) {
	c := container.New()
	require.NoError(t, c.Register("Empty", func(*container.Container) (any, error) {
		return nil, nil
	}))

	_, err := c.Get("Empty")

	var cerr *container.ServiceConstructionError
	require.ErrorAs(t, err, &cerr)
}

func TestGet_ConstructionErrorRecordsChain(t *testing.T) {
	c := container.New()
	boom := errors.New("disk full")
	require.NoError(t, c.Register("Store", func(*container.Container) (any, error) {
		return nil, boom
	}))
	require.NoError(t, c.Register("Audit", func(c *container.Container) (any, error) {
		return c.Get("Store")
	}, "Store"))

	_, err := c.Get("Audit")

	var outer *container.ServiceConstructionError
	require.ErrorAs(t, err, &outer)
	assert.Equal(t, "Audit", outer.ID)
	assert.Equal(t, []string{"Audit"}, outer.Chain)

	var inner *container.ServiceConstructionError
	require.ErrorAs(t, outer.Err, &inner)
	assert.Equal(t, "Store", inner.ID)
	assert.Equal(t, []string{"Audit", "Store"}, inner.Chain)
	assert.ErrorIs(t, err, boom)
}

// ── Reset ─────────────────────────────────────────────────────────────────────

func TestReset_All(t *testing.T) {
	c := container.New()
	calls := 0
	require.NoError(t, c.Register("A", counter(&calls, &namedService{"A"})))
	require.NoError(t, c.Register("B", counter(&calls, &namedService{"B"})))
	_, _ = c.Get("A")
	_, _ = c.Get("B")

	require.NoError(t, c.Reset())

	assert.True(t, c.Bound("A"))
	assert.True(t, c.Bound("B"))
	assert.False(t, c.Resolved("A"))
	assert.False(t, c.Resolved("B"))

	_, _ = c.Get("A")
	assert.Equal(t, 3, calls)
}

func TestReset_ReconstructsFreshInstance(t *testing.T) {
	c := container.New()
	require.NoError(t, c.Register("Logger", func(*container.Container) (any, error) {
		return &namedService{"Logger"}, nil
	}))

	first, _ := c.Get("Logger")
	require.NoError(t, c.Reset("Logger"))
	second, _ := c.Get("Logger")

	assert.NotSame(t, first, second)
}

func TestReset_UnknownIdentifier(t *testing.T) {
	c := container.New()

	err := c.Reset("Nope")

	var notFound *container.ServiceNotFoundError
	require.ErrorAs(t, err, &notFound)
}

func TestReset_KeepsPrebuiltInstance(t *testing.T) {
	c := container.New()
	cfg := &namedService{"config"}
	require.NoError(t, c.Instance("ConfigManager", cfg))

	require.NoError(t, c.Reset("ConfigManager"))
	v, err := c.Get("ConfigManager")

	require.NoError(t, err)
	assert.Same(t, cfg, v)
}

func TestReset_ResolvingIdentifierIsReported(t *testing.T) {
	c := container.New()
	var single, all error
	require.NoError(t, c.Register("Scheduler", func(c *container.Container) (any, error) {
		single = c.Reset("Scheduler")
		all = c.Reset()
		return &namedService{"Scheduler"}, nil
	}))

	_, err := c.Get("Scheduler")
	require.NoError(t, err)

	for _, got := range []error{single, all} {
		var rerr *container.RegistrationError
		require.ErrorAs(t, got, &rerr)
		assert.Equal(t, "Scheduler", rerr.ID)
		assert.Equal(t, "resolution in progress", rerr.Reason)
	}
	// The running construction was not disturbed.
	assert.True(t, c.Resolved("Scheduler"))
}

// ── Helpers ───────────────────────────────────────────────────────────────────

func TestIdentifiers_Sorted(t *testing.T) {
	c := container.New()
	for _, id := range []string{"Scheduler", "Audit", "Logger"} {
		require.NoError(t, c.Register(id, counter(new(int), id)))
	}

	assert.Equal(t, []string{"Audit", "Logger", "Scheduler"}, c.Identifiers())
}

func TestDependencies_Copy(t *testing.T) {
	c := container.New()
	require.NoError(t, c.Register("Validation", counter(new(int), 1), "Audit", "Logger"))

	deps := c.Dependencies("Validation")
	deps[0] = "mutated"

	assert.Equal(t, []string{"Audit", "Logger"}, c.Dependencies("Validation"))
	assert.Nil(t, c.Dependencies("Unknown"))
}

func TestValidate_MissingDependencies(t *testing.T) {
	c := container.New()
	require.NoError(t, c.Register("Validation", counter(new(int), 1), "Audit", "Logger"))
	require.NoError(t, c.Register("Logger", counter(new(int), 2)))

	err := c.Validate()

	var notFound *container.ServiceNotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "Audit", notFound.ID)
	assert.NotContains(t, err.Error(), "[Logger]")
}

func TestValidate_AllPresent(t *testing.T) {
	c := container.New()
	require.NoError(t, c.Register("Logger", counter(new(int), 1)))
	require.NoError(t, c.Register("Audit", counter(new(int), 2), "Logger"))

	assert.NoError(t, c.Validate())
}

func TestOnResolved_FiredOncePerConstruction(t *testing.T) {
	c := container.New()
	require.NoError(t, c.Register("Logger", counter(new(int), "l")))
	var seen []string
	c.OnResolved(func(id string, instance any) {
		seen = append(seen, id)
	})

	_, _ = c.Get("Logger")
	_, _ = c.Get("Logger")

	assert.Equal(t, []string{"Logger"}, seen)
}

func TestResolve_TypeMismatch(t *testing.T) {
	c := container.New()
	require.NoError(t, c.Register("Logger", counter(new(int), "a string")))

	_, err := container.Resolve[*namedService](c, "Logger")

	var mismatch *container.TypeMismatchError
	require.ErrorAs(t, err, &mismatch)
	assert.Equal(t, "string", mismatch.Got)
	assert.Equal(t, "*container_test.namedService", mismatch.Expected)
}

func TestMustResolve_PanicsOnMissing(t *testing.T) {
	c := container.New()
	assert.Panics(t, func() {
		container.MustResolve[string](c, "Missing")
	})
}

func TestNew_UniqueIDs(t *testing.T) {
	assert.NotEqual(t, container.New().ID(), container.New().ID())
}
