package main

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/km-arc/timeos/framework/app"
)

type loader func() (*app.Application, error)

// bootedApp loads and boots the application.
func bootedApp(load loader) (*app.Application, error) {
	a, err := load()
	if err != nil {
		return nil, err
	}
	if err := a.Boot(); err != nil {
		return nil, err
	}
	return a, nil
}

func newHealthCmd(load loader) *cobra.Command {
	var resolve bool

	cmd := &cobra.Command{
		Use:   "health",
		Short: "Print the container health record",
		Long: `Print the container health record as JSON.

With --resolve every registered service is constructed first, so
construction failures show up in the record. Exits non-zero when the
container is degraded.

Examples:
  timeos health
  timeos health --resolve`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := bootedApp(load)
			if err != nil {
				return err
			}
			if resolve {
				// Failures are reported through the record.
				_ = a.ResolveAll()
			}

			record := a.HealthStatus()
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			if err := enc.Encode(record); err != nil {
				return err
			}
			if !record.Healthy() {
				return errDegraded
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&resolve, "resolve", false, "resolve every service before reporting")
	return cmd
}

func newServicesCmd(load loader) *cobra.Command {
	return &cobra.Command{
		Use:   "services",
		Short: "List registered services with state and dependencies",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := bootedApp(load)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "SERVICE\tSTATE\tDEPENDENCIES")
			for _, id := range a.Identifiers() {
				state, _ := a.State(id)
				deps := strings.Join(a.Dependencies(id), ", ")
				if deps == "" {
					deps = "-"
				}
				fmt.Fprintf(w, "%s\t%s\t%s\n", id, state, deps)
			}
			return w.Flush()
		},
	}
}

func newValidateCmd(load loader) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check that every declared dependency is registered",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := load()
			if err != nil {
				return err
			}
			if err := a.Validate(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "ok: %d services, %d providers\n",
				len(a.Identifiers()), len(a.Providers.Providers()))
			return nil
		},
	}
}

func newServeCmd(load loader) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the health endpoints on HEALTH_ADDR",
		Long: `Boot the application and serve /health, /services and /metrics on
HEALTH_ADDR until interrupted.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := load()
			if err != nil {
				return err
			}
			defer func() { _ = a.Logger.Sync() }()
			return a.Run(cmd.Context())
		},
	}
}
