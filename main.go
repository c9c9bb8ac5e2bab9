// Command timeos inspects and serves the Time OS service container.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/km-arc/timeos/framework/app"
)

var version = "dev"

// newApplication builds the application for every command.
var newApplication = app.New

// errDegraded signals a failed health check without printing usage.
var errDegraded = errors.New("container is degraded")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		if !errors.Is(err, errDegraded) {
			fmt.Fprintln(os.Stderr, "error:", err)
		}
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var envFiles []string

	root := &cobra.Command{
		Use:   "timeos",
		Short: "Time OS service container",
		Long: `timeos wires the Time OS services into one container and reports on it.

Configuration is read from .env (or the files given with --env-file) and
the process environment.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringSliceVar(&envFiles, "env-file", nil, "env files to load (default .env)")

	load := func() (*app.Application, error) {
		return newApplication(version, envFiles...)
	}

	root.AddCommand(
		newHealthCmd(load),
		newServicesCmd(load),
		newValidateCmd(load),
		newServeCmd(load),
	)
	return root
}
