package cli

import (
	"context"

	"github.com/alexanderramin/releaseplan/internal/service"
	"github.com/spf13/cobra"
)

// Server runs the HTTP surface until ctx is cancelled.
type Server interface {
	Run(ctx context.Context, addr string) error
}

// App holds the services used by CLI commands.
type App struct {
	Plans      service.ReleasePlanService
	Connection service.ConnectionService
	Server     Server

	// Project is the remote project aggregated when --project is not given.
	Project string
	// Addr is the listen address used when --addr is not given.
	Addr string

	// IsInteractive reports whether progress output can be drawn.
	IsInteractive func() bool

	// Setup wires the fields above once persistent flags are parsed. Nil
	// when the caller wired them up front.
	Setup func(configPath string) error
}

func (a *App) interactive() bool {
	return a.IsInteractive != nil && a.IsInteractive()
}

// NewRootCmd creates the top-level "releaseplan" command and registers all
// subcommands against the provided App.
func NewRootCmd(app *App) *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:           "releaseplan",
		Short:         "Aggregate epics, features and sprints into a release plan",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if app.Setup == nil {
				return nil
			}
			return app.Setup(configPath)
		},
	}
	root.PersistentFlags().StringVar(&configPath, "config", "",
		"config file (default ./releaseplan.yaml, then ~/.releaseplan/config.yaml)")

	root.AddCommand(
		newServeCmd(app),
		newFetchCmd(app),
		newShowCmd(app),
		newProjectsCmd(app),
		newTestConnectionCmd(app),
	)

	return root
}
