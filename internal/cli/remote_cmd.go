package cli

import (
	"errors"
	"fmt"

	"github.com/alexanderramin/releaseplan/internal/cli/formatter"
	"github.com/alexanderramin/releaseplan/internal/contract"
	"github.com/spf13/cobra"
)

// errConnectionFailed gives test-connection a non-zero exit status.
var errConnectionFailed = errors.New("connection test failed")

func newProjectsCmd(app *App) *cobra.Command {
	var format outputFormat

	cmd := &cobra.Command{
		Use:   "projects",
		Short: "List the projects visible to the configured token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			projects, err := app.Connection.ListProjects(cmd.Context())
			if err != nil {
				return fmt.Errorf("listing projects: %w", err)
			}
			return render(cmd.OutOrStdout(), format, projects, func() string {
				return formatter.FormatProjectList(projects)
			})
		},
	}

	addOutputFlag(cmd.Flags(), &format)
	return cmd
}

func newTestConnectionCmd(app *App) *cobra.Command {
	var format outputFormat

	cmd := &cobra.Command{
		Use:   "test-connection",
		Short: "Check that the remote is reachable with the configured token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			status := contract.NewConnectionStatus(app.Connection.TestConnection(cmd.Context()))
			err := render(cmd.OutOrStdout(), format, status, func() string {
				return formatter.FormatConnectionStatus(status)
			})
			if err != nil {
				return err
			}
			if !status.OK() {
				return errConnectionFailed
			}
			return nil
		},
	}

	addOutputFlag(cmd.Flags(), &format)
	return cmd
}
