package cli

import (
	"time"

	"github.com/alexanderramin/releaseplan/internal/cli/formatter"
	"github.com/alexanderramin/releaseplan/internal/contract"
	"github.com/spf13/cobra"
)

func newFetchCmd(app *App) *cobra.Command {
	var project string
	var format outputFormat

	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Build the release plan from the remote, cache it and print it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if project == "" {
				project = app.Project
			}

			stop := func() {}
			if format == formatTable && app.interactive() {
				stop = formatter.StartSpinner(cmd.ErrOrStderr(), "Fetching release plan for "+project)
			}
			plan, err := app.Plans.BuildReleasePlan(cmd.Context(), project)
			stop()
			if err != nil {
				return err
			}

			return render(cmd.OutOrStdout(), format, plan, func() string {
				return formatter.FormatReleasePlan(*plan)
			})
		},
	}

	cmd.Flags().StringVarP(&project, "project", "p", "", "remote project (defaults to devops.project)")
	addOutputFlag(cmd.Flags(), &format)
	return cmd
}

func newShowCmd(app *App) *cobra.Command {
	var format outputFormat

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the cached release plan without contacting the remote",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, err := app.Plans.Cached(cmd.Context())
			if err != nil {
				return err
			}
			return render(cmd.OutOrStdout(), format, contract.NewCachedPlanResponse(snap), func() string {
				return formatter.FormatSnapshot(snap, time.Now())
			})
		},
	}

	addOutputFlag(cmd.Flags(), &format)
	return cmd
}
