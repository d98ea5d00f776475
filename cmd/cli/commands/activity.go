package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ayuuto/ayuuto-cli/pkg/core/services"
)

// ActivityCmd creates the activity command
func ActivityCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "activity <group_id>",
		Short: "Show the activity log of a group",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := services.ActivityLog(app.Ctx, app.API, app.Database, app.Logger, app.Viewer(), args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out)
			if result.FromCache {
				fmt.Fprintln(out, "Server unreachable, showing the cached log:")
			}
			if result.Summary != nil {
				printGroupCard(out, *result.Summary, app.Locale)
				fmt.Fprintln(out)
			}
			printActivity(out, result.Logs)
			fmt.Fprintln(out)
			return nil
		},
	}
}
