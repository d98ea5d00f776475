package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/ayuuto/ayuuto-cli/pkg/core/model"
	"github.com/ayuuto/ayuuto-cli/pkg/core/schedule"
	"github.com/ayuuto/ayuuto-cli/pkg/core/services"
	"github.com/ayuuto/ayuuto-cli/pkg/core/validation"
)

// SetScheduleCmd creates the setSchedule command
func SetScheduleCmd(app *AppContext) *cobra.Command {
	var frequency, day string
	var amount float64
	cmd := &cobra.Command{
		Use:   "setSchedule <group_id>",
		Short: "Set how often and on which day contributions are collected",
		Long: `Set the contribution schedule of a group.

Monthly groups collect on a day of the month (1-31; short months use their
last day). Weekly and biweekly groups collect on a weekday.`,
		Example: "  setSchedule g1 --frequency monthly --day 5 --amount 100\n  setSchedule g1 --frequency weekly --day friday --amount 20",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := services.SetSchedule(app.Ctx, app.API, app.Logger, args[0], validation.ScheduleRequest{
				AmountPerPerson: amount,
				Frequency:       model.Frequency(frequency),
				CollectionDate:  day,
			}, time.Now())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "\n✓ %s collects %s %s on %s\n", result.Group.Name,
				app.Locale.FormatAmount(result.Group.AmountPerPerson), result.Group.Frequency, result.Group.CollectionDate)
			if len(result.NextCollections) > 0 {
				fmt.Fprintln(out, "Upcoming collections:")
				for _, d := range result.NextCollections {
					fmt.Fprintf(out, "  %s\n", d.Format(dateLayout))
				}
			}
			fmt.Fprintln(out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&frequency, "frequency", "f", "", "weekly, biweekly or monthly (required)")
	cmd.Flags().StringVarP(&day, "day", "d", "", "Day of month or weekday (required)")
	cmd.Flags().Float64VarP(&amount, "amount", "a", 0, "Contribution per person per round (required)")
	cmd.MarkFlagRequired("frequency")
	cmd.MarkFlagRequired("day")
	cmd.MarkFlagRequired("amount")
	return cmd
}

// CalendarCmd creates the calendar command
func CalendarCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "calendar <group_id>",
		Short: "Show who receives the pot on each upcoming collection date",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			view, err := services.ViewGroup(app.Ctx, app.API, app.Database, app.Guard, app.Logger, app.Viewer(), args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if view.Completion.Completed {
				fmt.Fprintf(out, "%s has completed every round.\n", view.Group.Name)
				return nil
			}

			payouts, err := schedule.PayoutCalendar(view.Group, time.Now())
			if err != nil {
				return err
			}

			fmt.Fprintf(out, "\nPayout calendar for %s (pool %s):\n", view.Group.Name, app.Locale.FormatAmount(view.PoolAmount))
			for _, p := range payouts {
				fmt.Fprintf(out, "  Round %-3d %s  %s\n", p.Round, p.Date.Format(dateLayout), p.Recipient.DisplayName())
			}
			fmt.Fprintln(out)
			return nil
		},
	}
}
