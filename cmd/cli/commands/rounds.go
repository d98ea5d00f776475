package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ayuuto/ayuuto-cli/pkg/core/projector"
	"github.com/ayuuto/ayuuto-cli/pkg/core/services"
)

// SpinCmd creates the spin command
func SpinCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "spin <group_id>",
		Short: "Draw the payout order. Members can no longer change afterwards",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			view, err := services.SpinOrder(app.Ctx, app.API, app.Logger, app.Viewer(), args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "\n🎲 Payout order for %s:\n", view.Group.Name)
			for _, row := range view.Participants {
				fmt.Fprintf(out, "  %d. %s\n", row.Position, row.DisplayName())
			}
			fmt.Fprintln(out)
			return nil
		},
	}
}

// TogglePaidCmd creates the togglePaid command
func TogglePaidCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "togglePaid <group_id> <participant>",
		Short: "Mark a contributor as paid or unpaid for this round",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			viewer := app.Viewer()

			_, participantID, err := participantCommand(app, args[0], args[1])
			if err != nil {
				return err
			}

			view, err := services.TogglePayment(app.Ctx, app.API, app.Logger, viewer, args[0], participantID, func(pending projector.View) {
				fmt.Fprintf(out, "… updating (%d/%d paid)\n", pending.PaidCount, len(pending.Participants))
			})
			if err != nil {
				return err
			}

			printGroupDetails(out, *view, app.Locale, nil)
			return nil
		},
	}
}

// PayRecipientCmd creates the payRecipient command
func PayRecipientCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "payRecipient <group_id>",
		Short: "Pay the pot to this round's recipient once everyone has contributed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			view, err := services.PayRecipient(app.Ctx, app.API, app.Logger, app.Viewer(), args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if view.Recipient != nil {
				fmt.Fprintf(out, "\n💰 %s received %s\n", view.Recipient.DisplayName(), app.Locale.FormatAmount(view.PoolAmount))
			}
			printGroupDetails(out, *view, app.Locale, nil)
			return nil
		},
	}
}

// NextRoundCmd creates the nextRound command
func NextRoundCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "nextRound <group_id>",
		Short: "Close the current round and move to the next recipient",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			view, err := services.NextRound(app.Ctx, app.API, app.Logger, app.Viewer(), args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if view.Completion.Completed {
				fmt.Fprintf(out, "\n🎉 %s is complete. Every member has received the pot.\n\n", view.Group.Name)
				return nil
			}
			printGroupDetails(out, *view, app.Locale, upcomingFor(app, *view))
			return nil
		},
	}
}
