package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ayuuto/ayuuto-cli/pkg/core/projector"
	"github.com/ayuuto/ayuuto-cli/pkg/core/services"
	"github.com/ayuuto/ayuuto-cli/pkg/core/validation"
)

// AddParticipantsCmd creates the addParticipants command
func AddParticipantsCmd(app *AppContext) *cobra.Command {
	var emails []string
	cmd := &cobra.Command{
		Use:   "addParticipants <group_id> [name...]",
		Short: "Add members by name, or invite existing users with --email",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			groupID := args[0]

			var req validation.AddParticipantsRequest
			for _, name := range args[1:] {
				req.Participants = append(req.Participants, validation.NewParticipant{Name: name})
			}
			for _, email := range emails {
				req.Participants = append(req.Participants, validation.NewParticipant{Email: email})
			}

			group, err := services.AddParticipants(app.Ctx, app.API, app.Logger, groupID, req)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "\n✓ %s now has %d/%d members\n", group.Name, len(group.Participants), group.MemberCount)
			if len(group.Participants) >= validation.MinMembers {
				fmt.Fprintf(out, "When everyone has joined, run 'spin %s' to draw the payout order.\n", group.ID)
			}
			fmt.Fprintln(out)
			return nil
		},
	}
	cmd.Flags().StringSliceVar(&emails, "email", nil, "Email of a registered user to add (repeatable)")
	return cmd
}

// RemoveParticipantCmd creates the removeParticipant command
func RemoveParticipantCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "removeParticipant <group_id> <participant>",
		Short: "Remove a member before the order is spun (by position, name or id)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			groupID := args[0]

			view, err := services.ViewGroup(app.Ctx, app.API, app.Database, app.Guard, app.Logger, app.Viewer(), groupID)
			if err != nil {
				return err
			}
			participant, err := resolveParticipant(*view, args[1])
			if err != nil {
				return err
			}

			group, err := services.RemoveParticipant(app.Ctx, app.API, app.Logger, groupID, participant.ID)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "\n✓ Removed %s. %s has %d/%d members\n\n",
				participant.DisplayName(), group.Name, len(group.Participants), group.MemberCount)
			return nil
		},
	}
}

// participantCommand loads the group view and resolves a participant
// reference for commands that act on one member
func participantCommand(app *AppContext, groupID, ref string) (projector.View, string, error) {
	view, err := services.ViewGroup(app.Ctx, app.API, app.Database, app.Guard, app.Logger, app.Viewer(), groupID)
	if err != nil {
		return projector.View{}, "", err
	}
	participant, err := resolveParticipant(*view, ref)
	if err != nil {
		return projector.View{}, "", err
	}
	return *view, participant.ID, nil
}
