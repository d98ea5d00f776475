package commands

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ayuuto/ayuuto-cli/pkg/clients/ayuutoclient"
	"github.com/ayuuto/ayuuto-cli/pkg/core/optimistic"
	"github.com/ayuuto/ayuuto-cli/pkg/core/projector"
	"github.com/ayuuto/ayuuto-cli/pkg/core/schedule"
	"github.com/ayuuto/ayuuto-cli/pkg/core/services"
	"github.com/ayuuto/ayuuto-cli/pkg/core/validation"
)

// GroupsCmd creates the groups command
func GroupsCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "groups",
		Short: "List your savings groups",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			opts := services.ListOptions{Viewer: app.Viewer(), Concurrency: app.Cfg.ListConcurrency}

			for {
				views, err := services.ListGroups(app.Ctx, app.API, app.Database, app.Guard, app.Logger, opts)
				if err == nil {
					printGroupList(out, app, views)
					return nil
				}
				if ayuutoclient.IsAuthExpired(err) || services.IsRefused(err) {
					return err
				}

				HandleError(app, out, err)
				if !app.confirm(out, "Retry?") {
					return showCachedGroups(app, cmd)
				}
			}
		},
	}
}

func printGroupList(out io.Writer, app *AppContext, views []projector.View) {
	if len(views) == 0 {
		fmt.Fprintln(out, "\nYou are not in any groups yet. Create one with 'createGroup'.")
		return
	}
	fmt.Fprintf(out, "\nYour groups (%d):\n", len(views))
	for _, view := range views {
		printGroupCard(out, view, app.Locale)
	}
	fmt.Fprintln(out)
}

func showCachedGroups(app *AppContext, cmd *cobra.Command) error {
	out := cmd.OutOrStdout()
	viewer := app.Viewer()
	groups, err := services.CachedGroups(app.Ctx, app.Database, app.Logger, viewer.UserID)
	if err != nil || len(groups) == 0 {
		return err
	}

	viewer.ReadOnly = true
	fmt.Fprintln(out, "\nShowing groups from the last successful load:")
	for _, g := range groups {
		printGroupCard(out, projector.Project(g, viewer), app.Locale)
	}
	fmt.Fprintln(out)
	return nil
}

// CreateGroupCmd creates the createGroup command
func CreateGroupCmd(app *AppContext) *cobra.Command {
	var members int
	var amount float64
	cmd := &cobra.Command{
		Use:   "createGroup <name>",
		Short: "Create a new savings group",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			group, err := services.CreateGroup(app.Ctx, app.API, app.Logger, validation.CreateGroupRequest{
				Name:            args[0],
				MemberCount:     members,
				AmountPerPerson: amount,
			})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "\n✓ Created %s [%s]\n", group.Name, group.ID)
			fmt.Fprintf(out, "Next: add members with 'addParticipants %s <name>...'\n\n", group.ID)
			return nil
		},
	}
	cmd.Flags().IntVarP(&members, "members", "m", 0, "Number of members (required)")
	cmd.Flags().Float64VarP(&amount, "amount", "a", 0, "Contribution per person per round (required)")
	cmd.MarkFlagRequired("members")
	cmd.MarkFlagRequired("amount")
	return cmd
}

// GroupCmd creates the group command
func GroupCmd(app *AppContext) *cobra.Command {
	var offline bool
	cmd := &cobra.Command{
		Use:   "group <group_id>",
		Short: "Show a group's participants, round and schedule",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			groupID := args[0]

			if !offline {
				view, err := services.ViewGroup(app.Ctx, app.API, app.Database, app.Guard, app.Logger, app.Viewer(), groupID)
				if err == nil {
					printGroupDetails(out, *view, app.Locale, upcomingFor(app, *view))
					return nil
				}
				if !ayuutoclient.IsTransport(err) {
					return err
				}
				HandleError(app, out, err)
			}

			cached, err := services.CachedGroup(app.Ctx, app.Database, app.Logger, app.Viewer(), groupID)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "\nCached copy from %s (read-only)\n", cached.FetchedAt.Local().Format("2006-01-02 15:04"))
			printGroupDetails(out, cached.View, app.Locale, nil)
			return nil
		},
	}
	cmd.Flags().BoolVar(&offline, "offline", false, "Show the cached copy without contacting the server")
	return cmd
}

func upcomingFor(app *AppContext, view projector.View) []time.Time {
	if view.Group.Frequency == "" || view.Completion.Completed {
		return nil
	}
	dates, err := schedule.NextCollections(view.Group, time.Now(), 1)
	if err != nil {
		app.Logger.Debug("No collection dates", zap.String("group_id", view.Group.ID), zap.Error(err))
		return nil
	}
	return dates
}

// DeleteGroupCmd creates the deleteGroup command
func DeleteGroupCmd(app *AppContext) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "deleteGroup <group_id>",
		Short: "Delete a group you own",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			groupID := args[0]

			if !yes && !app.confirm(out, fmt.Sprintf("Delete group %s? This cannot be undone.", groupID)) {
				fmt.Fprintln(out, "Cancelled.")
				return nil
			}

			viewerID := app.Viewer().UserID
			cached, err := services.CachedGroups(app.Ctx, app.Database, app.Logger, viewerID)
			if err != nil {
				return err
			}
			list := optimistic.NewStore(cached)

			if err := services.DeleteGroup(app.Ctx, app.API, app.Database, list, app.Logger, viewerID, groupID); err != nil {
				if !ayuutoclient.IsAuthExpired(err) {
					app.Logger.Debug("Delete rolled back", zap.Int("groups", len(list.Get())))
				}
				return err
			}

			fmt.Fprintf(out, "✓ Deleted group %s\n", groupID)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")
	return cmd
}

// SharedCmd creates the shared command
func SharedCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "shared <share_token>",
		Short: "View a group through its read-only share link",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			view, err := services.ViewSharedGroup(app.Ctx, app.API, app.Logger, args[0])
			if err != nil {
				return err
			}
			printGroupDetails(cmd.OutOrStdout(), *view, app.Locale, upcomingFor(app, *view))
			return nil
		},
	}
}
