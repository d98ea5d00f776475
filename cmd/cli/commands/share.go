package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/ayuuto/ayuuto-cli/pkg/core/services"
)

// ShareCmd creates the share command
func ShareCmd(app *AppContext) *cobra.Command {
	var email string
	cmd := &cobra.Command{
		Use:   "share <group_id>",
		Short: "Create a read-only link to a group, optionally emailing it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var mailer services.ShareMailer
			if email != "" {
				gmail, err := app.GmailClient()
				if err != nil {
					return err
				}
				mailer = gmail
			}

			link, err := services.ShareGroup(app.Ctx, app.API, mailer, app.Logger, args[0], services.ShareOptions{
				BaseURL: app.Cfg.ShareBaseURL,
				Email:   email,
			})
			if link != nil {
				out := cmd.OutOrStdout()
				if link.URL != "" {
					fmt.Fprintf(out, "\n🔗 %s\n", link.URL)
				} else {
					fmt.Fprintf(out, "\n🔗 Share token: %s (view with 'shared %s')\n", link.Token, link.Token)
				}
				if err == nil && email != "" {
					fmt.Fprintf(out, "✓ Sent to %s\n", email)
				}
				fmt.Fprintln(out)
			}
			return err
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "Email the link to this address through Gmail")
	return cmd
}

// ExportCmd creates the export command
func ExportCmd(app *AppContext) *cobra.Command {
	var spreadsheetID string
	cmd := &cobra.Command{
		Use:   "export <group_id>",
		Short: "Write a group's payout ledger to Google Sheets",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if spreadsheetID == "" {
				spreadsheetID = app.Cfg.Export.SpreadsheetID
			}
			if spreadsheetID == "" {
				return services.ErrExportNotConfigured
			}

			sheets, err := app.SheetsClient()
			if err != nil {
				return err
			}

			tab, err := services.ExportGroup(app.Ctx, app.API, sheets, app.Locale, app.Logger, spreadsheetID, args[0], time.Now())
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "\n✓ Ledger written to tab %q\n  https://docs.google.com/spreadsheets/d/%s\n\n", tab, spreadsheetID)
			return nil
		},
	}
	cmd.Flags().StringVar(&spreadsheetID, "spreadsheet", "", "Spreadsheet ID (defaults to export.spreadsheetID)")
	return cmd
}
