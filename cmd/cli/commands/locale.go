package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ayuuto/ayuuto-cli/pkg/core/locale"
)

// LocaleCmd creates the locale command
func LocaleCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "locale [language]",
		Short: "Show or change the display language (en, so, ar)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			if len(args) == 0 {
				fmt.Fprintf(out, "Language: %s\n", app.Locale.Tag())
				fmt.Fprint(out, "Supported:")
				for _, tag := range locale.Supported {
					fmt.Fprintf(out, " %s", tag)
				}
				fmt.Fprintln(out)
				return nil
			}

			tag, err := app.Locale.Set(args[0])
			if err != nil {
				return err
			}

			if err := app.Cfg.SaveLocale(tag.String()); err != nil {
				return fmt.Errorf("language changed for this session only: %w", err)
			}
			app.Logger.Info("Locale updated", zap.String("locale", tag.String()))

			fmt.Fprintf(out, "✓ Language set to %s (example amount: %s)\n", tag, app.Locale.FormatAmount(1234.5))
			return nil
		},
	}
}
