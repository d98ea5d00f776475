package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ayuuto/ayuuto-cli/pkg/core/services"
	"github.com/ayuuto/ayuuto-cli/pkg/core/validation"
)

// RegisterCmd creates the register command
func RegisterCmd(app *AppContext) *cobra.Command {
	var name string
	cmd := &cobra.Command{
		Use:   "register <email>",
		Short: "Create an account and log in",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if name == "" {
				var err error
				if name, err = app.prompt(out, "Name: "); err != nil {
					return err
				}
			}
			password, err := app.prompt(out, "Password: ")
			if err != nil {
				return err
			}

			user, err := services.Register(app.Ctx, app.API, app.Sessions, app.Logger, validation.RegisterRequest{
				Name:     name,
				Email:    args[0],
				Password: password,
			})
			if err != nil {
				return err
			}

			fmt.Fprintf(out, "\n✓ Welcome to Ayuuto, %s!\n\n", userLabel(*user))
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "Your display name")
	return cmd
}

// LoginCmd creates the login command
func LoginCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "login <email>",
		Short: "Log in to your account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			password, err := app.prompt(out, "Password: ")
			if err != nil {
				return err
			}

			user, err := services.Login(app.Ctx, app.API, app.Sessions, app.Logger, validation.LoginRequest{
				Email:    args[0],
				Password: password,
			})
			if err != nil {
				return err
			}

			fmt.Fprintf(out, "\n✓ Logged in as %s\n\n", userLabel(*user))
			return nil
		},
	}
}

// LogoutCmd creates the logout command
func LogoutCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := services.Logout(app.Sessions, app.Logger); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "✓ Logged out")
			return nil
		},
	}
}

// WhoAmICmd creates the whoami command
func WhoAmICmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			user, ok := app.Sessions.User()
			if !ok {
				fmt.Fprintln(out, "Not logged in.")
				return nil
			}
			fmt.Fprintf(out, "%s <%s>\n", userLabel(user), user.Email)
			return nil
		},
	}
}

// ForgotPasswordCmd creates the forgotPassword command. It walks through
// requesting a code, verifying it and choosing a new password.
func ForgotPasswordCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "forgotPassword <email>",
		Short: "Reset your password with an emailed code",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			email := args[0]

			if err := services.RequestPasswordReset(app.Ctx, app.API, app.Logger, email); err != nil {
				return err
			}
			fmt.Fprintf(out, "✓ A 6-digit code was sent to %s\n", email)

			otp, err := app.prompt(out, "Code: ")
			if err != nil {
				return err
			}
			if err := services.VerifyResetOTP(app.Ctx, app.API, app.Logger, email, otp); err != nil {
				return err
			}

			password, err := app.prompt(out, "New password: ")
			if err != nil {
				return err
			}
			err = services.ResetPassword(app.Ctx, app.API, app.Logger, validation.ResetPasswordRequest{
				Email:       email,
				OTP:         otp,
				NewPassword: password,
			})
			if err != nil {
				return err
			}

			fmt.Fprintln(out, "\n✓ Password updated. You can now log in.")
			return nil
		},
	}
}
