package commands

import (
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/ayuuto/ayuuto-cli/pkg/clients/ayuutoclient"
	"github.com/ayuuto/ayuuto-cli/pkg/core/validation"
)

// HandleError reports a command failure. An expired session is cleared so
// the next command starts from a clean login.
func HandleError(app *AppContext, out io.Writer, err error) {
	if err == nil {
		return
	}

	switch {
	case ayuutoclient.IsAuthExpired(err):
		if app != nil && app.Sessions != nil {
			if clearErr := app.Sessions.Clear(); clearErr != nil && app.Logger != nil {
				app.Logger.Warn("Failed to clear expired session", zap.Error(clearErr))
			}
		}
		fmt.Fprintln(out, "🔒 Your session has expired or you are not logged in. Run 'login' to continue.")
	case validation.IsValidationError(err):
		fmt.Fprintf(out, "⚠️  %v\n", err)
	case ayuutoclient.IsTransport(err):
		fmt.Fprintf(out, "❌ Could not reach the Ayuuto server: %v\n", err)
	default:
		fmt.Fprintf(out, "❌ Error: %v\n", err)
	}
}
