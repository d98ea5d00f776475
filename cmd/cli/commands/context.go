package commands

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/ayuuto/ayuuto-cli/internal/config"
	"github.com/ayuuto/ayuuto-cli/pkg/clients/ayuutoclient"
	"github.com/ayuuto/ayuuto-cli/pkg/clients/gmailclient"
	"github.com/ayuuto/ayuuto-cli/pkg/clients/sheetsclient"
	"github.com/ayuuto/ayuuto-cli/pkg/core/loadguard"
	"github.com/ayuuto/ayuuto-cli/pkg/core/locale"
	"github.com/ayuuto/ayuuto-cli/pkg/core/projector"
	"github.com/ayuuto/ayuuto-cli/pkg/db"
	"github.com/ayuuto/ayuuto-cli/pkg/session"
	"github.com/ayuuto/ayuuto-cli/pkg/utils"
)

// AppContext holds the application dependencies shared across all commands
type AppContext struct {
	Env      string
	Cfg      *config.Config
	API      *ayuutoclient.Client
	Sessions *session.Store
	Locale   *locale.Store
	Guard    *loadguard.Guard
	Database db.Database
	Logger   *zap.Logger
	Ctx      context.Context
	In       *bufio.Reader

	googleOnce sync.Once
	googleErr  error
	sheets     *sheetsclient.Client
	gmail      *gmailclient.Client
}

// Viewer identifies the signed-in user for projections
func (a *AppContext) Viewer() projector.Viewer {
	user, _ := a.Sessions.User()
	return projector.Viewer{UserID: user.ID}
}

// SheetsClient returns the Sheets client, authorizing with Google on first use
func (a *AppContext) SheetsClient() (*sheetsclient.Client, error) {
	if err := a.initGoogle(); err != nil {
		return nil, err
	}
	return a.sheets, nil
}

// GmailClient returns the Gmail client, authorizing with Google on first use
func (a *AppContext) GmailClient() (*gmailclient.Client, error) {
	if err := a.initGoogle(); err != nil {
		return nil, err
	}
	return a.gmail, nil
}

func (a *AppContext) initGoogle() error {
	a.googleOnce.Do(func() {
		a.googleErr = a.connectGoogle()
	})
	return a.googleErr
}

func (a *AppContext) connectGoogle() error {
	a.Logger.Info("Loading Google OAuth client configuration")
	oauthClient, err := a.Cfg.LoadOAuthClient()
	if err != nil {
		return fmt.Errorf("failed to load OAuth client config: %w", err)
	}

	oauthConfig, err := utils.GetOAuthConfig(oauthClient)
	if err != nil {
		return err
	}

	auth := utils.NewGoogleAuth(oauthConfig, a.Cfg.SessionDir, a.Env, a.Logger)
	token, err := auth.Token(a.Ctx)
	if err != nil {
		return fmt.Errorf("failed to get Google token: %w", err)
	}
	httpClient := oauthConfig.Client(a.Ctx, token)

	a.sheets, err = sheetsclient.NewClient(a.Ctx, httpClient)
	if err != nil {
		return err
	}
	a.Logger.Debug("Sheets client initialized")

	a.gmail, err = gmailclient.NewClient(a.Ctx, httpClient, a.Cfg.Google.GmailUserID, a.Cfg.Google.GmailSender)
	if err != nil {
		return err
	}
	a.Logger.Debug("Gmail client initialized")
	return nil
}

// prompt prints label and reads one trimmed line
func (a *AppContext) prompt(out io.Writer, label string) (string, error) {
	fmt.Fprint(out, label)
	line, err := a.In.ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return strings.TrimSpace(line), nil
}

// confirm asks a yes/no question, defaulting to no
func (a *AppContext) confirm(out io.Writer, question string) bool {
	answer, err := a.prompt(out, question+" [y/N] ")
	if err != nil {
		return false
	}
	answer = strings.ToLower(answer)
	return answer == "y" || answer == "yes"
}
