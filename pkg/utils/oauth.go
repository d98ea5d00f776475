package utils

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/ayuuto/ayuuto-cli/internal/config"
)

const (
	AuthPort       = 3000
	authTimeout    = 5 * time.Minute
	callbackPath   = "/oauth/callback"
	tokenDirName   = "google-tokens"
	tokenFilePerms = 0600
	tokenDirPerms  = 0700
	tokenInfoURL   = "https://oauth2.googleapis.com/tokeninfo"
)

// OAuth scopes for the ledger export and share-link email
const (
	ScopeSheets    = "https://www.googleapis.com/auth/spreadsheets"
	ScopeGmailSend = "https://www.googleapis.com/auth/gmail.send"
)

func requiredScopes() []string {
	return []string{ScopeSheets, ScopeGmailSend}
}

// GetOAuthConfig creates an OAuth2 config requesting every Google scope the
// CLI needs, redirecting to the local callback server
func GetOAuthConfig(oauthCfg *config.OAuthClientConfig) (*oauth2.Config, error) {
	oauthConfigJSON, err := json.Marshal(oauthCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal oauth config: %w", err)
	}

	googleConfig, err := google.ConfigFromJSON(oauthConfigJSON, requiredScopes()...)
	if err != nil {
		return nil, fmt.Errorf("failed to create google config: %w", err)
	}

	googleConfig.RedirectURL = fmt.Sprintf("http://localhost:%d%s", AuthPort, callbackPath)
	return googleConfig, nil
}

// GoogleAuth obtains and persists the Google token used by the Sheets and
// Gmail clients. Only one authorization flow runs at a time.
type GoogleAuth struct {
	oauthConfig  *oauth2.Config
	tokenPath    string
	tokenInfoURL string
	logger       *zap.Logger

	mu     sync.Mutex
	cached *oauth2.Token
}

// NewGoogleAuth stores tokens under <sessionDir>/google-tokens/token-<env>.json
func NewGoogleAuth(oauthConfig *oauth2.Config, sessionDir, env string, logger *zap.Logger) *GoogleAuth {
	if env == "" {
		env = "default"
	}
	return &GoogleAuth{
		oauthConfig:  oauthConfig,
		tokenPath:    filepath.Join(sessionDir, tokenDirName, fmt.Sprintf("token-%s.json", env)),
		tokenInfoURL: tokenInfoURL,
		logger:       logger,
	}
}

// OAuthConfig returns the underlying client configuration
func (a *GoogleAuth) OAuthConfig() *oauth2.Config {
	return a.oauthConfig
}

// Token returns a valid token, refreshing the stored one or running the
// browser authorization flow when needed
func (a *GoogleAuth) Token(ctx context.Context) (*oauth2.Token, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.cached != nil && a.cached.Valid() {
		return a.cached, nil
	}

	stored, err := a.loadToken()
	if err != nil {
		a.logger.Warn("Failed to load stored Google token", zap.Error(err))
	}

	if stored != nil {
		if token, ok := a.reuse(ctx, stored); ok {
			a.cached = token
			return token, nil
		}
	}

	a.logger.Info("No valid Google token found, starting authorization")

	authURL := a.oauthConfig.AuthCodeURL("state", oauth2.AccessTypeOffline)
	fmt.Printf("\nVisit this URL to authorize Ayuuto:\n%s\n\n", authURL)

	code, err := listenForAuthCallback(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get authorization code: %w", err)
	}

	token, err := a.oauthConfig.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange code for token: %w", err)
	}

	if err := a.checkScopes(ctx, token); err != nil {
		return nil, fmt.Errorf("token validation failed: %w", err)
	}

	if err := a.saveToken(token); err != nil {
		a.logger.Warn("Failed to save Google token", zap.Error(err))
	}

	a.cached = token
	return token, nil
}

// reuse returns the stored token, refreshed if necessary, when it still
// carries the required scopes. Unusable tokens are deleted.
func (a *GoogleAuth) reuse(ctx context.Context, stored *oauth2.Token) (*oauth2.Token, bool) {
	token := stored
	if !stored.Valid() {
		if stored.RefreshToken == "" {
			return nil, false
		}
		refreshed, err := a.oauthConfig.TokenSource(ctx, stored).Token()
		if err != nil {
			a.logger.Debug("Google token refresh failed", zap.Error(err))
			return nil, false
		}
		token = refreshed
	}

	if err := a.checkScopes(ctx, token); err != nil {
		a.logger.Warn("Stored Google token is missing scopes, discarding it", zap.Error(err))
		if err := a.DeleteToken(); err != nil {
			a.logger.Warn("Failed to delete Google token", zap.Error(err))
		}
		return nil, false
	}

	if token != stored {
		if err := a.saveToken(token); err != nil {
			a.logger.Warn("Failed to save refreshed Google token", zap.Error(err))
		}
	}
	return token, true
}

// checkScopes asks Google's tokeninfo endpoint which scopes were granted
func (a *GoogleAuth) checkScopes(ctx context.Context, token *oauth2.Token) error {
	endpoint := a.tokenInfoURL + "?access_token=" + url.QueryEscape(token.AccessToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to create tokeninfo request: %w", err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call tokeninfo endpoint: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("tokeninfo request failed with status %d: %s", resp.StatusCode, string(body))
	}

	var info struct {
		Scope string `json:"scope"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return fmt.Errorf("failed to decode tokeninfo response: %w", err)
	}

	return missingScopes(strings.Fields(info.Scope))
}

func missingScopes(granted []string) error {
	var missing []string
	for _, required := range requiredScopes() {
		if !slices.Contains(granted, required) {
			missing = append(missing, required)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("token is missing required scopes: %v", missing)
	}
	return nil
}

// ClearToken drops the in-memory token
func (a *GoogleAuth) ClearToken() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.cached = nil
}

func (a *GoogleAuth) loadToken() (*oauth2.Token, error) {
	data, err := os.ReadFile(a.tokenPath)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read token file: %w", err)
	}

	var token oauth2.Token
	if err := json.Unmarshal(data, &token); err != nil {
		return nil, fmt.Errorf("failed to parse token file: %w", err)
	}
	return &token, nil
}

func (a *GoogleAuth) saveToken(token *oauth2.Token) error {
	if err := os.MkdirAll(filepath.Dir(a.tokenPath), tokenDirPerms); err != nil {
		return fmt.Errorf("failed to create token directory: %w", err)
	}

	data, err := json.Marshal(token)
	if err != nil {
		return fmt.Errorf("failed to marshal token: %w", err)
	}

	if err := os.WriteFile(a.tokenPath, data, tokenFilePerms); err != nil {
		return fmt.Errorf("failed to write token file: %w", err)
	}
	return nil
}

// DeleteToken removes the stored token file
func (a *GoogleAuth) DeleteToken() error {
	if err := os.Remove(a.tokenPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete token file: %w", err)
	}
	return nil
}

// listenForAuthCallback serves the redirect target until a code arrives
func listenForAuthCallback(ctx context.Context) (string, error) {
	codeChan := make(chan string, 1)
	errChan := make(chan error, 1)

	mux := http.NewServeMux()
	mux.HandleFunc(callbackPath, func(w http.ResponseWriter, r *http.Request) {
		code := r.URL.Query().Get("code")
		if code == "" {
			select {
			case errChan <- fmt.Errorf("no authorization code received"):
			default:
			}
			http.Error(w, "Authorization failed", http.StatusBadRequest)
			return
		}

		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, `<html><body><h1>Ayuuto is authorized</h1><p>You can close this window.</p></body></html>`)

		select {
		case codeChan <- code:
		default:
		}
	})

	server := &http.Server{Addr: fmt.Sprintf(":%d", AuthPort), Handler: mux}

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("server error: %w", err)
		}
	}()

	timeoutCtx, cancel := context.WithTimeout(ctx, authTimeout)
	defer cancel()

	var code string
	var authErr error

	select {
	case code = <-codeChan:
	case authErr = <-errChan:
	case <-timeoutCtx.Done():
		authErr = fmt.Errorf("authorization timeout after %v", authTimeout)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	server.Shutdown(shutdownCtx)

	if authErr != nil {
		return "", authErr
	}
	return code, nil
}
