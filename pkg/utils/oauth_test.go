package utils

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"github.com/ayuuto/ayuuto-cli/internal/config"
)

func testOAuthClient() *config.OAuthClientConfig {
	return &config.OAuthClientConfig{Installed: config.OAuthInstalled{
		ClientID:     "client",
		ClientSecret: "secret",
		AuthURI:      "https://accounts.google.com/o/oauth2/auth",
		TokenURI:     "https://oauth2.googleapis.com/token",
		RedirectURIs: []string{"http://localhost"},
	}}
}

func TestGetOAuthConfig(t *testing.T) {
	cfg, err := GetOAuthConfig(testOAuthClient())
	require.NoError(t, err)

	assert.Equal(t, "client", cfg.ClientID)
	assert.Equal(t, "http://localhost:3000/oauth/callback", cfg.RedirectURL)
	assert.ElementsMatch(t, []string{ScopeSheets, ScopeGmailSend}, cfg.Scopes)
}

func TestMissingScopes(t *testing.T) {
	assert.NoError(t, missingScopes([]string{ScopeGmailSend, "openid", ScopeSheets}))

	err := missingScopes([]string{ScopeSheets})
	require.Error(t, err)
	assert.Contains(t, err.Error(), ScopeGmailSend)
}

func TestGoogleAuth_ReusesStoredToken(t *testing.T) {
	tokenInfo := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "stored-access", r.URL.Query().Get("access_token"))
		w.Write([]byte(`{"scope":"` + ScopeSheets + ` ` + ScopeGmailSend + `"}`))
	}))
	defer tokenInfo.Close()

	oauthCfg, err := GetOAuthConfig(testOAuthClient())
	require.NoError(t, err)

	auth := NewGoogleAuth(oauthCfg, t.TempDir(), "test", zap.NewNop())
	auth.tokenInfoURL = tokenInfo.URL

	stored := &oauth2.Token{AccessToken: "stored-access", Expiry: time.Now().Add(time.Hour)}
	require.NoError(t, auth.saveToken(stored))

	info, err := os.Stat(auth.tokenPath)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	token, err := auth.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "stored-access", token.AccessToken)
}

func TestGoogleAuth_DiscardsTokenWithMissingScopes(t *testing.T) {
	tokenInfo := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"scope":"` + ScopeSheets + `"}`))
	}))
	defer tokenInfo.Close()

	oauthCfg, err := GetOAuthConfig(testOAuthClient())
	require.NoError(t, err)

	auth := NewGoogleAuth(oauthCfg, t.TempDir(), "test", zap.NewNop())
	auth.tokenInfoURL = tokenInfo.URL

	stored := &oauth2.Token{AccessToken: "narrow", Expiry: time.Now().Add(time.Hour)}
	require.NoError(t, auth.saveToken(stored))

	_, ok := auth.reuse(context.Background(), stored)
	assert.False(t, ok)

	_, err = os.Stat(auth.tokenPath)
	assert.True(t, os.IsNotExist(err))
}

func TestGoogleAuth_LoadMissingToken(t *testing.T) {
	oauthCfg, err := GetOAuthConfig(testOAuthClient())
	require.NoError(t, err)

	auth := NewGoogleAuth(oauthCfg, t.TempDir(), "", zap.NewNop())
	token, err := auth.loadToken()
	assert.NoError(t, err)
	assert.Nil(t, token)
	assert.NoError(t, auth.DeleteToken())
}
