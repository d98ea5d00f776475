package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ayuuto_config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadFromPath_AppliesDefaults(t *testing.T) {
	path := writeConfig(t, "apiBaseURL: https://api.ayuuto.test/api/\nsessionDir: /tmp/ayuuto\n")

	cfg, err := LoadFromPath(path)
	require.NoError(t, err)

	assert.Equal(t, "https://api.ayuuto.test/api", cfg.APIBaseURL)
	assert.Equal(t, 15*time.Second, cfg.RequestTimeout)
	assert.Equal(t, "en", cfg.Locale)
	assert.Equal(t, 4, cfg.ListConcurrency)
	assert.Equal(t, CacheSQLite, cfg.Cache.Driver)
	assert.Equal(t, filepath.Join("/tmp/ayuuto", "cache.db"), cfg.Cache.SQLitePath)
	assert.Equal(t, "me", cfg.Google.GmailUserID)
	assert.Equal(t, path, cfg.Path)
}

func TestLoadFromPath_FullConfig(t *testing.T) {
	path := writeConfig(t, `
apiBaseURL: https://api.ayuuto.test
requestTimeout: 30s
sessionDir: /tmp/ayuuto
locale: so
shareBaseURL: https://ayuuto.test/share
listConcurrency: 8
cache:
  driver: postgres
  postgresURL: postgres://localhost/ayuuto
export:
  spreadsheetID: sheet123
google:
  oauthClientFile: /tmp/oauth.json
  gmailSender: organiser@example.com
`)

	cfg, err := LoadFromPath(path)
	require.NoError(t, err)

	assert.Equal(t, 30*time.Second, cfg.RequestTimeout)
	assert.Equal(t, "so", cfg.Locale)
	assert.Equal(t, 8, cfg.ListConcurrency)
	assert.Equal(t, CachePostgres, cfg.Cache.Driver)
	assert.Equal(t, "postgres://localhost/ayuuto", cfg.Cache.PostgresURL)
	assert.Empty(t, cfg.Cache.SQLitePath)
	assert.Equal(t, "sheet123", cfg.Export.SpreadsheetID)
	assert.Equal(t, "organiser@example.com", cfg.Google.GmailSender)
}

func TestValidate_MissingBaseURL(t *testing.T) {
	path := writeConfig(t, "locale: en\n")

	_, err := LoadFromPath(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validation failed")
}

func TestValidate_PostgresNeedsURL(t *testing.T) {
	path := writeConfig(t, "apiBaseURL: https://api.ayuuto.test\ncache:\n  driver: postgres\n")

	_, err := LoadFromPath(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "PostgresURL")
}

func TestValidate_UnknownCacheDriver(t *testing.T) {
	path := writeConfig(t, "apiBaseURL: https://api.ayuuto.test\ncache:\n  driver: redis\n")

	_, err := LoadFromPath(path)
	assert.Error(t, err)
}

func TestLoadFromPath_InvalidYAML(t *testing.T) {
	path := writeConfig(t, "apiBaseURL: [unterminated\n")

	_, err := LoadFromPath(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse config file")
}

func TestSaveLocale_RoundTripsLocale(t *testing.T) {
	path := writeConfig(t, "apiBaseURL: https://api.ayuuto.test\nsessionDir: /tmp/ayuuto\n")

	cfg, err := LoadFromPath(path)
	require.NoError(t, err)

	require.NoError(t, cfg.SaveLocale("ar"))
	assert.Equal(t, "ar", cfg.Locale)

	reloaded, err := LoadFromPath(path)
	require.NoError(t, err)
	assert.Equal(t, "ar", reloaded.Locale)
	assert.Equal(t, 15*time.Second, reloaded.RequestTimeout)
}

func TestSaveLocale_KeepsUserFileAsWritten(t *testing.T) {
	path := writeConfig(t, `# Ayuuto staging
apiBaseURL: https://api.ayuuto.test
sessionDir: ~/ayuuto-staging # shared with the mobile build
locale: en
cache:
  driver: sqlite
`)

	cfg, err := LoadFromPath(path)
	require.NoError(t, err)
	require.NoError(t, cfg.SaveLocale("so"))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	content := string(raw)

	assert.Contains(t, content, "# Ayuuto staging")
	assert.Contains(t, content, "sessionDir: ~/ayuuto-staging")
	assert.Contains(t, content, "# shared with the mobile build")
	assert.Contains(t, content, "locale: so")
	assert.NotContains(t, content, "locale: en")
	assert.NotContains(t, content, "sqlitePath")
	assert.NotContains(t, content, "gmailUserID")
	assert.NotContains(t, content, "requestTimeout")
}

func TestSaveLocale_AddsMissingKey(t *testing.T) {
	path := writeConfig(t, "apiBaseURL: https://api.ayuuto.test\n")

	cfg, err := LoadFromPath(path)
	require.NoError(t, err)
	require.NoError(t, cfg.SaveLocale("ar"))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "apiBaseURL: https://api.ayuuto.test\nlocale: ar\n", string(raw))
}

func TestLoadOAuthClientFromPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "oauth.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"installed":{
		"client_id":"id","client_secret":"secret",
		"auth_uri":"https://accounts.google.com/o/oauth2/auth",
		"token_uri":"https://oauth2.googleapis.com/token",
		"redirect_uris":["http://localhost"]}}`), 0600))

	oauthCfg, err := LoadOAuthClientFromPath(path)
	require.NoError(t, err)
	assert.Equal(t, "id", oauthCfg.Installed.ClientID)

	cfg := &Config{Google: GoogleConfig{OAuthClientFile: path}}
	viaConfig, err := cfg.LoadOAuthClient()
	require.NoError(t, err)
	assert.Equal(t, "secret", viaConfig.Installed.ClientSecret)
}

func TestLoadOAuthClientFromPath_MissingSecret(t *testing.T) {
	path := filepath.Join(t.TempDir(), "oauth.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"installed":{"client_id":"id",
		"auth_uri":"https://a.test","token_uri":"https://t.test"}}`), 0600))

	_, err := LoadOAuthClientFromPath(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "oauth client validation failed")
}
