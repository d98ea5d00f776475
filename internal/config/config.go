package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

const (
	configBaseName         = "ayuuto_config"
	defaultRequestTimeout  = 15 * time.Second
	defaultSessionDirName  = ".ayuuto"
	defaultLocale          = "en"
	defaultListConcurrency = 4
	defaultSQLiteFileName  = "cache.db"
)

// Cache drivers
const (
	CacheSQLite   = "sqlite"
	CachePostgres = "postgres"
	CacheNone     = "none"
)

// CacheConfig selects where group snapshots are cached between runs
type CacheConfig struct {
	Driver      string `yaml:"driver" validate:"oneof=sqlite postgres none"`
	SQLitePath  string `yaml:"sqlitePath,omitempty"`
	PostgresURL string `yaml:"postgresURL,omitempty" validate:"required_if=Driver postgres"`
}

// ExportConfig points at the spreadsheet receiving payout ledgers
type ExportConfig struct {
	SpreadsheetID string `yaml:"spreadsheetID,omitempty"`
}

// GoogleConfig holds settings for the Sheets and Gmail integrations
type GoogleConfig struct {
	OAuthClientFile string `yaml:"oauthClientFile,omitempty"`
	GmailUserID     string `yaml:"gmailUserID,omitempty"`
	GmailSender     string `yaml:"gmailSender,omitempty" validate:"omitempty,email"`
}

// Config represents the application configuration
type Config struct {
	APIBaseURL      string        `yaml:"apiBaseURL" validate:"required,url"`
	RequestTimeout  time.Duration `yaml:"requestTimeout,omitempty" validate:"gte=0"`
	SessionDir      string        `yaml:"sessionDir,omitempty"`
	Locale          string        `yaml:"locale,omitempty"`
	ShareBaseURL    string        `yaml:"shareBaseURL,omitempty" validate:"omitempty,url"`
	ListConcurrency int           `yaml:"listConcurrency,omitempty" validate:"gte=0,lte=32"`
	Cache           CacheConfig   `yaml:"cache"`
	Export          ExportConfig  `yaml:"export,omitempty"`
	Google          GoogleConfig  `yaml:"google,omitempty"`

	// Path is the file the config was loaded from
	Path string `yaml:"-"`
}

var validate *validator.Validate

func init() {
	validate = validator.New()
}

// Load loads and validates the configuration from ayuuto_config.yaml
func Load() (*Config, error) {
	return LoadWithEnv("")
}

// LoadWithEnv loads the configuration for an environment. env="test" looks
// for ayuuto_config.test.yaml. The current directory is searched first, then
// the user's home directory.
func LoadWithEnv(env string) (*Config, error) {
	configPath, err := findConfigFile(env)
	if err != nil {
		return nil, fmt.Errorf("failed to find config file: %w", err)
	}

	return LoadFromPath(configPath)
}

// LoadFromPath loads and validates the configuration from a specific path
func LoadFromPath(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	cfg.Path = path

	if err := cfg.applyDefaults(); err != nil {
		return nil, err
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate validates the configuration struct
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	return nil
}

// SaveLocale records the language preference in the file the config was
// loaded from. Only the locale key changes; defaults filled in at load
// time are not written, and the user's other keys and comments are kept.
func (c *Config) SaveLocale(locale string) error {
	if c.Path == "" {
		return fmt.Errorf("config has no file path")
	}

	data, err := os.ReadFile(c.Path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 || doc.Content[0].Kind != yaml.MappingNode {
		return fmt.Errorf("config file %s is not a YAML mapping", c.Path)
	}
	setScalar(doc.Content[0], "locale", locale)

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(&doc); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	mode := os.FileMode(0644)
	if info, err := os.Stat(c.Path); err == nil {
		mode = info.Mode().Perm()
	}
	if err := os.WriteFile(c.Path, buf.Bytes(), mode); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	c.Locale = locale
	return nil
}

// setScalar sets key in a mapping node, appending it when missing
func setScalar(mapping *yaml.Node, key, value string) {
	for i := 0; i+1 < len(mapping.Content); i += 2 {
		if mapping.Content[i].Value != key {
			continue
		}
		node := mapping.Content[i+1]
		node.Kind = yaml.ScalarNode
		node.Tag = "!!str"
		node.Value = value
		node.Style = 0
		node.Content = nil
		return
	}
	mapping.Content = append(mapping.Content,
		&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: key},
		&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: value},
	)
}

func (c *Config) applyDefaults() error {
	c.APIBaseURL = strings.TrimRight(c.APIBaseURL, "/")

	if c.RequestTimeout == 0 {
		c.RequestTimeout = defaultRequestTimeout
	}
	if c.Locale == "" {
		c.Locale = defaultLocale
	}
	if c.ListConcurrency == 0 {
		c.ListConcurrency = defaultListConcurrency
	}

	if c.SessionDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("failed to get home directory: %w", err)
		}
		c.SessionDir = filepath.Join(homeDir, defaultSessionDirName)
	} else if strings.HasPrefix(c.SessionDir, "~/") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("failed to get home directory: %w", err)
		}
		c.SessionDir = filepath.Join(homeDir, c.SessionDir[2:])
	}

	if c.Cache.Driver == "" {
		c.Cache.Driver = CacheSQLite
	}
	if c.Cache.Driver == CacheSQLite && c.Cache.SQLitePath == "" {
		c.Cache.SQLitePath = filepath.Join(c.SessionDir, defaultSQLiteFileName)
	}

	if c.Google.GmailUserID == "" {
		c.Google.GmailUserID = "me"
	}

	return nil
}

// findConfigFile searches for the config file in the current directory and home directory
func findConfigFile(env string) (string, error) {
	configFileName := configBaseName + ".yaml"
	if env != "" {
		configFileName = configBaseName + "." + env + ".yaml"
	}

	if _, err := os.Stat(configFileName); err == nil {
		return configFileName, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	homeConfigPath := filepath.Join(homeDir, configFileName)
	if _, err := os.Stat(homeConfigPath); err == nil {
		return homeConfigPath, nil
	}

	return "", fmt.Errorf("%s not found in current directory or home directory", configFileName)
}
