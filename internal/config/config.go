package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const appDirName = "wageflow"

type Config struct {
	// Database settings
	Database DatabaseConfig `yaml:"database"`

	// Token issuing and password hashing
	Auth AuthConfig `yaml:"auth"`

	// Invoice settings
	Invoice InvoiceConfig `yaml:"invoice"`

	// Defaults applied to newly registered users
	Defaults UserDefaults `yaml:"defaults"`

	// Export and payment proof storage
	Storage StorageConfig `yaml:"storage"`

	// Log output
	Log LogConfig `yaml:"log"`
}

type DatabaseConfig struct {
	Path string `yaml:"path"` // Path to SQLite database
}

type AuthConfig struct {
	JWTSecret  string        `yaml:"jwt_secret,omitempty"` // empty: read from keyring
	AccessTTL  time.Duration `yaml:"access_ttl"`
	RefreshTTL time.Duration `yaml:"refresh_ttl"`
	BcryptCost int           `yaml:"bcrypt_cost"`
	// SessionPath stores the CLI's current access/refresh token pair
	SessionPath string `yaml:"session_path"`
}

type InvoiceConfig struct {
	DefaultDueDays int    `yaml:"default_due_days"` // Days until invoice due
	NumberPrefix   string `yaml:"number_prefix"`    // Invoice number prefix (e.g., "INV")
}

type UserDefaults struct {
	TaxPercent  float64 `yaml:"tax_percent"`  // HST percentage, 13 = 13%
	MileageRate float64 `yaml:"mileage_rate"` // per km
}

type StorageConfig struct {
	DataDir string `yaml:"data_dir"` // holds exports/ and proofs/
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // console or json
	Output string `yaml:"output"` // stderr, stdout, or a file path
}

func appDir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		// Fallback to current directory if home dir unavailable
		homeDir = "."
	}
	return filepath.Join(homeDir, ".config", appDirName)
}

// DefaultConfigPath returns ~/.config/wageflow/config.yaml
func DefaultConfigPath() string {
	return filepath.Join(appDir(), "config.yaml")
}

// DefaultConfig returns sensible defaults
func DefaultConfig() *Config {
	dir := appDir()

	return &Config{
		Database: DatabaseConfig{
			Path: filepath.Join(dir, "wageflow.db"),
		},
		Auth: AuthConfig{
			AccessTTL:   15 * time.Minute,
			RefreshTTL:  7 * 24 * time.Hour,
			BcryptCost:  12,
			SessionPath: filepath.Join(dir, "session.yaml"),
		},
		Invoice: InvoiceConfig{
			DefaultDueDays: 30,
			NumberPrefix:   "INV",
		},
		Defaults: UserDefaults{
			TaxPercent:  13,
			MileageRate: 0.61,
		},
		Storage: StorageConfig{
			DataDir: filepath.Join(dir, "data"),
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
			Output: "stderr",
		},
	}
}

// Load loads config from the given path, or defaults if the file doesn't
// exist, then applies environment overrides.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("failed to read config: %w", err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadDefault loads a .env file if present, then the default config path
func LoadDefault() (*Config, error) {
	// .env is optional
	_ = godotenv.Load()
	return Load(DefaultConfigPath())
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("WAGEFLOW_DB_PATH"); v != "" {
		c.Database.Path = v
	}
	if v := os.Getenv("WAGEFLOW_DATA_DIR"); v != "" {
		c.Storage.DataDir = v
	}
	if v := os.Getenv("WAGEFLOW_JWT_SECRET"); v != "" {
		c.Auth.JWTSecret = v
	}
	if v := os.Getenv("JWT_ACCESS_EXPIRATION"); v != "" {
		d, err := ParseTTL(v)
		if err != nil {
			return fmt.Errorf("JWT_ACCESS_EXPIRATION: %w", err)
		}
		c.Auth.AccessTTL = d
	}
	if v := os.Getenv("JWT_REFRESH_EXPIRATION"); v != "" {
		d, err := ParseTTL(v)
		if err != nil {
			return fmt.Errorf("JWT_REFRESH_EXPIRATION: %w", err)
		}
		c.Auth.RefreshTTL = d
	}
	if v := firstEnv("WAGEFLOW_LOG_LEVEL", "LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	return nil
}

func firstEnv(keys ...string) string {
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			return v
		}
	}
	return ""
}

// ParseTTL accepts Go durations plus a day suffix ("7d").
func ParseTTL(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if days, ok := strings.CutSuffix(s, "d"); ok {
		n, err := strconv.Atoi(days)
		if err != nil || n <= 0 {
			return 0, fmt.Errorf("invalid duration %q", s)
		}
		return time.Duration(n) * 24 * time.Hour, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid duration %q", s)
	}
	return d, nil
}

// ExportDir is where rendered reports are written
func (c *Config) ExportDir() string {
	return filepath.Join(c.Storage.DataDir, "exports")
}

// Save writes the config to the given path
func (c *Config) Save(path string) error {
	// Create parent directories if they don't exist
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0600)
}

// EnsureDirectories creates the database and storage directories
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{
		filepath.Dir(c.Database.Path),
		filepath.Dir(c.Auth.SessionPath),
		c.Storage.DataDir,
	} {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return err
		}
	}
	return nil
}
