// Package config loads caseburn settings and the NDIS rate table.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// DefaultModel is the Gemini model used for strategy notes.
const DefaultModel = "gemini-2.0-flash"

// Config holds all caseburn configuration.
type Config struct {
	General    GeneralConfig    `toml:"general"`
	AI         AIConfig         `toml:"ai"`
	Appearance AppearanceConfig `toml:"appearance"`
	Security   SecurityConfig   `toml:"security"`
}

// GeneralConfig holds general preferences.
type GeneralConfig struct {
	DBPath         string `toml:"db_path,omitempty"`
	AcceptDMYDates bool   `toml:"accept_dmy_dates"`
}

// AIConfig holds Gemini settings for strategy notes.
type AIConfig struct {
	APIKey string `toml:"api_key,omitempty"`
	Model  string `toml:"model,omitempty"`
}

// AppearanceConfig holds theme settings.
type AppearanceConfig struct {
	Theme string `toml:"theme"`
}

// SecurityConfig holds the optional dashboard access code.
type SecurityConfig struct {
	AccessCode string `toml:"access_code,omitempty"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		General: GeneralConfig{
			AcceptDMYDates: true,
		},
		AI: AIConfig{
			Model: DefaultModel,
		},
		Appearance: AppearanceConfig{
			Theme: "flexoki-dark",
		},
	}
}

// Dir returns the XDG-compliant config directory.
func Dir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "caseburn")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "caseburn")
}

// Path returns the full path to the config file.
func Path() string {
	return filepath.Join(Dir(), "config.toml")
}

// DataDir returns the XDG-compliant data directory holding the caseload database.
func DataDir() string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "caseburn")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "share", "caseburn")
}

// DBPath returns the configured database path, or the default under DataDir.
func DBPath(cfg Config) string {
	if cfg.General.DBPath != "" {
		return cfg.General.DBPath
	}
	return filepath.Join(DataDir(), "caseload.db")
}

// Load reads the config file, returning defaults if it doesn't exist.
func Load() (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(Path())
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}

	return cfg, nil
}

// Save writes the config to disk.
func Save(cfg Config) error {
	dir := Dir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	f, err := os.OpenFile(Path(), os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("creating config file: %w", err)
	}
	defer f.Close()

	enc := toml.NewEncoder(f)
	return enc.Encode(cfg)
}

// GetGeminiAPIKey returns the API key from env var or config, in that order.
func GetGeminiAPIKey(cfg Config) string {
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		return key
	}
	return cfg.AI.APIKey
}

// GetModel returns the configured Gemini model or DefaultModel.
func GetModel(cfg Config) string {
	if cfg.AI.Model != "" {
		return cfg.AI.Model
	}
	return DefaultModel
}

// GetAccessCode returns the dashboard access code from env var or config.
// An empty result means the gate is disabled.
func GetAccessCode(cfg Config) string {
	if code := os.Getenv("CASEBURN_ACCESS_CODE"); code != "" {
		return code
	}
	return cfg.Security.AccessCode
}

// Exists returns true if a config file exists on disk.
func Exists() bool {
	_, err := os.Stat(Path())
	return err == nil
}
