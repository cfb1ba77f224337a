package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"gopkg.in/yaml.v3"
)

// Defaults applied when the config file is missing or leaves a field unset.
const (
	DefaultMinMessageCount = 10
	DefaultRecentCount     = 75
	DefaultWindowMinutes   = 10
)

// Config represents the lifeai configuration
type Config struct {
	// ExportDir holds the raw per-number .txt exports.
	ExportDir string `yaml:"export_dir"`
	// ContactsFile is the YAML contact roster. Empty means
	// contacts.yaml inside the config directory.
	ContactsFile string `yaml:"contacts_file"`
	// OutputDir is where per-contact folders and _llm_ready land.
	// Empty means the data directory.
	OutputDir string `yaml:"output_dir"`

	Pipeline PipelineConfig `yaml:"pipeline"`
	Privacy  PrivacyConfig  `yaml:"privacy"`
}

// PipelineConfig tunes consolidation thresholds.
type PipelineConfig struct {
	// MinMessageCount excludes contacts with fewer raw messages across
	// all sources. Zero means the default; -1 disables the cutoff.
	MinMessageCount int `yaml:"min_message_count"`
	// RecentCount is how many trailing messages feed the recent
	// interactions file.
	RecentCount int `yaml:"recent_count"`
	// WindowMinutes is the consecutive-message grouping window.
	WindowMinutes int `yaml:"window_minutes"`
}

// PrivacyConfig controls anonymization of LLM-bound output.
type PrivacyConfig struct {
	// Anonymize is on unless the file says otherwise.
	Anonymize *bool `yaml:"anonymize,omitempty"`
}

// AnonymizeEnabled resolves the tri-state flag; unset means on.
func (p PrivacyConfig) AnonymizeEnabled() bool {
	return p.Anonymize == nil || *p.Anonymize
}

// GetConfigDir returns the XDG-compliant config directory
func GetConfigDir() (string, error) {
	// Explicit override (useful for tests and portable installs)
	if override := os.Getenv("LIFEAI_CONFIG_DIR"); override != "" {
		return override, nil
	}

	var base string
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		base = xdg
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		base = filepath.Join(home, ".config")
	}
	return filepath.Join(base, "lifeai"), nil
}

// GetDataDir returns the platform-specific data directory
func GetDataDir() (string, error) {
	// Explicit override (useful for tests and portable installs)
	if override := os.Getenv("LIFEAI_DATA_DIR"); override != "" {
		return override, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	if runtime.GOOS == "darwin" {
		return filepath.Join(home, "Library", "Application Support", "LifeAI"), nil
	}

	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "lifeai"), nil
	}

	return filepath.Join(home, ".local", "share", "lifeai"), nil
}

// Load loads config from the config file
func Load() (*Config, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return nil, err
	}

	configPath := filepath.Join(configDir, "config.yaml")

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			cfg := &Config{}
			cfg.applyDefaults()
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	cfg.applyDefaults()

	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Pipeline.MinMessageCount == 0 {
		c.Pipeline.MinMessageCount = DefaultMinMessageCount
	}
	if c.Pipeline.RecentCount <= 0 {
		c.Pipeline.RecentCount = DefaultRecentCount
	}
	if c.Pipeline.WindowMinutes <= 0 {
		c.Pipeline.WindowMinutes = DefaultWindowMinutes
	}
}

// ContactsPath resolves the roster location, falling back to contacts.yaml
// in the config directory.
func (c *Config) ContactsPath() (string, error) {
	if c.ContactsFile != "" {
		return c.ContactsFile, nil
	}
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "contacts.yaml"), nil
}

// OutputPath resolves the output root, falling back to the data directory.
func (c *Config) OutputPath() (string, error) {
	if c.OutputDir != "" {
		return c.OutputDir, nil
	}
	return GetDataDir()
}

// Save saves the config to the config file
func (c *Config) Save() error {
	configDir, err := GetConfigDir()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	configPath := filepath.Join(configDir, "config.yaml")

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}
