package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"

	"blenderctl/internal/bversion"
	"blenderctl/internal/update"
)

// Config represents the application configuration
type Config struct {
	Library    LibraryConfig    `yaml:"library"`
	Scrape     ScrapeConfig     `yaml:"scrape"`
	Updates    UpdatesConfig    `yaml:"updates"`
	SelfUpdate SelfUpdateConfig `yaml:"self_update"`
}

// LibraryConfig locates the local build library (required)
type LibraryConfig struct {
	Folder string `yaml:"folder" validate:"required"` // Root folder holding one subfolder per branch
}

// ScrapeConfig selects which remote sources are polled for builds
type ScrapeConfig struct {
	Stable               bool   `yaml:"stable"`                 // Official stable/LTS releases
	Daily                bool   `yaml:"daily"`                  // Daily builds from the buildbot
	Experimental         bool   `yaml:"experimental"`           // Experimental branch builds
	Patch                bool   `yaml:"patch"`                  // Patch-based builds
	Bforartists          bool   `yaml:"bforartists"`            // Bforartists fork releases
	MinimumStableVersion string `yaml:"minimum_stable_version"` // Stable releases below this are dropped (default: 3.0)
	CheckInterval        string `yaml:"check_interval"`         // How often fetch re-polls sources (default: 12h)
}

// UpdatesConfig controls how aggressively updates are offered.
// With advanced off, behavior/show apply to every branch; with advanced
// on, the per-branch sections take over.
type UpdatesConfig struct {
	Advanced     bool               `yaml:"advanced"`
	Behavior     string             `yaml:"behavior" validate:"oneof=major minor patch"`
	Show         bool               `yaml:"show"`
	Stable       BranchUpdateConfig `yaml:"stable"`
	Daily        BranchUpdateConfig `yaml:"daily"`
	Experimental BranchUpdateConfig `yaml:"experimental"`
	Bforartists  BranchUpdateConfig `yaml:"bforartists"`
}

// BranchUpdateConfig is the advanced-mode policy for one branch class
type BranchUpdateConfig struct {
	Behavior string `yaml:"behavior" validate:"oneof=major minor patch"`
	Show     bool   `yaml:"show"`
}

// SelfUpdateConfig controls the launcher's own update checks (optional)
type SelfUpdateConfig struct {
	Disabled      bool   `yaml:"disabled"`       // Skip self-update checks entirely
	CheckInterval string `yaml:"check_interval"` // Minimum time between checks (default: 24h)
}

// Default returns a configuration with every field at its default.
// Parse unmarshals the file over these values, so absent keys keep
// their defaults, including booleans that default to true.
func Default() Config {
	branch := BranchUpdateConfig{Behavior: "patch", Show: true}
	return Config{
		Scrape: ScrapeConfig{
			Stable:               true,
			Daily:                true,
			MinimumStableVersion: "3.0",
			CheckInterval:        "12h",
		},
		Updates: UpdatesConfig{
			Behavior:     "patch",
			Show:         true,
			Stable:       branch,
			Daily:        branch,
			Experimental: branch,
			Bforartists:  branch,
		},
		SelfUpdate: SelfUpdateConfig{
			CheckInterval: "24h",
		},
	}
}

// Load loads configuration from the config file
func Load() (*Config, error) {
	configPath, err := getConfigPath()
	if err != nil {
		return nil, fmt.Errorf("failed to get config path: %w", err)
	}

	log.Debug().Str("path", configPath).Msg("Loading configuration")

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config file not found at %s. Run 'blenderctl init' to create one", configPath)
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config, err := Parse(data)
	if err != nil {
		return nil, err
	}

	log.Debug().Msg("Configuration loaded successfully")
	return config, nil
}

// Parse unmarshals raw YAML over the defaults and validates the result
func Parse(data []byte) (*Config, error) {
	config := Default()
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return err
	}
	if _, err := c.MinimumStableVersion(); err != nil {
		return fmt.Errorf("scrape.minimum_stable_version: %w", err)
	}
	return nil
}

// MinimumStableVersion parses the stable-release floor
func (c *Config) MinimumStableVersion() (bversion.Version, error) {
	return bversion.Parse(c.Scrape.MinimumStableVersion, false)
}

// UpdatePolicy projects the update settings into a resolver policy
func (c *Config) UpdatePolicy() (update.Policy, error) {
	global, err := update.ParseBehavior(c.Updates.Behavior)
	if err != nil {
		return update.Policy{}, err
	}
	p := update.Policy{
		Advanced: c.Updates.Advanced,
		Global:   update.BranchPolicy{Behavior: global, Show: c.Updates.Show},
	}

	branches := []struct {
		src BranchUpdateConfig
		dst *update.BranchPolicy
	}{
		{c.Updates.Stable, &p.Stable},
		{c.Updates.Daily, &p.Daily},
		{c.Updates.Experimental, &p.Experimental},
		{c.Updates.Bforartists, &p.Bforartists},
	}
	for _, b := range branches {
		behavior, err := update.ParseBehavior(b.src.Behavior)
		if err != nil {
			return update.Policy{}, err
		}
		*b.dst = update.BranchPolicy{Behavior: behavior, Show: b.src.Show}
	}
	return p, nil
}

// getConfigDir returns the configuration directory path
func getConfigDir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to get user home directory")
	}
	return filepath.Join(homeDir, ".blenderctl")
}

// getConfigPath returns the full path to the config file
func getConfigPath() (string, error) {
	// Check environment variable first
	if envPath := os.Getenv("BLENDERCTL_CONFIG"); envPath != "" {
		return envPath, nil
	}

	// Otherwise use default path
	configDir := getConfigDir()
	configPath := filepath.Join(configDir, "config.yaml")

	return configPath, nil
}

// Path returns where the config file is (or should be) located
func Path() (string, error) {
	return getConfigPath()
}

// CacheDir returns the directory for cache artifacts such as the build
// database and the self-update check stamp.
func CacheDir() string {
	return getConfigDir()
}

// Save writes the configuration back to the config file
func (c *Config) Save() error {
	configPath, err := getConfigPath()
	if err != nil {
		return fmt.Errorf("failed to get config path: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	log.Debug().Str("path", configPath).Msg("Configuration saved")
	return nil
}

// EnsureConfigDir ensures the config directory exists
func EnsureConfigDir() error {
	configDir := getConfigDir()
	if err := os.MkdirAll(configDir, 0750); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	return nil
}
