package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	// ConfigDir is the configuration directory relative to the home directory
	ConfigDir = ".config/clipsync"

	DefaultDatabaseFile = "clipsync.db"
	DefaultBlobDir      = "backups"
)

// maxItemsLimit bounds max_items.
const maxItemsLimit = 1_000_000

var logLevels = []string{"debug", "info", "warn", "error"}

// Config represents the clipsync bootstrap configuration. User settings
// that travel with the data (retention, backup) live in the store instead.
type Config struct {
	DatabasePath   string `yaml:"database_path,omitempty"`
	BlobDir        string `yaml:"blob_dir,omitempty"`
	MaxItems       int    `yaml:"max_items"`
	MaxPages       int    `yaml:"max_pages"`
	DeviceNickname string `yaml:"device_nickname,omitempty"`
	LogLevel       string `yaml:"log_level"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		MaxItems: 1000,
		LogLevel: "info",
	}
}

// ResolvePath maps a configured path to an absolute one.
// Empty paths use def under ~/.config/clipsync/, absolute paths are used
// as-is, and relative paths are taken relative to ~/.config/clipsync/.
func ResolvePath(path, def string) (string, error) {
	if filepath.IsAbs(path) {
		return path, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	if path == "" {
		path = def
	}
	return filepath.Join(homeDir, ConfigDir, path), nil
}

// ResolvedDatabasePath returns the absolute database file path
func (c *Config) ResolvedDatabasePath() (string, error) {
	return ResolvePath(c.DatabasePath, DefaultDatabaseFile)
}

// ResolvedBlobDir returns the absolute backup directory
func (c *Config) ResolvedBlobDir() (string, error) {
	return ResolvePath(c.BlobDir, DefaultBlobDir)
}

// ConfigManager manages configuration persistence
type ConfigManager struct {
	configPath string
}

// NewConfigManager creates a new configuration manager
func NewConfigManager() (*ConfigManager, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get user home directory: %w", err)
	}

	configPath := filepath.Join(homeDir, ConfigDir, "config.yaml")

	return &ConfigManager{
		configPath: configPath,
	}, nil
}

// NewConfigManagerWithPath creates a config manager with custom config path
func NewConfigManagerWithPath(configPath string) *ConfigManager {
	return &ConfigManager{
		configPath: configPath,
	}
}

// Load reads the configuration from file, or returns default if file doesn't exist
func (cm *ConfigManager) Load() (*Config, error) {
	if _, err := os.Stat(cm.configPath); os.IsNotExist(err) {
		return DefaultConfig(), nil
	}

	data, err := os.ReadFile(cm.configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cm.validateAndSetDefaults(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// Save writes the configuration to file
func (cm *ConfigManager) Save(config *Config) error {
	if err := cm.validateAndSetDefaults(config); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	configDir := filepath.Dir(cm.configPath)
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(cm.configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// validateAndSetDefaults validates configuration and sets defaults for missing fields
func (cm *ConfigManager) validateAndSetDefaults(config *Config) error {
	if config.MaxItems < 0 {
		return fmt.Errorf("max_items cannot be negative")
	}
	if config.MaxItems > maxItemsLimit {
		return fmt.Errorf("max_items cannot exceed %d items", maxItemsLimit)
	}
	if config.MaxPages < 0 {
		return fmt.Errorf("max_pages cannot be negative")
	}

	if config.LogLevel == "" {
		config.LogLevel = "info"
	}
	if !isLogLevel(config.LogLevel) {
		return fmt.Errorf("log_level must be one of %s", strings.Join(logLevels, ", "))
	}

	return nil
}

func isLogLevel(s string) bool {
	for _, l := range logLevels {
		if l == s {
			return true
		}
	}
	return false
}

// GetConfigPath returns the path to the config file
func (cm *ConfigManager) GetConfigPath() string {
	return cm.configPath
}

// Update modifies a specific configuration value
func (cm *ConfigManager) Update(key, value string) error {
	config, err := cm.Load()
	if err != nil {
		return err
	}

	switch key {
	case "database-path":
		config.DatabasePath = value
	case "blob-dir":
		config.BlobDir = value
	case "max-items":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid integer value for max-items: %s", value)
		}
		config.MaxItems = n
	case "max-pages":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid integer value for max-pages: %s", value)
		}
		config.MaxPages = n
	case "device-nickname":
		config.DeviceNickname = value
	case "log-level":
		config.LogLevel = value
	default:
		return fmt.Errorf("unknown configuration key: %s", key)
	}

	return cm.Save(config)
}

// Get returns the value for a specific configuration key
func (cm *ConfigManager) Get(key string) (string, error) {
	values, err := cm.List()
	if err != nil {
		return "", err
	}

	value, ok := values[key]
	if !ok {
		return "", fmt.Errorf("unknown configuration key: %s", key)
	}
	return value, nil
}

// List returns all configuration keys and values
func (cm *ConfigManager) List() (map[string]string, error) {
	config, err := cm.Load()
	if err != nil {
		return nil, err
	}

	orDefault := func(v string) string {
		if v == "" {
			return "[default]"
		}
		return v
	}

	return map[string]string{
		"database-path":   orDefault(config.DatabasePath),
		"blob-dir":        orDefault(config.BlobDir),
		"max-items":       strconv.Itoa(config.MaxItems),
		"max-pages":       strconv.Itoa(config.MaxPages),
		"device-nickname": orDefault(config.DeviceNickname),
		"log-level":       config.LogLevel,
	}, nil
}
