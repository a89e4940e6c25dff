// Package config loads the editor configuration from TOML.
package config

import (
	"maps"
	"os"
	"path/filepath"
	"strconv"

	"github.com/pelletier/go-toml/v2"
	"gitlab.com/tozd/go/errors"
)

// Known setting keys.
const (
	SettingSearch  = "search"  // substring, fuzzy or regex
	SettingBackup  = "backup"  // true or false
	SettingHistory = "history" // maximum command history entries
)

const (
	defaultTheme       = "tokyo-night"
	defaultHistorySize = 100
)

// Config holds application configuration
type Config struct {
	Theme    string            `toml:"theme"`
	Settings map[string]string `toml:"settings"`

	// Session settings (not persisted to TOML, overrides persisted settings)
	sessionSettings map[string]string
	path            string
}

// Load loads the config file from the standard location
func Load() (*Config, error) {
	configPath, err := getConfigPath()
	if err != nil {
		return defaultConfig(), nil
	}
	return LoadFromFile(configPath)
}

// LoadFromFile loads config from a specific file. A missing file yields the
// defaults; Save writes back to the same path.
func LoadFromFile(filePath string) (*Config, error) {
	data, err := os.ReadFile(filePath)
	if os.IsNotExist(err) {
		config := defaultConfig()
		config.path = filePath
		return config, nil
	}
	if err != nil {
		return nil, errors.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, errors.Errorf("failed to parse config file: %w", err)
	}

	if config.Theme == "" {
		config.Theme = defaultTheme
	}
	if config.Settings == nil {
		config.Settings = make(map[string]string)
	}
	config.sessionSettings = make(map[string]string)
	config.path = filePath

	return &config, nil
}

func getConfigPath() (string, error) {
	dir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

func defaultConfig() *Config {
	return &Config{
		Theme:           defaultTheme,
		Settings:        make(map[string]string),
		sessionSettings: make(map[string]string),
	}
}

// GetConfigDir returns the config directory
func GetConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "jsontree"), nil
}

// Set sets a session configuration value
func (c *Config) Set(key, value string) {
	if c.sessionSettings == nil {
		c.sessionSettings = make(map[string]string)
	}
	c.sessionSettings[key] = value
}

// Get retrieves a configuration value. Session settings override persisted
// settings. Returns "" if the key is set nowhere.
func (c *Config) Get(key string) string {
	if val, ok := c.sessionSettings[key]; ok {
		return val
	}
	return c.Settings[key]
}

// GetAll returns all configuration values, session settings taking
// precedence over persisted ones.
func (c *Config) GetAll() map[string]string {
	result := make(map[string]string, len(c.Settings)+len(c.sessionSettings))
	maps.Copy(result, c.Settings)
	maps.Copy(result, c.sessionSettings)
	return result
}

// SearchMode returns the configured search mode name, substring when unset.
func (c *Config) SearchMode() string {
	if v := c.Get(SettingSearch); v != "" {
		return v
	}
	return "substring"
}

// BackupEnabled reports whether the previous file content is kept before
// every save. Backups are on unless the setting says otherwise.
func (c *Config) BackupEnabled() bool {
	v := c.Get(SettingBackup)
	if v == "" {
		return true
	}
	on, err := strconv.ParseBool(v)
	return err != nil || on
}

// HistorySize returns the maximum number of command history entries.
func (c *Config) HistorySize() int {
	n, err := strconv.Atoi(c.Get(SettingHistory))
	if err != nil || n <= 0 {
		return defaultHistorySize
	}
	return n
}

// Save persists the configuration to the TOML file it was loaded from, or
// to the standard location. Session settings are not written.
func (c *Config) Save() error {
	path := c.path
	if path == "" {
		var err error
		path, err = getConfigPath()
		if err != nil {
			return errors.Errorf("failed to get config path: %w", err)
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Errorf("failed to create config directory: %w", err)
	}

	data, err := toml.Marshal(c)
	if err != nil {
		return errors.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Errorf("failed to write config file: %w", err)
	}
	return nil
}
