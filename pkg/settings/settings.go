// Package settings manages persistent user settings for the mcoracle CLI.
package settings

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// Defaults used when a setting is empty.
const (
	DefaultScenarioDir = "scenarios"
	DefaultRedisAddr   = "127.0.0.1:6379"
	DefaultSSHUser     = "admin"
)

// Settings holds persistent user preferences
type Settings struct {
	// DefaultPlatform is the ASIC generation used when a scenario omits it
	DefaultPlatform string `json:"default_platform,omitempty"`

	// ScenarioDir is the directory `mcoracle check` runs when given no args
	ScenarioDir string `json:"scenario_dir,omitempty"`

	// RedisAddr is the STATE_DB address for `mcoracle sync`
	RedisAddr string `json:"redis_addr,omitempty"`

	// SSHUser is the login used when sync tunnels through SSH
	SSHUser string `json:"ssh_user,omitempty"`
}

// DefaultSettingsPath returns the default path for the settings file
func DefaultSettingsPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "mcoracle_settings.json"
	}
	return filepath.Join(home, ".mcoracle", "settings.json")
}

// Load reads settings from the default location
func Load() (*Settings, error) {
	return LoadFrom(DefaultSettingsPath())
}

// LoadFrom reads settings from a specific path
func LoadFrom(path string) (*Settings, error) {
	s := &Settings{}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			// Return empty settings if file doesn't exist
			return s, nil
		}
		return nil, err
	}

	if err := json.Unmarshal(data, s); err != nil {
		return nil, err
	}

	return s, nil
}

// Save writes settings to the default location
func (s *Settings) Save() error {
	return s.SaveTo(DefaultSettingsPath())
}

// SaveTo writes settings to a specific path
func (s *Settings) SaveTo(path string) error {
	// Ensure directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// GetScenarioDir returns the scenario directory (with fallback)
func (s *Settings) GetScenarioDir() string {
	if s.ScenarioDir != "" {
		return s.ScenarioDir
	}
	return DefaultScenarioDir
}

// GetRedisAddr returns the STATE_DB address (with fallback)
func (s *Settings) GetRedisAddr() string {
	if s.RedisAddr != "" {
		return s.RedisAddr
	}
	return DefaultRedisAddr
}

// GetSSHUser returns the SSH login (with fallback)
func (s *Settings) GetSSHUser() string {
	if s.SSHUser != "" {
		return s.SSHUser
	}
	return DefaultSSHUser
}

// Clear resets all settings to defaults
func (s *Settings) Clear() {
	*s = Settings{}
}
