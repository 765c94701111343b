package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

// LoadConfig reads config.json. A missing file yields DefaultConfig; keys
// absent from the file take their defaults. A malformed file is an error.
func LoadConfig() (*Config, error) {
	path, err := GetConfigPath()
	if err != nil {
		return nil, err
	}
	return loadConfigFile(path)
}

func loadConfigFile(path string) (*Config, error) {
	jsonBytes, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return DefaultConfig(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	config := &Config{}
	if err := json.Unmarshal(jsonBytes, config); err != nil {
		return nil, fmt.Errorf("failed to parse JSON: %w", err)
	}

	// Zero values present in the file are kept; only absent keys default.
	ApplyMissingDefaults(config, detectPresentKeys(jsonBytes))
	return config, nil
}

// LoadValidConfig loads config.json and corrects it against the valid
// core option values. It returns the corrected config and a description
// of every field that was reset. An unreadable file falls back to the
// defaults and is reported as an issue.
func LoadValidConfig(validOptions map[string][]string) (*Config, []string, error) {
	path, err := GetConfigPath()
	if err != nil {
		return nil, nil, err
	}

	config, err := loadConfigFile(path)
	if err != nil {
		return DefaultConfig(), []string{err.Error()}, nil
	}

	issues := ValidateConfig(config, validOptions)
	return CorrectConfig(config, validOptions), issues, nil
}

// SaveConfig writes config.json atomically
func SaveConfig(config *Config) error {
	path, err := GetConfigPath()
	if err != nil {
		return err
	}
	return AtomicWriteJSON(path, config)
}

// CreateConfigIfMissing writes a default config.json so there is a file
// to edit. An existing file is left alone.
func CreateConfigIfMissing() error {
	path, err := GetConfigPath()
	if err != nil {
		return err
	}
	if _, err := os.Stat(path); !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return SaveConfig(DefaultConfig())
}
