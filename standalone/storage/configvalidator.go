package storage

import (
	"encoding/json"
	"fmt"
)

// detectPresentKeys unmarshals JSON bytes to determine which config keys
// are explicitly present in the file. Returns a flat set of dotted-path keys
// (e.g., "audio.volume", "window.scale"). Only checks non-omitempty fields
// that have validation rules.
func detectPresentKeys(jsonBytes []byte) map[string]bool {
	present := make(map[string]bool)

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(jsonBytes, &raw); err != nil {
		return present
	}

	if _, ok := raw["version"]; ok {
		present["version"] = true
	}

	// Nested: audio
	if audioRaw, ok := raw["audio"]; ok {
		var audio map[string]json.RawMessage
		if json.Unmarshal(audioRaw, &audio) == nil {
			if _, ok := audio["volume"]; ok {
				present["audio.volume"] = true
			}
		}
	}

	// Nested: window
	if windowRaw, ok := raw["window"]; ok {
		var window map[string]json.RawMessage
		if json.Unmarshal(windowRaw, &window) == nil {
			if _, ok := window["scale"]; ok {
				present["window.scale"] = true
			}
		}
	}

	return present
}

// ApplyMissingDefaults sets default values for config fields that are absent
// from the JSON file. Only truly missing fields get defaults, preserving
// intentional zero values (e.g., volume=0).
func ApplyMissingDefaults(config *Config, presentKeys map[string]bool) {
	defaults := DefaultConfig()

	if !presentKeys["version"] {
		config.Version = defaults.Version
	}
	if !presentKeys["audio.volume"] {
		config.Audio.Volume = defaults.Audio.Volume
	}
	if !presentKeys["window.scale"] {
		config.Window.Scale = defaults.Window.Scale
	}
	if config.CoreOptions == nil {
		config.CoreOptions = map[string]string{}
	}
}

// ValidateConfig checks all config fields against valid ranges and returns
// human-readable error descriptions. An empty slice means the config is valid.
// validOptions maps each core option key to its legal values.
func ValidateConfig(config *Config, validOptions map[string][]string) []string {
	var errors []string

	// version
	if config.Version != 1 {
		errors = append(errors, fmt.Sprintf("version: %d (valid: 1)", config.Version))
	}

	// audio.volume
	if config.Audio.Volume < 0 || config.Audio.Volume > 2.0 {
		errors = append(errors, fmt.Sprintf("audio.volume: %.2f (valid: 0.0-2.0)", config.Audio.Volume))
	}

	// window.scale
	if config.Window.Scale < MinWindowScale || config.Window.Scale > MaxWindowScale {
		errors = append(errors, fmt.Sprintf("window.scale: %d (valid: %d-%d)", config.Window.Scale, MinWindowScale, MaxWindowScale))
	}

	// coreOptions
	for key, value := range config.CoreOptions {
		values, ok := validOptions[key]
		if !ok {
			errors = append(errors, fmt.Sprintf("coreOptions.%s: unknown option", key))
			continue
		}
		if !contains(values, value) {
			errors = append(errors, fmt.Sprintf("coreOptions.%s: %q (valid: %v)", key, value, values))
		}
	}

	return errors
}

// CorrectConfig resets any invalid fields to their defaults from DefaultConfig().
// Valid fields are preserved. Invalid core options are removed so the
// option default applies.
func CorrectConfig(config *Config, validOptions map[string][]string) *Config {
	defaults := DefaultConfig()

	// version
	if config.Version != 1 {
		config.Version = defaults.Version
	}

	// audio.volume
	if config.Audio.Volume < 0 || config.Audio.Volume > 2.0 {
		config.Audio.Volume = defaults.Audio.Volume
	}

	// window.scale
	if config.Window.Scale < MinWindowScale || config.Window.Scale > MaxWindowScale {
		config.Window.Scale = defaults.Window.Scale
	}

	// coreOptions
	for key, value := range config.CoreOptions {
		values, ok := validOptions[key]
		if !ok || !contains(values, value) {
			delete(config.CoreOptions, key)
		}
	}

	return config
}

func contains(values []string, v string) bool {
	for _, s := range values {
		if s == v {
			return true
		}
	}
	return false
}
