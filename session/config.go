package session

import (
	"fmt"
	"log/slog"
)

// Option keys as registered with the host.
const (
	OptionRTCSync  = "pockystation_rtc_sync"
	OptionRotation = "pockystation_rotation"
)

// Option describes a boolean configuration option offered to the host.
type Option struct {
	Key         string
	Label       string
	Description string
	Default     string
	Values      []string // legal values, default included
}

// Options is the table of options the host binding registers.
var Options = []Option{
	{
		Key:         OptionRTCSync,
		Label:       "Synchronize RTC with host clock",
		Description: "Periodically overwrite the emulated real-time clock with the host time",
		Default:     "disabled",
		Values:      []string{"disabled", "enabled"},
	},
	{
		Key:         OptionRotation,
		Label:       "Honor display rotation",
		Description: "Flip the picture when the running application rotates the LCD",
		Default:     "enabled",
		Values:      []string{"enabled", "disabled"},
	},
}

// Config is the session configuration read from the host options.
type Config struct {
	RTCSync  bool
	Rotation bool
}

// DefaultConfig returns the configuration used when the host has no values.
func DefaultConfig() Config {
	return Config{
		RTCSync:  false,
		Rotation: true,
	}
}

// ReadConfig builds a Config from the host option values. Missing or
// malformed values keep their defaults.
func ReadConfig(lookup func(key string) (string, bool), logger *slog.Logger) Config {
	cfg := DefaultConfig()
	readBool(lookup, logger, OptionRTCSync, &cfg.RTCSync)
	readBool(lookup, logger, OptionRotation, &cfg.Rotation)
	return cfg
}

func readBool(lookup func(string) (string, bool), logger *slog.Logger, key string, dst *bool) {
	value, ok := lookup(key)
	if !ok {
		return
	}
	b, err := ParseBool(value)
	if err != nil {
		logger.Warn("ignoring option value", "key", key, "err", err)
		return
	}
	*dst = b
}

// ParseBool parses a boolean option value.
func ParseBool(value string) (bool, error) {
	switch value {
	case "true", "enabled", "on":
		return true, nil
	case "false", "disabled", "off":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean %q", value)
	}
}
