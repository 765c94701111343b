package storage

// Config represents the application configuration stored in config.json
type Config struct {
	Version     int               `json:"version"`
	Audio       AudioConfig       `json:"audio"`
	Window      WindowConfig      `json:"window"`
	Input       InputConfig       `json:"input"`
	Paths       PathsConfig       `json:"paths"`
	CoreOptions map[string]string `json:"coreOptions,omitempty"` // core option key -> value
}

// InputConfig contains input binding overrides for the keyboard and controller.
// Empty/nil maps mean "use defaults." Only user overrides are stored.
type InputConfig struct {
	Keyboard           map[string]string `json:"keyboard,omitempty"`           // control name -> key name override
	Controller         map[string]string `json:"controller,omitempty"`         // control name -> pad button name override
	DisableAnalogStick bool              `json:"disableAnalogStick,omitempty"` // disable analog stick mirroring d-pad
}

// AudioConfig contains audio-related settings
type AudioConfig struct {
	Volume float64 `json:"volume"`
	Muted  bool    `json:"muted"`
}

// WindowConfig contains window settings
type WindowConfig struct {
	Scale      int  `json:"scale"` // integer multiple of the 32x32 LCD
	Fullscreen bool `json:"fullscreen"`
}

// PathsConfig contains directory overrides. Empty means the data directory default.
type PathsConfig struct {
	SystemDir string `json:"systemDir,omitempty"` // firmware search directory
	SaveDir   string `json:"saveDir,omitempty"`   // save state root
}

// Window scale limits
const (
	MinWindowScale = 1
	MaxWindowScale = 32
)

// DefaultConfig returns a new Config with default values
func DefaultConfig() *Config {
	return &Config{
		Version: 1,
		Audio: AudioConfig{
			Volume: 1.0,
			Muted:  false,
		},
		Window: WindowConfig{
			Scale: 12,
		},
		Input:       InputConfig{},
		CoreOptions: map[string]string{},
	}
}
