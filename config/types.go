package config

import (
	"fmt"

	"github.com/mitchellh/mapstructure"
)

const (
	// DefaultTool is the application freezer pybuild drives.
	DefaultTool = "pyinstaller"

	// DefaultDebounceMs is the quiet period before watch mode rebuilds.
	DefaultDebounceMs = 500

	// CurrentVersion is the configuration format version.
	CurrentVersion = "1"
)

// DefaultWatchIgnore lists paths under the working directory that never
// trigger a rebuild. These are the freezer's own outputs and caches.
var DefaultWatchIgnore = []string{
	"build",
	"dist",
	"**/__pycache__",
	"*.spec",
	".git",
	".venv",
}

// Config is the pybuild configuration. None of its fields take part in the
// freezer's argument vector; they only select the executable and control how
// pybuild itself behaves around the launch.
type Config struct {
	Version    string      `yaml:"version" toml:"version" json:"version" jsonschema:"description=Configuration version (e.g. 1)"`
	Tool       string      `yaml:"tool,omitempty" toml:"tool,omitempty" json:"tool,omitempty" jsonschema:"description=Executable name or path of the application freezer (default: pyinstaller)"`
	StrictExit bool        `yaml:"strict_exit,omitempty" toml:"strict_exit,omitempty" json:"strict_exit,omitempty" jsonschema:"description=Exit with status 1 when the freezer exits nonzero or cannot be started"`
	EnvFile    string      `yaml:"env_file,omitempty" toml:"env_file,omitempty" json:"env_file,omitempty" jsonschema:"description=Dotenv file whose variables are added to the freezer's environment"`
	Watch      WatchConfig `yaml:"watch,omitempty" toml:"watch,omitempty" json:"watch,omitempty" jsonschema:"description=Settings for pybuild watch"`

	// Extensions captures all other top-level keys (e.g. logging).
	Extensions map[string]interface{} `yaml:",inline" toml:"-" json:"-" jsonschema:"-"`

	// Sources lists the files merged into this configuration, lowest precedence first.
	Sources []string `yaml:"-" toml:"-" json:"-" jsonschema:"-"`
}

// WatchConfig controls rebuild-on-change.
type WatchConfig struct {
	DebounceMs int      `yaml:"debounce_ms,omitempty" toml:"debounce_ms,omitempty" json:"debounce_ms,omitempty" jsonschema:"minimum=0,description=Milliseconds of quiet before a rebuild starts"`
	Ignore     []string `yaml:"ignore,omitempty" toml:"ignore,omitempty" json:"ignore,omitempty" jsonschema:"description=Patterns (relative to the working directory) that never trigger a rebuild"`
}

// SetDefaults fills unset fields.
func (c *Config) SetDefaults() {
	if c.Version == "" {
		c.Version = CurrentVersion
	}
	if c.Tool == "" {
		c.Tool = DefaultTool
	}
	if c.Watch.DebounceMs == 0 {
		c.Watch.DebounceMs = DefaultDebounceMs
	}
	if len(c.Watch.Ignore) == 0 {
		c.Watch.Ignore = append([]string(nil), DefaultWatchIgnore...)
	}
}

// Default returns a configuration with every default applied.
func Default() *Config {
	cfg := &Config{}
	cfg.SetDefaults()
	return cfg
}

// UnmarshalExtension decodes a specific extension's configuration from the
// loaded file into the provided target struct. The target must be a pointer.
//
// Example:
//
//	var logCfg logging.Config
//	err := cfg.UnmarshalExtension("logging", &logCfg)
func (c *Config) UnmarshalExtension(key string, target interface{}) error {
	extensionConfig, ok := c.Extensions[key]
	if !ok {
		// A missing key leaves the target zero-valued.
		return nil
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           target,
		TagName:          "yaml",
		WeaklyTypedInput: true,
	})
	if err != nil {
		return fmt.Errorf("failed to create mapstructure decoder: %w", err)
	}

	if err := decoder.Decode(extensionConfig); err != nil {
		return fmt.Errorf("failed to decode extension config for '%s': %w", key, err)
	}

	return nil
}
