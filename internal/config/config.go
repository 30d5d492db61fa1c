// Package config provides configuration loading and management.
package config

import (
	"fmt"
	"time"
)

// Server modes accepted by --server and the server config key.
const (
	ServerLocal      = "local"
	ServerInherit    = "inherit"
	ServerProduction = "production"
)

// Defaults applied when neither flag, env nor config set a value.
const (
	DefaultServer         = ServerLocal
	DefaultLocalServerURL = "http://localhost:9200"
	DefaultStopTimeout    = "5s"
)

// LogConfig contains logging-related settings.
type LogConfig struct {
	// Timestamps controls whether timestamps are shown in log output.
	// Default: true. Override with --timestamps flag.
	Timestamps *bool `json:"timestamps,omitempty" yaml:"timestamps,omitempty" mapstructure:"timestamps"`
}

// ToolsConfig contains settings for the auxiliary tool pool.
type ToolsConfig struct {
	// StopTimeout is how long a helper process gets to exit after SIGTERM
	// before it is killed. Go duration syntax.
	StopTimeout string `json:"stopTimeout,omitempty" yaml:"stopTimeout,omitempty" mapstructure:"stopTimeout"`
}

// Config represents the devkit CLI configuration.
// Loaded from ~/.devkit/config.yaml, validated against the embedded CUE schema.
type Config struct {
	// ModulePaths are extra directories searched for installed modules after
	// the app's own modules directory.
	// Env: DEVKIT_MODULE_PATHS (path-list separated)
	ModulePaths []string `json:"modulePaths,omitempty" yaml:"modulePaths,omitempty" mapstructure:"modulePaths"`

	// Server is the default --server mode.
	// Env: DEVKIT_SERVER, Default: local
	Server string `json:"server,omitempty" yaml:"server,omitempty" mapstructure:"server"`

	// LocalServerURL is the server URL used when the server mode is local.
	// Env: DEVKIT_LOCAL_SERVER_URL, Default: http://localhost:9200
	LocalServerURL string `json:"localServerURL,omitempty" yaml:"localServerURL,omitempty" mapstructure:"localServerURL"`

	// Log contains logging-related settings.
	Log LogConfig `json:"log" yaml:"log" mapstructure:"log"`

	// Tools contains tool pool settings.
	Tools ToolsConfig `json:"tools" yaml:"tools" mapstructure:"tools"`
}

// DefaultConfig returns a Config with all default values populated.
// Used by `devkit config init` to generate the initial config file.
func DefaultConfig() *Config {
	return &Config{
		Server:         DefaultServer,
		LocalServerURL: DefaultLocalServerURL,
		Tools: ToolsConfig{
			StopTimeout: DefaultStopTimeout,
		},
	}
}

// StopTimeout returns the parsed tool stop timeout, falling back to the default.
func (c *Config) StopTimeout() (time.Duration, error) {
	raw := DefaultStopTimeout
	if c != nil && c.Tools.StopTimeout != "" {
		raw = c.Tools.StopTimeout
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("parsing tools.stopTimeout %q: %w", raw, err)
	}
	return d, nil
}

// GlobalFlags holds the raw values of the root persistent flags.
type GlobalFlags struct {
	Config     string
	Verbose    bool
	Timestamps bool
}

// GlobalConfig holds CLI-wide configuration resolved during PersistentPreRunE.
// It is populated once at startup and passed explicitly into every
// sub-command constructor.
type GlobalConfig struct {
	// Config is the loaded config file, or DefaultConfig when none exists.
	Config *Config

	// ConfigPath is the resolved config file path.
	ConfigPath ResolvedValue

	// Flags are the global flag values.
	Flags GlobalFlags
}
