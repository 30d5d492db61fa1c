package config

import (
	"os"
	"path/filepath"

	"github.com/gcdevkit/devkit/internal/output"
)

// Environment variables read by the resolver.
const (
	EnvConfig         = "DEVKIT_CONFIG"
	EnvServer         = "DEVKIT_SERVER"
	EnvLocalServerURL = "DEVKIT_LOCAL_SERVER_URL"
	EnvModulePaths    = "DEVKIT_MODULE_PATHS"
)

// ConfigSource indicates where a configuration value came from.
type ConfigSource string

const (
	// SourceFlag indicates value came from command-line flag.
	SourceFlag ConfigSource = "flag"
	// SourceEnv indicates value came from environment variable.
	SourceEnv ConfigSource = "env"
	// SourceConfig indicates value came from config file.
	SourceConfig ConfigSource = "config"
	// SourceDefault indicates value is the built-in default.
	SourceDefault ConfigSource = "default"
)

// ResolvedValue is a configuration value together with its source and the
// lower-precedence values it shadowed.
type ResolvedValue struct {
	Key      string
	Value    string
	Source   ConfigSource
	Shadowed map[ConfigSource]string
}

// resolveString applies flag > env > config > default precedence.
func resolveString(key, flagValue, envName, configValue, defaultValue string) ResolvedValue {
	candidates := []struct {
		source ConfigSource
		value  string
	}{
		{SourceFlag, flagValue},
		{SourceEnv, os.Getenv(envName)},
		{SourceConfig, configValue},
		{SourceDefault, defaultValue},
	}

	result := ResolvedValue{Key: key, Shadowed: make(map[ConfigSource]string)}
	for _, c := range candidates {
		if c.value == "" {
			continue
		}
		if result.Source == "" {
			result.Value = c.value
			result.Source = c.source
			continue
		}
		result.Shadowed[c.source] = c.value
	}
	return result
}

// ResolveConfigPath resolves the config file path using precedence:
// (1) --config flag, (2) DEVKIT_CONFIG env, (3) ~/.devkit/config.yaml
func ResolveConfigPath(flagValue string) (ResolvedValue, error) {
	paths, err := DefaultPaths()
	if err != nil {
		return ResolvedValue{}, err
	}
	return resolveString("config", flagValue, EnvConfig, "", paths.ConfigFile), nil
}

// ResolveBuildOptions contains the inputs for ResolveBuild.
type ResolveBuildOptions struct {
	ServerFlag         string
	LocalServerURLFlag string
	Config             *Config
}

// ResolvedBuildConfig holds build settings after applying precedence.
type ResolvedBuildConfig struct {
	Server         ResolvedValue
	LocalServerURL ResolvedValue

	// ModulePaths are the expanded shared module directories.
	ModulePaths []string
}

// ResolveBuild resolves the server settings and module search paths used by
// the debug command.
func ResolveBuild(opts ResolveBuildOptions) (*ResolvedBuildConfig, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = &Config{}
	}

	moduleSource := cfg.ModulePaths
	if env := os.Getenv(EnvModulePaths); env != "" {
		moduleSource = filepath.SplitList(env)
	}
	modulePaths, err := ExpandPaths(moduleSource)
	if err != nil {
		return nil, err
	}

	return &ResolvedBuildConfig{
		Server:         resolveString("server", opts.ServerFlag, EnvServer, cfg.Server, DefaultServer),
		LocalServerURL: resolveString("localServerURL", opts.LocalServerURLFlag, EnvLocalServerURL, cfg.LocalServerURL, DefaultLocalServerURL),
		ModulePaths:    modulePaths,
	}, nil
}

// LogResolvedValues logs configuration resolution at DEBUG level.
func LogResolvedValues(values ...ResolvedValue) {
	for _, v := range values {
		output.Debug("config value resolved",
			"key", v.Key,
			"value", v.Value,
			"source", v.Source,
		)
		for source, shadowed := range v.Shadowed {
			output.Debug("  shadowed by higher precedence",
				"key", v.Key,
				"shadowed_source", source,
				"shadowed_value", shadowed,
			)
		}
	}
}
