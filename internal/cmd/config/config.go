// Package config provides CLI command implementations for the config command group.
package config

import (
	"github.com/spf13/cobra"

	"github.com/gcdevkit/devkit/internal/config"
)

// NewConfigCmd creates the config command group.
func NewConfigCmd(cfg *config.GlobalConfig) *cobra.Command {
	c := &cobra.Command{
		Use:   "config",
		Short: "Configuration management",
		Long:  `Configuration management for the devkit CLI.`,
	}

	c.AddCommand(NewConfigInitCmd(cfg))
	c.AddCommand(NewConfigVetCmd(cfg))

	return c
}

// configFile returns the expanded config path resolved by the root command.
func configFile(cfg *config.GlobalConfig) (string, error) {
	path := cfg.ConfigPath.Value
	if path == "" {
		resolved, err := config.ResolveConfigPath(cfg.Flags.Config)
		if err != nil {
			return "", err
		}
		path = resolved.Value
	}
	return config.ExpandPath(path)
}
