// Package cmd provides CLI command implementations.
package cmd

import (
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	cmdconfig "github.com/gcdevkit/devkit/internal/cmd/config"
	"github.com/gcdevkit/devkit/internal/cmd/debug"
	"github.com/gcdevkit/devkit/internal/config"
	"github.com/gcdevkit/devkit/internal/output"
)

// NewRootCmd creates the root command for the devkit CLI.
func NewRootCmd() *cobra.Command {
	cfg := &config.GlobalConfig{}

	rootCmd := &cobra.Command{
		Use:   "devkit",
		Short: "Game SDK build tool",
		Long: `devkit builds games for the platforms provided by the modules
installed in an app.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(c *cobra.Command, args []string) error {
			return initializeGlobals(c, args, cfg)
		},
	}

	rootCmd.PersistentFlags().StringVar(&cfg.Flags.Config, "config", "", "Path to config file (env: DEVKIT_CONFIG)")
	rootCmd.PersistentFlags().BoolVarP(&cfg.Flags.Verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().BoolVar(&cfg.Flags.Timestamps, "timestamps", true, "Show timestamps in log output")

	rootCmd.AddCommand(debug.NewDebugCmd(cfg))
	rootCmd.AddCommand(cmdconfig.NewConfigCmd(cfg))
	rootCmd.AddCommand(NewVersionCmd(cfg))

	return rootCmd
}

// initializeGlobals loads the config file and sets up logging.
func initializeGlobals(c *cobra.Command, args []string, cfg *config.GlobalConfig) error {
	flags := c.Flags()
	if c.DisableFlagParsing {
		// Commands that parse their own flags still honor the global ones.
		flags = parseGlobalFlags(c.Root().PersistentFlags(), args)
	}

	configPath, err := config.ResolveConfigPath(cfg.Flags.Config)
	if err != nil {
		return err
	}
	cfg.ConfigPath = configPath

	loaded, err := config.NewLoader().Load(configPath.Value)
	if err != nil {
		output.Debug("config load error", "error", err)
		loaded = nil
	}
	if loaded == nil {
		loaded = config.DefaultConfig()
	}
	cfg.Config = loaded

	logCfg := output.LogConfig{Verbose: cfg.Flags.Verbose}
	if flags.Changed("timestamps") {
		logCfg.Timestamps = output.BoolPtr(cfg.Flags.Timestamps)
	} else if loaded.Log.Timestamps != nil {
		logCfg.Timestamps = loaded.Log.Timestamps
	}
	output.SetupLogging(logCfg)

	if validator, err := config.NewValidator(); err == nil {
		if err := validator.Validate(loaded); err != nil {
			output.Warn("config file is invalid, run 'devkit config vet' for details", "path", configPath.Value)
		}
	}

	config.LogResolvedValues(configPath)
	return nil
}

// parseGlobalFlags parses the persistent flags out of raw args. Unknown
// flags are ignored; the returned set reports which flags were given.
func parseGlobalFlags(persistent *pflag.FlagSet, args []string) *pflag.FlagSet {
	fs := pflag.NewFlagSet("global", pflag.ContinueOnError)
	fs.AddFlagSet(persistent)
	fs.ParseErrorsWhitelist.UnknownFlags = true
	fs.SetOutput(io.Discard)
	fs.Usage = func() {}
	if err := fs.Parse(args); err != nil {
		output.Debug("parsing global flags", "error", err)
	}
	return fs
}
