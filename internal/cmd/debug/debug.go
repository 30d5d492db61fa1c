// Package debug provides the `devkit debug` and `devkit release` commands.
package debug

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/gcdevkit/devkit/internal/app"
	"github.com/gcdevkit/devkit/internal/build"
	"github.com/gcdevkit/devkit/internal/config"
	"github.com/gcdevkit/devkit/internal/dispatch"
	oerrors "github.com/gcdevkit/devkit/internal/errors"
	"github.com/gcdevkit/devkit/internal/options"
	"github.com/gcdevkit/devkit/internal/output"
	"github.com/gcdevkit/devkit/internal/target"
	"github.com/gcdevkit/devkit/internal/tools"
)

// NewDebugCmd creates the debug command. Invoked as `release` it defaults
// to the release scheme.
func NewDebugCmd(cfg *config.GlobalConfig) *cobra.Command {
	var schema options.Options

	c := &cobra.Command{
		Use:     "debug [target] [flags]",
		Aliases: []string{options.SchemeRelease},
		Short:   "Build the app for a target",
		Long: `Build the app for one of the targets provided by its installed modules.

The target is taken from --target or the first argument. Without a target,
or with --help, the available targets and their options are listed.
Target-specific flags are accepted alongside the flags below.

Examples:
  # List the installed build targets
  devkit debug

  # Debug build for the browser
  devkit debug browser-desktop

  # Release build of the iOS target with a target-specific flag
  devkit release native-ios --ipa

  # Show the options of a target
  devkit debug native-android --help

Target help is only available through "devkit debug <target> --help".
"devkit help debug" prints this usage and the targets of the app in the
current directory; it does not accept --app or a target.`,
		DisableFlagParsing: true,
		RunE: func(c *cobra.Command, args []string) error {
			return runDebug(c, args, cfg)
		},
	}

	// Listed for usage output only; args are parsed by runDebug.
	c.Flags().AddFlagSet(options.NewSchema(&schema))

	c.SetHelpFunc(func(c *cobra.Command, args []string) {
		fmt.Fprint(c.OutOrStdout(), c.UsageString())
		if err := showTargetHelp(c, args, cfg); err != nil {
			output.Debug("showing target help", "error", err)
		}
	})

	return c
}

func runDebug(c *cobra.Command, args []string, cfg *config.GlobalConfig) error {
	d, inv, err := prepare(c, args, cfg)
	if err != nil {
		return err
	}

	if inv.Options.Help {
		fmt.Fprint(c.OutOrStdout(), c.UsageString())
	}
	return d.Run(commandContext(c), inv)
}

func showTargetHelp(c *cobra.Command, args []string, cfg *config.GlobalConfig) error {
	d, inv, err := prepare(c, args, cfg)
	if err != nil {
		return err
	}
	return d.ShowHelp(commandContext(c), inv)
}

// prepare parses args and wires the dispatcher for this invocation.
func prepare(c *cobra.Command, args []string, cfg *config.GlobalConfig) (*dispatch.Dispatcher, dispatch.Invocation, error) {
	globals := c.Root().PersistentFlags()

	opts, positional, err := options.Parse(args, globals)
	if err != nil {
		return nil, dispatch.Invocation{}, err
	}

	if opts.Scheme == "" {
		opts.Scheme = schemeFor(c.CalledAs())
	}
	if opts.Scheme == options.SchemeDebug {
		opts.Debug = true
	}

	resolved, err := config.ResolveBuild(config.ResolveBuildOptions{
		ServerFlag:         opts.Server,
		LocalServerURLFlag: opts.LocalServerURL,
		Config:             cfg.Config,
	})
	if err != nil {
		return nil, dispatch.Invocation{}, err
	}
	config.LogResolvedValues(resolved.Server, resolved.LocalServerURL)

	opts.Server = resolved.Server.Value
	opts.LocalServerURL = resolved.LocalServerURL.Value
	if opts.Server != config.ServerLocal {
		if src := resolved.LocalServerURL.Source; src == config.SourceFlag || src == config.SourceEnv {
			output.Warn("localServerURL is ignored unless --server=local", "server", opts.Server)
		}
		opts.LocalServerURL = ""
	}

	// A bad timeout only matters once a build is dispatched; Validate
	// rejects it before any tool starts.
	stopTimeout, timeoutErr := cfg.Config.StopTimeout()

	pool := tools.NewPool(stopTimeout)
	loader := &app.Loader{ModulePaths: resolved.ModulePaths}

	d := &dispatch.Dispatcher{
		Load: func(ctx context.Context, path string) (target.App, error) {
			a, err := loader.Load(ctx, path)
			if err != nil {
				return nil, err
			}
			return a, nil
		},
		Builder: &build.Runner{Loader: loader, Tools: pool},
		Tools:   pool,
		Globals: []*pflag.FlagSet{globals},
		Out:     c.OutOrStdout(),
		Err:     c.ErrOrStderr(),
		Validate: func(o options.Options) error {
			if err := o.Validate(); err != nil {
				return err
			}
			if timeoutErr != nil {
				return oerrors.WrapValidation(timeoutErr, "invalid config")
			}
			return nil
		},
	}

	inv := dispatch.Invocation{Options: opts, Args: positional, Raw: args}
	return d, inv, nil
}

// schemeFor returns the default scheme for the name the command was invoked
// with.
func schemeFor(calledAs string) string {
	if calledAs == options.SchemeRelease {
		return options.SchemeRelease
	}
	return options.SchemeDebug
}

func commandContext(c *cobra.Command) context.Context {
	if ctx := c.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
