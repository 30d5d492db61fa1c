// Package dispatch decides whether an invocation shows help or runs a build,
// and guarantees the tool pool is stopped after a build.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"

	"github.com/google/uuid"
	"github.com/spf13/pflag"

	oerrors "github.com/gcdevkit/devkit/internal/errors"
	"github.com/gcdevkit/devkit/internal/options"
	"github.com/gcdevkit/devkit/internal/output"
	"github.com/gcdevkit/devkit/internal/target"
)

// LoadFunc loads the app at path.
type LoadFunc func(ctx context.Context, path string) (target.App, error)

// Builder runs a resolved build request.
type Builder interface {
	Build(ctx context.Context, req *target.Request) error
}

// Stopper releases the helper processes started during a build.
type Stopper interface {
	Stop() error
}

// Invocation is one parsed command line.
type Invocation struct {
	Options options.Options

	// Args are the positional arguments left after flag parsing.
	Args []string

	// Raw is the unparsed argument list, re-parsed against the schema of
	// the resolved target.
	Raw []string
}

// WithHelp returns a copy of inv that requests help. inv is not modified.
func (inv Invocation) WithHelp() Invocation {
	return Invocation{
		Options: inv.Options.WithHelp(),
		Args:    slices.Clone(inv.Args),
		Raw:     slices.Clone(inv.Raw),
	}
}

// Dispatcher runs invocations of the debug command.
type Dispatcher struct {
	Load    LoadFunc
	Builder Builder

	// Tools is stopped exactly once after every dispatched build. It may be
	// nil.
	Tools Stopper

	// Globals are flag sets parsed alongside the target schema whose values
	// are not part of the request (the root persistent flags).
	Globals []*pflag.FlagSet

	// Out receives help text, Err the app load error. nil means os.Stdout
	// and os.Stderr.
	Out io.Writer
	Err io.Writer

	// NewID generates build ids. nil means a random UUID.
	NewID func() string

	// Validate checks the options before a build is dispatched. Help
	// requests never run it. It may be nil.
	Validate func(options.Options) error
}

// Run shows help when it was requested, no target was given or the target
// does not resolve. Otherwise it dispatches the build.
func (d *Dispatcher) Run(ctx context.Context, inv Invocation) error {
	id, args := selectTarget(inv)

	a, err := d.Load(ctx, inv.Options.App)
	if err != nil {
		return d.appLoadFailure(err)
	}

	if inv.Options.Help || id == "" {
		d.printHelp(a, id)
		return nil
	}

	bm, ok := target.ResolveTarget(a, id)
	if !ok {
		d.printHelp(a, id)
		return nil
	}

	return d.dispatch(ctx, inv, id, bm, args)
}

// ShowHelp runs inv with help requested.
func (d *Dispatcher) ShowHelp(ctx context.Context, inv Invocation) error {
	return d.Run(ctx, inv.WithHelp())
}

// selectTarget applies --target, then the first positional argument. The
// positional arguments not used as the target are returned.
func selectTarget(inv Invocation) (string, []string) {
	if inv.Options.Target != "" {
		return inv.Options.Target, inv.Args
	}
	if len(inv.Args) > 0 {
		return inv.Args[0], inv.Args[1:]
	}
	return "", inv.Args
}

func (d *Dispatcher) printHelp(a target.App, id string) {
	w := d.out()
	fmt.Fprintln(w, target.FormatHelp(a, id))
	if id == "" {
		return
	}
	if _, ok := target.ResolveTarget(a, id); !ok {
		fmt.Fprintln(w, target.ValidTargetsMessage(a))
	}
}

func (d *Dispatcher) appLoadFailure(err error) error {
	fmt.Fprintln(d.errOut(), err)
	return &oerrors.ExitError{
		Err:     oerrors.WrapAppLoad(err, "loading app"),
		Code:    oerrors.ExitGeneralError,
		Printed: true,
	}
}

func (d *Dispatcher) dispatch(ctx context.Context, inv Invocation, id string, bm target.BuildModule, args []string) (err error) {
	defer func() {
		if d.Tools == nil {
			return
		}
		if stopErr := d.Tools.Stop(); stopErr != nil {
			output.Warn("stopping tools", "error", stopErr)
			if err == nil {
				err = fmt.Errorf("stopping tools: %w", stopErr)
			}
		}
	}()

	if d.Validate != nil {
		if err := d.Validate(inv.Options); err != nil {
			return err
		}
	}

	values, err := options.ParseTarget(inv.Raw, target.SchemaOf(bm), d.Globals...)
	if err != nil {
		return err
	}

	appPath, err := filepath.Abs(inv.Options.App)
	if err != nil {
		return fmt.Errorf("resolving app path: %w", err)
	}

	req := target.NewRequest(d.newID(), id, appPath, inv.Options, values, args)
	output.Debug("dispatching build", "target", id, "id", req.ID, "values", len(values))

	if err := d.Builder.Build(ctx, req); err != nil {
		if errors.Is(err, oerrors.ErrBuild) {
			return err
		}
		return oerrors.WrapBuild(err, "building "+id)
	}
	return nil
}

func (d *Dispatcher) newID() string {
	if d.NewID != nil {
		return d.NewID()
	}
	return uuid.NewString()
}

func (d *Dispatcher) out() io.Writer {
	if d.Out != nil {
		return d.Out
	}
	return os.Stdout
}

func (d *Dispatcher) errOut() io.Writer {
	if d.Err != nil {
		return d.Err
	}
	return os.Stderr
}
