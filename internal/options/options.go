// Package options declares the flags accepted by the debug command and the
// typed values they produce.
package options

import (
	"errors"
	"fmt"
	"io"
	"slices"
	"sort"
	"strings"

	"github.com/spf13/pflag"

	oerrors "github.com/gcdevkit/devkit/internal/errors"
	"github.com/gcdevkit/devkit/internal/output"
)

// Build schemes.
const (
	SchemeDebug   = "debug"
	SchemeRelease = "release"
)

// Server modes accepted by --server.
var serverModes = []string{"local", "inherit", "production"}

// Options are the typed values of the debug command flags.
type Options struct {
	App            string `json:"app"`
	Target         string `json:"target,omitempty"`
	Simulated      bool   `json:"simulated"`
	Output         string `json:"output,omitempty"`
	Server         string `json:"server,omitempty"`
	LocalServerURL string `json:"localServerURL,omitempty"`
	Debug          bool   `json:"debug"`
	Scheme         string `json:"scheme,omitempty"`
	Version        string `json:"version,omitempty"`
	Help           bool   `json:"-"`
}

// Values are flag values keyed by flag name, as strings.
type Values map[string]string

// NewSchema returns the flag set of the debug command bound to o.
func NewSchema(o *Options) *pflag.FlagSet {
	fs := pflag.NewFlagSet("debug", pflag.ContinueOnError)
	fs.StringVar(&o.App, "app", ".", "path to the app directory")
	fs.StringVar(&o.Target, "target", "", "build target (or pass it as the first argument)")
	fs.BoolVar(&o.Simulated, "simulated", false, "build for the devkit simulator")
	fs.StringVarP(&o.Output, "output", "o", "", "path where build output is written")
	fs.StringVar(&o.Server, "server", "", "local | inherit | production")
	fs.StringVar(&o.LocalServerURL, "localServerURL", "", "if server is local, overrides default local server URL")
	fs.BoolVar(&o.Debug, "debug", false, "creates a debug build")
	fs.StringVar(&o.Scheme, "scheme", "", "debug | release")
	fs.StringVar(&o.Version, "version", "", "override the version provided in the manifest")
	fs.BoolVarP(&o.Help, "help", "h", false, "show build target help")
	return fs
}

// Parse parses args against the debug schema and any extra flag sets (the
// root persistent flags, for instance). Flags unknown to all of them are
// skipped so target-specific flags survive to ParseTarget.
func Parse(args []string, extra ...*pflag.FlagSet) (Options, []string, error) {
	var o Options
	fs := NewSchema(&o)
	if err := parse(fs, args, extra); err != nil {
		return Options{}, nil, err
	}

	positional := slices.Clone(fs.Args())
	if o.Target == "" && len(positional) == 0 {
		for _, consumed := range unknownFlagValues(fs, args) {
			output.Warn("unknown flag took the next argument as its value, no target selected (use --flag=value or put the target first)",
				"flag", consumed[0], "value", consumed[1])
		}
	}
	return o, positional, nil
}

// unknownFlagValues returns the flag/value pairs where a flag not defined in
// fs is followed by a separate argument, which pflag then drops as the
// flag's value.
func unknownFlagValues(fs *pflag.FlagSet, args []string) [][2]string {
	var consumed [][2]string
	for i := 0; i < len(args)-1; i++ {
		arg := args[i]
		if arg == "--" {
			break
		}
		if len(arg) < 2 || arg[0] != '-' || strings.Contains(arg, "=") {
			continue
		}

		var f *pflag.Flag
		switch {
		case strings.HasPrefix(arg, "--"):
			f = fs.Lookup(arg[2:])
		case len(arg) == 2:
			f = fs.ShorthandLookup(arg[1:])
		default:
			continue
		}

		next := args[i+1]
		if strings.HasPrefix(next, "-") {
			continue
		}
		switch {
		case f == nil:
			consumed = append(consumed, [2]string{arg, next})
			i++
		case f.NoOptDefVal == "":
			i++
		}
	}
	return consumed
}

// ParseTarget parses args against the debug schema merged with a target's
// own flag set and returns the value of every flag of both, defaults
// included. target may be nil.
func ParseTarget(args []string, target *pflag.FlagSet, extra ...*pflag.FlagSet) (Values, error) {
	var o Options
	fs := NewSchema(&o)
	merge(fs, target)
	if err := parse(fs, args, extra); err != nil {
		return nil, err
	}

	values := make(Values)
	fs.VisitAll(func(f *pflag.Flag) {
		if f.Name == "help" || isExtra(f.Name, extra) {
			return
		}
		values[f.Name] = f.Value.String()
	})
	return values, nil
}

func parse(fs *pflag.FlagSet, args []string, extra []*pflag.FlagSet) error {
	for _, e := range extra {
		merge(fs, e)
	}
	fs.ParseErrorsWhitelist.UnknownFlags = true
	fs.SetOutput(io.Discard)
	fs.Usage = func() {}

	if err := fs.Parse(args); err != nil {
		return oerrors.WrapValidation(err, "parsing flags")
	}
	return nil
}

// merge adds the flags of src that clash with neither a name nor a
// shorthand already defined in dst. The debug schema always wins.
func merge(dst, src *pflag.FlagSet) {
	if src == nil {
		return
	}
	src.VisitAll(func(f *pflag.Flag) {
		if dst.Lookup(f.Name) != nil {
			return
		}
		if f.Shorthand != "" && dst.ShorthandLookup(f.Shorthand) != nil {
			return
		}
		dst.AddFlag(f)
	})
}

func isExtra(name string, extra []*pflag.FlagSet) bool {
	for _, e := range extra {
		if e.Lookup(name) != nil {
			return true
		}
	}
	return false
}

// Validate checks the enumerated flag values.
func (o Options) Validate() error {
	var errs []error
	if o.Server != "" && !slices.Contains(serverModes, o.Server) {
		errs = append(errs, fmt.Errorf("--server must be one of %v, got %q", serverModes, o.Server))
	}
	if o.Scheme != "" && o.Scheme != SchemeDebug && o.Scheme != SchemeRelease {
		errs = append(errs, fmt.Errorf("--scheme must be %q or %q, got %q", SchemeDebug, SchemeRelease, o.Scheme))
	}
	if len(errs) > 0 {
		return oerrors.WrapValidation(errors.Join(errs...), "invalid options")
	}
	return nil
}

// WithHelp returns a copy of o with the help flag set.
func (o Options) WithHelp() Options {
	o.Help = true
	return o
}

// Clone returns a copy of v.
func (v Values) Clone() Values {
	if v == nil {
		return nil
	}
	out := make(Values, len(v))
	for k, val := range v {
		out[k] = val
	}
	return out
}

// Names returns the flag names in v, sorted.
func (v Values) Names() []string {
	names := make([]string, 0, len(v))
	for k := range v {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}
