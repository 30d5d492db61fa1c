// Package backend runs the external build programs declared by modules.
package backend

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/pflag"
)

// Option types accepted in module.yaml.
const (
	TypeString      = "string"
	TypeBool        = "bool"
	TypeInt         = "int"
	TypeStringSlice = "stringSlice"
)

// TargetSpec is one entry of the targets map in module.yaml.
type TargetSpec struct {
	// Command is the build program and its arguments. A relative program
	// path containing a slash is resolved against the module directory.
	Command []string `yaml:"command"`

	// Quiet captures the program output and only shows it on failure.
	Quiet bool `yaml:"quiet,omitempty"`

	Options []OptionSpec      `yaml:"options,omitempty"`
	Tools   []ToolSpec        `yaml:"tools,omitempty"`
	Env     map[string]string `yaml:"env,omitempty"`
}

// OptionSpec declares a target-specific flag.
type OptionSpec struct {
	Name      string `yaml:"name"`
	Shorthand string `yaml:"shorthand,omitempty"`
	Type      string `yaml:"type,omitempty"`
	Default   string `yaml:"default,omitempty"`
	Usage     string `yaml:"usage,omitempty"`
}

// ToolSpec declares a helper process the build needs running.
type ToolSpec struct {
	Name    string   `yaml:"name"`
	Command []string `yaml:"command"`
}

// Validate checks the spec is runnable and its options are well formed.
func (s TargetSpec) Validate() error {
	var errs []error
	if len(s.Command) == 0 || s.Command[0] == "" {
		errs = append(errs, errors.New("command is required"))
	}
	for i, t := range s.Tools {
		if t.Name == "" {
			errs = append(errs, fmt.Errorf("tools[%d]: name is required", i))
		}
		if len(t.Command) == 0 {
			errs = append(errs, fmt.Errorf("tools[%d]: command is required", i))
		}
	}
	if _, err := newFlagSet(s.Options); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func newFlagSet(specs []OptionSpec) (fs *pflag.FlagSet, err error) {
	fs = pflag.NewFlagSet("target", pflag.ContinueOnError)

	// pflag panics on duplicate names and shorthands.
	defer func() {
		if r := recover(); r != nil {
			fs, err = nil, fmt.Errorf("options: %v", r)
		}
	}()

	for _, o := range specs {
		if err := addFlag(fs, o); err != nil {
			return nil, fmt.Errorf("option %q: %w", o.Name, err)
		}
	}
	return fs, nil
}

func addFlag(fs *pflag.FlagSet, o OptionSpec) error {
	if o.Name == "" {
		return errors.New("name is required")
	}
	if len(o.Shorthand) > 1 {
		return fmt.Errorf("shorthand %q must be a single character", o.Shorthand)
	}

	switch o.Type {
	case "", TypeString:
		fs.StringP(o.Name, o.Shorthand, o.Default, o.Usage)
	case TypeBool:
		def := false
		if o.Default != "" {
			b, err := strconv.ParseBool(o.Default)
			if err != nil {
				return fmt.Errorf("default %q is not a bool", o.Default)
			}
			def = b
		}
		fs.BoolP(o.Name, o.Shorthand, def, o.Usage)
	case TypeInt:
		def := 0
		if o.Default != "" {
			n, err := strconv.Atoi(o.Default)
			if err != nil {
				return fmt.Errorf("default %q is not an int", o.Default)
			}
			def = n
		}
		fs.IntP(o.Name, o.Shorthand, def, o.Usage)
	case TypeStringSlice:
		var def []string
		if o.Default != "" {
			def = strings.Split(o.Default, ",")
		}
		fs.StringSliceP(o.Name, o.Shorthand, def, o.Usage)
	default:
		return fmt.Errorf("unknown type %q", o.Type)
	}
	return nil
}
