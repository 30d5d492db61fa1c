// Package target resolves build targets across the modules installed in an
// app and formats their help text.
package target

import (
	"context"
	"slices"

	"github.com/spf13/pflag"

	"github.com/gcdevkit/devkit/internal/options"
)

// App is a loaded project. Modules are returned in enumeration order.
type App interface {
	Modules() []Module
}

// Module is an installed plugin contributing build targets.
type Module interface {
	Name() string

	// BuildTargets returns the target ids the module declares.
	BuildTargets() []string

	// LoadBuildTarget loads the backend for id. It reports false when the
	// module does not provide id or the backend cannot be loaded.
	LoadBuildTarget(id string) (BuildModule, bool)
}

// BuildModule is the backend producing build output for one target id.
type BuildModule interface {
	Build(ctx context.Context, job *Job) error
}

// OptionSchema is implemented by build modules that accept target-specific
// flags. Options may return nil when the target declares none.
type OptionSchema interface {
	Options() *pflag.FlagSet
}

// SchemaOf returns the option schema of m, or nil when it has none.
func SchemaOf(m BuildModule) *pflag.FlagSet {
	s, ok := m.(OptionSchema)
	if !ok {
		return nil
	}
	fs := s.Options()
	if fs == nil || !fs.HasFlags() {
		return nil
	}
	return fs
}

// Tools starts or reuses auxiliary helper processes needed by a build.
type Tools interface {
	Ensure(ctx context.Context, name string, command []string, dir string) error
}

// Request is the resolved invocation of one build. It is built once per
// CLI invocation and must not be modified afterwards.
type Request struct {
	ID      string          `json:"id"`
	Target  string          `json:"target"`
	AppPath string          `json:"appPath"`
	Options options.Options `json:"options"`
	Values  options.Values  `json:"values"`
	Args    []string        `json:"args"`
}

// NewRequest builds a Request, copying values and args so later changes by
// the caller are not observed.
func NewRequest(id, targetID, appPath string, opts options.Options, values options.Values, args []string) *Request {
	if args == nil {
		args = []string{}
	}
	return &Request{
		ID:      id,
		Target:  targetID,
		AppPath: appPath,
		Options: opts,
		Values:  values.Clone(),
		Args:    slices.Clone(args),
	}
}

// Job is what a BuildModule receives: the request plus the values resolved
// against the loaded app.
type Job struct {
	Request *Request `json:"request"`

	AppID     string `json:"appID"`
	ShortName string `json:"shortName"`
	Title     string `json:"title"`

	// Version is --version, or the manifest version when not overridden.
	Version string `json:"version"`

	// OutputDir is --output, or the default build directory.
	OutputDir string `json:"outputDir"`

	// Tools is the pool backends use for helper processes.
	Tools Tools `json:"-"`
}
