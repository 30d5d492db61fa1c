package app

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/gcdevkit/devkit/internal/backend"
	oerrors "github.com/gcdevkit/devkit/internal/errors"
	"github.com/gcdevkit/devkit/internal/target"
)

// ModuleFile is the module descriptor file name inside a module directory.
const ModuleFile = "module.yaml"

// moduleFile is the on-disk form of module.yaml.
type moduleFile struct {
	Name    string                        `yaml:"name"`
	Targets map[string]backend.TargetSpec `yaml:"targets"`
}

// Module is an installed module. It implements target.Module.
type Module struct {
	name    string
	dir     string
	targets map[string]backend.TargetSpec
}

var _ target.Module = (*Module)(nil)

// Name returns the module name.
func (m *Module) Name() string { return m.name }

// Dir returns the module directory.
func (m *Module) Dir() string { return m.dir }

// BuildTargets returns the declared target ids, sorted.
func (m *Module) BuildTargets() []string {
	ids := make([]string, 0, len(m.targets))
	for id := range m.targets {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// LoadBuildTarget returns a new exec backend for id.
func (m *Module) LoadBuildTarget(id string) (target.BuildModule, bool) {
	spec, ok := m.targets[id]
	if !ok {
		return nil, false
	}
	return &backend.Exec{Target: id, Dir: m.dir, Spec: spec}, true
}

// LoadModule reads dir/module.yaml. The module name defaults to the
// directory name.
func LoadModule(dir string) (*Module, error) {
	path := filepath.Join(dir, ModuleFile)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, oerrors.NewNotFoundError("no "+ModuleFile+" found", path, "")
		}
		return nil, fmt.Errorf("reading module: %w", err)
	}

	var mf moduleFile
	if err := yaml.Unmarshal(data, &mf); err != nil {
		return nil, oerrors.WrapValidation(err, "parsing "+path)
	}

	for _, id := range sortedTargetIDs(mf.Targets) {
		if err := mf.Targets[id].Validate(); err != nil {
			return nil, oerrors.NewValidationError(
				fmt.Sprintf("target %s: %v", id, err),
				path,
				"",
			)
		}
	}

	name := mf.Name
	if name == "" {
		name = filepath.Base(dir)
	}
	if mf.Targets == nil {
		mf.Targets = map[string]backend.TargetSpec{}
	}
	return &Module{name: name, dir: dir, targets: mf.Targets}, nil
}

func sortedTargetIDs(m map[string]backend.TargetSpec) []string {
	ids := make([]string, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
