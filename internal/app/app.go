package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	oerrors "github.com/gcdevkit/devkit/internal/errors"
	"github.com/gcdevkit/devkit/internal/output"
	"github.com/gcdevkit/devkit/internal/target"
)

// ModulesDir is the directory inside an app where modules are installed.
const ModulesDir = "modules"

// App is a loaded project. It implements target.App.
type App struct {
	// Path is the absolute app directory.
	Path     string
	Manifest *Manifest

	modules []*Module
}

var _ target.App = (*App)(nil)

// Modules returns the installed modules in enumeration order.
func (a *App) Modules() []target.Module {
	out := make([]target.Module, len(a.modules))
	for i, m := range a.modules {
		out[i] = m
	}
	return out
}

// Loader loads apps from disk.
type Loader struct {
	// ModulePaths are extra directories whose subdirectories are modules.
	// They are enumerated after the app's own modules.
	ModulePaths []string
}

// Load loads the app at path and its modules.
func (l *Loader) Load(ctx context.Context, path string) (*App, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolving app path: %w", err)
	}

	manifest, err := LoadManifest(filepath.Join(abs, ManifestFile))
	if err != nil {
		return nil, err
	}

	dirs, err := l.moduleDirs(abs, manifest)
	if err != nil {
		return nil, err
	}

	a := &App{Path: abs, Manifest: manifest}
	seen := make(map[string]string)
	for _, dir := range dirs {
		m, err := LoadModule(dir)
		if err != nil {
			return nil, fmt.Errorf("loading module %s: %w", filepath.Base(dir), err)
		}
		if prev, ok := seen[m.Name()]; ok {
			output.Debug("skipping duplicate module", "module", m.Name(), "dir", dir, "loaded", prev)
			continue
		}
		seen[m.Name()] = dir
		a.modules = append(a.modules, m)
	}

	output.Debug("loaded app", "path", abs, "appID", manifest.AppID, "modules", len(a.modules))
	return a, nil
}

// moduleDirs returns module directories in enumeration order: the manifest
// modules list (or the sorted app modules directory), then every module
// path sorted within itself.
func (l *Loader) moduleDirs(appPath string, manifest *Manifest) ([]string, error) {
	var dirs []string
	if len(manifest.Modules) > 0 {
		for _, name := range manifest.Modules {
			dirs = append(dirs, filepath.Join(appPath, ModulesDir, name))
		}
	} else {
		found, err := listModuleDirs(filepath.Join(appPath, ModulesDir))
		if err != nil {
			return nil, err
		}
		dirs = append(dirs, found...)
	}

	for _, p := range l.ModulePaths {
		found, err := listModuleDirs(p)
		if err != nil {
			return nil, err
		}
		dirs = append(dirs, found...)
	}
	return dirs, nil
}

// listModuleDirs returns the subdirectories of root containing a
// module.yaml, sorted by name. A missing root yields nothing.
func listModuleDirs(root string) ([]string, error) {
	entries, err := os.ReadDir(root)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, oerrors.WrapAppLoad(err, "listing modules")
	}

	var dirs []string
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		dir := filepath.Join(root, e.Name())
		if _, err := os.Stat(filepath.Join(dir, ModuleFile)); err != nil {
			continue
		}
		dirs = append(dirs, dir)
	}
	sort.Strings(dirs)
	return dirs, nil
}
