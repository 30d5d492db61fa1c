// Package testutil provides test helpers for devkit tests.
package testutil

import (
	"os"
	"path/filepath"
	"sort"
	"testing"
)

// Manifest is a minimal valid manifest.json.
const Manifest = `{"appID": "com.example.game", "shortName": "game", "title": "Game", "version": "1.0"}`

// WriteFile creates a file with the given content in the specified directory.
func WriteFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("failed to create parent dirs for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write file %s: %v", path, err)
	}
	return path
}

// WriteModule writes a module.yaml into dir/name and returns the module
// directory.
func WriteModule(t *testing.T, dir, name, moduleYAML string) string {
	t.Helper()
	moduleDir := filepath.Join(dir, name)
	WriteFile(t, moduleDir, "module.yaml", moduleYAML)
	return moduleDir
}

// WriteApp creates an app in a temporary directory with the given manifest
// and modules (module.yaml content keyed by module directory name).
func WriteApp(t *testing.T, manifest string, modules map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	WriteFile(t, dir, "manifest.json", manifest)

	names := make([]string, 0, len(modules))
	for name := range modules {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		WriteModule(t, filepath.Join(dir, "modules"), name, modules[name])
	}
	return dir
}
