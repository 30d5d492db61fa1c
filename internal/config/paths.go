package config

import (
	"os"
	"path/filepath"
)

// Paths contains standard filesystem paths for devkit.
type Paths struct {
	// ConfigFile is the path to the config file (~/.devkit/config.yaml).
	ConfigFile string

	// ModulesDir is the shared module directory (~/.devkit/modules).
	ModulesDir string

	// HomeDir is the devkit home directory (~/.devkit).
	HomeDir string
}

// DefaultPaths returns the default paths for devkit.
func DefaultPaths() (*Paths, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}

	devkitHome := filepath.Join(homeDir, ".devkit")

	return &Paths{
		ConfigFile: filepath.Join(devkitHome, "config.yaml"),
		ModulesDir: filepath.Join(devkitHome, "modules"),
		HomeDir:    devkitHome,
	}, nil
}

// ExpandPath expands ~ to the user's home directory.
func ExpandPath(path string) (string, error) {
	if len(path) == 0 {
		return path, nil
	}

	if path[0] != '~' {
		return path, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}

	if len(path) == 1 {
		return homeDir, nil
	}

	if path[1] == '/' || path[1] == filepath.Separator {
		return filepath.Join(homeDir, path[2:]), nil
	}

	// ~username is not supported, return as-is
	return path, nil
}

// ExpandPaths expands every entry of paths, dropping empty entries.
func ExpandPaths(paths []string) ([]string, error) {
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		if p == "" {
			continue
		}
		expanded, err := ExpandPath(p)
		if err != nil {
			return nil, err
		}
		out = append(out, expanded)
	}
	return out, nil
}

// FileExists reports whether path exists. Errors other than "does not
// exist" are returned.
func FileExists(path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, err
}
