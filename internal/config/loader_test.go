package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLoader(t *testing.T) {
	loader := NewLoader()
	assert.NotNil(t, loader)
	assert.NotNil(t, loader.v)
}

func TestLoaderLoad(t *testing.T) {
	t.Run("loads config from file", func(t *testing.T) {
		tmpDir := t.TempDir()
		configFile := filepath.Join(tmpDir, "config.yaml")

		content := `
modulePaths:
  - /opt/devkit/modules
server: production
localServerURL: http://192.168.1.20:9200
log:
  timestamps: false
tools:
  stopTimeout: 10s
`
		require.NoError(t, os.WriteFile(configFile, []byte(content), 0o644))

		cfg, err := NewLoader().Load(configFile)

		require.NoError(t, err)
		assert.Equal(t, []string{"/opt/devkit/modules"}, cfg.ModulePaths)
		assert.Equal(t, ServerProduction, cfg.Server)
		assert.Equal(t, "http://192.168.1.20:9200", cfg.LocalServerURL)
		require.NotNil(t, cfg.Log.Timestamps)
		assert.False(t, *cfg.Log.Timestamps)
		assert.Equal(t, "10s", cfg.Tools.StopTimeout)
	})

	t.Run("returns defaults for missing file", func(t *testing.T) {
		cfg, err := NewLoader().Load(filepath.Join(t.TempDir(), "nonexistent.yaml"))

		require.NoError(t, err)
		assert.Equal(t, DefaultServer, cfg.Server)
		assert.Equal(t, DefaultLocalServerURL, cfg.LocalServerURL)
		assert.Equal(t, DefaultStopTimeout, cfg.Tools.StopTimeout)
		assert.Nil(t, cfg.Log.Timestamps)
	})

	t.Run("returns error for malformed yaml", func(t *testing.T) {
		configFile := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(configFile, []byte("server: [unterminated"), 0o644))

		_, err := NewLoader().Load(configFile)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "reading config file")
	})
}
