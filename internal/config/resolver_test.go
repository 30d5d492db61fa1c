package config

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveConfigPath_FlagPrecedence(t *testing.T) {
	t.Setenv(EnvConfig, "/env/path/config.yaml")

	result, err := ResolveConfigPath("/flag/path/config.yaml")
	require.NoError(t, err)

	assert.Equal(t, "/flag/path/config.yaml", result.Value)
	assert.Equal(t, SourceFlag, result.Source)
	assert.Equal(t, "/env/path/config.yaml", result.Shadowed[SourceEnv])
	assert.NotEmpty(t, result.Shadowed[SourceDefault])
}

func TestResolveConfigPath_EnvPrecedence(t *testing.T) {
	t.Setenv(EnvConfig, "/env/path/config.yaml")

	result, err := ResolveConfigPath("")
	require.NoError(t, err)

	assert.Equal(t, "/env/path/config.yaml", result.Value)
	assert.Equal(t, SourceEnv, result.Source)
	assert.NotEmpty(t, result.Shadowed[SourceDefault])
}

func TestResolveConfigPath_Default(t *testing.T) {
	t.Setenv(EnvConfig, "")

	result, err := ResolveConfigPath("")
	require.NoError(t, err)

	assert.Contains(t, result.Value, ".devkit")
	assert.True(t, strings.HasSuffix(result.Value, "config.yaml"))
	assert.Equal(t, SourceDefault, result.Source)
	assert.Empty(t, result.Shadowed)
}

func TestSource_String(t *testing.T) {
	assert.Equal(t, "flag", string(SourceFlag))
	assert.Equal(t, "env", string(SourceEnv))
	assert.Equal(t, "config", string(SourceConfig))
	assert.Equal(t, "default", string(SourceDefault))
}

func TestResolveBuild_FlagOverridesAll(t *testing.T) {
	t.Setenv(EnvServer, ServerInherit)
	t.Setenv(EnvLocalServerURL, "http://env:9200")

	result, err := ResolveBuild(ResolveBuildOptions{
		ServerFlag:         ServerProduction,
		LocalServerURLFlag: "http://flag:9200",
		Config:             &Config{Server: ServerLocal, LocalServerURL: "http://config:9200"},
	})
	require.NoError(t, err)

	assert.Equal(t, ServerProduction, result.Server.Value)
	assert.Equal(t, SourceFlag, result.Server.Source)
	assert.Equal(t, ServerInherit, result.Server.Shadowed[SourceEnv])
	assert.Equal(t, ServerLocal, result.Server.Shadowed[SourceConfig])
	assert.Equal(t, "http://flag:9200", result.LocalServerURL.Value)
}

func TestResolveBuild_EnvOverridesConfig(t *testing.T) {
	t.Setenv(EnvServer, ServerInherit)
	t.Setenv(EnvLocalServerURL, "")

	result, err := ResolveBuild(ResolveBuildOptions{
		Config: &Config{Server: ServerProduction, LocalServerURL: "http://config:9200"},
	})
	require.NoError(t, err)

	assert.Equal(t, ServerInherit, result.Server.Value)
	assert.Equal(t, SourceEnv, result.Server.Source)
	assert.Equal(t, "http://config:9200", result.LocalServerURL.Value)
	assert.Equal(t, SourceConfig, result.LocalServerURL.Source)
}

func TestResolveBuild_Defaults(t *testing.T) {
	t.Setenv(EnvServer, "")
	t.Setenv(EnvLocalServerURL, "")
	t.Setenv(EnvModulePaths, "")

	result, err := ResolveBuild(ResolveBuildOptions{})
	require.NoError(t, err)

	assert.Equal(t, DefaultServer, result.Server.Value)
	assert.Equal(t, SourceDefault, result.Server.Source)
	assert.Equal(t, DefaultLocalServerURL, result.LocalServerURL.Value)
	assert.Empty(t, result.ModulePaths)
}

func TestResolveBuild_ModulePathsFromEnv(t *testing.T) {
	env := strings.Join([]string{"/opt/a", "/opt/b"}, string(filepath.ListSeparator))
	t.Setenv(EnvModulePaths, env)

	result, err := ResolveBuild(ResolveBuildOptions{
		Config: &Config{ModulePaths: []string{"/from/config"}},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"/opt/a", "/opt/b"}, result.ModulePaths)
}
