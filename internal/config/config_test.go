package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("PANDA_PATHS", "acme=/opt/acme")
	t.Setenv("PANDA_HOME", "/opt/panda")
	t.Setenv("PANDA_LOG_LEVEL", "debug")
	t.Setenv("PANDA_CORE_SERVICES", "false")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "acme=/opt/acme", cfg.PandaPaths)
	require.Equal(t, "/opt/panda", cfg.FrameworkPath)
	require.Equal(t, slog.LevelDebug, cfg.Level())
	require.False(t, cfg.CoreServices)
	require.Equal(t, "node", cfg.Runtime)
}

func TestLoad_EnvFile(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("PANDA_RUNTIME=bun\n"), 0644))
	t.Setenv("PANDA_HOME", "/opt/panda")
	t.Cleanup(func() { os.Unsetenv("PANDA_RUNTIME") })

	cfg, err := Load(envFile, filepath.Join(dir, "missing.env"))
	require.NoError(t, err)
	require.Equal(t, "bun", cfg.Runtime)
}

func TestCachePath(t *testing.T) {
	cfg := Default()
	require.Equal(t, "/p/.panda/shrinkwrap.json", cfg.CachePath("/p"))

	cfg.CacheFile = "/tmp/cache.yaml"
	require.Equal(t, "/tmp/cache.yaml", cfg.CachePath("/p"))
}

func TestLevel_Unknown(t *testing.T) {
	cfg := &Config{LogLevel: "chatty"}
	require.Equal(t, slog.LevelInfo, cfg.Level())
}
