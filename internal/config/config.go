package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/joeshaw/envdecode"
	"github.com/joho/godotenv"
)

// Config holds process-level settings read from the environment.
type Config struct {
	// PandaPaths is the semicolon-delimited list of name=path library roots
	PandaPaths string `env:"PANDA_PATHS"`

	// FrameworkPath is the framework install path; defaults to the
	// directory holding the executable.
	FrameworkPath string `env:"PANDA_HOME"`

	// FrameworkVersion is bound to PANDA_VERSION
	FrameworkVersion string `env:"PANDA_VERSION,default=0.0.0"`

	LogLevel string `env:"PANDA_LOG_LEVEL,default=info"`

	// CacheFile is the shrinkwrap cache location relative to the project root
	CacheFile string `env:"PANDA_CACHE_FILE,default=.panda/shrinkwrap.json"`

	// Runtime is the executable used by the launcher
	Runtime string `env:"PANDA_RUNTIME,default=node"`

	// CoreServices merges the framework's core services into every build
	CoreServices bool `env:"PANDA_CORE_SERVICES,default=true"`
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return &Config{
		FrameworkVersion: "0.0.0",
		LogLevel:         "info",
		CacheFile:        ".panda/shrinkwrap.json",
		Runtime:          "node",
		CoreServices:     true,
	}
}

// Load reads optional .env files, then decodes the environment.
// Missing env files are skipped.
func Load(envFiles ...string) (*Config, error) {
	var present []string
	for _, f := range envFiles {
		if _, err := os.Stat(f); err == nil {
			present = append(present, f)
		}
	}
	if len(present) > 0 {
		if err := godotenv.Load(present...); err != nil {
			return nil, fmt.Errorf("failed to load env files: %w", err)
		}
	}

	cfg := Default()
	if err := envdecode.Decode(cfg); err != nil && !errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
		return nil, fmt.Errorf("failed to decode environment: %w", err)
	}

	if cfg.FrameworkPath == "" {
		cfg.FrameworkPath = executableDir()
	}

	return cfg, nil
}

// Level parses LogLevel into a slog level. Unknown values mean info.
func (c *Config) Level() slog.Level {
	switch strings.ToLower(strings.TrimSpace(c.LogLevel)) {
	case "debug", "silly", "verbose":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error", "fatal":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// CachePath returns the absolute cache location for a project root.
func (c *Config) CachePath(projectRoot string) string {
	if filepath.IsAbs(c.CacheFile) {
		return c.CacheFile
	}
	return filepath.Join(projectRoot, c.CacheFile)
}

func executableDir() string {
	exe, err := os.Executable()
	if err != nil {
		return ""
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}
	return filepath.Dir(exe)
}
