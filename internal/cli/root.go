package cli

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/jakoblorz/go-panda/internal/config"
	"github.com/jakoblorz/go-panda/internal/filesystem"
	"github.com/jakoblorz/go-panda/internal/manifest"
	"github.com/jakoblorz/go-panda/internal/pathctx"
	"github.com/spf13/cobra"
)

// globals holds the persistent flags and the configuration they override.
type globals struct {
	cwd      string
	logLevel string
	noCore   bool
	envFiles []string

	cfg    *config.Config
	logger *slog.Logger
}

// setup applies persistent flags on top of the configuration.
func (g *globals) setup(cmd *cobra.Command) error {
	if len(g.envFiles) > 0 {
		cfg, err := config.Load(g.envFiles...)
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		g.cfg = cfg
	}

	if g.logLevel != "" {
		g.cfg.LogLevel = g.logLevel
	}
	if g.noCore {
		g.cfg.CoreServices = false
	}

	g.logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: g.cfg.Level()}))
	return nil
}

// pathContext resolves the path context for --cwd, or the working
// directory when it is not set.
func (g *globals) pathContext(fs filesystem.FileSystem) *pathctx.Context {
	cwd := g.cwd
	if cwd != "" && !filepath.IsAbs(cwd) {
		if wd, err := fs.Getwd(); err == nil {
			cwd = filepath.Join(wd, cwd)
		}
	}

	return pathctx.Resolve(fs, pathctx.Options{
		Cwd:              cwd,
		EnvPaths:         g.cfg.PandaPaths,
		FrameworkPath:    g.cfg.FrameworkPath,
		FrameworkVersion: g.cfg.FrameworkVersion,
		Logger:           g.logger,
	})
}

func (g *globals) builder(fs filesystem.FileSystem, ctx *pathctx.Context) *manifest.Builder {
	return manifest.NewBuilder(fs, ctx,
		manifest.WithLogger(g.logger),
		manifest.WithCoreServices(g.cfg.CoreServices),
	)
}

// NewRootCommand creates the root command
func NewRootCommand(fs filesystem.FileSystem, cfg *config.Config) *cobra.Command {
	g := &globals{cfg: cfg, logger: slog.Default()}

	rootCmd := &cobra.Command{
		Use:   "panda",
		Short: "Resolve and launch panda projects",
		Long: `A CLI tool for resolving panda project manifests.

panda reads project.json, merges in the manifests of installed packages
and resolves every entity path against the current machine.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return g.setup(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			// Default to `panda info` when no subcommand is provided.
			return (&InfoCommand{fs: fs, globals: g}).Run(cmd, args)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&g.cwd, "cwd", "", "Resolve as if started in this directory")
	flags.StringVar(&g.logLevel, "log-level", "", "Log level: debug, info, warn or error (default from PANDA_LOG_LEVEL)")
	flags.BoolVar(&g.noCore, "no-core", false, "Do not merge the framework's core services")
	flags.StringSliceVar(&g.envFiles, "env-file", nil, "Load environment variables from these files")
	addInfoFlags(rootCmd)

	rootCmd.AddCommand(NewInfoCommand(fs, g))
	rootCmd.AddCommand(NewContextCommand(fs, g))
	rootCmd.AddCommand(NewBuildCommand(fs, g))
	rootCmd.AddCommand(NewRunCommand(fs, g, nil))

	return rootCmd
}

// Execute runs the root command
func Execute() error {
	cfg, err := config.Load(".env")
	if err != nil {
		return err
	}

	rootCmd := NewRootCommand(filesystem.NewOSFileSystem(), cfg)

	if err := rootCmd.Execute(); err != nil {
		return fmt.Errorf("command failed: %w", err)
	}

	return nil
}
