package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/jakoblorz/go-panda/internal/filesystem"
	"github.com/jakoblorz/go-panda/internal/launch"
	"github.com/jakoblorz/go-panda/internal/manifest"
	"github.com/jakoblorz/go-panda/internal/models"
	"github.com/jakoblorz/go-panda/internal/pathctx"
	"github.com/spf13/cobra"
)

// RunCommand handles the run command
type RunCommand struct {
	fs      filesystem.FileSystem
	globals *globals
	runner  launch.Runner
}

// NewRunCommand creates a new run command. A nil runner starts real
// processes.
func NewRunCommand(fs filesystem.FileSystem, g *globals, runner launch.Runner) *cobra.Command {
	cmd := &RunCommand{
		fs:      fs,
		globals: g,
		runner:  runner,
	}

	cobraCmd := &cobra.Command{
		Use:   "run [app...]",
		Short: "Start the project's services and apps",
		Long: `Resolves the project manifest for this machine and starts every service
followed by the selected apps. Without arguments, or with "*", every app
is started.

The shrinkwrap cache written by 'panda build' is used when present. Each
process receives PANDA_ENTITY, PANDA_ENTITY_KIND, PANDA_ENTITY_PATH,
PANDA_PACKAGE and, when the entity declares one, PORT.`,
		Example: `  # Start everything
  panda run

  # Start services and the web app only
  panda run web

  # Show what would be started
  panda run --dry-run`,
		RunE: cmd.Run,
	}

	cobraCmd.Flags().Bool("dry-run", false, "Print the launch plan without starting anything")
	cobraCmd.Flags().String("runtime", "", "Executable used to start entities (default from PANDA_RUNTIME)")
	cobraCmd.Flags().Bool("no-cache", false, "Ignore the shrinkwrap cache and rebuild")

	return cobraCmd
}

// Run executes the run command
func (c *RunCommand) Run(cmd *cobra.Command, args []string) error {
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	runtime, _ := cmd.Flags().GetString("runtime")
	noCache, _ := cmd.Flags().GetBool("no-cache")
	if runtime == "" {
		runtime = c.globals.cfg.Runtime
	}

	ctx := c.globals.pathContext(c.fs)
	if err := ctx.Require(pathctx.LocationProject); err != nil {
		return err
	}
	root := ctx.Get(pathctx.ProjectPath)

	shrinkwrapped, err := c.shrinkwrap(ctx, !noCache)
	if err != nil {
		return err
	}

	live, err := manifest.Resolve(shrinkwrapped, ctx)
	if err != nil {
		return fmt.Errorf("failed to resolve manifest: %w", err)
	}

	plan, err := launch.NewPlan(live, args)
	if err != nil {
		return err
	}

	if dryRun {
		return printPlan(cmd.OutOrStdout(), plan, runtime)
	}

	runner := c.runner
	if runner == nil {
		runner = launch.NewProcessRunner(runtime, root)
	}

	runCtx := cmd.Context()
	if runCtx == nil {
		runCtx = context.Background()
	}
	return launch.New(runner, launch.WithLogger(c.globals.logger)).Run(runCtx, plan)
}

// shrinkwrap returns the cached shrinkwrap, or builds one when there is no
// usable cache.
func (c *RunCommand) shrinkwrap(ctx *pathctx.Context, useCache bool) (*models.Manifest, error) {
	cache := manifest.NewCache(c.fs, c.globals.cfg.CachePath(ctx.Get(pathctx.ProjectPath)))

	if useCache && cache.Exists() {
		file, err := cache.Load()
		switch {
		case err != nil:
			c.globals.logger.Warn("ignoring unreadable shrinkwrap cache", "path", cache.Path(), "error", err)
		case file.CoreServices != c.globals.cfg.CoreServices:
			c.globals.logger.Info("rebuilding, cache was built with other core services setting",
				"path", cache.Path(), "build", file.BuildID, "coreServices", file.CoreServices)
		default:
			c.globals.logger.Debug("using shrinkwrap cache", "path", cache.Path(), "build", file.BuildID)
			return file.Shrinkwrap, nil
		}
	}

	res, err := c.globals.builder(c.fs, ctx).Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build manifest: %w", err)
	}
	return res.Shrinkwrap, nil
}

func printPlan(w io.Writer, plan *launch.Plan, runtime string) error {
	fmt.Fprintf(w, "Would start %d process(es):\n", len(plan.Entries))
	for _, e := range plan.Entries {
		line := fmt.Sprintf("- %s %s: %s %s", e.Kind, e.Name, runtime, e.Path)
		if e.Port != 0 {
			line += fmt.Sprintf(" (PORT=%d)", e.Port)
		}
		if e.Package != "" {
			line += fmt.Sprintf(" [%s]", e.Package)
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}
