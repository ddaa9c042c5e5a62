package cli

import (
	"context"
	"fmt"
	"io"
	"sort"

	"github.com/jakoblorz/go-panda/internal/filesystem"
	"github.com/jakoblorz/go-panda/internal/manifest"
	"github.com/jakoblorz/go-panda/internal/models"
	"github.com/jakoblorz/go-panda/internal/pathctx"
	"github.com/jakoblorz/go-panda/internal/watch"
	"github.com/spf13/cobra"
)

// BuildCommand handles the build command
type BuildCommand struct {
	fs      filesystem.FileSystem
	globals *globals
}

// NewBuildCommand creates a new build command
func NewBuildCommand(fs filesystem.FileSystem, g *globals) *cobra.Command {
	cmd := &BuildCommand{
		fs:      fs,
		globals: g,
	}

	cobraCmd := &cobra.Command{
		Use:   "build",
		Short: "Write the shrinkwrap cache",
		Long: `Builds the project manifest and writes the rollup and shrinkwrap
manifests to the cache file, so later runs can skip probing the filesystem.

With --watch the cache is rebuilt whenever a project, package or component
descriptor changes.`,
		Example: `  panda build
  panda build --out .panda/shrinkwrap.yaml
  panda build --watch`,
		RunE: cmd.Run,
	}

	cobraCmd.Flags().String("out", "", "Cache file (default from PANDA_CACHE_FILE)")
	cobraCmd.Flags().Bool("watch", false, "Rebuild when descriptors change")

	return cobraCmd
}

// Run executes the build command
func (c *BuildCommand) Run(cmd *cobra.Command, args []string) error {
	out, _ := cmd.Flags().GetString("out")
	watching, _ := cmd.Flags().GetBool("watch")

	ctx := c.globals.pathContext(c.fs)
	if err := ctx.Require(pathctx.LocationProject); err != nil {
		return err
	}

	path := c.globals.cfg.CachePath(ctx.Get(pathctx.ProjectPath))
	if out != "" {
		path = out
	}
	cache := manifest.NewCache(c.fs, path)

	res, err := c.build(cmd.OutOrStdout(), ctx, cache)
	if err != nil {
		return err
	}
	if !watching {
		return nil
	}

	roots, err := watchRoots(res, ctx)
	if err != nil {
		return err
	}

	w, err := watch.New(watch.Config{
		Roots:  roots,
		Logger: c.globals.logger,
		OnChange: func(_ context.Context, paths []string) error {
			c.globals.logger.Info("descriptors changed, rebuilding", "files", paths)
			if _, err := c.build(cmd.OutOrStdout(), c.globals.pathContext(c.fs), cache); err != nil {
				// keep watching
				c.globals.logger.Error("rebuild failed", "error", err)
			}
			return nil
		},
	})
	if err != nil {
		return fmt.Errorf("failed to start watcher: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Watching %d director(ies) for changes\n", len(roots))

	runCtx := cmd.Context()
	if runCtx == nil {
		runCtx = context.Background()
	}
	return w.Run(runCtx)
}

func (c *BuildCommand) build(out io.Writer, ctx *pathctx.Context, cache *manifest.Cache) (*manifest.Result, error) {
	res, err := c.globals.builder(c.fs, ctx).Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build manifest: %w", err)
	}

	file, err := cache.Save(res)
	if err != nil {
		return nil, err
	}

	fmt.Fprintf(out, "✓ Wrote %d record(s) to %s (build %s)\n", res.Shrinkwrap.Len(), cache.Path(), file.BuildID)
	return res, nil
}

// watchRoots returns the project root and the concrete root of every
// package in the build.
func watchRoots(res *manifest.Result, ctx *pathctx.Context) ([]string, error) {
	live, err := manifest.Resolve(res.Shrinkwrap, ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve package roots: %w", err)
	}

	seen := map[string]bool{ctx.Get(pathctx.ProjectPath): true}
	for _, rec := range live.Records(models.KindPackage) {
		seen[rec.ResolvedPath] = true
	}

	roots := make([]string, 0, len(seen))
	for root := range seen {
		roots = append(roots, root)
	}
	sort.Strings(roots)
	return roots, nil
}
