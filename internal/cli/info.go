package cli

import (
	"fmt"

	"github.com/jakoblorz/go-panda/internal/filesystem"
	"github.com/jakoblorz/go-panda/internal/manifest"
	"github.com/jakoblorz/go-panda/internal/models"
	"github.com/jakoblorz/go-panda/internal/render"
	"github.com/spf13/cobra"
)

// InfoCommand handles the info command
type InfoCommand struct {
	fs      filesystem.FileSystem
	globals *globals
}

// NewInfoCommand creates a new info command
func NewInfoCommand(fs filesystem.FileSystem, g *globals) *cobra.Command {
	cmd := &InfoCommand{
		fs:      fs,
		globals: g,
	}

	cobraCmd := &cobra.Command{
		Use:   "info",
		Short: "Show the resolved project manifest",
		Long: `Builds the project manifest and prints it.

By default the shrinkwrapped manifest is shown: every entity of the project
and its packages in one flat list, with paths still relative to the roots.
Use --rollup to see package imports nested below each package, or --live
to see the paths resolved for this machine.`,
		Example: `  # Show all entities
  panda info

  # Show services contributed by packages, resolved
  panda info --live --kind service --origin packages

  # Output JSON for scripting
  panda info --format json > manifest.json`,
		RunE: cmd.Run,
	}
	addInfoFlags(cobraCmd)

	return cobraCmd
}

func addInfoFlags(cmd *cobra.Command) {
	cmd.Flags().Bool("rollup", false, "Show the nested rollup manifest")
	cmd.Flags().Bool("live", false, "Show paths resolved for this machine")
	cmd.Flags().String("format", "text", "Output format: text, json or yaml")
	cmd.Flags().StringSlice("kind", nil, "Only show these kinds")
	cmd.Flags().String("origin", "all", "Filter by origin: all, local or packages")
	cmd.MarkFlagsMutuallyExclusive("rollup", "live")
}

// Run executes the info command
func (c *InfoCommand) Run(cmd *cobra.Command, args []string) error {
	rollup, _ := cmd.Flags().GetBool("rollup")
	live, _ := cmd.Flags().GetBool("live")
	formatFlag, _ := cmd.Flags().GetString("format")
	kindFlags, _ := cmd.Flags().GetStringSlice("kind")
	originFlag, _ := cmd.Flags().GetString("origin")

	format, err := render.ParseFormat(formatFlag)
	if err != nil {
		return err
	}
	origin, err := models.ParseOriginFilter(originFlag)
	if err != nil {
		return err
	}
	kinds, err := parseKinds(kindFlags)
	if err != nil {
		return err
	}

	ctx := c.globals.pathContext(c.fs)
	res, err := c.globals.builder(c.fs, ctx).Build()
	if err != nil {
		return fmt.Errorf("failed to build manifest: %w", err)
	}

	m := res.Shrinkwrap
	switch {
	case rollup:
		m = res.Rollup
	case live:
		if m, err = manifest.Resolve(res.Shrinkwrap, ctx); err != nil {
			return fmt.Errorf("failed to resolve manifest: %w", err)
		}
	}

	if len(kinds) > 0 || origin != models.OriginAll {
		m = m.Filter(kinds, origin)
	}

	return render.Manifest(cmd.OutOrStdout(), m, format)
}

func parseKinds(values []string) ([]models.Kind, error) {
	kinds := make([]models.Kind, 0, len(values))
	for _, v := range values {
		k, err := models.ParseKind(v)
		if err != nil {
			return nil, err
		}
		kinds = append(kinds, k)
	}
	return kinds, nil
}
