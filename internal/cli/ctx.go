package cli

import (
	"github.com/jakoblorz/go-panda/internal/filesystem"
	"github.com/jakoblorz/go-panda/internal/render"
	"github.com/spf13/cobra"
)

// ContextCommand handles the ctx command
type ContextCommand struct {
	fs      filesystem.FileSystem
	globals *globals
}

// NewContextCommand creates a new ctx command
func NewContextCommand(fs filesystem.FileSystem, g *globals) *cobra.Command {
	cmd := &ContextCommand{
		fs:      fs,
		globals: g,
	}

	cobraCmd := &cobra.Command{
		Use:   "ctx",
		Short: "Show the path context of the working directory",
		Long: `Prints where the working directory is (framework, project, package or
private label) and every root path and version bound for it.`,
		Example: `  panda ctx
  panda ctx --cwd node_modules/search-pkg --format json`,
		RunE: cmd.Run,
	}

	cobraCmd.Flags().String("format", "text", "Output format: text, json or yaml")

	return cobraCmd
}

// Run executes the ctx command
func (c *ContextCommand) Run(cmd *cobra.Command, args []string) error {
	formatFlag, _ := cmd.Flags().GetString("format")
	format, err := render.ParseFormat(formatFlag)
	if err != nil {
		return err
	}

	return render.Context(cmd.OutOrStdout(), c.globals.pathContext(c.fs), format)
}
