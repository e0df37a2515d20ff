package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/kintree/pkg/pipeline"
	"github.com/matzehuels/kintree/pkg/render"
)

// visualizeCommand creates the visualize command for rendering from a layout.
func (c *CLI) visualizeCommand() *cobra.Command {
	var (
		ro                    renderOpts
		nodeWidth, nodeHeight float64
	)

	cmd := &cobra.Command{
		Use:   "visualize [layout.json]",
		Short: "Render a computed layout",
		Long: `Render a computed layout.

The visualize command takes a layout.json file (produced by 'layout' or
'render -f json') and renders it to SVG, PNG, PDF or DOT. The layout holds
every coordinate, so this step only draws.

Results are cached locally for faster subsequent runs.

Use 'render' as a shortcut to go directly from family.json to visual output.`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeLayoutFile,
		RunE: func(cmd *cobra.Command, args []string) error {
			ropts, err := ro.pipeline()
			if err != nil {
				return err
			}
			opts := pipeline.Options{NodeWidth: nodeWidth, NodeHeight: nodeHeight, Logger: c.Logger}
			if err := opts.ValidateAndSetDefaults(); err != nil {
				return err
			}
			return c.runVisualize(cmd.Context(), args[0], opts, ropts, &ro)
		},
	}

	ro.register(cmd)
	cmd.Flags().Float64Var(&nodeWidth, "node-width", 0, "node box width the layout was computed with (default 180)")
	cmd.Flags().Float64Var(&nodeHeight, "node-height", 0, "node box height the layout was computed with (default 64)")

	return cmd
}

// runVisualize loads the layout and renders it.
func (c *CLI) runVisualize(ctx context.Context, input string, opts pipeline.Options, ropts pipeline.RenderOptions, ro *renderOpts) error {
	l, err := render.ReadLayoutFile(input)
	if err != nil {
		return fmt.Errorf("load layout %s: %w", input, err)
	}

	runner, err := c.newRunner(ro.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	spinner := newSpinnerWithContext(ctx, "Rendering layout...")
	spinner.Start()

	artifacts, cacheHit, err := runner.RenderWithCacheInfo(ctx, l, opts, ropts)
	if err != nil {
		spinner.StopWithError("Visualization failed")
		return fmt.Errorf("visualize: %w", err)
	}
	spinner.Stop()

	if ctx.Err() != nil {
		return ctx.Err()
	}

	return writeArtifacts(artifactWriteParams{
		artifacts: artifacts,
		formats:   ropts.Formats,
		base:      layoutBase(input),
		output:    ro.output,
		stats:     pipeline.Stats{NodeCount: len(l.Nodes), EdgeCount: len(l.Edges)},
		cacheHit:  cacheHit,
	})
}

// layoutBase strips ".layout.json" (or any extension) from a layout path.
func layoutBase(path string) string {
	if base, ok := strings.CutSuffix(path, ".layout.json"); ok {
		return base
	}
	return strings.TrimSuffix(path, filepath.Ext(path))
}
