package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/kintree/pkg/family"
	"github.com/matzehuels/kintree/pkg/pipeline"
)

// maxPrintedDiagnostics bounds the data problems listed after a command.
const maxPrintedDiagnostics = 5

// layoutCommand creates the layout command for computing the render contract.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		output  string
		noCache bool
		src     sourceFlags
		flags   optionFlags
	)

	cmd := &cobra.Command{
		Use:   "layout [family.json]",
		Short: "Compute the layout of a family tree",
		Long: `Compute the layout of a family tree.

The layout command reads a family document (a JSON file, "-" for stdin, or a
MongoDB collection via --mongo-uri) and computes coordinates for the initial
view: couples merged into one box, the first two generation bands expanded.
The output is a layout.json file (same format as 'render -f json') that can
be rendered to SVG/PNG/PDF using the 'visualize' command.

Results are cached locally for faster subsequent runs.`,
		Args:              cobra.MaximumNArgs(1),
		ValidArgsFunction: completeFamilyFile,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := flags.resolve(c.Logger)
			if err != nil {
				return err
			}
			return c.runLayout(cmd.Context(), inputArg(args), &src, opts, output, noCache)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <input>.layout.json)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	src.register(cmd)
	flags.register(cmd)

	return cmd
}

// runLayout loads the family, computes the layout, and writes output.
func (c *CLI) runLayout(ctx context.Context, input string, src *sourceFlags, opts pipeline.Options, output string, noCache bool) error {
	doc, name, err := src.load(ctx, input)
	if err != nil {
		return err
	}

	runner, err := c.newRunner(noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	var diags []family.Diagnostic
	opts.OnDiagnostic = func(d family.Diagnostic) { diags = append(diags, d) }

	spinner := newSpinnerWithContext(ctx, "Computing layout...")
	spinner.Start()

	result, err := runner.Execute(ctx, doc, opts, pipeline.RenderOptions{Formats: []string{pipeline.FormatJSON}})
	if err != nil {
		spinner.StopWithError("Layout failed")
		return fmt.Errorf("compute layout: %w", err)
	}
	spinner.Stop()

	if ctx.Err() != nil {
		return ctx.Err()
	}

	outputPath := output
	if outputPath == "" {
		outputPath = name + ".layout.json"
	}
	if err := os.WriteFile(outputPath, result.Artifacts[pipeline.FormatJSON], 0o644); err != nil {
		return fmt.Errorf("write output %s: %w", outputPath, err)
	}

	printSuccess("Layout complete")
	printFile(outputPath)
	printStats(result.Stats.NodeCount, result.Stats.EdgeCount, result.CacheInfo.LayoutHit)
	printDiagnostics(diags, maxPrintedDiagnostics)
	printNewline()
	printNextStep("Render", appName+" visualize "+outputPath)

	return nil
}
