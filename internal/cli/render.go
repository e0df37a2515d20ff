package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/kintree/pkg/family"
	"github.com/matzehuels/kintree/pkg/pipeline"
)

// renderOpts holds the command-line flags shared by render and visualize.
type renderOpts struct {
	output   string  // output file path (or base path for multiple outputs)
	formats  string  // comma-separated output formats
	detailed bool    // show years and places in node labels
	scale    float64 // PNG resolution multiplier
	noCache  bool
}

func (o *renderOpts) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&o.output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVarP(&o.formats, "format", "f", "", "output format(s): svg (default), json, dot, png, pdf (comma-separated)")
	cmd.Flags().BoolVar(&o.detailed, "detailed", false, "show life years and places in node labels")
	cmd.Flags().Float64Var(&o.scale, "scale", pipeline.DefaultPNGScale, "PNG resolution multiplier")
	cmd.Flags().BoolVar(&o.noCache, "no-cache", false, "disable caching")
}

// pipeline converts the flags into render options.
func (o *renderOpts) pipeline() (pipeline.RenderOptions, error) {
	ropts := pipeline.RenderOptions{
		Formats:  parseFormats(o.formats),
		Detailed: o.detailed,
		Scale:    o.scale,
	}
	if err := ropts.Validate(); err != nil {
		return pipeline.RenderOptions{}, err
	}
	return ropts, nil
}

// renderCommand creates the render command that goes from a family document
// straight to output files.
func (c *CLI) renderCommand() *cobra.Command {
	var (
		ro    renderOpts
		src   sourceFlags
		flags optionFlags
	)

	cmd := &cobra.Command{
		Use:   "render [family.json]",
		Short: "Render a family tree to SVG, PNG, PDF, DOT or JSON",
		Long: `Render a family tree to SVG, PNG, PDF, DOT or JSON.

Shortcut for 'layout' followed by 'visualize'. Nodes are placed at their
computed coordinates; Graphviz only draws them. PNG and PDF conversion
needs rsvg-convert (librsvg) on the PATH.`,
		Args:              cobra.MaximumNArgs(1),
		ValidArgsFunction: completeFamilyFile,
		RunE: func(cmd *cobra.Command, args []string) error {
			ropts, err := ro.pipeline()
			if err != nil {
				return err
			}
			opts, err := flags.resolve(c.Logger)
			if err != nil {
				return err
			}
			return c.runRender(cmd.Context(), inputArg(args), &src, opts, ropts, &ro)
		},
	}

	ro.register(cmd)
	src.register(cmd)
	flags.register(cmd)

	return cmd
}

// runRender loads the family, lays it out and writes every requested format.
func (c *CLI) runRender(ctx context.Context, input string, src *sourceFlags, opts pipeline.Options, ropts pipeline.RenderOptions, ro *renderOpts) error {
	doc, name, err := src.load(ctx, input)
	if err != nil {
		return err
	}

	runner, err := c.newRunner(ro.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	var diags []family.Diagnostic
	opts.OnDiagnostic = func(d family.Diagnostic) { diags = append(diags, d) }

	spinner := newSpinnerWithContext(ctx, "Rendering family tree...")
	spinner.Start()

	result, err := runner.Execute(ctx, doc, opts, ropts)
	if err != nil {
		spinner.StopWithError("Render failed")
		return fmt.Errorf("render: %w", err)
	}
	spinner.Stop()

	if ctx.Err() != nil {
		return ctx.Err()
	}

	err = writeArtifacts(artifactWriteParams{
		artifacts: result.Artifacts,
		formats:   ropts.Formats,
		base:      name,
		output:    ro.output,
		stats:     result.Stats,
		cacheHit:  result.CacheInfo.LayoutHit && result.CacheInfo.RenderHit,
	})
	if err != nil {
		return err
	}
	printDiagnostics(diags, maxPrintedDiagnostics)
	return nil
}

// =============================================================================
// Artifact Output
// =============================================================================

// artifactWriteParams describes rendered artifacts to write to disk.
type artifactWriteParams struct {
	artifacts map[string][]byte
	formats   []string
	base      string // input name without extension
	output    string // -o flag; "-" writes a single format to stdout
	stats     pipeline.Stats
	cacheHit  bool
}

// writeArtifacts writes each artifact to its own file and prints a summary.
// A single format goes to output (default <base>.<format>); several formats
// go to <output base>.<format>.
func writeArtifacts(p artifactWriteParams) error {
	if p.output == stdoutArg {
		if len(p.formats) != 1 {
			return fmt.Errorf("stdout output needs exactly one format, got %d", len(p.formats))
		}
		_, err := os.Stdout.Write(p.artifacts[p.formats[0]])
		return err
	}

	var paths []string
	for _, format := range p.formats {
		path := outputPath(p.output, p.base, format, len(p.formats))
		if err := writeFile(path, p.artifacts[format]); err != nil {
			return err
		}
		paths = append(paths, path)
	}

	printSuccess("Rendered %d file(s)", len(paths))
	for _, path := range paths {
		printFile(path)
	}
	printStats(p.stats.NodeCount, p.stats.EdgeCount, p.cacheHit)
	return nil
}

// outputPath derives the file name for one format.
func outputPath(output, base, format string, count int) string {
	if output != "" && count == 1 {
		return output
	}
	return basePath(output, base) + "." + format
}

// basePath strips a known format extension from output, or falls back to
// base when output is empty.
func basePath(output, base string) string {
	if output == "" {
		return base
	}
	ext := filepath.Ext(output)
	if pipeline.ValidFormats[strings.TrimPrefix(ext, ".")] {
		return strings.TrimSuffix(output, ext)
	}
	return output
}

func writeFile(path string, data []byte) error {
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
