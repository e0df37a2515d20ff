package nodelink

import (
	"bytes"
	"cmp"
	"context"
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/kintree/pkg/family"
	"github.com/matzehuels/kintree/pkg/layout"
	"github.com/matzehuels/kintree/pkg/render"
)

// pointsPerInch converts layout units (points) to Graphviz sizes (inches).
const pointsPerInch = 72.0

// Options configures node-link diagram rendering.
type Options struct {
	// NodeWidth and NodeHeight size the boxes, in layout units. Zero means
	// the layout defaults.
	NodeWidth  float64
	NodeHeight float64

	// Detailed adds years, subtitle and location to person labels.
	// When false, only the name is shown.
	Detailed bool
}

func (o *Options) setDefaults() {
	if o.NodeWidth == 0 {
		o.NodeWidth = layout.DefaultNodeWidth
	}
	if o.NodeHeight == 0 {
		o.NodeHeight = layout.DefaultNodeHeight
	}
}

// ToDOT converts a layout to Graphviz DOT format.
// The resulting DOT string can be rendered using [RenderSVG].
//
// Every node is pinned at its computed position (y grows downward in the
// layout and upward in Graphviz, so y is negated). Nodes of one generation
// share a rank=same subgraph, which keeps the rows intact when the DOT is fed
// to the dot engine instead. Union nodes are drawn as two-field records, one
// field per partner.
func ToDOT(l render.Layout, opts Options) string {
	opts.setDefaults()

	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  inputscale=72;\n")
	buf.WriteString("  splines=line;\n")
	fmt.Fprintf(&buf, "  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=12, fixedsize=true, width=%s, height=%s];\n",
		inches(opts.NodeWidth), inches(opts.NodeHeight))
	buf.WriteString("  edge [arrowhead=none, color=\"#6b7280\"];\n")
	buf.WriteString("\n")

	for _, gen := range generations(l.Nodes) {
		fmt.Fprintf(&buf, "  subgraph \"gen_%d\" {\n    rank=same;\n", gen)
		for _, n := range l.Nodes {
			if n.Generation != gen {
				continue
			}
			fmt.Fprintf(&buf, "    %q [%s];\n", n.ID, strings.Join(fmtAttrs(n, opts), ", "))
		}
		buf.WriteString("  }\n")
	}

	buf.WriteString("\n")
	for _, e := range l.Edges {
		fmt.Fprintf(&buf, "  %q -> %q;\n", e.From, e.To)
	}

	buf.WriteString("}\n")
	return buf.String()
}

func generations(nodes []render.Node) []int {
	var gens []int
	for _, n := range nodes {
		if !slices.Contains(gens, n.Generation) {
			gens = append(gens, n.Generation)
		}
	}
	slices.SortFunc(gens, cmp.Compare)
	return gens
}

func fmtAttrs(n render.Node, opts Options) []string {
	attrs := []string{fmt.Sprintf("pos=\"%s,%s!\"", num(n.X), num(-n.Y))}

	switch n.Kind {
	case render.KindUnion:
		attrs = append(attrs,
			"shape=record",
			fmt.Sprintf("label=\"%s|%s\"", recordField(n.Partners[0], opts), recordField(n.Partners[1], opts)),
			fmt.Sprintf("width=%s", inches(2*opts.NodeWidth)))
	default:
		attrs = append(attrs, fmt.Sprintf("label=%q", fmtLabel(n.Person, opts.Detailed)))
		if n.Person.Status == string(family.StatusDeceased) {
			attrs = append(attrs, "fontcolor=\"#4b5563\"")
		}
	}

	if n.Collapsed {
		attrs = append(attrs, "style=\"rounded,filled,dashed\"", "fillcolor=lightgrey")
	}
	if n.Focused {
		attrs = append(attrs, "penwidth=3", "color=\"#d97706\"")
	}
	return attrs
}

func fmtLabel(p *render.Person, detailed bool) string {
	if !detailed {
		return p.Name
	}
	parts := []string{p.Name, p.Years}
	for _, s := range []string{p.Subtitle, p.Location} {
		if s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, "\n")
}

var recordEscaper = strings.NewReplacer(
	`\`, `\\`, `"`, `\"`, `{`, `\{`, `}`, `\}`, `|`, `\|`, `<`, `\<`, `>`, `\>`,
)

func recordField(p render.Person, opts Options) string {
	label := recordEscaper.Replace(p.Name)
	if opts.Detailed {
		label += `\n` + recordEscaper.Replace(p.Years)
	}
	return label
}

func inches(points float64) string { return num(points / pointsPerInch) }

func num(f float64) string { return strconv.FormatFloat(f, 'f', -1, 64) }

// RenderSVG renders a DOT graph to SVG using Graphviz.
// The neato engine honors the pinned positions written by [ToDOT].
// Returns the SVG bytes ready for display or further conversion with [render.ToPDF] or [render.ToPNG].
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()
	gv.SetLayout(graphviz.NEATO)

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	newSvg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(newSvg))
}

// RenderPDF renders a DOT graph as PDF via SVG conversion.
//
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
func RenderPDF(ctx context.Context, dot string) ([]byte, error) {
	svg, err := RenderSVG(ctx, dot)
	if err != nil {
		return nil, err
	}
	return render.ToPDF(svg)
}

// RenderPNG renders a DOT graph as PNG via SVG conversion.
// A scale of 2.0 produces a 2x resolution image suitable for high-DPI displays.
func RenderPNG(ctx context.Context, dot string, scale float64) ([]byte, error) {
	svg, err := RenderSVG(ctx, dot)
	if err != nil {
		return nil, err
	}
	return render.ToPNG(svg, scale)
}
