// Package nodelink renders family layouts as node-link diagrams.
//
// # Overview
//
// This package produces the static diagram for a computed layout using
// Graphviz. Coordinates come from the layout engine, not from Graphviz:
// every node is pinned, and Graphviz only draws boxes and connectors.
//
// # Usage
//
// Convert a layout to DOT format, then render to SVG:
//
//	dot := nodelink.ToDOT(l, nodelink.Options{Detailed: true})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// For PDF or PNG output, use the render functions:
//
//	pdf, err := nodelink.RenderPDF(ctx, dot)
//	png, err := nodelink.RenderPNG(ctx, dot, 2.0)  // 2x scale
//
// # DOT Format
//
// Person nodes are rounded boxes. Union nodes are two-field records, one
// field per partner, twice as wide as a person box. Collapsed nodes are
// dashed and grey; the focused node has a thick amber outline.
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering. PDF and PNG conversion requires librsvg (rsvg-convert).
package nodelink
