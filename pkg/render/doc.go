// Package render turns a computed family layout into output formats.
//
// # Overview
//
// This package owns the render contract: the [Layout] document that every
// shell consumes. It provides:
//
//   - The JSON contract ([Layout], [FromResult], [MarshalLayout])
//   - Generic format conversion (SVG to PDF/PNG)
//   - Node-link diagrams (in [nodelink] subpackage)
//
// # Contract
//
// A [Layout] carries one entry per surviving node with its final
// coordinates, the parent-to-child edges, the bounding box, the viewport
// transform and the focused id. Person nodes embed the person record;
// union nodes embed both partners so a renderer can draw the couple side
// by side without another lookup.
//
//	result := layout.Compute(forest, gens, opts)
//	l := render.FromResult(result, controller)
//	data, err := render.MarshalLayout(l)
//
// # Format Conversion
//
// The [ToPDF] and [ToPNG] functions convert any SVG to other formats using
// the external rsvg-convert tool (from librsvg).
//
//	svg, err := nodelink.RenderSVG(nodelink.ToDOT(l, nodelink.Options{}))
//	pdf, err := render.ToPDF(svg)
//	png, err := render.ToPNG(svg, 2.0)  // 2x scale
//
// [nodelink]: github.com/matzehuels/kintree/pkg/render/nodelink
package render
