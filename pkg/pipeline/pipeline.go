// Package pipeline ties the layout engine together for Kintree's shells.
//
// This package implements the load → layout → contract flow that the CLI,
// the terminal explorer and the HTTP shell share. By centralizing this logic,
// every entry point applies the same defaults, reports the same diagnostics
// and produces the same coordinates.
//
// # Architecture
//
// A [Session] owns one loaded dataset:
//
//  1. Load: index the people, synthesize unions, assign generations, build
//     the hierarchy and the initial view state
//  2. Layout: build the visible forest from the view state and compute
//     coordinates
//  3. Interact: toggle, focus, search, expand or collapse, each followed by
//     a full re-layout
//
// A [Runner] adds caching on top: it turns a session's current view into a
// render contract and renders artifacts (JSON, DOT, SVG, PNG, PDF), reusing
// earlier results whose inputs are unchanged.
//
// # Usage
//
//	doc, err := family.ReadFile("family.json")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	sess, err := pipeline.Load(ctx, doc, pipeline.Options{Anchor: "ada"})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	_, _ = sess.Toggle(ctx, "ada")
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	result, err := runner.Execute(ctx, sess, []string{pipeline.FormatSVG})
//	svg := result.Artifacts[pipeline.FormatSVG]
package pipeline

import (
	"fmt"
	"io"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"

	"github.com/matzehuels/kintree/pkg/cache"
	"github.com/matzehuels/kintree/pkg/errors"
	"github.com/matzehuels/kintree/pkg/family"
	"github.com/matzehuels/kintree/pkg/layout"
	"github.com/matzehuels/kintree/pkg/render"
	"github.com/matzehuels/kintree/pkg/view"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI, TUI, and HTTP
// =============================================================================

const (
	// DefaultViewportWidth is the default canvas width in pixels.
	DefaultViewportWidth = 1280.0

	// DefaultViewportHeight is the default canvas height in pixels.
	DefaultViewportHeight = 800.0

	// DefaultPNGScale is the resolution multiplier for PNG output.
	DefaultPNGScale = 2.0
)

// Format constants for output formats.
const (
	FormatJSON = "json"
	FormatDOT  = "dot"
	FormatSVG  = "svg"
	FormatPNG  = "png"
	FormatPDF  = "pdf"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatJSON: true,
	FormatDOT:  true,
	FormatSVG:  true,
	FormatPNG:  true,
	FormatPDF:  true,
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for a layout session.
// This struct supports TOML files and JSON request bodies.
type Options struct {
	// Anchor is the person placed at generation 0. Empty means the first
	// person in the document.
	Anchor string `toml:"anchor" json:"anchor,omitempty"`

	// Geometry, in layout units. Zero means the layout default.
	NodeWidth  float64 `toml:"node_width" json:"node_width,omitempty"`
	NodeHeight float64 `toml:"node_height" json:"node_height,omitempty"`
	SepX       float64 `toml:"sep_x" json:"sep_x,omitempty"`
	SepY       float64 `toml:"sep_y" json:"sep_y,omitempty"`
	MarginLeft float64 `toml:"margin_left" json:"margin_left,omitempty"`
	MarginTop  float64 `toml:"margin_top" json:"margin_top,omitempty"`
	ForestGap  float64 `toml:"forest_gap" json:"forest_gap,omitempty"`

	// ExpandBands is the number of generation bands that start expanded.
	ExpandBands int `toml:"expand_bands" json:"expand_bands,omitempty"`

	// Canvas size used to center the viewport on focus.
	ViewportWidth  float64 `toml:"viewport_width" json:"viewport_width,omitempty"`
	ViewportHeight float64 `toml:"viewport_height" json:"viewport_height,omitempty"`

	// Runtime options (not serialized)
	Logger       *log.Logger             `toml:"-" json:"-"`
	OnDiagnostic func(family.Diagnostic) `toml:"-" json:"-"`
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// DatasetHash is the content hash of the loaded document.
	DatasetHash string

	// Layout is the render contract for the session's current view.
	Layout render.Layout

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	NodeCount  int
	EdgeCount  int
	LayoutTime time.Duration
	RenderTime time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	LayoutHit bool // Whether the layout came from cache
	RenderHit bool // Whether all artifacts came from cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeUnsupported, "invalid format: %q (must be one of: json, dot, svg, png, pdf)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// =============================================================================
// Options Methods
// =============================================================================

// SetDefaults fills zero fields with their defaults. It is idempotent.
func (o *Options) SetDefaults() {
	geo := o.Layout()
	geo.SetDefaults()
	o.NodeWidth, o.NodeHeight = geo.NodeWidth, geo.NodeHeight
	o.SepX, o.SepY = geo.SepX, geo.SepY
	o.MarginLeft, o.MarginTop = geo.MarginLeft, geo.MarginTop
	o.ForestGap = geo.ForestGap

	if o.ExpandBands == 0 {
		o.ExpandBands = view.DefaultExpandBands
	}
	if o.ViewportWidth == 0 {
		o.ViewportWidth = DefaultViewportWidth
	}
	if o.ViewportHeight == 0 {
		o.ViewportHeight = DefaultViewportHeight
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// Validate rejects option values no layout can be computed with.
// Zero values are valid; they select defaults.
func (o *Options) Validate() error {
	if o.Anchor != "" {
		if err := errors.ValidatePersonID(o.Anchor); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidConfig, err, "anchor")
		}
	}
	for _, f := range []struct {
		name string
		v    float64
	}{
		{"node_width", o.NodeWidth},
		{"node_height", o.NodeHeight},
		{"sep_x", o.SepX},
		{"sep_y", o.SepY},
		{"margin_left", o.MarginLeft},
		{"margin_top", o.MarginTop},
		{"forest_gap", o.ForestGap},
		{"viewport_width", o.ViewportWidth},
		{"viewport_height", o.ViewportHeight},
	} {
		if f.v < 0 {
			return errors.New(errors.ErrCodeInvalidConfig, "%s must not be negative, got %v", f.name, f.v)
		}
	}
	if o.ExpandBands < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "expand_bands must not be negative, got %d", o.ExpandBands)
	}
	return nil
}

// ValidateAndSetDefaults validates o and then fills in defaults.
func (o *Options) ValidateAndSetDefaults() error {
	if err := o.Validate(); err != nil {
		return err
	}
	o.SetDefaults()
	return nil
}

// Layout returns the geometry part of o.
func (o *Options) Layout() layout.Options {
	return layout.Options{
		NodeWidth:  o.NodeWidth,
		NodeHeight: o.NodeHeight,
		SepX:       o.SepX,
		SepY:       o.SepY,
		MarginLeft: o.MarginLeft,
		MarginTop:  o.MarginTop,
		ForestGap:  o.ForestGap,
	}
}

// LayoutKeyOpts returns cache key options for a layout. A nil snapshot
// stands for the initial view state, which the options alone determine.
func (o *Options) LayoutKeyOpts(anchor string, snap *view.Snapshot) cache.LayoutKeyOpts {
	k := cache.LayoutKeyOpts{
		Anchor:      anchor,
		Geometry:    []float64{o.NodeWidth, o.NodeHeight, o.SepX, o.SepY, o.MarginLeft, o.MarginTop, o.ForestGap},
		ExpandBands: o.ExpandBands,
	}
	if snap != nil {
		k.Expanded = snap.Expanded
		k.Focus = snap.Focus
		k.Viewport = []float64{snap.Viewport.X, snap.Viewport.Y, snap.Viewport.K}
	} else {
		k.Viewport = []float64{o.ViewportWidth, o.ViewportHeight}
	}
	return k
}

// RenderOptions selects the artifacts produced from a layout.
type RenderOptions struct {
	Formats  []string `json:"formats,omitempty"`
	Detailed bool     `json:"detailed,omitempty"` // Years and places in node labels
	Scale    float64  `json:"scale,omitempty"`    // PNG resolution multiplier
}

// SetDefaults fills zero fields with their defaults.
func (o *RenderOptions) SetDefaults() {
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatJSON}
	}
	if o.Scale == 0 {
		o.Scale = DefaultPNGScale
	}
}

// Validate checks the formats and the scale.
func (o *RenderOptions) Validate() error {
	if o.Scale < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "scale must not be negative, got %v", o.Scale)
	}
	return ValidateFormats(o.Formats)
}

// ArtifactKeyOpts returns cache key options for artifact rendering.
func (o *RenderOptions) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	k := cache.ArtifactKeyOpts{Format: format, Detailed: o.Detailed}
	if format == FormatPNG {
		k.Scale = o.Scale
	}
	return k
}

// Merge copies the non-zero fields of other into o. CLI flags use it to
// override values from an options file.
func (o *Options) Merge(other Options) {
	if other.Anchor != "" {
		o.Anchor = other.Anchor
	}
	for _, f := range []struct{ dst, src *float64 }{
		{&o.NodeWidth, &other.NodeWidth},
		{&o.NodeHeight, &other.NodeHeight},
		{&o.SepX, &other.SepX},
		{&o.SepY, &other.SepY},
		{&o.MarginLeft, &other.MarginLeft},
		{&o.MarginTop, &other.MarginTop},
		{&o.ForestGap, &other.ForestGap},
		{&o.ViewportWidth, &other.ViewportWidth},
		{&o.ViewportHeight, &other.ViewportHeight},
	} {
		if *f.src != 0 {
			*f.dst = *f.src
		}
	}
	if other.ExpandBands != 0 {
		o.ExpandBands = other.ExpandBands
	}
	if other.Logger != nil {
		o.Logger = other.Logger
	}
	if other.OnDiagnostic != nil {
		o.OnDiagnostic = other.OnDiagnostic
	}
}

// LoadOptionsFile reads options from a TOML file. Unknown keys are an
// error, so a typo never silently falls back to a default.
func LoadOptionsFile(path string) (Options, error) {
	var o Options
	md, err := toml.DecodeFile(path, &o)
	if err != nil {
		return Options{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "read options %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return Options{}, errors.New(errors.ErrCodeInvalidConfig, "%s: unknown option %q", path, undecoded[0].String())
	}
	if err := o.Validate(); err != nil {
		return Options{}, fmt.Errorf("%s: %w", path, err)
	}
	return o, nil
}
