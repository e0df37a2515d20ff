package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/kintree/pkg/cache"
	"github.com/matzehuels/kintree/pkg/family"
	"github.com/matzehuels/kintree/pkg/observability"
	"github.com/matzehuels/kintree/pkg/render"
	"github.com/matzehuels/kintree/pkg/render/nodelink"
)

// Runner encapsulates pipeline execution with caching.
// The CLI, the explorer and the HTTP shell use it to avoid duplicating
// caching logic.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different sessions.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute lays out doc in its initial view state and renders the requested
// formats. When the layout is cached, doc is not indexed at all.
func (r *Runner) Execute(ctx context.Context, doc *family.Document, opts Options, ropts RenderOptions) (*Result, error) {
	if doc == nil {
		return nil, fmt.Errorf("execute: no document")
	}
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	ropts.SetDefaults()
	if err := ropts.Validate(); err != nil {
		return nil, err
	}

	result := &Result{DatasetHash: doc.Hash()}

	layoutStart := time.Now()
	key := r.Keyer.LayoutKey(result.DatasetHash, opts.LayoutKeyOpts(opts.Anchor, nil))
	l, hit := r.cachedLayout(ctx, key)
	if !hit {
		s, err := Load(ctx, doc, opts)
		if err != nil {
			return nil, err
		}
		l = s.Contract()
		r.storeLayout(ctx, key, l)
	}
	result.Layout = l
	result.CacheInfo.LayoutHit = hit
	result.Stats.LayoutTime = time.Since(layoutStart)
	result.Stats.NodeCount = len(l.Nodes)
	result.Stats.EdgeCount = len(l.Edges)

	r.Logger.Info("computed layout",
		"nodes", len(l.Nodes),
		"edges", len(l.Edges),
		"cached", hit,
		"duration", result.Stats.LayoutTime)

	return r.finish(ctx, result, opts, ropts)
}

// ExecuteSession renders the current view of s.
func (r *Runner) ExecuteSession(ctx context.Context, s *Session, ropts RenderOptions) (*Result, error) {
	ropts.SetDefaults()
	if err := ropts.Validate(); err != nil {
		return nil, err
	}
	l, hit := r.SessionLayout(ctx, s)
	result := &Result{
		DatasetHash: s.DatasetHash(),
		Layout:      l,
		CacheInfo:   CacheInfo{LayoutHit: hit},
		Stats:       Stats{NodeCount: len(l.Nodes), EdgeCount: len(l.Edges)},
	}
	return r.finish(ctx, result, s.Options(), ropts)
}

func (r *Runner) finish(ctx context.Context, result *Result, opts Options, ropts RenderOptions) (*Result, error) {
	renderStart := time.Now()
	artifacts, hit, err := r.RenderWithCacheInfo(ctx, result.Layout, opts, ropts)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Artifacts = artifacts
	result.CacheInfo.RenderHit = hit
	result.Stats.RenderTime = time.Since(renderStart)

	r.Logger.Info("rendered outputs",
		"formats", ropts.Formats,
		"cached", hit,
		"duration", result.Stats.RenderTime)
	return result, nil
}

// SessionLayout returns the render contract for the current view of s and
// whether it came from cache. The session has already computed the layout,
// so a miss only costs the conversion.
func (r *Runner) SessionLayout(ctx context.Context, s *Session) (render.Layout, bool) {
	opts := s.Options()
	snap := s.Snapshot()
	key := r.Keyer.LayoutKey(s.DatasetHash(), opts.LayoutKeyOpts(s.Anchor(), &snap))
	if l, hit := r.cachedLayout(ctx, key); hit {
		return l, true
	}
	l := s.Contract()
	r.storeLayout(ctx, key, l)
	return l, false
}

func (r *Runner) cachedLayout(ctx context.Context, key string) (render.Layout, bool) {
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil {
		r.Logger.Warn("cache read failed", "key", key, "error", err)
	}
	if err == nil && hit {
		if l, err := render.UnmarshalLayout(data); err == nil {
			observability.Cache().OnCacheHit(ctx, cache.KeyTypeLayout)
			return l, true
		}
		// If deserialization fails, fall through to recompute
	}
	observability.Cache().OnCacheMiss(ctx, cache.KeyTypeLayout)
	return render.Layout{}, false
}

func (r *Runner) storeLayout(ctx context.Context, key string, l render.Layout) {
	data, err := render.MarshalLayout(l)
	if err != nil {
		return
	}
	if err := r.Cache.Set(ctx, key, data, cache.TTLLayout); err != nil {
		r.Logger.Warn("cache write failed", "key", key, "error", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, cache.KeyTypeLayout, len(data))
}

// RenderWithCacheInfo generates artifacts with caching and returns cache hit info.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, l render.Layout, opts Options, ropts RenderOptions) (map[string][]byte, bool, error) {
	ropts.SetDefaults()
	if err := ropts.Validate(); err != nil {
		return nil, false, err
	}

	// Compute cache key from layout data
	layoutData, err := render.MarshalLayout(l)
	if err != nil {
		return nil, false, fmt.Errorf("serialize layout for cache key: %w", err)
	}
	layoutHash := cache.Hash(layoutData)

	artifacts := make(map[string][]byte, len(ropts.Formats))
	var missing []string
	for _, format := range ropts.Formats {
		key := r.Keyer.ArtifactKey(layoutHash, ropts.ArtifactKeyOpts(format))
		if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
			observability.Cache().OnCacheHit(ctx, cache.KeyTypeArtifact)
			artifacts[format] = data
			continue
		}
		observability.Cache().OnCacheMiss(ctx, cache.KeyTypeArtifact)
		missing = append(missing, format)
	}
	if len(missing) == 0 {
		return artifacts, true, nil
	}

	rendered, err := RenderFromLayout(ctx, l, opts, RenderOptions{Formats: missing, Detailed: ropts.Detailed, Scale: ropts.Scale})
	if err != nil {
		return nil, false, err
	}
	for format, data := range rendered {
		artifacts[format] = data
		key := r.Keyer.ArtifactKey(layoutHash, ropts.ArtifactKeyOpts(format))
		if err := r.Cache.Set(ctx, key, data, cache.TTLArtifact); err == nil {
			observability.Cache().OnCacheSet(ctx, cache.KeyTypeArtifact, len(data))
		}
	}
	return artifacts, false, nil
}

// RenderFromLayout renders l into every requested format without caching.
// SVG is rendered at most once and shared by PNG and PDF.
func RenderFromLayout(ctx context.Context, l render.Layout, opts Options, ropts RenderOptions) (map[string][]byte, error) {
	ropts.SetDefaults()
	out := make(map[string][]byte, len(ropts.Formats))

	var dot string
	var svg []byte
	dotFor := func() string {
		if dot == "" {
			dot = nodelink.ToDOT(l, nodelink.Options{
				NodeWidth:  opts.NodeWidth,
				NodeHeight: opts.NodeHeight,
				Detailed:   ropts.Detailed,
			})
		}
		return dot
	}
	svgFor := func() ([]byte, error) {
		if svg == nil {
			var err error
			if svg, err = nodelink.RenderSVG(ctx, dotFor()); err != nil {
				return nil, err
			}
		}
		return svg, nil
	}

	for _, format := range ropts.Formats {
		var (
			data []byte
			err  error
		)
		switch format {
		case FormatJSON:
			data, err = render.MarshalLayout(l)
		case FormatDOT:
			data = []byte(dotFor())
		case FormatSVG:
			data, err = svgFor()
		case FormatPNG:
			if data, err = svgFor(); err == nil {
				data, err = render.ToPNG(data, ropts.Scale)
			}
		case FormatPDF:
			if data, err = svgFor(); err == nil {
				data, err = render.ToPDF(data)
			}
		default:
			err = ValidateFormat(format)
		}
		if err != nil {
			return nil, fmt.Errorf("%s: %w", format, err)
		}
		out[format] = data
	}
	return out, nil
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}
