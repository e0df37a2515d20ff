package pipeline

import (
	"context"
	"sync"
	"testing"

	"github.com/matzehuels/kintree/pkg/cache"
	"github.com/matzehuels/kintree/pkg/errors"
	"github.com/matzehuels/kintree/pkg/observability"
	"github.com/matzehuels/kintree/pkg/render"
)

type countingCacheHooks struct {
	observability.NoopCacheHooks
	mu           sync.Mutex
	hits, misses map[string]int
}

func newCountingCacheHooks() *countingCacheHooks {
	return &countingCacheHooks{hits: map[string]int{}, misses: map[string]int{}}
}

func (h *countingCacheHooks) OnCacheHit(_ context.Context, keyType string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.hits[keyType]++
}

func (h *countingCacheHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.misses[keyType]++
}

func newFileRunner(t *testing.T) *Runner {
	t.Helper()
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}
	r := NewRunner(c, nil, nil)
	t.Cleanup(func() { _ = r.Close() })
	return r
}

func TestRunnerExecuteCaches(t *testing.T) {
	hooks := newCountingCacheHooks()
	observability.SetCacheHooks(hooks)
	defer observability.Reset()

	ctx := context.Background()
	r := newFileRunner(t)
	ropts := RenderOptions{Formats: []string{FormatJSON, FormatDOT}}

	first, err := r.Execute(ctx, household(), Options{}, ropts)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if first.CacheInfo.LayoutHit || first.CacheInfo.RenderHit {
		t.Errorf("cold run hit the cache: %+v", first.CacheInfo)
	}
	if first.Stats.NodeCount != 5 || first.Stats.EdgeCount != 4 {
		t.Errorf("stats = %+v", first.Stats)
	}
	if _, ok := first.Artifacts[FormatDOT]; !ok {
		t.Error("missing dot artifact")
	}
	l, err := render.UnmarshalLayout(first.Artifacts[FormatJSON])
	if err != nil || len(l.Nodes) != 5 {
		t.Errorf("json artifact = %d nodes, %v", len(l.Nodes), err)
	}

	second, err := r.Execute(ctx, household(), Options{}, ropts)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !second.CacheInfo.LayoutHit || !second.CacheInfo.RenderHit {
		t.Errorf("warm run missed the cache: %+v", second.CacheInfo)
	}
	if string(second.Artifacts[FormatDOT]) != string(first.Artifacts[FormatDOT]) {
		t.Error("cached dot differs from the rendered one")
	}
	if hooks.hits[cache.KeyTypeLayout] != 1 || hooks.misses[cache.KeyTypeLayout] != 1 {
		t.Errorf("layout hooks hits=%d misses=%d", hooks.hits[cache.KeyTypeLayout], hooks.misses[cache.KeyTypeLayout])
	}
	if hooks.hits[cache.KeyTypeArtifact] != 2 {
		t.Errorf("artifact hits = %d, want 2", hooks.hits[cache.KeyTypeArtifact])
	}

	third, err := r.Execute(ctx, household(), Options{SepX: 50}, ropts)
	if err != nil {
		t.Fatal(err)
	}
	if third.CacheInfo.LayoutHit {
		t.Error("changed geometry reused a cached layout")
	}
}

func TestRunnerExecuteSession(t *testing.T) {
	ctx := context.Background()
	r := newFileRunner(t)
	s := load(t, Options{})

	before, err := r.ExecuteSession(ctx, s, RenderOptions{})
	if err != nil {
		t.Fatalf("ExecuteSession: %v", err)
	}
	if _, err := s.Toggle(ctx, "c"); err != nil {
		t.Fatal(err)
	}
	after, err := r.ExecuteSession(ctx, s, RenderOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if after.CacheInfo.LayoutHit {
		t.Error("a changed view reused the cached layout")
	}
	if len(after.Layout.Nodes) != len(before.Layout.Nodes)+1 {
		t.Errorf("nodes %d -> %d, want one more after expanding c", len(before.Layout.Nodes), len(after.Layout.Nodes))
	}

	if _, err := s.Toggle(ctx, "c"); err != nil {
		t.Fatal(err)
	}
	if _, hit := r.SessionLayout(ctx, s); !hit {
		t.Error("returning to an earlier view should hit the cache")
	}
}

func TestRunnerErrors(t *testing.T) {
	ctx := context.Background()
	r := NewRunner(nil, nil, nil)

	if _, err := r.Execute(ctx, household(), Options{}, RenderOptions{Formats: []string{"gif"}}); !errors.Is(err, errors.ErrCodeUnsupported) {
		t.Errorf("bad format err = %v", err)
	}
	if _, err := r.Execute(ctx, nil, Options{}, RenderOptions{}); err == nil {
		t.Error("nil document should fail")
	}
	if _, err := r.Execute(ctx, household(), Options{ExpandBands: -2}, RenderOptions{}); !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("bad options err = %v", err)
	}
}
