package pipeline

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/kintree/pkg/errors"
	"github.com/matzehuels/kintree/pkg/family"
	"github.com/matzehuels/kintree/pkg/hierarchy"
	"github.com/matzehuels/kintree/pkg/layout"
	"github.com/matzehuels/kintree/pkg/observability"
	"github.com/matzehuels/kintree/pkg/render"
	"github.com/matzehuels/kintree/pkg/view"
)

// Session is one loaded dataset together with its view state and the
// layout of the current view.
//
// Every operation runs to completion before returning; operations that
// change what is visible rebuild the forest and recompute the layout in
// full. A Session is not safe for concurrent use.
type Session struct {
	opts   Options
	hash   string
	anchor string

	idx     *family.Index
	unions  *family.Unions
	gens    family.Generations
	builder *hierarchy.Builder
	view    *view.Controller
	diags   []family.Diagnostic

	result *layout.Result
}

// Load indexes doc and computes the initial layout.
//
// Duplicate ids fail with code DUPLICATE_ID and other malformed records
// with INVALID_INPUT. Dangling references, a missing anchor and cyclic
// ancestry do not fail the load; they are logged at warn level, passed to
// opts.OnDiagnostic, and available from [Session.Diagnostics].
func Load(ctx context.Context, doc *family.Document, opts Options) (*Session, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	start := time.Now()
	s, err := load(doc, opts)
	if err != nil {
		observability.Layout().OnLoad(ctx, 0, 0, 0, time.Since(start), err)
		return nil, err
	}
	elapsed := time.Since(start)
	observability.Layout().OnLoad(ctx, s.idx.Len(), s.unions.Len(), len(s.diags), elapsed, nil)

	opts.Logger.Info("loaded family",
		"people", s.idx.Len(),
		"unions", s.unions.Len(),
		"anchor", s.anchor,
		"duration", elapsed)
	for _, d := range s.diags {
		opts.Logger.Warn("data problem", "code", d.Code, "person", d.PersonID, "ref", d.Ref)
		if opts.OnDiagnostic != nil {
			opts.OnDiagnostic(d)
		}
	}

	s.relayout(ctx)
	return s, nil
}

func load(doc *family.Document, opts Options) (*Session, error) {
	if doc == nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "no document")
	}
	idx, err := family.NewIndex(doc.People)
	if err != nil {
		if stderrors.Is(err, family.ErrDuplicateID) {
			return nil, errors.Wrap(errors.ErrCodeDuplicateID, err, "cannot index family")
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "cannot index family")
	}

	s := &Session{
		opts:   opts,
		hash:   doc.Hash(),
		anchor: opts.Anchor,
		idx:    idx,
		unions: family.SynthesizeUnions(idx),
		gens:   family.Generations{},
		diags:  idx.Diagnostics(),
	}
	if s.anchor == "" && idx.Len() > 0 {
		s.anchor = idx.People()[0].ID
	}
	if idx.Len() > 0 {
		gens, diags := family.AssignGenerations(idx, s.anchor)
		s.gens = gens
		s.diags = append(s.diags, diags...)
	}

	s.builder = hierarchy.New(idx, s.unions)
	s.diags = append(s.diags, s.builder.Diagnostics()...)

	s.view = view.New(s.builder, opts.ExpandBands)
	s.view.Viewport.Resize(opts.ViewportWidth, opts.ViewportHeight)
	return s, nil
}

// relayout rebuilds the visible forest and recomputes coordinates.
func (s *Session) relayout(ctx context.Context) {
	start := time.Now()
	forest, _ := s.builder.Build(s.view)
	observability.Layout().OnLayoutStart(ctx, forest.Len())

	s.result = layout.Compute(forest, s.gens, s.opts.Layout())

	elapsed := time.Since(start)
	observability.Layout().OnLayoutComplete(ctx, len(s.result.Nodes), len(s.result.Edges), elapsed)
	s.opts.Logger.Debug("computed layout",
		"nodes", len(s.result.Nodes),
		"edges", len(s.result.Edges),
		"duration", elapsed)
}

// =============================================================================
// Accessors
// =============================================================================

// Layout returns the layout of the current view.
func (s *Session) Layout() *layout.Result { return s.result }

// Contract returns the render contract for the current view.
func (s *Session) Contract() render.Layout { return render.FromResult(s.result, s.view) }

// View returns the view state. Callers that change expand state through it
// directly must call [Session.Refresh] afterwards.
func (s *Session) View() *view.Controller { return s.view }

// Index returns the person index.
func (s *Session) Index() *family.Index { return s.idx }

// Unions returns the synthesized unions.
func (s *Session) Unions() *family.Unions { return s.unions }

// Generations returns the generation numbers relative to the anchor.
func (s *Session) Generations() family.Generations { return s.gens }

// Diagnostics returns every non-fatal data problem found during load.
func (s *Session) Diagnostics() []family.Diagnostic { return s.diags }

// DatasetHash returns the content hash of the loaded document.
func (s *Session) DatasetHash() string { return s.hash }

// Anchor returns the resolved anchor id.
func (s *Session) Anchor() string { return s.anchor }

// Options returns the options the session was loaded with, defaults applied.
func (s *Session) Options() Options { return s.opts }

// Logger returns the session's logger.
func (s *Session) Logger() *log.Logger { return s.opts.Logger }

// Refresh recomputes the layout from the current view state.
func (s *Session) Refresh(ctx context.Context) { s.relayout(ctx) }

// =============================================================================
// Interaction
// =============================================================================

// Toggle flips the expand state of id and re-lays out. It returns whether
// the node is expanded afterwards.
func (s *Session) Toggle(ctx context.Context, id string) (bool, error) {
	if err := errors.ValidatePersonID(id); err != nil {
		return false, err
	}
	expanded, err := s.view.Toggle(id)
	if err != nil {
		return false, viewError(err, id)
	}
	observability.Layout().OnToggle(ctx, id, expanded)
	s.opts.Logger.Debug("toggled", "id", id, "expanded", expanded)
	s.relayout(ctx)
	return expanded, nil
}

// Focus highlights id, expands its ancestors so it is visible, re-lays out,
// and centers the viewport on it. It returns the ids it expanded.
func (s *Session) Focus(ctx context.Context, id string) ([]string, error) {
	if err := errors.ValidatePersonID(id); err != nil {
		return nil, err
	}
	opened, err := s.view.Focus(id)
	if err != nil {
		return nil, viewError(err, id)
	}
	observability.Layout().OnFocus(ctx, id, len(opened))
	s.opts.Logger.Debug("focused", "id", id, "opened", len(opened))
	if len(opened) > 0 || s.result == nil {
		s.relayout(ctx)
	}
	if n, ok := s.result.Node(id); ok {
		s.view.Viewport.Center(n.X, n.Y)
	}
	return opened, nil
}

// ClearFocus removes the highlight. The layout does not change.
func (s *Session) ClearFocus() { s.view.ClearFocus() }

// Search returns the people whose name contains query, ignoring case.
func (s *Session) Search(query string) ([]*family.Person, error) {
	if err := errors.ValidateSearchQuery(query); err != nil {
		return nil, err
	}
	return s.idx.Search(query), nil
}

// SearchFocus focuses the first person matching query that can be shown.
// It fails with NOT_FOUND when no match is reachable from a forest root.
func (s *Session) SearchFocus(ctx context.Context, query string) (*family.Person, error) {
	matches, err := s.Search(query)
	if err != nil {
		return nil, err
	}
	for _, p := range matches {
		if _, err := s.Focus(ctx, p.ID); err == nil {
			return p, nil
		} else if !errors.Is(err, errors.ErrCodeNotFound) {
			return nil, err
		}
	}
	if len(matches) > 0 {
		return nil, errors.New(errors.ErrCodeNotFound, "no person matching %q can be shown", query)
	}
	return nil, errors.New(errors.ErrCodeNotFound, "no person matches %q", query)
}

// ExpandAll expands every node and re-lays out.
func (s *Session) ExpandAll(ctx context.Context) {
	s.view.ExpandAll()
	s.relayout(ctx)
}

// CollapseAll collapses every node except the forest roots and re-lays out.
func (s *Session) CollapseAll(ctx context.Context) {
	s.view.CollapseAll()
	s.relayout(ctx)
}

// ResetView restores the home viewport transform.
func (s *Session) ResetView() { s.view.Viewport.Reset() }

// Snapshot captures the view state.
func (s *Session) Snapshot() view.Snapshot { return s.view.Snapshot() }

// Restore applies a snapshot taken earlier and re-lays out. The canvas size
// of the session is kept.
func (s *Session) Restore(ctx context.Context, snap view.Snapshot) {
	w, h := s.view.Viewport.Width, s.view.Viewport.Height
	s.view.Restore(snap)
	s.view.Viewport.Resize(w, h)
	s.relayout(ctx)
}

// viewError maps view state errors to error codes.
func viewError(err error, id string) error {
	switch {
	case stderrors.Is(err, view.ErrUnknownNode):
		return errors.Wrap(errors.ErrCodeUnknownNode, err, "no person or union %q", id)
	case stderrors.Is(err, view.ErrNotExpandable):
		return errors.Wrap(errors.ErrCodeNotExpandable, err, "%q has no children", id)
	case stderrors.Is(err, view.ErrUnreachable):
		return errors.Wrap(errors.ErrCodeNotFound, err, "%q is not part of any tree", id)
	default:
		return errors.Wrap(errors.ErrCodeInternal, err, "view update failed")
	}
}
