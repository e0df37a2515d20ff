package view

import (
	"errors"
	"fmt"
	"slices"

	"github.com/matzehuels/kintree/pkg/hierarchy"
)

var (
	// ErrUnknownNode is returned for ids that are neither a person nor a union.
	ErrUnknownNode = errors.New("unknown node")

	// ErrNotExpandable is returned when toggling a node without children.
	ErrNotExpandable = errors.New("node has no children")

	// ErrUnreachable is returned when focusing a node that no forest root
	// leads to.
	ErrUnreachable = errors.New("node is not reachable from any root")
)

// DefaultExpandBands is the number of generation bands, counted from each
// forest root, that start expanded.
const DefaultExpandBands = 2

// Entry is the expand state of one node that has children.
//
// Exactly one of Active and Cached holds the node's children: Active while
// expanded, Cached while collapsed. Toggling moves the list between the two
// fields, so nothing is recomputed or lost.
type Entry struct {
	Expanded bool
	Active   []hierarchy.Entity
	Cached   []hierarchy.Entity
}

func (e *Entry) expand() bool {
	if e.Expanded {
		return false
	}
	e.Active, e.Cached = e.Cached, nil
	e.Expanded = true
	return true
}

func (e *Entry) collapse() bool {
	if !e.Expanded {
		return false
	}
	e.Cached, e.Active = e.Active, nil
	e.Expanded = false
	return true
}

// Controller holds the interactive state of one session: which nodes are
// expanded, which node is focused, and the viewport transform.
//
// It implements [hierarchy.ChildSource], so a forest built from it contains
// only the children of expanded nodes. Controller is not safe for
// concurrent use.
type Controller struct {
	b       *hierarchy.Builder
	entries map[string]*Entry
	roots   map[string]bool
	focus   string

	Viewport Viewport
}

// New creates the initial view state for b. Every node with children
// starts expanded if its shallowest occurrence lies within the first
// expandBands generation bands of its tree, and collapsed otherwise.
// A non-positive expandBands selects [DefaultExpandBands].
func New(b *hierarchy.Builder, expandBands int) *Controller {
	if expandBands <= 0 {
		expandBands = DefaultExpandBands
	}
	c := &Controller{
		b:        b,
		entries:  make(map[string]*Entry),
		roots:    make(map[string]bool),
		Viewport: NewViewport(0, 0),
	}
	for _, r := range b.Roots() {
		c.roots[r.ID()] = true
	}

	band := make(map[string]int)
	b.Structure().Walk(func(n *hierarchy.Node) bool {
		if !n.Expandable {
			return true
		}
		if prev, ok := band[n.ID()]; !ok || n.Band < prev {
			band[n.ID()] = n.Band
		}
		if _, ok := c.entries[n.ID()]; !ok {
			c.entries[n.ID()] = &Entry{Cached: b.ChildrenOf(n.Entity)}
		}
		return true
	})
	for id, e := range c.entries {
		if band[id] < expandBands {
			e.expand()
		}
	}
	return c
}

// Children implements [hierarchy.ChildSource].
func (c *Controller) Children(e hierarchy.Entity) []hierarchy.Entity {
	if entry, ok := c.entries[e.ID()]; ok {
		return entry.Active
	}
	return nil
}

// Entry returns a copy of the expand state of id.
func (c *Controller) Entry(id string) (Entry, bool) {
	e, ok := c.entries[id]
	if !ok {
		return Entry{}, false
	}
	return *e, true
}

// Expanded reports whether id is expanded. Nodes without children report false.
func (c *Controller) Expanded(id string) bool {
	e, ok := c.entries[id]
	return ok && e.Expanded
}

// Toggle flips id between expanded and collapsed and returns the new state.
func (c *Controller) Toggle(id string) (bool, error) {
	e, err := c.entry(id)
	if err != nil {
		return false, err
	}
	if e.Expanded {
		e.collapse()
	} else {
		e.expand()
	}
	return e.Expanded, nil
}

// Expand expands id. It reports whether the state changed.
func (c *Controller) Expand(id string) (bool, error) {
	e, err := c.entry(id)
	if err != nil {
		return false, err
	}
	return e.expand(), nil
}

// Collapse collapses id. It reports whether the state changed.
func (c *Controller) Collapse(id string) (bool, error) {
	e, err := c.entry(id)
	if err != nil {
		return false, err
	}
	return e.collapse(), nil
}

func (c *Controller) entry(id string) (*Entry, error) {
	if e, ok := c.entries[id]; ok {
		return e, nil
	}
	if _, ok := c.b.Entity(id); ok {
		return nil, fmt.Errorf("%w: %q", ErrNotExpandable, id)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownNode, id)
}

// ExpandAll expands every node.
func (c *Controller) ExpandAll() {
	for _, e := range c.entries {
		e.expand()
	}
}

// CollapseAll collapses every node except the forest roots, so the top of
// each tree stays visible.
func (c *Controller) CollapseAll() {
	for id, e := range c.entries {
		if c.roots[id] {
			e.expand()
		} else {
			e.collapse()
		}
	}
}

// Focus makes id the focused node. Every ancestor on the path from the
// forest root to the first occurrence of id is expanded so that the node is
// materialized by the next build; no other expand state changes.
// It returns the ids it had to expand, nearest ancestor first.
func (c *Controller) Focus(id string) ([]string, error) {
	_, ancestors, ok := c.b.PathTo(id)
	if !ok {
		if _, known := c.b.Entity(id); known {
			return nil, fmt.Errorf("%w: %q", ErrUnreachable, id)
		}
		return nil, fmt.Errorf("%w: %q", ErrUnknownNode, id)
	}
	// This is the first occurrence, which layout keeps: y grows with the
	// member offset, so a later copy never has a smaller y.
	var opened []string
	for _, a := range ancestors {
		if e, ok := c.entries[a.ID()]; ok && e.expand() {
			opened = append(opened, a.ID())
		}
	}
	c.focus = id
	return opened, nil
}

// Focused returns the focused id, or "" when nothing is focused.
func (c *Controller) Focused() string { return c.focus }

// ClearFocus removes the focus.
func (c *Controller) ClearFocus() { c.focus = "" }

// ExpandedIDs returns the ids of all expanded nodes, sorted.
func (c *Controller) ExpandedIDs() []string {
	var out []string
	for id, e := range c.entries {
		if e.Expanded {
			out = append(out, id)
		}
	}
	slices.Sort(out)
	return out
}

// Snapshot is the serializable part of a Controller.
type Snapshot struct {
	Expanded []string `json:"expanded"`
	Focus    string   `json:"focus,omitempty"`
	Viewport Viewport `json:"viewport"`
}

// Snapshot captures the current state.
func (c *Controller) Snapshot() Snapshot {
	return Snapshot{
		Expanded: c.ExpandedIDs(),
		Focus:    c.focus,
		Viewport: c.Viewport,
	}
}

// Restore applies s: listed ids are expanded, every other node collapsed.
// Ids that no longer exist are ignored, and so is a focus on one.
func (c *Controller) Restore(s Snapshot) {
	open := make(map[string]bool, len(s.Expanded))
	for _, id := range s.Expanded {
		open[id] = true
	}
	for id, e := range c.entries {
		if open[id] {
			e.expand()
		} else {
			e.collapse()
		}
	}
	c.focus = ""
	if _, ok := c.b.Entity(s.Focus); ok {
		c.focus = s.Focus
	}
	c.Viewport = s.Viewport
	c.Viewport.clamp()
}
