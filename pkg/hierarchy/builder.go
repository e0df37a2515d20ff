package hierarchy

import (
	"github.com/matzehuels/kintree/pkg/family"
)

// ChildSource decides which children are materialized under an entity on a
// given pass. The view state implements it to hide collapsed subtrees.
type ChildSource interface {
	Children(e Entity) []Entity
}

// ChildSourceFunc adapts a function to [ChildSource].
type ChildSourceFunc func(e Entity) []Entity

func (f ChildSourceFunc) Children(e Entity) []Entity { return f(e) }

// Builder turns the family graph into a forest of trees.
//
// Child lists are computed once per entity and memoized, so rebuilding the
// forest after a view change does no graph work. A Builder belongs to one
// loaded dataset and is not safe for concurrent use.
type Builder struct {
	idx    *family.Index
	unions *family.Unions

	children  map[string][]Entity
	roots     []Entity
	structure Forest
	diags     []family.Diagnostic
}

// New creates a Builder for the given index and unions.
func New(idx *family.Index, unions *family.Unions) *Builder {
	return &Builder{
		idx:      idx,
		unions:   unions,
		children: make(map[string][]Entity),
	}
}

// Entity resolves a person or union id.
func (b *Builder) Entity(id string) (Entity, bool) {
	if p, ok := b.idx.Person(id); ok {
		return PersonEntity{Person: p}, true
	}
	if u, ok := b.unions.Get(id); ok {
		return b.unionEntity(u), true
	}
	return nil, false
}

func (b *Builder) unionEntity(u *family.Union) UnionEntity {
	a, _ := b.idx.Person(u.Partners[0])
	c, _ := b.idx.Person(u.Partners[1])
	return UnionEntity{Union: u, Partners: [2]*family.Person{a, c}}
}

// ChildrenOf returns the structural children of e.
//
// A person whose primary union (see primaryUnion) has at least one shared
// child descends through that union: the union is the only child. Otherwise the person's own children are used, in sibling order.
// A union's children are its shared children.
func (b *Builder) ChildrenOf(e Entity) []Entity {
	if kids, ok := b.children[e.ID()]; ok {
		return kids
	}
	var kids []Entity
	switch e := e.(type) {
	case PersonEntity:
		kids = b.personChildren(e.Person)
	case UnionEntity:
		kids = b.people(e.Union.Children)
	default:
		panic("hierarchy: unknown entity type")
	}
	b.children[e.ID()] = kids
	return kids
}

func (b *Builder) personChildren(p *family.Person) []Entity {
	if u, ok := b.primaryUnion(p.ID); ok && len(u.Children) > 0 {
		return []Entity{b.unionEntity(u)}
	}
	return b.people(b.idx.SortedChildren(p.ID))
}

// primaryUnion returns the union with id's first declared spouse. A person
// who declared no spouse but is named by someone else's spouse list falls
// back to the first union they are a partner in.
func (b *Builder) primaryUnion(id string) (*family.Union, bool) {
	if partner, ok := b.idx.PrimaryPartner(id); ok {
		return b.unions.Between(id, partner)
	}
	if us := b.unions.Of(id); len(us) > 0 {
		return us[0], true
	}
	return nil, false
}

func (b *Builder) people(ids []string) []Entity {
	out := make([]Entity, 0, len(ids))
	for _, id := range ids {
		if p, ok := b.idx.Person(id); ok {
			out = append(out, PersonEntity{Person: p})
		}
	}
	return out
}

// Roots returns the forest roots: every union whose partners both have no
// parents, in creation order, followed by every person with no parents who
// is not a partner in any union, in input order. Spouse links count from
// either side.
//
// A person with parents is never a root, even if it is also reachable
// elsewhere; duplicates are reconciled by the layout stage.
func (b *Builder) Roots() []Entity {
	if b.roots != nil {
		return b.roots
	}
	roots := []Entity{}
	for _, u := range b.unions.All() {
		if !b.idx.HasParents(u.Partners[0]) && !b.idx.HasParents(u.Partners[1]) {
			roots = append(roots, b.unionEntity(u))
		}
	}
	for _, p := range b.idx.People() {
		if !b.idx.HasParents(p.ID) && len(b.unions.Of(p.ID)) == 0 {
			roots = append(roots, PersonEntity{Person: p})
		}
	}
	b.roots = roots
	return roots
}

// Build materializes the forest, attaching under each node the children src
// returns for it.
//
// An entity that already occurs on the path from the root to the current
// node is not descended into again; each such occurrence is reported as a
// CyclicAncestry diagnostic and the repeated subtree is skipped.
func (b *Builder) Build(src ChildSource) (Forest, []family.Diagnostic) {
	w := &walk{b: b, src: src, onPath: make(map[string]bool), seen: make(map[family.Diagnostic]bool)}
	roots := b.Roots()
	forest := make(Forest, 0, len(roots))
	for _, r := range roots {
		forest = append(forest, w.node(r, nil, 0, 0))
	}
	return forest, w.diags
}

// Full returns a ChildSource that materializes every structural child.
func (b *Builder) Full() ChildSource {
	return ChildSourceFunc(b.ChildrenOf)
}

// Structure returns the fully expanded forest. It is built once and shared;
// callers must not modify it.
func (b *Builder) Structure() Forest {
	if b.structure == nil {
		b.structure, b.diags = b.Build(b.Full())
		b.diags = append(b.diags, b.unplaced(b.structure)...)
	}
	return b.structure
}

// unplaced reports every person that occurs nowhere in forest, neither as a
// node nor as a partner in a union node. This happens to a parentless
// person whose only unions are with people that have parents and no shared
// children.
func (b *Builder) unplaced(forest Forest) []family.Diagnostic {
	placed := make(map[string]bool)
	forest.Walk(func(n *Node) bool {
		placed[n.ID()] = true
		if u, ok := n.Entity.(UnionEntity); ok {
			for _, id := range u.Union.Partners {
				placed[id] = true
			}
		}
		return true
	})
	var diags []family.Diagnostic
	for _, p := range b.idx.People() {
		if !placed[p.ID] {
			diags = append(diags, family.Diagnostic{Code: family.Unplaced, PersonID: p.ID})
		}
	}
	return diags
}

// Diagnostics returns the problems found while building the fully expanded
// forest. A forest built from a partial view reports a subset of these.
func (b *Builder) Diagnostics() []family.Diagnostic {
	b.Structure()
	return b.diags
}

// PathTo returns the first occurrence of id in the fully expanded forest,
// in forest iteration order, together with its ancestors (nearest first).
// The boolean is false when id does not occur in any tree.
func (b *Builder) PathTo(id string) (*Node, []*Node, bool) {
	n, ok := b.Structure().Find(id)
	if !ok {
		return nil, nil, false
	}
	return n, n.Ancestors(), true
}

type walk struct {
	b      *Builder
	src    ChildSource
	onPath map[string]bool
	seen   map[family.Diagnostic]bool
	diags  []family.Diagnostic
}

func (w *walk) node(e Entity, parent *Node, depth, band int) *Node {
	n := &Node{Entity: e, Parent: parent, Depth: depth, Band: band}
	n.Expandable = len(w.b.ChildrenOf(e)) > 0
	kids := w.src.Children(e)
	n.Collapsed = n.Expandable && len(kids) == 0

	w.onPath[e.ID()] = true
	for _, c := range kids {
		if w.onPath[c.ID()] {
			w.report(family.Diagnostic{Code: family.CyclicAncestry, PersonID: e.ID(), Ref: c.ID()})
			continue
		}
		childBand := band
		if c.Kind() == KindPerson {
			childBand++
		}
		n.Children = append(n.Children, w.node(c, n, depth+1, childBand))
	}
	delete(w.onPath, e.ID())
	return n
}

func (w *walk) report(d family.Diagnostic) {
	if w.seen[d] {
		return
	}
	w.seen[d] = true
	w.diags = append(w.diags, d)
}
