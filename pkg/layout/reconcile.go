package layout

import (
	"math"

	"github.com/matzehuels/kintree/pkg/family"
	"github.com/matzehuels/kintree/pkg/hierarchy"
)

// Default geometry, in pixels.
const (
	DefaultNodeWidth  = 180.0
	DefaultNodeHeight = 64.0
	DefaultSepX       = 32.0
	DefaultSepY       = 90.0
	DefaultMarginLeft = 40.0
	DefaultMarginTop  = 40.0
	DefaultForestGap  = 140.0
)

// Options configures node geometry and spacing.
type Options struct {
	NodeWidth  float64
	NodeHeight float64
	SepX       float64 // Horizontal gap between sibling boxes
	SepY       float64 // Vertical gap between generation rows
	MarginLeft float64 // Left padding applied to every forest member
	MarginTop  float64 // Offset of the first forest member
	ForestGap  float64 // Extra space between stacked forest members
}

// SetDefaults fills zero fields with the default geometry.
func (o *Options) SetDefaults() {
	if o.NodeWidth == 0 {
		o.NodeWidth = DefaultNodeWidth
	}
	if o.NodeHeight == 0 {
		o.NodeHeight = DefaultNodeHeight
	}
	if o.SepX == 0 {
		o.SepX = DefaultSepX
	}
	if o.SepY == 0 {
		o.SepY = DefaultSepY
	}
	if o.MarginLeft == 0 {
		o.MarginLeft = DefaultMarginLeft
	}
	if o.MarginTop == 0 {
		o.MarginTop = DefaultMarginTop
	}
	if o.ForestGap == 0 {
		o.ForestGap = DefaultForestGap
	}
}

// Column returns the horizontal distance between adjacent siblings.
func (o Options) Column() float64 { return o.NodeWidth + o.SepX }

// Row returns the vertical distance between adjacent generations.
func (o Options) Row() float64 { return o.NodeHeight + o.SepY }

// Node is the single surviving placement of an entity.
type Node struct {
	ID         string
	Kind       hierarchy.Kind
	X, Y       float64 // Center of the node box
	Depth      int     // Depth of the winning occurrence in its tree
	Generation int
	Member     int // Index of the forest member the winning occurrence belongs to
	Expandable bool
	Collapsed  bool
	Entity     hierarchy.Entity
}

// Edge is a parent-to-child connection between two surviving nodes.
type Edge struct {
	From, To string
}

// Bounds is the bounding box of all node boxes.
type Bounds struct {
	MinX, MinY, MaxX, MaxY float64
}

// Width returns the horizontal extent.
func (b Bounds) Width() float64 { return b.MaxX - b.MinX }

// Height returns the vertical extent.
func (b Bounds) Height() float64 { return b.MaxY - b.MinY }

// Result is a reconciled layout: exactly one node per id.
type Result struct {
	Nodes  []Node // First-encounter order
	Edges  []Edge // First-encounter order
	Bounds Bounds

	byID map[string]int
}

// Node returns the surviving node for id.
func (r *Result) Node(id string) (Node, bool) {
	i, ok := r.byID[id]
	if !ok {
		return Node{}, false
	}
	return r.Nodes[i], true
}

// Children returns the ids connected below id, in edge order.
func (r *Result) Children(id string) []string {
	var out []string
	for _, e := range r.Edges {
		if e.From == id {
			out = append(out, e.To)
		}
	}
	return out
}

// Compute lays out every forest member, stacks the members vertically, and
// reconciles entities that occur more than once.
//
// Each member is laid out as a tidy tree. Vertical positions are then
// overridden by generation so rows align across members: y is the node's
// generation times the row height, plus the member's offset. Members are
// shifted right so their leftmost node sits at MarginLeft.
//
// When an id occurs more than once, the occurrence with the smallest y wins;
// ties go to the first occurrence in forest order. Edges are deduplicated by
// (From, To); since both endpoints resolve to their surviving nodes, every
// duplicate of an edge is drawn identically.
//
// Compute is pure: the same forest and generations give the same result.
func Compute(forest hierarchy.Forest, gens family.Generations, opts Options) *Result {
	opts.SetDefaults()
	row := opts.Row()

	r := &Result{byID: make(map[string]int)}
	edges := make(map[Edge]bool)
	offset := opts.MarginTop

	for member, root := range forest {
		placed := tidy(root)
		minX := math.Inf(1)
		for _, p := range placed {
			minX = min(minX, p.x)
		}

		for _, p := range placed {
			n := p.node
			gen := Generation(n.Entity, gens)
			y := float64(gen)*row + offset
			cand := Node{
				ID:         n.ID(),
				Kind:       n.Kind(),
				X:          (p.x-minX)*opts.Column() + opts.MarginLeft,
				Y:          y,
				Depth:      n.Depth,
				Generation: gen,
				Member:     member,
				Expandable: n.Expandable,
				Collapsed:  n.Collapsed,
				Entity:     n.Entity,
			}
			if i, seen := r.byID[cand.ID]; !seen {
				r.byID[cand.ID] = len(r.Nodes)
				r.Nodes = append(r.Nodes, cand)
			} else if cand.Y < r.Nodes[i].Y {
				r.Nodes[i] = cand
			}

			if n.Parent == nil {
				continue
			}
			if e := (Edge{From: n.Parent.ID(), To: n.ID()}); !edges[e] {
				edges[e] = true
				r.Edges = append(r.Edges, e)
			}
		}

		offset += float64(root.Height()+1)*row + opts.ForestGap
	}

	r.Edges = dropDangling(r.Edges, r.byID)
	r.Bounds = bounds(r.Nodes, opts)
	return r
}

// Generation returns the generation used to place e. A union sits on the
// row of its higher partner, the smaller of the two generations; partners
// without an assigned generation are ignored, and 0 is the fallback.
func Generation(e hierarchy.Entity, gens family.Generations) int {
	switch e := e.(type) {
	case hierarchy.PersonEntity:
		return gens.Of(e.Person.ID)
	case hierarchy.UnionEntity:
		gen, found := 0, false
		for _, id := range e.PartnerIDs() {
			if g, ok := gens.Lookup(id); ok && (!found || g < gen) {
				gen, found = g, true
			}
		}
		return gen
	default:
		panic("layout: unknown entity type")
	}
}

func dropDangling(edges []Edge, byID map[string]int) []Edge {
	out := edges[:0]
	for _, e := range edges {
		_, okFrom := byID[e.From]
		_, okTo := byID[e.To]
		if okFrom && okTo {
			out = append(out, e)
		}
	}
	return out
}

func bounds(nodes []Node, opts Options) Bounds {
	if len(nodes) == 0 {
		return Bounds{}
	}
	b := Bounds{
		MinX: math.Inf(1), MinY: math.Inf(1),
		MaxX: math.Inf(-1), MaxY: math.Inf(-1),
	}
	hw, hh := opts.NodeWidth/2, opts.NodeHeight/2
	for _, n := range nodes {
		b.MinX = min(b.MinX, n.X-hw)
		b.MinY = min(b.MinY, n.Y-hh)
		b.MaxX = max(b.MaxX, n.X+hw)
		b.MaxY = max(b.MaxY, n.Y+hh)
	}
	return b
}
