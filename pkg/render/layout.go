package render

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/matzehuels/kintree/pkg/family"
	"github.com/matzehuels/kintree/pkg/hierarchy"
	"github.com/matzehuels/kintree/pkg/layout"
	"github.com/matzehuels/kintree/pkg/view"
)

// Node kinds as they appear in the contract.
const (
	KindPerson = "person"
	KindUnion  = "union"
)

// =============================================================================
// Layout - Render Contract
// =============================================================================

// Layout is the serialization format handed to renderers.
//
// Check Kind on each node to see which payload is set:
//
//	Person ("person"):
//	  - Person: the person record
//
//	Union ("union"):
//	  - Partners: both partner records, in PartnerIDs order
//	  - PartnerIDs: the sorted partner ids
//
// Coordinates are node centers in layout space. Viewport maps layout space
// to screen space as screen = layout*k + (x, y).
type Layout struct {
	Nodes    []Node   `json:"nodes"`
	Edges    []Edge   `json:"edges"`
	Bounds   Bounds   `json:"bounds"`
	Viewport Viewport `json:"viewport"`
	Focus    string   `json:"focus,omitempty"`
}

// Node is one positioned person or union.
type Node struct {
	ID         string  `json:"id"`
	Kind       string  `json:"kind"`
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Depth      int     `json:"depth"`
	Generation int     `json:"generation"`
	Member     int     `json:"member"`
	Collapsed  bool    `json:"collapsed,omitempty"`
	Expandable bool    `json:"expandable,omitempty"`
	Focused    bool    `json:"focused,omitempty"`

	Person     *Person  `json:"person,omitempty"`
	Partners   []Person `json:"partners,omitempty"`
	PartnerIDs []string `json:"partner_ids,omitempty"`
}

// Person is the subset of a person record a renderer draws.
type Person struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Years     string `json:"years"`
	Status    string `json:"status"`
	BirthYear *int   `json:"birth_year,omitempty"`
	DeathYear *int   `json:"death_year,omitempty"`
	Subtitle  string `json:"subtitle,omitempty"`
	Location  string `json:"location,omitempty"`
	Photo     string `json:"photo,omitempty"`
}

// Edge connects a parent node to a child node.
type Edge struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// Bounds is the bounding box of every node box.
type Bounds struct {
	MinX   float64 `json:"min_x"`
	MinY   float64 `json:"min_y"`
	MaxX   float64 `json:"max_x"`
	MaxY   float64 `json:"max_y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Viewport is the pan/zoom transform.
type Viewport struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	K float64 `json:"k"`
}

// IsUnion returns true if n is a union node.
func (n *Node) IsUnion() bool { return n.Kind == KindUnion }

// Label returns the text a renderer shows for n.
func (n *Node) Label() string {
	switch {
	case n.Person != nil:
		return n.Person.Name
	case len(n.Partners) == 2:
		return n.Partners[0].Name + " & " + n.Partners[1].Name
	default:
		return n.ID
	}
}

// Node returns the node with the given id.
func (l *Layout) Node(id string) (*Node, bool) {
	for i := range l.Nodes {
		if l.Nodes[i].ID == id {
			return &l.Nodes[i], true
		}
	}
	return nil, false
}

// =============================================================================
// Conversion
// =============================================================================

// FromResult converts a computed layout into the render contract. The
// controller supplies the focus and viewport; it may be nil, in which case
// nothing is focused and the viewport is the home transform.
func FromResult(r *layout.Result, c *view.Controller) Layout {
	vp := view.NewViewport(0, 0)
	var focus string
	if c != nil {
		vp = c.Viewport
		focus = c.Focused()
	}

	l := Layout{
		Nodes: make([]Node, 0, len(r.Nodes)),
		Edges: make([]Edge, 0, len(r.Edges)),
		Bounds: Bounds{
			MinX:   r.Bounds.MinX,
			MinY:   r.Bounds.MinY,
			MaxX:   r.Bounds.MaxX,
			MaxY:   r.Bounds.MaxY,
			Width:  r.Bounds.Width(),
			Height: r.Bounds.Height(),
		},
		Viewport: Viewport{X: vp.X, Y: vp.Y, K: vp.K},
	}
	if _, ok := r.Node(focus); ok {
		l.Focus = focus
	}

	for _, n := range r.Nodes {
		out := Node{
			ID:         n.ID,
			Kind:       n.Kind.String(),
			X:          n.X,
			Y:          n.Y,
			Depth:      n.Depth,
			Generation: n.Generation,
			Member:     n.Member,
			Collapsed:  n.Collapsed,
			Expandable: n.Expandable,
			Focused:    n.ID == l.Focus,
		}
		switch e := n.Entity.(type) {
		case hierarchy.PersonEntity:
			p := fromPerson(e.Person)
			out.Person = &p
		case hierarchy.UnionEntity:
			ids := e.PartnerIDs()
			out.PartnerIDs = ids[:]
			out.Partners = []Person{fromPerson(e.Partners[0]), fromPerson(e.Partners[1])}
		default:
			panic(fmt.Sprintf("render: unexpected entity %T", n.Entity))
		}
		l.Nodes = append(l.Nodes, out)
	}

	for _, e := range r.Edges {
		l.Edges = append(l.Edges, Edge{From: e.From, To: e.To})
	}
	return l
}

func fromPerson(p *family.Person) Person {
	return Person{
		ID:        p.ID,
		Name:      p.DisplayName(),
		Years:     p.Years(),
		Status:    string(p.Status()),
		BirthYear: p.BirthYear,
		DeathYear: p.DeathYear,
		Subtitle:  p.Subtitle,
		Location:  p.Location,
		Photo:     p.Photo,
	}
}

// =============================================================================
// Layout Serialization API
// =============================================================================

// MarshalLayout serializes a Layout to pretty-printed JSON bytes.
func MarshalLayout(l Layout) ([]byte, error) {
	return json.MarshalIndent(l, "", "  ")
}

// UnmarshalLayout deserializes JSON bytes into a Layout.
// Every node must carry the payload its kind requires.
func UnmarshalLayout(data []byte) (Layout, error) {
	var l Layout
	if err := json.Unmarshal(data, &l); err != nil {
		return Layout{}, fmt.Errorf("unmarshal layout: %w", err)
	}

	for _, n := range l.Nodes {
		switch n.Kind {
		case KindPerson:
			if n.Person == nil {
				return Layout{}, fmt.Errorf("person node %q has no person", n.ID)
			}
		case KindUnion:
			if len(n.Partners) != 2 || len(n.PartnerIDs) != 2 {
				return Layout{}, fmt.Errorf("union node %q must have two partners", n.ID)
			}
		default:
			return Layout{}, fmt.Errorf("node %q has unknown kind %q", n.ID, n.Kind)
		}
	}
	return l, nil
}

// WriteLayoutFile writes a Layout to a JSON file.
func WriteLayoutFile(l Layout, path string) error {
	data, err := MarshalLayout(l)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ReadLayoutFile reads a Layout from a JSON file.
func ReadLayoutFile(path string) (Layout, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Layout{}, fmt.Errorf("read %s: %w", path, err)
	}
	return UnmarshalLayout(data)
}
