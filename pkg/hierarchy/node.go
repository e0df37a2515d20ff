package hierarchy

// Node is one occurrence of an entity in a materialized forest.
//
// The same entity may occur in several places when descent lines reconverge;
// each occurrence is its own Node. Nodes are rebuilt on every pass, so callers
// compare nodes by ID, never by pointer.
type Node struct {
	Entity   Entity
	Parent   *Node
	Children []*Node // Children materialized on this pass

	Depth int // Structural depth below the forest root
	// Band counts person steps below the forest root. Unions share the band
	// of the person they descend from.
	Band int

	Expandable bool // Has structural children, shown or not
	Collapsed  bool // Expandable, but no children were materialized
}

// ID returns the entity id.
func (n *Node) ID() string { return n.Entity.ID() }

// Kind returns the entity kind.
func (n *Node) Kind() Kind { return n.Entity.Kind() }

// Walk visits n and its descendants in pre-order. Returning false from fn
// skips the node's children.
func (n *Node) Walk(fn func(*Node) bool) {
	if !fn(n) {
		return
	}
	for _, c := range n.Children {
		c.Walk(fn)
	}
}

// Height returns the number of edges on the longest downward path.
func (n *Node) Height() int {
	h := 0
	for _, c := range n.Children {
		h = max(h, c.Height()+1)
	}
	return h
}

// Ancestors returns the chain from n's parent up to the forest root.
func (n *Node) Ancestors() []*Node {
	var out []*Node
	for p := n.Parent; p != nil; p = p.Parent {
		out = append(out, p)
	}
	return out
}

// Descendants returns n and every node below it in pre-order.
func (n *Node) Descendants() []*Node {
	var out []*Node
	n.Walk(func(d *Node) bool {
		out = append(out, d)
		return true
	})
	return out
}

// Forest is an ordered list of independent trees.
type Forest []*Node

// Walk visits every node of every member in forest iteration order.
func (f Forest) Walk(fn func(*Node) bool) {
	for _, root := range f {
		root.Walk(fn)
	}
}

// Find returns the first occurrence of id in forest iteration order.
func (f Forest) Find(id string) (*Node, bool) {
	var found *Node
	f.Walk(func(n *Node) bool {
		if found != nil {
			return false
		}
		if n.ID() == id {
			found = n
			return false
		}
		return true
	})
	return found, found != nil
}

// Len returns the total number of nodes across all members.
func (f Forest) Len() int {
	count := 0
	f.Walk(func(*Node) bool {
		count++
		return true
	})
	return count
}
