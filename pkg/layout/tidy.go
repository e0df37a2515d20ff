package layout

import "github.com/matzehuels/kintree/pkg/hierarchy"

// tidyNode carries the bookkeeping of the Buchheim/Walker variant of the
// Reingold–Tilford algorithm for one hierarchy node.
type tidyNode struct {
	node     *hierarchy.Node
	parent   *tidyNode
	children []*tidyNode
	index    int // position among siblings

	defaultAncestor *tidyNode
	ancestor        *tidyNode
	thread          *tidyNode

	prelim float64
	mod    float64
	change float64
	shift  float64
}

// placement is the horizontal position of one node occurrence, in units of
// one column. Placements are returned in pre-order.
type placement struct {
	node *hierarchy.Node
	x    float64
}

// tidy positions every node below root so that siblings are one column
// apart, cousins two, and parents are centered above their children.
// The root is placed at x = 0; the returned positions can be negative.
func tidy(root *hierarchy.Node) []placement {
	t := newTidyTree(root)
	// A virtual parent gives the root a sibling list and a modifier slot.
	virtual := &tidyNode{children: []*tidyNode{t}}
	t.parent = virtual
	t.ancestor = t

	postOrder(t, firstWalk)
	virtual.mod = -t.prelim

	out := make([]placement, 0, 16)
	secondWalk(t, &out)
	return out
}

func newTidyTree(n *hierarchy.Node) *tidyNode {
	t := &tidyNode{node: n}
	t.ancestor = t
	if len(n.Children) > 0 {
		t.children = make([]*tidyNode, len(n.Children))
		for i, c := range n.Children {
			child := newTidyTree(c)
			child.parent = t
			child.index = i
			t.children[i] = child
		}
	}
	return t
}

func postOrder(t *tidyNode, fn func(*tidyNode)) {
	for _, c := range t.children {
		postOrder(c, fn)
	}
	fn(t)
}

// separation is 1 between siblings and 2 between nodes of different parents.
func separation(a, b *tidyNode) float64 {
	if a.parent == b.parent {
		return 1
	}
	return 2
}

func firstWalk(v *tidyNode) {
	siblings := v.parent.children
	var w *tidyNode
	if v.index > 0 {
		w = siblings[v.index-1]
	}
	if len(v.children) > 0 {
		executeShifts(v)
		mid := (v.children[0].prelim + v.children[len(v.children)-1].prelim) / 2
		if w != nil {
			v.prelim = w.prelim + separation(v, w)
			v.mod = v.prelim - mid
		} else {
			v.prelim = mid
		}
	} else if w != nil {
		v.prelim = w.prelim + separation(v, w)
	}
	ancestor := v.parent.defaultAncestor
	if ancestor == nil {
		ancestor = siblings[0]
	}
	v.parent.defaultAncestor = apportion(v, w, ancestor)
}

func secondWalk(v *tidyNode, out *[]placement) {
	*out = append(*out, placement{node: v.node, x: v.prelim + v.parent.mod})
	v.mod += v.parent.mod
	for _, c := range v.children {
		secondWalk(c, out)
	}
}

// apportion pushes the subtree of v right until its left contour clears the
// right contour of the subtrees of its left siblings, and threads the
// contours for the next level up.
func apportion(v, w, ancestor *tidyNode) *tidyNode {
	if w == nil {
		return ancestor
	}
	vip, vop := v, v
	vim, vom := w, v.parent.children[0]
	sip, sop := vip.mod, vop.mod
	sim, som := vim.mod, vom.mod

	for {
		vim, vip = nextRight(vim), nextLeft(vip)
		if vim == nil || vip == nil {
			break
		}
		vom = nextLeft(vom)
		vop = nextRight(vop)
		vop.ancestor = v
		shift := vim.prelim + sim - vip.prelim - sip + separation(vim, vip)
		if shift > 0 {
			moveSubtree(nextAncestor(vim, v, ancestor), v, shift)
			sip += shift
			sop += shift
		}
		sim += vim.mod
		sip += vip.mod
		som += vom.mod
		sop += vop.mod
	}
	if vim != nil && nextRight(vop) == nil {
		vop.thread = vim
		vop.mod += sim - sop
	}
	if vip != nil && nextLeft(vom) == nil {
		vom.thread = vip
		vom.mod += sip - som
		ancestor = v
	}
	return ancestor
}

func nextLeft(v *tidyNode) *tidyNode {
	if len(v.children) > 0 {
		return v.children[0]
	}
	return v.thread
}

func nextRight(v *tidyNode) *tidyNode {
	if len(v.children) > 0 {
		return v.children[len(v.children)-1]
	}
	return v.thread
}

func moveSubtree(wm, wp *tidyNode, shift float64) {
	change := shift / float64(wp.index-wm.index)
	wp.change -= change
	wp.shift += shift
	wm.change += change
	wp.prelim += shift
	wp.mod += shift
}

func executeShifts(v *tidyNode) {
	var shift, change float64
	for i := len(v.children) - 1; i >= 0; i-- {
		w := v.children[i]
		w.prelim += shift
		w.mod += shift
		change += w.change
		shift += w.shift + change
	}
}

func nextAncestor(vim, v, ancestor *tidyNode) *tidyNode {
	if vim.ancestor.parent == v.parent {
		return vim.ancestor
	}
	return ancestor
}
