// Package layout assigns coordinates to a hierarchy forest.
//
// # Algorithm
//
// Each forest member is laid out independently with the Buchheim/Walker
// linear-time variant of the Reingold–Tilford tidy tree: siblings are one
// column apart, nodes with different parents two, and every parent is
// centered over its children. One column is NodeWidth + SepX.
//
// The tidy y coordinate is then discarded. Rows are fixed by generation
// relative to the anchor, so a person sits on the same row in every member
// it appears in. Members are stacked top to bottom, each one starting
// (height + 1) rows plus ForestGap below the previous one.
//
// # Reconciliation
//
// A person reachable from more than one root occurs in several members.
// [Compute] keeps one node per id (the highest placement, then the first
// in forest order) and one edge per (From, To) pair. Edges to the dropped
// occurrences are kept and point at the surviving node, which is what
// draws the reconverging lines of a family graph.
package layout
