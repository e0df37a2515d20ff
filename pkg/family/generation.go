package family

// Generations maps person ids to their generation offset from an anchor.
// The anchor is generation 0, parents are -1, children +1.
type Generations map[string]int

// Of returns the generation of id, or 0 when id has none assigned.
// Falling back to 0 is the documented behavior for people not connected to
// the anchor; they share a band with the anchor's own generation.
func (g Generations) Of(id string) int { return g[id] }

// Lookup returns the generation of id and whether one was assigned.
func (g Generations) Lookup(id string) (int, bool) {
	v, ok := g[id]
	return v, ok
}

// AssignGenerations runs two breadth-first passes from anchor: one up through
// parent links and one down through child links. A person that already has a
// generation is never revisited, which keeps cyclic marriage graphs finite.
//
// If anchor is not indexed the result is empty and a MissingAnchor diagnostic
// is returned; callers treat every person as generation 0.
func AssignGenerations(x *Index, anchor string) (Generations, []Diagnostic) {
	gen := Generations{}
	if !x.Has(anchor) {
		return gen, []Diagnostic{{Code: MissingAnchor, Ref: anchor}}
	}
	gen[anchor] = 0

	bfs(gen, anchor, x.Parents, -1)
	bfs(gen, anchor, x.Children, +1)
	return gen, nil
}

func bfs(gen Generations, start string, next func(string) []string, step int) {
	queue := []string{start}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		g := gen[id]
		for _, n := range next(id) {
			if _, seen := gen[n]; seen {
				continue
			}
			gen[n] = g + step
			queue = append(queue, n)
		}
	}
}
