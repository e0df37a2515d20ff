package family

import (
	"slices"
	"strings"
)

// unionPrefix keeps union ids out of the person id namespace.
const unionPrefix = "union:"

// Union is a partnership synthesized from spouse references.
// It is never part of the raw input.
type Union struct {
	ID       string    // Canonical key, see UnionID
	Partners [2]string // Partner ids, sorted
	Children []string  // Shared children in sibling order
}

// UnionID returns the canonical id for the partnership of a and b.
// The ids are sorted before joining, so UnionID(a, b) == UnionID(b, a).
func UnionID(a, b string) string {
	if b < a {
		a, b = b, a
	}
	return unionPrefix + a + "+" + b
}

// IsUnionID reports whether id has the shape produced by [UnionID].
func IsUnionID(id string) bool { return strings.HasPrefix(id, unionPrefix) }

// HasPartner reports whether id is one of the union's partners.
func (u *Union) HasPartner(id string) bool {
	return u.Partners[0] == id || u.Partners[1] == id
}

// Other returns the partner that is not id.
func (u *Union) Other(id string) string {
	if u.Partners[0] == id {
		return u.Partners[1]
	}
	return u.Partners[0]
}

// Unions holds every union synthesized for an index.
type Unions struct {
	byID      map[string]*Union
	order     []*Union
	byPartner map[string][]*Union
}

// SynthesizeUnions derives one Union per distinct spouse pair.
//
// People are visited in input order and spouse lists in declaration order.
// The first reference to a pair creates the union; later references, from
// either side, are no-ops. A spouse reference without a reciprocal entry
// still yields a union.
func SynthesizeUnions(x *Index) *Unions {
	us := &Unions{
		byID:      make(map[string]*Union),
		byPartner: make(map[string][]*Union),
	}
	for _, p := range x.People() {
		for _, s := range p.SpouseIDs {
			if !x.Has(s) || s == p.ID {
				continue
			}
			id := UnionID(p.ID, s)
			if _, exists := us.byID[id]; exists {
				continue
			}
			a, b := p.ID, s
			if b < a {
				a, b = b, a
			}
			u := &Union{
				ID:       id,
				Partners: [2]string{a, b},
				Children: x.SortSiblings(sharedChildren(x, a, b)),
			}
			us.byID[id] = u
			us.order = append(us.order, u)
			us.byPartner[a] = append(us.byPartner[a], u)
			us.byPartner[b] = append(us.byPartner[b], u)
		}
	}
	return us
}

func sharedChildren(x *Index, a, b string) []string {
	var out []string
	for _, c := range x.Children(a) {
		if p, ok := x.Person(c); ok && slices.Contains(p.ParentIDs, b) {
			out = append(out, c)
		}
	}
	return out
}

// Len returns the number of unions.
func (us *Unions) Len() int { return len(us.order) }

// Get returns the union with the given canonical id.
func (us *Unions) Get(id string) (*Union, bool) {
	u, ok := us.byID[id]
	return u, ok
}

// Between returns the union of a and b, in either order.
func (us *Unions) Between(a, b string) (*Union, bool) {
	return us.Get(UnionID(a, b))
}

// All returns unions in creation order. The slice must not be modified.
func (us *Unions) All() []*Union { return us.order }

// Of returns the unions a person is a partner in, in creation order.
func (us *Unions) Of(personID string) []*Union { return us.byPartner[personID] }
