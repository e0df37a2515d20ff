package family

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

var (
	// ErrEmptyID is returned by [NewIndex] for a record without an id.
	ErrEmptyID = errors.New("person ID must not be empty")

	// ErrDuplicateID is returned by [NewIndex] when two records share an id.
	// This is the only fatal data condition besides malformed structure.
	ErrDuplicateID = errors.New("duplicate person ID")

	// ErrTooManyParents is returned by [NewIndex] when a record lists more
	// than two distinct parent ids.
	ErrTooManyParents = errors.New("person has more than two parents")

	// ErrSelfParent is returned by [NewIndex] when a record lists itself as
	// one of its parents.
	ErrSelfParent = errors.New("person lists itself as a parent")
)

// MaxParents is the number of parents a person may have.
const MaxParents = 2

// Index is the lookup layer over a person list.
//
// Person records held by the index are private copies whose ParentIDs and
// SpouseIDs contain only resolvable, de-duplicated references. The index is
// read-only after construction.
type Index struct {
	people   map[string]*Person
	order    []*Person
	children map[string][]string // parent ID -> child IDs, input order
	diags    []Diagnostic
}

// NewIndex builds the lookup structures for people.
//
// It returns ErrDuplicateID, ErrEmptyID, ErrTooManyParents or ErrSelfParent
// (wrapped with the offending id) for records that cannot be indexed.
// References to unknown people are dropped and reported via [Index.Diagnostics].
func NewIndex(people []Person) (*Index, error) {
	x := &Index{
		people:   make(map[string]*Person, len(people)),
		order:    make([]*Person, 0, len(people)),
		children: make(map[string][]string, len(people)),
	}

	for i := range people {
		p := people[i]
		if p.ID == "" {
			return nil, fmt.Errorf("record %d: %w", i, ErrEmptyID)
		}
		if _, exists := x.people[p.ID]; exists {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateID, p.ID)
		}
		parents := dedupe(p.ParentIDs)
		if len(parents) > MaxParents {
			return nil, fmt.Errorf("%w: %q lists %d", ErrTooManyParents, p.ID, len(parents))
		}
		if slices.Contains(parents, p.ID) {
			return nil, fmt.Errorf("%w: %q", ErrSelfParent, p.ID)
		}
		p.ParentIDs = parents
		p.SpouseIDs = dedupe(p.SpouseIDs)
		x.people[p.ID] = &p
		x.order = append(x.order, &p)
	}

	for _, p := range x.order {
		p.ParentIDs = x.resolve(p, p.ParentIDs, DanglingParentRef)
		p.SpouseIDs = slices.DeleteFunc(x.resolve(p, p.SpouseIDs, DanglingSpouseRef),
			func(id string) bool { return id == p.ID })
		for _, pid := range p.ParentIDs {
			x.children[pid] = append(x.children[pid], p.ID)
		}
	}
	return x, nil
}

func (x *Index) resolve(p *Person, ids []string, code DiagnosticCode) []string {
	out := ids[:0]
	for _, id := range ids {
		if _, ok := x.people[id]; !ok {
			x.diags = append(x.diags, Diagnostic{Code: code, PersonID: p.ID, Ref: id})
			continue
		}
		out = append(out, id)
	}
	return out
}

func dedupe(ids []string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id != "" && !slices.Contains(out, id) {
			out = append(out, id)
		}
	}
	return out
}

// Len returns the number of indexed people.
func (x *Index) Len() int { return len(x.order) }

// Person returns the person with the given id.
func (x *Index) Person(id string) (*Person, bool) {
	p, ok := x.people[id]
	return p, ok
}

// Has reports whether id is indexed.
func (x *Index) Has(id string) bool {
	_, ok := x.people[id]
	return ok
}

// People returns all people in input order. The slice must not be modified.
func (x *Index) People() []*Person { return x.order }

// Children returns the ids of id's children in input order.
// Returns nil for unknown ids and for people without children.
func (x *Index) Children(id string) []string { return x.children[id] }

// Parents returns the resolved parent ids of id.
func (x *Index) Parents(id string) []string {
	if p, ok := x.people[id]; ok {
		return p.ParentIDs
	}
	return nil
}

// Spouses returns the resolved spouse ids of id, in declaration order.
func (x *Index) Spouses(id string) []string {
	if p, ok := x.people[id]; ok {
		return p.SpouseIDs
	}
	return nil
}

// PrimaryPartner returns the first resolvable spouse of id.
func (x *Index) PrimaryPartner(id string) (string, bool) {
	sp := x.Spouses(id)
	if len(sp) == 0 {
		return "", false
	}
	return sp[0], true
}

// HasParents reports whether id has at least one resolvable parent.
func (x *Index) HasParents(id string) bool { return len(x.Parents(id)) > 0 }

// SortedChildren returns id's children in sibling order.
func (x *Index) SortedChildren(id string) []string {
	return x.SortSiblings(x.children[id])
}

// SortSiblings returns a sorted copy of ids: by sibling-order hint, then by
// name using locale-aware collation, then by id so the order is total.
// Unknown ids sort last.
func (x *Index) SortSiblings(ids []string) []string {
	out := slices.Clone(ids)
	col := collate.New(language.Und)
	slices.SortStableFunc(out, func(a, b string) int {
		pa, okA := x.people[a]
		pb, okB := x.people[b]
		if !okA || !okB {
			return cmp.Compare(boolRank(okA), boolRank(okB))
		}
		if c := cmp.Compare(pa.Order, pb.Order); c != 0 {
			return c
		}
		if c := col.CompareString(pa.Name, pb.Name); c != 0 {
			return c
		}
		return strings.Compare(a, b)
	})
	return out
}

func boolRank(ok bool) int {
	if ok {
		return 0
	}
	return 1
}

// Search returns people whose name contains query, ignoring case.
// Results are in input order. An empty query matches nobody.
func (x *Index) Search(query string) []*Person {
	fold := cases.Fold()
	q := fold.String(strings.TrimSpace(query))
	if q == "" {
		return nil
	}
	var out []*Person
	for _, p := range x.order {
		if strings.Contains(fold.String(p.Name), q) {
			out = append(out, p)
		}
	}
	return out
}

// Diagnostics returns the dropped references found during construction.
func (x *Index) Diagnostics() []Diagnostic { return slices.Clone(x.diags) }
