package family

import (
	"errors"
	"slices"
	"testing"
)

func TestNewIndex(t *testing.T) {
	people := []Person{
		{ID: "p", Name: "Pat"},
		{ID: "q", Name: "Quinn"},
		{ID: "a", Name: "Ann", ParentIDs: []string{"p", "q"}},
		{ID: "b", Name: "Bob", ParentIDs: []string{"p"}},
		{ID: "c", Name: "Cid", ParentIDs: []string{"a"}},
	}
	x, err := NewIndex(people)
	if err != nil {
		t.Fatalf("NewIndex: %v", err)
	}
	if x.Len() != len(people) {
		t.Errorf("Len = %d, want %d", x.Len(), len(people))
	}
	for _, p := range people {
		if _, ok := x.Person(p.ID); !ok {
			t.Errorf("Person(%q) missing", p.ID)
		}
	}

	// Children(p) must equal the set of ids whose parentIds contain p.
	for _, parent := range people {
		var want []string
		for _, c := range people {
			if slices.Contains(c.ParentIDs, parent.ID) {
				want = append(want, c.ID)
			}
		}
		if got := x.Children(parent.ID); !slices.Equal(got, want) {
			t.Errorf("Children(%q) = %v, want %v", parent.ID, got, want)
		}
	}
}

func TestNewIndexErrors(t *testing.T) {
	tests := []struct {
		name   string
		people []Person
		want   error
	}{
		{
			name:   "DuplicateID",
			people: []Person{{ID: "a"}, {ID: "a"}},
			want:   ErrDuplicateID,
		},
		{
			name:   "EmptyID",
			people: []Person{{Name: "nobody"}},
			want:   ErrEmptyID,
		},
		{
			name:   "TooManyParents",
			people: []Person{{ID: "a"}, {ID: "b"}, {ID: "c"}, {ID: "d", ParentIDs: []string{"a", "b", "c"}}},
			want:   ErrTooManyParents,
		},
		{
			name:   "SelfParent",
			people: []Person{{ID: "a", ParentIDs: []string{"a"}}},
			want:   ErrSelfParent,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewIndex(tt.people)
			if !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestNewIndexDanglingRefs(t *testing.T) {
	x, err := NewIndex([]Person{
		{ID: "a", ParentIDs: []string{"ghost", "b"}, SpouseIDs: []string{"phantom", "a"}},
		{ID: "b"},
	})
	if err != nil {
		t.Fatalf("dangling refs must not be fatal: %v", err)
	}
	if got := x.Parents("a"); !slices.Equal(got, []string{"b"}) {
		t.Errorf("Parents(a) = %v, want [b]", got)
	}
	if got := x.Spouses("a"); len(got) != 0 {
		t.Errorf("Spouses(a) = %v, want none", got)
	}
	if got := x.Children("ghost"); got != nil {
		t.Errorf("Children(ghost) = %v, want nil", got)
	}

	diags := x.Diagnostics()
	if len(diags) != 2 {
		t.Fatalf("Diagnostics = %v, want 2 entries", diags)
	}
	if diags[0].Code != DanglingParentRef || diags[0].Ref != "ghost" {
		t.Errorf("diags[0] = %+v", diags[0])
	}
	if diags[1].Code != DanglingSpouseRef || diags[1].Ref != "phantom" {
		t.Errorf("diags[1] = %+v", diags[1])
	}
}

func TestNewIndexDoesNotAliasInput(t *testing.T) {
	people := []Person{{ID: "a", SpouseIDs: []string{"b", "b"}}, {ID: "b"}}
	x, err := NewIndex(people)
	if err != nil {
		t.Fatal(err)
	}
	people[0].Name = "changed"
	p, _ := x.Person("a")
	if p.Name == "changed" {
		t.Error("index must hold its own copy of each record")
	}
	if got := x.Spouses("a"); !slices.Equal(got, []string{"b"}) {
		t.Errorf("Spouses(a) = %v, want [b]", got)
	}
}

func TestSortSiblings(t *testing.T) {
	x, err := NewIndex([]Person{
		{ID: "p"},
		{ID: "c1", Name: "Zoe", ParentIDs: []string{"p"}},
		{ID: "c2", Name: "émile", ParentIDs: []string{"p"}},
		{ID: "c3", Name: "Adam", ParentIDs: []string{"p"}, Order: 2},
		{ID: "c4", Name: "Bea", ParentIDs: []string{"p"}},
		{ID: "c5", Name: "Bea", ParentIDs: []string{"p"}, Order: -1},
	})
	if err != nil {
		t.Fatal(err)
	}
	got := x.SortedChildren("p")
	want := []string{"c5", "c4", "c2", "c1", "c3"}
	if !slices.Equal(got, want) {
		t.Errorf("SortedChildren = %v, want %v", got, want)
	}
}

func TestSearch(t *testing.T) {
	x, _ := NewIndex([]Person{
		{ID: "a", Name: "Anna Fink"},
		{ID: "b", Name: "Bruno"},
		{ID: "c", Name: "Jeffrey FINK"},
	})
	tests := []struct {
		query string
		want  []string
	}{
		{"fink", []string{"a", "c"}},
		{"  BRUNO ", []string{"b"}},
		{"", nil},
		{"nobody", nil},
	}
	for _, tt := range tests {
		var got []string
		for _, p := range x.Search(tt.query) {
			got = append(got, p.ID)
		}
		if !slices.Equal(got, tt.want) {
			t.Errorf("Search(%q) = %v, want %v", tt.query, got, tt.want)
		}
	}
}

func TestPersonStatusAndYears(t *testing.T) {
	tests := []struct {
		name   string
		p      Person
		status Status
		years  string
	}{
		{"Deceased", Person{BirthYear: Year(1901), DeathYear: Year(1980)}, StatusDeceased, "1901–1980"},
		{"Living", Person{BirthYear: Year(1950)}, StatusLiving, "1950"},
		{"Unknown", Person{}, StatusUnknown, "—"},
		{"DeathOnly", Person{DeathYear: Year(1900)}, StatusDeceased, "–1900"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.p.Status(); got != tt.status {
				t.Errorf("Status = %s, want %s", got, tt.status)
			}
			if got := tt.p.Years(); got != tt.years {
				t.Errorf("Years = %q, want %q", got, tt.years)
			}
		})
	}
}
