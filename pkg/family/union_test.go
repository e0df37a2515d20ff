package family

import (
	"slices"
	"testing"
)

func mustIndex(t *testing.T, people ...Person) *Index {
	t.Helper()
	x, err := NewIndex(people)
	if err != nil {
		t.Fatalf("NewIndex: %v", err)
	}
	return x
}

func TestUnionIDOrderIndependent(t *testing.T) {
	if UnionID("x", "y") != UnionID("y", "x") {
		t.Errorf("UnionID must not depend on argument order")
	}
	if !IsUnionID(UnionID("x", "y")) {
		t.Errorf("IsUnionID(%q) = false", UnionID("x", "y"))
	}
	if IsUnionID("x") {
		t.Errorf("IsUnionID(x) = true")
	}
}

func TestSynthesizeUnions(t *testing.T) {
	tests := []struct {
		name     string
		people   []Person
		wantLen  int
		check    string // union to inspect, as "a,b"
		children []string
	}{
		{
			name: "SingleUnionFromOneSide",
			people: []Person{
				{ID: "X", SpouseIDs: []string{"Y"}},
				{ID: "Y"},
				{ID: "Z", ParentIDs: []string{"X", "Y"}},
			},
			wantLen:  1,
			check:    "X,Y",
			children: []string{"Z"},
		},
		{
			name: "ReciprocalReferencesCreateOnce",
			people: []Person{
				{ID: "X", SpouseIDs: []string{"Y"}},
				{ID: "Y", SpouseIDs: []string{"X"}},
				{ID: "Z", ParentIDs: []string{"Y", "X"}},
			},
			wantLen:  1,
			check:    "Y,X",
			children: []string{"Z"},
		},
		{
			name: "OnlySharedChildren",
			people: []Person{
				{ID: "a", SpouseIDs: []string{"b", "c"}},
				{ID: "b"},
				{ID: "c"},
				{ID: "ab1", Name: "two", ParentIDs: []string{"a", "b"}},
				{ID: "ab2", Name: "one", ParentIDs: []string{"b", "a"}},
				{ID: "ac", ParentIDs: []string{"a", "c"}},
				{ID: "aonly", ParentIDs: []string{"a"}},
			},
			wantLen:  2,
			check:    "a,b",
			children: []string{"ab2", "ab1"},
		},
		{
			name: "ChildlessUnion",
			people: []Person{
				{ID: "a", SpouseIDs: []string{"b"}},
				{ID: "b"},
			},
			wantLen: 1,
			check:   "a,b",
		},
		{
			name: "DanglingSpouseIgnored",
			people: []Person{
				{ID: "a", SpouseIDs: []string{"ghost"}},
			},
			wantLen: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			us := SynthesizeUnions(mustIndex(t, tt.people...))
			if us.Len() != tt.wantLen {
				t.Fatalf("Len = %d, want %d", us.Len(), tt.wantLen)
			}
			if tt.check == "" {
				return
			}
			a, b, _ := cut(tt.check)
			u, ok := us.Between(a, b)
			if !ok {
				t.Fatalf("union %s missing", tt.check)
			}
			if !slices.Equal(u.Children, tt.children) {
				t.Errorf("Children = %v, want %v", u.Children, tt.children)
			}
			if !u.HasPartner(a) || !u.HasPartner(b) || u.Other(a) != b {
				t.Errorf("partners = %v", u.Partners)
			}
		})
	}
}

func TestUnionsOf(t *testing.T) {
	x := mustIndex(t,
		Person{ID: "a", SpouseIDs: []string{"b", "c"}},
		Person{ID: "b"},
		Person{ID: "c", SpouseIDs: []string{"a"}},
	)
	us := SynthesizeUnions(x)
	var got []string
	for _, u := range us.Of("a") {
		got = append(got, u.ID)
	}
	want := []string{UnionID("a", "b"), UnionID("a", "c")}
	if !slices.Equal(got, want) {
		t.Errorf("Of(a) = %v, want %v", got, want)
	}
	if len(us.Of("b")) != 1 {
		t.Errorf("Of(b) = %v, want 1 union", us.Of("b"))
	}
}

func cut(s string) (string, string, bool) {
	for i := range s {
		if s[i] == ',' {
			return s[:i], s[i+1:], true
		}
	}
	return s, "", false
}
