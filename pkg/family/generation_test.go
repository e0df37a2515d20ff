package family

import "testing"

func TestAssignGenerations(t *testing.T) {
	x := mustIndex(t,
		Person{ID: "G"},
		Person{ID: "P", ParentIDs: []string{"G"}},
		Person{ID: "S"},
		Person{ID: "A", ParentIDs: []string{"P", "S"}, SpouseIDs: []string{"W"}},
		Person{ID: "W"},
		Person{ID: "C", ParentIDs: []string{"A", "W"}},
		Person{ID: "D", ParentIDs: []string{"C"}},
		Person{ID: "U"}, // unconnected
	)

	gen, diags := AssignGenerations(x, "A")
	if len(diags) != 0 {
		t.Fatalf("diags = %v", diags)
	}
	want := map[string]int{"G": -2, "P": -1, "S": -1, "A": 0, "C": 1, "D": 2}
	for id, g := range want {
		got, ok := gen.Lookup(id)
		if !ok || got != g {
			t.Errorf("gen(%s) = %d,%v want %d", id, got, ok, g)
		}
	}
	// Spouses and disconnected people are not reached by either pass.
	for _, id := range []string{"W", "U"} {
		if _, ok := gen.Lookup(id); ok {
			t.Errorf("gen(%s) should be unassigned", id)
		}
		if gen.Of(id) != 0 {
			t.Errorf("Of(%s) = %d, want fallback 0", id, gen.Of(id))
		}
	}
}

func TestAssignGenerationsConsistent(t *testing.T) {
	x := mustIndex(t,
		Person{ID: "a", SpouseIDs: []string{"b"}},
		Person{ID: "b", SpouseIDs: []string{"a"}},
		Person{ID: "c", ParentIDs: []string{"a", "b"}, SpouseIDs: []string{"d"}},
		Person{ID: "d", SpouseIDs: []string{"c"}},
		Person{ID: "e", ParentIDs: []string{"c", "d"}},
		Person{ID: "f", ParentIDs: []string{"c", "d"}},
		Person{ID: "g", ParentIDs: []string{"e"}},
	)
	gen, _ := AssignGenerations(x, "c")
	for _, p := range x.People() {
		gc, ok := gen.Lookup(p.ID)
		if !ok {
			continue
		}
		for _, pid := range p.ParentIDs {
			if gp, ok := gen.Lookup(pid); ok && gc != gp+1 {
				t.Errorf("gen(%s)=%d but parent %s has %d", p.ID, gc, pid, gp)
			}
		}
	}
}

func TestAssignGenerationsMissingAnchor(t *testing.T) {
	x := mustIndex(t, Person{ID: "a"})
	gen, diags := AssignGenerations(x, "nobody")
	if len(gen) != 0 {
		t.Errorf("gen = %v, want empty", gen)
	}
	if len(diags) != 1 || diags[0].Code != MissingAnchor {
		t.Errorf("diags = %v, want one MissingAnchor", diags)
	}
}

func TestAssignGenerationsParentAnchorChild(t *testing.T) {
	x := mustIndex(t,
		Person{ID: "P"},
		Person{ID: "A", ParentIDs: []string{"P"}},
		Person{ID: "C", ParentIDs: []string{"A"}},
	)
	gen, _ := AssignGenerations(x, "A")
	if gen.Of("P") != -1 || gen.Of("A") != 0 || gen.Of("C") != 1 {
		t.Errorf("gen = %v, want P=-1 A=0 C=1", gen)
	}
}
