package pipeline

import (
	"context"
	"math"
	"slices"
	"testing"

	"github.com/matzehuels/kintree/pkg/errors"
	"github.com/matzehuels/kintree/pkg/family"
)

// household is Pat -> Ann, Ann married to Ben, their children Cat and Dan,
// and Cat's daughter Eve.
func household() *family.Document {
	return &family.Document{People: []family.Person{
		{ID: "p", Name: "Pat", BirthYear: family.Year(1900), DeathYear: family.Year(1970)},
		{ID: "a", Name: "Ann", BirthYear: family.Year(1930), ParentIDs: []string{"p"}, SpouseIDs: []string{"b"}},
		{ID: "b", Name: "Ben", SpouseIDs: []string{"a"}},
		{ID: "c", Name: "Cat", ParentIDs: []string{"a", "b"}},
		{ID: "d", Name: "Dan", ParentIDs: []string{"a", "b"}},
		{ID: "e", Name: "Eve", ParentIDs: []string{"c"}},
	}}
}

func load(t *testing.T, opts Options) *Session {
	t.Helper()
	s, err := Load(context.Background(), household(), opts)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	return s
}

func nodeIDs(s *Session) []string {
	var out []string
	for _, n := range s.Layout().Nodes {
		out = append(out, n.ID)
	}
	return out
}

var unionAB = family.UnionID("a", "b")

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  *family.Document
		opts Options
		want errors.Code
	}{
		{"NilDocument", nil, Options{}, errors.ErrCodeInvalidInput},
		{"DuplicateID", &family.Document{People: []family.Person{{ID: "x"}, {ID: "x"}}}, Options{}, errors.ErrCodeDuplicateID},
		{"EmptyID", &family.Document{People: []family.Person{{Name: "nobody"}}}, Options{}, errors.ErrCodeInvalidInput},
		{"TooManyParents", &family.Document{People: []family.Person{
			{ID: "a"}, {ID: "b"}, {ID: "c"}, {ID: "d", ParentIDs: []string{"a", "b", "c"}},
		}}, Options{}, errors.ErrCodeInvalidInput},
		{"BadOptions", household(), Options{NodeWidth: -1}, errors.ErrCodeInvalidConfig},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(context.Background(), tt.doc, tt.opts)
			if got := errors.GetCode(err); got != tt.want {
				t.Errorf("code = %q (%v), want %q", got, err, tt.want)
			}
		})
	}
}

func TestLoadEmptyDocument(t *testing.T) {
	s, err := Load(context.Background(), &family.Document{}, Options{})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(s.Layout().Nodes) != 0 || len(s.Diagnostics()) != 0 || s.Anchor() != "" {
		t.Errorf("empty document: nodes=%d diags=%v anchor=%q", len(s.Layout().Nodes), s.Diagnostics(), s.Anchor())
	}
}

func TestLoadDiagnostics(t *testing.T) {
	doc := household()
	doc.People[5].ParentIDs = append(doc.People[5].ParentIDs, "ghost")

	var got []family.Diagnostic
	s, err := Load(context.Background(), doc, Options{
		Anchor:       "nobody",
		OnDiagnostic: func(d family.Diagnostic) { got = append(got, d) },
	})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	want := []family.Diagnostic{
		{Code: family.DanglingParentRef, PersonID: "e", Ref: "ghost"},
		{Code: family.MissingAnchor, Ref: "nobody"},
	}
	if !slices.Equal(got, want) {
		t.Errorf("OnDiagnostic received %v, want %v", got, want)
	}
	if !slices.Equal(s.Diagnostics(), want) {
		t.Errorf("Diagnostics() = %v", s.Diagnostics())
	}
	for _, n := range s.Layout().Nodes {
		if n.Generation != 0 {
			t.Errorf("%s generation = %d, want 0 without an anchor", n.ID, n.Generation)
		}
	}
}

func TestLoadDefaultAnchor(t *testing.T) {
	s := load(t, Options{})
	if s.Anchor() != "p" {
		t.Errorf("Anchor = %q, want the first person", s.Anchor())
	}
	if s.DatasetHash() != household().Hash() {
		t.Error("DatasetHash does not match the document hash")
	}
}

func TestGenerationsRelativeToAnchor(t *testing.T) {
	s := load(t, Options{Anchor: "a"})
	for id, want := range map[string]int{"p": -1, "a": 0, "c": 1, "e": 2} {
		if got := s.Generations().Of(id); got != want {
			t.Errorf("gen(%s) = %d, want %d", id, got, want)
		}
	}
}

func TestInitialView(t *testing.T) {
	s := load(t, Options{})
	if got, want := nodeIDs(s), []string{"p", "a", unionAB, "c", "d"}; !slices.Equal(got, want) {
		t.Errorf("visible = %v, want %v", got, want)
	}
	c, _ := s.Layout().Node("c")
	if !c.Collapsed || !c.Expandable {
		t.Errorf("c should be collapsed and expandable: %+v", c)
	}
}

func TestToggleRestoresLayout(t *testing.T) {
	ctx := context.Background()
	s := load(t, Options{})
	before := s.Layout()

	expanded, err := s.Toggle(ctx, unionAB)
	if err != nil || expanded {
		t.Fatalf("Toggle = %v, %v; want collapsed", expanded, err)
	}
	if got := nodeIDs(s); slices.Contains(got, "c") {
		t.Errorf("children still visible: %v", got)
	}

	if expanded, err = s.Toggle(ctx, unionAB); err != nil || !expanded {
		t.Fatalf("Toggle = %v, %v; want expanded", expanded, err)
	}
	after := s.Layout()
	if !slices.Equal(before.Nodes, after.Nodes) || !slices.Equal(before.Edges, after.Edges) {
		t.Error("collapse then expand changed the layout")
	}
}

func TestToggleErrors(t *testing.T) {
	s := load(t, Options{})
	tests := []struct {
		id   string
		want errors.Code
	}{
		{"d", errors.ErrCodeNotExpandable},
		{"nobody", errors.ErrCodeUnknownNode},
		{"", errors.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		if _, err := s.Toggle(context.Background(), tt.id); errors.GetCode(err) != tt.want {
			t.Errorf("Toggle(%q) = %v, want %s", tt.id, err, tt.want)
		}
	}
}

func TestFocusCentersViewport(t *testing.T) {
	s := load(t, Options{ViewportWidth: 1000, ViewportHeight: 600})

	opened, err := s.Focus(context.Background(), "e")
	if err != nil {
		t.Fatalf("Focus: %v", err)
	}
	if !slices.Equal(opened, []string{"c"}) {
		t.Errorf("opened = %v, want [c]", opened)
	}
	e, ok := s.Layout().Node("e")
	if !ok {
		t.Fatal("e not laid out after focus")
	}
	sx, sy := s.View().Viewport.Apply(e.X, e.Y)
	if math.Abs(sx-500) > 1e-9 || math.Abs(sy-300) > 1e-9 {
		t.Errorf("focused node at screen (%v, %v), want (500, 300)", sx, sy)
	}
	if l := s.Contract(); l.Focus != "e" {
		t.Errorf("contract focus = %q", l.Focus)
	}

	s.ClearFocus()
	if s.View().Focused() != "" {
		t.Error("ClearFocus did not clear")
	}
}

func TestSearchFocus(t *testing.T) {
	ctx := context.Background()
	s := load(t, Options{})

	p, err := s.SearchFocus(ctx, "EVE")
	if err != nil || p.ID != "e" {
		t.Fatalf("SearchFocus(EVE) = %v, %v", p, err)
	}
	if !slices.Contains(nodeIDs(s), "e") {
		t.Error("search did not reveal e")
	}

	if _, err := s.SearchFocus(ctx, "zed"); !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("no match err = %v", err)
	}
	if _, err := s.SearchFocus(ctx, " "); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("blank query err = %v", err)
	}

	people, err := s.Search("a")
	if err != nil || len(people) != 4 {
		t.Errorf("Search(a) = %d people, %v; want 4", len(people), err)
	}
}

func TestSearchFocusSkipsUnreachable(t *testing.T) {
	doc := &family.Document{People: []family.Person{
		{ID: "o", Name: "Olga"},
		{ID: "n", Name: "Nils", ParentIDs: []string{"o"}},
		{ID: "m", Name: "Nils Jr", SpouseIDs: []string{"n"}},
	}}
	s, err := Load(context.Background(), doc, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if p, err := s.SearchFocus(context.Background(), "nils jr"); !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("unreachable match = %v, %v; want NOT_FOUND", p, err)
	}
	if p, err := s.SearchFocus(context.Background(), "nils"); err != nil || p.ID != "n" {
		t.Errorf("SearchFocus(nils) = %v, %v", p, err)
	}
}

func TestDetails(t *testing.T) {
	s := load(t, Options{Anchor: "a"})

	d, err := s.Details("a")
	if err != nil {
		t.Fatalf("Details: %v", err)
	}
	names := func(rs []Relative) []string {
		var out []string
		for _, r := range rs {
			out = append(out, r.Name)
		}
		return out
	}
	if got := names(d.Parents); !slices.Equal(got, []string{"Pat"}) {
		t.Errorf("parents = %v", got)
	}
	if got := names(d.Spouses); !slices.Equal(got, []string{"Ben"}) {
		t.Errorf("spouses = %v", got)
	}
	if got := names(d.Children); !slices.Equal(got, []string{"Cat", "Dan"}) {
		t.Errorf("children = %v", got)
	}
	if d.Generation == nil || *d.Generation != 0 || d.Status != "living" || d.Years != "1930" {
		t.Errorf("details = %+v", d)
	}
	if d.Parents[0].Years != "1900–1970" {
		t.Errorf("parent years = %q", d.Parents[0].Years)
	}

	if b, _ := s.Details("b"); b.Generation != nil {
		t.Errorf("b is not connected to the anchor but has generation %d", *b.Generation)
	}
	if _, err := s.Details("nobody"); !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("unknown person err = %v", err)
	}
	if _, err := s.Details(unionAB); !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("union id err = %v", err)
	}
}

func TestExpandCollapseAll(t *testing.T) {
	ctx := context.Background()
	s := load(t, Options{})

	s.ExpandAll(ctx)
	if got := len(s.Layout().Nodes); got != 6 {
		t.Errorf("after ExpandAll %d nodes, want 6", got)
	}
	s.CollapseAll(ctx)
	if got, want := nodeIDs(s), []string{"p", "a"}; !slices.Equal(got, want) {
		t.Errorf("after CollapseAll visible = %v, want %v", got, want)
	}
}

func TestSnapshotRestore(t *testing.T) {
	ctx := context.Background()
	s := load(t, Options{})
	if _, err := s.Focus(ctx, "e"); err != nil {
		t.Fatal(err)
	}
	s.View().Viewport.Zoom(2, 0, 0)
	snap := s.Snapshot()

	fresh := load(t, Options{})
	fresh.Restore(ctx, snap)
	if !slices.Equal(nodeIDs(fresh), nodeIDs(s)) {
		t.Errorf("restored view = %v, want %v", nodeIDs(fresh), nodeIDs(s))
	}
	if fresh.View().Focused() != "e" || fresh.View().Viewport.K != s.View().Viewport.K {
		t.Errorf("restored focus %q viewport %+v", fresh.View().Focused(), fresh.View().Viewport)
	}

	fresh.ResetView()
	if fresh.View().Viewport.K == s.View().Viewport.K {
		t.Error("ResetView kept the zoom")
	}
}

func TestOneSidedSpouse(t *testing.T) {
	doc := &family.Document{People: []family.Person{
		{ID: "x", Name: "Xia", SpouseIDs: []string{"y"}},
		{ID: "y", Name: "Yan"},
		{ID: "z", Name: "Zoe", ParentIDs: []string{"x", "y"}},
	}}
	s, err := Load(context.Background(), doc, Options{})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got, want := nodeIDs(s), []string{family.UnionID("x", "y"), "z"}; !slices.Equal(got, want) {
		t.Errorf("nodes = %v, want %v", got, want)
	}
	d, err := s.Details("y")
	if err != nil {
		t.Fatalf("Details: %v", err)
	}
	if len(d.Spouses) != 1 || d.Spouses[0].ID != "x" {
		t.Errorf("spouses of y = %v, want [x]", d.Spouses)
	}
}
