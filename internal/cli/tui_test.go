package cli

import (
	"context"
	"slices"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/matzehuels/kintree/pkg/family"
	"github.com/matzehuels/kintree/pkg/view"
)

func rowIDs(m ExploreModel) []string {
	ids := make([]string, len(m.Rows))
	for i, r := range m.Rows {
		ids[i] = r.node.ID
	}
	return ids
}

func press(m ExploreModel, keys ...tea.KeyMsg) ExploreModel {
	for _, k := range keys {
		next, _ := m.Update(k)
		m = next.(ExploreModel)
	}
	return m
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestOutlineOrder(t *testing.T) {
	m := NewExploreModel(context.Background(), loadHousehold(t))
	want := []string{"p", "a", family.UnionID("a", "b"), "c", "d"}
	if got := rowIDs(m); !slices.Equal(got, want) {
		t.Errorf("rows = %v, want %v", got, want)
	}
	for i, indent := range []int{0, 1, 2, 3, 3} {
		if m.Rows[i].indent != indent {
			t.Errorf("row %d indent = %d, want %d", i, m.Rows[i].indent, indent)
		}
	}
}

func TestExploreToggle(t *testing.T) {
	m := NewExploreModel(context.Background(), loadHousehold(t))
	down := tea.KeyMsg{Type: tea.KeyDown}
	m = press(m, down, down, down)
	if n, _ := m.selected(); n.ID != "c" {
		t.Fatalf("selected %q, want c", n.ID)
	}

	m = press(m, tea.KeyMsg{Type: tea.KeyEnter})
	if !slices.Contains(rowIDs(m), "e") {
		t.Errorf("e hidden after expanding c: %v", rowIDs(m))
	}
	if n, _ := m.selected(); n.ID != "c" {
		t.Errorf("cursor moved to %q", n.ID)
	}

	m = press(m, tea.KeyMsg{Type: tea.KeyEnter})
	if slices.Contains(rowIDs(m), "e") {
		t.Error("e visible after collapsing c")
	}
}

func TestExploreToggleLeafShowsMessage(t *testing.T) {
	m := NewExploreModel(context.Background(), loadHousehold(t))
	m.Cursor = len(m.Rows) - 1 // d has no children
	m = press(m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.message == "" {
		t.Error("toggling a leaf should explain why nothing happened")
	}
}

func TestExploreSearch(t *testing.T) {
	m := NewExploreModel(context.Background(), loadHousehold(t))
	m = press(m, runes("/"), runes("Eve"), tea.KeyMsg{Type: tea.KeyEnter})

	if n, _ := m.selected(); n.ID != "e" {
		t.Errorf("selected %q after search, want e", n.ID)
	}
	if m.Sess.View().Focused() != "e" {
		t.Errorf("focused %q", m.Sess.View().Focused())
	}
	if !strings.Contains(m.View(), "Eve") {
		t.Error("view does not show Eve")
	}

	m = press(m, runes("/"), runes("zzz"), tea.KeyMsg{Type: tea.KeyEnter})
	if m.message == "" {
		t.Error("a failed search should leave a message")
	}
}

func TestExploreViewport(t *testing.T) {
	m := NewExploreModel(context.Background(), loadHousehold(t))
	m = press(m, runes("l"), runes("+"))
	vp := m.Sess.View().Viewport
	if vp.K <= view.HomeScale {
		t.Errorf("zoom in: k = %v", vp.K)
	}
	m = press(m, runes("r"))
	vp = m.Sess.View().Viewport
	if vp.X != view.HomeX || vp.Y != view.HomeY || vp.K != view.HomeScale {
		t.Errorf("reset viewport = %+v", vp)
	}
}

func TestExploreExpandCollapseAll(t *testing.T) {
	m := NewExploreModel(context.Background(), loadHousehold(t))
	m = press(m, runes("e"))
	if len(m.Rows) != 6 {
		t.Errorf("expand all rows = %d, want 6", len(m.Rows))
	}
	m = press(m, runes("c"))
	if got := rowIDs(m); !slices.Equal(got, []string{"p", "a"}) {
		t.Errorf("collapse all rows = %v", got)
	}
}
