package cli

import (
	"context"
	"fmt"
	"slices"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/kintree/pkg/family"
	"github.com/matzehuels/kintree/pkg/pipeline"
	"github.com/matzehuels/kintree/pkg/render"
)

// Explorer styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
	listFocusStyle    = lipgloss.NewStyle().Bold(true).Foreground(colorYellow)
)

// Explorer key steps.
const (
	panStep  = 40.0
	zoomStep = 1.2
)

// =============================================================================
// ExploreModel - Interactive tree navigation
// =============================================================================

// treeRow is one visible node in the outline, in drawing order.
type treeRow struct {
	node   render.Node
	indent int
}

// ExploreModel is the bubbletea model for navigating a family tree. Every
// key that changes the view re-lays out the session; the outline mirrors
// the resulting layout.
type ExploreModel struct {
	ctx  context.Context
	Sess *pipeline.Session

	Rows   []treeRow
	Cursor int
	Height int
	Offset int

	searching bool
	query     string
	message   string
}

// NewExploreModel creates an explorer over the current view of sess.
func NewExploreModel(ctx context.Context, sess *pipeline.Session) ExploreModel {
	m := ExploreModel{ctx: ctx, Sess: sess, Height: 20}
	m.refresh()
	if f := sess.View().Focused(); f != "" {
		m.moveTo(f)
	}
	return m
}

func (m ExploreModel) Init() tea.Cmd {
	return nil
}

func (m ExploreModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.searching {
			return m.updateSearch(msg)
		}
		m.message = ""
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			m.move(-1)
		case "down", "j":
			m.move(1)
		case "enter", " ":
			m.toggle()
		case "f":
			m.focus()
		case "e":
			m.Sess.ExpandAll(m.ctx)
			m.refresh()
		case "c":
			m.Sess.CollapseAll(m.ctx)
			m.refresh()
		case "r":
			m.Sess.ResetView()
			m.Sess.ClearFocus()
			m.refresh()
		case "left", "h":
			m.Sess.View().Viewport.Pan(panStep, 0)
		case "right", "l":
			m.Sess.View().Viewport.Pan(-panStep, 0)
		case "shift+up", "K":
			m.Sess.View().Viewport.Pan(0, panStep)
		case "shift+down", "J":
			m.Sess.View().Viewport.Pan(0, -panStep)
		case "+", "=":
			m.zoom(zoomStep)
		case "-":
			m.zoom(1 / zoomStep)
		case "/":
			m.searching = true
			m.query = ""
		}
	case tea.WindowSizeMsg:
		m.Height = msg.Height - 8
		if m.Height < 5 {
			m.Height = 5
		}
		m.Sess.View().Viewport.Resize(float64(msg.Width), float64(msg.Height))
		m.scroll()
	}
	return m, nil
}

func (m ExploreModel) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc, tea.KeyCtrlC:
		m.searching = false
	case tea.KeyEnter:
		m.searching = false
		p, err := m.Sess.SearchFocus(m.ctx, m.query)
		if err != nil {
			m.message = err.Error()
			return m, nil
		}
		m.refresh()
		m.moveTo(p.ID)
		m.message = "found " + p.DisplayName()
	case tea.KeyBackspace:
		if m.query != "" {
			r := []rune(m.query)
			m.query = string(r[:len(r)-1])
		}
	case tea.KeyRunes, tea.KeySpace:
		m.query += string(msg.Runes)
	}
	return m, nil
}

func (m *ExploreModel) selected() (render.Node, bool) {
	if m.Cursor < 0 || m.Cursor >= len(m.Rows) {
		return render.Node{}, false
	}
	return m.Rows[m.Cursor].node, true
}

func (m *ExploreModel) toggle() {
	n, ok := m.selected()
	if !ok {
		return
	}
	if _, err := m.Sess.Toggle(m.ctx, n.ID); err != nil {
		m.message = err.Error()
		return
	}
	m.refresh()
	m.moveTo(n.ID)
}

func (m *ExploreModel) focus() {
	n, ok := m.selected()
	if !ok {
		return
	}
	if n.IsUnion() {
		m.message = "select a person to focus"
		return
	}
	opened, err := m.Sess.Focus(m.ctx, n.ID)
	if err != nil {
		m.message = err.Error()
		return
	}
	m.refresh()
	m.moveTo(n.ID)
	if len(opened) > 0 {
		m.message = fmt.Sprintf("opened %d branch(es)", len(opened))
	}
}

// zoom scales around the middle of the canvas.
func (m *ExploreModel) zoom(factor float64) {
	vp := &m.Sess.View().Viewport
	vp.Zoom(factor, vp.Width/2, vp.Height/2)
}

func (m *ExploreModel) move(delta int) {
	m.Cursor = max(0, min(len(m.Rows)-1, m.Cursor+delta))
	m.scroll()
}

func (m *ExploreModel) moveTo(id string) {
	for i, r := range m.Rows {
		if r.node.ID == id {
			m.Cursor = i
			break
		}
	}
	m.scroll()
}

func (m *ExploreModel) scroll() {
	if m.Cursor < m.Offset {
		m.Offset = m.Cursor
	}
	if m.Cursor >= m.Offset+m.Height {
		m.Offset = m.Cursor - m.Height + 1
	}
}

// refresh rebuilds the outline from the session's current layout.
func (m *ExploreModel) refresh() {
	m.Rows = outline(m.Sess.Contract())
	if m.Cursor >= len(m.Rows) {
		m.Cursor = max(0, len(m.Rows)-1)
	}
	m.scroll()
}

// outline orders the nodes of l depth-first, trees and siblings left to
// right, so the list reads like the drawing.
func outline(l render.Layout) []treeRow {
	byID := make(map[string]render.Node, len(l.Nodes))
	hasParent := make(map[string]bool, len(l.Nodes))
	children := make(map[string][]string)
	for _, n := range l.Nodes {
		byID[n.ID] = n
	}
	for _, e := range l.Edges {
		children[e.From] = append(children[e.From], e.To)
		hasParent[e.To] = true
	}
	leftToRight := func(ids []string) {
		slices.SortStableFunc(ids, func(a, b string) int {
			switch na, nb := byID[a], byID[b]; {
			case na.X < nb.X:
				return -1
			case na.X > nb.X:
				return 1
			default:
				return 0
			}
		})
	}

	var roots []string
	for _, n := range l.Nodes {
		if !hasParent[n.ID] {
			roots = append(roots, n.ID)
		}
	}
	leftToRight(roots)

	rows := make([]treeRow, 0, len(l.Nodes))
	seen := make(map[string]bool, len(l.Nodes))
	var walk func(id string, indent int)
	walk = func(id string, indent int) {
		if seen[id] {
			return
		}
		seen[id] = true
		rows = append(rows, treeRow{node: byID[id], indent: indent})
		kids := children[id]
		leftToRight(kids)
		for _, k := range kids {
			walk(k, indent+1)
		}
	}
	for _, r := range roots {
		walk(r, 0)
	}
	return rows
}

func (m ExploreModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Family Tree"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ move  ⏎ toggle  f focus  / search  e/c expand/collapse all  ←/→ pan  +/- zoom  r reset  q quit"))
	b.WriteString("\n\n")

	end := min(m.Offset+m.Height, len(m.Rows))
	focused := m.Sess.View().Focused()
	for i := m.Offset; i < end; i++ {
		b.WriteString(m.renderRow(m.Rows[i], i == m.Cursor, m.Rows[i].node.ID == focused))
		b.WriteString("\n")
	}
	if len(m.Rows) == 0 {
		b.WriteString(listDimStyle.Render("  (no one to show)"))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	vp := m.Sess.View().Viewport
	status := fmt.Sprintf("  [%d/%d]  view %.0f,%.0f ×%.2f", m.Cursor+1, len(m.Rows), vp.X, vp.Y, vp.K)
	if n, ok := m.selected(); ok {
		status += fmt.Sprintf("  %s at %.0f,%.0f gen %d", n.ID, n.X, n.Y, n.Generation)
	}
	b.WriteString(listDimStyle.Render(status))
	b.WriteString("\n")

	switch {
	case m.searching:
		b.WriteString(StyleHighlight.Render("/") + " " + m.query + listDimStyle.Render("▏"))
	case m.message != "":
		b.WriteString(StyleWarning.Render(m.message))
	}
	return b.String()
}

func (m ExploreModel) renderRow(r treeRow, current, focused bool) string {
	n := r.node
	marker := " "
	switch {
	case n.Collapsed:
		marker = "▸"
	case n.Expandable:
		marker = "▾"
	}

	cursor := "  "
	if current {
		cursor = "▸ "
	}

	years := ""
	if n.Person != nil {
		years = n.Person.Years
	} else if len(n.Partners) == 2 {
		years = n.Partners[0].Years + " & " + n.Partners[1].Years
	}

	line := fmt.Sprintf("%s%s%s %s", cursor, strings.Repeat("  ", r.indent), marker, n.Label())
	style := listNormalStyle
	switch {
	case current:
		style = listSelectedStyle
	case focused:
		style = listFocusStyle
	case n.Person != nil && n.Person.Status == string(family.StatusDeceased):
		style = listDimStyle
	}
	return style.Render(line) + "  " + listDimStyle.Render(years)
}
