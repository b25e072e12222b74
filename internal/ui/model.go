// Package ui is the interactive terminal screen for a table engine: a
// column-aware grid with sort, hide, move, reset, search, and paging keys.
package ui

import (
	"fmt"
	"slices"
	"strings"

	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/go-logr/logr"

	"github.com/oakwood-commons/tblx/internal/formatter"
	uitable "github.com/oakwood-commons/tblx/internal/ui/table"
	tbl "github.com/oakwood-commons/tblx/pkg/table"
)

const (
	defaultWidth  = 80
	defaultHeight = 24

	// title, status, footer
	chromeLines = 3
)

// Options configures the screen.
type Options struct {
	Title    string
	Search   string
	Filter   func(tbl.Row) bool
	Page     int
	PageSize int
	NoColor  bool
	Logger   logr.Logger
}

// Model is the bubbletea model for the table screen.
type Model struct {
	engine *tbl.Engine
	grid   *uitable.Model
	input  textinput.Model
	log    logr.Logger

	title    string
	search   string
	filter   func(tbl.Row) bool
	page     int
	pageSize int
	current  tbl.View

	searching   bool
	picking     bool
	pickCursor  int
	helpVisible bool
	status      string
	statusErr   bool

	width   int
	height  int
	noColor bool
}

// NewModel builds the screen over engine.
func NewModel(engine *tbl.Engine, opts Options) *Model {
	in := textinput.New()
	in.Prompt = ""
	in.CharLimit = 200
	in.SetWidth(defaultWidth)
	in.SetValue(opts.Search)

	lgr := opts.Logger
	if lgr.GetSink() == nil {
		lgr = logr.Discard()
	}

	m := &Model{
		engine:   engine,
		grid:     uitable.New(),
		input:    in,
		log:      lgr.WithName("ui"),
		title:    opts.Title,
		search:   opts.Search,
		filter:   opts.Filter,
		page:     max(opts.Page, 1),
		pageSize: opts.PageSize,
		width:    defaultWidth,
		height:   defaultHeight,
		noColor:  opts.NoColor,
	}
	m.grid.SetNoColor(opts.NoColor)
	m.resize(defaultWidth, defaultHeight)
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Engine returns the engine the screen drives.
func (m *Model) Engine() *tbl.Engine {
	return m.engine
}

// Current returns the page on screen.
func (m *Model) Current() tbl.View {
	return m.current
}

// Status returns the last status message.
func (m *Model) Status() string {
	return m.status
}

// Searching reports whether the search input has focus.
func (m *Model) Searching() bool {
	return m.searching
}

// SelectedColumn returns the column under the column cursor.
func (m *Model) SelectedColumn() (tbl.ColumnConfig, bool) {
	return m.grid.SelectedColumn()
}

func (m *Model) resize(w, h int) {
	m.width, m.height = w, h
	m.input.SetWidth(max(w-2, 1))
	m.grid.SetSize(w, max(h-chromeLines, 3))
	m.refresh()
}

// refresh recomputes the page from the engine. A page past the end after a
// filter or hide is pulled back to the last page.
func (m *Model) refresh() {
	q := tbl.Query{Search: m.search, Filter: m.filter, Page: m.page, PageSize: m.pageSize}
	v := m.engine.View(q)
	if v.TotalPages > 0 && m.page > v.TotalPages {
		m.page = v.TotalPages
		q.Page = m.page
		v = m.engine.View(q)
	}
	m.current = v
	m.grid.SetView(v)
}

func (m *Model) setStatus(msg string, isErr bool) {
	m.status, m.statusErr = msg, isErr
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil
	case tea.KeyPressMsg:
		if m.searching {
			return m.updateSearch(msg)
		}
		if m.picking {
			return m.updatePicker(msg)
		}
		return m.handleKey(msg)
	}
	return m, nil
}

func (m *Model) updateSearch(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.searching = false
		m.input.Blur()
		m.setStatus(fmt.Sprintf("%d matching rows", m.current.Total), false)
		return m, nil
	case "esc":
		m.searching = false
		m.input.Blur()
		m.input.SetValue("")
		m.search = ""
		m.page = 1
		m.setStatus("search cleared", false)
		m.refresh()
		return m, nil
	case "ctrl+c":
		return m, tea.Quit
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if v := m.input.Value(); v != m.search {
		m.search = v
		m.page = 1
		m.refresh()
	}
	return m, cmd
}

// Picking reports whether the column picker is open.
func (m *Model) Picking() bool {
	return m.picking
}

// updatePicker drives the column picker, which lists every column in order,
// hidden ones included.
func (m *Model) updatePicker(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	keys := m.engine.ColumnOrder()
	switch msg.String() {
	case "up", "k":
		if m.pickCursor > 0 {
			m.pickCursor--
		}
	case "down", "j":
		if m.pickCursor < len(keys)-1 {
			m.pickCursor++
		}
	case "space", " ", "enter", "h":
		if m.pickCursor < len(keys) {
			m.toggleColumn(keys[m.pickCursor])
		}
	case "esc", "c", "q":
		m.picking = false
	case "ctrl+c":
		return m, tea.Quit
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	action := ActionForKey(msg.String())
	if m.helpVisible && action != ActionQuit {
		m.helpVisible = false
		return m, nil
	}

	switch action {
	case ActionQuit:
		return m, tea.Quit
	case ActionHelp:
		m.helpVisible = true
	case ActionPrevColumn:
		m.grid.MoveColumnCursor(-1)
	case ActionNextColumn:
		m.grid.MoveColumnCursor(1)
	case ActionSort:
		m.sortSelected()
	case ActionHide:
		m.hideSelected()
	case ActionColumns:
		m.picking = true
		m.pickCursor = 0
		if col, ok := m.grid.SelectedColumn(); ok {
			if i := slices.Index(m.engine.ColumnOrder(), col.Key); i >= 0 {
				m.pickCursor = i
			}
		}
	case ActionMoveLeft:
		m.moveSelected(-1)
	case ActionMoveRight:
		m.moveSelected(1)
	case ActionReset:
		m.engine.ResetToDefaults()
		m.page = 1
		m.refresh()
		m.setStatus("columns reset to defaults", false)
	case ActionSearch:
		m.searching = true
		m.input.SetValue(m.search)
		m.input.CursorEnd()
		return m, m.input.Focus()
	case ActionNextPage:
		if m.page < m.current.TotalPages {
			m.page++
			m.refresh()
		}
	case ActionPrevPage:
		if m.page > 1 {
			m.page--
			m.refresh()
		}
	case ActionNone:
		var cmd tea.Cmd
		m.grid, cmd = m.grid.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *Model) sortSelected() {
	col, ok := m.grid.SelectedColumn()
	if !ok {
		return
	}
	if !col.Sortable {
		m.setStatus(fmt.Sprintf("%s is not sortable", col.Title()), true)
		return
	}
	m.engine.HandleSort(col.Key)
	m.refresh()
	m.grid.SelectColumn(col.Key)

	st := m.engine.SortState()
	if st.Active() {
		m.setStatus(fmt.Sprintf("sorted by %s %s", col.Title(), st.Direction), false)
	} else {
		m.setStatus("sort cleared", false)
	}
	m.log.V(1).Info("sort changed", "column", col.Key, "direction", string(st.Direction))
}

func (m *Model) hideSelected() {
	if col, ok := m.grid.SelectedColumn(); ok {
		m.toggleColumn(col.Key)
	}
}

// toggleColumn flips one column's visibility, honoring its hideable flag and
// the one-visible-column floor.
func (m *Model) toggleColumn(key string) {
	col, ok := m.engine.Column(key)
	if !ok {
		return
	}
	wasVisible := m.engine.ColumnVisibility()[key]
	if !col.Hideable {
		verb := "hidden"
		if !wasVisible {
			verb = "shown"
		}
		m.setStatus(fmt.Sprintf("%s cannot be %s", col.Title(), verb), true)
		return
	}
	if !m.engine.ToggleColumnVisibility(key) {
		m.setStatus("at least one column must stay visible", true)
		return
	}
	m.refresh()
	if wasVisible {
		m.setStatus(fmt.Sprintf("hid %s (c lists all columns)", col.Title()), false)
	} else {
		m.setStatus(fmt.Sprintf("showed %s", col.Title()), false)
	}
	m.log.V(1).Info("column visibility changed", "column", key, "visible", !wasVisible)
}

func (m *Model) renderPicker() string {
	vis := m.engine.ColumnVisibility()
	var b strings.Builder
	b.WriteString("Columns (space toggles, esc closes)\n")
	for i, key := range m.engine.ColumnOrder() {
		col, _ := m.engine.Column(key)
		cursor, box := "  ", "[ ]"
		if i == m.pickCursor {
			cursor = "> "
		}
		if vis[key] {
			box = "[x]"
		}
		line := cursor + box + " " + col.Title()
		if !col.Hideable {
			line += " (fixed)"
		}
		b.WriteString(line + "\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func (m *Model) moveSelected(delta int) {
	col, ok := m.grid.SelectedColumn()
	if !ok {
		return
	}
	if !col.Draggable {
		m.setStatus(fmt.Sprintf("%s cannot be moved", col.Title()), true)
		return
	}
	target := m.grid.ColumnCursor() + delta
	cols := m.current.Columns
	if target < 0 || target >= len(cols) {
		return
	}
	if !m.engine.ReorderColumns(col.Key, cols[target].Key) {
		return
	}
	m.refresh()
	m.grid.SelectColumn(col.Key)
}

// View implements tea.Model.
func (m *Model) View() tea.View {
	v := tea.NewView(m.render())
	v.AltScreen = true
	return v
}

func (m *Model) render() string {
	titleStyle := lipgloss.NewStyle().Bold(true)
	statusStyle := lipgloss.NewStyle().Faint(true)
	errStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	if m.noColor {
		titleStyle, statusStyle, errStyle = lipgloss.NewStyle(), lipgloss.NewStyle(), lipgloss.NewStyle()
	}

	var b strings.Builder
	title := m.title
	if title == "" {
		title = "tblx"
	}
	if m.search != "" && !m.searching {
		title += fmt.Sprintf("  search: %q", m.search)
	}
	b.WriteString(titleStyle.Render(title) + "\n")

	if m.helpVisible {
		b.WriteString(HelpText(m.noColor) + "\n")
		return b.String()
	}

	if m.picking {
		b.WriteString(m.renderPicker() + "\n")
	} else {
		b.WriteString(m.grid.View() + "\n")
	}

	switch {
	case m.searching:
		b.WriteString("/" + m.input.View() + "\n")
	case m.statusErr:
		b.WriteString(errStyle.Render(m.status) + "\n")
	default:
		b.WriteString(statusStyle.Render(m.status) + "\n")
	}
	b.WriteString(statusStyle.Render(formatter.Summary(m.current) + "  ? help  q quit"))
	return b.String()
}
