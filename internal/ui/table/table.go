// Package table is the bubbles table component that draws one page of an
// engine view, with a column cursor on top of the row cursor.
package table

import (
	"fmt"
	"image/color"

	bubtable "charm.land/bubbles/v2/table"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/oakwood-commons/tblx/internal/formatter"
	tbl "github.com/oakwood-commons/tblx/pkg/table"
)

// Model renders a tbl.View through the bubbles table.
type Model struct {
	table  bubtable.Model
	styles bubtable.Styles
	view   tbl.View

	// selected column index into view.Columns
	col int

	width   int
	height  int
	focused bool
	noColor bool

	headerFG   color.Color
	headerBG   color.Color
	selectedFG color.Color
	selectedBG color.Color
}

// New creates an empty grid.
func New() *Model {
	t := bubtable.New(
		bubtable.WithFocused(true),
		bubtable.WithHeight(5),
	)

	s := bubtable.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderBottom(true).
		BorderTop(false).
		BorderLeft(false).
		BorderRight(false).
		Bold(true).
		Align(lipgloss.Left).
		PaddingLeft(0).
		PaddingRight(1)
	s.Selected = s.Selected.
		PaddingLeft(0).
		PaddingRight(0)
	s.Cell = lipgloss.NewStyle().
		Align(lipgloss.Left).
		PaddingLeft(0).
		PaddingRight(1)
	t.SetStyles(s)

	return &Model{
		table:   t,
		styles:  s,
		width:   80,
		height:  10,
		focused: true,
	}
}

// SetView replaces the displayed page. The column cursor is clamped to the
// new column set, and the row cursor to the new rows.
func (m *Model) SetView(v tbl.View) {
	m.view = v
	m.col = clamp(m.col, len(v.Columns))
	m.layout()
}

// Data returns the page currently displayed.
func (m *Model) Data() tbl.View {
	return m.view
}

func (m *Model) layout() {
	widths := formatter.ColumnWidths(m.view, m.width-len(m.view.Columns))
	cols := make([]bubtable.Column, len(m.view.Columns))
	for i, c := range m.view.Columns {
		title := formatter.HeaderTitle(c, m.view.SortState)
		if i == m.col {
			title = "[" + title + "]"
		}
		w := widths[i]
		if lw := lipgloss.Width(title); lw > w {
			w = lw
		}
		cols[i] = bubtable.Column{Title: title, Width: w}
	}

	rows := make([]bubtable.Row, len(m.view.Rows))
	for i, r := range formatter.Grid(m.view) {
		rows[i] = bubtable.Row(r)
	}

	// Rows must be cleared before shrinking columns so bubbles never renders
	// a row wider than the column set.
	m.table.SetRows(nil)
	m.table.SetColumns(cols)
	m.table.SetRows(rows)
	if c := m.table.Cursor(); c >= len(rows) && len(rows) > 0 {
		m.table.SetCursor(len(rows) - 1)
	}
	m.applyColorScheme()
}

// SelectedColumn returns the column under the column cursor.
func (m *Model) SelectedColumn() (tbl.ColumnConfig, bool) {
	if m.col < 0 || m.col >= len(m.view.Columns) {
		return tbl.ColumnConfig{}, false
	}
	return m.view.Columns[m.col], true
}

// SelectColumn moves the column cursor to key if it is displayed.
func (m *Model) SelectColumn(key string) bool {
	for i, c := range m.view.Columns {
		if c.Key == key {
			m.col = i
			m.layout()
			return true
		}
	}
	return false
}

// MoveColumnCursor shifts the column cursor by delta, stopping at the edges.
func (m *Model) MoveColumnCursor(delta int) {
	m.col = clamp(m.col+delta, len(m.view.Columns))
	m.layout()
}

// ColumnCursor returns the column cursor index.
func (m *Model) ColumnCursor() int {
	return m.col
}

// Cursor returns the row cursor position.
func (m *Model) Cursor() int {
	return m.table.Cursor()
}

// SetCursor sets the row cursor position.
func (m *Model) SetCursor(pos int) {
	m.table.SetCursor(pos)
}

// SelectedRow returns the row under the cursor, or nil when the page is empty.
func (m *Model) SelectedRow() tbl.Row {
	c := m.Cursor()
	if c < 0 || c >= len(m.view.Rows) {
		return nil
	}
	return m.view.Rows[c]
}

// SetSize sets the grid dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.table.SetHeight(height)
	m.table.SetWidth(width)
	m.layout()
}

// Focus sets the grid focus state.
func (m *Model) Focus() {
	m.focused = true
	m.table.Focus()
}

// Blur removes focus from the grid.
func (m *Model) Blur() {
	m.focused = false
	m.table.Blur()
}

// Focused returns true if the grid has focus.
func (m *Model) Focused() bool {
	return m.focused
}

// SetNoColor enables/disables color output.
func (m *Model) SetNoColor(noColor bool) {
	m.noColor = noColor
	m.applyColorScheme()
}

// SetColors sets custom theme colors.
func (m *Model) SetColors(headerFG, headerBG, selectedFG, selectedBG color.Color) {
	m.headerFG = headerFG
	m.headerBG = headerBG
	m.selectedFG = selectedFG
	m.selectedBG = selectedBG
	m.applyColorScheme()
}

func (m *Model) applyColorScheme() {
	s := m.styles
	if m.noColor {
		s.Header = s.Header.UnsetForeground().UnsetBackground()
		s.Selected = s.Selected.UnsetForeground().UnsetBackground().Reverse(true)
		s.Cell = s.Cell.UnsetForeground().UnsetBackground()
	} else {
		if m.headerFG != nil {
			s.Header = s.Header.Foreground(m.headerFG)
		}
		if m.headerBG != nil {
			s.Header = s.Header.Background(m.headerBG)
		}
		if m.selectedFG != nil {
			s.Selected = s.Selected.Foreground(m.selectedFG)
		}
		if m.selectedBG != nil {
			s.Selected = s.Selected.Background(m.selectedBG)
		}
	}
	m.table.SetStyles(s)
	m.styles = s
}

// Update forwards row navigation to the bubbles table.
func (m *Model) Update(msg tea.Msg) (*Model, tea.Cmd) {
	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// View renders the grid.
func (m *Model) View() string {
	if len(m.view.Columns) == 0 {
		return "no visible columns"
	}
	return m.table.View()
}

// Height returns the rendered height including the header.
func (m *Model) Height() int {
	return lipgloss.Height(m.View())
}

// String returns a debugging summary.
func (m *Model) String() string {
	return fmt.Sprintf("Grid[rows=%d, cols=%d, cursor=%d, col=%d]",
		len(m.view.Rows), len(m.view.Columns), m.Cursor(), m.col)
}

func clamp(i, n int) int {
	if n == 0 || i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}
