// Package formatter renders table views as aligned terminal text and exports
// them as CSV or XLSX.
package formatter

import (
	"fmt"
	"image/color"
	"os"
	"reflect"
	"strings"
	"time"

	"charm.land/lipgloss/v2"
	"github.com/goccy/go-json"
	"github.com/mattn/go-runewidth"
	"golang.org/x/term"

	"github.com/oakwood-commons/tblx/pkg/table"
)

const defaultTerminalWidth = 120

var (
	defaultHeaderFG  = lipgloss.Color("12")
	defaultHeaderBG  = lipgloss.Color("236")
	defaultRowNumFG  = lipgloss.Color("14")
	defaultValueFG   = lipgloss.Color("248")
	defaultSeparator = lipgloss.Color("240")

	headerStyle    lipgloss.Style
	rowNumStyle    lipgloss.Style
	valueStyle     lipgloss.Style
	separatorStyle lipgloss.Style
)

// TableColors controls the rendered colors. Nil fields fall back to the
// ANSI 256 defaults.
type TableColors struct {
	HeaderFG       color.Color
	HeaderBG       color.Color
	RowNumberColor color.Color
	ValueColor     color.Color
	SeparatorColor color.Color
}

func applyTableTheme(tc TableColors) {
	pick := func(c, def color.Color) color.Color {
		if c == nil {
			return def
		}
		return c
	}
	headerStyle = lipgloss.NewStyle().Bold(true).
		Foreground(pick(tc.HeaderFG, defaultHeaderFG)).
		Background(pick(tc.HeaderBG, defaultHeaderBG))
	rowNumStyle = lipgloss.NewStyle().Foreground(pick(tc.RowNumberColor, defaultRowNumFG))
	valueStyle = lipgloss.NewStyle().Foreground(pick(tc.ValueColor, defaultValueFG))
	separatorStyle = lipgloss.NewStyle().Foreground(pick(tc.SeparatorColor, defaultSeparator))
}

// SetTableTheme overrides the package table styles.
func SetTableTheme(tc TableColors) {
	applyTableTheme(tc)
}

//nolint:gochecknoinits // initialize default table theme for package consumers
func init() {
	applyTableTheme(TableColors{})
}

// Cell returns a single-line display string for a row value. Nested maps and
// slices render as compact JSON; times render as RFC 3339.
func Cell(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return flatten(t)
	case time.Time:
		return t.Format(time.RFC3339)
	case map[string]any, []any:
		if b, err := json.Marshal(t); err == nil {
			return string(b)
		}
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() { //nolint:exhaustive // only container kinds need JSON
	case reflect.Map, reflect.Slice, reflect.Array, reflect.Struct:
		if b, err := json.Marshal(v); err == nil {
			return string(b)
		}
	case reflect.Ptr:
		if rv.IsNil() {
			return ""
		}
		return Cell(rv.Elem().Interface())
	}
	return table.CellString(v)
}

// flatten keeps rows single-line by escaping control characters.
func flatten(s string) string {
	if !strings.ContainsAny(s, "\n\r\t") {
		return s
	}
	r := strings.NewReplacer("\r\n", `\n`, "\n", `\n`, "\r", `\r`, "\t", `\t`)
	return r.Replace(s)
}

// truncate shortens s to maxLen display cells, marking the cut with "...".
func truncate(s string, maxLen int) string {
	if maxLen <= 0 || lipgloss.Width(s) <= maxLen {
		return s
	}
	if maxLen < 3 {
		return runewidth.Truncate(s, maxLen, "")
	}
	return runewidth.Truncate(s, maxLen, "...")
}

// padRight left-aligns s within width display cells.
func padRight(s string, width int) string {
	w := lipgloss.Width(s)
	if w >= width {
		return truncate(s, width)
	}
	return s + strings.Repeat(" ", width-w)
}

// padLeft right-aligns s within width display cells.
func padLeft(s string, width int) string {
	w := lipgloss.Width(s)
	if w >= width {
		return truncate(s, width)
	}
	return strings.Repeat(" ", width-w) + s
}

// TerminalWidth reports the width of stdout, or a default when it is not a
// terminal.
func TerminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return defaultTerminalWidth
	}
	return width
}

// SortIndicator returns the header marker for a column under state.
func SortIndicator(state table.SortState, key string) string {
	if state.Column != key {
		return ""
	}
	switch state.Direction {
	case table.SortAscending:
		return " ▲"
	case table.SortDescending:
		return " ▼"
	default:
		return ""
	}
}

// HeaderTitle is the column label with its sort marker, if any.
func HeaderTitle(c table.ColumnConfig, state table.SortState) string {
	return c.Title() + SortIndicator(state, c.Key)
}

// Grid converts view rows into display strings in column order.
func Grid(v table.View) [][]string {
	out := make([][]string, len(v.Rows))
	for i, r := range v.Rows {
		line := make([]string, len(v.Columns))
		for j, c := range v.Columns {
			line[j] = Cell(r[c.Key])
		}
		out[i] = line
	}
	return out
}

func errorf(format string, args ...any) error {
	return fmt.Errorf("formatter: "+format, args...)
}
