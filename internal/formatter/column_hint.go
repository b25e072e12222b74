package formatter

import (
	"strconv"
	"strings"

	"github.com/oakwood-commons/tblx/pkg/table"
)

// ColumnHint provides display hints for one column.
type ColumnHint struct {
	// MaxWidth caps the column width in cells. 0 = no cap.
	MaxWidth int

	// Priority controls column importance when shrinking.
	// Higher values resist shrinking; lower values shrink first.
	Priority int

	// Align is "right" or "left" (default).
	Align string
}

// HintsFor derives hints from column configs. Width accepts a bare number or
// a "ch"/"px" suffixed one; px values are divided by 8 to approximate cells.
// Earlier columns get higher priority so the leading columns stay readable.
// Columns whose visible values are all numeric are right-aligned.
func HintsFor(v table.View) []ColumnHint {
	hints := make([]ColumnHint, len(v.Columns))
	for i, c := range v.Columns {
		hints[i] = ColumnHint{
			MaxWidth: parseWidth(c.Width),
			Priority: len(v.Columns) - i,
		}
		if numericColumn(v.Rows, c.Key) {
			hints[i].Align = "right"
		}
	}
	return hints
}

func parseWidth(w string) int {
	w = strings.TrimSpace(strings.ToLower(w))
	div := 1
	switch {
	case strings.HasSuffix(w, "px"):
		w, div = strings.TrimSuffix(w, "px"), 8
	case strings.HasSuffix(w, "ch"):
		w = strings.TrimSuffix(w, "ch")
	}
	n, err := strconv.Atoi(strings.TrimSpace(w))
	if err != nil || n <= 0 {
		return 0
	}
	return max(n/div, 1)
}

func numericColumn(rows []table.Row, key string) bool {
	seen := false
	for _, r := range rows {
		switch r[key].(type) {
		case nil:
		case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
			seen = true
		default:
			return false
		}
	}
	return seen
}
