package formatter

import (
	"fmt"
	"sort"
	"strings"

	"charm.land/lipgloss/v2"
	"github.com/dustin/go-humanize"

	"github.com/oakwood-commons/tblx/pkg/table"
)

const (
	sepWidth    = 2
	minColWidth = 3
	maxColWidth = 40
)

// RenderOptions configures text rendering of a view.
type RenderOptions struct {
	// NoColor disables styling.
	NoColor bool

	// TotalWidth is the available width. If 0, uses terminal width.
	TotalWidth int

	// RowNumbers adds a leading "#" column numbered across pages.
	RowNumbers bool

	// Footer appends the Summary line.
	Footer bool

	// EmptyMessage is printed instead of a body when the view has no rows.
	EmptyMessage string
}

// Render lays out v as an aligned table: header, rule, one line per row.
func Render(v table.View, opts RenderOptions) string {
	if len(v.Columns) == 0 {
		return "no visible columns\n"
	}

	totalWidth := opts.TotalWidth
	if totalWidth <= 0 {
		totalWidth = TerminalWidth()
	}

	headers := make([]string, len(v.Columns))
	for i, c := range v.Columns {
		headers[i] = HeaderTitle(c, v.SortState)
	}
	grid := Grid(v)
	hints := HintsFor(v)

	offset := 0
	if v.PageSize > 0 {
		offset = (v.Page - 1) * v.PageSize
	}
	rowNumWidth := 0
	if opts.RowNumbers {
		rowNumWidth = len(fmt.Sprintf("%d", offset+len(grid))) + 1
	}
	available := totalWidth
	if opts.RowNumbers {
		available -= rowNumWidth + sepWidth
	}
	widths := calculateColumnWidths(headers, grid, available, hints)

	var b strings.Builder
	b.WriteString(renderHeader(headers, widths, rowNumWidth, opts) + "\n")

	ruleWidth := 0
	for i, w := range widths {
		ruleWidth += w
		if i < len(widths)-1 {
			ruleWidth += sepWidth
		}
	}
	if opts.RowNumbers {
		ruleWidth += rowNumWidth + sepWidth
	}
	rule := strings.Repeat("─", ruleWidth)
	if !opts.NoColor {
		rule = separatorStyle.Render(rule)
	}
	b.WriteString(rule + "\n")

	if len(grid) == 0 && opts.EmptyMessage != "" {
		b.WriteString(opts.EmptyMessage + "\n")
	}
	for i, row := range grid {
		b.WriteString(renderDataRow(offset+i+1, row, widths, rowNumWidth, hints, opts) + "\n")
	}

	if opts.Footer {
		b.WriteString(Summary(v) + "\n")
	}
	return b.String()
}

// Summary describes the visible window, e.g. "Showing 26-50 of 1,234 · page 2/50".
func Summary(v table.View) string {
	if v.Total == 0 {
		return "No rows"
	}
	if v.PageSize <= 0 {
		return fmt.Sprintf("Showing %s rows", humanize.Comma(int64(v.Total)))
	}
	first := (v.Page-1)*v.PageSize + 1
	last := first + len(v.Rows) - 1
	if len(v.Rows) == 0 {
		return fmt.Sprintf("No rows on page %d of %d", v.Page, max(v.TotalPages, 1))
	}
	return fmt.Sprintf("Showing %s-%s of %s · page %d/%d",
		humanize.Comma(int64(first)), humanize.Comma(int64(last)),
		humanize.Comma(int64(v.Total)), v.Page, max(v.TotalPages, 1))
}

func calculateColumnWidths(headers []string, rows [][]string, availableWidth int, hints []ColumnHint) []int {
	numCols := len(headers)
	widths := make([]int, numCols)
	for i, h := range headers {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range rows {
		for i, val := range row {
			if i < numCols {
				if w := lipgloss.Width(val); w > widths[i] {
					widths[i] = w
				}
			}
		}
	}
	for i := range widths {
		if i < len(hints) && hints[i].MaxWidth > 0 && widths[i] > hints[i].MaxWidth {
			widths[i] = max(hints[i].MaxWidth, minColWidth)
		}
	}

	usable := availableWidth - (numCols-1)*sepWidth
	total := 0
	for _, w := range widths {
		total += w
	}
	if total <= usable || usable <= 0 {
		return widths
	}

	// Long free-text columns give way first, then priority decides.
	for i := range widths {
		if widths[i] > maxColWidth {
			widths[i] = maxColWidth
		}
	}
	return shrinkByPriority(widths, usable, hints)
}

// shrinkByPriority reduces widths to fit usableWidth, taking from the
// lowest-priority columns first. No column drops below minColWidth.
func shrinkByPriority(widths []int, usableWidth int, hints []ColumnHint) []int {
	total := 0
	for _, w := range widths {
		total += w
	}
	excess := total - usableWidth
	if excess <= 0 {
		return widths
	}

	order := make([]int, len(widths))
	for i := range order {
		order[i] = i
	}
	priority := func(i int) int {
		if i < len(hints) {
			return hints[i].Priority
		}
		return 0
	}
	sort.SliceStable(order, func(a, b int) bool {
		return priority(order[a]) < priority(order[b])
	})

	for _, idx := range order {
		if excess <= 0 {
			break
		}
		shrinkable := widths[idx] - minColWidth
		if shrinkable <= 0 {
			continue
		}
		shrink := min(shrinkable, excess)
		widths[idx] -= shrink
		excess -= shrink
	}
	return widths
}

func renderHeader(headers []string, widths []int, rowNumWidth int, opts RenderOptions) string {
	parts := make([]string, 0, len(headers)+1)
	if opts.RowNumbers {
		parts = append(parts, styled(headerStyle, padRight("#", rowNumWidth), opts.NoColor))
	}
	for i, h := range headers {
		parts = append(parts, styled(headerStyle, padRight(truncate(h, widths[i]), widths[i]), opts.NoColor))
	}
	return strings.Join(parts, strings.Repeat(" ", sepWidth))
}

func renderDataRow(num int, values []string, widths []int, rowNumWidth int, hints []ColumnHint, opts RenderOptions) string {
	parts := make([]string, 0, len(values)+1)
	if opts.RowNumbers {
		parts = append(parts, styled(rowNumStyle, padRight(fmt.Sprintf("%d", num), rowNumWidth), opts.NoColor))
	}
	for i, val := range values {
		w := widths[i]
		var cell string
		if i < len(hints) && hints[i].Align == "right" {
			cell = padLeft(truncate(val, w), w)
		} else {
			cell = padRight(truncate(val, w), w)
		}
		parts = append(parts, styled(valueStyle, cell, opts.NoColor))
	}
	return strings.TrimRight(strings.Join(parts, strings.Repeat(" ", sepWidth)), " ")
}

func styled(s lipgloss.Style, text string, noColor bool) string {
	if noColor {
		return text
	}
	return s.Render(text)
}

// ColumnWidths returns the cell width Render would give each column of v
// within availableWidth.
func ColumnWidths(v table.View, availableWidth int) []int {
	headers := make([]string, len(v.Columns))
	for i, c := range v.Columns {
		headers[i] = HeaderTitle(c, v.SortState)
	}
	return calculateColumnWidths(headers, Grid(v), availableWidth, HintsFor(v))
}
