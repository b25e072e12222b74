package table

import (
	"fmt"
	"strings"

	"github.com/oakwood-commons/tblx/internal/limiter"
)

// Query narrows the sorted rows for display: client-side search, an optional
// caller predicate, then paging.
type Query struct {
	// Search matches rows whose values contain the term, case-insensitively.
	Search string
	// DisableClientSearch ignores Search, for callers that search server-side.
	DisableClientSearch bool
	// Filter, when set, keeps only rows it returns true for.
	Filter func(Row) bool
	// Page is 1-based; PageSize <= 0 disables paging.
	Page     int
	PageSize int
}

// View is one page of the table ready for rendering.
type View struct {
	Rows       []Row
	Columns    []ColumnConfig
	SortState  SortState
	Total      int // rows matching the query before paging
	Page       int
	PageSize   int
	TotalPages int
}

// View applies q to the sorted rows.
func (e *Engine) View(q Query) View {
	rows := e.SortedData()
	if !q.DisableClientSearch {
		rows = SearchRows(rows, q.Search)
	}
	if q.Filter != nil {
		kept := make([]Row, 0, len(rows))
		for _, r := range rows {
			if q.Filter(r) {
				kept = append(kept, r)
			}
		}
		rows = kept
	}

	pg := limiter.Config{Page: q.Page, PageSize: q.PageSize}
	return View{
		Rows:       limiter.Apply(pg, rows),
		Columns:    e.VisibleColumns(),
		SortState:  e.sort,
		Total:      len(rows),
		Page:       pg.CurrentPage(),
		PageSize:   q.PageSize,
		TotalPages: pg.TotalPages(len(rows)),
	}
}

// SearchRows keeps the rows where any value's string form contains term,
// ignoring case. An empty term returns rows unchanged.
func SearchRows(rows []Row, term string) []Row {
	if term == "" {
		return rows
	}
	needle := strings.ToLower(term)
	out := make([]Row, 0, len(rows))
	for _, r := range rows {
		for _, v := range r {
			if strings.Contains(strings.ToLower(CellString(v)), needle) {
				out = append(out, r)
				break
			}
		}
	}
	return out
}

// CellString renders a cell value for display and matching. Nil renders empty.
func CellString(v any) string {
	if isNil(v) {
		return ""
	}
	return fmt.Sprint(v)
}

// SelectionState summarises which rows of a page are selected.
type SelectionState struct {
	Selected      int
	Selectable    int
	AllSelected   bool
	Indeterminate bool
}

// Selection computes the select-all checkbox state for rows. Rows for which
// disabled returns true cannot be selected and do not count toward
// AllSelected. disabled may be nil.
func Selection(rows []Row, selected []string, id func(Row) string, disabled func(Row) bool) SelectionState {
	set := make(map[string]struct{}, len(selected))
	for _, s := range selected {
		set[s] = struct{}{}
	}

	var st SelectionState
	st.Selected = len(selected)
	all := true
	for _, r := range rows {
		if disabled != nil && disabled(r) {
			continue
		}
		st.Selectable++
		if _, ok := set[id(r)]; !ok {
			all = false
		}
	}
	st.AllSelected = st.Selectable > 0 && all
	st.Indeterminate = st.Selected > 0 && !st.AllSelected
	return st
}

// IDField returns an id function reading key from each row.
func IDField(key string) func(Row) string {
	return func(r Row) string {
		return CellString(r[key])
	}
}
