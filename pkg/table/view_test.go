package table

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildingRows() []Row {
	return []Row{
		{"id": 1, "name": "North Tower", "city": "Pune"},
		{"id": 2, "name": "South Annex", "city": "Mumbai"},
		{"id": 3, "name": "East Wing", "city": "pune"},
		{"id": 4, "name": "West Block", "city": nil},
		{"id": 5, "name": "Central Hub", "city": "Delhi"},
	}
}

func buildingColumns() []ColumnConfig {
	return []ColumnConfig{
		{Key: "id", Sortable: true},
		{Key: "name", Sortable: true},
		{Key: "city", Sortable: true},
	}
}

func ids(rows []Row) []any {
	out := make([]any, len(rows))
	for i, r := range rows {
		out[i] = r["id"]
	}
	return out
}

func TestSearchRows(t *testing.T) {
	rows := buildingRows()
	assert.Equal(t, []any{1, 3}, ids(SearchRows(rows, "PUNE")))
	assert.Equal(t, []any{4}, ids(SearchRows(rows, "west")))
	assert.Equal(t, []any{5}, ids(SearchRows(rows, "5")))
	assert.Len(t, SearchRows(rows, ""), 5)
	assert.Empty(t, SearchRows(rows, "nowhere"))
}

func TestViewSearchAfterSort(t *testing.T) {
	e := New(buildingRows(), buildingColumns())
	e.HandleSort("name")
	v := e.View(Query{Search: "ST"})
	assert.Equal(t, 2, v.Total)
	assert.Equal(t, []any{3, 4}, ids(v.Rows))
}

func TestViewDisableClientSearch(t *testing.T) {
	e := New(buildingRows(), buildingColumns())
	v := e.View(Query{Search: "pune", DisableClientSearch: true})
	assert.Equal(t, 5, v.Total)
}

func TestViewFilter(t *testing.T) {
	e := New(buildingRows(), buildingColumns())
	v := e.View(Query{Filter: func(r Row) bool { return r["id"].(int)%2 == 0 }})
	assert.Equal(t, []any{2, 4}, ids(v.Rows))
}

func TestViewPaging(t *testing.T) {
	e := New(buildingRows(), buildingColumns())
	e.HandleSort("id")
	e.HandleSort("id")

	v := e.View(Query{Page: 2, PageSize: 2})
	assert.Equal(t, 5, v.Total)
	assert.Equal(t, 3, v.TotalPages)
	assert.Equal(t, 2, v.Page)
	assert.Equal(t, []any{3, 2}, ids(v.Rows))
	assert.Equal(t, SortState{Column: "id", Direction: SortDescending}, v.SortState)

	v = e.View(Query{Page: 9, PageSize: 2})
	assert.Empty(t, v.Rows)

	v = e.View(Query{})
	assert.Equal(t, 1, v.TotalPages)
	assert.Equal(t, 1, v.Page)
	assert.Len(t, v.Rows, 5)
}

func TestViewColumns(t *testing.T) {
	e := New(nil, sampleColumns())
	v := e.View(Query{})
	assert.Equal(t, []string{"id", "name"}, keysOf(v.Columns))
	assert.Equal(t, 0, v.Total)
}

func TestCellString(t *testing.T) {
	assert.Equal(t, "", CellString(nil))
	assert.Equal(t, "3", CellString(3))
	assert.Equal(t, "true", CellString(true))
}

func TestSelection(t *testing.T) {
	rows := buildingRows()
	id := IDField("id")

	st := Selection(rows, nil, id, nil)
	assert.False(t, st.AllSelected)
	assert.False(t, st.Indeterminate)
	assert.Equal(t, 5, st.Selectable)

	st = Selection(rows, []string{"1", "2"}, id, nil)
	assert.False(t, st.AllSelected)
	assert.True(t, st.Indeterminate)

	st = Selection(rows, []string{"1", "2", "3", "4", "5"}, id, nil)
	assert.True(t, st.AllSelected)
	assert.False(t, st.Indeterminate)

	disabled := func(r Row) bool { return r["city"] == nil }
	st = Selection(rows, []string{"1", "2", "3", "5"}, id, disabled)
	require.Equal(t, 4, st.Selectable)
	assert.True(t, st.AllSelected)

	st = Selection(nil, nil, id, nil)
	assert.False(t, st.AllSelected)
}
