package cmd

import (
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oakwood-commons/tblx/pkg/store"
	"github.com/oakwood-commons/tblx/pkg/table"
)

func TestParseMove(t *testing.T) {
	active, over, err := parseMove(" name : age ")
	require.NoError(t, err)
	assert.Equal(t, "name", active)
	assert.Equal(t, "age", over)

	for _, bad := range []string{"", "name", "name:", ":age"} {
		_, _, err := parseMove(bad)
		assert.Error(t, err, bad)
	}
}

func TestMatchColumns(t *testing.T) {
	keys := []string{"created_at", "updated_at", "name", "id"}

	got, err := matchColumns(keys, "*_at")
	require.NoError(t, err)
	assert.Equal(t, []string{"created_at", "updated_at"}, got)

	got, err = matchColumns(keys, "{id,name}")
	require.NoError(t, err)
	assert.Equal(t, []string{"name", "id"}, got)

	_, err = matchColumns(keys, "nothing*")
	assert.ErrorIs(t, err, errUnknownColumn)
}

func TestColumnOpsOrder(t *testing.T) {
	cols := []table.ColumnConfig{
		{Key: "a", Sortable: true, Hideable: true, Draggable: true},
		{Key: "b", Sortable: true, Hideable: true, Draggable: true},
		{Key: "c", Sortable: true, Hideable: true, Draggable: true},
	}
	e := table.New(nil, cols)
	e.HandleSort("c")
	e.ToggleColumnVisibility("c")

	ops := columnOps{
		reset: true,
		sorts: []string{"b"},
		hide:  []string{"a"},
		show:  []string{"a"},
		moves: []string{"c:a"},
	}
	require.NoError(t, ops.apply(e))

	assert.Equal(t, table.SortState{Column: "b", Direction: table.SortAscending}, e.SortState())
	assert.Equal(t, map[string]bool{"a": true, "b": true, "c": true}, e.ColumnVisibility())
	assert.Equal(t, []string{"c", "a", "b"}, e.ColumnOrder())
}

func TestColumnOpsToggleFloor(t *testing.T) {
	e := table.New(nil, []table.ColumnConfig{{Key: "only", Hideable: true}})
	err := columnOps{toggles: []string{"only"}}.apply(e)
	require.Error(t, err)
	assert.True(t, e.ColumnVisibility()["only"])
}

func TestColumnOpsFailureLeavesStorageUntouched(t *testing.T) {
	cols := []table.ColumnConfig{
		{Key: "a", Sortable: true, Hideable: true, Draggable: true},
		{Key: "b", Sortable: true, Hideable: true, Draggable: true},
	}
	st := store.NewMemory()
	e := table.New(nil, cols, table.WithStorage("t", st))

	ops := columnOps{toggles: []string{"a"}, moves: []string{"b:missing"}}
	err := ops.apply(e)
	require.ErrorIs(t, err, errUnknownColumn)

	assert.Equal(t, 0, st.Len())
	assert.Equal(t, map[string]bool{"a": true, "b": true}, e.ColumnVisibility())
	assert.Equal(t, []string{"a", "b"}, e.ColumnOrder())

	require.NoError(t, columnOps{toggles: []string{"a"}}.apply(e))
	assert.Equal(t, 1, st.Len())
	assert.False(t, e.ColumnVisibility()["a"])
}

func TestSetVisibilityErrorNamesDirection(t *testing.T) {
	cols := []table.ColumnConfig{
		{Key: "fixed", DefaultVisible: table.Visible(false)},
		{Key: "pinned"},
		{Key: "other", Hideable: true},
	}
	e := table.New(nil, cols)

	err := setVisibility(e, []string{"fixed"}, true)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `column "fixed" cannot be shown`)

	err = setVisibility(e, []string{"pinned"}, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `column "pinned" cannot be hidden`)
}

func TestDetectTerminalSize(t *testing.T) {
	orig := termGetSize
	t.Cleanup(func() { termGetSize = orig })

	termGetSize = func(int) (int, int, error) { return 132, 40, nil }
	w, h := detectTerminalSize()
	assert.Equal(t, 132, w)
	assert.Equal(t, 40, h)

	termGetSize = func(int) (int, int, error) { return 0, 0, errors.New("not a terminal") }
	t.Setenv("COLUMNS", "90")
	w, h = detectTerminalSize()
	assert.Equal(t, 90, w)
	assert.Equal(t, 0, h)

	t.Setenv("COLUMNS", "")
	w, _ = detectTerminalSize()
	assert.Equal(t, defaultFallbackTermWidth, w)
}

func TestTerminalDeviceNames(t *testing.T) {
	in, out := terminalDeviceNames("windows")
	assert.Equal(t, "CONIN$", in)
	assert.Equal(t, "CONOUT$", out)

	in, out = terminalDeviceNames("linux")
	assert.Equal(t, "/dev/tty", in)
	assert.Equal(t, in, out)
}

func TestProgramOptions(t *testing.T) {
	origPiped, origOpen := stdinIsPiped, openTerminalIOFn
	t.Cleanup(func() { stdinIsPiped, openTerminalIOFn = origPiped, origOpen })

	stdinIsPiped = func() bool { return false }
	opts, cleanup := programOptions()
	assert.Nil(t, opts)
	cleanup()

	stdinIsPiped = func() bool { return true }
	openTerminalIOFn = func() (*os.File, *os.File, error) { return nil, nil, errors.New("no tty") }
	opts, cleanup = programOptions()
	assert.Nil(t, opts)
	cleanup()

	r, w, err := os.Pipe()
	require.NoError(t, err)
	openTerminalIOFn = func() (*os.File, *os.File, error) { return r, w, nil }
	opts, cleanup = programOptions()
	assert.Len(t, opts, 4)
	cleanup()
}
