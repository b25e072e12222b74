package table

import (
	"maps"
	"slices"

	"github.com/go-logr/logr"
)

// Engine owns the sort state, column visibility, and column order of one table
// instance and derives the sorted view of its rows. It is not safe for
// concurrent use; each table instance owns its engine. Two engines sharing a
// storage key overwrite each other's preferences.
type Engine struct {
	data    []Row
	columns []ColumnConfig

	defaultSort SortState
	sort        SortState
	visibility  map[string]bool
	order       []string

	// initialVisibility is accepted for callers that pass it but never seeds
	// state: computed and persisted visibility take precedence.
	initialVisibility map[string]bool

	prefs prefs
	log   logr.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithDefaultSort sets the sort state in effect after construction.
// ResetToDefaults clears the sort rather than restoring it.
func WithDefaultSort(s SortState) Option {
	return func(e *Engine) {
		e.defaultSort = s
	}
}

// WithStorage enables persistence of visibility and order under storageKey.
// An empty key or nil storage disables persistence.
func WithStorage(storageKey string, s Storage) Option {
	return func(e *Engine) {
		e.prefs.key = storageKey
		e.prefs.storage = s
	}
}

// WithInitialColumnVisibility records a caller-supplied visibility map.
// It does not override computed defaults or persisted preferences.
func WithInitialColumnVisibility(vis map[string]bool) Option {
	return func(e *Engine) {
		e.initialVisibility = maps.Clone(vis)
	}
}

// WithLogger sets the logger used to report discarded persisted state and
// storage failures.
func WithLogger(lgr logr.Logger) Option {
	return func(e *Engine) {
		e.log = lgr
	}
}

// New creates an Engine for data and columns. Visibility and order are read
// from storage when configured, falling back to the column defaults.
func New(data []Row, columns []ColumnConfig, opts ...Option) *Engine {
	e := &Engine{
		data:    data,
		columns: slices.Clone(columns),
		log:     logr.Discard(),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.prefs.log = e.log.WithName("table").WithValues("storageKey", e.prefs.key)

	e.sort = e.defaultSort
	e.visibility = e.prefs.loadVisibility(e.columns)
	e.order = e.prefs.loadOrder(e.columns)
	return e
}

// SetData replaces the rows. Sort, visibility and order are kept.
func (e *Engine) SetData(data []Row) {
	e.data = data
}

// SetColumns replaces the column configuration. Visibility is recomputed from
// each column's DefaultVisible, discarding in-session toggles; order and
// persisted entries are left as they are.
func (e *Engine) SetColumns(columns []ColumnConfig) {
	e.columns = slices.Clone(columns)
	e.visibility = DefaultVisibility(e.columns)
}

// HandleSort cycles the sort on key: asc, desc, cleared. Activating another
// column starts it at asc. Unknown and non-sortable columns are ignored.
func (e *Engine) HandleSort(key string) {
	col, ok := findColumn(e.columns, key)
	if !ok || !col.Sortable {
		return
	}
	e.sort = e.sort.next(key)
}

// ToggleColumnVisibility flips the visibility of key and persists it. It
// reports false, leaving state unchanged, for unknown keys and for a flip that
// would hide the last visible column.
func (e *Engine) ToggleColumnVisibility(key string) bool {
	if _, ok := findColumn(e.columns, key); !ok {
		return false
	}
	next := maps.Clone(e.visibility)
	next[key] = !next[key]

	visible := 0
	for _, c := range e.columns {
		if next[c.Key] {
			visible++
		}
	}
	if visible == 0 {
		return false
	}

	e.visibility = next
	e.prefs.saveVisibility(e.visibility)
	return true
}

// ReorderColumns moves activeKey to the position overKey occupies, shifting the
// columns in between, and persists the new order. It reports false when either
// key is missing from the current order.
func (e *Engine) ReorderColumns(activeKey, overKey string) bool {
	from := slices.Index(e.order, activeKey)
	to := slices.Index(e.order, overKey)
	if from < 0 || to < 0 {
		return false
	}
	if from == to {
		return true
	}

	next := slices.Delete(slices.Clone(e.order), from, from+1)
	next = slices.Insert(next, to, activeKey)

	e.order = next
	e.prefs.saveOrder(e.order)
	return true
}

// ResetToDefaults restores default visibility and declared order, clears the
// sort, and removes both persisted entries.
func (e *Engine) ResetToDefaults() {
	e.visibility = DefaultVisibility(e.columns)
	e.order = DefaultOrder(e.columns)
	e.sort = SortState{}
	e.prefs.clear()
}

// Clone returns an independent copy of the engine's state that persists
// nothing. Mutating the copy never touches the original or its storage.
func (e *Engine) Clone() *Engine {
	c := *e
	c.columns = slices.Clone(e.columns)
	c.visibility = maps.Clone(e.visibility)
	c.order = slices.Clone(e.order)
	c.initialVisibility = maps.Clone(e.initialVisibility)
	c.prefs = prefs{log: e.prefs.log}
	return &c
}

// SortedData returns the rows ordered by the current sort state. Unsorted
// tables return the input rows unchanged.
func (e *Engine) SortedData() []Row {
	return SortRows(e.data, e.sort)
}

// SortState returns the current sort.
func (e *Engine) SortState() SortState {
	return e.sort
}

// ColumnVisibility returns a copy of the visibility map.
func (e *Engine) ColumnVisibility() map[string]bool {
	return maps.Clone(e.visibility)
}

// ColumnOrder returns a copy of the column order.
func (e *Engine) ColumnOrder() []string {
	return slices.Clone(e.order)
}

// Columns returns a copy of the configured columns in declared order.
func (e *Engine) Columns() []ColumnConfig {
	return slices.Clone(e.columns)
}

// Column looks up a configured column by key.
func (e *Engine) Column(key string) (ColumnConfig, bool) {
	return findColumn(e.columns, key)
}

// InitialColumnVisibility returns the map passed with
// WithInitialColumnVisibility, if any.
func (e *Engine) InitialColumnVisibility() map[string]bool {
	return maps.Clone(e.initialVisibility)
}

// StorageKey returns the persistence namespace, empty when not persisting.
func (e *Engine) StorageKey() string {
	return e.prefs.key
}

// VisibleColumns returns the configured columns in column order, keeping only
// those marked visible. This is what a renderer draws, left to right.
func (e *Engine) VisibleColumns() []ColumnConfig {
	out := make([]ColumnConfig, 0, len(e.order))
	for _, key := range e.order {
		col, ok := findColumn(e.columns, key)
		if !ok || !e.visibility[key] {
			continue
		}
		out = append(out, col)
	}
	return out
}

// Snapshot is a point-in-time view of the engine's derived state.
type Snapshot struct {
	SortedData       []Row
	SortState        SortState
	ColumnVisibility map[string]bool
	ColumnOrder      []string
	VisibleColumns   []ColumnConfig
}

// Snapshot recomputes every derived value from current state.
func (e *Engine) Snapshot() Snapshot {
	return Snapshot{
		SortedData:       e.SortedData(),
		SortState:        e.SortState(),
		ColumnVisibility: e.ColumnVisibility(),
		ColumnOrder:      e.ColumnOrder(),
		VisibleColumns:   e.VisibleColumns(),
	}
}

// VisibleKeys returns the keys of the visible columns in display order.
func (s Snapshot) VisibleKeys() []string {
	keys := make([]string, len(s.VisibleColumns))
	for i, c := range s.VisibleColumns {
		keys[i] = c.Key
	}
	return keys
}
