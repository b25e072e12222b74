// Package table implements the sortable, configurable table engine that backs
// every list screen: sort state, column visibility, column order, and the
// derived sorted view of a row collection. Column preferences persist through
// an injected Storage keyed per table instance.
package table

// Row is an open record. The engine only reads the fields named by a
// ColumnConfig key.
type Row = map[string]any

// ColumnConfig describes one column of a table.
type ColumnConfig struct {
	Key       string `json:"key" yaml:"key" toml:"key"`
	Label     string `json:"label,omitempty" yaml:"label,omitempty" toml:"label,omitempty"`
	Sortable  bool   `json:"sortable,omitempty" yaml:"sortable,omitempty" toml:"sortable,omitempty"`
	Hideable  bool   `json:"hideable,omitempty" yaml:"hideable,omitempty" toml:"hideable,omitempty"`
	Draggable bool   `json:"draggable,omitempty" yaml:"draggable,omitempty" toml:"draggable,omitempty"`
	// DefaultVisible is the initial visibility when nothing is persisted.
	// Nil means visible.
	DefaultVisible *bool  `json:"defaultVisible,omitempty" yaml:"defaultVisible,omitempty" toml:"defaultVisible,omitempty"`
	Width          string `json:"width,omitempty" yaml:"width,omitempty" toml:"width,omitempty"`
}

// IsDefaultVisible reports the column's initial visibility.
func (c ColumnConfig) IsDefaultVisible() bool {
	return c.DefaultVisible == nil || *c.DefaultVisible
}

// Title returns the label, or the key when no label is set.
func (c ColumnConfig) Title() string {
	if c.Label != "" {
		return c.Label
	}
	return c.Key
}

// Visible returns a pointer suitable for ColumnConfig.DefaultVisible.
func Visible(v bool) *bool {
	return &v
}

// DefaultVisibility computes the visibility map from each column's
// DefaultVisible flag.
func DefaultVisibility(columns []ColumnConfig) map[string]bool {
	vis := make(map[string]bool, len(columns))
	for _, c := range columns {
		vis[c.Key] = c.IsDefaultVisible()
	}
	return vis
}

// DefaultOrder returns the declared column key sequence.
func DefaultOrder(columns []ColumnConfig) []string {
	order := make([]string, len(columns))
	for i, c := range columns {
		order[i] = c.Key
	}
	return order
}

func findColumn(columns []ColumnConfig, key string) (ColumnConfig, bool) {
	for _, c := range columns {
		if c.Key == key {
			return c, true
		}
	}
	return ColumnConfig{}, false
}
