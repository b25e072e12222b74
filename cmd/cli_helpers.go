package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gobwas/glob"

	"github.com/oakwood-commons/tblx/pkg/table"
)

var errUnknownColumn = errors.New("unknown column")

// columnOps are the column changes requested on the command line. They run in
// field order: reset, sorts, toggles, hides, shows, moves.
type columnOps struct {
	reset   bool
	sorts   []string
	toggles []string
	hide    []string
	show    []string
	moves   []string
}

// apply runs the ops against a detached clone first, so a failing op leaves
// the engine and its stored preferences untouched.
func (o columnOps) apply(e *table.Engine) error {
	if err := o.run(e.Clone()); err != nil {
		return err
	}
	return o.run(e)
}

func (o columnOps) run(e *table.Engine) error {
	if o.reset {
		e.ResetToDefaults()
	}
	for _, key := range o.sorts {
		col, err := requireColumn(e, key)
		if err != nil {
			return fmt.Errorf("--sort: %w", err)
		}
		if !col.Sortable {
			return fmt.Errorf("--sort: column %q is not sortable", key)
		}
		e.HandleSort(key)
	}
	for _, key := range o.toggles {
		col, err := requireColumn(e, key)
		if err != nil {
			return fmt.Errorf("--toggle: %w", err)
		}
		if !col.Hideable {
			return fmt.Errorf("--toggle: column %q cannot be hidden", key)
		}
		if !e.ToggleColumnVisibility(key) {
			return fmt.Errorf("--toggle: cannot hide %q, at least one column must stay visible", key)
		}
	}
	if err := setVisibility(e, o.hide, false); err != nil {
		return fmt.Errorf("--hide: %w", err)
	}
	if err := setVisibility(e, o.show, true); err != nil {
		return fmt.Errorf("--show: %w", err)
	}
	for _, arg := range o.moves {
		active, over, err := parseMove(arg)
		if err != nil {
			return err
		}
		if col, ok := e.Column(active); ok && !col.Draggable {
			return fmt.Errorf("--move %s: column %q cannot be moved", arg, active)
		}
		if !e.ReorderColumns(active, over) {
			return fmt.Errorf("--move %s: %w", arg, errUnknownColumn)
		}
	}
	return nil
}

func requireColumn(e *table.Engine, key string) (table.ColumnConfig, error) {
	col, ok := e.Column(key)
	if !ok {
		return col, fmt.Errorf("%w %q", errUnknownColumn, key)
	}
	return col, nil
}

// setVisibility toggles every column matching one of patterns until it has
// the wanted visibility. A pattern that matches nothing is an error.
func setVisibility(e *table.Engine, patterns []string, visible bool) error {
	for _, p := range patterns {
		keys, err := matchColumns(e.ColumnOrder(), p)
		if err != nil {
			return err
		}
		for _, key := range keys {
			if e.ColumnVisibility()[key] == visible {
				continue
			}
			if col, _ := e.Column(key); !col.Hideable {
				if visible {
					return fmt.Errorf("column %q cannot be shown", key)
				}
				return fmt.Errorf("column %q cannot be hidden", key)
			}
			if !e.ToggleColumnVisibility(key) {
				return fmt.Errorf("cannot hide %q, at least one column must stay visible", key)
			}
		}
	}
	return nil
}

// matchColumns returns the keys matching the glob pattern, in order.
func matchColumns(keys []string, pattern string) ([]string, error) {
	g, err := glob.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid pattern %q: %w", pattern, err)
	}
	var out []string
	for _, k := range keys {
		if g.Match(k) {
			out = append(out, k)
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w matching %q", errUnknownColumn, pattern)
	}
	return out, nil
}

// parseMove splits an ACTIVE:OVER move argument.
func parseMove(arg string) (active, over string, err error) {
	active, over, ok := strings.Cut(arg, ":")
	active, over = strings.TrimSpace(active), strings.TrimSpace(over)
	if !ok || active == "" || over == "" {
		return "", "", fmt.Errorf("--move %q: want ACTIVE:OVER", arg)
	}
	return active, over, nil
}
