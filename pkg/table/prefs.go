package table

import (
	"github.com/go-logr/logr"
	json "github.com/goccy/go-json"
)

// Storage is the durable key-value collaborator column preferences persist to.
// Read reports ok=false for an absent key.
type Storage interface {
	Read(key string) (value string, ok bool, err error)
	Write(key, value string) error
	Remove(key string) error
}

const (
	visibilitySuffix = "-visibility"
	orderSuffix      = "-order"
)

// VisibilityKey is the storage key holding the visibility map for storageKey.
func VisibilityKey(storageKey string) string {
	return storageKey + visibilitySuffix
}

// OrderKey is the storage key holding the column order for storageKey.
func OrderKey(storageKey string) string {
	return storageKey + orderSuffix
}

// prefs reads and writes the two persisted entries of one table instance.
// A zero value (no storage or empty key) persists nothing.
type prefs struct {
	key     string
	storage Storage
	log     logr.Logger
}

func (p prefs) enabled() bool {
	return p.key != "" && p.storage != nil
}

func (p prefs) read(key string) (string, bool) {
	raw, ok, err := p.storage.Read(key)
	if err != nil {
		p.log.V(1).Info("persisted column state unreadable, using defaults", "key", key, "error", err.Error())
		return "", false
	}
	return raw, ok
}

// loadVisibility returns the persisted visibility merged over the column
// defaults: every configured column gets an entry and keys for columns no
// longer configured are dropped. A merge that leaves no column visible falls
// back to the defaults.
func (p prefs) loadVisibility(columns []ColumnConfig) map[string]bool {
	vis := DefaultVisibility(columns)
	if !p.enabled() {
		return vis
	}
	raw, ok := p.read(VisibilityKey(p.key))
	if !ok {
		return vis
	}
	var saved map[string]bool
	if err := json.Unmarshal([]byte(raw), &saved); err != nil {
		p.log.V(1).Info("persisted column visibility malformed, using defaults", "key", VisibilityKey(p.key), "error", err.Error())
		return vis
	}
	merged := make(map[string]bool, len(vis))
	anyVisible := false
	for k, def := range vis {
		v, ok := saved[k]
		if !ok {
			v = def
		}
		merged[k] = v
		anyVisible = anyVisible || v
	}
	if !anyVisible && len(merged) > 0 {
		p.log.V(1).Info("persisted column visibility hides every column, using defaults", "key", VisibilityKey(p.key))
		return vis
	}
	return merged
}

// loadOrder returns the persisted order when it is a permutation of the
// configured column keys, otherwise the declared order.
func (p prefs) loadOrder(columns []ColumnConfig) []string {
	order := DefaultOrder(columns)
	if !p.enabled() {
		return order
	}
	raw, ok := p.read(OrderKey(p.key))
	if !ok {
		return order
	}
	var saved []string
	if err := json.Unmarshal([]byte(raw), &saved); err != nil {
		p.log.V(1).Info("persisted column order malformed, using defaults", "key", OrderKey(p.key), "error", err.Error())
		return order
	}
	if !isPermutation(saved, order) {
		p.log.V(1).Info("persisted column order does not match columns, using defaults", "key", OrderKey(p.key), "saved", saved)
		return order
	}
	return saved
}

func (p prefs) saveVisibility(vis map[string]bool) {
	if !p.enabled() {
		return
	}
	p.write(VisibilityKey(p.key), vis)
}

func (p prefs) saveOrder(order []string) {
	if !p.enabled() {
		return
	}
	p.write(OrderKey(p.key), order)
}

func (p prefs) write(key string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		p.log.Error(err, "encode column preferences", "key", key)
		return
	}
	if err := p.storage.Write(key, string(data)); err != nil {
		p.log.Error(err, "persist column preferences", "key", key)
	}
}

func (p prefs) clear() {
	if !p.enabled() {
		return
	}
	for _, key := range []string{VisibilityKey(p.key), OrderKey(p.key)} {
		if err := p.storage.Remove(key); err != nil {
			p.log.Error(err, "remove column preferences", "key", key)
		}
	}
}

// isPermutation reports whether saved holds exactly the keys of want, each once.
func isPermutation(saved, want []string) bool {
	if len(saved) != len(want) {
		return false
	}
	seen := make(map[string]bool, len(want))
	for _, k := range want {
		seen[k] = false
	}
	for _, k := range saved {
		used, ok := seen[k]
		if !ok || used {
			return false
		}
		seen[k] = true
	}
	return true
}
