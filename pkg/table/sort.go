package table

import (
	"fmt"
	"reflect"
	"slices"
	"strings"
	"time"
)

// SortDirection is the direction of the active sort.
type SortDirection string

const (
	SortNone       SortDirection = ""
	SortAscending  SortDirection = "asc"
	SortDescending SortDirection = "desc"
)

// SortState is the table's single-column sort. An empty Column or Direction
// means unsorted: rows keep their input order.
type SortState struct {
	Column    string        `json:"column,omitempty" yaml:"column,omitempty"`
	Direction SortDirection `json:"direction,omitempty" yaml:"direction,omitempty"`
}

// Active reports whether the state names both a column and a direction.
func (s SortState) Active() bool {
	return s.Column != "" && s.Direction != SortNone
}

// next returns the state after activating key: asc, then desc, then cleared.
// A different column always starts fresh at asc.
func (s SortState) next(key string) SortState {
	if s.Column != key {
		return SortState{Column: key, Direction: SortAscending}
	}
	switch s.Direction {
	case SortAscending:
		return SortState{Column: key, Direction: SortDescending}
	case SortDescending:
		return SortState{}
	default:
		return SortState{Column: key, Direction: SortAscending}
	}
}

// SortRows returns rows ordered by state. When the state is inactive the input
// slice is returned as is; otherwise a sorted copy is returned and the input is
// left untouched. The sort is stable.
func SortRows(rows []Row, state SortState) []Row {
	if !state.Active() {
		return rows
	}
	out := slices.Clone(rows)
	slices.SortStableFunc(out, func(a, b Row) int {
		return compareCells(a[state.Column], b[state.Column], state.Direction)
	})
	return out
}

// compareCells orders two cell values. Nil is greater than any value, so it
// lands last ascending and first descending.
func compareCells(a, b any, dir SortDirection) int {
	c := compareValues(a, b)
	if dir == SortDescending {
		return -c
	}
	return c
}

func compareValues(a, b any) int {
	aNil, bNil := isNil(a), isNil(b)
	switch {
	case aNil && bNil:
		return 0
	case aNil:
		return 1
	case bNil:
		return -1
	}

	if ta, ok := a.(time.Time); ok {
		if tb, ok := b.(time.Time); ok {
			return ta.Compare(tb)
		}
	}

	if na, ok := toNumber(a); ok {
		if nb, ok := toNumber(b); ok {
			return na.compare(nb)
		}
	}

	return strings.Compare(strings.ToLower(fmt.Sprint(a)), strings.ToLower(fmt.Sprint(b)))
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Slice, reflect.Interface, reflect.Func, reflect.Chan:
		return rv.IsNil()
	default:
		return false
	}
}

// number keeps integers exact and falls back to float64 for mixed comparisons.
type number struct {
	isInt bool
	i     int64
	f     float64
}

func (n number) compare(o number) int {
	if n.isInt && o.isInt {
		switch {
		case n.i < o.i:
			return -1
		case n.i > o.i:
			return 1
		}
		return 0
	}
	a, b := n.float(), o.float()
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func (n number) float() float64 {
	if n.isInt {
		return float64(n.i)
	}
	return n.f
}

func toNumber(v any) (number, bool) {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return number{isInt: true, i: rv.Int()}, true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		u := rv.Uint()
		if u > 1<<63-1 {
			return number{f: float64(u)}, true
		}
		return number{isInt: true, i: int64(u)}, true
	case reflect.Float32, reflect.Float64:
		return number{f: rv.Float()}, true
	default:
		return number{}, false
	}
}
