package ui

import (
	"strings"

	"charm.land/lipgloss/v2"
)

// Action is what a key press asks the table screen to do.
type Action string

const (
	ActionNone       Action = ""
	ActionPrevColumn Action = "prev_column"
	ActionNextColumn Action = "next_column"
	ActionSort       Action = "sort"
	ActionHide       Action = "hide"
	ActionColumns    Action = "columns"
	ActionMoveLeft   Action = "move_left"
	ActionMoveRight  Action = "move_right"
	ActionReset      Action = "reset"
	ActionSearch     Action = "search"
	ActionNextPage   Action = "next_page"
	ActionPrevPage   Action = "prev_page"
	ActionHelp       Action = "help"
	ActionQuit       Action = "quit"
)

// KeyBindings maps key strings (tea.KeyPressMsg.String()) to actions. Keys
// not listed here fall through to the row cursor.
var KeyBindings = map[string]Action{
	"left":   ActionPrevColumn,
	"right":  ActionNextColumn,
	"tab":    ActionNextColumn,
	"s":      ActionSort,
	"h":      ActionHide,
	"c":      ActionColumns,
	"[":      ActionMoveLeft,
	"]":      ActionMoveRight,
	"r":      ActionReset,
	"/":      ActionSearch,
	"n":      ActionNextPage,
	"p":      ActionPrevPage,
	"?":      ActionHelp,
	"q":      ActionQuit,
	"ctrl+c": ActionQuit,
}

// ActionForKey returns the action bound to key.
func ActionForKey(key string) Action {
	return KeyBindings[key]
}

var helpRows = [][2]string{
	{"←/→", "select column"},
	{"↑/↓", "move row cursor"},
	{"s", "cycle sort on column (asc, desc, off)"},
	{"h", "hide column"},
	{"c", "pick columns to show or hide"},
	{"[ / ]", "move column left / right"},
	{"r", "reset columns to defaults"},
	{"/", "search rows (enter applies, esc clears)"},
	{"n / p", "next / previous page"},
	{"?", "toggle this help"},
	{"q", "quit"},
}

// HelpText renders the key reference shown by "?".
func HelpText(noColor bool) string {
	keyStyle := lipgloss.NewStyle().Bold(true)
	var b strings.Builder
	for _, r := range helpRows {
		k := padKey(r[0], 6)
		if !noColor {
			k = keyStyle.Render(k)
		}
		b.WriteString("  " + k + "  " + r[1] + "\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func padKey(s string, w int) string {
	if n := lipgloss.Width(s); n < w {
		return s + strings.Repeat(" ", w-n)
	}
	return s
}
