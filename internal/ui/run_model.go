package ui

import (
	tea "charm.land/bubbletea/v2"

	tbl "github.com/oakwood-commons/tblx/pkg/table"
)

// Run starts the interactive screen over engine and blocks until the user
// quits. Width/height greater than zero fix the window size instead of
// waiting for the terminal to report it. The final model is returned so
// callers can read the search and page the user ended on.
func Run(engine *tbl.Engine, opts Options, width, height int, progOpts ...tea.ProgramOption) (*Model, error) {
	m := NewModel(engine, opts)
	if width > 0 && height > 0 {
		m.resize(width, height)
		progOpts = append(progOpts, tea.WithWindowSize(width, height))
	}

	final, err := tea.NewProgram(m, progOpts...).Run()
	if fm, ok := final.(*Model); ok && fm != nil {
		return fm, err
	}
	return m, err
}
