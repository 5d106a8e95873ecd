// Package tui is the interactive month calendar. The model owns all UI
// state; background work is observed through Engine.Drain on every tick.
package tui

import (
	tea "github.com/charmbracelet/bubbletea"
)

func Run(opts Options) error {
	applyThemePreference()
	applyColorProfilePreference()

	m := newAppModel(opts)
	_, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}
