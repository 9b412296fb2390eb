package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
)

// Run starts the dashboard and blocks until the user quits or ctx is done.
func Run(ctx context.Context, opts Options) error {
	applyThemePreference()
	applyColorProfilePreference()

	m := newAppModel(ctx, opts)
	_, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	return err
}
