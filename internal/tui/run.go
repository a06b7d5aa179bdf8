package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	ctl "flowboard/internal/app"
)

// Run shows the board until the user quits or ctx is cancelled.
func Run(ctx context.Context, c *ctl.Controller, opts Options) error {
	applyThemePreference()
	applyColorProfilePreference(opts.ColorProfile)

	m := New(ctx, c, opts)
	_, err := tea.NewProgram(m,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithContext(ctx),
	).Run()
	return err
}
