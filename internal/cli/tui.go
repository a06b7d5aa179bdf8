package cli

import (
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"flowboard/internal/tui"
)

func runTUI(cmd *cobra.Command, app *App) error {
	// The board owns the terminal; logs go to a file when one is configured.
	app.logger().SetOutput(io.Discard)
	if path := strings.TrimSpace(os.Getenv("FLOWBOARD_LOG_FILE")); path != "" {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err != nil {
			return writeErr(cmd, err)
		}
		defer f.Close()
		app.logger().SetOutput(f)
	}

	c, done, err := openController(cmd.Context(), app)
	if err != nil {
		return writeErr(cmd, err)
	}
	defer done()

	return tui.Run(cmd.Context(), c, tui.Options{
		Log:          app.logger(),
		ColorProfile: app.cfg.TUI.ColorProfile,
	})
}
