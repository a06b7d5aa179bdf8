package cli

import (
	"context"

	"github.com/spf13/cobra"

	ctl "flowboard/internal/app"
	"flowboard/internal/model"
)

type viewInfo struct {
	View          model.View     `json:"view"`
	ActiveProject *model.Project `json:"activeProject"`
}

func viewState(c *ctl.Controller) viewInfo {
	v := viewInfo{View: c.View()}
	if p, ok := c.ActiveProject(); ok {
		v.ActiveProject = &p
	}
	return v
}

func newViewCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "view",
		Short: "Inspect or change the persisted screen",
	}
	cmd.AddCommand(newViewShowCmd(app))
	cmd.AddCommand(newViewTransitionCmd(app, "projects", "Show the project list", (*ctl.Controller).ShowProjects))
	cmd.AddCommand(newViewTransitionCmd(app, "users", "Show the team list", (*ctl.Controller).ShowUsers))
	cmd.AddCommand(newViewTransitionCmd(app, "back", "Leave the board for the project list", (*ctl.Controller).Back))
	return cmd
}

func newViewShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the current view and active project",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, done, err := openController(cmd.Context(), app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer done()
			return writeOut(cmd, app, map[string]any{"data": viewState(c)})
		},
	}
}

func newViewTransitionCmd(app *App, use, short string, fn func(*ctl.Controller, context.Context) ctl.Result) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, done, err := openController(cmd.Context(), app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer done()
			fn(c, cmd.Context())
			return writeOut(cmd, app, map[string]any{"data": viewState(c)})
		},
	}
}

func newResetCmd(app *App) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Discard all board data and restore the demo dataset",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return writeErr(cmd, &ctl.ValidationError{Field: "yes", Msg: "reset discards all data; pass --yes to confirm"})
			}
			c, done, err := openController(cmd.Context(), app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer done()

			c.Reset(cmd.Context())
			env := c.Envelope()
			return writeOut(cmd, app, map[string]any{"data": map[string]any{
				"projects": len(env.Projects),
				"users":    len(env.Users),
				"tasks":    len(env.Tasks),
				"view":     env.View,
			}})
		},
	}

	cmd.Flags().BoolVar(&yes, "yes", false, "Confirm the reset")
	return cmd
}
