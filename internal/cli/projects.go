package cli

import (
	"strings"

	"github.com/spf13/cobra"

	ctl "flowboard/internal/app"
	"flowboard/internal/model"
)

func newProjectsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "projects",
		Short: "Project commands",
	}
	cmd.AddCommand(newProjectsListCmd(app))
	cmd.AddCommand(newProjectsCreateCmd(app))
	cmd.AddCommand(newProjectsRenameCmd(app))
	cmd.AddCommand(newProjectsDeleteCmd(app))
	cmd.AddCommand(newProjectsOpenCmd(app))
	return cmd
}

type projectRow struct {
	model.Project
	Counts map[model.Status]int `json:"counts"`
	Active bool                 `json:"active"`
}

func newProjectsListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List projects with per-column task counts",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, done, err := openController(cmd.Context(), app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer done()

			active, _ := c.ActiveProject()
			rows := []projectRow{}
			for _, p := range c.Projects() {
				rows = append(rows, projectRow{Project: p, Counts: c.Counts(p.ID), Active: p.ID == active.ID})
			}
			return writeOut(cmd, app, map[string]any{"data": rows})
		},
	}
}

func newProjectsCreateCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "create <name>",
		Short: "Create a project",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, done, err := openController(cmd.Context(), app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer done()

			res, err := c.CreateProject(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return writeErr(cmd, err)
			}
			p, _ := c.Project(res.ID)
			return writeOut(cmd, app, map[string]any{"data": p})
		},
	}
}

func newProjectsRenameCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "rename <project> <new-name>",
		Short: "Rename a project (by id or name)",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, done, err := openController(cmd.Context(), app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer done()

			p, err := resolveProject(c, args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			if _, err := c.RenameProject(cmd.Context(), p.ID, strings.Join(args[1:], " ")); err != nil {
				return writeErr(cmd, err)
			}
			p, _ = c.Project(p.ID)
			return writeOut(cmd, app, map[string]any{"data": p})
		},
	}
}

func newProjectsDeleteCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <project>",
		Short: "Delete a project and all of its tasks",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, done, err := openController(cmd.Context(), app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer done()

			p, err := resolveProject(c, args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			removed := len(c.ProjectTasks(p.ID))
			c.DeleteProject(cmd.Context(), p.ID)
			return writeOut(cmd, app, map[string]any{
				"data": map[string]any{"deleted": p.ID, "tasksRemoved": removed, "view": c.View()},
			})
		},
	}
}

func newProjectsOpenCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "open <project>",
		Short: "Make a project the active board",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, done, err := openController(cmd.Context(), app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer done()

			p, err := resolveProject(c, args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			c.OpenProject(cmd.Context(), p.ID)
			return writeOut(cmd, app, map[string]any{"data": viewState(c)})
		},
	}
}

// resolveProject accepts a project id or a case-insensitive name.
func resolveProject(c *ctl.Controller, ref string) (model.Project, error) {
	ref = strings.TrimSpace(ref)
	if p, err := c.Project(ref); err == nil {
		return p, nil
	}
	if p, ok := c.FindProjectByName(ref); ok {
		return p, nil
	}
	return model.Project{}, ctl.NotFoundError{Kind: "project", ID: ref}
}

// targetProject picks --project when given, else the active board.
func targetProject(c *ctl.Controller, ref string) (model.Project, error) {
	if strings.TrimSpace(ref) != "" {
		return resolveProject(c, ref)
	}
	if p, ok := c.ActiveProject(); ok {
		return p, nil
	}
	return model.Project{}, &ctl.ValidationError{Field: "project", Msg: "no project is open; pass --project or run `flowboard projects open <project>`"}
}
