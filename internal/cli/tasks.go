package cli

import (
	"errors"
	"strings"

	"github.com/spf13/cobra"

	ctl "flowboard/internal/app"
	"flowboard/internal/board"
	"flowboard/internal/ids"
	"flowboard/internal/model"
)

func newTasksCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "tasks",
		Aliases: []string{"task"},
		Short:   "Task commands",
	}
	cmd.AddCommand(newTasksListCmd(app))
	cmd.AddCommand(newTasksAddCmd(app))
	cmd.AddCommand(newTasksShowCmd(app))
	cmd.AddCommand(newTasksUpdateCmd(app))
	cmd.AddCommand(newTasksMoveCmd(app))
	cmd.AddCommand(newTasksAssignCmd(app))
	cmd.AddCommand(newTasksTagCmd(app))
	cmd.AddCommand(newTasksUntagCmd(app))
	cmd.AddCommand(newTasksDeleteCmd(app))
	return cmd
}

// taskView decorates a task with display-only fields.
type taskView struct {
	model.Task
	Assignee string `json:"assignee,omitempty"`
	Age      string `json:"age"`
}

func viewTask(c *ctl.Controller, t model.Task) taskView {
	v := taskView{Task: t, Age: ids.RelativeTimeNow(t.CreatedAt)}
	if t.AssigneeID != nil {
		if u, err := c.User(*t.AssigneeID); err == nil {
			v.Assignee = u.Name
		}
	}
	return v
}

func viewTasks(c *ctl.Controller, ts []model.Task) []taskView {
	out := make([]taskView, 0, len(ts))
	for _, t := range ts {
		out = append(out, viewTask(c, t))
	}
	return out
}

func newTasksListCmd(app *App) *cobra.Command {
	var project, status, query, tag string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks of a project in board order",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, done, err := openController(cmd.Context(), app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer done()

			p, err := targetProject(c, project)
			if err != nil {
				return writeErr(cmd, err)
			}
			statuses := model.Statuses
			if strings.TrimSpace(status) != "" {
				st, ok := model.ParseStatus(status)
				if !ok {
					return writeErr(cmd, &ctl.ValidationError{Field: "status", Msg: "unknown status " + status})
				}
				statuses = []model.Status{st}
			}
			visible := board.Filter(c.ProjectTasks(p.ID), p.ID, query, tag)
			out := []model.Task{}
			for _, st := range statuses {
				out = append(out, board.Column(visible, p.ID, st)...)
			}
			return writeOut(cmd, app, map[string]any{"data": viewTasks(c, out)})
		},
	}

	cmd.Flags().StringVar(&project, "project", "", "Project id or name (default: active project)")
	cmd.Flags().StringVar(&status, "status", "", "Only this column (inbox|planned|doing|done)")
	cmd.Flags().StringVar(&query, "query", "", "Title contains (case-insensitive)")
	cmd.Flags().StringVar(&tag, "tag", "", "Some tag contains (case-insensitive)")
	return cmd
}

func newTasksAddCmd(app *App) *cobra.Command {
	var project, tags string

	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Add a task to the front of a project's inbox",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, done, err := openController(cmd.Context(), app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer done()

			p, err := targetProject(c, project)
			if err != nil {
				return writeErr(cmd, err)
			}
			res, err := c.CreateTaskIn(cmd.Context(), p.ID, strings.Join(args, " "), tags)
			if err != nil {
				return writeErr(cmd, err)
			}
			t, _ := c.Task(res.ID)
			return writeOut(cmd, app, map[string]any{"data": viewTask(c, t)})
		},
	}

	cmd.Flags().StringVar(&project, "project", "", "Project id or name (default: active project)")
	cmd.Flags().StringVar(&tags, "tags", "", "Comma-separated tags (max 6)")
	return cmd
}

func newTasksShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show <task-id>",
		Short: "Show a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, done, err := openController(cmd.Context(), app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer done()

			t, err := c.Task(args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": viewTask(c, t)})
		},
	}
}

func newTasksUpdateCmd(app *App) *cobra.Command {
	var title, status, tags string

	cmd := &cobra.Command{
		Use:   "update <task-id>",
		Short: "Update a task's title, status or tags",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, done, err := openController(cmd.Context(), app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer done()

			if _, err := c.Task(args[0]); err != nil {
				return writeErr(cmd, err)
			}
			var patch ctl.TaskPatch
			if cmd.Flags().Changed("title") {
				patch.Title = &title
			}
			if cmd.Flags().Changed("status") {
				st, ok := model.ParseStatus(status)
				if !ok {
					return writeErr(cmd, &ctl.ValidationError{Field: "status", Msg: "unknown status " + status})
				}
				patch.Status = &st
			}
			if cmd.Flags().Changed("tags") {
				patch.Tags = board.ParseTagsCSV(tags, 0)
				if patch.Tags == nil {
					patch.Tags = []string{}
				}
			}
			res, err := c.UpdateTask(cmd.Context(), args[0], patch)
			if err != nil {
				return writeErr(cmd, err)
			}
			t, _ := c.Task(args[0])
			return writeOut(cmd, app, map[string]any{"data": viewTask(c, t), "changed": res.Changed})
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "New title")
	cmd.Flags().StringVar(&status, "status", "", "New column (moves the task to the end of it)")
	cmd.Flags().StringVar(&tags, "tags", "", "Replace tags (comma-separated, max 8; empty clears)")
	return cmd
}

func newTasksMoveCmd(app *App) *cobra.Command {
	var status string
	var index int

	cmd := &cobra.Command{
		Use:   "move <task-id>",
		Short: "Move a task to a column at a position",
		Example: strings.TrimSpace(`
  # Put a task at the top of "doing"
  flowboard tasks move <task-id> --status doing --index 0
`),
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, done, err := openController(cmd.Context(), app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer done()

			cur, err := c.Task(args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			st, ok := model.ParseStatus(status)
			if !ok {
				return writeErr(cmd, &ctl.ValidationError{Field: "status", Msg: "unknown status " + status})
			}
			idx := index
			if idx < 0 {
				idx = board.ColumnLen(c.ProjectTasks(cur.ProjectID), cur.ProjectID, st)
			}
			res, err := c.MoveTask(cmd.Context(), args[0], st, idx)
			if err != nil {
				return writeErr(cmd, err)
			}
			t, _ := c.Task(args[0])
			return writeOut(cmd, app, map[string]any{"data": viewTask(c, t), "changed": res.Changed})
		},
	}

	cmd.Flags().StringVar(&status, "status", "", "Target column (inbox|planned|doing|done)")
	cmd.Flags().IntVar(&index, "index", -1, "Target position within the column (default: end)")
	_ = cmd.MarkFlagRequired("status")
	return cmd
}

func newTasksAssignCmd(app *App) *cobra.Command {
	var user string
	var clear bool

	cmd := &cobra.Command{
		Use:   "assign <task-id>",
		Short: "Assign a task to a team member (or --clear)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, done, err := openController(cmd.Context(), app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer done()

			if _, err := c.Task(args[0]); err != nil {
				return writeErr(cmd, err)
			}
			var userID *string
			switch {
			case clear:
			case strings.TrimSpace(user) != "":
				u, err := resolveUser(c, user)
				if err != nil {
					return writeErr(cmd, err)
				}
				userID = &u.ID
			default:
				return writeErr(cmd, errors.New("assign: pass --user or --clear"))
			}
			res := c.AssignTask(cmd.Context(), args[0], userID)
			t, _ := c.Task(args[0])
			return writeOut(cmd, app, map[string]any{"data": viewTask(c, t), "changed": res.Changed})
		},
	}

	cmd.Flags().StringVar(&user, "user", "", "User id, name or initials")
	cmd.Flags().BoolVar(&clear, "clear", false, "Remove the assignee")
	return cmd
}

func newTasksTagCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "tag <task-id> <tag>",
		Short: "Add a tag to a task",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, done, err := openController(cmd.Context(), app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer done()

			if _, err := c.Task(args[0]); err != nil {
				return writeErr(cmd, err)
			}
			res, err := c.AddTag(cmd.Context(), args[0], args[1])
			if err != nil {
				return writeErr(cmd, err)
			}
			t, _ := c.Task(args[0])
			return writeOut(cmd, app, map[string]any{"data": viewTask(c, t), "changed": res.Changed})
		},
	}
}

func newTasksUntagCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "untag <task-id> <tag>",
		Short: "Remove a tag from a task",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, done, err := openController(cmd.Context(), app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer done()

			if _, err := c.Task(args[0]); err != nil {
				return writeErr(cmd, err)
			}
			res := c.RemoveTag(cmd.Context(), args[0], args[1])
			t, _ := c.Task(args[0])
			return writeOut(cmd, app, map[string]any{"data": viewTask(c, t), "changed": res.Changed})
		},
	}
}

func newTasksDeleteCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <task-id>",
		Short: "Delete a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, done, err := openController(cmd.Context(), app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer done()

			if _, err := c.Task(args[0]); err != nil {
				return writeErr(cmd, err)
			}
			c.DeleteTask(cmd.Context(), args[0])
			return writeOut(cmd, app, map[string]any{"data": map[string]any{"deleted": strings.TrimSpace(args[0])}})
		},
	}
}
