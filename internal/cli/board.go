package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"flowboard/internal/board"
	"flowboard/internal/format"
	"flowboard/internal/model"
)

type boardColumn struct {
	Status model.Status `json:"status"`
	Label  string       `json:"label"`
	Tasks  []taskView   `json:"tasks"`
}

func newBoardCmd(app *App) *cobra.Command {
	var project, query, tag string
	var table bool

	cmd := &cobra.Command{
		Use:   "board",
		Short: "Show a project's four columns (filtered)",
		Example: strings.TrimSpace(`
  flowboard board --project "Website Relaunch" --tag design
  flowboard board --query login --table
`),
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
			visible := board.Filter(c.ProjectTasks(p.ID), p.ID, query, tag)
			cols := make([]boardColumn, 0, len(model.Statuses))
			for _, st := range model.Statuses {
				cols = append(cols, boardColumn{
					Status: st,
					Label:  st.Label(),
					Tasks:  viewTasks(c, board.Column(visible, p.ID, st)),
				})
			}

			if table {
				rows := [][]string{}
				for _, col := range cols {
					for _, t := range col.Tasks {
						rows = append(rows, []string{col.Label, t.Title, strings.Join(t.Tags, ", "), t.Assignee, t.Age})
					}
				}
				fmt.Fprintln(cmd.OutOrStdout(), p.Name)
				fmt.Fprintln(cmd.OutOrStdout(), format.Table([]string{"Column", "Title", "Tags", "Assignee", "Age"}, rows))
				return nil
			}
			return writeOut(cmd, app, map[string]any{
				"data": map[string]any{"project": p, "columns": cols},
				"meta": map[string]any{"query": query, "tag": tag, "visible": len(visible)},
			})
		},
	}

	cmd.Flags().StringVar(&project, "project", "", "Project id or name (default: active project)")
	cmd.Flags().StringVar(&query, "query", "", "Title contains (case-insensitive)")
	cmd.Flags().StringVar(&tag, "tag", "", "Some tag contains (case-insensitive)")
	cmd.Flags().BoolVar(&table, "table", false, "Render a text table instead of structured output")
	return cmd
}
