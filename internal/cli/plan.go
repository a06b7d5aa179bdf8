package cli

import (
	"errors"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	ctl "flowboard/internal/app"
	"flowboard/internal/llm"
)

func newPlanCmd(app *App) *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "plan <description>",
		Short: "Generate a project and its tasks from a description",
		Example: strings.TrimSpace(`
  flowboard plan "Launch a podcast: equipment, first three episodes, hosting"
  flowboard plan --dry-run "Migrate billing to the new provider"
`),
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			log := app.logger()
			plan, err := newLLMClient(cfg, log).Generate(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return writeErr(cmd, llmUserError(log, "generate", err))
			}
			if dryRun {
				return writeOut(cmd, app, map[string]any{"data": map[string]any{"plan": plan}})
			}

			c, done, err := openController(cmd.Context(), app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer done()
			res, err := c.ImportPlan(cmd.Context(), plan)
			if err != nil {
				return writeErr(cmd, err)
			}
			p, _ := c.Project(res.ID)
			return writeOut(cmd, app, map[string]any{"data": map[string]any{
				"project": p,
				"tasks":   viewTasks(c, c.ProjectTasks(p.ID)),
			}})
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Print the generated plan without importing it")
	return cmd
}

func newQuickCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "quick <text>",
		Short: "Turn a free-text note into a structured task",
		Example: strings.TrimSpace(`
  flowboard quick "ask Priya to fix the checkout crash on the mobile app, urgent"
`),
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, done, err := openController(cmd.Context(), app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer done()

			log := app.logger()
			qt, err := newLLMClient(app.cfg, log).QuickTask(cmd.Context(), strings.Join(args, " "), c.QuickContext())
			if err != nil {
				return writeErr(cmd, llmUserError(log, "quicktask", err))
			}
			res, err := c.ApplyQuickTask(cmd.Context(), qt)
			if err != nil {
				return writeErr(cmd, err)
			}
			t, _ := c.Task(res.ID)
			return writeOut(cmd, app, map[string]any{
				"data": viewTask(c, t),
				"meta": map[string]any{"priority": qt.Priority, "description": qt.Description},
			})
		},
	}
	return cmd
}

// llmUserError keeps upstream detail in the log and returns a short message for the terminal.
func llmUserError(log logrus.FieldLogger, op string, err error) error {
	switch {
	case errors.Is(err, llm.ErrEmptyInput):
		return &ctl.ValidationError{Field: "input", Msg: "nothing to send"}
	case errors.Is(err, llm.ErrNotConfigured):
		return errors.New("planning assistant is not configured; set FLOWBOARD_LLM_API_KEY (or OPENAI_API_KEY)")
	}
	log.WithError(err).WithField("op", op).Warn("llm request failed")
	return errors.New("planning assistant request failed; try again in a moment")
}
