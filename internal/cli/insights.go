package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"flowboard/internal/format"
	"flowboard/internal/llm"
)

func newInsightsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "insights",
		Short: "Board summaries and assistant reports (nudges, standup, retro)",
	}
	cmd.AddCommand(newInsightsSummaryCmd(app))
	cmd.AddCommand(newInsightsNudgesCmd(app))
	cmd.AddCommand(newInsightsStandupCmd(app))
	cmd.AddCommand(newInsightsRetroCmd(app))
	return cmd
}

// insightFlags are shared by the report commands.
type insightFlags struct {
	markdown bool
	width    int
}

func (f *insightFlags) bind(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&f.markdown, "markdown", false, "Render a terminal markdown report instead of structured output")
	cmd.Flags().IntVar(&f.width, "width", 80, "Wrap width for --markdown")
}

func (f insightFlags) emit(cmd *cobra.Command, app *App, v any, md string) error {
	if !f.markdown {
		return writeOut(cmd, app, map[string]any{"data": v})
	}
	style := ""
	if app.cfg != nil {
		style = app.cfg.TUI.MarkdownStyle
	}
	fmt.Fprintln(cmd.OutOrStdout(), format.RenderMarkdown(md, style, f.width))
	return nil
}

func newInsightsSummaryCmd(app *App) *cobra.Command {
	var flags insightFlags
	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Show the board summary the assistant reports are built from",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, done, err := openController(cmd.Context(), app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer done()
			s := c.Summary()
			return flags.emit(cmd, app, s, format.SummaryMarkdown(s))
		},
	}
	flags.bind(cmd)
	return cmd
}

func newInsightsNudgesCmd(app *App) *cobra.Command {
	var flags insightFlags
	cmd := &cobra.Command{
		Use:   "nudges",
		Short: "Ask the assistant what needs attention",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, done, err := openController(cmd.Context(), app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer done()
			log := app.logger()
			res, err := newLLMClient(app.cfg, log).Nudges(cmd.Context(), c.Summary())
			if err != nil {
				return writeErr(cmd, llmUserError(log, "nudges", err))
			}
			return flags.emit(cmd, app, res, format.NudgesMarkdown(res))
		},
	}
	flags.bind(cmd)
	return cmd
}

func newInsightsStandupCmd(app *App) *cobra.Command {
	var flags insightFlags
	cmd := &cobra.Command{
		Use:   "standup",
		Short: "Generate a standup report per team member",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, done, err := openController(cmd.Context(), app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer done()
			log := app.logger()
			res, err := newLLMClient(app.cfg, log).Standup(cmd.Context(), c.Summary())
			if err != nil {
				return writeErr(cmd, llmUserError(log, "standup", err))
			}
			return flags.emit(cmd, app, res, format.StandupMarkdown(res))
		},
	}
	flags.bind(cmd)
	return cmd
}

func newInsightsRetroCmd(app *App) *cobra.Command {
	var flags insightFlags
	var project string
	cmd := &cobra.Command{
		Use:   "retro",
		Short: "Generate a retrospective for one project",
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
			summary, err := c.ProjectSummary(p.ID)
			if err != nil {
				return writeErr(cmd, err)
			}
			log := app.logger()
			var res llm.RetroResult
			if res, err = newLLMClient(app.cfg, log).Retro(cmd.Context(), summary); err != nil {
				return writeErr(cmd, llmUserError(log, "retro", err))
			}
			return flags.emit(cmd, app, res, format.RetroMarkdown(res))
		},
	}
	flags.bind(cmd)
	cmd.Flags().StringVar(&project, "project", "", "Project id or name (default: active project)")
	return cmd
}
