package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	ctl "flowboard/internal/app"
	"flowboard/internal/config"
	"flowboard/internal/format"
	"flowboard/internal/store"
)

type App struct {
	Dir        string
	Store      string
	Format     string
	PrettyJSON bool
	Debug      bool

	cfg *config.Config
	log *logrus.Logger
}

func NewRootCmd() *cobra.Command {
	app := &App{}

	cmd := &cobra.Command{
		Use:          "flowboard",
		Short:        "Flowboard task board (TUI + scriptable CLI)",
		SilenceUsage: true,
		Example: strings.TrimSpace(`
  # Start the interactive board
  flowboard

  # Scriptable commands
  flowboard projects list
  flowboard tasks add "Write launch post" --tags "marketing, copy"

  # Run the HTTP API for the planning assistant and waitlist
  flowboard serve --addr :8080
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			// No subcommand => interactive TUI.
			if cmd.HasSubCommands() && len(args) == 0 {
				return runTUI(cmd, app)
			}
			return cmd.Help()
		},
	}

	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		app.log = newLogger(cmd.ErrOrStderr(), app.Debug)
		return nil
	}

	cmd.PersistentFlags().StringVar(&app.Dir, "dir", envOr("FLOWBOARD_DIR", ""), "Data directory for the file and sqlite backends")
	cmd.PersistentFlags().StringVar(&app.Store, "store", envOr("FLOWBOARD_STORE", ""), "Storage backend (file|sqlite|redis|memory)")
	cmd.PersistentFlags().StringVar(&app.Format, "format", envOr("FLOWBOARD_FORMAT", "json"), "Output format (json|yaml)")
	cmd.PersistentFlags().BoolVar(&app.PrettyJSON, "pretty", false, "Pretty-print JSON output")
	cmd.PersistentFlags().BoolVar(&app.Debug, "debug", envOr("FLOWBOARD_DEBUG", "") == "1", "Enable debug logging")

	cmd.AddCommand(newProjectsCmd(app))
	cmd.AddCommand(newUsersCmd(app))
	cmd.AddCommand(newTasksCmd(app))
	cmd.AddCommand(newBoardCmd(app))
	cmd.AddCommand(newViewCmd(app))
	cmd.AddCommand(newResetCmd(app))
	cmd.AddCommand(newServeCmd(app))
	cmd.AddCommand(newPlanCmd(app))
	cmd.AddCommand(newQuickCmd(app))
	cmd.AddCommand(newInsightsCmd(app))
	cmd.AddCommand(newConfigCmd(app))

	return cmd
}

func newLogger(w io.Writer, debug bool) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(w)
	log.SetLevel(logrus.InfoLevel)
	if debug {
		log.SetLevel(logrus.DebugLevel)
	}
	if strings.EqualFold(os.Getenv("FLOWBOARD_LOG_FORMAT"), "json") {
		log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		log.SetFormatter(&logrus.TextFormatter{DisableTimestamp: !debug})
	}
	return log
}

func (a *App) logger() *logrus.Logger {
	if a.log == nil {
		a.log = newLogger(os.Stderr, a.Debug)
	}
	return a.log
}

// loadConfig reads the config file once and layers the persistent flags on top.
func loadConfig(app *App) (*config.Config, error) {
	if app.cfg != nil {
		return app.cfg, nil
	}
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if v := strings.TrimSpace(app.Dir); v != "" {
		cfg.Storage.Dir = v
	}
	if v := strings.TrimSpace(app.Store); v != "" {
		cfg.Storage.Backend = v
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	app.cfg = cfg
	return cfg, nil
}

// openController opens the configured backend and boots a controller on it.
// The returned close func releases the backend.
func openController(ctx context.Context, app *App) (*ctl.Controller, func(), error) {
	cfg, err := loadConfig(app)
	if err != nil {
		return nil, nil, err
	}
	kind, err := store.ParseBackendKind(cfg.Storage.Backend)
	if err != nil {
		return nil, nil, err
	}
	kv, err := store.Open(ctx, store.Options{
		Kind:        kind,
		Dir:         cfg.Storage.Dir,
		RedisURL:    cfg.Storage.RedisURL,
		RedisPrefix: cfg.Storage.RedisPrefix,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("open %s store: %w", kind, err)
	}
	log := app.logger()
	c := ctl.New(store.NewGateway(kv, log), ctl.Options{Log: log})
	c.Boot(ctx)
	closeFn := func() {
		if err := kv.Close(); err != nil {
			log.WithError(err).Warn("close store")
		}
	}
	return c, closeFn, nil
}

func envOr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func writeOut(cmd *cobra.Command, app *App, v any) error {
	return format.Write(cmd.OutOrStdout(), v, app.Format, app.PrettyJSON)
}

func writeErr(cmd *cobra.Command, err error) error {
	fmt.Fprintln(cmd.ErrOrStderr(), err.Error())
	return err
}
