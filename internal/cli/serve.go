package cli

import (
	"context"
	"fmt"
	"os/signal"
	"strings"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"flowboard/internal/config"
	"flowboard/internal/llm"
	"flowboard/internal/waitlist"
	"flowboard/internal/web"
)

func newServeCmd(app *App) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API (planning assistant + waitlist)",
		Long: strings.TrimSpace(`
Run the HTTP API used by the web front end.

Endpoints:
  POST /api/generate   {description}
  POST /api/quicktask  {text, context}
  POST /api/nudges     {board}
  POST /api/standup    {board}
  POST /api/retro      {project}
  POST /api/waitlist   {email}
  GET  /healthz

The waitlist is stored in Postgres when waitlist.databaseUrl (or DATABASE_URL) is set,
otherwise in memory.
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			if v := strings.TrimSpace(addr); v != "" {
				cfg.Server.Addr = v
			}
			log := app.logger()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			wl, closeWL, err := openWaitlist(ctx, cfg, log)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer closeWL()

			srv, err := web.NewServer(web.ServerConfig{
				Addr:         cfg.Server.Addr,
				AllowOrigins: cfg.Server.AllowOrigins,
				BodyLimit:    cfg.Server.BodyLimit,
				LLM:          newLLMClient(cfg, log),
				Waitlist:     wl,
				Log:          log,
			})
			if err != nil {
				return writeErr(cmd, err)
			}

			g, gctx := errgroup.WithContext(ctx)
			g.Go(srv.Start)
			g.Go(func() error {
				<-gctx.Done()
				shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout())
				defer cancel()
				log.Info("shutting down")
				return srv.Shutdown(shutdownCtx)
			})
			if err := g.Wait(); err != nil {
				return writeErr(cmd, err)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Bind address (default from config server.addr)")
	return cmd
}

func openWaitlist(ctx context.Context, cfg *config.Config, log logrus.FieldLogger) (waitlist.Submitter, func(), error) {
	dsn := strings.TrimSpace(cfg.Waitlist.DatabaseURL)
	if dsn == "" {
		log.Warn("waitlist: no database configured; signups are kept in memory")
		return waitlist.NewMemoryStore(), func() {}, nil
	}
	st, err := waitlist.OpenPostgres(ctx, dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("waitlist: %w", err)
	}
	if err := st.EnsureSchema(ctx); err != nil {
		st.Close()
		return nil, nil, fmt.Errorf("waitlist: %w", err)
	}
	return st, st.Close, nil
}

func newLLMClient(cfg *config.Config, log logrus.FieldLogger) *llm.Client {
	return llm.NewClient(llm.Config{
		APIKey:  cfg.LLM.APIKey,
		BaseURL: cfg.LLM.BaseURL,
		Model:   cfg.LLM.Model,
		Timeout: cfg.LLMTimeout(),
	}, log)
}
