package web

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"

	"flowboard/internal/llm"
	"flowboard/internal/waitlist"
)

type ServerConfig struct {
	Addr string
	// AllowOrigins feeds the CORS middleware; empty allows any origin.
	AllowOrigins []string
	// BodyLimit uses echo's size syntax, e.g. "64K".
	BodyLimit string

	LLM      llm.Service
	Waitlist waitlist.Submitter
	Log      logrus.FieldLogger
}

type Server struct {
	cfg ServerConfig
	e   *echo.Echo
	log logrus.FieldLogger
}

func NewServer(cfg ServerConfig) (*Server, error) {
	cfg.Addr = strings.TrimSpace(cfg.Addr)
	if cfg.Addr == "" {
		return nil, errors.New("web: addr is empty")
	}
	if cfg.LLM == nil {
		return nil, errors.New("web: llm service is nil")
	}
	if cfg.Waitlist == nil {
		return nil, errors.New("web: waitlist is nil")
	}
	if strings.TrimSpace(cfg.BodyLimit) == "" {
		cfg.BodyLimit = "64K"
	}
	if len(cfg.AllowOrigins) == 0 {
		cfg.AllowOrigins = []string{"*"}
	}
	if cfg.Log == nil {
		cfg.Log = logrus.StandardLogger()
	}
	log := cfg.Log.WithField("component", "web")

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.JSONSerializer = goJSONSerializer{}
	e.Use(middleware.Recover())
	e.Use(requestLogger(log))
	e.Use(middleware.BodyLimit(cfg.BodyLimit))
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: cfg.AllowOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept},
	}))
	Register(e, cfg.LLM, cfg.Waitlist, log)

	return &Server{cfg: cfg, e: e, log: log}, nil
}

func (s *Server) Addr() string { return s.cfg.Addr }

func (s *Server) Handler() http.Handler { return s.e }

// Start blocks until the server stops. A clean Shutdown returns nil.
func (s *Server) Start() error {
	s.log.WithField("addr", s.cfg.Addr).Info("listening")
	if err := s.e.Start(s.cfg.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.e.Shutdown(ctx)
}

func requestLogger(log logrus.FieldLogger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}
			req := c.Request()
			log.WithFields(logrus.Fields{
				"method": req.Method,
				"path":   req.URL.Path,
				"status": c.Response().Status,
				"took":   time.Since(start).Round(time.Microsecond),
			}).Debug("request")
			return nil
		}
	}
}

// goJSONSerializer swaps echo's encoding/json serializer for goccy/go-json.
type goJSONSerializer struct{}

func (goJSONSerializer) Serialize(c echo.Context, i interface{}, indent string) error {
	enc := json.NewEncoder(c.Response())
	if indent != "" {
		enc.SetIndent("", indent)
	}
	return enc.Encode(i)
}

func (goJSONSerializer) Deserialize(c echo.Context, i interface{}) error {
	err := json.NewDecoder(c.Request().Body).Decode(i)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid JSON body").SetInternal(err)
	}
	return nil
}
