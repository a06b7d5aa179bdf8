package web

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"flowboard/internal/llm"
	"flowboard/internal/waitlist"
)

// Generic messages shown to users; details only go to the log.
const (
	msgAssistantUnavailable = "The assistant is unavailable right now. Please try again."
	msgInvalidBody          = "invalid request body"
	msgEmptyInput           = "input is empty"
	msgInvalidEmail         = "please enter a valid email address"
	msgAlreadyJoined        = "this email is already on the waitlist"
	msgWaitlistFailed       = "could not join the waitlist right now. Please try again."
)

type errorResponse struct {
	Error string `json:"error"`
}

type generateRequest struct {
	Description string `json:"description"`
}

type quickTaskRequest struct {
	Text    string           `json:"text"`
	Context llm.QuickContext `json:"context"`
}

type boardRequest struct {
	Board llm.BoardSummary `json:"board"`
}

type retroRequest struct {
	Project llm.ProjectSummary `json:"project"`
}

type waitlistRequest struct {
	Email string `json:"email"`
}

// Register wires up all API routes on the provided Echo instance.
func Register(e *echo.Echo, svc llm.Service, wl waitlist.Submitter, log logrus.FieldLogger) {
	e.GET("/healthz", healthz())
	e.POST("/api/generate", postGenerate(svc, log))
	e.POST("/api/quicktask", postQuickTask(svc, log))
	e.POST("/api/nudges", postNudges(svc, log))
	e.POST("/api/standup", postStandup(svc, log))
	e.POST("/api/retro", postRetro(svc, log))
	e.POST("/api/waitlist", postWaitlist(wl, log))
}

func healthz() echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	}
}

func badRequest(c echo.Context, msg string) error {
	return c.JSON(http.StatusBadRequest, errorResponse{Error: msg})
}

// llmFailure maps an llm error to a response: blank input is the caller's fault, anything else
// is a retryable upstream failure.
func llmFailure(c echo.Context, log logrus.FieldLogger, op string, err error) error {
	if errors.Is(err, llm.ErrEmptyInput) {
		return badRequest(c, msgEmptyInput)
	}
	log.WithError(err).WithField("op", op).Warn("llm request failed")
	return c.JSON(http.StatusBadGateway, errorResponse{Error: msgAssistantUnavailable})
}

func postGenerate(svc llm.Service, log logrus.FieldLogger) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req generateRequest
		if err := c.Bind(&req); err != nil {
			return badRequest(c, msgInvalidBody)
		}
		plan, err := svc.Generate(c.Request().Context(), req.Description)
		if err != nil {
			return llmFailure(c, log, "generate", err)
		}
		return c.JSON(http.StatusOK, plan)
	}
}

func postQuickTask(svc llm.Service, log logrus.FieldLogger) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req quickTaskRequest
		if err := c.Bind(&req); err != nil {
			return badRequest(c, msgInvalidBody)
		}
		qt, err := svc.QuickTask(c.Request().Context(), req.Text, req.Context)
		if err != nil {
			return llmFailure(c, log, "quicktask", err)
		}
		return c.JSON(http.StatusOK, qt)
	}
}

func postNudges(svc llm.Service, log logrus.FieldLogger) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req boardRequest
		if err := c.Bind(&req); err != nil {
			return badRequest(c, msgInvalidBody)
		}
		out, err := svc.Nudges(c.Request().Context(), req.Board)
		if err != nil {
			return llmFailure(c, log, "nudges", err)
		}
		return c.JSON(http.StatusOK, out)
	}
}

func postStandup(svc llm.Service, log logrus.FieldLogger) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req boardRequest
		if err := c.Bind(&req); err != nil {
			return badRequest(c, msgInvalidBody)
		}
		out, err := svc.Standup(c.Request().Context(), req.Board)
		if err != nil {
			return llmFailure(c, log, "standup", err)
		}
		return c.JSON(http.StatusOK, out)
	}
}

func postRetro(svc llm.Service, log logrus.FieldLogger) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req retroRequest
		if err := c.Bind(&req); err != nil {
			return badRequest(c, msgInvalidBody)
		}
		out, err := svc.Retro(c.Request().Context(), req.Project)
		if err != nil {
			return llmFailure(c, log, "retro", err)
		}
		return c.JSON(http.StatusOK, out)
	}
}

func postWaitlist(wl waitlist.Submitter, log logrus.FieldLogger) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req waitlistRequest
		if err := c.Bind(&req); err != nil {
			return badRequest(c, msgInvalidBody)
		}
		outcome, err := wl.Submit(c.Request().Context(), req.Email)
		switch {
		case errors.Is(err, waitlist.ErrInvalidEmail):
			return badRequest(c, msgInvalidEmail)
		case err != nil:
			log.WithError(err).Error("waitlist submit failed")
			return c.JSON(http.StatusInternalServerError, errorResponse{Error: msgWaitlistFailed})
		case outcome == waitlist.Duplicate:
			return c.JSON(http.StatusConflict, errorResponse{Error: msgAlreadyJoined})
		default:
			return c.JSON(http.StatusCreated, map[string]bool{"ok": true})
		}
	}
}
