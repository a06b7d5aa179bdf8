package web

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/sirupsen/logrus"

	"flowboard/internal/llm"
	"flowboard/internal/model"
	"flowboard/internal/waitlist"
)

type fakeLLM struct {
	err      error
	lastText string
	lastQC   llm.QuickContext
	lastBoard llm.BoardSummary
}

func (f *fakeLLM) Generate(_ context.Context, description string) (llm.Plan, error) {
	if strings.TrimSpace(description) == "" {
		return llm.Plan{}, llm.ErrEmptyInput
	}
	if f.err != nil {
		return llm.Plan{}, f.err
	}
	return llm.Plan{ProjectName: "Garden", Tasks: []llm.PlanTask{{Title: "Dig", Status: model.StatusInbox}}}, nil
}

func (f *fakeLLM) QuickTask(_ context.Context, text string, qc llm.QuickContext) (llm.QuickTask, error) {
	f.lastText, f.lastQC = text, qc
	if f.err != nil {
		return llm.QuickTask{}, f.err
	}
	return llm.QuickTask{Title: "Fix login", Status: model.StatusDoing}, nil
}

func (f *fakeLLM) Nudges(_ context.Context, board llm.BoardSummary) (llm.NudgesResult, error) {
	f.lastBoard = board
	if f.err != nil {
		return llm.NudgesResult{}, f.err
	}
	return llm.NudgesResult{Nudges: []llm.Nudge{{Message: "ship it", Type: "celebration"}}}, nil
}

func (f *fakeLLM) Standup(context.Context, llm.BoardSummary) (llm.StandupResult, error) {
	if f.err != nil {
		return llm.StandupResult{}, f.err
	}
	return llm.StandupResult{Summary: "all good"}, nil
}

func (f *fakeLLM) Retro(_ context.Context, p llm.ProjectSummary) (llm.RetroResult, error) {
	if f.err != nil {
		return llm.RetroResult{}, f.err
	}
	return llm.RetroResult{HealthScore: 80, Summary: p.Name}, nil
}

type failingWaitlist struct{}

func (failingWaitlist) Submit(context.Context, string) (waitlist.Outcome, error) {
	return 0, errors.New("connection refused")
}

func newTestServer(t *testing.T, svc llm.Service, wl waitlist.Submitter) *Server {
	t.Helper()
	log := logrus.New()
	log.SetOutput(io.Discard)
	srv, err := NewServer(ServerConfig{Addr: "127.0.0.1:0", LLM: svc, Waitlist: wl, Log: log})
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	return srv
}

func do(t *testing.T, srv *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
}

func TestNewServer_Validates(t *testing.T) {
	if _, err := NewServer(ServerConfig{}); err == nil {
		t.Fatalf("expected error for empty addr")
	}
	if _, err := NewServer(ServerConfig{Addr: ":0", Waitlist: waitlist.NewMemoryStore()}); err == nil {
		t.Fatalf("expected error for missing llm")
	}
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(t, &fakeLLM{}, waitlist.NewMemoryStore())
	if rec := do(t, srv, http.MethodGet, "/healthz", ""); rec.Code != http.StatusOK {
		t.Fatalf("healthz: %d", rec.Code)
	}
}

func TestGenerate(t *testing.T) {
	srv := newTestServer(t, &fakeLLM{}, waitlist.NewMemoryStore())

	rec := do(t, srv, http.MethodPost, "/api/generate", `{"description":"a garden"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}
	var plan llm.Plan
	decode(t, rec, &plan)
	if plan.ProjectName != "Garden" || len(plan.Tasks) != 1 {
		t.Fatalf("unexpected plan %+v", plan)
	}

	if rec := do(t, srv, http.MethodPost, "/api/generate", `{"description":"  "}`); rec.Code != http.StatusBadRequest {
		t.Fatalf("blank description: %d", rec.Code)
	}
	if rec := do(t, srv, http.MethodPost, "/api/generate", `{not json`); rec.Code != http.StatusBadRequest {
		t.Fatalf("bad json: %d", rec.Code)
	}
}

func TestLLMFailureIsGeneric502(t *testing.T) {
	svc := &fakeLLM{err: &llm.UpstreamError{Op: "x", Status: 500, Body: "secret upstream detail"}}
	srv := newTestServer(t, svc, waitlist.NewMemoryStore())

	for _, tc := range []struct{ path, body string }{
		{"/api/generate", `{"description":"x"}`},
		{"/api/quicktask", `{"text":"x"}`},
		{"/api/nudges", `{"board":{"projects":[{"name":"Web"}]}}`},
		{"/api/standup", `{"board":{"projects":[{"name":"Web"}]}}`},
		{"/api/retro", `{"project":{"name":"Web"}}`},
	} {
		rec := do(t, srv, http.MethodPost, tc.path, tc.body)
		if rec.Code != http.StatusBadGateway {
			t.Fatalf("%s: status %d", tc.path, rec.Code)
		}
		var er errorResponse
		decode(t, rec, &er)
		if er.Error != msgAssistantUnavailable || strings.Contains(rec.Body.String(), "secret") {
			t.Fatalf("%s: leaked or missing message: %s", tc.path, rec.Body.String())
		}
	}
}

func TestInsightEndpoints(t *testing.T) {
	svc := &fakeLLM{}
	srv := newTestServer(t, svc, waitlist.NewMemoryStore())

	rec := do(t, srv, http.MethodPost, "/api/quicktask", `{"text":"fix login","context":{"projects":["Mobile"],"users":["Ava"]}}`)
	if rec.Code != http.StatusOK || svc.lastText != "fix login" || len(svc.lastQC.Projects) != 1 {
		t.Fatalf("quicktask: %d %+v", rec.Code, svc)
	}
	var qt llm.QuickTask
	decode(t, rec, &qt)
	if qt.Status != model.StatusDoing {
		t.Fatalf("quicktask body: %+v", qt)
	}

	rec = do(t, srv, http.MethodPost, "/api/nudges", `{"board":{"projects":[{"name":"Web","counts":{"doing":2}}]}}`)
	if rec.Code != http.StatusOK || svc.lastBoard.Projects[0].Counts["doing"] != 2 {
		t.Fatalf("nudges: %d", rec.Code)
	}
	rec = do(t, srv, http.MethodPost, "/api/retro", `{"project":{"name":"Web"}}`)
	var retro llm.RetroResult
	decode(t, rec, &retro)
	if rec.Code != http.StatusOK || retro.Summary != "Web" {
		t.Fatalf("retro: %d %+v", rec.Code, retro)
	}
}

func TestWaitlist(t *testing.T) {
	srv := newTestServer(t, &fakeLLM{}, waitlist.NewMemoryStore())

	cases := []struct {
		body string
		want int
	}{
		{`{"email":"ava@example.com"}`, http.StatusCreated},
		{`{"email":"AVA@example.com"}`, http.StatusConflict},
		{`{"email":"nope"}`, http.StatusBadRequest},
		{`{"email":`, http.StatusBadRequest},
	}
	for _, tc := range cases {
		if rec := do(t, srv, http.MethodPost, "/api/waitlist", tc.body); rec.Code != tc.want {
			t.Fatalf("body %s: status %d want %d", tc.body, rec.Code, tc.want)
		}
	}

	failing := newTestServer(t, &fakeLLM{}, failingWaitlist{})
	rec := do(t, failing, http.MethodPost, "/api/waitlist", `{"email":"ava@example.com"}`)
	if rec.Code != http.StatusInternalServerError || strings.Contains(rec.Body.String(), "refused") {
		t.Fatalf("storage failure: %d %s", rec.Code, rec.Body.String())
	}
}

func TestBodyLimit(t *testing.T) {
	srv := newTestServer(t, &fakeLLM{}, waitlist.NewMemoryStore())
	big := `{"description":"` + strings.Repeat("x", 70*1024) + `"}`
	if rec := do(t, srv, http.MethodPost, "/api/generate", big); rec.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected 413, got %d", rec.Code)
	}
}
