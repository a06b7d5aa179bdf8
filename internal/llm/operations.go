package llm

import (
	"context"
	"fmt"
	"strings"

	json "github.com/goccy/go-json"

	"flowboard/internal/model"
)

// Service is what the web and cli layers need from the model.
type Service interface {
	Generate(ctx context.Context, description string) (Plan, error)
	QuickTask(ctx context.Context, text string, qc QuickContext) (QuickTask, error)
	Nudges(ctx context.Context, board BoardSummary) (NudgesResult, error)
	Standup(ctx context.Context, board BoardSummary) (StandupResult, error)
	Retro(ctx context.Context, project ProjectSummary) (RetroResult, error)
}

var _ Service = (*Client)(nil)

const (
	maxPlanTasks = 30
	maxTags      = 6
)

func (c *Client) Generate(ctx context.Context, description string) (Plan, error) {
	description = strings.TrimSpace(description)
	if description == "" {
		return Plan{}, ErrEmptyInput
	}
	var p Plan
	if err := c.completeJSON(ctx, "generate", generateSystem, "Project description:\n"+description, &p); err != nil {
		return Plan{}, err
	}
	return cleanPlan(p), nil
}

func (c *Client) QuickTask(ctx context.Context, text string, qc QuickContext) (QuickTask, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return QuickTask{}, ErrEmptyInput
	}
	ctxJSON, err := json.Marshal(qc)
	if err != nil {
		return QuickTask{}, err
	}
	user := fmt.Sprintf("Context: %s\nText: %s", ctxJSON, text)
	var qt QuickTask
	if err := c.completeJSON(ctx, "quicktask", quickTaskSystem, user, &qt); err != nil {
		return QuickTask{}, err
	}
	return cleanQuickTask(qt), nil
}

func (c *Client) Nudges(ctx context.Context, board BoardSummary) (NudgesResult, error) {
	if len(board.Projects) == 0 {
		return NudgesResult{}, ErrEmptyInput
	}
	user, err := summaryPrompt(board)
	if err != nil {
		return NudgesResult{}, err
	}
	var out NudgesResult
	if err := c.completeJSON(ctx, "nudges", nudgesSystem, user, &out); err != nil {
		return NudgesResult{}, err
	}
	for i := range out.Nudges {
		out.Nudges[i].Type = clampNudgeType(out.Nudges[i].Type)
	}
	if out.Nudges == nil {
		out.Nudges = []Nudge{}
	}
	return out, nil
}

func (c *Client) Standup(ctx context.Context, board BoardSummary) (StandupResult, error) {
	if len(board.Projects) == 0 {
		return StandupResult{}, ErrEmptyInput
	}
	user, err := summaryPrompt(board)
	if err != nil {
		return StandupResult{}, err
	}
	var out StandupResult
	if err := c.completeJSON(ctx, "standup", standupSystem, user, &out); err != nil {
		return StandupResult{}, err
	}
	if out.Members == nil {
		out.Members = []StandupMember{}
	}
	if out.TeamHighlights == nil {
		out.TeamHighlights = []string{}
	}
	return out, nil
}

func (c *Client) Retro(ctx context.Context, project ProjectSummary) (RetroResult, error) {
	if strings.TrimSpace(project.Name) == "" && len(project.Tasks) == 0 {
		return RetroResult{}, ErrEmptyInput
	}
	user, err := summaryPrompt(project)
	if err != nil {
		return RetroResult{}, err
	}
	var out RetroResult
	if err := c.completeJSON(ctx, "retro", retroSystem, user, &out); err != nil {
		return RetroResult{}, err
	}
	if out.HealthScore < 0 {
		out.HealthScore = 0
	}
	if out.HealthScore > 100 {
		out.HealthScore = 100
	}
	return out, nil
}

func summaryPrompt(v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return "Board summary (JSON):\n" + string(b), nil
}

// ClampStatus maps whatever the model answered onto a board column, defaulting to inbox.
func ClampStatus(s model.Status) model.Status {
	if st, ok := model.ParseStatus(string(s)); ok {
		return st
	}
	return model.StatusInbox
}

func clampNudgeType(t string) string {
	switch strings.ToLower(strings.TrimSpace(t)) {
	case "warning":
		return "warning"
	case "celebration":
		return "celebration"
	default:
		return "suggestion"
	}
}

func cleanTags(in []string) []string {
	out := make([]string, 0, len(in))
	seen := map[string]bool{}
	for _, raw := range in {
		tag := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(raw), "#")))
		if tag == "" || seen[tag] {
			continue
		}
		if len(out) >= maxTags {
			break
		}
		seen[tag] = true
		out = append(out, tag)
	}
	return out
}

func cleanPlan(p Plan) Plan {
	p.ProjectName = strings.TrimSpace(p.ProjectName)
	tasks := make([]PlanTask, 0, len(p.Tasks))
	for _, t := range p.Tasks {
		t.Title = strings.TrimSpace(t.Title)
		if t.Title == "" {
			continue
		}
		if len(tasks) >= maxPlanTasks {
			break
		}
		t.Tags = cleanTags(t.Tags)
		t.Status = ClampStatus(t.Status)
		tasks = append(tasks, t)
	}
	p.Tasks = tasks
	return p
}

func cleanQuickTask(qt QuickTask) QuickTask {
	qt.Title = strings.TrimSpace(qt.Title)
	qt.Description = strings.TrimSpace(qt.Description)
	qt.AssigneeName = strings.TrimSpace(qt.AssigneeName)
	qt.ProjectName = strings.TrimSpace(qt.ProjectName)
	switch p := strings.ToLower(strings.TrimSpace(qt.Priority)); p {
	case "low", "medium", "high":
		qt.Priority = p
	default:
		qt.Priority = "medium"
	}
	qt.Tags = cleanTags(qt.Tags)
	qt.Status = ClampStatus(qt.Status)
	return qt
}
