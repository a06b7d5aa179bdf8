package app

import (
	"context"
	"strings"

	"flowboard/internal/board"
	"flowboard/internal/llm"
	"flowboard/internal/model"
)

// ImportPlan creates a project from a generated plan. Tasks without a title are skipped; the
// rest keep their plan order within each column.
func (c *Controller) ImportPlan(ctx context.Context, plan llm.Plan) (Result, error) {
	name := strings.TrimSpace(plan.ProjectName)
	if name == "" {
		return Result{}, &ValidationError{Field: "projectName", Msg: "plan has no project name"}
	}
	p := model.Project{ID: c.newID(), Name: name, CreatedAt: c.now()}
	c.env.Projects = append(c.env.Projects, p)
	for _, pt := range plan.Tasks {
		title := strings.TrimSpace(pt.Title)
		if title == "" {
			continue
		}
		status := pt.Status
		if !status.Valid() {
			status = model.StatusInbox
		}
		c.insertTask(p.ID, title, board.NormalizeTags(pt.Tags, board.MaxTagsOnCreate), status, false)
	}
	c.persist(ctx)
	return Result{Changed: true, ID: p.ID}, nil
}

// QuickContext lists the project and user names a quick task may refer to.
func (c *Controller) QuickContext() llm.QuickContext {
	qc := llm.QuickContext{Projects: []string{}, Users: []string{}}
	for _, p := range c.env.Projects {
		qc.Projects = append(qc.Projects, p.Name)
	}
	for _, u := range c.env.Users {
		qc.Users = append(qc.Users, u.Name)
	}
	return qc
}

// ApplyQuickTask creates a structured quick task. ProjectName falls back to the active project;
// an AssigneeName that matches nobody leaves the task unassigned.
func (c *Controller) ApplyQuickTask(ctx context.Context, qt llm.QuickTask) (Result, error) {
	title := strings.TrimSpace(qt.Title)
	if title == "" {
		return Result{}, &ValidationError{Field: "title", Msg: "task title is required"}
	}
	projectID := ""
	if p, ok := c.FindProjectByName(qt.ProjectName); ok {
		projectID = p.ID
	} else if c.env.ActiveProjectID != nil {
		projectID = *c.env.ActiveProjectID
	}
	if projectID == "" {
		return Result{}, &ValidationError{Field: "project", Msg: "no matching project and no project is open"}
	}
	status := qt.Status
	if !status.Valid() {
		status = model.StatusInbox
	}
	t := c.insertTask(projectID, title, board.NormalizeTags(qt.Tags, board.MaxTagsOnCreate), status, status == model.StatusInbox)
	if u, ok := c.FindUserByName(qt.AssigneeName); ok {
		if stored, ok := c.env.FindTask(t.ID); ok {
			stored.AssigneeID = model.StrPtr(u.ID)
		}
	}
	c.persist(ctx)
	return Result{Changed: true, ID: t.ID}, nil
}
