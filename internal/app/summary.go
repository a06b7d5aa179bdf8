package app

import (
	"time"

	"flowboard/internal/board"
	"flowboard/internal/llm"
	"flowboard/internal/model"
)

// Counts tallies the tasks of a project per column.
func (c *Controller) Counts(projectID string) map[model.Status]int {
	out := make(map[model.Status]int, len(model.Statuses))
	for _, s := range model.Statuses {
		out[s] = 0
	}
	for _, t := range c.env.Tasks {
		if t.ProjectID == projectID {
			out[t.Status]++
		}
	}
	return out
}

// Summary describes every project and member for the insight operations.
func (c *Controller) Summary() llm.BoardSummary {
	out := llm.BoardSummary{Projects: []llm.ProjectSummary{}, Members: []llm.MemberSummary{}}
	for _, p := range c.env.Projects {
		out.Projects = append(out.Projects, c.projectSummary(p))
	}
	for _, u := range c.env.Users {
		counts := statusCounts()
		for _, t := range c.env.Tasks {
			if t.AssigneeID != nil && *t.AssigneeID == u.ID {
				counts[string(t.Status)]++
			}
		}
		out.Members = append(out.Members, llm.MemberSummary{Name: u.Name, Counts: counts})
	}
	return out
}

// ProjectSummary describes one project for a retrospective.
func (c *Controller) ProjectSummary(projectID string) (llm.ProjectSummary, error) {
	p, err := c.Project(projectID)
	if err != nil {
		return llm.ProjectSummary{}, err
	}
	return c.projectSummary(p), nil
}

func (c *Controller) projectSummary(p model.Project) llm.ProjectSummary {
	now := c.now()
	ps := llm.ProjectSummary{Name: p.Name, Counts: statusCounts(), Tasks: []llm.TaskSummary{}}
	for _, s := range model.Statuses {
		for _, t := range board.Column(c.env.Tasks, p.ID, s) {
			ps.Counts[string(s)]++
			age := int(time.Duration(now-t.CreatedAt) * time.Millisecond / (24 * time.Hour))
			if age < 0 {
				age = 0
			}
			ts := llm.TaskSummary{Title: t.Title, Status: string(t.Status), Tags: t.Tags, AgeDays: age}
			if t.AssigneeID != nil {
				if u, ok := c.env.FindUser(*t.AssigneeID); ok {
					ts.Assignee = u.Name
				}
			}
			ps.Tasks = append(ps.Tasks, ts)
		}
	}
	return ps
}

func statusCounts() map[string]int {
	out := make(map[string]int, len(model.Statuses))
	for _, s := range model.Statuses {
		out[string(s)] = 0
	}
	return out
}
