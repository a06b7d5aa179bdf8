package app

import (
	"context"
	"strings"

	"flowboard/internal/model"
)

// OpenProject shows the board of id. Unknown ids are ignored.
func (c *Controller) OpenProject(ctx context.Context, id string) Result {
	p, ok := c.env.FindProject(strings.TrimSpace(id))
	if !ok {
		return Result{}
	}
	c.env.ActiveProjectID = model.StrPtr(p.ID)
	c.env.View = model.ViewBoard
	c.clearTransient()
	c.persist(ctx)
	return Result{Changed: true, ID: p.ID}
}

// Back returns to the projects list from the board or the users list.
func (c *Controller) Back(ctx context.Context) Result {
	if c.env.View == model.ViewProjects {
		return Result{}
	}
	return c.ShowProjects(ctx)
}

func (c *Controller) ShowProjects(ctx context.Context) Result {
	c.env.View = model.ViewProjects
	c.env.ActiveProjectID = nil
	c.clearTransient()
	c.persist(ctx)
	return Result{Changed: true}
}

func (c *Controller) ShowUsers(ctx context.Context) Result {
	c.env.View = model.ViewUsers
	c.env.ActiveProjectID = nil
	c.clearTransient()
	c.persist(ctx)
	return Result{Changed: true}
}

func (c *Controller) Query() string    { return c.query }
func (c *Controller) TagQuery() string { return c.tagQuery }

func (c *Controller) SetQuery(q string)    { c.query = q }
func (c *Controller) SetTagQuery(q string) { c.tagQuery = q }

// OpenTask shows the detail panel for id when it belongs to the active board.
func (c *Controller) OpenTask(id string) bool {
	t, ok := c.env.FindTask(id)
	if !ok || c.env.ActiveProjectID == nil || t.ProjectID != *c.env.ActiveProjectID {
		return false
	}
	c.openTaskID = t.ID
	return true
}

func (c *Controller) CloseTask() { c.openTaskID = "" }

func (c *Controller) OpenTaskID() string { return c.openTaskID }
