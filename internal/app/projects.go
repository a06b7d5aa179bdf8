package app

import (
	"context"
	"strings"

	"flowboard/internal/ids"
	"flowboard/internal/model"
)

func (c *Controller) CreateProject(ctx context.Context, name string) (Result, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Result{}, &ValidationError{Field: "name", Msg: "project name is required"}
	}
	p := model.Project{ID: c.newID(), Name: name, CreatedAt: c.now()}
	c.env.Projects = append(c.env.Projects, p)
	c.persist(ctx)
	return Result{Changed: true, ID: p.ID}, nil
}

func (c *Controller) RenameProject(ctx context.Context, id, name string) (Result, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Result{}, &ValidationError{Field: "name", Msg: "project name is required"}
	}
	p, ok := c.env.FindProject(strings.TrimSpace(id))
	if !ok || p.Name == name {
		return Result{}, nil
	}
	p.Name = name
	c.persist(ctx)
	return Result{Changed: true, ID: p.ID}, nil
}

// DeleteProject removes the project and every task in it. Deleting the active project returns
// to the projects list.
func (c *Controller) DeleteProject(ctx context.Context, id string) Result {
	id = strings.TrimSpace(id)
	if _, ok := c.env.FindProject(id); !ok {
		return Result{}
	}
	projects := make([]model.Project, 0, len(c.env.Projects))
	for _, p := range c.env.Projects {
		if p.ID != id {
			projects = append(projects, p)
		}
	}
	tasks := make([]model.Task, 0, len(c.env.Tasks))
	for _, t := range c.env.Tasks {
		if t.ProjectID != id {
			tasks = append(tasks, t)
		}
	}
	c.env.Projects = projects
	c.env.Tasks = tasks
	if c.env.ActiveProjectID != nil && *c.env.ActiveProjectID == id {
		c.env.ActiveProjectID = nil
		c.env.View = model.ViewProjects
		c.clearTransient()
	}
	c.persist(ctx)
	return Result{Changed: true, ID: id}
}

func (c *Controller) CreateUser(ctx context.Context, name string) (Result, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Result{}, &ValidationError{Field: "name", Msg: "user name is required"}
	}
	u := model.User{ID: c.newID(), Name: name, Initials: ids.InitialsOf(name), CreatedAt: c.now()}
	c.env.Users = append(c.env.Users, u)
	c.persist(ctx)
	return Result{Changed: true, ID: u.ID}, nil
}

// DeleteUser removes the user and unassigns every task that referenced it.
func (c *Controller) DeleteUser(ctx context.Context, id string) Result {
	id = strings.TrimSpace(id)
	if _, ok := c.env.FindUser(id); !ok {
		return Result{}
	}
	users := make([]model.User, 0, len(c.env.Users))
	for _, u := range c.env.Users {
		if u.ID != id {
			users = append(users, u)
		}
	}
	c.env.Users = users
	for i := range c.env.Tasks {
		if a := c.env.Tasks[i].AssigneeID; a != nil && *a == id {
			c.env.Tasks[i].AssigneeID = nil
		}
	}
	c.persist(ctx)
	return Result{Changed: true, ID: id}
}

// FindProjectByName matches names case-insensitively after trimming.
func (c *Controller) FindProjectByName(name string) (model.Project, bool) {
	name = strings.TrimSpace(name)
	if name == "" {
		return model.Project{}, false
	}
	for _, p := range c.env.Projects {
		if strings.EqualFold(p.Name, name) {
			return p, true
		}
	}
	return model.Project{}, false
}

// FindUserByName matches a full name, falling back to initials.
func (c *Controller) FindUserByName(name string) (model.User, bool) {
	name = strings.TrimSpace(name)
	if name == "" {
		return model.User{}, false
	}
	for _, u := range c.env.Users {
		if strings.EqualFold(u.Name, name) {
			return u, true
		}
	}
	for _, u := range c.env.Users {
		if strings.EqualFold(u.Initials, name) {
			return u, true
		}
	}
	return model.User{}, false
}
