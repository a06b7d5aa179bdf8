package app

import (
	"context"
	"math"
	"strings"

	"github.com/sirupsen/logrus"

	"flowboard/internal/board"
	"flowboard/internal/ids"
	"flowboard/internal/model"
)

// Persister is the persistence gateway the controller saves through.
type Persister interface {
	// Load returns nil when nothing is stored. migrated marks state that must be saved as-is.
	Load(ctx context.Context) (env *model.Envelope, migrated bool)
	Save(ctx context.Context, env model.Envelope)
	Reset(ctx context.Context) model.Envelope
}

type Options struct {
	Log logrus.FieldLogger
	// Now returns epoch milliseconds. Defaults to ids.NowMillis.
	Now func() int64
	// NewID defaults to ids.NewID.
	NewID func() string
}

// Result reports whether a mutation changed state. ID names the entity a create produced.
type Result struct {
	Changed bool
	ID      string
}

// Drag is the transient state of an in-flight drag gesture.
type Drag struct {
	DraggingID string
	OverStatus model.Status
}

func (d Drag) Active() bool { return d.DraggingID != "" }

// Controller owns the board state and the view state machine. It is not safe for concurrent
// use; every call is expected to come from the single UI goroutine.
type Controller struct {
	store Persister
	log   logrus.FieldLogger
	now   func() int64
	newID func() string

	env model.Envelope

	query      string
	tagQuery   string
	openTaskID string
	drag       Drag
}

func New(p Persister, opts Options) *Controller {
	log := opts.Log
	if log == nil {
		log = logrus.StandardLogger()
	}
	c := &Controller{
		store: p,
		log:   log.WithField("component", "app"),
		now:   opts.Now,
		newID: opts.NewID,
		env: model.Envelope{
			Projects: []model.Project{},
			Users:    []model.User{},
			Tasks:    []model.Task{},
			View:     model.ViewProjects,
		},
	}
	if c.now == nil {
		c.now = ids.NowMillis
	}
	if c.newID == nil {
		c.newID = ids.NewID
	}
	return c
}

// Boot loads persisted state, seeding and saving starter data when there is none.
func (c *Controller) Boot(ctx context.Context) {
	var env *model.Envelope
	migrated := false
	if c.store != nil {
		env, migrated = c.store.Load(ctx)
	}
	if env == nil {
		c.env = board.SeedEnvelope()
		c.log.Debug("no persisted state; seeded starter board")
		c.persist(ctx)
		return
	}
	c.env = env.Clone()
	if c.repair() || migrated {
		c.persist(ctx)
	}
}

// repair brings loaded state back to the invariants every operation relies on.
func (c *Controller) repair() bool {
	changed := false

	projects := map[string]bool{}
	for _, p := range c.env.Projects {
		projects[p.ID] = true
	}
	users := map[string]bool{}
	for _, u := range c.env.Users {
		users[u.ID] = true
	}

	kept := c.env.Tasks[:0:0]
	dropped := 0
	for _, t := range c.env.Tasks {
		if !projects[t.ProjectID] {
			dropped++
			continue
		}
		if !t.Status.Valid() {
			t.Status = model.StatusInbox
			t.Order = math.MaxInt
			changed = true
		}
		if t.AssigneeID != nil && !users[*t.AssigneeID] {
			t.AssigneeID = nil
			changed = true
		}
		kept = append(kept, t)
	}
	if dropped > 0 {
		c.log.WithField("count", dropped).Warn("dropped tasks of missing projects")
		changed = true
	}
	normalized := board.NormalizeAll(kept)
	if !sameSlots(kept, normalized) {
		changed = true
	}
	c.env.Tasks = normalized

	if !c.env.View.Valid() {
		c.env.View = model.ViewProjects
		changed = true
	}
	if c.env.ActiveProjectID != nil && !projects[*c.env.ActiveProjectID] {
		c.env.ActiveProjectID = nil
		changed = true
	}
	if c.enforceBoardInvariant() {
		changed = true
	}
	return changed
}

// enforceBoardInvariant falls back to the projects view when the board has no project to show.
func (c *Controller) enforceBoardInvariant() bool {
	if c.env.View != model.ViewBoard {
		return false
	}
	if c.env.ActiveProjectID != nil {
		if _, ok := c.env.FindProject(*c.env.ActiveProjectID); ok {
			return false
		}
	}
	c.env.View = model.ViewProjects
	c.env.ActiveProjectID = nil
	c.clearTransient()
	return true
}

func (c *Controller) persist(ctx context.Context) {
	if c.store == nil {
		return
	}
	c.store.Save(ctx, c.env.Clone())
}

func (c *Controller) clearTransient() {
	c.query = ""
	c.tagQuery = ""
	c.openTaskID = ""
	c.drag = Drag{}
}

// Envelope returns a copy of the current state.
func (c *Controller) Envelope() model.Envelope { return c.env.Clone() }

func (c *Controller) View() model.View { return c.env.View }

func (c *Controller) Projects() []model.Project { return append([]model.Project{}, c.env.Projects...) }

func (c *Controller) Users() []model.User { return append([]model.User{}, c.env.Users...) }

// ActiveProject returns the project shown on the board, if any.
func (c *Controller) ActiveProject() (model.Project, bool) {
	if c.env.ActiveProjectID == nil {
		return model.Project{}, false
	}
	p, ok := c.env.FindProject(*c.env.ActiveProjectID)
	if !ok {
		return model.Project{}, false
	}
	return *p, true
}

func (c *Controller) Task(id string) (model.Task, error) {
	t, ok := c.env.FindTask(strings.TrimSpace(id))
	if !ok {
		return model.Task{}, NotFoundError{Kind: "task", ID: id}
	}
	return t.Clone(), nil
}

func (c *Controller) Project(id string) (model.Project, error) {
	p, ok := c.env.FindProject(strings.TrimSpace(id))
	if !ok {
		return model.Project{}, NotFoundError{Kind: "project", ID: id}
	}
	return *p, nil
}

func (c *Controller) User(id string) (model.User, error) {
	u, ok := c.env.FindUser(strings.TrimSpace(id))
	if !ok {
		return model.User{}, NotFoundError{Kind: "user", ID: id}
	}
	return *u, nil
}

// ProjectTasks returns every task of projectID, ignoring the filters.
func (c *Controller) ProjectTasks(projectID string) []model.Task {
	out := make([]model.Task, 0, len(c.env.Tasks))
	for _, t := range c.env.Tasks {
		if t.ProjectID == projectID {
			out = append(out, t.Clone())
		}
	}
	return out
}

// Reset replaces all state with fresh starter data.
func (c *Controller) Reset(ctx context.Context) Result {
	if c.store != nil {
		c.env = c.store.Reset(ctx)
	} else {
		c.env = board.SeedEnvelope()
	}
	c.clearTransient()
	c.persist(ctx)
	return Result{Changed: true}
}

type slot struct {
	status model.Status
	order  int
}

func slots(tasks []model.Task) map[string]slot {
	out := make(map[string]slot, len(tasks))
	for _, t := range tasks {
		out[t.ID] = slot{status: t.Status, order: t.Order}
	}
	return out
}

func sameSlots(a, b []model.Task) bool {
	if len(a) != len(b) {
		return false
	}
	sb := slots(b)
	for _, t := range a {
		if s, ok := sb[t.ID]; !ok || s.status != t.Status || s.order != t.Order {
			return false
		}
	}
	return true
}
