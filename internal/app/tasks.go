package app

import (
	"context"
	"math"
	"reflect"
	"strings"

	"flowboard/internal/board"
	"flowboard/internal/model"
)

// TaskPatch lists the fields UpdateTask merges. Nil fields are left alone.
type TaskPatch struct {
	Title  *string
	Status *model.Status
	// Tags replaces the tag list when non-nil; an empty slice clears it.
	Tags []string
	// Assignee is a user id; an empty string clears the assignment.
	Assignee *string
}

// CreateTask adds a task to the front of the active project's inbox.
func (c *Controller) CreateTask(ctx context.Context, title, tagsCSV string) (Result, error) {
	if c.env.ActiveProjectID == nil {
		if strings.TrimSpace(title) == "" {
			return Result{}, &ValidationError{Field: "title", Msg: "task title is required"}
		}
		return Result{}, &ValidationError{Field: "project", Msg: "no project is open"}
	}
	return c.CreateTaskIn(ctx, *c.env.ActiveProjectID, title, tagsCSV)
}

// CreateTaskIn adds a task to the front of projectID's inbox.
func (c *Controller) CreateTaskIn(ctx context.Context, projectID, title, tagsCSV string) (Result, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return Result{}, &ValidationError{Field: "title", Msg: "task title is required"}
	}
	if _, ok := c.env.FindProject(projectID); !ok {
		return Result{}, &ValidationError{Field: "project", Msg: "unknown project " + projectID}
	}
	t := c.insertTask(projectID, title, board.ParseTagsCSV(tagsCSV, board.MaxTagsOnCreate), model.StatusInbox, true)
	c.persist(ctx)
	return Result{Changed: true, ID: t.ID}, nil
}

// insertTask appends a new task at the front or the end of its column and renormalizes.
func (c *Controller) insertTask(projectID, title string, tags []string, status model.Status, front bool) model.Task {
	t := model.Task{
		ID:        c.newID(),
		ProjectID: projectID,
		Title:     title,
		Tags:      tags,
		Status:    status,
		CreatedAt: c.now(),
	}
	if t.Tags == nil {
		t.Tags = []string{}
	}
	if front {
		t.Order = -1
	} else {
		t.Order = math.MaxInt
	}
	c.env.Tasks = board.NormalizeOrder(append(c.env.Tasks, t), projectID)
	return t
}

// UpdateTask merges patch into the task. A status change moves the task to the end of the
// target column.
func (c *Controller) UpdateTask(ctx context.Context, id string, patch TaskPatch) (Result, error) {
	var title string
	if patch.Title != nil {
		title = strings.TrimSpace(*patch.Title)
		if title == "" {
			return Result{}, &ValidationError{Field: "title", Msg: "task title is required"}
		}
	}
	if patch.Status != nil && !patch.Status.Valid() {
		return Result{}, &ValidationError{Field: "status", Msg: "unknown status " + string(*patch.Status)}
	}
	var tags []string
	if patch.Tags != nil {
		tags = board.NormalizeTags(patch.Tags, 0)
		if len(tags) > board.MaxTags {
			return Result{}, &ValidationError{Field: "tags", Msg: "a task holds at most 8 tags"}
		}
	}

	t, ok := c.env.FindTask(strings.TrimSpace(id))
	if !ok {
		return Result{}, nil
	}
	before := t.Clone()

	if patch.Title != nil {
		t.Title = title
	}
	if patch.Tags != nil {
		t.Tags = tags
	}
	if patch.Assignee != nil {
		next := strings.TrimSpace(*patch.Assignee)
		if next == "" {
			t.AssigneeID = nil
		} else if _, ok := c.env.FindUser(next); ok {
			t.AssigneeID = model.StrPtr(next)
		}
	}
	if patch.Status != nil && *patch.Status != t.Status {
		t.Status = *patch.Status
		t.Order = math.MaxInt
	}

	if reflect.DeepEqual(before, *t) {
		return Result{ID: before.ID}, nil
	}
	if t.Status != before.Status {
		c.env.Tasks = board.NormalizeOrder(c.env.Tasks, before.ProjectID)
	}
	c.persist(ctx)
	return Result{Changed: true, ID: before.ID}, nil
}

func (c *Controller) AddTag(ctx context.Context, id, tag string) (Result, error) {
	tag = strings.ToLower(strings.TrimSpace(tag))
	if tag == "" {
		return Result{}, &ValidationError{Field: "tag", Msg: "tag is required"}
	}
	t, ok := c.env.FindTask(strings.TrimSpace(id))
	if !ok {
		return Result{}, nil
	}
	for _, existing := range t.Tags {
		if existing == tag {
			return Result{ID: t.ID}, nil
		}
	}
	if len(t.Tags) >= board.MaxTags {
		return Result{}, &ValidationError{Field: "tags", Msg: "a task holds at most 8 tags"}
	}
	t.Tags = append(append([]string{}, t.Tags...), tag)
	c.persist(ctx)
	return Result{Changed: true, ID: t.ID}, nil
}

func (c *Controller) RemoveTag(ctx context.Context, id, tag string) Result {
	tag = strings.ToLower(strings.TrimSpace(tag))
	t, ok := c.env.FindTask(strings.TrimSpace(id))
	if !ok {
		return Result{}
	}
	next := make([]string, 0, len(t.Tags))
	for _, existing := range t.Tags {
		if existing != tag {
			next = append(next, existing)
		}
	}
	if len(next) == len(t.Tags) {
		return Result{ID: t.ID}
	}
	t.Tags = next
	c.persist(ctx)
	return Result{Changed: true, ID: t.ID}
}

func (c *Controller) DeleteTask(ctx context.Context, id string) Result {
	id = strings.TrimSpace(id)
	t, ok := c.env.FindTask(id)
	if !ok {
		return Result{}
	}
	projectID := t.ProjectID
	tasks := make([]model.Task, 0, len(c.env.Tasks))
	for _, other := range c.env.Tasks {
		if other.ID != id {
			tasks = append(tasks, other)
		}
	}
	c.env.Tasks = board.NormalizeOrder(tasks, projectID)
	if c.openTaskID == id {
		c.openTaskID = ""
	}
	if c.drag.DraggingID == id {
		c.drag = Drag{}
	}
	c.persist(ctx)
	return Result{Changed: true, ID: id}
}

// AssignTask sets or (with nil) clears the assignee. A user id that does not exist is ignored,
// so no task ever references a missing user.
func (c *Controller) AssignTask(ctx context.Context, id string, userID *string) Result {
	t, ok := c.env.FindTask(strings.TrimSpace(id))
	if !ok {
		return Result{}
	}
	if userID == nil || strings.TrimSpace(*userID) == "" {
		if t.AssigneeID == nil {
			return Result{ID: t.ID}
		}
		t.AssigneeID = nil
		c.persist(ctx)
		return Result{Changed: true, ID: t.ID}
	}
	next := strings.TrimSpace(*userID)
	if _, ok := c.env.FindUser(next); !ok {
		c.log.WithField("user", next).Debug("assign: unknown user ignored")
		return Result{ID: t.ID}
	}
	if t.AssigneeID != nil && *t.AssigneeID == next {
		return Result{ID: t.ID}
	}
	t.AssigneeID = model.StrPtr(next)
	c.persist(ctx)
	return Result{Changed: true, ID: t.ID}
}

// MoveTask places the task at index within status and re-densifies its project.
func (c *Controller) MoveTask(ctx context.Context, id string, status model.Status, index int) (Result, error) {
	if !status.Valid() {
		return Result{}, &ValidationError{Field: "status", Msg: "unknown status " + string(status)}
	}
	next, ok := board.MoveTask(c.env.Tasks, strings.TrimSpace(id), status, index)
	if !ok {
		return Result{}, nil
	}
	if sameSlots(c.env.Tasks, next) {
		return Result{ID: id}, nil
	}
	c.env.Tasks = next
	c.persist(ctx)
	return Result{Changed: true, ID: id}, nil
}

// VisibleTasks applies the title and tag filters to the active board.
func (c *Controller) VisibleTasks() []model.Task {
	if c.env.ActiveProjectID == nil {
		return nil
	}
	return board.Filter(c.env.Tasks, *c.env.ActiveProjectID, c.query, c.tagQuery)
}

// ColumnIndex converts a rank among the visible cards of status on the active board into the
// MoveTask index of the full column. excludeID is the task being moved.
func (c *Controller) ColumnIndex(status model.Status, rank int, excludeID string) int {
	if c.env.ActiveProjectID == nil {
		return rank
	}
	full := board.Column(c.env.Tasks, *c.env.ActiveProjectID, status)
	return board.FullIndex(full, c.ColumnTasks(status), rank, excludeID)
}

// ColumnTasks returns the visible tasks of one column in display order.
func (c *Controller) ColumnTasks(status model.Status) []model.Task {
	if c.env.ActiveProjectID == nil {
		return nil
	}
	return board.Column(c.VisibleTasks(), *c.env.ActiveProjectID, status)
}
