package model

import "strings"

// Status is the board column a task renders in.
type Status string

const (
	StatusInbox   Status = "inbox"
	StatusPlanned Status = "planned"
	StatusDoing   Status = "doing"
	StatusDone    Status = "done"
)

// Statuses lists the columns in canonical (left to right) order.
var Statuses = []Status{StatusInbox, StatusPlanned, StatusDoing, StatusDone}

func (s Status) Valid() bool {
	switch s {
	case StatusInbox, StatusPlanned, StatusDoing, StatusDone:
		return true
	default:
		return false
	}
}

// Label is the column header text.
func (s Status) Label() string {
	switch s {
	case StatusInbox:
		return "Inbox"
	case StatusPlanned:
		return "Planned"
	case StatusDoing:
		return "Doing"
	case StatusDone:
		return "Done"
	default:
		return string(s)
	}
}

// ParseStatus accepts the canonical ids plus a few common aliases.
func ParseStatus(s string) (Status, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "inbox", "backlog", "new":
		return StatusInbox, true
	case "planned", "todo", "next":
		return StatusPlanned, true
	case "doing", "in-progress", "in_progress", "inprogress", "wip":
		return StatusDoing, true
	case "done", "complete", "completed":
		return StatusDone, true
	default:
		return "", false
	}
}

// View is the top-level screen.
type View string

const (
	ViewProjects View = "projects"
	ViewUsers    View = "users"
	ViewBoard    View = "board"
)

func (v View) Valid() bool {
	return v == ViewProjects || v == ViewUsers || v == ViewBoard
}

type Project struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	CreatedAt int64  `json:"createdAt"`
}

type User struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Initials string `json:"initials"`
	// CreatedAt is epoch milliseconds.
	CreatedAt int64 `json:"createdAt"`
}

type Task struct {
	ID         string   `json:"id"`
	ProjectID  string   `json:"projectId"`
	Title      string   `json:"title"`
	Tags       []string `json:"tags"`
	Status     Status   `json:"status"`
	AssigneeID *string  `json:"assigneeId,omitempty"`
	// Order is only meaningful within the (ProjectID, Status) partition.
	Order     int   `json:"order"`
	CreatedAt int64 `json:"createdAt"`
}

// Clone returns a copy that shares no slices or pointers with t.
func (t Task) Clone() Task {
	out := t
	if t.Tags != nil {
		out.Tags = append([]string{}, t.Tags...)
	}
	if t.AssigneeID != nil {
		id := *t.AssigneeID
		out.AssigneeID = &id
	}
	return out
}

// Envelope is the persisted application state.
type Envelope struct {
	Projects        []Project `json:"projects"`
	Users           []User    `json:"users"`
	Tasks           []Task    `json:"tasks"`
	ActiveProjectID *string   `json:"activeProjectId"`
	View            View      `json:"view"`
}

// Clone deep-copies the envelope.
func (e Envelope) Clone() Envelope {
	out := Envelope{
		Projects: append([]Project{}, e.Projects...),
		Users:    append([]User{}, e.Users...),
		Tasks:    make([]Task, 0, len(e.Tasks)),
		View:     e.View,
	}
	for _, t := range e.Tasks {
		out.Tasks = append(out.Tasks, t.Clone())
	}
	if e.ActiveProjectID != nil {
		id := *e.ActiveProjectID
		out.ActiveProjectID = &id
	}
	return out
}

func (e *Envelope) FindProject(id string) (*Project, bool) {
	for i := range e.Projects {
		if e.Projects[i].ID == id {
			return &e.Projects[i], true
		}
	}
	return nil, false
}

func (e *Envelope) FindUser(id string) (*User, bool) {
	for i := range e.Users {
		if e.Users[i].ID == id {
			return &e.Users[i], true
		}
	}
	return nil, false
}

func (e *Envelope) FindTask(id string) (*Task, bool) {
	for i := range e.Tasks {
		if e.Tasks[i].ID == id {
			return &e.Tasks[i], true
		}
	}
	return nil, false
}

// StrPtr is a small helper for optional string fields.
func StrPtr(s string) *string { return &s }
