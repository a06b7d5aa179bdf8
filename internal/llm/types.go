package llm

import "flowboard/internal/model"

// Plan is a project generated from a free-text description.
type Plan struct {
	ProjectName string     `json:"projectName" yaml:"projectName"`
	Tasks       []PlanTask `json:"tasks" yaml:"tasks"`
}

type PlanTask struct {
	Title  string       `json:"title" yaml:"title"`
	Tags   []string     `json:"tags" yaml:"tags"`
	Status model.Status `json:"status" yaml:"status"`
}

// QuickContext names what the model may refer to when structuring a quick task.
type QuickContext struct {
	Projects []string `json:"projects" yaml:"projects"`
	Users    []string `json:"users" yaml:"users"`
}

// QuickTask is one structured task. Names are unresolved; the caller maps them to ids.
type QuickTask struct {
	Title        string       `json:"title" yaml:"title"`
	Description  string       `json:"description" yaml:"description"`
	Priority     string       `json:"priority" yaml:"priority"`
	Tags         []string     `json:"tags" yaml:"tags"`
	AssigneeName string       `json:"assigneeName" yaml:"assigneeName"`
	ProjectName  string       `json:"projectName" yaml:"projectName"`
	Status       model.Status `json:"status" yaml:"status"`
}

// BoardSummary is the compact board description sent with insight requests.
type BoardSummary struct {
	Projects []ProjectSummary `json:"projects" yaml:"projects"`
	Members  []MemberSummary  `json:"members" yaml:"members"`
}

type ProjectSummary struct {
	Name   string         `json:"name" yaml:"name"`
	Counts map[string]int `json:"counts" yaml:"counts"`
	Tasks  []TaskSummary  `json:"tasks" yaml:"tasks"`
}

type TaskSummary struct {
	Title    string   `json:"title" yaml:"title"`
	Status   string   `json:"status" yaml:"status"`
	Assignee string   `json:"assignee,omitempty" yaml:"assignee,omitempty"`
	Tags     []string `json:"tags,omitempty" yaml:"tags,omitempty"`
	AgeDays  int      `json:"ageDays" yaml:"ageDays"`
}

type MemberSummary struct {
	Name   string         `json:"name" yaml:"name"`
	Counts map[string]int `json:"counts" yaml:"counts"`
}

type Nudge struct {
	Message string `json:"message" yaml:"message"`
	// Type is one of warning|suggestion|celebration.
	Type string `json:"type" yaml:"type"`
}

type NudgesResult struct {
	Nudges []Nudge `json:"nudges" yaml:"nudges"`
}

type StandupMember struct {
	Name  string   `json:"name" yaml:"name"`
	Done  []string `json:"done" yaml:"done"`
	Doing []string `json:"doing" yaml:"doing"`
	Next  []string `json:"next" yaml:"next"`
}

type StandupResult struct {
	Summary        string          `json:"summary" yaml:"summary"`
	Members        []StandupMember `json:"members" yaml:"members"`
	TeamHighlights []string        `json:"teamHighlights" yaml:"teamHighlights"`
}

type RetroResult struct {
	HealthScore     int      `json:"healthScore" yaml:"healthScore"`
	HealthLabel     string   `json:"healthLabel" yaml:"healthLabel"`
	Summary         string   `json:"summary" yaml:"summary"`
	Velocity        string   `json:"velocity" yaml:"velocity"`
	Risks           []string `json:"risks" yaml:"risks"`
	Wins            []string `json:"wins" yaml:"wins"`
	Recommendations []string `json:"recommendations" yaml:"recommendations"`
	WorkloadSummary string   `json:"workloadSummary" yaml:"workloadSummary"`
}
