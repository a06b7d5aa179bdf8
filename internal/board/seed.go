package board

import (
	"time"

	"flowboard/internal/ids"
	"flowboard/internal/model"
)

// SeedProjects returns the two starter projects with fresh ids.
func SeedProjects() []model.Project {
	now := ids.NowMillis()
	return []model.Project{
		{ID: ids.NewID(), Name: "Website Relaunch", CreatedAt: now - ms(72*time.Hour)},
		{ID: ids.NewID(), Name: "Mobile App", CreatedAt: now - ms(30*time.Hour)},
	}
}

// SeedUsers returns the four starter team members.
func SeedUsers() []model.User {
	now := ids.NowMillis()
	names := []string{"Ava Chen", "Marcus Reid", "Priya Patel", "Jordan Lee"}
	out := make([]model.User, 0, len(names))
	for i, name := range names {
		out = append(out, model.User{
			ID:        ids.NewID(),
			Name:      name,
			Initials:  ids.InitialsOf(name),
			CreatedAt: now - ms(time.Duration(96-i)*time.Hour),
		})
	}
	return out
}

type seedTask struct {
	title    string
	tags     []string
	status   model.Status
	assignee int // index into users, -1 for none
	age      time.Duration
}

var websiteTasks = []seedTask{
	{"Audit current site analytics", []string{"research"}, model.StatusInbox, -1, 3 * time.Hour},
	{"Collect testimonials from customers", []string{"content"}, model.StatusInbox, 2, 50 * time.Minute},
	{"Draft new information architecture", []string{"ux", "planning"}, model.StatusPlanned, 0, 26 * time.Hour},
	{"Choose hosting provider", nil, model.StatusPlanned, -1, 8 * time.Hour},
	{"Design homepage hero", []string{"design"}, model.StatusDoing, 1, 5 * time.Hour},
	{"Migrate blog posts", []string{"content", "migration"}, model.StatusDoing, 3, 2 * time.Hour},
	{"Set up staging environment", []string{"infra"}, model.StatusDone, 3, 48 * time.Hour},
}

var mobileTasks = []seedTask{
	{"Sketch onboarding flow", []string{"ux"}, model.StatusInbox, -1, 90 * time.Minute},
	{"Pick push notification service", []string{"research", "infra"}, model.StatusPlanned, 2, 20 * time.Hour},
	{"Build login screen", []string{"feature"}, model.StatusDoing, 0, 6 * time.Hour},
	{"Write API client", []string{"feature", "backend"}, model.StatusDoing, 1, 4 * time.Hour},
	{"Configure CI builds", []string{"infra"}, model.StatusDone, 3, 30 * time.Hour},
}

// SeedTasks returns starter tasks spread over every column of both projects. When users are
// given, some tasks are assigned to them.
func SeedTasks(projectID1, projectID2 string, users ...model.User) []model.Task {
	now := ids.NowMillis()
	out := make([]model.Task, 0, len(websiteTasks)+len(mobileTasks))
	add := func(projectID string, specs []seedTask) {
		next := map[model.Status]int{}
		for _, s := range specs {
			t := model.Task{
				ID:        ids.NewID(),
				ProjectID: projectID,
				Title:     s.title,
				Tags:      append([]string{}, s.tags...),
				Status:    s.status,
				Order:     next[s.status],
				CreatedAt: now - ms(s.age),
			}
			if s.assignee >= 0 && s.assignee < len(users) {
				t.AssigneeID = model.StrPtr(users[s.assignee].ID)
			}
			next[s.status]++
			out = append(out, t)
		}
	}
	add(projectID1, websiteTasks)
	add(projectID2, mobileTasks)
	return out
}

// SeedEnvelope is the fresh state used on first run and after a reset.
func SeedEnvelope() model.Envelope {
	projects := SeedProjects()
	users := SeedUsers()
	tasks := SeedTasks(projects[0].ID, projects[1].ID, users...)
	return model.Envelope{
		Projects: projects,
		Users:    users,
		Tasks:    NormalizeAll(tasks),
		View:     model.ViewProjects,
	}
}

func ms(d time.Duration) int64 { return d.Milliseconds() }
