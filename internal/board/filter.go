package board

import (
	"strings"

	"flowboard/internal/model"
)

// Filter returns the tasks of projectID whose title contains query and that carry at least one
// tag containing tagQuery (both case-insensitive). Only an empty query imposes no constraint;
// whitespace is matched literally.
func Filter(tasks []model.Task, projectID, query, tagQuery string) []model.Task {
	q := strings.ToLower(query)
	tq := strings.ToLower(tagQuery)

	out := make([]model.Task, 0, len(tasks))
	for _, t := range tasks {
		if t.ProjectID != projectID {
			continue
		}
		if q != "" && !strings.Contains(strings.ToLower(t.Title), q) {
			continue
		}
		if tq != "" && !anyTagContains(t.Tags, tq) {
			continue
		}
		out = append(out, t)
	}
	return out
}

func anyTagContains(tags []string, needle string) bool {
	for _, tag := range tags {
		if strings.Contains(strings.ToLower(tag), needle) {
			return true
		}
	}
	return false
}
