package board

import (
	"sort"

	"flowboard/internal/model"
)

// NormalizeOrder rewrites Order for every (projectID, status) partition of projectID as a dense
// 0..n-1 sequence, keeping the current relative order (ties keep slice order).
//
// Tasks keep their slice positions; the input slice is not modified.
func NormalizeOrder(tasks []model.Task, projectID string) []model.Task {
	out := cloneTasks(tasks)
	parts := map[model.Status][]int{}
	for i := range out {
		if out[i].ProjectID != projectID {
			continue
		}
		parts[out[i].Status] = append(parts[out[i].Status], i)
	}
	for _, idxs := range parts {
		sort.SliceStable(idxs, func(a, b int) bool {
			return out[idxs[a]].Order < out[idxs[b]].Order
		})
		for n, idx := range idxs {
			out[idx].Order = n
		}
	}
	return out
}

// NormalizeAll normalizes every project present in tasks.
func NormalizeAll(tasks []model.Task) []model.Task {
	out := cloneTasks(tasks)
	seen := map[string]bool{}
	for _, t := range tasks {
		if seen[t.ProjectID] {
			continue
		}
		seen[t.ProjectID] = true
		out = NormalizeOrder(out, t.ProjectID)
	}
	return out
}

// Column returns the tasks of one (projectID, status) partition in display order.
func Column(tasks []model.Task, projectID string, status model.Status) []model.Task {
	out := make([]model.Task, 0, 8)
	for _, t := range tasks {
		if t.ProjectID == projectID && t.Status == status {
			out = append(out, t)
		}
	}
	sortByOrder(out)
	return out
}

// ColumnLen counts the tasks of one partition.
func ColumnLen(tasks []model.Task, projectID string, status model.Status) int {
	n := 0
	for _, t := range tasks {
		if t.ProjectID == projectID && t.Status == status {
			n++
		}
	}
	return n
}

func sortByOrder(tasks []model.Task) {
	sort.SliceStable(tasks, func(i, j int) bool { return tasks[i].Order < tasks[j].Order })
}

func cloneTasks(tasks []model.Task) []model.Task {
	out := make([]model.Task, len(tasks))
	for i := range tasks {
		out[i] = tasks[i].Clone()
	}
	return out
}
