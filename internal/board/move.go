package board

import (
	"sort"

	"flowboard/internal/model"
)

// Span is the measured vertical extent of a rendered card.
type Span struct {
	Top    float64
	Height float64
}

func (s Span) Mid() float64 { return s.Top + s.Height/2 }

// Midpoints converts measured spans (top to bottom) to their vertical midpoints.
func Midpoints(spans []Span) []float64 {
	out := make([]float64, len(spans))
	for i, s := range spans {
		out[i] = s.Mid()
	}
	return out
}

// InsertionIndex maps a pointer position to a rank among the siblings of a column.
//
// midpoints are the sibling card midpoints top to bottom, excluding the dragged card. The result
// is the index of the first sibling whose midpoint lies strictly below pointerY, or
// len(midpoints) when there is none.
func InsertionIndex(midpoints []float64, pointerY float64) int {
	for i, m := range midpoints {
		if m > pointerY {
			return i
		}
	}
	return len(midpoints)
}

// FullIndex maps a rank among the visible cards of a column to an insert index in the full
// column. Both slices are in display order; excludeID (the moving task) is ignored in each. A
// rank past the last visible card maps to the end of the full column.
func FullIndex(full, visible []model.Task, rank int, excludeID string) int {
	vis := without(visible, excludeID)
	all := without(full, excludeID)
	if rank < 0 {
		rank = 0
	}
	if rank >= len(vis) {
		return len(all)
	}
	for i, t := range all {
		if t.ID == vis[rank].ID {
			return i
		}
	}
	return len(all)
}

func without(tasks []model.Task, id string) []model.Task {
	out := make([]model.Task, 0, len(tasks))
	for _, t := range tasks {
		if t.ID != id {
			out = append(out, t)
		}
	}
	return out
}

// MoveTask moves taskID into target at insertIndex (clamped to the column length, counted
// without the moved task) and re-densifies every column of the task's project.
//
// Tasks of other projects are returned first in their original order, followed by the moved
// project's tasks flattened in canonical column order. Returns (tasks, false) unchanged when
// taskID is unknown or target is not a board column.
func MoveTask(tasks []model.Task, taskID string, target model.Status, insertIndex int) ([]model.Task, bool) {
	if !target.Valid() {
		return tasks, false
	}
	mi := -1
	for i := range tasks {
		if tasks[i].ID == taskID {
			mi = i
			break
		}
	}
	if mi < 0 {
		return tasks, false
	}

	moving := tasks[mi].Clone()
	projectID := moving.ProjectID

	others := make([]model.Task, 0, len(tasks))
	parts := map[model.Status][]model.Task{}
	for i, t := range tasks {
		if i == mi {
			continue
		}
		if t.ProjectID != projectID {
			others = append(others, t.Clone())
			continue
		}
		parts[t.Status] = append(parts[t.Status], t.Clone())
	}
	for s := range parts {
		sortByOrder(parts[s])
	}

	col := parts[target]
	idx := insertIndex
	if idx < 0 {
		idx = 0
	}
	if idx > len(col) {
		idx = len(col)
	}
	next := make([]model.Task, 0, len(col)+1)
	next = append(next, col[:idx]...)
	next = append(next, moving)
	next = append(next, col[idx:]...)
	parts[target] = next

	out := others
	for _, s := range flattenOrder(parts) {
		for n := range parts[s] {
			t := parts[s][n]
			t.Status = s
			t.Order = n
			out = append(out, t)
		}
	}
	return out, true
}

// flattenOrder is the canonical column order followed by any unknown statuses (sorted), so that
// tasks carrying a foreign status are never dropped.
func flattenOrder(parts map[model.Status][]model.Task) []model.Status {
	out := append([]model.Status{}, model.Statuses...)
	var extra []model.Status
	for s := range parts {
		if !s.Valid() {
			extra = append(extra, s)
		}
	}
	sort.Slice(extra, func(i, j int) bool { return extra[i] < extra[j] })
	return append(out, extra...)
}
