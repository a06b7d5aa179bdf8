package board

import (
	"fmt"
	"reflect"
	"testing"

	"pgregory.net/rapid"

	"flowboard/internal/model"
)

var genStatus = rapid.SampledFrom(model.Statuses)

func genTasks(t *rapid.T) []model.Task {
	n := rapid.IntRange(0, 30).Draw(t, "n")
	projects := []string{"p1", "p2", "p3"}
	out := make([]model.Task, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, model.Task{
			ID:        fmt.Sprintf("t%d", i),
			ProjectID: rapid.SampledFrom(projects).Draw(t, "project"),
			Title:     fmt.Sprintf("task %d", i),
			Status:    genStatus.Draw(t, "status"),
			Order:     rapid.IntRange(-5, 20).Draw(t, "order"),
		})
	}
	return out
}

func assertDense(t *rapid.T, tasks []model.Task) {
	groups := map[string][]int{}
	for _, tk := range tasks {
		key := tk.ProjectID + "/" + string(tk.Status)
		groups[key] = append(groups[key], tk.Order)
	}
	for key, orders := range groups {
		seen := make([]bool, len(orders))
		for _, o := range orders {
			if o < 0 || o >= len(orders) || seen[o] {
				t.Fatalf("group %s not dense: %v", key, orders)
			}
			seen[o] = true
		}
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		tasks := genTasks(t)
		once := NormalizeAll(tasks)
		twice := NormalizeAll(once)
		if !reflect.DeepEqual(once, twice) {
			t.Fatalf("normalization not idempotent")
		}
		assertDense(t, once)
	})
}

func TestMoveKeepsDensity(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		tasks := NormalizeAll(genTasks(t))
		if len(tasks) == 0 {
			return
		}
		steps := rapid.IntRange(1, 20).Draw(t, "steps")
		for i := 0; i < steps; i++ {
			victim := tasks[rapid.IntRange(0, len(tasks)-1).Draw(t, "victim")]
			target := genStatus.Draw(t, "target")
			idx := rapid.IntRange(-2, 12).Draw(t, "index")

			before := Column(tasks, victim.ProjectID, target)
			next, ok := MoveTask(tasks, victim.ID, target, idx)
			if !ok {
				t.Fatalf("move of existing task rejected")
			}
			if len(next) != len(tasks) {
				t.Fatalf("task count changed: %d -> %d", len(tasks), len(next))
			}
			assertDense(t, next)

			// siblings keep their relative order
			var siblings []string
			for _, tk := range before {
				if tk.ID != victim.ID {
					siblings = append(siblings, tk.ID)
				}
			}
			var after []string
			for _, tk := range Column(next, victim.ProjectID, target) {
				if tk.ID == victim.ID {
					continue
				}
				after = append(after, tk.ID)
			}
			if !reflect.DeepEqual(siblings, after) {
				t.Fatalf("sibling order changed: %v -> %v", siblings, after)
			}
			moved := findTask(next, victim.ID)
			if moved.Status != target {
				t.Fatalf("moved task status %s, want %s", moved.Status, target)
			}
			tasks = next
		}
	})
}

func TestInsertionIndexProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(0, 10).Draw(t, "n")
		mids := make([]float64, n)
		y := 0.0
		for i := range mids {
			y += float64(rapid.IntRange(1, 5).Draw(t, "gap"))
			mids[i] = y
		}
		p := float64(rapid.IntRange(-5, 60).Draw(t, "pointer"))
		idx := InsertionIndex(mids, p)
		for i := 0; i < idx; i++ {
			if mids[i] > p {
				t.Fatalf("midpoint %d above pointer precedes index %d", i, idx)
			}
		}
		if idx < n && mids[idx] <= p {
			t.Fatalf("midpoint at index %d not below pointer", idx)
		}
	})
}

func findTask(tasks []model.Task, id string) model.Task {
	for _, tk := range tasks {
		if tk.ID == id {
			return tk
		}
	}
	return model.Task{}
}
