package tui

import (
	"fmt"
	"strings"

	"flowboard/internal/ids"
	"flowboard/internal/model"
)

// listTop is the first screen row of the projects and users lists.
const listTop = 2

// listRowAt maps a screen row to a list index.
func listRowAt(y, n int) (int, bool) {
	i := y - listTop
	if i < 0 || i >= n {
		return -1, false
	}
	return i, true
}

func renderProjectList(projects []model.Project, counts func(string) map[model.Status]int, sel, width, height int) string {
	if len(projects) == 0 {
		return normalizePane(styleMuted().Render("  No projects yet. Press n to create one."), width, height)
	}
	lines := make([]string, 0, len(projects))
	for i, p := range projects {
		c := counts(p.ID)
		total := 0
		for _, n := range c {
			total += n
		}
		row := fmt.Sprintf("  %-30s %3d tasks  %d doing  %d done  %s",
			truncateText(p.Name, 30), total, c[model.StatusDoing], c[model.StatusDone], ids.RelativeTimeNow(p.CreatedAt))
		lines = append(lines, styleListRow(row, i == sel, width))
	}
	return normalizePane(strings.Join(lines, "\n"), width, height)
}

func renderUserList(users []model.User, assigned func(string) int, sel, width, height int) string {
	if len(users) == 0 {
		return normalizePane(styleMuted().Render("  No team members. Press n to add one."), width, height)
	}
	lines := make([]string, 0, len(users))
	for i, u := range users {
		row := fmt.Sprintf("  [%-2s] %-28s %3d assigned  joined %s",
			u.Initials, truncateText(u.Name, 28), assigned(u.ID), ids.RelativeTimeNow(u.CreatedAt))
		lines = append(lines, styleListRow(row, i == sel, width))
	}
	return normalizePane(strings.Join(lines, "\n"), width, height)
}

func styleListRow(row string, selected bool, width int) string {
	row = truncateText(row, width)
	if selected {
		return styleSelectedRow.Width(width).Render(row)
	}
	return row
}
