package tui

import (
	"fmt"
	"strings"

	"flowboard/internal/ids"
	"flowboard/internal/model"
)

const detailWidth = 38

func renderDetail(t model.Task, users map[string]model.User, height int) string {
	inner := detailWidth - 4
	var b strings.Builder
	for _, ln := range wrapWords(t.Title, inner, 0) {
		b.WriteString(styleTitle.Render(ln) + "\n")
	}
	b.WriteString("\n")
	fmt.Fprintf(&b, "%s %s\n", styleMuted().Render("Status  "), t.Status.Label())
	assignee := "unassigned"
	if t.AssigneeID != nil {
		if u, ok := users[*t.AssigneeID]; ok {
			assignee = u.Name
		}
	}
	fmt.Fprintf(&b, "%s %s\n", styleMuted().Render("Assignee"), styleAssignee.Render(assignee))
	tags := "none"
	if len(t.Tags) > 0 {
		parts := make([]string, 0, len(t.Tags))
		for _, tag := range t.Tags {
			parts = append(parts, styleTag.Render("#"+tag))
		}
		tags = strings.Join(parts, " ")
	}
	fmt.Fprintf(&b, "%s %s\n", styleMuted().Render("Tags    "), tags)
	fmt.Fprintf(&b, "%s %s\n", styleMuted().Render("Created "), ids.RelativeTimeNow(t.CreatedAt))
	b.WriteString("\n")
	b.WriteString(styleMuted().Render("a assign · t tag · esc close"))

	h := height - 2
	if h < 3 {
		h = 3
	}
	return stylePanel.Width(detailWidth - 2).Render(normalizePane(b.String(), inner, h))
}
