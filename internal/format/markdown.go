package format

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"

	"flowboard/internal/llm"
)

var (
	mdRendererMu sync.Mutex
	// Keyed by style + wrap width. A fixed standard style avoids terminal background queries.
	mdRenderers = map[string]*glamour.TermRenderer{}
)

// RenderMarkdown renders md for a terminal. On renderer failure the raw markdown is returned.
func RenderMarkdown(md, style string, width int) string {
	md = strings.TrimSpace(md)
	if md == "" {
		return ""
	}
	if width < 20 {
		width = 20
	}
	if strings.TrimSpace(style) == "" {
		style = "dark"
	}

	key := style + ":" + strconv.Itoa(width)
	mdRendererMu.Lock()
	r := mdRenderers[key]
	mdRendererMu.Unlock()

	if r == nil {
		rr, err := glamour.NewTermRenderer(
			glamour.WithStandardStyle(style),
			glamour.WithWordWrap(width),
		)
		if err != nil {
			return md
		}
		mdRendererMu.Lock()
		if existing := mdRenderers[key]; existing != nil {
			r = existing
		} else {
			mdRenderers[key] = rr
			r = rr
		}
		mdRendererMu.Unlock()
	}

	out, err := r.Render(md)
	if err != nil {
		return md
	}
	return strings.TrimRight(out, "\n")
}

func NudgesMarkdown(res llm.NudgesResult) string {
	var b strings.Builder
	b.WriteString("# Nudges\n\n")
	if len(res.Nudges) == 0 {
		b.WriteString("_Nothing needs attention._\n")
		return b.String()
	}
	for _, n := range res.Nudges {
		fmt.Fprintf(&b, "- **%s** %s\n", n.Type, n.Message)
	}
	return b.String()
}

func StandupMarkdown(res llm.StandupResult) string {
	var b strings.Builder
	b.WriteString("# Standup\n\n")
	if s := strings.TrimSpace(res.Summary); s != "" {
		b.WriteString(s + "\n\n")
	}
	for _, m := range res.Members {
		fmt.Fprintf(&b, "## %s\n\n", m.Name)
		bullets(&b, "Done", m.Done)
		bullets(&b, "Doing", m.Doing)
		bullets(&b, "Next", m.Next)
	}
	bullets(&b, "Team highlights", res.TeamHighlights)
	return b.String()
}

func RetroMarkdown(res llm.RetroResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Retro: %d/100 (%s)\n\n", res.HealthScore, res.HealthLabel)
	if s := strings.TrimSpace(res.Summary); s != "" {
		b.WriteString(s + "\n\n")
	}
	if s := strings.TrimSpace(res.Velocity); s != "" {
		fmt.Fprintf(&b, "**Velocity:** %s\n\n", s)
	}
	if s := strings.TrimSpace(res.WorkloadSummary); s != "" {
		fmt.Fprintf(&b, "**Workload:** %s\n\n", s)
	}
	bullets(&b, "Wins", res.Wins)
	bullets(&b, "Risks", res.Risks)
	bullets(&b, "Recommendations", res.Recommendations)
	return b.String()
}

// SummaryMarkdown renders a board summary as per-project count tables.
func SummaryMarkdown(s llm.BoardSummary) string {
	var b strings.Builder
	b.WriteString("# Board\n\n")
	for _, p := range s.Projects {
		fmt.Fprintf(&b, "## %s\n\n| Status | Tasks |\n|---|---|\n", p.Name)
		keys := make([]string, 0, len(p.Counts))
		for k := range p.Counts {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(&b, "| %s | %d |\n", k, p.Counts[k])
		}
		b.WriteString("\n")
	}
	return b.String()
}

func bullets(b *strings.Builder, title string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(b, "**%s**\n\n", title)
	for _, it := range items {
		fmt.Fprintf(b, "- %s\n", it)
	}
	b.WriteString("\n")
}
