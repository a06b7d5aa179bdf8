package format

import (
	"bytes"
	"strings"
	"testing"

	"flowboard/internal/llm"
	"flowboard/internal/model"
)

func TestWrite_JSONAndYAML(t *testing.T) {
	t.Parallel()

	v := map[string]any{"data": model.Project{ID: "p1", Name: "Alpha", CreatedAt: 7}}

	var js bytes.Buffer
	if err := Write(&js, v, "json", false); err != nil {
		t.Fatalf("json: %v", err)
	}
	if got := strings.TrimSpace(js.String()); got != `{"data":{"id":"p1","name":"Alpha","createdAt":7}}` {
		t.Fatalf("unexpected json: %s", got)
	}

	var pretty bytes.Buffer
	if err := Write(&pretty, v, "", true); err != nil {
		t.Fatalf("pretty: %v", err)
	}
	if !strings.Contains(pretty.String(), "\n  \"data\"") {
		t.Fatalf("expected indented json, got %q", pretty.String())
	}

	var y bytes.Buffer
	if err := Write(&y, v, "yaml", false); err != nil {
		t.Fatalf("yaml: %v", err)
	}
	for _, want := range []string{"data:", "createdAt: 7", "name: Alpha"} {
		if !strings.Contains(y.String(), want) {
			t.Fatalf("yaml missing %q:\n%s", want, y.String())
		}
	}
}

func TestWrite_UnknownFormat(t *testing.T) {
	t.Parallel()
	if err := Write(&bytes.Buffer{}, 1, "edn", false); err == nil {
		t.Fatalf("expected error")
	}
}

func TestInsightMarkdown(t *testing.T) {
	t.Parallel()

	md := RetroMarkdown(llm.RetroResult{
		HealthScore: 72,
		HealthLabel: "Healthy",
		Wins:        []string{"Shipped login"},
		Risks:       []string{"QA backlog"},
	})
	for _, want := range []string{"# Retro: 72/100 (Healthy)", "**Wins**", "- Shipped login", "- QA backlog"} {
		if !strings.Contains(md, want) {
			t.Fatalf("retro markdown missing %q:\n%s", want, md)
		}
	}
	if strings.Contains(md, "Recommendations") {
		t.Fatalf("empty sections should be omitted:\n%s", md)
	}

	if md := NudgesMarkdown(llm.NudgesResult{}); !strings.Contains(md, "Nothing needs attention") {
		t.Fatalf("empty nudges: %s", md)
	}

	md = StandupMarkdown(llm.StandupResult{
		Summary: "Steady.",
		Members: []llm.StandupMember{{Name: "Ava Chen", Done: []string{"Hero copy"}}},
	})
	if !strings.Contains(md, "## Ava Chen") || !strings.Contains(md, "- Hero copy") {
		t.Fatalf("standup markdown:\n%s", md)
	}
}

func TestRenderMarkdown(t *testing.T) {
	t.Parallel()

	if got := RenderMarkdown("   ", "notty", 80); got != "" {
		t.Fatalf("blank input should render empty, got %q", got)
	}
	out := RenderMarkdown("# Title\n\n- one\n- two", "notty", 40)
	if !strings.Contains(out, "Title") || !strings.Contains(out, "one") {
		t.Fatalf("unexpected render:\n%s", out)
	}
}

func TestTable(t *testing.T) {
	t.Parallel()
	out := Table([]string{"Status", "Title"}, [][]string{{"inbox", "Write docs"}})
	if !strings.Contains(out, "Status") || !strings.Contains(out, "Write docs") {
		t.Fatalf("unexpected table:\n%s", out)
	}
}
