package cli

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	json "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	ctl "flowboard/internal/app"
)

// isolate points config and data at a temp dir and clears ambient settings.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("FLOWBOARD_CONFIG_DIR", filepath.Join(dir, "config"))
	for _, k := range []string{
		"FLOWBOARD_DIR", "FLOWBOARD_STORE", "FLOWBOARD_FORMAT", "FLOWBOARD_DEBUG",
		"FLOWBOARD_REDIS_URL", "FLOWBOARD_LLM_API_KEY", "OPENAI_API_KEY",
		"FLOWBOARD_LLM_BASE_URL", "FLOWBOARD_LLM_MODEL", "FLOWBOARD_DATABASE_URL", "DATABASE_URL",
	} {
		t.Setenv(k, "")
	}
	return filepath.Join(dir, "data")
}

func runCLI(t *testing.T, args []string) (stdout []byte, stderr []byte, err error) {
	t.Helper()

	cmd := NewRootCmd()

	var outBuf bytes.Buffer
	var errBuf bytes.Buffer
	cmd.SetOut(&outBuf)
	cmd.SetErr(&errBuf)
	cmd.SetArgs(args)

	e := cmd.Execute()
	return outBuf.Bytes(), errBuf.Bytes(), e
}

// mustRun runs a command against dataDir and returns the decoded envelope.
func mustRun(t *testing.T, dataDir string, args ...string) map[string]any {
	t.Helper()
	full := append([]string{"--store", "file", "--dir", dataDir}, args...)
	out, errOut, err := runCLI(t, full)
	if err != nil {
		t.Fatalf("%v: %v\nstderr=%s", args, err, string(errOut))
	}
	var env map[string]any
	if err := json.Unmarshal(out, &env); err != nil {
		t.Fatalf("%v: decode output: %v\n%s", args, err, string(out))
	}
	if _, ok := env["data"]; !ok {
		t.Fatalf("%v: output has no data key: %s", args, string(out))
	}
	return env
}

func dataMap(t *testing.T, env map[string]any) map[string]any {
	t.Helper()
	m, ok := env["data"].(map[string]any)
	if !ok {
		t.Fatalf("data is %T, want object", env["data"])
	}
	return m
}

func dataList(t *testing.T, env map[string]any) []any {
	t.Helper()
	l, ok := env["data"].([]any)
	if !ok {
		t.Fatalf("data is %T, want array", env["data"])
	}
	return l
}

func TestProjectsSeedCreateOpen(t *testing.T) {
	data := isolate(t)

	list := dataList(t, mustRun(t, data, "projects", "list"))
	if len(list) != 2 {
		t.Fatalf("seeded projects = %d, want 2", len(list))
	}

	created := dataMap(t, mustRun(t, data, "projects", "create", "Garden", "Plan"))
	if created["name"] != "Garden Plan" {
		t.Fatalf("created = %v", created)
	}
	id, _ := created["id"].(string)

	open := dataMap(t, mustRun(t, data, "projects", "open", "garden plan"))
	if open["view"] != "board" {
		t.Fatalf("view = %v, want board", open["view"])
	}
	ap, _ := open["activeProject"].(map[string]any)
	if ap == nil || ap["id"] != id {
		t.Fatalf("active project = %v, want %s", open["activeProject"], id)
	}

	list = dataList(t, mustRun(t, data, "projects", "list"))
	if len(list) != 3 {
		t.Fatalf("projects after create = %d, want 3", len(list))
	}
	active := 0
	for _, it := range list {
		if m, _ := it.(map[string]any); m["active"] == true {
			active++
		}
	}
	if active != 1 {
		t.Fatalf("active rows = %d, want 1", active)
	}
}

func TestProjectsCreateBlankNameFails(t *testing.T) {
	data := isolate(t)
	_, errOut, err := runCLI(t, []string{"--store", "file", "--dir", data, "projects", "create", "   "})
	if err == nil {
		t.Fatalf("expected error for blank project name")
	}
	if !strings.Contains(string(errOut), "name") {
		t.Fatalf("stderr = %q", string(errOut))
	}
}

func TestTasksLifecycle(t *testing.T) {
	data := isolate(t)

	mustRun(t, data, "projects", "create", "Chores")
	mustRun(t, data, "projects", "open", "Chores")

	first := dataMap(t, mustRun(t, data, "tasks", "add", "Wash car", "--tags", "Errand, outdoor, errand"))
	second := dataMap(t, mustRun(t, data, "tasks", "add", "Buy milk"))
	firstID, _ := first["id"].(string)
	secondID, _ := second["id"].(string)

	tags, _ := first["tags"].([]any)
	if len(tags) != 2 || tags[0] != "errand" || tags[1] != "outdoor" {
		t.Fatalf("tags = %v, want [errand outdoor]", tags)
	}

	// New tasks go to the front of the inbox.
	list := dataList(t, mustRun(t, data, "tasks", "list", "--status", "inbox"))
	if len(list) != 2 || list[0].(map[string]any)["id"] != secondID {
		t.Fatalf("inbox order = %v", list)
	}

	moved := dataMap(t, mustRun(t, data, "tasks", "move", firstID, "--status", "doing"))
	if moved["status"] != "doing" || moved["order"] != float64(0) {
		t.Fatalf("moved = %v", moved)
	}

	assigned := dataMap(t, mustRun(t, data, "tasks", "assign", firstID, "--user", "AC"))
	if assigned["assignee"] != "Ava Chen" {
		t.Fatalf("assignee = %v", assigned["assignee"])
	}
	cleared := dataMap(t, mustRun(t, data, "tasks", "assign", firstID, "--clear"))
	if _, ok := cleared["assigneeId"]; ok {
		t.Fatalf("assignee not cleared: %v", cleared)
	}

	tagged := dataMap(t, mustRun(t, data, "tasks", "tag", secondID, "Dairy"))
	if tg, _ := tagged["tags"].([]any); len(tg) != 1 || tg[0] != "dairy" {
		t.Fatalf("tag = %v", tagged["tags"])
	}
	untagged := dataMap(t, mustRun(t, data, "tasks", "untag", secondID, "dairy"))
	if tg, _ := untagged["tags"].([]any); len(tg) != 0 {
		t.Fatalf("untag = %v", untagged["tags"])
	}

	updated := dataMap(t, mustRun(t, data, "tasks", "update", secondID, "--title", "Buy oat milk"))
	if updated["title"] != "Buy oat milk" {
		t.Fatalf("update = %v", updated)
	}

	// Direct lookup path used by `flowboard <task-id>`.
	shown := dataMap(t, mustRun(t, data, "tasks", "show", firstID))
	if shown["title"] != "Wash car" {
		t.Fatalf("show = %v", shown)
	}

	mustRun(t, data, "tasks", "delete", secondID)
	if _, _, err := runCLI(t, []string{"--store", "file", "--dir", data, "tasks", "show", secondID}); err == nil {
		t.Fatalf("deleted task is still shown")
	}
}

func TestTasksMoveRejectsUnknownStatus(t *testing.T) {
	data := isolate(t)
	mustRun(t, data, "projects", "open", "Mobile App")
	list := dataList(t, mustRun(t, data, "tasks", "list"))
	if len(list) == 0 {
		t.Fatalf("seeded project has no tasks")
	}
	id, _ := list[0].(map[string]any)["id"].(string)

	_, _, err := runCLI(t, []string{"--store", "file", "--dir", data, "tasks", "move", id, "--status", "blocked"})
	if err == nil {
		t.Fatalf("expected error for unknown status")
	}
}

func TestTasksAddWithoutActiveProject(t *testing.T) {
	data := isolate(t)
	_, errOut, err := runCLI(t, []string{"--store", "file", "--dir", data, "tasks", "add", "Orphan"})
	if err == nil {
		t.Fatalf("expected error without an open project")
	}
	if !strings.Contains(string(errOut), "--project") {
		t.Fatalf("stderr = %q", string(errOut))
	}
}

func TestBoardColumnsAndFilters(t *testing.T) {
	data := isolate(t)

	env := mustRun(t, data, "board", "--project", "Website Relaunch")
	cols, _ := dataMap(t, env)["columns"].([]any)
	if len(cols) != 4 {
		t.Fatalf("columns = %d, want 4", len(cols))
	}
	want := []string{"inbox", "planned", "doing", "done"}
	total := 0
	for i, c := range cols {
		m := c.(map[string]any)
		if m["status"] != want[i] {
			t.Fatalf("column %d = %v, want %s", i, m["status"], want[i])
		}
		ts, _ := m["tasks"].([]any)
		total += len(ts)
	}
	if total != 7 {
		t.Fatalf("board tasks = %d, want 7", total)
	}

	env = mustRun(t, data, "board", "--project", "Website Relaunch", "--tag", "CONTENT")
	meta, _ := env["meta"].(map[string]any)
	if meta["visible"] != float64(2) {
		t.Fatalf("visible with tag filter = %v, want 2", meta["visible"])
	}

	out, _, err := runCLI(t, []string{"--store", "file", "--dir", data, "board", "--project", "Website Relaunch", "--table"})
	if err != nil {
		t.Fatalf("board --table: %v", err)
	}
	if !strings.Contains(string(out), "Design homepage hero") {
		t.Fatalf("table output missing task:\n%s", string(out))
	}
}

func TestViewTransitions(t *testing.T) {
	data := isolate(t)

	mustRun(t, data, "projects", "open", "Mobile App")
	v := dataMap(t, mustRun(t, data, "view", "show"))
	if v["view"] != "board" {
		t.Fatalf("view = %v", v["view"])
	}

	v = dataMap(t, mustRun(t, data, "view", "users"))
	if v["view"] != "users" || v["activeProject"] != nil {
		t.Fatalf("users view = %v", v)
	}

	v = dataMap(t, mustRun(t, data, "view", "projects"))
	if v["view"] != "projects" {
		t.Fatalf("projects view = %v", v)
	}
}

func TestDeleteActiveProjectReturnsToProjects(t *testing.T) {
	data := isolate(t)
	mustRun(t, data, "projects", "open", "Mobile App")
	res := dataMap(t, mustRun(t, data, "projects", "delete", "Mobile App"))
	if res["view"] != "projects" || res["tasksRemoved"] != float64(5) {
		t.Fatalf("delete = %v", res)
	}
	if n := len(dataList(t, mustRun(t, data, "projects", "list"))); n != 1 {
		t.Fatalf("projects after delete = %d", n)
	}
}

func TestUsersCreateDeleteUnassigns(t *testing.T) {
	data := isolate(t)

	u := dataMap(t, mustRun(t, data, "users", "create", "Sam", "Okafor"))
	if u["initials"] != "SO" {
		t.Fatalf("initials = %v", u["initials"])
	}
	mustRun(t, data, "projects", "open", "Mobile App")
	task := dataMap(t, mustRun(t, data, "tasks", "add", "Review copy"))
	id, _ := task["id"].(string)
	mustRun(t, data, "tasks", "assign", id, "--user", "Sam Okafor")

	mustRun(t, data, "users", "delete", "SO")
	shown := dataMap(t, mustRun(t, data, "tasks", "show", id))
	if _, ok := shown["assigneeId"]; ok {
		t.Fatalf("task still assigned after user delete: %v", shown)
	}
	if n := len(dataList(t, mustRun(t, data, "users", "list"))); n != 4 {
		t.Fatalf("users = %d, want 4", n)
	}
}

func TestResetRequiresYes(t *testing.T) {
	data := isolate(t)
	mustRun(t, data, "projects", "create", "Scratch")

	if _, _, err := runCLI(t, []string{"--store", "file", "--dir", data, "reset"}); err == nil {
		t.Fatalf("reset without --yes should fail")
	}
	res := dataMap(t, mustRun(t, data, "reset", "--yes"))
	if res["projects"] != float64(2) || res["users"] != float64(4) || res["tasks"] != float64(12) {
		t.Fatalf("reset = %v", res)
	}
}

func TestYAMLFormat(t *testing.T) {
	data := isolate(t)
	out, _, err := runCLI(t, []string{"--store", "file", "--dir", data, "--format", "yaml", "users", "list"})
	if err != nil {
		t.Fatalf("users list: %v", err)
	}
	var env struct {
		Data []struct {
			Name string `yaml:"name"`
		} `yaml:"data"`
	}
	if err := yaml.Unmarshal(out, &env); err != nil {
		t.Fatalf("yaml: %v\n%s", err, string(out))
	}
	if len(env.Data) != 4 || env.Data[0].Name != "Ava Chen" {
		t.Fatalf("users = %+v", env.Data)
	}
}

func TestSQLiteBackend(t *testing.T) {
	data := isolate(t)
	args := []string{"--store", "sqlite", "--dir", data}

	out, errOut, err := runCLI(t, append(args, "projects", "create", "Persisted"))
	if err != nil {
		t.Fatalf("create: %v\n%s", err, string(errOut))
	}
	if !strings.Contains(string(out), "Persisted") {
		t.Fatalf("create output = %s", string(out))
	}
	out, _, err = runCLI(t, append(args, "projects", "list"))
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if !strings.Contains(string(out), "Persisted") {
		t.Fatalf("project not persisted in sqlite: %s", string(out))
	}
}

func TestConfigInitAndShow(t *testing.T) {
	isolate(t)
	cfgDir := os.Getenv("FLOWBOARD_CONFIG_DIR")

	if _, _, err := runCLI(t, []string{"config", "init"}); err != nil {
		t.Fatalf("config init: %v", err)
	}
	if _, err := os.Stat(filepath.Join(cfgDir, "config.yaml")); err != nil {
		t.Fatalf("config file: %v", err)
	}
	if _, _, err := runCLI(t, []string{"config", "init"}); err == nil {
		t.Fatalf("second init without --force should fail")
	}

	t.Setenv("FLOWBOARD_LLM_API_KEY", "sk-secret-value")
	out, _, err := runCLI(t, []string{"config", "show"})
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	if strings.Contains(string(out), "sk-secret-value") {
		t.Fatalf("api key leaked: %s", string(out))
	}
	var env map[string]any
	if err := json.Unmarshal(out, &env); err != nil {
		t.Fatalf("decode: %v", err)
	}
	storage, _ := dataMap(t, env)["storage"].(map[string]any)
	if storage["backend"] != "file" {
		t.Fatalf("storage = %v", storage)
	}
}

// fakeLLM serves one canned JSON answer for every chat completion.
func fakeLLM(t *testing.T, content string) {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.Copy(io.Discard, r.Body)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []any{map[string]any{"message": map[string]any{"role": "assistant", "content": content}}},
		})
	}))
	t.Cleanup(srv.Close)
	t.Setenv("FLOWBOARD_LLM_BASE_URL", srv.URL)
	t.Setenv("FLOWBOARD_LLM_API_KEY", "test-key")
}

func TestPlanImportsProject(t *testing.T) {
	data := isolate(t)
	fakeLLM(t, `{"projectName":"Podcast","tasks":[
		{"title":"Buy microphone","tags":["gear"],"status":"planned"},
		{"title":"Record pilot","tags":[],"status":"inbox"}]}`)

	res := dataMap(t, mustRun(t, data, "plan", "launch a podcast"))
	p, _ := res["project"].(map[string]any)
	if p["name"] != "Podcast" {
		t.Fatalf("project = %v", p)
	}
	tasks, _ := res["tasks"].([]any)
	if len(tasks) != 2 {
		t.Fatalf("tasks = %v", tasks)
	}
	if n := len(dataList(t, mustRun(t, data, "projects", "list"))); n != 3 {
		t.Fatalf("projects after plan = %d, want 3", n)
	}
}

func TestPlanDryRunDoesNotImport(t *testing.T) {
	data := isolate(t)
	fakeLLM(t, `{"projectName":"Trip","tasks":[{"title":"Book flights","status":"inbox"}]}`)

	res := dataMap(t, mustRun(t, data, "plan", "--dry-run", "a weekend trip"))
	if _, ok := res["plan"]; !ok {
		t.Fatalf("dry run output = %v", res)
	}
	if n := len(dataList(t, mustRun(t, data, "projects", "list"))); n != 2 {
		t.Fatalf("dry run imported a project: %d", n)
	}
}

func TestQuickResolvesNames(t *testing.T) {
	data := isolate(t)
	fakeLLM(t, `{"title":"Fix checkout crash","description":"crash on pay","priority":"HIGH",
		"tags":["bug"],"assigneeName":"Priya Patel","projectName":"Mobile App","status":"inbox"}`)

	env := mustRun(t, data, "quick", "ask Priya to fix the checkout crash")
	task := dataMap(t, env)
	if task["title"] != "Fix checkout crash" || task["assignee"] != "Priya Patel" {
		t.Fatalf("quick task = %v", task)
	}
	meta, _ := env["meta"].(map[string]any)
	if meta["priority"] != "high" {
		t.Fatalf("meta = %v", meta)
	}
}

func TestInsightsRetroMarkdown(t *testing.T) {
	data := isolate(t)
	fakeLLM(t, `{"healthScore":72,"healthLabel":"steady","summary":"Good pace.","velocity":"ok",
		"risks":["CI flakes"],"wins":["Login shipped"],"recommendations":["Pair on API"],"workloadSummary":"even"}`)

	out, errOut, err := runCLI(t, []string{"--store", "file", "--dir", data, "insights", "retro", "--project", "Mobile App", "--markdown"})
	if err != nil {
		t.Fatalf("retro: %v\n%s", err, string(errOut))
	}
	for _, want := range []string{"72/100", "flakes", "shipped"} {
		if !strings.Contains(string(out), want) {
			t.Fatalf("retro markdown missing %q:\n%s", want, string(out))
		}
	}
}

func TestInsightsSummaryNeedsNoKey(t *testing.T) {
	data := isolate(t)
	s := dataMap(t, mustRun(t, data, "insights", "summary"))
	projects, _ := s["projects"].([]any)
	members, _ := s["members"].([]any)
	if len(projects) != 2 || len(members) != 4 {
		t.Fatalf("summary = %v", s)
	}
}

func TestAssistantWithoutKey(t *testing.T) {
	data := isolate(t)
	_, errOut, err := runCLI(t, []string{"--store", "file", "--dir", data, "insights", "nudges"})
	if err == nil {
		t.Fatalf("expected error without an api key")
	}
	if !strings.Contains(string(errOut), "FLOWBOARD_LLM_API_KEY") {
		t.Fatalf("stderr = %q", string(errOut))
	}
}

func TestTasksUpdateRejectsNinthTag(t *testing.T) {
	data := isolate(t)
	mustRun(t, data, "projects", "open", "Mobile App")
	task := dataMap(t, mustRun(t, data, "tasks", "add", "Tag heavy", "--tags", "a, b"))
	id, _ := task["id"].(string)

	_, _, err := runCLI(t, []string{"--store", "file", "--dir", data,
		"tasks", "update", id, "--tags", "t1,t2,t3,t4,t5,t6,t7,t8,t9"})
	var verr *ctl.ValidationError
	if !errors.As(err, &verr) || verr.Field != "tags" {
		t.Fatalf("expected tags validation error, got %v", err)
	}
	shown := dataMap(t, mustRun(t, data, "tasks", "show", id))
	if tg, _ := shown["tags"].([]any); len(tg) != 2 {
		t.Fatalf("tags changed after rejected update: %v", shown["tags"])
	}

	updated := dataMap(t, mustRun(t, data, "tasks", "update", id, "--tags", "t1,t2,t3,t4,t5,t6,t7,t8"))
	if tg, _ := updated["tags"].([]any); len(tg) != 8 {
		t.Fatalf("eight tags should be accepted: %v", updated["tags"])
	}
}

func TestUnknownReferencesAreNotFound(t *testing.T) {
	data := isolate(t)
	for _, args := range [][]string{
		{"projects", "open", "Nope"},
		{"users", "delete", "Nobody"},
	} {
		_, _, err := runCLI(t, append([]string{"--store", "file", "--dir", data}, args...))
		var nf ctl.NotFoundError
		if !errors.As(err, &nf) {
			t.Fatalf("%v: expected NotFoundError, got %v", args, err)
		}
	}
}
