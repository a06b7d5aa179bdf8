package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sirupsen/logrus"

	ctl "flowboard/internal/app"
	"flowboard/internal/board"
	"flowboard/internal/model"
)

type inputKind int

const (
	inputNone inputKind = iota
	inputNewProject
	inputRenameProject
	inputNewUser
	inputNewTask
	inputSearch
	inputTagFilter
	inputAddTag
)

type confirmKind int

const (
	confirmNone confirmKind = iota
	confirmDeleteProject
	confirmDeleteUser
	confirmDeleteTask
	confirmReset
)

// Rows outside the content area: header, filter line, status line, help line.
const chromeRows = 4

type tickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(30*time.Second, func(t time.Time) tea.Msg { return tickMsg(t) })
}

type Options struct {
	Log logrus.FieldLogger
	// ColorProfile is auto|ascii|ansi|ansi256|truecolor.
	ColorProfile string
}

type Model struct {
	ctx  context.Context
	ctrl *ctl.Controller
	log  logrus.FieldLogger
	keys keyMap
	help help.Model

	width  int
	height int

	projectSel int
	userSel    int
	selectedID string
	selCol     int

	input       textinput.Model
	inputKind   inputKind
	inputTarget string
	// inputPrev restores a filter when its editing is cancelled.
	inputPrev string

	confirm       confirmKind
	confirmTarget string

	status    string
	statusErr bool

	dragMoved      bool
	pressX, pressY int
}

func New(ctx context.Context, c *ctl.Controller, opts Options) Model {
	log := opts.Log
	if log == nil {
		log = logrus.StandardLogger()
	}
	ti := textinput.New()
	ti.Prompt = ""
	ti.CharLimit = 200
	return Model{
		ctx:    ctx,
		ctrl:   c,
		log:    log.WithField("component", "tui"),
		keys:   defaultKeyMap(),
		help:   help.New(),
		input:  ti,
		width:  100,
		height: 30,
	}
}

func (m Model) Init() tea.Cmd { return tick() }

func (m Model) contentHeight() int {
	h := m.height - chromeRows
	if h < 3 {
		h = 3
	}
	return h
}

func (m Model) boardWidth() int {
	w := m.width
	if m.ctrl.OpenTaskID() != "" {
		w -= detailWidth + 1
	}
	if w < 20 {
		w = 20
	}
	return w
}

func (m Model) layout() boardLayout {
	cols := make(map[model.Status][]model.Task, len(model.Statuses))
	for _, st := range model.Statuses {
		cols[st] = m.ctrl.ColumnTasks(st)
	}
	return layoutBoard(cols, m.boardWidth(), listTop, m.contentHeight())
}

func (m Model) usersByID() map[string]model.User {
	out := map[string]model.User{}
	for _, u := range m.ctrl.Users() {
		out[u.ID] = u
	}
	return out
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case tickMsg:
		// Re-render so relative times advance.
		return m, tick()

	case tea.MouseMsg:
		if m.inputKind != inputNone || m.confirm != confirmNone {
			return m, nil
		}
		return m.handleMouse(msg), nil

	case tea.KeyMsg:
		if m.inputKind != inputNone {
			return m.handleInputKey(msg)
		}
		if m.confirm != confirmNone {
			return m.handleConfirmKey(msg), nil
		}
		if key.Matches(msg, m.keys.Quit) {
			return m, tea.Quit
		}
		m.status, m.statusErr = "", false
		switch m.ctrl.View() {
		case model.ViewBoard:
			return m.updateBoard(msg)
		case model.ViewUsers:
			return m.updateUsers(msg)
		default:
			return m.updateProjects(msg)
		}
	}
	return m, nil
}

func (m Model) startInput(kind inputKind, value, placeholder string) (Model, tea.Cmd) {
	m.inputKind = kind
	m.inputPrev = value
	m.input.SetValue(value)
	m.input.Placeholder = placeholder
	m.input.CursorEnd()
	return m, m.input.Focus()
}

func (m Model) endInput() Model {
	m.inputKind = inputNone
	m.inputTarget = ""
	m.input.Blur()
	m.input.SetValue("")
	return m
}

func (m *Model) setErr(err error) {
	if err == nil {
		return
	}
	var ve *ctl.ValidationError
	if errors.As(err, &ve) {
		m.status = ve.Msg
	} else {
		m.status = err.Error()
		m.log.WithError(err).Warn("operation failed")
	}
	m.statusErr = true
}

func (m *Model) setInfo(format string, args ...any) {
	m.status = fmt.Sprintf(format, args...)
	m.statusErr = false
}

func (m Model) handleInputKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		switch m.inputKind {
		case inputSearch:
			m.ctrl.SetQuery(m.inputPrev)
		case inputTagFilter:
			m.ctrl.SetTagQuery(m.inputPrev)
		}
		return m.endInput(), nil
	case tea.KeyEnter:
		value := m.input.Value()
		kind, target := m.inputKind, m.inputTarget
		m = m.endInput()
		m.submitInput(kind, target, value)
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	// Filters apply while typing.
	switch m.inputKind {
	case inputSearch:
		m.ctrl.SetQuery(m.input.Value())
	case inputTagFilter:
		m.ctrl.SetTagQuery(m.input.Value())
	}
	return m, cmd
}

func (m *Model) submitInput(kind inputKind, target, value string) {
	ctx := m.ctx
	switch kind {
	case inputNewProject:
		if _, err := m.ctrl.CreateProject(ctx, value); err != nil {
			m.setErr(err)
			return
		}
		m.projectSel = len(m.ctrl.Projects()) - 1
		m.setInfo("Created project %q", strings.TrimSpace(value))
	case inputRenameProject:
		if _, err := m.ctrl.RenameProject(ctx, target, value); err != nil {
			m.setErr(err)
		}
	case inputNewUser:
		if _, err := m.ctrl.CreateUser(ctx, value); err != nil {
			m.setErr(err)
			return
		}
		m.userSel = len(m.ctrl.Users()) - 1
	case inputNewTask:
		title, tags := parseTaskInput(value)
		res, err := m.ctrl.CreateTask(ctx, title, tags)
		if err != nil {
			m.setErr(err)
			return
		}
		m.selectedID = res.ID
		m.selCol = 0
	case inputAddTag:
		if _, err := m.ctrl.AddTag(ctx, target, value); err != nil {
			m.setErr(err)
		}
	case inputSearch:
		m.ctrl.SetQuery(strings.TrimSpace(value))
	case inputTagFilter:
		m.ctrl.SetTagQuery(strings.TrimSpace(value))
	}
}

// parseTaskInput splits "title #tag, other" into a title and a comma separated tag list.
func parseTaskInput(s string) (title, tagsCSV string) {
	i := strings.Index(s, "#")
	if i < 0 {
		return strings.TrimSpace(s), ""
	}
	parts := strings.FieldsFunc(s[i:], func(r rune) bool { return r == ',' || r == '#' })
	tags := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			tags = append(tags, p)
		}
	}
	return strings.TrimSpace(s[:i]), strings.Join(tags, ",")
}

func (m Model) handleConfirmKey(msg tea.KeyMsg) Model {
	kind, target := m.confirm, m.confirmTarget
	m.confirm, m.confirmTarget = confirmNone, ""
	if s := msg.String(); s != "y" && s != "Y" {
		m.setInfo("Cancelled")
		return m
	}
	ctx := m.ctx
	switch kind {
	case confirmDeleteProject:
		m.ctrl.DeleteProject(ctx, target)
		if n := len(m.ctrl.Projects()); m.projectSel >= n {
			m.projectSel = max(0, n-1)
		}
	case confirmDeleteUser:
		m.ctrl.DeleteUser(ctx, target)
		if n := len(m.ctrl.Users()); m.userSel >= n {
			m.userSel = max(0, n-1)
		}
	case confirmDeleteTask:
		m.ctrl.DeleteTask(ctx, target)
		m.selectedID = ""
	case confirmReset:
		m.ctrl.Reset(ctx)
		m.projectSel, m.userSel, m.selectedID, m.selCol = 0, 0, "", 0
		m.setInfo("Demo data restored")
	}
	return m
}

func (m Model) askConfirm(kind confirmKind, target, prompt string) Model {
	m.confirm = kind
	m.confirmTarget = target
	m.status = prompt + " (y/n)"
	m.statusErr = false
	return m
}

func (m Model) updateProjects(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	projects := m.ctrl.Projects()
	switch {
	case key.Matches(msg, m.keys.Up):
		if m.projectSel > 0 {
			m.projectSel--
		}
	case key.Matches(msg, m.keys.Down):
		if m.projectSel < len(projects)-1 {
			m.projectSel++
		}
	case key.Matches(msg, m.keys.Open):
		if m.projectSel < len(projects) {
			m.ctrl.OpenProject(m.ctx, projects[m.projectSel].ID)
			m.selectedID, m.selCol = "", 0
		}
	case key.Matches(msg, m.keys.New):
		return m.startInput(inputNewProject, "", "Project name")
	case key.Matches(msg, m.keys.Rename):
		if m.projectSel < len(projects) {
			m.inputTarget = projects[m.projectSel].ID
			return m.startInput(inputRenameProject, projects[m.projectSel].Name, "Project name")
		}
	case key.Matches(msg, m.keys.Delete):
		if m.projectSel < len(projects) {
			p := projects[m.projectSel]
			return m.askConfirm(confirmDeleteProject, p.ID, fmt.Sprintf("Delete %q and its %d tasks?", p.Name, len(m.ctrl.ProjectTasks(p.ID)))), nil
		}
	case key.Matches(msg, m.keys.Users):
		m.ctrl.ShowUsers(m.ctx)
	case key.Matches(msg, m.keys.Reset):
		return m.askConfirm(confirmReset, "", "Discard everything and restore the demo data?"), nil
	}
	return m, nil
}

func (m Model) updateUsers(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	users := m.ctrl.Users()
	switch {
	case key.Matches(msg, m.keys.Up):
		if m.userSel > 0 {
			m.userSel--
		}
	case key.Matches(msg, m.keys.Down):
		if m.userSel < len(users)-1 {
			m.userSel++
		}
	case key.Matches(msg, m.keys.New):
		return m.startInput(inputNewUser, "", "Full name")
	case key.Matches(msg, m.keys.Delete):
		if m.userSel < len(users) {
			u := users[m.userSel]
			return m.askConfirm(confirmDeleteUser, u.ID, fmt.Sprintf("Remove %s and unassign their tasks?", u.Name)), nil
		}
	case key.Matches(msg, m.keys.Projects), key.Matches(msg, m.keys.Back):
		m.ctrl.ShowProjects(m.ctx)
	case key.Matches(msg, m.keys.Reset):
		return m.askConfirm(confirmReset, "", "Discard everything and restore the demo data?"), nil
	}
	return m, nil
}

// selection resolves the selected card against the current layout, falling back to the
// first card of the focused column.
func (m Model) selection(l boardLayout) (col, card int, ok bool) {
	if ci, i, found := l.indexOf(m.selectedID); found {
		return ci, i, true
	}
	col = min(max(m.selCol, 0), len(l.Cols)-1)
	if len(l.Cols[col].Cards) > 0 {
		return col, 0, true
	}
	return col, -1, false
}

func (m Model) updateBoard(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	l := m.layout()
	col, card, has := m.selection(l)
	m.selCol = col
	var sel model.Task
	if has {
		sel = l.Cols[col].Cards[card].Task
		m.selectedID = sel.ID
	}

	switch {
	case key.Matches(msg, m.keys.Back):
		if m.ctrl.OpenTaskID() != "" {
			m.ctrl.CloseTask()
			return m, nil
		}
		m.ctrl.Back(m.ctx)
		m.selectedID = ""
	case key.Matches(msg, m.keys.Users):
		m.ctrl.ShowUsers(m.ctx)
	case key.Matches(msg, m.keys.Projects):
		m.ctrl.ShowProjects(m.ctx)
	case key.Matches(msg, m.keys.New):
		return m.startInput(inputNewTask, "", "Task title #tag, tag")
	case key.Matches(msg, m.keys.Search):
		return m.startInput(inputSearch, m.ctrl.Query(), "Search titles")
	case key.Matches(msg, m.keys.TagFilter):
		return m.startInput(inputTagFilter, m.ctrl.TagQuery(), "Filter by tag")
	case key.Matches(msg, m.keys.Reset):
		return m.askConfirm(confirmReset, "", "Discard everything and restore the demo data?"), nil

	case key.Matches(msg, m.keys.MoveLeft), key.Matches(msg, m.keys.MoveRight):
		if !has {
			return m, nil
		}
		next := col - 1
		if key.Matches(msg, m.keys.MoveRight) {
			next = col + 1
		}
		if next < 0 || next >= len(l.Cols) {
			return m, nil
		}
		idx := m.ctrl.ColumnIndex(l.Cols[next].Status, min(card, len(l.Cols[next].Cards)), sel.ID)
		if _, err := m.ctrl.MoveTask(m.ctx, sel.ID, l.Cols[next].Status, idx); err != nil {
			m.setErr(err)
		}
		m.selCol = next
	case key.Matches(msg, m.keys.MoveUp), key.Matches(msg, m.keys.MoveDown):
		if !has {
			return m, nil
		}
		full := board.Column(m.ctrl.ProjectTasks(sel.ProjectID), sel.ProjectID, sel.Status)
		pos := -1
		for i, t := range full {
			if t.ID == sel.ID {
				pos = i
			}
		}
		target := pos - 1
		if key.Matches(msg, m.keys.MoveDown) {
			target = pos + 1
		}
		if pos < 0 || target < 0 || target >= len(full) {
			return m, nil
		}
		if _, err := m.ctrl.MoveTask(m.ctx, sel.ID, sel.Status, target); err != nil {
			m.setErr(err)
		}

	case key.Matches(msg, m.keys.Up):
		if has && card > 0 {
			m.selectedID = l.Cols[col].Cards[card-1].Task.ID
		}
	case key.Matches(msg, m.keys.Down):
		if has && card < len(l.Cols[col].Cards)-1 {
			m.selectedID = l.Cols[col].Cards[card+1].Task.ID
		}
	case key.Matches(msg, m.keys.Left), key.Matches(msg, m.keys.Right):
		next := col - 1
		if key.Matches(msg, m.keys.Right) {
			next = col + 1
		}
		if next < 0 || next >= len(l.Cols) {
			return m, nil
		}
		m.selCol = next
		m.selectedID = ""
		if cards := l.Cols[next].Cards; len(cards) > 0 {
			m.selectedID = cards[min(max(card, 0), len(cards)-1)].Task.ID
		}

	case key.Matches(msg, m.keys.Open):
		if has {
			m.ctrl.OpenTask(sel.ID)
		}
	case key.Matches(msg, m.keys.Delete):
		if has {
			return m.askConfirm(confirmDeleteTask, sel.ID, fmt.Sprintf("Delete %q?", truncateText(sel.Title, 40))), nil
		}
	case key.Matches(msg, m.keys.AddTag):
		if has {
			m.inputTarget = sel.ID
			return m.startInput(inputAddTag, "", "tag")
		}
	case key.Matches(msg, m.keys.Assign):
		if has {
			m.ctrl.AssignTask(m.ctx, sel.ID, nextAssignee(m.ctrl.Users(), sel.AssigneeID))
		}
	}
	return m, nil
}

// nextAssignee cycles unassigned → first user → … → last user → unassigned.
func nextAssignee(users []model.User, current *string) *string {
	if len(users) == 0 {
		return nil
	}
	if current == nil {
		return model.StrPtr(users[0].ID)
	}
	for i, u := range users {
		if u.ID == *current {
			if i+1 < len(users) {
				return model.StrPtr(users[i+1].ID)
			}
			return nil
		}
	}
	return model.StrPtr(users[0].ID)
}

func (m Model) handleMouse(msg tea.MouseMsg) Model {
	switch m.ctrl.View() {
	case model.ViewProjects:
		if msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft {
			projects := m.ctrl.Projects()
			if i, ok := listRowAt(msg.Y, len(projects)); ok {
				m.projectSel = i
				m.ctrl.OpenProject(m.ctx, projects[i].ID)
				m.selectedID, m.selCol = "", 0
			}
		}
		return m
	case model.ViewUsers:
		if msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft {
			if i, ok := listRowAt(msg.Y, len(m.ctrl.Users())); ok {
				m.userSel = i
			}
		}
		return m
	}
	return m.handleBoardMouse(msg)
}

// handleBoardMouse drives the drag lifecycle: press on a card starts a drag, motion tracks
// the hovered column, release over a column drops at the rank the pointer selects and any
// other release cancels. A press and release without motion opens the card.
func (m Model) handleBoardMouse(msg tea.MouseMsg) Model {
	l := m.layout()
	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button != tea.MouseButtonLeft {
			return m
		}
		col, card, ok := l.cardAt(msg.X, msg.Y)
		if !ok {
			return m
		}
		id := l.Cols[col].Cards[card].Task.ID
		if m.ctrl.BeginDrag(id) {
			m.selectedID, m.selCol = id, col
			m.dragMoved = false
			m.pressX, m.pressY = msg.X, msg.Y
		}

	case tea.MouseActionMotion:
		if !m.ctrl.Drag().Active() {
			return m
		}
		if msg.X != m.pressX || msg.Y != m.pressY {
			m.dragMoved = true
		}
		if col := l.columnAt(msg.X, msg.Y); col >= 0 {
			m.ctrl.DragOver(l.Cols[col].Status)
		} else {
			m.ctrl.DragOver("")
		}

	case tea.MouseActionRelease:
		d := m.ctrl.Drag()
		if !d.Active() {
			return m
		}
		if !m.dragMoved && msg.X == m.pressX && msg.Y == m.pressY {
			m.ctrl.CancelDrag()
			m.ctrl.OpenTask(d.DraggingID)
			return m
		}
		col := l.columnAt(msg.X, msg.Y)
		if col < 0 {
			m.ctrl.CancelDrag()
			return m
		}
		mids := l.dropMidpoints(col, d.DraggingID)
		res, err := m.ctrl.Drop(m.ctx, l.Cols[col].Status, mids, float64(msg.Y))
		if err != nil {
			m.setErr(err)
			return m
		}
		if res.Changed {
			m.selCol = col
		}
	}
	return m
}

func (m Model) View() string {
	width := max(m.width, 20)
	var screen string
	var body string
	switch m.ctrl.View() {
	case model.ViewBoard:
		screen = "board"
		body = m.viewBoard()
	case model.ViewUsers:
		screen = "users"
		body = renderUserList(m.ctrl.Users(), m.assignedCount, m.userSel, width, m.contentHeight())
	default:
		screen = "projects"
		body = renderProjectList(m.ctrl.Projects(), m.ctrl.Counts, m.projectSel, width, m.contentHeight())
	}

	lines := []string{
		truncateText(m.viewHeader(), width),
		truncateText(m.viewFilterLine(), width),
		body,
		truncateText(m.viewStatusLine(), width),
		m.help.ShortHelpView(m.keys.helpFor(screen)),
	}
	return strings.Join(lines, "\n")
}

func (m Model) viewHeader() string {
	crumb := "Projects"
	switch m.ctrl.View() {
	case model.ViewUsers:
		crumb = "Team"
	case model.ViewBoard:
		if p, ok := m.ctrl.ActiveProject(); ok {
			crumb = "Projects › " + p.Name
		}
	}
	return styleTitle.Render("Flowboard") + styleBreadcrumb.Render("  "+crumb)
}

func (m Model) viewFilterLine() string {
	if m.ctrl.View() != model.ViewBoard {
		return ""
	}
	q, tq := m.ctrl.Query(), m.ctrl.TagQuery()
	if strings.TrimSpace(q) == "" && strings.TrimSpace(tq) == "" {
		return ""
	}
	p, _ := m.ctrl.ActiveProject()
	parts := []string{}
	if strings.TrimSpace(q) != "" {
		parts = append(parts, fmt.Sprintf("title~%q", q))
	}
	if strings.TrimSpace(tq) != "" {
		parts = append(parts, fmt.Sprintf("tag~%q", tq))
	}
	return styleMuted().Render(fmt.Sprintf("filter %s · %d of %d tasks",
		strings.Join(parts, " "), len(m.ctrl.VisibleTasks()), len(m.ctrl.ProjectTasks(p.ID))))
}

func (m Model) viewStatusLine() string {
	if m.inputKind != inputNone {
		return styleInputPrompt.Render(inputLabel(m.inputKind)) + " " + m.input.View()
	}
	if m.status == "" {
		return ""
	}
	if m.statusErr {
		return styleError.Render(m.status)
	}
	return m.status
}

func inputLabel(k inputKind) string {
	switch k {
	case inputNewProject:
		return "New project"
	case inputRenameProject:
		return "Rename"
	case inputNewUser:
		return "New member"
	case inputNewTask:
		return "New task"
	case inputSearch:
		return "Search"
	case inputTagFilter:
		return "Tag"
	case inputAddTag:
		return "Add tag"
	default:
		return ""
	}
}

func (m Model) viewBoard() string {
	l := m.layout()
	st := boardRenderState{
		selectedID: m.selectedID,
		users:      m.usersByID(),
	}
	if d := m.ctrl.Drag(); d.Active() {
		st.draggingID = d.DraggingID
		st.overStatus = d.OverStatus
	}
	if st.selectedID == "" {
		if col, card, ok := m.selection(l); ok {
			st.selectedID = l.Cols[col].Cards[card].Task.ID
		}
	}
	out := renderBoard(l, st, m.boardWidth())
	if id := m.ctrl.OpenTaskID(); id != "" {
		if t, err := m.ctrl.Task(id); err == nil {
			out = lipgloss.JoinHorizontal(lipgloss.Top, out, " ", renderDetail(t, st.users, m.contentHeight()))
		}
	}
	return normalizePane(out, max(m.width, 20), m.contentHeight())
}

func (m Model) assignedCount(userID string) int {
	n := 0
	for _, t := range m.ctrl.Envelope().Tasks {
		if t.AssigneeID != nil && *t.AssigneeID == userID {
			n++
		}
	}
	return n
}
