package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"flowboard/internal/board"
	"flowboard/internal/ids"
	"flowboard/internal/model"
)

const (
	columnGap     = 2
	minColumnW    = 14
	maxTitleLines = 3
	// Rows above the first card inside a column: header plus a spacer.
	columnHeaderRows = 2
)

// cardBox is the on-screen extent of a card, in terminal rows relative to the screen.
type cardBox struct {
	Task   model.Task
	Top    int
	Height int
	title  []string
}

func (b cardBox) contains(y int) bool { return y >= b.Top && y < b.Top+b.Height }

type columnBox struct {
	Status model.Status
	X      int
	Width  int
	Cards  []cardBox
}

// boardLayout is the geometry the board is rendered from; mouse hit testing uses the same
// numbers so a drop lands where the card was drawn.
type boardLayout struct {
	Top    int
	Height int
	Cols   []columnBox
}

func layoutBoard(columns map[model.Status][]model.Task, width, top, height int) boardLayout {
	n := len(model.Statuses)
	colW := (width - columnGap*(n-1)) / n
	if colW < minColumnW {
		colW = minColumnW
	}
	l := boardLayout{Top: top, Height: height}
	x := 0
	for _, st := range model.Statuses {
		col := columnBox{Status: st, X: x, Width: colW}
		y := top + columnHeaderRows
		for _, t := range columns[st] {
			title := wrapWords(t.Title, colW-2, maxTitleLines)
			// title lines + meta line, then a spacer row that belongs to no card.
			h := len(title) + 1
			col.Cards = append(col.Cards, cardBox{Task: t, Top: y, Height: h, title: title})
			y += h + 1
		}
		l.Cols = append(l.Cols, col)
		x += colW + columnGap
	}
	return l
}

// columnAt returns the column under x, or -1. Gaps between columns belong to no column.
func (l boardLayout) columnAt(x, y int) int {
	if y < l.Top || y >= l.Top+l.Height {
		return -1
	}
	for i, c := range l.Cols {
		if x >= c.X && x < c.X+c.Width {
			return i
		}
	}
	return -1
}

func (l boardLayout) cardAt(x, y int) (col, card int, ok bool) {
	col = l.columnAt(x, y)
	if col < 0 {
		return -1, -1, false
	}
	for i, b := range l.Cols[col].Cards {
		if b.contains(y) {
			return col, i, true
		}
	}
	return col, -1, false
}

// dropMidpoints lists the card midpoints of column col, skipping the dragged card.
func (l boardLayout) dropMidpoints(col int, draggingID string) []float64 {
	if col < 0 || col >= len(l.Cols) {
		return nil
	}
	spans := make([]board.Span, 0, len(l.Cols[col].Cards))
	for _, b := range l.Cols[col].Cards {
		if b.Task.ID == draggingID {
			continue
		}
		spans = append(spans, board.Span{Top: float64(b.Top), Height: float64(b.Height)})
	}
	return board.Midpoints(spans)
}

func (l boardLayout) indexOf(taskID string) (col, card int, ok bool) {
	for ci, c := range l.Cols {
		for i, b := range c.Cards {
			if b.Task.ID == taskID {
				return ci, i, true
			}
		}
	}
	return -1, -1, false
}

type boardRenderState struct {
	selectedID string
	draggingID string
	overStatus model.Status
	users      map[string]model.User
}

func renderBoard(l boardLayout, st boardRenderState, width int) string {
	rendered := make([]string, 0, len(l.Cols))
	for _, c := range l.Cols {
		rendered = append(rendered, renderColumn(l, c, st))
	}
	out := rendered[0]
	sep := strings.Repeat(" ", columnGap)
	for i := 1; i < len(rendered); i++ {
		out = lipgloss.JoinHorizontal(lipgloss.Top, out, sep, rendered[i])
	}
	return normalizePane(out, width, l.Height)
}

func renderColumn(l boardLayout, c columnBox, st boardRenderState) string {
	headerBg := colorColumnAccentBg[c.Status]
	if st.draggingID != "" && st.overStatus == c.Status {
		headerBg = colorDropTargetBg
	}
	header := lipgloss.NewStyle().Bold(true).Foreground(colorSurfaceFg).Background(headerBg).Width(c.Width).Padding(0, 1).
		Render(truncateText(fmt.Sprintf("%s (%d)", c.Status.Label(), len(c.Cards)), c.Width-2))

	lines := make([]string, 0, l.Height)
	lines = append(lines, header, "")
	if len(c.Cards) == 0 {
		lines = append(lines, styleMuted().Render(" (empty)"))
	}
	for i, b := range c.Cards {
		lines = append(lines, renderCard(b, c.Width, st)...)
		if i < len(c.Cards)-1 {
			lines = append(lines, "")
		}
	}
	// Cards below the fold keep their layout rows so drop ranks stay correct; only the
	// drawing is clipped.
	if len(lines) > l.Height && l.Height > 0 {
		hidden := 0
		for _, b := range c.Cards {
			if b.Top+b.Height > l.Top+l.Height-1 {
				hidden++
			}
		}
		lines = lines[:l.Height-1]
		lines = append(lines, styleMuted().Render(fmt.Sprintf(" … %d more", hidden)))
	}
	return normalizePane(strings.Join(lines, "\n"), c.Width, l.Height)
}

func renderCard(b cardBox, width int, st boardRenderState) []string {
	inner := width - 2
	titleStyle := lipgloss.NewStyle().Bold(true)
	metaBase := styleMeta
	rowStyle := lipgloss.NewStyle().Width(width).Padding(0, 1)
	switch {
	case b.Task.ID == st.draggingID:
		titleStyle = faintIfDark(titleStyle.Foreground(colorMuted)).Italic(true)
	case b.Task.ID == st.selectedID:
		rowStyle = rowStyle.Foreground(colorSelectedFg).Background(colorSelectedBg)
		titleStyle = titleStyle.Foreground(colorSelectedFg).Background(colorSelectedBg)
		metaBase = metaBase.Background(colorSelectedBg)
	case b.Task.Status == model.StatusDone:
		titleStyle = faintIfDark(lipgloss.NewStyle()).Foreground(colorMuted).Strikethrough(true)
	}

	out := make([]string, 0, b.Height)
	for _, ln := range b.title {
		out = append(out, rowStyle.Render(titleStyle.Render(ln)))
	}
	out = append(out, rowStyle.Render(truncateText(cardMeta(b.Task, st.users, metaBase), inner)))
	return out
}

func cardMeta(t model.Task, users map[string]model.User, base lipgloss.Style) string {
	parts := make([]string, 0, len(t.Tags)+2)
	if t.AssigneeID != nil {
		if u, ok := users[*t.AssigneeID]; ok {
			parts = append(parts, styleAssignee.Inherit(base).Render("@"+u.Initials))
		}
	}
	for _, tag := range t.Tags {
		parts = append(parts, styleTag.Inherit(base).Render("#"+tag))
	}
	parts = append(parts, base.Render(ids.RelativeTimeNow(t.CreatedAt)))
	return strings.Join(parts, base.Render(" "))
}
