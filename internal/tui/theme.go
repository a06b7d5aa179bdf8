package tui

import (
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"flowboard/internal/model"
)

// The board must stay readable on light and dark backgrounds, so colors are adaptive and
// faint styling is only applied on dark backgrounds.

func ac(light, dark string) lipgloss.AdaptiveColor {
	return lipgloss.AdaptiveColor{Light: light, Dark: dark}
}

func faintIfDark(st lipgloss.Style) lipgloss.Style {
	if lipgloss.HasDarkBackground() {
		return st.Faint(true)
	}
	return st
}

var (
	colorMuted          lipgloss.TerminalColor = ac("240", "243")
	colorSelectedBg     lipgloss.TerminalColor = ac("#e9e9e9", "#262626")
	colorSelectedFg     lipgloss.TerminalColor = ac("235", "255")
	colorSurfaceFg      lipgloss.TerminalColor = ac("235", "252")
	colorControlBg      lipgloss.TerminalColor = ac("252", "235")
	colorAccent         lipgloss.TerminalColor = ac("27", "62")
	colorAccentFg       lipgloss.TerminalColor = ac("255", "235")
	colorCardMetaFg     lipgloss.TerminalColor = ac("238", "250")
	colorFlashErrorBg   lipgloss.TerminalColor = ac("196", "160")
	colorDropTargetBg   lipgloss.TerminalColor = ac("153", "24")
	colorTagFg          lipgloss.TerminalColor = ac("30", "80")
	colorAssigneeFg     lipgloss.TerminalColor = ac("97", "183")
	colorColumnAccentBg                        = map[model.Status]lipgloss.TerminalColor{
		model.StatusInbox:   ac("252", "238"),
		model.StatusPlanned: ac("189", "60"),
		model.StatusDoing:   ac("223", "94"),
		model.StatusDone:    ac("194", "22"),
	}
)

func styleMuted() lipgloss.Style {
	return faintIfDark(lipgloss.NewStyle().Foreground(colorMuted))
}

var (
	styleTitle       = lipgloss.NewStyle().Bold(true).Foreground(colorAccent)
	styleBreadcrumb  = lipgloss.NewStyle().Foreground(colorSurfaceFg)
	styleSelectedRow = lipgloss.NewStyle().Foreground(colorSelectedFg).Background(colorSelectedBg).Bold(true)
	styleTag         = lipgloss.NewStyle().Foreground(colorTagFg)
	styleAssignee    = lipgloss.NewStyle().Foreground(colorAssigneeFg)
	styleMeta        = lipgloss.NewStyle().Foreground(colorCardMetaFg)
	styleError       = lipgloss.NewStyle().Foreground(colorAccentFg).Background(colorFlashErrorBg).Padding(0, 1)
	styleInputPrompt = lipgloss.NewStyle().Foreground(colorAccentFg).Background(colorAccent).Padding(0, 1)
	stylePanel       = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(colorAccent).Padding(0, 1)
)

// applyColorProfilePreference sets Lip Gloss's color profile for the board.
//
// pref is the configured profile (auto|ascii|ansi|ansi256|truecolor). In auto mode NO_COLOR
// wins, then termenv's detection upgraded by TERM/COLORTERM hints, since probing tends to
// under-report on some terminals.
func applyColorProfilePreference(pref string) {
	switch strings.ToLower(strings.TrimSpace(pref)) {
	case "ascii":
		lipgloss.SetColorProfile(termenv.Ascii)
		return
	case "ansi":
		lipgloss.SetColorProfile(termenv.ANSI)
		return
	case "ansi256":
		lipgloss.SetColorProfile(termenv.ANSI256)
		return
	case "truecolor":
		lipgloss.SetColorProfile(termenv.TrueColor)
		return
	}
	if strings.TrimSpace(os.Getenv("NO_COLOR")) != "" {
		lipgloss.SetColorProfile(termenv.Ascii)
		return
	}

	profile := termenv.ColorProfile()
	term := strings.ToLower(strings.TrimSpace(os.Getenv("TERM")))
	colorterm := strings.ToLower(strings.TrimSpace(os.Getenv("COLORTERM")))
	if strings.Contains(colorterm, "truecolor") || strings.Contains(colorterm, "24bit") {
		if profile != termenv.Ascii {
			profile = termenv.TrueColor
		}
	} else if strings.Contains(term, "256color") && (profile == termenv.Ascii || profile == termenv.ANSI) {
		profile = termenv.ANSI256
	}
	lipgloss.SetColorProfile(profile)
}

// applyThemePreference configures background detection.
//
// Priority:
// 1) FLOWBOARD_TUI_THEME=light|dark|auto
// 2) COLORFGBG heuristic ("fg;bg")
func applyThemePreference() {
	switch strings.ToLower(strings.TrimSpace(os.Getenv("FLOWBOARD_TUI_THEME"))) {
	case "light":
		lipgloss.SetHasDarkBackground(false)
		return
	case "dark":
		lipgloss.SetHasDarkBackground(true)
		return
	}
	if v := strings.TrimSpace(os.Getenv("COLORFGBG")); v != "" {
		parts := strings.Split(v, ";")
		if bg, err := strconv.Atoi(strings.TrimSpace(parts[len(parts)-1])); err == nil {
			lipgloss.SetHasDarkBackground(bg < 7)
		}
	}
}
