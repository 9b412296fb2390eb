package tui

import (
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// The dashboard must stay readable on light and dark terminals, so colors are
// adaptive and faint styling is only applied on dark backgrounds.

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
	colorMuted      lipgloss.TerminalColor = ac("240", "243")
	colorSelectedBg lipgloss.TerminalColor = ac("#e9e9e9", "#262626")
	colorSelectedFg lipgloss.TerminalColor = ac("235", "255")
	colorSurfaceBg  lipgloss.TerminalColor = ac("255", "235")
	colorSurfaceFg  lipgloss.TerminalColor = ac("235", "252")
	colorControlBg  lipgloss.TerminalColor = ac("252", "237")
	colorAccent     lipgloss.TerminalColor = ac("27", "62")
	colorAccentFg   lipgloss.TerminalColor = ac("255", "255")

	colorResolved lipgloss.TerminalColor = ac("28", "78")
	colorPending  lipgloss.TerminalColor = ac("130", "214")

	colorToastSuccessBg lipgloss.TerminalColor = ac("28", "22")
	colorToastErrorBg   lipgloss.TerminalColor = ac("160", "124")
	colorToastFg        lipgloss.TerminalColor = ac("255", "255")
)

func styleMuted() lipgloss.Style {
	return faintIfDark(lipgloss.NewStyle().Foreground(colorMuted))
}

func styleTitle() lipgloss.Style {
	return lipgloss.NewStyle().Bold(true).Foreground(colorAccent)
}

func styleStatus(resolved bool) lipgloss.Style {
	if resolved {
		return lipgloss.NewStyle().Foreground(colorResolved).Bold(true)
	}
	return lipgloss.NewStyle().Foreground(colorPending)
}

// applyColorProfilePreference picks the Lip Gloss color profile. Only NO_COLOR
// turns colors off; CLICOLOR is ignored so piping config never greys out the
// dashboard.
func applyColorProfilePreference() {
	if strings.TrimSpace(os.Getenv("NO_COLOR")) != "" {
		lipgloss.SetColorProfile(termenv.Ascii)
		return
	}
	profile := termenv.ColorProfile()
	colorterm := strings.ToLower(os.Getenv("COLORTERM"))
	term := strings.ToLower(os.Getenv("TERM"))
	switch {
	case profile == termenv.Ascii:
	case strings.Contains(colorterm, "truecolor"), strings.Contains(colorterm, "24bit"):
		profile = termenv.TrueColor
	case strings.Contains(term, "256color") && profile == termenv.ANSI:
		profile = termenv.ANSI256
	}
	lipgloss.SetColorProfile(profile)
}

// applyThemePreference overrides background detection.
//
// Priority:
// 1) COMPLAINT_DESK_TUI_THEME=light|dark|auto
// 2) COLORFGBG heuristic ("fg;bg")
func applyThemePreference() {
	switch strings.ToLower(strings.TrimSpace(os.Getenv("COMPLAINT_DESK_TUI_THEME"))) {
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

// markdownStyle follows the resolved background.
func markdownStyle() string {
	if lipgloss.HasDarkBackground() {
		return "dark"
	}
	return "light"
}
