package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

type confirmModalFocus int

const (
	confirmFocusConfirm confirmModalFocus = iota
	confirmFocusCancel
)

func (f confirmModalFocus) next() confirmModalFocus {
	if f == confirmFocusConfirm {
		return confirmFocusCancel
	}
	return confirmFocusConfirm
}

const (
	modalMaxWidth = 72
	modalPadX     = 2
)

func modalBoxWidth(width int) int {
	w := width - 4
	if w > modalMaxWidth {
		w = modalMaxWidth
	}
	if w < 24 {
		w = 24
	}
	return w
}

func modalBodyWidth(width int) int {
	return modalBoxWidth(width) - 2*modalPadX
}

// renderModalBox draws a titled box. Borders are avoided: nested borders on
// a coloured surface leave background artifacts in some terminals.
func renderModalBox(width int, title, content string) string {
	boxW := modalBoxWidth(width)
	header := lipgloss.NewStyle().
		Width(boxW).
		Padding(0, modalPadX).
		Bold(true).
		Foreground(colorAccentFg).
		Background(colorAccent).
		Render(title)
	body := lipgloss.NewStyle().
		Width(boxW).
		Padding(1, modalPadX).
		Foreground(colorSurfaceFg).
		Background(colorSurfaceBg).
		Render(content)
	return lipgloss.JoinVertical(lipgloss.Left, header, body)
}

func renderButton(label string, active, disabled bool) string {
	st := lipgloss.NewStyle().Padding(0, 1).Foreground(colorSurfaceFg).Background(colorControlBg)
	switch {
	case disabled:
		st = st.Foreground(colorMuted)
	case active:
		st = st.Foreground(colorSelectedFg).Background(colorSelectedBg).Bold(true)
	}
	return st.Render(label)
}

func renderConfirmModal(width int, title, body, confirmLabel, cancelLabel string, focus confirmModalFocus) string {
	confirm := renderButton(confirmLabel, focus == confirmFocusConfirm, false)
	cancel := renderButton(cancelLabel, focus == confirmFocusCancel, false)
	controls := lipgloss.JoinHorizontal(lipgloss.Top, confirm, " ", cancel)

	bodyW := modalBodyWidth(width)
	help := styleMuted().Width(bodyW).Render("tab: focus   enter: select   y/n   esc: cancel")

	content := strings.Join([]string{
		lipgloss.NewStyle().Width(bodyW).Render(body),
		"",
		controls,
		"",
		help,
	}, "\n")
	return renderModalBox(width, title, content)
}
