package tui

import (
	"strings"

	xansi "github.com/charmbracelet/x/ansi"
)

// fitCell truncates or pads s to exactly width terminal cells. ANSI sequences
// are preserved and do not count toward the width.
func fitCell(s string, width int) string {
	if width <= 0 {
		return ""
	}
	w := xansi.StringWidth(s)
	if w > width {
		if width == 1 {
			return xansi.Cut(s, 0, 1)
		}
		s = xansi.Truncate(s, width, "…")
		w = xansi.StringWidth(s)
	}
	if w < width {
		s += strings.Repeat(" ", width-w)
	}
	return s
}

// normalizePane forces every line of s to width cells and the block to height
// lines, so stacked panes do not shift when content changes.
func normalizePane(s string, width, height int) string {
	lines := strings.Split(s, "\n")
	if height > 0 {
		if len(lines) > height {
			lines = lines[:height]
		}
		for len(lines) < height {
			lines = append(lines, "")
		}
	}
	for i := range lines {
		lines[i] = fitCell(lines[i], width)
	}
	return strings.Join(lines, "\n")
}

// oneLine collapses whitespace so multi-line complaint text fits a table row.
func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
