// Package overlay composites a rendered fragment over a full-screen view
// without clearing it, so the toast stack can float above the browser.
package overlay

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

// Bottom draws fg bottom-centered over bg, pad rows above the lower edge.
// The background is padded out to the viewport height first, and rows are
// spliced cell-wise so styling on either side survives.
func Bottom(fg, bg string, width, height, pad int) string {
	if fg == "" {
		return bg
	}

	fgLines := strings.Split(fg, "\n")
	bgLines := strings.Split(bg, "\n")
	for len(bgLines) < height {
		bgLines = append(bgLines, strings.Repeat(" ", width))
	}

	x := (width - lipgloss.Width(fg)) / 2
	y := height - len(fgLines) - pad
	if x < 0 {
		x = 0
	}
	if y < 0 {
		y = 0
	}

	for i, line := range fgLines {
		row := y + i
		if row >= len(bgLines) {
			break
		}
		bgLines[row] = splice(bgLines[row], line, x)
	}
	return strings.Join(bgLines, "\n")
}

// splice overwrites bg's cells from column x with fg, keeping whatever the
// fragment does not cover. Truncation is ANSI-aware on both sides.
func splice(bg, fg string, x int) string {
	left := ansi.Truncate(bg, x, "")
	if w := ansi.StringWidth(left); w < x {
		left += strings.Repeat(" ", x-w)
	}

	end := x + ansi.StringWidth(fg)
	var right string
	if end < ansi.StringWidth(bg) {
		right = ansi.TruncateLeft(bg, end, "")
	}
	return left + fg + right
}
