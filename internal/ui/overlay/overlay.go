// Package overlay draws a box over an already rendered view.
package overlay

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

// Center splices box into the middle of base, a view of width x height
// cells. Base cells left and right of the box stay visible. A box larger
// than the view is cut.
func Center(base, box string, width, height int) string {
	boxW := min(lipgloss.Width(box), width)
	boxLines := strings.Split(box, "\n")
	boxH := min(len(boxLines), height)
	top := max((height-boxH)/2, 0)
	left := max((width-boxW)/2, 0)
	return Place(base, box, left, top, width)
}

// Place splices box into base with its top-left corner at column col and
// row row. Styled text on both sides is handled.
func Place(base, box string, col, row, width int) string {
	baseLines := strings.Split(base, "\n")
	boxLines := strings.Split(box, "\n")

	for i, boxLine := range boxLines {
		y := row + i
		if y < 0 {
			continue
		}
		for y >= len(baseLines) {
			baseLines = append(baseLines, "")
		}

		boxW := min(ansi.StringWidth(boxLine), width-col)
		if boxW <= 0 {
			continue
		}

		baseLine := baseLines[y]
		if w := ansi.StringWidth(baseLine); w < width {
			baseLine += strings.Repeat(" ", width-w)
		}

		line := ansi.Cut(baseLine, 0, col) + ansi.Cut(boxLine, 0, boxW)
		if end := col + boxW; end < width {
			line += ansi.Cut(baseLine, end, width)
		}
		baseLines[y] = line
	}

	return strings.Join(baseLines, "\n")
}
