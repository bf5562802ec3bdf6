package playerbar

import (
	"strings"
	"time"

	"github.com/llehouerou/segue/internal/ui/styles"
)

const (
	filledGlyph = "━"
	emptyGlyph  = "─"
)

// RenderProgressBar renders a bar of exactly width cells. The filled part
// carries the theme gradient.
func RenderProgressBar(position, duration time.Duration, width int) string {
	if width <= 0 {
		return ""
	}
	filled := filledCells(position, duration, width)
	t := styles.T()
	return styles.GradientFill(filledGlyph, filled, width, t.Primary, t.Secondary) +
		progressBarEmpty().Render(strings.Repeat(emptyGlyph, width-filled))
}

func filledCells(position, duration time.Duration, width int) int {
	if duration <= 0 || position <= 0 {
		return 0
	}
	ratio := float64(position) / float64(duration)
	return min(int(float64(width)*ratio), width)
}
