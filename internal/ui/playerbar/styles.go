package playerbar

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/llehouerou/segue/internal/ui/styles"
)

const (
	playSymbol    = "▶"
	pauseSymbol   = "⏸"
	loadingSymbol = "…"
	mutedLabel    = "muted"
)

func titleStyle() lipgloss.Style {
	return styles.T().S().Title
}

func artistStyle() lipgloss.Style {
	return styles.T().S().Muted
}

func metaStyle() lipgloss.Style {
	return styles.T().S().Subtle
}

func statusStyle() lipgloss.Style {
	return styles.T().S().Playing
}

func warningStyle() lipgloss.Style {
	return styles.T().S().Warning
}

func progressBarEmpty() lipgloss.Style {
	return styles.T().S().Subtle
}

func progressTimeStyle() lipgloss.Style {
	return styles.T().S().Muted
}
