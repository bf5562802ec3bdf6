package queuepanel

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/llehouerou/segue/internal/ui/styles"
)

const (
	playingSymbol = "▶" // ▶
	pausedSymbol  = "⏸" // ⏸
	loadingSymbol = "…" // …
)

func headerStyle() lipgloss.Style {
	return styles.T().S().Title
}

func trackStyle() lipgloss.Style {
	return styles.T().S().Base
}

func currentStyle() lipgloss.Style {
	return styles.T().S().Cursor.Inherit(styles.T().S().Playing)
}

func playedStyle() lipgloss.Style {
	return styles.T().S().Subtle
}

func artistStyle() lipgloss.Style {
	return styles.T().S().Muted
}
