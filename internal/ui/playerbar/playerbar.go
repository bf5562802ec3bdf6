// Package playerbar renders the one-line now-playing bar.
package playerbar

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/llehouerou/segue/internal/playback"
	"github.com/llehouerou/segue/internal/ui"
	"github.com/llehouerou/segue/internal/ui/render"
	"github.com/llehouerou/segue/internal/ui/styles"
)

// Height is the total height of the player bar.
const Height = 3 // top border + content + bottom border

// Status is what the bar shows left of the progress bar.
type Status int

const (
	StatusStopped Status = iota
	StatusLoading
	StatusPlaying
	StatusPaused
)

// State holds everything needed to render the player bar.
type State struct {
	Status   Status
	Index    int // 1-based position in the queue
	Total    int
	Title    string
	Artist   string
	Album    string
	Position time.Duration
	Duration time.Duration
	Muted    bool
}

// NewState builds a State from a session snapshot. Returns an empty State
// when no track is current.
func NewState(snap playback.Snapshot) State {
	if snap.Track == nil {
		return State{Muted: snap.Muted}
	}

	s := State{
		Index:    snap.State.Index + 1,
		Total:    snap.Len,
		Title:    snap.Track.Record.Title(),
		Artist:   snap.Track.Record.Artist,
		Album:    snap.Track.Record.Album,
		Position: snap.Position,
		Duration: snap.Duration,
		Muted:    snap.Muted,
	}
	switch snap.State.Kind {
	case playback.KindLoading:
		s.Status = StatusLoading
	case playback.KindPaused:
		s.Status = StatusPaused
	case playback.KindPlaying, playback.KindDraining:
		s.Status = StatusPlaying
	case playback.KindIdle, playback.KindStopped:
		s.Status = StatusStopped
	}
	return s
}

// Render returns the player bar string for the given width.
// Returns empty string when nothing is current.
func Render(s State, width int) string {
	if s.Status == StatusStopped || width < 20 {
		return ""
	}

	innerWidth := max(width-6, 0) // border and padding

	status := statusSymbol(s.Status)

	title := render.Sanitize(s.Title)
	if title == "" {
		title = "Unknown Track"
	}

	var infoParts []string
	if s.Artist != "" {
		infoParts = append(infoParts, render.Sanitize(s.Artist))
	}
	if s.Album != "" {
		infoParts = append(infoParts, render.Sanitize(s.Album))
	}
	info := strings.Join(infoParts, " · ")

	var trackNum string
	if s.Total > 0 {
		trackNum = fmt.Sprintf("%d/%d", s.Index, s.Total)
	}

	timeStr := render.FormatDuration(s.Position) + " / " + render.FormatDuration(s.Duration)

	separator := "   "
	sepWidth := lipgloss.Width(separator)
	timeWidth := lipgloss.Width(timeStr)
	statusWidth := lipgloss.Width(status + "  ")

	var mutedWidth int
	if s.Muted {
		mutedWidth = lipgloss.Width(mutedLabel) + sepWidth
	}
	trackNumSpace := 0
	if trackNum != "" {
		trackNumSpace = lipgloss.Width(trackNum) + sepWidth
	}

	titleWidth := lipgloss.Width(title)
	infoWidth := lipgloss.Width(info)

	// Reserve room for a usable progress bar
	minBarWidth := 10
	availableForContent := innerWidth - statusWidth - timeWidth - sepWidth*2 - minBarWidth - trackNumSpace - mutedWidth

	var styledTitle, styledInfo string
	var usedContentWidth int

	switch {
	case info != "" && titleWidth+sepWidth+infoWidth <= availableForContent:
		styledTitle = titleStyle().Render(title)
		styledInfo = artistStyle().Render(info)
		usedContentWidth = titleWidth + sepWidth + infoWidth
	case info != "" && titleWidth+sepWidth+3 <= availableForContent:
		maxInfo := availableForContent - titleWidth - sepWidth
		styledTitle = titleStyle().Render(title)
		truncated := render.TruncateEllipsis(info, maxInfo)
		styledInfo = artistStyle().Render(truncated)
		usedContentWidth = titleWidth + sepWidth + lipgloss.Width(truncated)
	default:
		truncated := render.TruncateEllipsis(title, max(availableForContent, 10))
		styledTitle = titleStyle().Render(truncated)
		usedContentWidth = lipgloss.Width(truncated)
	}

	barWidth := max(innerWidth-usedContentWidth-trackNumSpace-mutedWidth-statusWidth-timeWidth-sepWidth*2, ui.MinProgressBarWidth)

	// Title   Info   3/12   ▶  ━━━───   1:23 / 3:58   muted
	var content strings.Builder
	content.WriteString(styledTitle)
	if styledInfo != "" {
		content.WriteString(separator)
		content.WriteString(styledInfo)
	}
	if trackNum != "" {
		content.WriteString(separator)
		content.WriteString(metaStyle().Render(trackNum))
	}
	content.WriteString(separator)
	content.WriteString(statusStyle().Render(status))
	content.WriteString("  ")
	content.WriteString(RenderProgressBar(s.Position, s.Duration, barWidth))
	content.WriteString(separator)
	content.WriteString(progressTimeStyle().Render(timeStr))
	if s.Muted {
		content.WriteString(separator)
		content.WriteString(warningStyle().Render(mutedLabel))
	}

	line := render.TruncateEllipsis(content.String(), innerWidth)
	return styles.Panel().Padding(0, 2).Width(width - styles.PanelOverhead).Render(line)
}

func statusSymbol(s Status) string {
	switch s {
	case StatusLoading:
		return loadingSymbol
	case StatusPaused:
		return pauseSymbol
	case StatusStopped, StatusPlaying:
		return playSymbol
	}
	return playSymbol
}
