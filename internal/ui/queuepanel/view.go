package queuepanel

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/llehouerou/segue/internal/playlist"
	"github.com/llehouerou/segue/internal/ui"
	"github.com/llehouerou/segue/internal/ui/render"
	"github.com/llehouerou/segue/internal/ui/styles"
)

// View renders the queue panel.
func (m Model) View() string {
	if m.Width() == 0 || m.Height() <= ui.PanelOverhead {
		return ""
	}

	innerWidth := m.Width() - ui.BorderHeight // border padding
	listHeight := m.listHeight()

	header := m.renderHeader(innerWidth)
	separator := render.Separator(innerWidth)
	trackList := m.renderTrackList(innerWidth, listHeight)

	content := header + "\n" + separator + "\n" + trackList

	return styles.Panel().
		Width(innerWidth).
		Render(content)
}

// renderHeader renders "Queue (i/N)".
func (m Model) renderHeader(innerWidth int) string {
	text := fmt.Sprintf("Queue (%d/%d)", m.current+1, len(m.tracks))
	return headerStyle().Render(render.TruncateAndPad(text, innerWidth))
}

// renderTrackList renders the visible window of tracks.
func (m Model) renderTrackList(innerWidth, listHeight int) string {
	start, end := m.cursor.VisibleRange(len(m.tracks), listHeight)
	numWidth := len(strconv.Itoa(len(m.tracks)))

	lines := make([]string, 0, listHeight)
	for idx := start; idx < end; idx++ {
		lines = append(lines, m.renderTrackLine(m.tracks[idx], idx, numWidth, innerWidth))
	}
	for len(lines) < listHeight {
		lines = append(lines, render.EmptyLine(innerWidth))
	}

	return strings.Join(lines, "\n")
}

// renderTrackLine renders one row: marker, sequence number, title, artist.
func (m Model) renderTrackLine(track playlist.OrderedTrack, idx, numWidth, width int) string {
	prefix := "  "
	if idx == m.current {
		prefix = m.marker() + " "
	}
	num := fmt.Sprintf("%*d  ", numWidth, track.SequenceIndex+1)

	contentWidth := max(width-lipgloss.Width(prefix)-len(num), 0)
	titleWidth := contentWidth * 3 / 5
	artistWidth := contentWidth - titleWidth

	title := render.TruncateAndPad(track.Record.Title(), titleWidth)
	artist := render.TruncateAndPad(track.Record.Artist, artistWidth)

	switch {
	case idx == m.current:
		return currentStyle().Render(prefix + num + title + artist)
	case m.current >= 0 && idx < m.current:
		return playedStyle().Render(prefix + num + title + artist)
	default:
		return trackStyle().Render(prefix+num+title) + artistStyle().Render(artist)
	}
}

func (m Model) marker() string {
	switch m.status {
	case StatusLoading:
		return loadingSymbol
	case StatusPaused:
		return pausedSymbol
	case StatusNone, StatusPlaying:
		return playingSymbol
	}
	return playingSymbol
}
