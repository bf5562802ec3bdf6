// Package queuepanel renders the play order with the current track
// highlighted.
package queuepanel

import (
	"github.com/llehouerou/segue/internal/playlist"
	"github.com/llehouerou/segue/internal/ui"
	"github.com/llehouerou/segue/internal/ui/cursor"
)

// Status decorates the current row.
type Status int

const (
	StatusNone Status = iota // nothing playing
	StatusLoading
	StatusPlaying
	StatusPaused
)

// Model represents the queue panel state.
type Model struct {
	ui.Base
	tracks  []playlist.OrderedTrack
	current int // -1 when no track is current
	status  Status
	cursor  cursor.Cursor
}

// New creates a queue panel over tracks in play order.
func New(tracks []playlist.OrderedTrack) Model {
	return Model{
		tracks:  tracks,
		current: -1,
		cursor:  cursor.New(ui.ScrollMargin),
	}
}

// SetSize sets the panel dimensions and keeps the current track in view.
func (m *Model) SetSize(width, height int) {
	m.Base.SetSize(width, height)
	m.cursor.EnsureVisible(len(m.tracks), m.listHeight())
}

// SetCurrent marks index as the current track and scrolls to it. Out of
// range indices clear the mark and leave the scroll position alone.
func (m *Model) SetCurrent(index int, status Status) {
	m.status = status
	if index < 0 || index >= len(m.tracks) {
		m.current = -1
		return
	}
	m.current = index
	m.cursor.Jump(index, len(m.tracks), m.listHeight())
}

// Current returns the marked index, or -1.
func (m Model) Current() int {
	return m.current
}

// Offset returns the first visible row.
func (m Model) Offset() int {
	return m.cursor.Offset()
}

func (m Model) listHeight() int {
	return m.ListHeight(ui.PanelOverhead)
}
