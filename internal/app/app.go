// Package app is the root bubbletea model of the terminal player.
package app

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/llehouerou/segue/internal/keymap"
	"github.com/llehouerou/segue/internal/playback"
	"github.com/llehouerou/segue/internal/playlist"
	"github.com/llehouerou/segue/internal/ui/headerbar"
	"github.com/llehouerou/segue/internal/ui/helpbindings"
	"github.com/llehouerou/segue/internal/ui/queuepanel"
)

// Model is the root application model. It renders the controller's
// session and forwards resolved keys to it; it never mutates playback
// state itself.
type Model struct {
	playback Playback
	sub      *playback.Subscription
	keys     *keymap.Resolver

	header headerbar.Info
	queue  queuepanel.Model
	help   helpbindings.Model
	snap   playback.Snapshot

	width, height int
}

// New creates the root model. tier is the ordering the queue was resolved
// with; seekStep is the offset of the seek keys.
func New(pb Playback, tier playlist.Tier, seekStep time.Duration) Model {
	tracks := pb.Tracks()
	m := Model{
		playback: pb,
		sub:      pb.Subscribe(),
		keys:     keymap.NewResolver(keymap.All, seekStep),
		header:   headerbar.NewInfo(tracks, tier),
		queue:    queuepanel.New(tracks),
		help:     helpbindings.New(keymap.All),
	}
	m.refresh()
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return m.WatchServiceEvents()
}

// refresh pulls the latest snapshot and syncs the queue marker with it.
func (m *Model) refresh() {
	m.snap = m.playback.Snapshot()

	status := queuepanel.StatusNone
	switch m.snap.State.Kind {
	case playback.KindLoading:
		status = queuepanel.StatusLoading
	case playback.KindPlaying, playback.KindDraining:
		status = queuepanel.StatusPlaying
	case playback.KindPaused:
		status = queuepanel.StatusPaused
	case playback.KindIdle, playback.KindStopped:
	}
	m.queue.SetCurrent(m.snap.State.Index, status)
}
