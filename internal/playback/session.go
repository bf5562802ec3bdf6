package playback

import (
	"time"

	"github.com/llehouerou/segue/internal/playlist"
)

// Session is the state of one playback run. It is owned by the controller
// loop; other goroutines see it through Snapshot.
type Session struct {
	Queue    *playlist.Queue
	State    State
	Muted    bool
	ShowHelp bool
	Position time.Duration
	Duration time.Duration
}

// Snapshot is a read-only copy of a session.
type Snapshot struct {
	State    State
	Track    *playlist.OrderedTrack // nil when State has no track
	Len      int
	Muted    bool
	ShowHelp bool
	Position time.Duration
	Duration time.Duration
}

func (s *Session) snapshot() Snapshot {
	snap := Snapshot{
		State:    s.State,
		Len:      s.Queue.Len(),
		Muted:    s.Muted,
		ShowHelp: s.ShowHelp,
		Position: s.Position,
		Duration: s.Duration,
	}
	if t := s.Queue.Track(s.State.Index); t != nil {
		c := *t
		snap.Track = &c
	}
	return snap
}

// Paused reports whether output is held by the user.
func (s Snapshot) Paused() bool {
	return s.State.Kind == KindPaused
}
