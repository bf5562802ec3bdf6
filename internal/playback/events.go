package playback

import (
	"errors"
	"fmt"
	"time"

	"github.com/llehouerou/segue/internal/library"
	"github.com/llehouerou/segue/internal/playlist"
)

// StateChange is emitted when the controller state changes.
type StateChange struct {
	Previous State
	Current  State
}

// TrackChange is emitted when the current queue slot changes, either by a
// skip (the new slot is then Loading) or by a gapless handoff.
type TrackChange struct {
	PreviousIndex int
	Index         int
	Track         *playlist.OrderedTrack
}

// PositionChange is emitted on each poll tick while a track is loaded and
// after a seek.
type PositionChange struct {
	Position time.Duration
	Duration time.Duration
}

// ModeChange is emitted when the mute or help flags flip.
type ModeChange struct {
	Muted    bool
	ShowHelp bool
}

// BackendOpenError reports a track the backend could not open. The
// controller logs it and moves on as if the track had ended.
type BackendOpenError struct {
	Path string
	Err  error
}

func (e *BackendOpenError) Error() string {
	return fmt.Sprintf("open %s: %v", e.Path, e.Err)
}

func (e *BackendOpenError) Unwrap() error { return e.Err }

// ErrAlreadyRunning is returned by Run when called twice.
var ErrAlreadyRunning = errors.New("playback: controller already running")

// ErrNothingPlayable means every track of the queue failed to open.
var ErrNothingPlayable = fmt.Errorf("playback: no track could be opened: %w", library.ErrEmptyCollection)
