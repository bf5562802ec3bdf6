package app

import (
	"github.com/llehouerou/segue/internal/playback"
	"github.com/llehouerou/segue/internal/playlist"
)

// Compile-time assertion that the controller satisfies Playback.
var _ Playback = (*playback.Controller)(nil)

// Playback is the part of the controller the UI talks to.
type Playback interface {
	Send(cmd playback.Command)
	Snapshot() playback.Snapshot
	Tracks() []playlist.OrderedTrack
	Subscribe() *playback.Subscription
}
