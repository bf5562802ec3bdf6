package mpris

import "github.com/llehouerou/segue/internal/playback"

// Controller is the part of the playback controller MPRIS drives.
type Controller interface {
	Send(cmd playback.Command)
	Snapshot() playback.Snapshot
}
