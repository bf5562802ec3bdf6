package app

import "github.com/llehouerou/segue/internal/playback"

// PlaybackMessage marks messages coming from the playback controller.
type PlaybackMessage interface {
	playbackMessage()
}

// ServiceStateChangedMsg is sent when the session state changes.
type ServiceStateChangedMsg struct {
	Previous, Current playback.State
}

func (ServiceStateChangedMsg) playbackMessage() {}

// ServiceTrackChangedMsg is sent when the current track changes.
type ServiceTrackChangedMsg struct {
	PreviousIndex int
	CurrentIndex  int
}

func (ServiceTrackChangedMsg) playbackMessage() {}

// ServicePositionChangedMsg is sent on every position update.
type ServicePositionChangedMsg struct{}

func (ServicePositionChangedMsg) playbackMessage() {}

// ServiceModeChangedMsg is sent when mute or help visibility changes.
type ServiceModeChangedMsg struct{}

func (ServiceModeChangedMsg) playbackMessage() {}

// ServiceClosedMsg is sent when the controller has stopped.
type ServiceClosedMsg struct{}

func (ServiceClosedMsg) playbackMessage() {}
