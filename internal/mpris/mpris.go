//go:build linux

package mpris

import (
	"fmt"
	"hash/fnv"
	"time"

	"github.com/godbus/dbus/v5"
	"github.com/quarckster/go-mpris-server/pkg/server"
	"github.com/quarckster/go-mpris-server/pkg/types"
	"go.uber.org/zap"

	"github.com/llehouerou/segue/internal/playback"
)

// Adapter connects the playback controller to MPRIS over D-Bus.
type Adapter struct {
	server *server.Server
}

// New creates and starts a new MPRIS adapter.
func New(ctrl Controller, logger *zap.Logger) (*Adapter, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	a := &Adapter{
		server: server.NewServer("segue", &rootAdapter{}, &playerAdapter{ctrl: ctrl}),
	}

	go func() {
		if err := a.server.Listen(); err != nil {
			logger.Warn("mpris server stopped", zap.Error(err))
		}
	}()

	return a, nil
}

// Close stops the adapter and releases D-Bus resources.
func (a *Adapter) Close() error {
	return a.server.Stop()
}

// rootAdapter implements OrgMprisMediaPlayer2Adapter.
type rootAdapter struct{}

func (r *rootAdapter) Raise() error {
	return nil // Not supported
}

func (r *rootAdapter) Quit() error {
	return nil // Stop on the player interface ends the session
}

func (r *rootAdapter) CanQuit() (bool, error) {
	return false, nil
}

func (r *rootAdapter) CanRaise() (bool, error) {
	return false, nil
}

func (r *rootAdapter) HasTrackList() (bool, error) {
	return false, nil
}

func (r *rootAdapter) Identity() (string, error) {
	return "segue", nil
}

//nolint:revive // Method name required by interface.
func (r *rootAdapter) SupportedUriSchemes() ([]string, error) {
	return []string{"file"}, nil
}

func (r *rootAdapter) SupportedMimeTypes() ([]string, error) {
	return []string{
		"audio/mpeg", "audio/flac", "audio/wav",
		"audio/ogg", "audio/opus", "audio/mp4",
	}, nil
}

// playerAdapter implements OrgMprisMediaPlayer2PlayerAdapter. Every
// control becomes a controller command; properties read the latest
// snapshot.
type playerAdapter struct {
	ctrl Controller
}

func (p *playerAdapter) send(kind playback.CommandKind) error {
	p.ctrl.Send(playback.Cmd(kind))
	return nil
}

func (p *playerAdapter) Next() error      { return p.send(playback.CmdNext) }
func (p *playerAdapter) Previous() error  { return p.send(playback.CmdPrevious) }
func (p *playerAdapter) Pause() error     { return p.send(playback.CmdPause) }
func (p *playerAdapter) PlayPause() error { return p.send(playback.CmdTogglePause) }
func (p *playerAdapter) Play() error      { return p.send(playback.CmdResume) }

// Stop ends the session: there is no stopped-but-loaded state to return to.
func (p *playerAdapter) Stop() error { return p.send(playback.CmdQuit) }

func (p *playerAdapter) Seek(offset types.Microseconds) error {
	p.ctrl.Send(playback.Seek(time.Duration(offset) * time.Microsecond))
	return nil
}

func (p *playerAdapter) SetPosition(_ string, position types.Microseconds) error {
	p.ctrl.Send(playback.SeekTo(time.Duration(position) * time.Microsecond))
	return nil
}

//nolint:revive // Method name required by interface.
func (p *playerAdapter) OpenUri(_ string) error {
	return nil // Not supported
}

func (p *playerAdapter) PlaybackStatus() (types.PlaybackStatus, error) {
	return playbackStatus(p.ctrl.Snapshot().State), nil
}

func playbackStatus(s playback.State) types.PlaybackStatus {
	switch s.Kind {
	case playback.KindPlaying, playback.KindDraining, playback.KindLoading:
		return types.PlaybackStatusPlaying
	case playback.KindPaused:
		return types.PlaybackStatusPaused
	case playback.KindIdle, playback.KindStopped:
		return types.PlaybackStatusStopped
	}
	return types.PlaybackStatusStopped
}

func (p *playerAdapter) Rate() (float64, error) {
	return 1.0, nil
}

func (p *playerAdapter) SetRate(_ float64) error {
	return nil // Not supported
}

func (p *playerAdapter) Metadata() (types.Metadata, error) {
	return metadata(p.ctrl.Snapshot()), nil
}

func metadata(snap playback.Snapshot) types.Metadata {
	if snap.Track == nil {
		return types.Metadata{}
	}
	rec := snap.Track.Record

	trackNumber := snap.Track.SequenceIndex + 1
	if rec.TagNumber != nil {
		trackNumber = *rec.TagNumber
	}

	meta := types.Metadata{
		TrackId:     dbus.ObjectPath(formatTrackID(rec.Path)),
		Length:      types.Microseconds(snap.Duration.Microseconds()),
		Title:       rec.Title(),
		Album:       rec.Album,
		TrackNumber: trackNumber,
	}
	if rec.Artist != "" {
		meta.Artist = []string{rec.Artist}
	}
	if artPath := FindAlbumArt(rec.Path); artPath != "" {
		meta.ArtUrl = "file://" + artPath
	}
	return meta
}

func (p *playerAdapter) Volume() (float64, error) {
	if p.ctrl.Snapshot().Muted {
		return 0, nil
	}
	return 1.0, nil
}

// SetVolume maps zero to mute and anything else to unmute.
func (p *playerAdapter) SetVolume(v float64) error {
	if muted := p.ctrl.Snapshot().Muted; muted != (v <= 0) {
		return p.send(playback.CmdToggleMute)
	}
	return nil
}

func (p *playerAdapter) Position() (int64, error) {
	return p.ctrl.Snapshot().Position.Microseconds(), nil
}

func (p *playerAdapter) MinimumRate() (float64, error) {
	return 1.0, nil
}

func (p *playerAdapter) MaximumRate() (float64, error) {
	return 1.0, nil
}

func (p *playerAdapter) CanGoNext() (bool, error) {
	snap := p.ctrl.Snapshot()
	return snap.Track != nil && snap.State.Index+1 < snap.Len, nil
}

// CanGoPrevious is true on any track since previous on the first one
// restarts it.
func (p *playerAdapter) CanGoPrevious() (bool, error) {
	return p.ctrl.Snapshot().Track != nil, nil
}

func (p *playerAdapter) CanPlay() (bool, error) {
	return p.ctrl.Snapshot().Track != nil, nil
}

func (p *playerAdapter) CanPause() (bool, error) {
	return true, nil
}

func (p *playerAdapter) CanSeek() (bool, error) {
	return true, nil
}

func (p *playerAdapter) CanControl() (bool, error) {
	return true, nil
}

func formatTrackID(path string) string {
	h := fnv.New64a()
	h.Write([]byte(path))
	return fmt.Sprintf("/org/mpris/MediaPlayer2/Track/%x", h.Sum64())
}
