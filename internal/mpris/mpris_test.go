//go:build linux

package mpris

import (
	"testing"
	"time"

	"github.com/quarckster/go-mpris-server/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/llehouerou/segue/internal/library"
	"github.com/llehouerou/segue/internal/playback"
	"github.com/llehouerou/segue/internal/playlist"
)

type fakeController struct {
	sent []playback.Command
	snap playback.Snapshot
}

func (f *fakeController) Send(cmd playback.Command)   { f.sent = append(f.sent, cmd) }
func (f *fakeController) Snapshot() playback.Snapshot { return f.snap }

func playing(index, n int) playback.Snapshot {
	num := 7
	title := "So What"
	return playback.Snapshot{
		State: playback.State{Kind: playback.KindPlaying, Index: index, Next: -1},
		Track: &playlist.OrderedTrack{
			SequenceIndex: index,
			Record: library.TrackRecord{
				Path:      "/nonexistent/music/01.flac",
				TagNumber: &num,
				TagTitle:  &title,
				Artist:    "Miles Davis",
				Album:     "Kind of Blue",
			},
		},
		Len:      n,
		Position: 90 * time.Second,
		Duration: 9 * time.Minute,
	}
}

func TestPlayerAdapter_Controls(t *testing.T) {
	tests := []struct {
		name string
		call func(p *playerAdapter) error
		want playback.Command
	}{
		{"next", (*playerAdapter).Next, playback.Cmd(playback.CmdNext)},
		{"previous", (*playerAdapter).Previous, playback.Cmd(playback.CmdPrevious)},
		{"pause", (*playerAdapter).Pause, playback.Cmd(playback.CmdPause)},
		{"play", (*playerAdapter).Play, playback.Cmd(playback.CmdResume)},
		{"play-pause", (*playerAdapter).PlayPause, playback.Cmd(playback.CmdTogglePause)},
		{"stop quits", (*playerAdapter).Stop, playback.Cmd(playback.CmdQuit)},
		{"seek", func(p *playerAdapter) error { return p.Seek(types.Microseconds(-5_000_000)) }, playback.Seek(-5 * time.Second)},
		{"set position", func(p *playerAdapter) error { return p.SetPosition("", types.Microseconds(30_000_000)) }, playback.SeekTo(30 * time.Second)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := &fakeController{}
			p := &playerAdapter{ctrl: ctrl}

			require.NoError(t, tt.call(p))

			assert.Equal(t, []playback.Command{tt.want}, ctrl.sent)
		})
	}
}

func TestPlaybackStatus(t *testing.T) {
	tests := []struct {
		kind playback.Kind
		want types.PlaybackStatus
	}{
		{playback.KindIdle, types.PlaybackStatusStopped},
		{playback.KindLoading, types.PlaybackStatusPlaying},
		{playback.KindPlaying, types.PlaybackStatusPlaying},
		{playback.KindDraining, types.PlaybackStatusPlaying},
		{playback.KindPaused, types.PlaybackStatusPaused},
		{playback.KindStopped, types.PlaybackStatusStopped},
	}

	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, playbackStatus(playback.State{Kind: tt.kind}))
		})
	}
}

func TestMetadata(t *testing.T) {
	meta := metadata(playing(0, 3))

	assert.Equal(t, "So What", meta.Title)
	assert.Equal(t, []string{"Miles Davis"}, meta.Artist)
	assert.Equal(t, "Kind of Blue", meta.Album)
	assert.Equal(t, 7, meta.TrackNumber)
	assert.Equal(t, types.Microseconds(540_000_000), meta.Length)
	assert.Equal(t, formatTrackID("/nonexistent/music/01.flac"), string(meta.TrackId))
	assert.Empty(t, meta.ArtUrl)
}

func TestMetadata_UntaggedUsesSequence(t *testing.T) {
	snap := playing(2, 3)
	snap.Track.Record.TagNumber = nil
	snap.Track.Record.Artist = ""

	meta := metadata(snap)

	assert.Equal(t, 3, meta.TrackNumber)
	assert.Nil(t, meta.Artist)
}

func TestMetadata_NoTrack(t *testing.T) {
	assert.Equal(t, types.Metadata{}, metadata(playback.Snapshot{}))
}

func TestCanGoNext(t *testing.T) {
	p := &playerAdapter{ctrl: &fakeController{snap: playing(1, 3)}}
	next, _ := p.CanGoNext()
	assert.True(t, next)

	p = &playerAdapter{ctrl: &fakeController{snap: playing(2, 3)}}
	next, _ = p.CanGoNext()
	assert.False(t, next)
	prev, _ := p.CanGoPrevious()
	assert.True(t, prev)
}

func TestSetVolume_TogglesMute(t *testing.T) {
	ctrl := &fakeController{snap: playing(0, 1)}
	p := &playerAdapter{ctrl: ctrl}

	require.NoError(t, p.SetVolume(0.5))
	assert.Empty(t, ctrl.sent, "already unmuted")

	require.NoError(t, p.SetVolume(0))
	assert.Equal(t, []playback.Command{playback.Cmd(playback.CmdToggleMute)}, ctrl.sent)

	ctrl.snap.Muted = true
	vol, _ := p.Volume()
	assert.Zero(t, vol)
}

func TestPosition(t *testing.T) {
	p := &playerAdapter{ctrl: &fakeController{snap: playing(0, 1)}}

	pos, err := p.Position()

	require.NoError(t, err)
	assert.Equal(t, int64(90_000_000), pos)
}
