package app

import (
	"context"
	"fmt"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/llehouerou/segue/internal/library"
	"github.com/llehouerou/segue/internal/playback"
	"github.com/llehouerou/segue/internal/player"
	"github.com/llehouerou/segue/internal/playlist"
)

// fakePlayback records commands and serves a fixed snapshot. The embedded
// controller is never run; it only provides Tracks and Subscribe.
type fakePlayback struct {
	*playback.Controller
	sent []playback.Command
	snap playback.Snapshot
}

func (f *fakePlayback) Send(cmd playback.Command) { f.sent = append(f.sent, cmd) }

func (f *fakePlayback) Snapshot() playback.Snapshot { return f.snap }

func testTracks(n int) []playlist.OrderedTrack {
	records := make([]library.TrackRecord, n)
	for i := range n {
		num := i + 1
		title := fmt.Sprintf("Song %d", num)
		records[i] = library.TrackRecord{
			Path:      fmt.Sprintf("/music/%02d.flac", num),
			TagNumber: &num,
			TagTitle:  &title,
			Artist:    "Artist",
			Size:      1_000_000,
		}
	}
	return playlist.Resolve(records)
}

func newTestModel(t *testing.T, n int) (Model, *fakePlayback) {
	t.Helper()
	tracks := testTracks(n)
	ctrl := playback.New(player.NewMock(), playlist.NewQueue(tracks), playback.Options{})
	fake := &fakePlayback{
		Controller: ctrl,
		snap:       playback.Snapshot{State: playback.State{Kind: playback.KindIdle, Index: -1, Next: -1}, Len: n},
	}
	return New(fake, playlist.TierTag, 5*time.Second), fake
}

func playingSnapshot(index, n int) playback.Snapshot {
	tracks := testTracks(n)
	return playback.Snapshot{
		State:    playback.State{Kind: playback.KindPlaying, Index: index, Next: -1},
		Track:    &tracks[index],
		Len:      n,
		Position: 10 * time.Second,
		Duration: time.Minute,
	}
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	model, ok := next.(Model)
	require.True(t, ok, "Update returned %T", next)
	return model, cmd
}

func keyMsg(s string) tea.KeyMsg {
	switch s {
	case " ":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestUpdate_KeysSendCommands(t *testing.T) {
	tests := []struct {
		key  string
		want playback.Command
	}{
		{"j", playback.Cmd(playback.CmdNext)},
		{"up", playback.Cmd(playback.CmdPrevious)},
		{" ", playback.Cmd(playback.CmdTogglePause)},
		{"l", playback.Seek(5 * time.Second)},
		{"h", playback.Seek(-5 * time.Second)},
		{"m", playback.Cmd(playback.CmdToggleMute)},
		{"?", playback.Cmd(playback.CmdToggleHelp)},
		{"q", playback.Cmd(playback.CmdQuit)},
		{"ctrl+c", playback.Cmd(playback.CmdQuit)},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			m, fake := newTestModel(t, 3)

			_, cmd := update(t, m, keyMsg(tt.key))

			assert.Nil(t, cmd)
			assert.Equal(t, []playback.Command{tt.want}, fake.sent)
		})
	}
}

func TestUpdate_UnboundKeyIgnored(t *testing.T) {
	m, fake := newTestModel(t, 3)

	_, cmd := update(t, m, keyMsg("x"))

	assert.Nil(t, cmd)
	assert.Empty(t, fake.sent)
}

func TestUpdate_ServiceEventRefreshes(t *testing.T) {
	m, fake := newTestModel(t, 3)
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 100, Height: 20})
	fake.snap = playingSnapshot(1, 3)

	m, cmd := update(t, m, ServiceTrackChangedMsg{PreviousIndex: 0, CurrentIndex: 1})

	assert.NotNil(t, cmd, "should keep watching events")
	assert.Equal(t, 1, m.queue.Current())
	assert.Equal(t, fake.snap, m.snap)
	assert.Contains(t, ansi.Strip(m.View()), "Queue (2/3)")
}

func TestUpdate_ServiceClosedQuits(t *testing.T) {
	m, _ := newTestModel(t, 3)

	_, cmd := update(t, m, ServiceClosedMsg{})

	require.NotNil(t, cmd)
	assert.Equal(t, tea.QuitMsg{}, cmd())
}

func TestView_EmptyBeforeSize(t *testing.T) {
	m, _ := newTestModel(t, 3)

	assert.Empty(t, m.View())
}

func TestView_Layout(t *testing.T) {
	m, fake := newTestModel(t, 3)
	fake.snap = playingSnapshot(0, 3)
	m, _ = update(t, m, ServiceStateChangedMsg{})
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 100, Height: 20})

	plain := ansi.Strip(m.View())

	assert.Contains(t, plain, "segue")
	assert.Contains(t, plain, "3 tracks")
	assert.Contains(t, plain, "Song 2")
	assert.Contains(t, plain, "1:00")
	assert.Contains(t, plain, "Toggle help")
	assert.NotContains(t, plain, "Press ? to close")
}

func TestView_HelpOverlay(t *testing.T) {
	m, fake := newTestModel(t, 3)
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 100, Height: 30})
	fake.snap = playingSnapshot(0, 3)
	fake.snap.ShowHelp = true

	m, _ = update(t, m, ServiceModeChangedMsg{})

	plain := ansi.Strip(m.View())
	assert.Contains(t, plain, "Press ? to close")
	assert.Contains(t, plain, "Seek forward")
}

func TestWatchServiceEvents_ClosedController(t *testing.T) {
	ctrl := playback.New(player.NewMock(), playlist.NewQueue(nil), playback.Options{})
	require.NoError(t, ctrl.Run(context.Background()))

	m := New(ctrl, playlist.TierCreated, 5*time.Second)

	cmd := m.Init()
	require.NotNil(t, cmd)
	assert.Equal(t, ServiceClosedMsg{}, cmd())
}
