package playback

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"testing/synctest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/llehouerou/segue/internal/library"
	"github.com/llehouerou/segue/internal/player"
	"github.com/llehouerou/segue/internal/playlist"
)

const testPoll = 100 * time.Millisecond

var errCorrupt = errors.New("corrupt frame")

// harness runs a Controller against player.Mock inside a synctest bubble.
type harness struct {
	t     *testing.T
	ctrl  *Controller
	mock  *player.Mock
	paths []string
	sub   *Subscription
	errc  chan error
}

func newHarness(t *testing.T, n int) *harness {
	t.Helper()
	paths := make([]string, n)
	tracks := make([]playlist.OrderedTrack, n)
	for i := range n {
		paths[i] = fmt.Sprintf("/music/%02d.flac", i+1)
		tracks[i] = playlist.OrderedTrack{
			SequenceIndex: i,
			Record:        library.TrackRecord{Path: paths[i]},
		}
	}
	mock := player.NewMock()
	ctrl := New(mock, playlist.NewQueue(tracks), Options{PollInterval: testPoll})
	return &harness{
		t:     t,
		ctrl:  ctrl,
		mock:  mock,
		paths: paths,
		sub:   ctrl.Subscribe(),
		errc:  make(chan error, 1),
	}
}

func (h *harness) start(ctx context.Context) {
	go func() { h.errc <- h.ctrl.Run(ctx) }()
	synctest.Wait()
}

func (h *harness) send(cmd Command) {
	h.ctrl.Send(cmd)
	synctest.Wait()
}

func (h *harness) tick() {
	time.Sleep(testPoll + time.Millisecond)
	synctest.Wait()
}

func (h *harness) finish() {
	require.True(h.t, h.mock.Finish(), "nothing playing")
	synctest.Wait()
}

func (h *harness) state() State {
	return h.ctrl.Snapshot().State
}

func (h *harness) quit() {
	h.ctrl.Send(Cmd(CmdQuit))
	require.NoError(h.t, <-h.errc)
}

// opened returns the pipelines opened for path, in order.
func (h *harness) opened(path string) []*player.MockPipeline {
	var out []*player.MockPipeline
	for _, p := range h.mock.Opened() {
		if p.Path() == path {
			out = append(out, p)
		}
	}
	return out
}

func (h *harness) opens(path string) int {
	n := 0
	for _, p := range h.mock.Opens() {
		if p == path {
			n++
		}
	}
	return n
}

// states drains the state changes received so far.
func (h *harness) states() []State {
	var out []State
	for {
		select {
		case e := <-h.sub.StateChanged:
			out = append(out, e.Current)
		default:
			return out
		}
	}
}

func (h *harness) assertAllClosedOnce() {
	h.t.Helper()
	for _, p := range h.mock.Opened() {
		assert.Equal(h.t, 1, p.Closes(), "closes of %s", p.Path())
	}
}

// armDrain shortens track 0 so the first tick primes track 1.
func (h *harness) armDrain() {
	h.t.Helper()
	h.tick()
	require.Equal(h.t, draining(0, 1), h.state())
	require.NotNil(h.t, h.mock.Next(), "track 1 should be armed")
}

func TestController_EmptyQueueStops(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		h := newHarness(t, 0)
		h.start(context.Background())

		require.NoError(t, <-h.errc)
		assert.Equal(t, stopped(), h.state())
		assert.Empty(t, h.mock.Opens())
		<-h.sub.Done
	})
}

func TestController_StartLoadsFirstTrack(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		h := newHarness(t, 3)
		h.start(context.Background())

		assert.Equal(t, playing(0), h.state())
		assert.Equal(t, []State{loading(0), playing(0)}, h.states())
		require.NotNil(t, h.mock.Current())
		assert.Equal(t, h.paths[0], h.mock.Current().Path())

		snap := h.ctrl.Snapshot()
		require.NotNil(t, snap.Track)
		assert.Equal(t, h.paths[0], snap.Track.Record.Path)
		assert.Equal(t, time.Minute, snap.Duration)
		assert.Equal(t, 3, snap.Len)

		h.quit()
		h.assertAllClosedOnce()
	})
}

func TestController_PlaysThroughQueueWithoutPriming(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		h := newHarness(t, 2)
		h.start(context.Background())

		// no tick yet, so track 1 was never primed
		h.finish()
		assert.Equal(t, playing(1), h.state())
		assert.Equal(t, 1, h.opens(h.paths[1]))

		h.finish()
		require.NoError(t, <-h.errc)
		assert.Equal(t, stopped(), h.state())
		h.assertAllClosedOnce()
	})
}

func TestController_GaplessHandoff(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		h := newHarness(t, 3)
		h.mock.SetDuration(h.paths[0], time.Second)
		h.start(context.Background())
		h.armDrain()

		first := h.opened(h.paths[0])[0]
		second := h.opened(h.paths[1])[0]
		assert.Same(t, second, h.mock.Next())
		h.states()

		h.finish()

		// one step, no Loading in between
		assert.Equal(t, []State{playing(1)}, h.states())
		assert.Same(t, second, h.mock.Current())
		assert.Equal(t, 1, first.Closes(), "ended track closed on handoff")
		assert.Equal(t, 0, second.Closes())
		assert.Equal(t, 1, h.opens(h.paths[1]), "primed pipeline reused")

		h.quit()
		h.assertAllClosedOnce()
	})
}

func TestController_TrackChangeOnHandoff(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		h := newHarness(t, 2)
		h.mock.SetDuration(h.paths[0], time.Second)
		h.start(context.Background())
		<-h.sub.TrackChanged // track 0

		h.armDrain()
		h.finish()

		select {
		case tc := <-h.sub.TrackChanged:
			assert.Equal(t, 0, tc.PreviousIndex)
			assert.Equal(t, 1, tc.Index)
			require.NotNil(t, tc.Track)
			assert.Equal(t, h.paths[1], tc.Track.Record.Path)
		default:
			t.Fatal("no TrackChange after handoff")
		}

		h.quit()
	})
}

func TestController_PrimeFailureRetriesTrack(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		h := newHarness(t, 3)
		h.mock.SetDuration(h.paths[0], time.Second)
		h.mock.FailOpenOnce(h.paths[1], errCorrupt)
		h.start(context.Background())

		h.tick()
		assert.Equal(t, draining(0, 1), h.state())
		assert.Nil(t, h.mock.Next(), "failed prime must not be armed")

		h.finish()

		// degraded path: reopened, not skipped
		assert.Equal(t, playing(1), h.state())
		assert.Equal(t, 2, h.opens(h.paths[1]))
		assert.Contains(t, h.states(), loading(1))

		h.quit()
		h.assertAllClosedOnce()
	})
}

func TestController_PersistentPrimeFailureSkipsTrack(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		h := newHarness(t, 3)
		h.mock.SetDuration(h.paths[0], time.Second)
		h.mock.FailOpen(h.paths[1], errCorrupt)
		h.start(context.Background())

		h.tick()
		h.finish()

		assert.Equal(t, playing(2), h.state())
		assert.Equal(t, 2, h.opens(h.paths[1]))
		assert.Empty(t, h.opened(h.paths[1]))

		h.quit()
		h.assertAllClosedOnce()
	})
}

func TestController_OpenFailureSkipsSilently(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		h := newHarness(t, 3)
		h.mock.FailOpen(h.paths[0], fmt.Errorf("decode cue: %w", player.ErrUnsupportedFormat))
		h.start(context.Background())

		assert.Equal(t, playing(1), h.state())
		assert.Equal(t, h.paths[1], h.mock.Current().Path())

		h.quit()
		h.assertAllClosedOnce()
	})
}

func TestController_AllOpensFailStops(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		h := newHarness(t, 3)
		for _, p := range h.paths {
			h.mock.FailOpen(p, errCorrupt)
		}
		h.start(context.Background())

		err := <-h.errc
		require.ErrorIs(t, err, ErrNothingPlayable)
		assert.ErrorIs(t, err, library.ErrEmptyCollection)
		assert.Equal(t, stopped(), h.state())
		assert.Len(t, h.mock.Opens(), 3)
	})
}

func TestController_FailureAfterPlayingEndsCleanly(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		h := newHarness(t, 2)
		h.mock.FailOpen(h.paths[1], errCorrupt)
		h.start(context.Background())
		require.Equal(t, playing(0), h.state())

		h.finish()
		require.NoError(t, <-h.errc)
		assert.Equal(t, stopped(), h.state())
		h.assertAllClosedOnce()
	})
}

func TestController_EndDuringPrimingAdoptsOpen(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		h := newHarness(t, 2)
		h.mock.SetDuration(h.paths[0], time.Second)
		release := h.mock.BlockOpen(h.paths[1])
		h.start(context.Background())

		h.tick()
		assert.Equal(t, draining(0, 1), h.state())

		h.finish()
		assert.Equal(t, loading(1), h.state())

		release()
		synctest.Wait()
		assert.Equal(t, playing(1), h.state())
		assert.Equal(t, 1, h.opens(h.paths[1]), "in-flight open adopted")

		h.quit()
		h.assertAllClosedOnce()
	})
}

func TestController_SkipForwardAndBackward(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		h := newHarness(t, 3)
		h.start(context.Background())

		h.send(Cmd(CmdNext))
		assert.Equal(t, playing(1), h.state())
		assert.Equal(t, 1, h.opened(h.paths[0])[0].Closes())

		h.send(Cmd(CmdPrevious))
		assert.Equal(t, playing(0), h.state())

		// previous on the first track restarts it
		h.send(Cmd(CmdPrevious))
		assert.Equal(t, playing(0), h.state())
		assert.Equal(t, 3, h.opens(h.paths[0]))

		h.quit()
		h.assertAllClosedOnce()
	})
}

func TestController_SkipsAfterHandoffMoveFromNewTrack(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		h := newHarness(t, 3)
		h.mock.SetDuration(h.paths[0], time.Second)
		h.start(context.Background())
		h.armDrain()
		h.finish()
		require.Equal(t, playing(1), h.state())

		h.send(Cmd(CmdNext))
		assert.Equal(t, playing(2), h.state())
		assert.Equal(t, h.paths[2], h.mock.Current().Path())

		h.send(Cmd(CmdPrevious))
		assert.Equal(t, playing(1), h.state())
		assert.Equal(t, 2, h.opens(h.paths[1]))

		h.quit()
		h.assertAllClosedOnce()
	})
}

func TestController_NextOnLastTrackStops(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		h := newHarness(t, 2)
		h.start(context.Background())
		h.send(Cmd(CmdNext))
		require.Equal(t, playing(1), h.state())

		h.ctrl.Send(Cmd(CmdNext))
		require.NoError(t, <-h.errc)
		assert.Equal(t, stopped(), h.state())
		assert.Nil(t, h.mock.Current())
		h.assertAllClosedOnce()
	})
}

func TestController_SkipWhileDrainingClosesBoth(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		h := newHarness(t, 3)
		h.mock.SetDuration(h.paths[0], time.Second)
		h.start(context.Background())
		h.armDrain()
		primed := h.opened(h.paths[1])[0]

		h.send(Cmd(CmdNext))

		assert.Equal(t, playing(1), h.state())
		assert.Equal(t, 1, primed.Closes(), "primed pipeline released")
		assert.Equal(t, 2, h.opens(h.paths[1]))
		assert.Nil(t, h.mock.Next())

		h.quit()
		h.assertAllClosedOnce()
	})
}

func TestController_SkipCancelsStaleLoad(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		h := newHarness(t, 3)
		h.start(context.Background())
		release := h.mock.BlockOpen(h.paths[1])

		h.send(Cmd(CmdNext))
		require.Equal(t, loading(1), h.state())
		h.send(Cmd(CmdQuit))

		// the blocked open still completes; Run closes what it produced
		release()
		require.NoError(t, <-h.errc)
		require.Len(t, h.opened(h.paths[1]), 1)
		h.assertAllClosedOnce()
	})
}

func TestController_CommandsQueuedDuringLoading(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		h := newHarness(t, 3)
		release := h.mock.BlockOpen(h.paths[0])
		h.start(context.Background())
		require.Equal(t, loading(0), h.state())

		h.send(Cmd(CmdToggleMute))
		h.send(Seek(10 * time.Second))
		h.send(Cmd(CmdTogglePause))

		assert.Equal(t, loading(0), h.state())
		assert.False(t, h.mock.Muted())
		assert.Empty(t, h.mock.Seeks())

		release()
		synctest.Wait()

		assert.Equal(t, paused(0), h.state())
		assert.True(t, h.mock.Muted())
		assert.True(t, h.mock.Paused())
		assert.Equal(t, []player.SeekCall{{Path: h.paths[0], Pos: 10 * time.Second}}, h.mock.Seeks())

		h.quit()
		h.assertAllClosedOnce()
	})
}

func TestController_QueuedSkipsApplyInOrder(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		h := newHarness(t, 4)
		release := h.mock.BlockOpen(h.paths[0])
		h.start(context.Background())

		h.send(Cmd(CmdNext))
		h.send(Cmd(CmdNext))
		release()
		synctest.Wait()

		assert.Equal(t, playing(2), h.state())
		h.quit()
		h.assertAllClosedOnce()
	})
}

func TestController_QuitDuringLoadingClosesLatePipeline(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		h := newHarness(t, 2)
		release := h.mock.BlockOpen(h.paths[0])
		h.start(context.Background())

		h.send(Cmd(CmdQuit))
		assert.Equal(t, stopped(), h.state())

		select {
		case <-h.errc:
			t.Fatal("Run returned before the pending open settled")
		default:
		}

		release()
		require.NoError(t, <-h.errc)
		require.Len(t, h.mock.Opened(), 1)
		h.assertAllClosedOnce()
		assert.Nil(t, h.mock.Current(), "late pipeline never played")
	})
}

func TestController_PauseAndResume(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		h := newHarness(t, 2)
		h.start(context.Background())

		h.send(Cmd(CmdTogglePause))
		assert.Equal(t, paused(0), h.state())
		assert.True(t, h.mock.Paused())
		assert.NotNil(t, h.mock.Current(), "pipeline kept while paused")

		h.send(Cmd(CmdTogglePause))
		assert.Equal(t, playing(0), h.state())
		assert.False(t, h.mock.Paused())

		h.send(Cmd(CmdResume))
		assert.Equal(t, playing(0), h.state())

		h.quit()
	})
}

func TestController_PauseWhileDraining(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		h := newHarness(t, 2)
		h.mock.SetDuration(h.paths[0], time.Second)
		h.start(context.Background())
		h.armDrain()

		h.send(Cmd(CmdPause))
		assert.Equal(t, paused(0), h.state())
		assert.NotNil(t, h.mock.Next(), "both pipelines kept")

		h.send(Cmd(CmdResume))
		assert.Equal(t, draining(0, 1), h.state())

		h.quit()
		h.assertAllClosedOnce()
	})
}

func TestController_SkipFromPausedResumesOutput(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		h := newHarness(t, 2)
		h.start(context.Background())

		h.send(Cmd(CmdPause))
		h.send(Cmd(CmdNext))

		assert.Equal(t, playing(1), h.state())
		assert.False(t, h.mock.Paused())
		h.quit()
	})
}

func TestController_SeekClampsAndForwards(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		h := newHarness(t, 2)
		h.start(context.Background())

		h.send(Seek(90 * time.Second))
		assert.Equal(t, time.Minute, h.ctrl.Snapshot().Position)

		h.send(Seek(-2 * time.Minute))
		assert.Equal(t, time.Duration(0), h.ctrl.Snapshot().Position)

		h.send(SeekTo(30 * time.Second))
		assert.Equal(t, 30*time.Second, h.ctrl.Snapshot().Position)

		h.send(Seek(5 * time.Second))
		assert.Equal(t, 35*time.Second, h.ctrl.Snapshot().Position)

		want := []player.SeekCall{
			{Path: h.paths[0], Pos: time.Minute},
			{Path: h.paths[0], Pos: 0},
			{Path: h.paths[0], Pos: 30 * time.Second},
			{Path: h.paths[0], Pos: 35 * time.Second},
		}
		assert.Equal(t, want, h.mock.Seeks())
		assert.Equal(t, playing(0), h.state(), "seek keeps the track")

		h.quit()
	})
}

func TestController_SeekBackWhileDrainingKeepsNextArmed(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		h := newHarness(t, 2)
		h.mock.SetDuration(h.paths[0], time.Second)
		h.start(context.Background())
		h.armDrain()
		next := h.mock.Next()

		h.send(SeekTo(0))
		h.tick()

		assert.Equal(t, draining(0, 1), h.state())
		assert.Same(t, next, h.mock.Next())
		assert.Equal(t, 1, h.opens(h.paths[1]))

		h.quit()
		h.assertAllClosedOnce()
	})
}

func TestController_TickUpdatesPosition(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		h := newHarness(t, 1)
		h.start(context.Background())

		h.mock.Current().SetPosition(12 * time.Second)
		h.tick()

		assert.Equal(t, 12*time.Second, h.ctrl.Snapshot().Position)
		h.quit()
	})
}

func TestController_NoDrainOnLastTrack(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		h := newHarness(t, 1)
		h.mock.SetDuration(h.paths[0], time.Second)
		h.start(context.Background())

		h.tick()
		assert.Equal(t, playing(0), h.state())

		h.finish()
		require.NoError(t, <-h.errc)
		assert.Equal(t, stopped(), h.state())
		h.assertAllClosedOnce()
	})
}

func TestController_MutePersistsAcrossTracks(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		h := newHarness(t, 3)
		h.start(context.Background())

		h.send(Cmd(CmdToggleMute))
		require.True(t, h.mock.Muted())

		h.send(Cmd(CmdNext))
		h.finish()

		snap := h.ctrl.Snapshot()
		assert.Equal(t, playing(2), snap.State)
		assert.True(t, snap.Muted)
		assert.True(t, h.mock.Muted())

		h.send(Cmd(CmdToggleMute))
		assert.False(t, h.mock.Muted())
		h.quit()
	})
}

func TestController_HelpToggle(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		h := newHarness(t, 1)
		h.start(context.Background())

		h.send(Cmd(CmdToggleHelp))
		assert.True(t, h.ctrl.Snapshot().ShowHelp)
		select {
		case m := <-h.sub.ModeChanged:
			assert.True(t, m.ShowHelp)
		default:
			t.Error("no ModeChange for help toggle")
		}

		h.send(Cmd(CmdToggleHelp))
		assert.False(t, h.ctrl.Snapshot().ShowHelp)
		h.quit()
	})
}

func TestController_ContextCancelReleasesEverything(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		h := newHarness(t, 3)
		h.mock.SetDuration(h.paths[0], time.Second)
		ctx, cancel := context.WithCancel(context.Background())
		h.start(ctx)
		h.armDrain()

		cancel()
		require.NoError(t, <-h.errc)
		assert.Equal(t, stopped(), h.state())
		assert.Len(t, h.mock.Opened(), 2)
		h.assertAllClosedOnce()
	})
}

func TestController_QuitFromEveryStateReleasesOnce(t *testing.T) {
	tests := []struct {
		name  string
		setup func(h *harness)
		want  Kind
	}{
		{"playing", func(*harness) {}, KindPlaying},
		{"paused", func(h *harness) { h.send(Cmd(CmdPause)) }, KindPaused},
		{"draining", func(h *harness) { h.armDrain() }, KindDraining},
		{"paused while draining", func(h *harness) {
			h.armDrain()
			h.send(Cmd(CmdPause))
		}, KindPaused},
		{"after handoff", func(h *harness) {
			h.armDrain()
			h.finish()
		}, KindPlaying},
		{"after skips", func(h *harness) {
			h.send(Cmd(CmdNext))
			h.send(Cmd(CmdPrevious))
			h.send(Cmd(CmdNext))
		}, KindPlaying},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			synctest.Test(t, func(t *testing.T) {
				h := newHarness(t, 3)
				h.mock.SetDuration(h.paths[0], time.Second)
				h.start(context.Background())
				tt.setup(h)
				require.Equal(t, tt.want, h.state().Kind)

				h.quit()
				assert.Equal(t, stopped(), h.state())
				assert.NotEmpty(t, h.mock.Opened())
				h.assertAllClosedOnce()
				assert.Nil(t, h.mock.Current())
				assert.Nil(t, h.mock.Next())
			})
		})
	}
}

func TestController_RunTwice(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		h := newHarness(t, 1)
		h.start(context.Background())

		assert.ErrorIs(t, h.ctrl.Run(context.Background()), ErrAlreadyRunning)
		h.quit()
	})
}

func TestController_SendAfterStopDoesNotBlock(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		h := newHarness(t, 1)
		h.start(context.Background())
		h.quit()

		for range commandBufferSize + 1 {
			h.ctrl.Send(Cmd(CmdNext))
		}
		<-h.ctrl.Done()

		sub := h.ctrl.Subscribe()
		<-sub.Done
	})
}
