package playback

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/llehouerou/segue/internal/player"
)

// The transition table. Each handler below covers one class of input and
// switches on the current state; nothing outside this file changes
// session.State.

// start leaves Idle.
func (c *Controller) start(ctx context.Context) {
	if c.session.Queue.IsEmpty() {
		c.stop("empty queue")
		return
	}
	c.beginLoad(ctx)
}

// onCommand applies a user command. Commands that arrive while a track is
// loading wait for it to be ready, except quit.
func (c *Controller) onCommand(ctx context.Context, cmd Command) {
	c.logger.Debug("command", zap.Stringer("cmd", cmd), zap.Stringer("state", c.session.State))

	if cmd.Kind == CmdQuit {
		c.stop("quit")
		return
	}

	st := c.session.State
	switch st.Kind {
	case KindIdle, KindLoading:
		c.queued = append(c.queued, cmd)
		return
	case KindStopped:
		return
	}

	switch cmd.Kind {
	case CmdNext:
		c.advance(ctx, "skipped past end of queue")
	case CmdPrevious:
		// on the first slot this restarts it
		c.session.Queue.Retreat()
		c.beginLoad(ctx)
	case CmdSeek:
		c.seek(c.session.Position + cmd.Delta)
	case CmdSeekTo:
		c.seek(cmd.Position)
	case CmdTogglePause:
		if st.Kind == KindPaused {
			c.resume()
		} else {
			c.pause()
		}
	case CmdPause:
		c.pause()
	case CmdResume:
		c.resume()
	case CmdToggleMute:
		c.session.Muted = !c.session.Muted
		c.backend.SetMuted(c.session.Muted)
	case CmdToggleHelp:
		c.session.ShowHelp = !c.session.ShowHelp
	}
}

// onOpened routes the result of a background open.
func (c *Controller) onOpened(ctx context.Context, r openResult) {
	switch {
	case c.load != nil && r.token == c.load.token:
		c.load.cancel()
		c.load = nil
		c.onLoaded(ctx, r)
	case c.drain != nil && c.drain.open != nil && r.token == c.drain.open.token:
		c.drain.open.cancel()
		c.drain.open = nil
		c.onPrimed(r)
	default:
		// superseded by a skip
		c.release(r.pipeline)
	}
}

// onLoaded handles Loading(n) becoming ready or failing.
func (c *Controller) onLoaded(ctx context.Context, r openResult) {
	n := c.session.State.Index
	if r.err != nil {
		c.release(r.pipeline)
		c.logOpenError(r)
		// an unplayable slot behaves as if it had ended
		c.advance(ctx, "end of queue")
		return
	}

	c.played = true
	c.current = r.pipeline
	c.backend.Play(r.pipeline)
	c.session.Duration = r.pipeline.Duration()
	c.session.Position = 0
	c.setState(playing(n))

	queued := c.queued
	c.queued = nil
	for _, cmd := range queued {
		if c.session.State.Kind == KindStopped {
			return
		}
		c.onCommand(ctx, cmd)
	}
}

// onPrimed arms the next slot while Draining, or remembers that it failed.
func (c *Controller) onPrimed(r openResult) {
	if r.err != nil {
		c.release(r.pipeline)
		c.logOpenError(r)
		c.drain.failed = true
		return
	}
	c.drain.next = r.pipeline
	c.backend.Enqueue(r.pipeline)
	c.logger.Debug("next track armed", zap.String("path", r.pipeline.Path()))
}

// onEnded handles the backend running out of samples for a pipeline.
func (c *Controller) onEnded(ctx context.Context, ev player.Event) {
	if c.current == nil || ev.Ended != c.current {
		// already released by a skip
		return
	}
	ended := c.current
	c.current = nil
	d := c.drain
	c.drain = nil
	c.release(ended)

	switch {
	case d != nil && d.next != nil:
		if ev.Next != d.next {
			// armed after the audio thread had already moved on
			c.backend.Play(d.next)
		}
		c.current = d.next
		c.session.Queue.Advance()
		c.session.Duration = d.next.Duration()
		c.session.Position = d.next.Position()
		if c.session.State.Kind == KindPaused {
			c.setState(paused(d.index))
		} else {
			c.setState(playing(d.index))
		}
	case d != nil && d.open != nil:
		// priming still running: wait for that same open
		c.unpause()
		c.session.Queue.Advance()
		c.session.Position, c.session.Duration = 0, 0
		c.load = d.open
		c.setState(loading(d.index))
	default:
		// never primed, or priming failed: open it again
		c.advance(ctx, "end of queue")
	}
}

// onTick refreshes the position and starts priming once the current track
// is within the lookahead of its end.
func (c *Controller) onTick(ctx context.Context) {
	if c.current == nil {
		return
	}
	c.session.Position = c.current.Position()

	st := c.session.State
	if st.Kind != KindPlaying || c.drain != nil {
		return
	}
	next := c.session.Queue.Peek()
	if next == nil || c.session.Duration <= 0 {
		return
	}
	if c.session.Duration-c.session.Position < c.lookahead {
		m := next.SequenceIndex
		c.drain = &drain{index: m, open: c.open(ctx, m)}
		c.setState(draining(st.Index, m))
	}
}

// advance moves the cursor past the current slot and loads the next one.
// On the last slot the session stops; if no slot ever opened, Run reports
// ErrNothingPlayable.
func (c *Controller) advance(ctx context.Context, reason string) {
	if _, ok := c.session.Queue.Advance(); !ok {
		if !c.played {
			c.err = ErrNothingPlayable
			reason = "no playable track"
		}
		c.stop(reason)
		return
	}
	c.beginLoad(ctx)
}

// beginLoad releases everything held and enters Loading on the slot under
// the queue cursor.
func (c *Controller) beginLoad(ctx context.Context) {
	n := c.session.Queue.CurrentIndex()
	c.releaseAll()
	c.unpause()
	c.session.Position, c.session.Duration = 0, 0
	c.setState(loading(n))
	c.load = c.open(ctx, n)
}

// stop enters Stopped, releasing every pipeline.
func (c *Controller) stop(reason string) {
	c.releaseAll()
	c.unpause()
	c.queued = nil
	c.session.Position = 0
	c.setState(stopped())
	c.logger.Info("playback stopped", zap.String("reason", reason))
}

func (c *Controller) seek(pos time.Duration) {
	pos = max(0, min(pos, c.session.Duration))
	c.backend.Seek(c.current, pos)
	c.session.Position = pos
}

func (c *Controller) pause() {
	st := c.session.State
	if st.Kind != KindPlaying && st.Kind != KindDraining {
		return
	}
	c.backend.SetPaused(true)
	c.setState(paused(st.Index))
}

func (c *Controller) resume() {
	st := c.session.State
	if st.Kind != KindPaused {
		return
	}
	c.backend.SetPaused(false)
	if c.drain != nil {
		c.setState(draining(st.Index, c.drain.index))
	} else {
		c.setState(playing(st.Index))
	}
}

// unpause clears a user pause before output moves to another track.
func (c *Controller) unpause() {
	if c.session.State.Kind == KindPaused {
		c.backend.SetPaused(false)
	}
}

func (c *Controller) logOpenError(r openResult) {
	err := &BackendOpenError{Path: c.tracks[r.index].Record.Path, Err: r.err}
	c.logger.Warn("skipping unplayable track", zap.Int("index", r.index), zap.Error(err))
}
