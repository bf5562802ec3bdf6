// Package playback sequences the tracks of a queue through a player backend
// with no gap between them.
package playback

import (
	"context"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/llehouerou/segue/internal/player"
	"github.com/llehouerou/segue/internal/playlist"
)

const (
	// DefaultLookahead is how long before the end of a track the next one
	// starts opening.
	DefaultLookahead = 2 * time.Second
	// DefaultPollInterval is the period of position updates and drain checks.
	DefaultPollInterval = 100 * time.Millisecond

	commandBufferSize = 32
)

// Options configure a Controller. Zero values select the defaults.
type Options struct {
	Lookahead    time.Duration
	PollInterval time.Duration
	Logger       *zap.Logger
}

// Controller runs the playback state machine. Run owns the session; every
// other method is safe to call from any goroutine.
type Controller struct {
	backend      player.Backend
	logger       *zap.Logger
	lookahead    time.Duration
	pollInterval time.Duration
	tracks       []playlist.OrderedTrack

	cmds    chan Command
	results chan openResult
	done    chan struct{}
	running atomic.Bool

	// owned by Run
	session   Session
	current   player.Pipeline
	load      *pendingOpen
	drain     *drain
	queued    []Command
	played    bool // some slot reached Playing
	err       error
	token     uint64
	opens     sync.WaitGroup
	published Snapshot

	mu     sync.Mutex
	snap   Snapshot
	subs   []*Subscription
	closed bool
}

// pendingOpen is a backend Open running on its own goroutine.
type pendingOpen struct {
	token  uint64
	index  int
	cancel context.CancelFunc
}

type openResult struct {
	token    uint64
	index    int
	pipeline player.Pipeline
	err      error
}

// drain follows the slot after the current one while the current one plays
// out.
type drain struct {
	index  int
	open   *pendingOpen    // nil once the open has settled
	next   player.Pipeline // armed on the backend
	failed bool
}

// New creates a controller for queue. The controller does not close backend.
func New(backend player.Backend, queue *playlist.Queue, opts Options) *Controller {
	if opts.Lookahead <= 0 {
		opts.Lookahead = DefaultLookahead
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = DefaultPollInterval
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	c := &Controller{
		backend:      backend,
		logger:       opts.Logger,
		lookahead:    opts.Lookahead,
		pollInterval: opts.PollInterval,
		tracks:       queue.Tracks(),
		cmds:         make(chan Command, commandBufferSize),
		results:      make(chan openResult),
		done:         make(chan struct{}),
		session:      Session{Queue: queue, State: idle()},
	}
	c.published = c.session.snapshot()
	c.snap = c.published
	return c
}

// Run drives the session until the queue is exhausted, a quit command
// arrives or ctx is done. It returns ErrNothingPlayable when the queue ran
// out without a single track opening. Every pipeline opened during the run, including
// ones still opening when it ends, is closed before Run returns.
func (c *Controller) Run(ctx context.Context) error {
	if !c.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer c.finish()

	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()

	c.start(ctx)
	c.publish()
	for c.session.State.Kind != KindStopped {
		select {
		case <-ctx.Done():
			c.stop("context done")
		case cmd := <-c.cmds:
			c.onCommand(ctx, cmd)
		case ev := <-c.backend.Events():
			c.onEnded(ctx, ev)
		case r := <-c.results:
			c.onOpened(ctx, r)
		case <-ticker.C:
			c.onTick(ctx)
		}
		c.publish()
	}
	return c.err
}

// finish waits for opens still in flight and closes what they produce.
func (c *Controller) finish() {
	go func() {
		c.opens.Wait()
		close(c.results)
	}()
	for r := range c.results {
		c.release(r.pipeline)
	}

	c.mu.Lock()
	c.closed = true
	for _, sub := range c.subs {
		sub.close()
	}
	c.subs = nil
	c.mu.Unlock()

	close(c.done)
}

// Send queues a command for the loop. It returns immediately once the
// controller has stopped.
func (c *Controller) Send(cmd Command) {
	select {
	case c.cmds <- cmd:
	case <-c.done:
	}
}

// Snapshot returns a copy of the session as of the last handled event.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snap
}

// Tracks returns the queue in play order.
func (c *Controller) Tracks() []playlist.OrderedTrack {
	return slices.Clone(c.tracks)
}

// Done is closed when Run has returned.
func (c *Controller) Done() <-chan struct{} {
	return c.done
}

// Subscribe creates a new event subscription. Its Done channel closes when
// Run returns.
func (c *Controller) Subscribe() *Subscription {
	c.mu.Lock()
	defer c.mu.Unlock()
	sub := newSubscription()
	if c.closed {
		sub.close()
		return sub
	}
	c.subs = append(c.subs, sub)
	return sub
}

// publish stores the session snapshot and notifies subscribers of what
// changed since the previous one.
func (c *Controller) publish() {
	snap := c.session.snapshot()
	prev := c.published
	c.published = snap

	c.mu.Lock()
	defer c.mu.Unlock()
	c.snap = snap
	for _, sub := range c.subs {
		if snap.State != prev.State {
			sub.sendState(StateChange{Previous: prev.State, Current: snap.State})
		}
		if snap.State.Index != prev.State.Index && snap.State.HasTrack() {
			sub.sendTrack(TrackChange{
				PreviousIndex: prev.State.Index,
				Index:         snap.State.Index,
				Track:         snap.Track,
			})
		}
		if snap.Muted != prev.Muted || snap.ShowHelp != prev.ShowHelp {
			sub.sendMode(ModeChange{Muted: snap.Muted, ShowHelp: snap.ShowHelp})
		}
		if snap.Position != prev.Position || snap.Duration != prev.Duration {
			sub.sendPosition(snap.Position, snap.Duration)
		}
	}
}

// open starts opening slot index in the background.
func (c *Controller) open(ctx context.Context, index int) *pendingOpen {
	c.token++
	octx, cancel := context.WithCancel(ctx)
	po := &pendingOpen{token: c.token, index: index, cancel: cancel}
	path := c.tracks[index].Record.Path

	c.opens.Go(func() {
		p, err := c.backend.Open(octx, path)
		c.results <- openResult{token: po.token, index: index, pipeline: p, err: err}
	})
	return po
}

// release closes p, if any.
func (c *Controller) release(p player.Pipeline) {
	if p == nil {
		return
	}
	if err := p.Close(); err != nil {
		c.logger.Warn("close pipeline", zap.String("path", p.Path()), zap.Error(err))
	}
}

// releaseAll detaches and closes every pipeline and cancels opens in flight.
// Results of cancelled opens are closed when they arrive.
func (c *Controller) releaseAll() {
	c.backend.Stop()
	if c.load != nil {
		c.load.cancel()
		c.load = nil
	}
	if c.drain != nil {
		if c.drain.open != nil {
			c.drain.open.cancel()
		}
		c.release(c.drain.next)
		c.drain = nil
	}
	c.release(c.current)
	c.current = nil
}

func (c *Controller) setState(s State) {
	prev := c.session.State
	c.session.State = s
	if prev != s {
		c.logger.Debug("playback state",
			zap.Stringer("from", prev),
			zap.Stringer("to", s))
	}
}
