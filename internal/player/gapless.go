package player

import (
	"sync"

	"github.com/gopxl/beep/v2"
)

var _ beep.Streamer = (*gaplessStreamer)(nil)

// gaplessStreamer plays current and moves to next inside the same Stream
// call, so no buffer boundary separates the two tracks. With nothing to play
// it produces silence, keeping the speaker running between tracks.
type gaplessStreamer struct {
	mu      sync.Mutex
	current beep.Streamer
	next    beep.Streamer
	// onEnd runs on the audio thread with mu held; it must not block.
	onEnd func(ended, next beep.Streamer)
}

// Stream implements beep.Streamer.
func (g *gaplessStreamer) Stream(samples [][2]float64) (n int, ok bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	for n < len(samples) {
		if g.current == nil {
			clear(samples[n:])
			return len(samples), true
		}

		m, ok := g.current.Stream(samples[n:])
		n += m
		if ok {
			if m == 0 {
				// stalled source; pad this buffer and retry next call
				clear(samples[n:])
				return len(samples), true
			}
			continue
		}

		ended := g.current
		g.current, g.next = g.next, nil
		if g.onEnd != nil {
			g.onEnd(ended, g.current)
		}
	}
	return n, true
}

// Err implements beep.Streamer. Source errors end the source instead.
func (g *gaplessStreamer) Err() error { return nil }

// SetCurrent replaces what is playing and drops any queued next.
func (g *gaplessStreamer) SetCurrent(s beep.Streamer) {
	g.mu.Lock()
	g.current = s
	g.next = nil
	g.mu.Unlock()
}

// Current returns the streamer being played.
func (g *gaplessStreamer) Current() beep.Streamer {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.current
}

// SetNext sets the next streamer to transition to.
func (g *gaplessStreamer) SetNext(s beep.Streamer) {
	g.mu.Lock()
	g.next = s
	g.mu.Unlock()
}
