package player

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/gopxl/beep/v2"
)

// PrimeWindow is how much audio Open decodes before handing a track over,
// so the first buffer is ready the instant the previous track ends.
const PrimeWindow = 250 * time.Millisecond

// primeChunk bounds each decode call while priming so cancellation is
// checked regularly.
const primeChunk = 1024

// primedStreamer serves a pre-decoded head before reading through to src.
type primedStreamer struct {
	src  beep.StreamSeekCloser
	head [][2]float64
	pos  atomic.Int64 // source samples delivered downstream
}

// prime decodes up to n samples of src ahead of playback.
func prime(ctx context.Context, src beep.StreamSeekCloser, n int) (*primedStreamer, error) {
	p := &primedStreamer{src: src, head: make([][2]float64, 0, n)}
	p.pos.Store(int64(src.Position()))

	buf := make([][2]float64, primeChunk)
	for len(p.head) < n {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		got, ok := src.Stream(buf[:min(primeChunk, n-len(p.head))])
		p.head = append(p.head, buf[:got]...)
		if !ok {
			break
		}
	}
	if len(p.head) == 0 {
		if err := src.Err(); err != nil {
			return nil, err
		}
	}
	return p, nil
}

func (p *primedStreamer) Stream(samples [][2]float64) (n int, ok bool) {
	if len(p.head) > 0 {
		n = copy(samples, p.head)
		p.head = p.head[n:]
	}
	if n < len(samples) {
		m, _ := p.src.Stream(samples[n:])
		n += m
	}
	p.pos.Add(int64(n))
	return n, n > 0
}

func (p *primedStreamer) Err() error { return p.src.Err() }

func (p *primedStreamer) Len() int { return p.src.Len() }

// Position is safe to call from any goroutine.
func (p *primedStreamer) Position() int { return int(p.pos.Load()) }

func (p *primedStreamer) Seek(pos int) error {
	p.head = nil
	if err := p.src.Seek(pos); err != nil {
		return err
	}
	p.pos.Store(int64(pos))
	return nil
}

func (p *primedStreamer) Close() error { return p.src.Close() }
