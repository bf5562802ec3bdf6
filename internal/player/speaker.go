package player

import (
	"context"
	"sync"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/effects"
	"github.com/gopxl/beep/v2/speaker"
	"go.uber.org/zap"
)

// DefaultSampleRate is the output rate when none is configured.
const DefaultSampleRate = 44100

// SpeakerOptions configures the sound card backend.
type SpeakerOptions struct {
	SampleRate int
	Volume     float64 // 0..1
	Logger     *zap.Logger
}

// Speaker is the Backend playing through the system sound card with
// gopxl/beep. The output graph is built once:
//
//	effects.Volume -> beep.Ctrl -> gaplessStreamer -> Track
type Speaker struct {
	logger     *zap.Logger
	sampleRate beep.SampleRate

	gapless *gaplessStreamer
	ctrl    *beep.Ctrl
	volume  *effects.Volume

	// guarded by speaker.Lock
	muted bool

	pending  eventQueue
	events   chan Event
	seekChan chan seekRequest
	done     chan struct{}
	wg       sync.WaitGroup

	closeOnce sync.Once
}

// NewSpeaker initialises the sound card and starts the output graph.
func NewSpeaker(opts SpeakerOptions) (*Speaker, error) {
	rate := opts.SampleRate
	if rate <= 0 {
		rate = DefaultSampleRate
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Speaker{
		logger:     logger,
		sampleRate: beep.SampleRate(rate),
		events:     make(chan Event, 4),
		seekChan:   make(chan seekRequest, 1),
		done:       make(chan struct{}),
	}
	s.pending.signal = make(chan struct{}, 1)
	s.gapless = &gaplessStreamer{onEnd: s.onEnd}
	s.ctrl = &beep.Ctrl{Streamer: s.gapless}
	s.volume = &effects.Volume{
		Streamer: s.ctrl,
		Base:     2,
		Volume:   levelToVolume(clampLevel(opts.Volume)),
	}

	if err := speaker.Init(s.sampleRate, s.sampleRate.N(time.Second/10)); err != nil {
		return nil, err
	}
	speaker.Play(s.volume)

	s.wg.Go(s.pumpEvents)
	s.wg.Go(s.seekLoop)

	logger.Info("audio output ready", zap.Int("sample_rate", rate))
	return s, nil
}

// Open decodes and primes path at the speaker rate.
func (s *Speaker) Open(ctx context.Context, path string) (Pipeline, error) {
	t, err := openTrack(ctx, path, s.sampleRate)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("track opened",
		zap.String("path", path),
		zap.String("codec", t.Codec()),
		zap.Int("sample_rate", t.SampleRate()),
		zap.Duration("duration", t.Duration()))
	return t, nil
}

// Play, Enqueue and Stop take the speaker lock so that once they return
// the audio thread and the seek loop no longer see a replaced track, and its
// owner may close it.

func (s *Speaker) Play(p Pipeline) {
	t, ok := p.(*Track)
	if !ok {
		s.logger.Error("foreign pipeline passed to Play", zap.String("path", p.Path()))
		return
	}
	speaker.Lock()
	s.gapless.SetCurrent(t)
	speaker.Unlock()
}

func (s *Speaker) Enqueue(p Pipeline) {
	t, ok := p.(*Track)
	if !ok {
		s.logger.Error("foreign pipeline passed to Enqueue", zap.String("path", p.Path()))
		return
	}
	speaker.Lock()
	s.gapless.SetNext(t)
	speaker.Unlock()
}

func (s *Speaker) Stop() {
	speaker.Lock()
	s.gapless.SetCurrent(nil)
	speaker.Unlock()
}

func (s *Speaker) Events() <-chan Event { return s.events }

// onEnd runs on the audio thread. It only records the event; pumpEvents
// delivers it.
func (s *Speaker) onEnd(ended, next beep.Streamer) {
	ev := Event{Ended: ended.(*Track)} //nolint:forcetypeassert // only Tracks enter the graph
	if next != nil {
		ev.Next = next.(*Track) //nolint:forcetypeassert // only Tracks enter the graph
	}
	s.pending.push(ev)
}

func (s *Speaker) pumpEvents() {
	for {
		select {
		case <-s.pending.signal:
		case <-s.done:
			return
		}
		for _, ev := range s.pending.drain() {
			if err := ev.Ended.(*Track).Err(); err != nil { //nolint:forcetypeassert // see onEnd
				s.logger.Warn("decode error ended track", zap.String("path", ev.Ended.Path()), zap.Error(err))
			}
			select {
			case s.events <- ev:
			case <-s.done:
				return
			}
		}
	}
}

// Close stops output and the background goroutines. Pipelines stay owned by
// their opener.
func (s *Speaker) Close() error {
	s.closeOnce.Do(func() {
		s.gapless.SetCurrent(nil)
		speaker.Clear()
		close(s.done)
		s.wg.Wait()
		speaker.Close()
	})
	return nil
}

// eventQueue hands events from the audio thread to pumpEvents without
// blocking the audio thread and without reordering.
type eventQueue struct {
	mu     sync.Mutex
	items  []Event
	signal chan struct{}
}

func (q *eventQueue) push(ev Event) {
	q.mu.Lock()
	q.items = append(q.items, ev)
	q.mu.Unlock()
	select {
	case q.signal <- struct{}{}:
	default:
	}
}

func (q *eventQueue) drain() []Event {
	q.mu.Lock()
	defer q.mu.Unlock()
	items := q.items
	q.items = nil
	return items
}
