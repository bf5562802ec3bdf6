package player

import (
	"context"
	"sync"
	"time"

	"github.com/gopxl/beep/v2"
)

// Track is the Pipeline produced by the speaker backend.
type Track struct {
	path   string
	codec  string
	format beep.Format
	src    *primedStreamer
	out    beep.Streamer

	closeOnce sync.Once
	closeErr  error
}

var _ beep.Streamer = (*Track)(nil)

// openTrack decodes path and primes it for output at rate.
func openTrack(ctx context.Context, path string, rate beep.SampleRate) (*Track, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	src, format, codec, err := decodeFile(path)
	if err != nil {
		return nil, err
	}

	primed, err := prime(ctx, src, format.SampleRate.N(PrimeWindow))
	if err != nil {
		src.Close()
		return nil, err
	}

	t := &Track{
		path:   path,
		codec:  codec,
		format: format,
		src:    primed,
		out:    primed,
	}
	if rate > 0 && format.SampleRate != rate {
		t.out = beep.Resample(4, format.SampleRate, rate, primed)
	}
	return t, nil
}

func (t *Track) Path() string { return t.path }

// Codec names the decoder, e.g. "FLAC" or "AAC".
func (t *Track) Codec() string { return t.codec }

// SampleRate is the native rate of the file.
func (t *Track) SampleRate() int { return int(t.format.SampleRate) }

func (t *Track) Duration() time.Duration {
	return t.format.SampleRate.D(t.src.Len())
}

func (t *Track) Position() time.Duration {
	return t.format.SampleRate.D(t.src.Position())
}

// Stream implements beep.Streamer.
func (t *Track) Stream(samples [][2]float64) (int, bool) { return t.out.Stream(samples) }

// Err implements beep.Streamer.
func (t *Track) Err() error { return t.src.Err() }

// seek must run with the speaker locked when t is attached to the output.
func (t *Track) seek(pos time.Duration) error {
	n := t.format.SampleRate.N(pos)
	return t.src.Seek(max(0, min(n, t.src.Len())))
}

// Close releases the decoder and file. Later calls return the first result.
func (t *Track) Close() error {
	t.closeOnce.Do(func() {
		t.closeErr = t.src.Close()
	})
	return t.closeErr
}
