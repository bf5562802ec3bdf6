// Package player decodes audio files and drives the sound card.
package player

import (
	"context"
	"time"
)

// Pipeline is one opened, primed track. The caller that opened it owns it
// and must close it exactly once.
type Pipeline interface {
	Path() string
	Duration() time.Duration
	Position() time.Duration
	Close() error
}

// Event reports that Ended ran out of samples. A non-nil Next means output
// already moved to Next without a gap.
type Event struct {
	Ended Pipeline
	Next  Pipeline
}

// Backend is the audio output the playback controller drives.
type Backend interface {
	// Open decodes and primes path. It may block; ctx cancels it.
	Open(ctx context.Context, path string) (Pipeline, error)
	// Play makes p the current output, dropping anything queued.
	Play(p Pipeline)
	// Enqueue arms p to follow the current pipeline seamlessly.
	Enqueue(p Pipeline)
	// Stop detaches every pipeline from the output.
	Stop()
	SetPaused(paused bool)
	SetMuted(muted bool)
	// Seek moves p to an absolute position. It returns immediately.
	Seek(p Pipeline, pos time.Duration)
	Events() <-chan Event
	Close() error
}

// Verify implementations at compile time.
var (
	_ Backend = (*Speaker)(nil)
	_ Backend = (*Mock)(nil)
)
