package player

import (
	"context"
	"sync"
	"time"
)

// MockPipeline is the Pipeline handed out by Mock.
type MockPipeline struct {
	path     string
	duration time.Duration

	mu       sync.Mutex
	position time.Duration
	closes   int
}

func (p *MockPipeline) Path() string            { return p.path }
func (p *MockPipeline) Duration() time.Duration { return p.duration }

func (p *MockPipeline) Position() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.position
}

// SetPosition moves the simulated playhead.
func (p *MockPipeline) SetPosition(d time.Duration) {
	p.mu.Lock()
	p.position = d
	p.mu.Unlock()
}

func (p *MockPipeline) Close() error {
	p.mu.Lock()
	p.closes++
	p.mu.Unlock()
	return nil
}

// Closes returns how many times Close was called.
func (p *MockPipeline) Closes() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closes
}

// SeekCall records one Seek request.
type SeekCall struct {
	Path string
	Pos  time.Duration
}

// Mock is a test double for Backend. Output is simulated: tests end tracks
// with Finish and inspect what the controller asked for.
type Mock struct {
	mu        sync.Mutex
	duration  time.Duration
	durations map[string]time.Duration
	openErrs  map[string]error
	onceErrs  map[string]error
	gates     map[string]chan struct{}
	opened    []*MockPipeline
	opens     []string
	current   *MockPipeline
	next      *MockPipeline
	paused    bool
	muted     bool
	seeks     []SeekCall
	closed    bool
	events    chan Event
}

// NewMock creates a mock backend whose tracks last one minute by default.
func NewMock() *Mock {
	return &Mock{
		duration:  time.Minute,
		durations: make(map[string]time.Duration),
		openErrs:  make(map[string]error),
		onceErrs:  make(map[string]error),
		gates:     make(map[string]chan struct{}),
		events:    make(chan Event, 16),
	}
}

func (m *Mock) Open(ctx context.Context, path string) (Pipeline, error) {
	m.mu.Lock()
	m.opens = append(m.opens, path)
	gate := m.gates[path]
	err := m.openErrs[path]
	if onceErr, ok := m.onceErrs[path]; ok && err == nil {
		err = onceErr
		delete(m.onceErrs, path)
	}
	m.mu.Unlock()

	if gate != nil {
		// ignores ctx: the decoder finishes even when nobody wants it
		<-gate
	} else if cerr := ctx.Err(); cerr != nil {
		return nil, cerr
	}
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.durations[path]
	if !ok {
		d = m.duration
	}
	p := &MockPipeline{path: path, duration: d}
	m.opened = append(m.opened, p)
	return p, nil
}

func (m *Mock) Play(p Pipeline) {
	m.mu.Lock()
	m.current, _ = p.(*MockPipeline)
	m.next = nil
	m.mu.Unlock()
}

func (m *Mock) Enqueue(p Pipeline) {
	m.mu.Lock()
	m.next, _ = p.(*MockPipeline)
	m.mu.Unlock()
}

func (m *Mock) Stop() {
	m.mu.Lock()
	m.current = nil
	m.next = nil
	m.mu.Unlock()
}

func (m *Mock) SetPaused(paused bool) {
	m.mu.Lock()
	m.paused = paused
	m.mu.Unlock()
}

func (m *Mock) SetMuted(muted bool) {
	m.mu.Lock()
	m.muted = muted
	m.mu.Unlock()
}

func (m *Mock) Seek(p Pipeline, pos time.Duration) {
	m.mu.Lock()
	m.seeks = append(m.seeks, SeekCall{Path: p.Path(), Pos: pos})
	m.mu.Unlock()
	if mp, ok := p.(*MockPipeline); ok {
		mp.SetPosition(pos)
	}
}

func (m *Mock) Events() <-chan Event { return m.events }

func (m *Mock) Close() error {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()
	return nil
}

// Test helpers

// SetDuration sets the duration of tracks opened from path.
func (m *Mock) SetDuration(path string, d time.Duration) {
	m.mu.Lock()
	m.durations[path] = d
	m.mu.Unlock()
}

// FailOpen makes every Open of path return err.
func (m *Mock) FailOpen(path string, err error) {
	m.mu.Lock()
	m.openErrs[path] = err
	m.mu.Unlock()
}

// FailOpenOnce makes the next Open of path return err.
func (m *Mock) FailOpenOnce(path string, err error) {
	m.mu.Lock()
	m.onceErrs[path] = err
	m.mu.Unlock()
}

// BlockOpen makes Open of path wait until the returned release is called.
func (m *Mock) BlockOpen(path string) (release func()) {
	gate := make(chan struct{})
	m.mu.Lock()
	m.gates[path] = gate
	m.mu.Unlock()
	var once sync.Once
	return func() { once.Do(func() { close(gate) }) }
}

// Finish simulates the current pipeline running out of samples. Returns
// false if nothing is playing.
func (m *Mock) Finish() bool {
	m.mu.Lock()
	if m.current == nil {
		m.mu.Unlock()
		return false
	}
	ev := Event{Ended: m.current}
	if m.next != nil {
		ev.Next = m.next
	}
	m.current, m.next = m.next, nil
	m.mu.Unlock()

	m.events <- ev
	return true
}

// Opens returns every path passed to Open, in call order.
func (m *Mock) Opens() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.opens...)
}

// Opened returns every pipeline Open produced.
func (m *Mock) Opened() []*MockPipeline {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*MockPipeline(nil), m.opened...)
}

// Current returns the pipeline being played, or nil.
func (m *Mock) Current() *MockPipeline {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

// Next returns the armed pipeline, or nil.
func (m *Mock) Next() *MockPipeline {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.next
}

func (m *Mock) Paused() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.paused
}

func (m *Mock) Muted() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.muted
}

func (m *Mock) Seeks() []SeekCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]SeekCall(nil), m.seeks...)
}

func (m *Mock) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}
