package playlist

// Queue is the resolved play order plus a cursor on the current entry.
// The order is fixed once built; only the cursor moves.
type Queue struct {
	tracks       []OrderedTrack
	currentIndex int // -1 if empty
}

// NewQueue creates a queue positioned on the first track.
func NewQueue(tracks []OrderedTrack) *Queue {
	q := &Queue{
		tracks:       make([]OrderedTrack, len(tracks)),
		currentIndex: -1,
	}
	copy(q.tracks, tracks)
	if len(q.tracks) > 0 {
		q.currentIndex = 0
	}
	return q
}

// Current returns the track under the cursor, or nil if the queue is empty.
func (q *Queue) Current() *OrderedTrack {
	return q.Track(q.currentIndex)
}

// CurrentIndex returns the cursor position (-1 if empty).
func (q *Queue) CurrentIndex() int {
	return q.currentIndex
}

// Track returns the entry at index, or nil if out of bounds.
func (q *Queue) Track(index int) *OrderedTrack {
	if index < 0 || index >= len(q.tracks) {
		return nil
	}
	return &q.tracks[index]
}

// Peek returns the entry after the cursor without moving it.
func (q *Queue) Peek() *OrderedTrack {
	if !q.HasNext() {
		return nil
	}
	return q.Track(q.currentIndex + 1)
}

// HasNext returns true if there's a track after the current one.
func (q *Queue) HasNext() bool {
	return q.currentIndex >= 0 && q.currentIndex < len(q.tracks)-1
}

// HasPrev returns true if there's a track before the current one.
func (q *Queue) HasPrev() bool {
	return q.currentIndex > 0
}

// Advance moves to the next track. At the last entry it returns false and
// the cursor stays put; the queue never wraps.
func (q *Queue) Advance() (*OrderedTrack, bool) {
	if !q.HasNext() {
		return nil, false
	}
	q.currentIndex++
	return q.Current(), true
}

// Retreat moves to the previous track, staying on the first one.
func (q *Queue) Retreat() *OrderedTrack {
	if q.HasPrev() {
		q.currentIndex--
	}
	return q.Current()
}

// Tracks returns a copy of all entries.
func (q *Queue) Tracks() []OrderedTrack {
	result := make([]OrderedTrack, len(q.tracks))
	copy(result, q.tracks)
	return result
}

// Len returns the number of tracks in the queue.
func (q *Queue) Len() int {
	return len(q.tracks)
}

// IsEmpty returns true if the queue has no tracks.
func (q *Queue) IsEmpty() bool {
	return len(q.tracks) == 0
}
