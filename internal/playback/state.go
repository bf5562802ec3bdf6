package playback

import "fmt"

// Kind is the controller state without its track indices.
type Kind int

const (
	KindIdle Kind = iota
	KindLoading
	KindPlaying
	KindPaused
	KindDraining
	KindStopped
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindIdle:
		return "Idle"
	case KindLoading:
		return "Loading"
	case KindPlaying:
		return "Playing"
	case KindPaused:
		return "Paused"
	case KindDraining:
		return "Draining"
	case KindStopped:
		return "Stopped"
	default:
		return "Unknown"
	}
}

// State is the controller state. Index is the current queue slot (-1 for
// Idle and Stopped); Next is the slot being primed and only meaningful in
// Draining.
type State struct {
	Kind  Kind
	Index int
	Next  int
}

func idle() State             { return State{Kind: KindIdle, Index: -1, Next: -1} }
func stopped() State          { return State{Kind: KindStopped, Index: -1, Next: -1} }
func loading(n int) State     { return State{Kind: KindLoading, Index: n, Next: -1} }
func playing(n int) State     { return State{Kind: KindPlaying, Index: n, Next: -1} }
func paused(n int) State      { return State{Kind: KindPaused, Index: n, Next: -1} }
func draining(n, m int) State { return State{Kind: KindDraining, Index: n, Next: m} }

// String renders the state as e.g. "Loading(2)" or "Draining(1->2)".
func (s State) String() string {
	switch s.Kind {
	case KindIdle, KindStopped:
		return s.Kind.String()
	case KindDraining:
		return fmt.Sprintf("Draining(%d->%d)", s.Index, s.Next)
	default:
		return fmt.Sprintf("%s(%d)", s.Kind, s.Index)
	}
}

// HasTrack reports whether the state refers to a queue slot.
func (s State) HasTrack() bool {
	return s.Index >= 0
}

// IsActive reports whether audio is being produced.
func (s State) IsActive() bool {
	return s.Kind == KindPlaying || s.Kind == KindDraining
}
