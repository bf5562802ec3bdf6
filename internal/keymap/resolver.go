package keymap

import (
	"time"

	"github.com/llehouerou/segue/internal/playback"
)

// Resolver maps key strings to actions.
type Resolver struct {
	bindings map[string]Action   // key -> action
	byAction map[Action][]string // action -> keys (for help/documentation)
	seekStep time.Duration
}

// NewResolver creates a resolver from bindings. seekStep is the offset of
// the seek actions.
func NewResolver(bindings []Binding, seekStep time.Duration) *Resolver {
	r := &Resolver{
		bindings: make(map[string]Action),
		byAction: make(map[Action][]string),
		seekStep: seekStep,
	}
	for _, b := range bindings {
		for _, key := range b.Keys {
			r.bindings[key] = b.Action
		}
		r.byAction[b.Action] = append(r.byAction[b.Action], b.Keys...)
	}
	// Deduplicate keys per action
	for action, keys := range r.byAction {
		r.byAction[action] = dedupe(keys)
	}
	return r
}

// Resolve returns the action for a key, or empty string if not bound.
func (r *Resolver) Resolve(key string) Action {
	return r.bindings[key]
}

// KeysFor returns the keys bound to an action (for help/documentation).
func (r *Resolver) KeysFor(action Action) []string {
	return r.byAction[action]
}

// Command returns the playback command for a key. Unbound keys return
// false.
func (r *Resolver) Command(key string) (playback.Command, bool) {
	switch r.Resolve(key) {
	case ActionQuit:
		return playback.Cmd(playback.CmdQuit), true
	case ActionHelp:
		return playback.Cmd(playback.CmdToggleHelp), true
	case ActionPlayPause:
		return playback.Cmd(playback.CmdTogglePause), true
	case ActionNextTrack:
		return playback.Cmd(playback.CmdNext), true
	case ActionPrevTrack:
		return playback.Cmd(playback.CmdPrevious), true
	case ActionSeekForward:
		return playback.Seek(r.seekStep), true
	case ActionSeekBack:
		return playback.Seek(-r.seekStep), true
	case ActionToggleMute:
		return playback.Cmd(playback.CmdToggleMute), true
	default:
		return playback.Command{}, false
	}
}

// dedupe removes duplicate strings from a slice.
func dedupe(s []string) []string {
	seen := make(map[string]bool)
	result := make([]string, 0, len(s))
	for _, v := range s {
		if !seen[v] {
			seen[v] = true
			result = append(result, v)
		}
	}
	return result
}
