package keymap

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
)

// Binding describes a single key binding.
type Binding struct {
	Action      Action
	Keys        []string
	Description string
	Context     string // "global" or "playback"
}

// All contains all key bindings.
var All = []Binding{
	// Global
	{ActionQuit, []string{"q", "ctrl+c"}, "Quit", "global"},
	{ActionHelp, []string{"?"}, "Toggle help", "global"},

	// Playback
	{ActionPlayPause, []string{" "}, "Play/pause", "playback"},
	{ActionNextTrack, []string{"j", "down"}, "Next track", "playback"},
	{ActionPrevTrack, []string{"k", "up"}, "Previous track", "playback"},
	{ActionSeekForward, []string{"l", "right"}, "Seek forward", "playback"},
	{ActionSeekBack, []string{"h", "left"}, "Seek backward", "playback"},
	{ActionToggleMute, []string{"m"}, "Mute/unmute", "playback"},
}

// ByContext returns key bindings filtered by context.
func ByContext(context string) []Binding {
	var result []Binding
	for _, kb := range All {
		if kb.Context == context {
			result = append(result, kb)
		}
	}
	return result
}

// Key converts b for bubbles components such as help.Model.
func (b Binding) Key() key.Binding {
	return key.NewBinding(
		key.WithKeys(b.Keys...),
		key.WithHelp(displayKeys(b.Keys), b.Description),
	)
}

// displayKeys renders key names the way the help screen shows them.
func displayKeys(keys []string) string {
	names := make([]string, len(keys))
	for i, k := range keys {
		switch k {
		case " ":
			names[i] = "space"
		case "up":
			names[i] = "↑"
		case "down":
			names[i] = "↓"
		case "left":
			names[i] = "←"
		case "right":
			names[i] = "→"
		default:
			names[i] = k
		}
	}
	return strings.Join(names, "/")
}

// HelpMap adapts a binding set to bubbles' help.KeyMap.
type HelpMap struct {
	bindings []Binding
}

// NewHelpMap creates a help map over bindings.
func NewHelpMap(bindings []Binding) HelpMap {
	return HelpMap{bindings: bindings}
}

// ShortHelp returns the bindings shown in the one-line footer.
func (h HelpMap) ShortHelp() []key.Binding {
	var out []key.Binding
	for _, b := range h.bindings {
		if b.Action == ActionHelp || b.Action == ActionQuit {
			out = append(out, b.Key())
		}
	}
	return out
}

// FullHelp returns every binding, one column per context.
func (h HelpMap) FullHelp() [][]key.Binding {
	var columns [][]key.Binding
	index := map[string]int{}
	for _, b := range h.bindings {
		i, ok := index[b.Context]
		if !ok {
			i = len(columns)
			index[b.Context] = i
			columns = append(columns, nil)
		}
		columns[i] = append(columns[i], b.Key())
	}
	return columns
}
