// Package headerbar renders the one-line title bar above the queue.
package headerbar

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/llehouerou/segue/internal/playlist"
	"github.com/llehouerou/segue/internal/ui/render"
	"github.com/llehouerou/segue/internal/ui/styles"
)

// Height is the fixed height of the header bar (single line).
const Height = 1

const logo = "segue"

// Info describes the collection being played.
type Info struct {
	Tracks int
	Size   int64 // bytes
	Tier   playlist.Tier
}

// NewInfo summarizes tracks for the header.
func NewInfo(tracks []playlist.OrderedTrack, tier playlist.Tier) Info {
	info := Info{Tracks: len(tracks), Tier: tier}
	for _, t := range tracks {
		info.Size += t.Record.Size
	}
	return info
}

func tierLabel(t playlist.Tier) string {
	switch t {
	case playlist.TierTag:
		return "ordered by track number"
	case playlist.TierFilename:
		return "ordered by file name"
	default:
		return "ordered by creation time"
	}
}

// Summary returns the plain-text right side of the header.
func (i Info) Summary() string {
	noun := "tracks"
	if i.Tracks == 1 {
		noun = "track"
	}
	size := humanize.Bytes(uint64(max(i.Size, 0)))
	return strings.Join([]string{
		fmt.Sprintf("%d %s", i.Tracks, noun),
		size,
		tierLabel(i.Tier),
	}, " · ")
}

// Render returns the header bar string for the given width.
func Render(info Info, width int) string {
	if width < len(logo)+2 {
		return ""
	}

	t := styles.T()
	left := " " + styles.ApplyBoldGradient(logo, t.Primary, t.Secondary)
	avail := width - lipgloss.Width(left) - 2
	if avail < 4 {
		return left
	}

	right := t.S().Muted.Render(render.TruncateEllipsis(info.Summary(), avail)) + " "
	return render.Row(left, right, width)
}
