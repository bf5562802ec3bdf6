package app

import (
	"strings"

	"github.com/llehouerou/segue/internal/ui/headerbar"
	"github.com/llehouerou/segue/internal/ui/overlay"
	"github.com/llehouerou/segue/internal/ui/playerbar"
	"github.com/llehouerou/segue/internal/ui/render"
)

const (
	hintHeight   = 1
	maxHelpWidth = 72
)

// queueHeight is what remains for the queue panel.
func (m Model) queueHeight() int {
	return max(m.height-headerbar.Height-playerbar.Height-hintHeight, 0)
}

func (m *Model) resize() {
	m.queue.SetSize(m.width, m.queueHeight())
}

// View implements tea.Model.
func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}

	sections := []string{headerbar.Render(m.header, m.width)}
	if q := m.queue.View(); q != "" {
		sections = append(sections, q)
	}

	bar := playerbar.Render(playerbar.NewState(m.snap), m.width)
	if bar == "" {
		bar = strings.TrimSuffix(strings.Repeat(render.EmptyLine(m.width)+"\n", playerbar.Height), "\n")
	}
	sections = append(sections, bar, " "+m.help.ShortView(m.width-1))

	view := strings.Join(sections, "\n")

	if m.snap.ShowHelp {
		box := m.help.View(min(m.width-4, maxHelpWidth))
		view = overlay.Center(view, box, m.width, m.height)
	}
	return view
}
