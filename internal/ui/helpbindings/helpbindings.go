// Package helpbindings renders the key binding help box.
package helpbindings

import (
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/lipgloss"

	"github.com/llehouerou/segue/internal/keymap"
	"github.com/llehouerou/segue/internal/ui/styles"
)

// notes spell out what the queue ends do.
var notes = []string{
	"Next on the last track stops playback.",
	"Previous on the first track restarts it.",
}

// Model renders the full key map through bubbles' help view.
type Model struct {
	help help.Model
	keys keymap.HelpMap
}

// New creates a help box over bindings.
func New(bindings []keymap.Binding) Model {
	h := help.New()
	t := styles.T()
	h.Styles.FullKey = lipgloss.NewStyle().Foreground(t.Primary)
	h.Styles.FullDesc = t.S().Base
	h.Styles.FullSeparator = t.S().Subtle
	h.Styles.ShortKey = lipgloss.NewStyle().Foreground(t.Primary)
	h.Styles.ShortDesc = t.S().Muted
	h.Styles.ShortSeparator = t.S().Subtle
	return Model{help: h, keys: keymap.NewHelpMap(bindings)}
}

// View renders the bordered help box, at most width cells wide.
func (m Model) View(width int) string {
	if width < 20 {
		return ""
	}
	h := m.help
	h.Width = width - 4

	var b strings.Builder
	b.WriteString(styles.T().S().Title.Render("Help"))
	b.WriteString("\n\n")
	b.WriteString(h.FullHelpView(m.keys.FullHelp()))
	b.WriteString("\n\n")
	for _, note := range notes {
		b.WriteString(styles.T().S().Muted.Render(note))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(styles.T().S().Subtle.Render("Press ? to close"))

	return styles.Panel().
		BorderForeground(styles.T().Primary).
		Padding(0, 1).
		Render(b.String())
}

// ShortView renders the one-line hint shown under the player bar.
func (m Model) ShortView(width int) string {
	h := m.help
	h.Width = width
	return h.ShortHelpView(m.keys.ShortHelp())
}
