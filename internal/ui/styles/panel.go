package styles

import "github.com/charmbracelet/lipgloss"

// Panel returns the bordered style shared by the queue and player bar.
func Panel() lipgloss.Style {
	return lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(T().Border)
}

// PanelOverhead is the horizontal and vertical space a Panel border takes.
const PanelOverhead = 2
