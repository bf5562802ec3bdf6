package app

import (
	tea "github.com/charmbracelet/bubbletea"
)

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		return m, nil

	case tea.KeyMsg:
		if cmd, ok := m.keys.Command(msg.String()); ok {
			m.playback.Send(cmd)
		}
		return m, nil

	case ServiceClosedMsg:
		return m, tea.Quit

	case PlaybackMessage:
		m.refresh()
		return m, m.WatchServiceEvents()
	}

	return m, nil
}
