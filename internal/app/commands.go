package app

import tea "github.com/charmbracelet/bubbletea"

// WatchServiceEvents returns a command that waits for the next controller
// event. It listens on all subscription channels and converts events to
// tea.Msg.
func (m Model) WatchServiceEvents() tea.Cmd {
	if m.sub == nil {
		return nil
	}
	sub := m.sub
	return func() tea.Msg {
		select {
		case e := <-sub.StateChanged:
			return ServiceStateChangedMsg{Previous: e.Previous, Current: e.Current}
		case e := <-sub.TrackChanged:
			return ServiceTrackChangedMsg{PreviousIndex: e.PreviousIndex, CurrentIndex: e.Index}
		case <-sub.PositionChanged:
			return ServicePositionChangedMsg{}
		case <-sub.ModeChanged:
			return ServiceModeChangedMsg{}
		case <-sub.Done:
			return ServiceClosedMsg{}
		}
	}
}
