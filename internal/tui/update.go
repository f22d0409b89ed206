package tui

import (
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/softworkday/internal/constants"
	"github.com/julianstephens/softworkday/internal/tui/handlers"
)

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		m.Help.Width = msg.Width
		m.MessageModel.SetWidth(msg.Width)
		width := msg.Width - 8
		if width > 80 {
			width = 80
		}
		if width > 20 {
			m.Reflection.SetWidth(width)
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.Spinner, cmd = m.Spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if handled, cmd := handlers.HandleGlobalKeys(&m.Model, msg); handled {
			return m, cmd
		}
	}

	if handled, cmd := handlers.HandleAsyncMessages(&m.Model, msg); handled {
		return m, cmd
	}

	st := m.Ctrl.State()
	switch st.View {
	case constants.StateSettings:
		if m.EditingSchedule() {
			return m, handlers.HandleEditScheduleState(&m.Model, msg)
		}
		if msg, ok := msg.(tea.KeyMsg); ok {
			return m, handlers.HandleSettingsKeys(&m.Model, msg)
		}
	case constants.StateDetail:
		return m, handlers.HandleReflection(&m.Model, msg)
	default:
		if st.HasGenerated {
			return m, handlers.HandleReflection(&m.Model, msg)
		}
		return m, handlers.HandlePromptState(&m.Model, msg)
	}
	return m, nil
}
