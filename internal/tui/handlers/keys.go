package handlers

import (
	"context"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/softworkday/internal/constants"
	"github.com/julianstephens/softworkday/internal/logger"
	"github.com/julianstephens/softworkday/internal/tui/state"
)

// HandleGlobalKeys handles key presses that work in every view
func HandleGlobalKeys(m *state.Model, msg tea.KeyMsg) (bool, tea.Cmd) {
	if m.Alert != "" {
		if key.Matches(msg, m.Keys.Dismiss) {
			m.Alert = ""
		}
		return true, nil
	}

	st := m.Ctrl.State()
	switch {
	case key.Matches(msg, m.Keys.Quit):
		if err := m.Ctrl.Flush(context.Background()); err != nil {
			logger.Warn("Reflection not saved on exit", "error", err)
		}
		m.Quitting = true
		return true, tea.Quit
	case m.EditingSchedule():
		// The open form owns every other key.
		return false, nil
	case key.Matches(msg, m.Keys.Settings):
		m.Status = ""
		if m.Ctrl.ToggleSettings() == constants.StateSettings {
			return true, LoadScheduleCmd(m.Ctrl)
		}
		return true, ResetPrompt(m)
	case key.Matches(msg, m.Keys.Home):
		if st.View == constants.StateMain && !st.HasGenerated {
			return true, nil
		}
		m.Status = ""
		m.Ctrl.Home(context.Background())
		m.Sync()
		return true, ResetPrompt(m)
	case st.Loading:
		// Ignore actions until the current generation lands.
		return false, nil
	case key.Matches(msg, m.Keys.Regenerate) && st.HasGenerated && st.View == constants.StateMain:
		m.Status = ""
		return true, GenerateCmd(m.Ctrl, true)
	case key.Matches(msg, m.Keys.StartOver) && st.HasGenerated && st.View == constants.StateMain:
		m.Status = ""
		m.Ctrl.StartOver()
		return true, ResetPrompt(m)
	case key.Matches(msg, m.Keys.Share) && st.HasGenerated && st.View != constants.StateSettings:
		return true, ShareCmd(m.Ctrl, m.ExportDir)
	}
	return false, nil
}
