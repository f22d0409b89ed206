package handlers

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/julianstephens/softworkday/internal/models"
	"github.com/julianstephens/softworkday/internal/tui/state"
)

// HandleEditScheduleState handles the schedule form
func HandleEditScheduleState(m *state.Model, msg tea.Msg) tea.Cmd {
	if msg, ok := msg.(tea.KeyMsg); ok && msg.Type == tea.KeyEsc {
		m.FormError = ""
		m.ScheduleForm = nil
		return nil
	}

	form, cmd := m.ScheduleForm.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.ScheduleForm = f
	}

	switch m.ScheduleForm.State {
	case huh.StateCompleted:
		sched := models.NotificationSchedule{
			Morning: m.ScheduleEdit.Morning,
			Midday:  m.ScheduleEdit.Midday,
			Evening: m.ScheduleEdit.Evening,
		}
		m.ScheduleForm = nil
		return tea.Batch(cmd, SaveScheduleCmd(m.Ctrl, sched))
	case huh.StateAborted:
		m.FormError = ""
		m.ScheduleForm = nil
	}
	return cmd
}

// HandleSettingsKeys handles keys on the schedule overview
func HandleSettingsKeys(m *state.Model, msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.Keys.Edit):
		current := m.ScheduleModel.Schedule()
		m.ScheduleEdit = &state.ScheduleFormModel{
			Morning: current.Morning,
			Midday:  current.Midday,
			Evening: current.Evening,
		}
		m.FormError = ""
		m.Status = ""
		m.ScheduleForm = NewScheduleForm(m.ScheduleEdit)
		return m.ScheduleForm.Init()
	case key.Matches(msg, m.Keys.Reset):
		m.Status = ""
		return ResetScheduleCmd(m.Ctrl)
	}
	return nil
}
