package handlers

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/julianstephens/softworkday/internal/tui/state"
)

// HandlePromptState drives the mood and context form until it is submitted
func HandlePromptState(m *state.Model, msg tea.Msg) tea.Cmd {
	if m.PromptForm == nil {
		return ResetPrompt(m)
	}
	if m.Ctrl.State().Loading {
		return nil
	}

	form, cmd := m.PromptForm.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.PromptForm = f
	}

	switch m.PromptForm.State {
	case huh.StateCompleted:
		m.Ctrl.SetMood(m.Prompt.Mood)
		m.Ctrl.SetContext(m.Prompt.Context)
		m.PromptForm = nil
		return tea.Batch(cmd, GenerateCmd(m.Ctrl, false))
	case huh.StateAborted:
		return ResetPrompt(m)
	}
	return cmd
}

// HandleReflection forwards input to the reflection box and schedules a
// save whenever its text changes
func HandleReflection(m *state.Model, msg tea.Msg) tea.Cmd {
	before := m.Reflection.Value()
	var cmd tea.Cmd
	m.Reflection, cmd = m.Reflection.Update(msg)
	if after := m.Reflection.Value(); after != before {
		m.Ctrl.SetReflection(after)
	}
	return cmd
}
