package tui

import (
	"net/url"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/softworkday/internal/app"
	"github.com/julianstephens/softworkday/internal/constants"
	"github.com/julianstephens/softworkday/internal/tui/handlers"
	"github.com/julianstephens/softworkday/internal/tui/state"
)

type Model struct {
	state.Model
}

// NewModel builds the TUI over ctrl. query is resolved like the address of
// the detail page, so a notification id opens that message.
func NewModel(ctrl *app.Controller, query url.Values, exportDir string) Model {
	m := Model{Model: state.New(ctrl, query, exportDir)}
	handlers.ResetPrompt(&m.Model)
	return m
}

func (m Model) ShortHelp() []key.Binding {
	st := m.Ctrl.State()
	keys := []key.Binding{m.Keys.Quit, m.Keys.Settings}
	switch {
	case st.View == constants.StateSettings:
		keys = append(keys, m.Keys.Edit, m.Keys.Reset, m.Keys.Home)
	case st.View == constants.StateDetail:
		keys = append(keys, m.Keys.Share, m.Keys.Home)
	case st.HasGenerated:
		keys = append(keys, m.Keys.Regenerate, m.Keys.StartOver, m.Keys.Share, m.Keys.Home)
	}
	return keys
}

func (m Model) FullHelp() [][]key.Binding {
	return [][]key.Binding{m.ShortHelp()}
}

func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		handlers.LoadCmd(m.Ctrl, m.Query),
		m.Spinner.Tick,
		textarea.Blink,
	}
	if m.PromptForm != nil {
		cmds = append(cmds, m.PromptForm.Init())
	}
	return tea.Batch(cmds...)
}
