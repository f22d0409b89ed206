package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/softworkday/internal/app"
	"github.com/julianstephens/softworkday/internal/constants"
)

func (m Model) View() string {
	if m.Quitting {
		return ""
	}
	if m.Alert != "" {
		return m.viewAlert()
	}

	st := m.Ctrl.State()
	var content string
	switch {
	case st.View == constants.StateSettings:
		content = m.viewSettings()
	case st.Loading:
		content = docStyle.Render(m.Spinner.View() + " Finding a perspective...")
	case st.View == constants.StateDetail, st.HasGenerated:
		content = m.viewMessage(st)
	default:
		content = m.viewPrompt(st)
	}

	var status string
	if m.Status != "" {
		status = statusStyle.Render(m.Status)
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		m.viewHeader(st),
		content,
		status,
		m.Help.View(m),
		footerStyle.Render(constants.Wordmark+" • "+constants.Tagline),
	)
}

func (m Model) viewHeader(st app.State) string {
	return lipgloss.JoinHorizontal(lipgloss.Top,
		brandStyle.Render(constants.Wordmark),
		viewLabelStyle.Render(st.View.String()),
	)
}

func (m Model) viewPrompt(st app.State) string {
	form := ""
	if m.PromptForm != nil {
		form = m.PromptForm.View()
	}
	return docStyle.Render(lipgloss.JoinVertical(lipgloss.Left,
		welcomeStyle.Render("“"+st.Message+"”"),
		form,
	))
}

func (m Model) viewMessage(st app.State) string {
	parts := []string{m.MessageModel.View()}
	if st.ActiveID != "" {
		parts = append(parts, "", m.Reflection.View())
	}
	return docStyle.Render(lipgloss.JoinVertical(lipgloss.Left, parts...))
}

func (m Model) viewSettings() string {
	if m.EditingSchedule() {
		parts := []string{m.ScheduleForm.View()}
		if m.FormError != "" {
			parts = append(parts, dangerStyle.Render(m.FormError))
		}
		return docStyle.Render(lipgloss.JoinVertical(lipgloss.Left, parts...))
	}
	parts := []string{m.ScheduleModel.View()}
	if m.FormError != "" {
		parts = append(parts, "", dangerStyle.Render(m.FormError))
	}
	return docStyle.Render(lipgloss.JoinVertical(lipgloss.Left, parts...))
}

func (m Model) viewAlert() string {
	box := alertStyle.Render(lipgloss.JoinVertical(lipgloss.Center,
		dangerStyle.Render(m.Alert),
		"",
		"[enter] OK",
	))
	if m.Width == 0 || m.Height == 0 {
		return box
	}
	return lipgloss.Place(m.Width, m.Height, lipgloss.Center, lipgloss.Center, box)
}
