package handlers

import (
	"context"
	"fmt"
	"net/url"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/julianstephens/softworkday/internal/app"
	"github.com/julianstephens/softworkday/internal/models"
	"github.com/julianstephens/softworkday/internal/tui/state"
)

// LoadedMsg is sent once the initial address has been resolved
type LoadedMsg struct{ Err error }

// GeneratedMsg is sent when a generation round trip finishes
type GeneratedMsg struct{}

// SharedMsg reports the outcome of a card export
type SharedMsg struct {
	Path string
	Err  error
}

// ScheduleLoadedMsg carries the stored schedule
type ScheduleLoadedMsg struct {
	Schedule models.NotificationSchedule
	Err      error
}

// ScheduleSavedMsg reports a save or reset
type ScheduleSavedMsg struct {
	Schedule models.NotificationSchedule
	Reset    bool
	Err      error
}

func LoadCmd(ctrl *app.Controller, query url.Values) tea.Cmd {
	return func() tea.Msg {
		return LoadedMsg{Err: ctrl.Load(context.Background(), query)}
	}
}

func GenerateCmd(ctrl *app.Controller, again bool) tea.Cmd {
	return func() tea.Msg {
		if again {
			ctrl.Regenerate(context.Background())
		} else {
			ctrl.Submit(context.Background())
		}
		return GeneratedMsg{}
	}
}

func ShareCmd(ctrl *app.Controller, dir string) tea.Cmd {
	return func() tea.Msg {
		path, err := ctrl.Share(dir)
		return SharedMsg{Path: path, Err: err}
	}
}

func LoadScheduleCmd(ctrl *app.Controller) tea.Cmd {
	return func() tea.Msg {
		s, err := ctrl.Schedule(context.Background())
		return ScheduleLoadedMsg{Schedule: s, Err: err}
	}
}

func SaveScheduleCmd(ctrl *app.Controller, s models.NotificationSchedule) tea.Cmd {
	return func() tea.Msg {
		return ScheduleSavedMsg{Schedule: s, Err: ctrl.SaveSchedule(context.Background(), s)}
	}
}

func ResetScheduleCmd(ctrl *app.Controller) tea.Cmd {
	return func() tea.Msg {
		s, err := ctrl.ResetSchedule(context.Background())
		return ScheduleSavedMsg{Schedule: s, Reset: true, Err: err}
	}
}

// NewPromptForm creates the mood and context form of the main view
func NewPromptForm(fm *state.PromptFormModel) *huh.Form {
	options := make([]huh.Option[models.Mood], 0, len(models.Moods))
	for _, mood := range models.Moods {
		options = append(options, huh.NewOption(mood.Label(), mood))
	}
	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[models.Mood]().
				Title("Current State").
				Options(options...).
				Value(&fm.Mood),
			huh.NewInput().
				Title("One word on your mind? (optional)").
				CharLimit(120).
				Value(&fm.Context),
		),
	).WithShowHelp(false)
}

func validateClock(s string) error {
	if _, _, err := models.ParseClock(s); err != nil {
		return fmt.Errorf("invalid time format, use 24-hour HH:MM")
	}
	return nil
}

// NewScheduleForm creates a form for editing the notification schedule
func NewScheduleForm(fm *state.ScheduleFormModel) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Morning (HH:MM)").
				Value(&fm.Morning).
				Validate(validateClock),
			huh.NewInput().
				Title("Midday (HH:MM)").
				Value(&fm.Midday).
				Validate(validateClock),
			huh.NewInput().
				Title("End of day (HH:MM)").
				Value(&fm.Evening).
				Validate(validateClock),
		),
	)
}

// ResetPrompt replaces the main view form with a fresh one
func ResetPrompt(m *state.Model) tea.Cmd {
	st := m.Ctrl.State()
	m.Prompt = &state.PromptFormModel{Mood: st.Mood, Context: st.Context}
	m.PromptForm = NewPromptForm(m.Prompt)
	return m.PromptForm.Init()
}

// HandleAsyncMessages applies the results of background commands
func HandleAsyncMessages(m *state.Model, msg tea.Msg) (bool, tea.Cmd) {
	switch msg := msg.(type) {
	case LoadedMsg:
		if msg.Err != nil {
			m.Status = "Could not open message: " + msg.Err.Error()
		}
		m.Sync()
		return true, nil
	case GeneratedMsg:
		m.Sync()
		return true, nil
	case SharedMsg:
		if msg.Err != nil {
			m.Alert = "Could not create the share card: " + msg.Err.Error()
			return true, nil
		}
		m.Status = "Card saved to " + msg.Path
		return true, nil
	case ScheduleLoadedMsg:
		if msg.Err != nil {
			m.Status = "Failed to load schedule: " + msg.Err.Error()
		}
		m.ScheduleModel.SetSchedule(msg.Schedule)
		return true, nil
	case ScheduleSavedMsg:
		if msg.Err != nil {
			m.FormError = "Failed to update schedule: " + msg.Err.Error()
			return true, LoadScheduleCmd(m.Ctrl)
		}
		m.FormError = ""
		m.ScheduleModel.SetSchedule(msg.Schedule)
		if msg.Reset {
			m.Status = "Schedule reset to defaults"
		} else {
			m.Status = "Schedule saved"
		}
		return true, nil
	}
	return false, nil
}
