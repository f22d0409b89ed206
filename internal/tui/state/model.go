package state

import (
	"net/url"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/huh"

	"github.com/julianstephens/softworkday/internal/app"
	"github.com/julianstephens/softworkday/internal/models"
	"github.com/julianstephens/softworkday/internal/tui/components/message"
	"github.com/julianstephens/softworkday/internal/tui/components/schedule"
)

// PromptFormModel backs the mood and context form of the main view
type PromptFormModel struct {
	Mood    models.Mood
	Context string
}

// ScheduleFormModel backs the settings form
type ScheduleFormModel struct {
	Morning string
	Midday  string
	Evening string
}

// Model represents the shared state for the TUI
type Model struct {
	Ctrl      *app.Controller
	Query     url.Values
	ExportDir string

	Keys          KeyMap
	Help          help.Model
	Spinner       spinner.Model
	Reflection    textarea.Model
	MessageModel  message.Model
	ScheduleModel schedule.Model

	PromptForm   *huh.Form
	Prompt       *PromptFormModel
	ScheduleForm *huh.Form
	ScheduleEdit *ScheduleFormModel

	// SyncedID is the message id the reflection box was last filled from.
	SyncedID  string
	Alert     string // modal error, dismissed by any key
	Status    string
	FormError string
	Quitting  bool
	Width     int
	Height    int
}

// New creates a new state Model
func New(ctrl *app.Controller, query url.Values, exportDir string) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot

	ta := textarea.New()
	ta.Placeholder = "Jot down a quick reflection..."
	ta.ShowLineNumbers = false
	ta.SetHeight(4)
	ta.SetWidth(60)
	ta.Focus()

	return Model{
		Ctrl:          ctrl,
		Query:         query,
		ExportDir:     exportDir,
		Keys:          DefaultKeyMap(),
		Help:          help.New(),
		Spinner:       sp,
		Reflection:    ta,
		MessageModel:  message.New(),
		ScheduleModel: schedule.New(),
	}
}

// EditingSchedule reports whether the settings form is open.
func (m *Model) EditingSchedule() bool {
	return m.ScheduleForm != nil
}

// Sync copies controller state into the widgets that mirror it.
func (m *Model) Sync() {
	st := m.Ctrl.State()
	if st.ActiveID != m.SyncedID {
		m.SyncedID = st.ActiveID
		m.Reflection.SetValue(st.Reflection)
	}
	if st.HasGenerated {
		m.MessageModel.SetMessage(st.Message, st.Mood, st.TimeOfDay, st.CreatedAt)
	}
}
