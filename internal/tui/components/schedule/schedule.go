package schedule

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/julianstephens/softworkday/internal/models"
	"github.com/julianstephens/softworkday/internal/scheduler"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205")).
			MarginBottom(1)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Width(12)

	valueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("255")).
			Bold(true).
			Width(8)

	nextStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Italic(true)
)

// Model shows the notification schedule and when each slot fires next.
type Model struct {
	schedule models.NotificationSchedule
	loaded   bool
	now      func() time.Time
}

func New() Model {
	return Model{now: time.Now}
}

func (m *Model) SetSchedule(s models.NotificationSchedule) {
	m.schedule = s
	m.loaded = true
}

func (m Model) Schedule() models.NotificationSchedule {
	return m.schedule
}

func (m Model) View() string {
	if !m.loaded {
		return nextStyle.Render("Loading schedule...")
	}

	now := m.now()
	rows := []string{titleStyle.Render("Daily check-ins")}
	for _, slot := range models.Slots {
		hhmm := m.schedule.Time(slot)
		next := ""
		if at, err := scheduler.NextFire(now, hhmm); err == nil {
			next = "next " + humanize.RelTime(at, now, "ago", "from now")
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top,
			labelStyle.Render(fmt.Sprintf("%s:", slot.TimeOfDay().Label())),
			valueStyle.Render(hhmm),
			nextStyle.Render(next),
		))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}
