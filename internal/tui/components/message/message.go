package message

import (
	"strings"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/julianstephens/softworkday/internal/models"
)

var (
	metaStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Italic(true)

	plainStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252")).
			Italic(true).
			Padding(1, 2)
)

var markdownEscaper = strings.NewReplacer(`\`, `\\`, "*", `\*`, "_", `\_`, "`", "\\`", "#", `\#`)

// Model renders a generated message as a quoted markdown block. Rendering is
// cached until the text or width changes.
type Model struct {
	text      string
	mood      models.Mood
	timeOfDay models.TimeOfDay
	createdAt time.Time
	width     int
	rendered  string
}

func New() Model {
	return Model{}
}

// SetMessage replaces the displayed message and its metadata.
func (m *Model) SetMessage(text string, mood models.Mood, tod models.TimeOfDay, createdAt time.Time) {
	if text == m.text && mood == m.mood && tod == m.timeOfDay && createdAt.Equal(m.createdAt) {
		return
	}
	m.text = text
	m.mood = mood
	m.timeOfDay = tod
	m.createdAt = createdAt
	m.render()
}

func (m *Model) SetWidth(width int) {
	if width == m.width {
		return
	}
	m.width = width
	m.render()
}

func (m *Model) render() {
	m.rendered = ""
	if strings.TrimSpace(m.text) == "" {
		return
	}
	md := "> *" + markdownEscaper.Replace(m.text) + "*"

	wrap := m.width - 8
	if wrap < 20 {
		wrap = 60
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle("dark"),
		glamour.WithWordWrap(wrap),
	)
	if err == nil {
		if out, err := r.Render(md); err == nil {
			m.rendered = strings.Trim(out, "\n")
			return
		}
	}
	m.rendered = plainStyle.Width(wrap).Render("\u201c" + m.text + "\u201d")
}

// Meta returns "Mood · time of day · 3 minutes ago", omitting unknown parts.
func (m Model) Meta() string {
	var parts []string
	if m.mood.Valid() {
		parts = append(parts, m.mood.Label())
	}
	if m.timeOfDay.Valid() {
		parts = append(parts, m.timeOfDay.Label())
	}
	if !m.createdAt.IsZero() {
		parts = append(parts, humanize.Time(m.createdAt))
	}
	return strings.Join(parts, " \u00b7 ")
}

func (m Model) View() string {
	if m.rendered == "" {
		return ""
	}
	if meta := m.Meta(); meta != "" {
		return lipgloss.JoinVertical(lipgloss.Left, m.rendered, "  "+metaStyle.Render(meta))
	}
	return m.rendered
}
