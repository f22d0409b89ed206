package server

import (
	"embed"
	"html/template"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/julianstephens/softworkday/internal/app"
	"github.com/julianstephens/softworkday/internal/constants"
	"github.com/julianstephens/softworkday/internal/models"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageTemplate = template.Must(template.ParseFS(templateFS, "templates/page.html"))

type pageData struct {
	Wordmark   string
	Tagline    string
	View       string
	Message    string
	ID         string
	Mood       string
	TimeOfDay  string
	Reflection string
	Archived   string
	Generated  bool
	Moods      []models.Mood
	DebounceMs int64
}

func newPageData(st app.State, debounce time.Duration) pageData {
	if debounce <= 0 {
		debounce = constants.DefaultReflectionDebounce
	}
	d := pageData{
		Wordmark:   constants.Wordmark,
		Tagline:    constants.Tagline,
		View:       st.View.String(),
		Message:    st.Message,
		ID:         st.ActiveID,
		Mood:       st.Mood.Label(),
		TimeOfDay:  st.TimeOfDay.Label(),
		Reflection: st.Reflection,
		Generated:  st.HasGenerated,
		Moods:      models.Moods,
		DebounceMs: debounce.Milliseconds(),
	}
	if !st.CreatedAt.IsZero() && st.ActiveID != "" {
		d.Archived = humanize.Time(st.CreatedAt)
	}
	return d
}
