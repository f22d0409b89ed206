package system

import (
	"context"
	"net/url"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/softworkday/internal/cli"
	"github.com/julianstephens/softworkday/internal/constants"
	"github.com/julianstephens/softworkday/internal/tui"
)

type TuiCmd struct {
	M         string `name:"m" help:"Message id to open, as carried by a notification link."`
	UtmSource string `name:"utm-source" help:"Where the view was opened from." default:""`
}

// Query returns the flags as the address the detail view understands.
func (c *TuiCmd) Query() url.Values {
	q := url.Values{}
	if c.M != "" {
		q.Set(constants.QueryMessageID, c.M)
	}
	if c.UtmSource != "" {
		q.Set(constants.QuerySource, c.UtmSource)
	}
	return q
}

func (c *TuiCmd) Run(ctx *cli.Context) error {
	if _, err := ctx.Schedules().EnsureDefaults(context.Background()); err != nil {
		return err
	}

	ctrl := ctx.Controller()
	p := tea.NewProgram(tui.NewModel(ctrl, c.Query(), ctx.Config.ExportDir), tea.WithAltScreen())
	_, err := p.Run()
	// Persist a reflection typed just before an abnormal exit.
	if flushErr := ctrl.Flush(context.Background()); err == nil {
		err = flushErr
	}
	return err
}
