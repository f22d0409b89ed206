package messages

import (
	"context"
	"fmt"

	"github.com/julianstephens/softworkday/internal/cli"
	"github.com/julianstephens/softworkday/internal/models"
)

// GenerateCmd generates and archives one grounding message.
type GenerateCmd struct {
	Mood       string `short:"m" help:"How you are feeling (calm|anxious|tired|neutral)." default:"neutral"`
	TimeOfDay  string `short:"t" name:"time-of-day" help:"Time of day (morning|midday|end-of-day). Defaults to the current time."`
	Context    string `short:"c" help:"What is on your mind."`
	Reflection string `help:"Reflection note to store with the message."`
	Share      bool   `help:"Also export a PNG share card to export_dir."`
	Raw        bool   `help:"Print plain text instead of rendered markdown."`
}

func (c *GenerateCmd) Run(ctx *cli.Context) error {
	mood, err := models.ParseMood(c.Mood)
	if err != nil {
		return err
	}

	bg := context.Background()
	ctrl := ctx.Controller()
	ctrl.SetMood(mood)
	if c.TimeOfDay != "" {
		tod, err := models.ParseTimeOfDay(c.TimeOfDay)
		if err != nil {
			return err
		}
		ctrl.SetTimeOfDay(tod)
	}
	ctrl.SetContext(c.Context)
	ctrl.Submit(bg)

	if c.Reflection != "" {
		ctrl.SetReflection(c.Reflection)
	}
	if err := ctrl.Flush(bg); err != nil {
		return err
	}

	st := ctrl.State()
	msg, err := ctx.Archive().GetMessageByID(bg, st.ActiveID)
	if err != nil {
		return err
	}
	if msg == nil {
		msg = &models.StoredMessage{ID: st.ActiveID, Text: st.Message, Mood: st.Mood, TimeOfDay: st.TimeOfDay}
	}

	md := messageMarkdown(msg)
	if c.Raw {
		ctx.Println(md)
	} else {
		out, err := ctx.RenderMarkdown(md)
		if err != nil {
			return fmt.Errorf("failed to render message: %w", err)
		}
		ctx.Printf("%s", out)
	}

	if c.Share {
		path, err := ctrl.Share(ctx.Config.ExportDir)
		if err != nil {
			return err
		}
		ctx.Printf("Share card saved to %s\n", path)
	}
	return nil
}
