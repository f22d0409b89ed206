package messages

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/julianstephens/softworkday/internal/archive"
	"github.com/julianstephens/softworkday/internal/cli"
	"github.com/julianstephens/softworkday/internal/constants"
	"github.com/julianstephens/softworkday/internal/models"
)

// ArchiveCmd groups the message archive commands.
type ArchiveCmd struct {
	List    ArchiveListCmd    `cmd:"" help:"List archived messages, newest first." default:"withargs"`
	Show    ArchiveShowCmd    `cmd:"" help:"Show one archived message."`
	Reflect ArchiveReflectCmd `cmd:"" help:"Set the reflection note of a message."`
	Share   ArchiveShareCmd   `cmd:"" help:"Export a message as a PNG share card."`
}

type ArchiveListCmd struct {
	Limit int `short:"n" help:"Maximum number of messages to list (0 for all)." default:"20"`
}

func (c *ArchiveListCmd) Run(ctx *cli.Context) error {
	msgs, err := ctx.Archive().List(context.Background())
	if err != nil {
		return err
	}
	if len(msgs) == 0 {
		ctx.Println("No archived messages yet")
		return nil
	}
	if c.Limit > 0 && len(msgs) > c.Limit {
		msgs = msgs[:c.Limit]
	}

	rows := make([][]any, 0, len(msgs))
	for _, m := range msgs {
		note := ""
		if m.Reflection != "" {
			note = "✎"
		}
		rows = append(rows, []any{
			m.ID,
			m.TimeOfDay.Title(),
			m.Mood.Label(),
			humanize.RelTime(m.CreatedAt(), ctx.Now(), "ago", "from now"),
			note,
			m.Text,
		})
	}
	ctx.PrintTable([]any{"ID", "TIME OF DAY", "MOOD", "CREATED", "NOTE", "MESSAGE"}, rows)
	return nil
}

type ArchiveShowCmd struct {
	ID  string `arg:"" help:"Message id."`
	Raw bool   `help:"Print plain text instead of rendered markdown."`
}

func (c *ArchiveShowCmd) Run(ctx *cli.Context) error {
	msg, err := lookup(ctx, c.ID)
	if err != nil {
		return err
	}

	md := messageMarkdown(msg)
	if c.Raw {
		ctx.Println(md)
		return nil
	}
	out, err := ctx.RenderMarkdown(md)
	if err != nil {
		return fmt.Errorf("failed to render message: %w", err)
	}
	ctx.Printf("%s", out)
	return nil
}

type ArchiveReflectCmd struct {
	ID   string `arg:"" help:"Message id."`
	Text string `arg:"" help:"Reflection note. An empty string clears it."`
}

func (c *ArchiveReflectCmd) Run(ctx *cli.Context) error {
	if err := ctx.Archive().UpdateReflection(context.Background(), c.ID, c.Text); err != nil {
		return err
	}
	ctx.Println("Reflection saved.")
	return nil
}

type ArchiveShareCmd struct {
	ID  string `arg:"" help:"Message id."`
	Dir string `help:"Directory to write the card to (defaults to export_dir)." type:"path"`
}

func (c *ArchiveShareCmd) Run(ctx *cli.Context) error {
	if _, err := lookup(ctx, c.ID); err != nil {
		return err
	}
	dir := c.Dir
	if dir == "" {
		dir = ctx.Config.ExportDir
	}

	bg := context.Background()
	ctrl := ctx.Controller()
	if err := ctrl.Load(bg, url.Values{constants.QueryMessageID: {c.ID}}); err != nil {
		return err
	}
	path, err := ctrl.Share(dir)
	if err != nil {
		return err
	}
	ctx.Printf("Share card saved to %s\n", path)
	return nil
}

func lookup(ctx *cli.Context, id string) (*models.StoredMessage, error) {
	msg, err := ctx.Archive().GetMessageByID(context.Background(), id)
	if err != nil {
		return nil, err
	}
	if msg == nil {
		return nil, fmt.Errorf("%w: %s", archive.ErrNotFound, id)
	}
	return msg, nil
}

func messageMarkdown(msg *models.StoredMessage) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", msg.TimeOfDay.Title())
	fmt.Fprintf(&b, "> %s\n\n", msg.Text)
	fmt.Fprintf(&b, "*%s · %s · %s*\n", msg.Mood.Label(), msg.CreatedAt().Format("Mon Jan 2 15:04"), msg.ID)
	if msg.Reflection != "" {
		fmt.Fprintf(&b, "\n## Reflection\n\n%s\n", msg.Reflection)
	}
	return b.String()
}
