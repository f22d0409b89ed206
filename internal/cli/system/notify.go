package system

import (
	"context"
	"fmt"

	"github.com/julianstephens/softworkday/internal/cli"
	"github.com/julianstephens/softworkday/internal/daemon"
	"github.com/julianstephens/softworkday/internal/models"
	"github.com/julianstephens/softworkday/internal/notifier"
)

// NotifyCmd fires the notification for one slot immediately.
type NotifyCmd struct {
	Slot   string `arg:"" enum:"morning,midday,evening" help:"Slot to notify for (morning|midday|evening)."`
	DryRun bool   `help:"Print the notification to stdout instead of sending it."`
}

func (c *NotifyCmd) Run(ctx *cli.Context) error {
	slot, err := models.ParseSlot(c.Slot)
	if err != nil {
		return err
	}

	var sink notifier.Sink = printSink{w: ctx.Out}
	if !c.DryRun {
		sink = openSink(ctx)
	}
	defer sink.Close()

	d := notifier.NewDispatcher(sink, ctx.Clock, nil)
	id, err := d.Fire(context.Background(), slot.AlarmName())
	if err != nil {
		return fmt.Errorf("failed to send notification: %w", err)
	}

	if info, err := daemon.Find(ctx.Config.DataDir); err == nil {
		ctx.Printf("Detail view: %s\n", notifier.DetailURL(info.BaseURL(), id))
	} else {
		ctx.Printf("Sent %s\n", id)
	}
	return nil
}
