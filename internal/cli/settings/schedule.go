package settings

import (
	"context"
	"fmt"

	"github.com/dustin/go-humanize"

	"github.com/julianstephens/softworkday/internal/analytics"
	"github.com/julianstephens/softworkday/internal/cli"
	"github.com/julianstephens/softworkday/internal/errors"
	"github.com/julianstephens/softworkday/internal/models"
	"github.com/julianstephens/softworkday/internal/scheduler"
)

// ScheduleCmd groups the notification schedule commands.
type ScheduleCmd struct {
	Show  ScheduleShowCmd  `cmd:"" help:"Show the notification schedule." default:"1"`
	Set   ScheduleSetCmd   `cmd:"" help:"Change one or more notification times."`
	Reset ScheduleResetCmd `cmd:"" help:"Restore the default notification times."`
}

type ScheduleShowCmd struct{}

func (c *ScheduleShowCmd) Run(ctx *cli.Context) error {
	sched, err := ctx.Schedules().Get(context.Background())
	if err != nil {
		return err
	}
	printSchedule(ctx, sched)
	return nil
}

type ScheduleSetCmd struct {
	Morning *string `help:"Morning check-in time (HH:MM)."`
	Midday  *string `help:"Midday check-in time (HH:MM)."`
	Evening *string `help:"End of day check-in time (HH:MM)."`
}

func (c *ScheduleSetCmd) Run(ctx *cli.Context) error {
	bg := context.Background()
	store := ctx.Schedules()
	sched, err := store.Get(bg)
	if err != nil {
		return err
	}

	updated := false
	for slot, value := range map[models.Slot]*string{
		models.SlotMorning: c.Morning,
		models.SlotMidday:  c.Midday,
		models.SlotEvening: c.Evening,
	} {
		if value != nil {
			sched = sched.WithTime(slot, *value)
			updated = true
		}
	}
	if !updated {
		return errors.Usagef("no changes specified, pass --morning, --midday or --evening")
	}

	if err := store.Save(bg, sched); err != nil {
		return err
	}
	ctx.Track(analytics.EventSettingsSaved, nil)
	ctx.Println("Schedule updated successfully.")
	printSchedule(ctx, sched)
	return nil
}

type ScheduleResetCmd struct{}

func (c *ScheduleResetCmd) Run(ctx *cli.Context) error {
	sched, err := ctx.Schedules().Reset(context.Background())
	if err != nil {
		return err
	}
	ctx.Track(analytics.EventSettingsReset, nil)
	ctx.Println("Schedule reset to defaults.")
	printSchedule(ctx, sched)
	return nil
}

func printSchedule(ctx *cli.Context, sched models.NotificationSchedule) {
	now := ctx.Now()
	rows := make([][]any, 0, len(models.Slots))
	for _, slot := range models.Slots {
		hhmm := sched.Time(slot)
		next := "-"
		if at, err := scheduler.NextFire(now, hhmm); err == nil {
			next = fmt.Sprintf("%s (%s)", at.Format("Mon 15:04"), humanize.RelTime(at, now, "ago", "from now"))
		}
		rows = append(rows, []any{slot.TimeOfDay().Title(), hhmm, next})
	}
	ctx.PrintTable([]any{"CHECK-IN", "TIME", "NEXT"}, rows)
}
