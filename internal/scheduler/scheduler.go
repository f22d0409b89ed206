package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/jonboulle/clockwork"

	"github.com/julianstephens/softworkday/internal/constants"
	"github.com/julianstephens/softworkday/internal/logger"
	"github.com/julianstephens/softworkday/internal/models"
)

// AlarmRegistry is the alarm capability the scheduler drives.
type AlarmRegistry interface {
	Create(a models.Alarm) error
	ClearAll()
}

// NextFire returns today at hh:mm:00 in now's location, or the same time
// tomorrow when that instant is not after now. Tomorrow is a calendar day,
// so across a DST change the gap is not exactly 24h.
func NextFire(now time.Time, hhmm string) (time.Time, error) {
	hour, minute, err := models.ParseClock(hhmm)
	if err != nil {
		return time.Time{}, err
	}
	target := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, now.Location())
	if !target.After(now) {
		target = target.AddDate(0, 0, 1)
	}
	return target, nil
}

// Scheduler keeps the three daily alarms in line with the schedule.
type Scheduler struct {
	alarms AlarmRegistry
	clock  clockwork.Clock
	log    *log.Logger
}

func New(alarms AlarmRegistry, clock clockwork.Clock) *Scheduler {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Scheduler{
		alarms: alarms,
		clock:  clock,
		log:    logger.Component("scheduler"),
	}
}

// Reconcile clears every alarm and registers one per slot at its next fire
// time, repeating daily. It always rebuilds from scratch, never diffs.
func (s *Scheduler) Reconcile(ctx context.Context, sched models.NotificationSchedule) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := sched.Validate(); err != nil {
		return err
	}

	now := s.clock.Now()
	s.alarms.ClearAll()

	for _, slot := range models.Slots {
		when, err := NextFire(now, sched.Time(slot))
		if err != nil {
			return fmt.Errorf("%s: %w", slot, err)
		}
		alarm := models.Alarm{
			Name:   slot.AlarmName(),
			When:   when,
			Period: constants.AlarmPeriod,
		}
		if err := s.alarms.Create(alarm); err != nil {
			return fmt.Errorf("failed to register %s: %w", alarm.Name, err)
		}
		s.log.Debug("Alarm registered", "name", alarm.Name, "when", when.Format(time.RFC3339))
	}
	return nil
}
