package schedule

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/julianstephens/softworkday/internal/constants"
	"github.com/julianstephens/softworkday/internal/logger"
	"github.com/julianstephens/softworkday/internal/models"
	"github.com/julianstephens/softworkday/internal/storage"
)

// Reconciler brings the registered alarms in line with a schedule.
type Reconciler interface {
	Reconcile(ctx context.Context, s models.NotificationSchedule) error
}

// ReconcilerFunc adapts a function to Reconciler.
type ReconcilerFunc func(ctx context.Context, s models.NotificationSchedule) error

func (f ReconcilerFunc) Reconcile(ctx context.Context, s models.NotificationSchedule) error {
	return f(ctx, s)
}

// Store persists the notification schedule under a single key.
type Store struct {
	kv  storage.Provider
	log *log.Logger

	mu         sync.RWMutex
	reconciler Reconciler
}

func NewStore(kv storage.Provider, r Reconciler) *Store {
	return &Store{
		kv:         kv,
		reconciler: r,
		log:        logger.Component("schedule"),
	}
}

// SetReconciler replaces the side effect run after every successful Save.
func (s *Store) SetReconciler(r Reconciler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reconciler = r
}

// Get returns the persisted schedule, or the defaults when nothing has been
// saved. Unreadable blobs and invalid fields fall back to defaults.
func (s *Store) Get(ctx context.Context) (models.NotificationSchedule, error) {
	raw, ok, err := s.kv.Get(ctx, constants.ScheduleStorageKey)
	if err != nil {
		return models.NotificationSchedule{}, fmt.Errorf("failed to read schedule: %w", err)
	}
	if !ok {
		return models.DefaultSchedule(), nil
	}

	var sched models.NotificationSchedule
	if err := json.Unmarshal(raw, &sched); err != nil {
		s.log.Warn("Stored schedule is unreadable, using defaults", "error", err)
		return models.DefaultSchedule(), nil
	}

	sched, replaced := sched.Normalize()
	if len(replaced) > 0 {
		s.log.Warn("Stored schedule has invalid times, using defaults for them", "slots", replaced)
	}
	return sched, nil
}

// Save validates and persists the schedule, then reconciles alarms. Nothing
// is written when any field is invalid. A reconcile failure is returned
// after the schedule has been persisted.
func (s *Store) Save(ctx context.Context, sched models.NotificationSchedule) error {
	if err := sched.Validate(); err != nil {
		return err
	}
	if err := s.write(ctx, sched); err != nil {
		return err
	}

	s.mu.RLock()
	r := s.reconciler
	s.mu.RUnlock()
	if r == nil {
		return nil
	}
	if err := r.Reconcile(ctx, sched); err != nil {
		return fmt.Errorf("schedule saved but alarms were not updated: %w", err)
	}
	return nil
}

// Reset saves and returns the default schedule.
func (s *Store) Reset(ctx context.Context) (models.NotificationSchedule, error) {
	def := models.DefaultSchedule()
	if err := s.Save(ctx, def); err != nil {
		return models.NotificationSchedule{}, err
	}
	return def, nil
}

// EnsureDefaults writes the default schedule when none is stored yet. It
// does not reconcile; the caller registers alarms once storage is ready.
func (s *Store) EnsureDefaults(ctx context.Context) (bool, error) {
	_, ok, err := s.kv.Get(ctx, constants.ScheduleStorageKey)
	if err != nil {
		return false, fmt.Errorf("failed to read schedule: %w", err)
	}
	if ok {
		return false, nil
	}
	if err := s.write(ctx, models.DefaultSchedule()); err != nil {
		return false, err
	}
	s.log.Info("Default schedule written")
	return true, nil
}

func (s *Store) write(ctx context.Context, sched models.NotificationSchedule) error {
	raw, err := json.Marshal(sched)
	if err != nil {
		return fmt.Errorf("failed to encode schedule: %w", err)
	}
	if err := s.kv.Set(ctx, constants.ScheduleStorageKey, raw); err != nil {
		return fmt.Errorf("failed to save schedule: %w", err)
	}
	return nil
}
