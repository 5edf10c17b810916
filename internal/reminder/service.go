package reminder

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmhodges/clock"
	"go.uber.org/zap"

	"github.com/umituz/notifykit/internal/domain"
	"github.com/umituz/notifykit/internal/kvstore"
	"github.com/umituz/notifykit/internal/scheduler"
)

const storageKey = "notifications:reminders"

// CreateInput carries the fields for a new reminder.
type CreateInput struct {
	Title      string           `json:"title"`
	Body       string           `json:"body"`
	Frequency  domain.Frequency `json:"frequency"`
	Hour       int              `json:"hour"`
	Minute     int              `json:"minute"`
	Weekday    int              `json:"weekday,omitempty"`
	DayOfMonth int              `json:"dayOfMonth,omitempty"`
}

// Patch is a partial update; nil fields are left untouched.
type Patch struct {
	Title      *string           `json:"title,omitempty"`
	Body       *string           `json:"body,omitempty"`
	Frequency  *domain.Frequency `json:"frequency,omitempty"`
	Hour       *int              `json:"hour,omitempty"`
	Minute     *int              `json:"minute,omitempty"`
	Weekday    *int              `json:"weekday,omitempty"`
	DayOfMonth *int              `json:"dayOfMonth,omitempty"`
	Enabled    *bool             `json:"enabled,omitempty"`
}

// Service keeps each reminder's scheduler identifier in sync with its
// enabled flag: enabled reminders hold exactly one live notification,
// disabled ones hold none.
type Service struct {
	kv    kvstore.Store
	sched scheduler.Scheduler
	clk   clock.Clock
	log   *zap.Logger
}

func NewService(kv kvstore.Store, sched scheduler.Scheduler, clk clock.Clock, log *zap.Logger) *Service {
	return &Service{kv: kv, sched: sched, clk: clk, log: log}
}

// Create builds a reminder, schedules its notification, and persists it.
// All-or-nothing: if scheduling or persisting fails, no reminder exists and
// no notification is left behind.
func (s *Service) Create(ctx context.Context, in CreateInput) (domain.Reminder, error) {
	now := s.clk.Now().UTC()
	rem := domain.Reminder{
		ID:         uuid.NewString(),
		Title:      in.Title,
		Body:       in.Body,
		Frequency:  in.Frequency,
		Hour:       in.Hour,
		Minute:     in.Minute,
		Weekday:    in.Weekday,
		DayOfMonth: in.DayOfMonth,
		Enabled:    true,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := rem.Validate(); err != nil {
		return domain.Reminder{}, err
	}

	trig, err := domain.BuildTrigger(rem, s.clk.Now())
	if err != nil {
		return domain.Reminder{}, err
	}

	notifID, err := s.sched.Schedule(ctx, s.payload(rem), trig)
	if err != nil {
		return domain.Reminder{}, fmt.Errorf("schedule reminder: %w", err)
	}
	rem.NotificationID = notifID

	all, err := s.loadAll(ctx)
	if err == nil {
		err = s.saveAll(ctx, append(all, rem))
	}
	if err != nil {
		// roll back the notification so it doesn't fire for a reminder
		// that was never persisted
		if cErr := s.sched.Cancel(ctx, notifID); cErr != nil {
			s.log.Error("rollback cancel failed", zap.String("reminder", rem.ID), zap.Error(cErr))
		}
		return domain.Reminder{}, fmt.Errorf("persist reminder: %w", err)
	}

	return rem, nil
}

// Edit applies a partial update. A missing id is a benign no-op. The old
// notification is always cancelled first (best effort); a new one is
// scheduled from the merged reminder iff it ends up enabled.
func (s *Service) Edit(ctx context.Context, id string, patch Patch) error {
	all, err := s.loadAll(ctx)
	if err != nil {
		return err
	}
	idx := indexOf(all, id)
	if idx < 0 {
		return nil
	}

	rem := all[idx]
	if rem.NotificationID != "" {
		if err := s.sched.Cancel(ctx, rem.NotificationID); err != nil {
			s.log.Warn("cancel before edit failed",
				zap.String("reminder", rem.ID),
				zap.Error(err),
			)
		}
	}

	applyPatch(&rem, patch)
	rem.UpdatedAt = s.clk.Now().UTC()
	if err := rem.Validate(); err != nil {
		return err
	}

	if rem.Enabled {
		trig, err := domain.BuildTrigger(rem, s.clk.Now())
		if err != nil {
			return err
		}
		notifID, err := s.sched.Schedule(ctx, s.payload(rem), trig)
		if err != nil {
			return fmt.Errorf("reschedule reminder: %w", err)
		}
		rem.NotificationID = notifID
	} else {
		rem.NotificationID = ""
	}

	all[idx] = rem
	return s.saveAll(ctx, all)
}

// Remove cancels the reminder's notification (if any) and deletes the
// entity regardless of the cancellation outcome. Missing ids are a no-op.
func (s *Service) Remove(ctx context.Context, id string) error {
	all, err := s.loadAll(ctx)
	if err != nil {
		return err
	}
	idx := indexOf(all, id)
	if idx < 0 {
		return nil
	}

	if nid := all[idx].NotificationID; nid != "" {
		if err := s.sched.Cancel(ctx, nid); err != nil {
			s.log.Warn("cancel before remove failed", zap.String("reminder", id), zap.Error(err))
		}
	}

	return s.saveAll(ctx, append(all[:idx], all[idx+1:]...))
}

// Toggle flips a reminder between enabled and disabled, scheduling or
// cancelling its notification accordingly. Missing ids are a no-op.
func (s *Service) Toggle(ctx context.Context, id string) error {
	all, err := s.loadAll(ctx)
	if err != nil {
		return err
	}
	idx := indexOf(all, id)
	if idx < 0 {
		return nil
	}

	rem := all[idx]
	if rem.Enabled {
		if rem.NotificationID != "" {
			if err := s.sched.Cancel(ctx, rem.NotificationID); err != nil {
				s.log.Warn("cancel on toggle failed", zap.String("reminder", id), zap.Error(err))
			}
		}
		rem.Enabled = false
		rem.NotificationID = ""
	} else {
		trig, err := domain.BuildTrigger(rem, s.clk.Now())
		if err != nil {
			return err
		}
		notifID, err := s.sched.Schedule(ctx, s.payload(rem), trig)
		if err != nil {
			return fmt.Errorf("schedule on toggle: %w", err)
		}
		rem.Enabled = true
		rem.NotificationID = notifID
	}
	rem.UpdatedAt = s.clk.Now().UTC()

	all[idx] = rem
	return s.saveAll(ctx, all)
}

// Get returns a reminder by id, with ok=false when absent.
func (s *Service) Get(ctx context.Context, id string) (domain.Reminder, bool, error) {
	all, err := s.loadAll(ctx)
	if err != nil {
		return domain.Reminder{}, false, err
	}
	idx := indexOf(all, id)
	if idx < 0 {
		return domain.Reminder{}, false, nil
	}
	return all[idx], true, nil
}

// List returns all reminders in insertion order.
func (s *Service) List(ctx context.Context) ([]domain.Reminder, error) {
	return s.loadAll(ctx)
}

func (s *Service) payload(rem domain.Reminder) domain.Payload {
	return domain.Payload{
		Title:      rem.Title,
		Body:       rem.Body,
		Data:       map[string]any{"reminderId": rem.ID},
		Sound:      true,
		CategoryID: "reminders",
	}
}

func (s *Service) loadAll(ctx context.Context) ([]domain.Reminder, error) {
	raw, ok, err := s.kv.Get(ctx, storageKey)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	var all []domain.Reminder
	if err := json.Unmarshal([]byte(raw), &all); err != nil {
		return nil, fmt.Errorf("decode reminders: %w", err)
	}
	return all, nil
}

func (s *Service) saveAll(ctx context.Context, all []domain.Reminder) error {
	raw, err := json.Marshal(all)
	if err != nil {
		return err
	}
	return s.kv.Set(ctx, storageKey, string(raw))
}

func indexOf(all []domain.Reminder, id string) int {
	for i := range all {
		if all[i].ID == id {
			return i
		}
	}
	return -1
}

func applyPatch(rem *domain.Reminder, p Patch) {
	if p.Title != nil {
		rem.Title = *p.Title
	}
	if p.Body != nil {
		rem.Body = *p.Body
	}
	if p.Frequency != nil {
		rem.Frequency = *p.Frequency
	}
	if p.Hour != nil {
		rem.Hour = *p.Hour
	}
	if p.Minute != nil {
		rem.Minute = *p.Minute
	}
	if p.Weekday != nil {
		rem.Weekday = *p.Weekday
	}
	if p.DayOfMonth != nil {
		rem.DayOfMonth = *p.DayOfMonth
	}
	if p.Enabled != nil {
		rem.Enabled = *p.Enabled
	}
}
