package scheduler

import (
	"context"
	"errors"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jmhodges/clock"
	"go.uber.org/zap"

	"github.com/umituz/notifykit/internal/domain"
	"github.com/umituz/notifykit/internal/kvstore"
)

const (
	badgeKey      = "notifications:badge"
	permissionKey = "notifications:permission"
)

var errNilTrigger = errors.New("nil trigger")

// Local is an in-process Scheduler. A single goroutine sleeps until the
// earliest pending notification is due, hands it to the Presenter, and
// reschedules repeating triggers from their next occurrence.
type Local struct {
	mu        sync.Mutex
	items     map[string]*Scheduled
	kv        kvstore.Store
	presenter Presenter
	clk       clock.Clock
	log       *zap.Logger
	wake      chan struct{}
}

// NewLocal creates a scheduler. Badge count and permission state persist
// through kv so they survive restarts; pending items do not — callers that
// need durability (reminders) re-schedule from their own storage.
func NewLocal(kv kvstore.Store, presenter Presenter, clk clock.Clock, log *zap.Logger) *Local {
	return &Local{
		items:     make(map[string]*Scheduled),
		kv:        kv,
		presenter: presenter,
		clk:       clk,
		log:       log,
		wake:      make(chan struct{}, 1),
	}
}

// Schedule registers a payload with a trigger and returns its identifier.
func (s *Local) Schedule(_ context.Context, payload domain.Payload, trigger domain.Trigger) (string, error) {
	if trigger == nil {
		return "", errNilTrigger
	}
	id := uuid.NewString()

	s.mu.Lock()
	s.items[id] = &Scheduled{
		ID:      id,
		Payload: payload,
		Trigger: trigger,
		NextAt:  domain.NextOccurrence(trigger, s.clk.Now()),
	}
	s.mu.Unlock()

	s.signal()
	return id, nil
}

// Cancel removes a scheduled notification. Unknown identifiers are a no-op.
func (s *Local) Cancel(_ context.Context, id string) error {
	s.mu.Lock()
	delete(s.items, id)
	s.mu.Unlock()

	s.signal()
	return nil
}

// CancelAll drops every pending notification.
func (s *Local) CancelAll(_ context.Context) error {
	s.mu.Lock()
	s.items = make(map[string]*Scheduled)
	s.mu.Unlock()

	s.signal()
	return nil
}

// ListScheduled returns pending notifications ordered by next fire time.
func (s *Local) ListScheduled(_ context.Context) ([]Scheduled, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Scheduled, 0, len(s.items))
	for _, it := range s.items {
		out = append(out, *it)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].NextAt.Before(out[j].NextAt) })
	return out, nil
}

// BadgeCount reads the persisted badge counter (0 when unset).
func (s *Local) BadgeCount(ctx context.Context) (int, error) {
	v, ok, err := s.kv.Get(ctx, badgeKey)
	if err != nil || !ok {
		return 0, err
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, nil // corrupt value reads as zero
	}
	return n, nil
}

// SetBadgeCount persists the badge counter.
func (s *Local) SetBadgeCount(ctx context.Context, count int) error {
	return s.kv.Set(ctx, badgeKey, strconv.Itoa(count))
}

// HasPermission reports whether notification permission was granted.
func (s *Local) HasPermission(ctx context.Context) (bool, error) {
	v, ok, err := s.kv.Get(ctx, permissionKey)
	if err != nil {
		return false, err
	}
	return ok && v == "true", nil
}

// RequestPermission grants permission. There is no external authority for
// a device-local scheduler, so the request always succeeds and persists.
func (s *Local) RequestPermission(ctx context.Context) (bool, error) {
	if err := s.kv.Set(ctx, permissionKey, "true"); err != nil {
		return false, err
	}
	return true, nil
}

// Run drives the fire loop until ctx is canceled.
func (s *Local) Run(ctx context.Context) {
	for {
		var fire <-chan time.Time
		var timer *time.Timer

		if next, ok := s.earliest(); ok {
			d := next.Sub(s.clk.Now())
			if d < 0 {
				d = 0
			}
			timer = time.NewTimer(d)
			fire = timer.C
		}

		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			s.log.Info("scheduler stopping")
			return
		case <-s.wake:
			// schedule changed; recompute the sleep
		case <-fire:
			s.tick(ctx, s.clk.Now())
		}

		if timer != nil {
			timer.Stop()
		}
	}
}

// earliest returns the soonest NextAt among pending items.
func (s *Local) earliest() (time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var best time.Time
	found := false
	for _, it := range s.items {
		if !found || it.NextAt.Before(best) {
			best = it.NextAt
			found = true
		}
	}
	return best, found
}

// tick presents everything due at now. Repeating triggers advance to their
// next occurrence; one-shot triggers are removed. Presenter failures are
// logged and swallowed — there is no redelivery.
func (s *Local) tick(ctx context.Context, now time.Time) {
	s.mu.Lock()
	var due []Scheduled
	for _, it := range s.items {
		if !it.NextAt.After(now) {
			due = append(due, *it)
		}
	}
	s.mu.Unlock()

	for _, item := range due {
		if err := s.presenter.Present(ctx, item); err != nil {
			s.log.Error("present failed",
				zap.String("id", item.ID),
				zap.Error(err),
			)
		}

		s.mu.Lock()
		if cur, ok := s.items[item.ID]; ok {
			if cur.Trigger.Repeats() {
				cur.NextAt = domain.NextOccurrence(cur.Trigger, now)
			} else {
				delete(s.items, item.ID)
			}
		}
		s.mu.Unlock()
	}
}

// signal wakes the run loop to re-evaluate the schedule.
func (s *Local) signal() {
	select {
	case s.wake <- struct{}{}:
	default:
		// a wakeup is already pending
	}
}
