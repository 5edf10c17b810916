package reminder

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/jmhodges/clock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/umituz/notifykit/internal/domain"
	"github.com/umituz/notifykit/internal/kvstore"
	"github.com/umituz/notifykit/internal/scheduler"
)

// fakeScheduler records schedule/cancel calls without any timing behavior.
type fakeScheduler struct {
	nextID      int
	scheduled   map[string]domain.Trigger
	cancelled   []string
	scheduleErr error
}

func newFakeScheduler() *fakeScheduler {
	return &fakeScheduler{scheduled: make(map[string]domain.Trigger)}
}

func (f *fakeScheduler) Schedule(_ context.Context, _ domain.Payload, trigger domain.Trigger) (string, error) {
	if f.scheduleErr != nil {
		return "", f.scheduleErr
	}
	f.nextID++
	id := fmt.Sprintf("notif-%d", f.nextID)
	f.scheduled[id] = trigger
	return id, nil
}

func (f *fakeScheduler) Cancel(_ context.Context, id string) error {
	f.cancelled = append(f.cancelled, id)
	delete(f.scheduled, id)
	return nil
}

func (f *fakeScheduler) CancelAll(_ context.Context) error {
	f.scheduled = make(map[string]domain.Trigger)
	return nil
}

func (f *fakeScheduler) ListScheduled(_ context.Context) ([]scheduler.Scheduled, error) {
	return nil, nil
}

func (f *fakeScheduler) BadgeCount(context.Context) (int, error) { return 0, nil }

func (f *fakeScheduler) SetBadgeCount(context.Context, int) error { return nil }

func (f *fakeScheduler) HasPermission(context.Context) (bool, error) { return true, nil }

func (f *fakeScheduler) RequestPermission(context.Context) (bool, error) { return true, nil }

func newTestService(t *testing.T) (*Service, *fakeScheduler, kvstore.Store) {
	t.Helper()
	fc := clock.NewFake()
	fc.Set(time.Date(2025, time.May, 5, 8, 0, 0, 0, time.UTC))
	sched := newFakeScheduler()
	kv := kvstore.NewMemory()
	return NewService(kv, sched, fc, zap.NewNop()), sched, kv
}

func mustCreate(t *testing.T, svc *Service, in CreateInput) domain.Reminder {
	t.Helper()
	rem, err := svc.Create(context.Background(), in)
	require.NoError(t, err)
	return rem
}

func TestCreate_SchedulesAndPersists(t *testing.T) {
	ctx := context.Background()
	svc, sched, _ := newTestService(t)

	rem := mustCreate(t, svc, CreateInput{
		Title: "Workout", Body: "Morning run",
		Frequency: domain.FrequencyDaily, Hour: 9, Minute: 0,
	})

	require.True(t, rem.Enabled)
	require.NotEmpty(t, rem.NotificationID)
	require.Equal(t, domain.DailyTrigger{Hour: 9, Minute: 0}, sched.scheduled[rem.NotificationID])

	got, ok, err := svc.Get(ctx, rem.ID)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, rem, got)
}

func TestCreate_SchedulerFailureLeavesNothingBehind(t *testing.T) {
	ctx := context.Background()
	svc, sched, _ := newTestService(t)
	sched.scheduleErr = errors.New("scheduler down")

	_, err := svc.Create(ctx, CreateInput{
		Frequency: domain.FrequencyDaily, Hour: 9, Minute: 0,
	})
	require.Error(t, err)

	all, err := svc.List(ctx)
	require.NoError(t, err)
	require.Empty(t, all, "failed create must not persist")
}

func TestCreate_InvalidFrequencyRejected(t *testing.T) {
	svc, sched, _ := newTestService(t)

	_, err := svc.Create(context.Background(), CreateInput{Frequency: "hourly", Hour: 9})
	require.ErrorIs(t, err, domain.ErrUnknownFrequency)
	require.Empty(t, sched.scheduled)
}

func TestToggle_RoundTrip(t *testing.T) {
	ctx := context.Background()
	svc, sched, _ := newTestService(t)

	rem := mustCreate(t, svc, CreateInput{
		Frequency: domain.FrequencyDaily, Hour: 9, Minute: 0,
	})
	firstNotif := rem.NotificationID

	// toggle off: cancel + clear identifier
	require.NoError(t, svc.Toggle(ctx, rem.ID))
	got, ok, err := svc.Get(ctx, rem.ID)
	require.NoError(t, err)
	require.True(t, ok)
	require.False(t, got.Enabled)
	require.Empty(t, got.NotificationID)
	require.Contains(t, sched.cancelled, firstNotif)

	// toggle on: fresh schedule, new identifier
	require.NoError(t, svc.Toggle(ctx, rem.ID))
	got, _, err = svc.Get(ctx, rem.ID)
	require.NoError(t, err)
	require.True(t, got.Enabled)
	require.NotEmpty(t, got.NotificationID)
	require.NotEqual(t, firstNotif, got.NotificationID)
}

func TestToggle_MissingIDIsNoOp(t *testing.T) {
	svc, sched, _ := newTestService(t)
	require.NoError(t, svc.Toggle(context.Background(), "nope"))
	require.Empty(t, sched.scheduled)
	require.Empty(t, sched.cancelled)
}

func TestEdit_ReschedulesFromMergedReminder(t *testing.T) {
	ctx := context.Background()
	svc, sched, _ := newTestService(t)

	rem := mustCreate(t, svc, CreateInput{
		Frequency: domain.FrequencyDaily, Hour: 9, Minute: 0,
	})
	old := rem.NotificationID

	weekly := domain.FrequencyWeekly
	hour := 18
	require.NoError(t, svc.Edit(ctx, rem.ID, Patch{Frequency: &weekly, Hour: &hour}))

	got, _, err := svc.Get(ctx, rem.ID)
	require.NoError(t, err)
	require.True(t, got.Enabled)
	require.NotEqual(t, old, got.NotificationID)
	require.Contains(t, sched.cancelled, old)
	require.Equal(t,
		domain.WeeklyTrigger{Weekday: domain.DefaultWeekday, Hour: 18, Minute: 0},
		sched.scheduled[got.NotificationID],
		"trigger is rebuilt from the merged reminder",
	)
}

func TestEdit_DisableClearsIdentifier(t *testing.T) {
	ctx := context.Background()
	svc, sched, _ := newTestService(t)

	rem := mustCreate(t, svc, CreateInput{
		Frequency: domain.FrequencyDaily, Hour: 9, Minute: 0,
	})

	off := false
	require.NoError(t, svc.Edit(ctx, rem.ID, Patch{Enabled: &off}))

	got, _, err := svc.Get(ctx, rem.ID)
	require.NoError(t, err)
	require.False(t, got.Enabled)
	require.Empty(t, got.NotificationID)
	require.Empty(t, sched.scheduled)
}

func TestEdit_MissingIDTouchesNothing(t *testing.T) {
	ctx := context.Background()
	svc, sched, _ := newTestService(t)

	rem := mustCreate(t, svc, CreateInput{
		Frequency: domain.FrequencyDaily, Hour: 9, Minute: 0,
	})

	title := "changed"
	require.NoError(t, svc.Edit(ctx, "missing", Patch{Title: &title}))

	all, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	require.Equal(t, rem, all[0])
	require.Empty(t, sched.cancelled, "edit of a missing id must not touch the scheduler")
}

func TestRemove_CancelsAndDeletes(t *testing.T) {
	ctx := context.Background()
	svc, sched, _ := newTestService(t)

	rem := mustCreate(t, svc, CreateInput{
		Frequency: domain.FrequencyOnce, Hour: 23, Minute: 59,
	})

	require.NoError(t, svc.Remove(ctx, rem.ID))
	require.Contains(t, sched.cancelled, rem.NotificationID)

	_, ok, err := svc.Get(ctx, rem.ID)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestRemove_DisabledReminderDoesNotCancel(t *testing.T) {
	ctx := context.Background()
	svc, sched, _ := newTestService(t)

	rem := mustCreate(t, svc, CreateInput{
		Frequency: domain.FrequencyDaily, Hour: 9, Minute: 0,
	})
	require.NoError(t, svc.Toggle(ctx, rem.ID)) // disable; one cancel happens here
	cancelsAfterToggle := len(sched.cancelled)

	require.NoError(t, svc.Remove(ctx, rem.ID))
	require.Len(t, sched.cancelled, cancelsAfterToggle, "no identifier held, so no cancel on remove")
}

// enabled ⇔ notificationId must hold after any sequence of operations.
func TestInvariant_EnabledIffNotificationID(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t)

	rem := mustCreate(t, svc, CreateInput{
		Frequency: domain.FrequencyWeekly, Weekday: 3, Hour: 7, Minute: 30,
	})

	off := false
	on := true
	minute := 45
	steps := []func() error{
		func() error { return svc.Toggle(ctx, rem.ID) },
		func() error { return svc.Edit(ctx, rem.ID, Patch{Enabled: &on}) },
		func() error { return svc.Edit(ctx, rem.ID, Patch{Minute: &minute}) },
		func() error { return svc.Edit(ctx, rem.ID, Patch{Enabled: &off}) },
		func() error { return svc.Toggle(ctx, rem.ID) },
	}

	for i, step := range steps {
		require.NoError(t, step(), "step %d", i)
		got, ok, err := svc.Get(ctx, rem.ID)
		require.NoError(t, err)
		require.True(t, ok)
		require.Equal(t, got.Enabled, got.NotificationID != "",
			"step %d: enabled=%v but notificationId=%q", i, got.Enabled, got.NotificationID)
	}
}
