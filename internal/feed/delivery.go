package feed

import (
	"context"
	"encoding/json"

	"github.com/jmhodges/clock"
	"go.uber.org/zap"

	"github.com/umituz/notifykit/internal/domain"
	"github.com/umituz/notifykit/internal/kvstore"
)

const deliveredKey = "notifications:delivered"

// Delivery hands feed entries to the platform scheduler for display —
// immediately, or at the entry's scheduled_for time — and records the
// outcome per entry id. Failures are recorded, never retried.
type Delivery struct {
	kv    kvstore.Store
	sched payloadScheduler
	clk   clock.Clock
	log   *zap.Logger
}

// payloadScheduler is the slice of the scheduler the delivery path needs.
type payloadScheduler interface {
	Schedule(ctx context.Context, payload domain.Payload, trigger domain.Trigger) (string, error)
}

func NewDelivery(kv kvstore.Store, sched payloadScheduler, clk clock.Clock, log *zap.Logger) *Delivery {
	return &Delivery{kv: kv, sched: sched, clk: clk, log: log}
}

// Deliver schedules the entry for display and records delivered/failed
// status. The error is consumed here: the feed entry already exists and
// stays listed whatever happens to the platform notification.
func (d *Delivery) Deliver(ctx context.Context, n domain.Notification) {
	at := d.clk.Now()
	if n.ScheduledFor != nil {
		at = *n.ScheduledFor
	}

	payload := domain.Payload{
		Title: n.Title,
		Body:  n.Body,
		Data:  map[string]any{"notificationId": n.ID},
		Sound: true,
	}

	status := domain.DeliveryDelivered
	if _, err := d.sched.Schedule(ctx, payload, domain.DateTrigger{At: at}); err != nil {
		d.log.Warn("delivery failed", zap.String("notification", n.ID), zap.Error(err))
		status = domain.DeliveryFailed
	}

	d.recordStatus(ctx, n.ID, status)
}

// Status returns the recorded delivery outcome for an entry.
func (d *Delivery) Status(ctx context.Context, id string) (domain.DeliveryRecord, bool) {
	records := d.loadStatuses(ctx)
	rec, ok := records[id]
	return rec, ok
}

func (d *Delivery) recordStatus(ctx context.Context, id string, status domain.DeliveryStatus) {
	records := d.loadStatuses(ctx)
	records[id] = domain.DeliveryRecord{
		Status:      status,
		DeliveredAt: d.clk.Now().UTC(),
	}

	raw, err := json.Marshal(records)
	if err != nil {
		d.log.Warn("encode delivery statuses failed", zap.Error(err))
		return
	}
	if err := d.kv.Set(ctx, deliveredKey, string(raw)); err != nil {
		d.log.Warn("persist delivery status failed", zap.String("notification", id), zap.Error(err))
	}
}

func (d *Delivery) loadStatuses(ctx context.Context) map[string]domain.DeliveryRecord {
	records := make(map[string]domain.DeliveryRecord)
	raw, ok, err := d.kv.Get(ctx, deliveredKey)
	if err != nil || !ok {
		return records
	}
	if err := json.Unmarshal([]byte(raw), &records); err != nil {
		return make(map[string]domain.DeliveryRecord)
	}
	return records
}
