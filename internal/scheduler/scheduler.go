package scheduler

import (
	"context"
	"time"

	"github.com/umituz/notifykit/internal/domain"
)

// Scheduled describes a notification currently held by the scheduler.
type Scheduled struct {
	ID      string         `json:"identifier"`
	Payload domain.Payload `json:"content"`
	Trigger domain.Trigger `json:"trigger"`
	NextAt  time.Time      `json:"nextAt"`
}

// Scheduler is the local-notification facility. Schedule returns an opaque
// identifier used for later cancellation. Cancel is idempotent: cancelling
// an identifier that is no longer scheduled is not an error.
type Scheduler interface {
	Schedule(ctx context.Context, payload domain.Payload, trigger domain.Trigger) (string, error)
	Cancel(ctx context.Context, id string) error
	CancelAll(ctx context.Context) error
	ListScheduled(ctx context.Context) ([]Scheduled, error)

	BadgeCount(ctx context.Context) (int, error)
	SetBadgeCount(ctx context.Context, count int) error

	HasPermission(ctx context.Context) (bool, error)
	RequestPermission(ctx context.Context) (bool, error)
}

// Presenter receives notifications when they fire. The display surface
// (OS notification center, test sink, plain log) lives behind it.
type Presenter interface {
	Present(ctx context.Context, s Scheduled) error
}
