package scheduler

import (
	"context"

	"go.uber.org/zap"
)

// LogPresenter writes fired notifications to the log. It is the default
// sink when the embedding app does not provide a platform surface.
type LogPresenter struct {
	log *zap.Logger
}

func NewLogPresenter(log *zap.Logger) *LogPresenter {
	return &LogPresenter{log: log}
}

func (p *LogPresenter) Present(_ context.Context, s Scheduled) error {
	p.log.Info("notification fired",
		zap.String("id", s.ID),
		zap.String("title", s.Payload.Title),
		zap.String("body", s.Payload.Body),
	)
	return nil
}
