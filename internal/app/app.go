package app

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmhodges/clock"
	"go.uber.org/zap"

	"github.com/umituz/notifykit/internal/channel"
	"github.com/umituz/notifykit/internal/config"
	"github.com/umituz/notifykit/internal/feed"
	"github.com/umituz/notifykit/internal/httpapi"
	"github.com/umituz/notifykit/internal/kvstore"
	"github.com/umituz/notifykit/internal/prefs"
	"github.com/umituz/notifykit/internal/reminder"
	"github.com/umituz/notifykit/internal/scheduler"
)

type App struct {
	cfg config.Config
	log *zap.Logger

	kv      kvstore.Store
	sched   *scheduler.Local
	httpSrv *http.Server
}

func New(cfg config.Config, log *zap.Logger) *App {
	return &App{cfg: cfg, log: log}
}

func (a *App) Run(ctx context.Context) error {
	a.log.Info("starting notifykit",
		zap.String("http", a.cfg.HTTPAddr),
		zap.String("db", a.cfg.DBPath),
	)

	// Open SQLite and run migrations.
	kv, err := kvstore.OpenSQLite(ctx, a.cfg.DBPath)
	if err != nil {
		a.log.Error("open sqlite failed", zap.Error(err))
		return err
	}
	a.kv = kv
	a.log.Info("sqlite ready")

	clk := clock.New()
	a.sched = scheduler.NewLocal(kv, scheduler.NewLogPresenter(a.log), clk, a.log)

	reminders := reminder.NewService(kv, a.sched, clk, a.log)
	prefsSvc := prefs.NewService(kv, a.log)
	channels := channel.NewManager(kv, clk, a.log)
	delivery := feed.NewDelivery(kv, a.sched, clk, a.log)
	feedSvc := feed.NewService(kv, delivery, clk, a.log, a.cfg.PageSize)

	handler := httpapi.NewHandler(reminders, feedSvc, prefsSvc, channels, a.sched, a.log)
	a.httpSrv = &http.Server{
		Addr:         a.cfg.HTTPAddr,
		Handler:      handler.Router(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Re-arm notifications for reminders that were enabled when the
	// process last stopped; scheduled items live in memory only.
	a.rearmReminders(ctx, reminders)

	go a.sched.Run(ctx)

	go func() {
		if err := a.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.log.Error("http server error", zap.Error(err))
		}
	}()

	<-ctx.Done()
	a.log.Info("shutdown signal received")

	// Create a short-lived shutdown context and cancel it immediately after use.
	shCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	err = a.httpSrv.Shutdown(shCtx)
	cancel()

	if err != nil {
		a.log.Warn("http server shutdown error", zap.Error(err))
	}
	if a.kv != nil {
		_ = a.kv.Close()
	}
	return nil
}

// rearmReminders re-schedules every enabled reminder on startup. Failures
// leave the stored reminder as-is; its identifier is refreshed on the next
// successful toggle or edit.
func (a *App) rearmReminders(ctx context.Context, reminders *reminder.Service) {
	all, err := reminders.List(ctx)
	if err != nil {
		a.log.Warn("list reminders on startup failed", zap.Error(err))
		return
	}
	enabled := true
	for _, rem := range all {
		if !rem.Enabled {
			continue
		}
		if err := reminders.Edit(ctx, rem.ID, reminder.Patch{Enabled: &enabled}); err != nil {
			a.log.Warn("re-arm reminder failed", zap.String("reminder", rem.ID), zap.Error(err))
		}
	}
}
