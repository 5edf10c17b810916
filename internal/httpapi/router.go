package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/umituz/notifykit/internal/channel"
	"github.com/umituz/notifykit/internal/feed"
	"github.com/umituz/notifykit/internal/prefs"
	"github.com/umituz/notifykit/internal/reminder"
	"github.com/umituz/notifykit/internal/scheduler"
)

// Handler serves the embedding surface: reminders, feed, preferences,
// channels, and a view onto the scheduler.
type Handler struct {
	reminders *reminder.Service
	feed      *feed.Service
	prefs     *prefs.Service
	channels  *channel.Manager
	sched     scheduler.Scheduler
	log       *zap.Logger
}

func NewHandler(
	reminders *reminder.Service,
	feedSvc *feed.Service,
	prefsSvc *prefs.Service,
	channels *channel.Manager,
	sched scheduler.Scheduler,
	log *zap.Logger,
) *Handler {
	return &Handler{
		reminders: reminders,
		feed:      feedSvc,
		prefs:     prefsSvc,
		channels:  channels,
		sched:     sched,
		log:       log,
	}
}

// Router builds the chi mux for the API.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PATCH", "DELETE"},
		AllowedHeaders: []string{"Content-Type"},
	}))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })

	r.Route("/v1", func(r chi.Router) {
		r.Route("/reminders", func(r chi.Router) {
			r.Get("/", h.listReminders)
			r.Post("/", h.createReminder)
			r.Patch("/{id}", h.editReminder)
			r.Delete("/{id}", h.removeReminder)
			r.Post("/{id}/toggle", h.toggleReminder)
		})

		r.Route("/notifications", func(r chi.Router) {
			r.Get("/", h.feedState)
			r.Post("/", h.sendNotification)
			r.Post("/load-more", h.loadMore)
			r.Post("/read-all", h.markAllRead)
			r.Post("/{id}/read", h.markRead)
			r.Delete("/{id}", h.deleteNotification)
		})

		r.Route("/preferences", func(r chi.Router) {
			r.Get("/", h.getPreferences)
			r.Patch("/", h.updatePreferences)
		})

		r.Route("/channels", func(r chi.Router) {
			r.Get("/", h.listChannels)
			r.Post("/", h.registerChannel)
			r.Post("/{id}/verify", h.verifyChannel)
		})

		r.Get("/scheduled", h.listScheduled)
		r.Post("/permissions/request", h.requestPermission)
	})

	return r
}
