package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/umituz/notifykit/internal/domain"
	"github.com/umituz/notifykit/internal/feed"
	"github.com/umituz/notifykit/internal/prefs"
	"github.com/umituz/notifykit/internal/reminder"
)

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.log.Error("encode response failed", zap.Error(err))
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, msg string) {
	h.writeJSON(w, status, map[string]string{"error": msg})
}

// ----------------------
// Reminders
// ----------------------

func (h *Handler) listReminders(w http.ResponseWriter, r *http.Request) {
	all, err := h.reminders.List(r.Context())
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if all == nil {
		all = []domain.Reminder{}
	}
	h.writeJSON(w, http.StatusOK, all)
}

func (h *Handler) createReminder(w http.ResponseWriter, r *http.Request) {
	var in reminder.CreateInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	rem, err := h.reminders.Create(r.Context(), in)
	if err != nil {
		h.log.Error("create reminder failed", zap.Error(err))
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	h.writeJSON(w, http.StatusCreated, rem)
}

func (h *Handler) editReminder(w http.ResponseWriter, r *http.Request) {
	var patch reminder.Patch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.reminders.Edit(r.Context(), chi.URLParam(r, "id"), patch); err != nil {
		h.log.Error("edit reminder failed", zap.Error(err))
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) removeReminder(w http.ResponseWriter, r *http.Request) {
	if err := h.reminders.Remove(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.log.Error("remove reminder failed", zap.Error(err))
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) toggleReminder(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.reminders.Toggle(r.Context(), id); err != nil {
		h.log.Error("toggle reminder failed", zap.Error(err))
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	rem, ok, err := h.reminders.Get(r.Context(), id)
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	h.writeJSON(w, http.StatusOK, rem)
}

// ----------------------
// Feed
// ----------------------

func (h *Handler) feedState(w http.ResponseWriter, r *http.Request) {
	if err := h.feed.Refresh(r.Context()); err != nil {
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	h.writeJSON(w, http.StatusOK, h.feed.State())
}

func (h *Handler) sendNotification(w http.ResponseWriter, r *http.Request) {
	var opts feed.SendOptions
	if err := json.NewDecoder(r.Body).Decode(&opts); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	n, ok := h.feed.Send(r.Context(), opts)
	if !ok {
		h.writeError(w, http.StatusInternalServerError, h.feed.State().LastError)
		return
	}
	h.writeJSON(w, http.StatusCreated, n)
}

func (h *Handler) loadMore(w http.ResponseWriter, r *http.Request) {
	if err := h.feed.LoadMore(r.Context()); err != nil {
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	h.writeJSON(w, http.StatusOK, h.feed.State())
}

func (h *Handler) markRead(w http.ResponseWriter, r *http.Request) {
	if !h.feed.MarkRead(r.Context(), chi.URLParam(r, "id")) {
		h.writeError(w, http.StatusInternalServerError, h.feed.State().LastError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) markAllRead(w http.ResponseWriter, r *http.Request) {
	if !h.feed.MarkAllRead(r.Context()) {
		h.writeError(w, http.StatusInternalServerError, h.feed.State().LastError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) deleteNotification(w http.ResponseWriter, r *http.Request) {
	if !h.feed.Delete(r.Context(), chi.URLParam(r, "id")) {
		h.writeError(w, http.StatusInternalServerError, h.feed.State().LastError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ----------------------
// Preferences
// ----------------------

func (h *Handler) getPreferences(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.prefs.Get(r.Context()))
}

func (h *Handler) updatePreferences(w http.ResponseWriter, r *http.Request) {
	var patch prefs.Patch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if !h.prefs.Update(r.Context(), patch) {
		h.writeError(w, http.StatusInternalServerError, "failed to update preferences")
		return
	}
	h.writeJSON(w, http.StatusOK, h.prefs.Get(r.Context()))
}

// ----------------------
// Channels
// ----------------------

type registerChannelRequest struct {
	Type        domain.ChannelType `json:"channel_type"`
	Preferences map[string]any     `json:"preferences,omitempty"`
}

func (h *Handler) listChannels(w http.ResponseWriter, r *http.Request) {
	active, err := h.channels.Active(r.Context())
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if active == nil {
		active = []domain.Channel{}
	}
	h.writeJSON(w, http.StatusOK, active)
}

func (h *Handler) registerChannel(w http.ResponseWriter, r *http.Request) {
	var req registerChannelRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Type != domain.ChannelPush && req.Type != domain.ChannelInApp {
		h.writeError(w, http.StatusBadRequest, "channel_type must be push or in_app")
		return
	}

	ch, err := h.channels.Register(r.Context(), req.Type, req.Preferences)
	if err != nil {
		h.log.Error("register channel failed", zap.Error(err))
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	h.writeJSON(w, http.StatusCreated, ch)
}

func (h *Handler) verifyChannel(w http.ResponseWriter, r *http.Request) {
	ok, err := h.channels.Verify(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if !ok {
		h.writeError(w, http.StatusNotFound, "channel not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ----------------------
// Scheduler
// ----------------------

func (h *Handler) listScheduled(w http.ResponseWriter, r *http.Request) {
	items, err := h.sched.ListScheduled(r.Context())
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	h.writeJSON(w, http.StatusOK, items)
}

func (h *Handler) requestPermission(w http.ResponseWriter, r *http.Request) {
	granted, err := h.sched.RequestPermission(r.Context())
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]bool{"granted": granted})
}
