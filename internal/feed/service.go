package feed

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jmhodges/clock"
	"go.uber.org/zap"

	"github.com/umituz/notifykit/internal/domain"
	"github.com/umituz/notifykit/internal/kvstore"
)

const listKey = "notifications:list"

// SendOptions describes a feed entry to create and deliver.
type SendOptions struct {
	Title        string         `json:"title"`
	Body         string         `json:"body"`
	Data         map[string]any `json:"data,omitempty"`
	ScheduledFor *time.Time     `json:"scheduled_for,omitempty"`
}

// Snapshot is the feed state a UI renders from.
type Snapshot struct {
	Notifications []domain.Notification `json:"notifications"`
	UnreadCount   int                   `json:"unreadCount"`
	HasMore       bool                  `json:"hasMore"`
	Loading       bool                  `json:"loading"`
	LastError     string                `json:"error,omitempty"`
}

// Service owns the locally-recorded notification feed: a newest-first
// persisted list with read/unread tracking and pagination. Mutations
// swallow storage errors into the error slot and report success as a
// boolean, so a rendering layer never has to handle a throw.
type Service struct {
	kv       kvstore.Store
	delivery *Delivery
	clk      clock.Clock
	log      *zap.Logger
	pageSize int

	mu      sync.Mutex
	page    []domain.Notification
	unread  int
	hasMore bool
	loading bool
	lastErr string
}

func NewService(kv kvstore.Store, delivery *Delivery, clk clock.Clock, log *zap.Logger, pageSize int) *Service {
	if pageSize <= 0 {
		pageSize = 20
	}
	return &Service{
		kv:       kv,
		delivery: delivery,
		clk:      clk,
		log:      log,
		pageSize: pageSize,
		hasMore:  true,
	}
}

// Send creates a feed entry, prepends it to the persisted list, and hands
// it to delivery. A delivery failure does not roll the entry back — the
// local record always wins.
func (s *Service) Send(ctx context.Context, opts SendOptions) (domain.Notification, bool) {
	s.setError("")

	n := domain.Notification{
		ID:           uuid.NewString(),
		Title:        opts.Title,
		Body:         opts.Body,
		Data:         opts.Data,
		ScheduledFor: opts.ScheduledFor,
		CreatedAt:    s.clk.Now().UTC(),
	}

	all, err := s.loadAll(ctx)
	if err != nil {
		s.fail("load notifications", err)
		return domain.Notification{}, false
	}
	if err := s.saveAll(ctx, append([]domain.Notification{n}, all...)); err != nil {
		s.fail("persist notification", err)
		return domain.Notification{}, false
	}

	s.delivery.Deliver(ctx, n)

	s.mu.Lock()
	s.page = append([]domain.Notification{n}, s.page...)
	s.unread++
	s.mu.Unlock()

	return n, true
}

// MarkRead flags one entry as read. Marking an already-read entry changes
// nothing. Returns false only on storage failure.
func (s *Service) MarkRead(ctx context.Context, id string) bool {
	all, err := s.loadAll(ctx)
	if err != nil {
		s.fail("load notifications", err)
		return false
	}

	wasUnread := false
	for i := range all {
		if all[i].ID == id && !all[i].Read {
			all[i].Read = true
			wasUnread = true
		}
	}
	if wasUnread {
		if err := s.saveAll(ctx, all); err != nil {
			s.fail("persist notifications", err)
			return false
		}
		s.mu.Lock()
		if s.unread > 0 {
			s.unread--
		}
		for i := range s.page {
			if s.page[i].ID == id {
				s.page[i].Read = true
			}
		}
		s.mu.Unlock()
	}
	return true
}

// MarkAllRead flags every entry as read.
func (s *Service) MarkAllRead(ctx context.Context) bool {
	all, err := s.loadAll(ctx)
	if err != nil {
		s.fail("load notifications", err)
		return false
	}
	for i := range all {
		all[i].Read = true
	}
	if err := s.saveAll(ctx, all); err != nil {
		s.fail("persist notifications", err)
		return false
	}

	s.mu.Lock()
	s.unread = 0
	for i := range s.page {
		s.page[i].Read = true
	}
	s.mu.Unlock()
	return true
}

// Delete removes an entry. Deleting an unread entry decrements the unread
// counter by exactly one, never below zero.
func (s *Service) Delete(ctx context.Context, id string) bool {
	all, err := s.loadAll(ctx)
	if err != nil {
		s.fail("load notifications", err)
		return false
	}

	deletedUnread := false
	filtered := all[:0]
	for _, n := range all {
		if n.ID == id {
			deletedUnread = !n.Read
			continue
		}
		filtered = append(filtered, n)
	}
	if err := s.saveAll(ctx, filtered); err != nil {
		s.fail("persist notifications", err)
		return false
	}

	s.mu.Lock()
	kept := s.page[:0]
	for _, n := range s.page {
		if n.ID != id {
			kept = append(kept, n)
		}
	}
	s.page = kept
	if deletedUnread && s.unread > 0 {
		s.unread--
	}
	s.mu.Unlock()
	return true
}

// Refresh loads the full persisted list, exposes the first page, and
// computes the unread count over the entire list.
func (s *Service) Refresh(ctx context.Context) error {
	s.mu.Lock()
	s.loading = true
	s.lastErr = ""
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.loading = false
		s.mu.Unlock()
	}()

	all, err := s.loadAll(ctx)
	if err != nil {
		s.fail("load notifications", err)
		return err
	}

	unread := 0
	for _, n := range all {
		if !n.Read {
			unread++
		}
	}

	page := all
	if len(page) > s.pageSize {
		page = page[:s.pageSize]
	}

	s.mu.Lock()
	s.page = append([]domain.Notification(nil), page...)
	s.unread = unread
	s.hasMore = len(all) > s.pageSize
	s.mu.Unlock()
	return nil
}

// LoadMore appends the next page. It is a no-op while a load is in flight
// or when nothing more exists — the guard against duplicate pagination
// requests from rapid UI events.
func (s *Service) LoadMore(ctx context.Context) error {
	s.mu.Lock()
	if s.loading || !s.hasMore {
		s.mu.Unlock()
		return nil
	}
	s.loading = true
	s.lastErr = ""
	offset := len(s.page)
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.loading = false
		s.mu.Unlock()
	}()

	all, err := s.loadAll(ctx)
	if err != nil {
		s.fail("load notifications", err)
		return err
	}

	end := offset + s.pageSize
	if end > len(all) {
		end = len(all)
	}
	var more []domain.Notification
	if offset < len(all) {
		more = all[offset:end]
	}

	s.mu.Lock()
	s.page = append(s.page, more...)
	s.hasMore = len(all) > end
	s.mu.Unlock()
	return nil
}

// State returns a copy of the current feed state.
func (s *Service) State() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		Notifications: append([]domain.Notification(nil), s.page...),
		UnreadCount:   s.unread,
		HasMore:       s.hasMore,
		Loading:       s.loading,
		LastError:     s.lastErr,
	}
}

// DeliveryStatus exposes the recorded delivery outcome for an entry.
func (s *Service) DeliveryStatus(ctx context.Context, id string) (domain.DeliveryRecord, bool) {
	return s.delivery.Status(ctx, id)
}

func (s *Service) loadAll(ctx context.Context) ([]domain.Notification, error) {
	raw, ok, err := s.kv.Get(ctx, listKey)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	var all []domain.Notification
	if err := json.Unmarshal([]byte(raw), &all); err != nil {
		return nil, err
	}
	return all, nil
}

func (s *Service) saveAll(ctx context.Context, all []domain.Notification) error {
	raw, err := json.Marshal(all)
	if err != nil {
		return err
	}
	return s.kv.Set(ctx, listKey, string(raw))
}

func (s *Service) fail(what string, err error) {
	s.log.Error(what+" failed", zap.Error(err))
	s.setError(what + " failed")
}

func (s *Service) setError(msg string) {
	s.mu.Lock()
	s.lastErr = msg
	s.mu.Unlock()
}
