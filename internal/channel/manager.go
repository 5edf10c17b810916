package channel

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmhodges/clock"
	"go.uber.org/zap"

	"github.com/umituz/notifykit/internal/domain"
	"github.com/umituz/notifykit/internal/kvstore"
)

const storageKey = "notifications:channels"

// Manager keeps the registered delivery channels. The list is append-only
// apart from the verified/active flags. Local channels have no external
// verification authority, so they register as verified.
type Manager struct {
	kv  kvstore.Store
	clk clock.Clock
	log *zap.Logger
}

func NewManager(kv kvstore.Store, clk clock.Clock, log *zap.Logger) *Manager {
	return &Manager{kv: kv, clk: clk, log: log}
}

// Register creates and persists a channel of the given type.
func (m *Manager) Register(ctx context.Context, typ domain.ChannelType, preferences map[string]any) (domain.Channel, error) {
	address := "in_app"
	if typ == domain.ChannelPush {
		address = "local:" + uuid.NewString()
	}

	ch := domain.Channel{
		ID:          fmt.Sprintf("%s_%s", typ, uuid.NewString()),
		Type:        typ,
		Address:     address,
		Preferences: preferences,
		IsVerified:  true,
		IsActive:    true,
		CreatedAt:   m.clk.Now().UTC(),
	}

	all, err := m.loadAll(ctx)
	if err != nil {
		return domain.Channel{}, err
	}
	if err := m.saveAll(ctx, append(all, ch)); err != nil {
		return domain.Channel{}, err
	}
	return ch, nil
}

// Verify flags a channel as verified. Returns false when the id is unknown.
func (m *Manager) Verify(ctx context.Context, id string) (bool, error) {
	all, err := m.loadAll(ctx)
	if err != nil {
		return false, err
	}
	for i := range all {
		if all[i].ID == id {
			all[i].IsVerified = true
			return true, m.saveAll(ctx, all)
		}
	}
	return false, nil
}

// Active returns channels that are both active and verified. The error is
// surfaced so callers can tell "no channels" from "load failed".
func (m *Manager) Active(ctx context.Context) ([]domain.Channel, error) {
	all, err := m.loadAll(ctx)
	if err != nil {
		return nil, err
	}
	var out []domain.Channel
	for _, ch := range all {
		if ch.IsActive && ch.IsVerified {
			out = append(out, ch)
		}
	}
	return out, nil
}

// Deactivate clears a channel's active flag. Unknown ids are a no-op.
func (m *Manager) Deactivate(ctx context.Context, id string) error {
	all, err := m.loadAll(ctx)
	if err != nil {
		return err
	}
	for i := range all {
		if all[i].ID == id {
			all[i].IsActive = false
			return m.saveAll(ctx, all)
		}
	}
	return nil
}

func (m *Manager) loadAll(ctx context.Context) ([]domain.Channel, error) {
	raw, ok, err := m.kv.Get(ctx, storageKey)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	var all []domain.Channel
	if err := json.Unmarshal([]byte(raw), &all); err != nil {
		return nil, fmt.Errorf("decode channels: %w", err)
	}
	return all, nil
}

func (m *Manager) saveAll(ctx context.Context, all []domain.Channel) error {
	raw, err := json.Marshal(all)
	if err != nil {
		return err
	}
	return m.kv.Set(ctx, storageKey, string(raw))
}
