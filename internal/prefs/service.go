package prefs

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/umituz/notifykit/internal/domain"
	"github.com/umituz/notifykit/internal/kvstore"
)

const storageKey = "notifications:preferences"

// Patch is a partial preferences update; nil fields are left untouched.
// QuietHours and Categories merge key-by-key instead of replacing the
// nested object wholesale.
type Patch struct {
	Enabled    *bool                          `json:"enabled,omitempty"`
	Sound      *bool                          `json:"sound,omitempty"`
	Vibration  *bool                          `json:"vibration,omitempty"`
	QuietHours *QuietHoursPatch               `json:"quietHours,omitempty"`
	Categories map[string]domain.CategoryPref `json:"categories,omitempty"`
}

// QuietHoursPatch updates individual quiet-hours fields. Start/End accept
// "HH:MM" strings and take precedence over the numeric fields.
type QuietHoursPatch struct {
	Enabled     *bool   `json:"enabled,omitempty"`
	StartHour   *int    `json:"startHour,omitempty"`
	StartMinute *int    `json:"startMinute,omitempty"`
	EndHour     *int    `json:"endHour,omitempty"`
	EndMinute   *int    `json:"endMinute,omitempty"`
	Start       *string `json:"start,omitempty"`
	End         *string `json:"end,omitempty"`
}

// Service persists user notification preferences. Reads always succeed:
// missing or partially-written records are merged over defaults so no
// field is ever absent.
type Service struct {
	kv  kvstore.Store
	log *zap.Logger
}

func NewService(kv kvstore.Store, log *zap.Logger) *Service {
	return &Service{kv: kv, log: log}
}

// Get returns the persisted preferences merged over defaults. Storage or
// decode failures degrade to defaults.
func (s *Service) Get(ctx context.Context) domain.Preferences {
	prefs := domain.DefaultPreferences()

	raw, ok, err := s.kv.Get(ctx, storageKey)
	if err != nil {
		s.log.Warn("load preferences failed", zap.Error(err))
		return prefs
	}
	if !ok {
		return prefs
	}

	// Unmarshalling over the defaults keeps any field the persisted
	// record is missing.
	if err := json.Unmarshal([]byte(raw), &prefs); err != nil {
		s.log.Warn("decode preferences failed", zap.Error(err))
		return domain.DefaultPreferences()
	}
	return prefs
}

// Load is the explicit-result variant of Get: found=false means no record
// exists yet, err means the store failed. Get remains the convenience path
// for callers that render defaults either way.
func (s *Service) Load(ctx context.Context) (domain.Preferences, bool, error) {
	raw, ok, err := s.kv.Get(ctx, storageKey)
	if err != nil {
		return domain.Preferences{}, false, err
	}
	if !ok {
		return domain.DefaultPreferences(), false, nil
	}

	prefs := domain.DefaultPreferences()
	if err := json.Unmarshal([]byte(raw), &prefs); err != nil {
		return domain.Preferences{}, false, fmt.Errorf("decode preferences: %w", err)
	}
	return prefs, true, nil
}

// Update shallow-merges the patch onto the current preferences and
// persists the result. Returns false on storage failure; the error itself
// is logged, not surfaced.
func (s *Service) Update(ctx context.Context, patch Patch) bool {
	prefs := s.Get(ctx)

	if patch.Enabled != nil {
		prefs.Enabled = *patch.Enabled
	}
	if patch.Sound != nil {
		prefs.Sound = *patch.Sound
	}
	if patch.Vibration != nil {
		prefs.Vibration = *patch.Vibration
	}
	if qh := patch.QuietHours; qh != nil {
		if qh.Enabled != nil {
			prefs.QuietHours.Enabled = *qh.Enabled
		}
		if qh.StartHour != nil {
			prefs.QuietHours.StartHour = *qh.StartHour
		}
		if qh.StartMinute != nil {
			prefs.QuietHours.StartMinute = *qh.StartMinute
		}
		if qh.EndHour != nil {
			prefs.QuietHours.EndHour = *qh.EndHour
		}
		if qh.EndMinute != nil {
			prefs.QuietHours.EndMinute = *qh.EndMinute
		}
		if qh.Start != nil {
			h, m, err := domain.ParseHHMM(*qh.Start)
			if err != nil {
				s.log.Warn("invalid quiet-hours start", zap.String("start", *qh.Start), zap.Error(err))
				return false
			}
			prefs.QuietHours.StartHour, prefs.QuietHours.StartMinute = h, m
		}
		if qh.End != nil {
			h, m, err := domain.ParseHHMM(*qh.End)
			if err != nil {
				s.log.Warn("invalid quiet-hours end", zap.String("end", *qh.End), zap.Error(err))
				return false
			}
			prefs.QuietHours.EndHour, prefs.QuietHours.EndMinute = h, m
		}
	}
	if len(patch.Categories) > 0 {
		if prefs.Categories == nil {
			prefs.Categories = make(map[string]domain.CategoryPref)
		}
		for name, cat := range patch.Categories {
			prefs.Categories[name] = cat
		}
	}

	raw, err := json.Marshal(prefs)
	if err != nil {
		s.log.Error("encode preferences failed", zap.Error(err))
		return false
	}
	if err := s.kv.Set(ctx, storageKey, string(raw)); err != nil {
		s.log.Error("persist preferences failed", zap.Error(err))
		return false
	}

	s.log.Debug("preferences updated",
		zap.Bool("enabled", prefs.Enabled),
		zap.Bool("quiet_hours", prefs.QuietHours.Enabled),
		zap.String("quiet_window", prefs.QuietHours.Window()),
	)
	return true
}

// InQuietHours reports whether t falls inside the configured quiet window.
func (s *Service) InQuietHours(ctx context.Context, t time.Time) bool {
	return s.Get(ctx).QuietHours.Contains(t)
}

// Reset drops the persisted record, restoring defaults on next read.
func (s *Service) Reset(ctx context.Context) error {
	return s.kv.Remove(ctx, storageKey)
}
