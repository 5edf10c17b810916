package domain

import (
	"errors"
	"fmt"
	"time"
)

// Frequency describes how often a reminder fires.
type Frequency string

const (
	FrequencyOnce    Frequency = "once"
	FrequencyDaily   Frequency = "daily"
	FrequencyWeekly  Frequency = "weekly"
	FrequencyMonthly Frequency = "monthly"
)

// Defaults applied when a weekly/monthly reminder leaves the field unset.
const (
	DefaultWeekday    = 2 // Monday (1=Sunday..7=Saturday)
	DefaultDayOfMonth = 1
)

var (
	ErrUnknownFrequency = errors.New("unknown frequency")
	ErrInvalidTime      = errors.New("invalid time of day")
)

// Reminder is a user-created schedule for a local notification.
// Weekday and DayOfMonth are meaningful only for weekly/monthly
// frequencies; zero means "unset" and falls back to the defaults above.
type Reminder struct {
	ID             string    `json:"id"`
	Title          string    `json:"title"`
	Body           string    `json:"body"`
	Frequency      Frequency `json:"frequency"`
	Hour           int       `json:"hour"`
	Minute         int       `json:"minute"`
	Weekday        int       `json:"weekday,omitempty"`
	DayOfMonth     int       `json:"dayOfMonth,omitempty"`
	Enabled        bool      `json:"enabled"`
	NotificationID string    `json:"notificationId,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// Validate checks the time-of-day fields and the frequency value.
func (r *Reminder) Validate() error {
	if r.Hour < 0 || r.Hour > 23 || r.Minute < 0 || r.Minute > 59 {
		return fmt.Errorf("%w: %02d:%02d", ErrInvalidTime, r.Hour, r.Minute)
	}
	switch r.Frequency {
	case FrequencyOnce, FrequencyDaily, FrequencyWeekly, FrequencyMonthly:
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFrequency, r.Frequency)
	}
}
