package domain

import (
	"fmt"
	"time"
)

// Trigger tells the scheduler when and how often to fire a notification.
// It is a closed set of variants; BuildTrigger matches frequencies
// exhaustively and refuses unknown values instead of degrading silently.
type Trigger interface {
	// Repeats reports whether the trigger fires more than once.
	Repeats() bool

	isTrigger()
}

// DateTrigger fires once at an absolute instant.
type DateTrigger struct {
	At time.Time `json:"at"`
}

// DailyTrigger fires every day at Hour:Minute.
type DailyTrigger struct {
	Hour   int `json:"hour"`
	Minute int `json:"minute"`
}

// WeeklyTrigger fires every week on Weekday (1=Sunday..7=Saturday) at Hour:Minute.
type WeeklyTrigger struct {
	Weekday int `json:"weekday"`
	Hour    int `json:"hour"`
	Minute  int `json:"minute"`
}

// MonthlyTrigger fires every month on Day at Hour:Minute.
// Months without that day are skipped.
type MonthlyTrigger struct {
	Day    int `json:"day"`
	Hour   int `json:"hour"`
	Minute int `json:"minute"`
}

func (DateTrigger) isTrigger()    {}
func (DailyTrigger) isTrigger()   {}
func (WeeklyTrigger) isTrigger()  {}
func (MonthlyTrigger) isTrigger() {}

func (DateTrigger) Repeats() bool    { return false }
func (DailyTrigger) Repeats() bool   { return true }
func (WeeklyTrigger) Repeats() bool  { return true }
func (MonthlyTrigger) Repeats() bool { return true }

// BuildTrigger maps a reminder's frequency and time-of-day fields to a
// trigger. For "once" the target is today at Hour:Minute; if that instant
// is not strictly in the future it rolls over to tomorrow.
func BuildTrigger(r Reminder, now time.Time) (Trigger, error) {
	switch r.Frequency {
	case FrequencyOnce:
		at := time.Date(now.Year(), now.Month(), now.Day(), r.Hour, r.Minute, 0, 0, now.Location())
		if !at.After(now) {
			at = at.AddDate(0, 0, 1)
		}
		return DateTrigger{At: at}, nil

	case FrequencyDaily:
		return DailyTrigger{Hour: r.Hour, Minute: r.Minute}, nil

	case FrequencyWeekly:
		wd := r.Weekday
		if wd == 0 {
			wd = DefaultWeekday
		}
		return WeeklyTrigger{Weekday: wd, Hour: r.Hour, Minute: r.Minute}, nil

	case FrequencyMonthly:
		day := r.DayOfMonth
		if day == 0 {
			day = DefaultDayOfMonth
		}
		return MonthlyTrigger{Day: day, Hour: r.Hour, Minute: r.Minute}, nil

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFrequency, r.Frequency)
	}
}

// NextOccurrence computes the next instant a trigger fires strictly after now.
// For a DateTrigger the stored instant is returned as-is, even if past;
// the scheduler fires overdue one-shot triggers immediately.
func NextOccurrence(t Trigger, now time.Time) time.Time {
	switch tr := t.(type) {
	case DateTrigger:
		return tr.At

	case DailyTrigger:
		next := time.Date(now.Year(), now.Month(), now.Day(), tr.Hour, tr.Minute, 0, 0, now.Location())
		if !next.After(now) {
			next = next.AddDate(0, 0, 1)
		}
		return next

	case WeeklyTrigger:
		next := time.Date(now.Year(), now.Month(), now.Day(), tr.Hour, tr.Minute, 0, 0, now.Location())
		for i := 0; i < 8; i++ {
			if int(next.Weekday())+1 == tr.Weekday && next.After(now) {
				return next
			}
			next = next.AddDate(0, 0, 1)
		}
		return next

	case MonthlyTrigger:
		// Walk month by month; skip months that don't contain the day.
		first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
		for i := 0; i < 48; i++ {
			month := first.AddDate(0, i, 0)
			next := time.Date(month.Year(), month.Month(), tr.Day, tr.Hour, tr.Minute, 0, 0, now.Location())
			if next.Month() != month.Month() {
				continue // day overflowed into the next month
			}
			if next.After(now) {
				return next
			}
		}
		return now.AddDate(0, 1, 0)

	default:
		return now
	}
}
