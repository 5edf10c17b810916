package domain

import (
	"errors"
	"testing"
	"time"
)

func at(t *testing.T, y int, m time.Month, d, hh, mm int) time.Time {
	t.Helper()
	return time.Date(y, m, d, hh, mm, 0, 0, time.UTC)
}

func TestBuildTrigger_OncePastRollsToTomorrow(t *testing.T) {
	// 2025-05-05 10:30 UTC, reminder at 09:00 → tomorrow 09:00
	now := at(t, 2025, time.May, 5, 10, 30)
	r := Reminder{Frequency: FrequencyOnce, Hour: 9, Minute: 0}

	trig, err := BuildTrigger(r, now)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	dt, ok := trig.(DateTrigger)
	if !ok {
		t.Fatalf("want DateTrigger, got %T", trig)
	}
	want := at(t, 2025, time.May, 6, 9, 0)
	if !dt.At.Equal(want) {
		t.Fatalf("want %v, got %v", want, dt.At)
	}
	if dt.Repeats() {
		t.Fatal("once trigger must not repeat")
	}
}

func TestBuildTrigger_OnceFutureStaysToday(t *testing.T) {
	now := at(t, 2025, time.May, 5, 8, 0)
	r := Reminder{Frequency: FrequencyOnce, Hour: 9, Minute: 15}

	trig, err := BuildTrigger(r, now)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	want := at(t, 2025, time.May, 5, 9, 15)
	if got := trig.(DateTrigger).At; !got.Equal(want) {
		t.Fatalf("want %v, got %v", want, got)
	}
}

func TestBuildTrigger_OnceExactNowRollsToTomorrow(t *testing.T) {
	// "not strictly in the future" includes the current instant
	now := at(t, 2025, time.May, 5, 9, 0)
	r := Reminder{Frequency: FrequencyOnce, Hour: 9, Minute: 0}

	trig, err := BuildTrigger(r, now)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	want := at(t, 2025, time.May, 6, 9, 0)
	if got := trig.(DateTrigger).At; !got.Equal(want) {
		t.Fatalf("want %v, got %v", want, got)
	}
}

func TestBuildTrigger_RepeatingShapes(t *testing.T) {
	now := at(t, 2025, time.May, 5, 12, 0)

	tests := []struct {
		name string
		rem  Reminder
		want Trigger
	}{
		{
			name: "daily",
			rem:  Reminder{Frequency: FrequencyDaily, Hour: 9, Minute: 0},
			want: DailyTrigger{Hour: 9, Minute: 0},
		},
		{
			name: "weekly",
			rem:  Reminder{Frequency: FrequencyWeekly, Weekday: 5, Hour: 18, Minute: 30},
			want: WeeklyTrigger{Weekday: 5, Hour: 18, Minute: 30},
		},
		{
			name: "weekly default weekday",
			rem:  Reminder{Frequency: FrequencyWeekly, Hour: 18, Minute: 30},
			want: WeeklyTrigger{Weekday: DefaultWeekday, Hour: 18, Minute: 30},
		},
		{
			name: "monthly",
			rem:  Reminder{Frequency: FrequencyMonthly, DayOfMonth: 15, Hour: 8, Minute: 0},
			want: MonthlyTrigger{Day: 15, Hour: 8, Minute: 0},
		},
		{
			name: "monthly default day",
			rem:  Reminder{Frequency: FrequencyMonthly, Hour: 8, Minute: 0},
			want: MonthlyTrigger{Day: DefaultDayOfMonth, Hour: 8, Minute: 0},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := BuildTrigger(tc.rem, now)
			if err != nil {
				t.Fatalf("build: %v", err)
			}
			if got != tc.want {
				t.Fatalf("want %#v, got %#v", tc.want, got)
			}
			if !got.Repeats() {
				t.Fatal("repeating trigger must report Repeats()=true")
			}
		})
	}
}

func TestBuildTrigger_UnknownFrequencyFailsLoudly(t *testing.T) {
	now := at(t, 2025, time.May, 5, 12, 0)
	_, err := BuildTrigger(Reminder{Frequency: "hourly", Hour: 9}, now)
	if !errors.Is(err, ErrUnknownFrequency) {
		t.Fatalf("want ErrUnknownFrequency, got %v", err)
	}
}

func TestNextOccurrence_Daily(t *testing.T) {
	trig := DailyTrigger{Hour: 9, Minute: 0}

	// before 09:00 → today
	next := NextOccurrence(trig, at(t, 2025, time.May, 5, 8, 0))
	if want := at(t, 2025, time.May, 5, 9, 0); !next.Equal(want) {
		t.Fatalf("want %v, got %v", want, next)
	}

	// after 09:00 → tomorrow
	next = NextOccurrence(trig, at(t, 2025, time.May, 5, 9, 0))
	if want := at(t, 2025, time.May, 6, 9, 0); !next.Equal(want) {
		t.Fatalf("want %v, got %v", want, next)
	}
}

func TestNextOccurrence_Weekly(t *testing.T) {
	// 2025-05-05 is a Monday. Weekday 2 = Monday (1=Sunday..7=Saturday).
	trig := WeeklyTrigger{Weekday: 2, Hour: 9, Minute: 0}

	// Monday 08:00 → same day 09:00
	next := NextOccurrence(trig, at(t, 2025, time.May, 5, 8, 0))
	if want := at(t, 2025, time.May, 5, 9, 0); !next.Equal(want) {
		t.Fatalf("want %v, got %v", want, next)
	}

	// Monday 10:00 → next Monday
	next = NextOccurrence(trig, at(t, 2025, time.May, 5, 10, 0))
	if want := at(t, 2025, time.May, 12, 9, 0); !next.Equal(want) {
		t.Fatalf("want %v, got %v", want, next)
	}
}

func TestNextOccurrence_MonthlySkipsShortMonths(t *testing.T) {
	trig := MonthlyTrigger{Day: 31, Hour: 9, Minute: 0}

	// 2025-01-31 10:00 is past January's slot; February has no 31st → March 31st.
	next := NextOccurrence(trig, at(t, 2025, time.January, 31, 10, 0))
	if want := at(t, 2025, time.March, 31, 9, 0); !next.Equal(want) {
		t.Fatalf("want %v, got %v", want, next)
	}
}
