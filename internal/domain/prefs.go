package domain

import "time"

// QuietHours is a daily window during which notification sound and
// vibration are suppressed. Wrap-around windows (22:00–07:00) are valid.
type QuietHours struct {
	Enabled     bool `json:"enabled"`
	StartHour   int  `json:"startHour"`
	StartMinute int  `json:"startMinute"`
	EndHour     int  `json:"endHour"`
	EndMinute   int  `json:"endMinute"`
}

// Contains reports whether t falls inside the quiet window.
// Always false when the window is disabled.
func (q QuietHours) Contains(t time.Time) bool {
	if !q.Enabled {
		return false
	}
	localM := t.Hour()*60 + t.Minute()
	fromM := q.StartHour*60 + q.StartMinute
	toM := q.EndHour*60 + q.EndMinute
	return InWindow(localM, fromM, toM)
}

// Window returns the "HH:MM–HH:MM" form of the quiet window.
func (q QuietHours) Window() string {
	return FormatHHMM(q.StartHour, q.StartMinute) + "–" + FormatHHMM(q.EndHour, q.EndMinute)
}

// CategoryPref toggles delivery per notification category.
type CategoryPref struct {
	Push  bool `json:"push"`
	InApp bool `json:"in_app"`
}

// Preferences are user-level notification settings.
type Preferences struct {
	Enabled    bool                    `json:"enabled"`
	Sound      bool                    `json:"sound"`
	Vibration  bool                    `json:"vibration"`
	QuietHours QuietHours              `json:"quietHours"`
	Categories map[string]CategoryPref `json:"categories,omitempty"`
}

// DefaultPreferences returns the out-of-the-box settings: everything on,
// quiet hours disabled with a 22:00–07:00 window.
func DefaultPreferences() Preferences {
	return Preferences{
		Enabled:   true,
		Sound:     true,
		Vibration: true,
		QuietHours: QuietHours{
			Enabled:   false,
			StartHour: 22,
			EndHour:   7,
		},
		Categories: map[string]CategoryPref{
			"reminders": {Push: true, InApp: true},
			"updates":   {Push: true, InApp: true},
			"alerts":    {Push: true, InApp: true},
		},
	}
}
