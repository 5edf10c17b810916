package domain

import "testing"

func TestParseHHMM(t *testing.T) {
	tests := []struct {
		in      string
		hour    int
		minute  int
		wantErr bool
	}{
		{"09:00", 9, 0, false},
		{"23:59", 23, 59, false},
		{" 7:05 ", 7, 5, false},
		{"24:00", 0, 0, true},
		{"12:60", 0, 0, true},
		{"noon", 0, 0, true},
		{"", 0, 0, true},
	}
	for _, tc := range tests {
		h, m, err := ParseHHMM(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Fatalf("ParseHHMM(%q): expected error", tc.in)
			}
			continue
		}
		if err != nil {
			t.Fatalf("ParseHHMM(%q): %v", tc.in, err)
		}
		if h != tc.hour || m != tc.minute {
			t.Fatalf("ParseHHMM(%q) = %d:%d, want %d:%d", tc.in, h, m, tc.hour, tc.minute)
		}
	}
}

func TestFormatHHMM(t *testing.T) {
	if got := FormatHHMM(9, 5); got != "09:05" {
		t.Fatalf("want 09:05, got %s", got)
	}
	if got := (QuietHours{StartHour: 22, EndHour: 7}).Window(); got != "22:00–07:00" {
		t.Fatalf("want 22:00–07:00, got %s", got)
	}
}
