package clock

import (
	"errors"
	"testing"
	"time"
)

func mustLoad(t *testing.T, name string) *time.Location {
	t.Helper()
	loc, err := LoadLocation(name)
	if err != nil {
		t.Fatalf("LoadLocation(%q) failed: %v", name, err)
	}
	return loc
}

func TestToAbsolute_Taipei(t *testing.T) {
	n := NewWithNow(mustLoad(t, DefaultTimezone), nil)

	got, err := n.ToAbsolute("2025-08-20", "10:30")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := time.Date(2025, 8, 20, 2, 30, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("ToAbsolute = %v, want %v", got, want)
	}
	if got.Location() != time.UTC {
		t.Errorf("expected UTC location, got %v", got.Location())
	}
}

func TestRoundTrip(t *testing.T) {
	zones := []string{DefaultTimezone, "America/New_York", "Europe/London"}
	pairs := []struct {
		date string
		time string
	}{
		{"2024-01-01", "00:00"},
		{"2024-02-29", "23:59"},
		{"2024-03-09", "02:30"}, // day before the US spring-forward gap
		{"2024-03-10", "01:59"},
		{"2024-03-10", "03:00"},
		{"2024-11-03", "00:30"},
		{"2024-11-03", "01:30"}, // ambiguous in New York, first occurrence wins
		{"2024-11-03", "02:00"},
		{"2025-08-20", "10:30"},
		{"2025-12-31", "12:00"},
	}

	for _, zone := range zones {
		n := NewWithNow(mustLoad(t, zone), nil)
		for _, p := range pairs {
			t.Run(zone+"/"+p.date+"T"+p.time, func(t *testing.T) {
				abs, err := n.ToAbsolute(p.date, p.time)
				if err != nil {
					t.Fatalf("ToAbsolute failed: %v", err)
				}
				d, tm := n.ToLocal(abs)
				if d != p.date || tm != p.time {
					t.Errorf("round trip = (%s, %s), want (%s, %s)", d, tm, p.date, p.time)
				}
			})
		}
	}
}

func TestToAbsolute_DSTGap(t *testing.T) {
	n := NewWithNow(mustLoad(t, "America/New_York"), nil)

	_, err := n.ToAbsolute("2024-03-10", "02:30")
	if !errors.Is(err, ErrNonexistentLocalTime) {
		t.Errorf("expected ErrNonexistentLocalTime, got %v", err)
	}
}

func TestToAbsolute_Malformed(t *testing.T) {
	n := NewWithNow(mustLoad(t, DefaultTimezone), nil)

	tests := []struct {
		name    string
		date    string
		time    string
		wantErr error
	}{
		{"invalid month", "2024-13-01", "10:00", ErrInvalidDate},
		{"invalid day", "2023-02-29", "10:00", ErrInvalidDate},
		{"short year", "24-01-01", "10:00", ErrInvalidDate},
		{"slashes", "2024/01/01", "10:00", ErrInvalidDate},
		{"empty date", "", "10:00", ErrInvalidDate},
		{"hour 24", "2024-01-01", "24:00", ErrInvalidTime},
		{"minute 60", "2024-01-01", "10:60", ErrInvalidTime},
		{"single digit hour", "2024-01-01", "9:00", ErrInvalidTime},
		{"seconds", "2024-01-01", "10:00:00", ErrInvalidTime},
		{"empty time", "2024-01-01", "", ErrInvalidTime},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := n.ToAbsolute(tt.date, tt.time)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ToAbsolute(%q, %q) error = %v, want %v", tt.date, tt.time, err, tt.wantErr)
			}
		})
	}
}

func TestParseLocalDateTime(t *testing.T) {
	n := NewWithNow(mustLoad(t, DefaultTimezone), nil)

	got, err := n.ParseLocalDateTime("2025-08-20T10:30")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := time.Date(2025, 8, 20, 2, 30, 0, 0, time.UTC); !got.Equal(want) {
		t.Errorf("ParseLocalDateTime = %v, want %v", got, want)
	}

	for _, bad := range []string{"2025-08-20 10:30", "2025-08-20T10:30:00", "2025-08-20", "garbage"} {
		if _, err := n.ParseLocalDateTime(bad); err == nil {
			t.Errorf("ParseLocalDateTime(%q) expected error", bad)
		}
	}
}

func TestParseInstant(t *testing.T) {
	n := NewWithNow(mustLoad(t, DefaultTimezone), nil)

	got, err := n.ParseInstant("2025-08-20T10:30:00+08:00")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := time.Date(2025, 8, 20, 2, 30, 0, 0, time.UTC); !got.Equal(want) {
		t.Errorf("ParseInstant = %v, want %v", got, want)
	}

	if _, err := n.ParseInstant("2025-08-20T10:30"); !errors.Is(err, ErrInvalidInstant) {
		t.Errorf("expected ErrInvalidInstant, got %v", err)
	}
}

func TestRender(t *testing.T) {
	n := NewWithNow(mustLoad(t, DefaultTimezone), nil)

	r := n.Render(time.Date(2025, 8, 20, 2, 30, 0, 0, time.UTC))
	if r.Instant != "2025-08-20T02:30:00Z" {
		t.Errorf("Instant = %s", r.Instant)
	}
	if r.Local != "2025-08-20T10:30:00+08:00" {
		t.Errorf("Local = %s", r.Local)
	}
	if r.Date != "2025-08-20" || r.Time != "10:30" {
		t.Errorf("Date/Time = %s %s", r.Date, r.Time)
	}

	if n.RenderPtr(nil) != nil {
		t.Error("RenderPtr(nil) should be nil")
	}
}

func TestNow_IsUTC(t *testing.T) {
	fixed := time.Date(2025, 1, 1, 12, 0, 0, 0, time.FixedZone("X", 3600))
	n := NewWithNow(mustLoad(t, DefaultTimezone), func() time.Time { return fixed })

	now := n.Now()
	if now.Location() != time.UTC || !now.Equal(fixed) {
		t.Errorf("Now = %v, want %v in UTC", now, fixed)
	}
}

func TestLoadLocation_Unknown(t *testing.T) {
	if _, err := LoadLocation("Mars/Olympus"); err == nil {
		t.Error("expected error for unknown timezone")
	}
}
