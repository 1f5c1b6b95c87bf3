package timecalc_test

import (
	"testing"
	"time"

	"github.com/Tiliavir/timetrack/internal/timecalc"
)

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{0, "0s"},
		{45 * time.Second, "45s"},
		{time.Minute, "1m"},
		{90 * time.Second, "1m"},
		{time.Hour, "1h 0m"},
		{time.Hour + time.Minute + time.Second, "1h 1m"},
		{90 * time.Minute, "1h 30m"},
		{-90 * time.Minute, "-1h 30m"},
	}
	for _, tt := range tests {
		got := timecalc.FormatDuration(tt.d)
		if got != tt.want {
			t.Errorf("FormatDuration(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}

func TestFormatClock(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{0, "00:00"},
		{61 * time.Second, "00:01"},
		{8 * time.Hour, "08:00"},
		{-2*time.Hour - 30*time.Minute, "-02:30"},
		{30 * time.Hour, "30:00"},
	}
	for _, tt := range tests {
		got := timecalc.FormatClock(tt.d)
		if got != tt.want {
			t.Errorf("FormatClock(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}

func TestParseDate(t *testing.T) {
	got, err := timecalc.ParseDate("2021-12-24")
	if err != nil {
		t.Fatalf("ParseDate: %v", err)
	}
	want := time.Date(2021, 12, 24, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("ParseDate = %v, want %v", got, want)
	}

	if _, err := timecalc.ParseDate("24.12.2021"); err == nil {
		t.Error("ParseDate: expected error for non ISO date")
	}
}

func TestDayKeyUsesOwnOffset(t *testing.T) {
	// 23:30 at +02:00 is still the 1st locally although it is the 1st 21:30 UTC.
	loc := time.FixedZone("", 2*60*60)
	late := time.Date(2021, 1, 1, 23, 30, 0, 0, loc)
	if got := timecalc.DayKey(late); got != "2021-01-01" {
		t.Errorf("DayKey = %q, want %q", got, "2021-01-01")
	}
	if got := timecalc.DateOf(late); !got.Equal(time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("DateOf = %v", got)
	}
}

func TestDaysBetween(t *testing.T) {
	a := time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		b    time.Time
		want int
	}{
		{a, 0},
		{time.Date(2021, 1, 3, 0, 0, 0, 0, time.UTC), 2},
		{time.Date(2021, 3, 1, 12, 0, 0, 0, time.UTC), 59},
		{time.Date(2020, 12, 30, 0, 0, 0, 0, time.UTC), -2},
	}
	for _, tt := range tests {
		if got := timecalc.DaysBetween(a, tt.b); got != tt.want {
			t.Errorf("DaysBetween(%v, %v) = %d, want %d", a, tt.b, got, tt.want)
		}
	}
}

func TestWeekRange(t *testing.T) {
	// 2026-02-27 is a Friday (week 9).
	fri := time.Date(2026, 2, 27, 10, 0, 0, 0, time.UTC)
	monday, sunday := timecalc.WeekRange(fri)

	wantMonday := time.Date(2026, 2, 23, 0, 0, 0, 0, time.UTC)
	wantSunday := time.Date(2026, 3, 1, 23, 59, 59, 0, time.UTC)

	if !monday.Equal(wantMonday) {
		t.Errorf("WeekRange monday = %v, want %v", monday, wantMonday)
	}
	if !sunday.Equal(wantSunday) {
		t.Errorf("WeekRange sunday = %v, want %v", sunday, wantSunday)
	}
}

func TestISOWeekLabel(t *testing.T) {
	fri := time.Date(2026, 2, 27, 10, 0, 0, 0, time.UTC)
	got := timecalc.ISOWeekLabel(fri)
	if got != "2026-W09" {
		t.Errorf("ISOWeekLabel = %q, want %q", got, "2026-W09")
	}
}
