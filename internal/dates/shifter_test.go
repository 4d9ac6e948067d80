package dates

import (
	"testing"
	"time"
)

func TestShiftDate(t *testing.T) {
	tests := []struct {
		name     string
		value    string
		days     int
		expected string
	}{
		{"backward 100 days", "20200101", -100, "20190923"},
		{"forward across month", "20200131", 1, "20200201"},
		{"forward across year", "20191231", 1, "20200101"},
		{"leap day forward", "20200228", 1, "20200229"},
		{"non-leap skips to march", "20190228", 1, "20190301"},
		{"leap day plus a year", "20200229", 365, "20210228"},
		{"zero offset", "20200615", 0, "20200615"},
		{"empty passes through", "", 42, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewShifter(tt.days).ShiftDate(tt.value)
			if err != nil {
				t.Fatalf("ShiftDate(%q) error: %v", tt.value, err)
			}
			if got != tt.expected {
				t.Errorf("ShiftDate(%q, %d) = %q, want %q", tt.value, tt.days, got, tt.expected)
			}
		})
	}
}

func TestShiftDateReversible(t *testing.T) {
	dates := []string{"20200229", "20200101", "19991231", "20210301", "20000228"}
	offsets := []int{1, 28, 365, 366, 1000, -1, -365}

	for _, d := range dates {
		for _, off := range offsets {
			forward, err := NewShifter(off).ShiftDate(d)
			if err != nil {
				t.Fatalf("shift %s by %d: %v", d, off, err)
			}
			back, err := NewShifter(-off).ShiftDate(forward)
			if err != nil {
				t.Fatalf("shift %s by %d: %v", forward, -off, err)
			}
			if back != d {
				t.Errorf("shift(%s, %+d) then %+d = %s, want original", d, off, -off, back)
			}
		}
	}
}

func TestShiftDateUnparseable(t *testing.T) {
	s := NewShifter(10)
	for _, v := range []string{"2020", "notadate", "20201340"} {
		if _, err := s.ShiftDate(v); err == nil {
			t.Errorf("ShiftDate(%q) expected error", v)
		}
	}
}

func TestShiftDateTime(t *testing.T) {
	tests := []struct {
		value    string
		days     int
		expected string
	}{
		{"20200101120530", -100, "20190923120530"},
		{"20200101120530.123456", -100, "20190923120530.123456"},
		{"20200229", 1, "20200301"},
		{"", 5, ""},
	}

	for _, tt := range tests {
		got, err := NewShifter(tt.days).ShiftDateTime(tt.value)
		if err != nil {
			t.Fatalf("ShiftDateTime(%q) error: %v", tt.value, err)
		}
		if got != tt.expected {
			t.Errorf("ShiftDateTime(%q, %d) = %q, want %q", tt.value, tt.days, got, tt.expected)
		}
	}
}

func TestNewAnchoredShifter(t *testing.T) {
	base := time.Date(1975, 1, 1, 0, 0, 0, 0, time.UTC)
	anchor := time.Date(1975, 1, 11, 0, 0, 0, 0, time.UTC)

	s := NewAnchoredShifter(base, anchor)
	if s.Days() != -10 {
		t.Fatalf("Days() = %d, want -10", s.Days())
	}

	got, err := s.ShiftDate("20200111")
	if err != nil {
		t.Fatal(err)
	}
	if got != "20200101" {
		t.Errorf("anchored shift = %q, want 20200101", got)
	}
}

func TestCapAge(t *testing.T) {
	tests := []struct {
		value    string
		expected string
	}{
		{"045Y", "045Y"},
		{"089Y", "089Y"},
		{"090Y", "90+"},
		{"102Y", "90+"},
		{"006M", "006M"},
		{"", ""},
		{"garbage", "garbage"},
	}

	for _, tt := range tests {
		if got := CapAge(tt.value); got != tt.expected {
			t.Errorf("CapAge(%q) = %q, want %q", tt.value, got, tt.expected)
		}
	}
}
