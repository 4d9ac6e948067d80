package dates

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DICOM value formats.
const (
	DateFormat     = "20060102"       // DA
	DateTimeFormat = "20060102150405" // DT, without fractional seconds
)

// Shifter applies a constant calendar-day offset to DICOM date values. The
// offset is fixed for the lifetime of a run so intervals between fields and
// between files of the same study are preserved.
type Shifter struct {
	days int
}

// NewShifter returns a shifter applying a fixed day offset.
func NewShifter(days int) *Shifter {
	return &Shifter{days: days}
}

// NewAnchoredShifter derives the offset once from an anchor date: every
// date in the run moves by base minus anchor, expressed in whole days.
func NewAnchoredShifter(base, anchor time.Time) *Shifter {
	days := int(base.Sub(anchor).Hours() / 24)
	return &Shifter{days: days}
}

// Days returns the configured offset.
func (s *Shifter) Days() int {
	return s.days
}

// ShiftDate shifts a DA value (YYYYMMDD). Calendar arithmetic crosses
// month and year boundaries and handles leap days.
func (s *Shifter) ShiftDate(value string) (string, error) {
	if value == "" {
		return value, nil
	}
	if len(value) < 8 {
		return "", fmt.Errorf("unparseable date %q", value)
	}

	t, err := time.Parse(DateFormat, value[:8])
	if err != nil {
		return "", fmt.Errorf("unparseable date %q: %w", value, err)
	}

	return t.AddDate(0, 0, s.days).Format(DateFormat), nil
}

// ShiftDateTime shifts a DT value (YYYYMMDDHHMMSS with optional fractional
// seconds). The time-of-day component is preserved; fractional seconds are
// carried through untouched.
func (s *Shifter) ShiftDateTime(value string) (string, error) {
	if value == "" {
		return value, nil
	}

	base, frac, _ := strings.Cut(value, ".")
	if len(base) < 14 {
		// A bare date is a legal DT value.
		shifted, err := s.ShiftDate(base)
		if err != nil {
			return "", err
		}
		if frac != "" {
			shifted += "." + frac
		}
		return shifted, nil
	}

	t, err := time.Parse(DateTimeFormat, base[:14])
	if err != nil {
		return "", fmt.Errorf("unparseable datetime %q: %w", value, err)
	}

	shifted := t.AddDate(0, 0, s.days).Format(DateTimeFormat)
	if frac != "" {
		shifted += "." + frac
	}
	return shifted, nil
}

// CapAge caps a DICOM AS value at "90+" when it encodes an age over 89
// years: ages above that threshold are themselves identifying. Values it
// cannot interpret pass through unchanged.
func CapAge(value string) string {
	v := strings.TrimSpace(value)
	if len(v) < 2 || !strings.HasSuffix(v, "Y") {
		return value
	}

	years, err := strconv.Atoi(v[:len(v)-1])
	if err != nil {
		return value
	}
	if years > 89 {
		return "90+"
	}
	return value
}
