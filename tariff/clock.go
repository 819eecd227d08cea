package tariff

import (
	"fmt"
	"strings"
)

// MinutesPerDay is the length of one calendar day in whole minutes.
const MinutesPerDay = 24 * 60

// =============================================================================
// CLOCK TIME - Minute-of-day index
// =============================================================================

// ClockTime is a wall-clock time of day expressed in minutes since midnight,
// in the range [0, MinutesPerDay).
type ClockTime int

// ParseClock parses an "HH:MM" (or "H:MM") time of day.
func ParseClock(s string) (ClockTime, error) {
	hh, mm, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok || len(hh) < 1 || len(hh) > 2 || len(mm) != 2 {
		return 0, &TimeFormatError{Input: s, Layout: "HH:MM"}
	}
	h, hok := atoi(hh)
	m, mok := atoi(mm)
	if !hok || !mok || h > 23 || m > 59 {
		return 0, &TimeFormatError{Input: s, Layout: "HH:MM"}
	}
	return ClockTime(h*60 + m), nil
}

// MustParseClock is like ParseClock but panics on malformed input.
// Intended for presets and tests.
func MustParseClock(s string) ClockTime {
	c, err := ParseClock(s)
	if err != nil {
		panic(err)
	}
	return c
}

// ToMinutes converts a well-formed time of day to its minute-of-day.
// Malformed input yields 0; callers validating input use ParseClock.
func ToMinutes(s string) int {
	c, err := ParseClock(s)
	if err != nil {
		return 0
	}
	return int(c)
}

// FormatMinutes renders a minute value as "HH:MM". The value is normalized
// modulo one day first, so 1500 renders as "01:00".
func FormatMinutes(minutes int) string {
	m := ((minutes % MinutesPerDay) + MinutesPerDay) % MinutesPerDay
	return fmt.Sprintf("%02d:%02d", m/60, m%60)
}

func (c ClockTime) String() string { return FormatMinutes(int(c)) }

// Valid reports whether c is inside one day.
func (c ClockTime) Valid() bool { return c >= 0 && c < MinutesPerDay }

func (c ClockTime) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

func (c *ClockTime) UnmarshalText(text []byte) error {
	parsed, err := ParseClock(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

func atoi(s string) (int, bool) {
	n := 0
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, false
		}
		n = n*10 + int(r-'0')
	}
	return n, true
}

// floorDiv divides rounding toward negative infinity.
func floorDiv(a, b int) int {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}
