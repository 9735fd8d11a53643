package models

import (
	"fmt"
	"regexp"
	"strconv"
)

var clockRe = regexp.MustCompile(`^([01]?[0-9]|2[0-3]):([0-5][0-9])$`)

// ParseClock converts "HH:MM" (hour may be one digit) to minutes after midnight.
func ParseClock(s string) (int, error) {
	m := clockRe.FindStringSubmatch(s)
	if m == nil {
		return 0, fmt.Errorf("time %q is not in HH:MM format", s)
	}
	h, _ := strconv.Atoi(m[1])
	min, _ := strconv.Atoi(m[2])
	return h*60 + min, nil
}

// NormalizeClock rewrites a valid clock value with a two-digit hour.
func NormalizeClock(s string) (string, error) {
	mins, err := ParseClock(s)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%02d:%02d", mins/60, mins%60), nil
}

// ClassDuration returns the minutes from start to end. An end before the
// start wraps past midnight, so 23:00 to 01:00 is 120; equal times give 0.
func ClassDuration(start, end string) (int, error) {
	s, err := ParseClock(start)
	if err != nil {
		return 0, err
	}
	e, err := ParseClock(end)
	if err != nil {
		return 0, err
	}
	if e < s {
		e += 24 * 60
	}
	return e - s, nil
}
