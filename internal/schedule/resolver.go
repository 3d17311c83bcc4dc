package schedule

import (
	"fmt"
	"regexp"
	"time"
)

var timeOfDayPattern = regexp.MustCompile(`^([0-1][0-9]|2[0-3]):[0-5][0-9]$`)

// ValidTimeOfDay reports whether s is a well-formed "HH:MM" wall-clock time.
// Malformed values are a configuration error, never silently coerced.
func ValidTimeOfDay(s string) bool {
	return timeOfDayPattern.MatchString(s)
}

// Resolve converts a "HH:MM" wall-clock time in an IANA timezone to the UTC
// instant at which that time occurs on ref's calendar day as observed in that
// timezone.
//
// The conversion is a single-correction fixed point: pair the timezone's
// calendar date with the requested time read literally as UTC (a deliberately
// wrong first guess), format that guess back into the timezone, and shift the
// guess by the signed minute difference between requested and observed. The
// result is exact whenever the zone's UTC offset is the same at the guess and
// at the corrected instant; a request falling inside the skipped or repeated
// hour of a DST transition can land off by the DST delta. That window is a
// known limitation, kept rather than papered over with iteration.
func Resolve(timeOfDay, timezone string, ref time.Time) (time.Time, error) {
	if !ValidTimeOfDay(timeOfDay) {
		return time.Time{}, fmt.Errorf("invalid time of day %q: expected HH:MM", timeOfDay)
	}

	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return time.Time{}, fmt.Errorf("load timezone %s: %w", timezone, err)
	}

	// Calendar date for ref as observed in the target timezone.
	dateStr := ref.In(loc).Format("2006-01-02")

	guess, err := time.Parse("2006-01-02T15:04", dateStr+"T"+timeOfDay)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse first guess: %w", err)
	}

	var hours, minutes int
	fmt.Sscanf(timeOfDay, "%d:%d", &hours, &minutes)

	observed := guess.In(loc)
	desiredMinutes := hours*60 + minutes
	actualMinutes := observed.Hour()*60 + observed.Minute()

	diff := desiredMinutes - actualMinutes
	return guess.Add(time.Duration(diff) * time.Minute), nil
}

// NextOccurrence resolves timeOfDay against now's calendar day and, when the
// resolved instant has already passed, re-resolves against the following day.
func NextOccurrence(timeOfDay, timezone string, now time.Time) (time.Time, error) {
	next, err := Resolve(timeOfDay, timezone, now)
	if err != nil {
		return time.Time{}, err
	}

	if !next.After(now) {
		next, err = Resolve(timeOfDay, timezone, next.AddDate(0, 0, 1))
		if err != nil {
			return time.Time{}, err
		}
	}

	return next, nil
}
