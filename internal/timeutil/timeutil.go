// Package timeutil provides the calendar arithmetic behind punch
// bucketing and range navigation. All functions are pure and take
// explicit reference times.
package timeutil

import (
	"fmt"
	"time"
)

const minutesInAnHour = 60

// ViewMode selects the reporting window for statistics and listings.
type ViewMode string

const (
	ModeDay   ViewMode = "day"
	ModeWeek  ViewMode = "week"
	ModeMonth ViewMode = "month"
	ModeYear  ViewMode = "year"
)

// Modes lists every valid view mode.
var Modes = []ViewMode{ModeDay, ModeWeek, ModeMonth, ModeYear}

// Valid reports whether m is a known view mode.
func (m ViewMode) Valid() bool {
	switch m {
	case ModeDay, ModeWeek, ModeMonth, ModeYear:
		return true
	}

	return false
}

// Range is a closed interval at millisecond granularity.
type Range struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether t falls inside the range, bounds included.
func (r Range) Contains(t time.Time) bool {
	return !t.Before(r.Start) && !t.After(r.End)
}

// RoundToStart resets the given time to the start of its day.
func RoundToStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// RoundToEnd resets the given time to the last millisecond of its day.
func RoundToEnd(t time.Time) time.Time {
	return time.Date(
		t.Year(),
		t.Month(),
		t.Day(),
		23,
		59,
		59,
		int(999*time.Millisecond),
		t.Location(),
	)
}

// DateRange returns the reporting window of the given mode containing
// ref. Weeks start on Monday: a Sunday belongs to the week that began six
// days earlier.
func DateRange(mode ViewMode, ref time.Time) Range {
	switch mode {
	case ModeDay:
		return Range{Start: RoundToStart(ref), End: RoundToEnd(ref)}
	case ModeWeek:
		wd := int(ref.Weekday())
		if wd == 0 {
			wd = 7
		}

		monday := RoundToStart(ref).AddDate(0, 0, -(wd - 1))

		return Range{Start: monday, End: RoundToEnd(monday.AddDate(0, 0, 6))}
	case ModeMonth:
		first := time.Date(ref.Year(), ref.Month(), 1, 0, 0, 0, 0, ref.Location())

		return Range{Start: first, End: RoundToEnd(first.AddDate(0, 1, -1))}
	case ModeYear:
		start := time.Date(ref.Year(), time.January, 1, 0, 0, 0, 0, ref.Location())
		end := time.Date(ref.Year(), time.December, 31, 0, 0, 0, 0, ref.Location())

		return Range{Start: start, End: RoundToEnd(end)}
	}

	return Range{Start: RoundToStart(ref), End: RoundToEnd(ref)}
}

// Navigate shifts date by one unit of mode in the given direction (+1 or
// -1) using calendar arithmetic. Month and year steps may change the
// day-of-month through normalisation; this is accepted, not corrected.
func Navigate(date time.Time, mode ViewMode, direction int) time.Time {
	switch mode {
	case ModeDay:
		return date.AddDate(0, 0, direction)
	case ModeWeek:
		return date.AddDate(0, 0, 7*direction)
	case ModeMonth:
		return date.AddDate(0, direction, 0)
	case ModeYear:
		return date.AddDate(direction, 0, 0)
	}

	return date
}

// DaysIn returns the number of days in the month containing t.
func DaysIn(t time.Time) int {
	return time.Date(t.Year(), t.Month()+1, 0, 0, 0, 0, 0, t.Location()).Day()
}

// MinsToHoursAndMins expresses a minutes value in hours and minutes.
func MinsToHoursAndMins(val int) (hrs, mins int) {
	hrs = val / minutesInAnHour
	mins = val % minutesInAnHour

	return
}

// FormatDuration renders a minutes value as "Xh Ym", dropping whichever
// component is zero. Zero minutes renders as "0m".
func FormatDuration(minutes int) string {
	hrs, mins := MinsToHoursAndMins(minutes)

	if hrs == 0 {
		return fmt.Sprintf("%dm", mins)
	}

	if mins == 0 {
		return fmt.Sprintf("%dh", hrs)
	}

	return fmt.Sprintf("%dh %dm", hrs, mins)
}

// FormatClock renders elapsed seconds as HH:MM:SS for the live timer
// display.
func FormatClock(seconds int) string {
	h := seconds / 3600
	m := (seconds % 3600) / 60
	s := seconds % 60

	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}
