package challenge

import "time"

// All day arithmetic works on UTC calendar days. Dates coming from the
// database are DATE columns, so time-of-day is irrelevant by the time
// they reach these functions; everything else is truncated here.

func midnightUTC(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// DayNumber maps a calendar date to a 1-based day number relative to
// startDate. Day 1 is the start date itself. No clamping; callers clamp
// per their needs.
func DayNumber(date, startDate time.Time) int {
	d := midnightUTC(date)
	s := midnightUTC(startDate)
	return int(d.Sub(s).Hours()/24) + 1
}

// CurrentDayNumber returns the day number for now, clamped to [0,7].
// 0 means the challenge has not started yet; 7 means it is on or past
// its final day.
func CurrentDayNumber(startDate, now time.Time) int {
	day := DayNumber(now, startDate)
	if day < 0 {
		return 0
	}
	if day > DaysInChallenge {
		return DaysInChallenge
	}
	return day
}

// DateForDay is the inverse of DayNumber: the calendar date of a given
// day number. The result is anchored at noon UTC so a stored value can
// never drift across a day boundary.
func DateForDay(startDate time.Time, day int) time.Time {
	s := midnightUTC(startDate)
	return s.AddDate(0, 0, day-1).Add(12 * time.Hour)
}

// EndDate is always exactly six days after the start: a 7-day window
// inclusive of both ends.
func EndDate(startDate time.Time) time.Time {
	return midnightUTC(startDate).AddDate(0, 0, DaysInChallenge-1)
}

// StatusAt classifies the challenge lifecycle for a given instant.
// The end date is inclusive: the challenge stays active through the
// whole of its final calendar day.
func StatusAt(startDate, endDate, now time.Time) Status {
	today := midnightUTC(now)
	start := midnightUTC(startDate)
	end := midnightUTC(endDate)

	switch {
	case today.Before(start):
		return StatusUpcoming
	case today.After(end):
		return StatusPrevious
	default:
		return StatusActive
	}
}
