package checkin

import (
	"time"

	"github.com/google/uuid"

	"tryMeAPI/internal/challenge"
)

// BuildDayGrid spreads a user's check-ins over the 7-day grid. A slot
// is completed when a check-in resolves to that day number via the same
// day arithmetic the write path used, so write and read can never
// disagree on which day a record belongs to. Records outside days 1..7
// are ignored here but still count toward totals (see SumPoints).
func BuildDayGrid(checkins []*CheckIn, startDate time.Time) []*DayCheckIn {
	byDay := make(map[int]*CheckIn, len(checkins))
	for _, c := range checkins {
		byDay[challenge.DayNumber(c.Date, startDate)] = c
	}

	grid := make([]*DayCheckIn, 0, challenge.DaysInChallenge)
	for day := 1; day <= challenge.DaysInChallenge; day++ {
		slot := &DayCheckIn{Day: day}
		if c, ok := byDay[day]; ok {
			slot.Completed = true
			slot.Value = c.Value
			slot.PointsEarned = c.PointsEarned
		}
		grid = append(grid, slot)
	}
	return grid
}

// Streak counts consecutive completed days ending at or immediately
// before currentDay. If today is not yet checked in the count starts
// from yesterday instead, so an unfinished today does not break a run.
// Any earlier gap resets the streak to the days after it.
func Streak(grid []*DayCheckIn, currentDay int) int {
	completed := func(day int) bool {
		for _, slot := range grid {
			if slot.Day == day {
				return slot.Completed
			}
		}
		return false
	}

	startDay := currentDay
	if !completed(currentDay) {
		startDay = currentDay - 1
	}
	if startDay < 1 {
		return 0
	}

	streak := 0
	for day := startDay; day >= 1; day-- {
		if !completed(day) {
			break
		}
		streak++
	}
	return streak
}

// SumPoints totals every fetched check-in, not just the ones that
// landed in the grid, so a stray record can inflate neither silently
// nor invisibly.
func SumPoints(checkins []*CheckIn) int {
	total := 0
	for _, c := range checkins {
		total += c.PointsEarned
	}
	return total
}

// CompletedDays counts the grid slots with a check-in.
func CompletedDays(grid []*DayCheckIn) int {
	n := 0
	for _, slot := range grid {
		if slot.Completed {
			n++
		}
	}
	return n
}

// BuildParticipantSummary derives the full per-user view of a challenge
// from the current ledger state and wall-clock now. Every call
// recomputes from scratch; there is no caching anywhere in this path.
func BuildParticipantSummary(ch *challenge.Challenge, userID uuid.UUID, checkins []*CheckIn, now time.Time) *ParticipantSummary {
	currentDay := challenge.CurrentDayNumber(ch.StartDate, now)
	grid := BuildDayGrid(checkins, ch.StartDate)

	return &ParticipantSummary{
		ChallengeID: ch.ID,
		CurrentDay:  currentDay,
		Participant: ParticipantDetails{
			UserID:        userID,
			CurrentStreak: Streak(grid, currentDay),
			TotalPoints:   SumPoints(checkins),
			CheckIns:      grid,
		},
	}
}
