package checkin

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tryMeAPI/internal/challenge"
)

var testStart = time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)

func checkInOn(userID uuid.UUID, day int, points int) *CheckIn {
	return &CheckIn{
		ID:           uuid.New(),
		ChallengeID:  uuid.New(),
		UserID:       userID,
		Date:         challenge.DateForDay(testStart, day),
		Value:        TaskCompletedValue,
		PointsEarned: points,
	}
}

func gridFor(days ...int) []*DayCheckIn {
	userID := uuid.New()
	var checkins []*CheckIn
	for _, d := range days {
		checkins = append(checkins, checkInOn(userID, d, 25))
	}
	return BuildDayGrid(checkins, testStart)
}

func TestBuildDayGrid(t *testing.T) {
	userID := uuid.New()
	checkins := []*CheckIn{
		checkInOn(userID, 1, 25),
		checkInOn(userID, 3, 13),
	}

	grid := BuildDayGrid(checkins, testStart)
	require.Len(t, grid, challenge.DaysInChallenge)

	assert.True(t, grid[0].Completed)
	assert.Equal(t, 25, grid[0].PointsEarned)
	assert.False(t, grid[1].Completed)
	assert.True(t, grid[2].Completed)
	assert.Equal(t, 13, grid[2].PointsEarned)
	for _, slot := range grid[3:] {
		assert.False(t, slot.Completed)
		assert.Equal(t, 0, slot.PointsEarned)
	}
}

func TestBuildDayGridIgnoresOutOfWindowRecords(t *testing.T) {
	userID := uuid.New()
	checkins := []*CheckIn{
		checkInOn(userID, 2, 25),
		checkInOn(userID, 9, 25), // past the window, must not land in any slot
	}

	grid := BuildDayGrid(checkins, testStart)
	assert.Equal(t, 1, CompletedDays(grid))
}

func TestStreakNoCheckIns(t *testing.T) {
	// Day 4, nothing checked in: day 4 incomplete carries back to day 3,
	// day 3 also incomplete, streak 0.
	assert.Equal(t, 0, Streak(gridFor(), 4))
}

func TestStreakCarryBackWhenTodayPending(t *testing.T) {
	// Days 1-3 done, day 4 not yet submitted: streak stays 3.
	assert.Equal(t, 3, Streak(gridFor(1, 2, 3), 4))
}

func TestStreakIncludesToday(t *testing.T) {
	assert.Equal(t, 4, Streak(gridFor(1, 2, 3, 4), 4))
}

func TestStreakResetByGap(t *testing.T) {
	// Day 2 missed: only the run after the gap counts.
	assert.Equal(t, 2, Streak(gridFor(1, 3, 4), 4))
	assert.Equal(t, 1, Streak(gridFor(1, 3), 4))
}

func TestStreakDoesNotLookAhead(t *testing.T) {
	// Check-ins beyond currentDay must not count.
	assert.Equal(t, 2, Streak(gridFor(1, 2, 5, 6), 2))
}

func TestStreakBeforeStart(t *testing.T) {
	assert.Equal(t, 0, Streak(gridFor(), 0))
	assert.Equal(t, 0, Streak(gridFor(1), 0))
}

func TestStreakFirstDayPending(t *testing.T) {
	// Day 1, no check-in yet: carry-back lands before the window.
	assert.Equal(t, 0, Streak(gridFor(), 1))
	assert.Equal(t, 1, Streak(gridFor(1), 1))
}

func TestSumPointsCountsEverything(t *testing.T) {
	userID := uuid.New()
	checkins := []*CheckIn{
		checkInOn(userID, 1, 25),
		checkInOn(userID, 2, 13),
		checkInOn(userID, 9, 7), // outside the grid but still totalled
	}

	assert.Equal(t, 45, SumPoints(checkins))
}

func TestBuildParticipantSummary(t *testing.T) {
	userID := uuid.New()
	ch := &challenge.Challenge{
		ID:        uuid.New(),
		Type:      challenge.TypeTask,
		StartDate: testStart,
		EndDate:   challenge.EndDate(testStart),
	}
	checkins := []*CheckIn{
		checkInOn(userID, 1, 25),
		checkInOn(userID, 2, 25),
		checkInOn(userID, 3, 25),
	}
	now := time.Date(2024, time.January, 4, 15, 30, 0, 0, time.UTC)

	summary := BuildParticipantSummary(ch, userID, checkins, now)

	assert.Equal(t, ch.ID, summary.ChallengeID)
	assert.Equal(t, 4, summary.CurrentDay)
	assert.Equal(t, userID, summary.Participant.UserID)
	assert.Equal(t, 3, summary.Participant.CurrentStreak)
	assert.Equal(t, 75, summary.Participant.TotalPoints)
	require.Len(t, summary.Participant.CheckIns, challenge.DaysInChallenge)
	assert.True(t, summary.Participant.CheckIns[2].Completed)
	assert.False(t, summary.Participant.CheckIns[3].Completed)
}

func TestBuildParticipantSummaryEmptyLedger(t *testing.T) {
	ch := &challenge.Challenge{
		ID:        uuid.New(),
		Type:      challenge.TypeTask,
		StartDate: testStart,
		EndDate:   challenge.EndDate(testStart),
	}

	summary := BuildParticipantSummary(ch, uuid.New(), nil, time.Date(2024, time.January, 4, 0, 0, 0, 0, time.UTC))

	assert.Equal(t, 0, summary.Participant.CurrentStreak)
	assert.Equal(t, 0, summary.Participant.TotalPoints)
	require.Len(t, summary.Participant.CheckIns, challenge.DaysInChallenge)
}
