package leaderboard

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tryMeAPI/internal/challenge"
	"tryMeAPI/internal/checkin"
)

var testStart = time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)

func testChallenge() *challenge.Challenge {
	return &challenge.Challenge{
		ID:        uuid.New(),
		Type:      challenge.TypeTask,
		StartDate: testStart,
		EndDate:   challenge.EndDate(testStart),
	}
}

func participant(first string) *challenge.Participant {
	return &challenge.Participant{
		UserID:    uuid.New(),
		FirstName: first,
		LastName:  "Tester",
	}
}

func checkInFor(ch *challenge.Challenge, userID uuid.UUID, day, pts int) *checkin.CheckIn {
	return &checkin.CheckIn{
		ID:           uuid.New(),
		ChallengeID:  ch.ID,
		UserID:       userID,
		Date:         challenge.DateForDay(testStart, day),
		Value:        checkin.TaskCompletedValue,
		PointsEarned: pts,
	}
}

func TestBuildSortsByPointsDescending(t *testing.T) {
	ch := testChallenge()
	a, b, c := participant("Alice"), participant("Bob"), participant("Cara")
	now := time.Date(2024, time.January, 4, 10, 0, 0, 0, time.UTC)

	checkins := []*checkin.CheckIn{
		checkInFor(ch, a.UserID, 1, 25),
		checkInFor(ch, b.UserID, 1, 25),
		checkInFor(ch, b.UserID, 2, 25),
		checkInFor(ch, c.UserID, 1, 10),
	}

	entries := Build(ch, []*challenge.Participant{a, b, c}, checkins, now)
	require.Len(t, entries, 3)

	assert.Equal(t, b.UserID, entries[0].User.ID)
	assert.Equal(t, 50, entries[0].TotalPoints)
	assert.Equal(t, a.UserID, entries[1].User.ID)
	assert.Equal(t, c.UserID, entries[2].User.ID)
}

func TestBuildTieKeepsJoinOrder(t *testing.T) {
	// Points [40, 40, 10] in join order [A, B, C]: A stays ahead of B.
	ch := testChallenge()
	a, b, c := participant("Alice"), participant("Bob"), participant("Cara")
	now := time.Date(2024, time.January, 4, 10, 0, 0, 0, time.UTC)

	checkins := []*checkin.CheckIn{
		checkInFor(ch, a.UserID, 1, 25),
		checkInFor(ch, a.UserID, 2, 15),
		checkInFor(ch, b.UserID, 1, 25),
		checkInFor(ch, b.UserID, 2, 15),
		checkInFor(ch, c.UserID, 1, 10),
	}

	entries := Build(ch, []*challenge.Participant{a, b, c}, checkins, now)
	require.Len(t, entries, 3)

	assert.Equal(t, a.UserID, entries[0].User.ID)
	assert.Equal(t, b.UserID, entries[1].User.ID)
	assert.Equal(t, 40, entries[0].TotalPoints)
	assert.Equal(t, 40, entries[1].TotalPoints)
	assert.Equal(t, c.UserID, entries[2].User.ID)
}

func TestBuildTieBreakIgnoresStreak(t *testing.T) {
	// B has the longer streak but joined later; equal points keep A first.
	ch := testChallenge()
	a, b := participant("Alice"), participant("Bob")
	now := time.Date(2024, time.January, 4, 10, 0, 0, 0, time.UTC)

	checkins := []*checkin.CheckIn{
		checkInFor(ch, a.UserID, 1, 50),
		checkInFor(ch, b.UserID, 2, 25),
		checkInFor(ch, b.UserID, 3, 25),
	}

	entries := Build(ch, []*challenge.Participant{a, b}, checkins, now)
	require.Len(t, entries, 2)
	assert.Equal(t, a.UserID, entries[0].User.ID)
	assert.Greater(t, entries[1].CurrentStreak, entries[0].CurrentStreak)
}

func TestBuildEntryFields(t *testing.T) {
	ch := testChallenge()
	a := participant("Alice")
	now := time.Date(2024, time.January, 4, 10, 0, 0, 0, time.UTC)

	checkins := []*checkin.CheckIn{
		checkInFor(ch, a.UserID, 2, 25),
		checkInFor(ch, a.UserID, 3, 25),
	}

	entries := Build(ch, []*challenge.Participant{a}, checkins, now)
	require.Len(t, entries, 1)

	e := entries[0]
	assert.Equal(t, "Alice Tester", e.User.Name)
	assert.Equal(t, 50, e.TotalPoints)
	assert.Equal(t, 2, e.CurrentStreak)
	assert.Equal(t, 2, e.CompletedCheckIns)
}

func TestBuildParticipantWithoutCheckIns(t *testing.T) {
	ch := testChallenge()
	a := participant("Alice")
	now := time.Date(2024, time.January, 4, 10, 0, 0, 0, time.UTC)

	entries := Build(ch, []*challenge.Participant{a}, nil, now)
	require.Len(t, entries, 1)
	assert.Equal(t, 0, entries[0].TotalPoints)
	assert.Equal(t, 0, entries[0].CurrentStreak)
	assert.Equal(t, 0, entries[0].CompletedCheckIns)
}
