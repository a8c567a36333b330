package checkin

import (
	"time"

	"github.com/google/uuid"
)

// TaskCompletedValue is the sentinel stored for task-type check-ins,
// where there is no numeric measurement to record.
const TaskCompletedValue = "Completed"

type CheckIn struct {
	ID           uuid.UUID `json:"id" db:"id"`
	ChallengeID  uuid.UUID `json:"challengeId" db:"challenge_id"`
	UserID       uuid.UUID `json:"userId" db:"user_id"`
	Date         time.Time `json:"date" db:"date"`
	Value        string    `json:"value" db:"value"`
	PointsEarned int       `json:"pointsEarned" db:"points_earned"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time `json:"updatedAt" db:"updated_at"`
}

// DayCheckIn is one slot of the 7-day grid.
type DayCheckIn struct {
	Day          int    `json:"day"`
	Completed    bool   `json:"completed"`
	Value        string `json:"value"`
	PointsEarned int    `json:"pointsEarned"`
}

type ParticipantSummary struct {
	ChallengeID uuid.UUID          `json:"challengeId"`
	CurrentDay  int                `json:"currentDay"`
	Participant ParticipantDetails `json:"participant"`
}

type ParticipantDetails struct {
	UserID        uuid.UUID     `json:"userId"`
	CurrentStreak int           `json:"currentStreak"`
	TotalPoints   int           `json:"totalPoints"`
	CheckIns      []*DayCheckIn `json:"checkIns"`
}

type SubmitCheckInRequest struct {
	Day   int    `json:"day"`
	Value string `json:"value,omitempty"`
}
