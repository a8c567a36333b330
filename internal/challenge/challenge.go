package challenge

import (
	"time"

	"github.com/google/uuid"
)

type ChallengeType string

const (
	TypeTask  ChallengeType = "task"
	TypeValue ChallengeType = "value"
)

type Status string

const (
	StatusUpcoming Status = "upcoming"
	StatusActive   Status = "active"
	StatusPrevious Status = "previous"
)

// DaysInChallenge is fixed: every challenge runs days 1..7.
const DaysInChallenge = 7

type Challenge struct {
	ID          uuid.UUID     `json:"id" db:"id"`
	Name        string        `json:"name" db:"name"`
	Description string        `json:"description" db:"description"`
	CreatedBy   uuid.UUID     `json:"createdBy" db:"created_by"`
	JoinCode    string        `json:"joinCode" db:"join_code"`
	Type        ChallengeType `json:"type" db:"type"`
	DailyGoal   *float64      `json:"dailyGoal,omitempty" db:"daily_goal"`
	Unit        *string       `json:"unit,omitempty" db:"unit"`
	StartDate   time.Time     `json:"startDate" db:"start_date"`
	EndDate     time.Time     `json:"endDate" db:"end_date"`
	CreatedAt   time.Time     `json:"createdAt" db:"created_at"`

	// Derived on read, never stored.
	Status     Status `json:"status,omitempty"`
	CurrentDay int    `json:"currentDay"`
}

type Participant struct {
	UserID    uuid.UUID `json:"userId" db:"user_id"`
	FirstName string    `json:"firstName" db:"first_name"`
	LastName  string    `json:"lastName" db:"last_name"`
	JoinedAt  time.Time `json:"joinedAt" db:"joined_at"`
}

type ChallengeDetail struct {
	Challenge
	Participants []*Participant `json:"participants"`
}

type CreateChallengeRequest struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Type        string   `json:"type"`
	DailyGoal   *float64 `json:"dailyGoal,omitempty"`
	Unit        *string  `json:"unit,omitempty"`
	StartDate   string   `json:"startDate"` // "2006-01-02"
}

type JoinChallengeRequest struct {
	JoinCode string `json:"joinCode"`
}
