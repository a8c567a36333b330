package points

import (
	"errors"
	"math"
	"strconv"
	"strings"

	"tryMeAPI/internal/challenge"
)

// MaxPerDay is the most a single check-in can earn.
const MaxPerDay = 25

var (
	// ErrMissingDailyGoal means a value challenge reached scoring
	// without a positive daily goal. Creation should have rejected it;
	// scoring refuses to guess.
	ErrMissingDailyGoal = errors.New("value challenge has no positive daily goal")

	// ErrInvalidValue means the submitted measurement is not a number.
	ErrInvalidValue = errors.New("submitted value is not numeric")
)

// ForCheckIn computes the points a single check-in earns. Task
// challenges always score the flat maximum. Value challenges score
// proportionally to the daily goal, rounded to the nearest point and
// clamped to [0, MaxPerDay] — exceeding the goal earns no bonus.
func ForCheckIn(challengeType challenge.ChallengeType, dailyGoal *float64, submittedValue string) (int, error) {
	if challengeType != challenge.TypeValue {
		return MaxPerDay, nil
	}

	if dailyGoal == nil || *dailyGoal <= 0 {
		return 0, ErrMissingDailyGoal
	}

	value, err := strconv.ParseFloat(strings.TrimSpace(submittedValue), 64)
	if err != nil || value < 0 {
		return 0, ErrInvalidValue
	}

	raw := math.Round(value / *dailyGoal * MaxPerDay)
	if raw < 0 {
		return 0, nil
	}
	if raw > MaxPerDay {
		return MaxPerDay, nil
	}
	return int(raw), nil
}
