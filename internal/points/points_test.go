package points

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tryMeAPI/internal/challenge"
)

func goal(v float64) *float64 { return &v }

func TestTaskChallengeAlwaysFlat(t *testing.T) {
	got, err := ForCheckIn(challenge.TypeTask, nil, "")
	require.NoError(t, err)
	assert.Equal(t, MaxPerDay, got)

	// Inputs are irrelevant for task scoring.
	got, err = ForCheckIn(challenge.TypeTask, goal(10000), "3")
	require.NoError(t, err)
	assert.Equal(t, MaxPerDay, got)
}

func TestValueChallengeProportional(t *testing.T) {
	cases := []struct {
		name  string
		goal  float64
		value string
		want  int
	}{
		{"half the goal rounds up", 10000, "5000", 13},
		{"exactly the goal", 10000, "10000", 25},
		{"over the goal clamps", 10000, "20000", 25},
		{"zero progress", 10000, "0", 0},
		{"small fraction", 10000, "100", 0},
		{"rounds to nearest", 10, "3", 8},
		{"decimal value", 2.5, "1.25", 13},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ForCheckIn(challenge.TypeValue, goal(tc.goal), tc.value)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestValueChallengeBoundsHold(t *testing.T) {
	values := []string{"0", "1", "4999", "5000", "9999", "10000", "10001", "999999"}
	for _, v := range values {
		got, err := ForCheckIn(challenge.TypeValue, goal(10000), v)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, got, 0)
		assert.LessOrEqual(t, got, MaxPerDay)
	}
}

func TestValueChallengeMissingGoal(t *testing.T) {
	_, err := ForCheckIn(challenge.TypeValue, nil, "5000")
	assert.ErrorIs(t, err, ErrMissingDailyGoal)

	_, err = ForCheckIn(challenge.TypeValue, goal(0), "5000")
	assert.ErrorIs(t, err, ErrMissingDailyGoal)
}

func TestValueChallengeBadValue(t *testing.T) {
	for _, v := range []string{"", "abc", "12k", "-5"} {
		_, err := ForCheckIn(challenge.TypeValue, goal(10000), v)
		assert.ErrorIs(t, err, ErrInvalidValue, "value %q", v)
	}
}
