package leaderboard

import (
	"sort"
	"time"

	"github.com/google/uuid"

	"tryMeAPI/internal/challenge"
	"tryMeAPI/internal/checkin"
)

// UserRef is the slice of user identity a leaderboard row exposes.
type UserRef struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// Entry is one row of a challenge leaderboard.
type Entry struct {
	User              UserRef `json:"user"`
	TotalPoints       int     `json:"totalPoints"`
	CurrentStreak     int     `json:"currentStreak"`
	CompletedCheckIns int     `json:"completedCheckIns"`
}

// GlobalEntry is one row of the cross-challenge users leaderboard,
// read from the users.total_points projection.
type GlobalEntry struct {
	UserID      uuid.UUID `json:"userId" db:"user_id"`
	FirstName   string    `json:"firstName" db:"first_name"`
	LastName    string    `json:"lastName" db:"last_name"`
	ImageURL    *string   `json:"imageUrl" db:"image_url"`
	TotalPoints int       `json:"totalPoints" db:"total_points"`
	Rank        int       `json:"rank" db:"rank"`
}

type GlobalLeaderboard struct {
	Entries      []*GlobalEntry `json:"entries"`
	UserPosition *GlobalEntry   `json:"userPosition"`
	TotalUsers   int            `json:"totalUsers"`
}

// Build ranks a challenge's participants from a single bulk check-in
// fetch, partitioned per user in memory. participants must be in join
// order: the sort is stable and applies no secondary key, so equal
// point totals keep that order.
func Build(ch *challenge.Challenge, participants []*challenge.Participant, checkins []*checkin.CheckIn, now time.Time) []*Entry {
	currentDay := challenge.CurrentDayNumber(ch.StartDate, now)

	byUser := make(map[uuid.UUID][]*checkin.CheckIn, len(participants))
	for _, c := range checkins {
		byUser[c.UserID] = append(byUser[c.UserID], c)
	}

	entries := make([]*Entry, 0, len(participants))
	for _, p := range participants {
		userCheckins := byUser[p.UserID]
		grid := checkin.BuildDayGrid(userCheckins, ch.StartDate)

		entries = append(entries, &Entry{
			User: UserRef{
				ID:   p.UserID,
				Name: p.FirstName + " " + p.LastName,
			},
			TotalPoints:       checkin.SumPoints(userCheckins),
			CurrentStreak:     checkin.Streak(grid, currentDay),
			CompletedCheckIns: checkin.CompletedDays(grid),
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].TotalPoints > entries[j].TotalPoints
	})

	return entries
}
