package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"tryMeAPI/internal/challenge"
	"tryMeAPI/internal/checkin"
	"tryMeAPI/internal/leaderboard"
	"tryMeAPI/internal/points"
	"tryMeAPI/middleware"
)

var (
	ErrInvalidDay    = errors.New("day must be between 1 and 7")
	ErrFutureDay     = errors.New("cannot check in for a future day")
	ErrValueRequired = errors.New("value is required for this challenge")
)

type CheckinService struct {
	db               *pgxpool.Pool
	challengeService *ChallengeService
}

func NewCheckinService(db *pgxpool.Pool, challengeService *ChallengeService) *CheckinService {
	return &CheckinService{db: db, challengeService: challengeService}
}

// SubmitCheckIn records a check-in for one challenge day and returns
// the recomputed participant summary. Points are always computed
// server-side from the submitted value; a client-supplied points figure
// is never trusted. The upsert is atomic on (challenge, user, date), so
// a resubmission for the same day replaces the earlier record and the
// last writer wins.
func (s *CheckinService) SubmitCheckIn(ctx context.Context, clerkID string, challengeID uuid.UUID, req *checkin.SubmitCheckInRequest) (*checkin.ParticipantSummary, error) {
	userID, err := s.challengeService.getUserID(ctx, clerkID)
	if err != nil {
		return nil, err
	}

	ch, err := s.challengeService.getChallengeForParticipant(ctx, challengeID, userID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	if req.Day < 1 || req.Day > challenge.DaysInChallenge {
		return nil, ErrInvalidDay
	}
	if req.Day > challenge.CurrentDayNumber(ch.StartDate, now) {
		return nil, ErrFutureDay
	}

	value := strings.TrimSpace(req.Value)
	if ch.Type == challenge.TypeValue && value == "" {
		return nil, ErrValueRequired
	}
	if ch.Type == challenge.TypeTask {
		value = checkin.TaskCompletedValue
	}

	pointsEarned, err := points.ForCheckIn(ch.Type, ch.DailyGoal, value)
	if err != nil {
		return nil, err
	}

	date := challenge.DateForDay(ch.StartDate, req.Day)

	query := `
	INSERT INTO check_ins (id, challenge_id, user_id, date, value, points_earned, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
	ON CONFLICT (challenge_id, user_id, date)
	DO UPDATE SET
		value = $5,
		points_earned = $6,
		updated_at = NOW()
	`

	if _, err := s.db.Exec(ctx, query, uuid.New(), ch.ID, userID, date, value, pointsEarned); err != nil {
		return nil, fmt.Errorf("failed to record check-in: %w", err)
	}

	if err := s.reaggregateTotalPoints(ctx, userID); err != nil {
		return nil, err
	}

	middleware.ObserveCheckInSubmitted(string(ch.Type))

	return s.buildSummary(ctx, ch, userID, now)
}

// GetParticipantSummary returns the caller's own view of the challenge:
// current day, 7-day grid, streak and total points, derived fresh from
// the ledger on every call.
func (s *CheckinService) GetParticipantSummary(ctx context.Context, clerkID string, challengeID uuid.UUID) (*checkin.ParticipantSummary, error) {
	userID, err := s.challengeService.getUserID(ctx, clerkID)
	if err != nil {
		return nil, err
	}

	ch, err := s.challengeService.getChallengeForParticipant(ctx, challengeID, userID)
	if err != nil {
		return nil, err
	}

	return s.buildSummary(ctx, ch, userID, time.Now())
}

// GetLeaderboard ranks all participants of a challenge. One bulk fetch
// covers every participant's check-ins; the rows are partitioned per
// user in memory rather than queried per participant.
func (s *CheckinService) GetLeaderboard(ctx context.Context, clerkID string, challengeID uuid.UUID) ([]*leaderboard.Entry, error) {
	userID, err := s.challengeService.getUserID(ctx, clerkID)
	if err != nil {
		return nil, err
	}

	ch, err := s.challengeService.getChallengeForParticipant(ctx, challengeID, userID)
	if err != nil {
		return nil, err
	}

	participants, err := s.challengeService.GetParticipants(ctx, challengeID)
	if err != nil {
		return nil, err
	}

	checkins, err := s.findByChallenge(ctx, challengeID)
	if err != nil {
		return nil, err
	}

	return leaderboard.Build(ch, participants, checkins, time.Now()), nil
}

func (s *CheckinService) buildSummary(ctx context.Context, ch *challenge.Challenge, userID uuid.UUID, now time.Time) (*checkin.ParticipantSummary, error) {
	checkins, err := s.findByChallengeAndUser(ctx, ch.ID, userID)
	if err != nil {
		return nil, err
	}
	return checkin.BuildParticipantSummary(ch, userID, checkins, now), nil
}

// findByChallengeAndUser returns the user's check-in facts for one
// challenge, in no particular order.
func (s *CheckinService) findByChallengeAndUser(ctx context.Context, challengeID, userID uuid.UUID) ([]*checkin.CheckIn, error) {
	return s.queryCheckIns(ctx, `
	SELECT id, challenge_id, user_id, date, value, points_earned, created_at, updated_at
	FROM check_ins
	WHERE challenge_id = $1 AND user_id = $2
	`, challengeID, userID)
}

func (s *CheckinService) findByChallenge(ctx context.Context, challengeID uuid.UUID) ([]*checkin.CheckIn, error) {
	return s.queryCheckIns(ctx, `
	SELECT id, challenge_id, user_id, date, value, points_earned, created_at, updated_at
	FROM check_ins
	WHERE challenge_id = $1
	`, challengeID)
}

func (s *CheckinService) queryCheckIns(ctx context.Context, query string, args ...any) ([]*checkin.CheckIn, error) {
	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch check-ins: %w", err)
	}
	defer rows.Close()

	var checkins []*checkin.CheckIn
	for rows.Next() {
		c := &checkin.CheckIn{}
		if err := rows.Scan(&c.ID, &c.ChallengeID, &c.UserID, &c.Date, &c.Value, &c.PointsEarned, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan check-in: %w", err)
		}
		checkins = append(checkins, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating check-ins: %w", err)
	}
	return checkins, nil
}

// reaggregateTotalPoints rebuilds the users.total_points projection
// from the full ledger. The ledger stays authoritative; re-running this
// is always safe and always converges to the same value.
func (s *CheckinService) reaggregateTotalPoints(ctx context.Context, userID uuid.UUID) error {
	query := `
	UPDATE users
	SET total_points = (
		SELECT COALESCE(SUM(points_earned), 0)
		FROM check_ins
		WHERE user_id = $1
	),
	updated_at = NOW()
	WHERE id = $1
	`

	if _, err := s.db.Exec(ctx, query, userID); err != nil {
		return fmt.Errorf("failed to reaggregate total points: %w", err)
	}
	return nil
}
