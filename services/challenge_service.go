package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"tryMeAPI/internal/challenge"
	"tryMeAPI/internal/notification"
	"tryMeAPI/middleware"
	"tryMeAPI/utils"
)

var (
	ErrChallengeNotFound  = errors.New("challenge not found")
	ErrInvalidChallenge   = errors.New("invalid challenge request")
	ErrInvalidJoinCode    = errors.New("invalid join code")
	ErrAlreadyParticipant = errors.New("already a participant")
)

const joinCodeRetries = 5

type ChallengeService struct {
	db                  *pgxpool.Pool
	notificationService *NotificationService
}

func NewChallengeService(db *pgxpool.Pool, notificationService *NotificationService) *ChallengeService {
	return &ChallengeService{db: db, notificationService: notificationService}
}

// CreateChallenge validates the creation request, fixes the end date at
// start + 6 days and registers the creator as participant #1.
func (s *ChallengeService) CreateChallenge(ctx context.Context, clerkID string, req *challenge.CreateChallengeRequest) (*challenge.Challenge, error) {
	userID, err := s.getUserID(ctx, clerkID)
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidChallenge)
	}

	chType := challenge.ChallengeType(req.Type)
	switch chType {
	case challenge.TypeValue:
		if req.DailyGoal == nil || *req.DailyGoal <= 0 || req.Unit == nil || strings.TrimSpace(*req.Unit) == "" {
			return nil, fmt.Errorf("%w: value challenges require a positive dailyGoal and a unit", ErrInvalidChallenge)
		}
	case challenge.TypeTask:
		if req.DailyGoal != nil || req.Unit != nil {
			return nil, fmt.Errorf("%w: task challenges must not include dailyGoal or unit", ErrInvalidChallenge)
		}
	default:
		return nil, fmt.Errorf("%w: type must be %q or %q", ErrInvalidChallenge, challenge.TypeTask, challenge.TypeValue)
	}

	startDate, err := time.ParseInLocation("2006-01-02", req.StartDate, time.UTC)
	if err != nil {
		return nil, fmt.Errorf("%w: startDate must be YYYY-MM-DD", ErrInvalidChallenge)
	}

	ch := &challenge.Challenge{
		ID:          uuid.New(),
		Name:        name,
		Description: strings.TrimSpace(req.Description),
		CreatedBy:   userID,
		Type:        chType,
		DailyGoal:   req.DailyGoal,
		Unit:        req.Unit,
		StartDate:   startDate,
		EndDate:     challenge.EndDate(startDate),
	}

	query := `
	INSERT INTO challenges (id, name, description, created_by, join_code, type, daily_goal, unit, start_date, end_date, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW())
	RETURNING created_at
	`

	// Uniqueness of the join code lives in the DB constraint; regenerate
	// and retry on the rare collision.
	for attempt := 0; ; attempt++ {
		ch.JoinCode, err = utils.GenerateJoinCode()
		if err != nil {
			return nil, fmt.Errorf("failed to generate join code: %w", err)
		}

		err = s.db.QueryRow(ctx, query,
			ch.ID, ch.Name, ch.Description, ch.CreatedBy, ch.JoinCode,
			ch.Type, ch.DailyGoal, ch.Unit, ch.StartDate, ch.EndDate,
		).Scan(&ch.CreatedAt)
		if err == nil {
			break
		}

		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" && attempt < joinCodeRetries {
			continue
		}
		return nil, fmt.Errorf("failed to create challenge: %w", err)
	}

	if _, err := s.db.Exec(ctx,
		`INSERT INTO challenge_participants (challenge_id, user_id, joined_at) VALUES ($1, $2, NOW())`,
		ch.ID, userID,
	); err != nil {
		return nil, fmt.Errorf("failed to register creator as participant: %w", err)
	}

	middleware.ObserveChallengeCreated()

	now := time.Now()
	ch.Status = challenge.StatusAt(ch.StartDate, ch.EndDate, now)
	ch.CurrentDay = challenge.CurrentDayNumber(ch.StartDate, now)
	return ch, nil
}

// JoinChallenge appends the user to the participant list of the
// challenge matching the join code. The creator gets a best-effort
// notification; a failure there never fails the join.
func (s *ChallengeService) JoinChallenge(ctx context.Context, clerkID string, joinCode string) (*challenge.Challenge, error) {
	if !utils.IsValidJoinCode(joinCode) {
		return nil, ErrInvalidJoinCode
	}

	userID, err := s.getUserID(ctx, clerkID)
	if err != nil {
		return nil, err
	}

	ch, err := s.scanChallenge(ctx, `
	SELECT id, name, description, created_by, join_code, type, daily_goal, unit, start_date, end_date, created_at
	FROM challenges
	WHERE join_code = $1
	`, joinCode)
	if err != nil {
		return nil, err
	}

	result, err := s.db.Exec(ctx, `
	INSERT INTO challenge_participants (challenge_id, user_id, joined_at)
	VALUES ($1, $2, NOW())
	ON CONFLICT (challenge_id, user_id) DO NOTHING
	`, ch.ID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to join challenge: %w", err)
	}
	if result.RowsAffected() == 0 {
		return nil, ErrAlreadyParticipant
	}

	s.notifyCreatorOfJoin(ctx, ch, userID)

	now := time.Now()
	ch.Status = challenge.StatusAt(ch.StartDate, ch.EndDate, now)
	ch.CurrentDay = challenge.CurrentDayNumber(ch.StartDate, now)
	return ch, nil
}

// ListChallenges returns every challenge the user participates in, most
// recent start first, with the derived status and current day attached.
// Status is never cached; it is reclassified on every read.
func (s *ChallengeService) ListChallenges(ctx context.Context, clerkID string) ([]*challenge.Challenge, error) {
	userID, err := s.getUserID(ctx, clerkID)
	if err != nil {
		return nil, err
	}

	query := `
	SELECT c.id, c.name, c.description, c.created_by, c.join_code, c.type, c.daily_goal, c.unit, c.start_date, c.end_date, c.created_at
	FROM challenges c
	INNER JOIN challenge_participants cp ON cp.challenge_id = c.id
	WHERE cp.user_id = $1
	ORDER BY c.start_date DESC, c.created_at DESC
	`

	rows, err := s.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch challenges: %w", err)
	}
	defer rows.Close()

	now := time.Now()
	var challenges []*challenge.Challenge
	for rows.Next() {
		ch := &challenge.Challenge{}
		if err := rows.Scan(
			&ch.ID, &ch.Name, &ch.Description, &ch.CreatedBy, &ch.JoinCode,
			&ch.Type, &ch.DailyGoal, &ch.Unit, &ch.StartDate, &ch.EndDate, &ch.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan challenge: %w", err)
		}
		ch.Status = challenge.StatusAt(ch.StartDate, ch.EndDate, now)
		ch.CurrentDay = challenge.CurrentDayNumber(ch.StartDate, now)
		challenges = append(challenges, ch)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating challenges: %w", err)
	}

	if challenges == nil {
		challenges = []*challenge.Challenge{}
	}
	return challenges, nil
}

// GetChallenge loads one challenge the user participates in, with the
// participant list in join order.
func (s *ChallengeService) GetChallenge(ctx context.Context, clerkID string, challengeID uuid.UUID) (*challenge.ChallengeDetail, error) {
	userID, err := s.getUserID(ctx, clerkID)
	if err != nil {
		return nil, err
	}

	ch, err := s.getChallengeForParticipant(ctx, challengeID, userID)
	if err != nil {
		return nil, err
	}

	participants, err := s.GetParticipants(ctx, challengeID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	ch.Status = challenge.StatusAt(ch.StartDate, ch.EndDate, now)
	ch.CurrentDay = challenge.CurrentDayNumber(ch.StartDate, now)

	return &challenge.ChallengeDetail{
		Challenge:    *ch,
		Participants: participants,
	}, nil
}

// GetParticipants returns a challenge's participants in join order,
// creator first. Insertion order is the leaderboard tie-break, so the
// ordering here is part of the contract.
func (s *ChallengeService) GetParticipants(ctx context.Context, challengeID uuid.UUID) ([]*challenge.Participant, error) {
	query := `
	SELECT cp.user_id, u.first_name, u.last_name, cp.joined_at
	FROM challenge_participants cp
	INNER JOIN users u ON u.id = cp.user_id
	WHERE cp.challenge_id = $1
	ORDER BY cp.id ASC
	`

	rows, err := s.db.Query(ctx, query, challengeID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch participants: %w", err)
	}
	defer rows.Close()

	var participants []*challenge.Participant
	for rows.Next() {
		p := &challenge.Participant{}
		if err := rows.Scan(&p.UserID, &p.FirstName, &p.LastName, &p.JoinedAt); err != nil {
			return nil, fmt.Errorf("failed to scan participant: %w", err)
		}
		participants = append(participants, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating participants: %w", err)
	}
	return participants, nil
}

// getChallengeForParticipant fails with ErrChallengeNotFound both for a
// missing challenge and for a non-participant; callers never learn
// which, and never get a fabricated empty view.
func (s *ChallengeService) getChallengeForParticipant(ctx context.Context, challengeID, userID uuid.UUID) (*challenge.Challenge, error) {
	return s.scanChallenge(ctx, `
	SELECT c.id, c.name, c.description, c.created_by, c.join_code, c.type, c.daily_goal, c.unit, c.start_date, c.end_date, c.created_at
	FROM challenges c
	INNER JOIN challenge_participants cp ON cp.challenge_id = c.id AND cp.user_id = $2
	WHERE c.id = $1
	`, challengeID, userID)
}

func (s *ChallengeService) scanChallenge(ctx context.Context, query string, args ...any) (*challenge.Challenge, error) {
	ch := &challenge.Challenge{}
	err := s.db.QueryRow(ctx, query, args...).Scan(
		&ch.ID, &ch.Name, &ch.Description, &ch.CreatedBy, &ch.JoinCode,
		&ch.Type, &ch.DailyGoal, &ch.Unit, &ch.StartDate, &ch.EndDate, &ch.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrChallengeNotFound
		}
		return nil, fmt.Errorf("failed to get challenge: %w", err)
	}
	return ch, nil
}

func (s *ChallengeService) getUserID(ctx context.Context, clerkID string) (uuid.UUID, error) {
	var userID uuid.UUID
	err := s.db.QueryRow(ctx, `SELECT id FROM users WHERE clerk_id = $1`, clerkID).Scan(&userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return uuid.Nil, ErrUserNotFound
		}
		return uuid.Nil, fmt.Errorf("failed to resolve user: %w", err)
	}
	return userID, nil
}

func (s *ChallengeService) notifyCreatorOfJoin(ctx context.Context, ch *challenge.Challenge, joinerID uuid.UUID) {
	if s.notificationService == nil || ch.CreatedBy == joinerID {
		return
	}

	var firstName, lastName string
	if err := s.db.QueryRow(ctx, `SELECT first_name, last_name FROM users WHERE id = $1`, joinerID).Scan(&firstName, &lastName); err != nil {
		log.Printf("JoinChallenge: could not resolve joiner %s for notification: %v", joinerID, err)
		return
	}

	_, err := s.notificationService.CreateNotification(ctx, &notification.CreateNotificationRequest{
		UserID:  ch.CreatedBy,
		Type:    notification.NotificationChallengeJoin,
		Title:   "New challenger!",
		Message: fmt.Sprintf("%s %s joined %q", firstName, lastName, ch.Name),
		Data: map[string]any{
			"challengeId": ch.ID.String(),
			"userId":      joinerID.String(),
		},
	})
	if err != nil {
		log.Printf("JoinChallenge: failed to notify creator of %s: %v", ch.ID, err)
	}
}
