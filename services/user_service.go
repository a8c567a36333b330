package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"tryMeAPI/internal/leaderboard"
	"tryMeAPI/internal/user"
)

var ErrUserNotFound = errors.New("user not found")

type UserService struct {
	db *pgxpool.Pool
}

func NewUserService(db *pgxpool.Pool) *UserService {
	return &UserService{db: db}
}

func (s *UserService) CreateUser(ctx context.Context, req *user.CreateUserRequest) (*user.User, error) {
	u := &user.User{
		ID:        uuid.New(),
		ClerkID:   req.ClerkID,
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	if req.ImageURL != "" {
		u.ImageURL = &req.ImageURL
	}

	query := `
	INSERT INTO users (id, clerk_id, email, first_name, last_name, image_url, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	RETURNING id, clerk_id, email, first_name, last_name, image_url, email_verified, total_points, created_at, updated_at
	`

	err := s.db.QueryRow(ctx, query,
		u.ID, u.ClerkID, u.Email, u.FirstName, u.LastName, u.ImageURL, u.CreatedAt, u.UpdatedAt,
	).Scan(
		&u.ID, &u.ClerkID, &u.Email, &u.FirstName, &u.LastName,
		&u.ImageURL, &u.EmailVerified, &u.TotalPoints, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return u, nil
}

func (s *UserService) GetUserByClerkID(ctx context.Context, clerkID string) (*user.User, error) {
	query := `
	SELECT id, clerk_id, email, first_name, last_name, image_url, email_verified, total_points, created_at, updated_at
	FROM users
	WHERE clerk_id = $1
	`

	u := &user.User{}
	err := s.db.QueryRow(ctx, query, clerkID).Scan(
		&u.ID, &u.ClerkID, &u.Email, &u.FirstName, &u.LastName,
		&u.ImageURL, &u.EmailVerified, &u.TotalPoints, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return u, nil
}

func (s *UserService) UpdateProfileByClerkID(ctx context.Context, clerkID string, req *user.UpdateProfileRequest) (*user.User, error) {
	query := `
	UPDATE users
	SET
		first_name = COALESCE(NULLIF($2, ''), first_name),
		last_name = COALESCE(NULLIF($3, ''), last_name),
		image_url = COALESCE(NULLIF($4, ''), image_url),
		updated_at = NOW()
	WHERE clerk_id = $1
	RETURNING id, clerk_id, email, first_name, last_name, image_url, email_verified, total_points, created_at, updated_at
	`

	u := &user.User{}
	err := s.db.QueryRow(ctx, query, clerkID, req.FirstName, req.LastName, req.ImageURL).Scan(
		&u.ID, &u.ClerkID, &u.Email, &u.FirstName, &u.LastName,
		&u.ImageURL, &u.EmailVerified, &u.TotalPoints, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	return u, nil
}

func (s *UserService) DeleteUserByClerkID(ctx context.Context, clerkID string) error {
	result, err := s.db.Exec(ctx, `DELETE FROM users WHERE clerk_id = $1`, clerkID)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (s *UserService) UpdateEmailVerification(ctx context.Context, clerkID string, verified bool) error {
	_, err := s.db.Exec(ctx,
		`UPDATE users SET email_verified = $2, updated_at = NOW() WHERE clerk_id = $1`,
		clerkID, verified,
	)
	return err
}

// GetGlobalLeaderboard ranks all users by their total_points
// projection. The projection is re-aggregated from the check-in ledger
// after every upsert, so reading it here never diverges from ledger
// state for longer than a single in-flight submission.
func (s *UserService) GetGlobalLeaderboard(ctx context.Context, clerkID string) (*leaderboard.GlobalLeaderboard, error) {
	var userID uuid.UUID
	err := s.db.QueryRow(ctx, `SELECT id FROM users WHERE clerk_id = $1`, clerkID).Scan(&userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to resolve user: %w", err)
	}

	query := `
	SELECT
		u.id AS user_id,
		u.first_name,
		u.last_name,
		u.image_url,
		u.total_points,
		RANK() OVER (ORDER BY u.total_points DESC) AS rank
	FROM users u
	ORDER BY u.total_points DESC, u.created_at ASC
	LIMIT 50
	`

	rows, err := s.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch leaderboard: %w", err)
	}
	defer rows.Close()

	var entries []*leaderboard.GlobalEntry
	var userPosition *leaderboard.GlobalEntry

	for rows.Next() {
		entry := &leaderboard.GlobalEntry{}
		if err := rows.Scan(
			&entry.UserID, &entry.FirstName, &entry.LastName,
			&entry.ImageURL, &entry.TotalPoints, &entry.Rank,
		); err != nil {
			return nil, fmt.Errorf("failed to scan leaderboard row: %w", err)
		}

		entries = append(entries, entry)
		if entry.UserID == userID {
			userPosition = entry
		}
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating leaderboard: %w", err)
	}

	return &leaderboard.GlobalLeaderboard{
		Entries:      entries,
		UserPosition: userPosition,
		TotalUsers:   len(entries),
	}, nil
}
