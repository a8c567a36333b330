package integration

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tryMeAPI/handlers"
	"tryMeAPI/internal/challenge"
	"tryMeAPI/internal/checkin"
	"tryMeAPI/internal/leaderboard"
	"tryMeAPI/internal/user"
	"tryMeAPI/middleware"
	"tryMeAPI/services"
	"tryMeAPI/tests/helpers"
)

// TestChallengeLifecycle walks the whole product loop: two users are
// provisioned, one creates a challenge, the other joins it by code,
// both check in, and the leaderboard ranks them.
func TestChallengeLifecycle(t *testing.T) {
	pool := helpers.SetupTestDB(t)
	defer helpers.CleanupTestDB(t, pool)

	userService := services.NewUserService(pool)
	notificationService := services.NewNotificationService(pool)
	challengeService := services.NewChallengeService(pool, notificationService)
	checkinService := services.NewCheckinService(pool, challengeService)

	challengeHandler := handlers.NewChallengeHandler(challengeService)
	checkinHandler := handlers.NewCheckinHandler(checkinService)

	ctx := context.Background()
	stamp := time.Now().Format("20060102150405")
	creatorClerkID := "user_test_creator_" + stamp
	joinerClerkID := "user_test_joiner_" + stamp

	_, err := userService.CreateUser(ctx, &user.CreateUserRequest{
		ClerkID:   creatorClerkID,
		Email:     "test.creator@example.com",
		FirstName: "Casey",
		LastName:  "Creator",
	})
	require.NoError(t, err)

	_, err = userService.CreateUser(ctx, &user.CreateUserRequest{
		ClerkID:   joinerClerkID,
		Email:     "test.joiner@example.com",
		FirstName: "Jamie",
		LastName:  "Joiner",
	})
	require.NoError(t, err)

	// Step 1: creator starts a task challenge that began two days ago,
	// so today is day 3 and days 1..3 accept check-ins.
	t.Log("Step 1: Creator creates a challenge")

	startDate := time.Now().UTC().AddDate(0, 0, -2).Format("2006-01-02")
	createBody := fmt.Sprintf(`{"name": "No Sugar Week", "description": "Seven days without sugar", "type": "task", "startDate": "%s"}`, startDate)

	req := authedRequest(http.MethodPost, "/api/v1/challenges", createBody, creatorClerkID, nil)
	rr := httptest.NewRecorder()
	challengeHandler.CreateChallenge(rr, req)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	var ch challenge.Challenge
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &ch))
	assert.Len(t, ch.JoinCode, 7)
	assert.Equal(t, challenge.StatusActive, ch.Status)
	assert.Equal(t, 3, ch.CurrentDay)
	assert.Equal(t, 6, int(ch.EndDate.Sub(ch.StartDate).Hours()/24), "end date is start + 6 days")

	// Step 2: second user joins with the code
	t.Log("Step 2: Joiner joins by code")

	joinBody := fmt.Sprintf(`{"joinCode": "%s"}`, ch.JoinCode)
	req = authedRequest(http.MethodPost, "/api/v1/challenges/join", joinBody, joinerClerkID, nil)
	rr = httptest.NewRecorder()
	challengeHandler.JoinChallenge(rr, req)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	// Joining twice is rejected
	req = authedRequest(http.MethodPost, "/api/v1/challenges/join", joinBody, joinerClerkID, nil)
	rr = httptest.NewRecorder()
	challengeHandler.JoinChallenge(rr, req)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	// Step 3: creator checks in for days 1..3
	t.Log("Step 3: Creator checks in three days in a row")

	vars := map[string]string{"challengeId": ch.ID.String()}
	checkInPath := fmt.Sprintf("/api/v1/challenges/%s/check-ins", ch.ID)

	var summary checkin.ParticipantSummary
	for day := 1; day <= 3; day++ {
		req = authedRequest(http.MethodPost, checkInPath, fmt.Sprintf(`{"day": %d}`, day), creatorClerkID, vars)
		rr = httptest.NewRecorder()
		checkinHandler.SubmitCheckIn(rr, req)
		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &summary))
	}

	assert.Equal(t, 3, summary.Participant.CurrentStreak)
	assert.Equal(t, 75, summary.Participant.TotalPoints, "task check-ins are 25 points each")
	assert.Equal(t, checkin.TaskCompletedValue, summary.Participant.CheckIns[0].Value)

	// Step 4: a check-in for a future day is rejected
	t.Log("Step 4: Future day is rejected")

	req = authedRequest(http.MethodPost, checkInPath, `{"day": 5}`, creatorClerkID, vars)
	rr = httptest.NewRecorder()
	checkinHandler.SubmitCheckIn(rr, req)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	// Step 5: joiner backfills day 1 only
	t.Log("Step 5: Joiner checks in for day 1")

	req = authedRequest(http.MethodPost, checkInPath, `{"day": 1}`, joinerClerkID, vars)
	rr = httptest.NewRecorder()
	checkinHandler.SubmitCheckIn(rr, req)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &summary))
	assert.Equal(t, 0, summary.Participant.CurrentStreak, "days 2 and 3 are missing, so no active streak")
	assert.Equal(t, 25, summary.Participant.TotalPoints)

	// Step 6: leaderboard ranks creator first
	t.Log("Step 6: Leaderboard")

	req = authedRequest(http.MethodGet, fmt.Sprintf("/api/v1/challenges/%s/leaderboard", ch.ID), "", joinerClerkID, vars)
	rr = httptest.NewRecorder()
	checkinHandler.GetLeaderboard(rr, req)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var entries []*leaderboard.Entry
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &entries))
	require.Len(t, entries, 2)
	assert.Equal(t, 75, entries[0].TotalPoints)
	assert.Equal(t, "Casey Creator", entries[0].User.Name)
	assert.Equal(t, 25, entries[1].TotalPoints)

	// Step 7: a non-participant cannot see the challenge at all
	t.Log("Step 7: Outsider gets 404")

	outsiderClerkID := "user_test_outsider_" + stamp
	_, err = userService.CreateUser(ctx, &user.CreateUserRequest{
		ClerkID:   outsiderClerkID,
		Email:     "test.outsider@example.com",
		FirstName: "Out",
		LastName:  "Sider",
	})
	require.NoError(t, err)

	req = authedRequest(http.MethodGet, fmt.Sprintf("/api/v1/challenges/%s/check-ins/me", ch.ID), "", outsiderClerkID, vars)
	rr = httptest.NewRecorder()
	checkinHandler.GetMySummary(rr, req)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

// TestValueChallengeScoring checks proportional scoring and the
// idempotent resubmission of a day.
func TestValueChallengeScoring(t *testing.T) {
	pool := helpers.SetupTestDB(t)
	defer helpers.CleanupTestDB(t, pool)

	userService := services.NewUserService(pool)
	notificationService := services.NewNotificationService(pool)
	challengeService := services.NewChallengeService(pool, notificationService)
	checkinService := services.NewCheckinService(pool, challengeService)

	challengeHandler := handlers.NewChallengeHandler(challengeService)
	checkinHandler := handlers.NewCheckinHandler(checkinService)

	ctx := context.Background()
	clerkID := "user_test_steps_" + time.Now().Format("20060102150405")
	_, err := userService.CreateUser(ctx, &user.CreateUserRequest{
		ClerkID:   clerkID,
		Email:     "test.steps@example.com",
		FirstName: "Step",
		LastName:  "Counter",
	})
	require.NoError(t, err)

	startDate := time.Now().UTC().Format("2006-01-02")
	createBody := fmt.Sprintf(`{"name": "10k Steps", "type": "value", "dailyGoal": 10000, "unit": "steps", "startDate": "%s"}`, startDate)

	req := authedRequest(http.MethodPost, "/api/v1/challenges", createBody, clerkID, nil)
	rr := httptest.NewRecorder()
	challengeHandler.CreateChallenge(rr, req)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	var ch challenge.Challenge
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &ch))

	vars := map[string]string{"challengeId": ch.ID.String()}
	checkInPath := fmt.Sprintf("/api/v1/challenges/%s/check-ins", ch.ID)

	// Half the goal earns half the points, rounded
	req = authedRequest(http.MethodPost, checkInPath, `{"day": 1, "value": "5000"}`, clerkID, vars)
	rr = httptest.NewRecorder()
	checkinHandler.SubmitCheckIn(rr, req)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var summary checkin.ParticipantSummary
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &summary))
	assert.Equal(t, 13, summary.Participant.TotalPoints)

	// Resubmitting the same day replaces the record instead of adding one
	req = authedRequest(http.MethodPost, checkInPath, `{"day": 1, "value": "12000"}`, clerkID, vars)
	rr = httptest.NewRecorder()
	checkinHandler.SubmitCheckIn(rr, req)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &summary))
	assert.Equal(t, 25, summary.Participant.TotalPoints, "overachieving is capped and the day is replaced")

	// A value challenge requires a value
	req = authedRequest(http.MethodPost, checkInPath, `{"day": 1}`, clerkID, vars)
	rr = httptest.NewRecorder()
	checkinHandler.SubmitCheckIn(rr, req)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	// The projection on the user row converges with the ledger
	profile, err := userService.GetUserByClerkID(ctx, clerkID)
	require.NoError(t, err)
	assert.Equal(t, 25, profile.TotalPoints)
}

// authedRequest builds a request carrying the Clerk id the auth
// middleware would have injected, plus any mux path vars.
func authedRequest(method, path, body, clerkID string, vars map[string]string) *http.Request {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	req = req.WithContext(context.WithValue(req.Context(), middleware.ClerkIDKey, clerkID))
	if vars != nil {
		req = mux.SetURLVars(req, vars)
	}
	return req
}
