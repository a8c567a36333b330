package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"tryMeAPI/internal/checkin"
	"tryMeAPI/internal/points"
	"tryMeAPI/middleware"
	"tryMeAPI/services"
)

type CheckinHandler struct {
	checkinService *services.CheckinService
}

func NewCheckinHandler(checkinService *services.CheckinService) *CheckinHandler {
	return &CheckinHandler{
		checkinService: checkinService,
	}
}

func (h *CheckinHandler) SubmitCheckIn(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	challengeID, err := uuid.Parse(mux.Vars(r)["challengeId"])
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid challenge id")
		return
	}

	var req checkin.SubmitCheckInRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	summary, err := h.checkinService.SubmitCheckIn(ctx, clerkID, challengeID, &req)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidDay),
			errors.Is(err, services.ErrFutureDay),
			errors.Is(err, services.ErrValueRequired),
			errors.Is(err, points.ErrInvalidValue):
			respondWithError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, services.ErrChallengeNotFound), errors.Is(err, services.ErrUserNotFound):
			respondWithError(w, http.StatusNotFound, "Challenge not found")
		case errors.Is(err, points.ErrMissingDailyGoal):
			// Creation should have made this impossible; fail loudly.
			log.Printf("SubmitCheckIn Handler: data integrity violation on challenge %s: %v", challengeID, err)
			respondWithError(w, http.StatusInternalServerError, "Challenge is misconfigured")
		default:
			log.Printf("SubmitCheckIn Handler: %v", err)
			respondWithError(w, http.StatusInternalServerError, "Failed to record check-in")
		}
		return
	}

	respondWithJSON(w, http.StatusOK, summary)
}

func (h *CheckinHandler) GetMySummary(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	challengeID, err := uuid.Parse(mux.Vars(r)["challengeId"])
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid challenge id")
		return
	}

	summary, err := h.checkinService.GetParticipantSummary(ctx, clerkID, challengeID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrChallengeNotFound), errors.Is(err, services.ErrUserNotFound):
			respondWithError(w, http.StatusNotFound, "Challenge not found")
		default:
			log.Printf("GetMySummary Handler: %v", err)
			respondWithError(w, http.StatusInternalServerError, "Failed to load check-ins")
		}
		return
	}

	respondWithJSON(w, http.StatusOK, summary)
}

func (h *CheckinHandler) GetLeaderboard(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	challengeID, err := uuid.Parse(mux.Vars(r)["challengeId"])
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid challenge id")
		return
	}

	entries, err := h.checkinService.GetLeaderboard(ctx, clerkID, challengeID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrChallengeNotFound), errors.Is(err, services.ErrUserNotFound):
			respondWithError(w, http.StatusNotFound, "Challenge not found")
		default:
			log.Printf("GetLeaderboard Handler: %v", err)
			respondWithError(w, http.StatusInternalServerError, "Failed to load leaderboard")
		}
		return
	}

	respondWithJSON(w, http.StatusOK, entries)
}
