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

	"tryMeAPI/internal/challenge"
	"tryMeAPI/middleware"
	"tryMeAPI/services"
)

type ChallengeHandler struct {
	challengeService *services.ChallengeService
}

func NewChallengeHandler(challengeService *services.ChallengeService) *ChallengeHandler {
	return &ChallengeHandler{
		challengeService: challengeService,
	}
}

func (h *ChallengeHandler) CreateChallenge(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	var req challenge.CreateChallengeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	ch, err := h.challengeService.CreateChallenge(ctx, clerkID, &req)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidChallenge):
			respondWithError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, services.ErrUserNotFound):
			respondWithError(w, http.StatusNotFound, err.Error())
		default:
			log.Printf("CreateChallenge Handler: %v", err)
			respondWithError(w, http.StatusInternalServerError, "Failed to create challenge")
		}
		return
	}

	respondWithJSON(w, http.StatusCreated, ch)
}

func (h *ChallengeHandler) ListChallenges(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	challenges, err := h.challengeService.ListChallenges(ctx, clerkID)
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			respondWithError(w, http.StatusNotFound, err.Error())
			return
		}
		log.Printf("ListChallenges Handler: %v", err)
		respondWithError(w, http.StatusInternalServerError, "Failed to load challenges")
		return
	}

	respondWithJSON(w, http.StatusOK, challenges)
}

func (h *ChallengeHandler) GetChallenge(w http.ResponseWriter, r *http.Request) {
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

	detail, err := h.challengeService.GetChallenge(ctx, clerkID, challengeID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrChallengeNotFound), errors.Is(err, services.ErrUserNotFound):
			respondWithError(w, http.StatusNotFound, "Challenge not found")
		default:
			log.Printf("GetChallenge Handler: %v", err)
			respondWithError(w, http.StatusInternalServerError, "Failed to load challenge")
		}
		return
	}

	respondWithJSON(w, http.StatusOK, detail)
}

func (h *ChallengeHandler) JoinChallenge(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	var req challenge.JoinChallengeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	ch, err := h.challengeService.JoinChallenge(ctx, clerkID, req.JoinCode)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidJoinCode), errors.Is(err, services.ErrAlreadyParticipant):
			respondWithError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, services.ErrChallengeNotFound), errors.Is(err, services.ErrUserNotFound):
			respondWithError(w, http.StatusNotFound, "Challenge not found")
		default:
			log.Printf("JoinChallenge Handler: %v", err)
			respondWithError(w, http.StatusInternalServerError, "Failed to join challenge")
		}
		return
	}

	respondWithJSON(w, http.StatusOK, ch)
}
