package handler

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/playwell/player-service/internal/auth"
	"github.com/playwell/player-service/internal/domain"
	"github.com/playwell/player-service/internal/service"
)

// MeHandler serves the JWT-authenticated read endpoints.
type MeHandler struct {
	playerSvc *service.PlayerService
}

// NewMeHandler creates a new MeHandler.
func NewMeHandler(playerSvc *service.PlayerService) *MeHandler {
	return &MeHandler{playerSvc: playerSvc}
}

// GetMe handles GET /api/v1/players/me.
func (h *MeHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	playerID, err := subjectID(r)
	if err != nil {
		RespondError(w, err)
		return
	}

	player, err := h.playerSvc.Profile(r.Context(), playerID)
	if err != nil {
		RespondError(w, err)
		return
	}

	RespondJSON(w, http.StatusOK, player)
}

// GetPlaytime handles GET /api/v1/players/me/playtime.
func (h *MeHandler) GetPlaytime(w http.ResponseWriter, r *http.Request) {
	playerID, err := subjectID(r)
	if err != nil {
		RespondError(w, err)
		return
	}

	report, err := h.playerSvc.Playtime(r.Context(), playerID)
	if err != nil {
		RespondError(w, err)
		return
	}

	RespondJSON(w, http.StatusOK, report)
}

func subjectID(r *http.Request) (uuid.UUID, error) {
	sub := auth.SubjectFromContext(r.Context())
	id, err := uuid.Parse(sub)
	if err != nil {
		return uuid.Nil, domain.ErrUnauthorized("invalid token subject")
	}
	return id, nil
}
