package handler

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/playwell/player-service/internal/domain"
	"github.com/playwell/player-service/internal/service"
)

// PlayerHandler handles the public player lifecycle endpoints.
type PlayerHandler struct {
	playerSvc *service.PlayerService
}

// NewPlayerHandler creates a new PlayerHandler.
func NewPlayerHandler(playerSvc *service.PlayerService) *PlayerHandler {
	return &PlayerHandler{playerSvc: playerSvc}
}

// Register handles POST /api/v1/players/register.
func (h *PlayerHandler) Register(w http.ResponseWriter, r *http.Request) {
	var input service.RegisterInput
	if err := DecodeJSON(r, &input); err != nil {
		RespondError(w, domain.ErrValidation("invalid request body"))
		return
	}

	player, err := h.playerSvc.Register(r.Context(), input)
	if err != nil {
		RespondError(w, err)
		return
	}

	RespondJSON(w, http.StatusCreated, player)
}

// Login handles POST /api/v1/players/login.
func (h *PlayerHandler) Login(w http.ResponseWriter, r *http.Request) {
	var input service.LoginInput
	if err := DecodeJSON(r, &input); err != nil {
		RespondError(w, domain.ErrValidation("invalid request body"))
		return
	}

	result, err := h.playerSvc.Login(r.Context(), input)
	if err != nil {
		RespondError(w, err)
		return
	}

	RespondJSON(w, http.StatusCreated, result)
}

type logoutRequest struct {
	SessionID string `json:"sessionId"`
}

// Logout handles POST /api/v1/players/logout.
func (h *PlayerHandler) Logout(w http.ResponseWriter, r *http.Request) {
	var req logoutRequest
	if err := DecodeJSON(r, &req); err != nil {
		RespondError(w, domain.ErrValidation("invalid request body"))
		return
	}

	sessionID, err := uuid.Parse(req.SessionID)
	if err != nil {
		RespondError(w, domain.ErrValidation("invalid session id"))
		return
	}

	if err := h.playerSvc.Logout(r.Context(), sessionID); err != nil {
		RespondError(w, err)
		return
	}

	RespondJSON(w, http.StatusOK, map[string]string{"message": "Logged out successfully"})
}

// SetDailyLimit handles POST /api/v1/players/set-daily-limit.
func (h *PlayerHandler) SetDailyLimit(w http.ResponseWriter, r *http.Request) {
	var input service.SetLimitInput
	if err := DecodeJSON(r, &input); err != nil {
		RespondError(w, domain.ErrValidation("invalid request body"))
		return
	}

	if err := h.playerSvc.SetDailyLimit(r.Context(), input); err != nil {
		RespondError(w, err)
		return
	}

	RespondJSON(w, http.StatusOK, map[string]string{"message": "Daily time limit set successfully"})
}
