package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/iamasit07/4-in-a-row/engine/internal/domain"
	"github.com/iamasit07/4-in-a-row/engine/internal/service/bot"
	"github.com/iamasit07/4-in-a-row/engine/internal/service/move"
	"github.com/iamasit07/4-in-a-row/engine/internal/transport/http/middleware"
)

// MoveService answers move requests.
type MoveService interface {
	ChooseMove(ctx context.Context, req move.Request) (move.Response, error)
	Profiles() []bot.Profile
}

type MoveHandler struct {
	Moves MoveService
}

func NewMoveHandler(moves MoveService) *MoveHandler {
	return &MoveHandler{Moves: moves}
}

// ChooseMove handles POST /api/move.
func (h *MoveHandler) ChooseMove(c *gin.Context) {
	var req move.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.Abort(c, http.StatusBadRequest, "INVALID_REQUEST", "request body must be JSON")
		return
	}

	resp, err := h.Moves.ChooseMove(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// ListProfiles handles GET /api/profiles.
func (h *MoveHandler) ListProfiles(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"profiles": h.Moves.Profiles()})
}

// respondError maps input errors to 4xx and hands everything else to ErrorHandler.
func respondError(c *gin.Context, err error) {
	status, code := classify(err)
	if status == http.StatusInternalServerError {
		_ = c.Error(err)
		return
	}
	middleware.Abort(c, status, code, err.Error())
}

func classify(err error) (int, string) {
	switch {
	case errors.Is(err, move.ErrGameOver):
		return http.StatusConflict, "GAME_OVER"
	case errors.Is(err, bot.ErrUnknownProfile):
		return http.StatusBadRequest, "UNKNOWN_PROFILE"
	case errors.Is(err, domain.ErrInvalidPlayer):
		return http.StatusBadRequest, "INVALID_PLAYER"
	case errors.Is(err, domain.ErrInvalidBoard),
		errors.Is(err, bot.ErrBoardMismatch),
		errors.Is(err, domain.ErrInvalidColumn),
		errors.Is(err, domain.ErrColumnFull):
		return http.StatusBadRequest, "INVALID_BOARD"
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return http.StatusServiceUnavailable, "TIMEOUT"
	default:
		return http.StatusInternalServerError, "INTERNAL_ERROR"
	}
}
