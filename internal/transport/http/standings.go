package http

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/iamasit07/4-in-a-row/engine/internal/repository/postgres"
	"github.com/iamasit07/4-in-a-row/engine/internal/transport/http/middleware"
)

const (
	defaultStandingsLimit = 20
	maxStandingsLimit     = 100
)

type StandingsStore interface {
	GetStandings(ctx context.Context, limit int) ([]postgres.Standing, error)
}

type StandingsHandler struct {
	Store StandingsStore
}

func NewStandingsHandler(store StandingsStore) *StandingsHandler {
	return &StandingsHandler{Store: store}
}

type standingResponse struct {
	postgres.Standing
	WinRate float64 `json:"winRate"`
}

// GetStandings handles GET /api/standings?limit=N.
func (h *StandingsHandler) GetStandings(c *gin.Context) {
	limit := defaultStandingsLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			middleware.Abort(c, http.StatusBadRequest, "INVALID_REQUEST", "limit must be a positive integer")
			return
		}
		limit = min(n, maxStandingsLimit)
	}

	standings, err := h.Store.GetStandings(c.Request.Context(), limit)
	if err != nil {
		_ = c.Error(err)
		return
	}

	response := make([]standingResponse, 0, len(standings))
	for _, s := range standings {
		response = append(response, standingResponse{Standing: s, WinRate: s.WinRate()})
	}

	c.JSON(http.StatusOK, gin.H{"standings": response})
}
