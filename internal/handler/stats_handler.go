package handler

import (
	"net/http"

	"github.com/Gomonuka/cafe-management/internal/service"
	"github.com/Gomonuka/cafe-management/pkg/logger"
)

// StatsHandler serves the company dashboard aggregates.
type StatsHandler struct {
	base
	statsService service.StatsServiceInterface
}

func NewStatsHandler(statsService service.StatsServiceInterface, log *logger.Logger) *StatsHandler {
	return &StatsHandler{
		base:         base{logger: log.WithComponent("stats_handler")},
		statsService: statsService,
	}
}

// GetOrderStats handles GET /api/v1/stats/orders
func (h *StatsHandler) GetOrderStats(w http.ResponseWriter, r *http.Request) {
	reqCtx := h.startRequest(r)

	caller, ok := requireUser(w, r, &h.base)
	if !ok {
		h.finishRequest(reqCtx, http.StatusUnauthorized)
		return
	}

	stats, err := h.statsService.GetOrderStats(r.Context(), caller)
	if err != nil {
		h.finishRequest(reqCtx, h.writeError(w, err))
		return
	}

	h.writeJSONResponse(w, http.StatusOK, stats)
	h.finishRequest(reqCtx, http.StatusOK)
}
