package handler

import (
	"net/http"

	"github.com/Gomonuka/cafe-management/internal/ws"
	"github.com/Gomonuka/cafe-management/pkg/logger"
)

// BoardHandler attaches staff websocket clients to the live order
// feed of their company.
type BoardHandler struct {
	base
	hub *ws.Hub
}

func NewBoardHandler(hub *ws.Hub, log *logger.Logger) *BoardHandler {
	return &BoardHandler{
		base: base{logger: log.WithComponent("board_handler")},
		hub:  hub,
	}
}

// Subscribe handles GET /api/v1/board/ws
func (h *BoardHandler) Subscribe(w http.ResponseWriter, r *http.Request) {
	caller := callerFromRequest(r)
	if caller.UserID == "" {
		h.writeErrorResponse(w, http.StatusUnauthorized, "missing user identity")
		return
	}
	if !caller.Staff() || caller.CompanyID == "" {
		h.writeErrorResponse(w, http.StatusForbidden, "staff access required")
		return
	}

	h.logger.Info("Board subscription", "user_id", caller.UserID, "company_id", caller.CompanyID)
	ws.ServeWS(h.hub, h.logger, caller.CompanyID, w, r)
}
