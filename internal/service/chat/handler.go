package chat

import (
	"math"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	svcErr "github.com/oggyb/spark-match/internal/errors"
	"github.com/oggyb/spark-match/internal/middleware"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

type appendRequest struct {
	MatchID  *float64          `json:"matchId"`
	Messages []IncomingMessage `json:"messages"`
}

// Append handles POST /chat/messages.
func (h *Handler) Append(c *gin.Context) {
	userID, ok := middleware.CallerID(c)
	if !ok {
		return
	}

	var req appendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		svcErr.Write(c, svcErr.InvalidArgument("Invalid JSON"))
		return
	}
	if req.MatchID == nil || *req.MatchID < 1 || *req.MatchID != math.Trunc(*req.MatchID) || *req.MatchID > math.MaxInt64 {
		svcErr.Write(c, svcErr.InvalidArgument("matchId is required"))
		return
	}

	created, err := h.svc.AppendMessages(c.Request.Context(), uint64(*req.MatchID), userID, req.Messages)
	if err != nil {
		svcErr.Write(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"created": created})
}

// List handles GET /chat/messages?matchId&limit.
func (h *Handler) List(c *gin.Context) {
	userID, ok := middleware.CallerID(c)
	if !ok {
		return
	}

	matchID, err := strconv.ParseUint(c.Query("matchId"), 10, 64)
	if err != nil {
		svcErr.Write(c, svcErr.InvalidArgument("matchId is required"))
		return
	}
	limit := DefaultLimit
	if raw := c.Query("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			limit = n
		}
	}

	msgs, err := h.svc.ListMessages(c.Request.Context(), matchID, userID, limit)
	if err != nil {
		svcErr.Write(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": msgs})
}
