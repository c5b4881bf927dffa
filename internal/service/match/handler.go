package match

import (
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

// List handles GET /matches.
func (h *Handler) List(c *gin.Context) {
	userID, ok := middleware.CallerID(c)
	if !ok {
		return
	}
	matches, err := h.svc.ListMatches(c.Request.Context(), userID)
	if err != nil {
		svcErr.Write(c, err)
		return
	}
	c.JSON(http.StatusOK, matches)
}

// Unmatch handles DELETE /matches/:id.
func (h *Handler) Unmatch(c *gin.Context) {
	userID, ok := middleware.CallerID(c)
	if !ok {
		return
	}
	matchID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		svcErr.Write(c, svcErr.InvalidArgument("Invalid match id"))
		return
	}
	if err := h.svc.Unmatch(c.Request.Context(), matchID, userID); err != nil {
		svcErr.Write(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
