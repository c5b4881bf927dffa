package swipe

import (
	"math"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	svcErr "github.com/oggyb/spark-match/internal/errors"
	"github.com/oggyb/spark-match/internal/middleware"
)

// HeaderNextCursor carries the liked-me cursor of the following page.
const HeaderNextCursor = "X-Next-Cursor"

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

type swipeRequest struct {
	ToUserID  *float64 `json:"toUserId"`
	Direction string   `json:"direction"`
}

// Swipe handles POST /swipe.
func (h *Handler) Swipe(c *gin.Context) {
	userID, ok := middleware.CallerID(c)
	if !ok {
		return
	}

	var req swipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		svcErr.Write(c, svcErr.InvalidArgument("Invalid input"))
		return
	}
	toID, ok := userIDFromNumber(req.ToUserID)
	if !ok {
		svcErr.Write(c, svcErr.InvalidArgument("Invalid input"))
		return
	}

	res, err := h.svc.RecordSwipe(c.Request.Context(), userID, toID, req.Direction)
	if err != nil {
		svcErr.Write(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// Next handles GET /swipe/next?ageMin&ageMax.
func (h *Handler) Next(c *gin.Context) {
	userID, ok := middleware.CallerID(c)
	if !ok {
		return
	}

	filter := AgeFilter{
		Min: queryInt(c, "ageMin"),
		Max: queryInt(c, "ageMax"),
	}
	next, err := h.svc.NextCandidate(c.Request.Context(), userID, filter)
	if err != nil {
		svcErr.Write(c, err)
		return
	}
	if next.Candidate == nil {
		c.JSON(http.StatusOK, gin.H{"done": true, "filteredOut": next.FilteredOut})
		return
	}
	c.JSON(http.StatusOK, next.Candidate)
}

// LikedMe handles GET /liked-me?limit&cursor.
func (h *Handler) LikedMe(c *gin.Context) {
	userID, ok := middleware.CallerID(c)
	if !ok {
		return
	}

	limit, _ := strconv.Atoi(c.Query("limit"))
	page, err := h.svc.LikedMe(c.Request.Context(), userID, c.Query("cursor"), limit)
	if err != nil {
		svcErr.Write(c, err)
		return
	}
	if page.NextCursor != "" {
		c.Header(HeaderNextCursor, page.NextCursor)
	}
	c.JSON(http.StatusOK, page.Users)
}

// CountLikedMe handles GET /liked-me/count.
func (h *Handler) CountLikedMe(c *gin.Context) {
	userID, ok := middleware.CallerID(c)
	if !ok {
		return
	}
	n, err := h.svc.CountLikedMe(c.Request.Context(), userID)
	if err != nil {
		svcErr.Write(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": n})
}

// userIDFromNumber accepts positive integral JSON numbers only.
func userIDFromNumber(v *float64) (uint64, bool) {
	if v == nil || *v < 1 || *v != math.Trunc(*v) || *v > math.MaxInt64 {
		return 0, false
	}
	return uint64(*v), true
}

// queryInt returns nil for absent or unparseable values; they do not filter.
func queryInt(c *gin.Context, key string) *int {
	n, err := strconv.Atoi(c.Query(key))
	if err != nil {
		return nil
	}
	return &n
}
