package profile

import (
	"bytes"
	"encoding/json"
	"net/http"

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

// Get handles GET /users/profile.
func (h *Handler) Get(c *gin.Context) {
	userID, ok := middleware.CallerID(c)
	if !ok {
		return
	}
	p, err := h.svc.GetProfile(c.Request.Context(), userID)
	if err != nil {
		svcErr.Write(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// Patch handles PATCH /users/profile. Fields of the wrong JSON type are
// ignored rather than rejected.
func (h *Handler) Patch(c *gin.Context) {
	userID, ok := middleware.CallerID(c)
	if !ok {
		return
	}

	var raw map[string]json.RawMessage
	if err := c.ShouldBindJSON(&raw); err != nil {
		svcErr.Write(c, svcErr.InvalidArgument("Invalid JSON"))
		return
	}

	upd := Update{
		Name:      field[string](raw, "name"),
		Age:       field[int](raw, "age"),
		Bio:       field[string](raw, "bio"),
		PhotoURL:  field[string](raw, "photoUrl"),
		Goal:      field[string](raw, "goal"),
		IdealDate: field[string](raw, "idealDate"),
	}
	if v := field[[]string](raw, "hobbies"); v != nil {
		upd.Hobbies = *v
	}
	if v := field[[]string](raw, "personality"); v != nil {
		upd.Personality = *v
	}

	p, err := h.svc.UpdateProfile(c.Request.Context(), userID, upd)
	if err != nil {
		svcErr.Write(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// field decodes raw[key] as T; absent, null or mistyped values yield nil.
func field[T any](raw map[string]json.RawMessage, key string) *T {
	v, ok := raw[key]
	if !ok || bytes.Equal(bytes.TrimSpace(v), []byte("null")) {
		return nil
	}
	var out T
	if err := json.Unmarshal(v, &out); err != nil {
		return nil
	}
	return &out
}
