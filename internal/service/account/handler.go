package account

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	svcErr "github.com/oggyb/spark-match/internal/errors"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Signup handles POST /auth/signup.
func (h *Handler) Signup(c *gin.Context) {
	h.authenticate(c, h.svc.Signup)
}

// Login handles POST /auth/login.
func (h *Handler) Login(c *gin.Context) {
	h.authenticate(c, h.svc.Login)
}

func (h *Handler) authenticate(c *gin.Context, fn func(ctx context.Context, email, password string) (*Session, error)) {
	var req credentials
	if err := c.ShouldBindJSON(&req); err != nil {
		svcErr.Write(c, svcErr.InvalidArgument("Email and password required"))
		return
	}
	sess, err := fn(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		svcErr.Write(c, err)
		return
	}
	c.JSON(http.StatusOK, sess)
}
