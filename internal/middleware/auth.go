package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/oggyb/spark-match/internal/auth"
	svcErr "github.com/oggyb/spark-match/internal/errors"
)

const ctxUserID = "user_id"

// RequireAuth admits requests carrying a valid `Authorization: Bearer <token>`
// and stores the caller id in the request context. Every failure looks the
// same to the client: 401 {"message":"Unauthorized"}.
func RequireAuth(tokens *auth.TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := tokens.Verify(bearerToken(c))
		if !ok {
			svcErr.Write(c, svcErr.Unauthorized())
			return
		}
		c.Request = c.Request.WithContext(auth.WithUserID(c.Request.Context(), userID))
		c.Set(ctxUserID, userID)
		c.Next()
	}
}

// CurrentUserID returns the caller id set by RequireAuth.
func CurrentUserID(c *gin.Context) (uint64, bool) {
	return auth.UserIDFrom(c.Request.Context())
}

// CallerID is CurrentUserID for handlers; it answers 401 itself when the
// identity is missing so handlers can just return.
func CallerID(c *gin.Context) (uint64, bool) {
	userID, ok := CurrentUserID(c)
	if !ok {
		svcErr.Write(c, svcErr.Unauthorized())
	}
	return userID, ok
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if len(header) > 7 && strings.EqualFold(header[:7], "Bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return ""
}
