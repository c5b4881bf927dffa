// internal/errors/mapper.go
package errors

import (
	"context"
	"errors"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Map converts repo/infra errors into classified service errors.
// Keeps service layer clean by centralizing error mapping.
func Map(err error) error {
	if err == nil {
		return nil
	}

	var e *Error
	switch {
	case errors.As(err, &e):
		return e

	case errors.Is(err, gorm.ErrRecordNotFound):
		return NotFound("record not found")

	case errors.Is(err, gorm.ErrDuplicatedKey):
		return &Error{Kind: KindConflict, Message: "record already exists", Err: err}

	case errors.Is(err, context.DeadlineExceeded):
		return Internal("request timed out", err)

	case errors.Is(err, context.Canceled):
		return Internal("request was canceled", err)

	default:
		// raw detail stays in Err for logs, never in Message
		return Internal("internal error", err)
	}
}

// Write maps err and renders the JSON error envelope.
func Write(c *gin.Context, err error) {
	var e *Error
	errors.As(Map(err), &e)
	c.AbortWithStatusJSON(e.Status(), gin.H{
		"message": e.Message,
		"code":    e.Kind,
	})
}
