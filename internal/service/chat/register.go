package chat

import (
	"github.com/gin-gonic/gin"

	"github.com/oggyb/spark-match/internal/app"
)

// Registrar ties the chat routes into the HTTP server.
type Registrar struct {
	appCtx *app.AppContext
}

// NewRegistrar creates a new Registrar for the chat service.
func NewRegistrar(appCtx *app.AppContext) *Registrar {
	return &Registrar{appCtx: appCtx}
}

// Register attaches the chat routes; all of them need a caller identity.
func (r *Registrar) Register(_, protected *gin.RouterGroup) {
	h := NewHandler(NewChatService(r.appCtx))
	protected.POST("/chat/messages", h.Append)
	protected.GET("/chat/messages", h.List)
}
