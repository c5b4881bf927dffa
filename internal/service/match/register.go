package match

import (
	"github.com/gin-gonic/gin"

	"github.com/oggyb/spark-match/internal/app"
)

// Registrar ties the match routes into the HTTP server.
type Registrar struct {
	appCtx *app.AppContext
}

// NewRegistrar creates a new Registrar for the match service.
func NewRegistrar(appCtx *app.AppContext) *Registrar {
	return &Registrar{appCtx: appCtx}
}

// Register attaches the match routes; all of them need a caller identity.
func (r *Registrar) Register(_, protected *gin.RouterGroup) {
	h := NewHandler(NewMatchService(r.appCtx))
	protected.GET("/matches", h.List)
	protected.DELETE("/matches/:id", h.Unmatch)
}
