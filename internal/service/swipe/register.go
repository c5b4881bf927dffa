package swipe

import (
	"github.com/gin-gonic/gin"

	"github.com/oggyb/spark-match/internal/app"
	"github.com/oggyb/spark-match/internal/service/match"
)

// Registrar ties the swipe, discovery and liked-me routes into the HTTP server.
type Registrar struct {
	appCtx *app.AppContext
}

// NewRegistrar creates a new Registrar for the swipe service.
func NewRegistrar(appCtx *app.AppContext) *Registrar {
	return &Registrar{appCtx: appCtx}
}

// Register attaches the swipe routes; all of them need a caller identity.
func (r *Registrar) Register(_, protected *gin.RouterGroup) {
	h := NewHandler(NewSwipeService(r.appCtx, match.NewMatchService(r.appCtx)))
	protected.POST("/swipe", h.Swipe)
	protected.GET("/swipe/next", h.Next)
	protected.GET("/liked-me", h.LikedMe)
	protected.GET("/liked-me/count", h.CountLikedMe)
}
