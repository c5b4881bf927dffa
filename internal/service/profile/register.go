package profile

import (
	"github.com/gin-gonic/gin"

	"github.com/oggyb/spark-match/internal/app"
)

// Registrar ties the profile routes into the HTTP server.
type Registrar struct {
	appCtx *app.AppContext
}

func NewRegistrar(appCtx *app.AppContext) *Registrar {
	return &Registrar{appCtx: appCtx}
}

func (r *Registrar) Register(_, protected *gin.RouterGroup) {
	h := NewHandler(NewProfileService(r.appCtx))
	protected.GET("/users/profile", h.Get)
	protected.PATCH("/users/profile", h.Patch)
}
