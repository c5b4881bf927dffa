package account

import (
	"github.com/gin-gonic/gin"

	"github.com/oggyb/spark-match/internal/app"
)

// Registrar ties signup and login into the HTTP server.
type Registrar struct {
	appCtx *app.AppContext
}

func NewRegistrar(appCtx *app.AppContext) *Registrar {
	return &Registrar{appCtx: appCtx}
}

// Register attaches the auth routes; they are public by nature.
func (r *Registrar) Register(public, _ *gin.RouterGroup) {
	h := NewHandler(NewAccountService(r.appCtx))
	public.POST("/auth/signup", h.Signup)
	public.POST("/auth/login", h.Login)
}
