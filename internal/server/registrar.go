package server

import "github.com/gin-gonic/gin"

// Registrar is a common interface for all HTTP service registrars.
// public routes are open; protected routes run behind the auth guard.
type Registrar interface {
	Register(public, protected *gin.RouterGroup)
}
