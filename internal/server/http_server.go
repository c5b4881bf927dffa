package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/oggyb/spark-match/internal/app"
	"github.com/oggyb/spark-match/internal/config"
	"github.com/oggyb/spark-match/internal/middleware"
	"github.com/oggyb/spark-match/internal/observability"
)

// NewRouter builds the gin engine: global middleware, /healthz, then every
// registrar's routes.
func NewRouter(cfg *config.Config, appCtx *app.AppContext, registrars ...Registrar) *gin.Engine {
	if cfg.App.ENV == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(middleware.Recovery(appCtx.Logger), middleware.RequestID())
	if cfg.Trace.Enabled {
		r.Use(observability.Middleware(cfg.App.Name))
	}
	r.Use(middleware.RequestLogger(appCtx.Logger), middleware.CORS(cfg.CORS.AllowOrigins))

	r.GET("/healthz", healthz(appCtx))

	public := r.Group("/")
	protected := r.Group("/", middleware.RequireAuth(appCtx.Tokens))
	for _, reg := range registrars {
		reg.Register(public, protected)
	}
	return r
}

// NewHTTPServer wraps handler in an http.Server configured from cfg.
func NewHTTPServer(cfg *config.Config, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              fmt.Sprintf("%s:%s", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler:           handler,
		ReadTimeout:       cfg.HTTP.ReadTimeout,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      cfg.HTTP.WriteTimeout,
		IdleTimeout:       60 * time.Second,
	}
}

// CheckDependencies pings the database and Redis.
func CheckDependencies(ctx context.Context, appCtx *app.AppContext) error {
	sqlDB, err := appCtx.DB.DB()
	if err != nil {
		return fmt.Errorf("db: %w", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("db: %w", err)
	}
	if appCtx.RedisCache != nil {
		if err := appCtx.RedisCache.Ping(ctx); err != nil {
			return fmt.Errorf("redis: %w", err)
		}
	}
	return nil
}

func healthz(appCtx *app.AppContext) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if err := CheckDependencies(ctx, appCtx); err != nil {
			appCtx.Logger.Warn("health check failed", "err", err)
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}

// ServeHTTP runs srv until it fails or is shut down; a graceful shutdown is
// not an error.
func ServeHTTP(srv *http.Server) error {
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}
