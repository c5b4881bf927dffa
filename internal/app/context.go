package app

import (
	"log/slog"

	"gorm.io/gorm"

	"github.com/oggyb/spark-match/internal/auth"
	"github.com/oggyb/spark-match/internal/cache"
	"github.com/oggyb/spark-match/internal/realtime"
)

// AppContext holds shared dependencies (DB, Redis, Logger, etc.)
type AppContext struct {
	DB         *gorm.DB
	RedisCache *cache.RedisCache
	Logger     *slog.Logger
	Tokens     *auth.TokenManager
	Events     realtime.Publisher
}

// New creates a new AppContext
func New(
	db *gorm.DB,
	rdb *cache.RedisCache,
	logger *slog.Logger,
	tokens *auth.TokenManager,
	events realtime.Publisher,
) *AppContext {
	if events == nil {
		events = realtime.Nop()
	}
	return &AppContext{
		DB:         db,
		RedisCache: rdb,
		Logger:     logger,
		Tokens:     tokens,
		Events:     events,
	}
}
