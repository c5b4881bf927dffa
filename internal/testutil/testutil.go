// Package testutil wires throwaway infrastructure for package tests:
// an in-memory SQLite database, a miniredis instance and a silent logger.
package testutil

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"github.com/oggyb/spark-match/internal/app"
	"github.com/oggyb/spark-match/internal/auth"
	"github.com/oggyb/spark-match/internal/cache"
	"github.com/oggyb/spark-match/internal/config"
	"github.com/oggyb/spark-match/internal/db"
	"github.com/oggyb/spark-match/internal/logger"
	"github.com/oggyb/spark-match/internal/realtime"
)

const (
	// Secret signs every token issued in tests.
	Secret = "test-secret"
	// Channel carries realtime events published by AppContext.
	Channel = "spark:test"
)

// DB opens a private in-memory SQLite database with the full schema.
// A single connection keeps the memory database alive and makes
// transactions behave like they do on a real server.
func DB(tb testing.TB) *gorm.DB {
	tb.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(tb.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=private&_foreign_keys=on", name)
	database, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		NowFunc:        func() time.Time { return time.Now().UTC().Truncate(time.Millisecond) },
		Logger:         gormLogger.Default.LogMode(gormLogger.Silent),
		TranslateError: true,
	})
	require.NoError(tb, err)

	sqlDB, err := database.DB()
	require.NoError(tb, err)
	sqlDB.SetMaxOpenConns(1)
	tb.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(tb, db.Migrate(database))
	return database
}

// SeededDB is DB plus db.SeedMinimalTestData.
func SeededDB(tb testing.TB) *gorm.DB {
	tb.Helper()
	database := DB(tb)
	require.NoError(tb, db.SeedMinimalTestData(database))
	return database
}

// Redis starts a miniredis server and returns a cache bound to it.
func Redis(tb testing.TB) (*cache.RedisCache, *miniredis.Miniredis) {
	tb.Helper()

	mr, err := miniredis.Run()
	require.NoError(tb, err)
	tb.Cleanup(mr.Close)

	cfg := &config.Config{}
	cfg.Redis.Addr = mr.Addr()
	rc := cache.NewRedisCache(cfg)
	tb.Cleanup(func() { _ = rc.Close() })
	return rc, mr
}

// AppContext wires a seeded DB, miniredis, a Redis realtime publisher and a
// silent logger into an AppContext.
func AppContext(tb testing.TB) (*app.AppContext, *miniredis.Miniredis) {
	tb.Helper()

	database := SeededDB(tb)
	rc, mr := Redis(tb)
	log := logger.Discard()

	tokens := auth.NewTokenManager(Secret, 7*24*time.Hour)
	bus := realtime.NewRedisPublisher(rc.Client, Channel, log)
	return app.New(database, rc, log, tokens, bus), mr
}

// Subscribe listens on Channel and decodes every event published there.
func Subscribe(tb testing.TB, rc *cache.RedisCache) <-chan realtime.Event {
	tb.Helper()

	ctx := context.Background()
	sub := rc.Client.Subscribe(ctx, Channel)
	_, err := sub.Receive(ctx) // subscription confirmation
	require.NoError(tb, err)
	tb.Cleanup(func() { _ = sub.Close() })

	out := make(chan realtime.Event, 16)
	go func() {
		for msg := range sub.Channel() {
			var ev realtime.Event
			if json.Unmarshal([]byte(msg.Payload), &ev) == nil {
				out <- ev
			}
		}
	}()
	return out
}

// NextEvent waits up to two seconds for the next event.
func NextEvent(tb testing.TB, events <-chan realtime.Event) realtime.Event {
	tb.Helper()
	select {
	case ev := <-events:
		return ev
	case <-time.After(2 * time.Second):
		tb.Fatal("no realtime event received")
		return realtime.Event{}
	}
}
