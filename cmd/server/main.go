package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/oggyb/spark-match/internal/app"
	"github.com/oggyb/spark-match/internal/auth"
	"github.com/oggyb/spark-match/internal/cache"
	"github.com/oggyb/spark-match/internal/config"
	"github.com/oggyb/spark-match/internal/db"
	"github.com/oggyb/spark-match/internal/logger"
	"github.com/oggyb/spark-match/internal/observability"
	"github.com/oggyb/spark-match/internal/realtime"
	"github.com/oggyb/spark-match/internal/server"
	"github.com/oggyb/spark-match/internal/service/account"
	"github.com/oggyb/spark-match/internal/service/chat"
	"github.com/oggyb/spark-match/internal/service/match"
	"github.com/oggyb/spark-match/internal/service/profile"
	"github.com/oggyb/spark-match/internal/service/swipe"
)

func main() {
	if err := run(); err != nil {
		logger.Error("server exited", "err", err)
		os.Exit(1)
	}
}

func run() error {
	cfg := config.New()

	// Init logger (global singleton)
	logger.InitFromConfig(cfg)
	log := logger.L()

	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := observability.InitTracing(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdownTracing(flushCtx)
	}()

	// Init DB
	database, err := db.NewDB(cfg)
	if err != nil {
		return err
	}

	// Init Redis
	redisCache := cache.NewRedisCache(cfg)
	defer redisCache.Close()
	if err := redisCache.Ping(ctx); err != nil {
		log.Error("failed to connect to redis", "err", err)
		return err
	}

	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	events := realtime.NewRedisPublisher(redisCache.Client, cfg.Realtime.Channel, log)
	appCtx := app.New(database, redisCache, log, tokens, events)

	if cfg.App.ENV == "development" {
		if err := db.SeedTestData(database); err != nil {
			log.Error("failed to seed", "err", err)
		}
	}

	registrars := []server.Registrar{
		account.NewRegistrar(appCtx),
		profile.NewRegistrar(appCtx),
		swipe.NewRegistrar(appCtx),
		match.NewRegistrar(appCtx),
		chat.NewRegistrar(appCtx),
	}
	httpServer := server.NewHTTPServer(cfg, server.NewRouter(cfg, appCtx, registrars...))

	grpcServer, err := server.NewGRPCServer(cfg.GRPC.Host + ":" + cfg.GRPC.Port)
	if err != nil {
		return err
	}
	if err := server.CheckDependencies(ctx, appCtx); err == nil {
		grpcServer.SetServing(true)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting HTTP server", "addr", httpServer.Addr)
		return server.ServeHTTP(httpServer)
	})
	g.Go(func() error {
		log.Info("starting gRPC server", "addr", grpcServer.Addr())
		return grpcServer.Serve()
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")

		grpcServer.SetServing(false)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
		defer cancel()
		err := httpServer.Shutdown(shutdownCtx)
		grpcServer.Stop()
		return err
	})

	return g.Wait()
}
