package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"

	"github.com/weiawesome/wes-io-live/interaction-service/internal/cache"
	"github.com/weiawesome/wes-io-live/interaction-service/internal/config"
	"github.com/weiawesome/wes-io-live/interaction-service/internal/handler"
	"github.com/weiawesome/wes-io-live/interaction-service/internal/mail"
	"github.com/weiawesome/wes-io-live/interaction-service/internal/notification"
	"github.com/weiawesome/wes-io-live/interaction-service/internal/queue"
	"github.com/weiawesome/wes-io-live/interaction-service/internal/realtime"
	"github.com/weiawesome/wes-io-live/interaction-service/internal/reconciler"
	"github.com/weiawesome/wes-io-live/interaction-service/internal/repository"
	"github.com/weiawesome/wes-io-live/interaction-service/internal/service"
	"github.com/weiawesome/wes-io-live/interaction-service/internal/worker"
	pkgconfig "github.com/weiawesome/wes-io-live/pkg/config"
	"github.com/weiawesome/wes-io-live/pkg/database"
	"github.com/weiawesome/wes-io-live/pkg/jwt"
	pkglog "github.com/weiawesome/wes-io-live/pkg/log"
	"github.com/weiawesome/wes-io-live/pkg/middleware"
	"github.com/weiawesome/wes-io-live/pkg/pubsub"
)

func main() {
	// 1. Load .env and configuration
	if err := pkgconfig.LoadDotEnv(); err != nil {
		l := pkglog.L()
		l.Warn().Err(err).Msg("failed to load .env")
	}
	cfg, err := config.Load()
	if err != nil {
		l := pkglog.L()
		l.Fatal().Err(err).Msg("failed to load config")
	}

	// 2. Initialize structured logger
	pkglog.Init(pkglog.Config{
		Level:       cfg.Log.Level,
		Pretty:      cfg.Log.Pretty,
		ServiceName: "interaction-service",
	})
	logger := pkglog.L()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 3. Durable store
	store, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Str("backend", cfg.Store.Backend).Msg("failed to open store")
	}
	defer closeStore()
	logger.Info().Str("backend", cfg.Store.Backend).Msg("store ready")

	// 4. Redis cache
	cacheStore := cache.NewStore(cfg.Redis)
	defer cacheStore.Close()
	if err := cacheStore.Connect(ctx); err != nil {
		logger.Warn().Err(err).Msg("redis not reachable yet, requests will retry")
	}
	caches := cache.NewCaches(cacheStore)
	logger.Info().Str("addr", cfg.Redis.Address).Msg("redis cache configured")

	// 5. Real-time pub/sub, emitter and websocket hub
	ps, err := pubsub.NewPubSub(cfg.PubSub, cacheStore.Client())
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create pubsub")
	}
	emitter := realtime.NewPubSubEmitter(ps, cfg.Realtime.EmitTimeout)
	hub := realtime.NewHub(cfg.Realtime.Config)
	go hub.Run(ctx)
	if err := hub.Consume(ctx, ps); err != nil {
		logger.Fatal().Err(err).Msg("failed to subscribe to realtime channels")
	}

	// 6. Job queue producer
	redisOpt := asynq.RedisClientOpt{
		Addr:     cfg.Redis.Address,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	}
	queueClient := queue.NewClient(redisOpt, cfg.Queue)
	defer queueClient.Close()

	// 7. Workers: notification fan-out, email sender, job handlers
	sender, err := mail.NewSender(cfg.Mail)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create mail sender")
	}
	fanout := notification.NewFanout(caches.Users, store, emitter, queueClient)

	registry := queue.NewRegistry()
	if err := worker.New(store, fanout, sender).Register(registry); err != nil {
		logger.Fatal().Err(err).Msg("failed to register job handlers")
	}
	queueServer, err := queue.NewServer(redisOpt, registry, cfg.Queue)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create worker server")
	}
	if err := queueServer.Start(); err != nil {
		logger.Fatal().Err(err).Msg("failed to start workers")
	}

	// 8. Counter reconciler
	var rec *reconciler.Reconciler
	if cfg.Reconciler.Enabled {
		rec = reconciler.New(cacheStore, caches.Users, cfg.Reconciler)
		if err := rec.Start(ctx); err != nil {
			logger.Fatal().Err(err).Msg("failed to start reconciler")
		}
		logger.Info().Dur("interval", cfg.Reconciler.Interval).Int("top_n", cfg.Reconciler.TopN).Msg("reconciler started")
	}

	// 9. Orchestrators and HTTP routes
	tokens, err := jwt.NewManager(cfg.Auth.JWTSecret, cfg.Auth.Issuer, 0)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create token validator")
	}
	authMiddleware := middleware.NewAuthMiddleware(tokens)

	deps := service.Deps{Caches: caches, Store: store, Emitter: emitter, Queue: queueClient}
	httpHandler := handler.NewHandler(handler.Services{
		Posts:         service.NewPostService(deps),
		Comments:      service.NewCommentService(deps),
		Reactions:     service.NewReactionService(deps),
		Followers:     service.NewFollowerService(deps),
		Notifications: service.NewNotificationService(deps),
	}, authMiddleware)
	wsHandler := handler.NewWSHandler(hub, authMiddleware)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(pkglog.GinMiddleware(logger))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "sockets": hub.ClientCount()})
	})
	httpHandler.RegisterRoutes(r)
	wsHandler.RegisterRoutes(r)

	// 10. Start server goroutine
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{Addr: addr, Handler: r}

	go func() {
		logger.Info().Str("addr", addr).Msg("interaction-service starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("HTTP server error")
		}
	}()

	// 11. Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info().Msg("shutdown signal received")

	shutdownDone := make(chan struct{})
	go func() {
		defer close(shutdownDone)

		timeout := cfg.Server.ShutdownTimeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), timeout)
		defer shutdownCancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Warn().Err(err).Msg("HTTP server forced to shutdown")
		}

		if rec != nil {
			<-rec.Stop().Done()
		}
		queueServer.Shutdown()

		// Stops the hub and the realtime subscription.
		cancel()
		if err := ps.Close(); err != nil {
			logger.Warn().Err(err).Msg("error closing pubsub")
		}
	}()

	select {
	case <-shutdownDone:
		logger.Info().Msg("interaction-service stopped")
	case <-time.After(30 * time.Second):
		logger.Warn().Msg("shutdown timed out after 30s")
	}
}

// openStore opens the configured durable store and returns its closer.
func openStore(ctx context.Context, cfg *config.Config) (*repository.Store, func(), error) {
	switch cfg.Store.Backend {
	case "mongo":
		client, err := repository.ConnectMongo(ctx, cfg.Mongo)
		if err != nil {
			return nil, nil, err
		}
		db := client.Database(cfg.Mongo.Database)
		if err := repository.EnsureMongoIndexes(ctx, db); err != nil {
			_ = client.Disconnect(context.Background())
			return nil, nil, err
		}
		return repository.NewMongoStore(db), func() { _ = client.Disconnect(context.Background()) }, nil

	case "sql", "":
		db, err := database.New(&cfg.Database)
		if err != nil {
			return nil, nil, err
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, nil, err
		}
		if err := repository.Migrate(db); err != nil {
			sqlDB.Close()
			return nil, nil, err
		}
		return repository.NewGormStore(db), func() { sqlDB.Close() }, nil

	default:
		return nil, nil, fmt.Errorf("unsupported store backend: %s", cfg.Store.Backend)
	}
}
