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
	"github.com/iamasit07/4-in-a-row/engine/internal/config"
	"github.com/iamasit07/4-in-a-row/engine/internal/events"
	"github.com/iamasit07/4-in-a-row/engine/internal/repository/postgres"
	"github.com/iamasit07/4-in-a-row/engine/internal/repository/redis"
	"github.com/iamasit07/4-in-a-row/engine/internal/service/bot"
	"github.com/iamasit07/4-in-a-row/engine/internal/service/cleanup"
	"github.com/iamasit07/4-in-a-row/engine/internal/service/move"
	transportHttp "github.com/iamasit07/4-in-a-row/engine/internal/transport/http"
	"github.com/iamasit07/4-in-a-row/engine/internal/transport/websocket"
	"github.com/iamasit07/4-in-a-row/engine/pkg/auth"
	"github.com/iamasit07/4-in-a-row/engine/pkg/logger"
	"go.uber.org/zap"
)

func main() {
	cfg := config.LoadConfig()

	log, err := logger.New(cfg.Env)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	if err := cfg.Validate(); err != nil {
		log.Fatal("Invalid configuration", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 1. Engine
	engine, err := bot.NewEngine(cfg.EngineConfig(), log.Named("engine"))
	if err != nil {
		log.Fatal("Failed to build engine", zap.Error(err))
	}

	checks := map[string]transportHttp.HealthCheck{}
	opts := []move.Option{move.WithDefaultProfile(cfg.DefaultProfile)}

	// 2. Optional Redis decision cache
	if cfg.RedisURL != "" {
		client, err := redis.NewClient(ctx, cfg.RedisURL, cfg.RedisPassword, log)
		if err != nil {
			log.Warn("Redis unavailable, decision cache disabled", zap.Error(err))
		} else {
			defer client.Close()
			cache := redis.NewDecisionCache(client, cfg.DecisionCacheTTL)
			opts = append(opts, move.WithCache(cache))
			checks["redis"] = cache.Ping
		}
	}

	// 3. Optional Kafka events
	var publisher events.Publisher = events.NopPublisher{}
	if len(cfg.KafkaBrokers) > 0 {
		producer, err := events.NewKafkaProducer(events.KafkaConfig{
			Brokers:  cfg.KafkaBrokers,
			Topic:    cfg.KafkaTopicEvents,
			Username: cfg.KafkaUsername,
			Password: cfg.KafkaPassword,
		}, log)
		if err != nil {
			log.Warn("Kafka unavailable, events disabled", zap.Error(err))
		} else {
			publisher = producer
		}
	}
	defer publisher.Close()
	opts = append(opts, move.WithPublisher(publisher))

	// 4. Optional Postgres standings and retention
	var standings transportHttp.StandingsStore
	if cfg.DatabaseURL != "" {
		db, err := postgres.Open(ctx, cfg.DatabaseURL, postgres.PoolConfig{
			MaxOpenConns:       cfg.DBMaxOpenConns,
			MaxIdleConns:       cfg.DBMaxIdleConns,
			ConnMaxLifetimeMin: cfg.DBConnMaxLifetimeMin,
		})
		if err != nil {
			log.Fatal("Database unreachable", zap.Error(err))
		}
		defer db.Close()

		if err := postgres.RunMigrations(ctx, db); err != nil {
			log.Fatal("Migration failed", zap.Error(err))
		}
		log.Info("Database migration completed")

		repo := postgres.NewTournamentRepo(db)
		standings = repo
		checks["postgres"] = db.PingContext
		cleanup.NewWorker(repo, cfg.CleanupInterval, cfg.RetentionDays, log.Named("cleanup")).Start(ctx)
	}

	// 5. Services and transports
	moves := move.NewService(engine, log.Named("move"), opts...)

	clients, err := auth.ParseClients(cfg.APIClients)
	if err != nil {
		log.Fatal("Invalid API_CLIENTS", zap.Error(err))
	}
	issuer := auth.NewTokenIssuer(cfg.JWTSecret, cfg.TokenTTL)

	connManager := websocket.NewConnectionManager()
	wsHandler := websocket.NewHandler(connManager, moves, issuer, cfg.AllowedOrigins, log.Named("ws"))

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := transportHttp.NewRouter(transportHttp.RouterConfig{
		Moves:            moves,
		Issuer:           issuer,
		Clients:          clients,
		OpenRegistration: !cfg.IsProduction(),
		SecureCookies:    cfg.IsProduction(),
		AllowedOrigins:   cfg.AllowedOrigins,
		Standings:        standings,
		Checks:           checks,
		WebSocket:        wsHandler.HandleWebSocket,
		Logger:           log.Named("http"),
	})

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.Info("Server starting",
			zap.String("port", cfg.Port),
			zap.String("env", cfg.Env),
			zap.String("default_profile", cfg.DefaultProfile),
			zap.Duration("move_time", cfg.MoveTime),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Server error", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("Server is shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	connManager.CloseAll()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}
