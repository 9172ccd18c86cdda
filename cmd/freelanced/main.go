package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	goredis "github.com/redis/go-redis/v9"

	"github.com/freelancehub/tracker/internal/api"
	"github.com/freelancehub/tracker/internal/api/ws"
	"github.com/freelancehub/tracker/internal/core/domain"
	"github.com/freelancehub/tracker/internal/core/ports"
	"github.com/freelancehub/tracker/internal/core/service"
	"github.com/freelancehub/tracker/internal/infrastructure/auditlog"
	"github.com/freelancehub/tracker/internal/infrastructure/config"
	"github.com/freelancehub/tracker/internal/infrastructure/credfile"
	"github.com/freelancehub/tracker/internal/infrastructure/db/mongo"
	"github.com/freelancehub/tracker/internal/infrastructure/db/redis"
	"github.com/freelancehub/tracker/internal/infrastructure/queue"
	"github.com/freelancehub/tracker/internal/infrastructure/uiloop"
	"github.com/freelancehub/tracker/internal/worker/reminder"
	"github.com/freelancehub/tracker/pkg/logger"
)

func main() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		bootLog := logger.New(logger.Options{})
		bootLog.Fatal().Err(err).Msg("failed to load configuration")
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  !cfg.IsProduction(),
		Service: "freelanced",
	})

	bound, err := reminder.ParseLowerBound(cfg.Reminder.LowerBound)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid REMINDER_LOWER_BOUND")
	}

	// --- Storage ---
	mongoClient, db, err := mongo.Connect(ctx, mongo.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to MongoDB")
	}
	defer func() {
		dctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = mongoClient.Disconnect(dctx)
	}()
	if err := mongo.EnsureIndexes(ctx, db); err != nil {
		log.Warn().Err(err).Msg("failed to ensure indexes")
	}

	var throttle ports.LoginThrottle = redis.NoopThrottle{}
	var rdb goredis.Cmdable
	if cfg.Redis.Enabled {
		redisClient, err := redis.Connect(ctx, redis.Config{
			Addr:        cfg.Redis.Addr,
			Password:    cfg.Redis.Password,
			DB:          cfg.Redis.DB,
			DialTimeout: cfg.Redis.DialTimeout,
		})
		if err != nil {
			log.Warn().Err(err).Msg("redis unavailable, login throttling disabled")
		} else {
			defer redisClient.Close()
			rdb = redisClient
			throttle = redis.NewLoginThrottle(redisClient, cfg.Auth.MaxFailures, cfg.Auth.FailureWindow)
		}
	} else {
		log.Info().Msg("redis disabled, login throttling off")
	}

	creds := credfile.NewStore(cfg.Auth.UsersFile, log)
	auditStore := auditlog.NewFileStore(cfg.Audit.File, log)
	if cfg.Audit.CompactOnStart {
		if _, err := auditStore.Compact(); err != nil {
			log.Fatal().Err(err).Msg("failed to compact audit log")
		}
	}
	auditWriter := queue.NewAuditWriter(auditStore, cfg.Audit.QueueSize, log)

	// --- UI side: dispatcher loop and reminder feed ---
	uiCtx, stopUI := context.WithCancel(context.Background())
	ui := uiloop.New(0, log)
	go ui.Run(uiCtx)
	hub := ws.NewHub(log)

	// --- Services ---
	session := domain.NewSession()
	audit := service.NewAuditTrail(auditWriter, auditStore, log)
	authService := service.NewAuthService(creds, mongo.NewUserRepository(db), throttle, session, audit, service.AuthOptions{
		JWTSecret:  cfg.JWTSecret,
		TokenTTL:   cfg.Auth.TokenTTL,
		BcryptCost: cfg.Auth.BcryptCost,
	}, log)
	projectRepo := mongo.NewProjectRepository(db)
	clientService := service.NewClientService(mongo.NewClientRepository(db), audit, log)
	projectService := service.NewProjectService(projectRepo, audit, log)

	// --- Deadline poller ---
	pollCtx, stopPoller := context.WithCancel(context.Background())
	poller := reminder.NewPoller(projectRepo, ui, hub, reminder.Options{
		Interval:   cfg.Reminder.Interval,
		LeadDays:   cfg.Reminder.LeadDays,
		LowerBound: bound,
	}, log)
	pollerDone := make(chan struct{})
	go func() {
		defer close(pollerDone)
		poller.Run(pollCtx)
	}()

	e := api.NewRouter(api.Dependencies{
		JWTSecret: cfg.JWTSecret,
		Session:   session,
		Auth:      authService,
		Clients:   clientService,
		Projects:  projectService,
		Audit:     audit,
		Hub:       hub,
		Mongo:     db,
		Redis:     rdb,
		Log:       log,
	})

	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("freelance tracker listening")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http server shutdown")
	}
	hub.Close()

	stopPoller()
	<-pollerDone
	stopUI()
	<-ui.Done()

	if err := auditWriter.Shutdown(cfg.Audit.ShutdownTimeout); err != nil {
		log.Error().Err(err).Msg("audit log did not drain")
	}
	log.Info().Msg("bye")
}
