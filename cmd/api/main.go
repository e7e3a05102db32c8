package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/pflag"

	"github.com/srgjo27/tripdesk/internal/adapter/backend"
	"github.com/srgjo27/tripdesk/internal/adapter/handler"
	"github.com/srgjo27/tripdesk/internal/adapter/repository/postgres"
	redisrepo "github.com/srgjo27/tripdesk/internal/adapter/repository/redis"
	"github.com/srgjo27/tripdesk/internal/adapter/tracking"
	"github.com/srgjo27/tripdesk/internal/core/domain"
	"github.com/srgjo27/tripdesk/internal/core/services"
	"github.com/srgjo27/tripdesk/internal/platform/auth"
	"github.com/srgjo27/tripdesk/internal/platform/clock"
	"github.com/srgjo27/tripdesk/internal/platform/config"
	"github.com/srgjo27/tripdesk/internal/platform/database"
	"github.com/srgjo27/tripdesk/internal/platform/logger"
)

func main() {
	envFile := pflag.String("env-file", ".env", "path to an optional .env file")
	addr := pflag.String("addr", "", "HTTP listen address (overrides HTTP_ADDR)")
	pflag.Parse()

	cfg, err := config.Load(*envFile)
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	if *addr != "" {
		cfg.HTTPAddr = *addr
	}

	log := logger.New(cfg.AppEnv, cfg.LogLevel)
	slog.SetDefault(log)

	if err := run(cfg, log); err != nil {
		log.Error("server exited with error", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, log *slog.Logger) error {
	db, err := database.NewPostgresDB(cfg.DB, log)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := database.Migrate(context.Background(), db); err != nil {
		return err
	}

	log.Info("connecting to redis", "addr", cfg.RedisAddr)
	rdb := redis.NewClient(&redis.Options{
		Addr: cfg.RedisAddr,
		DB:   cfg.RedisDB,
	})
	defer rdb.Close()

	if err := rdb.Ping(context.Background()).Err(); err != nil {
		return err
	}
	log.Info("redis connected")

	tokens := auth.New(cfg.JWTSecret, cfg.JWTTTL)
	var backendTokens backend.TokenSource = tokens
	if cfg.BackendToken != "" {
		backendTokens = backend.StaticToken(cfg.BackendToken)
	}

	clk := clock.NewSystem()
	api := backend.NewClient(cfg.BackendBaseURL, backendTokens,
		backend.WithHTTPClient(&http.Client{Timeout: cfg.BackendTimeout}),
		backend.WithClock(clk),
		backend.WithLogger(log),
	)

	events := redisrepo.NewEventCounter(rdb, log)
	tracker := tracking.Multi{tracking.NewLogTracker(log), events}

	sessions := services.NewSessionManager(
		redisrepo.NewTripCache(api, rdb, 0, log),
		api,
		api,
		services.SessionManagerConfig{
			IdleTimeout: cfg.SessionIdleTimeout,
			Clock:       clk,
			Logger:      log,
			FlowOptions: []services.BookingFlowOption{
				services.WithTracker(tracker),
				services.WithRefreshInterval(cfg.SeatLockRefreshInterval),
				services.WithCompletionHandler(func(s domain.BookingSummary) {
					log.Info("booking completed", "booking_id", s.BookingID, "trip_id", s.TripID)
				}),
			},
		},
	)

	var rules []domain.AutomationRule
	if cfg.AutomationRulesFile != "" {
		rules, err = services.LoadAutomationRulesFile(cfg.AutomationRulesFile)
		if err != nil {
			return err
		}
		log.Info("automation rules loaded", "path", cfg.AutomationRulesFile, "count", len(rules))
	}

	leads := services.NewLeadService(
		postgres.NewLeadRepository(db),
		redisrepo.NewOwnerCursor(rdb),
		services.LeadServiceConfig{
			Owners: cfg.LeadOwners,
			Rules:  rules,
			Clock:  clk,
			Logger: log,
		},
	)

	bgCtx, stopBackground := context.WithCancel(context.Background())
	defer stopBackground()

	go sessions.RunBackgroundCleanup(bgCtx, cfg.SessionSweepInterval)
	if len(cfg.LeadOwners) > 0 {
		go leads.RunOwnerAssignment(bgCtx, cfg.OwnerAssignInterval)
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := handler.NewRouter(handler.RouterDeps{
		Bookings: handler.NewBookingHandler(sessions),
		Leads:    handler.NewLeadHandler(leads, events, clk),
		Auth:     tokens,
		Logger:   log,
	})

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info("server starting", "addr", cfg.HTTPAddr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		return err
	case <-quit:
	}
	log.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return err
	}
	stopBackground()
	sessions.Shutdown(ctx)

	log.Info("server exiting")
	return nil
}
