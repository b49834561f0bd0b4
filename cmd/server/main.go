package main // Entry point package

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/iliyamo/production-manager/internal/audit"
	"github.com/iliyamo/production-manager/internal/auth"
	"github.com/iliyamo/production-manager/internal/config"
	"github.com/iliyamo/production-manager/internal/database"
	"github.com/iliyamo/production-manager/internal/handler"
	"github.com/iliyamo/production-manager/internal/logging"
	"github.com/iliyamo/production-manager/internal/middleware"
	"github.com/iliyamo/production-manager/internal/repository"
	"github.com/iliyamo/production-manager/internal/router"
	"github.com/iliyamo/production-manager/internal/utils"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg := config.Load() // Load environment config
	logging.Init(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(ctx, cfg)
	if err != nil {
		logging.Fatal().Err(err).Msg("database connection failed")
	}
	defer db.Close()

	rdb := config.NewRedisClient() // nil disables cache and rate limit
	if rdb != nil {
		defer rdb.Close()
	}

	tokens, err := utils.NewTokenService(utils.TokenConfig{
		AccessSecret:  cfg.JWTSecret,
		RefreshSecret: cfg.JWTRefreshSecret,
		AccessTTL:     time.Duration(cfg.AccessTTLMin) * time.Minute,
		RefreshTTL:    time.Duration(cfg.RefreshTTLDays) * 24 * time.Hour,
	})
	if err != nil {
		logging.Fatal().Err(err).Msg("token service")
	}
	guard := auth.NewGuard(tokens)

	var sink audit.Sink
	if cfg.AuditAMQP {
		s := audit.NewAMQPSink(cfg.AMQPURL)
		defer s.Close()
		sink = s
	}
	auditLog := audit.NewDefault(sink)

	if cfg.AuditConsumer {
		go func() {
			if err := audit.StartConsumer(ctx, cfg.AMQPURL, cfg.AuditLogDir); err != nil && !errors.Is(err, context.Canceled) {
				logging.Error().Err(err).Msg("audit consumer stopped")
			}
		}()
	}

	cacheCfg := config.LoadCacheConfig()
	purge := func(ctx context.Context) error {
		return middleware.Purge(ctx, rdb, cacheCfg, router.ClientRoutes()...)
	}

	users := repository.NewUserRepo(db)
	clients := repository.NewClientRepo(db)

	health := &handler.HealthHandler{DB: db}
	if rdb != nil {
		health.Redis = config.RedisPinger{Client: rdb}
	}

	e := router.New(router.Deps{
		Guard:          guard,
		Auth:           handler.NewAuthHandler(cfg, users, tokens, guard, auditLog),
		Users:          handler.NewUserHandler(cfg, users, auditLog),
		Clients:        handler.NewClientHandler(clients, guard, auditLog, purge),
		Health:         health,
		Audit:          auditLog,
		Redis:          rdb,
		RateLimit:      config.LoadRateLimitConfig(),
		Cache:          cacheCfg,
		CookieFallback: cfg.CookieFallback,
		DevMode:        cfg.IsDevelopment(),
	})

	addr := ":" + cfg.Port
	go func() {
		logging.Info().Str("addr", addr).Str("env", cfg.Env).Msg("listening")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()
	logging.Info().Msg("shutting down")

	sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(sctx); err != nil {
		logging.Error().Err(err).Msg("http shutdown")
	}
	if err := auditLog.Close(sctx); err != nil {
		logging.Warn().Err(err).Msg("audit queue not fully drained")
	}
}
