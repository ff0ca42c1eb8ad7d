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

	"bookmarks/internal/auth"
	"bookmarks/internal/config"
	"bookmarks/internal/consul"
	"bookmarks/internal/database"
	"bookmarks/internal/logger"
	"bookmarks/internal/server"
	"bookmarks/internal/session"
	"bookmarks/internal/token"

	"github.com/gin-gonic/gin"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	lgr := logger.New(cfg.ServiceName)
	logger.SetDefault(lgr)

	if err := config.ValidateEnv(cfg.RequiredEnv()); err != nil {
		lgr.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}
	if err := cfg.ValidateJWTSecret(); err != nil {
		lgr.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	lgr.Info("Starting service",
		"env", cfg.Env,
		"port", cfg.Server.Port,
		"store", cfg.StoreDriver,
	)

	ctx := context.Background()

	// Users
	var (
		db   database.Service
		repo auth.Repository
	)
	switch cfg.StoreDriver {
	case config.StoreDriverMemory:
		repo = auth.NewMemoryRepository()
		lgr.Warn("Using in-memory user store, data is lost on restart")
	default:
		db, err = database.New(ctx, cfg.Database, lgr)
		if err != nil {
			lgr.Error("Failed to connect to database", "error", err)
			os.Exit(1)
		}
		if err := db.Migrate(ctx); err != nil {
			lgr.Error("Failed to apply migrations", "error", err)
			os.Exit(1)
		}
		repo = auth.NewPostgresRepository(db)
		lgr.Info("Connected to database", "host", cfg.Database.Host, "database", cfg.Database.Database)
	}

	// Sessions
	var store session.Store
	if cfg.Redis.Addr != "" {
		store, err = session.NewRedisStore(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			lgr.Error("Failed to connect to Redis", "addr", cfg.Redis.Addr, "error", err)
			os.Exit(1)
		}
		lgr.Info("Connected to Redis", "addr", cfg.Redis.Addr)
	} else {
		store = session.NewMemoryStore()
		lgr.Warn("REDIS_ADDR not set, sessions are kept in memory")
	}

	authService := auth.NewService(
		repo,
		auth.NewBcryptHasher(cfg.Auth.BcryptCost),
		token.NewIssuer(cfg.Auth.JWTSecret, cfg.Auth.JWTIssuer, cfg.Auth.AccessTokenTTL),
		session.NewManager(store),
		lgr,
	)

	srv := server.New(cfg, server.Dependencies{
		DB:     db,
		Auth:   authService,
		Logger: lgr,
	})
	httpServer := srv.HTTPServer()

	// Service discovery
	var (
		registry *consul.Client
		reg      consul.Registration
	)
	if cfg.Consul.Addr != "" {
		registry, err = consul.NewClient(cfg.Consul.Addr, cfg.Consul.Token)
		if err != nil {
			lgr.Error("Failed to create Consul client", "error", err)
			os.Exit(1)
		}

		reg = consul.NewRegistration(cfg)
		if err := registry.Reregister(reg, lgr); err != nil {
			lgr.Error("Failed to register with Consul", "error", err)
			os.Exit(1)
		}
		lgr.Info("Registered with Consul", "service_id", reg.ID)
	}

	go func() {
		lgr.Info("HTTP server listening", "addr", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			lgr.Error("HTTP server failed", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	lgr.Info("Shutting down service")

	if registry != nil {
		if err := registry.Deregister(reg.ID); err != nil {
			lgr.Warn("Failed to deregister from Consul", "error", err)
		} else {
			lgr.Info("Deregistered from Consul")
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		lgr.Error("Server forced to shutdown", "error", err)
	}

	if err := store.Close(); err != nil {
		lgr.Warn("Failed to close session store", "error", err)
	}
	if db != nil {
		if err := db.Close(); err != nil {
			lgr.Warn("Failed to close database", "error", err)
		}
	}

	lgr.Info("Service stopped")
}
