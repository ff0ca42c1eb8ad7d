// Package server assembles the HTTP surface: the route table, shared
// middleware and the net/http server around it.
package server

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"bookmarks/internal/auth"
	"bookmarks/internal/config"
	"bookmarks/internal/database"
)

// Dependencies are the collaborators the server routes to. DB may be nil when
// running on the in-memory store.
type Dependencies struct {
	DB     database.Service
	Auth   auth.Service
	Logger *slog.Logger
}

// Server holds the dependencies for the HTTP server
type Server struct {
	cfg    *config.Config
	db     database.Service
	auth   auth.Service
	logger *slog.Logger
}

// New creates a Server from explicit dependencies
func New(cfg *config.Config, deps Dependencies) *Server {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Server{
		cfg:    cfg,
		db:     deps.DB,
		auth:   deps.Auth,
		logger: logger,
	}
}

// HTTPServer configures a net/http server serving the route table
func (s *Server) HTTPServer() *http.Server {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.cfg.Server.Port),
		Handler:           s.RegisterRoutes(),
		ReadTimeout:       s.cfg.Server.ReadTimeout,
		WriteTimeout:      s.cfg.Server.WriteTimeout,
		IdleTimeout:       s.cfg.Server.IdleTimeout,
		ReadHeaderTimeout: 5 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	s.logger.Info("HTTP server configured", "port", s.cfg.Server.Port)
	return srv
}
