// Package database owns the PostgreSQL connection pool and schema migrations.
package database

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"bookmarks/internal/config"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var migrations embed.FS

const migrationsDir = "migrations"

// Service represents a service that interacts with a database.
type Service interface {
	// Health returns a map of health status information.
	Health(ctx context.Context) map[string]string

	QueryRow(ctx context.Context, query string, args ...any) *sql.Row
	Exec(ctx context.Context, query string, args ...any) (sql.Result, error)

	// Migrate applies all pending migrations.
	Migrate(ctx context.Context) error
	// Rollback rolls back the latest migration, or down to target when target > 0.
	Rollback(ctx context.Context, target int64) error
	// Status logs applied and pending migrations.
	Status(ctx context.Context) error

	Close() error
}

type service struct {
	db     *sql.DB
	name   string
	logger *slog.Logger
}

// New opens a pool against the configured database and verifies it with a ping.
func New(ctx context.Context, cfg config.DatabaseConfig, logger *slog.Logger) (Service, error) {
	if logger == nil {
		logger = slog.Default()
	}

	db, err := sql.Open("pgx", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &service{db: db, name: cfg.Database, logger: logger}, nil
}

func (s *service) QueryRow(ctx context.Context, query string, args ...any) *sql.Row {
	return s.db.QueryRowContext(ctx, query, args...)
}

func (s *service) Exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return s.db.ExecContext(ctx, query, args...)
}

func (s *service) Migrate(ctx context.Context) error {
	if err := configureGoose(); err != nil {
		return err
	}

	runCtx, cancel := context.WithTimeout(ctx, time.Minute)
	defer cancel()

	s.logger.Info("Applying migrations", "database", s.name)
	if err := goose.UpContext(runCtx, s.db, migrationsDir); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}
	s.logger.Info("Migrations applied", "database", s.name)
	return nil
}

func (s *service) Rollback(ctx context.Context, target int64) error {
	if err := configureGoose(); err != nil {
		return err
	}

	runCtx, cancel := context.WithTimeout(ctx, time.Minute)
	defer cancel()

	if target > 0 {
		s.logger.Info("Rolling back migrations", "target", target)
		if err := goose.DownToContext(runCtx, s.db, migrationsDir, target); err != nil {
			return fmt.Errorf("rollback to version %d: %w", target, err)
		}
		return nil
	}

	s.logger.Info("Rolling back latest migration")
	if err := goose.DownContext(runCtx, s.db, migrationsDir); err != nil {
		return fmt.Errorf("rollback latest migration: %w", err)
	}
	return nil
}

func (s *service) Status(ctx context.Context) error {
	if err := configureGoose(); err != nil {
		return err
	}
	if err := goose.StatusContext(ctx, s.db, migrationsDir); err != nil {
		return fmt.Errorf("migration status: %w", err)
	}
	return nil
}

// Health checks the health of the database connection by pinging the database.
// It returns a map with keys indicating various health statistics.
func (s *service) Health(ctx context.Context) map[string]string {
	ctx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()

	stats := make(map[string]string)

	if err := s.db.PingContext(ctx); err != nil {
		stats["status"] = "down"
		stats["error"] = fmt.Sprintf("db down: %v", err)
		s.logger.Error("Database health check failed", "error", err)
		return stats
	}

	stats["status"] = "up"
	stats["message"] = "It's healthy"

	dbStats := s.db.Stats()
	stats["open_connections"] = strconv.Itoa(dbStats.OpenConnections)
	stats["in_use"] = strconv.Itoa(dbStats.InUse)
	stats["idle"] = strconv.Itoa(dbStats.Idle)
	stats["wait_count"] = strconv.FormatInt(dbStats.WaitCount, 10)
	stats["wait_duration"] = dbStats.WaitDuration.String()
	stats["max_idle_closed"] = strconv.FormatInt(dbStats.MaxIdleClosed, 10)
	stats["max_lifetime_closed"] = strconv.FormatInt(dbStats.MaxLifetimeClosed, 10)

	if dbStats.OpenConnections > 40 {
		stats["message"] = "The database is experiencing heavy load."
	}
	if dbStats.WaitCount > 1000 {
		stats["message"] = "The database has a high number of wait events, indicating potential bottlenecks."
	}

	return stats
}

// Close closes the database connection.
func (s *service) Close() error {
	s.logger.Info("Disconnected from database", "database", s.name)
	return s.db.Close()
}

func configureGoose() error {
	goose.SetBaseFS(migrations)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("configure goose: %w", err)
	}
	return nil
}
