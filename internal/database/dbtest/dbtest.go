// Package dbtest starts disposable PostgreSQL containers for integration tests.
package dbtest

import (
	"context"
	"fmt"
	"time"

	"bookmarks/internal/config"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	image    = "postgres:16-alpine"
	dbName   = "bookmarks"
	dbUser   = "user"
	dbPasswd = "password"
)

// StartPostgres runs a PostgreSQL container and returns the settings needed to
// reach it together with a terminate func.
func StartPostgres(ctx context.Context) (config.DatabaseConfig, func(context.Context) error, error) {
	container, err := postgres.Run(ctx, image,
		postgres.WithDatabase(dbName),
		postgres.WithUsername(dbUser),
		postgres.WithPassword(dbPasswd),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	if err != nil {
		return config.DatabaseConfig{}, nil, fmt.Errorf("start postgres container: %w", err)
	}

	terminate := func(ctx context.Context) error {
		return container.Terminate(ctx)
	}

	host, err := container.Host(ctx)
	if err != nil {
		_ = terminate(ctx)
		return config.DatabaseConfig{}, nil, fmt.Errorf("container host: %w", err)
	}

	port, err := container.MappedPort(ctx, "5432/tcp")
	if err != nil {
		_ = terminate(ctx)
		return config.DatabaseConfig{}, nil, fmt.Errorf("container port: %w", err)
	}

	return config.DatabaseConfig{
		Host:     host,
		Port:     port.Port(),
		Database: dbName,
		Username: dbUser,
		Password: dbPasswd,
		Schema:   "public",
		SSLMode:  "disable",
	}, terminate, nil
}
