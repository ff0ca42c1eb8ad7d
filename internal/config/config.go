// Package config loads service configuration from the environment.
package config

import (
	"fmt"
	"net"
	"net/url"
	"time"

	"github.com/caarlos0/env/v11"
	_ "github.com/joho/godotenv/autoload"
)

// Store drivers accepted by STORE_DRIVER.
const (
	StoreDriverPostgres = "postgres"
	StoreDriverMemory   = "memory"
)

// Config holds the whole service configuration.
type Config struct {
	Env         string `env:"APP_ENV" envDefault:"development"`
	ServiceName string `env:"SERVICE_NAME" envDefault:"auth-api"`
	StoreDriver string `env:"STORE_DRIVER" envDefault:"postgres"`

	Server   ServerConfig
	Database DatabaseConfig `envPrefix:"DB_"`
	Auth     AuthConfig
	Redis    RedisConfig  `envPrefix:"REDIS_"`
	Consul   ConsulConfig `envPrefix:"CONSUL_HTTP_"`

	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://localhost:3000,http://localhost:5173"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host         string        `env:"HOST" envDefault:"localhost"`
	Port         int           `env:"PORT" envDefault:"3333"`
	ReadTimeout  time.Duration `env:"SERVER_READ_TIMEOUT" envDefault:"15s"`
	WriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" envDefault:"60s"`
	IdleTimeout  time.Duration `env:"SERVER_IDLE_TIMEOUT" envDefault:"120s"`
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	Host     string `env:"HOST" envDefault:"localhost"`
	Port     string `env:"PORT" envDefault:"5432"`
	Database string `env:"DATABASE" envDefault:"bookmarks"`
	Username string `env:"USERNAME" envDefault:"postgres"`
	Password string `env:"PASSWORD"`
	Schema   string `env:"SCHEMA" envDefault:"public"`
	SSLMode  string `env:"SSLMODE" envDefault:"disable"`
}

// DSN returns a pgx connection URL with credentials escaped.
func (c DatabaseConfig) DSN() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(c.Username, c.Password),
		Host:   net.JoinHostPort(c.Host, c.Port),
		Path:   "/" + c.Database,
		RawQuery: url.Values{
			"sslmode":     {c.SSLMode},
			"search_path": {c.Schema},
		}.Encode(),
	}
	return u.String()
}

// AuthConfig holds token and password settings.
type AuthConfig struct {
	JWTSecret      string        `env:"JWT_SECRET"`
	JWTIssuer      string        `env:"JWT_ISSUER" envDefault:"bookmarks-api"`
	AccessTokenTTL time.Duration `env:"ACCESS_TOKEN_TTL" envDefault:"15m"`
	BcryptCost     int           `env:"BCRYPT_COST" envDefault:"10"`
}

// RedisConfig holds session store settings. An empty Addr selects the
// in-memory session store.
type RedisConfig struct {
	Addr     string `env:"ADDR"`
	Password string `env:"PASSWORD"`
	DB       int    `env:"DB" envDefault:"0"`
}

// ConsulConfig holds service registration settings. Registration is skipped
// when Addr is empty.
type ConsulConfig struct {
	Addr  string `env:"ADDR"`
	Token string `env:"TOKEN"`
}

// Load parses the process environment into a Config.
func Load() (*Config, error) {
	return LoadFrom(nil)
}

// LoadFrom parses the given environment map into a Config. A nil map reads the
// process environment.
func LoadFrom(environ map[string]string) (*Config, error) {
	cfg := &Config{}
	opts := env.Options{}
	if environ != nil {
		opts.Environment = environ
	}
	if err := env.ParseWithOptions(cfg, opts); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	switch cfg.StoreDriver {
	case StoreDriverPostgres, StoreDriverMemory:
	default:
		return nil, fmt.Errorf("unsupported STORE_DRIVER %q", cfg.StoreDriver)
	}

	return cfg, nil
}

// RequiredEnv lists the variables that must be set explicitly for the
// selected store driver.
func (c *Config) RequiredEnv() []string {
	required := []string{"JWT_SECRET"}
	if c.StoreDriver == StoreDriverPostgres {
		required = append(required, "DB_PASSWORD")
	}
	return required
}

// IsProduction reports whether APP_ENV is production.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}
