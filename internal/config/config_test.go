package config

import (
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
)

func TestLoadFrom_Defaults(t *testing.T) {
	cfg, err := LoadFrom(map[string]string{})
	if err != nil {
		t.Fatalf("LoadFrom error: %v", err)
	}

	if cfg.Server.Port != 3333 {
		t.Errorf("Expected default port 3333, got %d", cfg.Server.Port)
	}
	if cfg.Auth.AccessTokenTTL != 15*time.Minute {
		t.Errorf("Expected default token ttl 15m, got %v", cfg.Auth.AccessTokenTTL)
	}
	if cfg.StoreDriver != StoreDriverPostgres {
		t.Errorf("Expected postgres store driver, got %q", cfg.StoreDriver)
	}
	if len(cfg.CORSAllowedOrigins) != 2 {
		t.Errorf("Expected two default CORS origins, got %v", cfg.CORSAllowedOrigins)
	}
	if cfg.Redis.Addr != "" {
		t.Errorf("Expected in-memory sessions by default, got redis %q", cfg.Redis.Addr)
	}
	if cfg.Consul.Addr != "" {
		t.Errorf("Expected consul registration disabled by default, got %q", cfg.Consul.Addr)
	}
}

func TestLoadFrom_Overrides(t *testing.T) {
	cfg, err := LoadFrom(map[string]string{
		"PORT":                 "9000",
		"DB_HOST":              "db",
		"DB_PASSWORD":          "secret",
		"ACCESS_TOKEN_TTL":     "1h",
		"CORS_ALLOWED_ORIGINS": "https://a.example,https://b.example",
		"STORE_DRIVER":         "memory",
	})
	if err != nil {
		t.Fatalf("LoadFrom error: %v", err)
	}

	if cfg.Server.Port != 9000 {
		t.Errorf("Expected port 9000, got %d", cfg.Server.Port)
	}
	if cfg.Auth.AccessTokenTTL != time.Hour {
		t.Errorf("Expected token ttl 1h, got %v", cfg.Auth.AccessTokenTTL)
	}
	if cfg.StoreDriver != StoreDriverMemory {
		t.Errorf("Expected memory store driver, got %q", cfg.StoreDriver)
	}
	if got := cfg.CORSAllowedOrigins; len(got) != 2 || got[1] != "https://b.example" {
		t.Errorf("Unexpected CORS origins: %v", got)
	}
	if !strings.Contains(cfg.Database.DSN(), "postgres:secret@db:5432/bookmarks") {
		t.Errorf("Unexpected DSN: %s", cfg.Database.DSN())
	}
}

func TestDSN_EscapesCredentials(t *testing.T) {
	cfg := DatabaseConfig{
		Host:     "db",
		Port:     "5432",
		Database: "bookmarks",
		Username: "app:user",
		Password: "p@ss/w#rd:?",
		Schema:   "public",
		SSLMode:  "disable",
	}

	parsed, err := pgx.ParseConfig(cfg.DSN())
	if err != nil {
		t.Fatalf("ParseConfig(%q) error: %v", cfg.DSN(), err)
	}

	if parsed.Host != "db" || parsed.Port != 5432 {
		t.Errorf("Expected db:5432, got %s:%d", parsed.Host, parsed.Port)
	}
	if parsed.User != "app:user" {
		t.Errorf("Expected user %q, got %q", "app:user", parsed.User)
	}
	if parsed.Password != "p@ss/w#rd:?" {
		t.Errorf("Expected password to survive, got %q", parsed.Password)
	}
	if parsed.Database != "bookmarks" {
		t.Errorf("Expected database bookmarks, got %q", parsed.Database)
	}
	if got := parsed.RuntimeParams["search_path"]; got != "public" {
		t.Errorf("Expected search_path public, got %q", got)
	}
}

func TestRequiredEnv(t *testing.T) {
	pg := &Config{StoreDriver: StoreDriverPostgres}
	if got := pg.RequiredEnv(); !slices.Contains(got, "DB_PASSWORD") || !slices.Contains(got, "JWT_SECRET") {
		t.Errorf("Unexpected postgres requirements: %v", got)
	}

	mem := &Config{StoreDriver: StoreDriverMemory}
	if got := mem.RequiredEnv(); slices.Contains(got, "DB_PASSWORD") || !slices.Contains(got, "JWT_SECRET") {
		t.Errorf("Unexpected memory requirements: %v", got)
	}
}

func TestValidateEnv_RequiredForStoreDriver(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("DB_PASSWORD", "")

	cfg := &Config{StoreDriver: StoreDriverPostgres}
	err := ValidateEnv(cfg.RequiredEnv())
	if err == nil || !strings.Contains(err.Error(), "DB_PASSWORD") {
		t.Errorf("Expected DB_PASSWORD to be reported, got %v", err)
	}

	cfg.StoreDriver = StoreDriverMemory
	if err := ValidateEnv(cfg.RequiredEnv()); err != nil {
		t.Errorf("Memory driver should not need database settings: %v", err)
	}
}

func TestLoadFrom_RejectsUnknownStoreDriver(t *testing.T) {
	if _, err := LoadFrom(map[string]string{"STORE_DRIVER": "mysql"}); err == nil {
		t.Fatal("Expected error for unsupported store driver")
	}
}

func TestValidateJWTSecret(t *testing.T) {
	cfg := &Config{}
	if err := cfg.ValidateJWTSecret(); err == nil {
		t.Error("Expected error for missing secret")
	}

	cfg.Auth.JWTSecret = "short"
	if err := cfg.ValidateJWTSecret(); err != nil {
		t.Errorf("Short secret should be accepted outside production: %v", err)
	}

	cfg.Env = "production"
	if err := cfg.ValidateJWTSecret(); err == nil {
		t.Error("Expected error for short secret in production")
	}

	cfg.Auth.JWTSecret = strings.Repeat("x", MinJWTSecretLength)
	if err := cfg.ValidateJWTSecret(); err != nil {
		t.Errorf("Unexpected error: %v", err)
	}
}

func TestValidateEnv(t *testing.T) {
	t.Setenv("BOOKMARKS_TEST_PRESENT", "1")

	if err := ValidateEnv([]string{"BOOKMARKS_TEST_PRESENT"}); err != nil {
		t.Errorf("Unexpected error: %v", err)
	}

	err := ValidateEnv([]string{"BOOKMARKS_TEST_PRESENT", "BOOKMARKS_TEST_MISSING"})
	if err == nil || !strings.Contains(err.Error(), "BOOKMARKS_TEST_MISSING") {
		t.Errorf("Expected missing variable error, got %v", err)
	}
}
