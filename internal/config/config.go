// Package config loads service settings from the environment, optionally
// seeded from a .env file.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds every setting the API and migrate binaries read.
type Config struct {
	AppEnv  string
	AppPort string

	DatabaseURL     string
	DBMaxOpenConns  int
	DBMaxIdleConns  int
	DBConnLifetime  time.Duration
	RedisAddr       string
	RedisPassword   string
	RedisDB         int
	CacheTTL        time.Duration
	SearchFields    []string
	Paginate        bool
	DefaultLimit    int
	MaxLimit        int
	JWTSecret       string
	JWTTTL          time.Duration
	LogLevel        slog.Level
	LogFormat       string
	AdminEmail      string
	AdminPassword   string
	ShutdownTimeout time.Duration
}

// AuthEnabled reports whether mutating routes require a bearer token.
func (c *Config) AuthEnabled() bool { return c.JWTSecret != "" }

// LoadEnv loads variables from the given .env files into the process
// environment. A missing file is not an error; variables already set win.
func LoadEnv(files ...string) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil {
			slog.Debug("env file not loaded, relying on process environment", "file", f, "error", err)
		}
	}
}

// Load reads the configuration from the environment.
func Load() (*Config, error) {
	return load(os.Getenv)
}

func load(getenv func(string) string) (*Config, error) {
	r := reader{getenv: getenv}
	cfg := &Config{
		AppEnv:          r.str("APP_ENV", "development"),
		AppPort:         r.str("APP_PORT", "8080"),
		DatabaseURL:     r.str("DATABASE_URL", ""),
		DBMaxOpenConns:  r.int("DB_MAX_OPEN_CONNS", 25),
		DBMaxIdleConns:  r.int("DB_MAX_IDLE_CONNS", 25),
		DBConnLifetime:  r.duration("DB_CONN_MAX_LIFETIME", 5*time.Minute),
		RedisAddr:       r.str("REDIS_ADDR", ""),
		RedisPassword:   r.str("REDIS_PASSWORD", ""),
		RedisDB:         r.int("REDIS_DB", 0),
		CacheTTL:        r.duration("CACHE_TTL", 0),
		SearchFields:    r.list("CATALOG_SEARCH_FIELDS", []string{"product_name", "description"}),
		Paginate:        r.bool("CATALOG_PAGINATE", true),
		DefaultLimit:    r.int("CATALOG_DEFAULT_LIMIT", 10),
		MaxLimit:        r.int("CATALOG_MAX_LIMIT", 100),
		JWTSecret:       r.str("JWT_SECRET", ""),
		JWTTTL:          r.duration("JWT_TTL", 24*time.Hour),
		LogFormat:       strings.ToLower(r.str("LOG_FORMAT", "json")),
		AdminEmail:      r.str("ADMIN_EMAIL", ""),
		AdminPassword:   r.str("ADMIN_PASSWORD", ""),
		ShutdownTimeout: r.duration("SHUTDOWN_TIMEOUT", 10*time.Second),
	}
	if err := cfg.LogLevel.UnmarshalText([]byte(r.str("LOG_LEVEL", "info"))); err != nil {
		r.errs = append(r.errs, fmt.Errorf("LOG_LEVEL: %w", err))
	}
	if len(r.errs) > 0 {
		return nil, fmt.Errorf("invalid configuration: %v", r.errs)
	}
	if cfg.DefaultLimit <= 0 || cfg.MaxLimit < cfg.DefaultLimit {
		return nil, fmt.Errorf("invalid configuration: CATALOG_DEFAULT_LIMIT=%d must be positive and not exceed CATALOG_MAX_LIMIT=%d",
			cfg.DefaultLimit, cfg.MaxLimit)
	}
	return cfg, nil
}

type reader struct {
	getenv func(string) string
	errs   []error
}

func (r *reader) str(key, def string) string {
	if v := strings.TrimSpace(r.getenv(key)); v != "" {
		return v
	}
	return def
}

func (r *reader) int(key string, def int) int {
	v := strings.TrimSpace(r.getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		r.errs = append(r.errs, fmt.Errorf("%s: %w", key, err))
		return def
	}
	return n
}

func (r *reader) bool(key string, def bool) bool {
	v := strings.TrimSpace(r.getenv(key))
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		r.errs = append(r.errs, fmt.Errorf("%s: %w", key, err))
		return def
	}
	return b
}

func (r *reader) duration(key string, def time.Duration) time.Duration {
	v := strings.TrimSpace(r.getenv(key))
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		r.errs = append(r.errs, fmt.Errorf("%s: %w", key, err))
		return def
	}
	return d
}

func (r *reader) list(key string, def []string) []string {
	v := strings.TrimSpace(r.getenv(key))
	if v == "" {
		return def
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
