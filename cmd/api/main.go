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

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/georgemunganga/catalog-api/internal/config"
	"github.com/georgemunganga/catalog-api/internal/modules/account"
	"github.com/georgemunganga/catalog-api/internal/modules/auth"
	"github.com/georgemunganga/catalog-api/internal/modules/catalog"
	"github.com/georgemunganga/catalog-api/internal/pkg/clock"
	"github.com/georgemunganga/catalog-api/internal/platform/cache"
	"github.com/georgemunganga/catalog-api/internal/platform/database"
	"github.com/georgemunganga/catalog-api/internal/platform/httplog"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run() error {
	config.LoadEnv()
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := httplog.NewLogger(os.Stdout, cfg.LogFormat, cfg.LogLevel)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(ctx, cfg.DatabaseURL, database.Options{
		MaxOpenConns:    cfg.DBMaxOpenConns,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		ConnMaxLifetime: cfg.DBConnLifetime,
	})
	if err != nil {
		return err
	}
	defer db.Close()

	redisClient, err := cache.NewRedisClient(ctx, cache.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
		TTL:      cfg.CacheTTL,
	})
	if err != nil {
		return err
	}
	defer redisClient.Close()

	// ── Router ──────────────────────────────────────────────
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(httplog.RequestLogger(logger))
	router.Use(middleware.Recoverer)
	router.Use(middleware.StripSlashes)

	clk := clock.NewRealClock()

	// ── Accounts & Auth ─────────────────────────────────────
	var writeGuard func(http.Handler) http.Handler
	if cfg.AuthEnabled() {
		accountRepo := account.NewPostgresRepository(db)
		authService := auth.NewService(accountRepo, []byte(cfg.JWTSecret), cfg.JWTTTL, clk)
		auth.NewHandler(authService).RegisterRoutes(router)
		writeGuard = auth.RequireToken(authService)
	} else {
		slog.Warn("JWT_SECRET is not set, catalog writes are unauthenticated")
	}

	// ── Catalog ─────────────────────────────────────────────
	opts := []catalog.ListOption{
		catalog.WithSearchFields(cfg.SearchFields...),
		catalog.WithLimits(cfg.DefaultLimit, cfg.MaxLimit),
	}
	if !cfg.Paginate {
		opts = append(opts, catalog.WithoutPagination())
	}
	listCfg, err := catalog.NewListConfig(opts...)
	if err != nil {
		return err
	}
	catalogRepo := catalog.NewPostgresRepository(db)
	catalogService := catalog.NewService(catalogRepo, redisClient, clk, listCfg)
	catalogHandler := catalog.NewHandler(catalogService, clk, listCfg)
	if writeGuard != nil {
		catalogHandler.WithWriteGuard(writeGuard)
	}
	catalogHandler.RegisterRoutes(router)

	// ── Start Server ─────────────────────────────────────────
	srv := &http.Server{
		Addr:              ":" + cfg.AppPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("catalog API server starting", "port", cfg.AppPort, "env", cfg.AppEnv)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
