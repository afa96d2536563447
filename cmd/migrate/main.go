// Command migrate applies pending schema migrations and seeds the admin
// account when ADMIN_EMAIL and ADMIN_PASSWORD are set.
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/georgemunganga/catalog-api/internal/config"
	"github.com/georgemunganga/catalog-api/internal/modules/account"
	"github.com/georgemunganga/catalog-api/internal/platform/database"
	"github.com/georgemunganga/catalog-api/internal/platform/httplog"
)

func main() {
	if err := run(context.Background()); err != nil {
		slog.Error("migrate failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	config.LoadEnv()
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	slog.SetDefault(httplog.NewLogger(os.Stdout, cfg.LogFormat, cfg.LogLevel))

	db, err := database.Open(ctx, cfg.DatabaseURL, database.Options{
		MaxOpenConns:    2,
		MaxIdleConns:    1,
		ConnMaxLifetime: cfg.DBConnLifetime,
	})
	if err != nil {
		return err
	}
	defer db.Close()

	migrations, err := database.Migrations()
	if err != nil {
		return err
	}
	applied, err := database.MigrateUp(ctx, db, migrations)
	if err != nil {
		return err
	}
	slog.Info("migrations complete", "applied", applied, "known", len(migrations))

	if cfg.AdminEmail == "" || cfg.AdminPassword == "" {
		return nil
	}
	created, err := account.NewService(account.NewPostgresRepository(db)).
		EnsureAccount(ctx, cfg.AdminEmail, cfg.AdminPassword)
	if err != nil {
		return err
	}
	slog.Info("admin account checked", "email", cfg.AdminEmail, "created", created)
	return nil
}
