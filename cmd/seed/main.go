// AngelaMos | 2026
// main.go

package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/jmoiron/sqlx"

	"github.com/carterperez-dev/templates/account-service/internal/config"
	"github.com/carterperez-dev/templates/account-service/internal/core"
	"github.com/carterperez-dev/templates/account-service/internal/user"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		slog.Error("seed failed", "error", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	ctx, stop := signal.NotifyContext(
		context.Background(),
		syscall.SIGINT,
		syscall.SIGTERM,
	)
	defer stop()

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger := core.NewLogger(cfg.Log, os.Stderr)
	slog.SetDefault(logger)

	db, err := core.NewDatabase(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("database close error", "error", err)
		}
	}()

	hasher := core.NewPasswordHasher(core.DefaultArgon2Params)

	var created int
	err = core.InTx(ctx, db.DB, nil, func(tx *sqlx.Tx) error {
		var seedErr error
		created, seedErr = user.Seed(
			ctx,
			user.NewRepository(tx),
			hasher,
			logger,
			cfg.Seed.Password,
			cfg.Seed.UsersPerRole,
		)
		return seedErr
	})
	if err != nil {
		return err
	}

	logger.Info("seed complete", "created", created)
	return nil
}
