package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/myrjola/plottwist/internal/errors"
	"github.com/myrjola/plottwist/internal/game"
	"github.com/myrjola/plottwist/internal/logging"
	"github.com/myrjola/plottwist/internal/pprofserver"
	"github.com/myrjola/plottwist/internal/setup"
	"github.com/prometheus/client_golang/prometheus"
)

type application struct {
	logger   *slog.Logger
	game     *game.Service
	validate *validator.Validate
	registry *prometheus.Registry
}

func run(ctx context.Context, logger *slog.Logger, lookupEnv func(string) (string, bool)) error {
	cfg, err := setup.LoadConfig(lookupEnv)
	if err != nil {
		return errors.Wrap(err, "load config")
	}

	if cfg.PprofAddr != "" {
		pprofserver.Launch(ctx, cfg.PprofAddr, logger)
	}

	deps, err := setup.New(ctx, cfg, logger)
	if err != nil {
		return errors.Wrap(err, "set up application")
	}
	defer func() {
		if closeErr := deps.Close(); closeErr != nil {
			logger.LogAttrs(ctx, slog.LevelError, "error closing database", errors.SlogError(closeErr))
		}
	}()

	app := newApplication(deps, logger)
	if err = app.configureAndStartServer(ctx, cfg.Addr, handlerTimeout(cfg.AITimeout)); err != nil {
		return errors.Wrap(err, "start server")
	}
	return nil
}

func newApplication(deps *setup.App, logger *slog.Logger) *application {
	return &application{
		logger:   logger,
		game:     deps.Game,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		registry: deps.Registry,
	}
}

func main() {
	ctx := context.Background()
	logger := logging.NewLogger(os.Stdout, slog.LevelDebug)

	// A missing .env file is fine, the environment may be configured by other means.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		logger.LogAttrs(ctx, slog.LevelError, "failure loading .env file", errors.SlogError(err))
		os.Exit(1)
	}

	if err := run(ctx, logger, os.LookupEnv); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "failure starting application", errors.SlogError(err))
		os.Exit(1)
	}
}
