package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/myrjola/plottwist/internal/catalog"
	"github.com/myrjola/plottwist/internal/errors"
	"github.com/myrjola/plottwist/internal/logging"
	"github.com/myrjola/plottwist/internal/repositories"
	"github.com/myrjola/plottwist/internal/sqlite"
)

// migrate synchronizes the schema of the database at sqliteURL and checks that the stored data survived.
func migrate(ctx context.Context, sqliteURL string, logger *slog.Logger) error {
	db, err := sqlite.NewDatabase(ctx, sqliteURL, logger)
	if err != nil {
		return errors.Wrap(err, "open database", slog.String("url", sqliteURL))
	}
	defer func() {
		_ = db.Close()
	}()

	styles, err := repositories.NewArtStyleRepository(db, logger).List(ctx)
	if err != nil {
		return errors.Wrap(err, "list art styles")
	}
	if len(styles) < len(catalog.ArtStyles()) {
		return errors.New("art style seed is incomplete",
			slog.Int("stored", len(styles)), slog.Int("catalog", len(catalog.ArtStyles())))
	}

	var mysteries int
	if err = db.ReadOnly.GetContext(ctx, &mysteries, `SELECT COUNT(*) FROM daily_mysteries`); err != nil {
		return errors.Wrap(err, "count daily mysteries")
	}
	logger.LogAttrs(ctx, slog.LevelInfo, "database contents",
		slog.Int("art_styles", len(styles)), slog.Int("daily_mysteries", mysteries))
	return nil
}

func main() {
	logger := logging.NewLogger(os.Stdout, slog.LevelDebug)
	start := time.Now()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second) //nolint:mnd // 5 seconds

	sqliteURL, ok := os.LookupEnv("PLOTTWIST_SQLITE_URL")
	if !ok {
		logger.LogAttrs(ctx, slog.LevelError, "PLOTTWIST_SQLITE_URL not set")
		cancel()
		os.Exit(1)
	}

	if err := migrate(ctx, sqliteURL, logger); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "migration test failed", errors.SlogError(err))
		cancel()
		os.Exit(1)
	}

	logger.LogAttrs(ctx, slog.LevelInfo, "Migration test successful 🙌", slog.Duration("duration", time.Since(start)))
	cancel()
	os.Exit(0)
}
