package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/myrjola/plottwist/internal/e2etest"
	"github.com/myrjola/plottwist/internal/errors"
	"github.com/myrjola/plottwist/internal/logging"
)

// maxRounds matches the default round cap of the server.
const maxRounds = 5

// TestPlayThrough plays today's mystery to its final round.
func TestPlayThrough(ctx context.Context, client *e2etest.Client, logger *slog.Logger) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Minute) //nolint:mnd // every round is a model call
	defer cancel()

	scenarios, err := client.PlayThrough(ctx, maxRounds)
	if err != nil {
		return errors.Wrap(err, "play through", slog.Int("rounds_played", len(scenarios)))
	}
	last := scenarios[len(scenarios)-1]
	if last.SolutionExplanation == nil || *last.SolutionExplanation == "" {
		return errors.New("final round has no solution", slog.Int("round", last.CurrentRoundGenerated))
	}
	logger.LogAttrs(ctx, slog.LevelInfo, "mystery solved", slog.Int("rounds", len(scenarios)))
	return nil
}

func main() {
	logger := logging.NewLogger(os.Stdout, slog.LevelDebug)
	ctx := context.Background()

	if len(os.Args) != 2 { //nolint:mnd // we expect only hostname to be passed as argument.
		logger.LogAttrs(ctx, slog.LevelError, "usage: smoketest <hostname>")
		os.Exit(1)
	}

	var (
		hostname = os.Args[1]
		url      = "https://" + hostname
		client   = e2etest.NewClient(url)
	)
	ctx = logging.WithAttrs(ctx, slog.String("hostname", url))

	if err := client.WaitForReady(ctx, "/api/healthy"); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "server is not healthy", errors.SlogError(err))
		os.Exit(1)
	}
	if err := TestPlayThrough(ctx, client, logger); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "error playing through today's mystery", errors.SlogError(err))
		os.Exit(1)
	}

	logger.LogAttrs(ctx, slog.LevelInfo, "Smoke test successful 🙌")
	os.Exit(0)
}
