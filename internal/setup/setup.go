// Package setup loads the configuration and wires the components shared by the web server and the CLI.
package setup

import (
	"context"
	"log/slog"
	"time"

	"github.com/myrjola/plottwist/internal/ai"
	"github.com/myrjola/plottwist/internal/catalog"
	"github.com/myrjola/plottwist/internal/envstruct"
	"github.com/myrjola/plottwist/internal/errors"
	"github.com/myrjola/plottwist/internal/game"
	"github.com/myrjola/plottwist/internal/generation"
	"github.com/myrjola/plottwist/internal/imagestore"
	"github.com/myrjola/plottwist/internal/progression"
	"github.com/myrjola/plottwist/internal/repositories"
	"github.com/myrjola/plottwist/internal/sqlite"
	"github.com/myrjola/plottwist/internal/validation"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
)

var (
	ErrUnknownProvider = errors.NewSentinel("unknown AI provider")
	ErrInvalidConfig   = errors.NewSentinel("invalid configuration")
)

type Config struct {
	// Addr is the address the web server listens on.
	Addr string `env:"PLOTTWIST_ADDR" envDefault:"localhost:4000"`
	// SqliteURL is the path to the database file or ":memory:".
	SqliteURL string `env:"PLOTTWIST_SQLITE_URL" envDefault:"./plottwist.sqlite3"`
	// PprofAddr enables the loopback pprof server when set, e.g. "localhost:6060".
	PprofAddr  string `env:"PLOTTWIST_PPROF_ADDR" envDefault:""`
	MaxRounds  int    `env:"PLOTTWIST_MAX_ROUNDS" envDefault:"5"`
	AIProvider string `env:"PLOTTWIST_AI_PROVIDER" envDefault:"gemini"`
	// Without an API key for the selected provider every model call fails as unavailable.
	GeminiAPIKey       string        `env:"GEMINI_API_KEY" envDefault:""`
	GeminiModel        string        `env:"PLOTTWIST_GEMINI_MODEL" envDefault:"gemini-2.0-flash"`
	OpenAIAPIKey       string        `env:"OPENAI_API_KEY" envDefault:""`
	OpenAIModel        string        `env:"PLOTTWIST_OPENAI_MODEL" envDefault:"gpt-4o-mini"`
	AITimeout          time.Duration `env:"PLOTTWIST_AI_TIMEOUT" envDefault:"60s"`
	ImageBaseURL       string        `env:"PLOTTWIST_IMAGE_BASE_URL" envDefault:"https://mockurl.com"`
	ImageUploadBaseURL string        `env:"PLOTTWIST_IMAGE_UPLOAD_BASE_URL" envDefault:"https://s3.example.com/mock_images"`
	MysteryCacheSize   int           `env:"PLOTTWIST_MYSTERY_CACHE_SIZE" envDefault:"64"`
	// MysteryCacheTTL bounds how long a mystery changed by another process, e.g. the CLI, is still served.
	MysteryCacheTTL time.Duration `env:"PLOTTWIST_MYSTERY_CACHE_TTL" envDefault:"1m"`
}

// LoadConfig reads the configuration with lookupEnv, which has the same signature as [os.LookupEnv].
func LoadConfig(lookupEnv func(string) (string, bool)) (Config, error) {
	var cfg Config
	if err := envstruct.Populate(&cfg, lookupEnv); err != nil {
		return Config{}, errors.Wrap(err, "populate config")
	}
	if cfg.AIProvider != ProviderGemini && cfg.AIProvider != ProviderOpenAI {
		return Config{}, errors.Wrap(ErrUnknownProvider, "validate config", slog.String("provider", cfg.AIProvider))
	}
	if cfg.MaxRounds < 1 {
		return Config{}, errors.Wrap(ErrInvalidConfig, "validate config", slog.Int("max_rounds", cfg.MaxRounds))
	}
	if cfg.MysteryCacheSize < 1 {
		return Config{}, errors.Wrap(ErrInvalidConfig, "validate config",
			slog.Int("mystery_cache_size", cfg.MysteryCacheSize))
	}
	if cfg.MysteryCacheTTL <= 0 {
		return Config{}, errors.Wrap(ErrInvalidConfig, "validate config",
			slog.Duration("mystery_cache_ttl", cfg.MysteryCacheTTL))
	}
	return cfg, nil
}

// App holds the wired components. Close releases the database.
type App struct {
	Config    Config
	Database  *sqlite.Database
	ArtStyles *repositories.ArtStyleRepository
	Mysteries *repositories.MysteryRepository
	Gateway   *ai.Gateway
	Generator *generation.Orchestrator
	Engine    *progression.Engine
	Game      *game.Service
	Registry  *prometheus.Registry
}

// New connects to the database and wires every component around the configured model backend. The database
// optimizer stops when ctx is done.
func New(ctx context.Context, cfg Config, logger *slog.Logger) (*App, error) {
	backend, err := newBackend(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	return NewWithBackend(ctx, cfg, backend, logger)
}

// NewWithBackend is New with an explicit model backend. A nil backend makes every model call unavailable.
func NewWithBackend(ctx context.Context, cfg Config, backend ai.Backend, logger *slog.Logger) (*App, error) {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}), //nolint:exhaustruct // defaults
	)

	db, err := sqlite.NewDatabase(ctx, cfg.SqliteURL, logger)
	if err != nil {
		return nil, errors.Wrap(err, "open database", slog.String("url", cfg.SqliteURL))
	}

	var (
		artStyles = repositories.NewArtStyleRepository(db, logger)
		mysteries = repositories.NewMysteryRepository(db, logger)
		gateway   = ai.NewGateway(backend, cfg.AITimeout, ai.NewMetrics(registry), logger)
		validator = validation.New(logger)
		images    = imagestore.New(cfg.ImageBaseURL, cfg.ImageUploadBaseURL, logger)
		engine    = progression.NewEngine(gateway, validator, images, cfg.MaxRounds, logger)
		generator = generation.NewOrchestrator(gateway, validator, artStyles, images,
			catalog.Archetypes(), catalog.ArtStyleNames(), logger)
	)
	service, err := game.NewService(mysteries, generator, engine, cfg.MysteryCacheSize, cfg.MysteryCacheTTL, time.Now,
		logger)
	if err != nil {
		return nil, errors.Join(errors.Wrap(err, "create game service"), db.Close())
	}

	return &App{
		Config:    cfg,
		Database:  db,
		ArtStyles: artStyles,
		Mysteries: mysteries,
		Gateway:   gateway,
		Generator: generator,
		Engine:    engine,
		Game:      service,
		Registry:  registry,
	}, nil
}

// newBackend returns the configured model backend or nil when the provider has no API key.
func newBackend(ctx context.Context, cfg Config, logger *slog.Logger) (ai.Backend, error) {
	switch cfg.AIProvider {
	case ProviderOpenAI:
		if cfg.OpenAIAPIKey == "" {
			break
		}
		return ai.NewOpenAIBackend(cfg.OpenAIAPIKey, cfg.OpenAIModel), nil
	case ProviderGemini:
		if cfg.GeminiAPIKey == "" {
			break
		}
		backend, err := ai.NewGeminiBackend(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			return nil, errors.Wrap(err, "create gemini backend")
		}
		return backend, nil
	default:
		return nil, errors.Wrap(ErrUnknownProvider, "create backend", slog.String("provider", cfg.AIProvider))
	}
	logger.LogAttrs(ctx, slog.LevelWarn, "no API key for AI provider, model calls will fail as unavailable",
		slog.String("provider", cfg.AIProvider))
	return nil, nil
}

func (a *App) Close() error {
	return a.Database.Close()
}
