// Package game implements the caller-facing operations: daily mystery generation, today's mystery and scenario
// progression.
package game

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/myrjola/plottwist/internal/errors"
	"github.com/myrjola/plottwist/internal/logging"
	"github.com/myrjola/plottwist/internal/models"
	"github.com/myrjola/plottwist/internal/progression"
	"github.com/myrjola/plottwist/internal/random"
	"github.com/myrjola/plottwist/internal/repositories"
	"golang.org/x/sync/singleflight"
)

// PublicChoiceCount is the number of initial choices shown to the player.
const PublicChoiceCount = 3

var (
	ErrMysteryExists       = errors.NewSentinel("mystery already exists for date")
	ErrMysteryNotFound     = errors.NewSentinel("mystery not found")
	ErrInsufficientChoices = errors.NewSentinel("mystery has too few initial choices")
)

type MysteryStore interface {
	FindByDate(ctx context.Context, date time.Time) (models.DailyMystery, error)
	FindByID(ctx context.Context, id int64) (models.DailyMystery, error)
	Save(ctx context.Context, m models.DailyMystery) (models.DailyMystery, error)
	Replace(ctx context.Context, m models.DailyMystery) (models.DailyMystery, error)
}

type MysteryGenerator interface {
	GenerateNewMystery(ctx context.Context, forDate time.Time) (models.DailyMystery, error)
}

type ScenarioAdvancer interface {
	Advance(ctx context.Context, in progression.Input) (models.ScenarioPayload, error)
}

// AdvanceRequest is one player choice together with the path that led to it.
type AdvanceRequest struct {
	DailyMysteryID            int64                 `json:"daily_mystery_id" validate:"required,gt=0"`
	PathSoFar                 []models.GameplayTurn `json:"path_so_far" validate:"dive"`
	LastPresentedScenarioText *string               `json:"last_presented_scenario_text"`
	CurrentChoice             string                `json:"current_user_choice" validate:"required"`
}

type Service struct {
	mysteries MysteryStore
	generator MysteryGenerator
	engine    ScenarioAdvancer
	byDate    *expirable.LRU[string, models.DailyMystery]
	byID      *expirable.LRU[int64, models.DailyMystery]
	creating  singleflight.Group
	// mu guards epoch so that a lookup started before a purge cannot repopulate the caches after it.
	mu     sync.Mutex
	epoch  uint64
	now    func() time.Time
	logger *slog.Logger
}

// NewService creates the game service.
//
// Mysteries are cached in LRU caches holding at most cacheSize entries each. Entries expire after cacheTTL so that
// mysteries deleted or replaced by another process stop being served.
func NewService(
	mysteries MysteryStore,
	generator MysteryGenerator,
	engine ScenarioAdvancer,
	cacheSize int,
	cacheTTL time.Duration,
	now func() time.Time,
	logger *slog.Logger,
) (*Service, error) {
	if cacheSize < 1 || cacheTTL <= 0 {
		return nil, errors.New("invalid mystery cache settings",
			slog.Int("size", cacheSize), slog.Duration("ttl", cacheTTL))
	}
	return &Service{
		mysteries: mysteries,
		generator: generator,
		engine:    engine,
		byDate:    expirable.NewLRU[string, models.DailyMystery](cacheSize, nil, cacheTTL),
		byID:      expirable.NewLRU[int64, models.DailyMystery](cacheSize, nil, cacheTTL),
		creating:  singleflight.Group{},
		mu:        sync.Mutex{},
		epoch:     0,
		now:       now,
		logger:    logger.With("source", "GameService"),
	}, nil
}

// GenerateDailyMystery generates and stores the mystery for date.
//
// An existing mystery for the date is an ErrMysteryExists conflict unless force is set, in which case it is replaced
// atomically. Nothing is stored when generation fails.
func (s *Service) GenerateDailyMystery(ctx context.Context, date time.Time, force bool) (models.DailyMystery, error) {
	date = calendarDay(date)
	ctx = logging.WithAttrs(ctx, slog.String("date", date.Format(models.DateLayout)))

	_, err := s.mysteries.FindByDate(ctx, date)
	exists := err == nil
	if err != nil && !errors.Is(err, repositories.ErrNotFound) {
		return models.DailyMystery{}, errors.Wrap(err, "find existing mystery")
	}
	if exists && !force {
		return models.DailyMystery{}, errors.Wrap(ErrMysteryExists, "generate daily mystery")
	}

	m, err := s.generator.GenerateNewMystery(ctx, date)
	if err != nil {
		return models.DailyMystery{}, errors.Wrap(err, "generate daily mystery")
	}

	if exists {
		m, err = s.mysteries.Replace(ctx, m)
	} else {
		m, err = s.mysteries.Save(ctx, m)
	}
	if errors.Is(err, repositories.ErrDuplicateDate) {
		return models.DailyMystery{}, errors.Wrap(ErrMysteryExists, "save daily mystery")
	}
	if err != nil {
		return models.DailyMystery{}, errors.Wrap(err, "save daily mystery")
	}

	s.forget(date.Format(models.DateLayout))
	s.logger.LogAttrs(ctx, slog.LevelInfo, "stored daily mystery",
		slog.Int64("mystery_id", m.ID), slog.Bool("replaced", exists))
	return m, nil
}

// GetOrCreateTodaysMystery returns today's mystery for players, generating it on the fly when it is missing.
//
// Concurrent callers share one generation. The public view holds a random sample of the initial choices.
func (s *Service) GetOrCreateTodaysMystery(ctx context.Context) (models.DailyMysteryPublicView, error) {
	today := calendarDay(s.now())
	key := today.Format(models.DateLayout)
	ctx = logging.WithAttrs(ctx, slog.String("date", key))

	m, ok := s.byDate.Get(key)
	if !ok {
		epoch := s.currentEpoch()
		v, err, _ := s.creating.Do(key, func() (any, error) {
			// The generation outlives a single impatient caller.
			return s.findOrCreate(context.WithoutCancel(ctx), today)
		})
		if err != nil {
			return models.DailyMysteryPublicView{}, err
		}
		m, _ = v.(models.DailyMystery)
		s.remember(epoch, m)
	}

	if len(m.InitialChoicesPool) < PublicChoiceCount {
		err := errors.Wrap(ErrInsufficientChoices, "select initial choices",
			slog.Int64("mystery_id", m.ID), slog.Int("pool", len(m.InitialChoicesPool)))
		s.logger.LogAttrs(ctx, slog.LevelError, "mystery cannot be served", errors.SlogError(err))
		return models.DailyMysteryPublicView{}, err
	}
	choices, err := random.Sample(m.InitialChoicesPool, PublicChoiceCount)
	if err != nil {
		return models.DailyMysteryPublicView{}, errors.Wrap(err, "select initial choices")
	}
	return m.PublicView(choices), nil
}

func (s *Service) findOrCreate(ctx context.Context, day time.Time) (models.DailyMystery, error) {
	m, err := s.mysteries.FindByDate(ctx, day)
	if err == nil {
		return m, nil
	}
	if !errors.Is(err, repositories.ErrNotFound) {
		return models.DailyMystery{}, errors.Wrap(err, "find today's mystery")
	}

	s.logger.LogAttrs(ctx, slog.LevelInfo, "no mystery for today, generating one")
	if m, err = s.generator.GenerateNewMystery(ctx, day); err != nil {
		return models.DailyMystery{}, errors.Wrap(err, "generate today's mystery")
	}
	saved, err := s.mysteries.Save(ctx, m)
	if errors.Is(err, repositories.ErrDuplicateDate) {
		// Someone else stored one in the meantime. Theirs wins.
		if saved, err = s.mysteries.FindByDate(ctx, day); err != nil {
			return models.DailyMystery{}, errors.Wrap(err, "find concurrently stored mystery")
		}
		return saved, nil
	}
	if err != nil {
		return models.DailyMystery{}, errors.Wrap(err, "save today's mystery")
	}
	s.logger.LogAttrs(ctx, slog.LevelInfo, "generated today's mystery", slog.Int64("mystery_id", saved.ID))
	return saved, nil
}

// AdvanceScenario generates the next scenario for the player's choice.
func (s *Service) AdvanceScenario(ctx context.Context, req AdvanceRequest) (models.ScenarioPayload, error) {
	m, ok := s.byID.Get(req.DailyMysteryID)
	if !ok {
		epoch := s.currentEpoch()
		var err error
		m, err = s.mysteries.FindByID(ctx, req.DailyMysteryID)
		if errors.Is(err, repositories.ErrNotFound) {
			return models.ScenarioPayload{}, errors.Wrap(ErrMysteryNotFound, "advance scenario",
				slog.Int64("mystery_id", req.DailyMysteryID))
		}
		if err != nil {
			return models.ScenarioPayload{}, errors.Wrap(err, "advance scenario")
		}
		s.remember(epoch, m)
	}

	payload, err := s.engine.Advance(ctx, progression.Input{
		Mystery:                   m,
		Path:                      req.PathSoFar,
		LastPresentedScenarioText: req.LastPresentedScenarioText,
		CurrentChoice:             req.CurrentChoice,
	})
	if err != nil {
		return models.ScenarioPayload{}, errors.Wrap(err, "advance scenario")
	}
	return payload, nil
}

func (s *Service) currentEpoch() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.epoch
}

// remember caches m unless the caches were purged after the lookup of m started at epoch.
func (s *Service) remember(epoch uint64, m models.DailyMystery) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if epoch != s.epoch {
		return
	}
	s.byDate.Add(m.DateString(), m)
	s.byID.Add(m.ID, m)
}

// forget purges the caches and detaches later callers from an in-flight lookup of day.
func (s *Service) forget(day string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.epoch++
	s.byDate.Purge()
	s.byID.Purge()
	s.creating.Forget(day)
}

// calendarDay drops the time of day in UTC.
func calendarDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
