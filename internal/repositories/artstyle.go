package repositories

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/myrjola/plottwist/internal/errors"
	"github.com/myrjola/plottwist/internal/models"
	"github.com/myrjola/plottwist/internal/sqlite"
)

type ArtStyleRepository struct {
	db     *sqlite.Database
	logger *slog.Logger
}

func NewArtStyleRepository(db *sqlite.Database, logger *slog.Logger) *ArtStyleRepository {
	return &ArtStyleRepository{
		db:     db,
		logger: logger.With("source", "ArtStyleRepository"),
	}
}

// FindByName returns the art style with the exact name or ErrNotFound.
func (r *ArtStyleRepository) FindByName(ctx context.Context, name string) (models.ArtStyle, error) {
	var style models.ArtStyle
	err := r.db.ReadOnly.GetContext(ctx, &style,
		`SELECT id, name, prompt_modifier FROM art_styles WHERE name = ?`, name)
	if errors.Is(err, sql.ErrNoRows) {
		return models.ArtStyle{}, errors.Wrap(ErrNotFound, "find art style", slog.String("name", name))
	}
	if err != nil {
		return models.ArtStyle{}, errors.Wrap(err, "find art style", slog.String("name", name))
	}
	return style, nil
}

// List returns every stored art style ordered by id.
func (r *ArtStyleRepository) List(ctx context.Context) ([]models.ArtStyle, error) {
	styles := []models.ArtStyle{}
	if err := r.db.ReadOnly.SelectContext(ctx, &styles,
		`SELECT id, name, prompt_modifier FROM art_styles ORDER BY id`); err != nil {
		return nil, errors.Wrap(err, "list art styles")
	}
	return styles, nil
}
