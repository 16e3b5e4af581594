package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/myrjola/plottwist/internal/errors"
	"github.com/myrjola/plottwist/internal/models"
	"github.com/myrjola/plottwist/internal/sqlite"
)

// MysteryRepository stores daily mysteries. The list fields are stored as JSON text.
type MysteryRepository struct {
	db     *sqlite.Database
	logger *slog.Logger
}

func NewMysteryRepository(db *sqlite.Database, logger *slog.Logger) *MysteryRepository {
	return &MysteryRepository{
		db:     db,
		logger: logger.With("source", "MysteryRepository"),
	}
}

type mysteryRow struct {
	ID                     int64  `db:"id"`
	Date                   string `db:"date"`
	Theme                  string `db:"theme"`
	BaseStoryText          string `db:"base_story_text"`
	ActualSolutionText     string `db:"actual_solution_text"`
	CharacterDossiers      string `db:"character_dossiers"`
	CriticalPathClues      string `db:"critical_path_clues"`
	ArtStyleID             int64  `db:"art_style_id"`
	ArtStyleName           string `db:"art_style_name"`
	ArtStylePromptModifier string `db:"art_style_prompt_modifier"`
	BaseImageURLs          string `db:"base_image_urls"`
	InitialChoicesPool     string `db:"initial_choices_pool"`
	CreatedAt              string `db:"created_at"`
}

const selectMystery = `SELECT m.id, m.date, m.theme, m.base_story_text, m.actual_solution_text, m.character_dossiers,
       m.critical_path_clues, m.art_style_id, s.name AS art_style_name, s.prompt_modifier AS art_style_prompt_modifier,
       m.base_image_urls, m.initial_choices_pool, m.created_at
FROM daily_mysteries AS m
         JOIN art_styles AS s ON s.id = m.art_style_id`

const insertMystery = `INSERT INTO daily_mysteries (date, theme, base_story_text, actual_solution_text, character_dossiers,
                             critical_path_clues, art_style_id, base_image_urls, initial_choices_pool)
VALUES (:date, :theme, :base_story_text, :actual_solution_text, :character_dossiers, :critical_path_clues,
        :art_style_id, :base_image_urls, :initial_choices_pool)
RETURNING id, created_at`

// FindByDate returns the mystery of the calendar date or ErrNotFound.
func (r *MysteryRepository) FindByDate(ctx context.Context, date time.Time) (models.DailyMystery, error) {
	day := date.Format(models.DateLayout)
	return r.findOne(ctx, selectMystery+` WHERE m.date = ?`, day, slog.String("date", day))
}

// FindByID returns the mystery with id or ErrNotFound.
func (r *MysteryRepository) FindByID(ctx context.Context, id int64) (models.DailyMystery, error) {
	return r.findOne(ctx, selectMystery+` WHERE m.id = ?`, id, slog.Int64("id", id))
}

func (r *MysteryRepository) findOne(ctx context.Context, query string, arg any, attr slog.Attr) (models.DailyMystery, error) {
	var row mysteryRow
	err := r.db.ReadOnly.GetContext(ctx, &row, query, arg)
	if errors.Is(err, sql.ErrNoRows) {
		return models.DailyMystery{}, errors.Wrap(ErrNotFound, "find mystery", attr)
	}
	if err != nil {
		return models.DailyMystery{}, errors.Wrap(err, "find mystery", attr)
	}
	m, err := row.toModel()
	if err != nil {
		return models.DailyMystery{}, errors.Wrap(err, "decode mystery", attr)
	}
	return m, nil
}

// Save inserts m and returns it with the assigned id. A mystery for the same date fails with ErrDuplicateDate.
func (r *MysteryRepository) Save(ctx context.Context, m models.DailyMystery) (models.DailyMystery, error) {
	saved, err := insert(ctx, r.db.ReadWrite, m)
	if err != nil {
		return models.DailyMystery{}, err
	}
	r.logger.LogAttrs(ctx, slog.LevelInfo, "saved mystery",
		slog.Int64("id", saved.ID), slog.String("date", saved.DateString()))
	return saved, nil
}

// Delete removes the mystery with id. Deleting a missing mystery fails with ErrNotFound.
func (r *MysteryRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ReadWrite.ExecContext(ctx, `DELETE FROM daily_mysteries WHERE id = ?`, id)
	if err != nil {
		return errors.Wrap(err, "delete mystery", slog.Int64("id", id))
	}
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "rows affected", slog.Int64("id", id))
	}
	if n == 0 {
		return errors.Wrap(ErrNotFound, "delete mystery", slog.Int64("id", id))
	}
	return nil
}

// Replace deletes any mystery on the date of m and inserts m in one transaction.
func (r *MysteryRepository) Replace(ctx context.Context, m models.DailyMystery) (models.DailyMystery, error) {
	tx, err := r.db.ReadWrite.BeginTxx(ctx, nil)
	if err != nil {
		return models.DailyMystery{}, errors.Wrap(err, "begin transaction")
	}
	defer func() {
		if rollbackErr := tx.Rollback(); rollbackErr != nil && !errors.Is(rollbackErr, sql.ErrTxDone) {
			r.logger.LogAttrs(ctx, slog.LevelError, "failed to roll back", errors.SlogError(rollbackErr))
		}
	}()

	day := m.DateString()
	res, err := tx.ExecContext(ctx, `DELETE FROM daily_mysteries WHERE date = ?`, day)
	if err != nil {
		return models.DailyMystery{}, errors.Wrap(err, "delete existing mystery", slog.String("date", day))
	}
	replaced, err := res.RowsAffected()
	if err != nil {
		return models.DailyMystery{}, errors.Wrap(err, "rows affected")
	}
	saved, err := insert(ctx, tx, m)
	if err != nil {
		return models.DailyMystery{}, err
	}
	if err = tx.Commit(); err != nil {
		return models.DailyMystery{}, errors.Wrap(err, "commit transaction")
	}
	r.logger.LogAttrs(ctx, slog.LevelInfo, "replaced mystery",
		slog.Int64("id", saved.ID), slog.String("date", day), slog.Bool("existed", replaced > 0))
	return saved, nil
}

// queryer is implemented by both *sqlx.DB and *sqlx.Tx.
type queryer interface {
	QueryRowxContext(ctx context.Context, query string, args ...any) *sqlx.Row
}

func insert(ctx context.Context, q queryer, m models.DailyMystery) (models.DailyMystery, error) {
	row, err := fromModel(m)
	if err != nil {
		return models.DailyMystery{}, errors.Wrap(err, "encode mystery")
	}
	query, args, err := sqlx.Named(insertMystery, row)
	if err != nil {
		return models.DailyMystery{}, errors.Wrap(err, "bind named parameters")
	}
	var createdAt string
	if err = q.QueryRowxContext(ctx, query, args...).Scan(&m.ID, &createdAt); err != nil {
		if isUniqueViolation(err) {
			return models.DailyMystery{}, errors.Wrap(ErrDuplicateDate, "insert mystery", slog.String("date", row.Date))
		}
		return models.DailyMystery{}, errors.Wrap(err, "insert mystery", slog.String("date", row.Date))
	}
	if m.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
		return models.DailyMystery{}, errors.Wrap(err, "parse created_at", slog.String("created_at", createdAt))
	}
	// Only the calendar day is stored.
	if m.Date, err = time.Parse(models.DateLayout, row.Date); err != nil {
		return models.DailyMystery{}, errors.Wrap(err, "parse date", slog.String("date", row.Date))
	}
	return m, nil
}

func fromModel(m models.DailyMystery) (mysteryRow, error) {
	row := mysteryRow{
		ID:                     m.ID,
		Date:                   m.DateString(),
		Theme:                  m.Theme,
		BaseStoryText:          m.BaseStoryText,
		ActualSolutionText:     m.ActualSolutionText,
		ArtStyleID:             m.ArtStyle.ID,
		ArtStyleName:           m.ArtStyle.Name,
		ArtStylePromptModifier: m.ArtStyle.PromptModifier,
		CreatedAt:              "",
	}
	var err error
	if row.CharacterDossiers, err = encodeList(m.CharacterDossiers); err != nil {
		return mysteryRow{}, err
	}
	if row.CriticalPathClues, err = encodeList(m.CriticalPathClues); err != nil {
		return mysteryRow{}, err
	}
	if row.BaseImageURLs, err = encodeList(m.BaseImageURLs); err != nil {
		return mysteryRow{}, err
	}
	if row.InitialChoicesPool, err = encodeList(m.InitialChoicesPool); err != nil {
		return mysteryRow{}, err
	}
	return row, nil
}

func (row mysteryRow) toModel() (models.DailyMystery, error) {
	m := models.DailyMystery{
		ID:                 row.ID,
		Theme:              row.Theme,
		BaseStoryText:      row.BaseStoryText,
		ActualSolutionText: row.ActualSolutionText,
		ArtStyle: models.ArtStyle{
			ID:             row.ArtStyleID,
			Name:           row.ArtStyleName,
			PromptModifier: row.ArtStylePromptModifier,
		},
	}
	var err error
	if m.Date, err = time.Parse(models.DateLayout, row.Date); err != nil {
		return models.DailyMystery{}, errors.Wrap(err, "parse date")
	}
	if m.CreatedAt, err = time.Parse(time.RFC3339Nano, row.CreatedAt); err != nil {
		return models.DailyMystery{}, errors.Wrap(err, "parse created_at")
	}
	if err = json.Unmarshal([]byte(row.CharacterDossiers), &m.CharacterDossiers); err != nil {
		return models.DailyMystery{}, errors.Wrap(err, "decode character_dossiers")
	}
	if err = json.Unmarshal([]byte(row.CriticalPathClues), &m.CriticalPathClues); err != nil {
		return models.DailyMystery{}, errors.Wrap(err, "decode critical_path_clues")
	}
	if err = json.Unmarshal([]byte(row.BaseImageURLs), &m.BaseImageURLs); err != nil {
		return models.DailyMystery{}, errors.Wrap(err, "decode base_image_urls")
	}
	if err = json.Unmarshal([]byte(row.InitialChoicesPool), &m.InitialChoicesPool); err != nil {
		return models.DailyMystery{}, errors.Wrap(err, "decode initial_choices_pool")
	}
	return m, nil
}

// encodeList stores nil slices as empty JSON arrays.
func encodeList[T any](items []T) (string, error) {
	if items == nil {
		items = []T{}
	}
	b, err := json.Marshal(items)
	if err != nil {
		return "", errors.Wrap(err, "marshal list")
	}
	return string(b), nil
}
