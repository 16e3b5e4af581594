package repositories_test

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/myrjola/plottwist/internal/repositories"
	"github.com/myrjola/plottwist/internal/testhelpers"
	"github.com/stretchr/testify/require"
)

func TestMysteryRepository_SaveAndFind(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	logger := testhelpers.NewLogger(io.Discard)
	styles := repositories.NewArtStyleRepository(db, logger)
	repo := repositories.NewMysteryRepository(db, logger)

	style, err := styles.FindByName(ctx, "Film Noir")
	require.NoError(t, err)
	date := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)

	saved, err := repo.Save(ctx, newMystery(date, style))
	require.NoError(t, err)
	require.Positive(t, saved.ID)
	require.False(t, saved.CreatedAt.IsZero())

	byDate, err := repo.FindByDate(ctx, date)
	require.NoError(t, err)
	require.Equal(t, saved, byDate)

	byID, err := repo.FindByID(ctx, saved.ID)
	require.NoError(t, err)
	require.Equal(t, saved, byID)
	require.Equal(t, "Film Noir", byID.ArtStyle.Name)
	require.Len(t, byID.CharacterDossiers, 3)
	require.Equal(t, "Hates marmalade", byID.CharacterDossiers[0].PotentialSecretsOrMotives)

	_, err = repo.FindByDate(ctx, date.AddDate(0, 0, 1))
	require.ErrorIs(t, err, repositories.ErrNotFound)
	_, err = repo.FindByID(ctx, saved.ID+100)
	require.ErrorIs(t, err, repositories.ErrNotFound)
}

func TestMysteryRepository_OnePerDate(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	logger := testhelpers.NewLogger(io.Discard)
	style, err := repositories.NewArtStyleRepository(db, logger).FindByName(ctx, "Pixel Art")
	require.NoError(t, err)
	repo := repositories.NewMysteryRepository(db, logger)
	date := time.Date(2025, 5, 2, 0, 0, 0, 0, time.UTC)

	_, err = repo.Save(ctx, newMystery(date, style))
	require.NoError(t, err)
	// Time of day does not matter, only the calendar date.
	_, err = repo.Save(ctx, newMystery(date.Add(15*time.Hour), style))
	require.ErrorIs(t, err, repositories.ErrDuplicateDate)
}

func TestMysteryRepository_Delete(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	logger := testhelpers.NewLogger(io.Discard)
	style, err := repositories.NewArtStyleRepository(db, logger).FindByName(ctx, "Pixel Art")
	require.NoError(t, err)
	repo := repositories.NewMysteryRepository(db, logger)
	date := time.Date(2025, 5, 3, 0, 0, 0, 0, time.UTC)

	saved, err := repo.Save(ctx, newMystery(date, style))
	require.NoError(t, err)
	require.NoError(t, repo.Delete(ctx, saved.ID))
	_, err = repo.FindByID(ctx, saved.ID)
	require.ErrorIs(t, err, repositories.ErrNotFound)
	require.ErrorIs(t, repo.Delete(ctx, saved.ID), repositories.ErrNotFound)
}

func TestMysteryRepository_Replace(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	logger := testhelpers.NewLogger(io.Discard)
	styles := repositories.NewArtStyleRepository(db, logger)
	repo := repositories.NewMysteryRepository(db, logger)
	noir, err := styles.FindByName(ctx, "Film Noir")
	require.NoError(t, err)
	pixel, err := styles.FindByName(ctx, "Pixel Art")
	require.NoError(t, err)
	date := time.Date(2025, 5, 4, 0, 0, 0, 0, time.UTC)

	// Replacing when nothing exists inserts.
	first, err := repo.Replace(ctx, newMystery(date, noir))
	require.NoError(t, err)

	second := newMystery(date, pixel)
	second.Theme = "The Second Take"
	replaced, err := repo.Replace(ctx, second)
	require.NoError(t, err)
	require.NotEqual(t, first.ID, replaced.ID)

	got, err := repo.FindByDate(ctx, date)
	require.NoError(t, err)
	require.Equal(t, "The Second Take", got.Theme)
	require.Equal(t, "Pixel Art", got.ArtStyle.Name)

	// A failing insert keeps the previous mystery.
	broken := newMystery(date, pixel)
	broken.ArtStyle.ID = 9999
	_, err = repo.Replace(ctx, broken)
	require.Error(t, err)

	got, err = repo.FindByDate(ctx, date)
	require.NoError(t, err)
	require.Equal(t, replaced.ID, got.ID)
}

func TestMysteryRepository_RejectsShortChoicePool(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	logger := testhelpers.NewLogger(io.Discard)
	style, err := repositories.NewArtStyleRepository(db, logger).FindByName(ctx, "Pixel Art")
	require.NoError(t, err)
	repo := repositories.NewMysteryRepository(db, logger)

	m := newMystery(time.Date(2025, 5, 5, 0, 0, 0, 0, time.UTC), style)
	m.InitialChoicesPool = []string{"only", "two"}
	_, err = repo.Save(ctx, m)
	require.Error(t, err)
}

func TestMysteryRepository_DateIsCalendarDay(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	logger := testhelpers.NewLogger(io.Discard)
	style, err := repositories.NewArtStyleRepository(db, logger).FindByName(ctx, "Pixel Art")
	require.NoError(t, err)
	repo := repositories.NewMysteryRepository(db, logger)

	saved, err := repo.Save(ctx, newMystery(time.Date(2024, 12, 31, 18, 30, 0, 0, time.UTC), style))
	require.NoError(t, err)
	require.Equal(t, time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC), saved.Date)
	got, err := repo.FindByID(ctx, saved.ID)
	require.NoError(t, err)
	require.Equal(t, saved, got)
}
