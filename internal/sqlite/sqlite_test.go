package sqlite_test

import (
	"context"
	"io"
	"path/filepath"
	"testing"

	"github.com/myrjola/plottwist/internal/catalog"
	"github.com/myrjola/plottwist/internal/sqlite"
	"github.com/myrjola/plottwist/internal/testhelpers"
	"github.com/stretchr/testify/require"
)

func TestNewDatabase_SeedsArtStyles(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	logger := testhelpers.NewLogger(io.Discard)
	path := filepath.Join(t.TempDir(), "plottwist.sqlite")

	db, err := sqlite.NewDatabase(ctx, path, logger)
	require.NoError(t, err)

	var names []string
	require.NoError(t, db.ReadOnly.SelectContext(ctx, &names, "SELECT name FROM art_styles ORDER BY id"))
	require.Equal(t, catalog.ArtStyleNames(), names)
	require.NoError(t, db.Close())

	// Reopening keeps the ids stable and does not duplicate the seed.
	db, err = sqlite.NewDatabase(ctx, path, logger)
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, db.Close()) })
	var count int
	require.NoError(t, db.ReadOnly.GetContext(ctx, &count, "SELECT count(*) FROM art_styles"))
	require.Equal(t, len(catalog.ArtStyleNames()), count)
}

func TestNewDatabase_ReadOnlyPoolRejectsWrites(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	db, err := sqlite.NewDatabase(ctx, ":memory:", testhelpers.NewLogger(io.Discard))
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, db.Close()) })

	_, err = db.ReadOnly.ExecContext(ctx, "DELETE FROM art_styles")
	require.Error(t, err)
}
