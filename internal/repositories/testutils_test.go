package repositories_test

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/myrjola/plottwist/internal/models"
	"github.com/myrjola/plottwist/internal/sqlite"
	"github.com/myrjola/plottwist/internal/testhelpers"
	"github.com/stretchr/testify/require"
)

// newTestDB creates a seeded in-memory database for testing purposes.
func newTestDB(t *testing.T) *sqlite.Database {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	db, err := sqlite.NewDatabase(ctx, ":memory:", testhelpers.NewLogger(io.Discard))
	require.NoError(t, err)
	t.Cleanup(func() {
		cancel()
		require.NoError(t, db.Close())
	})
	return db
}

func newMystery(date time.Time, style models.ArtStyle) models.DailyMystery {
	return models.DailyMystery{
		Date:               date,
		Theme:              "The Case of the Missing Marmalade",
		BaseStoryText:      "Breakfast at the manor was ruined.",
		ActualSolutionText: "The cook's parrot hid the jar.",
		CharacterDossiers: []models.CharacterDossier{
			{CharacterName: "Lady Pim", Description: "Owner of the manor", PotentialSecretsOrMotives: "Hates marmalade"},
			{CharacterName: "Mr. Toast", Description: "The butler"},
			{CharacterName: "Polly", Description: "A parrot"},
		},
		CriticalPathClues:  []string{"Orange feathers", "Sticky perch"},
		ArtStyle:           style,
		BaseImageURLs:      []string{"https://mockurl.com/base_image_0_Manor.png"},
		InitialChoicesPool: []string{"1", "2", "3", "4", "5", "6", "7", "8", "9", "10"},
	}
}
