package models_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/myrjola/plottwist/internal/models"
	"github.com/stretchr/testify/require"
)

func TestPublicViewWithholdsSolution(t *testing.T) {
	m := models.DailyMystery{
		ID:                 7,
		Date:               time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC),
		Theme:              "The Vanishing Violinist",
		BaseStoryText:      "It was a dark and stormy night.",
		ActualSolutionText: "The butler's twin did it.",
		ArtStyle:           models.ArtStyle{ID: 1, Name: "Film Noir", PromptModifier: "shadows"},
		InitialChoicesPool: []string{"a", "b", "c", "d", "e", "f", "g", "h", "i", "j"},
	}

	view := m.PublicView([]string{"c", "a", "j"})
	require.Equal(t, int64(7), view.DailyMysteryID)
	require.Equal(t, "2025-05-01", view.Date)
	require.Equal(t, "Film Noir", view.ArtStyleName)
	require.Equal(t, []string{"c", "a", "j"}, view.InitialChoices)
	require.NotNil(t, view.CharacterDossiers)
	require.NotNil(t, view.BaseImageURLs)

	b, err := json.Marshal(view)
	require.NoError(t, err)
	require.NotContains(t, string(b), "twin")
	require.NotContains(t, string(b), "initial_choices_pool")
}

func TestRound(t *testing.T) {
	require.Equal(t, 1, models.Round(nil))
	require.Equal(t, 5, models.Round(make([]models.GameplayTurn, 4)))
}
