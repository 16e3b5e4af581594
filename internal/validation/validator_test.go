package validation_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"testing"

	"github.com/myrjola/plottwist/internal/catalog"
	"github.com/myrjola/plottwist/internal/testhelpers"
	"github.com/myrjola/plottwist/internal/validation"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, s string) map[string]any {
	t.Helper()
	var obj map[string]any
	require.NoError(t, json.Unmarshal([]byte(s), &obj))
	return obj
}

func dailyContent(t *testing.T, mutate func(obj map[string]any)) map[string]any {
	t.Helper()
	obj := decode(t, `{
		"base_story_text": "The lighthouse keeper vanished on a calm night.",
		"actual_solution_text": "He staged it to escape a debt.",
		"initial_choices_pool": ["a", "b", "c", "d", "e", "f", "g", "h", "i", "j"],
		"character_dossiers": [
			{"character_name": "Ada", "description": "Keeper's niece", "potential_secrets_or_motives": "Owes money"},
			{"character_name": "Bo", "description": "Ferryman"},
			{"character_name": "Cy", "description": "Innkeeper", "potential_secrets_or_motives": "Saw a light"},
			{"character_name": "Di", "description": ""}
		],
		"critical_path_clues": ["The logbook", "Wet boots"],
		"base_image_prompts": ["A lighthouse at dusk", ""]
	}`)
	if mutate != nil {
		mutate(obj)
	}
	return obj
}

func TestDailyContent(t *testing.T) {
	v := validation.New(testhelpers.NewLogger(io.Discard))
	got, err := v.DailyContent(context.Background(), dailyContent(t, nil))
	require.NoError(t, err)
	require.Len(t, got.InitialChoicesPool, 10)
	require.Len(t, got.CharacterDossiers, 4)
	require.Equal(t, "Owes money", got.CharacterDossiers[0].PotentialSecretsOrMotives)
	require.Empty(t, got.CharacterDossiers[3].Description)
	require.Equal(t, []string{"The logbook", "Wet boots"}, got.CriticalPathClues)
	require.Equal(t, []string{"A lighthouse at dusk", ""}, got.BaseImagePrompts)
}

func TestDailyContent_DropsInvalidDossiers(t *testing.T) {
	var logs bytes.Buffer
	v := validation.New(testhelpers.NewLogger(&logs))

	obj := dailyContent(t, func(obj map[string]any) {
		dossiers := obj["character_dossiers"].([]any)
		obj["character_dossiers"] = append(dossiers,
			map[string]any{"description": "No name at all"},
			map[string]any{"character_name": "   ", "description": "Blank name"},
			map[string]any{"character_name": "Ed"},
			"not an object",
		)
	})
	got, err := v.DailyContent(context.Background(), obj)
	require.NoError(t, err)
	require.Len(t, got.CharacterDossiers, 4)
	names := make([]string, 0, len(got.CharacterDossiers))
	for _, d := range got.CharacterDossiers {
		names = append(names, d.CharacterName)
	}
	require.Equal(t, []string{"Ada", "Bo", "Cy", "Di"}, names)
	require.Contains(t, logs.String(), "dropping invalid character dossier")
}

func TestDailyContent_TruncatesDossiers(t *testing.T) {
	v := validation.New(testhelpers.NewLogger(io.Discard))
	obj := dailyContent(t, func(obj map[string]any) {
		dossiers := obj["character_dossiers"].([]any)
		obj["character_dossiers"] = append(dossiers,
			map[string]any{"character_name": "Ed", "description": "Mayor"},
			map[string]any{"character_name": "Fi", "description": "Postwoman"},
		)
	})
	got, err := v.DailyContent(context.Background(), obj)
	require.NoError(t, err)
	require.Len(t, got.CharacterDossiers, validation.MaxDossiers)
	require.Equal(t, "Ed", got.CharacterDossiers[4].CharacterName)
}

func TestDailyContent_Failures(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(obj map[string]any)
		wantErr error
	}{
		{
			name:    "missing key",
			mutate:  func(obj map[string]any) { delete(obj, "critical_path_clues") },
			wantErr: validation.ErrMissingKey,
		},
		{
			name:    "story is not a string",
			mutate:  func(obj map[string]any) { obj["base_story_text"] = 42.0 },
			wantErr: validation.ErrWrongType,
		},
		{
			name:    "nine choices",
			mutate:  func(obj map[string]any) { obj["initial_choices_pool"] = obj["initial_choices_pool"].([]any)[:9] },
			wantErr: validation.ErrInvalidValue,
		},
		{
			name: "duplicate choices",
			mutate: func(obj map[string]any) {
				obj["initial_choices_pool"] = []any{"a", "a", "c", "d", "e", "f", "g", "h", "i", "j"}
			},
			wantErr: validation.ErrInvalidValue,
		},
		{
			name:    "one clue",
			mutate:  func(obj map[string]any) { obj["critical_path_clues"] = []any{"only"} },
			wantErr: validation.ErrInvalidValue,
		},
		{
			name:    "four clues",
			mutate:  func(obj map[string]any) { obj["critical_path_clues"] = []any{"a", "b", "c", "d"} },
			wantErr: validation.ErrInvalidValue,
		},
		{
			name: "too few valid dossiers",
			mutate: func(obj map[string]any) {
				obj["character_dossiers"] = []any{
					map[string]any{"character_name": "Ada", "description": "x"},
					map[string]any{"character_name": "", "description": "x"},
					map[string]any{"character_name": "Bo", "description": "x"},
				}
			},
			wantErr: validation.ErrTooFewDossiers,
		},
		{
			name:    "dossiers not a list",
			mutate:  func(obj map[string]any) { obj["character_dossiers"] = "Ada, Bo, Cy" },
			wantErr: validation.ErrWrongType,
		},
		{
			name:    "image prompts not strings",
			mutate:  func(obj map[string]any) { obj["base_image_prompts"] = []any{1.0} },
			wantErr: validation.ErrWrongType,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			v := validation.New(testhelpers.NewLogger(io.Discard))
			_, err := v.DailyContent(context.Background(), dailyContent(t, tt.mutate))
			require.ErrorIs(t, err, validation.ErrSchema)
			require.ErrorIs(t, err, tt.wantErr)
			var schemaErr *validation.SchemaError
			require.ErrorAs(t, err, &schemaErr)
			require.Equal(t, validation.ShapeDailyContent, schemaErr.Shape)
		})
	}
}

func TestThemeSelection(t *testing.T) {
	names := catalog.ArtStyleNames()
	tests := []struct {
		name      string
		body      string
		wantErr   error
		wantTitle string
		wantStyle string
	}{
		{
			name:      "exact match",
			body:      `{"theme_title": "  The Silent Bell  ", "selected_art_style": "Film Noir"}`,
			wantTitle: "The Silent Bell",
			wantStyle: "Film Noir",
		},
		{
			name:    "case variant",
			body:    `{"theme_title": "The Silent Bell", "selected_art_style": "film noir"}`,
			wantErr: validation.ErrInvalidArtStyleSelection,
		},
		{
			name:    "near match",
			body:    `{"theme_title": "The Silent Bell", "selected_art_style": "Film Noir Style"}`,
			wantErr: validation.ErrInvalidArtStyleSelection,
		},
		{
			name:    "trailing space",
			body:    `{"theme_title": "The Silent Bell", "selected_art_style": "Film Noir "}`,
			wantErr: validation.ErrInvalidArtStyleSelection,
		},
		{
			name:    "blank title",
			body:    `{"theme_title": "   ", "selected_art_style": "Film Noir"}`,
			wantErr: validation.ErrInvalidValue,
		},
		{
			name:    "missing style",
			body:    `{"theme_title": "The Silent Bell"}`,
			wantErr: validation.ErrMissingKey,
		},
		{
			name:    "style not a string",
			body:    `{"theme_title": "The Silent Bell", "selected_art_style": ["Film Noir"]}`,
			wantErr: validation.ErrWrongType,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			v := validation.New(testhelpers.NewLogger(io.Discard))
			got, err := v.ThemeSelection(decode(t, tt.body), names)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, validation.ErrSchema)
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.wantTitle, got.ThemeTitle)
			require.Equal(t, tt.wantStyle, got.SelectedArtStyle)
		})
	}
}

func TestScenario(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		forceFinal bool
		wantErr    error
		wantFinal  bool
		wantCount  int
	}{
		{
			name: "continuation",
			body: `{"scenario_text": "A door slams.", "image_prompt": "a door", "choices": ["a", "b", "c"],
				"is_final_round": false, "solution_explanation": null}`,
			wantCount: 3,
		},
		{
			name:      "continuation without explanation key",
			body:      `{"scenario_text": "A door slams.", "choices": ["a", "b", "c"], "is_final_round": false}`,
			wantCount: 3,
		},
		{
			name: "finale",
			body: `{"scenario_text": "It was the cook.", "image_prompt": "a kitchen", "choices": [],
				"is_final_round": true, "solution_explanation": "The flour on the sleeve."}`,
			wantFinal: true,
		},
		{
			name: "finale with leftover choices is tolerated",
			body: `{"scenario_text": "It was the cook.", "choices": ["a"], "is_final_round": true,
				"solution_explanation": "Flour."}`,
			wantFinal: true,
			wantCount: 1,
		},
		{
			name: "explanation before the end",
			body: `{"scenario_text": "x", "choices": ["a", "b", "c"], "is_final_round": false,
				"solution_explanation": "It was the cook."}`,
			wantErr: validation.ErrInconsistentFinalityContract,
		},
		{
			name: "finale shape without the flag on the last round",
			body: `{"scenario_text": "It was the cook.", "choices": [], "is_final_round": false,
				"solution_explanation": "The flour on the sleeve."}`,
			forceFinal: true,
		},
		{
			name:       "ordinary continuation on the last round",
			body:       `{"scenario_text": "x", "choices": ["a", "b", "c"], "is_final_round": false}`,
			forceFinal: true,
			wantCount:  3,
		},
		{
			name:       "missing scenario text on the last round",
			body:       `{"choices": [], "is_final_round": false, "solution_explanation": "y"}`,
			forceFinal: true,
			wantErr:    validation.ErrMissingKey,
		},
		{
			name:    "two choices",
			body:    `{"scenario_text": "x", "choices": ["a", "b"], "is_final_round": false}`,
			wantErr: validation.ErrInconsistentFinalityContract,
		},
		{
			name:    "four choices",
			body:    `{"scenario_text": "x", "choices": ["a", "b", "c", "d"], "is_final_round": false}`,
			wantErr: validation.ErrInconsistentFinalityContract,
		},
		{
			name:    "finality as string",
			body:    `{"scenario_text": "x", "choices": ["a", "b", "c"], "is_final_round": "false"}`,
			wantErr: validation.ErrWrongType,
		},
		{
			name:    "finality missing",
			body:    `{"scenario_text": "x", "choices": ["a", "b", "c"]}`,
			wantErr: validation.ErrMissingKey,
		},
		{
			name:    "choices not a list on the final round",
			body:    `{"scenario_text": "x", "choices": null, "is_final_round": true, "solution_explanation": "y"}`,
			wantErr: validation.ErrWrongType,
		},
		{
			name:    "empty scenario text",
			body:    `{"scenario_text": "", "choices": ["a", "b", "c"], "is_final_round": false}`,
			wantErr: validation.ErrInvalidValue,
		},
		{
			name:    "image prompt not a string",
			body:    `{"scenario_text": "x", "image_prompt": 3, "choices": ["a", "b", "c"], "is_final_round": false}`,
			wantErr: validation.ErrWrongType,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			v := validation.New(testhelpers.NewLogger(io.Discard))
			got, err := v.Scenario(decode(t, tt.body), tt.forceFinal)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, validation.ErrSchema)
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.wantFinal, got.IsFinalRound)
			require.Len(t, got.Choices, tt.wantCount)
			if !got.IsFinalRound && !tt.forceFinal {
				require.Nil(t, got.SolutionExplanation)
			}
		})
	}
}
