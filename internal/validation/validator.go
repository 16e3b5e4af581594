// Package validation turns parsed model output into results that are safe to persist and serve.
//
// Field presence and types are never trusted. Dossiers are flavor content and tolerate bad items; every other rule
// is a hard failure reported as a *SchemaError.
package validation

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/myrjola/plottwist/internal/errors"
	"github.com/myrjola/plottwist/internal/models"
)

const (
	ShapeDailyContent = "daily_content"
	ShapeTheme        = "theme_selection"
	ShapeScenario     = "scenario"

	InitialChoicesCount = 10
	MinDossiers         = 3
	MaxDossiers         = 5
	MinClues            = 2
	MaxClues            = 3
	ContinueChoiceCount = 3
)

// DailyContent is the validated story content of a new mystery.
type DailyContent struct {
	BaseStoryText      string
	ActualSolutionText string
	InitialChoicesPool []string
	CharacterDossiers  []models.CharacterDossier
	CriticalPathClues  []string
	BaseImagePrompts   []string
}

// ThemeSelection is the validated theme and art style pick.
type ThemeSelection struct {
	ThemeTitle       string
	SelectedArtStyle string
}

// dossierItem is the wire shape of one character dossier.
type dossierItem struct {
	CharacterName             string  `validate:"required"`
	Description               *string `validate:"required"`
	PotentialSecretsOrMotives string
}

type Validator struct {
	validate *validator.Validate
	logger   *slog.Logger
}

func New(logger *slog.Logger) *Validator {
	return &Validator{
		validate: validator.New(validator.WithRequiredStructEnabled()),
		logger:   logger.With("source", "Validator"),
	}
}

// DailyContent validates the story content response.
func (v *Validator) DailyContent(ctx context.Context, obj map[string]any) (DailyContent, error) {
	var (
		out DailyContent
		err error
	)
	// Presence first so that a response missing several keys reports the first one in a stable order.
	for _, key := range []string{
		"base_story_text", "actual_solution_text", "initial_choices_pool",
		"character_dossiers", "critical_path_clues", "base_image_prompts",
	} {
		if _, err = requiredKey(obj, ShapeDailyContent, key); err != nil {
			return DailyContent{}, err
		}
	}

	if out.BaseStoryText, err = nonEmptyString(obj, ShapeDailyContent, "base_story_text"); err != nil {
		return DailyContent{}, err
	}
	if out.ActualSolutionText, err = nonEmptyString(obj, ShapeDailyContent, "actual_solution_text"); err != nil {
		return DailyContent{}, err
	}
	if out.InitialChoicesPool, err = initialChoices(obj); err != nil {
		return DailyContent{}, err
	}
	if out.CriticalPathClues, err = clues(obj); err != nil {
		return DailyContent{}, err
	}
	if out.BaseImagePrompts, err = stringList(obj, ShapeDailyContent, "base_image_prompts"); err != nil {
		return DailyContent{}, err
	}
	if out.CharacterDossiers, err = v.dossiers(ctx, obj); err != nil {
		return DailyContent{}, err
	}
	return out, nil
}

func initialChoices(obj map[string]any) ([]string, error) {
	const key = "initial_choices_pool"
	pool, err := stringList(obj, ShapeDailyContent, key)
	if err != nil {
		return nil, err
	}
	if len(pool) != InitialChoicesCount {
		return nil, schemaError(ShapeDailyContent, key, ErrInvalidValue,
			fmt.Sprintf("want exactly %d choices, got %d", InitialChoicesCount, len(pool)))
	}
	if pool, err = nonEmptyStrings(ShapeDailyContent, key, pool); err != nil {
		return nil, err
	}
	seen := make(map[string]struct{}, len(pool))
	for _, choice := range pool {
		if _, dup := seen[choice]; dup {
			return nil, schemaError(ShapeDailyContent, key, ErrInvalidValue, fmt.Sprintf("duplicate choice %q", choice))
		}
		seen[choice] = struct{}{}
	}
	return pool, nil
}

func clues(obj map[string]any) ([]string, error) {
	const key = "critical_path_clues"
	list, err := stringList(obj, ShapeDailyContent, key)
	if err != nil {
		return nil, err
	}
	if len(list) < MinClues || len(list) > MaxClues {
		return nil, schemaError(ShapeDailyContent, key, ErrInvalidValue,
			fmt.Sprintf("want %d to %d clues, got %d", MinClues, MaxClues, len(list)))
	}
	return nonEmptyStrings(ShapeDailyContent, key, list)
}

// dossiers validates each item independently and drops the invalid ones.
func (v *Validator) dossiers(ctx context.Context, obj map[string]any) ([]models.CharacterDossier, error) {
	const key = "character_dossiers"
	items, ok := obj[key].([]any)
	if !ok {
		return nil, schemaError(ShapeDailyContent, key, ErrWrongType, fmt.Sprintf("want list, got %T", obj[key]))
	}

	out := make([]models.CharacterDossier, 0, len(items))
	for i, raw := range items {
		item, err := v.dossier(raw)
		if err != nil {
			v.logger.LogAttrs(ctx, slog.LevelWarn, "dropping invalid character dossier",
				slog.Int("index", i), errors.SlogError(err))
			continue
		}
		out = append(out, item)
	}

	if len(out) < MinDossiers {
		return nil, schemaError(ShapeDailyContent, key, ErrTooFewDossiers,
			fmt.Sprintf("want at least %d valid dossiers, got %d of %d", MinDossiers, len(out), len(items)))
	}
	if len(out) > MaxDossiers {
		v.logger.LogAttrs(ctx, slog.LevelWarn, "truncating character dossiers",
			slog.Int("count", len(out)), slog.Int("max", MaxDossiers))
		out = out[:MaxDossiers]
	}
	return out, nil
}

func (v *Validator) dossier(raw any) (models.CharacterDossier, error) {
	fields, ok := raw.(map[string]any)
	if !ok {
		return models.CharacterDossier{}, errors.New("dossier is not an object", slog.String("type", fmt.Sprintf("%T", raw)))
	}
	var item dossierItem
	if name, isString := fields["character_name"].(string); isString {
		item.CharacterName = strings.TrimSpace(name)
	}
	if desc, isString := fields["description"].(string); isString {
		item.Description = &desc
	}
	if secrets, isString := fields["potential_secrets_or_motives"].(string); isString {
		item.PotentialSecretsOrMotives = secrets
	}
	if err := v.validate.Struct(item); err != nil {
		return models.CharacterDossier{}, errors.Wrap(err, "validate dossier")
	}
	return models.CharacterDossier{
		CharacterName:             item.CharacterName,
		Description:               *item.Description,
		PotentialSecretsOrMotives: item.PotentialSecretsOrMotives,
	}, nil
}

// ThemeSelection validates the theme and art style response against the art style catalog names.
//
// The art style must match a catalog name exactly. Case variants and near matches are rejected.
func (v *Validator) ThemeSelection(obj map[string]any, catalogNames []string) (ThemeSelection, error) {
	var (
		out ThemeSelection
		err error
	)
	if _, err = requiredKey(obj, ShapeTheme, "theme_title"); err != nil {
		return ThemeSelection{}, err
	}
	if _, err = requiredKey(obj, ShapeTheme, "selected_art_style"); err != nil {
		return ThemeSelection{}, err
	}
	if out.ThemeTitle, err = nonEmptyString(obj, ShapeTheme, "theme_title"); err != nil {
		return ThemeSelection{}, err
	}
	style, ok := obj["selected_art_style"].(string)
	if !ok {
		return ThemeSelection{}, schemaError(ShapeTheme, "selected_art_style", ErrWrongType,
			fmt.Sprintf("want string, got %T", obj["selected_art_style"]))
	}
	for _, name := range catalogNames {
		if style == name {
			out.SelectedArtStyle = style
			return out, nil
		}
	}
	return ThemeSelection{}, schemaError(ShapeTheme, "selected_art_style", ErrInvalidArtStyleSelection,
		fmt.Sprintf("%q", style))
}

// Scenario validates a continuation or finale response.
//
// A non-final scenario must have a null or absent solution explanation and exactly three choices. The shape of a
// final scenario is not enforced beyond the field types. forceFinal marks the last round of the budget, where the
// response is treated as final whatever is_final_round says.
func (v *Validator) Scenario(obj map[string]any, forceFinal bool) (models.ScenarioResult, error) {
	var (
		out models.ScenarioResult
		err error
	)
	rawFinal, err := requiredKey(obj, ShapeScenario, "is_final_round")
	if err != nil {
		return models.ScenarioResult{}, err
	}
	final, ok := rawFinal.(bool)
	if !ok {
		return models.ScenarioResult{}, schemaError(ShapeScenario, "is_final_round", ErrWrongType,
			fmt.Sprintf("want boolean, got %T", rawFinal))
	}
	out.IsFinalRound = final

	if out.Choices, err = stringList(obj, ShapeScenario, "choices"); err != nil {
		return models.ScenarioResult{}, err
	}
	if out.ScenarioText, err = nonEmptyString(obj, ShapeScenario, "scenario_text"); err != nil {
		return models.ScenarioResult{}, err
	}
	imagePrompt, err := optionalString(obj, ShapeScenario, "image_prompt")
	if err != nil {
		return models.ScenarioResult{}, err
	}
	if imagePrompt != nil {
		out.ImagePrompt = strings.TrimSpace(*imagePrompt)
	}
	if out.SolutionExplanation, err = optionalString(obj, ShapeScenario, "solution_explanation"); err != nil {
		return models.ScenarioResult{}, err
	}

	if !final && !forceFinal {
		if out.SolutionExplanation != nil {
			return models.ScenarioResult{}, schemaError(ShapeScenario, "solution_explanation",
				ErrInconsistentFinalityContract, "must be null when is_final_round is false")
		}
		if len(out.Choices) != ContinueChoiceCount {
			return models.ScenarioResult{}, schemaError(ShapeScenario, "choices", ErrInconsistentFinalityContract,
				fmt.Sprintf("want exactly %d choices when is_final_round is false, got %d",
					ContinueChoiceCount, len(out.Choices)))
		}
	}
	return out, nil
}
