// Package generation composes prompts, the model gateway and validation into a complete new daily mystery.
package generation

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/myrjola/plottwist/internal/ai"
	"github.com/myrjola/plottwist/internal/errors"
	"github.com/myrjola/plottwist/internal/logging"
	"github.com/myrjola/plottwist/internal/models"
	"github.com/myrjola/plottwist/internal/prompts"
	"github.com/myrjola/plottwist/internal/random"
	"github.com/myrjola/plottwist/internal/repositories"
	"github.com/myrjola/plottwist/internal/validation"
)

const (
	themeTemperature   = 0.9
	themeMaxTokens     = 256
	contentTemperature = 0.8
	contentMaxTokens   = 4096

	baseImagePrefix = "base_image"
)

// ErrUnknownArtStyle means the model picked a catalog art style that is missing from storage. The catalog and the
// database seed are out of sync and retrying will not help.
var ErrUnknownArtStyle = errors.NewSentinel("selected art style is not stored")

type Gateway interface {
	Call(ctx context.Context, req ai.Request) (ai.Result, error)
}

type ContentValidator interface {
	ThemeSelection(obj map[string]any, catalogNames []string) (validation.ThemeSelection, error)
	DailyContent(ctx context.Context, obj map[string]any) (validation.DailyContent, error)
}

type ArtStyleStore interface {
	FindByName(ctx context.Context, name string) (models.ArtStyle, error)
	List(ctx context.Context) ([]models.ArtStyle, error)
}

type ImageURLs interface {
	SynthesizeURL(prompt string, prefix string, index int) string
}

// Orchestrator produces complete, unsaved mysteries. It never writes to storage.
type Orchestrator struct {
	gateway       Gateway
	validator     ContentValidator
	styles        ArtStyleStore
	images        ImageURLs
	archetypes    []string
	artStyleNames []string
	logger        *slog.Logger
}

func NewOrchestrator(
	gateway Gateway,
	validator ContentValidator,
	styles ArtStyleStore,
	images ImageURLs,
	archetypes []string,
	artStyleNames []string,
	logger *slog.Logger,
) *Orchestrator {
	return &Orchestrator{
		gateway:       gateway,
		validator:     validator,
		styles:        styles,
		images:        images,
		archetypes:    archetypes,
		artStyleNames: artStyleNames,
		logger:        logger.With("source", "Orchestrator"),
	}
}

// GenerateNewMystery generates the mystery for forDate. Any failing step fails the whole operation.
func (o *Orchestrator) GenerateNewMystery(ctx context.Context, forDate time.Time) (models.DailyMystery, error) {
	ctx = logging.WithAttrs(ctx, slog.String("date", forDate.Format(models.DateLayout)))

	archetype, err := random.Pick(o.archetypes)
	if err != nil {
		return models.DailyMystery{}, errors.Wrap(err, "pick archetype")
	}
	o.logger.LogAttrs(ctx, slog.LevelInfo, "generating mystery", slog.String("archetype", archetype))

	theme, err := o.selectTheme(ctx, models.MysteryArchetype(archetype))
	if err != nil {
		return models.DailyMystery{}, err
	}

	style, err := o.resolveArtStyle(ctx, theme.SelectedArtStyle)
	if err != nil {
		return models.DailyMystery{}, err
	}

	res, err := o.gateway.Call(ctx, ai.Request{
		Prompt:            prompts.DailyContent(theme.ThemeTitle, style.PromptModifier),
		SystemInstruction: prompts.SystemInstruction,
		Temperature:       contentTemperature,
		MaxOutputTokens:   contentMaxTokens,
		ExpectJSON:        true,
	})
	if err != nil {
		return models.DailyMystery{}, errors.Wrap(err, "generate story content")
	}
	content, err := o.validator.DailyContent(ctx, res.JSON)
	if err != nil {
		return models.DailyMystery{}, errors.Wrap(err, "validate story content")
	}

	mystery := models.DailyMystery{
		ID:                 0,
		Date:               forDate,
		Theme:              theme.ThemeTitle,
		BaseStoryText:      content.BaseStoryText,
		ActualSolutionText: content.ActualSolutionText,
		CharacterDossiers:  content.CharacterDossiers,
		CriticalPathClues:  content.CriticalPathClues,
		ArtStyle:           style,
		BaseImageURLs:      o.baseImageURLs(content.BaseImagePrompts),
		InitialChoicesPool: content.InitialChoicesPool,
		CreatedAt:          time.Time{},
	}
	o.logger.LogAttrs(ctx, slog.LevelInfo, "generated mystery",
		slog.String("theme", mystery.Theme), slog.String("art_style", style.Name))
	return mystery, nil
}

func (o *Orchestrator) selectTheme(ctx context.Context, archetype models.MysteryArchetype) (validation.ThemeSelection, error) {
	res, err := o.gateway.Call(ctx, ai.Request{
		Prompt:            prompts.ThemeAndStyle(archetype, o.artStyleNames),
		SystemInstruction: prompts.SystemInstruction,
		Temperature:       themeTemperature,
		MaxOutputTokens:   themeMaxTokens,
		ExpectJSON:        true,
	})
	if err != nil {
		return validation.ThemeSelection{}, errors.Wrap(err, "select theme and art style")
	}
	theme, err := o.validator.ThemeSelection(res.JSON, o.artStyleNames)
	if err != nil {
		return validation.ThemeSelection{}, errors.Wrap(err, "validate theme and art style")
	}
	return theme, nil
}

func (o *Orchestrator) resolveArtStyle(ctx context.Context, name string) (models.ArtStyle, error) {
	style, err := o.styles.FindByName(ctx, name)
	if err == nil {
		return style, nil
	}
	if !errors.Is(err, repositories.ErrNotFound) {
		return models.ArtStyle{}, errors.Wrap(err, "resolve art style", slog.String("name", name))
	}

	stored := []string{}
	if all, listErr := o.styles.List(ctx); listErr == nil {
		for _, s := range all {
			stored = append(stored, s.Name)
		}
	}
	err = errors.Wrap(ErrUnknownArtStyle, "resolve art style", slog.String("name", name))
	o.logger.LogAttrs(ctx, slog.LevelError, "art style catalog and storage are out of sync",
		slog.String("selected", name),
		slog.Any("catalog", o.artStyleNames),
		slog.Any("stored", stored),
		errors.SlogError(err))
	return models.ArtStyle{}, err
}

// baseImageURLs derives one placeholder URL per non-empty prompt. The index is the position in the model output.
func (o *Orchestrator) baseImageURLs(imagePrompts []string) []string {
	urls := make([]string, 0, len(imagePrompts))
	for i, p := range imagePrompts {
		if strings.TrimSpace(p) == "" {
			continue
		}
		urls = append(urls, o.images.SynthesizeURL(p, baseImagePrefix, i))
	}
	return urls
}
