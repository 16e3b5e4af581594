// Package progression is the round and finality state machine of a play session.
//
// The session is the caller-supplied path of completed turns. A path of length k requests round k+1. The round at
// MaxRounds is always the last one, whatever the model reports.
package progression

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/myrjola/plottwist/internal/ai"
	"github.com/myrjola/plottwist/internal/errors"
	"github.com/myrjola/plottwist/internal/logging"
	"github.com/myrjola/plottwist/internal/models"
	"github.com/myrjola/plottwist/internal/prompts"
)

// DefaultMaxRounds caps a session when nothing else is configured.
const DefaultMaxRounds = 5

const (
	continueTemperature = 0.8
	continueMaxTokens   = 1024
	finaleTemperature   = 0.7
	finaleMaxTokens     = 1536

	scenarioImagePrefix = "scenario"
)

var (
	// ErrRoundLimitExceeded means the caller tried to continue a concluded game.
	ErrRoundLimitExceeded = errors.NewSentinel("round limit exceeded")
	// ErrMissingContext means the previous scenario text is required but was not supplied.
	ErrMissingContext = errors.NewSentinel("last presented scenario text is required when the path is not empty")
	// ErrUpstream wraps every gateway or validation failure during a transition.
	ErrUpstream = errors.NewSentinel("scenario generation failed upstream")
)

type Gateway interface {
	Call(ctx context.Context, req ai.Request) (ai.Result, error)
}

type ScenarioValidator interface {
	Scenario(obj map[string]any, forceFinal bool) (models.ScenarioResult, error)
}

type ImageURLs interface {
	SynthesizeURL(prompt string, prefix string, index int) string
}

// Input is one player turn.
type Input struct {
	Mystery models.DailyMystery
	// Path holds the completed turns in round order.
	Path []models.GameplayTurn
	// LastPresentedScenarioText is the scenario the player just answered. Nil means not supplied.
	LastPresentedScenarioText *string
	CurrentChoice             string
}

type Engine struct {
	gateway   Gateway
	validator ScenarioValidator
	images    ImageURLs
	maxRounds int
	logger    *slog.Logger
}

func NewEngine(gateway Gateway, validator ScenarioValidator, images ImageURLs, maxRounds int, logger *slog.Logger) *Engine {
	if maxRounds < 1 {
		maxRounds = DefaultMaxRounds
	}
	return &Engine{
		gateway:   gateway,
		validator: validator,
		images:    images,
		maxRounds: maxRounds,
		logger:    logger.With("source", "ProgressionEngine"),
	}
}

// MaxRounds returns the configured round cap.
func (e *Engine) MaxRounds() int {
	return e.maxRounds
}

// Advance generates the scenario for the next round. It performs at most one model call and never retries.
func (e *Engine) Advance(ctx context.Context, in Input) (models.ScenarioPayload, error) {
	round := models.Round(in.Path)
	ctx = logging.WithAttrs(ctx, slog.Int64("mystery_id", in.Mystery.ID), slog.Int("round", round))

	if round > e.maxRounds {
		return models.ScenarioPayload{}, errors.Wrap(ErrRoundLimitExceeded, "advance scenario",
			slog.Int("round", round), slog.Int("max_rounds", e.maxRounds))
	}

	previous, err := resolveContext(in)
	if err != nil {
		return models.ScenarioPayload{}, err
	}

	turn := prompts.Turn{
		BaseStoryText:      in.Mystery.BaseStoryText,
		ActualSolutionText: in.Mystery.ActualSolutionText,
		PreviousScenario:   previous,
		PlayerChoice:       in.CurrentChoice,
		PromptModifier:     in.Mystery.ArtStyle.PromptModifier,
		History:            in.Path,
		Round:              round,
		MaxRounds:          e.maxRounds,
	}
	req := ai.Request{
		Prompt:            prompts.Continue(turn),
		SystemInstruction: prompts.SystemInstruction,
		Temperature:       continueTemperature,
		MaxOutputTokens:   continueMaxTokens,
		ExpectJSON:        true,
	}
	lastRound := round == e.maxRounds
	if lastRound {
		req.Prompt = prompts.Finale(turn)
		req.Temperature = finaleTemperature
		req.MaxOutputTokens = finaleMaxTokens
	}

	res, err := e.gateway.Call(ctx, req)
	if err != nil {
		return models.ScenarioPayload{}, errors.Wrap(fmt.Errorf("%w: %w", ErrUpstream, err), "call model")
	}
	result, err := e.validator.Scenario(res.JSON, lastRound)
	if err != nil {
		return models.ScenarioPayload{}, errors.Wrap(fmt.Errorf("%w: %w", ErrUpstream, err), "validate scenario")
	}

	payload := e.finalize(ctx, in.Mystery, round, result)
	e.logger.LogAttrs(ctx, slog.LevelInfo, "generated scenario", slog.Bool("final", payload.IsFinalRound))
	return payload, nil
}

// resolveContext picks the scenario text the player is responding to.
func resolveContext(in Input) (string, error) {
	if in.LastPresentedScenarioText != nil {
		return *in.LastPresentedScenarioText, nil
	}
	if len(in.Path) == 0 {
		return in.Mystery.BaseStoryText, nil
	}
	return "", errors.Wrap(ErrMissingContext, "resolve context", slog.Int("path_length", len(in.Path)))
}

// finalize reconciles the model's finality with the round budget and builds the payload.
//
// The round budget wins over the model's flag. A final payload always carries an empty choices list, whatever the
// model returned, and falls back to the stored solution when the model gives no explanation.
func (e *Engine) finalize(
	ctx context.Context,
	mystery models.DailyMystery,
	round int,
	result models.ScenarioResult,
) models.ScenarioPayload {
	final := result.IsFinalRound
	if round == e.maxRounds && !final {
		e.logger.LogAttrs(ctx, slog.LevelWarn, "model did not mark the last round as final, forcing it")
		final = true
	}

	payload := models.ScenarioPayload{
		ScenarioText:          result.ScenarioText,
		ImageURL:              nil,
		Choices:               result.Choices,
		CurrentRoundGenerated: round,
		IsFinalRound:          final,
		SolutionExplanation:   nil,
	}
	if result.ImagePrompt != "" {
		url := e.images.SynthesizeURL(result.ImagePrompt, scenarioImagePrefix, round)
		payload.ImageURL = &url
	}
	if !final {
		return payload
	}

	payload.Choices = []string{}
	if result.SolutionExplanation != nil && strings.TrimSpace(*result.SolutionExplanation) != "" {
		payload.SolutionExplanation = result.SolutionExplanation
		return payload
	}
	e.logger.LogAttrs(ctx, slog.LevelWarn, "final scenario has no solution explanation, using the stored solution")
	solution := mystery.ActualSolutionText
	payload.SolutionExplanation = &solution
	return payload
}
