// Package ai is the only boundary between free text produced by a generative model and structured data.
//
// The Gateway sends single-turn requests through a Backend, recovers the response text and optionally the embedded
// JSON object, and classifies every failure into one of the package's sentinel errors.
package ai

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/myrjola/plottwist/internal/errors"
)

// DefaultTimeout bounds a single model call when no timeout is configured.
const DefaultTimeout = 60 * time.Second

// Request is a single-turn generation request.
type Request struct {
	Prompt            string
	SystemInstruction string
	Temperature       float32
	MaxOutputTokens   int
	ExpectJSON        bool
}

// Completion is the backend-neutral shape of a model response.
//
// Backends fill Text when the upstream exposes a direct text field and Parts with the text of each content part.
// BlockReason is non-empty when the upstream refused the prompt.
type Completion struct {
	Text        string
	Parts       []string
	BlockReason string
}

// Backend sends one request to a concrete model provider. Implementations must be safe for concurrent use.
type Backend interface {
	Name() string
	Generate(ctx context.Context, req Request) (Completion, error)
}

// Result is the recovered response. JSON is set only for requests with ExpectJSON.
type Result struct {
	Text string
	JSON map[string]any
}

// Gateway wraps a Backend with response extraction, error classification, a timeout and metrics.
type Gateway struct {
	backend Backend
	timeout time.Duration
	metrics *Metrics
	logger  *slog.Logger
}

// NewGateway creates a Gateway. A nil backend makes every call fail with ErrGatewayUnavailable, which is how a
// process without model credentials behaves.
func NewGateway(backend Backend, timeout time.Duration, metrics *Metrics, logger *slog.Logger) *Gateway {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Gateway{
		backend: backend,
		timeout: timeout,
		metrics: metrics,
		logger:  logger.With("source", "Gateway"),
	}
}

// Available reports whether a backend is configured.
func (g *Gateway) Available() bool {
	return g.backend != nil
}

// Call performs one model request. No retries are attempted.
func (g *Gateway) Call(ctx context.Context, req Request) (Result, error) {
	if g.backend == nil {
		g.metrics.observe("none", outcomeUnavailable, 0)
		return Result{}, errors.Wrap(ErrGatewayUnavailable, "no backend configured")
	}

	name := g.backend.Name()
	start := time.Now()
	res, outcome, err := g.call(ctx, req)
	elapsed := time.Since(start)
	g.metrics.observe(name, outcome, elapsed)

	attrs := []slog.Attr{
		slog.String("backend", name),
		slog.String("outcome", outcome),
		slog.Duration("elapsed", elapsed),
		slog.Bool("expect_json", req.ExpectJSON),
	}
	if err != nil {
		attrs = append(attrs, errors.SlogError(err))
		g.logger.LogAttrs(ctx, slog.LevelWarn, "model call failed", attrs...)
		return Result{}, err
	}
	g.logger.LogAttrs(ctx, slog.LevelDebug, "model call succeeded", attrs...)
	return res, nil
}

func (g *Gateway) call(ctx context.Context, req Request) (Result, string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	completion, err := g.backend.Generate(ctx, req)
	if err != nil {
		if errors.Is(err, ErrContentBlocked) {
			return Result{}, outcomeBlocked, errors.Wrap(err, "generate content")
		}
		return Result{}, outcomeUnavailable, errors.Wrap(fmt.Errorf("%w: %w", ErrGatewayUnavailable, err),
			"generate content", slog.Duration("timeout", g.timeout))
	}
	if completion.BlockReason != "" {
		return Result{}, outcomeBlocked, errors.Wrap(ErrContentBlocked, "generate content",
			slog.String("block_reason", completion.BlockReason))
	}

	text, err := extractText(completion)
	if err != nil {
		return Result{}, outcomeEmpty, err
	}
	if !req.ExpectJSON {
		return Result{Text: text, JSON: nil}, outcomeSuccess, nil
	}

	obj, err := ParseJSON(text)
	switch {
	case errors.Is(err, ErrMalformedJSON):
		return Result{}, outcomeMalformedJSON, err
	case err != nil:
		return Result{}, outcomeJSONParse, errors.Wrap(err, "parse JSON")
	}
	return Result{Text: text, JSON: obj}, outcomeSuccess, nil
}
