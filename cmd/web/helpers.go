package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/myrjola/plottwist/internal/ai"
	"github.com/myrjola/plottwist/internal/errors"
	"github.com/myrjola/plottwist/internal/game"
	"github.com/myrjola/plottwist/internal/generation"
	"github.com/myrjola/plottwist/internal/progression"
	"github.com/myrjola/plottwist/internal/validation"
)

const maxBodyBytes = 1 << 20

var ErrInvalidBody = errors.NewSentinel("invalid request body")

type errorResponse struct {
	Detail string `json:"detail"`
}

func (app *application) writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		app.serverError(w, r, errors.Wrap(err, "marshal response"))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

// decodeJSON reads the request body into dst and validates it with the struct's validate tags.
func (app *application) decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidBody, err)
	}
	if err := app.validate.Struct(dst); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidBody, err)
	}
	return nil
}

func (app *application) serverError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		method = r.Method
		uri    = r.URL.RequestURI()
	)

	app.logger.LogAttrs(r.Context(), slog.LevelError, "server error",
		slog.String("method", method), slog.String("uri", uri), errors.SlogError(err))
	app.writeJSON(w, r, http.StatusInternalServerError,
		errorResponse{Detail: http.StatusText(http.StatusInternalServerError)})
}

func (app *application) clientError(w http.ResponseWriter, r *http.Request, status int, detail string, err error) {
	app.logger.LogAttrs(r.Context(), slog.LevelDebug, http.StatusText(status), errors.SlogError(err))
	app.writeJSON(w, r, status, errorResponse{Detail: detail})
}

// upstreamError reports a failure of the generative model without leaking its output to the caller.
func (app *application) upstreamError(w http.ResponseWriter, r *http.Request, status int, detail string, err error) {
	app.logger.LogAttrs(r.Context(), slog.LevelWarn, "upstream failure",
		slog.Int("status", status), errors.SlogError(err))
	app.writeJSON(w, r, status, errorResponse{Detail: detail})
}

// gameError maps the error taxonomy of the game operations to HTTP responses.
func (app *application) gameError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrInvalidBody):
		app.clientError(w, r, http.StatusBadRequest, err.Error(), err)
	case errors.Is(err, progression.ErrRoundLimitExceeded):
		app.clientError(w, r, http.StatusBadRequest,
			"Round limit exceeded: the mystery has already reached its final round.", err)
	case errors.Is(err, progression.ErrMissingContext):
		app.clientError(w, r, http.StatusBadRequest,
			"Missing context: last_presented_scenario_text is required when path_so_far is not empty.", err)
	case errors.Is(err, game.ErrMysteryNotFound):
		app.clientError(w, r, http.StatusNotFound, "Daily mystery not found.", err)
	case errors.Is(err, game.ErrMysteryExists):
		app.clientError(w, r, http.StatusConflict,
			"A mystery already exists for this date. Set force_regenerate to replace it.", err)
	case errors.Is(err, generation.ErrUnknownArtStyle):
		app.serverError(w, r, err)
	case errors.Is(err, progression.ErrUpstream),
		errors.Is(err, ai.ErrGatewayUnavailable),
		errors.Is(err, ai.ErrContentBlocked):
		app.upstreamError(w, r, http.StatusServiceUnavailable,
			"The story service is currently unavailable. Please try again later.", err)
	case errors.Is(err, ai.ErrEmptyResponse),
		errors.Is(err, ai.ErrMalformedJSON),
		errors.Is(err, ai.ErrJSONParse),
		errors.Is(err, validation.ErrSchema):
		app.upstreamError(w, r, http.StatusBadGateway,
			"The story service returned an unusable response. Please try again later.", err)
	default:
		app.serverError(w, r, err)
	}
}
