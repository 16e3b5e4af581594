package ai

import (
	"fmt"

	"github.com/myrjola/plottwist/internal/errors"
)

var (
	// ErrGatewayUnavailable means the model could not be reached: no credentials, network failure or timeout.
	ErrGatewayUnavailable = errors.NewSentinel("generative model unavailable")
	// ErrContentBlocked means the upstream refused the prompt on safety grounds.
	ErrContentBlocked = errors.NewSentinel("content blocked by generative model")
	// ErrEmptyResponse means no text could be recovered from the response.
	ErrEmptyResponse = errors.NewSentinel("empty response from generative model")
	// ErrMalformedJSON means the response text is neither fenced nor a bare JSON object.
	ErrMalformedJSON = errors.NewSentinel("malformed JSON in model response")
	// ErrJSONParse is matched by every *JSONParseError.
	ErrJSONParse = errors.NewSentinel("could not parse JSON in model response")
)

// JSONParseError carries the raw model text that failed to parse.
type JSONParseError struct {
	Raw string
	Err error
}

func (e *JSONParseError) Error() string {
	return fmt.Sprintf("%s: %v", ErrJSONParse.Error(), e.Err)
}

func (e *JSONParseError) Unwrap() error {
	return e.Err
}

func (e *JSONParseError) Is(target error) bool {
	return target == ErrJSONParse //nolint:errorlint // sentinel identity
}
