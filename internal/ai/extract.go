package ai

import (
	"encoding/json"
	"log/slog"
	"regexp"
	"strings"

	"github.com/myrjola/plottwist/internal/errors"
)

var (
	// wrappingFence matches a response that is one fenced block from start to end.
	wrappingFence = regexp.MustCompile("(?s)^```(?:json|JSON)?[ \t]*\r?\n?(.*)```$")
	fencedBlock   = regexp.MustCompile("(?s)```(?:json|JSON)?[ \t]*\r?\n?(.*?)```")
)

// extractText picks the direct text field and falls back to the concatenated content parts.
func extractText(c Completion) (string, error) {
	if strings.TrimSpace(c.Text) != "" {
		return c.Text, nil
	}
	text := strings.Join(c.Parts, "")
	if strings.TrimSpace(text) == "" {
		return "", errors.Wrap(ErrEmptyResponse, "extract text", slog.Int("parts", len(c.Parts)))
	}
	return text, nil
}

// ExtractJSON returns the JSON object text embedded in a model response.
//
// A fence wrapping the whole response is stripped first, then a bare object delimited by braces is taken as is.
// Only then is a fenced block surrounded by prose searched for, so backticks inside JSON strings stay intact.
func ExtractJSON(text string) (string, error) {
	trimmed := strings.TrimSpace(text)
	if m := wrappingFence.FindStringSubmatch(trimmed); m != nil {
		return strings.TrimSpace(m[1]), nil
	}
	if strings.HasPrefix(trimmed, "{") && strings.HasSuffix(trimmed, "}") {
		return trimmed, nil
	}
	if m := fencedBlock.FindStringSubmatch(trimmed); m != nil {
		return strings.TrimSpace(m[1]), nil
	}
	return "", errors.Wrap(ErrMalformedJSON, "locate JSON object", slog.String("text", snippet(trimmed)))
}

// ParseJSON extracts and decodes the JSON object in text.
func ParseJSON(text string) (map[string]any, error) {
	raw, err := ExtractJSON(text)
	if err != nil {
		return nil, err
	}
	var obj map[string]any
	if err = json.Unmarshal([]byte(raw), &obj); err != nil {
		return nil, &JSONParseError{Raw: text, Err: err}
	}
	if obj == nil {
		return nil, &JSONParseError{Raw: text, Err: errors.New("JSON value is null")}
	}
	return obj, nil
}

func snippet(s string) string {
	const maxLen = 120
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
