// Package imagestore synthesizes placeholder image URLs. No image is generated or uploaded for real.
package imagestore

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"unicode"

	"github.com/google/uuid"
	"github.com/myrjola/plottwist/internal/errors"
)

const (
	// DefaultBaseURL hosts the synthesized placeholder images.
	DefaultBaseURL = "https://mockurl.com"
	// DefaultUploadBaseURL hosts the mock uploads.
	DefaultUploadBaseURL = "https://s3.example.com/mock_images"

	snipLength = 20
)

var ErrEmptyUpload = errors.NewSentinel("nothing to upload")

type Store struct {
	baseURL       string
	uploadBaseURL string
	logger        *slog.Logger
}

// New creates a Store. Empty base URLs fall back to the defaults.
func New(baseURL, uploadBaseURL string, logger *slog.Logger) *Store {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if uploadBaseURL == "" {
		uploadBaseURL = DefaultUploadBaseURL
	}
	return &Store{
		baseURL:       strings.TrimSuffix(baseURL, "/"),
		uploadBaseURL: strings.TrimSuffix(uploadBaseURL, "/"),
		logger:        logger.With("source", "ImageStore"),
	}
}

// SynthesizeURL derives a deterministic placeholder URL from the prompt text.
//
// The file name is {prefix}_{index}_{snip}.png where snip keeps the letters and digits of the first twenty runes of
// the prompt.
func (s *Store) SynthesizeURL(prompt string, prefix string, index int) string {
	return fmt.Sprintf("%s/%s_%d_%s.png", s.baseURL, prefix, index, Snip(prompt))
}

// Snip keeps the letters and digits of the first twenty runes of prompt.
func Snip(prompt string) string {
	var b strings.Builder
	n := 0
	for _, r := range prompt {
		if n == snipLength {
			break
		}
		n++
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Upload pretends to store data and returns a unique URL under prefix.
func (s *Store) Upload(ctx context.Context, data []byte, prefix string) (string, error) {
	if len(data) == 0 {
		return "", errors.Wrap(ErrEmptyUpload, "upload image", slog.String("prefix", prefix))
	}
	url := fmt.Sprintf("%s/%s_%s.png", s.uploadBaseURL, prefix, uuid.NewString())
	s.logger.LogAttrs(ctx, slog.LevelDebug, "mock image upload",
		slog.String("url", url), slog.Int("bytes", len(data)))
	return url, nil
}
