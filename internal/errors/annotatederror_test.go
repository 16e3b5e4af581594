package errors_test

import (
	"fmt"
	"log/slog"
	"slices"
	"testing"

	"github.com/myrjola/plottwist/internal/errors"
	"github.com/stretchr/testify/require"
)

func TestAnnotatedError(t *testing.T) {
	err := errors.New("test error", slog.String("id", "123"))
	require.Equal(t, "test error", err.Error())

	// Assert that wrapping sentinel errors work as expected.
	sentinel := errors.NewSentinel("test error")
	require.NotErrorIs(t, err, errors.NewSentinel("test error"))
	wrapped := errors.Wrap(sentinel, "wrapped", slog.String("date", "2024-05-01"))
	require.ErrorIs(t, wrapped, sentinel)
	require.Equal(t, "wrapped: test error", wrapped.Error())

	var annotated *errors.AnnotatedError
	require.True(t, errors.As(err, &annotated))
	group := annotated.LogValue().Group()
	require.Contains(t, group, slog.String("id", "123"))

	// Assert there's a valid source
	sourceIdx := slices.IndexFunc(group, func(attr slog.Attr) bool {
		return attr.Key == "source"
	})
	require.GreaterOrEqual(t, sourceIdx, 0)
	require.Contains(t, group[sourceIdx].Value.String(), "annotatederror_test.go")
}

func TestWrapNil(t *testing.T) {
	require.NoError(t, errors.Wrap(nil, "nothing to wrap"))
}

func TestSlogError(t *testing.T) {
	sentinel := errors.NewSentinel("root cause")
	inner := errors.Wrap(sentinel, "inner", slog.Int("round", 3))
	outer := errors.Wrap(fmt.Errorf("plain: %w", inner), "outer", slog.String("mystery", "42"))

	attr := errors.SlogError(outer)
	require.Equal(t, "error", attr.Key)
	group := attr.Value.Group()
	require.Contains(t, group, slog.String("msg", "outer: plain: inner: root cause"))
	require.Contains(t, group, slog.Int("round", 3))
	require.Contains(t, group, slog.String("mystery", "42"))
}
