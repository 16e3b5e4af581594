package random

import (
	"crypto/rand"
	"log/slog"
	"math/big"

	"github.com/myrjola/plottwist/internal/errors"
)

var allowedLetters = []rune("abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ")

// ErrSampleTooLarge is returned by Sample when more items are requested than available.
var ErrSampleTooLarge = errors.NewSentinel("sample larger than population")

// Letters returns n random ASCII letters.
func Letters(n uint) (string, error) {
	letters := make([]rune, n)
	for i := range letters {
		idx, err := Intn(len(allowedLetters))
		if err != nil {
			return "", err
		}
		letters[i] = allowedLetters[idx]
	}
	return string(letters), nil
}

// Intn returns a uniform random integer in [0, n). n must be positive.
func Intn(n int) (int, error) {
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		return 0, errors.Wrap(err, "read random int", slog.Int("n", n))
	}
	return int(v.Int64()), nil
}

// Pick returns one element of items chosen uniformly at random.
func Pick[T any](items []T) (T, error) {
	var zero T
	if len(items) == 0 {
		return zero, errors.Wrap(ErrSampleTooLarge, "pick from empty slice")
	}
	idx, err := Intn(len(items))
	if err != nil {
		return zero, err
	}
	return items[idx], nil
}

// Sample returns k distinct elements of items in random order. items is not modified.
func Sample[T any](items []T, k int) ([]T, error) {
	if k < 0 || k > len(items) {
		return nil, errors.Wrap(ErrSampleTooLarge, "sample",
			slog.Int("k", k), slog.Int("population", len(items)))
	}
	pool := make([]T, len(items))
	copy(pool, items)
	// Partial Fisher-Yates: the first k positions end up holding the sample.
	for i := range k {
		j, err := Intn(len(pool) - i)
		if err != nil {
			return nil, err
		}
		j += i
		pool[i], pool[j] = pool[j], pool[i]
	}
	return pool[:k], nil
}
