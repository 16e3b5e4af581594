package catalog_test

import (
	"testing"

	"github.com/myrjola/plottwist/internal/catalog"
	"github.com/stretchr/testify/require"
)

func TestCatalog(t *testing.T) {
	require.Len(t, catalog.Archetypes(), 9)
	require.Len(t, catalog.ArtStyles(), 14)

	names := catalog.ArtStyleNames()
	seen := map[string]bool{}
	for _, n := range names {
		require.NotEmpty(t, n)
		require.False(t, seen[n], "duplicate art style %q", n)
		seen[n] = true
	}

	// Callers get copies.
	styles := catalog.ArtStyles()
	styles[0].Name = "changed"
	require.Equal(t, "Film Noir", catalog.ArtStyles()[0].Name)
}

func TestIsArtStyle(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{name: "Film Noir", want: true},
		{name: "Cyberpunk Dystopian", want: true},
		{name: "film noir", want: false},
		{name: "Film Noir ", want: false},
		{name: "Film-Noir", want: false},
		{name: "", want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tt.want, catalog.IsArtStyle(tt.name))
		})
	}
}
