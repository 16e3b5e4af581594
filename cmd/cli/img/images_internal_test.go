package img

import (
	"context"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/myrjola/plottwist/internal/imagestore"
	"github.com/myrjola/plottwist/internal/testhelpers"
	"github.com/stretchr/testify/require"
)

func Test_upload(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	store := imagestore.New("", "", testhelpers.NewLogger(io.Discard))

	pngPath := filepath.Join(dir, "scene.png")
	f, err := os.Create(pngPath)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, image.NewRGBA(image.Rect(0, 0, 2, 2))))
	require.NoError(t, f.Close())

	url, err := upload(context.Background(), store, pngPath, "scenario")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(url, imagestore.DefaultUploadBaseURL+"/scenario_"), url)
	require.True(t, strings.HasSuffix(url, ".png"), url)

	textPath := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(textPath, []byte("not an image"), 0o600))
	_, err = upload(context.Background(), store, textPath, "scenario")
	require.Error(t, err)

	_, err = upload(context.Background(), store, filepath.Join(dir, "missing.png"), "scenario")
	require.ErrorIs(t, err, os.ErrNotExist)
}
