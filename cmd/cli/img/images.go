// Package img holds the CLI commands for mystery images.
package img

import (
	"bytes"
	"context"
	"fmt"
	"image/png"
	"log/slog"
	"os"

	"github.com/myrjola/plottwist/internal/errors"
	"github.com/myrjola/plottwist/internal/imagestore"
	"github.com/myrjola/plottwist/internal/logging"
	"github.com/myrjola/plottwist/internal/setup"
	"github.com/spf13/cobra"
)

var Group = &cobra.Group{
	ID:    "img",
	Title: "Image operations",
}

func init() {
	Upload.Flags().String("prefix", "base_image", "object name prefix")
}

var Upload = &cobra.Command{
	Use:     "upload [path]",
	GroupID: "img",
	Short:   "Upload image",
	Long:    `Uploads a PNG image to the configured image store and prints its URL`,
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		prefix, err := cmd.Flags().GetString("prefix")
		if err != nil {
			return errors.Wrap(err, "read prefix flag")
		}
		cfg, err := setup.LoadConfig(os.LookupEnv)
		if err != nil {
			return errors.Wrap(err, "load config")
		}
		logger := logging.NewLogger(cmd.ErrOrStderr(), slog.LevelDebug)
		store := imagestore.New(cfg.ImageBaseURL, cfg.ImageUploadBaseURL, logger)

		url, err := upload(cmd.Context(), store, args[0], prefix)
		if err != nil {
			return err
		}
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), url)
		return nil
	},
}

// upload checks that the file is a PNG before handing it to the store.
func upload(ctx context.Context, store *imagestore.Store, path string, prefix string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", errors.Wrap(err, "read image", slog.String("path", path))
	}
	if _, err = png.DecodeConfig(bytes.NewReader(data)); err != nil {
		return "", errors.Wrap(err, "decode PNG", slog.String("path", path))
	}
	url, err := store.Upload(ctx, data, prefix)
	if err != nil {
		return "", errors.Wrap(err, "upload image")
	}
	return url, nil
}
