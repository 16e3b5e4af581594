// Package mystery holds the CLI commands that operate on daily mysteries and art styles.
package mystery

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"text/tabwriter"
	"time"

	"github.com/myrjola/plottwist/internal/errors"
	"github.com/myrjola/plottwist/internal/logging"
	"github.com/myrjola/plottwist/internal/models"
	"github.com/myrjola/plottwist/internal/setup"
	"github.com/spf13/cobra"
)

var Group = &cobra.Group{
	ID:    "mystery",
	Title: "Mystery operations",
}

func init() {
	Generate.Flags().String("date", "", "calendar day as YYYY-MM-DD, defaults to today")
	Generate.Flags().Bool("force", false, "replace an existing mystery for the date")
	Delete.Flags().String("date", "", "calendar day as YYYY-MM-DD")
	_ = Delete.MarkFlagRequired("date")
	Styles.AddCommand(listStyles)
}

// withApp wires the application from the environment, runs fn and releases the database.
func withApp(cmd *cobra.Command, fn func(ctx context.Context, app *setup.App) error) error {
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()
	logger := logging.NewLogger(cmd.ErrOrStderr(), slog.LevelInfo)

	cfg, err := setup.LoadConfig(os.LookupEnv)
	if err != nil {
		return errors.Wrap(err, "load config")
	}
	app, err := setup.New(ctx, cfg, logger)
	if err != nil {
		return errors.Wrap(err, "set up application")
	}
	return errors.Join(fn(ctx, app), app.Close())
}

func parseDate(s string, now time.Time) (time.Time, error) {
	if s == "" {
		return now, nil
	}
	d, err := time.Parse(models.DateLayout, s)
	if err != nil {
		return time.Time{}, errors.Wrap(err, "parse date", slog.String("date", s))
	}
	return d, nil
}

var Generate = &cobra.Command{
	Use:     "generate",
	GroupID: "mystery",
	Short:   "Generate a daily mystery",
	Long:    `Generates and stores the daily mystery for a date with the configured generative model.`,
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		dateFlag, err := cmd.Flags().GetString("date")
		if err != nil {
			return errors.Wrap(err, "read date flag")
		}
		force, err := cmd.Flags().GetBool("force")
		if err != nil {
			return errors.Wrap(err, "read force flag")
		}
		date, err := parseDate(dateFlag, time.Now())
		if err != nil {
			return err
		}
		return withApp(cmd, func(ctx context.Context, app *setup.App) error {
			m, genErr := app.Game.GenerateDailyMystery(ctx, date, force)
			if genErr != nil {
				return errors.Wrap(genErr, "generate daily mystery")
			}
			printMystery(cmd.OutOrStdout(), m)
			return nil
		})
	},
}

var Delete = &cobra.Command{
	Use:     "delete",
	GroupID: "mystery",
	Short:   "Delete the daily mystery of a date",
	Long:    `Deletes the stored mystery. A running server generates a new one for the date once its mystery
cache entry expires, see PLOTTWIST_MYSTERY_CACHE_TTL.`,
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		dateFlag, err := cmd.Flags().GetString("date")
		if err != nil {
			return errors.Wrap(err, "read date flag")
		}
		date, err := parseDate(dateFlag, time.Now())
		if err != nil {
			return err
		}
		return withApp(cmd, func(ctx context.Context, app *setup.App) error {
			m, findErr := app.Mysteries.FindByDate(ctx, date)
			if findErr != nil {
				return errors.Wrap(findErr, "find mystery")
			}
			if delErr := app.Mysteries.Delete(ctx, m.ID); delErr != nil {
				return errors.Wrap(delErr, "delete mystery")
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Deleted mystery %d for %s\n", m.ID, m.DateString())
			return nil
		})
	},
}

func printMystery(w io.Writer, m models.DailyMystery) {
	_, _ = fmt.Fprintf(w, "Mystery %d for %s: %s (%s)\n\n%s\n\nSolution: %s\n",
		m.ID, m.DateString(), m.Theme, m.ArtStyle.Name, m.BaseStoryText, m.ActualSolutionText)
}

var Styles = &cobra.Command{
	Use:     "styles",
	GroupID: "mystery",
	Short:   "Art style operations",
}

var listStyles = &cobra.Command{
	Use:   "list",
	Short: "List the stored art styles",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withApp(cmd, func(ctx context.Context, app *setup.App) error {
			styles, err := app.ArtStyles.List(ctx)
			if err != nil {
				return errors.Wrap(err, "list art styles")
			}
			return printStyles(cmd.OutOrStdout(), styles)
		})
	},
}

func printStyles(w io.Writer, styles []models.ArtStyle) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0) //nolint:mnd // padding
	_, _ = fmt.Fprintln(tw, "ID\tNAME\tPROMPT MODIFIER")
	for _, s := range styles {
		_, _ = fmt.Fprintf(tw, "%d\t%s\t%s\n", s.ID, s.Name, s.PromptModifier)
	}
	if err := tw.Flush(); err != nil {
		return errors.Wrap(err, "flush table")
	}
	return nil
}
