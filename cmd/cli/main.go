package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/myrjola/plottwist/cmd/cli/img"
	"github.com/myrjola/plottwist/cmd/cli/mystery"
	"github.com/spf13/cobra"
)

func init() {
	// A missing .env file is fine, the environment may be configured by other means.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	rootCmd.AddGroup(mystery.Group)
	rootCmd.AddCommand(mystery.Generate)
	rootCmd.AddCommand(mystery.Delete)
	rootCmd.AddCommand(mystery.Styles)
	rootCmd.AddGroup(img.Group)
	rootCmd.AddCommand(img.Upload)
}

var rootCmd = &cobra.Command{
	Use:           "plottwist-cli",
	Long:          `Command line utilities for PlotTwist, the daily mystery game`,
	SilenceUsage:  true,
	SilenceErrors: false,
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}
