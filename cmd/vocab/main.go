package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var debug bool

var rootCmd = &cobra.Command{
	Use:   "vocab",
	Short: "Personal vocabulary list backed by a spreadsheet",
	Long: `vocab keeps a vocabulary list in a Google Sheet (or a Postgres table),
fills in definitions, synonyms and translations from free lookup services,
and schedules spaced-repetition reviews.

Examples:
  vocab add serendipity --smart              # look up and add a word
  vocab import words.csv                     # bulk import, skipping duplicates
  vocab due                                  # words to review today
  vocab schedule serendipity 7               # review again in a week
  vocab backup vocab.xlsx                    # export the whole table
  vocab bot                                  # run the Telegram front end

Configuration is read from the environment and an optional .env file.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")

	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(dueCmd)
	rootCmd.AddCommand(scheduleCmd)
	rootCmd.AddCommand(backupCmd)
	rootCmd.AddCommand(peekCmd)
	rootCmd.AddCommand(enrichCmd)
	rootCmd.AddCommand(exportDueCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(botCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
