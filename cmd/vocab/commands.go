package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"vocabsheet/internal/domain"
	"vocabsheet/internal/service"

	"github.com/spf13/cobra"
)

// withApp wires the application for the duration of one command
func withApp(fn func(ctx context.Context, a *app, args []string) error) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()
		return fn(ctx, a, args)
	}
}

var (
	addRecord    domain.Record
	addSynonyms  string
	addSmart     bool
	addTranslate bool
)

var addCmd = &cobra.Command{
	Use:   "add <word>",
	Short: "Add a word unless the same word and meaning are already stored",
	Long: `Add one word to the vocabulary table. With --smart the definition,
example, part of speech and synonyms are looked up first; explicit flags
override what the lookup found.`,
	Args: cobra.MinimumNArgs(1),
	RunE: withApp(func(ctx context.Context, a *app, args []string) error {
		rec := addRecord
		rec.Word = strings.Join(args, " ")
		rec.Synonyms = domain.ParseSynonyms(addSynonyms)

		var added bool
		var err error
		if addSmart {
			rec, added, err = a.vocab.SmartAdd(ctx, rec.Word, rec, addTranslate)
		} else {
			added, err = a.vocab.AddWord(ctx, rec)
		}
		if err != nil {
			return err
		}

		if !added {
			fmt.Printf("⚠️  Already stored: %s (%s)\n", rec.Word, rec.Meaning)
			return nil
		}
		fmt.Printf("✅ Added: %s (%s) %s\n", rec.Word, rec.POS, rec.Meaning)
		return nil
	}),
}

func init() {
	f := addCmd.Flags()
	f.StringVar(&addRecord.POS, "pos", "", "Part of speech (n., v., adj., ...)")
	f.StringVar(&addRecord.Meaning, "meaning", "", "Meaning")
	f.StringVar(&addRecord.Example, "example", "", "Example sentence")
	f.StringVar(&addSynonyms, "synonyms", "", "Synonyms separated by | or ,")
	f.StringVar(&addRecord.Topic, "topic", "", "Topic")
	f.StringVar(&addRecord.Source, "source", "", "Source")
	f.StringVar(&addRecord.ReviewDate, "review-date", "", "First review date (default today)")
	f.StringVar(&addRecord.Note, "note", "", "Note")
	f.BoolVar(&addSmart, "smart", false, "Look the word up before adding it")
	f.BoolVar(&addTranslate, "translate", true, "Translate the looked-up definition")
}

var importCmd = &cobra.Command{
	Use:   "import <file.csv>",
	Short: "Bulk import words from a CSV file",
	Long: `Import rows from a CSV file with at least the columns Word, POS and Meaning.
Rows already in the table (same word and meaning) and repeated rows are skipped.`,
	Args: cobra.ExactArgs(1),
	RunE: withApp(func(ctx context.Context, a *app, args []string) error {
		n, err := a.importer.ImportCSV(ctx, args[0])
		if err != nil {
			return err
		}
		fmt.Printf("✅ Imported %d rows\n", n)
		return nil
	}),
}

var dueDate string

var dueCmd = &cobra.Command{
	Use:   "due",
	Short: "List words due for review",
	Args:  cobra.NoArgs,
	RunE: withApp(func(ctx context.Context, a *app, args []string) error {
		asOf, err := parseAsOf(dueDate)
		if err != nil {
			return err
		}

		due, err := a.review.DueReviews(ctx, asOf)
		if err != nil {
			return err
		}
		if len(due) == 0 {
			fmt.Println("Nothing to review 🎉")
			return nil
		}

		printRecords(due)
		return nil
	}),
}

func init() {
	dueCmd.Flags().StringVar(&dueDate, "date", "", "Review date to check against (default today)")
}

var scheduleCmd = &cobra.Command{
	Use:   "schedule <word> <days>",
	Short: "Move a word's next review to today plus the given days",
	Args:  cobra.ExactArgs(2),
	RunE: withApp(func(ctx context.Context, a *app, args []string) error {
		days, err := strconv.Atoi(args[1])
		if err != nil || days < 0 {
			return fmt.Errorf("days must be a non-negative integer, got %q", args[1])
		}

		found, err := a.review.ScheduleNext(ctx, args[0], days)
		if err != nil {
			return err
		}
		if !found {
			fmt.Printf("⚠️  %q not found\n", args[0])
			return nil
		}
		fmt.Printf("📅 %s: next review in %d days\n", args[0], days)
		return nil
	}),
}

var backupFormat string

var backupCmd = &cobra.Command{
	Use:   "backup <output>",
	Short: "Export the whole table to CSV or XLSX",
	Args:  cobra.ExactArgs(1),
	RunE: withApp(func(ctx context.Context, a *app, args []string) error {
		format := service.BackupFormat(backupFormat)
		if format == "" {
			format = formatFromPath(args[0])
		}

		out, err := os.Create(args[0])
		if err != nil {
			return fmt.Errorf("failed to create backup file: %w", err)
		}

		n, err := a.vocab.Backup(ctx, out, format)
		if closeErr := out.Close(); err == nil {
			err = closeErr
		}
		if err != nil {
			return err
		}

		fmt.Printf("✅ Exported %d rows to %s\n", n, args[0])
		return nil
	}),
}

func init() {
	backupCmd.Flags().StringVar(&backupFormat, "format", "", "csv or xlsx (default from file extension)")
}

var peekCount int

var peekCmd = &cobra.Command{
	Use:   "peek",
	Short: "Show the first rows of the table",
	Args:  cobra.NoArgs,
	RunE: withApp(func(ctx context.Context, a *app, args []string) error {
		records, err := a.vocab.Peek(ctx, peekCount)
		if err != nil {
			return err
		}
		printRecords(records)
		return nil
	}),
}

func init() {
	peekCmd.Flags().IntVarP(&peekCount, "count", "n", service.DefaultPeekSize, "Number of rows")
}

var enrichTranslate bool

var enrichCmd = &cobra.Command{
	Use:   "enrich <word>",
	Short: "Look a word up and print the record without storing it",
	Args:  cobra.MinimumNArgs(1),
	RunE: withApp(func(ctx context.Context, a *app, args []string) error {
		rec, err := a.enricher.Enrich(ctx, strings.Join(args, " "), enrichTranslate)
		if err != nil {
			return err
		}

		out := make(map[string]string, len(domain.Headers))
		for i, v := range rec.Row() {
			out[domain.Headers[i]] = v
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)
		return enc.Encode(out)
	}),
}

func init() {
	enrichCmd.Flags().BoolVar(&enrichTranslate, "translate", true, "Translate the definition")
}

var exportDueDate string

var exportDueCmd = &cobra.Command{
	Use:   "export-due [sheet]",
	Short: "Write the due-review list into its own sheet",
	Args:  cobra.MaximumNArgs(1),
	RunE: withApp(func(ctx context.Context, a *app, args []string) error {
		title := a.cfg.DueSheetName
		if len(args) == 1 {
			title = args[0]
		}

		asOf, err := parseAsOf(exportDueDate)
		if err != nil {
			return err
		}

		n, err := a.review.ExportDue(ctx, asOf, title)
		if err != nil {
			return err
		}
		fmt.Printf("✅ Wrote %d due words to %q\n", n, title)
		return nil
	}),
}

func init() {
	exportDueCmd.Flags().StringVar(&exportDueDate, "date", "", "Review date to check against (default today)")
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show table counters",
	Args:  cobra.NoArgs,
	RunE: withApp(func(ctx context.Context, a *app, args []string) error {
		s, err := a.stats.Summary(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("Words:          %d\nDue:            %d\nOverdue:        %d\nNo review date: %d\n",
			s.Total, s.Due, s.Overdue, s.Undated)
		return nil
	}),
}

func parseAsOf(s string) (time.Time, error) {
	if s == "" {
		return time.Now(), nil
	}
	t, err := domain.ParseDate(s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --date: %w", err)
	}
	return t, nil
}

func formatFromPath(path string) service.BackupFormat {
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		return service.BackupXLSX
	}
	return service.BackupCSV
}

func printRecords(records []domain.Record) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "WORD\tPOS\tMEANING\tREVIEW DATE")
	for _, r := range records {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", r.Word, r.POS, r.Meaning, r.ReviewDate)
	}
	w.Flush()
}
