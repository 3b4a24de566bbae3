package service

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"vocabsheet/internal/domain"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

// DefaultPeekSize is the number of records Peek returns by default
const DefaultPeekSize = 20

// BackupFormat selects the output of Backup
type BackupFormat string

const (
	BackupCSV  BackupFormat = "csv"
	BackupXLSX BackupFormat = "xlsx"
)

// csvBOM makes spreadsheet programs open the CSV as UTF-8
const csvBOM = "\ufeff"

// VocabService handles adding and exporting vocabulary records
type VocabService struct {
	table    *TableService
	dedup    *DedupCache
	enricher *Enricher
	now      func() time.Time
	logger   *zap.Logger
}

// NewVocabService creates a vocabulary service. enricher may be nil when
// SmartAdd is not used; a nil clock uses time.Now.
func NewVocabService(table *TableService, dedup *DedupCache, enricher *Enricher, now func() time.Time, logger *zap.Logger) *VocabService {
	if now == nil {
		now = time.Now
	}
	return &VocabService{
		table:    table,
		dedup:    dedup,
		enricher: enricher,
		now:      now,
		logger:   logger,
	}
}

// AddWord appends rec unless its (word, meaning) pair is already stored.
// A blank Review Date defaults to today. It returns whether a row was written.
func (s *VocabService) AddWord(ctx context.Context, rec domain.Record) (bool, error) {
	rec.Word = strings.TrimSpace(rec.Word)
	if err := rec.Validate(); err != nil {
		return false, err
	}

	if rec.POS != "" {
		rec.POS = domain.NormalizePOS(rec.POS)
	}

	if strings.TrimSpace(rec.ReviewDate) == "" {
		rec.ReviewDate = domain.FormatDate(s.now())
	} else {
		date := domain.NormalizeDate(rec.ReviewDate)
		if date == "" {
			return false, fmt.Errorf("invalid review date %q", rec.ReviewDate)
		}
		rec.ReviewDate = date
	}

	added := false
	err := s.dedup.WithWriteLock(func() error {
		exists, err := s.dedup.Exists(ctx, rec.Word, rec.Meaning)
		if err != nil {
			return err
		}
		if exists {
			return nil
		}

		if err := s.table.AppendRow(ctx, rec.Row()); err != nil {
			return err
		}
		s.dedup.Insert(rec.Word, rec.Meaning)
		added = true
		return nil
	})
	if err != nil {
		return false, err
	}

	if !added {
		s.logger.Info("Skipping duplicate word",
			zap.String("word", rec.Word),
			zap.String("meaning", rec.Meaning),
		)
		return false, nil
	}

	s.logger.Info("Word added", zap.String("word", rec.Word), zap.String("pos", rec.POS))
	return true, nil
}

// SmartAdd enriches word, applies the non-empty fields of overrides on top,
// and adds the result. It returns the record it tried to add.
func (s *VocabService) SmartAdd(ctx context.Context, word string, overrides domain.Record, translate bool) (domain.Record, bool, error) {
	if s.enricher == nil {
		return domain.Record{}, false, fmt.Errorf("enrichment is not configured")
	}

	rec, err := s.enricher.Enrich(ctx, word, translate)
	if err != nil {
		return domain.Record{}, false, err
	}

	rec = applyOverrides(rec, overrides)

	added, err := s.AddWord(ctx, rec)
	return rec, added, err
}

// Peek returns the first n records; n <= 0 means DefaultPeekSize
func (s *VocabService) Peek(ctx context.Context, n int) ([]domain.Record, error) {
	if n <= 0 {
		n = DefaultPeekSize
	}

	records, err := s.table.Records(ctx)
	if err != nil {
		return nil, err
	}
	if len(records) > n {
		records = records[:n]
	}
	return records, nil
}

// Backup writes the whole table to w and returns the number of data rows written
func (s *VocabService) Backup(ctx context.Context, w io.Writer, format BackupFormat) (int, error) {
	rows, err := s.table.Rows(ctx)
	if err != nil {
		return 0, err
	}
	rows = backupRows(rows)

	switch format {
	case BackupCSV, "":
		err = writeCSV(w, rows)
	case BackupXLSX:
		err = writeXLSX(w, s.table.Title(), rows)
	default:
		return 0, fmt.Errorf("unsupported backup format %q", format)
	}
	if err != nil {
		return 0, err
	}

	count := 0
	if len(rows) > 0 {
		count = len(rows) - 1
	}
	s.logger.Info("Backup written", zap.String("format", string(format)), zap.Int("rows", count))
	return count, nil
}

// backupRows drops blank rows and pads every row to the header width
func backupRows(rows [][]string) [][]string {
	if len(rows) == 0 {
		return [][]string{domain.Headers}
	}

	width := len(trimTrailingBlanks(rows[0]))
	if width < len(domain.Headers) {
		width = len(domain.Headers)
	}

	out := make([][]string, 0, len(rows))
	for i, row := range rows {
		if i > 0 && len(trimTrailingBlanks(row)) == 0 {
			continue
		}
		padded := make([]string, width)
		copy(padded, row)
		out = append(out, padded)
	}
	return out
}

func writeCSV(w io.Writer, rows [][]string) error {
	if _, err := io.WriteString(w, csvBOM); err != nil {
		return fmt.Errorf("failed to write backup: %w", err)
	}

	cw := csv.NewWriter(w)
	if err := cw.WriteAll(rows); err != nil {
		return fmt.Errorf("failed to write backup: %w", err)
	}
	return nil
}

func writeXLSX(w io.Writer, title string, rows [][]string) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(f.GetActiveSheetIndex())
	if title != "" && title != sheet {
		if err := f.SetSheetName(sheet, title); err != nil {
			return fmt.Errorf("failed to name backup sheet: %w", err)
		}
		sheet = title
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return fmt.Errorf("failed to write backup: %w", err)
		}
		values := make([]interface{}, len(row))
		for j, v := range row {
			values[j] = v
		}
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return fmt.Errorf("failed to write backup row %d: %w", i+1, err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write backup: %w", err)
	}
	return nil
}

func applyOverrides(rec, overrides domain.Record) domain.Record {
	if v := strings.TrimSpace(overrides.POS); v != "" {
		rec.POS = v
	}
	if v := strings.TrimSpace(overrides.Meaning); v != "" {
		rec.Meaning = v
	}
	if v := strings.TrimSpace(overrides.Example); v != "" {
		rec.Example = v
	}
	if len(overrides.Synonyms) > 0 {
		rec.Synonyms = overrides.Synonyms
	}
	if v := strings.TrimSpace(overrides.Topic); v != "" {
		rec.Topic = v
	}
	if v := strings.TrimSpace(overrides.Source); v != "" {
		rec.Source = v
	}
	if v := strings.TrimSpace(overrides.ReviewDate); v != "" {
		rec.ReviewDate = v
	}
	if v := strings.TrimSpace(overrides.Note); v != "" {
		rec.Note = v
	}
	return rec
}
