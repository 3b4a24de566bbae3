package service

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"vocabsheet/internal/domain"

	"go.uber.org/zap"
)

// ErrMissingColumns is returned when an import file lacks a required column
var ErrMissingColumns = errors.New("import is missing required columns")

var requiredImportColumns = []string{domain.ColWord, domain.ColPOS, domain.ColMeaning}

// Importer bulk-loads vocabulary rows from CSV
type Importer struct {
	table  *TableService
	dedup  *DedupCache
	logger *zap.Logger
}

// NewImporter creates an importer
func NewImporter(table *TableService, dedup *DedupCache, logger *zap.Logger) *Importer {
	return &Importer{
		table:  table,
		dedup:  dedup,
		logger: logger,
	}
}

// ImportCSV imports the CSV file at path and returns the number of rows appended
func (im *Importer) ImportCSV(ctx context.Context, path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("failed to open import file: %w", err)
	}
	defer f.Close()

	return im.Import(ctx, f)
}

// Import reads CSV from r, drops rows already present in the batch or in the
// table, and appends the rest in one call.
func (im *Importer) Import(ctx context.Context, r io.Reader) (int, error) {
	candidates, err := readCandidates(r)
	if err != nil {
		return 0, err
	}

	seen := make(map[domain.DedupKey]struct{}, len(candidates))
	batch := make([]domain.Record, 0, len(candidates))
	skipped := 0
	for _, rec := range candidates {
		if rec.Word == "" || rec.Meaning == "" {
			skipped++
			continue
		}
		key := rec.Key()
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		batch = append(batch, rec)
	}

	var appended int
	err = im.dedup.WithWriteLock(func() error {
		if err := im.dedup.Refresh(ctx); err != nil {
			return fmt.Errorf("failed to refresh dedup cache: %w", err)
		}

		rows := make([][]string, 0, len(batch))
		fresh := make([]domain.Record, 0, len(batch))
		for _, rec := range batch {
			exists, err := im.dedup.Exists(ctx, rec.Word, rec.Meaning)
			if err != nil {
				return err
			}
			if exists {
				continue
			}
			rows = append(rows, rec.Row())
			fresh = append(fresh, rec)
		}

		if err := im.table.AppendRows(ctx, rows); err != nil {
			return err
		}
		for _, rec := range fresh {
			im.dedup.Insert(rec.Word, rec.Meaning)
		}
		appended = len(rows)
		return nil
	})
	if err != nil {
		return 0, err
	}

	im.logger.Info("Import finished",
		zap.Int("read", len(candidates)),
		zap.Int("skipped", skipped),
		zap.Int("appended", appended),
	)
	return appended, nil
}

// readCandidates parses CSV into normalized records. The first record is the header.
func readCandidates(r io.Reader) ([]domain.Record, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("%w: %s", ErrMissingColumns, strings.Join(requiredImportColumns, ", "))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read import header: %w", err)
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
		if _, dup := index[name]; !dup {
			index[name] = i
		}
	}

	var missing []string
	for _, col := range requiredImportColumns {
		if _, ok := index[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return nil, fmt.Errorf("%w: %s", ErrMissingColumns, strings.Join(missing, ", "))
	}

	var out []domain.Record
	for {
		fields, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read import row: %w", err)
		}

		m := make(map[string]string, len(domain.Headers))
		for _, col := range domain.Headers {
			if i, ok := index[col]; ok && i < len(fields) {
				m[col] = fields[i]
			}
		}
		out = append(out, normalizeImported(domain.RecordFromMap(m)))
	}
	return out, nil
}

func normalizeImported(r domain.Record) domain.Record {
	r.Word = strings.TrimSpace(r.Word)
	r.Meaning = strings.TrimSpace(r.Meaning)
	pos := strings.ToLower(strings.TrimSpace(r.POS))
	r.POS = domain.NormalizePOS(pos)
	if r.ReviewDate != "" {
		r.ReviewDate = domain.NormalizeDate(r.ReviewDate)
	}
	return r
}
