package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"vocabsheet/internal/backoff"
	"vocabsheet/internal/domain"
	"vocabsheet/internal/repository"

	"go.uber.org/zap"
)

// New tabs are created with a fixed grid size
const (
	newSheetRows = 1000
	newSheetCols = 10
)

// TableService is the client of the remote vocabulary table. Every remote
// call goes through the backoff executor.
type TableService struct {
	backend repository.SheetBackend
	title   string
	exec    *backoff.Executor
	logger  *zap.Logger

	mu    sync.Mutex
	sheet repository.Sheet
}

// NewTableService creates a table client for the tab with the given title
func NewTableService(backend repository.SheetBackend, title string, exec *backoff.Executor, logger *zap.Logger) *TableService {
	return &TableService{
		backend: backend,
		title:   title,
		exec:    exec.WithClassifier(backoff.IsRemoteTableTransient),
		logger:  logger,
	}
}

// Title returns the name of the primary tab
func (s *TableService) Title() string {
	return s.title
}

// Open opens the primary tab, creating it if absent, and makes sure its
// first row is the canonical header. The opened tab is reused afterwards.
func (s *TableService) Open(ctx context.Context) (repository.Sheet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.sheet != nil {
		return s.sheet, nil
	}

	sheet, err := s.openOrCreate(ctx, s.title, newSheetRows, newSheetCols)
	if err != nil {
		return nil, err
	}

	if err := s.ensureHeaders(ctx, sheet); err != nil {
		return nil, err
	}

	s.sheet = sheet
	return sheet, nil
}

func (s *TableService) openOrCreate(ctx context.Context, title string, rows, cols int) (repository.Sheet, error) {
	sheet, err := backoff.Do(ctx, s.exec, "open sheet", func(ctx context.Context) (repository.Sheet, error) {
		return s.backend.Sheet(ctx, title)
	})
	if err == nil {
		return sheet, nil
	}
	if !errors.Is(err, repository.ErrSheetNotFound) {
		return nil, fmt.Errorf("failed to open sheet %q: %w", title, err)
	}

	s.logger.Info("Creating sheet", zap.String("sheet", title), zap.Int("rows", rows), zap.Int("cols", cols))

	sheet, err = backoff.Do(ctx, s.exec, "add sheet", func(ctx context.Context) (repository.Sheet, error) {
		return s.backend.AddSheet(ctx, title, rows, cols)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create sheet %q: %w", title, err)
	}
	return sheet, nil
}

// ensureHeaders repairs the first row:
// empty -> write header; header prefix -> overwrite; anything else -> insert header above it.
func (s *TableService) ensureHeaders(ctx context.Context, sheet repository.Sheet) error {
	first, err := backoff.Do(ctx, s.exec, "read header", func(ctx context.Context) ([]string, error) {
		return sheet.RowValues(ctx, 1)
	})
	if err != nil {
		return fmt.Errorf("failed to read header row: %w", err)
	}

	first = trimTrailingBlanks(first)

	switch {
	case len(first) == 0:
		s.logger.Info("Writing header to empty sheet", zap.String("sheet", sheet.Title()))
		return s.writeHeader(ctx, sheet)

	case headerMatches(first):
		return nil

	case headerPrefix(first):
		s.logger.Info("Completing short header", zap.String("sheet", sheet.Title()), zap.Int("columns", len(first)))
		return s.writeHeader(ctx, sheet)

	default:
		s.logger.Warn("Unexpected header, inserting canonical header above existing rows",
			zap.String("sheet", sheet.Title()),
			zap.Strings("found", first),
		)
		err := s.exec.Run(ctx, "insert header", func(ctx context.Context) error {
			return sheet.InsertRow(ctx, 1, domain.Headers)
		})
		if err != nil {
			return fmt.Errorf("failed to insert header: %w", err)
		}
		return nil
	}
}

func (s *TableService) writeHeader(ctx context.Context, sheet repository.Sheet) error {
	err := s.exec.Run(ctx, "write header", func(ctx context.Context) error {
		return sheet.UpdateRows(ctx, 1, [][]string{domain.Headers})
	})
	if err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	return nil
}

// Rows returns every row of the primary tab, header included
func (s *TableService) Rows(ctx context.Context) ([][]string, error) {
	sheet, err := s.Open(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := backoff.Do(ctx, s.exec, "read rows", func(ctx context.Context) ([][]string, error) {
		return sheet.Rows(ctx)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read rows: %w", err)
	}
	return rows, nil
}

// ReadAll returns every data row as a mapping from header name to cell value,
// in row order. Blank rows are skipped.
func (s *TableService) ReadAll(ctx context.Context) ([]map[string]string, error) {
	rows, err := s.Rows(ctx)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}

	names := headerNames(rows[0])
	out := make([]map[string]string, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if len(trimTrailingBlanks(row)) == 0 {
			continue
		}
		m := make(map[string]string, len(names))
		for i, name := range names {
			if i < len(row) {
				m[name] = row[i]
			} else {
				m[name] = ""
			}
		}
		out = append(out, m)
	}
	return out, nil
}

// Records returns every data row as a Record
func (s *TableService) Records(ctx context.Context) ([]domain.Record, error) {
	all, err := s.ReadAll(ctx)
	if err != nil {
		return nil, err
	}

	records := make([]domain.Record, 0, len(all))
	for _, m := range all {
		records = append(records, domain.RecordFromMap(m))
	}
	return records, nil
}

// AppendRow appends one fully-ordered row
func (s *TableService) AppendRow(ctx context.Context, row []string) error {
	return s.AppendRows(ctx, [][]string{row})
}

// AppendRows appends rows in a single batched call
func (s *TableService) AppendRows(ctx context.Context, rows [][]string) error {
	if len(rows) == 0 {
		return nil
	}

	sheet, err := s.Open(ctx)
	if err != nil {
		return err
	}

	err = s.exec.Run(ctx, "append rows", func(ctx context.Context) error {
		return sheet.AppendRows(ctx, rows)
	})
	if err != nil {
		return fmt.Errorf("failed to append %d rows: %w", len(rows), err)
	}

	s.logger.Info("Rows appended", zap.String("sheet", sheet.Title()), zap.Int("count", len(rows)))
	return nil
}

// UpdateCell sets a single cell of the primary tab (1-based)
func (s *TableService) UpdateCell(ctx context.Context, row, col int, value string) error {
	sheet, err := s.Open(ctx)
	if err != nil {
		return err
	}

	err = s.exec.Run(ctx, "update cell", func(ctx context.Context) error {
		return sheet.UpdateCell(ctx, row, col, value)
	})
	if err != nil {
		return fmt.Errorf("failed to update cell (%d,%d): %w", row, col, err)
	}
	return nil
}

// ClearAndSet replaces the contents of the named tab with headers and rows.
// It refuses to touch the primary tab.
func (s *TableService) ClearAndSet(ctx context.Context, title string, headers []string, rows [][]string) error {
	if title == s.title {
		return fmt.Errorf("refusing to overwrite primary sheet %q", title)
	}

	size := len(rows) + 1
	if size < 100 {
		size = 100
	}
	cols := len(headers)
	if cols < 1 {
		cols = 1
	}

	sheet, err := s.openOrCreate(ctx, title, size, cols)
	if err != nil {
		return err
	}

	err = s.exec.Run(ctx, "clear sheet", func(ctx context.Context) error {
		return sheet.Clear(ctx)
	})
	if err != nil {
		return fmt.Errorf("failed to clear sheet %q: %w", title, err)
	}

	values := make([][]string, 0, len(rows)+1)
	values = append(values, headers)
	values = append(values, rows...)

	err = s.exec.Run(ctx, "write sheet", func(ctx context.Context) error {
		return sheet.UpdateRows(ctx, 1, values)
	})
	if err != nil {
		return fmt.Errorf("failed to write sheet %q: %w", title, err)
	}

	s.logger.Info("Sheet replaced", zap.String("sheet", title), zap.Int("rows", len(rows)))
	return nil
}

func normalizeHeader(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func headerMatches(row []string) bool {
	if len(row) < len(domain.Headers) {
		return false
	}
	return headerPrefix(row[:len(domain.Headers)])
}

func headerPrefix(row []string) bool {
	if len(row) > len(domain.Headers) {
		return false
	}
	for i, cell := range row {
		if normalizeHeader(cell) != normalizeHeader(domain.Headers[i]) {
			return false
		}
	}
	return true
}

// headerNames maps the first row to field names, canonical columns first
func headerNames(row []string) []string {
	names := make([]string, 0, len(row))
	for i, cell := range row {
		if i < len(domain.Headers) && normalizeHeader(cell) == normalizeHeader(domain.Headers[i]) {
			names = append(names, domain.Headers[i])
			continue
		}
		names = append(names, strings.TrimSpace(cell))
	}
	return names
}

func trimTrailingBlanks(row []string) []string {
	n := len(row)
	for n > 0 && strings.TrimSpace(row[n-1]) == "" {
		n--
	}
	return row[:n]
}
