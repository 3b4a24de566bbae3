package testutil

import (
	"context"
	"fmt"
	"sync"
	"time"

	"vocabsheet/internal/repository"
)

// MemoryBackend is an in-memory repository.SheetBackend for tests
type MemoryBackend struct {
	mu     sync.Mutex
	sheets map[string]*MemorySheet
}

// NewMemoryBackend creates an empty backend
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{sheets: make(map[string]*MemorySheet)}
}

// Seed creates (or replaces) a tab with the given rows
func (b *MemoryBackend) Seed(title string, rows ...[]string) *MemorySheet {
	b.mu.Lock()
	defer b.mu.Unlock()

	s := &MemorySheet{title: title, errs: make(map[string][]error)}
	for _, r := range rows {
		s.rows = append(s.rows, append([]string(nil), r...))
	}
	b.sheets[title] = s
	return s
}

// Get returns a tab without going through the backend interface
func (b *MemoryBackend) Get(title string) *MemorySheet {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.sheets[title]
}

// Sheet implements repository.SheetBackend
func (b *MemoryBackend) Sheet(ctx context.Context, title string) (repository.Sheet, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	s, ok := b.sheets[title]
	if !ok {
		return nil, fmt.Errorf("%w: %s", repository.ErrSheetNotFound, title)
	}
	return s, nil
}

// AddSheet implements repository.SheetBackend
func (b *MemoryBackend) AddSheet(ctx context.Context, title string, rows, cols int) (repository.Sheet, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	s := &MemorySheet{title: title, errs: make(map[string][]error)}
	b.sheets[title] = s
	return s, nil
}

// MemorySheet is an in-memory tab. Failures can be queued per operation name
// ("Rows", "RowValues", "UpdateRows", "InsertRow", "AppendRows", "UpdateCell", "Clear").
type MemorySheet struct {
	mu    sync.Mutex
	title string
	rows  [][]string
	errs   map[string][]error
	calls  map[string]int
	delays map[string]time.Duration
}

// FailNext queues errors returned by the next calls of op
func (s *MemorySheet) FailNext(op string, errs ...error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errs[op] = append(s.errs[op], errs...)
}

// Delay makes every later call of op sleep for d before it takes effect.
// Only Rows and AppendRows honor it.
func (s *MemorySheet) Delay(op string, d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.delays == nil {
		s.delays = make(map[string]time.Duration)
	}
	s.delays[op] = d
}

func (s *MemorySheet) pause(op string) {
	s.mu.Lock()
	d := s.delays[op]
	s.mu.Unlock()
	if d > 0 {
		time.Sleep(d)
	}
}

// Calls returns how many times op was invoked
func (s *MemorySheet) Calls(op string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[op]
}

// Snapshot returns a copy of all rows
func (s *MemorySheet) Snapshot() [][]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copyRows(s.rows)
}

func (s *MemorySheet) begin(op string) error {
	if s.calls == nil {
		s.calls = make(map[string]int)
	}
	s.calls[op]++
	if q := s.errs[op]; len(q) > 0 {
		s.errs[op] = q[1:]
		return q[0]
	}
	return nil
}

// Title implements repository.Sheet
func (s *MemorySheet) Title() string {
	return s.title
}

// Rows implements repository.Sheet
func (s *MemorySheet) Rows(ctx context.Context) ([][]string, error) {
	s.pause("Rows")
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.begin("Rows"); err != nil {
		return nil, err
	}
	return copyRows(s.rows), nil
}

// RowValues implements repository.Sheet
func (s *MemorySheet) RowValues(ctx context.Context, row int) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.begin("RowValues"); err != nil {
		return nil, err
	}
	if row < 1 || row > len(s.rows) {
		return nil, nil
	}
	return append([]string(nil), s.rows[row-1]...), nil
}

// UpdateRows implements repository.Sheet
func (s *MemorySheet) UpdateRows(ctx context.Context, startRow int, rows [][]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.begin("UpdateRows"); err != nil {
		return err
	}
	for i, r := range rows {
		idx := startRow - 1 + i
		for len(s.rows) <= idx {
			s.rows = append(s.rows, []string{})
		}
		s.rows[idx] = append([]string(nil), r...)
	}
	return nil
}

// InsertRow implements repository.Sheet
func (s *MemorySheet) InsertRow(ctx context.Context, row int, values []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.begin("InsertRow"); err != nil {
		return err
	}
	idx := row - 1
	for len(s.rows) < idx {
		s.rows = append(s.rows, []string{})
	}
	s.rows = append(s.rows, nil)
	copy(s.rows[idx+1:], s.rows[idx:])
	s.rows[idx] = append([]string(nil), values...)
	return nil
}

// AppendRows implements repository.Sheet
func (s *MemorySheet) AppendRows(ctx context.Context, rows [][]string) error {
	s.pause("AppendRows")
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.begin("AppendRows"); err != nil {
		return err
	}
	s.rows = append(s.rows, copyRows(rows)...)
	return nil
}

// UpdateCell implements repository.Sheet
func (s *MemorySheet) UpdateCell(ctx context.Context, row, col int, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.begin("UpdateCell"); err != nil {
		return err
	}
	for len(s.rows) < row {
		s.rows = append(s.rows, []string{})
	}
	r := s.rows[row-1]
	for len(r) < col {
		r = append(r, "")
	}
	r[col-1] = value
	s.rows[row-1] = r
	return nil
}

// Clear implements repository.Sheet
func (s *MemorySheet) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.begin("Clear"); err != nil {
		return err
	}
	s.rows = nil
	return nil
}

func copyRows(rows [][]string) [][]string {
	out := make([][]string, len(rows))
	for i, r := range rows {
		out[i] = append([]string(nil), r...)
	}
	return out
}
