package service

import (
	"context"
	"fmt"
	"time"

	"vocabsheet/internal/domain"

	"go.uber.org/zap"
)

// Positions of the columns the scheduler touches (1-based)
const (
	wordColumn       = 1
	reviewDateColumn = 8
)

// DueHeaders are the columns of the exported due-review view
var DueHeaders = []string{domain.ColWord, domain.ColPOS, domain.ColMeaning, domain.ColReviewDate}

// ReviewService handles spaced-repetition scheduling
type ReviewService struct {
	table  *TableService
	now    func() time.Time
	logger *zap.Logger
}

// NewReviewService creates a review service. A nil clock uses time.Now.
func NewReviewService(table *TableService, now func() time.Time, logger *zap.Logger) *ReviewService {
	if now == nil {
		now = time.Now
	}
	return &ReviewService{
		table:  table,
		now:    now,
		logger: logger,
	}
}

// DueReviews returns every record whose Review Date is on or before asOf.
// Records with a blank or unparseable Review Date are not due.
func (s *ReviewService) DueReviews(ctx context.Context, asOf time.Time) ([]domain.Record, error) {
	records, err := s.table.Records(ctx)
	if err != nil {
		return nil, err
	}

	day := domain.CivilDate(asOf)
	var due []domain.Record
	for _, r := range records {
		date, err := domain.ParseDate(r.ReviewDate)
		if err != nil {
			continue
		}
		if !date.After(day) {
			due = append(due, r)
		}
	}
	return due, nil
}

// ScheduleNext moves the Review Date of the first row whose Word equals word
// (case-sensitive) to today + days. It returns false when no row matches.
func (s *ReviewService) ScheduleNext(ctx context.Context, word string, days int) (bool, error) {
	if days < 0 {
		return false, fmt.Errorf("days must be non-negative, got %d", days)
	}

	rows, err := s.table.Rows(ctx)
	if err != nil {
		return false, err
	}

	row := 0
	for i, r := range rows {
		if i == 0 {
			continue
		}
		if len(r) >= wordColumn && r[wordColumn-1] == word {
			row = i + 1
			break
		}
	}
	if row == 0 {
		s.logger.Info("Word not found for scheduling", zap.String("word", word))
		return false, nil
	}

	next := domain.FormatDate(domain.CivilDate(s.now()).AddDate(0, 0, days))
	if err := s.table.UpdateCell(ctx, row, reviewDateColumn, next); err != nil {
		return false, err
	}

	s.logger.Info("Review scheduled",
		zap.String("word", word),
		zap.Int("row", row),
		zap.String("review_date", next),
	)
	return true, nil
}

// ExportDue writes the records due on asOf into the named tab, replacing its
// contents, and returns how many were written.
func (s *ReviewService) ExportDue(ctx context.Context, asOf time.Time, title string) (int, error) {
	due, err := s.DueReviews(ctx, asOf)
	if err != nil {
		return 0, err
	}

	rows := make([][]string, 0, len(due))
	for _, r := range due {
		rows = append(rows, []string{r.Word, r.POS, r.Meaning, r.ReviewDate})
	}

	if err := s.table.ClearAndSet(ctx, title, DueHeaders, rows); err != nil {
		return 0, err
	}
	return len(rows), nil
}
