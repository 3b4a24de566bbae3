package service

import (
	"context"
	"time"

	"vocabsheet/internal/domain"

	"go.uber.org/zap"
)

// Stats summarizes the vocabulary table on one day
type Stats struct {
	Total   int
	Due     int
	Overdue int
	Undated int
}

// StatsService reports on the table and maintains the due-review view
type StatsService struct {
	table  *TableService
	dedup  *DedupCache
	review *ReviewService
	now    func() time.Time
	logger *zap.Logger
}

// NewStatsService creates a new stats service. A nil clock uses time.Now.
func NewStatsService(table *TableService, dedup *DedupCache, review *ReviewService, now func() time.Time, logger *zap.Logger) *StatsService {
	if now == nil {
		now = time.Now
	}
	return &StatsService{
		table:  table,
		dedup:  dedup,
		review: review,
		now:    now,
		logger: logger,
	}
}

// Summary counts records, due reviews (today or earlier), overdue reviews
// (before today) and records without a usable review date
func (s *StatsService) Summary(ctx context.Context) (Stats, error) {
	records, err := s.table.Records(ctx)
	if err != nil {
		return Stats{}, err
	}

	today := domain.CivilDate(s.now())
	stats := Stats{Total: len(records)}
	for _, r := range records {
		date, err := domain.ParseDate(r.ReviewDate)
		if err != nil {
			stats.Undated++
			continue
		}
		if !date.After(today) {
			stats.Due++
		}
		if date.Before(today) {
			stats.Overdue++
		}
	}
	return stats, nil
}

// RefreshDueView rebuilds the dedup cache and rewrites the due-review tab
func (s *StatsService) RefreshDueView(ctx context.Context, title string) error {
	s.logger.Info("Refreshing due view", zap.String("sheet", title))

	err := s.dedup.WithWriteLock(func() error {
		return s.dedup.Refresh(ctx)
	})
	if err != nil {
		s.logger.Error("Failed to refresh dedup cache", zap.Error(err))
		return err
	}

	n, err := s.review.ExportDue(ctx, s.now(), title)
	if err != nil {
		s.logger.Error("Failed to export due view", zap.Error(err))
		return err
	}

	s.logger.Info("Due view refreshed", zap.String("sheet", title), zap.Int("due", n))
	return nil
}
