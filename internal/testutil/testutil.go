package testutil

import (
	"time"

	"vocabsheet/internal/domain"

	"go.uber.org/zap"
)

// NewTestLogger creates a no-op logger for tests
func NewTestLogger() *zap.Logger {
	return zap.NewNop()
}

// NewTestUser creates a test user
func NewTestUser(userID int64, authorized bool) *domain.User {
	return &domain.User{
		UserID:     userID,
		Authorized: authorized,
		CreatedAt:  time.Now(),
	}
}

// NewTestRecord creates a test record with a review date
func NewTestRecord(word, meaning, reviewDate string) domain.Record {
	return domain.Record{
		Word:       word,
		POS:        domain.DefaultPOS,
		Meaning:    meaning,
		ReviewDate: reviewDate,
	}
}

// HeaderRow returns a copy of the canonical header
func HeaderRow() []string {
	return append([]string(nil), domain.Headers...)
}

// FixedClock returns a clock function pinned to the given date
func FixedClock(year int, month time.Month, day int) func() time.Time {
	return func() time.Time {
		return time.Date(year, month, day, 9, 0, 0, 0, time.UTC)
	}
}
