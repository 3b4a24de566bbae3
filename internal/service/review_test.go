package service

import (
	"context"
	"testing"
	"time"

	"vocabsheet/internal/domain"
	"vocabsheet/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestReview(rows ...[]string) (*ReviewService, *testutil.MemoryBackend) {
	table, backend := newTestTable(rows...)
	clock := testutil.FixedClock(2025, time.January, 1)
	return NewReviewService(table, clock, testutil.NewTestLogger()), backend
}

func TestReviewService_DueReviews(t *testing.T) {
	review, _ := newTestReview(
		testutil.HeaderRow(),
		row("past", "a", "2024-12-31"),
		row("today", "b", "2025-01-01"),
		row("future", "c", "2025-01-02"),
		row("garbage", "d", "not a date"),
		row("blank", "e", ""),
		row("slashes", "f", "12/30/2024"),
	)

	due, err := review.DueReviews(context.Background(), time.Date(2025, 1, 1, 23, 59, 0, 0, time.UTC))
	require.NoError(t, err)

	var words []string
	for _, r := range due {
		words = append(words, r.Word)
	}
	assert.Equal(t, []string{"past", "today", "slashes"}, words)
}

func TestReviewService_ScheduleNext(t *testing.T) {
	review, backend := newTestReview(
		testutil.HeaderRow(),
		row("banana", "fruit", "2024-12-01"),
		row("apple", "fruit", "2024-12-01"),
		row("apple", "company", "2024-12-01"),
	)

	found, err := review.ScheduleNext(context.Background(), "apple", 7)

	require.NoError(t, err)
	assert.True(t, found)

	rows := backend.Get(testSheet).Snapshot()
	assert.Equal(t, "2025-01-08", rows[2][7])
	assert.Equal(t, "2024-12-01", rows[3][7], "only the first match is rescheduled")
	assert.Equal(t, "2024-12-01", rows[1][7])
}

func TestReviewService_ScheduleNext_NotFound(t *testing.T) {
	tests := []struct {
		name string
		word string
	}{
		{name: "missing word", word: "cherry"},
		{name: "case sensitive", word: "Apple"},
		{name: "header is not a row", word: domain.ColWord},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			review, backend := newTestReview(testutil.HeaderRow(), row("apple", "fruit", "2024-12-01"))

			found, err := review.ScheduleNext(context.Background(), tt.word, 3)

			require.NoError(t, err)
			assert.False(t, found)
			assert.Equal(t, 0, backend.Get(testSheet).Calls("UpdateCell"))
		})
	}
}

func TestReviewService_ScheduleNext_NegativeDays(t *testing.T) {
	review, backend := newTestReview(testutil.HeaderRow(), row("apple", "fruit", "2024-12-01"))

	_, err := review.ScheduleNext(context.Background(), "apple", -1)

	assert.Error(t, err)
	assert.Equal(t, 0, backend.Get(testSheet).Calls("RowValues"))
	assert.Equal(t, 0, backend.Get(testSheet).Calls("UpdateCell"))
}

func TestReviewService_ExportDue(t *testing.T) {
	review, backend := newTestReview(
		testutil.HeaderRow(),
		row("apple", "fruit", "2024-12-31"),
		row("pear", "fruit", "2025-02-01"),
	)

	n, err := review.ExportDue(context.Background(), time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), "Due")

	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, [][]string{
		DueHeaders,
		{"apple", "n.", "fruit", "2024-12-31"},
	}, backend.Get("Due").Snapshot())
}
