package service

import (
	"context"
	"time"

	"vocabsheet/internal/backoff"
	"vocabsheet/internal/testutil"
)

const testSheet = "Sheet1"

func newTestExecutor() *backoff.Executor {
	return backoff.New(backoff.DefaultPolicy(), backoff.IsTransient, testutil.NewTestLogger(),
		backoff.WithSleeper(func(context.Context, time.Duration) error { return nil }),
	)
}

// newTestTable seeds the primary tab with rows (header first) and returns a client for it
func newTestTable(rows ...[]string) (*TableService, *testutil.MemoryBackend) {
	backend := testutil.NewMemoryBackend()
	if rows != nil {
		backend.Seed(testSheet, rows...)
	}
	return NewTableService(backend, testSheet, newTestExecutor(), testutil.NewTestLogger()), backend
}

func row(word, meaning, reviewDate string) []string {
	return testutil.NewTestRecord(word, meaning, reviewDate).Row()
}
