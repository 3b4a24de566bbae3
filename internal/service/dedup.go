package service

import (
	"context"
	"sync"

	"vocabsheet/internal/domain"

	"go.uber.org/zap"
)

// DedupCache is the in-process set of (word, meaning) keys present in the
// remote table. It is loaded on first use and rebuilt by Refresh. Writers
// outside this process are not observed until the next Refresh.
//
// Callers that check a key and then append must do both inside WithWriteLock.
type DedupCache struct {
	table  *TableService
	logger *zap.Logger

	writeMu sync.Mutex

	mu     sync.Mutex
	keys   map[domain.DedupKey]struct{}
	loaded bool
}

// NewDedupCache creates an empty, not yet loaded cache
func NewDedupCache(table *TableService, logger *zap.Logger) *DedupCache {
	return &DedupCache{
		table:  table,
		logger: logger,
		keys:   make(map[domain.DedupKey]struct{}),
	}
}

// WithWriteLock runs fn holding the lock that serializes check-then-append
// sequences and refreshes. fn must not call WithWriteLock again.
func (c *DedupCache) WithWriteLock(fn func() error) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return fn()
}

// Refresh rebuilds the key set from a full read of the table
func (c *DedupCache) Refresh(ctx context.Context) error {
	records, err := c.table.Records(ctx)
	if err != nil {
		return err
	}

	keys := make(map[domain.DedupKey]struct{}, len(records))
	for _, r := range records {
		keys[r.Key()] = struct{}{}
	}

	c.mu.Lock()
	c.keys = keys
	c.loaded = true
	c.mu.Unlock()

	c.logger.Debug("Dedup cache refreshed", zap.Int("keys", len(keys)))
	return nil
}

// Exists reports whether the normalized (word, meaning) pair is present
func (c *DedupCache) Exists(ctx context.Context, word, meaning string) (bool, error) {
	if err := c.ensureLoaded(ctx); err != nil {
		return false, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.keys[domain.NewDedupKey(word, meaning)]
	return ok, nil
}

// Insert records a key after a confirmed write
func (c *DedupCache) Insert(word, meaning string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.keys[domain.NewDedupKey(word, meaning)] = struct{}{}
}

// Len returns the number of known keys
func (c *DedupCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.keys)
}

func (c *DedupCache) ensureLoaded(ctx context.Context) error {
	c.mu.Lock()
	loaded := c.loaded
	c.mu.Unlock()

	if loaded {
		return nil
	}
	return c.Refresh(ctx)
}
