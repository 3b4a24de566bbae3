// Package cache stores enrichment payloads keyed by lowercased word.
// Entries never expire; Invalidate is the only way to drop one.
package cache

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"vocabsheet/internal/domain"

	gocache "github.com/patrickmn/go-cache"
	"go.uber.org/zap"
)

// Store keeps payloads in memory and, when a directory is configured, as one
// JSON file per word.
type Store struct {
	mem    *gocache.Cache
	dir    string
	logger *zap.Logger
}

// New creates a cache store. An empty dir disables the disk layer.
func New(dir string, logger *zap.Logger) (*Store, error) {
	if dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create cache dir: %w", err)
		}
	}
	return &Store{
		mem:    gocache.New(gocache.NoExpiration, 0),
		dir:    dir,
		logger: logger,
	}, nil
}

// Key normalizes a word into its cache key
func Key(word string) string {
	return strings.ToLower(strings.TrimSpace(word))
}

// Load returns the cached payload for word
func (s *Store) Load(word string) (*domain.EnrichmentPayload, bool) {
	key := Key(word)
	if key == "" {
		return nil, false
	}

	if v, found := s.mem.Get(key); found {
		if p, ok := v.(*domain.EnrichmentPayload); ok {
			return p, true
		}
	}

	if s.dir == "" {
		return nil, false
	}

	data, err := os.ReadFile(s.path(key))
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			s.logger.Warn("Failed to read cache file", zap.String("word", key), zap.Error(err))
		}
		return nil, false
	}

	var p domain.EnrichmentPayload
	if err := json.Unmarshal(data, &p); err != nil {
		s.logger.Warn("Ignoring corrupt cache file", zap.String("word", key), zap.Error(err))
		return nil, false
	}

	s.mem.Set(key, &p, gocache.NoExpiration)
	return &p, true
}

// Save stores the payload under its word
func (s *Store) Save(p *domain.EnrichmentPayload) error {
	key := Key(p.Word)
	if key == "" {
		return domain.ErrEmptyWord
	}

	s.mem.Set(key, p, gocache.NoExpiration)

	if s.dir == "" {
		return nil
	}

	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode payload: %w", err)
	}

	tmp := s.path(key) + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write cache file: %w", err)
	}
	if err := os.Rename(tmp, s.path(key)); err != nil {
		return fmt.Errorf("failed to write cache file: %w", err)
	}
	return nil
}

// Invalidate removes the payload for word from both layers
func (s *Store) Invalidate(word string) error {
	key := Key(word)
	s.mem.Delete(key)

	if s.dir == "" {
		return nil
	}
	if err := os.Remove(s.path(key)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove cache file: %w", err)
	}
	return nil
}

// Len returns the number of payloads held in memory
func (s *Store) Len() int {
	return s.mem.ItemCount()
}

func (s *Store) path(key string) string {
	return filepath.Join(s.dir, url.PathEscape(key)+".json")
}
