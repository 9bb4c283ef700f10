package db

import (
	"context"
	"sort"
	"sync"
	"time"

	"hindinews/pkg/domain"
)

// MemoryStore keeps records in process memory. Used when no database is
// configured and as the test double.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]domain.ArticleRecord // by source_url
	slugs   map[string]bool
}

var (
	_ Store  = (*MemoryStore)(nil)
	_ Lister = (*MemoryStore)(nil)
)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		records: make(map[string]domain.ArticleRecord),
		slugs:   make(map[string]bool),
	}
}

func (m *MemoryStore) Exists(ctx context.Context, sourceURL string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.records[sourceURL]
	return ok, nil
}

func (m *MemoryStore) Insert(ctx context.Context, rec domain.ArticleRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.records[rec.SourceURL]; ok || m.slugs[rec.Slug] {
		return ErrDuplicate
	}
	m.records[rec.SourceURL] = rec
	m.slugs[rec.Slug] = true
	return nil
}

func (m *MemoryStore) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for key, rec := range m.records {
		if rec.CreatedAt.Before(cutoff) {
			delete(m.records, key)
			delete(m.slugs, rec.Slug)
			n++
		}
	}
	return n, nil
}

func (m *MemoryStore) Count(ctx context.Context) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return int64(len(m.records)), nil
}

// Get returns the record stored for sourceURL
func (m *MemoryStore) Get(sourceURL string) (domain.ArticleRecord, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.records[sourceURL]
	return rec, ok
}

func (m *MemoryStore) List(ctx context.Context) ([]domain.ArticleRecord, error) {
	m.mu.RLock()
	out := make([]domain.ArticleRecord, 0, len(m.records))
	for _, rec := range m.records {
		out = append(out, rec)
	}
	m.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].SourceURL < out[j].SourceURL
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (m *MemoryStore) Close(ctx context.Context) error {
	return nil
}
