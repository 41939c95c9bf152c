// Package store provides document storage backends for the translation
// pipeline: an in-memory implementation for tests and scaffolding, and a
// Bun-backed implementation for persistent hosts.
package store

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/goliatone/go-localize/internal/fragments"
	"github.com/goliatone/go-localize/pkg/interfaces"
)

type memoryKey struct {
	collection string
	id         string
	locale     string
}

// MemoryDocumentStore is an in-memory DocumentStore for tests and demos.
type MemoryDocumentStore struct {
	mu   sync.RWMutex
	docs map[memoryKey]map[string]any
}

var _ interfaces.DocumentStore = (*MemoryDocumentStore)(nil)

// NewMemoryDocumentStore creates an empty in-memory store.
func NewMemoryDocumentStore() *MemoryDocumentStore {
	return &MemoryDocumentStore{docs: make(map[memoryKey]map[string]any)}
}

// Seed inserts a document variant without going through Update.
func (m *MemoryDocumentStore) Seed(collection, id, locale string, data map[string]any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.docs[key(collection, id, locale)] = fragments.CloneMap(data)
}

// FindByID returns one locale variant, or ErrDocumentNotFound.
func (m *MemoryDocumentStore) FindByID(_ context.Context, collection, id, locale string) (*interfaces.Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	data, ok := m.docs[key(collection, id, locale)]
	if !ok {
		return nil, interfaces.ErrDocumentNotFound
	}
	return &interfaces.Document{
		Collection: collection,
		ID:         id,
		Locale:     locale,
		Data:       fragments.CloneMap(data),
	}, nil
}

// Find pages through a collection's documents in a stable id order.
func (m *MemoryDocumentStore) Find(_ context.Context, collection, locale string, page, limit int) ([]interfaces.Document, int, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	ids := make([]string, 0)
	for k := range m.docs {
		if k.collection == collection && k.locale == locale {
			ids = append(ids, k.id)
		}
	}
	sort.Strings(ids)

	total := len(ids)
	start := (page - 1) * limit
	if start >= total {
		return []interfaces.Document{}, total, nil
	}
	end := start + limit
	if end > total {
		end = total
	}

	out := make([]interfaces.Document, 0, end-start)
	for _, id := range ids[start:end] {
		out = append(out, interfaces.Document{
			Collection: collection,
			ID:         id,
			Locale:     locale,
			Data:       fragments.CloneMap(m.docs[key(collection, id, locale)]),
		})
	}
	return out, total, nil
}

// Update writes a locale variant, creating it when absent.
func (m *MemoryDocumentStore) Update(_ context.Context, collection, id, locale string, data map[string]any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.docs[key(collection, id, locale)] = fragments.CloneMap(data)
	return nil
}

// Count returns the number of distinct documents in a collection.
func (m *MemoryDocumentStore) Count(_ context.Context, collection string) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	seen := make(map[string]struct{})
	for k := range m.docs {
		if k.collection == collection {
			seen[k.id] = struct{}{}
		}
	}
	return len(seen), nil
}

func key(collection, id, locale string) memoryKey {
	return memoryKey{
		collection: strings.TrimSpace(collection),
		id:         strings.TrimSpace(id),
		locale:     strings.TrimSpace(locale),
	}
}
