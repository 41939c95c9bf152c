package schema

import (
	"sort"
	"strings"
	"sync"
)

// Registry caches resolved patterns per collection. Patterns are computed
// once per registered schema and are stable for its lifetime.
type Registry struct {
	mu          sync.RWMutex
	collections map[string][]Field
	patterns    map[string][]string
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		collections: make(map[string][]Field),
		patterns:    make(map[string][]string),
	}
}

// Register records the schema for a collection, replacing any previous
// registration and invalidating its cached patterns.
func (r *Registry) Register(slug string, fields []Field) {
	slug = normalizeSlug(slug)
	if slug == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.collections[slug] = append([]Field(nil), fields...)
	delete(r.patterns, slug)
}

// Patterns returns the translatable path patterns for a collection, resolving
// and caching them on first use.
func (r *Registry) Patterns(slug string) ([]string, bool) {
	slug = normalizeSlug(slug)

	r.mu.RLock()
	if cached, ok := r.patterns[slug]; ok {
		r.mu.RUnlock()
		return cached, true
	}
	fields, ok := r.collections[slug]
	r.mu.RUnlock()
	if !ok {
		return nil, false
	}

	resolved := TranslatablePaths(fields)

	r.mu.Lock()
	r.patterns[slug] = resolved
	r.mu.Unlock()
	return resolved, true
}

// Collections lists registered collection slugs in sorted order.
func (r *Registry) Collections() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.collections))
	for slug := range r.collections {
		out = append(out, slug)
	}
	sort.Strings(out)
	return out
}

func normalizeSlug(slug string) string {
	return strings.ToLower(strings.TrimSpace(slug))
}
