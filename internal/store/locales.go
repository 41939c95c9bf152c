package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/goliatone/go-repository-cache/cache"
	repositorycache "github.com/goliatone/go-repository-cache/repositorycache"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Locale is a registered target language for translation sync.
type Locale struct {
	bun.BaseModel `bun:"table:localize_locales,alias:locale"`

	ID        uuid.UUID `bun:"id,pk,type:uuid" json:"id"`
	Code      string    `bun:"code,notnull,unique" json:"code"`
	Display   string    `bun:"display" json:"display"`
	CreatedAt time.Time `bun:"created_at,notnull" json:"created_at"`
	UpdatedAt time.Time `bun:"updated_at,notnull" json:"updated_at"`
}

// NotFoundError reports a missing record from repository lookups.
type NotFoundError struct {
	Resource string
	Key      string
}

func (e *NotFoundError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("%s not found", e.Resource)
	}
	return fmt.Sprintf("%s %q not found", e.Resource, e.Key)
}

// NewLocaleRepository builds the locale registry repository.
func NewLocaleRepository(db *bun.DB) repository.Repository[*Locale] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*Locale]{
		NewRecord: func() *Locale { return &Locale{} },
		GetID: func(l *Locale) uuid.UUID {
			return l.ID
		},
		SetID: func(l *Locale, id uuid.UUID) {
			l.ID = id
		},
		GetIdentifier: func() string {
			return "code"
		},
		GetIdentifierValue: func(l *Locale) string {
			return l.Code
		},
	})
}

// NewLocaleRepositoryWithCache wraps the locale repository with a read cache
// when both cache collaborators are supplied.
func NewLocaleRepositoryWithCache(db *bun.DB, cacheService cache.CacheService, keySerializer cache.KeySerializer) repository.Repository[*Locale] {
	base := NewLocaleRepository(db)
	if cacheService == nil || keySerializer == nil {
		return base
	}
	return repositorycache.New(base, cacheService, keySerializer)
}

// LocaleService resolves and seeds the registered target locales.
type LocaleService struct {
	repo repository.Repository[*Locale]
}

// NewLocaleService wraps a locale repository.
func NewLocaleService(repo repository.Repository[*Locale]) *LocaleService {
	return &LocaleService{repo: repo}
}

// Codes lists registered locale codes, lower-cased and deduplicated.
func (s *LocaleService) Codes(ctx context.Context) ([]string, error) {
	records, _, err := s.repo.List(ctx)
	if err != nil {
		return nil, mapRepositoryError(err, "locales", "")
	}
	seen := make(map[string]struct{}, len(records))
	codes := make([]string, 0, len(records))
	for _, record := range records {
		code := strings.ToLower(strings.TrimSpace(record.Code))
		if code == "" {
			continue
		}
		if _, ok := seen[code]; ok {
			continue
		}
		seen[code] = struct{}{}
		codes = append(codes, code)
	}
	return codes, nil
}

// EnsureSeeded creates registry rows for any configured codes not yet stored.
func (s *LocaleService) EnsureSeeded(ctx context.Context, codes []string) error {
	existing, err := s.Codes(ctx)
	if err != nil {
		return err
	}
	known := make(map[string]struct{}, len(existing))
	for _, code := range existing {
		known[code] = struct{}{}
	}

	now := time.Now().UTC()
	for _, code := range codes {
		normalized := strings.ToLower(strings.TrimSpace(code))
		if normalized == "" {
			continue
		}
		if _, ok := known[normalized]; ok {
			continue
		}
		record := &Locale{
			ID:        uuid.New(),
			Code:      normalized,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if _, err := s.repo.Create(ctx, record); err != nil {
			return mapRepositoryError(err, "locale", normalized)
		}
		known[normalized] = struct{}{}
	}
	return nil
}

func mapRepositoryError(err error, resource, key string) error {
	if err == nil {
		return nil
	}
	if goerrors.IsCategory(err, repository.CategoryDatabaseNotFound) {
		return &NotFoundError{Resource: resource, Key: key}
	}
	return fmt.Errorf("%s repository error: %w", resource, err)
}
