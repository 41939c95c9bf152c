package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/goliatone/go-localize/pkg/interfaces"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// ErrDatabaseRequired is returned when a Bun store is constructed or used
// without a database handle.
var ErrDatabaseRequired = errors.New("store: bun document store requires a database")

type documentModel struct {
	bun.BaseModel `bun:"table:localize_documents,alias:doc"`

	ID         uuid.UUID       `bun:"id,pk,type:uuid"`
	Collection string          `bun:"collection,notnull,unique:localize_documents_identity"`
	DocumentID string          `bun:"document_id,notnull,unique:localize_documents_identity"`
	Locale     string          `bun:"locale,notnull,unique:localize_documents_identity"`
	Data       json.RawMessage `bun:"data,type:jsonb"`
	CreatedAt  time.Time       `bun:"created_at,notnull"`
	UpdatedAt  time.Time       `bun:"updated_at,notnull"`
}

// BunDocumentStore persists locale documents in a Bun-managed table, one row
// per (collection, document, locale). Writes are last-write-wins; the
// pipeline performs no optimistic concurrency checks by design.
type BunDocumentStore struct {
	db *bun.DB
}

var _ interfaces.DocumentStore = (*BunDocumentStore)(nil)

// NewBunDocumentStore constructs a Bun-backed document store.
func NewBunDocumentStore(db *bun.DB) *BunDocumentStore {
	return &BunDocumentStore{db: db}
}

// FindByID returns one locale variant, or ErrDocumentNotFound.
func (r *BunDocumentStore) FindByID(ctx context.Context, collection, id, locale string) (*interfaces.Document, error) {
	if r.db == nil {
		return nil, ErrDatabaseRequired
	}
	var model documentModel
	err := r.db.NewSelect().
		Model(&model).
		Where("collection = ?", collection).
		Where("document_id = ?", id).
		Where("locale = ?", locale).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, interfaces.ErrDocumentNotFound
		}
		return nil, err
	}
	return modelToDocument(&model)
}

// Find pages through a collection's documents for one locale, ordered by
// document identifier so pagination is stable across calls.
func (r *BunDocumentStore) Find(ctx context.Context, collection, locale string, page, limit int) ([]interfaces.Document, int, error) {
	if r.db == nil {
		return nil, 0, ErrDatabaseRequired
	}
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}

	var models []documentModel
	total, err := r.db.NewSelect().
		Model(&models).
		Where("collection = ?", collection).
		Where("locale = ?", locale).
		Order("document_id ASC").
		Limit(limit).
		Offset((page-1)*limit).
		ScanAndCount(ctx)
	if err != nil {
		return nil, 0, err
	}

	out := make([]interfaces.Document, 0, len(models))
	for i := range models {
		doc, err := modelToDocument(&models[i])
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *doc)
	}
	return out, total, nil
}

// Update upserts a locale variant. The write bypasses host access control;
// callers are trusted server-side components.
func (r *BunDocumentStore) Update(ctx context.Context, collection, id, locale string, data map[string]any) error {
	if r.db == nil {
		return ErrDatabaseRequired
	}

	payload, err := json.Marshal(data)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	model := documentModel{
		ID:         uuid.New(),
		Collection: collection,
		DocumentID: id,
		Locale:     locale,
		Data:       payload,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	_, err = r.db.NewInsert().
		Model(&model).
		On("CONFLICT (collection, document_id, locale) DO UPDATE").
		Set("data = EXCLUDED.data").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	return err
}

// Count returns the number of distinct documents in a collection across all
// locales.
func (r *BunDocumentStore) Count(ctx context.Context, collection string) (int, error) {
	if r.db == nil {
		return 0, ErrDatabaseRequired
	}
	return r.db.NewSelect().
		Model((*documentModel)(nil)).
		ColumnExpr("DISTINCT document_id").
		Where("collection = ?", collection).
		Count(ctx)
}

func modelToDocument(model *documentModel) (*interfaces.Document, error) {
	data := map[string]any{}
	if len(model.Data) > 0 {
		if err := json.Unmarshal(model.Data, &data); err != nil {
			return nil, err
		}
	}
	return &interfaces.Document{
		Collection: model.Collection,
		ID:         model.DocumentID,
		Locale:     model.Locale,
		Data:       data,
	}, nil
}
