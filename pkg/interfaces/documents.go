package interfaces

import (
	"context"
	"errors"
)

// ErrDocumentNotFound is returned by document stores when a locale variant
// does not exist. Callers in the translation pipeline tolerate absence and
// treat it as an empty document.
var ErrDocumentNotFound = errors.New("document not found")

// Document is one locale variant of a stored document.
type Document struct {
	Collection string         `json:"collection"`
	ID         string         `json:"id"`
	Locale     string         `json:"locale"`
	Data       map[string]any `json:"data"`
}

// DocumentStore abstracts the host CMS document storage. Update writes bypass
// normal access control; the pipeline is a trusted server-side operation.
type DocumentStore interface {
	FindByID(ctx context.Context, collection, id, locale string) (*Document, error)
	Find(ctx context.Context, collection, locale string, page, limit int) ([]Document, int, error)
	Update(ctx context.Context, collection, id, locale string, data map[string]any) error
	Count(ctx context.Context, collection string) (int, error)
}
