package store

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-localize/pkg/interfaces"
)

func newDocumentTestDB(t *testing.T) *bun.DB {
	t.Helper()

	sqldb, err := sql.Open("sqlite3", "file:localize_documents_test?mode=memory&cache=shared&_fk=1")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = sqldb.Close() })

	db := NewSQLiteDB(sqldb)
	t.Cleanup(func() { _ = db.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := db.NewCreateTable().Model((*documentModel)(nil)).IfNotExists().Exec(ctx); err != nil {
		t.Fatalf("create documents table: %v", err)
	}
	if _, err := db.NewCreateTable().Model((*Locale)(nil)).IfNotExists().Exec(ctx); err != nil {
		t.Fatalf("create locales table: %v", err)
	}
	return db
}

func TestBunDocumentStoreRoundTrip(t *testing.T) {
	db := newDocumentTestDB(t)
	repo := NewBunDocumentStore(db)
	ctx := context.Background()

	if _, err := repo.FindByID(ctx, "posts", "p1", "en"); !errors.Is(err, interfaces.ErrDocumentNotFound) {
		t.Fatalf("expected ErrDocumentNotFound, got %v", err)
	}

	data := map[string]any{"title": "Hello", "sections": []any{map[string]any{"blockType": "hero"}}}
	if err := repo.Update(ctx, "posts", "p1", "en", data); err != nil {
		t.Fatalf("Update: %v", err)
	}

	doc, err := repo.FindByID(ctx, "posts", "p1", "en")
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if doc.Data["title"] != "Hello" {
		t.Fatalf("unexpected data: %+v", doc.Data)
	}

	// Upserting the same identity updates in place.
	data["title"] = "Hello again"
	if err := repo.Update(ctx, "posts", "p1", "en", data); err != nil {
		t.Fatalf("Update (upsert): %v", err)
	}
	doc, err = repo.FindByID(ctx, "posts", "p1", "en")
	if err != nil {
		t.Fatalf("FindByID after upsert: %v", err)
	}
	if doc.Data["title"] != "Hello again" {
		t.Fatalf("expected upserted data, got %+v", doc.Data)
	}

	count, err := repo.Count(ctx, "posts")
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected one distinct document, got %d", count)
	}
}

func TestBunDocumentStorePagination(t *testing.T) {
	db := newDocumentTestDB(t)
	repo := NewBunDocumentStore(db)
	ctx := context.Background()

	for _, id := range []string{"a1", "b2", "c3"} {
		if err := repo.Update(ctx, "posts", id, "en", map[string]any{"title": id}); err != nil {
			t.Fatalf("Update %s: %v", id, err)
		}
	}

	docs, total, err := repo.Find(ctx, "posts", "en", 1, 2)
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if total != 3 || len(docs) != 2 {
		t.Fatalf("expected 2 of 3 documents, got %d of %d", len(docs), total)
	}
	if docs[0].ID != "a1" || docs[1].ID != "b2" {
		t.Fatalf("expected ordered page, got %+v", docs)
	}

	docs, _, err = repo.Find(ctx, "posts", "en", 2, 2)
	if err != nil {
		t.Fatalf("Find page 2: %v", err)
	}
	if len(docs) != 1 || docs[0].ID != "c3" {
		t.Fatalf("unexpected second page: %+v", docs)
	}
}

func TestLocaleServiceSeedsAndLists(t *testing.T) {
	db := newDocumentTestDB(t)
	service := NewLocaleService(NewLocaleRepository(db))
	ctx := context.Background()

	if err := service.EnsureSeeded(ctx, []string{"en", "NL", "nl", ""}); err != nil {
		t.Fatalf("EnsureSeeded: %v", err)
	}

	codes, err := service.Codes(ctx)
	if err != nil {
		t.Fatalf("Codes: %v", err)
	}
	if len(codes) != 2 {
		t.Fatalf("expected two locales, got %v", codes)
	}

	// Seeding again is idempotent.
	if err := service.EnsureSeeded(ctx, []string{"en", "nl"}); err != nil {
		t.Fatalf("EnsureSeeded (repeat): %v", err)
	}
	codes, err = service.Codes(ctx)
	if err != nil {
		t.Fatalf("Codes after reseed: %v", err)
	}
	if len(codes) != 2 {
		t.Fatalf("expected reseed to be idempotent, got %v", codes)
	}
}
