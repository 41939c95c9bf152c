package localize_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	localize "github.com/goliatone/go-localize"
	"github.com/goliatone/go-localize/internal/store"
	"github.com/goliatone/go-localize/internal/translator"
)

func newModule(t *testing.T, provider *translator.Static) (*localize.Module, *store.MemoryDocumentStore) {
	t.Helper()

	cfg := localize.DefaultConfig()
	cfg.Locales = []string{"nl"}
	cfg.Provider.Name = "static"
	cfg.Collections = []localize.CollectionConfig{
		{
			Slug: "posts",
			Fields: []localize.Field{
				{Name: "title", Type: localize.FieldText, Localized: true},
				{Name: "sections", Type: localize.FieldBlocks, Localized: true, Blocks: []localize.Block{
					{Slug: "hero", Fields: []localize.Field{
						{Name: "headline", Type: localize.FieldText, Localized: true},
					}},
				}},
			},
		},
	}

	docs := store.NewMemoryDocumentStore()
	module, err := localize.New(cfg,
		localize.WithDocumentStore(docs),
		localize.WithTranslator(provider),
	)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := module.Bootstrap(context.Background()); err != nil {
		t.Fatalf("Bootstrap: %v", err)
	}
	return module, docs
}

func TestModuleTranslateRoundTrip(t *testing.T) {
	provider := &translator.Static{Mapping: map[string]string{
		"Hello":   "Hallo",
		"Welcome": "Welkom",
	}}
	module, docs := newModule(t, provider)

	docs.Seed("posts", "p1", "en", map[string]any{
		"title": "Hello",
		"sections": []any{
			map[string]any{"blockType": "hero", "id": "b1", "headline": "Welcome"},
		},
	})

	mux := http.NewServeMux()
	if err := module.RegisterRoutes(mux); err != nil {
		t.Fatalf("RegisterRoutes: %v", err)
	}

	body, _ := json.Marshal(map[string]any{
		"collection": "posts",
		"documentId": "p1",
		"locales":    []map[string]any{{"code": "nl"}},
	})
	req := httptest.NewRequest(http.MethodPost, "/localize/translate", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
	var last map[string]any
	if err := json.Unmarshal([]byte(lines[len(lines)-1]), &last); err != nil {
		t.Fatalf("decode last event: %v", err)
	}
	if last["type"] != "done" {
		t.Fatalf("expected terminal done event, got %v", last)
	}

	stored, err := docs.FindByID(context.Background(), "posts", "p1", "nl")
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if stored.Data["title"] != "Hallo" {
		t.Fatalf("expected translated title, got %v", stored.Data["title"])
	}
	sections := stored.Data["sections"].([]any)
	hero := sections[0].(map[string]any)
	if hero["headline"] != "Welkom" {
		t.Fatalf("expected translated headline, got %v", hero["headline"])
	}
	if hero["blockType"] != "hero" || hero["id"] != "b1" {
		t.Fatalf("expected structural fields preserved, got %+v", hero)
	}
}

func TestModuleSyncToggleGatesTranslate(t *testing.T) {
	module, _ := newModule(t, &translator.Static{})
	module.SettingsState().Apply(localize.Settings{SyncEnabled: false})

	mux := http.NewServeMux()
	if err := module.RegisterRoutes(mux); err != nil {
		t.Fatalf("RegisterRoutes: %v", err)
	}

	body, _ := json.Marshal(map[string]any{
		"collection": "posts",
		"documentId": "p1",
		"locales":    []map[string]any{{"code": "nl"}},
	})
	req := httptest.NewRequest(http.MethodPost, "/localize/translate", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
}
