package executor_test

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/goliatone/go-localize/internal/executor"
	"github.com/goliatone/go-localize/internal/fragments"
	"github.com/goliatone/go-localize/internal/lexical"
	"github.com/goliatone/go-localize/internal/store"
	"github.com/goliatone/go-localize/internal/translator"
	"github.com/goliatone/go-localize/pkg/interfaces"
)

func collect(t *testing.T) (executor.Sink, *[]executor.Event) {
	t.Helper()
	events := &[]executor.Event{}
	return func(event executor.Event) error {
		*events = append(*events, event)
		return nil
	}, events
}

func singleChunk(frags ...fragments.Fragment) [][]fragments.Fragment {
	return [][]fragments.Fragment{frags}
}

func TestRunTranslatesSingleDocument(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemoryDocumentStore()
	mem.Seed("posts", "p1", "en", map[string]any{"title": "Hello world"})

	provider := &translator.Static{Mapping: map[string]string{"Hello world": "Hallo wereld"}}
	svc, err := executor.New(mem, provider)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	sink, events := collect(t)
	err = svc.Run(ctx, executor.Request{
		Collection:   "posts",
		DocumentID:   "p1",
		SourceLocale: "en",
		Locales: []executor.LocaleSelection{{
			Code:   "nl",
			Chunks: singleChunk(fragments.Fragment{Path: "title", Text: "Hello world"}),
		}},
	}, sink)
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	want := []executor.Event{
		{Type: executor.EventProgress, Locale: "nl", Completed: 1, Total: 1},
		{Type: executor.EventApplied, Locale: "nl"},
		{Type: executor.EventDone},
	}
	if !reflect.DeepEqual(*events, want) {
		t.Fatalf("unexpected events:\n got %#v\nwant %#v", *events, want)
	}

	doc, err := mem.FindByID(ctx, "posts", "p1", "nl")
	if err != nil {
		t.Fatalf("locale document missing: %v", err)
	}
	if doc.Data["title"] != "Hallo wereld" {
		t.Fatalf("unexpected stored data: %#v", doc.Data)
	}
}

func TestRunPreservesBlockDiscriminator(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemoryDocumentStore()
	mem.Seed("pages", "home", "en", map[string]any{
		"sections": []any{
			map[string]any{"blockType": "hero", "title": "Hello world"},
		},
	})

	provider := &translator.Static{Mapping: map[string]string{"Hello world": "Hallo wereld"}}
	svc, _ := executor.New(mem, provider)

	sink, _ := collect(t)
	if err := svc.Run(ctx, executor.Request{
		Collection:   "pages",
		DocumentID:   "home",
		SourceLocale: "en",
		Locales: []executor.LocaleSelection{{
			Code:   "nl",
			Chunks: singleChunk(fragments.Fragment{Path: "sections[0].title", Text: "Hello world"}),
		}},
	}, sink); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	doc, _ := mem.FindByID(ctx, "pages", "home", "nl")
	element := doc.Data["sections"].([]any)[0].(map[string]any)
	if element["blockType"] != "hero" {
		t.Fatalf("expected discriminator preserved, got %#v", element)
	}
	if element["title"] != "Hallo wereld" {
		t.Fatalf("expected translated title, got %#v", element)
	}
}

func TestRunCountMismatchIsFatal(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemoryDocumentStore()
	mem.Seed("posts", "p1", "en", map[string]any{"title": "Hello", "summary": "World"})

	provider := &translator.Static{DropLast: true}
	svc, _ := executor.New(mem, provider)

	sink, events := collect(t)
	err := svc.Run(ctx, executor.Request{
		Collection:   "posts",
		DocumentID:   "p1",
		SourceLocale: "en",
		Locales: []executor.LocaleSelection{
			{
				Code: "nl",
				Chunks: singleChunk(
					fragments.Fragment{Path: "title", Text: "Hello"},
					fragments.Fragment{Path: "summary", Text: "World"},
				),
			},
			{
				Code:   "de",
				Chunks: singleChunk(fragments.Fragment{Path: "title", Text: "Hello"}),
			},
		},
	}, sink)
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	errorCount, appliedCount := 0, 0
	for _, event := range *events {
		switch event.Type {
		case executor.EventError:
			errorCount++
		case executor.EventApplied:
			appliedCount++
		case executor.EventDone:
			t.Fatalf("done event must not follow a fatal contract mismatch")
		}
	}
	if errorCount != 1 || appliedCount != 0 {
		t.Fatalf("expected exactly one error and no applied events, got %#v", *events)
	}

	// No locale write happened, and the de locale never started.
	if _, err := mem.FindByID(ctx, "posts", "p1", "nl"); !errors.Is(err, interfaces.ErrDocumentNotFound) {
		t.Fatalf("store must not be updated on contract mismatch")
	}
	if _, err := mem.FindByID(ctx, "posts", "p1", "de"); !errors.Is(err, interfaces.ErrDocumentNotFound) {
		t.Fatalf("later locales must not run after a fatal mismatch")
	}
}

func TestRunRejectsEmptySelection(t *testing.T) {
	mem := store.NewMemoryDocumentStore()
	svc, _ := executor.New(mem, &translator.Static{})

	sink, events := collect(t)
	if err := svc.Run(context.Background(), executor.Request{
		Collection:   "posts",
		DocumentID:   "p1",
		SourceLocale: "en",
		Locales:      []executor.LocaleSelection{{Code: "nl"}},
	}, sink); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	if len(*events) != 1 || (*events)[0].Type != executor.EventError {
		t.Fatalf("expected a single error event, got %#v", *events)
	}
}

func TestRunMissingSourceDocumentAborts(t *testing.T) {
	mem := store.NewMemoryDocumentStore()
	svc, _ := executor.New(mem, &translator.Static{})

	sink, events := collect(t)
	if err := svc.Run(context.Background(), executor.Request{
		Collection:   "posts",
		DocumentID:   "missing",
		SourceLocale: "en",
		Locales: []executor.LocaleSelection{{
			Code:   "nl",
			Chunks: singleChunk(fragments.Fragment{Path: "title", Text: "Hello"}),
		}},
	}, sink); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	if len(*events) != 1 || (*events)[0].Type != executor.EventError {
		t.Fatalf("expected only an error event, got %#v", *events)
	}
}

func TestRunRichTextReassembly(t *testing.T) {
	ctx := context.Background()
	body := map[string]any{
		"root": map[string]any{
			"type":    "root",
			"version": 1,
			"children": []any{
				map[string]any{
					"type":    "paragraph",
					"version": 1,
					"children": []any{
						map[string]any{"type": "text", "version": 1, "text": "Hello"},
						map[string]any{"type": "text", "version": 1, "text": "world"},
					},
				},
			},
		},
	}
	mem := store.NewMemoryDocumentStore()
	mem.Seed("posts", "p1", "en", map[string]any{"body": body})

	provider := &translator.Static{Mapping: map[string]string{"Hello": "Hallo", "world": "wereld"}}
	svc, _ := executor.New(mem, provider)

	serialized, _ := lexical.Serialize(body)
	sink, _ := collect(t)
	if err := svc.Run(ctx, executor.Request{
		Collection:   "posts",
		DocumentID:   "p1",
		SourceLocale: "en",
		Locales: []executor.LocaleSelection{{
			Code:   "nl",
			Chunks: singleChunk(fragments.Fragment{Path: "body", Text: serialized.Text, Kind: fragments.KindRich}),
		}},
	}, sink); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	// One segment per leaf went out in one call.
	if len(provider.Calls) != 1 || len(provider.Calls[0]) != 2 {
		t.Fatalf("expected one batch of two segments, got %#v", provider.Calls)
	}

	doc, _ := mem.FindByID(ctx, "posts", "p1", "nl")
	rebuilt := doc.Data["body"].(map[string]any)
	if got := lexical.LeafTexts(rebuilt); !reflect.DeepEqual(got, []string{"Hallo", "wereld"}) {
		t.Fatalf("unexpected rich leaves: %#v", got)
	}
	if lexical.CountLeaves(rebuilt) != 2 {
		t.Fatalf("structure not preserved")
	}
}

func TestRunAppliesOverrides(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemoryDocumentStore()
	mem.Seed("posts", "p1", "en", map[string]any{"title": "Hello", "body": map[string]any{}})

	svc, _ := executor.New(mem, &translator.Static{})

	sink, events := collect(t)
	if err := svc.Run(ctx, executor.Request{
		Collection:   "posts",
		DocumentID:   "p1",
		SourceLocale: "en",
		Locales: []executor.LocaleSelection{{
			Code: "nl",
			Overrides: []executor.Override{
				{Path: "title", Text: "Handmatige titel"},
				{Path: "body", Text: "<p>Handmatige tekst</p>", Rich: true},
			},
		}},
	}, sink); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	progress := 0
	for _, event := range *events {
		if event.Type == executor.EventProgress {
			progress++
		}
	}
	if progress != 2 {
		t.Fatalf("expected one progress event per override, got %d", progress)
	}

	doc, _ := mem.FindByID(ctx, "posts", "p1", "nl")
	if doc.Data["title"] != "Handmatige titel" {
		t.Fatalf("plain override not applied: %#v", doc.Data)
	}
	rich, ok := doc.Data["body"].(map[string]any)
	if !ok || !lexical.IsRichText(rich) {
		t.Fatalf("rich override must pass through HTML bridge, got %#v", doc.Data["body"])
	}
	if got := lexical.PlainText(rich); got != "Handmatige tekst" {
		t.Fatalf("unexpected rich override text: %q", got)
	}
}

func TestRunStripsIdentityFields(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemoryDocumentStore()
	mem.Seed("posts", "p1", "en", map[string]any{"title": "Hello"})
	mem.Seed("posts", "p1", "nl", map[string]any{"id": "row-1", "createdAt": "x", "title": "oud"})

	provider := &translator.Static{Prefix: "nl:"}
	svc, _ := executor.New(mem, provider)

	sink, _ := collect(t)
	if err := svc.Run(ctx, executor.Request{
		Collection:   "posts",
		DocumentID:   "p1",
		SourceLocale: "en",
		Locales: []executor.LocaleSelection{{
			Code:   "nl",
			Chunks: singleChunk(fragments.Fragment{Path: "title", Text: "Hello"}),
		}},
	}, sink); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	doc, _ := mem.FindByID(ctx, "posts", "p1", "nl")
	if _, ok := doc.Data["id"]; ok {
		t.Fatalf("identity fields must be stripped before persisting: %#v", doc.Data)
	}
	if doc.Data["title"] != "nl:Hello" {
		t.Fatalf("unexpected title: %#v", doc.Data)
	}
}

func TestRunStopsWhenSinkSevered(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemoryDocumentStore()
	mem.Seed("posts", "p1", "en", map[string]any{"title": "Hello"})

	svc, _ := executor.New(mem, &translator.Static{})

	severed := errors.New("client went away")
	calls := 0
	err := svc.Run(ctx, executor.Request{
		Collection:   "posts",
		DocumentID:   "p1",
		SourceLocale: "en",
		Locales: []executor.LocaleSelection{{
			Code:   "nl",
			Chunks: singleChunk(fragments.Fragment{Path: "title", Text: "Hello"}),
		}},
	}, func(executor.Event) error {
		calls++
		return severed
	})
	if !errors.Is(err, severed) {
		t.Fatalf("expected sink error to propagate, got %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected emission to stop after sink failure, got %d calls", calls)
	}
}

func TestRunRichOverrideStripsMarkers(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemoryDocumentStore()
	mem.Seed("posts", "p1", "en", map[string]any{"body": map[string]any{}})

	svc, _ := executor.New(mem, &translator.Static{})

	sink, _ := collect(t)
	if err := svc.Run(ctx, executor.Request{
		Collection:   "posts",
		DocumentID:   "p1",
		SourceLocale: "en",
		Locales: []executor.LocaleSelection{{
			Code: "nl",
			Overrides: []executor.Override{
				{Path: "body", Text: "NL:[[LEX-0]]Hello world[[/LEX-0]]", Rich: true},
			},
		}},
	}, sink); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	doc, _ := mem.FindByID(ctx, "posts", "p1", "nl")
	rich, ok := doc.Data["body"].(map[string]any)
	if !ok || !lexical.IsRichText(rich) {
		t.Fatalf("expected a rich tree, got %#v", doc.Data["body"])
	}
	if got := lexical.PlainText(rich); got != "NL:Hello world" {
		t.Fatalf("ordinal markers must never be persisted, got %q", got)
	}
}
