// Package bulk orchestrates translation sync across whole collections,
// reviewing and translating each document sequentially while streaming
// document-scoped events.
package bulk

import (
	"context"
	"errors"
	"fmt"

	"github.com/goliatone/go-slug"

	"github.com/goliatone/go-localize/internal/executor"
	"github.com/goliatone/go-localize/internal/fragments"
	"github.com/goliatone/go-localize/internal/logging"
	"github.com/goliatone/go-localize/internal/review"
	"github.com/goliatone/go-localize/internal/schema"
	"github.com/goliatone/go-localize/pkg/interfaces"
)

var (
	ErrStoreRequired    = errors.New("bulk: document store is required")
	ErrReviewRequired   = errors.New("bulk: review service is required")
	ErrExecutorRequired = errors.New("bulk: executor service is required")
	ErrRegistryRequired = errors.New("bulk: schema registry is required")
	ErrNoCollections    = errors.New("bulk: no collections requested")
)

// Event is one line of the bulk event stream. Executor events are wrapped
// with the collection and document they belong to.
type Event struct {
	Type       string `json:"type"`
	Collection string `json:"collection,omitempty"`
	Document   string `json:"document,omitempty"`
	Locale     string `json:"locale,omitempty"`
	Completed  int    `json:"completed,omitempty"`
	Total      int    `json:"total,omitempty"`
	Message    string `json:"message,omitempty"`
	Summary    *Tally `json:"summary,omitempty"`
}

// Tally aggregates document outcomes.
type Tally struct {
	Processed int `json:"processed"`
	Skipped   int `json:"skipped"`
	Failed    int `json:"failed"`
}

// Event types emitted in addition to the wrapped executor kinds.
const (
	EventCollectionStart    = "collection_start"
	EventCollectionComplete = "collection_complete"
	EventLog                = "log"
	EventSummary            = "summary"
)

// Sink receives events in order; an error stops the run.
type Sink func(Event) error

// Service iterates collections and documents sequentially. There is no
// concurrent document processing; the single ordered stream and low memory
// footprint are deliberate.
type Service struct {
	store        interfaces.DocumentStore
	reviewer     *review.Service
	runner       *executor.Service
	registry     *schema.Registry
	logger       interfaces.Logger
	sourceLocale string
	locales      []string
	chunkBudget  int
	budgetSource func() int
	pageSize     int
	normalizer   slug.Normalizer
}

// Option configures the service at construction time.
type Option func(*Service)

// WithLogger attaches a bulk-scoped logger.
func WithLogger(logger interfaces.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithChunkBudget overrides the character budget used to batch fragments.
func WithChunkBudget(budget int) Option {
	return func(s *Service) {
		if budget > 0 {
			s.chunkBudget = budget
		}
	}
}

// WithBudgetSource resolves the chunk budget per run so live settings can
// override the configured value. Non-positive resolutions fall back to the
// configured budget.
func WithBudgetSource(source func() int) Option {
	return func(s *Service) {
		s.budgetSource = source
	}
}

// WithPageSize overrides the document page size used while iterating.
func WithPageSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.pageSize = size
		}
	}
}

// Config captures the locale topology for bulk runs.
type Config struct {
	SourceLocale string
	Locales      []string
}

// New constructs a bulk orchestrator.
func New(store interfaces.DocumentStore, reviewer *review.Service, runner *executor.Service, registry *schema.Registry, cfg Config, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, ErrStoreRequired
	}
	if reviewer == nil {
		return nil, ErrReviewRequired
	}
	if runner == nil {
		return nil, ErrExecutorRequired
	}
	if registry == nil {
		return nil, ErrRegistryRequired
	}
	s := &Service{
		store:        store,
		reviewer:     reviewer,
		runner:       runner,
		registry:     registry,
		logger:       logging.NoOp(),
		sourceLocale: cfg.SourceLocale,
		locales:      append([]string(nil), cfg.Locales...),
		chunkBudget:  fragments.DefaultChunkBudget,
		pageSize:     25,
		normalizer:   slug.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Run processes the requested collections in order. The context cancels the
// loop between documents, never mid-document. The returned error is non-nil
// only when the sink fails.
func (s *Service) Run(ctx context.Context, collections []string, emit Sink) error {
	slugs := s.normalizeCollections(collections)
	if len(slugs) == 0 {
		return emit(Event{Type: EventLog, Message: ErrNoCollections.Error()})
	}

	tally := Tally{}
	for _, collection := range slugs {
		if err := ctx.Err(); err != nil {
			break
		}
		if err := emit(Event{Type: EventCollectionStart, Collection: collection}); err != nil {
			return err
		}
		if sinkErr := s.runCollection(ctx, collection, &tally, emit); sinkErr != nil {
			return sinkErr
		}
		if err := emit(Event{Type: EventCollectionComplete, Collection: collection}); err != nil {
			return err
		}
	}

	return emit(Event{Type: EventSummary, Summary: &tally})
}

func (s *Service) runCollection(ctx context.Context, collection string, tally *Tally, emit Sink) error {
	patterns, ok := s.registry.Patterns(collection)
	if !ok {
		return emit(Event{Type: EventLog, Collection: collection, Message: "collection has no registered schema, skipping"})
	}
	if len(patterns) == 0 {
		return emit(Event{Type: EventLog, Collection: collection, Message: "collection has no translatable fields, skipping"})
	}

	page := 1
	for {
		if err := ctx.Err(); err != nil {
			return nil
		}
		docs, total, err := s.store.Find(ctx, collection, s.sourceLocale, page, s.pageSize)
		if err != nil {
			tally.Failed++
			return emit(Event{Type: EventLog, Collection: collection, Message: fmt.Sprintf("list documents: %v", err)})
		}
		if len(docs) == 0 {
			return nil
		}

		for _, doc := range docs {
			if err := ctx.Err(); err != nil {
				return nil
			}
			if sinkErr := s.runDocument(ctx, collection, doc, patterns, tally, emit); sinkErr != nil {
				return sinkErr
			}
		}

		if page*s.pageSize >= total {
			return nil
		}
		page++
	}
}

func (s *Service) runDocument(ctx context.Context, collection string, doc interfaces.Document, patterns []string, tally *Tally, emit Sink) error {
	frags := fragments.Extract(doc.Data, patterns)
	if len(frags) == 0 {
		return nil
	}

	reviews, err := s.reviewer.Run(ctx, review.Request{
		Collection:   collection,
		DocumentID:   doc.ID,
		SourceLocale: s.sourceLocale,
		Fragments:    frags,
		Locales:      s.locales,
	})
	if err != nil {
		tally.Failed++
		s.logger.Error("document review failed", "collection", collection, "document", doc.ID, "error", err)
		return emit(Event{Type: EventLog, Collection: collection, Document: doc.ID, Message: fmt.Sprintf("review failed: %v", err)})
	}

	selections := make([]executor.LocaleSelection, 0, len(reviews))
	for _, result := range reviews {
		if result.RequiresManualReview() {
			tally.Skipped++
			return emit(Event{
				Type:       EventLog,
				Collection: collection,
				Document:   doc.ID,
				Locale:     result.Code,
				Message:    "conflicting translations found, skipping document for manual review",
			})
		}
		if selection, ok := buildSelection(result, frags, s.budget()); ok {
			selections = append(selections, selection)
		}
	}
	if len(selections) == 0 {
		tally.Processed++
		return nil
	}

	failed := false
	sinkErr := s.runner.Run(ctx, executor.Request{
		Collection:   collection,
		DocumentID:   doc.ID,
		SourceLocale: s.sourceLocale,
		Locales:      selections,
	}, func(event executor.Event) error {
		if event.Type == executor.EventDone {
			return nil
		}
		if event.Type == executor.EventError {
			failed = true
		}
		return emit(Event{
			Type:       string(event.Type),
			Collection: collection,
			Document:   doc.ID,
			Locale:     event.Locale,
			Completed:  event.Completed,
			Total:      event.Total,
			Message:    event.Message,
		})
	})
	if sinkErr != nil {
		return sinkErr
	}

	if failed {
		tally.Failed++
	} else {
		tally.Processed++
	}
	return nil
}

// buildSelection splits a review result into machine-translation chunks and
// verbatim overrides. Indexes with a suggestion become overrides; the rest
// are chunked for translation, keeping the two sets disjoint.
func buildSelection(result review.LocaleReview, frags []fragments.Fragment, budget int) (executor.LocaleSelection, bool) {
	suggested := make(map[int]string, len(result.Suggestions))
	for _, suggestion := range result.Suggestions {
		suggested[suggestion.Index] = suggestion.Text
	}

	overrides := make([]executor.Override, 0, len(result.Suggestions))
	toTranslate := make([]fragments.Fragment, 0)
	for _, index := range result.TranslateIndexes {
		if index < 0 || index >= len(frags) {
			continue
		}
		frag := frags[index]
		if text, ok := suggested[index]; ok {
			overrides = append(overrides, executor.Override{Path: frag.Path, Text: text, Rich: frag.IsRich()})
			continue
		}
		toTranslate = append(toTranslate, frag)
	}

	selection := executor.LocaleSelection{
		Code:      result.Code,
		Chunks:    fragments.Chunk(toTranslate, budget),
		Overrides: overrides,
	}
	if len(selection.Overrides) == 0 && len(selection.Chunks) == 0 {
		return executor.LocaleSelection{}, false
	}
	return selection, true
}

func (s *Service) budget() int {
	if s.budgetSource != nil {
		if budget := s.budgetSource(); budget > 0 {
			return budget
		}
	}
	return s.chunkBudget
}

func (s *Service) normalizeCollections(collections []string) []string {
	out := make([]string, 0, len(collections))
	seen := make(map[string]struct{}, len(collections))
	for _, candidate := range collections {
		normalized, err := s.normalizer.Normalize(candidate)
		if err != nil || normalized == "" {
			continue
		}
		if _, ok := seen[normalized]; ok {
			continue
		}
		seen[normalized] = struct{}{}
		out = append(out, normalized)
	}
	return out
}
