// Package review compares source fragments against existing locale content
// and produces per-locale diff reports with suggested translations.
package review

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/goliatone/go-localize/internal/fragments"
	"github.com/goliatone/go-localize/internal/lexical"
	"github.com/goliatone/go-localize/internal/logging"
	"github.com/goliatone/go-localize/pkg/interfaces"
)

var (
	ErrStoreRequired    = errors.New("review: document store is required")
	ErrProviderRequired = errors.New("review: translation provider is required")
	ErrNoLocales        = errors.New("review: at least one target locale is required")
)

// Mismatch describes a fragment whose existing translation is judged
// incomplete relative to the source.
type Mismatch struct {
	Index        int    `json:"index"`
	Path         string `json:"path"`
	DefaultText  string `json:"defaultText"`
	ExistingText string `json:"existingText"`
	Reason       string `json:"reason"`
}

// Suggestion is a machine-proposed translation for one fragment index. A
// reviewer may edit it before committing it as an override.
type Suggestion struct {
	Index int    `json:"index"`
	Text  string `json:"text"`
}

// LocaleReview is the diff report for one target locale.
type LocaleReview struct {
	Code             string       `json:"code"`
	ExistingCount    int          `json:"existingCount"`
	Mismatches       []Mismatch   `json:"mismatches"`
	Suggestions      []Suggestion `json:"suggestions"`
	TranslateIndexes []int        `json:"translateIndexes"`
}

// RequiresManualReview reports whether conflicting content exists: at least
// one mismatch alongside at least one pre-existing translated fragment.
// Gaps alone never require a human.
func (r LocaleReview) RequiresManualReview() bool {
	return len(r.Mismatches) > 0 && r.ExistingCount > 0
}

// Request captures one review run.
type Request struct {
	Collection   string
	DocumentID   string
	SourceLocale string
	Fragments    []fragments.Fragment
	Locales      []string
}

// Service runs translation reviews.
type Service struct {
	store       interfaces.DocumentStore
	provider    interfaces.TranslationProvider
	logger      interfaces.Logger
	chunkBudget int
	htmlBridge  bool
}

// Option configures the service at construction time.
type Option func(*Service)

// WithLogger attaches a review-scoped logger.
func WithLogger(logger interfaces.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithChunkBudget overrides the character budget per translation call.
func WithChunkBudget(budget int) Option {
	return func(s *Service) {
		if budget > 0 {
			s.chunkBudget = budget
		}
	}
}

// WithHTMLBridge toggles HTML-rendered context for rich-text candidates.
func WithHTMLBridge(enabled bool) Option {
	return func(s *Service) {
		s.htmlBridge = enabled
	}
}

// New constructs a review service.
func New(store interfaces.DocumentStore, provider interfaces.TranslationProvider, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, ErrStoreRequired
	}
	if provider == nil {
		return nil, ErrProviderRequired
	}
	s := &Service{
		store:       store,
		provider:    provider,
		logger:      logging.NoOp(),
		chunkBudget: fragments.DefaultChunkBudget,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

type candidate struct {
	index int
	text  string
}

// Run reviews every requested locale in order. A provider failure aborts the
// run; partial results are never returned because silently incomplete diffs
// would be committed by callers.
func (s *Service) Run(ctx context.Context, req Request) ([]LocaleReview, error) {
	if len(req.Locales) == 0 {
		return nil, ErrNoLocales
	}

	sourceDoc := s.loadSourceForContext(ctx, req)

	reviews := make([]LocaleReview, 0, len(req.Locales))
	for _, code := range req.Locales {
		result, err := s.reviewLocale(ctx, req, code, sourceDoc)
		if err != nil {
			return nil, fmt.Errorf("review locale %q: %w", code, err)
		}
		reviews = append(reviews, result)
	}
	return reviews, nil
}

func (s *Service) reviewLocale(ctx context.Context, req Request, code string, sourceDoc map[string]any) (LocaleReview, error) {
	result := LocaleReview{
		Code:             code,
		Mismatches:       []Mismatch{},
		Suggestions:      []Suggestion{},
		TranslateIndexes: []int{},
	}

	target, err := s.loadLocale(ctx, req.Collection, req.DocumentID, code)
	if err != nil {
		return result, err
	}

	candidates := make([]candidate, 0, len(req.Fragments))
	pairs := make([]interfaces.ClassificationPair, 0)
	for i, frag := range req.Fragments {
		existing := existingText(target, frag.Path)
		if existing == "" {
			candidates = append(candidates, candidate{index: i, text: s.candidateText(frag, sourceDoc)})
			continue
		}
		result.ExistingCount++
		pairs = append(pairs, interfaces.ClassificationPair{
			Index:          i,
			DefaultText:    readableText(frag),
			TranslatedText: existing,
		})
	}

	if len(pairs) > 0 {
		verdicts, err := s.provider.Classify(ctx, pairs, req.SourceLocale, code)
		if err != nil {
			return result, fmt.Errorf("classification failed: %w", err)
		}
		missing := make(map[int]interfaces.ClassificationResult, len(verdicts))
		for _, verdict := range verdicts {
			if verdict.Missing {
				missing[verdict.Index] = verdict
			}
		}
		for _, pair := range pairs {
			verdict, ok := missing[pair.Index]
			if !ok {
				continue
			}
			frag := req.Fragments[pair.Index]
			result.Mismatches = append(result.Mismatches, Mismatch{
				Index:        pair.Index,
				Path:         frag.Path,
				DefaultText:  pair.DefaultText,
				ExistingText: pair.TranslatedText,
				Reason:       verdict.Reason,
			})
			candidates = append(candidates, candidate{index: pair.Index, text: s.candidateText(frag, sourceDoc)})
		}
	}

	candidates = dedupeCandidates(candidates)
	for _, cand := range candidates {
		result.TranslateIndexes = append(result.TranslateIndexes, cand.index)
	}

	suggestions, err := s.translateCandidates(ctx, candidates, req.SourceLocale, code)
	if err != nil {
		return result, err
	}
	result.Suggestions = suggestions

	s.logger.Info("locale reviewed",
		"collection", req.Collection,
		"document", req.DocumentID,
		"locale", code,
		"existing", result.ExistingCount,
		"mismatches", len(result.Mismatches),
		"candidates", len(candidates),
	)
	return result, nil
}

func (s *Service) translateCandidates(ctx context.Context, candidates []candidate, from, to string) ([]Suggestion, error) {
	suggestions := make([]Suggestion, 0, len(candidates))
	for _, batch := range chunkCandidates(candidates, s.chunkBudget) {
		texts := make([]string, len(batch))
		for i, cand := range batch {
			texts[i] = cand.text
		}
		results, err := s.provider.Translate(ctx, interfaces.TranslateRequest{
			Texts:        texts,
			SourceLocale: from,
			TargetLocale: to,
		})
		if err != nil {
			return nil, fmt.Errorf("translation failed: %w", err)
		}
		if len(results) != len(batch) {
			return nil, fmt.Errorf("translation returned %d results for %d inputs", len(results), len(batch))
		}
		for i, text := range results {
			if strings.TrimSpace(text) == "" {
				continue
			}
			suggestions = append(suggestions, Suggestion{Index: batch[i].index, Text: text})
		}
	}
	return suggestions, nil
}

func (s *Service) loadLocale(ctx context.Context, collection, id, locale string) (map[string]any, error) {
	doc, err := s.store.FindByID(ctx, collection, id, locale)
	if err != nil {
		if errors.Is(err, interfaces.ErrDocumentNotFound) {
			return map[string]any{}, nil
		}
		return nil, err
	}
	if doc == nil || doc.Data == nil {
		return map[string]any{}, nil
	}
	return doc.Data, nil
}

// loadSourceForContext fetches the source document once when rich candidates
// may be rendered through the HTML bridge. Absence just disables the bridge.
func (s *Service) loadSourceForContext(ctx context.Context, req Request) map[string]any {
	if !s.htmlBridge {
		return nil
	}
	hasRich := false
	for _, frag := range req.Fragments {
		if frag.IsRich() {
			hasRich = true
			break
		}
	}
	if !hasRich {
		return nil
	}
	doc, err := s.store.FindByID(ctx, req.Collection, req.DocumentID, req.SourceLocale)
	if err != nil || doc == nil {
		return nil
	}
	return doc.Data
}

func (s *Service) candidateText(frag fragments.Fragment, sourceDoc map[string]any) string {
	if !frag.IsRich() {
		return frag.Text
	}
	if sourceDoc != nil {
		if value, ok := fragments.ValueAtPath(sourceDoc, frag.Path); ok && lexical.IsRichText(value) {
			rendered, err := lexical.ToHTML(value.(map[string]any))
			if err == nil && strings.TrimSpace(rendered) != "" {
				return rendered
			}
		}
	}
	// Ordinal markers are pipeline addressing, not content. A suggestion
	// built from the marked form would be committed verbatim as an
	// override, so the markers must come off before the provider sees it.
	return lexical.StripMarkers(frag.Text)
}

func existingText(doc map[string]any, path string) string {
	value, ok := fragments.ValueAtPath(doc, path)
	if !ok {
		return ""
	}
	if lexical.IsRichText(value) {
		return lexical.PlainText(value.(map[string]any))
	}
	if text, ok := value.(string); ok {
		return strings.TrimSpace(text)
	}
	return ""
}

func readableText(frag fragments.Fragment) string {
	if frag.IsRich() {
		return lexical.StripMarkers(frag.Text)
	}
	return frag.Text
}

func dedupeCandidates(candidates []candidate) []candidate {
	seen := make(map[int]struct{}, len(candidates))
	out := make([]candidate, 0, len(candidates))
	for _, cand := range candidates {
		if _, ok := seen[cand.index]; ok {
			continue
		}
		seen[cand.index] = struct{}{}
		out = append(out, cand)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].index < out[j].index })
	return out
}

func chunkCandidates(candidates []candidate, budget int) [][]candidate {
	if budget <= 0 {
		budget = fragments.DefaultChunkBudget
	}
	batches := make([][]candidate, 0)
	var current []candidate
	size := 0
	for _, cand := range candidates {
		length := len(cand.text)
		if len(current) > 0 && size+length > budget {
			batches = append(batches, current)
			current = nil
			size = 0
		}
		current = append(current, cand)
		size += length
	}
	if len(current) > 0 {
		batches = append(batches, current)
	}
	return batches
}
