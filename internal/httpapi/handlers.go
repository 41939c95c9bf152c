package httpapi

import (
	"encoding/json"
	"net/http"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/goliatone/go-localize/internal/bulk"
	"github.com/goliatone/go-localize/internal/executor"
	"github.com/goliatone/go-localize/internal/fragments"
	"github.com/goliatone/go-localize/internal/review"
)

type reviewItemPayload struct {
	Path    string `json:"path"`
	Text    string `json:"text"`
	Lexical bool   `json:"lexical,omitempty"`
}

type reviewPayload struct {
	Collection string              `json:"collection"`
	DocumentID string              `json:"documentId"`
	From       string              `json:"from,omitempty"`
	Items      []reviewItemPayload `json:"items,omitempty"`
	Locales    []string            `json:"locales,omitempty"`
}

func (p reviewPayload) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Collection, validation.Required),
		validation.Field(&p.DocumentID, validation.Required),
	)
}

type overridePayload struct {
	Path string `json:"path"`
	Text string `json:"text"`
}

type translateLocalePayload struct {
	Code      string            `json:"code"`
	Indexes   []int             `json:"indexes,omitempty"`
	Overrides []overridePayload `json:"overrides,omitempty"`
}

type translatePayload struct {
	Collection string                   `json:"collection"`
	DocumentID string                   `json:"documentId"`
	From       string                   `json:"from,omitempty"`
	Locales    []translateLocalePayload `json:"locales"`
}

func (p translatePayload) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Collection, validation.Required),
		validation.Field(&p.DocumentID, validation.Required),
		validation.Field(&p.Locales, validation.Required, validation.By(func(any) error {
			for _, locale := range p.Locales {
				if locale.Code == "" {
					return validation.NewError("localize.translate.locale_code_required", "locale code is required")
				}
			}
			return nil
		})),
	)
}

type bulkPayload struct {
	Collections []string `json:"collections,omitempty"`
}

type fragmentResponse struct {
	Index int    `json:"index"`
	Path  string `json:"path"`
	Kind  string `json:"kind"`
	Text  string `json:"text"`
}

type mismatchResponse struct {
	Index        int    `json:"index"`
	Path         string `json:"path"`
	DefaultText  string `json:"defaultText"`
	ExistingText string `json:"existingText"`
	Reason       string `json:"reason,omitempty"`
}

type suggestionResponse struct {
	Index int    `json:"index"`
	Text  string `json:"text"`
}

type localeReviewResponse struct {
	Code                 string               `json:"code"`
	ExistingCount        int                  `json:"existingCount"`
	RequiresManualReview bool                 `json:"requiresManualReview"`
	Mismatches           []mismatchResponse   `json:"mismatches,omitempty"`
	Suggestions          []suggestionResponse `json:"suggestions,omitempty"`
	TranslateIndexes     []int                `json:"translateIndexes,omitempty"`
}

type reviewResponse struct {
	Fragments []fragmentResponse     `json:"fragments"`
	Locales   []localeReviewResponse `json:"locales"`
}

func (api *API) handleReview(w http.ResponseWriter, r *http.Request) {
	if api == nil || api.reviewer == nil || api.store == nil || api.registry == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "service_unavailable"})
		return
	}

	var payload reviewPayload
	if err := decodeJSON(r, &payload); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "bad_request", Message: "invalid JSON body"})
		return
	}
	if err := payload.Validate(); err != nil {
		writeError(w, err)
		return
	}

	from := api.resolveSource(payload.From)

	var frags []fragments.Fragment
	if len(payload.Items) > 0 {
		frags = itemFragments(payload.Items)
	} else {
		var ok bool
		frags, ok = api.extractFragments(w, r, payload.Collection, payload.DocumentID, from)
		if !ok {
			return
		}
	}

	locales := payload.Locales
	if len(locales) == 0 {
		locales = api.locales
	}

	reviews, err := api.reviewer.Run(r.Context(), review.Request{
		Collection:   payload.Collection,
		DocumentID:   payload.DocumentID,
		SourceLocale: from,
		Fragments:    frags,
		Locales:      locales,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, buildReviewResponse(frags, reviews))
}

func (api *API) handleTranslate(w http.ResponseWriter, r *http.Request) {
	if api == nil || api.runner == nil || api.store == nil || api.registry == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "service_unavailable"})
		return
	}
	if !api.syncEnabled() {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "sync_disabled", Message: "translation sync is disabled"})
		return
	}

	var payload translatePayload
	if err := decodeJSON(r, &payload); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "bad_request", Message: "invalid JSON body"})
		return
	}
	if err := payload.Validate(); err != nil {
		writeError(w, err)
		return
	}

	from := api.resolveSource(payload.From)

	frags, ok := api.extractFragments(w, r, payload.Collection, payload.DocumentID, from)
	if !ok {
		return
	}

	selections := make([]executor.LocaleSelection, 0, len(payload.Locales))
	for _, locale := range payload.Locales {
		selections = append(selections, buildSelection(locale, frags, api.budget()))
	}

	stream, ok := newEventStream(w)
	if !ok {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal_error", Message: "streaming unsupported"})
		return
	}

	err := api.runner.Run(r.Context(), executor.Request{
		Collection:   payload.Collection,
		DocumentID:   payload.DocumentID,
		SourceLocale: from,
		Locales:      selections,
	}, func(event executor.Event) error {
		return stream.send(event)
	})
	if err != nil {
		api.logger.Warn("translate stream severed", "collection", payload.Collection, "document", payload.DocumentID, "error", err)
	}
}

func (api *API) handleBulk(w http.ResponseWriter, r *http.Request) {
	if api == nil || api.bulkRunner == nil || api.registry == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "service_unavailable"})
		return
	}
	if !api.syncEnabled() {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "sync_disabled", Message: "translation sync is disabled"})
		return
	}

	var payload bulkPayload
	if err := decodeJSON(r, &payload); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "bad_request", Message: "invalid JSON body"})
		return
	}

	collections := payload.Collections
	if len(collections) == 0 {
		collections = api.registry.Collections()
	}

	stream, ok := newEventStream(w)
	if !ok {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal_error", Message: "streaming unsupported"})
		return
	}

	err := api.bulkRunner.Run(r.Context(), collections, func(event bulk.Event) error {
		return stream.send(event)
	})
	if err != nil {
		api.logger.Warn("bulk stream severed", "error", err)
	}
}

// extractFragments resolves the collection schema and source document,
// answering the appropriate 4xx itself when either is missing.
func (api *API) extractFragments(w http.ResponseWriter, r *http.Request, collection, documentID, sourceLocale string) ([]fragments.Fragment, bool) {
	patterns, ok := api.registry.Patterns(collection)
	if !ok {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "not_found", Message: "unknown collection"})
		return nil, false
	}

	doc, err := api.store.FindByID(r.Context(), collection, documentID, sourceLocale)
	if err != nil {
		writeError(w, err)
		return nil, false
	}

	return fragments.Extract(doc.Data, patterns), true
}

// resolveSource falls back to the configured default locale when the request
// omits a source.
func (api *API) resolveSource(from string) string {
	if trimmed := strings.TrimSpace(from); trimmed != "" {
		return trimmed
	}
	return api.sourceLocale
}

// itemFragments converts caller-supplied review items into fragments,
// preserving their order as the index space for the response.
func itemFragments(items []reviewItemPayload) []fragments.Fragment {
	frags := make([]fragments.Fragment, 0, len(items))
	for _, item := range items {
		kind := fragments.KindPlain
		if item.Lexical {
			kind = fragments.KindRich
		}
		frags = append(frags, fragments.Fragment{Path: item.Path, Text: item.Text, Kind: kind})
	}
	return frags
}

func (api *API) budget() int {
	if api.state != nil {
		if budget := api.state.Snapshot().ChunkBudget; budget > 0 {
			return budget
		}
	}
	if api.chunkBudget > 0 {
		return api.chunkBudget
	}
	return fragments.DefaultChunkBudget
}

func buildSelection(payload translateLocalePayload, frags []fragments.Fragment, budget int) executor.LocaleSelection {
	byPath := make(map[string]fragments.Fragment, len(frags))
	for _, frag := range frags {
		byPath[frag.Path] = frag
	}

	overridden := make(map[string]struct{}, len(payload.Overrides))
	overrides := make([]executor.Override, 0, len(payload.Overrides))
	for _, override := range payload.Overrides {
		rich := false
		if frag, ok := byPath[override.Path]; ok {
			rich = frag.IsRich()
		}
		overrides = append(overrides, executor.Override{Path: override.Path, Text: override.Text, Rich: rich})
		overridden[override.Path] = struct{}{}
	}

	indexes := payload.Indexes
	if len(indexes) == 0 {
		indexes = make([]int, len(frags))
		for i := range frags {
			indexes[i] = i
		}
	}

	selected := make([]fragments.Fragment, 0, len(indexes))
	for _, index := range indexes {
		if index < 0 || index >= len(frags) {
			continue
		}
		frag := frags[index]
		if _, ok := overridden[frag.Path]; ok {
			continue
		}
		selected = append(selected, frag)
	}

	return executor.LocaleSelection{
		Code:      payload.Code,
		Chunks:    fragments.Chunk(selected, budget),
		Overrides: overrides,
	}
}

func buildReviewResponse(frags []fragments.Fragment, reviews []review.LocaleReview) reviewResponse {
	out := reviewResponse{
		Fragments: make([]fragmentResponse, 0, len(frags)),
		Locales:   make([]localeReviewResponse, 0, len(reviews)),
	}
	for i, frag := range frags {
		out.Fragments = append(out.Fragments, fragmentResponse{
			Index: i,
			Path:  frag.Path,
			Kind:  frag.MarshalKind(),
			Text:  frag.Text,
		})
	}
	for _, result := range reviews {
		locale := localeReviewResponse{
			Code:                 result.Code,
			ExistingCount:        result.ExistingCount,
			RequiresManualReview: result.RequiresManualReview(),
			TranslateIndexes:     result.TranslateIndexes,
		}
		for _, mismatch := range result.Mismatches {
			locale.Mismatches = append(locale.Mismatches, mismatchResponse{
				Index:        mismatch.Index,
				Path:         mismatch.Path,
				DefaultText:  mismatch.DefaultText,
				ExistingText: mismatch.ExistingText,
				Reason:       mismatch.Reason,
			})
		}
		for _, suggestion := range result.Suggestions {
			locale.Suggestions = append(locale.Suggestions, suggestionResponse{
				Index: suggestion.Index,
				Text:  suggestion.Text,
			})
		}
		out.Locales = append(out.Locales, locale)
	}
	return out
}

// eventStream writes newline-delimited JSON, flushing after every event so
// clients observe progress as it happens.
type eventStream struct {
	encoder *json.Encoder
	flusher http.Flusher
}

func newEventStream(w http.ResponseWriter) (*eventStream, bool) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil, false
	}
	w.Header().Set("Content-Type", "application/x-ndjson")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()
	return &eventStream{encoder: json.NewEncoder(w), flusher: flusher}, true
}

func (s *eventStream) send(event any) error {
	if err := s.encoder.Encode(event); err != nil {
		return err
	}
	s.flusher.Flush()
	return nil
}
