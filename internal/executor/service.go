// Package executor runs approved translation selections against the document
// store, batch by batch, streaming progress as an ordered event log.
package executor

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/goliatone/go-localize/internal/fragments"
	"github.com/goliatone/go-localize/internal/lexical"
	"github.com/goliatone/go-localize/internal/logging"
	"github.com/goliatone/go-localize/pkg/interfaces"
)

var (
	ErrStoreRequired    = errors.New("executor: document store is required")
	ErrProviderRequired = errors.New("executor: translation provider is required")
)

// defaultStripFields are removed from locale working copies before writes;
// the store owns identity and timestamp fields.
var defaultStripFields = []string{"id", "createdAt", "updatedAt", "_status"}

// Override writes reviewer-approved text verbatim at a path, bypassing
// machine translation. Rich overrides arrive as HTML and pass through the
// rich-text bridge.
type Override struct {
	Path string `json:"path"`
	Text string `json:"text"`
	Rich bool   `json:"lexical,omitempty"`
}

// LocaleSelection is the approved work for one target locale. Chunks and
// override paths are disjoint; skipped fragments appear in neither.
type LocaleSelection struct {
	Code      string
	Chunks    [][]fragments.Fragment
	Overrides []Override
}

// Request identifies the document and the per-locale selections to apply.
type Request struct {
	Collection   string
	DocumentID   string
	SourceLocale string
	Locales      []LocaleSelection
}

// Service streams translation runs.
type Service struct {
	store       interfaces.DocumentStore
	provider    interfaces.Translator
	logger      interfaces.Logger
	stripFields []string
}

// Option configures the service at construction time.
type Option func(*Service)

// WithLogger attaches an executor-scoped logger.
func WithLogger(logger interfaces.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithStripFields overrides the identity fields removed from working copies.
func WithStripFields(fields []string) Option {
	return func(s *Service) {
		if len(fields) > 0 {
			s.stripFields = append([]string(nil), fields...)
		}
	}
}

// New constructs an executor service.
func New(store interfaces.DocumentStore, provider interfaces.Translator, opts ...Option) (*Service, error) {
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
		stripFields: defaultStripFields,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Run applies the request locale by locale, emitting events through the sink.
// Errors inside the run surface as error events, never as a returned error;
// the returned error is non-nil only when the sink itself fails.
func (s *Service) Run(ctx context.Context, req Request, emit Sink) error {
	if !hasWork(req) {
		return emit(Event{Type: EventError, Message: "nothing to translate: no locale has chunks or overrides"})
	}

	source, err := s.store.FindByID(ctx, req.Collection, req.DocumentID, req.SourceLocale)
	if err != nil {
		return emit(Event{Type: EventError, Message: fmt.Sprintf("load source document: %v", err)})
	}
	sourceData := source.Data
	if sourceData == nil {
		sourceData = map[string]any{}
	}

	for _, selection := range req.Locales {
		localeErr, sinkErr := s.runLocale(ctx, req, selection, sourceData, emit)
		if sinkErr != nil {
			return sinkErr
		}
		// Contract mismatches abort everything; results cannot be safely
		// zipped back for any remaining work. Storage failures only abort
		// their own locale.
		if errors.Is(localeErr, errAbortRun) {
			return nil
		}
	}

	return emit(Event{Type: EventDone})
}

// errAbortRun marks failures that invalidate the rest of the run.
var errAbortRun = errors.New("executor: run aborted")

func (s *Service) runLocale(ctx context.Context, req Request, selection LocaleSelection, sourceData map[string]any, emit Sink) (error, error) {
	total := len(selection.Overrides)
	for _, chunk := range selection.Chunks {
		total += len(chunk)
	}
	if total == 0 {
		return nil, nil
	}

	working, err := s.loadWorkingCopy(ctx, req.Collection, req.DocumentID, selection.Code)
	if err != nil {
		if sinkErr := emit(Event{Type: EventError, Locale: selection.Code, Message: fmt.Sprintf("load locale document: %v", err)}); sinkErr != nil {
			return err, sinkErr
		}
		return err, nil
	}

	completed := 0
	for _, chunk := range selection.Chunks {
		plans, flat := buildPlans(chunk, sourceData)
		results, err := s.provider.Translate(ctx, interfaces.TranslateRequest{
			Texts:        flat,
			SourceLocale: req.SourceLocale,
			TargetLocale: selection.Code,
		})
		if err == nil && len(results) != len(flat) {
			err = fmt.Errorf("provider returned %d segments for %d inputs", len(results), len(flat))
		}
		if err != nil {
			s.logger.Error("batch translation failed",
				"collection", req.Collection,
				"document", req.DocumentID,
				"locale", selection.Code,
				"error", err,
			)
			if sinkErr := emit(Event{Type: EventError, Locale: selection.Code, Message: err.Error()}); sinkErr != nil {
				return errAbortRun, sinkErr
			}
			return errAbortRun, nil
		}

		offset := 0
		for _, plan := range plans {
			segments := results[offset : offset+plan.segmentCount]
			offset += plan.segmentCount
			value := plan.assemble(segments)
			if err := fragments.SetValue(working, sourceData, plan.path, value); err != nil {
				if sinkErr := emit(Event{Type: EventError, Locale: selection.Code, Message: fmt.Sprintf("write %s: %v", plan.path, err)}); sinkErr != nil {
					return errAbortRun, sinkErr
				}
				return errAbortRun, nil
			}
		}

		completed += len(chunk)
		if sinkErr := emit(Event{Type: EventProgress, Locale: selection.Code, Completed: completed, Total: total}); sinkErr != nil {
			return nil, sinkErr
		}
	}

	for _, override := range selection.Overrides {
		var value any = override.Text
		if override.Rich {
			// Override text may still carry serialization markers when it
			// was derived from the marked form; they are addressing, never
			// content, and must not be persisted.
			value = lexical.FromHTML(lexical.StripMarkers(override.Text))
		}
		if err := fragments.SetValue(working, sourceData, override.Path, value); err != nil {
			if sinkErr := emit(Event{Type: EventError, Locale: selection.Code, Message: fmt.Sprintf("write override %s: %v", override.Path, err)}); sinkErr != nil {
				return errAbortRun, sinkErr
			}
			return errAbortRun, nil
		}
		completed++
		if sinkErr := emit(Event{Type: EventProgress, Locale: selection.Code, Completed: completed, Total: total}); sinkErr != nil {
			return nil, sinkErr
		}
	}

	if err := s.store.Update(ctx, req.Collection, req.DocumentID, selection.Code, working); err != nil {
		s.logger.Error("persist locale document failed",
			"collection", req.Collection,
			"document", req.DocumentID,
			"locale", selection.Code,
			"error", err,
		)
		// Storage failures abort this locale only; completed siblings stay.
		if sinkErr := emit(Event{Type: EventError, Locale: selection.Code, Message: fmt.Sprintf("persist locale document: %v", err)}); sinkErr != nil {
			return err, sinkErr
		}
		return err, nil
	}

	s.logger.Info("locale applied",
		"collection", req.Collection,
		"document", req.DocumentID,
		"locale", selection.Code,
		"fragments", total,
	)
	return nil, emit(Event{Type: EventApplied, Locale: selection.Code})
}

func (s *Service) loadWorkingCopy(ctx context.Context, collection, id, locale string) (map[string]any, error) {
	doc, err := s.store.FindByID(ctx, collection, id, locale)
	if err != nil {
		if errors.Is(err, interfaces.ErrDocumentNotFound) {
			return map[string]any{}, nil
		}
		return nil, err
	}
	working := fragments.CloneMap(doc.Data)
	fragments.StripFields(working, s.stripFields)
	return working, nil
}

// fragmentPlan records how many provider segments one fragment occupies and
// how to reassemble its translated value.
type fragmentPlan struct {
	path         string
	segmentCount int
	rich         bool
	sourceTree   map[string]any
}

func (p fragmentPlan) assemble(segments []string) any {
	if p.sourceTree == nil {
		if p.rich {
			// The source value lost its rich shape; write a minimal tree
			// rather than a bare string at a rich-text path.
			return lexical.PlainTree(lexical.StripMarkers(segments[0]))
		}
		return segments[0]
	}
	rebuilt, err := lexical.ReplaceLeaves(p.sourceTree, segments)
	if err != nil {
		// Degraded single-paragraph write; structure could not be preserved.
		return lexical.PlainTree(strings.Join(segments, "\n\n"))
	}
	return rebuilt
}

// buildPlans flattens a chunk into one ordered segment list. Plain fragments
// translate 1:1; rich fragments contribute one segment per text leaf of the
// source-locale value so markers and positions come from canonical structure.
func buildPlans(chunk []fragments.Fragment, sourceData map[string]any) ([]fragmentPlan, []string) {
	plans := make([]fragmentPlan, 0, len(chunk))
	flat := make([]string, 0, len(chunk))
	for _, frag := range chunk {
		if frag.IsRich() {
			if value, ok := fragments.ValueAtPath(sourceData, frag.Path); ok && lexical.IsRichText(value) {
				tree := value.(map[string]any)
				leaves := lexical.LeafTexts(tree)
				if len(leaves) > 0 {
					plans = append(plans, fragmentPlan{path: frag.Path, segmentCount: len(leaves), rich: true, sourceTree: tree})
					flat = append(flat, leaves...)
					continue
				}
			}
		}
		plans = append(plans, fragmentPlan{path: frag.Path, segmentCount: 1, rich: frag.IsRich()})
		flat = append(flat, frag.Text)
	}
	return plans, flat
}

func hasWork(req Request) bool {
	for _, selection := range req.Locales {
		if len(selection.Overrides) > 0 {
			return true
		}
		for _, chunk := range selection.Chunks {
			if len(chunk) > 0 {
				return true
			}
		}
	}
	return false
}
