package translator

import (
	"context"

	"github.com/goliatone/go-localize/pkg/interfaces"
)

// Static is a deterministic provider used in tests and demos. Texts found in
// Mapping translate to their mapped value; everything else passes through
// with an optional prefix so output stays distinguishable from input.
type Static struct {
	Mapping map[string]string
	Prefix  string
	// Missing marks classification pairs as incomplete by index, with a reason.
	Missing map[int]string
	// DropLast simulates a provider breaking the one-per-input contract.
	DropLast bool
	// Err, when set, fails every call.
	Err error

	// Calls records each translate batch for assertions.
	Calls [][]string
}

var _ interfaces.TranslationProvider = (*Static)(nil)

// Translate maps each input text deterministically.
func (s *Static) Translate(_ context.Context, req interfaces.TranslateRequest) ([]string, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	s.Calls = append(s.Calls, append([]string(nil), req.Texts...))

	out := make([]string, 0, len(req.Texts))
	for _, text := range req.Texts {
		if mapped, ok := s.Mapping[text]; ok {
			out = append(out, mapped)
			continue
		}
		out = append(out, s.Prefix+text)
	}
	if s.DropLast && len(out) > 0 {
		out = out[:len(out)-1]
	}
	return out, nil
}

// Classify marks the configured indexes as missing.
func (s *Static) Classify(_ context.Context, pairs []interfaces.ClassificationPair, _, _ string) ([]interfaces.ClassificationResult, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	results := make([]interfaces.ClassificationResult, 0, len(pairs))
	for _, pair := range pairs {
		reason, missing := s.Missing[pair.Index]
		results = append(results, interfaces.ClassificationResult{
			Index:   pair.Index,
			Missing: missing,
			Reason:  reason,
		})
	}
	return results, nil
}
