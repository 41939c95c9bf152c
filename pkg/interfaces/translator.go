package interfaces

import "context"

// TranslateRequest carries one batch of texts for the translation provider.
// Providers must return exactly one output per input, order preserved, with
// formatting and placeholders kept verbatim.
type TranslateRequest struct {
	Texts        []string
	SourceLocale string
	TargetLocale string
}

// ClassificationPair pairs a source text with its existing translation so a
// provider can judge whether the translation is missing information.
type ClassificationPair struct {
	Index          int    `json:"index"`
	DefaultText    string `json:"defaultText"`
	TranslatedText string `json:"translatedText"`
}

// ClassificationResult reports the provider's verdict for one pair. Pairs the
// provider omits from its response are treated as not missing.
type ClassificationResult struct {
	Index   int    `json:"index"`
	Missing bool   `json:"missing"`
	Reason  string `json:"reason,omitempty"`
}

// Translator is the text-translation half of the provider contract.
type Translator interface {
	Translate(ctx context.Context, req TranslateRequest) ([]string, error)
}

// Classifier is the completeness-check half of the provider contract.
type Classifier interface {
	Classify(ctx context.Context, pairs []ClassificationPair, from, to string) ([]ClassificationResult, error)
}

// TranslationProvider combines translation and classification behind one
// opaque service boundary.
type TranslationProvider interface {
	Translator
	Classifier
}
