// Package translator implements the translation provider contracts on top of
// an OpenAI-compatible chat completion API.
package translator

import "fmt"

// ProviderError wraps failures from the upstream completion API.
type ProviderError struct {
	Message   string
	Cause     error
	Retryable bool
}

func (e *ProviderError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("translator: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("translator: %s", e.Message)
}

func (e *ProviderError) Unwrap() error {
	return e.Cause
}

// CountMismatchError reports a provider response that did not honour the
// one-output-per-input contract. Callers must treat it as fatal; padding or
// truncating would misalign translations with unrelated fields.
type CountMismatchError struct {
	Expected int
	Got      int
}

func (e *CountMismatchError) Error() string {
	return fmt.Sprintf("translator: expected %d results, got %d", e.Expected, e.Got)
}
