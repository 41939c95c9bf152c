package translator

import (
	"errors"
	"testing"
)

func TestParseTranslations(t *testing.T) {
	cases := []struct {
		name    string
		content string
		expect  int
		want    []string
		wantErr bool
	}{
		{
			name:    "wrapped object",
			content: `{"translations": ["een", "twee"]}`,
			expect:  2,
			want:    []string{"een", "twee"},
		},
		{
			name:    "bare array",
			content: `["een"]`,
			expect:  1,
			want:    []string{"een"},
		},
		{
			name:    "count mismatch",
			content: `{"translations": ["een"]}`,
			expect:  2,
			wantErr: true,
		},
		{
			name:    "garbage",
			content: `not json`,
			expect:  1,
			wantErr: true,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := parseTranslations(tc.content, tc.expect)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %#v", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(got) != len(tc.want) {
				t.Fatalf("expected %d results, got %d", len(tc.want), len(got))
			}
			for i := range got {
				if got[i] != tc.want[i] {
					t.Fatalf("result %d: expected %q, got %q", i, tc.want[i], got[i])
				}
			}
		})
	}
}

func TestParseTranslationsCountMismatchType(t *testing.T) {
	_, err := parseTranslations(`{"translations": []}`, 3)
	var mismatch *CountMismatchError
	if !errors.As(err, &mismatch) {
		t.Fatalf("expected CountMismatchError, got %v", err)
	}
	if mismatch.Expected != 3 || mismatch.Got != 0 {
		t.Fatalf("unexpected mismatch details: %#v", mismatch)
	}
}

func TestParseClassification(t *testing.T) {
	results, err := parseClassification(`{"results": [{"index": 1, "missing": true, "reason": "second sentence untranslated"}]}`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 1 || !results[0].Missing || results[0].Index != 1 {
		t.Fatalf("unexpected results: %#v", results)
	}

	if _, err := parseClassification("nope"); err == nil {
		t.Fatalf("expected error for malformed classification response")
	}
}

func TestNewOpenAIClientDefaults(t *testing.T) {
	client := NewOpenAIClient(Config{APIKey: "test"})
	if client.model != defaultModel {
		t.Fatalf("expected default model, got %q", client.model)
	}
	if client.temperature != defaultTemperature {
		t.Fatalf("expected default temperature, got %v", client.temperature)
	}
}

func TestOpenAIClientModelSource(t *testing.T) {
	model := "gpt-4o"
	client := NewOpenAIClient(Config{APIKey: "test", Model: "base-model"},
		WithModelSource(func() string { return model }),
	)

	if got := client.resolveModel(); got != "gpt-4o" {
		t.Fatalf("expected source model, got %q", got)
	}

	model = "  "
	if got := client.resolveModel(); got != "base-model" {
		t.Fatalf("blank source must fall back to configured model, got %q", got)
	}
}
