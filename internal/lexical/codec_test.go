package lexical_test

import (
	"reflect"
	"regexp"
	"strings"
	"testing"

	"github.com/goliatone/go-localize/internal/lexical"
)

func textLeaf(text string) map[string]any {
	return map[string]any{"type": "text", "version": 1, "text": text}
}

func paragraph(children ...any) map[string]any {
	return map[string]any{"type": "paragraph", "version": 1, "children": children}
}

func tree(blocks ...any) map[string]any {
	return map[string]any{
		"root": map[string]any{"type": "root", "version": 1, "children": blocks},
	}
}

func TestSerializeMarkersAreOrdinal(t *testing.T) {
	input := tree(
		paragraph(textLeaf("first"), textLeaf("second")),
		paragraph(textLeaf("third")),
	)

	serialized, ok := lexical.Serialize(input)
	if !ok {
		t.Fatalf("expected serialization to succeed")
	}

	markers := regexp.MustCompile(`\[\[LEX-(\d+)\]\]`).FindAllStringSubmatch(serialized.Text, -1)
	if len(markers) != 3 {
		t.Fatalf("expected 3 opening markers, got %d in %q", len(markers), serialized.Text)
	}
	for i, match := range markers {
		if want := []string{"0", "1", "2"}[i]; match[1] != want {
			t.Fatalf("marker %d: expected ordinal %s, got %s", i, want, match[1])
		}
	}
	if len(serialized.LeafPaths) != 3 {
		t.Fatalf("expected 3 leaf paths, got %d", len(serialized.LeafPaths))
	}
}

func TestSerializeNewlineRules(t *testing.T) {
	input := tree(
		paragraph(textLeaf("one")),
		map[string]any{
			"type":    "list",
			"tag":     "ul",
			"version": 1,
			"children": []any{
				map[string]any{"type": "listitem", "version": 1, "children": []any{textLeaf("alpha")}},
				map[string]any{"type": "listitem", "version": 1, "children": []any{textLeaf("beta")}},
			},
		},
	)

	serialized, ok := lexical.Serialize(input)
	if !ok {
		t.Fatalf("expected serialization to succeed")
	}

	plain := lexical.StripMarkers(serialized.Text)
	want := "one\n\nalpha\nbeta"
	if plain != want {
		t.Fatalf("expected %q, got %q", want, plain)
	}
	if strings.Contains(serialized.Text, "\n\n\n") {
		t.Fatalf("expected 3+ newlines to collapse, got %q", serialized.Text)
	}
	if strings.HasSuffix(serialized.Text, "\n") {
		t.Fatalf("expected trailing newlines stripped, got %q", serialized.Text)
	}
}

func TestSerializeEmptyTree(t *testing.T) {
	if _, ok := lexical.Serialize(tree()); ok {
		t.Fatalf("expected serialization to fail for tree without leaves")
	}
	if _, ok := lexical.Serialize(tree(paragraph())); ok {
		t.Fatalf("expected serialization to fail for tree with empty paragraph")
	}
}

func TestDeserializeRoundTrip(t *testing.T) {
	original := tree(
		paragraph(textLeaf("Hello"), map[string]any{"type": "linebreak", "version": 1}, textLeaf("world")),
		paragraph(textLeaf("Second block")),
	)

	serialized, ok := lexical.Serialize(original)
	if !ok {
		t.Fatalf("expected serialization to succeed")
	}

	rebuilt := lexical.Deserialize(serialized.Text, original)
	if !reflect.DeepEqual(rebuilt, original) {
		t.Fatalf("round trip diverged:\n got %#v\nwant %#v", rebuilt, original)
	}

	// Translated content keeps the structure, replaces only leaf text.
	translated := strings.NewReplacer("Hello", "Hallo", "world", "wereld", "Second block", "Tweede blok").Replace(serialized.Text)
	rebuilt = lexical.Deserialize(translated, original)
	if got := lexical.LeafTexts(rebuilt); !reflect.DeepEqual(got, []string{"Hallo", "wereld", "Tweede blok"}) {
		t.Fatalf("unexpected translated leaves: %#v", got)
	}
	if lexical.CountLeaves(rebuilt) != lexical.CountLeaves(original) {
		t.Fatalf("structure changed during reassembly")
	}
}

func TestDeserializeFallback(t *testing.T) {
	original := tree(paragraph(textLeaf("one"), textLeaf("two")))

	cases := []struct {
		name   string
		marked string
	}{
		{"no markers", "plain translated text\n\nsecond paragraph"},
		{"count mismatch", "[[LEX-0]]only one[[/LEX-0]]"},
		{"mismatched ordinals", "[[LEX-0]]a[[/LEX-1]] [[LEX-1]]b[[/LEX-0]]"},
		{"duplicate ordinals", "[[LEX-0]]a[[/LEX-0]] [[LEX-0]]b[[/LEX-0]]"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rebuilt := lexical.Deserialize(tc.marked, original)
			if rebuilt == nil {
				t.Fatalf("fallback must still yield a tree")
			}
			root, ok := rebuilt["root"].(map[string]any)
			if !ok {
				t.Fatalf("fallback tree missing root: %#v", rebuilt)
			}
			if _, ok := root["children"].([]any); !ok {
				t.Fatalf("fallback tree missing children: %#v", rebuilt)
			}
		})
	}

	// Without an original tree the plain-text path is always taken.
	rebuilt := lexical.Deserialize("[[LEX-0]]solo[[/LEX-0]]", nil)
	if got := lexical.PlainText(rebuilt); got != "solo" {
		t.Fatalf("expected plain fallback to keep marker contents, got %q", got)
	}
}

func TestDeserializeFallbackSplitsParagraphs(t *testing.T) {
	rebuilt := lexical.Deserialize("first paragraph\n\nsecond paragraph", nil)
	root := rebuilt["root"].(map[string]any)
	children := root["children"].([]any)
	if len(children) != 2 {
		t.Fatalf("expected 2 paragraphs, got %d", len(children))
	}
}

func TestReplaceLeaves(t *testing.T) {
	original := tree(paragraph(textLeaf("a"), textLeaf("b")))

	rebuilt, err := lexical.ReplaceLeaves(original, []string{"x", "y"})
	if err != nil {
		t.Fatalf("ReplaceLeaves returned error: %v", err)
	}
	if got := lexical.LeafTexts(rebuilt); !reflect.DeepEqual(got, []string{"x", "y"}) {
		t.Fatalf("unexpected leaves: %#v", got)
	}
	if got := lexical.LeafTexts(original); !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Fatalf("original mutated: %#v", got)
	}

	if _, err := lexical.ReplaceLeaves(original, []string{"x"}); err == nil {
		t.Fatalf("expected leaf count mismatch error")
	}
}

func TestPlainTextAndIsRichText(t *testing.T) {
	rich := tree(paragraph(textLeaf(" spaced "), textLeaf("words")))
	if got := lexical.PlainText(rich); got != "spaced words" {
		t.Fatalf("expected joined plain text, got %q", got)
	}

	if !lexical.IsRichText(rich) {
		t.Fatalf("expected rich tree to be detected")
	}
	for _, value := range []any{"plain", 42, map[string]any{"title": "x"}, nil} {
		if lexical.IsRichText(value) {
			t.Fatalf("expected %#v not to be rich text", value)
		}
	}
}
