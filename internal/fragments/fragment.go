// Package fragments locates translatable text inside concrete documents,
// groups it into provider-sized batches, and writes translated values back
// without disturbing surrounding structure.
package fragments

import (
	"fmt"
	"strings"

	"github.com/goliatone/go-localize/internal/lexical"
)

// Kind tags the fragment variant so call sites can dispatch on it instead of
// checking value shapes repeatedly.
type Kind int

const (
	// KindPlain marks a plain string fragment.
	KindPlain Kind = iota
	// KindRich marks a fragment whose source value is a rich-text tree; its
	// Text holds the marked serialized form.
	KindRich
)

// Fragment is one translatable unit at a concrete document path.
type Fragment struct {
	Path string `json:"path"`
	Text string `json:"text"`
	Kind Kind   `json:"-"`
}

// IsRich reports whether the fragment came from a rich-text value.
func (f Fragment) IsRich() bool {
	return f.Kind == KindRich
}

// MarshalKind exposes the wire name used on the HTTP surface.
func (f Fragment) MarshalKind() string {
	if f.IsRich() {
		return "lexical"
	}
	return "plain"
}

// Extract resolves path patterns against a document instance and returns the
// translatable fragments in traversal order. The order is the basis for the
// index addressing used throughout the pipeline.
func Extract(doc map[string]any, patterns []string) []Fragment {
	out := make([]Fragment, 0)
	for _, pattern := range patterns {
		segments := parseFieldPath(pattern)
		if len(segments) == 0 {
			continue
		}
		expandSegments(doc, segments, "", &out)
	}
	return out
}

func expandSegments(value any, segments []fieldSegment, prefix string, out *[]Fragment) {
	if len(segments) == 0 {
		emitFragment(value, prefix, out)
		return
	}

	segment := segments[0]
	path := prefix
	if segment.name != "" {
		typed, ok := value.(map[string]any)
		if !ok {
			return
		}
		next, ok := typed[segment.name]
		if !ok {
			return
		}
		value = next
		path = joinSegment(prefix, segment.name)
	}

	if !segment.isArray {
		expandSegments(value, segments[1:], path, out)
		return
	}

	list, ok := value.([]any)
	if !ok {
		return
	}
	for i, element := range list {
		if segment.index != nil && *segment.index != i {
			continue
		}
		if segment.blockTag != "" && blockTagOf(element) != segment.blockTag {
			continue
		}
		expandSegments(element, segments[1:], fmt.Sprintf("%s[%d]", path, i), out)
	}
}

func emitFragment(value any, path string, out *[]Fragment) {
	if path == "" {
		return
	}
	if lexical.IsRichText(value) {
		tree := value.(map[string]any)
		if serialized, ok := lexical.Serialize(tree); ok && strings.TrimSpace(serialized.Text) != "" {
			*out = append(*out, Fragment{Path: path, Text: serialized.Text, Kind: KindRich})
			return
		}
		if plain := lexical.PlainText(tree); plain != "" {
			*out = append(*out, Fragment{Path: path, Text: plain, Kind: KindPlain})
		}
		return
	}
	if text, ok := value.(string); ok {
		if trimmed := strings.TrimSpace(text); trimmed != "" {
			*out = append(*out, Fragment{Path: path, Text: trimmed, Kind: KindPlain})
		}
	}
}

func blockTagOf(element any) string {
	typed, ok := element.(map[string]any)
	if !ok {
		return ""
	}
	tag, _ := typed["blockType"].(string)
	return tag
}

func joinSegment(prefix, name string) string {
	if prefix == "" {
		return name
	}
	return prefix + "." + name
}
