// Package lexical serializes rich-text trees into flat translator-friendly
// strings and reassembles translated text back into the original structure.
package lexical

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// ErrLeafCountMismatch is returned when a replacement set does not line up
// one-to-one with the tree's text leaves.
var ErrLeafCountMismatch = errors.New("lexical: replacement count does not match leaf count")

var (
	markerPattern   = regexp.MustCompile(`(?s)\[\[LEX-(\d+)\]\](.*?)\[\[/LEX-(\d+)\]\]`)
	newlineCollapse = regexp.MustCompile(`\n{3,}`)
	blankLineSplit  = regexp.MustCompile(`\n\s*\n`)
)

// Serialized is the flat form of a rich-text tree. Text carries one marker
// pair per leaf; LeafPaths records each leaf's child-index address under the
// root node, in marker ordinal order.
type Serialized struct {
	Text      string
	LeafPaths [][]int
}

// IsRichText reports whether a document value looks like a rich-text tree.
func IsRichText(value any) bool {
	tree, ok := value.(map[string]any)
	if !ok {
		return false
	}
	root, ok := tree["root"].(map[string]any)
	if !ok {
		return false
	}
	_, ok = root["children"].([]any)
	return ok
}

// Serialize flattens a tree into marked prose. Each text leaf is wrapped in a
// unique ordinal marker pair, line breaks become newlines, list items emit a
// trailing newline, and top-level blocks are separated by blank lines. The
// second return is false when the tree has no text leaves.
func Serialize(tree map[string]any) (*Serialized, bool) {
	blocks := rootChildren(tree)
	if blocks == nil {
		return nil, false
	}

	state := &serializeState{}
	parts := make([]string, 0, len(blocks))
	for i, block := range blocks {
		var sb strings.Builder
		serializeNode(block, []int{i}, &sb, state)
		if part := sb.String(); strings.TrimSpace(part) != "" {
			parts = append(parts, part)
		}
	}
	if len(state.leafPaths) == 0 {
		return nil, false
	}

	text := strings.Join(parts, "\n\n")
	text = newlineCollapse.ReplaceAllString(text, "\n\n")
	text = strings.TrimRight(text, "\n")

	return &Serialized{Text: text, LeafPaths: state.leafPaths}, true
}

type serializeState struct {
	ordinal   int
	leafPaths [][]int
}

func serializeNode(value any, path []int, sb *strings.Builder, state *serializeState) {
	node, ok := value.(map[string]any)
	if !ok {
		return
	}

	nodeType, _ := node["type"].(string)
	if text, ok := node["text"].(string); ok && (nodeType == "" || nodeType == "text") {
		fmt.Fprintf(sb, "[[LEX-%d]]%s[[/LEX-%d]]", state.ordinal, text, state.ordinal)
		state.leafPaths = append(state.leafPaths, append([]int(nil), path...))
		state.ordinal++
		return
	}
	if nodeType == "linebreak" {
		sb.WriteString("\n")
		return
	}

	children, _ := node["children"].([]any)
	for i, child := range children {
		serializeNode(child, append(path, i), sb, state)
	}
	if nodeType == "listitem" {
		sb.WriteString("\n")
	}
}

// LeafTexts returns the text of every leaf in document order.
func LeafTexts(tree map[string]any) []string {
	var texts []string
	walkLeaves(tree, func(leaf map[string]any) {
		text, _ := leaf["text"].(string)
		texts = append(texts, text)
	})
	return texts
}

// CountLeaves returns the number of text leaves in the tree.
func CountLeaves(tree map[string]any) int {
	count := 0
	walkLeaves(tree, func(map[string]any) { count++ })
	return count
}

// ReplaceLeaves clones the tree and overwrites each text leaf with the
// corresponding replacement, in document order.
func ReplaceLeaves(tree map[string]any, texts []string) (map[string]any, error) {
	if CountLeaves(tree) != len(texts) {
		return nil, ErrLeafCountMismatch
	}
	cloned := cloneMap(tree)
	idx := 0
	walkLeaves(cloned, func(leaf map[string]any) {
		leaf["text"] = texts[idx]
		idx++
	})
	return cloned, nil
}

func walkLeaves(tree map[string]any, visit func(map[string]any)) {
	children := rootChildren(tree)
	var walk func(any)
	walk = func(value any) {
		node, ok := value.(map[string]any)
		if !ok {
			return
		}
		nodeType, _ := node["type"].(string)
		if _, ok := node["text"].(string); ok && (nodeType == "" || nodeType == "text") {
			visit(node)
			return
		}
		nested, _ := node["children"].([]any)
		for _, child := range nested {
			walk(child)
		}
	}
	for _, child := range children {
		walk(child)
	}
}

// Deserialize rebuilds a tree from marked translated text. When the extracted
// ordinals line up one-to-one with the original tree's leaves the original
// structure is preserved and only leaf text changes. Any marker failure falls
// back to a paragraph-per-blank-line tree built from the plain text; the
// degradation is deliberate and lossy, not an error.
func Deserialize(marked string, original map[string]any) map[string]any {
	contents, ok := extractMarked(marked)
	if ok && original != nil && len(contents) == CountLeaves(original) {
		if rebuilt, err := ReplaceLeaves(original, contents); err == nil {
			return rebuilt
		}
	}
	return PlainTree(StripMarkers(marked))
}

func extractMarked(marked string) ([]string, bool) {
	matches := markerPattern.FindAllStringSubmatch(marked, -1)
	if len(matches) == 0 {
		return nil, false
	}
	byOrdinal := make(map[int]string, len(matches))
	for _, match := range matches {
		open, err := strconv.Atoi(match[1])
		if err != nil || match[1] != match[3] {
			return nil, false
		}
		if _, seen := byOrdinal[open]; seen {
			return nil, false
		}
		byOrdinal[open] = match[2]
	}
	contents := make([]string, len(byOrdinal))
	for i := range contents {
		content, ok := byOrdinal[i]
		if !ok {
			return nil, false
		}
		contents[i] = content
	}
	return contents, true
}

// StripMarkers removes ordinal markers, keeping their contents.
func StripMarkers(marked string) string {
	return markerPattern.ReplaceAllString(marked, "$2")
}

// PlainText joins all leaf texts with single spaces, trimmed.
func PlainText(tree map[string]any) string {
	texts := LeafTexts(tree)
	kept := make([]string, 0, len(texts))
	for _, text := range texts {
		if trimmed := strings.TrimSpace(text); trimmed != "" {
			kept = append(kept, trimmed)
		}
	}
	return strings.Join(kept, " ")
}

// PlainTree builds a minimal tree from plain text, one paragraph per blank
// line separated block.
func PlainTree(text string) map[string]any {
	paragraphs := blankLineSplit.Split(strings.TrimSpace(text), -1)
	children := make([]any, 0, len(paragraphs))
	for _, paragraph := range paragraphs {
		trimmed := strings.TrimSpace(paragraph)
		if trimmed == "" {
			continue
		}
		children = append(children, map[string]any{
			"type":     "paragraph",
			"version":  1,
			"children": []any{textNode(trimmed)},
		})
	}
	return map[string]any{
		"root": map[string]any{
			"type":     "root",
			"version":  1,
			"children": children,
		},
	}
}

func textNode(text string) map[string]any {
	return map[string]any{
		"type":    "text",
		"version": 1,
		"text":    text,
	}
}

func rootChildren(tree map[string]any) []any {
	if tree == nil {
		return nil
	}
	root, ok := tree["root"].(map[string]any)
	if !ok {
		return nil
	}
	children, ok := root["children"].([]any)
	if !ok {
		return nil
	}
	return children
}
