package fragments

import (
	"strconv"
	"strings"
)

// fieldSegment is one parsed step of a dotted field path. Bracket suffixes
// mark array expansion (`items[]`), a concrete index (`items[2]`), or a
// block-variant scan keyed by discriminator tag (`sections[#hero]`).
type fieldSegment struct {
	name     string
	isArray  bool
	index    *int
	blockTag string
}

func parseFieldSegment(segment string) fieldSegment {
	segment = strings.TrimSpace(segment)
	if segment == "" {
		return fieldSegment{}
	}
	open := strings.Index(segment, "[")
	close := strings.LastIndex(segment, "]")
	if open >= 0 && close > open {
		name := segment[:open]
		inner := strings.TrimSpace(segment[open+1 : close])
		switch {
		case inner == "":
			return fieldSegment{name: name, isArray: true}
		case strings.HasPrefix(inner, "#"):
			return fieldSegment{name: name, isArray: true, blockTag: strings.TrimPrefix(inner, "#")}
		default:
			if idx, err := strconv.Atoi(inner); err == nil {
				return fieldSegment{name: name, isArray: true, index: &idx}
			}
			return fieldSegment{name: name}
		}
	}
	return fieldSegment{name: segment}
}

func parseFieldPath(path string) []fieldSegment {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil
	}
	parts := strings.Split(path, ".")
	segments := make([]fieldSegment, 0, len(parts))
	for _, part := range parts {
		segment := parseFieldSegment(part)
		if segment.name == "" && !segment.isArray {
			continue
		}
		segments = append(segments, segment)
	}
	return segments
}

// ValueAtPath reads the value at a concrete dotted/indexed path. The second
// return is false when any step is absent or shaped differently than the
// path expects.
func ValueAtPath(doc map[string]any, path string) (any, bool) {
	var value any = doc
	for _, segment := range parseFieldPath(path) {
		if segment.name != "" {
			typed, ok := value.(map[string]any)
			if !ok {
				return nil, false
			}
			next, ok := typed[segment.name]
			if !ok {
				return nil, false
			}
			value = next
		}
		if segment.isArray {
			list, ok := value.([]any)
			if !ok {
				return nil, false
			}
			if segment.index == nil || *segment.index < 0 || *segment.index >= len(list) {
				return nil, false
			}
			value = list[*segment.index]
		}
	}
	return value, true
}
