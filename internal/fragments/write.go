package fragments

import (
	"errors"
	"fmt"
)

// ErrEmptyPath is returned when a write is requested without a target path.
var ErrEmptyPath = errors.New("fragments: path is required")

// structuralFields are carried over from the source document when a write
// creates a new array element, so discriminator tags and identifiers stay
// aligned with the canonical structure.
var structuralFields = []string{"blockType", "id"}

// SetValue writes value at a concrete path inside target, creating
// intermediate maps and growing arrays as needed. The source document
// supplies sibling structural metadata for elements created along the way.
func SetValue(target map[string]any, source map[string]any, path string, value any) error {
	segments := parseFieldPath(path)
	if len(segments) == 0 {
		return ErrEmptyPath
	}

	cursor := target
	var srcCursor any = source
	for i, segment := range segments {
		last := i == len(segments)-1
		if segment.name == "" {
			return fmt.Errorf("fragments: path %q has an unnamed segment", path)
		}

		var srcNext any
		if srcMap, ok := srcCursor.(map[string]any); ok {
			srcNext = srcMap[segment.name]
		}

		if !segment.isArray {
			if last {
				cursor[segment.name] = value
				return nil
			}
			next, ok := cursor[segment.name].(map[string]any)
			if !ok {
				next = map[string]any{}
				cursor[segment.name] = next
			}
			cursor = next
			srcCursor = srcNext
			continue
		}

		if segment.index == nil {
			return fmt.Errorf("fragments: path %q has an unresolved array segment", path)
		}
		idx := *segment.index
		if idx < 0 {
			return fmt.Errorf("fragments: path %q has a negative index", path)
		}

		list, _ := cursor[segment.name].([]any)
		for len(list) <= idx {
			list = append(list, nil)
		}
		cursor[segment.name] = list

		var srcElement any
		if srcList, ok := srcNext.([]any); ok && idx < len(srcList) {
			srcElement = srcList[idx]
		}

		if last {
			list[idx] = value
			return nil
		}

		element, ok := list[idx].(map[string]any)
		if !ok {
			element = map[string]any{}
			copyStructuralFields(element, srcElement)
			list[idx] = element
		}
		cursor = element
		srcCursor = srcElement
	}
	return nil
}

func copyStructuralFields(target map[string]any, source any) {
	srcMap, ok := source.(map[string]any)
	if !ok {
		return
	}
	for _, field := range structuralFields {
		if value, ok := srcMap[field].(string); ok && value != "" {
			target[field] = value
		}
	}
}

// StripFields removes top-level keys from a working copy, typically identity
// and timestamp fields the store maintains itself.
func StripFields(doc map[string]any, fields []string) {
	for _, field := range fields {
		delete(doc, field)
	}
}

// CloneMap deep-copies a document payload so working copies never alias
// store-owned values.
func CloneMap(input map[string]any) map[string]any {
	if input == nil {
		return map[string]any{}
	}
	out := make(map[string]any, len(input))
	for key, value := range input {
		out[key] = cloneValue(value)
	}
	return out
}

func cloneValue(value any) any {
	switch typed := value.(type) {
	case map[string]any:
		return CloneMap(typed)
	case []any:
		out := make([]any, len(typed))
		for i, element := range typed {
			out[i] = cloneValue(element)
		}
		return out
	default:
		return value
	}
}
