// Package schema resolves which field paths of a collection are translatable.
package schema

import "strings"

// Field types recognised by the resolver. Unknown types contribute nothing.
const (
	TypeText     = "text"
	TypeTextarea = "textarea"
	TypeRichText = "richText"
	TypeGroup    = "group"
	TypeTab      = "tab"
	TypeArray    = "array"
	TypeBlocks   = "blocks"
)

// Field describes one node of a collection schema. Containers carry child
// fields; blocks fields carry one Block per union variant.
type Field struct {
	Name      string  `json:"name" yaml:"name"`
	Type      string  `json:"type" yaml:"type"`
	Localized bool    `json:"localized,omitempty" yaml:"localized,omitempty"`
	Fields    []Field `json:"fields,omitempty" yaml:"fields,omitempty"`
	Blocks    []Block `json:"blocks,omitempty" yaml:"blocks,omitempty"`
}

// Block is one variant of a tagged-union blocks field, identified by its slug.
type Block struct {
	Slug   string  `json:"slug" yaml:"slug"`
	Fields []Field `json:"fields,omitempty" yaml:"fields,omitempty"`
}

// TranslatablePaths enumerates the path patterns of localized leaf fields in
// schema order. Repeatable lists append "[]"; block variants append "[#slug]"
// so concrete resolution can match on the stored discriminator tag.
func TranslatablePaths(fields []Field) []string {
	patterns := make([]string, 0)
	collectPatterns(fields, "", &patterns)
	return patterns
}

func collectPatterns(fields []Field, prefix string, out *[]string) {
	for _, field := range fields {
		name := strings.TrimSpace(field.Name)
		switch field.Type {
		case TypeText, TypeTextarea, TypeRichText:
			if field.Localized && name != "" {
				*out = append(*out, joinPath(prefix, name))
			}
		case TypeGroup, TypeTab:
			// Unnamed containers extend the path with nothing.
			next := prefix
			if name != "" {
				next = joinPath(prefix, name)
			}
			collectPatterns(field.Fields, next, out)
		case TypeArray:
			if name == "" {
				continue
			}
			collectPatterns(field.Fields, joinPath(prefix, name+"[]"), out)
		case TypeBlocks:
			if name == "" {
				continue
			}
			for _, block := range field.Blocks {
				slug := strings.TrimSpace(block.Slug)
				if slug == "" {
					continue
				}
				collectPatterns(block.Fields, joinPath(prefix, name+"[#"+slug+"]"), out)
			}
		}
	}
}

func joinPath(prefix, segment string) string {
	if prefix == "" {
		return segment
	}
	return prefix + "." + segment
}
