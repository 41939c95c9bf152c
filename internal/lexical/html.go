package lexical

import (
	"bytes"
	"errors"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Text format bitmask values carried on leaf nodes.
const (
	formatBold   = 1
	formatItalic = 2
	formatCode   = 16
)

// ErrNotRichText is returned when an HTML conversion is asked for a value
// that is not a rich-text tree.
var ErrNotRichText = errors.New("lexical: value is not a rich text tree")

// ToHTML renders a rich-text tree as an HTML string for contexts that need
// WYSIWYG-style diffing or richer translation context.
func ToHTML(tree map[string]any) (string, error) {
	children := rootChildren(tree)
	if children == nil {
		return "", ErrNotRichText
	}
	var buf bytes.Buffer
	for _, child := range children {
		node := blockNode(child)
		if node == nil {
			continue
		}
		if err := html.Render(&buf, node); err != nil {
			return "", err
		}
	}
	return buf.String(), nil
}

func blockNode(value any) *html.Node {
	node, ok := value.(map[string]any)
	if !ok {
		return nil
	}
	nodeType, _ := node["type"].(string)
	children, _ := node["children"].([]any)

	switch nodeType {
	case "heading":
		tag, _ := node["tag"].(string)
		switch tag {
		case "h1", "h2", "h3", "h4", "h5", "h6":
		default:
			tag = "h2"
		}
		return containerElement(tag, children)
	case "list":
		tag, _ := node["tag"].(string)
		if tag != "ol" {
			tag = "ul"
		}
		list := element(tag)
		for _, child := range children {
			item, ok := child.(map[string]any)
			if !ok {
				continue
			}
			itemChildren, _ := item["children"].([]any)
			list.AppendChild(containerElement("li", itemChildren))
		}
		return list
	case "quote":
		return containerElement("blockquote", children)
	default:
		return containerElement("p", children)
	}
}

func containerElement(tag string, children []any) *html.Node {
	parent := element(tag)
	for _, child := range children {
		appendInline(parent, child)
	}
	return parent
}

func appendInline(parent *html.Node, value any) {
	node, ok := value.(map[string]any)
	if !ok {
		return
	}
	nodeType, _ := node["type"].(string)
	if nodeType == "linebreak" {
		parent.AppendChild(element("br"))
		return
	}
	if text, ok := node["text"].(string); ok && (nodeType == "" || nodeType == "text") {
		target := parent
		format := 0
		if f, ok := node["format"].(int); ok {
			format = f
		} else if f, ok := node["format"].(float64); ok {
			format = int(f)
		}
		if format&formatBold != 0 {
			wrapped := element("strong")
			target.AppendChild(wrapped)
			target = wrapped
		}
		if format&formatItalic != 0 {
			wrapped := element("em")
			target.AppendChild(wrapped)
			target = wrapped
		}
		if format&formatCode != 0 {
			wrapped := element("code")
			target.AppendChild(wrapped)
			target = wrapped
		}
		target.AppendChild(&html.Node{Type: html.TextNode, Data: text})
		return
	}
	children, _ := node["children"].([]any)
	for _, child := range children {
		appendInline(parent, child)
	}
}

func element(tag string) *html.Node {
	return &html.Node{
		Type:     html.ElementNode,
		Data:     tag,
		DataAtom: atom.Lookup([]byte(tag)),
	}
}

// FromHTML parses an HTML string into a rich-text tree. Parse failures and
// unrecognised content degrade to plain paragraphs rather than erroring.
func FromHTML(input string) map[string]any {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(input))
	if err != nil {
		return PlainTree(input)
	}

	children := make([]any, 0)
	doc.Find("body").Children().Each(func(_ int, sel *goquery.Selection) {
		switch name := goquery.NodeName(sel); name {
		case "h1", "h2", "h3", "h4", "h5", "h6":
			children = append(children, map[string]any{
				"type":     "heading",
				"tag":      name,
				"version":  1,
				"children": []any{textNode(strings.TrimSpace(sel.Text()))},
			})
		case "ul", "ol":
			items := make([]any, 0)
			sel.ChildrenFiltered("li").Each(func(_ int, li *goquery.Selection) {
				items = append(items, map[string]any{
					"type":     "listitem",
					"version":  1,
					"children": []any{textNode(strings.TrimSpace(li.Text()))},
				})
			})
			if len(items) > 0 {
				children = append(children, map[string]any{
					"type":     "list",
					"tag":      name,
					"version":  1,
					"children": items,
				})
			}
		case "blockquote":
			children = append(children, map[string]any{
				"type":     "quote",
				"version":  1,
				"children": []any{textNode(strings.TrimSpace(sel.Text()))},
			})
		default:
			if text := strings.TrimSpace(sel.Text()); text != "" {
				children = append(children, paragraphOf(text))
			}
		}
	})

	if len(children) == 0 {
		if text := strings.TrimSpace(doc.Text()); text != "" {
			children = append(children, paragraphOf(text))
		} else {
			return PlainTree(input)
		}
	}

	return map[string]any{
		"root": map[string]any{
			"type":     "root",
			"version":  1,
			"children": children,
		},
	}
}

func paragraphOf(text string) map[string]any {
	return map[string]any{
		"type":     "paragraph",
		"version":  1,
		"children": []any{textNode(text)},
	}
}
