package fragments_test

import (
	"reflect"
	"testing"

	"github.com/goliatone/go-localize/internal/fragments"
)

func TestSetValueCreatesNestedMaps(t *testing.T) {
	target := map[string]any{}
	if err := fragments.SetValue(target, nil, "settings.hero.headline", "Welkom"); err != nil {
		t.Fatalf("SetValue returned error: %v", err)
	}

	got, ok := fragments.ValueAtPath(target, "settings.hero.headline")
	if !ok || got != "Welkom" {
		t.Fatalf("expected written value, got %#v (ok=%v)", got, ok)
	}
}

func TestSetValuePreservesDiscriminators(t *testing.T) {
	source := map[string]any{
		"sections": []any{
			map[string]any{"blockType": "hero", "id": "b1", "title": "Hello world"},
		},
	}

	target := map[string]any{}
	if err := fragments.SetValue(target, source, "sections[0].title", "Hallo wereld"); err != nil {
		t.Fatalf("SetValue returned error: %v", err)
	}

	list := target["sections"].([]any)
	element := list[0].(map[string]any)
	if element["blockType"] != "hero" {
		t.Fatalf("expected discriminator carried over, got %#v", element)
	}
	if element["id"] != "b1" {
		t.Fatalf("expected id carried over, got %#v", element)
	}
	if element["title"] != "Hallo wereld" {
		t.Fatalf("expected translated title, got %#v", element)
	}
}

func TestSetValueKeepsExistingSiblings(t *testing.T) {
	target := map[string]any{
		"sections": []any{
			map[string]any{"blockType": "hero", "subtitle": "keep me"},
		},
	}
	if err := fragments.SetValue(target, nil, "sections[0].title", "new"); err != nil {
		t.Fatalf("SetValue returned error: %v", err)
	}
	element := target["sections"].([]any)[0].(map[string]any)
	if element["subtitle"] != "keep me" {
		t.Fatalf("existing siblings must survive writes, got %#v", element)
	}
}

func TestSetValueGrowsArrays(t *testing.T) {
	target := map[string]any{}
	if err := fragments.SetValue(target, nil, "items[2].label", "third"); err != nil {
		t.Fatalf("SetValue returned error: %v", err)
	}
	list := target["items"].([]any)
	if len(list) != 3 {
		t.Fatalf("expected array grown to 3, got %d", len(list))
	}
	if list[0] != nil || list[1] != nil {
		t.Fatalf("expected padding elements to stay nil, got %#v", list)
	}
}

func TestSetValueErrors(t *testing.T) {
	if err := fragments.SetValue(map[string]any{}, nil, "", "x"); err == nil {
		t.Fatalf("expected error for empty path")
	}
	if err := fragments.SetValue(map[string]any{}, nil, "items[].label", "x"); err == nil {
		t.Fatalf("expected error for unresolved array segment")
	}
}

func TestStripFields(t *testing.T) {
	doc := map[string]any{"id": "1", "createdAt": "x", "title": "keep"}
	fragments.StripFields(doc, []string{"id", "createdAt", "updatedAt"})
	if !reflect.DeepEqual(doc, map[string]any{"title": "keep"}) {
		t.Fatalf("unexpected document after strip: %#v", doc)
	}
}

func TestCloneMapDoesNotAlias(t *testing.T) {
	original := map[string]any{
		"nested": map[string]any{"list": []any{map[string]any{"k": "v"}}},
	}
	cloned := fragments.CloneMap(original)
	cloned["nested"].(map[string]any)["list"].([]any)[0].(map[string]any)["k"] = "changed"
	if original["nested"].(map[string]any)["list"].([]any)[0].(map[string]any)["k"] != "v" {
		t.Fatalf("clone aliases original")
	}
}
