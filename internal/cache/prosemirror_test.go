package cache

import (
	"encoding/json"
	"strings"
	"testing"
)

func pm(t *testing.T, doc map[string]any) json.RawMessage {
	t.Helper()
	raw, err := json.Marshal(doc)
	if err != nil {
		t.Fatal(err)
	}
	return raw
}

func TestProseMirror_ParagraphAndHeading(t *testing.T) {
	raw := pm(t, map[string]any{
		"type": "doc",
		"content": []map[string]any{
			{"type": "heading", "attrs": map[string]any{"level": 2},
				"content": []map[string]any{{"type": "text", "text": "Agenda"}}},
			{"type": "paragraph",
				"content": []map[string]any{{"type": "text", "text": "First item."}}},
		},
	})

	got := ProseMirrorToMarkdown(raw)
	want := "## Agenda\n\nFirst item."
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestProseMirror_Marks(t *testing.T) {
	raw := pm(t, map[string]any{
		"type": "doc",
		"content": []map[string]any{
			{"type": "paragraph", "content": []map[string]any{
				{"type": "text", "text": "bold", "marks": []map[string]any{{"type": "bold"}}},
				{"type": "text", "text": " and "},
				{"type": "text", "text": "linked", "marks": []map[string]any{
					{"type": "link", "attrs": map[string]any{"href": "https://x.io"}},
				}},
			}},
		},
	})

	got := ProseMirrorToMarkdown(raw)
	if !strings.Contains(got, "**bold**") {
		t.Errorf("missing bold mark: %q", got)
	}
	if !strings.Contains(got, "[linked](https://x.io)") {
		t.Errorf("missing link mark: %q", got)
	}
}

func TestProseMirror_Lists(t *testing.T) {
	raw := pm(t, map[string]any{
		"type": "doc",
		"content": []map[string]any{
			{"type": "bulletList", "content": []map[string]any{
				{"type": "listItem", "content": []map[string]any{{"type": "text", "text": "one"}}},
				{"type": "listItem", "content": []map[string]any{{"type": "text", "text": "two"}}},
			}},
			{"type": "orderedList", "content": []map[string]any{
				{"type": "listItem", "content": []map[string]any{{"type": "text", "text": "first"}}},
			}},
		},
	})

	got := ProseMirrorToMarkdown(raw)
	if !strings.Contains(got, "- one\n- two") {
		t.Errorf("bullet list wrong: %q", got)
	}
	if !strings.Contains(got, "1. first") {
		t.Errorf("ordered list wrong: %q", got)
	}
}

func TestProseMirror_CodeBlockAndQuote(t *testing.T) {
	raw := pm(t, map[string]any{
		"type": "doc",
		"content": []map[string]any{
			{"type": "codeBlock", "attrs": map[string]any{"language": "go"},
				"content": []map[string]any{{"type": "text", "text": "x := 1"}}},
			{"type": "blockquote", "content": []map[string]any{
				{"type": "paragraph", "content": []map[string]any{{"type": "text", "text": "quoted"}}},
			}},
		},
	})

	got := ProseMirrorToMarkdown(raw)
	if !strings.Contains(got, "```go\nx := 1\n```") {
		t.Errorf("code block wrong: %q", got)
	}
	if !strings.Contains(got, "> quoted") {
		t.Errorf("blockquote wrong: %q", got)
	}
}

func TestProseMirror_UnknownNodeRendersChildren(t *testing.T) {
	raw := pm(t, map[string]any{
		"type": "doc",
		"content": []map[string]any{
			{"type": "mystery", "content": []map[string]any{
				{"type": "paragraph", "content": []map[string]any{{"type": "text", "text": "inner"}}},
			}},
		},
	})
	if got := ProseMirrorToMarkdown(raw); got != "inner" {
		t.Errorf("got %q, want %q", got, "inner")
	}
}

func TestProseMirror_EmptyAndInvalid(t *testing.T) {
	if got := ProseMirrorToMarkdown(nil); got != "" {
		t.Errorf("nil input: %q", got)
	}
	if got := ProseMirrorToMarkdown(json.RawMessage("not json")); got != "" {
		t.Errorf("invalid input: %q", got)
	}
}
