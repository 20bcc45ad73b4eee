package render

import (
	"strings"
	"testing"
)

func TestHTMLToMarkdown_PlainTextUntouched(t *testing.T) {
	in := "Just markdown, no tags."
	if got := HTMLToMarkdown(in); got != in {
		t.Errorf("got %q, want unchanged", got)
	}
}

func TestHTMLToMarkdown_Headings(t *testing.T) {
	got := HTMLToMarkdown("<h2>Agenda</h2><p>Items below.</p>")
	if !strings.Contains(got, "## Agenda") {
		t.Errorf("heading missing: %q", got)
	}
	if !strings.Contains(got, "Items below.") {
		t.Errorf("paragraph missing: %q", got)
	}
}

func TestHTMLToMarkdown_Lists(t *testing.T) {
	got := HTMLToMarkdown("<ul><li>one</li><li>two</li></ul>")
	if !strings.Contains(got, "- one") || !strings.Contains(got, "- two") {
		t.Errorf("bullet items missing: %q", got)
	}

	got = HTMLToMarkdown("<ol><li>first</li><li>second</li></ol>")
	if !strings.Contains(got, "1. first") || !strings.Contains(got, "2. second") {
		t.Errorf("ordered items missing: %q", got)
	}
}

func TestHTMLToMarkdown_NestedList(t *testing.T) {
	got := HTMLToMarkdown("<ul><li>outer<ul><li>inner</li></ul></li></ul>")
	if !strings.Contains(got, "- outer") {
		t.Errorf("outer item missing: %q", got)
	}
	if !strings.Contains(got, "  - inner") {
		t.Errorf("nested item not indented: %q", got)
	}
}

func TestHTMLToMarkdown_Links(t *testing.T) {
	got := HTMLToMarkdown(`<p>See <a href="https://x.io/doc">the doc</a>.</p>`)
	if !strings.Contains(got, "[the doc](https://x.io/doc)") {
		t.Errorf("link not converted: %q", got)
	}
}

func TestHTMLToMarkdown_Entities(t *testing.T) {
	got := HTMLToMarkdown("<p>Fish &amp; chips</p>")
	if !strings.Contains(got, "Fish & chips") {
		t.Errorf("entity not decoded: %q", got)
	}
}

func TestHTMLToMarkdown_HorizontalRule(t *testing.T) {
	got := HTMLToMarkdown("<p>above</p><hr><p>below</p>")
	if !strings.Contains(got, "---") {
		t.Errorf("hr missing: %q", got)
	}
}
