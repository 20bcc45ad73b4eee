package cache

import (
	"encoding/json"
	"fmt"
	"strings"
)

// pmNode is one node of the source tool's rich-text editor document.
type pmNode struct {
	Type    string         `json:"type"`
	Text    string         `json:"text"`
	Content []pmNode       `json:"content"`
	Attrs   map[string]any `json:"attrs"`
	Marks   []pmMark       `json:"marks"`
}

type pmMark struct {
	Type  string         `json:"type"`
	Attrs map[string]any `json:"attrs"`
}

// ProseMirrorToMarkdown converts rich-text editor JSON to Markdown.
// Used when a document lacks a pre-rendered markdown field. Unknown node
// types render their children; undecodable input renders as empty.
func ProseMirrorToMarkdown(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var doc pmNode
	if err := json.Unmarshal(raw, &doc); err != nil {
		return ""
	}
	return strings.TrimSpace(renderNodes(doc.Content))
}

func renderNodes(nodes []pmNode) string {
	var b strings.Builder
	for _, n := range nodes {
		b.WriteString(renderNode(n))
	}
	return b.String()
}

func renderNode(n pmNode) string {
	switch n.Type {
	case "doc":
		return renderNodes(n.Content)

	case "paragraph":
		return renderInline(n.Content) + "\n\n"

	case "heading":
		level := attrInt(n.Attrs, "level", 1)
		return strings.Repeat("#", level) + " " + renderInline(n.Content) + "\n\n"

	case "bulletList":
		return renderList(n.Content, false)

	case "orderedList":
		return renderList(n.Content, true)

	case "listItem":
		return renderInline(n.Content)

	case "blockquote":
		inner := strings.TrimSpace(renderNodes(n.Content))
		lines := strings.Split(inner, "\n")
		for i, line := range lines {
			lines[i] = "> " + line
		}
		return strings.Join(lines, "\n") + "\n\n"

	case "codeBlock":
		lang := attrString(n.Attrs, "language")
		return "```" + lang + "\n" + renderInline(n.Content) + "\n```\n\n"

	case "horizontalRule":
		return "---\n\n"

	case "hardBreak":
		return "\n"

	case "text":
		return renderText(n)

	default:
		if len(n.Content) > 0 {
			return renderNodes(n.Content)
		}
		return ""
	}
}

func renderInline(nodes []pmNode) string {
	var b strings.Builder
	for _, n := range nodes {
		switch n.Type {
		case "text":
			b.WriteString(renderText(n))
		case "hardBreak":
			b.WriteString("\n")
		default:
			if len(n.Content) > 0 {
				b.WriteString(renderInline(n.Content))
			}
		}
	}
	return b.String()
}

func renderText(n pmNode) string {
	text := n.Text
	for _, mark := range n.Marks {
		switch mark.Type {
		case "bold", "strong":
			text = "**" + text + "**"
		case "italic", "em":
			text = "*" + text + "*"
		case "code":
			text = "`" + text + "`"
		case "strike", "strikethrough":
			text = "~~" + text + "~~"
		case "link":
			text = "[" + text + "](" + attrString(mark.Attrs, "href") + ")"
		}
	}
	return text
}

func renderList(items []pmNode, ordered bool) string {
	var lines []string
	for i, item := range items {
		text := strings.TrimSpace(renderNodes(item.Content))
		prefix := "- "
		if ordered {
			prefix = fmt.Sprintf("%d. ", i+1)
		}
		indent := strings.Repeat(" ", len(prefix))
		for j, line := range strings.Split(text, "\n") {
			if j == 0 {
				lines = append(lines, prefix+line)
			} else {
				lines = append(lines, indent+line)
			}
		}
	}
	return strings.Join(lines, "\n") + "\n\n"
}

func attrInt(attrs map[string]any, key string, def int) int {
	if v, ok := attrs[key]; ok {
		if f, ok := v.(float64); ok {
			return int(f)
		}
	}
	return def
}

func attrString(attrs map[string]any, key string) string {
	if v, ok := attrs[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}
