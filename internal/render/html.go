package render

import (
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/net/html"
)

var (
	blankRunsRe    = regexp.MustCompile(`\n{2,}`)
	headingBreakRe = regexp.MustCompile(`\n(#{1,6} )`)
)

type listFrame struct {
	ordered bool
	counter int
}

// HTMLToMarkdown converts HTML found in panel content to Markdown.
// Text without tags passes through unchanged.
func HTMLToMarkdown(text string) string {
	if !strings.Contains(text, "<") {
		return text
	}

	tz := html.NewTokenizer(strings.NewReader(text))

	var parts []string
	var listStack []listFrame
	var linkHref string
	var linkText []string
	inLink := false

	for {
		tt := tz.Next()
		if tt == html.ErrorToken {
			break
		}
		tok := tz.Token()

		switch tt {
		case html.StartTagToken, html.SelfClosingTagToken:
			switch tok.Data {
			case "h1", "h2", "h3", "h4", "h5", "h6":
				level := int(tok.Data[1] - '0')
				parts = append(parts, "\n"+strings.Repeat("#", level)+" ")
			case "ul":
				listStack = append(listStack, listFrame{ordered: false})
			case "ol":
				listStack = append(listStack, listFrame{ordered: true})
			case "li":
				if len(listStack) > 0 {
					top := &listStack[len(listStack)-1]
					top.counter++
					indent := strings.Repeat("  ", len(listStack)-1)
					prefix := "-"
					if top.ordered {
						prefix = strconv.Itoa(top.counter) + "."
					}
					parts = append(parts, "\n"+indent+prefix+" ")
				}
			case "a":
				linkHref = attr(tok, "href")
				inLink = true
				linkText = linkText[:0]
			case "hr":
				parts = append(parts, "\n\n---\n")
			case "p":
				parts = append(parts, "\n")
			}

		case html.EndTagToken:
			switch tok.Data {
			case "h1", "h2", "h3", "h4", "h5", "h6":
				parts = append(parts, "\n")
			case "ul", "ol":
				if len(listStack) > 0 {
					listStack = listStack[:len(listStack)-1]
				}
				if len(listStack) == 0 {
					parts = append(parts, "\n")
				}
			case "a":
				parts = append(parts, "["+strings.Join(linkText, "")+"]("+linkHref+")")
				inLink = false
				linkHref = ""
			case "p":
				parts = append(parts, "\n")
			}

		case html.TextToken:
			// Token() has already unescaped entities.
			if inLink {
				linkText = append(linkText, tok.Data)
			} else {
				parts = append(parts, tok.Data)
			}
		}
	}

	out := strings.Join(parts, "")
	// Collapse runs of blank lines, then restore one blank line before headings.
	out = blankRunsRe.ReplaceAllString(out, "\n")
	out = headingBreakRe.ReplaceAllString(out, "\n\n$1")
	return strings.TrimSpace(out)
}

func attr(tok html.Token, name string) string {
	for _, a := range tok.Attr {
		if a.Key == name {
			return a.Val
		}
	}
	return ""
}
