package wikilink

import "strings"

// Inject rewrites text to add [[wikilink]] markup around the first
// qualifying occurrence of each indexed term.
//
// Rules:
//   - longest registered phrase wins over any shorter sub-phrase
//   - matches inside protected zones (frontmatter, code, URLs, existing
//     links) are left untouched
//   - each target is linked at most once per document
//   - a document never links to itself: any selfKey (title, output file
//     stem) that a match resolves to is suppressed
//   - matching is case-insensitive; the body's original casing is kept,
//     using [[Target|text]] alias form when the casing differs
//
// Output is byte-identical across calls with identical inputs.
func (ix *Index) Inject(text string, selfKeys ...string) string {
	if ix == nil || ix.pattern == nil || len(ix.terms) == 0 {
		return text
	}

	zones := protectedZones(text)
	self := make(map[string]struct{}, len(selfKeys))
	for _, k := range selfKeys {
		if k != "" {
			self[Normalize(k)] = struct{}{}
		}
	}
	linked := make(map[string]struct{})

	var b strings.Builder
	b.Grow(len(text) + 64)
	last := 0

	for _, m := range ix.pattern.FindAllStringIndex(text, -1) {
		start, end := m[0], m[1]
		matched := text[start:end]

		target, ok := ix.terms[Normalize(matched)]
		if !ok {
			continue
		}
		targetKey := Normalize(target)
		if _, own := self[targetKey]; own {
			continue
		}
		if _, dup := linked[targetKey]; dup {
			continue
		}
		if inZone(start, end, zones) {
			continue
		}

		linked[targetKey] = struct{}{}
		b.WriteString(text[last:start])
		if matched == target {
			b.WriteString("[[" + matched + "]]")
		} else {
			b.WriteString("[[" + target + "|" + matched + "]]")
		}
		last = end
	}

	if last == 0 {
		return text
	}
	b.WriteString(text[last:])
	return b.String()
}
