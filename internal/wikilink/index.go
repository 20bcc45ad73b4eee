// Package wikilink builds a reference index from the vault corpus and
// injects [[wikilinks]] into rendered note text.
package wikilink

import (
	"regexp"
	"sort"
	"strings"
)

// wikilinkRe captures the inside of [[...]] markup.
var wikilinkRe = regexp.MustCompile(`\[\[([^\]]+)\]\]`)

// CorpusDoc is one existing vault document used for index building.
type CorpusDoc struct {
	Title string
	Body  string
}

// Index maps normalized terms to canonical link targets.
// Built fresh every sync cycle and immutable afterwards.
type Index struct {
	// terms maps normalized surface form -> canonical target.
	terms map[string]string
	// surfaces keeps the first-seen original casing per normalized term,
	// used to build the match pattern.
	surfaces map[string]string
	pattern  *regexp.Regexp
}

// BuildIndex scans the corpus and returns a reference index.
//
// Each document title registers as a term pointing at itself. Existing
// [[Target]] and [[Target|Alias]] markup registers the alias (or the target
// when there is none) as an extra term pointing at Target, so hand-linked
// synonyms propagate to new notes. Terms shorter than minLength are dropped.
func BuildIndex(corpus []CorpusDoc, minLength int) *Index {
	ix := &Index{
		terms:    make(map[string]string),
		surfaces: make(map[string]string),
	}

	for _, doc := range corpus {
		ix.register(doc.Title, doc.Title, minLength)

		for _, m := range wikilinkRe.FindAllStringSubmatch(doc.Body, -1) {
			raw := m[1]
			target := raw
			surface := raw
			if i := strings.Index(raw, "|"); i >= 0 {
				target = raw[:i]
				surface = raw[i+1:]
			}
			target = strings.TrimSpace(target)
			surface = strings.TrimSpace(surface)
			if target == "" {
				continue
			}
			if surface == "" {
				surface = target
			}
			ix.register(surface, target, minLength)
		}
	}

	ix.compile()
	return ix
}

// register adds one surface→target mapping. First registration wins for a
// given normalized term, so index contents do not depend on map ordering.
func (ix *Index) register(surface, target string, minLength int) {
	key := Normalize(surface)
	if len(key) < minLength {
		return
	}
	if _, ok := ix.terms[key]; ok {
		return
	}
	ix.terms[key] = target
	ix.surfaces[key] = strings.Join(strings.Fields(surface), " ")
}

// compile builds the alternation pattern, longest surface first so a longer
// registered phrase always beats a shorter sub-phrase it contains.
func (ix *Index) compile() {
	if len(ix.surfaces) == 0 {
		return
	}

	alts := make([]string, 0, len(ix.surfaces))
	for _, s := range ix.surfaces {
		alts = append(alts, s)
	}
	sort.Slice(alts, func(i, j int) bool {
		if len(alts[i]) != len(alts[j]) {
			return len(alts[i]) > len(alts[j])
		}
		return alts[i] < alts[j]
	})

	parts := make([]string, len(alts))
	for i, s := range alts {
		words := strings.Fields(s)
		for j, w := range words {
			words[j] = regexp.QuoteMeta(w)
		}
		// Internal whitespace in the body may be uncollapsed.
		parts[i] = strings.Join(words, `[ \t]+`)
	}

	ix.pattern = regexp.MustCompile(`(?i)\b(?:` + strings.Join(parts, "|") + `)\b`)
}

// Len returns the number of registered terms.
func (ix *Index) Len() int {
	if ix == nil {
		return 0
	}
	return len(ix.terms)
}

// Lookup returns the canonical target for a term, matching the index's
// normalization rules.
func (ix *Index) Lookup(term string) (string, bool) {
	if ix == nil {
		return "", false
	}
	t, ok := ix.terms[Normalize(term)]
	return t, ok
}

// Normalize lowercases, trims, and collapses internal whitespace so term
// comparison is case- and spacing-insensitive while staying phrase-aware.
func Normalize(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}
