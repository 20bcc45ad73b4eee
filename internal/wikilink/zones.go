package wikilink

import (
	"regexp"
	"sort"
)

// Patterns for regions that must never be rewritten: frontmatter, code,
// existing link markup, and raw URLs.
var (
	frontmatterRe = regexp.MustCompile(`(?s)\A---\n.*?\n---`)
	fencedCodeRe  = regexp.MustCompile("(?s)```.*?```")
	inlineCodeRe  = regexp.MustCompile("`[^`]+`")
	existingRe    = regexp.MustCompile(`\[\[[^\]]+\]\]`)
	mdLinkRe      = regexp.MustCompile(`\[[^\]]*\]\([^)]+\)`)
	bareURLRe     = regexp.MustCompile(`https?://\S+`)
)

// zone is a half-open [start, end) byte range excluded from link injection.
type zone struct {
	start, end int
}

// protectedZones finds all text ranges that must not be modified,
// sorted by start offset.
func protectedZones(text string) []zone {
	var zones []zone
	for _, re := range []*regexp.Regexp{
		frontmatterRe,
		fencedCodeRe,
		inlineCodeRe,
		existingRe,
		mdLinkRe,
		bareURLRe,
	} {
		for _, m := range re.FindAllStringIndex(text, -1) {
			zones = append(zones, zone{start: m[0], end: m[1]})
		}
	}
	sort.Slice(zones, func(i, j int) bool { return zones[i].start < zones[j].start })
	return zones
}

// inZone reports whether the candidate range [start, end) overlaps any zone.
func inZone(start, end int, zones []zone) bool {
	for _, z := range zones {
		if z.start >= end {
			break
		}
		if start < z.end && end > z.start {
			return true
		}
	}
	return false
}
