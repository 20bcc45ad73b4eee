// Package render assembles Markdown notes from meeting documents.
package render

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/veland/grimsync/internal/cache"
	"github.com/veland/grimsync/internal/models"
)

// Options controls which sections appear in the rendered body.
type Options struct {
	IncludePanels     bool
	IncludeTranscript bool
}

var (
	// Characters not allowed in filenames.
	invalidFilenameRe = regexp.MustCompile(`[<>:"/\\|?*\x00-\x1f]`)
	datePrefixRe      = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}[\s\-–—]`)
)

// Filename derives the output filename: "YYYY-MM-DD - Title.md".
// A title that already starts with a date is not prefixed again.
func Filename(doc models.Document) string {
	title := doc.Title
	if title == "" {
		title = "Untitled Meeting"
	}
	title = strings.TrimSpace(invalidFilenameRe.ReplaceAllString(title, ""))
	if title == "" {
		title = "Untitled Meeting"
	}

	if datePrefixRe.MatchString(title) {
		return title + ".md"
	}
	return doc.CreatedAt.Format("2006-01-02") + " - " + title + ".md"
}

// frontmatter is marshalled as a struct so field order is stable; the
// content fingerprint depends on byte-identical output across runs.
type frontmatter struct {
	Title     string    `yaml:"title"`
	Date      time.Time `yaml:"date"`
	Attendees []string  `yaml:"attendees"`
	NoteID    string    `yaml:"note_id"`
	Tags      []string  `yaml:"tags"`
	Aliases   []string  `yaml:"aliases"`
}

// Frontmatter renders the YAML frontmatter block, without trailing newline.
func Frontmatter(doc models.Document) (string, error) {
	names := make([]string, 0, len(doc.Attendees))
	for _, a := range doc.Attendees {
		names = append(names, a.Name)
	}

	fm := frontmatter{
		Title:     doc.Title,
		Date:      doc.CreatedAt.UTC(),
		Attendees: names,
		NoteID:    doc.ID,
		Tags:      []string{"meeting"},
		Aliases:   []string{doc.Title},
	}

	out, err := yaml.Marshal(fm)
	if err != nil {
		return "", fmt.Errorf("render: frontmatter: %w", err)
	}
	return "---\n" + string(out) + "---", nil
}

// Body builds the main Markdown body: attendees, AI panels (or raw notes
// as fallback), and optionally a collapsible transcript.
func Body(doc models.Document, opts Options) string {
	var sections []string

	if len(doc.Attendees) > 0 {
		lines := make([]string, len(doc.Attendees))
		for i, a := range doc.Attendees {
			lines[i] = "- " + a.Name
		}
		sections = append(sections, "## Attendees\n\n"+strings.Join(lines, "\n"))
	}

	if opts.IncludePanels && len(doc.Panels) > 0 {
		for _, panel := range doc.Panels {
			content := HTMLToMarkdown(strings.TrimSpace(panel.Content))
			sections = append(sections, "## "+panel.Title+"\n\n"+content)
		}
	} else {
		notes := doc.NotesMarkdown
		if notes == "" && len(doc.NotesRich) > 0 {
			notes = cache.ProseMirrorToMarkdown(doc.NotesRich)
		}
		if notes != "" {
			sections = append(sections, strings.TrimSpace(notes))
		}
	}

	if opts.IncludeTranscript && len(doc.Transcript) > 0 {
		lines := make([]string, len(doc.Transcript))
		for i, e := range doc.Transcript {
			lines[i] = "**" + e.Speaker + "**: " + e.Text
		}
		sections = append(sections,
			"<details>\n<summary>Transcript</summary>\n\n"+
				strings.Join(lines, "\n\n")+
				"\n\n</details>")
	}

	return strings.Join(sections, "\n\n")
}

// Assemble renders the complete note: frontmatter plus body.
func Assemble(doc models.Document, opts Options) (string, error) {
	fm, err := Frontmatter(doc)
	if err != nil {
		return "", err
	}
	body := Body(doc, opts)
	if body == "" {
		return fm + "\n", nil
	}
	return fm + "\n\n" + body + "\n", nil
}
