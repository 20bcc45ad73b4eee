// Package cache decodes the note-taking tool's local cache file into
// meeting documents.
//
// The cache is double-encoded: the outer JSON object carries a "cache"
// field that is itself a JSON string holding the application state.
package cache

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/veland/grimsync/internal/models"
)

type outerCache struct {
	Cache json.RawMessage `json:"cache"`
}

type innerCache struct {
	State struct {
		Documents        map[string]json.RawMessage `json:"documents"`
		MeetingsMetadata map[string]meetingMeta     `json:"meetingsMetadata"`
		Transcripts      map[string]json.RawMessage `json:"transcripts"`
		DocumentPanels   map[string]json.RawMessage `json:"documentPanels"`
		MultiChatState   struct {
			ChatContext chatContext `json:"chatContext"`
		} `json:"multiChatState"`
	} `json:"state"`
}

type meetingMeta struct {
	Attendees []person `json:"attendees"`
}

type chatContext struct {
	MeetingID            string `json:"meetingId"`
	ActiveEditorMarkdown string `json:"activeEditorMarkdown"`
}

type person struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	Organizer   bool   `json:"organizer"`
	IsOrganizer bool   `json:"is_organizer"`
}

type calendarAttendee struct {
	DisplayName string `json:"displayName"`
	Email       string `json:"email"`
	Organizer   bool   `json:"organizer"`
}

type rawDocument struct {
	Title     string          `json:"title"`
	CreatedAt json.RawMessage `json:"created_at"`
	Created   json.RawMessage `json:"createdAt"`
	UpdatedAt json.RawMessage `json:"updated_at"`
	Updated   json.RawMessage `json:"updatedAt"`
	DeletedAt json.RawMessage `json:"deleted_at"`

	NotesMarkdown  string          `json:"notes_markdown"`
	NotesMarkdown2 string          `json:"notesMarkdown"`
	Notes          json.RawMessage `json:"notes"`
	NotesRich      json.RawMessage `json:"notesProsemirror"`

	People struct {
		Attendees []person `json:"attendees"`
	} `json:"people"`
	CalendarEvent struct {
		Attendees []calendarAttendee `json:"attendees"`
	} `json:"google_calendar_event"`

	SourceURL  string `json:"source_url"`
	SourceURL2 string `json:"sourceUrl"`
}

type rawTranscriptEntry struct {
	Text           string  `json:"text"`
	Source         string  `json:"source"`
	Speaker        string  `json:"speaker"`
	StartTimestamp float64 `json:"start_timestamp"`
	Timestamp      float64 `json:"timestamp"`
}

type rawPanel struct {
	Title    string          `json:"title"`
	Content  json.RawMessage `json:"content"`
	Markdown string          `json:"markdown"`
	Response string          `json:"response"`
}

// Parse decodes the raw cache file contents into documents. Documents the
// source has marked deleted are skipped, as is any document that fails to
// decode (logged, never fatal for the batch).
func Parse(data []byte, logger *slog.Logger) ([]models.Document, error) {
	var outer outerCache
	if err := json.Unmarshal(data, &outer); err != nil {
		return nil, fmt.Errorf("cache: decode outer: %w", err)
	}

	// The cache field is usually a JSON string holding more JSON; newer
	// versions sometimes store the object directly.
	innerData := []byte(outer.Cache)
	var innerStr string
	if err := json.Unmarshal(outer.Cache, &innerStr); err == nil {
		innerData = []byte(innerStr)
	}

	var inner innerCache
	if err := json.Unmarshal(innerData, &inner); err != nil {
		return nil, fmt.Errorf("cache: decode inner: %w", err)
	}

	state := inner.State
	out := make([]models.Document, 0, len(state.Documents))

	// Sorted ID order keeps cycle reports and logs stable across runs.
	ids := make([]string, 0, len(state.Documents))
	for docID := range state.Documents {
		ids = append(ids, docID)
	}
	sort.Strings(ids)

	for _, docID := range ids {
		var rd rawDocument
		if err := json.Unmarshal(state.Documents[docID], &rd); err != nil {
			logger.Warn("cache: failed to parse document",
				slog.String("id", docID), slog.String("error", err.Error()))
			continue
		}
		if !isNull(rd.DeletedAt) {
			continue
		}

		doc := models.Document{
			ID:            docID,
			Title:         rd.Title,
			CreatedAt:     parseTimestamp(firstRaw(rd.CreatedAt, rd.Created)),
			UpdatedAt:     parseTimestamp(firstRaw(rd.UpdatedAt, rd.Updated)),
			NotesMarkdown: firstNonEmpty(rd.NotesMarkdown, rd.NotesMarkdown2),
			NotesRich:     firstRaw(rd.Notes, rd.NotesRich),
			Attendees:     parseAttendees(docID, rd, state.MeetingsMetadata),
			Transcript:    parseTranscript(state.Transcripts[docID]),
			SourceURL:     firstNonEmpty(rd.SourceURL, rd.SourceURL2),
		}
		if doc.Title == "" {
			doc.Title = "Untitled Meeting"
		}

		doc.Panels = parsePanels(state.DocumentPanels[docID])
		if len(doc.Panels) == 0 && state.MultiChatState.ChatContext.MeetingID == docID {
			doc.Panels = panelsFromMarkdown(state.MultiChatState.ChatContext.ActiveEditorMarkdown)
		}

		out = append(out, doc)
	}

	logger.Debug("cache: parsed documents", slog.Int("count", len(out)))
	return out, nil
}

func parseAttendees(docID string, rd rawDocument, meta map[string]meetingMeta) []models.Attendee {
	list := meta[docID].Attendees
	if len(list) == 0 {
		list = rd.People.Attendees
	}

	if len(list) == 0 {
		var out []models.Attendee
		for _, a := range rd.CalendarEvent.Attendees {
			name := a.DisplayName
			if name == "" {
				name = a.Email
			}
			if name == "" {
				name = "Unknown"
			}
			out = append(out, models.Attendee{Name: name, Email: a.Email, IsOrganizer: a.Organizer})
		}
		return out
	}

	var out []models.Attendee
	for _, p := range list {
		name := p.Name
		if name == "" {
			name = p.Email
		}
		if name == "" {
			name = "Unknown"
		}
		out = append(out, models.Attendee{
			Name:        name,
			Email:       p.Email,
			IsOrganizer: p.Organizer || p.IsOrganizer,
		})
	}
	return out
}

func parseTranscript(raw json.RawMessage) []models.TranscriptEntry {
	if len(raw) == 0 {
		return nil
	}

	var entries []rawTranscriptEntry
	if err := json.Unmarshal(raw, &entries); err != nil {
		// Some cache versions wrap the list in an object.
		var wrapped struct {
			Entries  []rawTranscriptEntry `json:"entries"`
			Segments []rawTranscriptEntry `json:"segments"`
		}
		if err := json.Unmarshal(raw, &wrapped); err != nil {
			return nil
		}
		entries = wrapped.Entries
		if len(entries) == 0 {
			entries = wrapped.Segments
		}
	}

	var out []models.TranscriptEntry
	for _, e := range entries {
		speaker := e.Source
		if speaker == "" {
			speaker = e.Speaker
		}
		if speaker == "" {
			speaker = "Unknown"
		}
		ts := e.StartTimestamp
		if ts == 0 {
			ts = e.Timestamp
		}
		out = append(out, models.TranscriptEntry{Speaker: speaker, Text: e.Text, Timestamp: ts})
	}
	return out
}

func parsePanels(raw json.RawMessage) []models.Panel {
	if len(raw) == 0 {
		return nil
	}

	var items []rawPanel
	var asList []json.RawMessage
	if err := json.Unmarshal(raw, &asList); err == nil {
		for _, r := range asList {
			var p rawPanel
			if json.Unmarshal(r, &p) == nil {
				items = append(items, p)
			}
		}
	} else {
		// Keyed by panel id; sort keys so output order is stable.
		var asMap map[string]rawPanel
		if err := json.Unmarshal(raw, &asMap); err != nil {
			return nil
		}
		keys := make([]string, 0, len(asMap))
		for k := range asMap {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			items = append(items, asMap[k])
		}
	}

	var out []models.Panel
	for _, p := range items {
		if p.Title == "" {
			continue
		}
		content := panelContent(p)
		if content == "" {
			continue
		}
		out = append(out, models.Panel{Title: p.Title, Content: content})
	}
	return out
}

// panelContent resolves a panel body: rich-text JSON is converted to
// markdown, otherwise the first non-empty plain field wins.
func panelContent(p rawPanel) string {
	if len(p.Content) > 0 && p.Content[0] == '{' {
		if md := ProseMirrorToMarkdown(p.Content); md != "" {
			return md
		}
	}
	if p.Markdown != "" {
		return p.Markdown
	}
	if p.Response != "" {
		return p.Response
	}
	var s string
	if json.Unmarshal(p.Content, &s) == nil {
		return s
	}
	return ""
}

var panelHeadingRe = regexp.MustCompile(`(?m)^## (.+)$`)

// panelsFromMarkdown splits a markdown blob on ## headings. Text before
// the first heading becomes a "Summary" panel.
func panelsFromMarkdown(md string) []models.Panel {
	if md == "" {
		return nil
	}

	locs := panelHeadingRe.FindAllStringSubmatchIndex(md, -1)
	var out []models.Panel

	preambleEnd := len(md)
	if len(locs) > 0 {
		preambleEnd = locs[0][0]
	}
	if preamble := strings.TrimSpace(md[:preambleEnd]); preamble != "" {
		out = append(out, models.Panel{Title: "Summary", Content: preamble})
	}

	for i, loc := range locs {
		title := strings.TrimSpace(md[loc[2]:loc[3]])
		end := len(md)
		if i+1 < len(locs) {
			end = locs[i+1][0]
		}
		content := strings.TrimSpace(md[loc[1]:end])
		if title != "" && content != "" {
			out = append(out, models.Panel{Title: title, Content: content})
		}
	}
	return out
}

// parseTimestamp accepts ISO strings, epoch seconds, epoch millis, and
// numeric strings. Anything unparseable falls back to the current time.
func parseTimestamp(raw json.RawMessage) time.Time {
	if isNull(raw) {
		return time.Now().UTC()
	}

	var num float64
	if err := json.Unmarshal(raw, &num); err == nil {
		return fromEpoch(num)
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		for _, layout := range []string{
			"2006-01-02T15:04:05.000Z",
			"2006-01-02T15:04:05Z",
			"2006-01-02T15:04:05",
			time.RFC3339Nano,
		} {
			if t, err := time.Parse(layout, s); err == nil {
				return t.UTC()
			}
		}
		if n, err := strconv.ParseFloat(s, 64); err == nil {
			return fromEpoch(n)
		}
	}
	return time.Now().UTC()
}

func fromEpoch(v float64) time.Time {
	if v > 1e12 { // epoch millis
		v = v / 1000
	}
	sec := int64(v)
	nsec := int64((v - float64(sec)) * 1e9)
	return time.Unix(sec, nsec).UTC()
}

func isNull(raw json.RawMessage) bool {
	return len(raw) == 0 || string(raw) == "null"
}

func firstRaw(raws ...json.RawMessage) json.RawMessage {
	for _, r := range raws {
		if !isNull(r) {
			return r
		}
	}
	return nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
