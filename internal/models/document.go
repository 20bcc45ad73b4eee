// Package models defines the domain types for GrimSync.
package models

import (
	"encoding/json"
	"time"
)

// Attendee is one meeting participant.
type Attendee struct {
	Name        string `json:"name"`
	Email       string `json:"email,omitempty"`
	IsOrganizer bool   `json:"is_organizer,omitempty"`
}

// TranscriptEntry is a single utterance from the meeting transcript.
type TranscriptEntry struct {
	Speaker   string  `json:"speaker"`
	Text      string  `json:"text"`
	Timestamp float64 `json:"timestamp,omitempty"`
}

// Panel is an AI-generated summary section (e.g. "Summary", "Action Items").
// Content is Markdown, possibly containing embedded HTML from the source tool.
type Panel struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// Document is one meeting as read from the source tool's cache.
//
// ID is the source system's stable identifier, so renames (title changes)
// remain detectable across sync cycles.
type Document struct {
	ID            string            `json:"id"`
	Title         string            `json:"title"`
	CreatedAt     time.Time         `json:"created_at"`
	UpdatedAt     time.Time         `json:"updated_at"`
	NotesMarkdown string            `json:"notes_markdown,omitempty"`
	NotesRich     json.RawMessage   `json:"-"` // rich-text editor JSON, fallback when no markdown
	Attendees     []Attendee        `json:"attendees,omitempty"`
	Transcript    []TranscriptEntry `json:"transcript,omitempty"`
	Panels        []Panel           `json:"panels,omitempty"`
	SourceURL     string            `json:"source_url,omitempty"`
}

// FileMeta is a lightweight representation of one vault file,
// returned by storage list operations. Listing never reads file
// contents; callers that need the body read it themselves.
type FileMeta struct {
	Path      string    `json:"path"`
	UpdatedAt time.Time `json:"updated_at"`
}
