// Package api exposes a read-only HTTP surface for observing sync state.
package api

import (
	"log/slog"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/veland/grimsync/internal/engine"
	"github.com/veland/grimsync/internal/syncstate"
)

// Tracker remembers the most recent cycle summary for the status endpoint.
type Tracker struct {
	mu   sync.Mutex
	last *engine.Summary
}

// NewTracker creates an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{}
}

// Record stores the latest cycle summary.
func (t *Tracker) Record(s engine.Summary) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.last = &s
}

func (t *Tracker) snapshot() *engine.Summary {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.last
}

// Handler holds API route handlers.
type Handler struct {
	tracker *Tracker
	state   *syncstate.Store
}

// NewHandler creates a new Handler.
func NewHandler(tracker *Tracker, state *syncstate.Store) *Handler {
	return &Handler{tracker: tracker, state: state}
}

type statusResponse struct {
	LastSync     *time.Time `json:"last_sync,omitempty"`
	Written      int        `json:"written"`
	Skipped      int        `json:"skipped"`
	Renamed      int        `json:"renamed"`
	Failed       int        `json:"failed"`
	TrackedNotes int        `json:"tracked_notes"`
}

// Status handles GET /api/status: last cycle counts and how many notes
// the state store is tracking.
func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	all, err := h.state.All()
	if err != nil {
		slog.Error("status: state dump failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}

	resp := statusResponse{TrackedNotes: len(all)}
	if last := h.tracker.snapshot(); last != nil {
		resp.LastSync = &last.CompletedAt
		resp.Written = last.Written
		resp.Skipped = last.Skipped
		resp.Renamed = last.Renamed
		resp.Failed = last.Failed
	}
	writeJSON(w, http.StatusOK, resp)
}

type recordDTO struct {
	NoteID      string `json:"note_id"`
	Path        string `json:"path"`
	Fingerprint string `json:"fingerprint"`
}

// Records handles GET /api/records: every tracked note, sorted by path.
func (h *Handler) Records(w http.ResponseWriter, r *http.Request) {
	all, err := h.state.All()
	if err != nil {
		slog.Error("records: state dump failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}

	records := make([]recordDTO, 0, len(all))
	for _, rec := range all {
		records = append(records, recordDTO{NoteID: rec.NoteID, Path: rec.Path, Fingerprint: rec.Fingerprint})
	}
	sort.Slice(records, func(i, j int) bool { return records[i].Path < records[j].Path })

	writeJSON(w, http.StatusOK, map[string]any{
		"records": records,
		"total":   len(records),
	})
}
