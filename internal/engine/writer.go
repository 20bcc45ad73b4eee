package engine

import (
	"errors"
	"log/slog"
	"time"

	"github.com/veland/grimsync/internal/apperr"
	"github.com/veland/grimsync/internal/models"
	"github.com/veland/grimsync/internal/syncstate"
)

// Outcome statuses reported per note.
const (
	OutcomeWritten = "written"
	OutcomeSkipped = "skipped"
	OutcomeRenamed = "renamed"
	OutcomeFailed  = "failed"
)

// Outcome records what happened to one note during a cycle.
type Outcome struct {
	NoteID string `json:"note_id"`
	Title  string `json:"title"`
	Status string `json:"status"`
	Path   string `json:"path"`
	Error  string `json:"error,omitempty"`
}

// Summary aggregates one cycle's outcomes.
type Summary struct {
	Written     int       `json:"written"`
	Skipped     int       `json:"skipped"`
	Renamed     int       `json:"renamed"`
	Failed      int       `json:"failed"`
	Outcomes    []Outcome `json:"outcomes"`
	CompletedAt time.Time `json:"completed_at"`
}

func (s *Summary) add(o Outcome) {
	switch o.Status {
	case OutcomeWritten:
		s.Written++
	case OutcomeSkipped:
		s.Skipped++
	case OutcomeRenamed:
		s.Renamed++
	case OutcomeFailed:
		s.Failed++
	}
	s.Outcomes = append(s.Outcomes, o)
}

func failedOutcome(doc models.Document, path, reason string) Outcome {
	return Outcome{NoteID: doc.ID, Title: doc.Title, Status: OutcomeFailed, Path: path, Error: reason}
}

// apply carries out a classified action. State is updated only after the
// file operations succeed, so a failed write is retried on the next cycle.
func (e *Engine) apply(doc models.Document, action Action, content, fingerprint string) Outcome {
	out := Outcome{NoteID: doc.ID, Title: doc.Title, Path: action.Path}

	if action.Status == StatusUnchanged {
		out.Status = OutcomeSkipped
		e.logger.Debug("unchanged", slog.String("path", action.Path))
		return out
	}

	if e.opts.Preview {
		return e.preview(out, action)
	}

	if action.Status == StatusRenamed {
		// The old file may already be gone; that is not an error.
		if err := e.vault.Delete(action.OldPath); err != nil && !errors.Is(err, apperr.ErrNotFound) {
			e.logger.Error("rename: delete old file failed",
				slog.String("note_id", doc.ID),
				slog.String("old_path", action.OldPath),
				slog.String("error", err.Error()))
			return failedOutcome(doc, action.Path, "delete old file: "+err.Error())
		}
	}

	if err := e.vault.Write(action.Path, []byte(content)); err != nil {
		e.logger.Error("write failed",
			slog.String("note_id", doc.ID),
			slog.String("path", action.Path),
			slog.String("error", err.Error()))
		return failedOutcome(doc, action.Path, "write: "+err.Error())
	}

	rec := syncstate.Record{NoteID: doc.ID, Fingerprint: fingerprint, Path: action.Path}
	if err := e.state.Put(rec); err != nil {
		e.logger.Error("state update failed",
			slog.String("note_id", doc.ID),
			slog.String("error", err.Error()))
		return failedOutcome(doc, action.Path, "state: "+err.Error())
	}

	if action.Status == StatusRenamed {
		out.Status = OutcomeRenamed
		e.logger.Info("renamed",
			slog.String("old_path", action.OldPath),
			slog.String("path", action.Path))
	} else {
		out.Status = OutcomeWritten
		e.logger.Info("written",
			slog.String("path", action.Path),
			slog.String("status", action.Status))
	}
	return out
}

// preview reports what a real run would do without touching files or state.
func (e *Engine) preview(out Outcome, action Action) Outcome {
	switch action.Status {
	case StatusRenamed:
		out.Status = OutcomeRenamed
		e.logger.Info("[preview] would rename",
			slog.String("old_path", action.OldPath),
			slog.String("path", action.Path))
	default:
		out.Status = OutcomeWritten
		e.logger.Info("[preview] would write",
			slog.String("path", action.Path),
			slog.String("status", action.Status))
	}
	return out
}
