// Package engine reconciles incoming meeting documents against the vault:
// render, wikify, classify, write.
package engine

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/veland/grimsync/internal/checksum"
	"github.com/veland/grimsync/internal/models"
	"github.com/veland/grimsync/internal/render"
	"github.com/veland/grimsync/internal/storage"
	"github.com/veland/grimsync/internal/syncstate"
	"github.com/veland/grimsync/internal/wikilink"
)

// Options configures one engine instance.
type Options struct {
	Subfolder         string // vault subfolder for synced notes
	IncludePanels     bool
	IncludeTranscript bool
	AutoLink          bool
	MinTermLength     int
	Preview           bool // report actions without touching files or state
}

// Engine runs sync cycles. Cycles are strictly sequential: each note's
// render→classify→write pipeline completes before the next note starts,
// and the wikilink index is built once per cycle and never mutated.
type Engine struct {
	vault  storage.Provider
	state  *syncstate.Store
	opts   Options
	logger *slog.Logger
}

// New creates an engine over the given vault and state store.
func New(vault storage.Provider, state *syncstate.Store, opts Options, logger *slog.Logger) *Engine {
	return &Engine{vault: vault, state: state, opts: opts, logger: logger}
}

// RunCycle reconciles one batch of documents. Per-note failures are
// reported in the summary and never abort the batch; the returned error
// is non-nil only for cancellation.
//
// Notes present in prior state but absent from docs are left alone: a
// note disappearing from the upstream cache is not evidence it should be
// removed from the vault.
func (e *Engine) RunCycle(ctx context.Context, docs []models.Document) (Summary, error) {
	summary := Summary{CompletedAt: time.Now().UTC()}

	var ix *wikilink.Index
	if e.opts.AutoLink {
		ix = e.buildIndex()
	}

	for _, doc := range docs {
		// Cancellation is only honored between notes, so each note's file
		// write and state update always land together.
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		outcome := e.syncOne(doc, ix)
		summary.add(outcome)
	}

	summary.CompletedAt = time.Now().UTC()
	e.logger.Info("sync cycle complete",
		slog.Int("written", summary.Written),
		slog.Int("skipped", summary.Skipped),
		slog.Int("renamed", summary.Renamed),
		slog.Int("failed", summary.Failed))
	return summary, nil
}

// buildIndex scans the vault corpus for linkable terms. Unreadable files
// are skipped with a warning; an unreadable vault yields an empty index
// rather than failing the cycle.
func (e *Engine) buildIndex() *wikilink.Index {
	metas, err := e.vault.List("")
	if err != nil {
		e.logger.Warn("index: vault scan failed", slog.String("error", err.Error()))
		return wikilink.BuildIndex(nil, e.opts.MinTermLength)
	}

	corpus := make([]wikilink.CorpusDoc, 0, len(metas))
	for _, m := range metas {
		data, err := e.vault.Read(m.Path)
		if err != nil {
			e.logger.Warn("index: read failed", slog.String("path", m.Path), slog.String("error", err.Error()))
			continue
		}
		title := strings.TrimSuffix(filepath.Base(m.Path), ".md")
		corpus = append(corpus, wikilink.CorpusDoc{Title: title, Body: string(data)})
	}

	ix := wikilink.BuildIndex(corpus, e.opts.MinTermLength)
	e.logger.Debug("index: built", slog.Int("terms", ix.Len()))
	return ix
}

// syncOne runs the full pipeline for a single document.
func (e *Engine) syncOne(doc models.Document, ix *wikilink.Index) Outcome {
	content, err := render.Assemble(doc, render.Options{
		IncludePanels:     e.opts.IncludePanels,
		IncludeTranscript: e.opts.IncludeTranscript,
	})
	if err != nil {
		e.logger.Error("render failed", slog.String("note_id", doc.ID), slog.String("error", err.Error()))
		return failedOutcome(doc, "", "render: "+err.Error())
	}

	filename := render.Filename(doc)

	if ix != nil && ix.Len() > 0 {
		// The note is known to the corpus both by its raw title and by
		// its dated file stem; neither may link back to this note.
		stem := strings.TrimSuffix(filename, ".md")
		content = ix.Inject(content, doc.Title, stem)
	}

	fingerprint := checksum.SumString(content)
	outPath := filepath.Join(e.opts.Subfolder, filename)

	prior, err := e.state.Get(doc.ID)
	if err != nil {
		e.logger.Error("state lookup failed", slog.String("note_id", doc.ID), slog.String("error", err.Error()))
		return failedOutcome(doc, outPath, "state: "+err.Error())
	}

	action := classify(outPath, fingerprint, prior)
	return e.apply(doc, action, content, fingerprint)
}
