package engine

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/veland/grimsync/internal/models"
	"github.com/veland/grimsync/internal/storage"
	"github.com/veland/grimsync/internal/syncstate"
	"github.com/veland/grimsync/internal/testutil"
)

func defaultOpts() Options {
	return Options{Subfolder: "Meetings", IncludePanels: true, MinTermLength: 3}
}

func newTestEngine(t *testing.T, opts Options) (*Engine, storage.Provider, *syncstate.Store) {
	t.Helper()
	_, vault := testutil.TestVault(t)
	state := testutil.TestState(t)
	return New(vault, state, opts, testutil.Logger()), vault, state
}

func meetingDoc(id, title string) models.Document {
	return models.Document{
		ID:        id,
		Title:     title,
		CreatedAt: time.Date(2026, 1, 5, 10, 0, 0, 0, time.UTC),
		Panels:    []models.Panel{{Title: "Summary", Content: "Talked about the roadmap."}},
	}
}

func TestRunCycle_NewNote(t *testing.T) {
	eng, vault, state := newTestEngine(t, defaultOpts())
	doc := meetingDoc("n1", "Planning Session")

	summary, err := eng.RunCycle(context.Background(), []models.Document{doc})
	if err != nil {
		t.Fatalf("RunCycle: %v", err)
	}
	if summary.Written != 1 || summary.Failed != 0 {
		t.Fatalf("summary = %+v, want 1 written", summary)
	}

	wantPath := "Meetings/2026-01-05 - Planning Session.md"
	data, err := vault.Read(wantPath)
	if err != nil {
		t.Fatalf("note not written: %v", err)
	}
	if !strings.Contains(string(data), "## Summary") {
		t.Errorf("note content incomplete:\n%s", data)
	}

	rec, err := state.Get("n1")
	if err != nil || rec == nil {
		t.Fatalf("state record missing: rec=%v err=%v", rec, err)
	}
	if rec.Path != wantPath {
		t.Errorf("recorded path = %q, want %q", rec.Path, wantPath)
	}
}

func TestRunCycle_SecondRunSkips(t *testing.T) {
	eng, _, _ := newTestEngine(t, defaultOpts())
	docs := []models.Document{meetingDoc("n1", "Planning Session")}

	if _, err := eng.RunCycle(context.Background(), docs); err != nil {
		t.Fatalf("first cycle: %v", err)
	}
	summary, err := eng.RunCycle(context.Background(), docs)
	if err != nil {
		t.Fatalf("second cycle: %v", err)
	}
	if summary.Skipped != 1 || summary.Written != 0 {
		t.Errorf("summary = %+v, want 1 skipped", summary)
	}
}

func TestRunCycle_ContentChange(t *testing.T) {
	eng, vault, _ := newTestEngine(t, defaultOpts())
	doc := meetingDoc("n1", "Planning Session")

	if _, err := eng.RunCycle(context.Background(), []models.Document{doc}); err != nil {
		t.Fatalf("first cycle: %v", err)
	}

	doc.Panels[0].Content = "Revised the plan entirely."
	summary, err := eng.RunCycle(context.Background(), []models.Document{doc})
	if err != nil {
		t.Fatalf("second cycle: %v", err)
	}
	if summary.Written != 1 {
		t.Fatalf("summary = %+v, want 1 written", summary)
	}

	data, _ := vault.Read("Meetings/2026-01-05 - Planning Session.md")
	if !strings.Contains(string(data), "Revised the plan entirely.") {
		t.Errorf("note not updated:\n%s", data)
	}
}

func TestRunCycle_Rename(t *testing.T) {
	eng, vault, state := newTestEngine(t, defaultOpts())
	doc := meetingDoc("n1", "Planning Session")

	if _, err := eng.RunCycle(context.Background(), []models.Document{doc}); err != nil {
		t.Fatalf("first cycle: %v", err)
	}

	doc.Title = "Q1 Planning Session"
	summary, err := eng.RunCycle(context.Background(), []models.Document{doc})
	if err != nil {
		t.Fatalf("second cycle: %v", err)
	}
	if summary.Renamed != 1 {
		t.Fatalf("summary = %+v, want 1 renamed", summary)
	}

	if _, err := vault.Read("Meetings/2026-01-05 - Planning Session.md"); err == nil {
		t.Error("old file still present after rename")
	}
	if _, err := vault.Read("Meetings/2026-01-05 - Q1 Planning Session.md"); err != nil {
		t.Errorf("new file missing: %v", err)
	}

	all, err := state.All()
	if err != nil {
		t.Fatalf("state dump: %v", err)
	}
	if len(all) != 1 {
		t.Errorf("state has %d records, want 1", len(all))
	}
	if got := all["n1"].Path; got != "Meetings/2026-01-05 - Q1 Planning Session.md" {
		t.Errorf("recorded path = %q", got)
	}
}

func TestRunCycle_RenameOldFileAlreadyGone(t *testing.T) {
	eng, vault, _ := newTestEngine(t, defaultOpts())
	doc := meetingDoc("n1", "Planning Session")

	if _, err := eng.RunCycle(context.Background(), []models.Document{doc}); err != nil {
		t.Fatalf("first cycle: %v", err)
	}
	if err := vault.Delete("Meetings/2026-01-05 - Planning Session.md"); err != nil {
		t.Fatalf("delete: %v", err)
	}

	doc.Title = "Moved Session"
	summary, err := eng.RunCycle(context.Background(), []models.Document{doc})
	if err != nil {
		t.Fatalf("second cycle: %v", err)
	}
	if summary.Renamed != 1 || summary.Failed != 0 {
		t.Errorf("summary = %+v, want 1 renamed", summary)
	}
}

func TestRunCycle_Preview(t *testing.T) {
	opts := defaultOpts()
	opts.Preview = true
	eng, vault, state := newTestEngine(t, opts)

	summary, err := eng.RunCycle(context.Background(), []models.Document{meetingDoc("n1", "Planning Session")})
	if err != nil {
		t.Fatalf("RunCycle: %v", err)
	}
	if summary.Written != 1 {
		t.Errorf("summary = %+v, want 1 would-be write", summary)
	}

	if _, err := vault.Read("Meetings/2026-01-05 - Planning Session.md"); err == nil {
		t.Error("preview wrote a file")
	}
	rec, _ := state.Get("n1")
	if rec != nil {
		t.Error("preview updated state")
	}
}

func TestRunCycle_ResyncAfterClear(t *testing.T) {
	eng, _, state := newTestEngine(t, defaultOpts())
	docs := []models.Document{meetingDoc("n1", "Planning Session")}

	if _, err := eng.RunCycle(context.Background(), docs); err != nil {
		t.Fatalf("first cycle: %v", err)
	}
	if err := state.Clear(); err != nil {
		t.Fatalf("clear: %v", err)
	}

	summary, err := eng.RunCycle(context.Background(), docs)
	if err != nil {
		t.Fatalf("second cycle: %v", err)
	}
	if summary.Written != 1 || summary.Skipped != 0 {
		t.Errorf("summary = %+v, want full rewrite after clear", summary)
	}
}

func TestRunCycle_AutoLink(t *testing.T) {
	opts := defaultOpts()
	opts.AutoLink = true
	eng, vault, _ := newTestEngine(t, opts)

	if err := vault.Write("Project Atlas.md", []byte("# Project Atlas\n")); err != nil {
		t.Fatalf("seed vault: %v", err)
	}

	doc := meetingDoc("n1", "Planning Session")
	doc.Panels[0].Content = "We reviewed Project Atlas milestones."
	if _, err := eng.RunCycle(context.Background(), []models.Document{doc}); err != nil {
		t.Fatalf("RunCycle: %v", err)
	}

	data, err := vault.Read("Meetings/2026-01-05 - Planning Session.md")
	if err != nil {
		t.Fatalf("read note: %v", err)
	}
	if !strings.Contains(string(data), "[[Project Atlas]]") {
		t.Errorf("wikilink not injected:\n%s", data)
	}
}

func TestRunCycle_NoSelfLinkThroughOwnFileAlias(t *testing.T) {
	opts := defaultOpts()
	opts.AutoLink = true
	eng, vault, _ := newTestEngine(t, opts)

	// A vault note hand-links this meeting's dated file with the bare
	// title as alias, so the index resolves "Planning Session" to the
	// meeting's own file.
	seed := "See [[2026-01-05 - Planning Session|Planning Session]] for details.\n"
	if err := vault.Write("Index.md", []byte(seed)); err != nil {
		t.Fatalf("seed vault: %v", err)
	}

	doc := meetingDoc("n1", "Planning Session")
	doc.Panels[0].Content = "Planning Session recap and next steps."
	if _, err := eng.RunCycle(context.Background(), []models.Document{doc}); err != nil {
		t.Fatalf("RunCycle: %v", err)
	}

	data, err := vault.Read("Meetings/2026-01-05 - Planning Session.md")
	if err != nil {
		t.Fatalf("read note: %v", err)
	}
	if strings.Contains(string(data), "[[2026-01-05 - Planning Session") {
		t.Errorf("note links to its own file:\n%s", data)
	}
}

// failingWrites wraps a provider and rejects writes for one path.
type failingWrites struct {
	storage.Provider
	badPath string
}

func (f failingWrites) Write(path string, content []byte) error {
	if path == f.badPath {
		return errors.New("disk full")
	}
	return f.Provider.Write(path, content)
}

func TestRunCycle_FailureDoesNotAbortBatch(t *testing.T) {
	_, inner := testutil.TestVault(t)
	vault := failingWrites{Provider: inner, badPath: "Meetings/2026-01-05 - Broken Meeting.md"}
	state := testutil.TestState(t)
	eng := New(vault, state, defaultOpts(), testutil.Logger())

	docs := []models.Document{
		meetingDoc("n1", "Broken Meeting"),
		meetingDoc("n2", "Healthy Meeting"),
	}
	summary, err := eng.RunCycle(context.Background(), docs)
	if err != nil {
		t.Fatalf("RunCycle: %v", err)
	}
	if summary.Failed != 1 || summary.Written != 1 {
		t.Fatalf("summary = %+v, want 1 failed and 1 written", summary)
	}

	// The failed note must stay unrecorded so the next cycle retries it.
	rec, _ := state.Get("n1")
	if rec != nil {
		t.Error("failed note was recorded in state")
	}
	if rec, _ := state.Get("n2"); rec == nil {
		t.Error("healthy note missing from state")
	}
}

func TestRunCycle_Cancelled(t *testing.T) {
	eng, _, _ := newTestEngine(t, defaultOpts())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := eng.RunCycle(ctx, []models.Document{meetingDoc("n1", "Planning Session")})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}
