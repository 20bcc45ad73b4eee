// Package testutil provides shared fixtures for package tests.
package testutil

import (
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/veland/grimsync/internal/storage"
	"github.com/veland/grimsync/internal/syncstate"
)

// Logger returns a logger that discards everything.
func Logger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// TestVault creates a throwaway vault directory and a provider over it.
func TestVault(t *testing.T) (string, storage.Provider) {
	t.Helper()
	root := t.TempDir()
	fs, err := storage.NewFS(root)
	if err != nil {
		t.Fatalf("create vault provider: %v", err)
	}
	return root, fs
}

// TestState opens a fresh state store in a temp directory and closes it
// when the test ends.
func TestState(t *testing.T) *syncstate.Store {
	t.Helper()
	store, err := syncstate.Open(filepath.Join(t.TempDir(), "state.db"), Logger())
	if err != nil {
		t.Fatalf("open state store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}
