// Package storage defines the vault file-system abstraction.
package storage

import "github.com/veland/grimsync/internal/models"

// Provider is the interface for vault file operations.
// All paths are relative to the vault root.
type Provider interface {
	// List returns metadata for every .md file under dir.
	List(dir string) ([]models.FileMeta, error)
	// Read returns the raw bytes of the file at path. A missing file
	// yields an error wrapping apperr.ErrNotFound.
	Read(path string) ([]byte, error)
	// Write atomically writes content to path.
	Write(path string, content []byte) error
	// Delete removes the file at path. A missing file yields an error
	// wrapping apperr.ErrNotFound.
	Delete(path string) error
}
