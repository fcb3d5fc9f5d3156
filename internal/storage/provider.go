// Package storage defines the content directory abstraction.
package storage

import "github.com/jr6v5m2k/rotomsongs/internal/models"

// Provider is the interface for content file operations.
type Provider interface {
	// List returns metadata for every .md file directly under dir (relative to root), sorted by name.
	List(dir string) ([]models.FileMeta, error)
	// Read returns the raw bytes of the file at path (relative to root).
	Read(path string) ([]byte, error)
	// Write atomically writes content to path (relative to root).
	Write(path string, content []byte) error
}
