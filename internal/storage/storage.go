// Package storage holds uploaded image bytes under generated names.
package storage

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrNotFound is returned when no blob exists under the requested name
	ErrNotFound = errors.New("blob not found")
	// ErrInvalidName is returned for empty names or names that could escape the store
	ErrInvalidName = errors.New("invalid blob name")
)

// BlobInfo describes one stored blob
type BlobInfo struct {
	Name    string    `json:"name"`
	Size    int64     `json:"size"`
	ModTime time.Time `json:"modTime"`
}

// Description reports where and how a store keeps its blobs
type Description struct {
	Type      string `json:"type"`
	Location  string `json:"location"`
	Exists    bool   `json:"exists"`
	CanRead   bool   `json:"canRead"`
	CanWrite  bool   `json:"canWrite"`
	Reachable bool   `json:"reachable"`
}

// BlobStore is a flat namespace of blobs keyed by name.
type BlobStore interface {
	// Store writes r under name, replacing any existing blob, and returns the bytes written.
	Store(ctx context.Context, name string, r io.Reader) (int64, error)
	// Open returns a reader for the named blob or ErrNotFound.
	Open(ctx context.Context, name string) (io.ReadCloser, BlobInfo, error)
	// Delete removes the named blob. A missing blob is not an error.
	Delete(ctx context.Context, name string) error
	// List returns every stored blob.
	List(ctx context.Context) ([]BlobInfo, error)
	Describe(ctx context.Context) Description
}

// GenerateName returns a collision-resistant blob name that keeps the
// extension of original, case included. Everything from the last dot of the
// base name counts as the extension, so ".bashrc" keeps ".bashrc".
func GenerateName(original string) string {
	return uuid.NewString() + extension(original)
}

func extension(original string) string {
	base := filepath.Base(strings.ReplaceAll(original, "\\", "/"))
	ext := filepath.Ext(base)
	if ext == "." || ext == "/" {
		return ""
	}
	return ext
}

// ValidateName rejects names that are empty or contain path elements
func ValidateName(name string) error {
	if name == "" || name == "." || name == ".." ||
		strings.ContainsAny(name, `/\`) || strings.Contains(name, "..") {
		return ErrInvalidName
	}
	return nil
}
