package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
)

// LocalStore keeps blobs as files in a single directory
type LocalStore struct {
	dir string
}

// NewLocalStore creates dir if needed and returns a store rooted there
func NewLocalStore(dir string) (*LocalStore, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve image directory: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("could not create image directory %s: %w", abs, err)
	}
	return &LocalStore{dir: filepath.Clean(abs)}, nil
}

// Dir returns the absolute directory holding the blobs
func (s *LocalStore) Dir() string {
	return s.dir
}

func (s *LocalStore) path(name string) (string, error) {
	if err := ValidateName(name); err != nil {
		return "", err
	}
	return filepath.Join(s.dir, name), nil
}

func (s *LocalStore) Store(ctx context.Context, name string, r io.Reader) (int64, error) {
	target, err := s.path(name)
	if err != nil {
		return 0, err
	}

	tmp, err := os.CreateTemp(s.dir, ".upload-*")
	if err != nil {
		return 0, fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	n, err := io.Copy(tmp, r)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return 0, fmt.Errorf("failed to write %s: %w", name, err)
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	// Rename replaces an existing file of the same name
	if err := os.Rename(tmpName, target); err != nil {
		return 0, fmt.Errorf("failed to move %s into place: %w", name, err)
	}
	return n, nil
}

func (s *LocalStore) Open(_ context.Context, name string) (io.ReadCloser, BlobInfo, error) {
	p, err := s.path(name)
	if err != nil {
		return nil, BlobInfo{}, err
	}
	f, err := os.Open(p)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, BlobInfo{}, ErrNotFound
	}
	if err != nil {
		return nil, BlobInfo{}, err
	}
	st, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, BlobInfo{}, err
	}
	if st.IsDir() {
		f.Close()
		return nil, BlobInfo{}, ErrNotFound
	}
	return f, BlobInfo{Name: name, Size: st.Size(), ModTime: st.ModTime()}, nil
}

func (s *LocalStore) Delete(_ context.Context, name string) error {
	p, err := s.path(name)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("error deleting file %s: %w", name, err)
	}
	return nil
}

func (s *LocalStore) List(_ context.Context) ([]BlobInfo, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, err
	}
	blobs := make([]BlobInfo, 0, len(entries))
	for _, e := range entries {
		if !e.Type().IsRegular() || ValidateName(e.Name()) != nil || e.Name()[0] == '.' {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		blobs = append(blobs, BlobInfo{Name: e.Name(), Size: info.Size(), ModTime: info.ModTime()})
	}
	sort.Slice(blobs, func(i, j int) bool { return blobs[i].Name < blobs[j].Name })
	return blobs, nil
}

func (s *LocalStore) Describe(_ context.Context) Description {
	d := Description{Type: "local", Location: s.dir}
	st, err := os.Stat(s.dir)
	if err != nil || !st.IsDir() {
		return d
	}
	d.Exists = true
	if f, err := os.Open(s.dir); err == nil {
		d.CanRead = true
		f.Close()
	}
	if f, err := os.CreateTemp(s.dir, ".probe-*"); err == nil {
		d.CanWrite = true
		f.Close()
		os.Remove(f.Name())
	}
	d.Reachable = d.CanRead && d.CanWrite
	return d
}
