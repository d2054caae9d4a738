// Package blob stores uploaded image binaries on disk, keyed by generated
// filenames of the form "<unix-ms>-<original filename>". The relational rows
// that reference blobs live in the store package; nothing ties the two writes
// together transactionally, so either side can be orphaned by a crash. The
// sweeper package reconciles orphaned blobs.
package blob

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned when a blob key has no file behind it.
var ErrNotFound = errors.New("blob not found")

// Store is a disk-backed content store rooted at one directory.
type Store struct {
	dir string
}

// Entry describes one stored blob.
type Entry struct {
	Key     string
	Size    int64
	ModTime time.Time
}

// NewStore creates the root directory if needed and returns a Store.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create blob dir: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Put writes the binary under a fresh key derived from the original
// filename and returns the key. Keys are "<unix-ms>-<name>", with a uuid
// standing in for a missing filename. O_EXCL is the collision check: two
// same-millisecond uploads of the same name race it, and the loser retries
// with a uuid infix instead of surfacing the conflict.
func (s *Store) Put(originalName string, r io.Reader) (string, error) {
	name := sanitizeName(originalName)
	if name == "" {
		name = uuid.NewString()
	}

	key := fmt.Sprintf("%d-%s", time.Now().UnixMilli(), name)
	f, err := os.OpenFile(filepath.Join(s.dir, key), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if errors.Is(err, os.ErrExist) {
		key = fmt.Sprintf("%d-%s-%s", time.Now().UnixMilli(), uuid.NewString()[:8], name)
		f, err = os.OpenFile(filepath.Join(s.dir, key), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	}
	if err != nil {
		return "", fmt.Errorf("failed to create blob %s: %w", key, err)
	}

	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", fmt.Errorf("failed to write blob %s: %w", key, err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("failed to close blob %s: %w", key, err)
	}

	return key, nil
}

// Open returns a reader over the blob. The caller closes it.
func (s *Store) Open(key string) (io.ReadCloser, error) {
	f, err := os.Open(filepath.Join(s.dir, sanitizeName(key)))
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open blob %s: %w", key, err)
	}
	return f, nil
}

// Delete removes the blob file. A missing key is success; delete is
// idempotent like the row deletes it pairs with.
func (s *Store) Delete(key string) error {
	err := os.Remove(filepath.Join(s.dir, sanitizeName(key)))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete blob %s: %w", key, err)
	}
	return nil
}

// List returns every stored blob, for reconciliation.
func (s *Store) List() ([]Entry, error) {
	dirEntries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list blobs: %w", err)
	}

	entries := make([]Entry, 0, len(dirEntries))
	for _, de := range dirEntries {
		if de.IsDir() {
			continue
		}
		info, err := de.Info()
		if err != nil {
			continue
		}
		entries = append(entries, Entry{
			Key:     de.Name(),
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}
	return entries, nil
}

// Dir returns the root directory, for static file serving.
func (s *Store) Dir() string {
	return s.dir
}

// sanitizeName strips any path components so a hostile filename cannot
// escape the blob directory.
func sanitizeName(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	name = filepath.Base(name)
	if name == "." || name == "/" {
		return ""
	}
	return name
}
