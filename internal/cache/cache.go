// Package cache manages the scratch directory that holds downloaded search
// hits under content-addressed names.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// DirName is the name of the default scratch directory under os.TempDir().
const DirName = "gh-codesearch"

// DefaultDir returns the default scratch directory.
func DefaultDir() string {
	return filepath.Join(os.TempDir(), DirName)
}

// Dir is a scratch directory. Files are never evicted; they persist until
// Cleanup removes the whole directory. Dir is safe for concurrent use.
type Dir struct {
	root string
}

// New returns a Dir rooted at root. The directory is created lazily on the
// first write.
func New(root string) *Dir {
	return &Dir{root: root}
}

// Root returns the directory path.
func (d *Dir) Root() string {
	return d.root
}

// Key returns the content-addressed file name for a source URL and file name:
// "<hex sha256 of sourceURL>-<name>".
func Key(sourceURL, name string) string {
	h := sha256.Sum256([]byte(sourceURL))
	return hex.EncodeToString(h[:]) + "-" + filepath.Base(name)
}

// PathFor returns the cache path for a source URL and file name.
func (d *Dir) PathFor(sourceURL, name string) string {
	return filepath.Join(d.root, Key(sourceURL, name))
}

// Exists reports whether path already holds a cached file.
func (d *Dir) Exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// Write stores data at path, creating the scratch directory if needed.
// The file is written to a temporary name and renamed into place so readers
// never observe a partial file. Concurrent writers of the same path write
// identical content, so the last rename wins harmlessly.
func (d *Dir) Write(path string, data []byte) error {
	if err := os.MkdirAll(d.root, 0o755); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}

	tmp, err := os.CreateTemp(d.root, ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create cache file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write cache file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to write cache file: %w", err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to write cache file: %w", err)
	}

	return nil
}

// Cleanup removes the scratch directory and everything in it. It is a no-op
// if the directory does not exist.
func (d *Dir) Cleanup() error {
	if _, err := os.Stat(d.root); errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err := os.RemoveAll(d.root); err != nil {
		return fmt.Errorf("failed to remove cache directory: %w", err)
	}
	return nil
}
