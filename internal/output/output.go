// Package output owns the results file of a crawl run.
//
// The file is truncated when the run starts and every match is written with
// its own write call, so whatever was found before an abnormal exit is on disk.
// A lock file in the temporary directory, named after a hash of the results
// path and held through gofrs/flock, keeps two concurrent runs from
// interleaving lines in the same file. The lock file is never removed.
package output

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

// DefaultFile is the results file used when none is configured.
const DefaultFile = "output.txt"

// ErrLocked is returned when another run holds the results file.
var ErrLocked = errors.New("output file is in use by another run")

// Writer appends match lines to a results file.
type Writer struct {
	path string
	file *os.File
	lock *flock.Flock
}

// LockPath returns the lock file guarding the results file at absPath.
func LockPath(absPath string) string {
	sum := sha256.Sum256([]byte(absPath))
	return filepath.Join(os.TempDir(), "ccrawler-"+hex.EncodeToString(sum[:8])+".lock")
}

// Create locks and truncates the results file at path.
func Create(path string) (*Writer, error) {
	if path == "" {
		path = DefaultFile
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("output: failed to get absolute path for '%s': %w", path, err)
	}

	lock := flock.New(LockPath(absPath))
	locked, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("output: failed to lock %s: %w", absPath, err)
	}
	if !locked {
		return nil, fmt.Errorf("output: %s: %w", absPath, ErrLocked)
	}

	file, err := os.Create(absPath)
	if err != nil {
		_ = lock.Unlock()
		return nil, fmt.Errorf("output: failed to create output file: %w", err)
	}

	return &Writer{path: absPath, file: file, lock: lock}, nil
}

// Path returns the absolute path of the results file.
func (w *Writer) Path() string {
	return w.path
}

// Append writes "{index} | {fullPath}\n".
func (w *Writer) Append(index int, fullPath string) error {
	if _, err := fmt.Fprintf(w.file, "%d | %s\n", index, fullPath); err != nil {
		return fmt.Errorf("output: write %s: %w", w.path, err)
	}
	return nil
}

// Close closes the file and releases the lock. It is safe to call twice.
func (w *Writer) Close() error {
	if w.file == nil {
		return nil
	}
	err := w.file.Close()
	w.file = nil
	_ = w.lock.Unlock()
	if err != nil {
		return fmt.Errorf("output: close %s: %w", w.path, err)
	}
	return nil
}
