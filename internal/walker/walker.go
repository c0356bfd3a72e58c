// Package walker handles directory traversal and filename matching
package walker

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"
)

// walk is the state of one Walk call.
type walk struct {
	options WalkOptions
	matcher Matcher
	onMatch MatchFunc
	root    string
	tracker *SkippedTracker
	visited map[string]struct{}
	stats   Stats
}

// Walk traverses the directory tree starting from rootDir and calls onMatch
// for every non-directory entry whose base name satisfies matcher. Matches are
// numbered from 1 in discovery order. Unreadable entries are skipped with a
// warning. It returns the number of matches, the skipped items and the first
// error that stopped the walk (context cancellation or an onMatch failure).
func Walk(rootDir string, matcher Matcher, onMatch MatchFunc, opts ...Option) (int, []SkippedItem, error) {
	startTime := time.Now()

	options := defaultOptions()
	for _, opt := range opts {
		opt(&options)
	}

	absRootDir, err := filepath.Abs(rootDir)
	if err != nil {
		return 0, nil, fmt.Errorf("walker: failed to get absolute path for '%s': %w", rootDir, err)
	}

	w := &walk{
		options: options,
		matcher: matcher,
		onMatch: onMatch,
		root:    absRootDir,
		tracker: NewSkippedTracker(16),
		visited: make(map[string]struct{}),
	}

	realRoot := absRootDir
	if options.FollowSymlinks {
		if resolved, err := filepath.EvalSymlinks(absRootDir); err == nil {
			realRoot = resolved
		}
	}

	options.Logger.Debug("walker.Walk started. Root: %s, FollowSymlinks: %v", absRootDir, options.FollowSymlinks)
	err = w.walkTree(realRoot, absRootDir)

	options.Logger.Debug("Walker: %d dirs, %d files, %d matches, %d skipped in %s",
		w.stats.Dirs, w.stats.Files, w.stats.Matches, w.stats.Skipped, time.Since(startTime))

	return w.stats.Matches, w.tracker.Items(), err
}

// walkTree walks realDir, reporting paths as if realDir were at displayDir.
// The two differ only below a followed symlink.
func (w *walk) walkTree(realDir, displayDir string) error {
	return filepath.WalkDir(realDir, func(realPath string, d fs.DirEntry, err error) error {
		if ctxErr := w.options.Context.Err(); ctxErr != nil {
			return ctxErr
		}

		path := realPath
		if realDir != displayDir {
			rel, relErr := filepath.Rel(realDir, realPath)
			if relErr != nil {
				w.skip(realPath, ReasonSkippedPathError, d != nil && d.IsDir())
				return nil
			}
			path = filepath.Join(displayDir, rel)
		}

		if err != nil {
			return w.handleError(path, d, err, realPath == realDir && displayDir == w.root)
		}

		if d.IsDir() {
			return w.enterDir(path, realPath, realPath == realDir)
		}

		if d.Type()&fs.ModeSymlink != 0 {
			if target, ok := symlinkedDir(realPath); ok {
				return w.symlinkDir(path, target)
			}
		}

		w.stats.Files++
		if w.ignored(path, false) {
			return nil
		}
		return w.processFile(path, d.Name())
	})
}

func (w *walk) handleError(path string, d fs.DirEntry, err error, isRoot bool) error {
	if d == nil && isRoot {
		return fmt.Errorf("walker: cannot read root '%s': %w", path, err)
	}

	isDir := d != nil && d.IsDir()
	reason := ReasonSkippedWalkError
	if errors.Is(err, fs.ErrPermission) {
		reason = ReasonSkippedPermError
	}
	w.options.Logger.Warn("Skipping '%s': %v", path, err)
	w.skip(path, reason, isDir)
	if isDir {
		return filepath.SkipDir
	}
	return nil
}

func (w *walk) enterDir(path, realPath string, isTreeRoot bool) error {
	if !isTreeRoot && w.ignored(path, true) {
		return filepath.SkipDir
	}
	if w.options.FollowSymlinks {
		if _, seen := w.visited[realPath]; seen {
			w.options.Logger.Debug("Walker: %q already visited as %q", path, realPath)
			w.skip(path, ReasonSymlinkCycle, true)
			return filepath.SkipDir
		}
		w.visited[realPath] = struct{}{}
	}
	w.stats.Dirs++
	w.options.Logger.Debug("Walker: Descending into directory %q", path)
	return nil
}

func (w *walk) symlinkDir(path, target string) error {
	if w.ignored(path, true) {
		return nil
	}
	if !w.options.FollowSymlinks {
		w.options.Logger.Debug("Walker: Not following symlinked directory %q", path)
		w.skip(path, ReasonSymlinkDir, true)
		return nil
	}
	w.options.Logger.Debug("Walker: Following symlink %q -> %q", path, target)
	return w.walkTree(target, path)
}

// ignored consults the exclusion rules and records excluded entries.
func (w *walk) ignored(path string, isDir bool) bool {
	if w.options.Ignore == nil {
		return false
	}
	rel, err := filepath.Rel(w.root, path)
	if err != nil {
		w.options.Logger.Error("Walker Error: Path calculation failed for %q: %v", path, err)
		w.skip(path, ReasonSkippedPathError, isDir)
		return true
	}
	if w.options.Ignore.ShouldIgnore(rel, isDir) {
		w.skip(path, ReasonExcluded, isDir)
		return true
	}
	return false
}

func (w *walk) skip(path string, reason SkippedReason, isDir bool) {
	w.tracker.Track(path, reason, isDir)
	w.stats.Skipped++
}

// symlinkedDir resolves a symlink and reports whether it ends at a directory.
// Broken links and links to files are leaves.
func symlinkedDir(path string) (string, bool) {
	target, err := filepath.EvalSymlinks(path)
	if err != nil {
		return "", false
	}
	info, err := os.Stat(target)
	if err != nil || !info.IsDir() {
		return "", false
	}
	return target, true
}
