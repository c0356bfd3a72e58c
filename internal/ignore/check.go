package ignore

import (
	"path"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// ShouldIgnore reports whether relativePath (relative to the root) is excluded.
// The root itself is never excluded.
func (m *Matcher) ShouldIgnore(relativePath string, isDir bool) bool {
	if !m.Enabled() {
		return false
	}
	if relativePath == "" || relativePath == "." {
		return false
	}

	slashPath := filepath.ToSlash(relativePath)

	if m.matchPattern(slashPath) {
		m.logger.Debug("ignore.ShouldIgnore: %q excluded by pattern", relativePath)
		return true
	}

	if m.gitignore {
		if isPathInGitDir(slashPath, isDir) {
			m.logger.Debug("ignore.ShouldIgnore: %q excluded (.git rule)", relativePath)
			return true
		}
		if m.matchGitignore(relativePath, isDir) {
			m.logger.Debug("ignore.ShouldIgnore: %q excluded by .gitignore", relativePath)
			return true
		}
	}
	return false
}

// matchPattern tests the full relative path, and the base name for globs
// without a separator, so "*.log" excludes log files at any depth.
func (m *Matcher) matchPattern(slashPath string) bool {
	base := path.Base(slashPath)
	for _, p := range m.patterns {
		if ok, _ := doublestar.Match(p, slashPath); ok {
			return true
		}
		if !strings.Contains(p, "/") {
			if ok, _ := doublestar.Match(p, base); ok {
				return true
			}
		}
	}
	return false
}

func (m *Matcher) matchGitignore(relativePath string, isDir bool) (ignored bool) {
	if m.repo == nil {
		return false
	}
	defer func() {
		if r := recover(); r != nil {
			m.logger.Error("PANIC recovered in gitignore library for path %q: %v", relativePath, r)
			ignored = false
		}
	}()

	match := m.repo.Absolute(filepath.Join(m.rootDir, relativePath), isDir)
	return match != nil && match.Ignore()
}

// isPathInGitDir checks if a path is inside a .git directory
func isPathInGitDir(slashPath string, isDir bool) bool {
	parts := strings.Split(slashPath, "/")
	for i, part := range parts {
		if part == ".git" && (isDir || i < len(parts)-1) {
			return true
		}
	}
	return false
}
