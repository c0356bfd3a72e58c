// Package ignore decides which entries a crawl leaves out.
//
// Nothing is excluded unless asked for. Two sources of rules can be enabled:
// doublestar glob patterns matched against root-relative slash paths, and the
// .gitignore files found under the scan root (which also excludes .git
// directories). The package uses the functional options pattern.
package ignore

import (
	"fmt"
	"path/filepath"

	"github.com/bethropolis/ccrawler/internal/utils"
	"github.com/bmatcuk/doublestar/v4"
	gitignore "github.com/denormal/go-gitignore"
)

// Matcher determines whether a file or directory should be skipped.
type Matcher struct {
	rootDir   string
	gitignore bool
	patterns  []string
	repo      gitignore.GitIgnore
	logger    utils.Logger
}

// Option configures a Matcher.
type Option func(*Matcher)

// WithGitignore enables .gitignore rules and .git directory exclusion.
func WithGitignore(enabled bool) Option {
	return func(m *Matcher) {
		m.gitignore = enabled
	}
}

// WithPatterns adds doublestar exclusion globs, e.g. "**/node_modules" or "*.tmp".
func WithPatterns(patterns []string) Option {
	return func(m *Matcher) {
		m.patterns = append(m.patterns, patterns...)
	}
}

// WithLogger sets the diagnostic logger.
func WithLogger(logger utils.Logger) Option {
	return func(m *Matcher) {
		m.logger = utils.OrNoop(logger)
	}
}

// New creates a Matcher for rootDir.
func New(rootDir string, opts ...Option) (*Matcher, error) {
	absRootDir, err := filepath.Abs(rootDir)
	if err != nil {
		return nil, fmt.Errorf("ignore: failed to get absolute path for rootDir '%s': %w", rootDir, err)
	}

	m := &Matcher{
		rootDir: absRootDir,
		logger:  utils.NoopLogger{},
	}
	for _, opt := range opts {
		opt(m)
	}

	if err := m.init(); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Matcher) init() error {
	kept := m.patterns[:0]
	for _, p := range m.patterns {
		if p == "" {
			continue
		}
		if !doublestar.ValidatePattern(filepath.ToSlash(p)) {
			return fmt.Errorf("ignore: invalid exclude pattern %q", p)
		}
		kept = append(kept, filepath.ToSlash(p))
	}
	m.patterns = kept
	m.logger.Debug("ignore.New: root=%s gitignore=%v patterns=%v", m.rootDir, m.gitignore, m.patterns)

	if !m.gitignore {
		return nil
	}

	repo, err := gitignore.NewRepository(m.rootDir)
	if err != nil {
		return fmt.Errorf("ignore: failed to load repository ignores: %w", err)
	}
	m.repo = repo
	return nil
}

// Enabled reports whether any rule is configured.
func (m *Matcher) Enabled() bool {
	return m != nil && (m.gitignore || len(m.patterns) > 0)
}

// Patterns returns the normalized exclusion globs.
func (m *Matcher) Patterns() []string {
	if m == nil {
		return nil
	}
	return append([]string(nil), m.patterns...)
}
