package walker

import (
	"context"

	"github.com/bethropolis/ccrawler/internal/utils"
)

// Ignorer prunes entries by their root-relative path.
type Ignorer interface {
	ShouldIgnore(relativePath string, isDir bool) bool
}

// WalkOptions configures the behavior of the Walk function
type WalkOptions struct {
	Logger         utils.Logger
	Context        context.Context
	Ignore         Ignorer
	FollowSymlinks bool
}

// defaultOptions returns the default walk options
func defaultOptions() WalkOptions {
	return WalkOptions{
		Logger:  utils.NoopLogger{},
		Context: context.Background(),
	}
}

// Option is a functional option for configuring WalkOptions
type Option func(*WalkOptions)

// WithLogger sets a custom logger for the walker
func WithLogger(logger utils.Logger) Option {
	return func(opts *WalkOptions) {
		opts.Logger = utils.OrNoop(logger)
	}
}

// WithContext sets the context for cancellation
func WithContext(ctx context.Context) Option {
	return func(opts *WalkOptions) {
		if ctx != nil {
			opts.Context = ctx
		}
	}
}

// WithIgnoreMatcher prunes excluded directories and skips excluded files.
func WithIgnoreMatcher(m Ignorer) Option {
	return func(opts *WalkOptions) {
		opts.Ignore = m
	}
}

// WithFollowSymlinks descends into symlinked directories. Each physical
// directory is still visited at most once.
func WithFollowSymlinks(enabled bool) Option {
	return func(opts *WalkOptions) {
		opts.FollowSymlinks = enabled
	}
}
