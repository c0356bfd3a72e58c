// Package setup provides initialization and configuration functions
package setup

import (
	"context"
	"fmt"

	"github.com/bethropolis/ccrawler/internal/ignore"
	"github.com/bethropolis/ccrawler/internal/utils"
	"github.com/bethropolis/ccrawler/internal/walker"
)

// InfoLogger wraps the Info method for status updates
type InfoLogger func(format string, args ...any)

// WalkerConfig holds all parameters needed to configure a directory walker
type WalkerConfig struct {
	RootDir        string
	Exclude        []string
	Gitignore      bool
	FollowSymlinks bool
	Context        context.Context
	Logger         utils.Logger
}

// ConfigureWalker builds the exclusion matcher and the walker options for cfg.
// The returned matcher is nil when no exclusion rule is configured.
func ConfigureWalker(cfg WalkerConfig, infoLog InfoLogger) (*ignore.Matcher, []walker.Option, error) {
	log := utils.OrNoop(cfg.Logger)
	if infoLog == nil {
		infoLog = func(string, ...any) {}
	}

	walkOptions := []walker.Option{
		walker.WithLogger(log),
		walker.WithFollowSymlinks(cfg.FollowSymlinks),
	}
	if cfg.Context != nil {
		walkOptions = append(walkOptions, walker.WithContext(cfg.Context))
	}
	if cfg.FollowSymlinks {
		infoLog("Following symlinked directories.")
	}

	if len(cfg.Exclude) == 0 && !cfg.Gitignore {
		return nil, walkOptions, nil
	}

	matcher, err := ignore.New(cfg.RootDir,
		ignore.WithLogger(log),
		ignore.WithGitignore(cfg.Gitignore),
		ignore.WithPatterns(cfg.Exclude),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("error initializing exclusion rules: %w", err)
	}

	if len(matcher.Patterns()) > 0 {
		infoLog("Excluding patterns: %v", matcher.Patterns())
	}
	if cfg.Gitignore {
		infoLog("Honoring .gitignore rules.")
	}

	walkOptions = append(walkOptions, walker.WithIgnoreMatcher(matcher))
	return matcher, walkOptions, nil
}
