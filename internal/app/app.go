package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/bethropolis/ccrawler/internal/config"
	"github.com/bethropolis/ccrawler/internal/logger"
	"github.com/bethropolis/ccrawler/internal/output"
	"github.com/bethropolis/ccrawler/internal/pattern"
	"github.com/bethropolis/ccrawler/internal/printer"
	"github.com/bethropolis/ccrawler/internal/resolve"
	"github.com/bethropolis/ccrawler/internal/setup"
	"github.com/bethropolis/ccrawler/internal/summary"
	"github.com/bethropolis/ccrawler/internal/walker"
	"github.com/google/uuid"
)

const (
	DirectoryPrompt = "Enter directory to scan: "
	QueryPrompt     = "Enter search query: "
)

// ScanResult describes one completed run. It is not modified after Run returns.
type ScanResult struct {
	RunID       string
	Root        string
	Query       string
	Count       int
	OutputPath  string
	Skipped     []walker.SkippedItem
	Duration    time.Duration
	Interrupted bool
}

// App encapsulates the main application functionality
type App struct {
	cfg      *config.Config
	log      *logger.Logger
	out      io.Writer
	errOut   io.Writer
	prompter resolve.Prompter
}

// Option configures an App.
type Option func(*App)

// WithIO sets the console streams. Prompts read from in.
func WithIO(in io.Reader, out, errOut io.Writer) Option {
	return func(a *App) {
		a.out = out
		a.errOut = errOut
		a.prompter = resolve.NewLinePrompter(in, out)
	}
}

// WithPrompter replaces the line prompter.
func WithPrompter(p resolve.Prompter) Option {
	return func(a *App) {
		a.prompter = p
	}
}

// New creates a new App instance
func New(cfg *config.Config, opts ...Option) *App {
	a := &App{
		cfg:    cfg,
		out:    os.Stdout,
		errOut: os.Stderr,
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.prompter == nil {
		a.prompter = resolve.NewLinePrompter(os.Stdin, a.out)
	}
	a.log = logger.New(a.errOut, cfg.EffectiveLevel(), cfg.LogColors)
	return a
}

// Run resolves the inputs, scans the tree and reports every match.
// Matches written before a failure stay in the output file.
func (a *App) Run(ctx context.Context) (*ScanResult, error) {
	startTime := time.Now()
	runID := uuid.NewString()
	a.log.Debug("Run %s: version %s, output %q", runID, a.cfg.Version, a.cfg.OutputFile)

	root, err := a.resolveRoot()
	if err != nil {
		return nil, err
	}

	query, err := a.readQuery()
	if err != nil {
		return nil, err
	}
	pat := pattern.Compile(query)
	a.log.Debug("Run %s: root %s, query %q", runID, root.Path(), pat.Raw())

	matcher, walkOptions, err := setup.ConfigureWalker(setup.WalkerConfig{
		RootDir:        root.Path(),
		Exclude:        a.cfg.Exclude,
		Gitignore:      a.cfg.Gitignore,
		FollowSymlinks: a.cfg.FollowSymlinks,
		Context:        ctx,
		Logger:         a.log,
	}, a.log.Info)
	if err != nil {
		return nil, err
	}
	if matcher.Enabled() {
		a.log.Debug("Run %s: exclusion rules %v, gitignore %v", runID, matcher.Patterns(), a.cfg.Gitignore)
	}

	sink, err := output.Create(a.cfg.OutputFile)
	if err != nil {
		return nil, err
	}
	defer sink.Close()

	p := printer.New().
		WithOutput(a.out).
		WithColors(a.cfg.UseColors).
		WithQuiet(a.cfg.Quiet).
		WithWidth(printer.TerminalWidth(a.out))

	p.Banner(pat.Raw(), root.Path())

	count, skipped, walkErr := walker.Walk(root.Path(), pat, func(m walker.Match) error {
		if err := sink.Append(m.Index, m.Path); err != nil {
			return err
		}
		p.Match(m.Index, m.Name)
		return nil
	}, walkOptions...)

	closeErr := sink.Close()

	result := &ScanResult{
		RunID:       runID,
		Root:        root.Path(),
		Query:       pat.Raw(),
		Count:       count,
		OutputPath:  sink.Path(),
		Skipped:     skipped,
		Duration:    time.Since(startTime),
		Interrupted: errors.Is(walkErr, context.Canceled) || errors.Is(walkErr, context.DeadlineExceeded),
	}

	if result.Interrupted {
		p.Interrupted(walkErr)
	}
	p.Summary(result.Count, result.OutputPath)
	if a.cfg.ShowSkipped {
		summary.DisplaySkippedItems(a.errOut, skipped)
	}
	summary.DisplayResults(a.log, runID, count, len(skipped), result.Duration)

	switch {
	case result.Interrupted:
		return result, fmt.Errorf("scan interrupted after %d matches: %w", count, walkErr)
	case walkErr != nil:
		return result, fmt.Errorf("scan failed: %w", walkErr)
	case closeErr != nil:
		return result, closeErr
	}
	return result, nil
}

func (a *App) resolveRoot() (resolve.Root, error) {
	resolver := resolve.New(
		resolve.WithOutput(a.out),
		resolve.WithColors(a.cfg.UseColors),
		resolve.WithLogger(a.log),
	)
	if a.cfg.DirectorySet {
		return resolver.FromArg(a.cfg.Directory)
	}
	return resolver.Interactive(a.prompter, DirectoryPrompt)
}

func (a *App) readQuery() (string, error) {
	if a.cfg.QuerySet {
		return a.cfg.Query, nil
	}
	query, err := a.prompter.Prompt(QueryPrompt)
	if err != nil {
		return "", fmt.Errorf("reading search query: %w", err)
	}
	return query, nil
}
