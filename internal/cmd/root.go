package cmd

import (
	"context"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/bethropolis/ccrawler/internal/app"
	"github.com/bethropolis/ccrawler/internal/config"
	"github.com/bethropolis/ccrawler/internal/output"
	"github.com/bethropolis/ccrawler/internal/printer"
	"github.com/spf13/cobra"
)

// Version is injected at build time via -ldflags
var Version = "dev"

type rootFlags struct {
	configPath     string
	output         string
	quiet          bool
	logLevel       string
	verbose        bool
	noColor        bool
	exclude        []string
	gitignore      bool
	followSymlinks bool
	showSkipped    bool
	timeout        time.Duration
}

// NewRootCommand creates and returns the root cobra command for ccrawler
func NewRootCommand() *cobra.Command {
	return newRootCommand(&rootFlags{})
}

func newRootCommand(flags *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ccrawler [directory] [query]",
		Short: "Find files whose names match a wildcard query",
		Long: `ccrawler walks a directory tree and records every file whose name
contains the query. '*' in the query matches any run of characters; every
other character is literal and matching ignores case.

Matches are printed as they are found and written to the output file as
"index | full path", one per line. A missing directory or query is prompted for.`,
		Args:    cobra.MaximumNArgs(2),
		Version: Version,
		// Silence usage on errors to avoid duplicate help text
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := buildConfig(cmd, args, flags)
			if err != nil {
				return err
			}
			return runCrawl(cmd, cfg)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&flags.output, "output", "o", output.DefaultFile, "File the matches are written to")
	f.BoolVarP(&flags.quiet, "quiet", "q", false, "Suppress the banner and per-match console lines")
	f.StringVar(&flags.configPath, "config", "", "YAML configuration file")
	f.StringVar(&flags.logLevel, "log-level", "", "Log level: debug, info, warn, error, none (default info)")
	f.BoolVarP(&flags.verbose, "verbose", "v", false, "Shorthand for --log-level debug")
	f.BoolVar(&flags.noColor, "no-color", false, "Disable colored output")
	f.StringSliceVarP(&flags.exclude, "exclude", "e", nil, "Glob pattern to exclude (repeatable, supports **)")
	f.BoolVar(&flags.gitignore, "gitignore", false, "Honor .gitignore files and skip .git directories")
	f.BoolVarP(&flags.followSymlinks, "follow-symlinks", "L", false, "Descend into symlinked directories")
	f.BoolVar(&flags.showSkipped, "show-skipped", false, "List skipped entries after the summary")
	f.DurationVar(&flags.timeout, "timeout", 0, "Abort the scan after this duration (0 means no limit)")

	return cmd
}

// buildConfig loads the --config file and applies explicitly set flags and
// positional arguments on top of it.
func buildConfig(cmd *cobra.Command, args []string, flags *rootFlags) (*config.Config, error) {
	cfg, err := config.LoadConfig(flags.configPath)
	if err != nil {
		return nil, err
	}

	f := cmd.Flags()
	if f.Changed("output") {
		cfg.OutputFile = flags.output
	}
	if f.Changed("quiet") {
		cfg.Quiet = flags.quiet
	}
	if f.Changed("log-level") {
		cfg.LogLevel = flags.logLevel
	}
	if f.Changed("no-color") {
		cfg.NoColor = flags.noColor
	}
	if f.Changed("exclude") {
		cfg.Exclude = append(cfg.Exclude, flags.exclude...)
	}
	if f.Changed("gitignore") {
		cfg.Gitignore = flags.gitignore
	}
	if f.Changed("follow-symlinks") {
		cfg.FollowSymlinks = flags.followSymlinks
	}
	if f.Changed("show-skipped") {
		cfg.ShowSkipped = flags.showSkipped
	}
	if f.Changed("timeout") {
		cfg.Timeout = flags.timeout
	}
	cfg.Verbose = flags.verbose
	cfg.Version = Version

	if len(args) > 0 {
		cfg.Directory, cfg.DirectorySet = args[0], true
	}
	if len(args) > 1 {
		cfg.Query, cfg.QuerySet = args[1], true
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func runCrawl(cmd *cobra.Command, cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()
	if cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
	}

	applyColors(cfg, cmd.OutOrStdout(), cmd.ErrOrStderr())

	a := app.New(cfg, app.WithIO(cmd.InOrStdin(), cmd.OutOrStdout(), cmd.ErrOrStderr()))
	_, err := a.Run(ctx)
	return err
}

// isTerminal is swapped out in tests.
var isTerminal = printer.IsTerminal

// applyColors decides console and log colors from stdout and stderr
// independently.
func applyColors(cfg *config.Config, out, errOut io.Writer) {
	allowed := cfg.ColorsAllowed()
	cfg.UseColors = allowed && isTerminal(out)
	cfg.LogColors = allowed && isTerminal(errOut)
}
