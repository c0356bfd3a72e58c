// Package resolve turns user input into a canonical, existing scan root.
package resolve

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/user"
	"path/filepath"
	"strings"

	"github.com/bethropolis/ccrawler/internal/utils"
	"github.com/fatih/color"
)

var (
	// ErrNotExist is returned when the resolved path does not exist.
	ErrNotExist = errors.New("path does not exist")
	// ErrNotDir is returned when the resolved path is not a directory.
	ErrNotDir = errors.New("path is not a directory")
)

// ArgError reports a directory argument that cannot be scanned. It unwraps
// to ErrNotExist, ErrNotDir or the underlying failure.
type ArgError struct {
	Raw string
	Err error
}

func (e *ArgError) Error() string {
	switch {
	case errors.Is(e.Err, ErrNotExist):
		return fmt.Sprintf("directory '%s' does not exist", e.Raw)
	case errors.Is(e.Err, ErrNotDir):
		return fmt.Sprintf("'%s' is not a directory", e.Raw)
	}
	return fmt.Sprintf("directory '%s': %v", e.Raw, e.Err)
}

func (e *ArgError) Unwrap() error { return e.Err }

// RetryMessage is printed after each rejected interactive attempt.
const RetryMessage = "Path does not exist, try again."

// Root is a canonical, existing directory. Only a Resolver creates one.
type Root struct {
	path string
}

// Path returns the absolute, symlink-free directory path.
func (r Root) Path() string { return r.path }

func (r Root) String() string { return r.path }

// Resolver expands and validates directory input.
type Resolver struct {
	out        io.Writer
	useColors  bool
	logger     utils.Logger
	homeDir    func() (string, error)
	lookupHome func(name string) (string, error)
	getwd      func() (string, error)
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithOutput sets where interactive messages are written.
func WithOutput(w io.Writer) Option {
	return func(r *Resolver) {
		if w != nil {
			r.out = w
		}
	}
}

// WithColors enables colored interactive messages.
func WithColors(enabled bool) Option {
	return func(r *Resolver) {
		r.useColors = enabled
	}
}

// WithLogger sets the diagnostic logger.
func WithLogger(l utils.Logger) Option {
	return func(r *Resolver) {
		r.logger = utils.OrNoop(l)
	}
}

// WithHomeDir overrides the current user's home directory lookup.
func WithHomeDir(fn func() (string, error)) Option {
	return func(r *Resolver) {
		if fn != nil {
			r.homeDir = fn
		}
	}
}

// WithWorkingDir overrides the working directory lookup.
func WithWorkingDir(fn func() (string, error)) Option {
	return func(r *Resolver) {
		if fn != nil {
			r.getwd = fn
		}
	}
}

// New creates a Resolver.
func New(opts ...Option) *Resolver {
	r := &Resolver{
		out:        os.Stdout,
		logger:     utils.NoopLogger{},
		homeDir:    os.UserHomeDir,
		lookupHome: lookupUserHome,
		getwd:      os.Getwd,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func lookupUserHome(name string) (string, error) {
	u, err := user.Lookup(name)
	if err != nil {
		return "", err
	}
	return u.HomeDir, nil
}

// Resolve expands raw and returns it as a Root if it names an existing
// directory. raw must already be trimmed.
func (r *Resolver) Resolve(raw string) (Root, error) {
	expanded := r.ExpandHome(raw)
	abs, err := filepath.Abs(expanded)
	if err != nil {
		return Root{}, fmt.Errorf("resolve: absolute path for %q: %w", expanded, err)
	}
	return canonicalDir(abs)
}

func canonicalDir(abs string) (Root, error) {
	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Root{}, ErrNotExist
		}
		return Root{}, fmt.Errorf("resolve: %w", err)
	}
	info, err := os.Stat(resolved)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Root{}, ErrNotExist
		}
		return Root{}, fmt.Errorf("resolve: %w", err)
	}
	if !info.IsDir() {
		return Root{}, ErrNotDir
	}
	return Root{path: resolved}, nil
}

// ExpandHome replaces a leading "~" or "~user" with the home directory.
func (r *Resolver) ExpandHome(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}
	name, rest := path[1:], ""
	if i := strings.IndexAny(name, `/`+string(filepath.Separator)); i >= 0 {
		name, rest = name[:i], name[i+1:]
	}

	var home string
	var err error
	if name == "" {
		home, err = r.homeDir()
	} else {
		home, err = r.lookupHome(name)
	}
	if err != nil {
		// An unknown user leaves the path as typed, the same as a shell does.
		r.logger.Debug("resolve: cannot expand %q: %v", path, err)
		return path
	}
	if rest == "" {
		return home
	}
	return filepath.Join(home, rest)
}

// FromArg resolves a path given on the command line. Failure is final.
func (r *Resolver) FromArg(raw string) (Root, error) {
	root, err := r.Resolve(strings.TrimSpace(raw))
	if err != nil {
		return Root{}, &ArgError{Raw: raw, Err: err}
	}
	r.logger.Debug("resolve: %q -> %s", raw, root.Path())
	return root, nil
}

// Interactive prompts until the answer is an existing directory. An empty
// answer selects the working directory. It only fails if the prompter does.
func (r *Resolver) Interactive(p Prompter, label string) (Root, error) {
	for {
		line, err := p.Prompt(label)
		if err != nil {
			return Root{}, fmt.Errorf("reading directory: %w", err)
		}
		raw := strings.TrimSpace(line)

		if raw == "" {
			root, err := r.workingDir()
			if err != nil {
				return Root{}, err
			}
			fmt.Fprintf(r.out, "Using: [%s]\n", root.Path())
			return root, nil
		}

		root, err := r.Resolve(raw)
		if err == nil {
			r.logger.Debug("resolve: %q -> %s", raw, root.Path())
			return root, nil
		}
		r.logger.Debug("resolve: rejected %q: %v", raw, err)
		r.printRetry()
	}
}

func (r *Resolver) workingDir() (Root, error) {
	wd, err := r.getwd()
	if err != nil {
		return Root{}, fmt.Errorf("resolve: working directory: %w", err)
	}
	abs, err := filepath.Abs(wd)
	if err != nil {
		return Root{}, fmt.Errorf("resolve: working directory: %w", err)
	}
	return canonicalDir(abs)
}

func (r *Resolver) printRetry() {
	tag := color.New(color.FgRed, color.Bold)
	if r.useColors {
		tag.EnableColor()
	} else {
		tag.DisableColor()
	}
	fmt.Fprintf(r.out, "%s %s\n", tag.Sprint("[ERROR]"), RetryMessage)
}
