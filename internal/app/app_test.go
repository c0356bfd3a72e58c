package app

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/bethropolis/ccrawler/internal/config"
	"github.com/bethropolis/ccrawler/internal/output"
	"github.com/bethropolis/ccrawler/internal/resolve"
	"github.com/gofrs/flock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type harness struct {
	cfg    *config.Config
	out    bytes.Buffer
	errOut bytes.Buffer
}

// newHarness returns a config writing results into a directory outside root.
func newHarness(t *testing.T) *harness {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.OutputFile = filepath.Join(t.TempDir(), "results.txt")
	return &harness{cfg: cfg}
}

func (h *harness) args(dir, query string) *harness {
	h.cfg.Directory, h.cfg.DirectorySet = dir, true
	h.cfg.Query, h.cfg.QuerySet = query, true
	return h
}

func (h *harness) run(ctx context.Context, stdin string) (*ScanResult, error) {
	a := New(h.cfg, WithIO(strings.NewReader(stdin), &h.out, &h.errOut))
	return a.Run(ctx)
}

func makeTree(t *testing.T, root string, files ...string) {
	t.Helper()
	for _, f := range files {
		p := filepath.Join(root, filepath.FromSlash(f))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, nil, 0o644))
	}
}

func readLines(t *testing.T, path string) []string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	text := strings.TrimSuffix(string(data), "\n")
	if text == "" {
		return nil
	}
	return strings.Split(text, "\n")
}

var linePattern = regexp.MustCompile(`^(\d+) \| (.+)$`)

func TestRunArgumentMode(t *testing.T) {
	root := t.TempDir()
	makeTree(t, root, "a.py", "b.txt", "sub/c.py")
	h := newHarness(t).args(root, "*.py")

	result, err := h.run(context.Background(), "")

	require.NoError(t, err)
	assert.Equal(t, 2, result.Count)
	assert.NotEmpty(t, result.RunID)
	assert.False(t, result.Interrupted)
	assert.Equal(t, h.cfg.OutputFile, result.OutputPath)

	lines := readLines(t, h.cfg.OutputFile)
	require.Len(t, lines, 2)
	var names []string
	for i, line := range lines {
		m := linePattern.FindStringSubmatch(line)
		require.NotNil(t, m, "malformed line %q", line)
		assert.Equal(t, []string{"1", "2"}[i], m[1])
		assert.True(t, filepath.IsAbs(m[2]))
		names = append(names, filepath.Base(m[2]))
	}
	assert.ElementsMatch(t, []string{"a.py", "c.py"}, names)

	console := h.out.String()
	assert.Contains(t, console, "Searching for: *.py\n")
	assert.Contains(t, console, "In: "+result.Root+"\n")
	assert.Contains(t, console, "[1] Found: ")
	assert.Contains(t, console, "[2] Found: ")
	assert.Contains(t, console, "\nFound: 2\nResults saved to: "+h.cfg.OutputFile+"\n")
}

func TestRunTruncatesOutputBetweenRuns(t *testing.T) {
	root := t.TempDir()
	makeTree(t, root, "a.py", "b.txt", "sub/c.py")
	h := newHarness(t).args(root, "*.py")

	_, err := h.run(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, readLines(t, h.cfg.OutputFile), 2)

	h.args(root, "*.txt")
	result, err := h.run(context.Background(), "")
	require.NoError(t, err)

	lines := readLines(t, h.cfg.OutputFile)
	require.Len(t, lines, 1)
	assert.Equal(t, "1 | "+filepath.Join(result.Root, "b.txt"), lines[0])
}

func TestRunMissingDirectoryLeavesOutputUntouched(t *testing.T) {
	h := newHarness(t).args("/fake/nonexistent/path", "x")
	require.NoError(t, os.WriteFile(h.cfg.OutputFile, []byte("1 | earlier\n"), 0o644))

	result, err := h.run(context.Background(), "")

	require.Error(t, err)
	assert.Nil(t, result)
	assert.ErrorIs(t, err, resolve.ErrNotExist)
	assert.Contains(t, err.Error(), "directory '/fake/nonexistent/path' does not exist")
	assert.Empty(t, h.out.String())

	data, readErr := os.ReadFile(h.cfg.OutputFile)
	require.NoError(t, readErr)
	assert.Equal(t, "1 | earlier\n", string(data))
}

func TestRunInteractivePrompts(t *testing.T) {
	root := t.TempDir()
	makeTree(t, root, "notes.txt", "deep/more.txt", "skip.md")
	h := newHarness(t)

	result, err := h.run(context.Background(), "/fake/nonexistent/path\n"+root+"\n  *.txt  \n")

	require.NoError(t, err)
	assert.Equal(t, 2, result.Count)
	assert.Equal(t, "*.txt", result.Query)

	console := h.out.String()
	assert.Equal(t, 2, strings.Count(console, DirectoryPrompt))
	assert.Contains(t, console, "[ERROR] "+resolve.RetryMessage+"\n")
	assert.Contains(t, console, QueryPrompt)
}

func TestRunInteractiveEmptyDirectoryUsesWorkingDir(t *testing.T) {
	root := t.TempDir()
	makeTree(t, root, "here.log")
	chdir(t, root)
	h := newHarness(t)

	result, err := h.run(context.Background(), "\nlog\n")

	require.NoError(t, err)
	assert.Equal(t, 1, result.Count)
	assert.Contains(t, h.out.String(), "Using: ["+result.Root+"]\n")
}

func TestRunInteractiveEndOfInput(t *testing.T) {
	root := t.TempDir()
	h := newHarness(t)
	h.cfg.Directory, h.cfg.DirectorySet = root, true

	_, err := h.run(context.Background(), "")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading search query")
	_, statErr := os.Stat(h.cfg.OutputFile)
	assert.True(t, os.IsNotExist(statErr))
}

func TestRunQuietPrintsOnlySummary(t *testing.T) {
	root := t.TempDir()
	makeTree(t, root, "one.cfg", "two.cfg")
	h := newHarness(t).args(root, ".cfg")
	h.cfg.Quiet = true

	result, err := h.run(context.Background(), "")

	require.NoError(t, err)
	assert.Equal(t, 2, result.Count)
	assert.Equal(t, "\nFound: 2\nResults saved to: "+h.cfg.OutputFile+"\n", h.out.String())
	assert.Len(t, readLines(t, h.cfg.OutputFile), 2)
}

func TestRunCancelledStillSummarizes(t *testing.T) {
	root := t.TempDir()
	makeTree(t, root, "a.txt")
	h := newHarness(t).args(root, "")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := h.run(ctx, "")

	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, result)
	assert.True(t, result.Interrupted)
	assert.Contains(t, h.out.String(), "Scan stopped:")
	assert.Contains(t, h.out.String(), "\nFound: 0\n")
}

func TestRunOutputLocked(t *testing.T) {
	root := t.TempDir()
	h := newHarness(t).args(root, "")
	held := flock.New(output.LockPath(h.cfg.OutputFile))
	locked, err := held.TryLock()
	require.NoError(t, err)
	require.True(t, locked)
	t.Cleanup(func() { held.Unlock() })

	_, err = h.run(context.Background(), "")

	assert.ErrorIs(t, err, output.ErrLocked)
}

func TestRunOutputInsideScannedDirectory(t *testing.T) {
	root := t.TempDir()
	h := newHarness(t).args(root, "output")
	h.cfg.OutputFile = filepath.Join(root, output.DefaultFile)

	result, err := h.run(context.Background(), "")

	require.NoError(t, err)
	assert.Equal(t, 1, result.Count)
	lines := readLines(t, h.cfg.OutputFile)
	require.Len(t, lines, 1)
	assert.Equal(t, "1 | "+filepath.Join(result.Root, output.DefaultFile), lines[0])
}

func TestRunExcludeAndShowSkipped(t *testing.T) {
	root := t.TempDir()
	makeTree(t, root, "src/main.go", "vendor/lib/dep.go")
	h := newHarness(t).args(root, ".go")
	h.cfg.Exclude = []string{"vendor"}
	h.cfg.ShowSkipped = true

	result, err := h.run(context.Background(), "")

	require.NoError(t, err)
	assert.Equal(t, 1, result.Count)
	require.Len(t, result.Skipped, 1)
	assert.Contains(t, h.errOut.String(), "--- Skipped Items (1) ---")
	assert.Contains(t, h.errOut.String(), filepath.Join(result.Root, "vendor"))
}

func TestRunInvalidExcludePattern(t *testing.T) {
	h := newHarness(t).args(t.TempDir(), "")
	h.cfg.Exclude = []string{"[unclosed"}

	_, err := h.run(context.Background(), "")

	assert.Error(t, err)
	_, statErr := os.Stat(h.cfg.OutputFile)
	assert.True(t, os.IsNotExist(statErr))
}

// chdir mirrors testing.T.Chdir (Go 1.24+) for older toolchains: it changes
// the working directory for the duration of the test and restores it on cleanup.
func chdir(t *testing.T, dir string) {
	t.Helper()
	oldwd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	if filepath.IsAbs(dir) {
		t.Setenv("PWD", dir)
	}
	t.Cleanup(func() {
		if err := os.Chdir(oldwd); err != nil {
			panic("testing.Chdir: " + err.Error())
		}
	})
}
