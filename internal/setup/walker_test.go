package setup

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/bethropolis/ccrawler/internal/pattern"
	"github.com/bethropolis/ccrawler/internal/walker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigureWalkerDefaultsHaveNoMatcher(t *testing.T) {
	var infos []string
	matcher, opts, err := ConfigureWalker(WalkerConfig{RootDir: t.TempDir()}, func(f string, a ...any) {
		infos = append(infos, fmt.Sprintf(f, a...))
	})

	require.NoError(t, err)
	assert.Nil(t, matcher)
	assert.NotEmpty(t, opts)
	assert.Empty(t, infos)
}

func TestConfigureWalkerWithExcludes(t *testing.T) {
	root := t.TempDir()
	for _, f := range []string{"keep.go", filepath.Join("vendor", "dep.go")} {
		p := filepath.Join(root, f)
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, nil, 0o644))
	}

	var infos []string
	matcher, opts, err := ConfigureWalker(WalkerConfig{
		RootDir: root,
		Exclude: []string{"vendor"},
		Context: context.Background(),
	}, func(f string, a ...any) { infos = append(infos, fmt.Sprintf(f, a...)) })
	require.NoError(t, err)
	require.NotNil(t, matcher)
	assert.Equal(t, []string{"Excluding patterns: [vendor]"}, infos)

	count, skipped, err := walker.Walk(root, pattern.Compile(".go"), func(walker.Match) error { return nil }, opts...)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	assert.Len(t, skipped, 1)
}

func TestConfigureWalkerInvalidExclude(t *testing.T) {
	_, _, err := ConfigureWalker(WalkerConfig{RootDir: t.TempDir(), Exclude: []string{"[bad"}}, nil)
	assert.Error(t, err)
}
