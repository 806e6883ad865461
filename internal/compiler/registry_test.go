package compiler

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"

	"github.com/lhaig/storyscript/internal/config"
)

func storyPath(parts ...string) string {
	return filepath.Join(append([]string{"testdata", "stories"}, parts...)...)
}

func TestDiscoverWalksDirectory(t *testing.T) {
	r := NewRegistry(config.DefaultExtensions)
	files, err := r.Discover(storyPath())
	require.NoError(t, err)

	assert.Equal(t, []string{
		storyPath("greet.yaml"),
		storyPath("mismatch.yaml"),
		storyPath("nested", "assign.json"),
		storyPath("nested", "missing_return.yaml"),
	}, files)
}

func TestDiscoverFiltersExtensions(t *testing.T) {
	r := NewRegistry([]string{".json"})
	files, err := r.Discover(storyPath())
	require.NoError(t, err)
	assert.Equal(t, []string{storyPath("nested", "assign.json")}, files)
}

func TestDiscoverTakesNamedFilesAsIs(t *testing.T) {
	r := NewRegistry([]string{".json"})
	files, err := r.Discover(storyPath("README.txt"), storyPath("greet.yaml"))
	require.NoError(t, err)
	assert.Equal(t, []string{storyPath("README.txt"), storyPath("greet.yaml")}, files)
}

func TestDiscoverDeduplicates(t *testing.T) {
	r := NewRegistry(config.DefaultExtensions)
	files, err := r.Discover(storyPath("greet.yaml"), storyPath(), "./"+storyPath("greet.yaml"))
	require.NoError(t, err)
	assert.Len(t, files, 4)
	assert.Equal(t, storyPath("greet.yaml"), files[0])
}

func TestDiscoverCombinesErrors(t *testing.T) {
	dir := t.TempDir()
	r := NewRegistry(config.DefaultExtensions)
	files, err := r.Discover(
		filepath.Join(dir, "one.yaml"),
		storyPath("greet.yaml"),
		filepath.Join(dir, "two"),
	)

	require.Error(t, err)
	assert.Len(t, multierr.Errors(err), 2)
	for _, e := range multierr.Errors(err) {
		assert.True(t, os.IsNotExist(e), "%v", e)
	}
	assert.Equal(t, []string{storyPath("greet.yaml")}, files)
}

func TestLoadCaches(t *testing.T) {
	r := NewRegistry(config.DefaultExtensions)

	first, err := r.Load(storyPath("greet.yaml"))
	require.NoError(t, err)
	second, err := r.Load("./" + storyPath("greet.yaml"))
	require.NoError(t, err)

	assert.Same(t, first, second)
}

func TestLoadErrors(t *testing.T) {
	r := NewRegistry(config.DefaultExtensions)

	_, err := r.Load(filepath.Join("testdata", "broken", "broken.yaml"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "later.yaml")
	_, err = r.Load(path)
	assert.True(t, os.IsNotExist(err))

	// failures are not cached
	require.NoError(t, os.WriteFile(path, []byte("start: []\n"), 0o644))
	root, err := r.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "start", root.Kind)
}
