package glyphregistry

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/npillmayer/sbixer/core"
	"github.com/npillmayer/sbixer/internal/ttxtest"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testFont = ttxtest.Font{
	Glyphs: []string{"u1F600", "u1F385", "u1F385.1", "u1F385.2", "u1F3850", "u1F469_u1F91D_u1F468"},
	Sizes:  ttxtest.Sizes,
}

func TestLoadFromTreeWritesCache(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "sbixer.fonts")
	defer teardown()
	//
	dir := t.TempDir()
	tree := testFont.WriteFile(t, dir, "AppleColorEmoji.ttx")
	cache := filepath.Join(dir, "glyphs.txt")
	reg := New(cache)
	assert.False(t, reg.IsValid("u1F600"), "unloaded registry must not accept names")
	require.NoError(t, reg.Load(tree))
	assert.True(t, reg.Loaded())
	assert.Equal(t, 7, reg.Len())
	assert.True(t, reg.IsValid("u1F600"))
	assert.True(t, reg.IsValid(".notdef"))
	assert.False(t, reg.IsValid("u1F601"))
	assert.False(t, reg.IsValid("u1f600"), "membership is exact")
	//
	content, err := os.ReadFile(cache)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(content)), "\n")
	assert.ElementsMatch(t, reg.Names(), lines)
}

func TestLoadIsMemoized(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "sbixer.fonts")
	defer teardown()
	//
	dir := t.TempDir()
	tree := testFont.WriteFile(t, dir, "AppleColorEmoji.ttx")
	reg := New("")
	require.NoError(t, reg.Load(tree))
	require.NoError(t, os.Remove(tree))
	require.NoError(t, reg.Load(tree), "second load must not touch the font tree")
	assert.True(t, reg.IsValid("u1F385.2"))
}

func TestLoadPrefersCache(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "sbixer.fonts")
	defer teardown()
	//
	dir := t.TempDir()
	cache := filepath.Join(dir, "glyphs.txt")
	require.NoError(t, os.WriteFile(cache, []byte("u1F600\n\nu1F601\n"), 0644))
	reg := New(cache)
	require.NoError(t, reg.Load(filepath.Join(dir, "does-not-exist.ttx")))
	assert.Equal(t, []string{"u1F600", "u1F601"}, reg.Names())
}

func TestEmptyCacheCountsAsMissing(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "sbixer.fonts")
	defer teardown()
	//
	dir := t.TempDir()
	tree := testFont.WriteFile(t, dir, "AppleColorEmoji.ttx")
	cache := filepath.Join(dir, "glyphs.txt")
	require.NoError(t, os.WriteFile(cache, nil, 0644))
	reg := New(cache)
	require.NoError(t, reg.Load(tree))
	assert.Equal(t, 7, reg.Len())
	fi, err := os.Stat(cache)
	require.NoError(t, err)
	assert.NotZero(t, fi.Size())
}

func TestInvalidate(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "sbixer.fonts")
	defer teardown()
	//
	dir := t.TempDir()
	tree := testFont.WriteFile(t, dir, "AppleColorEmoji.ttx")
	cache := filepath.Join(dir, "glyphs.txt")
	reg := New(cache)
	require.NoError(t, reg.Load(tree))
	require.NoError(t, reg.Invalidate())
	assert.False(t, reg.Loaded())
	assert.False(t, reg.IsValid("u1F600"))
	_, err := os.Stat(cache)
	assert.True(t, os.IsNotExist(err))
	require.NoError(t, reg.Invalidate(), "invalidating twice is fine")
	//
	smaller := ttxtest.Font{Glyphs: []string{"u1F601"}, Sizes: ttxtest.Sizes}
	tree = smaller.WriteFile(t, dir, "AppleColorEmoji.ttx")
	require.NoError(t, reg.Load(tree))
	assert.Equal(t, []string{".notdef", "u1F601"}, reg.Names())
}

func TestMalformedTree(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "sbixer.fonts")
	defer teardown()
	//
	dir := t.TempDir()
	tree := filepath.Join(dir, "broken.ttx")
	require.NoError(t, os.WriteFile(tree, []byte(`<ttFont><head/></ttFont>`), 0644))
	cache := filepath.Join(dir, "glyphs.txt")
	reg := New(cache)
	err := reg.Load(tree)
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrMalformedFontTree))
	assert.False(t, reg.Loaded())
	_, err = os.Stat(cache)
	assert.True(t, os.IsNotExist(err), "no cache for a broken tree")
}

func TestVariants(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "sbixer.fonts")
	defer teardown()
	//
	dir := t.TempDir()
	reg := New("")
	assert.Nil(t, reg.Variants("u1F385"))
	require.NoError(t, reg.Load(testFont.WriteFile(t, dir, "AppleColorEmoji.ttx")))
	assert.Equal(t, []string{"u1F385", "u1F385.1", "u1F385.2"}, reg.Variants("1f385"))
	assert.Equal(t, []string{"u1F385", "u1F385.1", "u1F385.2"}, reg.Variants("u1F385.1"))
	assert.Equal(t, []string{"u1F469_u1F91D_u1F468"}, reg.Variants("1F469_1F91D_1F468"))
	assert.Empty(t, reg.Variants("u1F602"))
	assert.Nil(t, reg.Variants("u__"))
}

func TestConcurrentLookups(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "sbixer.fonts")
	defer teardown()
	//
	dir := t.TempDir()
	tree := testFont.WriteFile(t, dir, "AppleColorEmoji.ttx")
	reg := New(filepath.Join(dir, "glyphs.txt"))
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := reg.Load(tree); err != nil {
				t.Error(err)
				return
			}
			if !reg.IsValid("u1F600") {
				t.Error("expected u1F600 to be valid")
			}
		}()
	}
	wg.Wait()
}
