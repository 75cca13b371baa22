package pipeline

import (
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/npillmayer/sbixer/core"
	"github.com/npillmayer/sbixer/core/assets"
	"github.com/npillmayer/sbixer/core/glyphregistry"
	"github.com/npillmayer/sbixer/core/locate"
	"github.com/npillmayer/sbixer/engine/tasks"
	"github.com/npillmayer/sbixer/internal/ttxtest"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

var baseFont = ttxtest.Font{
	Glyphs: []string{"u1F600", "u1F601", "u1F385", "u1F385.1"},
	Sizes:  ttxtest.Sizes,
}

// fakeCompiler stands in for the external tools. Fonts are just copies of
// their trees.
type fakeCompiler struct {
	sync.Mutex
	calls      map[string]int
	failOn     string
	splitFonts []string
}

func (c *fakeCompiler) count(op string) error {
	c.Lock()
	defer c.Unlock()
	if c.calls == nil {
		c.calls = make(map[string]int)
	}
	c.calls[op]++
	if op == c.failOn {
		return core.Error(core.EEXTERNAL, "%s failed", op)
	}
	return nil
}

func (c *fakeCompiler) Calls(op string) int {
	c.Lock()
	defer c.Unlock()
	return c.calls[op]
}

func (c *fakeCompiler) Split(container string) error {
	if err := c.count("split"); err != nil {
		return err
	}
	fonts := c.splitFonts
	if fonts == nil {
		fonts = locate.SubFonts
	}
	for _, font := range fonts {
		path := filepath.Join(filepath.Dir(container), font+".ttf")
		if err := os.WriteFile(path, []byte(baseFont.Document()), 0644); err != nil {
			return err
		}
	}
	return nil
}

func (c *fakeCompiler) Decompile(font, tree string) error {
	if err := c.count("decompile"); err != nil {
		return err
	}
	return copyFile(font, tree)
}

func (c *fakeCompiler) Compile(tree, font string) error {
	if err := c.count("compile"); err != nil {
		return err
	}
	return copyFile(tree, font)
}

func (c *fakeCompiler) Merge(fonts []string, container string) error {
	if err := c.count("merge"); err != nil {
		return err
	}
	var b strings.Builder
	for _, f := range fonts {
		data, err := os.ReadFile(f)
		if err != nil {
			return err
		}
		b.Write(data)
	}
	return os.WriteFile(container, []byte(b.String()), 0644)
}

// fakeRasterizer renders the name of an image and the size.
type fakeRasterizer struct{}

func (fakeRasterizer) Rasterize(src string, size int) ([]byte, error) {
	name := filepath.Base(src)
	if strings.HasPrefix(name, "broken") {
		return nil, core.Error(core.EINVALID, "cannot decode image %s", src)
	}
	if strings.HasPrefix(name, "crash") {
		return nil, core.Error(core.EEXTERNAL, "renderer crashed")
	}
	return bitmap(name, size), nil
}

func bitmap(name string, size int) []byte {
	return []byte(fmt.Sprintf("\x89PNG %s@%d", name, size))
}

// --- Suite -----------------------------------------------------------------

type PipelineSuite struct {
	suite.Suite
	teardown func()
	dir      string
	compiler *fakeCompiler
	recorder *tasks.Recorder
	p        *Pipeline
}

func TestPipeline(t *testing.T) {
	suite.Run(t, new(PipelineSuite))
}

func (s *PipelineSuite) SetupTest() {
	s.teardown = gotestingadapter.QuickConfig(s.T(), "sbixer.pipeline")
	s.dir = s.T().TempDir()
	source := filepath.Join(s.dir, "system", locate.EmojiFontName)
	s.Require().NoError(os.MkdirAll(filepath.Dir(source), 0755))
	s.Require().NoError(os.WriteFile(source, []byte("ttcf"), 0644))
	paths := locate.NewPaths(filepath.Join(s.dir, "save"))
	s.compiler = &fakeCompiler{}
	s.recorder = tasks.NewRecorder()
	s.p = &Pipeline{
		Paths:         paths,
		Compiler:      s.compiler,
		Rasterizer:    fakeRasterizer{},
		Registry:      glyphregistry.New(paths.GlyphNames()),
		Reporter:      s.recorder,
		Source:        source,
		TreeSize:      4000,
		ContainerSize: 8000,
	}
}

func (s *PipelineSuite) TearDownTest() {
	s.teardown()
}

// assetDir writes complete asset sets for names, plus extra files.
func (s *PipelineSuite) assetDir(names []string, extra ...string) string {
	dir := filepath.Join(s.dir, "assets")
	s.Require().NoError(os.MkdirAll(dir, 0755))
	for _, name := range names {
		for _, size := range assets.Sizes {
			path := filepath.Join(dir, assets.FileName(name, size))
			s.Require().NoError(os.WriteFile(path, bitmap(name, size), 0644))
		}
	}
	for _, name := range extra {
		s.Require().NoError(os.WriteFile(filepath.Join(dir, name), []byte(name), 0644))
	}
	return dir
}

func (s *PipelineSuite) assertNoIntermediates() {
	for _, path := range s.p.Paths.Intermediates() {
		_, err := os.Stat(path)
		s.True(os.IsNotExist(err), "intermediate file %s still exists", path)
	}
}

func (s *PipelineSuite) assertAllTasksCompleted() {
	for desc, p := range s.recorder.Tasks() {
		s.True(p.Completed, "task '%s' did not complete", desc)
		s.Equal(100.0, p.Percent(), desc)
	}
}

func (s *PipelineSuite) TestBaseFiles() {
	s.Require().NoError(s.p.BaseFiles(false))
	s.True(s.p.Paths.HasBaseTrees())
	s.Equal(1, s.compiler.Calls("split"))
	s.Equal(2, s.compiler.Calls("decompile"))
	s.assertNoIntermediates()
	s.assertAllTasksCompleted()
	s.Contains(s.recorder.Tasks(), "Decompiling .AppleColorEmojiUI.ttf")
	//
	s.Require().NoError(s.p.BaseFiles(false))
	s.Equal(1, s.compiler.Calls("split"), "existing base files are kept")
	s.Require().NoError(s.p.BaseFiles(true))
	s.Equal(2, s.compiler.Calls("split"))
	s.Equal(4, s.compiler.Calls("decompile"))
}

func (s *PipelineSuite) TestBaseFilesInvalidatesRegistry() {
	s.Require().NoError(s.p.BaseFiles(false))
	s.Require().NoError(s.p.Registry.Load(s.p.Paths.BaseTree(locate.MainFont)))
	s.True(s.p.Registry.IsValid("u1F385.1"))
	s.FileExists(s.p.Paths.GlyphNames())
	s.Require().NoError(s.p.BaseFiles(true))
	s.False(s.p.Registry.Loaded())
	s.NoFileExists(s.p.Paths.GlyphNames())
}

func (s *PipelineSuite) TestBaseFilesFailures() {
	s.compiler.failOn = "decompile"
	err := s.p.BaseFiles(false)
	s.Require().Error(err)
	s.Equal(core.EEXTERNAL, core.Code(err))
	s.False(s.p.Paths.HasBaseTrees())
	s.assertNoIntermediates()
	//
	s.compiler.failOn = ""
	s.compiler.splitFonts = []string{locate.MainFont}
	decompiled := s.compiler.Calls("decompile")
	err = s.p.BaseFiles(false)
	s.Require().Error(err)
	s.Equal(core.EEXTERNAL, core.Code(err), "otc2otf did not write all fonts")
	s.Equal(decompiled, s.compiler.Calls("decompile"))
	//
	s.p.Source = filepath.Join(s.dir, "nowhere.ttc")
	s.compiler.splitFonts = nil
	err = s.p.BaseFiles(false)
	s.Equal(core.EMISSING, core.Code(err))
}

func (s *PipelineSuite) TestFont() {
	s.Require().NoError(s.p.BaseFiles(false))
	dir := s.assetDir([]string{"u1F600", "u1F385.1", "u1F9FF"}, "notes.txt")
	s.Require().NoError(os.WriteFile(filepath.Join(dir, "1f601 20.png"), nil, 0644))
	report, err := s.p.Font(dir)
	s.Require().NoError(err)
	s.Equal([]string{"u1F385.1", "u1F600"}, report.Patched)
	s.Equal(s.p.Paths.Generated(), report.Output)
	s.Greater(report.Reclaimed, int64(0))
	reasons := make(map[string]int)
	for _, ig := range report.Ignored {
		reasons[ig.Reason]++
	}
	s.Equal(map[string]int{
		assets.ReasonNotPNG:    1,
		assets.ReasonGlyphName: len(assets.Sizes),
		assets.ReasonSizes:     1,
	}, reasons)
	//
	font, err := os.ReadFile(report.Output)
	s.Require().NoError(err)
	for _, size := range assets.Sizes {
		payload := hex.EncodeToString(bitmap("u1F600", size))
		s.Equal(2, strings.Count(string(font), payload), "one bitmap per sub-font")
	}
	s.Contains(string(font), ttxtest.OriginalPayload(0, 1), "other glyphs are untouched")
	s.assertNoIntermediates()
	s.assertAllTasksCompleted()
	s.Contains(s.recorder.Tasks(), "Generating base emoji files")
	s.Contains(s.recorder.Tasks(), "Generating TTC file")
	inserting := s.recorder.Tasks()["Inserting emoji into "+locate.MainFont+".ttx"]
	s.True(inserting.Completed)
	s.Equal(int64(1), inserting.Total, "writing a font tree shows no file growth")
	s.True(s.p.Registry.Loaded())
}

func (s *PipelineSuite) TestFontWithoutUsableAssets() {
	dir := s.assetDir(nil, "u1F600 20.png", "readme.md")
	report, err := s.p.Font(dir)
	s.Require().Error(err)
	s.True(errors.Is(err, core.ErrEmptyAssetSet))
	s.Len(report.Ignored, 2)
	s.Equal(0, s.compiler.Calls("compile"))
	s.NoFileExists(s.p.Paths.Generated())
}

func (s *PipelineSuite) TestFontFailsOnCompilation() {
	dir := s.assetDir([]string{"u1F600"})
	s.compiler.failOn = "compile"
	_, err := s.p.Font(dir)
	s.Require().Error(err)
	s.Equal(core.EEXTERNAL, core.Code(err))
	s.Equal(2, s.compiler.Calls("compile"))
	s.Equal(0, s.compiler.Calls("merge"), "merging waits for compilation")
	s.NoFileExists(s.p.Paths.Generated())
	s.assertNoIntermediates()
}

func (s *PipelineSuite) TestFontDetectsCorruptBaseFiles() {
	s.Require().NoError(s.p.BaseFiles(false))
	// a base tree without bitmap strikes
	tree := ttxtest.Font{Glyphs: baseFont.Glyphs}.Document()
	s.Require().NoError(os.WriteFile(s.p.Paths.BaseTree(locate.UIFont), []byte(tree), 0644))
	_, err := s.p.Font(s.assetDir([]string{"u1F600"}))
	s.Require().Error(err)
	s.True(errors.Is(err, core.ErrMissingBitmapStrikes))
	s.Contains(core.UserMessage(err), core.RegenerateHint)
	s.Equal(0, s.compiler.Calls("compile"))
}

func (s *PipelineSuite) TestGenerateAssets() {
	src := filepath.Join(s.dir, "sources")
	s.Require().NoError(os.MkdirAll(filepath.Join(src, "drafts"), 0755))
	for _, name := range []string{"u1F600.svg", "1f601.png", "notes.txt", "broken.png"} {
		s.Require().NoError(os.WriteFile(filepath.Join(src, name), []byte(name), 0644))
	}
	out := s.p.Paths.Assets()
	ignored, err := s.p.GenerateAssets(src, out)
	s.Require().NoError(err)
	s.Equal([]assets.Ignored{
		{Path: filepath.Join(src, "broken.png"), Reason: assets.ReasonUnreadable},
		{Path: filepath.Join(src, "drafts"), Reason: assets.ReasonDirectory},
		{Path: filepath.Join(src, "notes.txt"), Reason: assets.ReasonNotImage},
	}, ignored)
	entries, err := os.ReadDir(out)
	s.Require().NoError(err)
	s.Len(entries, 2*len(assets.Sizes))
	data, err := os.ReadFile(filepath.Join(out, "u1F600 160.png"))
	s.Require().NoError(err)
	s.Equal(bitmap("u1F600.svg", 160), data)
	// generated assets make up complete sets
	set, ignoredAssets, err := assets.Build(out, nil)
	s.Require().NoError(err)
	s.Empty(ignoredAssets)
	s.Equal([]string{"u1F600", "u1F601"}, set.Names())
}

func (s *PipelineSuite) TestGenerateAssetsFailures() {
	_, err := s.p.GenerateAssets(filepath.Join(s.dir, "missing"), s.p.Paths.Assets())
	s.Equal(core.EMISSING, core.Code(err))
	empty := filepath.Join(s.dir, "empty")
	s.Require().NoError(os.Mkdir(empty, 0755))
	_, err = s.p.GenerateAssets(empty, s.p.Paths.Assets())
	s.Equal(core.EINVALID, core.Code(err))
	s.Require().NoError(os.WriteFile(filepath.Join(empty, "crash.svg"), nil, 0644))
	_, err = s.p.GenerateAssets(empty, s.p.Paths.Assets())
	s.Equal(core.EEXTERNAL, core.Code(err))
}

func (s *PipelineSuite) TestClearCache() {
	s.Require().NoError(s.p.BaseFiles(false))
	s.Require().NoError(s.p.Registry.Load(s.p.Paths.BaseTree(locate.MainFont)))
	_, err := s.p.GenerateAssets(s.assetDir(nil, "u1F600.png"), s.p.Paths.Assets())
	s.Require().NoError(err)
	s.Require().NoError(locate.EnsureDir(s.p.Paths.Build()))
	s.Require().NoError(os.WriteFile(s.p.Paths.UserFont(locate.MainFont), make([]byte, 50), 0644))
	//
	n, err := s.p.ClearCache(false)
	s.Require().NoError(err)
	s.Greater(n, int64(50))
	s.NoDirExists(s.p.Paths.Assets())
	s.True(s.p.Paths.HasBaseTrees())
	n, err = s.p.ClearCache(false)
	s.Require().NoError(err)
	s.Equal(int64(0), n, "everything is cleared already")
	//
	base := locate.FileSize(s.p.Paths.BaseTree(locate.MainFont))
	n, err = s.p.ClearCache(true)
	s.Require().NoError(err)
	s.Greater(n, 2*base-1)
	s.False(s.p.Paths.HasBaseTrees())
	s.False(s.p.Registry.Loaded())
}

func TestCopyFile(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "sbixer.pipeline")
	defer teardown()
	//
	dir := t.TempDir()
	src := filepath.Join(dir, "a")
	require.NoError(t, os.WriteFile(src, []byte("emoji"), 0644))
	require.NoError(t, copyFile(src, filepath.Join(dir, "b")))
	data, _ := os.ReadFile(filepath.Join(dir, "b"))
	assert.Equal(t, "emoji", string(data))
	assert.Equal(t, core.EMISSING, core.Code(copyFile(filepath.Join(dir, "x"), filepath.Join(dir, "c"))))
}
