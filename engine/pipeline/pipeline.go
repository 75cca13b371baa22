package pipeline

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/npillmayer/sbixer/backend/compiler"
	"github.com/npillmayer/sbixer/backend/raster"
	"github.com/npillmayer/sbixer/core"
	"github.com/npillmayer/sbixer/core/assets"
	"github.com/npillmayer/sbixer/core/glyphregistry"
	"github.com/npillmayer/sbixer/core/locate"
	"github.com/npillmayer/sbixer/engine/inject"
	"github.com/npillmayer/sbixer/engine/tasks"
	"github.com/npillmayer/schuko"
)

// Pipeline holds everything needed to generate emoji fonts.
type Pipeline struct {
	Paths      locate.Paths
	Compiler   compiler.Compiler
	Rasterizer raster.Rasterizer
	Registry   *glyphregistry.Registry
	Reporter   tasks.Reporter
	// Source is the system emoji font container. If empty, it is located
	// when base files are generated.
	Source string
	// Expected output sizes, for progress estimation
	TreeSize      int64
	ContainerSize int64

	conf schuko.Configuration
}

// Report is the outcome of a font generation.
type Report struct {
	Patched   []string         // glyph names, sorted
	Ignored   []assets.Ignored // asset files not used
	Output    string           // the generated font container
	Reclaimed int64            // bytes of intermediate files removed
}

// New creates a pipeline as configured. reporter may be nil.
func New(conf schuko.Configuration, reporter tasks.Reporter) (*Pipeline, error) {
	paths, err := locate.FromConfig(conf)
	if err != nil {
		return nil, err
	}
	if reporter == nil {
		reporter = tasks.NopReporter{}
	}
	tracer().Infof("save directory is %s", paths.Save)
	return &Pipeline{
		Paths:         paths,
		Compiler:      compiler.New(conf),
		Rasterizer:    raster.New(conf),
		Registry:      glyphregistry.New(paths.GlyphNames()),
		Reporter:      reporter,
		TreeSize:      locate.Size(conf, "ttx-size", locate.DefaultTreeSize),
		ContainerSize: locate.Size(conf, "ttc-size", locate.DefaultContainerSize),
		conf:          conf,
	}, nil
}

func (p *Pipeline) task(description string, work func() error, strategy tasks.Strategy) *tasks.Task {
	return tasks.New(description, work, strategy, p.Reporter)
}

// --- Base files ------------------------------------------------------------

// BaseFiles generates the base trees of the sub-fonts of the system emoji
// font. Unless force is set, existing base trees are kept.
func (p *Pipeline) BaseFiles(force bool) error {
	_, err := p.baseFiles(force)
	return err
}

func (p *Pipeline) baseFiles(force bool) (generated bool, err error) {
	if !force && p.Paths.HasBaseTrees() {
		tracer().Infof("emoji base files already generated, skipping")
		return false, nil
	}
	tracer().Infof("generating emoji base files")
	source, err := p.source()
	if err != nil {
		return false, err
	}
	if err = locate.EnsureDir(p.Paths.Base()); err != nil {
		return false, err
	}
	defer func() {
		if n, cerr := p.Cleanup(); cerr != nil {
			tracer().Errorf("cleaning up base files: %v", cerr)
		} else {
			tracer().Debugf("cleaned up %d bytes", n)
		}
	}()
	container := p.Paths.BaseContainer()
	split := p.task("Generating TTF files", func() error {
		if err := copyFile(source, container); err != nil {
			return err
		}
		if err := p.Compiler.Split(container); err != nil {
			return err
		}
		return compiler.CheckOutputs(compiler.Outputs(container, locate.SubFonts...)...)
	}, tasks.Indeterminate())
	if err = tasks.Run(split); err != nil {
		return false, err
	}
	decompile := make([]*tasks.Task, len(locate.SubFonts))
	for i, font := range locate.SubFonts {
		font := font
		tmp := p.Paths.TmpTree(font)
		decompile[i] = p.task("Decompiling "+font+".ttf", func() error {
			if err := p.Compiler.Decompile(p.Paths.BaseFont(font), tmp); err != nil {
				return err
			}
			// a base tree is never left half-written
			if err := os.Rename(tmp, p.Paths.BaseTree(font)); err != nil {
				return core.WrapError(err, core.EINVALID, "cannot move base tree of %s", font)
			}
			return nil
		}, tasks.FileSize(tmp, p.TreeSize))
	}
	if err = tasks.Run(decompile...); err != nil {
		return false, err
	}
	if err = p.Registry.Invalidate(); err != nil {
		return true, err
	}
	tracer().Infof("generated emoji base files")
	return true, nil
}

func (p *Pipeline) source() (string, error) {
	if p.Source != "" {
		return p.Source, nil
	}
	if p.conf == nil {
		return "", core.Error(core.EMISSING, "no emoji font configured")
	}
	return locate.EmojiFont(p.conf)
}

// --- Font ------------------------------------------------------------------

// Font generates an emoji font from a directory of assets. Base files are
// generated first if necessary.
//
// The report lists the ignored asset files even if Font fails.
func (p *Pipeline) Font(assetDir string) (*Report, error) {
	report := &Report{}
	generated, err := p.baseFiles(false)
	if err != nil {
		return report, err
	}
	if !generated {
		tasks.NewCompleted("Generating base emoji files", p.Reporter)
	}
	if err = p.Registry.Load(p.Paths.BaseTree(locate.MainFont)); err != nil {
		return report, err
	}
	set, ignored, err := assets.Build(assetDir, p.Registry.IsValid)
	report.Ignored = ignored
	if err != nil {
		return report, err
	}
	tracer().Infof("found %d complete asset sets", set.Len())
	if err = locate.EnsureDir(p.Paths.Build()); err != nil {
		return report, err
	}
	defer func() {
		n, cerr := p.Cleanup()
		report.Reclaimed += n
		if cerr != nil {
			tracer().Errorf("cleaning up: %v", cerr)
		}
	}()
	var mu sync.Mutex
	insert := make([]*tasks.Task, len(locate.SubFonts))
	for i, font := range locate.SubFonts {
		font := font
		base, user := p.Paths.BaseTree(font), p.Paths.UserTree(font)
		insert[i] = p.task("Inserting emoji into "+font+".ttx", func() error {
			names, err := inject.InjectFile(base, user, set)
			if err == nil && font == locate.MainFont {
				mu.Lock()
				report.Patched = names
				mu.Unlock()
			}
			return err
		}, tasks.Indeterminate())
	}
	if err = tasks.Run(insert...); err != nil {
		return report, err
	}
	compile := make([]*tasks.Task, len(locate.SubFonts))
	fonts := make([]string, len(locate.SubFonts))
	for i, font := range locate.SubFonts {
		tree, out := p.Paths.UserTree(font), p.Paths.UserFont(font)
		fonts[i] = out
		compile[i] = p.task("Compiling "+filepath.Base(tree), func() error {
			return p.Compiler.Compile(tree, out)
		}, tasks.Indeterminate())
	}
	if err = tasks.Run(compile...); err != nil {
		return report, err
	}
	output := p.Paths.Generated()
	merge := p.task("Generating TTC file", func() error {
		return p.Compiler.Merge(fonts, output)
	}, tasks.FileSize(compiler.MergeTarget(output), p.ContainerSize))
	if err = tasks.Run(merge); err != nil {
		return report, err
	}
	report.Output = output
	tracer().Infof("generated emoji font %s with %d glyphs", output, len(report.Patched))
	return report, nil
}

// --- Assets ----------------------------------------------------------------

// GenerateAssets renders every SVG or PNG image in directory src to PNG
// assets of all strike sizes in directory out. Assets are named after the
// file name of their source image, without extension. Existing assets are
// overwritten. GenerateAssets returns the files of src which have been
// ignored.
func (p *Pipeline) GenerateAssets(src, out string) ([]assets.Ignored, error) {
	fi, err := os.Stat(src)
	if err != nil {
		return nil, core.WrapError(err, core.EMISSING, "%s does not exist", src)
	}
	if !fi.IsDir() {
		return nil, core.Error(core.EINVALID, "%s is not a directory", src)
	}
	entries, err := os.ReadDir(src)
	if err != nil {
		return nil, core.WrapError(err, core.EINVALID, "cannot read %s", src)
	}
	if len(entries) == 0 {
		return nil, core.Error(core.EINVALID, "%s does not contain any files", src)
	}
	if err = locate.EnsureDir(out); err != nil {
		return nil, err
	}
	var ignored []assets.Ignored
	render := p.task("Generating assets", func() error {
		for _, e := range entries {
			path := filepath.Join(src, e.Name())
			if isDir(path, e) {
				ignored = append(ignored, assets.Ignored{Path: path, Reason: assets.ReasonDirectory})
				continue
			}
			if !raster.Supported(path) {
				ignored = append(ignored, assets.Ignored{Path: path, Reason: assets.ReasonNotImage})
				continue
			}
			if err := p.renderAssets(path, out); err != nil {
				if core.Code(err) == core.EINTERNAL || core.Code(err) == core.EEXTERNAL {
					return err
				}
				tracer().Infof("ignoring %s: %v", path, err)
				ignored = append(ignored, assets.Ignored{Path: path, Reason: assets.ReasonUnreadable})
			}
		}
		return nil
	}, tasks.Indeterminate())
	err = tasks.Run(render)
	return ignored, err
}

// renderAssets rasterizes an image at all sizes before writing any asset,
// so a failing image does not leave an incomplete set behind.
func (p *Pipeline) renderAssets(src, out string) error {
	name := strings.TrimSuffix(filepath.Base(src), filepath.Ext(src))
	images := make([][]byte, len(assets.Sizes))
	for i, size := range assets.Sizes {
		img, err := p.Rasterizer.Rasterize(src, size)
		if err != nil {
			return err
		}
		images[i] = img
	}
	for i, size := range assets.Sizes {
		path := filepath.Join(out, assets.FileName(name, size))
		if err := os.WriteFile(path, images[i], 0644); err != nil {
			return core.WrapError(err, core.EINTERNAL, "cannot write asset %s", path)
		}
	}
	tracer().Debugf("generated assets for %s", name)
	return nil
}

func isDir(path string, e os.DirEntry) bool {
	if e.IsDir() {
		return true
	}
	fi, err := os.Stat(path) // follow symlinks
	return err == nil && fi.IsDir()
}

// --- Housekeeping ----------------------------------------------------------

// Cleanup removes intermediate files and returns the number of bytes
// reclaimed.
func (p *Pipeline) Cleanup() (int64, error) {
	return locate.Remove(p.Paths.Intermediates()...)
}

// ClearCache removes intermediate files and generated assets. If includeBase
// is set, base files are removed as well, which means they will have to be
// generated again for the next font. ClearCache returns the number of bytes
// reclaimed.
func (p *Pipeline) ClearCache(includeBase bool) (int64, error) {
	reclaimed, err := p.Cleanup()
	if err != nil {
		return reclaimed, err
	}
	for _, dir := range []string{p.Paths.Build(), p.Paths.Assets()} {
		n, err := locate.RemoveAll(dir)
		reclaimed += n
		if err != nil {
			return reclaimed, err
		}
	}
	if includeBase {
		if err = p.Registry.Invalidate(); err != nil {
			return reclaimed, err
		}
		n, err := locate.RemoveAll(p.Paths.Base())
		reclaimed += n
		if err != nil {
			return reclaimed, err
		}
	}
	tracer().Infof("cleared %d bytes", reclaimed)
	return reclaimed, nil
}

func copyFile(src, dst string) (err error) {
	in, err := os.Open(src)
	if err != nil {
		return core.WrapError(err, core.EMISSING, "cannot open %s", src)
	}
	defer in.Close()
	out, err := os.Create(dst)
	if err != nil {
		return core.WrapError(err, core.EINVALID, "cannot create %s", dst)
	}
	defer func() {
		if cerr := out.Close(); err == nil && cerr != nil {
			err = core.WrapError(cerr, core.EINVALID, "cannot write %s", dst)
		}
	}()
	if _, err = io.Copy(out, in); err != nil {
		return core.WrapError(err, core.EINVALID, "cannot copy %s", src)
	}
	return nil
}
